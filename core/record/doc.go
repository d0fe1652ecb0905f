// Package record defines the tabular data model shared by every format handler
// and by the source resolver.
//
// # Model
//
//   - Schema: an ordered list of typed fields. Field order is significant
//     because text formats are parsed positionally.
//   - Record: one row, an ordered set of name/value pairs.
//   - Source: a schema plus a factory of iterators. Every call to Open starts
//     a fresh read of the underlying data, so a Source can be iterated any
//     number of times, concurrently or not, without shared cursor state.
//
// # Iteration
//
//	it, err := src.Open(ctx)
//	if err != nil {
//	    return err
//	}
//	defer it.Close()
//	for it.Next() {
//	    rec := it.Record()
//	    ...
//	}
//	return it.Err()
//
// ForEach and Collect wrap that loop and always release the iterator.
package record
