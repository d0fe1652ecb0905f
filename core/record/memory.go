package record

import "context"

// NewMemorySource returns a Source over an in-memory slice of records. Every
// Open yields the records in their original order.
func NewMemorySource(schema Schema, records []Record) Source {
	snapshot := make([]Record, len(records))
	copy(snapshot, records)
	return NewSource(schema, func(ctx context.Context) (Iterator, error) {
		return &sliceIterator{records: snapshot, pos: -1}, nil
	})
}

// Empty returns a Source with the given schema and no records.
func Empty(schema Schema) Source {
	return NewMemorySource(schema, nil)
}

type sliceIterator struct {
	records []Record
	pos     int
	closed  bool
}

func (it *sliceIterator) Next() bool {
	if it.closed || it.pos+1 >= len(it.records) {
		it.pos = len(it.records)
		return false
	}
	it.pos++
	return true
}

func (it *sliceIterator) Record() Record {
	MustPosition(it.pos >= 0 && it.pos < len(it.records))
	return it.records[it.pos]
}

func (it *sliceIterator) Err() error { return nil }

func (it *sliceIterator) Close() error {
	it.closed = true
	return nil
}
