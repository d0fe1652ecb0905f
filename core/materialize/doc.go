// Package materialize turns declarative source descriptors into runtime
// objects: an open blob storage, a format handler, a table mapper and an
// attribute extractor per reader.
//
// A materialized Source owns its storage. Close it once resolution and
// iteration are done; Close is idempotent.
//
//	reg, _ := materialize.DefaultRegistry()
//	m := materialize.New(reg, nil, logger)
//	src, err := m.Materialize(ctx, desc)
//	if err != nil {
//		return err
//	}
//	defer src.Close()
package materialize
