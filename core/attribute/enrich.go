package attribute

import (
	"context"

	"source-resolver/core/record"
)

// Schema returns base extended with the extractor's fields.
func (e *Extractor) Schema(base record.Schema) (record.Schema, error) {
	if e.Len() == 0 {
		return base, nil
	}
	return base.Append(e.Fields(base.Len())...)
}

// Enrich wraps src so that every record carries values after its own
// fields. schema must be the schema of src extended with len(values)
// fields. With no values src is returned unchanged.
func Enrich(src record.Source, schema record.Schema, values []any) record.Source {
	if len(values) == 0 && schema.Equal(src.Schema()) {
		return src
	}
	extra := append([]any(nil), values...)
	return record.NewSource(schema, func(ctx context.Context) (record.Iterator, error) {
		it, err := src.Open(ctx)
		if err != nil {
			return nil, err
		}
		return &enrichIterator{Iterator: it, schema: schema, values: extra}, nil
	})
}

type enrichIterator struct {
	record.Iterator
	schema record.Schema
	values []any
}

func (it *enrichIterator) Record() record.Record {
	return it.Iterator.Record().With(it.schema, it.values...)
}
