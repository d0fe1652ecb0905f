package record

import "fmt"

// Record is one row: values positioned according to its schema.
type Record struct {
	schema Schema
	values []any
}

// New builds a record for schema. Missing trailing values are nil, extra
// values are dropped.
func New(schema Schema, values ...any) Record {
	v := make([]any, schema.Len())
	copy(v, values)
	return Record{schema: schema, values: v}
}

// Get returns the value for the named field.
func (r Record) Get(name string) (any, bool) {
	i, ok := r.schema.byName[name]
	if !ok {
		return nil, false
	}
	return r.values[i], true
}

// Value returns the value for the named field or nil when absent.
func (r Record) Value(name string) any {
	v, _ := r.Get(name)
	return v
}

// Map returns the record as a name/value map.
func (r Record) Map() map[string]any {
	m := make(map[string]any, len(r.values))
	for i, f := range r.schema.fields {
		m[f.Name] = r.values[i]
	}
	return m
}

// With returns a record for schema whose values are r's values followed by
// extra. schema must extend r's schema.
func (r Record) With(schema Schema, extra ...any) Record {
	v := make([]any, 0, len(r.values)+len(extra))
	v = append(v, r.values...)
	v = append(v, extra...)
	return New(schema, v...)
}

func (r Record) String() string {
	return fmt.Sprint(r.Map())
}
