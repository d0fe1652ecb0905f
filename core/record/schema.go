package record

import (
	"fmt"
	"strings"
)

// FieldType is the logical type of a schema field.
type FieldType string

const (
	TypeString    FieldType = "string"
	TypeInt       FieldType = "int"
	TypeLong      FieldType = "long"
	TypeFloat     FieldType = "float"
	TypeDouble    FieldType = "double"
	TypeBool      FieldType = "bool"
	TypeDate      FieldType = "date"
	TypeTimestamp FieldType = "timestamp"
)

// ParseFieldType converts a configuration string into a FieldType.
// Matching is case-insensitive; "boolean" is accepted as an alias of bool.
func ParseFieldType(s string) (FieldType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "string":
		return TypeString, nil
	case "int":
		return TypeInt, nil
	case "long":
		return TypeLong, nil
	case "float":
		return TypeFloat, nil
	case "double":
		return TypeDouble, nil
	case "bool", "boolean":
		return TypeBool, nil
	case "date":
		return TypeDate, nil
	case "timestamp":
		return TypeTimestamp, nil
	default:
		return "", fmt.Errorf("unknown field type %q: expected string, int, long, float, double, bool, date or timestamp", s)
	}
}

// Field describes one column of a Schema.
type Field struct {
	Name     string    `json:"name"`
	Index    int       `json:"index"`
	Type     FieldType `json:"type"`
	Nullable bool      `json:"nullable"`
}

// Schema is an ordered sequence of fields with unique names.
type Schema struct {
	fields []Field
	byName map[string]int
}

// NewSchema builds a Schema from fields, reassigning Index to match the
// position of each field. Duplicate names are rejected.
func NewSchema(fields ...Field) (Schema, error) {
	s := Schema{
		fields: make([]Field, len(fields)),
		byName: make(map[string]int, len(fields)),
	}
	for i, f := range fields {
		if _, dup := s.byName[f.Name]; dup {
			return Schema{}, fmt.Errorf("duplicate field name %q", f.Name)
		}
		f.Index = i
		s.fields[i] = f
		s.byName[f.Name] = i
	}
	return s, nil
}

// MustSchema is like NewSchema but panics on error. Intended for tests and
// static schemas.
func MustSchema(fields ...Field) Schema {
	s, err := NewSchema(fields...)
	if err != nil {
		panic(err)
	}
	return s
}

// StringSchema builds a schema of nullable string fields with the given names.
func StringSchema(names ...string) (Schema, error) {
	fields := make([]Field, len(names))
	for i, n := range names {
		fields[i] = Field{Name: n, Type: TypeString, Nullable: true}
	}
	return NewSchema(fields...)
}

// Len returns the number of fields.
func (s Schema) Len() int { return len(s.fields) }

// Fields returns a copy of the fields in order.
func (s Schema) Fields() []Field {
	out := make([]Field, len(s.fields))
	copy(out, s.fields)
	return out
}

// Field returns the field at position i.
func (s Schema) Field(i int) Field { return s.fields[i] }

// Names returns field names in order.
func (s Schema) Names() []string {
	names := make([]string, len(s.fields))
	for i, f := range s.fields {
		names[i] = f.Name
	}
	return names
}

// Lookup returns the field with the given name.
func (s Schema) Lookup(name string) (Field, bool) {
	i, ok := s.byName[name]
	if !ok {
		return Field{}, false
	}
	return s.fields[i], true
}

// Append returns a new schema with extra fields appended after the existing
// ones.
func (s Schema) Append(extra ...Field) (Schema, error) {
	all := make([]Field, 0, len(s.fields)+len(extra))
	all = append(all, s.fields...)
	all = append(all, extra...)
	return NewSchema(all...)
}

// Equal reports whether both schemas have the same field names, types and
// nullability in the same order.
func (s Schema) Equal(o Schema) bool {
	if len(s.fields) != len(o.fields) {
		return false
	}
	for i := range s.fields {
		a, b := s.fields[i], o.fields[i]
		if a.Name != b.Name || a.Type != b.Type || a.Nullable != b.Nullable {
			return false
		}
	}
	return true
}

// String renders the schema as "name:type, ...".
func (s Schema) String() string {
	parts := make([]string, len(s.fields))
	for i, f := range s.fields {
		parts[i] = f.Name + ":" + string(f.Type)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
