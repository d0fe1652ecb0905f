package attribute

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"source-resolver/core/blob"
	"source-resolver/core/record"

	"gopkg.in/yaml.v3"
)

const (
	DefaultDateLayout      = "2006-01-02"
	DefaultTimestampLayout = "2006-01-02T15:04:05"
)

// ErrInvalidAttribute is returned for attribute definitions that cannot be compiled.
var ErrInvalidAttribute = errors.New("invalid attribute")

// Source selects where an attribute value comes from.
type Source string

const (
	SourceConstant Source = "constant"
	SourceRegex    Source = "regex"
)

// ParseSource converts a configuration string, case-insensitively.
func ParseSource(s string) (Source, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "constant":
		return SourceConstant, nil
	case "regex":
		return SourceRegex, nil
	default:
		return "", fmt.Errorf("%w: unknown source %q: expected constant or regex", ErrInvalidAttribute, s)
	}
}

func (s *Source) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := ParseSource(raw)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*s = parsed
	return nil
}

// Descriptor declares one attribute.
type Descriptor struct {
	Name   string `yaml:"name" json:"name"`
	Source Source `yaml:"source" json:"source"`
	// Type defaults to string.
	Type string `yaml:"type,omitempty" json:"type,omitempty"`
	// Format is a Go time layout for date and timestamp attributes.
	Format  string `yaml:"format,omitempty" json:"format,omitempty"`
	Value   string `yaml:"value,omitempty" json:"value,omitempty"`
	Pattern string `yaml:"pattern,omitempty" json:"pattern,omitempty"`
	Group   string `yaml:"group,omitempty" json:"group,omitempty"`
}

type compiled struct {
	desc  Descriptor
	typ   record.FieldType
	re    *regexp.Regexp
	group int
	// constant holds the coerced value of a CONSTANT attribute.
	constant any
}

// Extractor computes attribute values for blobs.
type Extractor struct {
	attrs []compiled
}

// NewExtractor compiles descriptors. Names must be unique and regex
// attributes need a pattern that compiles.
func NewExtractor(descs []Descriptor) (*Extractor, error) {
	e := &Extractor{attrs: make([]compiled, 0, len(descs))}
	seen := make(map[string]bool, len(descs))
	for _, d := range descs {
		if strings.TrimSpace(d.Name) == "" {
			return nil, fmt.Errorf("%w: name must not be blank", ErrInvalidAttribute)
		}
		if seen[d.Name] {
			return nil, fmt.Errorf("%w: duplicate attribute %q", ErrInvalidAttribute, d.Name)
		}
		seen[d.Name] = true

		typ, err := record.ParseFieldType(d.Type)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidAttribute, d.Name, err)
		}
		c := compiled{desc: d, typ: typ, group: -1}
		switch d.Source {
		case SourceConstant:
			c.constant = Coerce(d.Value, typ, d.Format)
		case SourceRegex:
			if d.Pattern == "" {
				return nil, fmt.Errorf("%w: %s: regex source requires a pattern", ErrInvalidAttribute, d.Name)
			}
			re, err := regexp.Compile(d.Pattern)
			if err != nil {
				return nil, fmt.Errorf("%w: %s: %v", ErrInvalidAttribute, d.Name, err)
			}
			if d.Group == "" {
				return nil, fmt.Errorf("%w: %s: regex source requires a group", ErrInvalidAttribute, d.Name)
			}
			c.re = re
			c.group = re.SubexpIndex(d.Group)
			if c.group < 0 {
				return nil, fmt.Errorf("%w: %s: pattern has no group %q", ErrInvalidAttribute, d.Name, d.Group)
			}
		default:
			return nil, fmt.Errorf("%w: %s: unknown source %q", ErrInvalidAttribute, d.Name, d.Source)
		}
		e.attrs = append(e.attrs, c)
	}
	return e, nil
}

// Len returns the number of attributes.
func (e *Extractor) Len() int {
	if e == nil {
		return 0
	}
	return len(e.attrs)
}

// Fields returns the attribute fields. Indexes start at start.
func (e *Extractor) Fields(start int) []record.Field {
	if e == nil {
		return nil
	}
	out := make([]record.Field, len(e.attrs))
	for i, a := range e.attrs {
		out[i] = record.Field{Name: a.desc.Name, Index: start + i, Type: a.typ, Nullable: true}
	}
	return out
}

// Extract returns the attribute values for p in declaration order.
func (e *Extractor) Extract(p blob.Path) []any {
	if e == nil {
		return nil
	}
	out := make([]any, len(e.attrs))
	for i, a := range e.attrs {
		switch a.desc.Source {
		case SourceConstant:
			out[i] = a.constant
		case SourceRegex:
			m := a.re.FindStringSubmatch(p.Path)
			if m == nil || a.group >= len(m) {
				continue
			}
			out[i] = Coerce(m[a.group], a.typ, a.desc.Format)
		}
	}
	return out
}

// Coerce converts raw to typ. It returns nil when the value cannot be
// converted. layout applies to date and timestamp types.
func Coerce(raw string, typ record.FieldType, layout string) any {
	switch typ {
	case record.TypeString:
		return raw
	case record.TypeInt:
		v, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 32)
		if err != nil {
			return nil
		}
		return int32(v)
	case record.TypeLong:
		v, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil {
			return nil
		}
		return v
	case record.TypeFloat:
		v, err := strconv.ParseFloat(strings.TrimSpace(raw), 32)
		if err != nil {
			return nil
		}
		return float32(v)
	case record.TypeDouble:
		v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return nil
		}
		return v
	case record.TypeBool:
		switch raw {
		case "true":
			return true
		case "false":
			return false
		}
		return nil
	case record.TypeDate:
		if layout == "" {
			layout = DefaultDateLayout
		}
		v, err := time.Parse(layout, raw)
		if err != nil {
			return nil
		}
		return v
	case record.TypeTimestamp:
		if layout == "" {
			layout = DefaultTimestampLayout
		}
		v, err := time.Parse(layout, raw)
		if err != nil {
			return nil
		}
		return v
	}
	return nil
}
