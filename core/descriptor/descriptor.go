package descriptor

import (
	"fmt"
	"strings"

	"source-resolver/core/attribute"
	"source-resolver/core/blob"
	"source-resolver/core/mapping"

	"gopkg.in/yaml.v3"
)

// Source describes one logical data source.
type Source struct {
	Name      string    `yaml:"name" json:"name"`
	Storage   Storage   `yaml:"storage" json:"storage"`
	Table     *Table    `yaml:"table,omitempty" json:"table,omitempty"`
	Conflicts Conflicts `yaml:"conflicts,omitempty" json:"conflicts"`
	Readers   []Reader  `yaml:"readers" json:"readers"`
}

// Storage selects the blob backend.
type Storage struct {
	// Type is "local" (default) or "s3".
	Type     string `yaml:"type,omitempty" json:"type,omitempty"`
	RootPath string `yaml:"rootPath,omitempty" json:"root_path,omitempty"`
	Bucket   string `yaml:"bucket,omitempty" json:"bucket,omitempty"`
	Prefix   string `yaml:"prefix,omitempty" json:"prefix,omitempty"`
}

// Kind returns the parsed storage kind.
func (s Storage) Kind() (blob.Kind, error) {
	return blob.ParseKind(s.Type)
}

// Table is the table configuration: how blobs map to tables and which
// attributes are appended.
type Table struct {
	Mapping    *Mapping               `yaml:"mapping,omitempty" json:"mapping,omitempty"`
	Attributes []attribute.Descriptor `yaml:"attributes,omitempty" json:"attributes,omitempty"`
}

// Reader pairs a format with an optional label and table configuration.
type Reader struct {
	// Type is the format kind, e.g. "csv".
	Type  string `yaml:"type" json:"type"`
	Label string `yaml:"label,omitempty" json:"label,omitempty"`
	// Format holds the raw format settings.
	Format yaml.Node `yaml:"format,omitempty" json:"-"`
	// Table replaces the source default in full when set.
	Table *Table `yaml:"table,omitempty" json:"table,omitempty"`
}

// EffectiveTable returns the reader table or, when absent, the source default.
func (s *Source) EffectiveTable(r Reader) *Table {
	if r.Table != nil {
		return r.Table
	}
	return s.Table
}

// Mapping kinds.
const (
	MappingRegex     = "regex"
	MappingDirectory = "directory"
	MappingGlob      = "glob"
)

// Mapping selects a table mapper.
type Mapping struct {
	Kind           string `yaml:"type" json:"type"`
	Pattern        string `yaml:"pattern,omitempty" json:"pattern,omitempty"`
	TableNameGroup string `yaml:"tableNameGroup,omitempty" json:"table_name_group,omitempty"`
	// Depth defaults to 1.
	Depth     *int   `yaml:"depth,omitempty" json:"depth,omitempty"`
	TableName string `yaml:"table,omitempty" json:"table,omitempty"`
}

// UnmarshalYAML accepts "kind" as an alias of "type".
func (m *Mapping) UnmarshalYAML(value *yaml.Node) error {
	type plain Mapping
	var raw struct {
		plain `yaml:",inline"`
		Alias string `yaml:"kind"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	*m = Mapping(raw.plain)
	if m.Kind == "" {
		m.Kind = raw.Alias
	}
	m.Kind = strings.ToLower(strings.TrimSpace(m.Kind))
	return nil
}

// Build creates the mapper.
func (m Mapping) Build() (mapping.Mapper, error) {
	switch strings.ToLower(m.Kind) {
	case MappingRegex:
		if strings.TrimSpace(m.Pattern) == "" {
			return nil, fmt.Errorf("regex mapping: pattern must not be blank")
		}
		return mapping.NewRegex(m.Pattern, m.TableNameGroup)
	case MappingDirectory:
		depth := 1
		if m.Depth != nil {
			depth = *m.Depth
		}
		return mapping.NewDirectory(depth)
	case MappingGlob:
		if strings.TrimSpace(m.Pattern) == "" {
			return nil, fmt.Errorf("glob mapping: pattern must not be blank")
		}
		return mapping.NewGlob(m.Pattern, m.TableName)
	case "":
		return nil, fmt.Errorf("mapping type is missing")
	default:
		return nil, fmt.Errorf("unknown mapping type %q: expected regex, directory or glob", m.Kind)
	}
}
