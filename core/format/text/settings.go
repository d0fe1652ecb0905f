package text

import (
	"fmt"
	"unicode/utf8"

	"source-resolver/core/format"

	"gopkg.in/yaml.v3"
)

const (
	DefaultMaxColumns        = 512
	DefaultMaxCharsPerColumn = 4096
)

// Char is a single character setting. Zero means unset.
type Char rune

// UnmarshalYAML accepts a one-character string. An empty string leaves the
// setting unset.
func (c *Char) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	switch utf8.RuneCountInString(s) {
	case 0:
		*c = 0
	case 1:
		r, _ := utf8.DecodeRuneInString(s)
		*c = Char(r)
	default:
		return fmt.Errorf("line %d: expected a single character, got %q", value.Line, s)
	}
	return nil
}

func (c Char) MarshalYAML() (any, error) {
	if c == 0 {
		return "", nil
	}
	return string(rune(c)), nil
}

func (c Char) String() string {
	if c == 0 {
		return ""
	}
	return string(rune(c))
}

// Common holds the settings shared by every text format.
type Common struct {
	HasHeader                 bool     `yaml:"hasHeader"`
	Headers                   []string `yaml:"headers,omitempty"`
	NullValue                 *string  `yaml:"nullValue,omitempty"`
	SkipEmptyLines            bool     `yaml:"skipEmptyLines"`
	IgnoreLeadingWhitespaces  bool     `yaml:"ignoreLeadingWhitespaces"`
	IgnoreTrailingWhitespaces bool     `yaml:"ignoreTrailingWhitespaces"`
	Comment                   Char     `yaml:"comment,omitempty"`
	// MaxColumns and MaxCharsPerColumn disable their limit when negative.
	MaxColumns            int   `yaml:"maxColumns"`
	MaxCharsPerColumn     int   `yaml:"maxCharsPerColumn"`
	NumberOfRowsToSkip    int64 `yaml:"numberOfRowsToSkip,omitempty"`
	NumberOfRecordsToRead int64 `yaml:"numberOfRecordsToRead,omitempty"`
}

func defaultCommon(hasHeader bool) Common {
	return Common{
		HasHeader:                 hasHeader,
		SkipEmptyLines:            true,
		IgnoreLeadingWhitespaces:  true,
		IgnoreTrailingWhitespaces: true,
		MaxColumns:                DefaultMaxColumns,
		MaxCharsPerColumn:         DefaultMaxCharsPerColumn,
	}
}

func (c Common) validate() error {
	if c.MaxColumns == 0 {
		return fmt.Errorf("%w: maxColumns must not be 0", format.ErrInvalidDescriptor)
	}
	if c.MaxCharsPerColumn == 0 {
		return fmt.Errorf("%w: maxCharsPerColumn must not be 0", format.ErrInvalidDescriptor)
	}
	if c.NumberOfRowsToSkip < 0 {
		return fmt.Errorf("%w: numberOfRowsToSkip must be >= 0", format.ErrInvalidDescriptor)
	}
	if c.MaxColumns > 0 && len(c.Headers) > c.MaxColumns {
		return fmt.Errorf("%w: %d headers exceed maxColumns %d", format.ErrInvalidDescriptor, len(c.Headers), c.MaxColumns)
	}
	return nil
}

// CSV configures comma separated values.
type CSV struct {
	Common      `yaml:",inline"`
	Delimiter   Char    `yaml:"delimiter"`
	Quote       Char    `yaml:"quote"`
	QuoteEscape Char    `yaml:"quoteEscape"`
	EmptyValue  *string `yaml:"emptyValue,omitempty"`
}

// DefaultCSV returns the CSV defaults: comma delimiter, double quote
// quoting and escaping, header present.
func DefaultCSV() CSV {
	return CSV{
		Common:      defaultCommon(true),
		Delimiter:   ',',
		Quote:       '"',
		QuoteEscape: '"',
	}
}

func (CSV) Kind() format.Kind { return format.KindCSV }

func (s CSV) validate() error {
	if err := s.Common.validate(); err != nil {
		return err
	}
	if s.Delimiter == 0 {
		return fmt.Errorf("%w: delimiter is required", format.ErrInvalidDescriptor)
	}
	if s.Delimiter == '\n' || s.Delimiter == '\r' {
		return fmt.Errorf("%w: delimiter cannot be a line separator", format.ErrInvalidDescriptor)
	}
	if s.Quote != 0 && s.Quote == s.Delimiter {
		return fmt.Errorf("%w: quote and delimiter must differ", format.ErrInvalidDescriptor)
	}
	return nil
}

// TSV configures tab separated values with backslash style escapes.
type TSV struct {
	Common             `yaml:",inline"`
	EscapeChar         Char `yaml:"escapeChar"`
	EscapedTabChar     Char `yaml:"escapedTabChar"`
	LineJoiningEnabled bool `yaml:"lineJoiningEnabled"`
}

// DefaultTSV returns the TSV defaults: backslash escapes, \t for a tab,
// header present.
func DefaultTSV() TSV {
	return TSV{
		Common:         defaultCommon(true),
		EscapeChar:     '\\',
		EscapedTabChar: 't',
	}
}

func (TSV) Kind() format.Kind { return format.KindTSV }

func (s TSV) validate() error {
	if err := s.Common.validate(); err != nil {
		return err
	}
	if s.EscapeChar == '\t' {
		return fmt.Errorf("%w: escapeChar cannot be a tab", format.ErrInvalidDescriptor)
	}
	return nil
}

// Column is one fixed-width column: characters [Start, End) of a line.
type Column struct {
	Name  string `yaml:"name"`
	Start int    `yaml:"start"`
	End   int    `yaml:"end"`
}

// FWF configures fixed-width files.
type FWF struct {
	Common      `yaml:",inline"`
	Columns     []Column `yaml:"columns"`
	Padding     Char     `yaml:"padding"`
	KeepPadding bool     `yaml:"keepPadding"`
}

// DefaultFWF returns the fixed-width defaults: space padding, no header.
func DefaultFWF() FWF {
	return FWF{
		Common:  defaultCommon(false),
		Padding: ' ',
	}
}

func (FWF) Kind() format.Kind { return format.KindFWF }

func (s FWF) validate() error {
	if err := s.Common.validate(); err != nil {
		return err
	}
	if len(s.Columns) == 0 {
		return fmt.Errorf("%w: fixed-width format needs at least one column", format.ErrInvalidDescriptor)
	}
	seen := make(map[string]bool, len(s.Columns))
	for i, c := range s.Columns {
		if c.Name == "" {
			return fmt.Errorf("%w: column %d has no name", format.ErrInvalidDescriptor, i)
		}
		if seen[c.Name] {
			return fmt.Errorf("%w: duplicate column %q", format.ErrInvalidDescriptor, c.Name)
		}
		seen[c.Name] = true
		if c.Start < 0 {
			return fmt.Errorf("%w: column %q: start must be >= 0, got %d", format.ErrInvalidDescriptor, c.Name, c.Start)
		}
		if c.End <= c.Start {
			return fmt.Errorf("%w: column %q: end (%d) must be greater than start (%d)", format.ErrInvalidDescriptor, c.Name, c.End, c.Start)
		}
	}
	return nil
}
