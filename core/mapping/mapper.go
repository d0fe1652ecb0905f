package mapping

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"source-resolver/core/blob"
)

// DefaultGroup is the capture group used by Regex when none is given.
const DefaultGroup = "table"

var (
	// ErrInvalidDepth is returned by NewDirectory for a depth below one.
	ErrInvalidDepth = errors.New("directory depth must be >= 1")
	// ErrInvalidPattern is returned for patterns that do not compile.
	ErrInvalidPattern = errors.New("invalid pattern")
)

// Mapper maps a blob to a table name. ok is false when the blob belongs to no table.
type Mapper interface {
	MapToTable(p blob.Path) (table string, ok bool)
}

// Regex extracts the table name from a named capture group.
type Regex struct {
	re    *regexp.Regexp
	group string
	index int
}

// NewRegex compiles pattern. An empty group selects DefaultGroup. A pattern
// without the group compiles but never maps anything.
func NewRegex(pattern, group string) (*Regex, error) {
	if group == "" {
		group = DefaultGroup
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidPattern, pattern, err)
	}
	return &Regex{re: re, group: group, index: re.SubexpIndex(group)}, nil
}

// HasGroup reports whether the pattern defines the capture group.
func (m *Regex) HasGroup() bool { return m.index >= 0 }

func (m *Regex) Group() string { return m.group }

func (m *Regex) String() string { return "regex(" + m.re.String() + ")" }

func (m *Regex) MapToTable(p blob.Path) (string, bool) {
	if m.index < 0 {
		return "", false
	}
	match := m.re.FindStringSubmatch(p.Path)
	if match == nil || match[m.index] == "" {
		return "", false
	}
	return match[m.index], true
}

// Directory names the table after an ancestor directory of the blob.
type Directory struct {
	depth int
}

// NewDirectory returns a mapper that uses the directory depth levels above
// the blob; depth 1 is the immediate parent.
func NewDirectory(depth int) (*Directory, error) {
	if depth < 1 {
		return nil, fmt.Errorf("%w, got %d", ErrInvalidDepth, depth)
	}
	return &Directory{depth: depth}, nil
}

func (m *Directory) Depth() int { return m.depth }

func (m *Directory) String() string { return fmt.Sprintf("directory(depth=%d)", m.depth) }

func (m *Directory) MapToTable(p blob.Path) (string, bool) {
	segments := strings.FieldsFunc(p.Path, func(r rune) bool { return r == '/' })
	i := len(segments) - 1 - m.depth
	if i < 0 {
		return "", false
	}
	return segments[i], true
}

// Glob assigns a fixed table to every blob matching a glob expression.
type Glob struct {
	pattern string
	table   string
	re      *regexp.Regexp
}

// NewGlob compiles a glob. Supported syntax: "**/" (zero or more
// directories), "**" (anything), "*" and "?" (within one segment),
// "{a,b}" alternatives and "[abc]" classes. The glob must match a suffix of
// the path that starts at a "/" boundary.
func NewGlob(pattern, table string) (*Glob, error) {
	if strings.TrimSpace(table) == "" {
		return nil, errors.New("glob mapper requires a table name")
	}
	re, err := regexp.Compile(globToRegexp(pattern))
	if err != nil {
		return nil, fmt.Errorf("%w: glob %q: %v", ErrInvalidPattern, pattern, err)
	}
	return &Glob{pattern: pattern, table: table, re: re}, nil
}

func (m *Glob) String() string { return "glob(" + m.pattern + ")" }

func (m *Glob) MapToTable(p blob.Path) (string, bool) {
	if !m.re.MatchString(p.Path) {
		return "", false
	}
	return m.table, true
}

func globToRegexp(glob string) string {
	var sb strings.Builder
	for i := 0; i < len(glob); {
		c := glob[i]
		switch {
		case c == '*' && i+1 < len(glob) && glob[i+1] == '*':
			if i+2 < len(glob) && glob[i+2] == '/' {
				sb.WriteString("(?:.*/)?")
				i += 3
			} else {
				sb.WriteString(".*")
				i += 2
			}
		case c == '*':
			sb.WriteString("[^/]*")
			i++
		case c == '?':
			sb.WriteString("[^/]")
			i++
		case c == '{':
			end := strings.IndexByte(glob[i:], '}')
			if end < 0 {
				sb.WriteString(`\{`)
				i++
				continue
			}
			alts := strings.Split(glob[i+1:i+end], ",")
			for j, a := range alts {
				alts[j] = regexp.QuoteMeta(a)
			}
			sb.WriteString("(?:" + strings.Join(alts, "|") + ")")
			i += end + 1
		case c == '[':
			end := strings.IndexByte(glob[i:], ']')
			if end < 0 {
				sb.WriteString(`\[`)
				i++
				continue
			}
			sb.WriteString(glob[i : i+end+1])
			i += end + 1
		default:
			sb.WriteString(regexp.QuoteMeta(string(c)))
			i++
		}
	}
	return "(?:^|/)" + sb.String() + "$"
}
