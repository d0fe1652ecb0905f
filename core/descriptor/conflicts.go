package descriptor

import (
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Strategy decides what happens when several readers produce the same table.
type Strategy string

const (
	// Reject fails resolution.
	Reject Strategy = "reject"
	// Union concatenates the contributions in reader order.
	Union Strategy = "union"
)

// ParseStrategy converts a configuration string, case-insensitively. Empty
// means Reject.
func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "reject":
		return Reject, nil
	case "union":
		return Union, nil
	default:
		return "", fmt.Errorf("unknown conflict strategy %q: expected reject or union", s)
	}
}

func (s *Strategy) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := ParseStrategy(raw)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*s = parsed
	return nil
}

// Conflicts is the conflict policy of a source. Rules are keyed by the
// bare table name.
type Conflicts struct {
	Default Strategy            `yaml:"default,omitempty" json:"default"`
	Rules   map[string]Strategy `yaml:"rules,omitempty" json:"rules,omitempty"`
}

// UnmarshalYAML accepts either a bare strategy or an object.
func (c *Conflicts) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		var s Strategy
		if err := value.Decode(&s); err != nil {
			return err
		}
		*c = Conflicts{Default: s}
		return nil
	}
	type plain Conflicts
	var p plain
	if err := value.Decode(&p); err != nil {
		return err
	}
	*c = Conflicts(p)
	return nil
}

// DefaultStrategy returns the default, Reject when unset.
func (c Conflicts) DefaultStrategy() Strategy {
	if c.Default == "" {
		return Reject
	}
	return c.Default
}

// HasRule reports whether an explicit rule exists for table.
func (c Conflicts) HasRule(table string) bool {
	_, ok := c.Rules[table]
	return ok
}

// StrategyFor returns the rule for table, else the default.
func (c Conflicts) StrategyFor(table string) Strategy {
	if s, ok := c.Rules[table]; ok && s != "" {
		return s
	}
	return c.DefaultStrategy()
}

// RuleNames returns the tables with explicit rules, sorted.
func (c Conflicts) RuleNames() []string {
	out := make([]string, 0, len(c.Rules))
	for k := range c.Rules {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
