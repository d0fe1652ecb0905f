// Package verify holds the issue and report types produced by descriptor
// verification and source discovery.
package verify

import (
	"fmt"
	"strings"
)

// Severity grades an issue.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Phase names the step that found an issue.
type Phase string

const (
	PhaseDescriptor   Phase = "descriptor"
	PhaseStorage      Phase = "storage"
	PhaseTableMapping Phase = "table_mapping"
	PhaseReader       Phase = "reader"
	PhaseSchema       Phase = "schema"
	PhaseConflict     Phase = "conflict"
)

// Issue is one finding.
type Issue struct {
	Severity Severity          `json:"severity"`
	Phase    Phase             `json:"phase"`
	Message  string            `json:"message"`
	Context  map[string]string `json:"context,omitempty"`
}

func (i Issue) String() string {
	return fmt.Sprintf("[%s] %s: %s", strings.ToUpper(string(i.Severity)), i.Phase, i.Message)
}

// Report is an ordered list of issues.
type Report struct {
	Issues []Issue `json:"issues"`
}

// Add appends an issue built from its parts. ctx is read as key/value pairs.
func (r *Report) Add(sev Severity, phase Phase, msg string, ctx ...string) {
	issue := Issue{Severity: sev, Phase: phase, Message: msg}
	if len(ctx) > 1 {
		issue.Context = make(map[string]string, len(ctx)/2)
		for i := 0; i+1 < len(ctx); i += 2 {
			issue.Context[ctx[i]] = ctx[i+1]
		}
	}
	r.Issues = append(r.Issues, issue)
}

// Errorf appends an error issue.
func (r *Report) Errorf(phase Phase, format string, args ...any) {
	r.Add(SeverityError, phase, fmt.Sprintf(format, args...))
}

// Warnf appends a warning issue.
func (r *Report) Warnf(phase Phase, format string, args ...any) {
	r.Add(SeverityWarning, phase, fmt.Sprintf(format, args...))
}

// Infof appends an informational issue.
func (r *Report) Infof(phase Phase, format string, args ...any) {
	r.Add(SeverityInfo, phase, fmt.Sprintf(format, args...))
}

// Merge appends the issues of other.
func (r *Report) Merge(other Report) {
	r.Issues = append(r.Issues, other.Issues...)
}

// Filter returns the issues with the given severity.
func (r Report) Filter(sev Severity) []Issue {
	var out []Issue
	for _, i := range r.Issues {
		if i.Severity == sev {
			out = append(out, i)
		}
	}
	return out
}

// HasErrors reports whether any issue is an error.
func (r Report) HasErrors() bool {
	return len(r.Filter(SeverityError)) > 0
}

// OK reports whether the report has no errors.
func (r Report) OK() bool { return !r.HasErrors() }
