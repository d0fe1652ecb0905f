// Package discovery runs the resolution pipeline without failing and
// reports what a source descriptor would produce.
package discovery

import (
	"context"
	"errors"
	"strconv"

	"source-resolver/core/descriptor"
	"source-resolver/core/materialize"
	"source-resolver/core/record"
	"source-resolver/core/resolver"
	"source-resolver/core/verify"

	"go.uber.org/zap"
)

// Options tunes discovery.
type Options struct {
	// SampleRecords is the number of records read per table. Zero skips
	// sampling.
	SampleRecords int
	Logger        *zap.Logger
}

// Table is a table discovery found.
type Table struct {
	Name     string              `json:"name"`
	Strategy descriptor.Strategy `json:"strategy,omitempty"`
	Readers  []string            `json:"readers"`
	Blobs    []string            `json:"blobs"`
	Schema   []record.Field      `json:"schema,omitempty"`
	Samples  []map[string]any    `json:"samples,omitempty"`
}

// Result is the outcome of discovering one source.
type Result struct {
	Source        string        `json:"source"`
	Tables        []Table       `json:"tables"`
	Report        verify.Report `json:"report"`
	BlobCount     int           `json:"blobCount"`
	UnmappedCount int           `json:"unmappedCount"`
}

// OK reports whether discovery found no errors.
func (r Result) OK() bool { return r.Report.OK() }

// Table returns the named table.
func (r Result) Table(name string) (Table, bool) {
	for _, t := range r.Tables {
		if t.Name == name {
			return t, true
		}
	}
	return Table{}, false
}

// Discover verifies d, materializes it with m and inspects its storage.
// Every failure is recorded in the report; the materialized source is
// closed before returning.
func Discover(ctx context.Context, d *descriptor.Source, m *materialize.Materializer, opts Options) Result {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	res := Result{Source: d.Name}
	res.Report.Merge(d.Verify())
	if res.Report.HasErrors() {
		return res
	}

	src, err := m.Materialize(ctx, d)
	if err != nil {
		res.Report.Errorf(verify.PhaseReader, "materialization failed: %v", err)
		return res
	}
	defer func() {
		if err := src.Close(); err != nil {
			logger.Warn("Failed to close source", zap.String("source", d.Name), zap.Error(err))
		}
	}()

	discover(ctx, src, opts, &res)
	logger.Debug("Discovered source",
		zap.String("source", d.Name),
		zap.Int("tables", len(res.Tables)),
		zap.Int("issues", len(res.Report.Issues)),
	)
	return res
}

// DiscoverSource inspects an already materialized source. The caller keeps
// ownership of src.
func DiscoverSource(ctx context.Context, src *materialize.Source, opts Options) Result {
	res := Result{Source: src.Name}
	discover(ctx, src, opts, &res)
	return res
}

func discover(ctx context.Context, src *materialize.Source, opts Options, res *Result) {
	plan, err := resolver.NewPlan(ctx, src)
	if err != nil {
		res.Report.Errorf(verify.PhaseStorage, "failed to list blobs: %v", err)
		return
	}

	res.BlobCount = len(plan.Blobs)
	res.UnmappedCount = plan.Unmapped
	if len(plan.Blobs) == 0 {
		res.Report.Infof(verify.PhaseStorage, "storage is empty, no blobs found")
		return
	}
	res.Report.Infof(verify.PhaseStorage, "storage contains %d blob(s)", len(plan.Blobs))
	if plan.Unmapped > 0 {
		res.Report.Infof(verify.PhaseTableMapping, "%d blob(s) did not match any reader's table mapping", plan.Unmapped)
	}

	for _, g := range plan.Groups() {
		strategy, err := resolver.Check(g, src.Conflicts)
		if err != nil {
			res.Report.Add(verify.SeverityError, verify.PhaseConflict, err.Error(), "tableName", g.Name)
			continue
		}
		res.Tables = append(res.Tables, inspect(ctx, src, g, strategy, opts, &res.Report))
	}

	reportUnusedRules(plan, src.Conflicts, &res.Report)
}

func inspect(ctx context.Context, src *materialize.Source, g resolver.Group, strategy descriptor.Strategy, opts Options, report *verify.Report) Table {
	t := Table{Name: g.Name, Readers: g.Contributors()}
	if len(g.Entries) > 1 {
		t.Strategy = strategy
	}
	for _, e := range g.Entries {
		for _, b := range e.Blobs {
			t.Blobs = append(t.Blobs, b.URI)
		}
	}

	table, err := resolver.BuildGroup(ctx, src, g)
	if err != nil {
		report.Add(verify.SeverityError, verify.PhaseSchema,
			"table '"+g.Name+"': "+err.Error(), "tableName", g.Name)
		return t
	}
	t.Schema = table.Schema().Fields()

	if opts.SampleRecords <= 0 {
		return t
	}
	samples, err := record.CollectN(ctx, table, opts.SampleRecords)
	if err != nil {
		report.Add(verify.SeverityWarning, verify.PhaseSchema,
			"table '"+g.Name+"': failed to read sample records: "+err.Error(), "tableName", g.Name)
	}
	for _, r := range samples {
		t.Samples = append(t.Samples, r.Map())
	}
	return t
}

// reportUnusedRules warns about conflict rules naming a table no reader
// produces.
func reportUnusedRules(plan *resolver.Plan, conflicts descriptor.Conflicts, report *verify.Report) {
	produced := make(map[string]bool, len(plan.Entries))
	for _, e := range plan.Entries {
		produced[e.Table] = true
	}
	for _, name := range conflicts.RuleNames() {
		if !produced[name] {
			report.Add(verify.SeverityWarning, verify.PhaseConflict,
				"conflict rule for '"+name+"' does not match any discovered table", "tableName", name)
		}
	}
}

// Counts summarizes a report by severity.
func Counts(r verify.Report) map[verify.Severity]int {
	out := make(map[verify.Severity]int, 3)
	for _, i := range r.Issues {
		out[i.Severity]++
	}
	return out
}

// Err returns the report's errors joined, or nil.
func Err(r verify.Report) error {
	var errs []error
	for i, issue := range r.Filter(verify.SeverityError) {
		errs = append(errs, errors.New(strconv.Itoa(i+1)+". "+issue.String()))
	}
	return errors.Join(errs...)
}
