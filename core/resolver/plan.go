package resolver

import (
	"context"
	"fmt"

	"source-resolver/core/blob"
	"source-resolver/core/descriptor"
	"source-resolver/core/materialize"
)

// CandidateName returns the name a reader's table is published under. A
// label suffixes the table unless conflicts holds a rule for the bare name.
func CandidateName(table, label string, conflicts descriptor.Conflicts) string {
	if label == "" || conflicts.HasRule(table) {
		return table
	}
	return table + "_" + label
}

// Entry is the contribution of one reader to one table.
type Entry struct {
	// Table is the name produced by the mapper.
	Table string
	// Name is the candidate name after labelling.
	Name   string
	Reader materialize.Reader
	// Blobs are the blobs mapped to Table, in listing order.
	Blobs []blob.Path
}

// Group is the set of entries sharing a candidate name.
type Group struct {
	Name    string
	Entries []Entry
}

// Contributors describes the readers of the group.
func (g Group) Contributors() []string {
	out := make([]string, len(g.Entries))
	for i, e := range g.Entries {
		out[i] = e.Reader.String()
	}
	return out
}

// Plan is the result of listing and mapping a source.
type Plan struct {
	Blobs   []blob.Path
	Entries []Entry
	// Unmapped counts blobs no reader mapped to a table.
	Unmapped int
}

// NewPlan lists the storage once and maps every blob with every reader.
func NewPlan(ctx context.Context, src *materialize.Source) (*Plan, error) {
	blobs, err := src.Storage.ListBlobs(ctx)
	if err != nil {
		return nil, fmt.Errorf("source %s: %w", src.Name, err)
	}

	p := &Plan{Blobs: blobs}
	mapped := make([]bool, len(blobs))
	for _, reader := range src.Readers {
		index := make(map[string]int)
		for i, b := range blobs {
			table, ok := reader.Mapper.MapToTable(b)
			if !ok {
				continue
			}
			mapped[i] = true
			if j, seen := index[table]; seen {
				p.Entries[j].Blobs = append(p.Entries[j].Blobs, b)
				continue
			}
			index[table] = len(p.Entries)
			p.Entries = append(p.Entries, Entry{
				Table:  table,
				Name:   CandidateName(table, reader.Label, src.Conflicts),
				Reader: reader,
				Blobs:  []blob.Path{b},
			})
		}
	}
	for _, m := range mapped {
		if !m {
			p.Unmapped++
		}
	}
	return p, nil
}

// Groups returns the entries grouped by candidate name, ordered by the
// first appearance of each name.
func (p *Plan) Groups() []Group {
	var groups []Group
	index := make(map[string]int)
	for _, e := range p.Entries {
		if i, ok := index[e.Name]; ok {
			groups[i].Entries = append(groups[i].Entries, e)
			continue
		}
		index[e.Name] = len(groups)
		groups = append(groups, Group{Name: e.Name, Entries: []Entry{e}})
	}
	return groups
}

// Check applies the conflict policy to g. It returns the strategy used and
// a *ConflictError when the group is rejected. A single entry never
// conflicts.
func Check(g Group, conflicts descriptor.Conflicts) (descriptor.Strategy, error) {
	strategy := conflicts.StrategyFor(g.Name)
	if len(g.Entries) < 2 {
		return strategy, nil
	}
	if strategy == descriptor.Union {
		return strategy, nil
	}
	return strategy, &ConflictError{Table: g.Name, Strategy: strategy, Contributors: g.Contributors()}
}
