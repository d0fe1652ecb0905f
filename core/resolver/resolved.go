package resolver

import (
	"sort"
	"sync"

	"source-resolver/core/materialize"
	"source-resolver/core/record"
)

// ResolvedSource is the outcome of resolving one source descriptor.
type ResolvedSource struct {
	Name   string
	Tables map[string]record.Source

	source   *materialize.Source
	once     sync.Once
	closeErr error
}

// NewResolvedSource wraps tables resolved from src. The result owns src.
func NewResolvedSource(src *materialize.Source, tables map[string]record.Source) *ResolvedSource {
	return &ResolvedSource{Name: src.Name, Tables: tables, source: src}
}

// Table returns the named table.
func (r *ResolvedSource) Table(name string) (record.Source, bool) {
	t, ok := r.Tables[name]
	return t, ok
}

// TableNames returns the table names in sorted order.
func (r *ResolvedSource) TableNames() []string {
	names := make([]string, 0, len(r.Tables))
	for n := range r.Tables {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Close releases the storage. Only the first call does work; every call
// returns its result.
func (r *ResolvedSource) Close() error {
	r.once.Do(func() {
		if r.source != nil {
			r.closeErr = r.source.Close()
		}
	})
	return r.closeErr
}
