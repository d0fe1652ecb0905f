package materialize

import (
	"fmt"
	"sync"

	"source-resolver/core/attribute"
	"source-resolver/core/blob"
	"source-resolver/core/descriptor"
	"source-resolver/core/format"
	"source-resolver/core/mapping"
)

// Reader is a materialized reader.
type Reader struct {
	// Index is the position of the reader in the descriptor.
	Index   int
	Type    string
	Label   string
	Handler format.Handler
	Mapper  mapping.Mapper
	// Attributes is nil when the effective table declares none.
	Attributes *attribute.Extractor
}

// String identifies the reader in messages, e.g. "reader[1] (csv, label=raw)".
func (r Reader) String() string {
	if r.Label != "" {
		return fmt.Sprintf("reader[%d] (%s, label=%s)", r.Index, r.Type, r.Label)
	}
	return fmt.Sprintf("reader[%d] (%s)", r.Index, r.Type)
}

// Source is a materialized source descriptor.
type Source struct {
	Name      string
	Storage   blob.Source
	Readers   []Reader
	Conflicts descriptor.Conflicts

	once     sync.Once
	closeErr error
}

// NewSource assembles a Source from already built parts.
func NewSource(name string, storage blob.Source, readers []Reader, conflicts descriptor.Conflicts) *Source {
	return &Source{Name: name, Storage: storage, Readers: readers, Conflicts: conflicts}
}

// Close closes the storage exactly once and returns its error on every call.
func (s *Source) Close() error {
	s.once.Do(func() {
		if s.Storage != nil {
			s.closeErr = s.Storage.Close()
		}
	})
	return s.closeErr
}
