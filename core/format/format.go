package format

import (
	"context"
	"errors"
	"strings"

	"source-resolver/core/blob"
	"source-resolver/core/record"
)

// Kind tags a file format, e.g. "csv".
type Kind string

const (
	KindCSV Kind = "csv"
	KindTSV Kind = "tsv"
	KindFWF Kind = "fwf"
)

// ParseKind normalises a configuration string into a Kind.
func ParseKind(s string) Kind {
	return Kind(strings.ToLower(strings.TrimSpace(s)))
}

var (
	// ErrUnknownKind is returned when no factory is registered for a kind.
	ErrUnknownKind = errors.New("unknown format")
	// ErrInvalidDescriptor is returned when format settings are inconsistent.
	ErrInvalidDescriptor = errors.New("invalid format descriptor")
)

// Descriptor is the decoded configuration of one format.
type Descriptor interface {
	Kind() Kind
}

// Handler infers schemas and reads records for one format.
type Handler interface {
	// InferSchema reads a bounded prefix of the blob and returns its schema.
	InferSchema(ctx context.Context, p blob.Path, src blob.Source) (record.Schema, error)
	// CreateRecordSource returns a lazy source over the blob. Nothing is read
	// until the source is opened.
	CreateRecordSource(p blob.Path, src blob.Source, schema record.Schema) record.Source
}
