package materialize

import (
	"context"
	"errors"
	"fmt"

	"source-resolver/core/attribute"
	"source-resolver/core/blob"
	"source-resolver/core/descriptor"
	"source-resolver/core/format"
	"source-resolver/core/format/text"
	"source-resolver/core/storage"

	"go.uber.org/zap"
)

// ErrNoMapping is returned when a reader has no effective table mapping.
var ErrNoMapping = errors.New("reader has no table mapping")

// ErrNoObjectClient is returned for s3 storage when no client factory is set.
var ErrNoObjectClient = errors.New("object storage is not configured")

// Materializer builds runtime sources from descriptors.
type Materializer struct {
	formats      *format.Registry
	objectClient func() (storage.Client, error)
	logger       *zap.Logger
}

// New creates a materializer. objectClient may be nil when no descriptor
// uses s3 storage.
func New(formats *format.Registry, objectClient func() (storage.Client, error), logger *zap.Logger) *Materializer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Materializer{formats: formats, objectClient: objectClient, logger: logger}
}

// DefaultRegistry returns a registry with the text formats registered.
func DefaultRegistry() (*format.Registry, error) {
	reg := format.NewRegistry()
	if err := text.Register(reg); err != nil {
		return nil, err
	}
	return reg, nil
}

// Formats returns the format registry.
func (m *Materializer) Formats() *format.Registry { return m.formats }

// Storage opens the blob storage described by desc.
func (m *Materializer) Storage(ctx context.Context, desc descriptor.Storage) (blob.Source, error) {
	kind, err := desc.Kind()
	if err != nil {
		return nil, err
	}
	switch kind {
	case blob.KindS3:
		if m.objectClient == nil {
			return nil, ErrNoObjectClient
		}
		client, err := m.objectClient()
		if err != nil {
			return nil, fmt.Errorf("failed to create object storage client: %w", err)
		}
		return blob.NewObject(ctx, client, desc.Bucket, desc.Prefix)
	default:
		return blob.NewLocal(desc.RootPath)
	}
}

// Reader materializes the reader at index i. sourceTable is the source
// default, used only when the reader declares no table of its own.
func (m *Materializer) Reader(i int, r descriptor.Reader, sourceTable *descriptor.Table) (Reader, error) {
	table := r.Table
	if table == nil {
		table = sourceTable
	}
	if table == nil || table.Mapping == nil {
		return Reader{}, fmt.Errorf("reader[%d] (%s): %w: neither the reader nor the source defines 'table.mapping'", i, r.Type, ErrNoMapping)
	}

	desc, err := m.formats.DecodeKind(format.ParseKind(r.Type), &r.Format)
	if err != nil {
		return Reader{}, fmt.Errorf("reader[%d]: %w", i, err)
	}
	handler, err := m.formats.Handler(desc)
	if err != nil {
		return Reader{}, fmt.Errorf("reader[%d]: %w", i, err)
	}
	mapper, err := table.Mapping.Build()
	if err != nil {
		return Reader{}, fmt.Errorf("reader[%d]: %w", i, err)
	}

	var extractor *attribute.Extractor
	if len(table.Attributes) > 0 {
		extractor, err = attribute.NewExtractor(table.Attributes)
		if err != nil {
			return Reader{}, fmt.Errorf("reader[%d]: %w", i, err)
		}
	}

	return Reader{
		Index:      i,
		Type:       string(desc.Kind()),
		Label:      r.Label,
		Handler:    handler,
		Mapper:     mapper,
		Attributes: extractor,
	}, nil
}

// Materialize opens the storage and builds every reader. When a reader
// fails the storage is closed again and both errors are reported.
func (m *Materializer) Materialize(ctx context.Context, d *descriptor.Source) (*Source, error) {
	store, err := m.Storage(ctx, d.Storage)
	if err != nil {
		return nil, fmt.Errorf("source %s: %w", d.Name, err)
	}

	readers := make([]Reader, 0, len(d.Readers))
	for i, r := range d.Readers {
		reader, err := m.Reader(i, r, d.Table)
		if err != nil {
			err = fmt.Errorf("source %s: %w", d.Name, err)
			if cerr := store.Close(); cerr != nil {
				err = errors.Join(err, fmt.Errorf("failed to close storage: %w", cerr))
			}
			return nil, err
		}
		readers = append(readers, reader)
	}

	m.logger.Debug("Materialized source",
		zap.String("source", d.Name),
		zap.Int("readers", len(readers)),
	)
	return NewSource(d.Name, store, readers, d.Conflicts), nil
}
