package resolver

import (
	"context"
	"errors"
	"fmt"

	"source-resolver/core/attribute"
	"source-resolver/core/descriptor"
	"source-resolver/core/materialize"
	"source-resolver/core/record"

	"go.uber.org/zap"
)

// Resolver resolves materialized sources into tables.
type Resolver struct {
	logger *zap.Logger
}

// New creates a resolver. A nil logger discards output.
func New(logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{logger: logger}
}

// Resolve returns the tables of src keyed by final name. The caller keeps
// ownership of src.
func (r *Resolver) Resolve(ctx context.Context, src *materialize.Source) (map[string]record.Source, error) {
	plan, err := NewPlan(ctx, src)
	if err != nil {
		return nil, err
	}

	tables := make(map[string]record.Source)
	for _, g := range plan.Groups() {
		strategy, err := Check(g, src.Conflicts)
		if err != nil {
			r.logger.Warn("Table conflict rejected",
				zap.String("source", src.Name),
				zap.String("table", g.Name),
				zap.Strings("readers", g.Contributors()),
			)
			return nil, err
		}

		table, err := BuildGroup(ctx, src, g)
		if err != nil {
			return nil, err
		}
		tables[g.Name] = table

		r.logger.Debug("Resolved table",
			zap.String("source", src.Name),
			zap.String("table", g.Name),
			zap.Int("contributors", len(g.Entries)),
			zap.String("strategy", string(strategy)),
			zap.Stringer("schema", table.Schema()),
		)
	}

	r.logger.Info("Resolved source",
		zap.String("source", src.Name),
		zap.Int("blobs", len(plan.Blobs)),
		zap.Int("unmapped", plan.Unmapped),
		zap.Int("tables", len(tables)),
	)
	return tables, nil
}

// ResolveDescriptor materializes d and resolves it. The returned source
// owns the storage; it is closed here when resolution fails.
func (r *Resolver) ResolveDescriptor(ctx context.Context, d *descriptor.Source, m *materialize.Materializer) (*ResolvedSource, error) {
	src, err := m.Materialize(ctx, d)
	if err != nil {
		return nil, err
	}
	tables, err := r.Resolve(ctx, src)
	if err != nil {
		if cerr := src.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("failed to close source %s: %w", src.Name, cerr))
		}
		return nil, err
	}
	return NewResolvedSource(src, tables), nil
}

// BuildGroup builds the table of g by concatenating its entries in order.
// Every entry must yield the same schema.
func BuildGroup(ctx context.Context, src *materialize.Source, g Group) (record.Source, error) {
	parts := make([]record.Source, 0, len(g.Entries))
	for _, e := range g.Entries {
		part, err := buildEntry(ctx, src, e)
		if err != nil {
			return nil, fmt.Errorf("table %s: %w", g.Name, err)
		}
		parts = append(parts, part)
	}

	schema := parts[0].Schema()
	for i, p := range parts[1:] {
		if !p.Schema().Equal(schema) {
			return nil, fmt.Errorf("table %s: %w: %s has %s, %s has %s", g.Name, ErrSchemaMismatch,
				g.Entries[0].Reader, schema, g.Entries[i+1].Reader, p.Schema())
		}
	}
	return record.Concat(schema, parts...), nil
}

// buildEntry infers the schema from the first blob of e and concatenates
// one enriched record source per blob.
func buildEntry(ctx context.Context, src *materialize.Source, e Entry) (record.Source, error) {
	reader := e.Reader
	base, err := reader.Handler.InferSchema(ctx, e.Blobs[0], src.Storage)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", reader, err)
	}
	schema, err := reader.Attributes.Schema(base)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", reader, err)
	}

	parts := make([]record.Source, len(e.Blobs))
	for i, b := range e.Blobs {
		part := reader.Handler.CreateRecordSource(b, src.Storage, base)
		parts[i] = attribute.Enrich(part, schema, reader.Attributes.Extract(b))
	}
	return record.Concat(schema, parts...), nil
}
