package sources

import (
	"context"
	"errors"
	"fmt"

	"source-resolver/core/descriptor"
	"source-resolver/core/discovery"
	"source-resolver/core/materialize"
	"source-resolver/core/record"
	"source-resolver/core/resolver"

	"go.uber.org/zap"
)

var (
	// ErrSourceNotFound is returned for an unknown source name.
	ErrSourceNotFound = errors.New("source not found")
	// ErrTableNotFound is returned for an unknown table name.
	ErrTableNotFound = errors.New("table not found")
)

// Summary describes a descriptor without resolving it.
type Summary struct {
	Name    string   `json:"name"`
	Storage string   `json:"storage"`
	Readers []string `json:"readers"`
	Cached  bool     `json:"cached"`
}

// TableInfo describes a resolved table.
type TableInfo struct {
	Name   string         `json:"name"`
	Schema []record.Field `json:"schema"`
	Count  *int           `json:"count,omitempty"`
}

// Page holds records read from one table.
type Page struct {
	Source  string           `json:"source"`
	Table   string           `json:"table"`
	Schema  []record.Field   `json:"schema"`
	Limit   int              `json:"limit"`
	Records []map[string]any `json:"records"`
}

// Service resolves the descriptors of a directory.
type Service struct {
	dir          string
	samples      int
	materializer *materialize.Materializer
	resolver     *resolver.Resolver
	cache        *resolver.Cache
	logger       *zap.Logger
}

// NewService creates a new sources service.
func NewService(cfg resolver.Config, m *materialize.Materializer, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		dir:          cfg.DescriptorDir,
		samples:      cfg.SampleRecords,
		materializer: m,
		resolver:     resolver.New(logger),
		cache:        resolver.NewCache(cfg.CacheTTL(), logger),
		logger:       logger,
	}
}

// List returns a summary of every descriptor.
func (s *Service) List() ([]Summary, error) {
	descs, err := descriptor.LoadDir(s.dir)
	if err != nil {
		return nil, err
	}
	cached := make(map[string]bool)
	for _, k := range s.cache.Keys() {
		cached[k] = true
	}
	out := make([]Summary, 0, len(descs))
	for _, d := range descs {
		kind, _ := d.Storage.Kind()
		sum := Summary{Name: d.Name, Storage: string(kind), Cached: cached[d.Name]}
		for i, r := range d.Readers {
			sum.Readers = append(sum.Readers, readerName(i, r))
		}
		out = append(out, sum)
	}
	return out, nil
}

func readerName(i int, r descriptor.Reader) string {
	if r.Label != "" {
		return fmt.Sprintf("reader[%d] (%s, label=%s)", i, r.Type, r.Label)
	}
	return fmt.Sprintf("reader[%d] (%s)", i, r.Type)
}

// Descriptor loads the named descriptor.
func (s *Service) Descriptor(name string) (*descriptor.Source, error) {
	descs, err := descriptor.LoadDir(s.dir)
	if err != nil {
		return nil, err
	}
	for _, d := range descs {
		if d.Name == name {
			return d, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, name)
}

func (s *Service) acquire(ctx context.Context, name string) (*resolver.ResolvedSource, func(), error) {
	return s.cache.Acquire(ctx, name, func(ctx context.Context) (*resolver.ResolvedSource, error) {
		d, err := s.Descriptor(name)
		if err != nil {
			return nil, err
		}
		return s.resolver.ResolveDescriptor(ctx, d, s.materializer)
	})
}

// Tables resolves the named source and describes its tables. With count
// set every table is read to count its records.
func (s *Service) Tables(ctx context.Context, name string, count bool) ([]TableInfo, error) {
	rs, release, err := s.acquire(ctx, name)
	if err != nil {
		return nil, err
	}
	defer release()

	names := rs.TableNames()
	out := make([]TableInfo, 0, len(names))
	for _, n := range names {
		table := rs.Tables[n]
		info := TableInfo{Name: n, Schema: table.Schema().Fields()}
		if count {
			c, err := record.Count(ctx, table)
			if err != nil {
				return nil, fmt.Errorf("failed to count table %s: %w", n, err)
			}
			info.Count = &c
		}
		out = append(out, info)
	}
	return out, nil
}

// Records reads up to limit records of a table.
func (s *Service) Records(ctx context.Context, name, table string, limit int) (*Page, error) {
	rs, release, err := s.acquire(ctx, name)
	if err != nil {
		return nil, err
	}
	defer release()

	src, ok := rs.Table(table)
	if !ok {
		return nil, fmt.Errorf("%w: %s in source %s", ErrTableNotFound, table, name)
	}
	recs, err := record.CollectN(ctx, src, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to read table %s: %w", table, err)
	}

	page := &Page{
		Source:  name,
		Table:   table,
		Schema:  src.Schema().Fields(),
		Limit:   limit,
		Records: make([]map[string]any, 0, len(recs)),
	}
	for _, r := range recs {
		page.Records = append(page.Records, r.Map())
	}
	return page, nil
}

// Verify runs discovery on the named source.
func (s *Service) Verify(ctx context.Context, name string) (*discovery.Result, error) {
	d, err := s.Descriptor(name)
	if err != nil {
		return nil, err
	}
	res := discovery.Discover(ctx, d, s.materializer, discovery.Options{
		SampleRecords: s.samples,
		Logger:        s.logger,
	})
	return &res, nil
}

// Refresh drops the cached resolution of the named source.
func (s *Service) Refresh(name string) {
	s.cache.Invalidate(name)
	s.logger.Info("Invalidated resolved source", zap.String("source", name))
}

// Close releases every cached source.
func (s *Service) Close() error {
	return s.cache.Close()
}
