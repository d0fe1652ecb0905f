package resolver_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"source-resolver/core/attribute"
	"source-resolver/core/descriptor"
	"source-resolver/core/format/text"
	"source-resolver/core/materialize"
	"source-resolver/core/record"
	"source-resolver/core/resolver"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

const (
	citiesCSV  = "id,name\n1,Oslo\n2,Bergen\n3,Tromso\n"
	flightsCSV = "id,from,to\n10,OSL,BGO\n11,BGO,TOS\n"
)

func dataDir(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		p := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
	return dir
}

func csvTable(attrs ...attribute.Descriptor) *descriptor.Table {
	return &descriptor.Table{
		Mapping:    &descriptor.Mapping{Kind: descriptor.MappingRegex, Pattern: `(?<table>[^/]+)\.csv$`},
		Attributes: attrs,
	}
}

func resolve(t *testing.T, d *descriptor.Source) (*resolver.ResolvedSource, error) {
	t.Helper()
	reg, err := materialize.DefaultRegistry()
	require.NoError(t, err)
	m := materialize.New(reg, nil, zap.NewNop())
	rs, err := resolver.New(zap.NewNop()).ResolveDescriptor(context.Background(), d, m)
	if rs != nil {
		t.Cleanup(func() { _ = rs.Close() })
	}
	return rs, err
}

func count(t *testing.T, src record.Source) int {
	t.Helper()
	n, err := record.Count(context.Background(), src)
	require.NoError(t, err)
	return n
}

func TestCandidateName(t *testing.T) {
	rules := descriptor.Conflicts{Rules: map[string]descriptor.Strategy{"cities": descriptor.Union}}
	tests := []struct {
		name      string
		label     string
		conflicts descriptor.Conflicts
		want      string
	}{
		{"NoLabelNoRule", "", descriptor.Conflicts{}, "cities"},
		{"LabelNoRule", "raw", descriptor.Conflicts{}, "cities_raw"},
		{"NoLabelRule", "", rules, "cities"},
		{"LabelRule", "raw", rules, "cities"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, resolver.CandidateName("cities", tt.label, tt.conflicts))
		})
	}
}

func TestResolve_SingleReader(t *testing.T) {
	dir := dataDir(t, map[string]string{
		"cities.csv":  citiesCSV,
		"flights.csv": flightsCSV,
		"README.md":   "ignored",
	})
	rs, err := resolve(t, &descriptor.Source{
		Name:    "airlines",
		Storage: descriptor.Storage{RootPath: dir},
		Table:   csvTable(),
		Readers: []descriptor.Reader{{Type: "csv"}},
	})
	require.NoError(t, err)

	assert.Equal(t, "airlines", rs.Name)
	assert.Equal(t, []string{"cities", "flights"}, rs.TableNames())

	cities, ok := rs.Table("cities")
	require.True(t, ok)
	assert.Equal(t, []string{"id", "name"}, cities.Schema().Names())
	assert.Equal(t, 3, count(t, cities))

	_, ok = rs.Table("README")
	assert.False(t, ok)
}

func TestResolve_LabelsKeepReadersApart(t *testing.T) {
	dir := dataDir(t, map[string]string{"cities.csv": citiesCSV})
	rs, err := resolve(t, &descriptor.Source{
		Name:    "airlines",
		Storage: descriptor.Storage{RootPath: dir},
		Table:   csvTable(),
		Readers: []descriptor.Reader{
			{Type: "csv", Label: "raw"},
			{Type: "csv", Label: "processed"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"cities_processed", "cities_raw"}, rs.TableNames())
}

func TestResolve_RejectCollision(t *testing.T) {
	dir := dataDir(t, map[string]string{"cities.csv": citiesCSV})
	_, err := resolve(t, &descriptor.Source{
		Name:    "airlines",
		Storage: descriptor.Storage{RootPath: dir},
		Table:   csvTable(),
		Readers: []descriptor.Reader{{Type: "csv"}, {Type: "csv"}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reject")
	assert.Contains(t, err.Error(), "cities")

	var ce *resolver.ConflictError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "cities", ce.Table)
	assert.Equal(t, descriptor.Reject, ce.Strategy)
	assert.Equal(t, []string{"reader[0] (csv)", "reader[1] (csv)"}, ce.Contributors)
}

func TestResolve_UnionCollision(t *testing.T) {
	dir := dataDir(t, map[string]string{
		"cities.csv": citiesCSV,
		"cities.tsv": "id\tname\n4\tStavanger\n",
	})
	rs, err := resolve(t, &descriptor.Source{
		Name:      "airlines",
		Storage:   descriptor.Storage{RootPath: dir},
		Table:     csvTable(),
		Conflicts: descriptor.Conflicts{Default: descriptor.Union},
		Readers: []descriptor.Reader{
			{Type: "tsv", Table: &descriptor.Table{
				Mapping: &descriptor.Mapping{Kind: descriptor.MappingRegex, Pattern: `(?<table>[^/]+)\.tsv$`},
			}},
			{Type: "csv"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"cities"}, rs.TableNames())

	recs, err := record.Collect(context.Background(), rs.Tables["cities"])
	require.NoError(t, err)
	require.Len(t, recs, 4)
	assert.Equal(t, "Stavanger", recs[0].Value("name"), "reader declaration order")
	assert.Equal(t, "Oslo", recs[1].Value("name"))
}

func TestResolve_UnionSameDataSumsCounts(t *testing.T) {
	dir := dataDir(t, map[string]string{"cities.csv": citiesCSV})
	rs, err := resolve(t, &descriptor.Source{
		Name:      "airlines",
		Storage:   descriptor.Storage{RootPath: dir},
		Table:     csvTable(),
		Conflicts: descriptor.Conflicts{Default: descriptor.Union},
		Readers:   []descriptor.Reader{{Type: "csv"}, {Type: "csv"}},
	})
	require.NoError(t, err)
	assert.Equal(t, 6, count(t, rs.Tables["cities"]))
}

func TestResolve_ExplicitRuleBypassesLabels(t *testing.T) {
	dir := dataDir(t, map[string]string{"cities.csv": citiesCSV, "flights.csv": flightsCSV})
	rs, err := resolve(t, &descriptor.Source{
		Name:    "airlines",
		Storage: descriptor.Storage{RootPath: dir},
		Table:   csvTable(),
		Conflicts: descriptor.Conflicts{
			Default: descriptor.Reject,
			Rules:   map[string]descriptor.Strategy{"cities": descriptor.Union},
		},
		Readers: []descriptor.Reader{
			{Type: "csv", Label: "raw"},
			{Type: "csv", Label: "processed"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"cities", "flights_processed", "flights_raw"}, rs.TableNames())
	assert.Equal(t, 6, count(t, rs.Tables["cities"]))
}

func TestResolve_ExplicitRejectRule(t *testing.T) {
	dir := dataDir(t, map[string]string{"cities.csv": citiesCSV})
	_, err := resolve(t, &descriptor.Source{
		Name:    "airlines",
		Storage: descriptor.Storage{RootPath: dir},
		Table:   csvTable(),
		Conflicts: descriptor.Conflicts{
			Default: descriptor.Union,
			Rules:   map[string]descriptor.Strategy{"cities": descriptor.Reject},
		},
		Readers: []descriptor.Reader{
			{Type: "csv", Label: "raw"},
			{Type: "csv", Label: "processed"},
		},
	})
	var ce *resolver.ConflictError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "cities", ce.Table)
}

func TestResolve_SingleContributorIgnoresStrategy(t *testing.T) {
	dir := dataDir(t, map[string]string{"cities.csv": citiesCSV})
	rs, err := resolve(t, &descriptor.Source{
		Name:    "airlines",
		Storage: descriptor.Storage{RootPath: dir},
		Table:   csvTable(),
		Conflicts: descriptor.Conflicts{
			Rules: map[string]descriptor.Strategy{"cities": descriptor.Reject},
		},
		Readers: []descriptor.Reader{{Type: "csv", Label: "raw"}},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"cities"}, rs.TableNames())
}

func TestResolve_ConstantAttribute(t *testing.T) {
	dir := dataDir(t, map[string]string{"cities.csv": citiesCSV})
	rs, err := resolve(t, &descriptor.Source{
		Name:    "airlines",
		Storage: descriptor.Storage{RootPath: dir},
		Table: csvTable(attribute.Descriptor{
			Name: "pipeline", Source: attribute.SourceConstant, Value: "raw-ingest",
		}),
		Readers: []descriptor.Reader{{Type: "csv"}},
	})
	require.NoError(t, err)

	cities := rs.Tables["cities"]
	assert.Equal(t, []string{"id", "name", "pipeline"}, cities.Schema().Names())
	recs, err := record.Collect(context.Background(), cities)
	require.NoError(t, err)
	require.Len(t, recs, 3)
	for _, r := range recs {
		assert.Equal(t, "raw-ingest", r.Value("pipeline"))
	}
}

func TestResolve_FilenameAttribute(t *testing.T) {
	dir := dataDir(t, map[string]string{"cities.csv": citiesCSV})
	rs, err := resolve(t, &descriptor.Source{
		Name:    "airlines",
		Storage: descriptor.Storage{RootPath: dir},
		Table: csvTable(attribute.Descriptor{
			Name: "filename", Source: attribute.SourceRegex, Pattern: `(?<file>[^/]+)$`, Group: "file",
		}),
		Readers: []descriptor.Reader{{Type: "csv"}},
	})
	require.NoError(t, err)

	recs, err := record.CollectN(context.Background(), rs.Tables["cities"], 1)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	name, ok := recs[0].Value("filename").(string)
	require.True(t, ok)
	assert.True(t, strings.HasSuffix(name, "cities.csv"))
}

func TestResolve_ReaderTableReplacesDefault(t *testing.T) {
	dir := dataDir(t, map[string]string{"cities.csv": citiesCSV})
	rs, err := resolve(t, &descriptor.Source{
		Name:    "airlines",
		Storage: descriptor.Storage{RootPath: dir},
		Table: csvTable(attribute.Descriptor{
			Name: "pipeline", Source: attribute.SourceConstant, Value: "raw-ingest",
		}),
		Readers: []descriptor.Reader{
			{Type: "csv", Label: "plain", Table: csvTable(attribute.Descriptor{
				Name: "stage", Source: attribute.SourceConstant, Value: "curated",
			})},
			{Type: "csv", Label: "default"},
		},
	})
	require.NoError(t, err)

	plain := rs.Tables["cities_plain"].Schema()
	_, hasPipeline := plain.Lookup("pipeline")
	_, hasStage := plain.Lookup("stage")
	assert.False(t, hasPipeline)
	assert.True(t, hasStage)

	def := rs.Tables["cities_default"].Schema()
	_, hasPipeline = def.Lookup("pipeline")
	_, hasStage = def.Lookup("stage")
	assert.True(t, hasPipeline)
	assert.False(t, hasStage)
}

func TestResolve_EmptyDirectory(t *testing.T) {
	rs, err := resolve(t, &descriptor.Source{
		Name:    "empty",
		Storage: descriptor.Storage{RootPath: t.TempDir()},
		Table:   csvTable(),
		Readers: []descriptor.Reader{{Type: "csv"}},
	})
	require.NoError(t, err)
	assert.Empty(t, rs.Tables)
	assert.Empty(t, rs.TableNames())
}

func TestResolve_DirectoryGroupsBlobs(t *testing.T) {
	dir := dataDir(t, map[string]string{
		"cities/part-001.csv": "id,name\n1,Oslo\n",
		"cities/part-002.csv": "id,name\n2,Bergen\n3,Tromso\n",
		"flights/part-001.csv": flightsCSV,
	})
	rs, err := resolve(t, &descriptor.Source{
		Name:    "airlines",
		Storage: descriptor.Storage{RootPath: dir},
		Table:   &descriptor.Table{Mapping: &descriptor.Mapping{Kind: descriptor.MappingDirectory}},
		Readers: []descriptor.Reader{{Type: "csv"}},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"cities", "flights"}, rs.TableNames())

	recs, err := record.Collect(context.Background(), rs.Tables["cities"])
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, "Oslo", recs[0].Value("name"))
	assert.Equal(t, "Tromso", recs[2].Value("name"))
}

func TestResolve_UnionSchemaMismatch(t *testing.T) {
	dir := dataDir(t, map[string]string{
		"cities.csv": citiesCSV,
		"cities.tsv": "code\tname\nOSL\tOslo\n",
	})
	_, err := resolve(t, &descriptor.Source{
		Name:      "airlines",
		Storage:   descriptor.Storage{RootPath: dir},
		Table:     csvTable(),
		Conflicts: descriptor.Conflicts{Default: descriptor.Union},
		Readers: []descriptor.Reader{
			{Type: "csv"},
			{Type: "tsv", Table: &descriptor.Table{
				Mapping: &descriptor.Mapping{Kind: descriptor.MappingRegex, Pattern: `(?<table>[^/]+)\.tsv$`},
			}},
		},
	})
	assert.ErrorIs(t, err, resolver.ErrSchemaMismatch)
}

func TestResolve_ParseErrorsSurfaceWhenIterating(t *testing.T) {
	dir := dataDir(t, map[string]string{"cities.csv": "id,name\n1,Oslo\n2,Bergen,NO,extra\n"})

	var format yaml.Node
	require.NoError(t, yaml.Unmarshal([]byte("maxColumns: 2\n"), &format))

	rs, err := resolve(t, &descriptor.Source{
		Name:    "airlines",
		Storage: descriptor.Storage{RootPath: dir},
		Table:   csvTable(),
		Readers: []descriptor.Reader{{Type: "csv", Format: *format.Content[0]}},
	})
	require.NoError(t, err)

	_, err = record.Collect(context.Background(), rs.Tables["cities"])
	assert.ErrorIs(t, err, text.ErrTooManyColumns)
}

func TestResolvedSource_Close(t *testing.T) {
	dir := dataDir(t, map[string]string{"cities.csv": citiesCSV})
	rs, err := resolve(t, &descriptor.Source{
		Name:    "airlines",
		Storage: descriptor.Storage{RootPath: dir},
		Table:   csvTable(),
		Readers: []descriptor.Reader{{Type: "csv"}},
	})
	require.NoError(t, err)

	assert.NoError(t, rs.Close())
	assert.NoError(t, rs.Close())

	_, err = record.Collect(context.Background(), rs.Tables["cities"])
	assert.Error(t, err, "storage is released")
}

func TestNewPlan(t *testing.T) {
	dir := dataDir(t, map[string]string{
		"cities.csv":  citiesCSV,
		"flights.csv": flightsCSV,
		"notes.txt":   "x",
	})
	reg, err := materialize.DefaultRegistry()
	require.NoError(t, err)
	src, err := materialize.New(reg, nil, nil).Materialize(context.Background(), &descriptor.Source{
		Name:    "airlines",
		Storage: descriptor.Storage{RootPath: dir},
		Table:   csvTable(),
		Readers: []descriptor.Reader{{Type: "csv", Label: "a"}, {Type: "csv"}},
	})
	require.NoError(t, err)
	defer src.Close()

	plan, err := resolver.NewPlan(context.Background(), src)
	require.NoError(t, err)
	assert.Len(t, plan.Blobs, 3)
	assert.Equal(t, 1, plan.Unmapped)
	require.Len(t, plan.Entries, 4)
	assert.Equal(t, "cities_a", plan.Entries[0].Name)
	assert.Equal(t, "cities", plan.Entries[2].Name)

	groups := plan.Groups()
	require.Len(t, groups, 4)
	for _, g := range groups {
		_, err := resolver.Check(g, src.Conflicts)
		assert.NoError(t, err)
	}
}
