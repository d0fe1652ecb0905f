package descriptor_test

import (
	"os"
	"path/filepath"
	"testing"

	"source-resolver/core/attribute"
	"source-resolver/core/blob"
	"source-resolver/core/descriptor"
	"source-resolver/core/mapping"
	"source-resolver/core/verify"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const airlines = `
name: airlines
storage:
  type: local
  rootPath: /data/airlines
table:
  mapping:
    type: regex
    pattern: '(?<table>[^/]+)\.csv$'
  attributes:
    - name: pipeline
      source: CONSTANT
      value: raw-ingest
conflicts:
  default: UNION
  rules:
    cities: reject
readers:
  - type: csv
    label: raw
    format:
      delimiter: ";"
  - type: tsv
    table:
      mapping:
        kind: directory
        depth: 2
`

func TestParse(t *testing.T) {
	src, err := descriptor.Parse([]byte(airlines))
	require.NoError(t, err)

	assert.Equal(t, "airlines", src.Name)
	kind, err := src.Storage.Kind()
	require.NoError(t, err)
	assert.Equal(t, blob.KindLocal, kind)
	assert.Equal(t, "/data/airlines", src.Storage.RootPath)

	require.NotNil(t, src.Table)
	assert.Equal(t, descriptor.MappingRegex, src.Table.Mapping.Kind)
	require.Len(t, src.Table.Attributes, 1)
	assert.Equal(t, "raw-ingest", src.Table.Attributes[0].Value)

	assert.Equal(t, descriptor.Union, src.Conflicts.DefaultStrategy())
	assert.Equal(t, descriptor.Reject, src.Conflicts.StrategyFor("cities"))
	assert.Equal(t, descriptor.Union, src.Conflicts.StrategyFor("flights"))
	assert.True(t, src.Conflicts.HasRule("cities"))

	require.Len(t, src.Readers, 2)
	assert.Equal(t, "raw", src.Readers[0].Label)
	assert.Equal(t, yaml.MappingNode, src.Readers[0].Format.Kind)
	assert.Equal(t, src.Table, src.EffectiveTable(src.Readers[0]))

	own := src.EffectiveTable(src.Readers[1])
	require.NotNil(t, own)
	assert.Equal(t, descriptor.MappingDirectory, own.Mapping.Kind)
	assert.Empty(t, own.Attributes, "reader table does not inherit source attributes")
	require.NotNil(t, own.Mapping.Depth)
	assert.Equal(t, 2, *own.Mapping.Depth)

	assert.True(t, src.Verify().OK())
}

func TestParse_ConflictShorthand(t *testing.T) {
	src, err := descriptor.Parse([]byte("name: x\nstorage: {rootPath: /tmp}\nconflicts: union\nreaders: [{type: csv}]\n"))
	require.NoError(t, err)
	assert.Equal(t, descriptor.Union, src.Conflicts.DefaultStrategy())
	assert.Empty(t, src.Conflicts.Rules)
}

func TestParse_DefaultsToReject(t *testing.T) {
	src, err := descriptor.Parse([]byte("name: x\nstorage: {rootPath: /tmp}\nreaders: [{type: csv}]\n"))
	require.NoError(t, err)
	assert.Equal(t, descriptor.Reject, src.Conflicts.DefaultStrategy())
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"Malformed", "name: [\n"},
		{"MissingName", "storage: {rootPath: /tmp}\nreaders: [{type: csv}]\n"},
		{"NoReaders", "name: x\nstorage: {rootPath: /tmp}\n"},
		{"BadStrategy", "name: x\nconflicts: merge\nreaders: [{type: csv}]\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := descriptor.Parse([]byte(tt.yaml))
			assert.ErrorIs(t, err, descriptor.ErrInvalid)
		})
	}
}

func TestMapping_Build(t *testing.T) {
	depth := 0
	tests := []struct {
		name    string
		mapping descriptor.Mapping
		want    any
		wantErr error
	}{
		{"Regex", descriptor.Mapping{Kind: "regex", Pattern: `(?<table>\w+)`}, &mapping.Regex{}, nil},
		{"DirectoryDefaultDepth", descriptor.Mapping{Kind: "directory"}, &mapping.Directory{}, nil},
		{"DirectoryZeroDepth", descriptor.Mapping{Kind: "directory", Depth: &depth}, nil, mapping.ErrInvalidDepth},
		{"Glob", descriptor.Mapping{Kind: "glob", Pattern: "**/*.csv", TableName: "all"}, &mapping.Glob{}, nil},
		{"BadRegex", descriptor.Mapping{Kind: "regex", Pattern: "("}, nil, mapping.ErrInvalidPattern},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := tt.mapping.Build()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.want, m)
		})
	}

	_, err := descriptor.Mapping{Kind: "hive"}.Build()
	assert.Error(t, err)
}

func TestVerify(t *testing.T) {
	zero := 0
	src := &descriptor.Source{
		Storage: descriptor.Storage{Type: "s3"},
		Readers: []descriptor.Reader{
			{Type: "csv", Label: "raw"},
			{Type: "csv", Label: "raw", Table: &descriptor.Table{
				Mapping: &descriptor.Mapping{Kind: "directory", Depth: &zero},
			}},
			{Table: &descriptor.Table{
				Mapping: &descriptor.Mapping{Kind: "regex", Pattern: `(?<name>\w+)\.csv`},
				Attributes: []attribute.Descriptor{
					{Name: "year", Source: attribute.SourceRegex, Pattern: `(?<y>\d+)`},
					{Name: "year", Source: attribute.SourceConstant, Value: "x"},
				},
			}},
		},
	}

	report := src.Verify()
	assert.True(t, report.HasErrors())

	messages := make(map[verify.Phase][]string)
	for _, i := range report.Issues {
		messages[i.Phase] = append(messages[i.Phase], i.Message)
	}
	assert.Contains(t, messages[verify.PhaseDescriptor], "source 'name' must not be blank")
	assert.Contains(t, messages[verify.PhaseStorage], "s3 storage requires 'bucket'")
	assert.Len(t, report.Filter(verify.SeverityWarning), 1, "duplicate label reported once")
	assert.Contains(t, messages[verify.PhaseDescriptor], `reader[0] (type="csv") has no table mapping and no source-level default is defined`)
	assert.Contains(t, messages[verify.PhaseReader], "reader[2]: 'type' must not be blank")
	assert.Len(t, messages[verify.PhaseTableMapping], 2, "depth and missing group")
	assert.Contains(t, messages[verify.PhaseDescriptor], `reader[2]: duplicate attribute "year"`)
}

func TestStorage_Verify(t *testing.T) {
	assert.True(t, descriptor.Storage{RootPath: "/data"}.Verify().OK())
	assert.False(t, descriptor.Storage{}.Verify().OK())
	assert.True(t, descriptor.Storage{Type: "S3", Bucket: "landing"}.Verify().OK())
	assert.False(t, descriptor.Storage{Type: "ftp"}.Verify().OK())
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.yaml"), []byte(airlines), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.yml"),
		[]byte("name: logs\nstorage: {rootPath: /tmp}\nreaders: [{type: tsv}]\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))

	sources, err := descriptor.LoadDir(dir)
	require.NoError(t, err)
	require.Len(t, sources, 2)
	assert.Equal(t, "logs", sources[0].Name)
	assert.Equal(t, "airlines", sources[1].Name)

	t.Run("DuplicateNames", func(t *testing.T) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "c.yaml"), []byte(airlines), 0o644))
		_, err := descriptor.LoadDir(dir)
		assert.ErrorIs(t, err, descriptor.ErrInvalid)
	})

	t.Run("MissingFile", func(t *testing.T) {
		_, err := descriptor.Load(filepath.Join(dir, "missing.yaml"))
		assert.Error(t, err)
	})
}

func TestLoad_RelativeRoot(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "local.yaml")
	require.NoError(t, os.WriteFile(path,
		[]byte("name: local\nstorage: {rootPath: data}\nreaders: [{type: csv}]\n"), 0o644))

	src, err := descriptor.Load(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "data"), src.Storage.RootPath)
}
