package format_test

import (
	"context"
	"testing"

	"source-resolver/core/blob"
	"source-resolver/core/format"
	"source-resolver/core/record"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

type jsonDesc struct {
	Pretty bool `yaml:"pretty"`
}

func (jsonDesc) Kind() format.Kind { return "json" }

type jsonHandler struct{}

func (jsonHandler) InferSchema(context.Context, blob.Path, blob.Source) (record.Schema, error) {
	return record.StringSchema("doc")
}

func (jsonHandler) CreateRecordSource(_ blob.Path, _ blob.Source, s record.Schema) record.Source {
	return record.Empty(s)
}

func jsonFactory() format.Factory {
	return format.Factory{
		Decode: func(node *yaml.Node) (format.Descriptor, error) {
			var d jsonDesc
			if node != nil {
				if err := node.Decode(&d); err != nil {
					return nil, err
				}
			}
			return d, nil
		},
		New: func(format.Descriptor) (format.Handler, error) { return jsonHandler{}, nil },
	}
}

func node(t *testing.T, src string) *yaml.Node {
	t.Helper()
	var doc yaml.Node
	require.NoError(t, yaml.Unmarshal([]byte(src), &doc))
	return doc.Content[0]
}

func TestRegistry(t *testing.T) {
	reg := format.NewRegistry()
	require.NoError(t, reg.Register("json", jsonFactory()))

	t.Run("DuplicateKind", func(t *testing.T) {
		assert.Error(t, reg.Register("json", jsonFactory()))
	})

	t.Run("IncompleteFactory", func(t *testing.T) {
		assert.Error(t, reg.Register("xml", format.Factory{}))
	})

	t.Run("Decode", func(t *testing.T) {
		desc, err := reg.Decode(node(t, "type: JSON\npretty: true\n"))
		require.NoError(t, err)
		assert.Equal(t, jsonDesc{Pretty: true}, desc)

		h, err := reg.Handler(desc)
		require.NoError(t, err)
		assert.IsType(t, jsonHandler{}, h)
	})

	t.Run("UnknownKind", func(t *testing.T) {
		_, err := reg.Decode(node(t, "type: parquet\n"))
		assert.ErrorIs(t, err, format.ErrUnknownKind)
		assert.Contains(t, err.Error(), "json")
	})

	t.Run("MissingType", func(t *testing.T) {
		_, err := reg.Decode(node(t, "pretty: true\n"))
		assert.ErrorIs(t, err, format.ErrInvalidDescriptor)
	})

	t.Run("NilNode", func(t *testing.T) {
		_, err := reg.Decode(nil)
		assert.ErrorIs(t, err, format.ErrInvalidDescriptor)
	})

	assert.Equal(t, []format.Kind{"json"}, reg.Kinds())
}
