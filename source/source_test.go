package source_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	polyskema "github.com/reoring/polyskema"
	"github.com/reoring/polyskema/source"
)

func TestJSON_KeepsNumbers(t *testing.T) {
	v, err := source.JSON([]byte(`{"model_type":"shapes.Circle","radius":1.50}`))
	require.NoError(t, err)
	m := v.(map[string]any)
	assert.Equal(t, "shapes.Circle", m["model_type"])
	assert.Equal(t, json.Number("1.50"), m["radius"])
}

func TestJSON_Malformed(t *testing.T) {
	_, err := source.JSON([]byte(`{"radius":`))
	require.Error(t, err)
	assert.True(t, polyskema.HasCode(err, polyskema.CodeParseError))

	_, err = source.JSON([]byte(`{} {}`))
	assert.True(t, polyskema.HasCode(err, polyskema.CodeParseError))
}

func TestYAML_NormalizesKeys(t *testing.T) {
	v, err := source.YAML([]byte("model_type: shapes.Square\nside: 2\nmeta:\n  1: one\n"))
	require.NoError(t, err)
	m := v.(map[string]any)
	assert.Equal(t, 2, m["side"])
	assert.Equal(t, map[string]any{"1": "one"}, m["meta"])
}

func TestDecode_UnknownFormat(t *testing.T) {
	_, err := source.Decode("toml", nil)
	assert.Error(t, err)
}

func TestJSON_DuplicateKeys(t *testing.T) {
	_, err := source.JSON([]byte(`{"model_type":"a","items":[{"x":1},{"x":1,"x":2}],"model_type":"b","a/b":{"k":1,"k":2}}`))
	require.Error(t, err)
	iss, ok := polyskema.AsIssues(err)
	require.True(t, ok)
	var paths []string
	for _, it := range iss {
		assert.Equal(t, polyskema.CodeDuplicateKey, it.Code)
		paths = append(paths, it.Path)
	}
	assert.Equal(t, []string{"/items/1/x", "/model_type", "/a~1b/k"}, paths)

	v, err := source.JSONReader(strings.NewReader(`[{"k":1},{"k":2}]`))
	require.NoError(t, err)
	assert.Len(t, v, 2)
}

func TestYAML_DuplicateKeys(t *testing.T) {
	_, err := source.YAML([]byte("side: 1\nside: 2\n"))
	assert.True(t, polyskema.HasCode(err, polyskema.CodeParseError))
}
