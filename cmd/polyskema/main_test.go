package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	j "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const testManifest = `
namespace: shapes
config:
  discriminator_field: kind
classes:
  - name: Shape
    abstract: true
    subclasses:
      - name: Circle
        params:
          - {name: radius, type: float}
      - name: Square
        params:
          - {name: side, type: float, default: 1}
  - name: Label
    params:
      - {name: text, type: str, default: hello}
`

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestClassesCmd(t *testing.T) {
	m := writeFile(t, t.TempDir(), "classes.yaml", testManifest)
	out, err := run(t, "-m", m, "classes")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Equal(t, []string{
		"shapes.Shape\tskipped\tabstract-class",
		"  shapes.Circle\tregistered",
		"  shapes.Square\tregistered",
		"shapes.Label\tregistered",
	}, lines)

	out, err = run(t, "-m", m, "classes", "circ")
	require.NoError(t, err)
	assert.Equal(t, "  shapes.Circle\tregistered\n", out)
}

func TestSchemaCmd_JSON(t *testing.T) {
	m := writeFile(t, t.TempDir(), "classes.yaml", testManifest)
	out, err := run(t, "-m", m, "schema", "--check")
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, j.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "https://json-schema.org/draft/2020-12/schema", doc["$schema"])
	assert.Len(t, doc["oneOf"], 3)
	disc := doc["discriminator"].(map[string]any)
	assert.Equal(t, "kind", disc["propertyName"])
	assert.Contains(t, doc["$defs"], "shapes.Label")
}

func TestSchemaCmd_OpenAPI(t *testing.T) {
	m := writeFile(t, t.TempDir(), "classes.yaml", testManifest)
	out, err := run(t, "-m", m, "--set", "title=Shapes", "schema", "-f", "openapi", "--name", "Shape", "--check")
	require.NoError(t, err)
	assert.Contains(t, out, `"#/components/schemas/shapes.Circle"`)

	var doc map[string]any
	require.NoError(t, j.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "3.0.3", doc["openapi"])
	schemas := doc["components"].(map[string]any)["schemas"].(map[string]any)
	assert.Contains(t, schemas, "Shape")
	assert.Contains(t, schemas, "shapes.Label")
}

func TestSchemaCmd_PerRootYAML(t *testing.T) {
	m := writeFile(t, t.TempDir(), "classes.yaml", testManifest)
	out, err := run(t, "-m", m, "schema", "--per-root", "-f", "yaml")
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &doc))
	require.Contains(t, doc, "shapes.Shape")
	require.Contains(t, doc, "shapes.Label")
	shape := doc["shapes.Shape"].(map[string]any)
	assert.Len(t, shape["oneOf"], 2)
	label := doc["shapes.Label"].(map[string]any)
	assert.Len(t, label["oneOf"], 1)
}

func TestSchemaCmd_Errors(t *testing.T) {
	m := writeFile(t, t.TempDir(), "classes.yaml", testManifest)
	_, err := run(t, "-m", m, "schema", "-f", "xml")
	assert.ErrorContains(t, err, "unknown format")

	_, err = run(t, "schema")
	assert.ErrorContains(t, err, "no manifest")

	_, err = run(t, "-m", m, "--root", "Hexagon", "schema")
	assert.ErrorContains(t, err, "Hexagon")
}

func TestValidateCmd(t *testing.T) {
	dir := t.TempDir()
	m := writeFile(t, dir, "classes.yaml", testManifest)
	ok := writeFile(t, dir, "ok.json", `{"kind":"shapes.Circle","radius":1.5}`)
	also := writeFile(t, dir, "also.yml", "kind: shapes.Label\n")
	bad := writeFile(t, dir, "bad.yaml", "kind: shapes.Circle\nradius: big\n")
	unknown := writeFile(t, dir, "unknown.json", `{"kind":"shapes.Hexagon"}`)

	out, err := run(t, "-m", m, "validate", ok, also)
	require.NoError(t, err)
	assert.Contains(t, out, "ok.json: ok (shapes.Circle)")
	assert.Contains(t, out, "also.yml: ok (shapes.Label)")

	out, err = run(t, "-m", m, "validate", ok, bad, unknown)
	assert.ErrorContains(t, err, "2 of 3 document(s) invalid")
	assert.Contains(t, out, "bad.yaml: /radius: invalid_type")
	assert.Contains(t, out, "unknown.json: /kind: discriminator_unknown")
}

func TestExamplesCmd(t *testing.T) {
	m := writeFile(t, t.TempDir(), "classes.yaml", testManifest)
	out, err := run(t, "-m", m, "examples", "a")
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"shapes.Square": {"kind": "shapes.Square", "side": 1},
		"shapes.Label": {"kind": "shapes.Label", "text": "hello"}
	}`, out)

	out, err = run(t, "-m", m, "--probe", "classes")
	require.NoError(t, err)
	assert.Contains(t, out, "shapes.Circle\tskipped\tprobe-failed")
}
