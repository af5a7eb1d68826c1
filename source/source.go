// Package source decodes payload documents into the generic values that
// schemas and unions parse: map[string]any, []any, string, bool, nil and
// json.Number for JSON numbers.
package source

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	j "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	polyskema "github.com/reoring/polyskema"
)

// Format names a document encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// JSON decodes a single JSON document. Numbers are kept as json.Number so no
// precision is lost before a schema decides how to read them. Objects that
// repeat a member name are rejected with duplicate_key issues.
func JSON(b []byte) (any, error) {
	dec := j.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, parseIssue(FormatJSON, err)
	}
	// trailing data after the first document
	var extra any
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		if err == nil {
			err = errors.New("unexpected data after top-level value")
		}
		return nil, parseIssue(FormatJSON, err)
	}
	if iss := duplicateKeys(b); len(iss) > 0 {
		return nil, iss
	}
	return v, nil
}

// JSONReader reads r to the end and decodes it with JSON.
func JSONReader(r io.Reader) (any, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, parseIssue(FormatJSON, err)
	}
	return JSON(b)
}

// YAML decodes a single YAML document. Mappings with non-string keys are
// converted to map[string]any using the keys' printed form.
func YAML(b []byte) (any, error) {
	var v any
	if err := yaml.Unmarshal(b, &v); err != nil {
		return nil, parseIssue(FormatYAML, err)
	}
	return normalizeYAML(v), nil
}

// Decode dispatches on format.
func Decode(format Format, b []byte) (any, error) {
	switch format {
	case FormatJSON, "":
		return JSON(b)
	case FormatYAML, "yml":
		return YAML(b)
	}
	return nil, fmt.Errorf("source: unsupported format %q", format)
}

func normalizeYAML(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, val := range t {
			t[k] = normalizeYAML(val)
		}
		return t
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = normalizeYAML(val)
		}
		return out
	case []any:
		for i, val := range t {
			t[i] = normalizeYAML(val)
		}
		return t
	}
	return v
}

func parseIssue(format Format, err error) error {
	return polyskema.Issues{polyskema.Issue{
		Path:    "/",
		Code:    polyskema.CodeParseError,
		Message: fmt.Sprintf("malformed %s document: %v", format, err),
		Cause:   err,
	}}
}
