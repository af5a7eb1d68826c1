package jsonschema

import (
	"bytes"
	"fmt"
	"sort"

	gojson "github.com/goccy/go-json"
	v6 "github.com/santhosh-tekuri/jsonschema/v6"
)

const resourceURL = "polyskema://schema.json"

// Compiled is a JSON Schema document compiled by the reference validator.
type Compiled struct {
	schema *v6.Schema
}

// Compile converts s into a generic JSON document and compiles it with
// santhosh-tekuri/jsonschema. A document that does not compile is a bug in the
// exporter, not in the caller's data.
func Compile(s *Schema) (*Compiled, error) {
	if s == nil {
		return nil, fmt.Errorf("jsonschema: nil schema")
	}
	raw, err := gojson.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	doc, err := v6.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("unmarshal schema: %w", err)
	}
	c := v6.NewCompiler()
	c.DefaultDraft(v6.Draft2020)
	if err := c.AddResource(resourceURL, doc); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}
	compiled, err := c.Compile(resourceURL)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &Compiled{schema: compiled}, nil
}

// Validate checks a decoded JSON value (map[string]any, []any, json.Number,
// float64, string, bool, nil) against the compiled document.
func (c *Compiled) Validate(v any) error {
	return c.schema.Validate(v)
}

// Check compiles s and validates every document in docs against it, including
// the examples embedded in s.
func Check(s *Schema, docs ...any) error {
	c, err := Compile(s)
	if err != nil {
		return err
	}
	all := append(append([]any{}, collectExamples(s)...), docs...)
	for i, d := range all {
		norm, err := roundTrip(d)
		if err != nil {
			return fmt.Errorf("document %d: %w", i, err)
		}
		if err := c.Validate(norm); err != nil {
			return fmt.Errorf("document %d: %w", i, err)
		}
	}
	return nil
}

func collectExamples(s *Schema) []any {
	if s == nil {
		return nil
	}
	out := append([]any{}, s.Examples...)
	for _, m := range s.OneOf {
		out = append(out, collectExamples(m)...)
	}
	names := make([]string, 0, len(s.Defs))
	for name := range s.Defs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		out = append(out, collectExamples(s.Defs[name])...)
	}
	return out
}

// roundTrip re-decodes a Go value through JSON so that typed slices and
// numbers reach the validator in their JSON form.
func roundTrip(v any) (any, error) {
	raw, err := gojson.Marshal(v)
	if err != nil {
		return nil, err
	}
	return v6.UnmarshalJSON(bytes.NewReader(raw))
}
