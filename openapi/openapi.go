// Package openapi projects a registry union onto OpenAPI 3.0 components with
// kin-openapi. Each member becomes a component schema named by its tag; the
// union itself is a oneOf over component references with a discriminator
// mapping, which is the form OpenAPI code generators understand.
package openapi

import (
	"context"
	"fmt"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	js "github.com/reoring/polyskema/jsonschema"
	"github.com/reoring/polyskema/registry"
)

// Version is the OpenAPI version stamped on documents.
const Version = "3.0.3"

// ComponentRef returns the reference to the component schema name.
func ComponentRef(name string) string { return "#/components/schemas/" + name }

// Components returns one component schema per union member, plus the union
// itself under name.
func Components(u *registry.Union, name string) (openapi3.Schemas, error) {
	if u == nil {
		return nil, fmt.Errorf("openapi: nil union")
	}
	if name == "" {
		return nil, fmt.Errorf("openapi: union component needs a name")
	}
	s, err := u.JSONSchema()
	if err != nil {
		return nil, err
	}
	out := make(openapi3.Schemas, len(s.Defs)+1)
	union := &openapi3.Schema{
		Title:       s.Title,
		Description: s.Description,
		Discriminator: &openapi3.Discriminator{
			PropertyName: u.DiscriminatorField(),
			Mapping:      make(openapi3.StringMap, u.Len()),
		},
	}
	for _, tag := range u.Tags() {
		if tag == name {
			return nil, fmt.Errorf("openapi: union name %q collides with a member", name)
		}
		member := convert(s.Defs[tag])
		markNullable(member)
		ref := openapi3.NewSchemaRef(ComponentRef(tag), member)
		out[tag] = openapi3.NewSchemaRef("", member)
		union.OneOf = append(union.OneOf, ref)
		union.Discriminator.Mapping[tag] = ComponentRef(tag)
	}
	out[name] = openapi3.NewSchemaRef("", union)
	return out, nil
}

// Document wraps Components in a minimal OpenAPI document without paths.
func Document(u *registry.Union, name, title, version string) (*openapi3.T, error) {
	schemas, err := Components(u, name)
	if err != nil {
		return nil, err
	}
	comps := openapi3.NewComponents()
	comps.Schemas = schemas
	return &openapi3.T{
		OpenAPI:    Version,
		Info:       &openapi3.Info{Title: title, Version: version},
		Paths:      openapi3.NewPaths(),
		Components: &comps,
	}, nil
}

// Validate runs the kin-openapi document checks, member examples included.
func Validate(ctx context.Context, doc *openapi3.T) error {
	if err := doc.Validate(ctx); err != nil {
		return fmt.Errorf("openapi: %w", err)
	}
	return nil
}

// convert maps the JSON Schema subset polyskema exports onto an OpenAPI 3.0
// schema. Keywords 3.0 lacks are approximated: const becomes a one-value
// enum and prefixItems become bounded arrays.
func convert(s *js.Schema) *openapi3.Schema {
	if s == nil {
		return openapi3.NewSchema()
	}
	out := &openapi3.Schema{
		Title:       s.Title,
		Description: s.Description,
		Format:      s.Format,
		Default:     s.Default,
		Min:         s.Minimum,
		Max:         s.Maximum,
	}
	if s.Type != "" {
		out.Type = &openapi3.Types{s.Type}
	}
	if s.Const != nil {
		out.Enum = []any{s.Const}
	} else if len(s.Enum) > 0 {
		out.Enum = append([]any(nil), s.Enum...)
	}
	if len(s.Examples) > 0 {
		out.Example = s.Examples[0]
	}
	if len(s.Properties) > 0 {
		out.Properties = make(openapi3.Schemas, len(s.Properties))
		for k, p := range s.Properties {
			out.Properties[k] = openapi3.NewSchemaRef("", convert(p))
		}
	}
	out.Required = append([]string(nil), s.Required...)
	switch ap := s.AdditionalProperties.(type) {
	case bool:
		out.AdditionalProperties = openapi3.AdditionalProperties{Has: &ap}
	case *js.Schema:
		out.AdditionalProperties = openapi3.AdditionalProperties{Schema: openapi3.NewSchemaRef("", convert(ap))}
	}
	if s.Items != nil {
		out.Items = openapi3.NewSchemaRef("", convert(s.Items))
	}
	if len(s.PrefixItems) > 0 {
		n := uint64(len(s.PrefixItems))
		out.MinItems, out.MaxItems = n, &n
		out.Items = openapi3.NewSchemaRef("", openapi3.NewSchema())
	}
	if s.MinItems != nil {
		out.MinItems = uint64(*s.MinItems)
	}
	if s.MaxItems != nil {
		n := uint64(*s.MaxItems)
		out.MaxItems = &n
	}
	for _, o := range s.OneOf {
		out.OneOf = append(out.OneOf, openapi3.NewSchemaRef(refName(o.Ref), convert(o)))
	}
	if s.Discriminator != nil {
		out.Discriminator = &openapi3.Discriminator{PropertyName: s.Discriminator.PropertyName}
		if len(s.Discriminator.Mapping) > 0 {
			out.Discriminator.Mapping = make(openapi3.StringMap, len(s.Discriminator.Mapping))
			for k, v := range s.Discriminator.Mapping {
				out.Discriminator.Mapping[k] = refName(v)
			}
		}
	}
	return out
}

func refName(ref string) string {
	if name, ok := strings.CutPrefix(ref, "#/$defs/"); ok {
		return ComponentRef(name)
	}
	return ref
}

// markNullable flags properties whose example value is null; 3.0 has no null
// type and would otherwise reject the example.
func markNullable(s *openapi3.Schema) {
	ex, ok := s.Example.(map[string]any)
	if !ok {
		return
	}
	for k, v := range ex {
		if p, ok := s.Properties[k]; ok && v == nil && p.Value != nil {
			p.Value.Nullable = true
		}
	}
}
