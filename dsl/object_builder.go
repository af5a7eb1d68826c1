package dsl

import (
	"context"
	"fmt"

	polyskema "github.com/reoring/polyskema"
	js "github.com/reoring/polyskema/jsonschema"
)

type objectBuilder struct {
	fields        map[string]AnyAdapter
	order         []string
	required      map[string]struct{}
	unknownPolicy polyskema.UnknownPolicy
	unknownTarget string
	title         string
	description   string
	refines       []objRefine
	discriminator string
	variants      []UnionVariant
}

type fieldStep struct {
	b    *objectBuilder
	name string
}

// Object creates a new object builder with safe defaults (UnknownStrict).
// Fields keep their declaration order in parsing, issues and JSON Schema.
func Object() *objectBuilder {
	return &objectBuilder{
		fields:        map[string]AnyAdapter{},
		required:      map[string]struct{}{},
		unknownPolicy: polyskema.UnknownStrict,
	}
}

// Field registers a field with its adapter. Registering the same name twice
// replaces the adapter but keeps the first position.
func (b *objectBuilder) Field(name string, ad AnyAdapter) *fieldStep {
	if _, seen := b.fields[name]; !seen {
		b.order = append(b.order, name)
	}
	b.fields[name] = ad
	return &fieldStep{b: b, name: name}
}

// Required marks the field as required and returns the builder.
func (f *fieldStep) Required() *objectBuilder {
	f.b.required[f.name] = struct{}{}
	return f.b
}

// Optional marks the field as optional (default) and returns the builder.
func (f *fieldStep) Optional() *objectBuilder {
	delete(f.b.required, f.name)
	return f.b
}

// Default sets a default for the current field and exports it to JSON Schema.
// The default is parsed through the field adapter when applied.
func (f *fieldStep) Default(v any) *objectBuilder {
	ad := f.b.fields[f.name]
	ad.applyDefault = func(ctx context.Context) (any, error) { return ad.Parse(ctx, v) }
	ad = ad.mapSchema(func(s *js.Schema) { s.Default = v })
	f.b.fields[f.name] = ad
	delete(f.b.required, f.name)
	return f.b
}

func (f *fieldStep) Field(name string, ad AnyAdapter) *fieldStep    { return f.b.Field(name, ad) }
func (f *fieldStep) Build() (polyskema.Schema[map[string]any], error) { return f.b.Build() }
func (f *fieldStep) MustBuild() polyskema.Schema[map[string]any]      { return f.b.MustBuild() }

// Require marks one or more fields as required.
func (b *objectBuilder) Require(names ...string) *objectBuilder {
	for _, n := range names {
		b.required[n] = struct{}{}
	}
	return b
}

// UnknownStrict sets unknown policy to Strict.
func (b *objectBuilder) UnknownStrict() *objectBuilder {
	b.unknownPolicy = polyskema.UnknownStrict
	b.unknownTarget = ""
	return b
}

// UnknownStrip sets unknown policy to Strip.
func (b *objectBuilder) UnknownStrip() *objectBuilder {
	b.unknownPolicy = polyskema.UnknownStrip
	b.unknownTarget = ""
	return b
}

// UnknownPassthrough sets unknown policy to Passthrough. Unknown keys are kept
// at the top level when target is empty, or collected under target otherwise.
func (b *objectBuilder) UnknownPassthrough(target string) *objectBuilder {
	b.unknownPolicy = polyskema.UnknownPassthrough
	b.unknownTarget = target
	return b
}

// Unknown sets the unknown policy directly.
func (b *objectBuilder) Unknown(p polyskema.UnknownPolicy) *objectBuilder {
	b.unknownPolicy = p
	b.unknownTarget = ""
	return b
}

// Title sets the JSON Schema title.
func (b *objectBuilder) Title(t string) *objectBuilder {
	b.title = t
	return b
}

// Description sets the JSON Schema description.
func (b *objectBuilder) Description(d string) *objectBuilder {
	b.description = d
	return b
}

// Refine adds an object-level refine function. It is executed after defaults
// and field validation.
func (b *objectBuilder) Refine(name string, fn func(context.Context, map[string]any) error) *objectBuilder {
	if fn == nil {
		return b
	}
	b.refines = append(b.refines, objRefine{name: name, fn: fn})
	return b
}

// Discriminator sets the discriminator key for a discriminated union.
func (b *objectBuilder) Discriminator(key string) *objectBuilder {
	b.discriminator = key
	return b
}

// UnionVariant defines a named variant schema for discriminated unions.
type UnionVariant struct {
	name   string
	schema polyskema.Schema[map[string]any]
}

// Variant constructs a UnionVariant.
func Variant(name string, s polyskema.Schema[map[string]any]) UnionVariant {
	return UnionVariant{name: name, schema: s}
}

// Name returns the discriminator value of the variant.
func (v UnionVariant) Name() string { return v.name }

// OneOf registers union variants when a discriminator is set. Variants keep
// their registration order.
func (b *objectBuilder) OneOf(vars ...UnionVariant) *objectBuilder {
	b.variants = append(b.variants, vars...)
	return b
}

// Build validates the builder and returns a Schema.
func (b *objectBuilder) Build() (polyskema.Schema[map[string]any], error) {
	if b.discriminator != "" {
		u, err := newUnion(b.discriminator, b.title, b.description, b.variants)
		if err != nil {
			return nil, err
		}
		return u, nil
	}
	for name := range b.required {
		if _, ok := b.fields[name]; !ok {
			return nil, fmt.Errorf("dsl: required field %q is not declared", name)
		}
	}
	if b.unknownPolicy == polyskema.UnknownPassthrough && b.unknownTarget != "" {
		if _, ok := b.fields[b.unknownTarget]; ok {
			return nil, fmt.Errorf("dsl: passthrough target %q collides with a declared field", b.unknownTarget)
		}
	}
	return &objectSchema{
		fields:        b.fields,
		order:         append([]string(nil), b.order...),
		required:      b.required,
		unknownPolicy: b.unknownPolicy,
		unknownTarget: b.unknownTarget,
		title:         b.title,
		description:   b.description,
		refines:       b.refines,
	}, nil
}

// MustBuild is like Build but panics on error.
func (b *objectBuilder) MustBuild() polyskema.Schema[map[string]any] {
	s, err := b.Build()
	if err != nil {
		panic(err)
	}
	return s
}
