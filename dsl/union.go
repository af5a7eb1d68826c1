package dsl

import (
	"context"
	"fmt"

	polyskema "github.com/reoring/polyskema"
	"github.com/reoring/polyskema/i18n"
	js "github.com/reoring/polyskema/jsonschema"
)

// UnionSchema is a discriminated union over object variants. Variants keep
// their registration order so exported documents are reproducible.
type UnionSchema struct {
	discriminator string
	title         string
	description   string
	variants      []UnionVariant
	index         map[string]int
}

var _ polyskema.Schema[map[string]any] = (*UnionSchema)(nil)

func newUnion(discriminator, title, description string, vars []UnionVariant) (*UnionSchema, error) {
	if len(vars) == 0 {
		return nil, fmt.Errorf("dsl: union on %q has no variants", discriminator)
	}
	u := &UnionSchema{discriminator: discriminator, title: title, description: description, index: make(map[string]int, len(vars))}
	for _, v := range vars {
		if v.name == "" || v.schema == nil {
			return nil, fmt.Errorf("dsl: union on %q has an empty variant", discriminator)
		}
		if _, dup := u.index[v.name]; dup {
			return nil, fmt.Errorf("dsl: union on %q registers variant %q twice", discriminator, v.name)
		}
		u.index[v.name] = len(u.variants)
		u.variants = append(u.variants, v)
	}
	return u, nil
}

// Discriminator returns the name of the tag field.
func (u *UnionSchema) Discriminator() string { return u.discriminator }

// Variants returns the variant tags in registration order.
func (u *UnionSchema) Variants() []string {
	out := make([]string, len(u.variants))
	for i, v := range u.variants {
		out[i] = v.name
	}
	return out
}

// Select reads the discriminator of v and returns the matching tag.
func (u *UnionSchema) Select(v any) (string, error) {
	return SelectTag(u.discriminator, v, func(tag string) bool {
		_, ok := u.index[tag]
		return ok
	})
}

// SelectTag is the tag-selection step shared by every discriminated union:
// v must be an object whose discriminator field holds a known string tag.
func SelectTag(discriminator string, v any, known func(string) bool) (string, error) {
	m, ok := mapOf(v)
	if !ok {
		return "", polyskema.Issues{polyskema.Issue{Path: "/", Code: polyskema.CodeInvalidType, Message: i18n.T(polyskema.CodeInvalidType, map[string]string{"expected": "object"}), Hint: "expected object"}}
	}
	tag, _ := m[discriminator].(string)
	if tag == "" {
		return "", polyskema.Issues{polyskema.Issue{Path: "/" + discriminator, Code: polyskema.CodeDiscriminatorMissing, Message: i18n.T(polyskema.CodeDiscriminatorMissing, nil), Hint: "discriminator missing"}}
	}
	if !known(tag) {
		return "", polyskema.Issues{polyskema.Issue{Path: "/" + discriminator, Code: polyskema.CodeDiscriminatorUnknown, Message: i18n.T(polyskema.CodeDiscriminatorUnknown, nil), Hint: "unknown variant: '" + tag + "'", Params: map[string]any{"tag": tag}}}
	}
	return tag, nil
}

func (u *UnionSchema) variant(v any) (polyskema.Schema[map[string]any], error) {
	tag, err := u.Select(v)
	if err != nil {
		return nil, err
	}
	return u.variants[u.index[tag]].schema, nil
}

func (u *UnionSchema) Parse(ctx context.Context, v any) (map[string]any, error) {
	s, err := u.variant(v)
	if err != nil {
		return nil, err
	}
	return s.Parse(ctx, v)
}

func (u *UnionSchema) ParseWithMeta(ctx context.Context, v any) (polyskema.Decoded[map[string]any], error) {
	s, err := u.variant(v)
	if err != nil {
		return polyskema.Decoded[map[string]any]{Presence: polyskema.PresenceMap{"/": polyskema.PresenceSeen}}, err
	}
	return s.ParseWithMeta(ctx, v)
}

func (u *UnionSchema) Validate(ctx context.Context, v any) error {
	s, err := u.variant(v)
	if err != nil {
		return err
	}
	return s.Validate(ctx, v)
}

// JSONSchema exports oneOf with the variant schemas in registration order.
func (u *UnionSchema) JSONSchema() (*js.Schema, error) {
	out := &js.Schema{Title: u.title, Description: u.description, Discriminator: &js.Discriminator{PropertyName: u.discriminator}}
	out.OneOf = make([]*js.Schema, 0, len(u.variants))
	for _, v := range u.variants {
		vs, err := v.schema.JSONSchema()
		if err != nil {
			return nil, err
		}
		out.OneOf = append(out.OneOf, vs)
	}
	return out, nil
}
