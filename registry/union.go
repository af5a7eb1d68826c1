package registry

import (
	"context"
	"fmt"

	polyskema "github.com/reoring/polyskema"
	"github.com/reoring/polyskema/dsl"
	js "github.com/reoring/polyskema/jsonschema"
	"github.com/reoring/polyskema/source"
	"github.com/reoring/polyskema/synth"
)

// Union dispatches documents to member models by their discriminator tag.
// Members keep walk order. Tag selection, validation and the oneOf export run
// on a dsl union whose variants are the member schemas.
type Union struct {
	schema   *dsl.UnionSchema
	members  []*synth.Model
	byTag    map[string]*synth.Model
	examples map[string]map[string]any
}

var _ polyskema.Schema[*synth.Instance] = (*Union)(nil)

// memberVariant is a model as seen by the dsl union: it validates with the
// model schema and exports the member the way the union embeds it.
type memberVariant struct {
	polyskema.Schema[map[string]any]
	export func() (*js.Schema, error)
}

func (v memberVariant) JSONSchema() (*js.Schema, error) { return v.export() }

func newUnion(members []*synth.Model, examples map[string]map[string]any) (*Union, error) {
	u := &Union{
		members:  members,
		byTag:    make(map[string]*synth.Model, len(members)),
		examples: examples,
	}
	vars := make([]dsl.UnionVariant, 0, len(members))
	for _, m := range members {
		u.byTag[m.Tag()] = m
		vars = append(vars, dsl.Variant(m.Tag(), memberVariant{
			Schema: m.Schema(),
			export: func() (*js.Schema, error) { return u.memberSchema(m) },
		}))
	}
	s, err := dsl.Object().Discriminator(members[0].DiscriminatorField()).OneOf(vars...).Build()
	if err != nil {
		return nil, fmt.Errorf("registry: union: %w", err)
	}
	u.schema = s.(*dsl.UnionSchema)
	return u, nil
}

func (u *Union) Members() []*synth.Model { return append([]*synth.Model(nil), u.members...) }

// Tags returns the member tags in walk order.
func (u *Union) Tags() []string { return u.schema.Variants() }

func (u *Union) Len() int                   { return len(u.members) }
func (u *Union) DiscriminatorField() string { return u.schema.Discriminator() }

func (u *Union) Lookup(tag string) (*synth.Model, bool) {
	m, ok := u.byTag[tag]
	return m, ok
}

// Select returns the member addressed by the discriminator of doc.
func (u *Union) Select(doc any) (*synth.Model, error) {
	tag, err := u.schema.Select(doc)
	if err != nil {
		return nil, err
	}
	return u.byTag[tag], nil
}

func (u *Union) Parse(ctx context.Context, doc any) (*synth.Instance, error) {
	m, err := u.Select(doc)
	if err != nil {
		return nil, err
	}
	return m.Parse(ctx, doc)
}

func (u *Union) ParseWithMeta(ctx context.Context, doc any) (polyskema.Decoded[*synth.Instance], error) {
	m, err := u.Select(doc)
	if err != nil {
		return polyskema.Decoded[*synth.Instance]{Presence: polyskema.PresenceMap{"/": polyskema.PresenceSeen}}, err
	}
	return m.ParseWithMeta(ctx, doc)
}

// Validate checks doc without constructing the domain object.
func (u *Union) Validate(ctx context.Context, doc any) error { return u.schema.Validate(ctx, doc) }

// ParseJSON decodes b as JSON and parses the document.
func (u *Union) ParseJSON(ctx context.Context, b []byte) (*synth.Instance, error) {
	doc, err := source.JSON(b)
	if err != nil {
		return nil, err
	}
	return u.Parse(ctx, doc)
}

// ParseYAML decodes b as YAML and parses the document.
func (u *Union) ParseYAML(ctx context.Context, b []byte) (*synth.Instance, error) {
	doc, err := source.YAML(b)
	if err != nil {
		return nil, err
	}
	return u.Parse(ctx, doc)
}

// JSONSchema exports the union as a Draft 2020-12 document. Member schemas
// live under $defs keyed by tag; oneOf references them in walk order and the
// discriminator mapping points each tag at its definition.
func (u *Union) JSONSchema() (*js.Schema, error) {
	ds, err := u.schema.JSONSchema()
	if err != nil {
		return nil, err
	}
	tags := u.schema.Variants()
	out := &js.Schema{
		Schema:        js.Draft2020,
		Defs:          make(map[string]*js.Schema, len(tags)),
		OneOf:         make([]*js.Schema, 0, len(tags)),
		Discriminator: &js.Discriminator{PropertyName: ds.Discriminator.PropertyName, Mapping: make(map[string]string, len(tags))},
	}
	for i, tag := range tags {
		ref := js.DefRef(tag)
		out.Defs[tag] = ds.OneOf[i]
		out.OneOf = append(out.OneOf, &js.Schema{Ref: ref})
		out.Discriminator.Mapping[tag] = ref
	}
	return out, nil
}

func (u *Union) memberSchema(m *synth.Model) (*js.Schema, error) {
	base, err := m.JSONSchema()
	if err != nil {
		return nil, err
	}
	s := *base
	s.Schema = ""
	// inside the union the tag selects the member, so it must be present
	required := make([]string, 0, len(s.Required)+1)
	field := u.DiscriminatorField()
	required = append(required, field)
	for _, r := range s.Required {
		if r != field {
			required = append(required, r)
		}
	}
	s.Required = required
	if ex, ok := u.examples[m.Tag()]; ok {
		s.Examples = []any{ex}
	}
	return &s, nil
}
