package synth

import (
	"context"

	polyskema "github.com/reoring/polyskema"
	"github.com/reoring/polyskema/class"
	"github.com/reoring/polyskema/i18n"
	js "github.com/reoring/polyskema/jsonschema"
)

// Field describes one model field. Constructor parameters come first in
// declaration order, the discriminator field last.
type Field struct {
	Name          string
	Type          class.Type
	Required      bool
	Default       any
	HasDefault    bool
	Doc           string
	Discriminator bool
}

// Model is the validating data model synthesized for one class. A Model is
// immutable and safe for concurrent use.
type Model struct {
	tag    string
	name   string
	doc    string
	class  class.Class
	base   *Base
	fields []Field
	schema polyskema.Schema[map[string]any]
}

var _ polyskema.Schema[*Instance] = (*Model)(nil)

// Tag is the discriminator literal, the qualified class name.
func (m *Model) Tag() string { return m.tag }

// Name is "<ClassName>Model".
func (m *Model) Name() string { return m.name }

func (m *Model) Doc() string                { return m.doc }
func (m *Model) Class() class.Class         { return m.class }
func (m *Model) Base() *Base                { return m.base }
func (m *Model) DiscriminatorField() string { return m.base.DiscriminatorField() }
func (m *Model) Fields() []Field            { return append([]Field(nil), m.fields...) }

// Schema returns the object schema documents are validated with.
func (m *Model) Schema() polyskema.Schema[map[string]any] { return m.schema }

// Validate checks doc without constructing the domain object.
func (m *Model) Validate(ctx context.Context, doc any) error { return m.schema.Validate(ctx, doc) }

// Parse validates doc and constructs the domain object.
func (m *Model) Parse(ctx context.Context, doc any) (*Instance, error) {
	d, err := m.ParseWithMeta(ctx, doc)
	if err != nil {
		return nil, err
	}
	return d.Value, nil
}

// ParseWithMeta is Parse with presence metadata. A failing constructor is
// reported as a construct_failed issue at the document root.
func (m *Model) ParseWithMeta(ctx context.Context, doc any) (polyskema.Decoded[*Instance], error) {
	dm, err := m.schema.ParseWithMeta(ctx, doc)
	if err != nil {
		return polyskema.Decoded[*Instance]{Presence: dm.Presence}, err
	}
	args := make(class.Args, len(m.fields))
	for _, f := range m.fields {
		if f.Discriminator {
			continue
		}
		if v, ok := dm.Value[f.Name]; ok {
			args[f.Name] = v
		}
	}
	obj, err := m.base.ctor.Instantiate(args)
	if err != nil {
		return polyskema.Decoded[*Instance]{Presence: dm.Presence}, polyskema.Issues{{
			Path:    "/",
			Code:    polyskema.CodeConstructFailed,
			Message: i18n.T(polyskema.CodeConstructFailed, nil),
			Hint:    err.Error(),
			Cause:   err,
			Params:  map[string]any{"class": m.tag},
		}}
	}
	inst := &Instance{model: m, values: dm.Value, presence: dm.Presence, obj: obj}
	return polyskema.Decoded[*Instance]{Value: inst, Presence: dm.Presence}, nil
}

// Example constructs the class with no arguments, so only defaults apply.
func (m *Model) Example(ctx context.Context) (*Instance, error) {
	return m.Parse(ctx, map[string]any{})
}

// JSONSchema exports the object schema titled with the model name.
func (m *Model) JSONSchema() (*js.Schema, error) { return m.schema.JSONSchema() }
