package registry_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	polyskema "github.com/reoring/polyskema"
	"github.com/reoring/polyskema/class"
	"github.com/reoring/polyskema/hierarchy"
	js "github.com/reoring/polyskema/jsonschema"
	"github.com/reoring/polyskema/registry"
	"github.com/reoring/polyskema/synth"
	"github.com/reoring/polyskema/telemetry"
)

type shapeClasses struct {
	shape, circle, square, triangle *class.Def
}

func newShapes() shapeClasses {
	var s shapeClasses
	s.shape = class.Define("shapes", "Shape").Abstract()
	s.circle = class.Define("shapes", "Circle").Extends(s.shape).Param("radius", class.FloatType)
	s.square = class.Define("shapes", "Square").Extends(s.shape).Param("side", class.FloatType)
	s.triangle = class.Define("shapes", "Triangle").Extends(s.shape).
		Param("base", class.FloatType).
		Param("height", class.FloatType)
	return s
}

func TestBuild_Shapes(t *testing.T) {
	ctx := context.Background()
	s := newShapes()
	reg, err := registry.Build(ctx, []class.Class{s.shape},
		registry.WithConfig(synth.Config{"discriminator_field": "discriminator"}))
	require.NoError(t, err)

	u := reg.Union()
	assert.Equal(t, 3, u.Len())
	assert.Equal(t, "discriminator", u.DiscriminatorField())
	assert.Equal(t, []string{"shapes.Circle", "shapes.Square", "shapes.Triangle"}, u.Tags())

	inst, err := u.Parse(ctx, map[string]any{"discriminator": "shapes.Square", "side": 2.0})
	require.NoError(t, err)
	sq, ok := reg.Lookup(s.square)
	require.True(t, ok)
	assert.Same(t, sq, inst.Model())
	assert.True(t, inst.IsInstance(s.square))
	assert.True(t, inst.IsInstance(s.shape))

	obj, ok := synth.As[*class.Object](inst)
	require.True(t, ok)
	side, _ := obj.Get("side")
	assert.Equal(t, 2.0, side)

	diags := reg.Diagnostics()
	require.Len(t, diags, 1)
	assert.Equal(t, "shapes.Shape", diags[0].Class)
	assert.Equal(t, registry.ReasonAbstract, diags[0].Reason)
	assert.ErrorIs(t, diags[0].Err, class.ErrAbstract)

	assert.Equal(t, registry.StateSkipped, reg.State("shapes.Shape"))
	assert.Equal(t, registry.StateRegistered, reg.State("shapes.Circle"))
	assert.Equal(t, registry.StateUnknown, reg.State("shapes.Hexagon"))
	assert.Len(t, reg.Mapping(), 3)
	assert.Len(t, reg.Nodes(), 4)
}

func TestUnion_DispatchErrors(t *testing.T) {
	ctx := context.Background()
	reg, err := registry.Build(ctx, []class.Class{newShapes().shape})
	require.NoError(t, err)
	u := reg.Union()

	_, err = u.Parse(ctx, map[string]any{"side": 1.0})
	assert.True(t, polyskema.HasCode(err, polyskema.CodeDiscriminatorMissing))

	_, err = u.Parse(ctx, map[string]any{"model_type": "shapes.Hexagon"})
	assert.True(t, polyskema.HasCode(err, polyskema.CodeDiscriminatorUnknown))

	_, err = u.Parse(ctx, []any{1})
	assert.True(t, polyskema.HasCode(err, polyskema.CodeInvalidType))

	err = u.Validate(ctx, map[string]any{"model_type": "shapes.Circle"})
	assert.True(t, polyskema.HasCode(err, polyskema.CodeRequired))

	iss, ok := polyskema.AsIssues(err)
	require.True(t, ok)
	assert.Equal(t, "/radius", iss[0].Path)

	err = u.Validate(ctx, map[string]any{"model_type": "shapes.Hexagon"})
	assert.True(t, polyskema.HasCode(err, polyskema.CodeDiscriminatorUnknown))
	assert.NoError(t, u.Validate(ctx, map[string]any{"model_type": "shapes.Square", "side": 1.0}))
}

func TestUnion_ParseJSONAndYAML(t *testing.T) {
	ctx := context.Background()
	reg, err := registry.Build(ctx, []class.Class{newShapes().shape})
	require.NoError(t, err)
	u := reg.Union()

	inst, err := u.ParseJSON(ctx, []byte(`{"model_type":"shapes.Triangle","base":3,"height":4.5}`))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"base": 3.0, "height": 4.5}, inst.Values())

	inst, err = u.ParseYAML(ctx, []byte("model_type: shapes.Circle\nradius: 1.25\n"))
	require.NoError(t, err)
	assert.Equal(t, "shapes.Circle", inst.Tag())

	_, err = u.ParseJSON(ctx, []byte(`{"model_type":`))
	assert.True(t, polyskema.HasCode(err, polyskema.CodeParseError))
}

func TestBuild_PartialFailureIsolation(t *testing.T) {
	ctx := context.Background()
	parent := class.Define("iso", "Parent")
	class.Define("iso", "A").Extends(parent).Param("x", class.IntType)
	class.Define("iso", "B").Extends(parent).Opaque(errors.New("signature hidden"))
	class.Define("iso", "C").Extends(parent).Param("y", class.RefTo("Missing"))
	class.Define("iso", "D").Extends(parent).ParamDefault("z", class.StringType, "ok")

	rec := telemetry.NewRecorder()
	reg, err := registry.Build(ctx, []class.Class{parent}, registry.WithLogger(rec), registry.WithMetrics(rec))
	require.NoError(t, err)

	assert.Equal(t, []string{"iso.Parent", "iso.A", "iso.D"}, reg.Union().Tags())
	diags := reg.Diagnostics()
	require.Len(t, diags, 2)
	assert.Equal(t, "iso.B", diags[0].Class)
	assert.Equal(t, synth.ReasonUninspectable, diags[0].Reason)
	assert.ErrorIs(t, diags[0].Err, class.ErrUninspectable)
	assert.Equal(t, "iso.C", diags[1].Class)
	assert.Equal(t, synth.ReasonTypeResolution, diags[1].Reason)
	assert.Contains(t, diags[1].String(), "iso.C: type-resolution-failed")

	assert.Equal(t, 3.0, rec.Counter(telemetry.MetricRegistered))
	assert.Equal(t, 2.0, rec.Counter(telemetry.MetricSkipped))
	warns := rec.Entries("warn")
	require.Len(t, warns, 2)
	cls, _ := warns[0].Value("class")
	assert.Equal(t, "iso.B", cls)
	require.NotEmpty(t, rec.Entries("info"))
}

func TestBuild_OrderStable(t *testing.T) {
	ctx := context.Background()
	s := newShapes()
	a, err := registry.Build(ctx, []class.Class{s.shape})
	require.NoError(t, err)
	b, err := registry.Build(ctx, []class.Class{s.shape})
	require.NoError(t, err)
	assert.Equal(t, a.Union().Tags(), b.Union().Tags())

	sa, err := a.Union().JSONSchema()
	require.NoError(t, err)
	sb, err := b.Union().JSONSchema()
	require.NoError(t, err)
	assert.Equal(t, sa, sb)
}

func TestBuild_SharedCache(t *testing.T) {
	ctx := context.Background()
	s := newShapes()
	cache := synth.NewCache()
	a, err := registry.Build(ctx, []class.Class{s.shape}, registry.WithCache(cache))
	require.NoError(t, err)
	b, err := registry.Build(ctx, []class.Class{s.shape}, registry.WithCache(cache))
	require.NoError(t, err)

	ma, _ := a.Lookup(s.circle)
	mb, _ := b.Lookup(s.circle)
	assert.Same(t, ma, mb)
	assert.Equal(t, synth.Stats{Hits: 3, Misses: 3, Entries: 3}, cache.Stats())
}

func TestBuild_RedeclaredHierarchySharesCache(t *testing.T) {
	ctx := context.Background()
	cache := synth.NewCache()
	old := newShapes()
	a, err := registry.Build(ctx, []class.Class{old.shape}, registry.WithCache(cache))
	require.NoError(t, err)

	fresh := newShapes()
	b, err := registry.Build(ctx, []class.Class{fresh.shape}, registry.WithCache(cache))
	require.NoError(t, err)
	assert.Equal(t, a.Union().Tags(), b.Union().Tags())
	assert.Empty(t, b.Diagnostics()[1:])

	mb, ok := b.Lookup(fresh.circle)
	require.True(t, ok)
	_, ok = b.Lookup(old.circle)
	assert.False(t, ok)
	ma, ok := a.Lookup(old.circle)
	require.True(t, ok)
	assert.NotSame(t, ma, mb)

	inst, err := b.Union().Parse(ctx, map[string]any{"model_type": "shapes.Square", "side": 2.0})
	require.NoError(t, err)
	assert.True(t, inst.IsInstance(fresh.shape))
	assert.Equal(t, synth.Stats{Hits: 0, Misses: 6, Entries: 3}, cache.Stats())
}

func TestBuild_PanickingSiblingsAreIsolated(t *testing.T) {
	ctx := context.Background()
	parent := class.Define("p", "Parent").Abstract()
	class.Define("p", "A").Extends(parent).ParamDefault("x", class.IntType, 1)
	class.Define("p", "Bad").Extends(parent).Construct(func(class.Args) (any, error) {
		var m map[string]int
		m["x"] = 1
		return m, nil
	})
	parent.AddSubclass(panickySignature{})

	reg, err := registry.Build(ctx, []class.Class{parent})
	require.NoError(t, err)
	assert.Equal(t, []string{"p.A", "p.Bad"}, reg.Union().Tags())
	diags := reg.Diagnostics()
	require.Len(t, diags, 2)
	assert.Equal(t, "p.Sig", diags[1].Class)
	assert.Equal(t, synth.ReasonUninspectable, diags[1].Reason)
	assert.ErrorIs(t, diags[1].Err, class.ErrPanic)

	ex, err := reg.Examples(ctx, "")
	require.NoError(t, err)
	assert.Contains(t, ex, "p.A")
	assert.NotContains(t, ex, "p.Bad")

	probed, err := registry.Build(ctx, []class.Class{parent}, registry.WithProbe(true))
	require.NoError(t, err)
	assert.Equal(t, []string{"p.A"}, probed.Union().Tags())
	var pe *registry.ProbeError
	for _, d := range probed.Diagnostics() {
		if d.Reason == registry.ReasonProbe {
			require.True(t, errors.As(d.Err, &pe))
		}
	}
	require.NotNil(t, pe)
	assert.Equal(t, "p.Bad", pe.Class)
	assert.ErrorIs(t, pe, class.ErrPanic)
}

type panickySignature struct{}

func (panickySignature) Namespace() string { return "p" }
func (panickySignature) Name() string      { return "Sig" }
func (panickySignature) Constructor() (*class.Constructor, error) {
	panic("signature unavailable")
}

func TestBuild_Empty(t *testing.T) {
	ctx := context.Background()

	_, err := registry.Build(ctx, []class.Class{class.Define("e", "Hidden").Opaque(nil)})
	require.Error(t, err)
	assert.ErrorIs(t, err, registry.ErrEmptyRegistry)
	assert.ErrorIs(t, err, class.ErrUninspectable)
	var ee *registry.EmptyRegistryError
	require.True(t, errors.As(err, &ee))
	assert.Equal(t, 1, ee.Discovered)
	require.Len(t, ee.Diagnostics, 1)
	assert.Equal(t, "e.Hidden", ee.Diagnostics[0].Class)

	_, err = registry.Build(ctx, nil)
	assert.ErrorIs(t, err, registry.ErrEmptyRegistry)

	_, err = registry.Build(ctx, []class.Class{class.Define("e", "Base").Abstract()})
	assert.ErrorIs(t, err, registry.ErrEmptyRegistry)
}

func TestBuild_StructuralErrors(t *testing.T) {
	ctx := context.Background()
	a := class.Define("c", "A")
	b := class.Define("c", "B").Extends(a)
	a.Extends(b)
	_, err := registry.Build(ctx, []class.Class{a})
	assert.ErrorIs(t, err, hierarchy.ErrCycle)
	assert.NotErrorIs(t, err, registry.ErrEmptyRegistry)

	_, err = registry.Build(ctx, []class.Class{newShapes().shape}, registry.WithConfig(synth.Config{"extra": "sometimes"}))
	assert.ErrorIs(t, err, synth.ErrInvalidConfig)

	_, err = registry.Build(ctx, []class.Class{newShapes().shape}, registry.WithConfig(synth.Config{"hook": func() {}}))
	assert.ErrorIs(t, err, synth.ErrUnhashableConfig)

	cctx, cancel := context.WithCancel(ctx)
	cancel()
	_, err = registry.Build(cctx, []class.Class{newShapes().shape})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBuild_Probe(t *testing.T) {
	ctx := context.Background()
	shape := class.Define("shapes", "Shape").Abstract()
	class.Define("shapes", "Circle").Extends(shape).Param("radius", class.FloatType)
	class.Define("shapes", "Square").Extends(shape).ParamDefault("side", class.FloatType, 1)

	reg, err := registry.Build(ctx, []class.Class{shape}, registry.WithProbe(true))
	require.NoError(t, err)
	assert.Equal(t, []string{"shapes.Square"}, reg.Union().Tags())

	diags := reg.Diagnostics()
	require.Len(t, diags, 2)
	assert.Equal(t, registry.ReasonProbe, diags[1].Reason)
	var pe *registry.ProbeError
	require.True(t, errors.As(diags[1].Err, &pe))
	assert.Equal(t, "shapes.Circle", pe.Class)
	assert.True(t, polyskema.HasCode(pe.Err, polyskema.CodeRequired))

	_, ok := reg.LookupName("shapes.Circle", registry.RegisteredOnly)
	assert.False(t, ok)
	m, ok := reg.LookupName("shapes.Circle", registry.IncludeExcluded)
	require.True(t, ok)
	assert.Equal(t, "CircleModel", m.Name())
	assert.Equal(t, registry.StateSkipped, reg.State("shapes.Circle"))

	noProbe, err := registry.Build(ctx, []class.Class{shape})
	require.NoError(t, err)
	assert.Equal(t, []string{"shapes.Circle", "shapes.Square"}, noProbe.Union().Tags())
}

func TestRegistry_FindAndExamples(t *testing.T) {
	ctx := context.Background()
	shape := class.Define("shapes", "Shape").Abstract()
	class.Define("shapes", "Circle").Extends(shape).Param("radius", class.FloatType)
	class.Define("shapes", "Square").Extends(shape).ParamDefault("side", class.FloatType, 1)
	class.Define("shapes", "RoundedSquare").Extends(shape).
		ParamDefault("side", class.FloatType, 1).
		ParamDefault("corner", class.FloatType, nil)

	reg, err := registry.Build(ctx, []class.Class{shape})
	require.NoError(t, err)

	var names []string
	for _, n := range reg.Find("  SQUARE ") {
		names = append(names, n.Name)
	}
	assert.Equal(t, []string{"shapes.Square", "shapes.RoundedSquare"}, names)
	assert.Len(t, reg.Find(""), 4)

	ex, err := reg.Examples(ctx, "square")
	require.NoError(t, err)
	assert.Equal(t, map[string]map[string]any{
		"shapes.Square":        {"side": 1.0, "model_type": "shapes.Square"},
		"shapes.RoundedSquare": {"side": 1.0, "corner": nil, "model_type": "shapes.RoundedSquare"},
	}, ex)

	ex, err = reg.Examples(ctx, "circle")
	require.NoError(t, err)
	assert.Empty(t, ex)

	ex, err = reg.Examples(ctx, "shape")
	require.NoError(t, err)
	assert.Len(t, ex, 2)
}

func TestUnion_JSONSchema(t *testing.T) {
	ctx := context.Background()
	shape := class.Define("shapes", "Shape").Abstract()
	class.Define("shapes", "Circle").Extends(shape).Param("radius", class.FloatType)
	class.Define("shapes", "Square").Extends(shape).ParamDefault("side", class.FloatType, 1)

	reg, err := registry.Build(ctx, []class.Class{shape})
	require.NoError(t, err)
	s, err := reg.Union().JSONSchema()
	require.NoError(t, err)

	assert.Equal(t, js.Draft2020, s.Schema)
	require.Len(t, s.OneOf, 2)
	assert.Equal(t, "#/$defs/shapes.Circle", s.OneOf[0].Ref)
	assert.Equal(t, "#/$defs/shapes.Square", s.OneOf[1].Ref)
	assert.Equal(t, "model_type", s.Discriminator.PropertyName)
	assert.Equal(t, map[string]string{
		"shapes.Circle": "#/$defs/shapes.Circle",
		"shapes.Square": "#/$defs/shapes.Square",
	}, s.Discriminator.Mapping)

	circle := s.Defs["shapes.Circle"]
	require.NotNil(t, circle)
	assert.Equal(t, []string{"model_type", "radius"}, circle.Required)
	assert.Empty(t, circle.Examples)
	square := s.Defs["shapes.Square"]
	assert.Equal(t, []string{"model_type"}, square.Required)
	require.Len(t, square.Examples, 1)

	require.NoError(t, js.Check(s, map[string]any{"model_type": "shapes.Circle", "radius": 2}))
	assert.Error(t, js.Check(s, map[string]any{"model_type": "shapes.Circle"}))
	assert.Error(t, js.Check(s, map[string]any{"radius": 2}))
}
