// Package synth synthesizes a validating data model from a class constructor.
//
// Every model carries a discriminator field whose only accepted value is the
// qualified class name, so models from one hierarchy can be combined into a
// discriminated union. Models are memoized per (class, normalized config) in
// a Cache; two equal configs yield the identical *Model.
//
//	syn := synth.New(synth.WithResolver(types))
//	m, err := syn.Synthesize(ctx, circle, synth.Config{"extra": "forbid"})
//	inst, err := m.Parse(ctx, map[string]any{"model_type": "shapes.Circle", "radius": 2.0})
//	c, ok := synth.As[*Circle](inst)
package synth
