// Package dsl provides the schema builders that synthesized models are made of.
//
// Overview
//   - Builder API: declare object semantics (unknown/required/default/refine) with Object()/Field()/Required()/UnknownStrict()/Build().
//   - Primitives: String()/Bool()/Float()/Int() plus the adapter forms StringOf/BoolOf/FloatField/IntField.
//   - Containers: List(elem), Tuple(items...), Map(elem).
//   - Special adapters: Any(), Literal(tag) for discriminator fields, Opaque(t) for foreign Go types.
//   - Unions: Object().Discriminator(key).OneOf(Variant(...), ...) builds an ordered discriminated union.
//
// File layout
//   - adapter.go: AnyAdapter and its chaining helpers (Nullable/Describe/Min/Max).
//   - primitives.go: scalar schemas and special adapters.
//   - collections.go: List/Tuple/Map.
//   - object_builder.go: objectBuilder/fieldStep and Build/MustBuild, OneOf/Variant APIs.
//   - object_core.go: objectSchema (Parse/ParseWithMeta/Validate/JSONSchema).
//   - union.go: UnionSchema and the shared SelectTag step.
//   - presence_helpers.go: presence marking for nested values.
//
// Example
//
//	circle := g.Object().
//	    Field("model_type", g.Literal("shapes.Circle")).Default("shapes.Circle").
//	    Field("radius", g.FloatField(false)).Required().
//	    UnknownStrict().
//	    MustBuild()
//	square := g.Object().
//	    Field("model_type", g.Literal("shapes.Square")).Default("shapes.Square").
//	    Field("side", g.FloatField(false)).Required().
//	    UnknownStrict().
//	    MustBuild()
//	shape := g.Object().
//	    Discriminator("model_type").
//	    OneOf(g.Variant("shapes.Circle", circle), g.Variant("shapes.Square", square)).
//	    MustBuild()
//	v, err := shape.Parse(ctx, map[string]any{"model_type": "shapes.Square", "side": 2.0})
//
// Notes
//   - UnknownStrict exports additionalProperties=false; UnknownStrip/UnknownPassthrough export true.
//   - Issues are reported in field declaration order, then unknown keys sorted by name.
package dsl
