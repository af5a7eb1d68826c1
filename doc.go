// Package polyskema synthesizes validating data models from a class hierarchy
// that is only known at run time and merges them into one discriminated union.
//
// The root package holds the shared pieces every subpackage speaks:
//
// - the Issues error model (JSON Pointer path, code, message) used for document validation
// - presence metadata (seen / null / default applied) collected while parsing
// - the Schema contract implemented by dsl schemas and synthesized models
// - struct-key resolution used when classes are derived from Go structs
//
// Layout:
//
// - class/: the class-hierarchy source contract, the Def builder, Reflect[T] and YAML manifests
// - hierarchy/: pre-order walker with cycle and duplicate-name detection
// - synth/: the model synthesizer, its normalized cache key and the shared cache
// - registry/: the union composer, per-class diagnostics and the discriminated union
// - dsl/, jsonschema/, openapi/, source/: validation, projection and document decoding
// - cmd/polyskema: CLI over YAML manifests
//
// Typical usage:
//
//	reg, err := registry.Build(ctx, []class.Class{shape}, registry.WithProbe(true))
//	if err != nil {
//	    return err // structural: cycle, duplicate name, empty registry
//	}
//	for _, d := range reg.Diagnostics() {
//	    log.Printf("skipped %s: %s", d.Class, d.Reason)
//	}
//	inst, err := reg.Union().ParseJSON(ctx, payload)
package polyskema
