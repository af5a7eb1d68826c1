package polyskema

import (
	"context"

	js "github.com/reoring/polyskema/jsonschema"
)

// Schema is the validation contract shared by dsl schemas and synthesized
// models.
type Schema[T any] interface {
	// Parse transforms an unknown input into T (coerce -> default -> validate).
	Parse(ctx context.Context, v any) (T, error)
	// ParseWithMeta returns the typed value together with presence metadata.
	ParseWithMeta(ctx context.Context, v any) (Decoded[T], error)
	// Validate checks v without keeping the parsed result.
	Validate(ctx context.Context, v any) error
	// JSONSchema projects the schema into a JSON Schema representation.
	JSONSchema() (*js.Schema, error)
}

// SafeParse parses v into T, returning (zero, false) on validation error.
func SafeParse[T any](ctx context.Context, s Schema[T], v any) (T, bool) {
	val, err := s.Parse(ctx, v)
	if err != nil {
		var zero T
		return zero, false
	}
	return val, true
}

// Is returns true if v conforms to the schema s.
func Is[T any](ctx context.Context, s Schema[T], v any) bool {
	return s.Validate(ctx, v) == nil
}

type contextKey int

const (
	_ctxKeyFailFast contextKey = iota
)

// WithFailFast returns a child context that marks fail-fast parsing behavior.
func WithFailFast(ctx context.Context, enabled bool) context.Context {
	return context.WithValue(ctx, _ctxKeyFailFast, enabled)
}

// IsFailFast reports whether the current parse should stop on the first issue.
func IsFailFast(ctx context.Context) bool {
	v := ctx.Value(_ctxKeyFailFast)
	b, _ := v.(bool)
	return b
}
