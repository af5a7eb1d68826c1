package dsl

import (
	"context"
	"encoding/json"
	"reflect"
	"strconv"

	polyskema "github.com/reoring/polyskema"
	"github.com/reoring/polyskema/i18n"
	js "github.com/reoring/polyskema/jsonschema"
)

// AnyAdapter adapts Schema[T] to an any-typed DSL wrapper.
// It keeps the original schema to support default application and JSON Schema
// augmentation.
type AnyAdapter struct {
	parse        func(context.Context, any) (any, error)
	applyDefault func(context.Context) (any, error)
	jsonSchema   func() (*js.Schema, error)
	orig         any
}

// SchemaOf wraps a strongly typed Schema[T] as AnyAdapter for Field builders.
func SchemaOf[T any](s polyskema.Schema[T]) AnyAdapter {
	return AnyAdapter{
		parse:      func(ctx context.Context, v any) (any, error) { return s.Parse(ctx, v) },
		jsonSchema: s.JSONSchema,
		orig:       s,
	}
}

// Orig returns the original underlying Schema[T] used to create this adapter.
func (ad AnyAdapter) Orig() any { return ad.orig }

// Parse runs the adapter on a single value.
func (ad AnyAdapter) Parse(ctx context.Context, v any) (any, error) {
	if ad.parse == nil {
		return v, nil
	}
	return ad.parse(ctx, v)
}

// JSONSchema exports the adapter's JSON Schema ({} when unknown).
func (ad AnyAdapter) JSONSchema() (*js.Schema, error) {
	if ad.jsonSchema == nil {
		return &js.Schema{}, nil
	}
	s, err := ad.jsonSchema()
	if err != nil {
		return nil, err
	}
	if s == nil {
		s = &js.Schema{}
	}
	return s, nil
}

// Nullable wraps an AnyAdapter to accept nulls (JSON null).
// When the input value is nil, parsing succeeds and returns nil.
func Nullable(ad AnyAdapter) AnyAdapter {
	prevParse := ad.parse
	out := ad
	out.parse = func(ctx context.Context, v any) (any, error) {
		if v == nil {
			return nil, nil
		}
		if prevParse == nil {
			return v, nil
		}
		return prevParse(ctx, v)
	}
	return out
}

// Nullable enables fluent chaining: g.Float().Nullable()
func (ad AnyAdapter) Nullable() AnyAdapter { return Nullable(ad) }

// Describe sets the JSON Schema description.
func (ad AnyAdapter) Describe(desc string) AnyAdapter {
	if desc == "" {
		return ad
	}
	return ad.mapSchema(func(s *js.Schema) { s.Description = desc })
}

// Min sets a numeric minimum (inclusive) constraint at runtime and in JSON Schema.
// Non-numeric values are ignored by this guard (type errors are handled elsewhere).
func (ad AnyAdapter) Min(n float64) AnyAdapter {
	return ad.guard(func(v any) error { return minCheck(v, n) }).
		mapSchema(func(s *js.Schema) {
			s.Minimum = jsPtrFloat(n)
			if s.Type == "" {
				s.Type = "number"
			}
		})
}

// Max sets a numeric maximum (inclusive) constraint at runtime and in JSON Schema.
func (ad AnyAdapter) Max(n float64) AnyAdapter {
	return ad.guard(func(v any) error { return maxCheck(v, n) }).
		mapSchema(func(s *js.Schema) {
			s.Maximum = jsPtrFloat(n)
			if s.Type == "" {
				s.Type = "number"
			}
		})
}

// guard runs check after the previous parse step succeeded.
func (ad AnyAdapter) guard(check func(any) error) AnyAdapter {
	prevParse := ad.parse
	out := ad
	out.parse = func(ctx context.Context, v any) (any, error) {
		val := v
		if prevParse != nil {
			var err error
			if val, err = prevParse(ctx, v); err != nil {
				return nil, err
			}
		}
		if err := check(val); err != nil {
			return nil, err
		}
		return val, nil
	}
	return out
}

func (ad AnyAdapter) mapSchema(fn func(*js.Schema)) AnyAdapter {
	prevJSON := ad.jsonSchema
	out := ad
	out.jsonSchema = func() (*js.Schema, error) {
		s := &js.Schema{}
		if prevJSON != nil {
			ps, err := prevJSON()
			if err != nil {
				return nil, err
			}
			if ps != nil {
				s = ps
			}
		}
		fn(s)
		return s, nil
	}
	return out
}

// ---- helpers ----
func jsPtrFloat(v float64) *float64 { return &v }

func minCheck(v any, min float64) error {
	if f, ok := asFloat(v); ok && f < min {
		return polyskema.Issues{polyskema.Issue{Path: "/", Code: polyskema.CodeTooShort, Message: i18n.T(polyskema.CodeTooShort, nil), Params: map[string]any{"min": min, "got": f}}}
	}
	return nil
}

func maxCheck(v any, max float64) error {
	if f, ok := asFloat(v); ok && f > max {
		return polyskema.Issues{polyskema.Issue{Path: "/", Code: polyskema.CodeTooLong, Message: i18n.T(polyskema.CodeTooLong, nil), Params: map[string]any{"max": max, "got": f}}}
	}
	return nil
}

// asFloat widens any Go numeric (and json.Number) to float64.
func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case nil:
		return 0, false
	case json.Number:
		f, err := strconv.ParseFloat(string(n), 64)
		return f, err == nil
	case float64:
		return n, true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return 0, false
}
