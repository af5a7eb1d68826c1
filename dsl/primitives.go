package dsl

import (
	"context"
	"encoding/json"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	polyskema "github.com/reoring/polyskema"
	"github.com/reoring/polyskema/codec"
	"github.com/reoring/polyskema/i18n"
	js "github.com/reoring/polyskema/jsonschema"
)

// String returns the minimal string schema implementation.
func String() polyskema.Schema[string] { return stringSchema{} }

// Bool returns the minimal bool schema implementation.
func Bool() polyskema.Schema[bool] { return boolSchema{} }

// Float returns a float64 schema. Any Go numeric or json.Number is accepted.
func Float() NumberBuilder[float64] { return &floatSchema{} }

// Int returns an int64 schema. Integral floats (as produced by JSON decoders)
// are accepted; fractional values are rejected.
func Int() NumberBuilder[int64] { return &intSchema{} }

// NumberBuilder exposes chaining options for number schemas.
type NumberBuilder[T any] interface {
	polyskema.Schema[T]
	// CoerceFromString additionally accepts numeric strings such as "2.5".
	CoerceFromString() NumberBuilder[T]
}

// StringOf returns an AnyAdapter for a string wire schema projected to domain type T.
func StringOf[T ~string]() AnyAdapter {
	ad := SchemaOf[T](stringAsSchema[T]{})
	ad.orig = stringSchema{}
	return ad
}

// BoolOf returns an AnyAdapter for a bool wire schema projected to domain type T.
func BoolOf[T ~bool]() AnyAdapter {
	ad := SchemaOf[T](boolAsSchema[T]{})
	ad.orig = boolSchema{}
	return ad
}

// FloatField is the adapter form of Float.
func FloatField(coerce bool) AnyAdapter {
	s := Float()
	if coerce {
		s = s.CoerceFromString()
	}
	return SchemaOf[float64](s)
}

// IntField is the adapter form of Int.
func IntField(coerce bool) AnyAdapter {
	s := Int()
	if coerce {
		s = s.CoerceFromString()
	}
	return SchemaOf[int64](s)
}

// Any accepts every value unchanged.
func Any() AnyAdapter {
	return AnyAdapter{
		parse:      func(_ context.Context, v any) (any, error) { return v, nil },
		jsonSchema: func() (*js.Schema, error) { return &js.Schema{}, nil },
	}
}

// Literal accepts exactly the string value lit.
func Literal(lit string) AnyAdapter {
	return AnyAdapter{
		parse: func(_ context.Context, v any) (any, error) {
			s, ok := v.(string)
			if !ok {
				return nil, invalidType("string")
			}
			if s != lit {
				return nil, polyskema.Issues{{Path: "/", Code: polyskema.CodeInvalidEnum, Message: i18n.T(polyskema.CodeInvalidEnum, nil), Hint: "expected '" + lit + "'", Params: map[string]any{"expected": lit, "got": s}}}
			}
			return s, nil
		},
		jsonSchema: func() (*js.Schema, error) { return &js.Schema{Type: "string", Const: lit}, nil },
		orig:       lit,
	}
}

// Opaque accepts values of a foreign Go type without looking inside them.
// A nil type accepts anything. Pointers to the type are accepted too.
func Opaque(t reflect.Type) AnyAdapter {
	return AnyAdapter{
		parse: func(_ context.Context, v any) (any, error) {
			if t == nil || v == nil {
				return v, nil
			}
			vt := reflect.TypeOf(v)
			if vt.AssignableTo(t) || (vt.Kind() == reflect.Pointer && vt.Elem().AssignableTo(t)) {
				return v, nil
			}
			if t.Kind() == reflect.Interface && vt.Implements(t) {
				return v, nil
			}
			return nil, invalidType(t.String())
		},
		jsonSchema: func() (*js.Schema, error) {
			if t == nil {
				return &js.Schema{}, nil
			}
			return &js.Schema{Description: "opaque " + t.String()}, nil
		},
		orig: t,
	}
}

// Time accepts RFC 3339 strings and time.Time values and yields time.Time.
func Time() AnyAdapter {
	c := codec.TimeRFC3339()
	return AnyAdapter{
		parse: func(ctx context.Context, v any) (any, error) {
			switch t := v.(type) {
			case time.Time:
				return t, nil
			case *time.Time:
				if t != nil {
					return *t, nil
				}
			case string:
				return c.Decode(ctx, t)
			}
			return nil, invalidType("date-time string")
		},
		jsonSchema: c.JSONSchema,
		orig:       c,
	}
}

func invalidType(expected string) error {
	msg := i18n.T(polyskema.CodeInvalidType, map[string]string{"expected": expected})
	return polyskema.Issues{polyskema.IssueAt("/", polyskema.CodeInvalidType, msg, map[string]any{"expected": expected})}
}

type stringSchema struct{}

func (stringSchema) Parse(_ context.Context, v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", invalidType("string")
	}
	return s, nil
}

func (stringSchema) ParseWithMeta(ctx context.Context, v any) (polyskema.Decoded[string], error) {
	s, err := (stringSchema{}).Parse(ctx, v)
	return polyskema.Decoded[string]{Value: s, Presence: polyskema.PresenceMap{"/": polyskema.PresenceSeen}}, err
}

func (stringSchema) Validate(ctx context.Context, v any) error {
	_, err := (stringSchema{}).Parse(ctx, v)
	return err
}

func (stringSchema) JSONSchema() (*js.Schema, error) { return &js.Schema{Type: "string"}, nil }

// stringAsSchema wraps stringSchema and projects to a domain type T with underlying string.
type stringAsSchema[T ~string] struct{}

func (stringAsSchema[T]) Parse(ctx context.Context, v any) (T, error) {
	s, err := (stringSchema{}).Parse(ctx, v)
	return T(s), err
}

func (stringAsSchema[T]) ParseWithMeta(ctx context.Context, v any) (polyskema.Decoded[T], error) {
	ds, err := (stringSchema{}).ParseWithMeta(ctx, v)
	return polyskema.Decoded[T]{Value: T(ds.Value), Presence: ds.Presence}, err
}

func (stringAsSchema[T]) Validate(ctx context.Context, v any) error {
	return (stringSchema{}).Validate(ctx, v)
}

func (stringAsSchema[T]) JSONSchema() (*js.Schema, error) { return (stringSchema{}).JSONSchema() }

type boolSchema struct{}

func (boolSchema) Parse(_ context.Context, v any) (bool, error) {
	b, ok := v.(bool)
	if !ok {
		return false, invalidType("boolean")
	}
	return b, nil
}

func (boolSchema) ParseWithMeta(ctx context.Context, v any) (polyskema.Decoded[bool], error) {
	b, err := (boolSchema{}).Parse(ctx, v)
	return polyskema.Decoded[bool]{Value: b, Presence: polyskema.PresenceMap{"/": polyskema.PresenceSeen}}, err
}

func (boolSchema) Validate(ctx context.Context, v any) error {
	_, err := (boolSchema{}).Parse(ctx, v)
	return err
}

func (boolSchema) JSONSchema() (*js.Schema, error) { return &js.Schema{Type: "boolean"}, nil }

// boolAsSchema wraps boolSchema and projects to a domain type T with underlying bool.
type boolAsSchema[T ~bool] struct{}

func (boolAsSchema[T]) Parse(ctx context.Context, v any) (T, error) {
	b, err := (boolSchema{}).Parse(ctx, v)
	return T(b), err
}

func (boolAsSchema[T]) ParseWithMeta(ctx context.Context, v any) (polyskema.Decoded[T], error) {
	db, err := (boolSchema{}).ParseWithMeta(ctx, v)
	return polyskema.Decoded[T]{Value: T(db.Value), Presence: db.Presence}, err
}

func (boolAsSchema[T]) Validate(ctx context.Context, v any) error {
	return (boolSchema{}).Validate(ctx, v)
}

func (boolAsSchema[T]) JSONSchema() (*js.Schema, error) { return (boolSchema{}).JSONSchema() }

// floatSchema implements NumberBuilder[float64] with optional string coercion.
type floatSchema struct{ coerceFromString bool }

func (n *floatSchema) CoerceFromString() NumberBuilder[float64] {
	n.coerceFromString = true
	return n
}

func (n *floatSchema) Parse(_ context.Context, v any) (float64, error) {
	if s, ok := v.(string); ok && n.coerceFromString {
		v = json.Number(strings.TrimSpace(s))
	}
	if _, isBool := v.(bool); isBool {
		return 0, invalidType("number")
	}
	f, ok := asFloat(v)
	if !ok {
		if _, isNum := v.(json.Number); isNum {
			return 0, polyskema.Issues{{Path: "/", Code: polyskema.CodeParseError, Message: i18n.T(polyskema.CodeParseError, nil), Hint: "malformed number"}}
		}
		return 0, invalidType("number")
	}
	if math.IsInf(f, 0) {
		return 0, polyskema.Issues{{Path: "/", Code: polyskema.CodeOverflow, Message: i18n.T(polyskema.CodeOverflow, nil)}}
	}
	return f, nil
}

func (n *floatSchema) ParseWithMeta(ctx context.Context, v any) (polyskema.Decoded[float64], error) {
	f, err := n.Parse(ctx, v)
	return polyskema.Decoded[float64]{Value: f, Presence: polyskema.PresenceMap{"/": polyskema.PresenceSeen}}, err
}

func (n *floatSchema) Validate(ctx context.Context, v any) error {
	_, err := n.Parse(ctx, v)
	return err
}

func (n *floatSchema) JSONSchema() (*js.Schema, error) { return &js.Schema{Type: "number"}, nil }

// intSchema implements NumberBuilder[int64] with optional string coercion.
type intSchema struct{ coerceFromString bool }

func (n *intSchema) CoerceFromString() NumberBuilder[int64] {
	n.coerceFromString = true
	return n
}

func (n *intSchema) Parse(_ context.Context, v any) (int64, error) {
	if s, ok := v.(string); ok && n.coerceFromString {
		v = json.Number(strings.TrimSpace(s))
	}
	switch x := v.(type) {
	case bool:
		return 0, invalidType("integer")
	case json.Number:
		if i, err := strconv.ParseInt(string(x), 10, 64); err == nil {
			return i, nil
		}
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if rv.Uint() > math.MaxInt64 {
			return 0, polyskema.Issues{{Path: "/", Code: polyskema.CodeOverflow, Message: i18n.T(polyskema.CodeOverflow, nil)}}
		}
		return int64(rv.Uint()), nil
	}
	f, ok := asFloat(v)
	if !ok {
		return 0, invalidType("integer")
	}
	if f != math.Trunc(f) {
		return 0, invalidType("integer")
	}
	if f > math.MaxInt64 || f < math.MinInt64 {
		return 0, polyskema.Issues{{Path: "/", Code: polyskema.CodeOverflow, Message: i18n.T(polyskema.CodeOverflow, nil)}}
	}
	return int64(f), nil
}

func (n *intSchema) ParseWithMeta(ctx context.Context, v any) (polyskema.Decoded[int64], error) {
	i, err := n.Parse(ctx, v)
	return polyskema.Decoded[int64]{Value: i, Presence: polyskema.PresenceMap{"/": polyskema.PresenceSeen}}, err
}

func (n *intSchema) Validate(ctx context.Context, v any) error {
	_, err := n.Parse(ctx, v)
	return err
}

func (n *intSchema) JSONSchema() (*js.Schema, error) { return &js.Schema{Type: "integer"}, nil }
