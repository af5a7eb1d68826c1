package dsl_test

import (
	"context"
	"encoding/json"
	"reflect"
	"testing"
	"time"

	polyskema "github.com/reoring/polyskema"
	g "github.com/reoring/polyskema/dsl"
)

func TestStringSchema_Basic(t *testing.T) {
	s := g.String()
	ctx := context.Background()

	v, err := s.Parse(ctx, "hello")
	if err != nil || v != "hello" {
		t.Fatalf("parse ok expected, got v=%v err=%v", v, err)
	}

	_, err = s.Parse(ctx, 1)
	if !polyskema.HasCode(err, polyskema.CodeInvalidType) {
		t.Fatalf("expected invalid_type, got %v", err)
	}

	dv, err := s.ParseWithMeta(ctx, "x")
	if err != nil {
		t.Fatalf("parse with meta err: %v", err)
	}
	if !dv.Presence.Has("/", polyskema.PresenceSeen) {
		t.Fatalf("expected PresenceSeen at root")
	}
}

func TestFloat_AcceptsNumericKinds(t *testing.T) {
	ctx := context.Background()
	s := g.Float()
	for _, in := range []any{1, int32(2), uint8(3), 4.5, float32(1.5), json.Number("2.25")} {
		if _, err := s.Parse(ctx, in); err != nil {
			t.Fatalf("Parse(%#v): %v", in, err)
		}
	}
	if _, err := s.Parse(ctx, true); !polyskema.HasCode(err, polyskema.CodeInvalidType) {
		t.Fatalf("bool must be rejected, got %v", err)
	}
	if _, err := s.Parse(ctx, "2.5"); !polyskema.HasCode(err, polyskema.CodeInvalidType) {
		t.Fatalf("string must be rejected without coercion, got %v", err)
	}
	v, err := g.Float().CoerceFromString().Parse(ctx, " 2.5 ")
	if err != nil || v != 2.5 {
		t.Fatalf("coerced parse: v=%v err=%v", v, err)
	}
}

func TestInt_RejectsFractions(t *testing.T) {
	ctx := context.Background()
	s := g.Int()
	if v, err := s.Parse(ctx, 3.0); err != nil || v != 3 {
		t.Fatalf("integral float: v=%v err=%v", v, err)
	}
	if _, err := s.Parse(ctx, 3.5); !polyskema.HasCode(err, polyskema.CodeInvalidType) {
		t.Fatalf("expected invalid_type, got %v", err)
	}
	if _, err := s.Parse(ctx, uint64(1<<63)); !polyskema.HasCode(err, polyskema.CodeOverflow) {
		t.Fatalf("expected overflow, got %v", err)
	}
}

func TestLiteral(t *testing.T) {
	ctx := context.Background()
	lit := g.Literal("shapes.Circle")
	if _, err := lit.Parse(ctx, "shapes.Circle"); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if _, err := lit.Parse(ctx, "shapes.Square"); !polyskema.HasCode(err, polyskema.CodeInvalidEnum) {
		t.Fatalf("expected invalid_enum, got %v", err)
	}
	s, err := lit.JSONSchema()
	if err != nil {
		t.Fatal(err)
	}
	if s.Const != "shapes.Circle" || s.Type != "string" {
		t.Fatalf("unexpected schema: %+v", s)
	}
}

type clock struct{}

func TestOpaque(t *testing.T) {
	ctx := context.Background()
	op := g.Opaque(reflect.TypeOf(clock{}))
	if _, err := op.Parse(ctx, clock{}); err != nil {
		t.Fatalf("value: %v", err)
	}
	if _, err := op.Parse(ctx, &clock{}); err != nil {
		t.Fatalf("pointer: %v", err)
	}
	if _, err := op.Parse(ctx, "clock"); !polyskema.HasCode(err, polyskema.CodeInvalidType) {
		t.Fatalf("expected invalid_type, got %v", err)
	}
	if _, err := g.Opaque(nil).Parse(ctx, 42); err != nil {
		t.Fatalf("nil type accepts anything: %v", err)
	}
}

func TestNullableAndBounds(t *testing.T) {
	ctx := context.Background()
	ad := g.FloatField(false).Min(0).Max(10).Nullable()
	if v, err := ad.Parse(ctx, nil); err != nil || v != nil {
		t.Fatalf("null: v=%v err=%v", v, err)
	}
	if _, err := ad.Parse(ctx, -1); !polyskema.HasCode(err, polyskema.CodeTooShort) {
		t.Fatalf("expected too_short, got %v", err)
	}
	if _, err := ad.Parse(ctx, 11); !polyskema.HasCode(err, polyskema.CodeTooLong) {
		t.Fatalf("expected too_long, got %v", err)
	}
	s, _ := ad.JSONSchema()
	if s.Minimum == nil || *s.Minimum != 0 || s.Maximum == nil || *s.Maximum != 10 {
		t.Fatalf("bounds not exported: %+v", s)
	}
}

func TestTime(t *testing.T) {
	ctx := context.Background()
	ad := g.Time()

	v, err := ad.Parse(ctx, "2024-02-29T12:00:00Z")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	want := time.Date(2024, 2, 29, 12, 0, 0, 0, time.UTC)
	if got, ok := v.(time.Time); !ok || !got.Equal(want) {
		t.Fatalf("got %v", v)
	}
	if v, _ := ad.Parse(ctx, want); v != want {
		t.Fatalf("time.Time should pass through, got %v", v)
	}
	if _, err := ad.Parse(ctx, "2024-02-30"); !polyskema.HasCode(err, polyskema.CodeInvalidFormat) {
		t.Fatalf("want invalid_format, got %v", err)
	}
	if _, err := ad.Parse(ctx, 1700000000); !polyskema.HasCode(err, polyskema.CodeInvalidType) {
		t.Fatalf("want invalid_type, got %v", err)
	}
	s, _ := ad.JSONSchema()
	if s.Type != "string" || s.Format != "date-time" {
		t.Fatalf("unexpected schema %+v", s)
	}
}
