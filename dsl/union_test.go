package dsl_test

import (
	"context"
	"testing"

	polyskema "github.com/reoring/polyskema"
	g "github.com/reoring/polyskema/dsl"
)

func paymentVariants() (polyskema.Schema[map[string]any], polyskema.Schema[map[string]any]) {
	card := g.Object().
		Field("type", g.Literal("card")).Default("card").
		Field("number", g.StringOf[string]()).Required().
		UnknownStrict().
		MustBuild()
	bank := g.Object().
		Field("type", g.Literal("bank")).Default("bank").
		Field("iban", g.StringOf[string]()).Required().
		UnknownStrict().
		MustBuild()
	return card, bank
}

func TestUnion_Discriminator_HappyPath(t *testing.T) {
	ctx := context.Background()
	card, bank := paymentVariants()
	u := g.Object().
		Discriminator("type").
		OneOf(g.Variant("card", card), g.Variant("bank", bank)).
		MustBuild()

	v, err := u.Parse(ctx, map[string]any{"type": "card", "number": "4111111111111111"})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if v["number"] != "4111111111111111" {
		t.Fatalf("unexpected value: %#v", v)
	}
	if _, err := u.Parse(ctx, map[string]any{"type": "bank", "iban": "DE89"}); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
}

func TestUnion_DiscriminatorErrors(t *testing.T) {
	ctx := context.Background()
	card, bank := paymentVariants()
	u := g.Object().
		Discriminator("type").
		OneOf(g.Variant("card", card), g.Variant("bank", bank)).
		MustBuild()

	_, err := u.Parse(ctx, map[string]any{"number": "x"})
	iss, _ := polyskema.AsIssues(err)
	if len(iss) != 1 || iss[0].Code != polyskema.CodeDiscriminatorMissing || iss[0].Path != "/type" {
		t.Fatalf("expected discriminator_missing at /type, got %v", err)
	}

	_, err = u.Parse(ctx, map[string]any{"type": "cash"})
	iss, _ = polyskema.AsIssues(err)
	if len(iss) != 1 || iss[0].Code != polyskema.CodeDiscriminatorUnknown {
		t.Fatalf("expected discriminator_unknown, got %v", err)
	}

	if err := u.Validate(ctx, "not an object"); !polyskema.HasCode(err, polyskema.CodeInvalidType) {
		t.Fatalf("expected invalid_type, got %v", err)
	}
}

func TestUnion_JSONSchemaKeepsOrder(t *testing.T) {
	card, bank := paymentVariants()
	u := g.Object().
		Discriminator("type").
		OneOf(g.Variant("bank", bank), g.Variant("card", card)).
		MustBuild()
	s, err := u.JSONSchema()
	if err != nil {
		t.Fatal(err)
	}
	if len(s.OneOf) != 2 || s.Discriminator == nil || s.Discriminator.PropertyName != "type" {
		t.Fatalf("unexpected union schema: %+v", s)
	}
	if s.OneOf[0].Properties["type"].Const != "bank" || s.OneOf[1].Properties["type"].Const != "card" {
		t.Fatalf("oneOf must follow registration order")
	}
	if got := u.(*g.UnionSchema).Variants(); got[0] != "bank" || got[1] != "card" {
		t.Fatalf("unexpected variants: %v", got)
	}
}

func TestUnion_BuildErrors(t *testing.T) {
	card, _ := paymentVariants()
	if _, err := g.Object().Discriminator("type").Build(); err == nil {
		t.Fatalf("expected error for empty union")
	}
	_, err := g.Object().Discriminator("type").OneOf(g.Variant("card", card), g.Variant("card", card)).Build()
	if err == nil {
		t.Fatalf("expected error for duplicate variant")
	}
}
