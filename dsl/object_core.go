package dsl

import (
	"context"
	"sort"

	polyskema "github.com/reoring/polyskema"
	"github.com/reoring/polyskema/i18n"
	js "github.com/reoring/polyskema/jsonschema"
)

type objectSchema struct {
	fields        map[string]AnyAdapter
	order         []string
	required      map[string]struct{}
	unknownPolicy polyskema.UnknownPolicy
	unknownTarget string
	title         string
	description   string
	refines       []objRefine
}

// Ensure objectSchema implements polyskema.Schema[map[string]any]
var _ polyskema.Schema[map[string]any] = (*objectSchema)(nil)

// handleExistingField parses a present field value and records presence flags.
func (o *objectSchema) handleExistingField(ctx context.Context, k string, ad AnyAdapter, val any, pm polyskema.PresenceMap) (any, polyskema.Issues) {
	markPresenceSubtree(pm, "/"+k, val)
	parsed, err := ad.Parse(ctx, val)
	if err != nil {
		return nil, polyskema.RebaseIssues("/"+k, err)
	}
	return parsed, nil
}

// handleMissingField applies a default when available and records presence; returns handled=true if default path executed.
func (o *objectSchema) handleMissingField(ctx context.Context, k string, ad AnyAdapter, pm polyskema.PresenceMap) (any, polyskema.Issues, bool) {
	if ad.applyDefault == nil {
		return nil, nil, false
	}
	dv, err := ad.applyDefault(ctx)
	if err != nil {
		return nil, polyskema.RebaseIssues("/"+k, err), true
	}
	pm["/"+k] |= polyskema.PresenceDefaultApplied
	return dv, nil, true
}

// collectKnown parses known fields in declaration order, applies defaults, and records presence flags.
func (o *objectSchema) collectKnown(ctx context.Context, src map[string]any, pm polyskema.PresenceMap) (map[string]any, polyskema.Issues) {
	out := make(map[string]any, len(src))
	var iss polyskema.Issues
	for _, k := range o.order {
		ad := o.fields[k]
		if val, exists := src[k]; exists {
			parsed, i2 := o.handleExistingField(ctx, k, ad, val, pm)
			if len(i2) > 0 {
				iss = polyskema.AppendIssues(iss, i2...)
				if polyskema.IsFailFast(ctx) {
					return out, iss
				}
				continue
			}
			out[k] = parsed
			continue
		}
		// missing: apply default if provided; otherwise enforce required
		if dv, i2, handled := o.handleMissingField(ctx, k, ad, pm); handled {
			if len(i2) > 0 {
				iss = polyskema.AppendIssues(iss, i2...)
				if polyskema.IsFailFast(ctx) {
					return out, iss
				}
			} else {
				out[k] = dv
			}
			continue
		}
		if _, req := o.required[k]; req {
			iss = polyskema.AppendIssues(iss, polyskema.Issue{Path: "/" + k, Code: polyskema.CodeRequired, Message: i18n.T(polyskema.CodeRequired, nil), Hint: "required property missing"})
			if polyskema.IsFailFast(ctx) {
				return out, iss
			}
		}
	}
	return out, iss
}

// collectUnknown processes unknown keys according to unknownPolicy and may write into out for passthrough.
func (o *objectSchema) collectUnknown(src map[string]any, out map[string]any) polyskema.Issues {
	var iss polyskema.Issues
	// unknown keys in key-sorted order
	uks := make([]string, 0, len(src))
	for k := range src {
		if _, known := o.fields[k]; !known {
			uks = append(uks, k)
		}
	}
	sort.Strings(uks)
	for _, k := range uks {
		v := src[k]
		switch o.unknownPolicy {
		case polyskema.UnknownStrict:
			iss = polyskema.AppendIssues(iss, polyskema.Issue{Path: "/" + k, Code: polyskema.CodeUnknownKey, Message: i18n.T(polyskema.CodeUnknownKey, nil)})
		case polyskema.UnknownStrip:
			// drop
		case polyskema.UnknownPassthrough:
			if o.unknownTarget == "" {
				out[k] = v
				continue
			}
			extra, _ := out[o.unknownTarget].(map[string]any)
			if extra == nil {
				extra = map[string]any{}
			}
			extra[k] = v
			out[o.unknownTarget] = extra
		}
	}
	return iss
}

func (o *objectSchema) Parse(ctx context.Context, v any) (map[string]any, error) {
	dm, err := o.ParseWithMeta(ctx, v)
	if err != nil {
		return nil, err
	}
	return dm.Value, nil
}

func (o *objectSchema) ParseWithMeta(ctx context.Context, v any) (polyskema.Decoded[map[string]any], error) {
	pm := polyskema.PresenceMap{"/": polyskema.PresenceSeen}
	src, ok := mapOf(v)
	if !ok {
		return polyskema.Decoded[map[string]any]{Presence: pm}, polyskema.Issues{polyskema.Issue{Path: "/", Code: polyskema.CodeInvalidType, Message: i18n.T(polyskema.CodeInvalidType, map[string]string{"expected": "object"}), Hint: "expected object"}}
	}

	out, iss := o.collectKnown(ctx, src, pm)
	if polyskema.IsFailFast(ctx) && len(iss) > 0 {
		return polyskema.Decoded[map[string]any]{Presence: pm}, iss
	}
	if issUnknown := o.collectUnknown(src, out); len(issUnknown) > 0 {
		iss = polyskema.AppendIssues(iss, issUnknown...)
	}
	if len(iss) > 0 {
		return polyskema.Decoded[map[string]any]{Presence: pm}, iss
	}
	if err := o.refine(ctx, out); err != nil {
		return polyskema.Decoded[map[string]any]{Presence: pm}, err
	}
	return polyskema.Decoded[map[string]any]{Value: out, Presence: pm}, nil
}

func (o *objectSchema) Validate(ctx context.Context, v any) error {
	_, err := o.ParseWithMeta(ctx, v)
	return err
}

func (o *objectSchema) JSONSchema() (*js.Schema, error) {
	props := make(map[string]*js.Schema, len(o.fields))
	for _, k := range o.order {
		ps, err := o.fields[k].JSONSchema()
		if err != nil {
			return nil, err
		}
		props[k] = ps
	}
	// Required list in declaration order
	req := make([]string, 0, len(o.required))
	for _, k := range o.order {
		if _, ok := o.required[k]; ok {
			req = append(req, k)
		}
	}
	var additional any
	switch o.unknownPolicy {
	case polyskema.UnknownStrict:
		additional = false
	case polyskema.UnknownStrip, polyskema.UnknownPassthrough:
		// Runtime accepts unknown keys, so JSON Schema marks them as accepted.
		additional = true
	}
	return &js.Schema{Type: "object", Title: o.title, Description: o.description, Properties: props, Required: req, AdditionalProperties: additional}, nil
}

// FieldNames returns the declared field names in order.
func (o *objectSchema) FieldNames() []string { return append([]string(nil), o.order...) }

// refine runs builder-registered hooks.
func (o *objectSchema) refine(ctx context.Context, v map[string]any) error {
	var iss polyskema.Issues
	for _, r := range o.refines {
		if err := r.fn(ctx, v); err != nil {
			if i2, ok := polyskema.AsIssues(err); ok {
				iss = polyskema.AppendIssues(iss, i2...)
			} else {
				iss = polyskema.AppendIssues(iss, polyskema.Issue{Path: "/", Code: "custom", Message: err.Error(), Cause: err, Params: map[string]any{"rule": r.name}})
			}
			if polyskema.IsFailFast(ctx) {
				return iss
			}
		}
	}
	if len(iss) > 0 {
		return iss
	}
	return nil
}

type objRefine struct {
	name string
	fn   func(context.Context, map[string]any) error
}
