package dsl

import (
	"context"
	"reflect"
	"sort"
	"strconv"

	polyskema "github.com/reoring/polyskema"
	"github.com/reoring/polyskema/i18n"
	js "github.com/reoring/polyskema/jsonschema"
)

// List accepts any slice or array and parses each element with elem.
func List(elem AnyAdapter) AnyAdapter {
	return AnyAdapter{
		parse: func(ctx context.Context, v any) (any, error) {
			items, ok := sliceOf(v)
			if !ok {
				return nil, invalidType("array")
			}
			return parseItems(ctx, items, func(int) AnyAdapter { return elem })
		},
		jsonSchema: func() (*js.Schema, error) {
			es, err := elem.JSONSchema()
			if err != nil {
				return nil, err
			}
			return &js.Schema{Type: "array", Items: es}, nil
		},
	}
}

// Tuple accepts a sequence of exactly len(items) elements, each parsed with
// the adapter at the same position.
func Tuple(items ...AnyAdapter) AnyAdapter {
	n := len(items)
	return AnyAdapter{
		parse: func(ctx context.Context, v any) (any, error) {
			vals, ok := sliceOf(v)
			if !ok {
				return nil, invalidType("array")
			}
			if len(vals) < n {
				return nil, polyskema.Issues{{Path: "/", Code: polyskema.CodeTooShort, Message: i18n.T(polyskema.CodeTooShort, nil), Params: map[string]any{"min": n, "got": len(vals)}}}
			}
			if len(vals) > n {
				return nil, polyskema.Issues{{Path: "/", Code: polyskema.CodeTooLong, Message: i18n.T(polyskema.CodeTooLong, nil), Params: map[string]any{"max": n, "got": len(vals)}}}
			}
			return parseItems(ctx, vals, func(i int) AnyAdapter { return items[i] })
		},
		jsonSchema: func() (*js.Schema, error) {
			prefix := make([]*js.Schema, 0, n)
			for _, it := range items {
				s, err := it.JSONSchema()
				if err != nil {
					return nil, err
				}
				prefix = append(prefix, s)
			}
			return &js.Schema{Type: "array", PrefixItems: prefix, MinItems: js.IntPtr(n), MaxItems: js.IntPtr(n)}, nil
		},
	}
}

// Map accepts an object (or any Go map keyed by strings) and parses each
// value with elem.
func Map(elem AnyAdapter) AnyAdapter {
	return AnyAdapter{
		parse: func(ctx context.Context, v any) (any, error) {
			src, ok := mapOf(v)
			if !ok {
				return nil, invalidType("object")
			}
			keys := make([]string, 0, len(src))
			for k := range src {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			out := make(map[string]any, len(src))
			var iss polyskema.Issues
			for _, k := range keys {
				pv, err := elem.Parse(ctx, src[k])
				if err != nil {
					iss = polyskema.AppendIssues(iss, polyskema.RebaseIssues("/"+k, err)...)
					if polyskema.IsFailFast(ctx) {
						return nil, iss
					}
					continue
				}
				out[k] = pv
			}
			if len(iss) > 0 {
				return nil, iss
			}
			return out, nil
		},
		jsonSchema: func() (*js.Schema, error) {
			es, err := elem.JSONSchema()
			if err != nil {
				return nil, err
			}
			return &js.Schema{Type: "object", AdditionalProperties: es}, nil
		},
	}
}

func parseItems(ctx context.Context, items []any, at func(int) AnyAdapter) (any, error) {
	out := make([]any, len(items))
	var iss polyskema.Issues
	for i, it := range items {
		pv, err := at(i).Parse(ctx, it)
		if err != nil {
			iss = polyskema.AppendIssues(iss, polyskema.RebaseIssues("/"+strconv.Itoa(i), err)...)
			if polyskema.IsFailFast(ctx) {
				return nil, iss
			}
			continue
		}
		out[i] = pv
	}
	if len(iss) > 0 {
		return nil, iss
	}
	return out, nil
}

// sliceOf widens []any, typed slices and arrays to []any.
func sliceOf(v any) ([]any, bool) {
	if s, ok := v.([]any); ok {
		return s, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

// mapOf widens map[string]any and other string-keyed maps.
func mapOf(v any) (map[string]any, bool) {
	if m, ok := v.(map[string]any); ok {
		return m, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	out := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out[iter.Key().String()] = iter.Value().Interface()
	}
	return out, true
}
