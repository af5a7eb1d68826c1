package polyskema

import (
	"reflect"
	"strings"
)

// ResolveStructKey applies the repository-wide rule to resolve a struct field's
// external key.
// Priority: polyskema:"name=..." > json tag name > field name; "-" disables the field.
func ResolveStructKey(sf reflect.StructField) string {
	if gt := sf.Tag.Get("polyskema"); gt != "" {
		if gt == "-" {
			return "-"
		}
		if v, ok := TagOptions(sf)["name"]; ok && v != "" {
			return v
		}
	}
	if jt := sf.Tag.Get("json"); jt != "" {
		if jt == "-" {
			return "-"
		}
		if i := strings.IndexByte(jt, ','); i >= 0 {
			if jt[:i] != "" {
				return jt[:i]
			}
			return sf.Name
		}
		return jt
	}
	return sf.Name
}

// TagOptions parses the polyskema struct tag into key/value options.
// Bare words map to "": `polyskema:"optional,default=2.5"` yields
// {"optional": "", "default": "2.5"}.
func TagOptions(sf reflect.StructField) map[string]string {
	out := map[string]string{}
	gt := sf.Tag.Get("polyskema")
	if gt == "" || gt == "-" {
		return out
	}
	for _, p := range strings.Split(gt, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if k, v, ok := strings.Cut(p, "="); ok {
			out[strings.TrimSpace(k)] = strings.TrimSpace(v)
			continue
		}
		out[p] = ""
	}
	return out
}
