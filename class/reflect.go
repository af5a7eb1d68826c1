package class

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"

	"gopkg.in/yaml.v3"

	polyskema "github.com/reoring/polyskema"
)

// Reflected is a class derived from a Go struct type. Constructor parameters
// are the exported fields, keyed by polyskema/json tags, and instances are
// pointers to freshly populated structs.
//
// Supported polyskema tag options:
//
//	name=<key>      external key
//	default=<yaml>  default value, decoded as YAML
//	optional        optional with a null default
//	doc=<text>      parameter documentation (no commas)
type Reflected struct {
	ns, name string
	typ      reflect.Type
	doc      string
	children []Class
}

var (
	_ Subclasser = (*Reflected)(nil)
	_ Inspector  = (*Reflected)(nil)
	_ Extendable = (*Reflected)(nil)
)

// Reflect derives a class from T. An empty namespace uses T's package path.
func Reflect[T any](namespace string) *Reflected {
	t := reflect.TypeOf((*T)(nil)).Elem()
	if namespace == "" {
		namespace = t.PkgPath()
	}
	return &Reflected{ns: namespace, name: t.Name(), typ: t}
}

func (r *Reflected) Namespace() string   { return r.ns }
func (r *Reflected) Name() string        { return r.name }
func (r *Reflected) Subclasses() []Class { return append([]Class(nil), r.children...) }
func (r *Reflected) AddSubclass(c Class) { r.children = append(r.children, c) }

// GoType returns the reflected struct type.
func (r *Reflected) GoType() reflect.Type { return r.typ }

// Extends registers r as a subclass of parent.
func (r *Reflected) Extends(parent Extendable) *Reflected {
	parent.AddSubclass(r)
	return r
}

// Doc sets the class documentation.
func (r *Reflected) Doc(s string) *Reflected {
	r.doc = s
	return r
}

type reflectedField struct {
	index []int
	param Param
}

// Constructor derives the parameter list from the struct fields.
func (r *Reflected) Constructor() (*Constructor, error) {
	if r.typ.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: %s is a %s, not a struct", ErrUninspectable, r.typ, r.typ.Kind())
	}
	fields, err := reflectFields(r.typ)
	if err != nil {
		return nil, err
	}
	params := make([]Param, len(fields))
	for i, f := range fields {
		params[i] = f.param
	}
	typ := r.typ
	return &Constructor{
		Params: params,
		Doc:    r.doc,
		Type:   reflect.PointerTo(typ),
		New: func(args Args) (any, error) {
			pv := reflect.New(typ)
			for _, f := range fields {
				v, ok := args[f.param.Name]
				if !ok {
					continue
				}
				if err := assign(pv.Elem().FieldByIndex(f.index), v); err != nil {
					return nil, fmt.Errorf("%s.%s: %w", typ.Name(), f.param.Name, err)
				}
			}
			return pv.Interface(), nil
		},
	}, nil
}

func reflectFields(t reflect.Type) ([]reflectedField, error) {
	var out []reflectedField
	for _, sf := range reflect.VisibleFields(t) {
		if !sf.IsExported() {
			continue
		}
		if sf.Anonymous && sf.Type.Kind() == reflect.Struct && sf.Tag.Get("polyskema") == "" && sf.Tag.Get("json") == "" {
			// promoted fields are visited on their own
			continue
		}
		if len(sf.Index) > 1 && !promotedThroughValues(t, sf.Index) {
			continue
		}
		key := polyskema.ResolveStructKey(sf)
		if key == "-" {
			continue
		}
		opts := polyskema.TagOptions(sf)
		p := Param{Name: key, Type: TypeOf(sf.Type), Doc: opts["doc"]}
		if raw, ok := opts["default"]; ok {
			var dv any
			if err := yaml.Unmarshal([]byte(raw), &dv); err != nil {
				return nil, fmt.Errorf("%w: %s.%s: bad default %q: %w", ErrUninspectable, t.Name(), sf.Name, raw, err)
			}
			p.Default, p.HasDefault = dv, true
		} else if _, ok := opts["optional"]; ok {
			p.HasDefault = true
		}
		out = append(out, reflectedField{index: sf.Index, param: p})
	}
	return out, nil
}

// promotedThroughValues reports whether every embedding step along index is a
// struct value (not a pointer), so FieldByIndex cannot hit a nil pointer.
func promotedThroughValues(t reflect.Type, index []int) bool {
	for _, i := range index[:len(index)-1] {
		f := t.Field(i)
		if f.Type.Kind() != reflect.Struct {
			return false
		}
		t = f.Type
	}
	return true
}

// assign stores the generic value v into dst, converting JSON-shaped values
// (float64, json.Number, []any, map[string]any) to the destination type.
func assign(dst reflect.Value, v any) error {
	if v == nil {
		dst.Set(reflect.Zero(dst.Type()))
		return nil
	}
	src := reflect.ValueOf(v)
	if src.Type().AssignableTo(dst.Type()) {
		dst.Set(src)
		return nil
	}
	switch dst.Kind() {
	case reflect.Pointer:
		if src.Kind() == reflect.Pointer && src.Type().Elem().AssignableTo(dst.Type().Elem()) {
			dst.Set(src)
			return nil
		}
		nv := reflect.New(dst.Type().Elem())
		if err := assign(nv.Elem(), v); err != nil {
			return err
		}
		dst.Set(nv)
		return nil
	case reflect.String:
		if s, ok := v.(string); ok {
			dst.SetString(s)
			return nil
		}
	case reflect.Bool:
		if b, ok := v.(bool); ok {
			dst.SetBool(b)
			return nil
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		f, ok := number(v)
		if ok && f == math.Trunc(f) && !dst.OverflowInt(int64(f)) {
			dst.SetInt(int64(f))
			return nil
		}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		f, ok := number(v)
		if ok && f >= 0 && f == math.Trunc(f) && !dst.OverflowUint(uint64(f)) {
			dst.SetUint(uint64(f))
			return nil
		}
	case reflect.Float32, reflect.Float64:
		if f, ok := number(v); ok {
			dst.SetFloat(f)
			return nil
		}
	case reflect.Slice:
		if src.Kind() == reflect.Slice || src.Kind() == reflect.Array {
			out := reflect.MakeSlice(dst.Type(), src.Len(), src.Len())
			for i := 0; i < src.Len(); i++ {
				if err := assign(out.Index(i), src.Index(i).Interface()); err != nil {
					return fmt.Errorf("[%d]: %w", i, err)
				}
			}
			dst.Set(out)
			return nil
		}
	case reflect.Array:
		if (src.Kind() == reflect.Slice || src.Kind() == reflect.Array) && src.Len() == dst.Len() {
			for i := 0; i < src.Len(); i++ {
				if err := assign(dst.Index(i), src.Index(i).Interface()); err != nil {
					return fmt.Errorf("[%d]: %w", i, err)
				}
			}
			return nil
		}
	case reflect.Map:
		if src.Kind() == reflect.Map && src.Type().Key().Kind() == reflect.String && dst.Type().Key().Kind() == reflect.String {
			out := reflect.MakeMapWithSize(dst.Type(), src.Len())
			iter := src.MapRange()
			for iter.Next() {
				ev := reflect.New(dst.Type().Elem()).Elem()
				if err := assign(ev, iter.Value().Interface()); err != nil {
					return fmt.Errorf("[%s]: %w", iter.Key().String(), err)
				}
				out.SetMapIndex(reflect.ValueOf(iter.Key().String()).Convert(dst.Type().Key()), ev)
			}
			dst.Set(out)
			return nil
		}
	case reflect.Interface:
		if src.Type().Implements(dst.Type()) {
			dst.Set(src)
			return nil
		}
	}
	if src.Type().ConvertibleTo(dst.Type()) && src.Kind() == dst.Kind() {
		dst.Set(src.Convert(dst.Type()))
		return nil
	}
	return fmt.Errorf("cannot use %T as %s", v, dst.Type())
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case json.Number:
		f, err := strconv.ParseFloat(string(n), 64)
		return f, err == nil
	case bool, string:
		return 0, false
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
