package class

import (
	"fmt"
	"reflect"
	"strings"
	"time"
)

// Kind classifies a declared parameter type.
type Kind int

const (
	KindAny Kind = iota
	KindString
	KindBool
	KindInt
	KindFloat
	KindList
	KindTuple
	KindMap
	// KindObject is a foreign Go type accepted as-is.
	KindObject
	// KindRef is a named type resolved through a Resolver.
	KindRef
	// KindTime is an RFC 3339 timestamp decoded to time.Time.
	KindTime
)

var kindNames = [...]string{"any", "str", "bool", "int", "float", "list", "tuple", "map", "object", "ref", "datetime"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Type is a declared parameter type.
type Type struct {
	Kind Kind
	// Elem is the element type of List and the value type of Map.
	Elem *Type
	// Items are the positional types of a Tuple.
	Items []Type
	// Name is the referenced name of a Ref, or a display name for Object.
	Name string
	// GoType is the accepted Go type of an Object (nil accepts anything).
	GoType reflect.Type
}

var (
	AnyType    = Type{Kind: KindAny}
	StringType = Type{Kind: KindString}
	BoolType   = Type{Kind: KindBool}
	IntType    = Type{Kind: KindInt}
	FloatType  = Type{Kind: KindFloat}
	TimeType   = Type{Kind: KindTime}
)

var timeType = reflect.TypeOf(time.Time{})

func ListOf(elem Type) Type { return Type{Kind: KindList, Elem: &elem} }

func MapOf(elem Type) Type { return Type{Kind: KindMap, Elem: &elem} }

func TupleOf(items ...Type) Type { return Type{Kind: KindTuple, Items: items} }

// ObjectOf accepts values of the Go type t.
func ObjectOf(t reflect.Type) Type {
	name := "object"
	if t != nil {
		name = t.String()
	}
	return Type{Kind: KindObject, GoType: t, Name: name}
}

// RefTo names a type resolved at synthesis time.
func RefTo(name string) Type { return Type{Kind: KindRef, Name: name} }

// String renders the type in the manifest type syntax.
func (t Type) String() string {
	switch t.Kind {
	case KindList:
		return "list[" + t.elem().String() + "]"
	case KindMap:
		return "map[" + t.elem().String() + "]"
	case KindTuple:
		parts := make([]string, len(t.Items))
		for i, it := range t.Items {
			parts[i] = it.String()
		}
		return "tuple[" + strings.Join(parts, ",") + "]"
	case KindRef:
		return t.Name
	case KindObject:
		if t.Name != "" && t.Name != "object" {
			return "object[" + t.Name + "]"
		}
		return "object"
	}
	return t.Kind.String()
}

func (t Type) elem() Type {
	if t.Elem == nil {
		return AnyType
	}
	return *t.Elem
}

// Resolver resolves named (Ref) types.
type Resolver interface {
	Resolve(name string) (Type, error)
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(name string) (Type, error)

func (f ResolverFunc) Resolve(name string) (Type, error) { return f(name) }

// Types is a Resolver backed by a fixed table.
type Types map[string]Type

func (ts Types) Resolve(name string) (Type, error) {
	if t, ok := ts[name]; ok {
		return t, nil
	}
	return Type{}, fmt.Errorf("%w: %q", ErrUnresolved, name)
}

// Chain tries each resolver in order and returns the first success.
func Chain(rs ...Resolver) Resolver {
	return ResolverFunc(func(name string) (Type, error) {
		for _, r := range rs {
			if r == nil {
				continue
			}
			if t, err := r.Resolve(name); err == nil {
				return t, nil
			}
		}
		return Type{}, fmt.Errorf("%w: %q", ErrUnresolved, name)
	})
}

// TypeOf maps a Go type to a declared type.
func TypeOf(rt reflect.Type) Type {
	if rt == nil {
		return AnyType
	}
	if rt == timeType {
		return TimeType
	}
	switch rt.Kind() {
	case reflect.String:
		return StringType
	case reflect.Bool:
		return BoolType
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return IntType
	case reflect.Float32, reflect.Float64:
		return FloatType
	case reflect.Slice:
		return ListOf(TypeOf(rt.Elem()))
	case reflect.Array:
		items := make([]Type, rt.Len())
		for i := range items {
			items[i] = TypeOf(rt.Elem())
		}
		return TupleOf(items...)
	case reflect.Map:
		if rt.Key().Kind() == reflect.String {
			return MapOf(TypeOf(rt.Elem()))
		}
	case reflect.Interface:
		if rt.NumMethod() == 0 {
			return AnyType
		}
	case reflect.Pointer:
		if rt.Elem().Kind() != reflect.Struct {
			return TypeOf(rt.Elem())
		}
	}
	return ObjectOf(rt)
}
