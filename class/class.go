// Package class describes the class hierarchies that polyskema turns into
// models. A Class is identified by its namespace and name; it may expose its
// direct subclasses (Subclasser) and its constructor signature (Inspector).
//
// Three providers ship with the package: Def (a builder), Reflect (derived
// from a Go struct) and LoadManifest (a YAML document of Defs).
package class

import (
	"errors"
	"fmt"
	"reflect"
)

var (
	// ErrUninspectable reports a class whose constructor signature cannot be read.
	ErrUninspectable = errors.New("class: constructor signature is not inspectable")
	// ErrAbstract is returned when constructing an abstract class.
	ErrAbstract = errors.New("class: abstract class cannot be instantiated")
	// ErrUnresolved reports a named type the resolver does not know.
	ErrUnresolved = errors.New("class: unresolved type")
	// ErrPanic wraps a panic raised by user code behind a class.
	ErrPanic = errors.New("class: panic")
)

// Class is a node of a class hierarchy. Implementations must be comparable
// (pointer types in practice); identity is what the walker deduplicates on.
type Class interface {
	Namespace() string
	Name() string
}

// Subclasser exposes the direct subclasses of a class in declaration order.
// Classes that do not implement it are leaves.
type Subclasser interface {
	Subclasses() []Class
}

// Inspector exposes the constructor of a class.
type Inspector interface {
	Constructor() (*Constructor, error)
}

// Abstracter reports classes that exist only to be subclassed. The registry
// leaves them out of the union.
type Abstracter interface {
	IsAbstract() bool
}

// IsAbstract reports whether c implements Abstracter and is abstract.
func IsAbstract(c Class) bool {
	a, ok := c.(Abstracter)
	return ok && a.IsAbstract()
}

// Extendable accepts subclasses after it was created.
type Extendable interface {
	Class
	AddSubclass(c Class)
}

// QualifiedName returns "<namespace>.<name>", or the bare name when the
// namespace is empty.
func QualifiedName(c Class) string {
	if c == nil {
		return ""
	}
	if ns := c.Namespace(); ns != "" {
		return ns + "." + c.Name()
	}
	return c.Name()
}

// Args carries constructor arguments by parameter name.
type Args map[string]any

// Constructor is the inspected signature of a class.
type Constructor struct {
	// Params in declaration order.
	Params []Param
	// New builds the domain object from validated arguments.
	New func(Args) (any, error)
	// Type is the Go type New produces, when known.
	Type reflect.Type
	Doc  string
}

// Param is one constructor parameter.
type Param struct {
	Name       string
	Type       Type
	Default    any
	HasDefault bool
	Doc        string
}

// Required reports whether the parameter has no default.
func (p Param) Required() bool { return !p.HasDefault }

// Instantiate calls New with args. A nil New is reported as ErrUninspectable
// and a panic in New as an error wrapping ErrPanic.
func (c *Constructor) Instantiate(args Args) (obj any, err error) {
	if c == nil || c.New == nil {
		return nil, ErrUninspectable
	}
	if args == nil {
		args = Args{}
	}
	defer func() {
		if r := recover(); r != nil {
			obj, err = nil, fmt.Errorf("%w in constructor: %v", ErrPanic, r)
		}
	}()
	return c.New(args)
}

// Inspect returns the constructor of an Inspector. A panic while reading the
// signature is reported as ErrUninspectable.
func Inspect(insp Inspector) (ctor *Constructor, err error) {
	defer func() {
		if r := recover(); r != nil {
			ctor, err = nil, fmt.Errorf("%w: %w while reading the signature: %v", ErrUninspectable, ErrPanic, r)
		}
	}()
	return insp.Constructor()
}
