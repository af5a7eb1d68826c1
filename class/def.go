package class

import (
	"fmt"
	"reflect"
)

// Def is a class declared with a builder. Instances built by its default
// constructor are *Object values.
//
//	shape := class.Define("shapes", "Shape").Abstract()
//	circle := class.Define("shapes", "Circle").Extends(shape).Param("radius", class.FloatType)
type Def struct {
	ns, name  string
	doc       string
	parent    Class
	children  []Class
	params    []Param
	mixins    []*Def
	own       bool
	abstract  bool
	newFn     func(Args) (any, error)
	inspectEr error
}

var (
	_ Subclasser = (*Def)(nil)
	_ Inspector  = (*Def)(nil)
	_ Extendable = (*Def)(nil)
)

// Define starts a class declaration.
func Define(namespace, name string) *Def { return &Def{ns: namespace, name: name} }

func (d *Def) Namespace() string { return d.ns }
func (d *Def) Name() string      { return d.name }

// Parent returns the class d was first declared to extend.
func (d *Def) Parent() Class { return d.parent }

// Subclasses returns the direct subclasses in declaration order.
func (d *Def) Subclasses() []Class { return append([]Class(nil), d.children...) }

// AddSubclass appends c to the direct subclasses.
func (d *Def) AddSubclass(c Class) { d.children = append(d.children, c) }

// Extends registers d as a subclass of parent. Calling it more than once
// declares multiple inheritance; the first parent supplies the inherited
// constructor.
func (d *Def) Extends(parent Extendable) *Def {
	if d.parent == nil {
		d.parent = parent
	}
	parent.AddSubclass(d)
	return d
}

// Doc sets the class documentation.
func (d *Def) Doc(s string) *Def {
	d.doc = s
	return d
}

// Param declares a required constructor parameter.
func (d *Def) Param(name string, t Type) *Def {
	d.params = append(d.params, Param{Name: name, Type: t})
	d.own = true
	return d
}

// ParamDefault declares an optional constructor parameter.
func (d *Def) ParamDefault(name string, t Type, def any) *Def {
	d.params = append(d.params, Param{Name: name, Type: t, Default: def, HasDefault: true})
	d.own = true
	return d
}

// Describe documents the most recently declared parameter.
func (d *Def) Describe(doc string) *Def {
	if n := len(d.params); n > 0 {
		d.params[n-1].Doc = doc
	}
	return d
}

// Mixin appends the parameters of m after the class's own parameters.
func (d *Def) Mixin(m *Def) *Def {
	d.mixins = append(d.mixins, m)
	d.own = true
	return d
}

// Abstract makes construction fail with ErrAbstract.
func (d *Def) Abstract() *Def {
	d.abstract = true
	return d
}

func (d *Def) IsAbstract() bool { return d.abstract }

// Construct replaces the default constructor.
func (d *Def) Construct(fn func(Args) (any, error)) *Def {
	d.newFn = fn
	d.own = true
	return d
}

// Opaque makes the constructor signature unreadable; Constructor returns err
// wrapped with ErrUninspectable.
func (d *Def) Opaque(err error) *Def {
	if err == nil {
		err = fmt.Errorf("signature of %s is hidden", QualifiedName(d))
	}
	d.inspectEr = err
	return d
}

// Constructor returns the class signature. A Def that declares no parameters
// and no constructor of its own inherits them from its first parent.
func (d *Def) Constructor() (*Constructor, error) {
	if d.inspectEr != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrUninspectable, QualifiedName(d), d.inspectEr)
	}
	params, newFn, doc, err := d.signature()
	if err != nil {
		return nil, err
	}
	if d.doc != "" {
		doc = d.doc
	}
	c := &Constructor{Params: params, Doc: doc, Type: reflect.TypeOf((*Object)(nil))}
	switch {
	case d.abstract:
		c.New = func(Args) (any, error) {
			return nil, fmt.Errorf("%w: %s", ErrAbstract, QualifiedName(d))
		}
	case newFn != nil:
		c.New = newFn
		c.Type = nil
	default:
		c.New = func(a Args) (any, error) { return NewObject(d, a), nil }
	}
	return c, nil
}

func (d *Def) signature() ([]Param, func(Args) (any, error), string, error) {
	if !d.own && d.parent != nil {
		switch p := d.parent.(type) {
		case *Def:
			params, fn, doc, err := p.signature()
			if err != nil {
				return nil, nil, "", err
			}
			return params, fn, doc, nil
		case Inspector:
			pc, err := p.Constructor()
			if err != nil {
				return nil, nil, "", err
			}
			return append([]Param(nil), pc.Params...), pc.New, pc.Doc, nil
		}
	}
	params := append([]Param(nil), d.params...)
	for _, m := range d.mixins {
		mp, _, _, err := m.signature()
		if err != nil {
			return nil, nil, "", err
		}
		params = append(params, mp...)
	}
	return params, d.newFn, d.doc, nil
}
