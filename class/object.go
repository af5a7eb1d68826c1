package class

import "sort"

// Object is the instance produced by the default constructor of a Def.
type Object struct {
	class Class
	args  Args
}

// NewObject builds an Object of class c holding a copy of args.
func NewObject(c Class, args Args) *Object {
	cp := make(Args, len(args))
	for k, v := range args {
		cp[k] = v
	}
	return &Object{class: c, args: cp}
}

// Class returns the class the object was built from.
func (o *Object) Class() Class { return o.class }

// Get returns the constructor argument stored under name.
func (o *Object) Get(name string) (any, bool) {
	v, ok := o.args[name]
	return v, ok
}

// Keys returns the argument names in sorted order.
func (o *Object) Keys() []string {
	keys := make([]string, 0, len(o.args))
	for k := range o.args {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ToDict returns a copy of the arguments.
func (o *Object) ToDict() map[string]any {
	out := make(map[string]any, len(o.args))
	for k, v := range o.args {
		out[k] = v
	}
	return out
}
