package class

import (
	"fmt"
	"strings"
)

// ParseType parses the manifest type syntax:
//
//	any | str | string | bool | int | float | object
//	list[T] | map[T] | dict[str,T] | tuple[T1,T2,...] | optional[T]
//
// Any other identifier becomes a Ref. An empty expression is Any.
// optional[T] is reported through the second result.
func ParseType(expr string) (Type, bool, error) {
	p := &typeParser{s: strings.TrimSpace(expr)}
	if p.s == "" {
		return AnyType, false, nil
	}
	t, opt, err := p.parse()
	if err != nil {
		return Type{}, false, err
	}
	if p.skipSpace(); p.i != len(p.s) {
		return Type{}, false, fmt.Errorf("class: type %q: unexpected %q", expr, p.s[p.i:])
	}
	return t, opt, nil
}

type typeParser struct {
	s string
	i int
}

func (p *typeParser) skipSpace() {
	for p.i < len(p.s) && p.s[p.i] == ' ' {
		p.i++
	}
}

func (p *typeParser) ident() string {
	p.skipSpace()
	start := p.i
	for p.i < len(p.s) {
		c := p.s[p.i]
		if c == '[' || c == ']' || c == ',' || c == ' ' {
			break
		}
		p.i++
	}
	return p.s[start:p.i]
}

func (p *typeParser) eat(c byte) bool {
	p.skipSpace()
	if p.i < len(p.s) && p.s[p.i] == c {
		p.i++
		return true
	}
	return false
}

func (p *typeParser) args() ([]Type, error) {
	if !p.eat('[') {
		return nil, nil
	}
	var out []Type
	for {
		t, _, err := p.parse()
		if err != nil {
			return nil, err
		}
		out = append(out, t)
		if p.eat(']') {
			return out, nil
		}
		if !p.eat(',') {
			return nil, fmt.Errorf("class: type %q: expected ',' or ']' at %d", p.s, p.i)
		}
	}
}

func (p *typeParser) parse() (Type, bool, error) {
	name := p.ident()
	if name == "" {
		return Type{}, false, fmt.Errorf("class: type %q: expected a name at %d", p.s, p.i)
	}
	args, err := p.args()
	if err != nil {
		return Type{}, false, err
	}
	arity := func(n int) error {
		if len(args) != n {
			return fmt.Errorf("class: type %q: %s takes %d argument(s), got %d", p.s, name, n, len(args))
		}
		return nil
	}
	switch strings.ToLower(name) {
	case "any":
		return AnyType, false, arity(0)
	case "str", "string":
		return StringType, false, arity(0)
	case "bool", "boolean":
		return BoolType, false, arity(0)
	case "int", "integer":
		return IntType, false, arity(0)
	case "float", "number":
		return FloatType, false, arity(0)
	case "datetime", "date-time":
		return TimeType, false, arity(0)
	case "object":
		return ObjectOf(nil), false, arity(0)
	case "list", "array":
		if len(args) == 0 {
			return ListOf(AnyType), false, nil
		}
		return ListOf(args[0]), false, arity(1)
	case "map":
		if len(args) == 0 {
			return MapOf(AnyType), false, nil
		}
		return MapOf(args[0]), false, arity(1)
	case "dict":
		if len(args) == 0 {
			return MapOf(AnyType), false, nil
		}
		if err := arity(2); err != nil {
			return Type{}, false, err
		}
		if args[0].Kind != KindString {
			return Type{}, false, fmt.Errorf("class: type %q: dict keys must be str", p.s)
		}
		return MapOf(args[1]), false, nil
	case "tuple":
		return TupleOf(args...), false, nil
	case "optional":
		if err := arity(1); err != nil {
			return Type{}, false, err
		}
		return args[0], true, nil
	}
	if len(args) > 0 {
		return Type{}, false, fmt.Errorf("class: type %q: %s is not generic", p.s, name)
	}
	return RefTo(name), false, nil
}
