// Package hierarchy enumerates every class reachable from one or more roots.
package hierarchy

import (
	"errors"
	"fmt"
	"strings"

	"github.com/reoring/polyskema/class"
)

var (
	// ErrCycle matches every *CycleError.
	ErrCycle = errors.New("hierarchy: cycle")
	// ErrDuplicateName reports two distinct classes with one qualified name.
	ErrDuplicateName = errors.New("hierarchy: duplicate qualified name")
	// ErrNilClass reports a nil root or subclass.
	ErrNilClass = errors.New("hierarchy: nil class")
)

// CycleError reports a class that is its own ancestor.
type CycleError struct {
	// Path lists qualified names from the root down to the repeated class.
	Path []string
}

func (e *CycleError) Error() string {
	return "hierarchy: cycle: " + strings.Join(e.Path, " -> ")
}

func (e *CycleError) Is(target error) bool { return target == ErrCycle }

// Node is one discovered class.
type Node struct {
	Class class.Class
	// Name is the qualified name.
	Name string
	// Parent is the node the class was first reached from (nil for roots).
	Parent   *Node
	Children []*Node
	Depth    int
}

// Constructor inspects the class signature. Classes that do not implement
// class.Inspector report class.ErrUninspectable.
func (n *Node) Constructor() (*class.Constructor, error) {
	insp, ok := n.Class.(class.Inspector)
	if !ok {
		return nil, fmt.Errorf("%w: %s has no constructor", class.ErrUninspectable, n.Name)
	}
	return class.Inspect(insp)
}

// Set is the ordered result of a walk.
type Set struct {
	nodes  []*Node
	roots  []*Node
	byName map[string]*Node
}

// Nodes returns every node in pre-order.
func (s *Set) Nodes() []*Node { return append([]*Node(nil), s.nodes...) }

// Roots returns the root nodes in the order they were given.
func (s *Set) Roots() []*Node { return append([]*Node(nil), s.roots...) }

func (s *Set) Len() int { return len(s.nodes) }

// Lookup finds a node by qualified name.
func (s *Set) Lookup(name string) (*Node, bool) {
	n, ok := s.byName[name]
	return n, ok
}

// Names returns the qualified names in pre-order.
func (s *Set) Names() []string {
	out := make([]string, len(s.nodes))
	for i, n := range s.nodes {
		out[i] = n.Name
	}
	return out
}

// Walk enumerates root and every class reachable through class.Subclasser,
// root first, children in declared order.
func Walk(root class.Class) (*Set, error) { return WalkMany(root) }

// WalkMany walks each root in turn and merges the results. A class reachable
// from several roots (or several parents) is reported once, at its first
// position.
func WalkMany(roots ...class.Class) (*Set, error) {
	w := &walker{set: &Set{byName: map[string]*Node{}}, seen: map[class.Class]*Node{}, onPath: map[class.Class]bool{}}
	for _, r := range roots {
		n, err := w.visit(r, nil, nil)
		if err != nil {
			return nil, err
		}
		if n != nil {
			w.set.roots = append(w.set.roots, n)
		}
	}
	return w.set, nil
}

type walker struct {
	set    *Set
	seen   map[class.Class]*Node
	onPath map[class.Class]bool
}

func (w *walker) visit(c class.Class, parent *Node, path []string) (*Node, error) {
	if c == nil {
		return nil, ErrNilClass
	}
	name := class.QualifiedName(c)
	if w.onPath[c] {
		return nil, &CycleError{Path: append(append([]string(nil), path...), name)}
	}
	if _, ok := w.seen[c]; ok {
		// diamond: already listed under its first parent
		return nil, nil
	}
	if other, ok := w.set.byName[name]; ok {
		return nil, fmt.Errorf("%w: %s (%T and %T)", ErrDuplicateName, name, other.Class, c)
	}

	n := &Node{Class: c, Name: name, Parent: parent}
	if parent != nil {
		n.Depth = parent.Depth + 1
		parent.Children = append(parent.Children, n)
	}
	w.seen[c] = n
	w.set.byName[name] = n
	w.set.nodes = append(w.set.nodes, n)

	sc, ok := c.(class.Subclasser)
	if !ok {
		return n, nil
	}
	w.onPath[c] = true
	path = append(path, name)
	for _, child := range sc.Subclasses() {
		if _, err := w.visit(child, n, path); err != nil {
			return nil, err
		}
	}
	delete(w.onPath, c)
	return n, nil
}
