package hierarchy_test

import (
	"fmt"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/reoring/polyskema/class"
	"github.com/reoring/polyskema/hierarchy"
)

// buildTree attaches node i under parents[i] % i, so every generated shape is
// a tree rooted at node 0.
func buildTree(parents []int) []*class.Def {
	defs := []*class.Def{class.Define("gen", "C0")}
	for i, p := range parents {
		d := class.Define("gen", fmt.Sprintf("C%d", i+1))
		d.Extends(defs[p%len(defs)])
		defs = append(defs, d)
	}
	return defs
}

func TestWalk_Properties(t *testing.T) {
	params := gopter.DefaultTestParameters()
	params.MinSuccessfulTests = 200
	properties := gopter.NewProperties(params)

	properties.Property("every class is reported exactly once", prop.ForAll(
		func(parents []int) bool {
			defs := buildTree(parents)
			set, err := hierarchy.Walk(defs[0])
			if err != nil || set.Len() != len(defs) {
				return false
			}
			seen := map[string]bool{}
			for _, n := range set.Nodes() {
				if seen[n.Name] {
					return false
				}
				seen[n.Name] = true
			}
			return true
		},
		gen.SliceOf(gen.IntRange(0, 1000)),
	))

	properties.Property("parents precede children", prop.ForAll(
		func(parents []int) bool {
			set, err := hierarchy.Walk(buildTree(parents)[0])
			if err != nil {
				return false
			}
			pos := map[string]int{}
			for i, n := range set.Nodes() {
				pos[n.Name] = i
			}
			for _, n := range set.Nodes() {
				if n.Parent != nil && pos[n.Parent.Name] >= pos[n.Name] {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(0, 1000)),
	))

	properties.Property("walking twice yields the same order", prop.ForAll(
		func(parents []int) bool {
			root := buildTree(parents)[0]
			a, err1 := hierarchy.Walk(root)
			b, err2 := hierarchy.Walk(root)
			if err1 != nil || err2 != nil {
				return false
			}
			return fmt.Sprint(a.Names()) == fmt.Sprint(b.Names())
		},
		gen.SliceOf(gen.IntRange(0, 1000)),
	))

	properties.TestingRun(t)
}
