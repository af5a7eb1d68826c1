package synth

import (
	j "github.com/goccy/go-json"

	polyskema "github.com/reoring/polyskema"
	"github.com/reoring/polyskema/class"
)

// Instance is a validated document together with the domain object built
// from it. It wraps the object instead of standing in for it; use As to get
// the object back with its own type.
type Instance struct {
	model    *Model
	values   map[string]any
	presence polyskema.PresenceMap
	obj      any
}

func (i *Instance) Model() *Model { return i.model }
func (i *Instance) Tag() string   { return i.model.tag }

// Object returns the constructed domain object.
func (i *Instance) Object() any { return i.obj }

// Presence reports which fields were seen, null or defaulted.
func (i *Instance) Presence() polyskema.PresenceMap { return i.presence }

// Values returns the parsed constructor arguments.
func (i *Instance) Values() map[string]any {
	out := make(map[string]any, len(i.values))
	for k, v := range i.values {
		if k == i.model.DiscriminatorField() {
			continue
		}
		out[k] = v
	}
	return out
}

// Document returns the parsed document including the discriminator.
func (i *Instance) Document() map[string]any {
	out := make(map[string]any, len(i.values)+1)
	for k, v := range i.values {
		out[k] = v
	}
	out[i.model.DiscriminatorField()] = i.model.tag
	return out
}

func (i *Instance) MarshalJSON() ([]byte, error) { return j.Marshal(i.Document()) }

// IsInstance reports whether the instance's class is c or a subclass of c.
func (i *Instance) IsInstance(c class.Class) bool {
	return descends(c, i.model.class, map[class.Class]bool{})
}

func descends(from, target class.Class, visited map[class.Class]bool) bool {
	if from == nil {
		return false
	}
	if from == target {
		return true
	}
	if visited[from] {
		return false
	}
	visited[from] = true
	sc, ok := from.(class.Subclasser)
	if !ok {
		return false
	}
	for _, child := range sc.Subclasses() {
		if descends(child, target, visited) {
			return true
		}
	}
	return false
}

// As returns the domain object of inst as T.
func As[T any](inst *Instance) (T, bool) {
	var zero T
	if inst == nil {
		return zero, false
	}
	v, ok := inst.obj.(T)
	return v, ok
}
