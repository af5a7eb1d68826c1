// Package registry composes the models of a class hierarchy into one
// discriminated union and keeps the bookkeeping of what was left out.
package registry

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/codes"

	"github.com/reoring/polyskema/class"
	"github.com/reoring/polyskema/hierarchy"
	"github.com/reoring/polyskema/synth"
	"github.com/reoring/polyskema/telemetry"
)

// Lookup flags for LookupName.
const (
	RegisteredOnly  = false
	IncludeExcluded = true
)

// Registry is the result of Build. It is read-only and safe for concurrent use.
type Registry struct {
	set      *hierarchy.Set
	union    *Union
	models   map[string]*synth.Model
	excluded map[string]*synth.Model
	states   map[string]State
	diags    []Diagnostic
	examples map[string]map[string]any
}

// Build walks roots, synthesizes a model for every discovered class and
// composes the successful ones, in walk order, into a Union.
//
// Per-class failures are recorded as diagnostics and never returned. Build
// fails on walk errors (cycles, duplicate names), on a config that cannot be
// normalized, and with ErrEmptyRegistry when no class survives.
func Build(ctx context.Context, roots []class.Class, opts ...Option) (*Registry, error) {
	o := newOptions(opts)
	ctx, span := o.tracer.Start(ctx, "polyskema.registry.Build")
	defer span.End()
	start := time.Now()

	r, err := build(ctx, roots, o)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		o.logger.Error(ctx, "registry build failed", "error", err)
		return nil, err
	}
	o.metrics.RecordTimer(telemetry.MetricBuildTime, time.Since(start))
	o.logger.Info(ctx, "registry built",
		"members", r.union.Len(),
		"skipped", len(r.diags),
		"discriminator", r.union.DiscriminatorField())
	return r, nil
}

func build(ctx context.Context, roots []class.Class, o *options) (*Registry, error) {
	norm, err := synth.Normalize(o.cfg)
	if err != nil {
		return nil, fmt.Errorf("registry: config: %w", err)
	}
	if _, err := synth.Canonical(norm); err != nil {
		return nil, fmt.Errorf("registry: config: %w", err)
	}
	set, err := hierarchy.WalkMany(roots...)
	if err != nil {
		return nil, err
	}
	r := &Registry{
		set:      set,
		models:   map[string]*synth.Model{},
		excluded: map[string]*synth.Model{},
		states:   make(map[string]State, set.Len()),
		examples: map[string]map[string]any{},
	}
	for _, n := range set.Nodes() {
		r.states[n.Name] = StateDiscovered
	}

	var members []*synth.Model
	for _, n := range set.Nodes() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if class.IsAbstract(n.Class) {
			r.skip(ctx, o, Diagnostic{Class: n.Name, Reason: ReasonAbstract, Err: fmt.Errorf("%w: %s", class.ErrAbstract, n.Name)})
			continue
		}
		r.states[n.Name] = StateSynthesizing
		m, err := o.syn.Synthesize(ctx, n.Class, o.cfg)
		if err != nil {
			if !errors.Is(err, synth.ErrSynthesis) {
				return nil, err
			}
			var se *synth.SynthesisError
			errors.As(err, &se)
			r.skip(ctx, o, Diagnostic{Class: n.Name, Reason: se.Reason, Err: err})
			continue
		}
		if ex, err := m.Example(ctx); err == nil {
			r.examples[n.Name] = ex.Document()
		} else if o.probe {
			r.excluded[n.Name] = m
			r.skip(ctx, o, Diagnostic{Class: n.Name, Reason: ReasonProbe, Err: &ProbeError{Class: n.Name, Err: err}})
			continue
		}
		r.states[n.Name] = StateRegistered
		r.models[n.Name] = m
		members = append(members, m)
		o.metrics.IncCounter(telemetry.MetricRegistered, 1, "class", n.Name)
		o.logger.Debug(ctx, "class registered", "class", n.Name, "model", m.Name())
	}
	if len(members) == 0 {
		return nil, &EmptyRegistryError{Discovered: set.Len(), Diagnostics: append([]Diagnostic(nil), r.diags...)}
	}
	if r.union, err = newUnion(members, r.examples); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Registry) skip(ctx context.Context, o *options, d Diagnostic) {
	r.states[d.Class] = StateSkipped
	r.diags = append(r.diags, d)
	o.metrics.IncCounter(telemetry.MetricSkipped, 1, "class", d.Class, "reason", string(d.Reason))
	o.logger.Warn(ctx, "class skipped", "class", d.Class, "reason", string(d.Reason), "error", d.Err)
}

// Union returns the discriminated union of the registered models.
func (r *Registry) Union() *Union { return r.union }

// Mapping returns qualified name to model for the registered classes.
func (r *Registry) Mapping() map[string]*synth.Model {
	out := make(map[string]*synth.Model, len(r.models))
	for k, v := range r.models {
		out[k] = v
	}
	return out
}

// Lookup returns the registered model of cls.
func (r *Registry) Lookup(cls class.Class) (*synth.Model, bool) {
	m, ok := r.models[class.QualifiedName(cls)]
	if !ok || m.Class() != cls {
		return nil, false
	}
	return m, true
}

// LookupName returns the model registered under a qualified name. With
// IncludeExcluded, models synthesized but excluded by the probe are found too.
func (r *Registry) LookupName(name string, includeExcluded bool) (*synth.Model, bool) {
	if m, ok := r.models[name]; ok {
		return m, true
	}
	if includeExcluded {
		m, ok := r.excluded[name]
		return m, ok
	}
	return nil, false
}

// Diagnostics returns the skipped classes in walk order.
func (r *Registry) Diagnostics() []Diagnostic { return append([]Diagnostic(nil), r.diags...) }

// Nodes returns every discovered class in walk order.
func (r *Registry) Nodes() []*hierarchy.Node { return r.set.Nodes() }

// State returns the registration state of a qualified name.
func (r *Registry) State(name string) State { return r.states[name] }

// Find returns the discovered classes whose name contains search, ignoring
// case, in walk order. An empty search matches every class.
func (r *Registry) Find(search string) []*hierarchy.Node {
	needle := strings.ToLower(strings.TrimSpace(search))
	var out []*hierarchy.Node
	for _, n := range r.set.Nodes() {
		if strings.Contains(strings.ToLower(n.Class.Name()), needle) {
			out = append(out, n)
		}
	}
	return out
}

// Examples returns zero-argument example documents of the registered classes
// matching search, keyed by qualified name. Classes that cannot be built
// without arguments have no example.
func (r *Registry) Examples(ctx context.Context, search string) (map[string]map[string]any, error) {
	out := map[string]map[string]any{}
	for _, n := range r.Find(search) {
		if r.states[n.Name] != StateRegistered {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		ex, ok := r.examples[n.Name]
		if !ok {
			continue
		}
		out[n.Name] = copyDoc(ex)
	}
	return out, nil
}

func copyDoc(d map[string]any) map[string]any {
	out := make(map[string]any, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}
