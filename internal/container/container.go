// Package container wires the CLI services using go.uber.org/dig.
package container

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/dig"
	"gopkg.in/yaml.v3"

	"github.com/reoring/polyskema/class"
	"github.com/reoring/polyskema/registry"
	"github.com/reoring/polyskema/synth"
	"github.com/reoring/polyskema/telemetry"
)

// Settings are the command-line inputs the container is built from.
type Settings struct {
	// Manifest is the path of the YAML class manifest.
	Manifest string
	// Overrides are "key=value" config assignments; values are YAML scalars.
	Overrides []string
	Probe     bool
	// Roots names the classes to build from; empty means the manifest roots.
	Roots []string
	// Logger replaces the clue logger.
	Logger telemetry.Logger
}

// Container holds the resolved services. Callers use the typed getters and
// never import dig directly.
type Container struct {
	manifest *class.Manifest
	cfg      synth.Config
	cache    *synth.Cache
	logger   telemetry.Logger
	metrics  telemetry.Metrics
	tracer   telemetry.Tracer
	roots    []class.Class
	probe    bool
}

func (c *Container) Manifest() *class.Manifest  { return c.manifest }
func (c *Container) Config() synth.Config       { return c.cfg }
func (c *Container) Cache() *synth.Cache        { return c.cache }
func (c *Container) Logger() telemetry.Logger   { return c.logger }
func (c *Container) Roots() []class.Class       { return append([]class.Class(nil), c.roots...) }
func (c *Container) Metrics() telemetry.Metrics { return c.metrics }

// New loads the manifest and wires every service from s.
func New(s Settings) (*Container, error) {
	d := dig.New()

	if err := d.Provide(func() Settings { return s }); err != nil {
		return nil, err
	}
	if err := d.Provide(loadManifest); err != nil {
		return nil, err
	}
	if err := d.Provide(newConfig); err != nil {
		return nil, err
	}
	if err := d.Provide(newRoots); err != nil {
		return nil, err
	}
	if err := d.Provide(synth.NewCache); err != nil {
		return nil, err
	}
	if err := d.Provide(newLogger); err != nil {
		return nil, err
	}
	if err := d.Provide(telemetry.NewOTELMetrics); err != nil {
		return nil, err
	}
	if err := d.Provide(telemetry.NewOTELTracer); err != nil {
		return nil, err
	}

	var result *Container
	err := d.Invoke(func(
		m *class.Manifest,
		cfg synth.Config,
		roots []class.Class,
		cache *synth.Cache,
		logger telemetry.Logger,
		metrics telemetry.Metrics,
		tracer telemetry.Tracer,
	) {
		result = &Container{
			manifest: m,
			cfg:      cfg,
			cache:    cache,
			logger:   logger,
			metrics:  metrics,
			tracer:   tracer,
			roots:    roots,
			probe:    s.Probe,
		}
	})
	if err != nil {
		return nil, dig.RootCause(err)
	}
	return result, nil
}

// Build builds a registry rooted at roots, or at the configured roots when
// none are given. Builds share the container's cache.
func (c *Container) Build(ctx context.Context, roots ...class.Class) (*registry.Registry, error) {
	if len(roots) == 0 {
		roots = c.roots
	}
	return registry.Build(ctx, roots,
		registry.WithConfig(c.cfg),
		registry.WithCache(c.cache),
		registry.WithResolver(c.manifest.Types),
		registry.WithProbe(c.probe),
		registry.WithLogger(c.logger),
		registry.WithMetrics(c.metrics),
		registry.WithTracer(c.tracer),
	)
}

func loadManifest(s Settings) (*class.Manifest, error) {
	if s.Manifest == "" {
		return nil, fmt.Errorf("container: no manifest given")
	}
	return class.LoadManifestFile(s.Manifest)
}

func newLogger(s Settings) telemetry.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return telemetry.NewClueLogger()
}

// newConfig layers the overrides on top of the manifest config.
func newConfig(s Settings, m *class.Manifest) (synth.Config, error) {
	cfg := make(synth.Config, len(m.Config)+len(s.Overrides))
	for k, v := range m.Config {
		cfg[k] = v
	}
	for _, kv := range s.Overrides {
		k, raw, ok := strings.Cut(kv, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("container: override %q is not key=value", kv)
		}
		var v any
		if err := yaml.Unmarshal([]byte(raw), &v); err != nil {
			return nil, fmt.Errorf("container: override %q: %w", kv, err)
		}
		cfg[k] = v
	}
	if _, err := synth.Canonical(cfg); err != nil {
		return nil, fmt.Errorf("container: %w", err)
	}
	return cfg, nil
}

// newRoots resolves root names against the manifest by name or qualified name.
func newRoots(s Settings, m *class.Manifest) ([]class.Class, error) {
	if len(s.Roots) == 0 {
		return m.Roots, nil
	}
	out := make([]class.Class, 0, len(s.Roots))
	for _, name := range s.Roots {
		c, ok := findClass(m, name)
		if !ok {
			return nil, fmt.Errorf("container: unknown root class %q", name)
		}
		out = append(out, c)
	}
	return out, nil
}

func findClass(m *class.Manifest, name string) (class.Class, bool) {
	for _, d := range m.Classes {
		if d.Name() == name || class.QualifiedName(d) == name {
			return d, true
		}
	}
	return nil, false
}
