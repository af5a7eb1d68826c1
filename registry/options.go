package registry

import (
	"github.com/reoring/polyskema/class"
	"github.com/reoring/polyskema/synth"
	"github.com/reoring/polyskema/telemetry"
)

type options struct {
	cfg      synth.Config
	syn      *synth.Synthesizer
	cache    *synth.Cache
	resolver class.Resolver
	probe    bool
	logger   telemetry.Logger
	metrics  telemetry.Metrics
	tracer   telemetry.Tracer
}

// Option configures Build.
type Option func(*options)

// WithConfig sets the synthesis config shared by every member.
func WithConfig(cfg synth.Config) Option { return func(o *options) { o.cfg = cfg } }

// WithSynthesizer uses s instead of a synthesizer built from the other options.
// WithCache and WithResolver are ignored when s is given.
func WithSynthesizer(s *synth.Synthesizer) Option { return func(o *options) { o.syn = s } }

// WithCache shares a model cache across builds. The cache key is the class
// and the config, not the resolver: builds sharing c need one resolver.
func WithCache(c *synth.Cache) Option { return func(o *options) { o.cache = c } }

func WithResolver(r class.Resolver) Option { return func(o *options) { o.resolver = r } }

// WithProbe excludes classes that cannot be constructed without arguments.
func WithProbe(enabled bool) Option { return func(o *options) { o.probe = enabled } }

func WithLogger(l telemetry.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

func WithMetrics(m telemetry.Metrics) Option {
	return func(o *options) {
		if m != nil {
			o.metrics = m
		}
	}
}

func WithTracer(t telemetry.Tracer) Option {
	return func(o *options) {
		if t != nil {
			o.tracer = t
		}
	}
}

func newOptions(opts []Option) *options {
	o := &options{
		logger:  telemetry.NewNoopLogger(),
		metrics: telemetry.NewNoopMetrics(),
		tracer:  telemetry.NewNoopTracer(),
	}
	for _, fn := range opts {
		fn(o)
	}
	if o.syn == nil {
		o.syn = synth.New(
			synth.WithCache(o.cache),
			synth.WithResolver(o.resolver),
			synth.WithMetrics(o.metrics),
			synth.WithLogger(o.logger),
		)
	}
	return o
}
