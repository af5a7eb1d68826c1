package synth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/reoring/polyskema/class"
	"github.com/reoring/polyskema/dsl"
	"github.com/reoring/polyskema/telemetry"
)

// Synthesizer turns classes into models. A Synthesizer is safe for concurrent
// use; models are shared through its Cache.
type Synthesizer struct {
	cache    *Cache
	resolver class.Resolver
	metrics  telemetry.Metrics
	logger   telemetry.Logger
}

// Option configures a Synthesizer.
type Option func(*Synthesizer)

// WithCache shares c between synthesizers. Models in c keep the types their
// first resolver produced, so synthesizers sharing c need one resolver.
func WithCache(c *Cache) Option {
	return func(s *Synthesizer) {
		if c != nil {
			s.cache = c
		}
	}
}

// WithResolver resolves class.KindRef parameter types.
func WithResolver(r class.Resolver) Option { return func(s *Synthesizer) { s.resolver = r } }

func WithMetrics(m telemetry.Metrics) Option {
	return func(s *Synthesizer) {
		if m != nil {
			s.metrics = m
		}
	}
}

func WithLogger(l telemetry.Logger) Option {
	return func(s *Synthesizer) {
		if l != nil {
			s.logger = l
		}
	}
}

// New returns a Synthesizer with a private cache unless WithCache is given.
func New(opts ...Option) *Synthesizer {
	s := &Synthesizer{metrics: telemetry.NewNoopMetrics(), logger: telemetry.NewNoopLogger()}
	for _, o := range opts {
		o(s)
	}
	if s.cache == nil {
		s.cache = NewCache()
	}
	return s
}

// Cache returns the model cache.
func (s *Synthesizer) Cache() *Cache { return s.cache }

// KeyFor returns the cache key of cls under cfg.
func KeyFor(cls class.Class, cfg Config) (Key, error) {
	canon, err := Canonical(cfg)
	if err != nil {
		return Key{}, err
	}
	return Key{Class: class.QualifiedName(cls), Config: canon}, nil
}

// Synthesize returns the model of cls under cfg, building it on first use.
// Config errors wrap ErrUnhashableConfig or ErrInvalidConfig; class errors are
// *SynthesisError.
func (s *Synthesizer) Synthesize(ctx context.Context, cls class.Class, cfg Config) (*Model, error) {
	if cls == nil {
		return nil, errors.New("synth: nil class")
	}
	norm, err := Normalize(cfg)
	if err != nil {
		return nil, err
	}
	key, err := KeyFor(cls, norm)
	if err != nil {
		return nil, err
	}
	opts, _ := parseOptions(norm)

	m, hit, err := s.cache.getOrBuild(key, cls, func() (*Model, error) {
		return s.build(ctx, cls, key, norm, opts)
	})
	if err != nil {
		return nil, err
	}
	if hit {
		s.metrics.IncCounter(telemetry.MetricCacheHit, 1, "class", key.Class)
	} else {
		s.metrics.IncCounter(telemetry.MetricCacheMiss, 1, "class", key.Class)
		s.logger.Debug(ctx, "model synthesized", "class", key.Class, "model", m.Name(), "fields", len(m.fields))
	}
	return m, nil
}

func (s *Synthesizer) build(ctx context.Context, cls class.Class, key Key, cfg Config, opts Options) (*Model, error) {
	qn := key.Class
	insp, ok := cls.(class.Inspector)
	if !ok {
		return nil, failf(qn, ReasonUninspectable, "%w: %T exposes no constructor", class.ErrUninspectable, cls)
	}
	ctor, err := class.Inspect(insp)
	if err != nil {
		return nil, &SynthesisError{Class: qn, Reason: ReasonUninspectable, Err: err}
	}
	if ctor == nil {
		return nil, failf(qn, ReasonUninspectable, "%w: nil constructor", class.ErrUninspectable)
	}
	if ctor.New == nil {
		return nil, failf(qn, ReasonConflict, "constructor has no New function")
	}

	base := s.cache.base(key, cls, func() *Base { return newBase(cls, ctor, cfg, opts) })
	name := cls.Name() + "Model"
	title := opts.Title
	if title == "" {
		title = name
	}
	ob := dsl.Object().Title(title).Description(ctor.Doc).Unknown(opts.Unknown)
	fields := make([]Field, 0, len(ctor.Params)+1)
	seen := make(map[string]struct{}, len(ctor.Params))
	for _, p := range ctor.Params {
		switch {
		case p.Name == "":
			return nil, failf(qn, ReasonConflict, "constructor has an unnamed parameter")
		case base.IsReserved(p.Name):
			return nil, failf(qn, ReasonConflict, "parameter %q collides with the discriminator field", p.Name)
		}
		if _, dup := seen[p.Name]; dup {
			return nil, failf(qn, ReasonConflict, "parameter %q is declared twice", p.Name)
		}
		seen[p.Name] = struct{}{}

		ad, err := s.adapter(p.Type, opts, nil)
		if err != nil {
			return nil, &SynthesisError{Class: qn, Reason: ReasonTypeResolution, Err: fmt.Errorf("parameter %q: %w", p.Name, err)}
		}
		if p.Doc != "" {
			ad = ad.Describe(p.Doc)
		}
		switch {
		case !p.HasDefault:
			ob.Field(p.Name, ad).Required()
		case p.Default == nil:
			ob.Field(p.Name, ad.Nullable()).Default(nil)
		default:
			if _, err := ad.Parse(ctx, p.Default); err != nil {
				return nil, failf(qn, ReasonConflict, "default of parameter %q does not match %s: %v", p.Name, p.Type, err)
			}
			ob.Field(p.Name, ad).Default(p.Default)
		}
		fields = append(fields, Field{Name: p.Name, Type: p.Type, Required: p.Required(), Default: p.Default, HasDefault: p.HasDefault, Doc: p.Doc})
	}
	ob.Field(opts.DiscriminatorField, dsl.Literal(qn)).Default(qn)
	fields = append(fields, Field{Name: opts.DiscriminatorField, Type: class.StringType, Default: qn, HasDefault: true, Discriminator: true})

	schema, err := ob.Build()
	if err != nil {
		return nil, &SynthesisError{Class: qn, Reason: ReasonConflict, Err: err}
	}
	return &Model{tag: qn, name: name, doc: ctor.Doc, class: cls, base: base, fields: fields, schema: schema}, nil
}

// adapter maps a declared type onto a dsl field adapter. resolving holds the
// Ref names being expanded to stop recursive definitions.
func (s *Synthesizer) adapter(t class.Type, opts Options, resolving []string) (dsl.AnyAdapter, error) {
	switch t.Kind {
	case class.KindAny:
		return dsl.Any(), nil
	case class.KindString:
		return dsl.StringOf[string](), nil
	case class.KindBool:
		return dsl.BoolOf[bool](), nil
	case class.KindInt:
		return dsl.IntField(opts.CoerceNumbers), nil
	case class.KindFloat:
		return dsl.FloatField(opts.CoerceNumbers), nil
	case class.KindObject:
		return dsl.Opaque(t.GoType), nil
	case class.KindTime:
		return dsl.Time(), nil
	case class.KindList, class.KindMap:
		elem := class.AnyType
		if t.Elem != nil {
			elem = *t.Elem
		}
		ea, err := s.adapter(elem, opts, resolving)
		if err != nil {
			return dsl.AnyAdapter{}, err
		}
		if t.Kind == class.KindList {
			return dsl.List(ea), nil
		}
		return dsl.Map(ea), nil
	case class.KindTuple:
		items := make([]dsl.AnyAdapter, len(t.Items))
		for i, it := range t.Items {
			ia, err := s.adapter(it, opts, resolving)
			if err != nil {
				return dsl.AnyAdapter{}, err
			}
			items[i] = ia
		}
		return dsl.Tuple(items...), nil
	case class.KindRef:
		for _, r := range resolving {
			if r == t.Name {
				return dsl.AnyAdapter{}, fmt.Errorf("recursive type %s", strings.Join(append(resolving, t.Name), " -> "))
			}
		}
		if s.resolver == nil {
			return dsl.AnyAdapter{}, fmt.Errorf("%w: %q (no resolver)", class.ErrUnresolved, t.Name)
		}
		rt, err := s.resolver.Resolve(t.Name)
		if err != nil {
			return dsl.AnyAdapter{}, err
		}
		return s.adapter(rt, opts, append(resolving, t.Name))
	}
	return dsl.AnyAdapter{}, fmt.Errorf("unsupported type kind %s", t.Kind)
}
