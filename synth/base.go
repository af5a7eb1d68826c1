package synth

import (
	"sort"

	polyskema "github.com/reoring/polyskema"
	"github.com/reoring/polyskema/class"
)

// Base is the composite base every synthesized model of one class and config
// is layered on: the class identity, its constructor, the parsed options and
// the field names reserved by the synthesizer.
type Base struct {
	class    class.Class
	ctor     *class.Constructor
	config   Config
	opts     Options
	reserved map[string]struct{}
}

func newBase(cls class.Class, ctor *class.Constructor, cfg Config, opts Options) *Base {
	return &Base{
		class:    cls,
		ctor:     ctor,
		config:   cfg,
		opts:     opts,
		reserved: map[string]struct{}{opts.DiscriminatorField: {}},
	}
}

func (b *Base) Class() class.Class                     { return b.class }
func (b *Base) Constructor() *class.Constructor        { return b.ctor }
func (b *Base) Options() Options                       { return b.opts }
func (b *Base) UnknownPolicy() polyskema.UnknownPolicy { return b.opts.Unknown }
func (b *Base) DiscriminatorField() string             { return b.opts.DiscriminatorField }

// Config returns a copy of the normalized config.
func (b *Base) Config() Config {
	out := make(Config, len(b.config))
	for k, v := range b.config {
		out[k] = v
	}
	return out
}

// Reserved returns the field names constructor parameters may not use.
func (b *Base) Reserved() []string {
	out := make([]string, 0, len(b.reserved))
	for k := range b.reserved {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// IsReserved reports whether name is taken by the synthesizer.
func (b *Base) IsReserved(name string) bool {
	_, ok := b.reserved[name]
	return ok
}
