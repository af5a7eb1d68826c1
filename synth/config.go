package synth

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"

	j "github.com/goccy/go-json"

	polyskema "github.com/reoring/polyskema"
)

// Recognized configuration keys.
const (
	KeyExtra              = "extra"
	KeyDiscriminatorField = "discriminator_field"
	KeyCoerceNumbers      = "coerce_numbers"
	KeyArbitraryTypes     = "arbitrary_types_allowed"
	KeyTitle              = "title"
)

// DefaultDiscriminatorField names the tag field when the config does not.
const DefaultDiscriminatorField = "model_type"

var (
	// ErrUnhashableConfig reports a config value that has no canonical form.
	ErrUnhashableConfig = errors.New("synth: unhashable config value")
	// ErrInvalidConfig reports a recognized key with an unusable value.
	ErrInvalidConfig = errors.New("synth: invalid config")
)

// Config is the model configuration dictionary. Keys other than the
// recognized ones are kept and take part in the cache key.
type Config map[string]any

// Options is the typed view of a normalized Config.
type Options struct {
	Unknown            polyskema.UnknownPolicy
	DiscriminatorField string
	CoerceNumbers      bool
	Title              string
	// Extra holds unrecognized keys.
	Extra map[string]any
}

// Normalize applies defaults, forces arbitrary_types_allowed to true and
// checks the recognized keys. The input is not modified.
func Normalize(cfg Config) (Config, error) {
	out := make(Config, len(cfg)+4)
	for k, v := range cfg {
		out[k] = v
	}
	if _, ok := out[KeyExtra]; !ok {
		out[KeyExtra] = polyskema.UnknownStrict.String()
	}
	if _, ok := out[KeyDiscriminatorField]; !ok {
		out[KeyDiscriminatorField] = DefaultDiscriminatorField
	}
	if _, ok := out[KeyCoerceNumbers]; !ok {
		out[KeyCoerceNumbers] = false
	}
	out[KeyArbitraryTypes] = true
	if _, err := parseOptions(out); err != nil {
		return nil, err
	}
	return out, nil
}

func parseOptions(cfg Config) (Options, error) {
	var o Options
	extra, ok := cfg[KeyExtra].(string)
	if !ok {
		return o, fmt.Errorf("%w: %s must be a string, got %T", ErrInvalidConfig, KeyExtra, cfg[KeyExtra])
	}
	if o.Unknown, ok = polyskema.ParseUnknownPolicy(extra); !ok {
		return o, fmt.Errorf("%w: %s must be forbid, ignore or allow, got %q", ErrInvalidConfig, KeyExtra, extra)
	}
	if o.DiscriminatorField, ok = cfg[KeyDiscriminatorField].(string); !ok || o.DiscriminatorField == "" {
		return o, fmt.Errorf("%w: %s must be a non-empty string", ErrInvalidConfig, KeyDiscriminatorField)
	}
	if o.CoerceNumbers, ok = cfg[KeyCoerceNumbers].(bool); !ok {
		return o, fmt.Errorf("%w: %s must be a boolean, got %T", ErrInvalidConfig, KeyCoerceNumbers, cfg[KeyCoerceNumbers])
	}
	if t, present := cfg[KeyTitle]; present {
		if o.Title, ok = t.(string); !ok {
			return o, fmt.Errorf("%w: %s must be a string, got %T", ErrInvalidConfig, KeyTitle, t)
		}
	}
	for k, v := range cfg {
		switch k {
		case KeyExtra, KeyDiscriminatorField, KeyCoerceNumbers, KeyArbitraryTypes, KeyTitle:
			continue
		}
		if o.Extra == nil {
			o.Extra = map[string]any{}
		}
		o.Extra[k] = v
	}
	return o, nil
}

// Canonical returns the canonical text of cfg after normalization. Two
// configs that differ only in map ordering, or in integral numbers written as
// floats, produce the same text.
func Canonical(cfg Config) (string, error) {
	norm, err := Normalize(cfg)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	if err := encodeCanonical(&b, "", reflect.ValueOf(map[string]any(norm))); err != nil {
		return "", err
	}
	return b.String(), nil
}

var (
	emptyStructType = reflect.TypeOf(struct{}{})
	jsonNumberType  = reflect.TypeOf(json.Number(""))
)

func encodeCanonical(b *strings.Builder, path string, v reflect.Value) error {
	if !v.IsValid() {
		b.WriteString("null")
		return nil
	}
	if v.Type() == jsonNumberType {
		return encodeNumberText(b, path, v.String())
	}
	switch v.Kind() {
	case reflect.Interface, reflect.Pointer:
		if v.IsNil() {
			b.WriteString("null")
			return nil
		}
		return encodeCanonical(b, path, v.Elem())
	case reflect.Bool:
		b.WriteString(strconv.FormatBool(v.Bool()))
	case reflect.String:
		q, err := j.Marshal(v.String())
		if err != nil {
			return fmt.Errorf("%w at %s: %w", ErrUnhashableConfig, pathOrRoot(path), err)
		}
		b.Write(q)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		b.WriteString(strconv.FormatInt(v.Int(), 10))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		b.WriteString(strconv.FormatUint(v.Uint(), 10))
	case reflect.Float32, reflect.Float64:
		encodeFloat(b, v.Float())
	case reflect.Slice, reflect.Array:
		if v.Kind() == reflect.Slice && v.IsNil() {
			b.WriteString("null")
			return nil
		}
		b.WriteByte('[')
		for i := 0; i < v.Len(); i++ {
			if i > 0 {
				b.WriteByte(',')
			}
			if err := encodeCanonical(b, path+"/"+strconv.Itoa(i), v.Index(i)); err != nil {
				return err
			}
		}
		b.WriteByte(']')
	case reflect.Map:
		return encodeMap(b, path, v)
	default:
		return fmt.Errorf("%w at %s: %s", ErrUnhashableConfig, pathOrRoot(path), v.Type())
	}
	return nil
}

// encodeMap writes entries sorted by their encoded key. Maps whose values are
// struct{} are sets and are written as set(...).
func encodeMap(b *strings.Builder, path string, v reflect.Value) error {
	isSet := v.Type().Elem() == emptyStructType
	type entry struct{ k, v string }
	entries := make([]entry, 0, v.Len())
	iter := v.MapRange()
	for iter.Next() {
		var kb strings.Builder
		if err := encodeCanonical(&kb, path, iter.Key()); err != nil {
			return err
		}
		e := entry{k: kb.String()}
		if !isSet {
			var vb strings.Builder
			if err := encodeCanonical(&vb, path+"/"+fmt.Sprint(iter.Key().Interface()), iter.Value()); err != nil {
				return err
			}
			e.v = vb.String()
		}
		entries = append(entries, e)
	}
	sort.Slice(entries, func(a, c int) bool { return entries[a].k < entries[c].k })
	if isSet {
		b.WriteString("set(")
	} else {
		b.WriteByte('{')
	}
	for i, e := range entries {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(e.k)
		if !isSet {
			b.WriteByte(':')
			b.WriteString(e.v)
		}
	}
	if isSet {
		b.WriteByte(')')
	} else {
		b.WriteByte('}')
	}
	return nil
}

// encodeFloat writes integral values in integer form so 2.0 and 2 agree.
func encodeFloat(b *strings.Builder, f float64) {
	if f == math.Trunc(f) && math.Abs(f) < 1<<63 {
		b.WriteString(strconv.FormatInt(int64(f), 10))
		return
	}
	b.WriteString(strconv.FormatFloat(f, 'g', -1, 64))
}

func encodeNumberText(b *strings.Builder, path, s string) error {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		b.WriteString(strconv.FormatInt(i, 10))
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("%w at %s: malformed number %q", ErrUnhashableConfig, pathOrRoot(path), s)
	}
	encodeFloat(b, f)
	return nil
}

func pathOrRoot(p string) string {
	if p == "" {
		return "/"
	}
	return p
}
