package synth_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/polyskema/synth"
)

func TestNormalize_Defaults(t *testing.T) {
	in := synth.Config{"arbitrary_types_allowed": false, "custom": 1}
	got, err := synth.Normalize(in)
	require.NoError(t, err)
	assert.Equal(t, synth.Config{
		"extra":                   "forbid",
		"discriminator_field":     "model_type",
		"coerce_numbers":          false,
		"arbitrary_types_allowed": true,
		"custom":                  1,
	}, got)
	assert.Equal(t, false, in["arbitrary_types_allowed"], "input must not be modified")
}

func TestNormalize_Invalid(t *testing.T) {
	for name, cfg := range map[string]synth.Config{
		"extra value": {"extra": "sometimes"},
		"extra type":  {"extra": 1},
		"empty field": {"discriminator_field": ""},
		"coerce type": {"coerce_numbers": "yes"},
		"title type":  {"title": 3},
	} {
		_, err := synth.Normalize(cfg)
		assert.ErrorIs(t, err, synth.ErrInvalidConfig, name)
	}
}

func TestCanonical_OrderAndNumbers(t *testing.T) {
	a, err := synth.Canonical(synth.Config{"extra": "forbid", "opts": map[string]any{"b": 2.0, "a": []any{1, "x"}}})
	require.NoError(t, err)
	b, err := synth.Canonical(synth.Config{"opts": map[string]any{"a": []any{1.0, "x"}, "b": int64(2)}})
	require.NoError(t, err)
	assert.Equal(t, a, b)

	c, err := synth.Canonical(synth.Config{"opts": map[string]any{"a": []any{"x", 1}, "b": 2}})
	require.NoError(t, err)
	assert.NotEqual(t, a, c, "sequence order is significant")

	t1, _ := synth.Canonical(synth.Config{"flag": true})
	t2, _ := synth.Canonical(synth.Config{"flag": 1})
	assert.NotEqual(t, t1, t2, "booleans are not numbers")
}

func TestCanonical_Sets(t *testing.T) {
	a, err := synth.Canonical(synth.Config{"tags": map[string]struct{}{"x": {}, "y": {}}})
	require.NoError(t, err)
	b, err := synth.Canonical(synth.Config{"tags": map[string]struct{}{"y": {}, "x": {}}})
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Contains(t, a, `set("x","y")`)
}

func TestCanonical_Unhashable(t *testing.T) {
	type point struct{ X int }
	for name, v := range map[string]any{
		"func":   func() {},
		"chan":   make(chan int),
		"struct": point{1},
		"nested": map[string]any{"deep": []any{func() {}}},
	} {
		_, err := synth.Canonical(synth.Config{"v": v})
		assert.ErrorIs(t, err, synth.ErrUnhashableConfig, name)
	}
}

func TestCanonical_PointersAndNil(t *testing.T) {
	n := 3
	a, err := synth.Canonical(synth.Config{"p": &n, "z": nil})
	require.NoError(t, err)
	b, err := synth.Canonical(synth.Config{"p": 3, "z": (*int)(nil)})
	require.NoError(t, err)
	assert.Equal(t, a, b)
}
