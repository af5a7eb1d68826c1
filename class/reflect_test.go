package class_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/polyskema/class"
)

type Meta struct {
	Label string `json:"label"`
}

type Sensor struct {
	Meta
	ID       string            `json:"id"`
	Gain     float64           `polyskema:"name=gain,default=1.5"`
	Channels []int             `json:"channels"`
	Window   [2]float64        `json:"window"`
	Tags     map[string]string `json:"tags" polyskema:"optional"`
	Clock    time.Duration     `json:"clock" polyskema:"default=0"`
	internal int
	Skipped  string `json:"-"`
}

func TestReflect_Params(t *testing.T) {
	c := class.Reflect[Sensor]("lab")
	assert.Equal(t, "lab.Sensor", class.QualifiedName(c))

	ctor, err := c.Constructor()
	require.NoError(t, err)
	names := make([]string, len(ctor.Params))
	for i, p := range ctor.Params {
		names[i] = p.Name
	}
	assert.Equal(t, []string{"label", "id", "gain", "channels", "window", "tags", "clock"}, names)

	gain := ctor.Params[2]
	assert.True(t, gain.HasDefault)
	assert.Equal(t, 1.5, gain.Default)
	assert.Equal(t, class.KindFloat, gain.Type.Kind)
	assert.Equal(t, "list[int]", ctor.Params[3].Type.String())
	assert.Equal(t, "tuple[float,float]", ctor.Params[4].Type.String())
	assert.True(t, ctor.Params[5].HasDefault)
	assert.Nil(t, ctor.Params[5].Default)
}

func TestReflect_New(t *testing.T) {
	ctor, err := class.Reflect[Sensor]("lab").Constructor()
	require.NoError(t, err)

	obj, err := ctor.Instantiate(class.Args{
		"label":    "front",
		"id":       "s1",
		"gain":     json.Number("2.5"),
		"channels": []any{1.0, int64(2)},
		"window":   []any{0.0, 1.0},
		"tags":     map[string]any{"room": "a"},
	})
	require.NoError(t, err)
	s := obj.(*Sensor)
	assert.Equal(t, "front", s.Label)
	assert.Equal(t, 2.5, s.Gain)
	assert.Equal(t, []int{1, 2}, s.Channels)
	assert.Equal(t, [2]float64{0, 1}, s.Window)
	assert.Equal(t, map[string]string{"room": "a"}, s.Tags)

	_, err = ctor.Instantiate(class.Args{"channels": []any{1.5}})
	assert.Error(t, err)
}

func TestReflect_NotAStruct(t *testing.T) {
	_, err := class.Reflect[int]("lab").Constructor()
	assert.ErrorIs(t, err, class.ErrUninspectable)
}

func TestTypeOf(t *testing.T) {
	assert.Equal(t, class.KindAny, class.TypeOf(nil).Kind)
	assert.Equal(t, class.KindTime, class.TypeOf(typeOf[time.Time]()).Kind)
	assert.Equal(t, class.KindObject, class.TypeOf(typeOf[Meta]()).Kind)
	assert.Equal(t, class.KindInt, class.TypeOf(typeOf[*int]()).Kind)
	assert.Equal(t, class.KindAny, class.TypeOf(typeOf[any]()).Kind)
}
