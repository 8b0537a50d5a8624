package chart

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigSpec(t *testing.T) {
	x, y := "Date", "Value"

	tests := []struct {
		name   string
		config Config
		want   Spec
	}{
		{"bar", Config{Type: "bar", X: &x, Y: &y}, BarSpec{X: Col("Date"), Y: Col("Value")}},
		{"case insensitive", Config{Type: " Line ", X: &x}, LineSpec{X: Col("Date")}},
		{"pie ignores axes", Config{Type: "pie", X: &x, Values: &y}, PieSpec{Values: Col("Value")}},
		{"unsupported", Config{Type: "radar", X: &x}, UnsupportedSpec{Name: "radar"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.config.Spec())
		})
	}
}

func TestComplete(t *testing.T) {
	assert.False(t, Complete(BarSpec{X: Col("a")}))
	assert.True(t, Complete(BarSpec{X: Col("a"), Y: Col("b")}))
	assert.True(t, Complete(ScatterSpec{X: Col("a"), Y: Col("")}), "set but empty still counts as set")
	assert.False(t, Complete(PieSpec{Names: Col("a")}))
	assert.True(t, Complete(UnsupportedSpec{Name: "radar"}))
}

func TestReferenced(t *testing.T) {
	spec := ScatterSpec{X: Col("a"), Y: Col("b"), Size: Col("c")}
	assert.Equal(t, []Field{Col("a"), Col("b"), Col("c")}, spec.Referenced())
}

func TestConfigJSON(t *testing.T) {
	var config Config
	require.NoError(t, json.Unmarshal([]byte(`{"type":"scatter","x":"a","y":"b","color":null,"size":"c"}`), &config))

	spec, ok := config.Spec().(ScatterSpec)
	require.True(t, ok)
	assert.False(t, spec.Color.IsSet())
	assert.Equal(t, "c", spec.Size.Name())

	back := ToConfig(spec)
	assert.Equal(t, config, back)
}

func TestEmpty(t *testing.T) {
	for _, kind := range Kinds() {
		spec := Empty(kind)
		assert.Equal(t, kind, spec.Kind())
		assert.Empty(t, spec.Referenced())
	}
	assert.False(t, Kind("radar").Supported())
}
