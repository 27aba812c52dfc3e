package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type point struct {
	X, Y int
}

type lookalike struct {
	X, Y int
}

type pair struct {
	_msgpack struct{} `msgpack:",as_array"`
	First    int
	Second   string
}

type renamedPair struct {
	_msgpack struct{} `msgpack:",as_array"`
	A        int
	B        string
}

func TestNames(t *testing.T) {
	var names []string
	for _, c := range All() {
		names = append(names, c.Name())
	}
	assert.Equal(t, []string{"json", "msgpack"}, names)
}

func TestThroughDecodesAtAnotherType(t *testing.T) {
	for _, c := range All() {
		t.Run(c.Name(), func(t *testing.T) {
			got, err := Through[lookalike](c, point{X: 1, Y: -2})
			require.NoError(t, err)
			assert.Equal(t, lookalike{X: 1, Y: -2}, got)
		})
	}
}

func TestJSONRejectsUnknownFields(t *testing.T) {
	_, err := Through[struct{ X int }](JSON(), point{X: 1, Y: 2})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "json: decode")
}

func TestMessagePackPositional(t *testing.T) {
	got, err := Through[renamedPair](MessagePack(), pair{First: 7, Second: "seven"})
	require.NoError(t, err)
	assert.Equal(t, 7, got.A)
	assert.Equal(t, "seven", got.B)
}
