package build

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutputPath(t *testing.T) {
	tests := []struct {
		input, suffix, want string
	}{
		{"geo/point.go", "", "geo/point_roundtrip.go"},
		{"geo/shapes.yml", "", "geo/shapes_roundtrip.go"},
		{"geo/point.go", "_rt.go", "geo/point_rt.go"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, OutputPath(tt.input, tt.suffix))
	}
}

func TestIsInput(t *testing.T) {
	assert.True(t, IsInput("point.go", ""))
	assert.True(t, IsInput("shapes.yaml", ""))
	assert.False(t, IsInput("point_test.go", ""))
	assert.False(t, IsInput("point_roundtrip.go", ""))
	assert.False(t, IsInput("README.md", ""))
}

func TestFindInputs(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{
		"a.go",
		"a_roundtrip.go",
		"a_test.go",
		"shapes.yml",
		"sub/b.go",
		"vendor/v.go",
		"testdata/t.go",
		".hidden/h.go",
		"_build/x.go",
	} {
		writeFile(t, filepath.Join(dir, name), "package p\n")
	}

	inputs, err := FindInputs(dir, "")
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.go"),
		filepath.Join(dir, "sub", "b.go"),
	}, inputs)
}
