package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pointSource = `package geo

//roundtrip:derive
type Point struct {
	X, Y int
}
`

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

// run executes the root command with args, returning stdout and stderr
func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestGenerateCommand(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "geo", "point.go"), pointSource)

	stdout, _, err := run(t, "generate", "--config-dir", dir, "--no-color", dir+"/...")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "geo", "point_roundtrip.go"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "func RoundTripPoint[T any]")
	assert.Contains(t, stdout, "written")
	assert.Contains(t, stdout, "✓ 1 inputs, 1 written, 0 cached")
}

func TestGenerateCommandDryRun(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "point.go")
	writeFile(t, input, pointSource)

	stdout, stderr, err := run(t, "generate", "--config-dir", dir, "--dry-run", input)
	require.NoError(t, err)

	assert.NoFileExists(t, filepath.Join(dir, "point_roundtrip.go"))
	assert.Contains(t, stdout, "// "+filepath.Join(dir, "point_roundtrip.go"))
	assert.Contains(t, stdout, "func SamePoint()")
	assert.Contains(t, stderr, "1 inputs")
}

func TestGenerateCommandJSON(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "bad.go")
	writeFile(t, input, "package geo\n\n//roundtrip:derive\ntype Bad struct{ F func() }\n")

	stdout, _, err := run(t, "generate", "--config-dir", dir, "--json", input)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 diagnostic")
	assert.Contains(t, stdout, `"code": "SYN002"`)
	assert.Contains(t, stdout, `"source": "type Bad struct{ F func() }"`)
}

func TestGenerateCommandUsesConfig(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "point.go")
	writeFile(t, input, pointSource)
	writeFile(t, filepath.Join(dir, "roundtrip.yml"), "output_suffix: _rt.go\nregister: true\n")

	_, _, err := run(t, "generate", "--config-dir", dir, "--quiet", input)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "point_rt.go"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "func init()")
}

func TestGenerateCommandMissingInput(t *testing.T) {
	dir := t.TempDir()
	_, _, err := run(t, "generate", "--config-dir", dir, filepath.Join(dir, "missing.go"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot read input")
}

func TestCollectInputs(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.go"), pointSource)
	writeFile(t, filepath.Join(dir, "sub", "b.go"), pointSource)
	writeFile(t, filepath.Join(dir, "sub", "b_roundtrip.go"), pointSource)
	writeFile(t, filepath.Join(dir, "wire.yml"), "package: wire\n")

	inputs, err := collectInputs([]string{dir + "/...", filepath.Join(dir, "wire.yml")}, "_roundtrip.go")
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.go"),
		filepath.Join(dir, "sub", "b.go"),
		filepath.Join(dir, "wire.yml"),
	}, inputs)
}

func TestTrimRecursive(t *testing.T) {
	tests := map[string]string{
		"./...":    ".",
		"...":      ".",
		"geo/...":  "geo",
		"geo":      "geo",
		"point.go": "point.go",
	}
	for in, want := range tests {
		assert.Equal(t, want, trimRecursive(in), in)
	}
}
