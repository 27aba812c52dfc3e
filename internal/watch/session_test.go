package watch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/conduit-lang/roundtrip/internal/tooling/build"
)

const pointSource = `package geo

//roundtrip:derive
type Point struct {
	X, Y int
}
`

func TestSessionRegeneratesOnChange(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "point.go")
	require.NoError(t, os.WriteFile(input, []byte(pointSource), 0644))

	logger := zaptest.NewLogger(t)
	sys := build.NewSystem(build.DefaultOptions(), logger)
	session := NewSession(sys, []string{dir}, 20*time.Millisecond, logger)

	results := make(chan *build.Result, 16)
	session.OnResult = func(r *build.Result) {
		select {
		case results <- r:
		default:
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- session.Run(ctx) }()
	defer func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Error("session did not stop")
		}
	}()

	first := <-results
	require.True(t, first.Success())
	require.Len(t, first.Files, 1)
	assert.Equal(t, input, first.Files[0].Input)

	output := build.OutputPath(input, "")
	require.FileExists(t, output)

	// Writes may land before the watcher is ready; repeat until one is seen.
	changed := pointSource + "\n//roundtrip:derive\ntype Origin struct{}\n"
	deadline := time.Now().Add(5 * time.Second)
	for {
		require.NoError(t, os.WriteFile(input, []byte(changed), 0644))
		select {
		case r := <-results:
			if len(r.Files) == 1 && r.Files[0].Shapes == 2 {
				data, err := os.ReadFile(output)
				require.NoError(t, err)
				assert.True(t, strings.Contains(string(data), "func RoundTripOrigin"))
				return
			}
		case <-time.After(200 * time.Millisecond):
		}
		if time.Now().After(deadline) {
			t.Fatal("change was not regenerated")
		}
	}
}

func TestSessionStopsWhenCancelled(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "point.go"), []byte(pointSource), 0644))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	session := NewSession(build.NewSystem(nil, nil), []string{dir}, 0, nil)
	assert.NoError(t, session.Run(ctx))
}
