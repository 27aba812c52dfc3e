package watch

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/conduit-lang/roundtrip/internal/tooling/build"
)

// Session keeps generated files up to date while a directory tree changes
type Session struct {
	system   *build.System
	roots    []string
	debounce time.Duration
	logger   *zap.Logger
	// OnResult is called after every run, including the initial one
	OnResult func(*build.Result)
}

// NewSession creates a session that regenerates inputs under roots with system
func NewSession(system *build.System, roots []string, debounce time.Duration, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{
		system:   system,
		roots:    roots,
		debounce: debounce,
		logger:   logger,
	}
}

// Run generates every input once, then regenerates changed inputs until ctx
// is done. It returns nil when ctx is cancelled.
func (s *Session) Run(ctx context.Context) error {
	var inputs []string
	suffix := s.system.Options().OutputSuffix
	for _, root := range s.roots {
		found, err := build.FindInputs(root, suffix)
		if err != nil {
			return err
		}
		inputs = append(inputs, found...)
	}

	if err := s.run(ctx, inputs); err != nil {
		return ignoreCancel(ctx, err)
	}

	accept := func(path string) bool { return build.IsInput(path, suffix) }
	fw, err := NewFileWatcher(s.roots, s.debounce, accept, func(files []string) error {
		s.logger.Info("files changed", zap.Strings("files", files))
		return s.run(ctx, files)
	}, s.logger)
	if err != nil {
		return err
	}
	if err := fw.Start(); err != nil {
		_ = fw.Stop()
		return err
	}
	s.logger.Info("watching for changes", zap.Strings("roots", s.roots))

	<-ctx.Done()
	return fw.Stop()
}

func (s *Session) run(ctx context.Context, inputs []string) error {
	result, err := s.system.Generate(ctx, inputs)
	if err != nil {
		return err
	}
	if s.OnResult != nil {
		s.OnResult(result)
	}
	return nil
}

func ignoreCancel(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return nil
	}
	return err
}
