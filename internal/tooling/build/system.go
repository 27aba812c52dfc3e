// Package build runs generation over many input files: it parses each input,
// generates its relations, and writes the output next to it, skipping inputs
// whose content has not changed.
package build

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/conduit-lang/roundtrip/internal/compiler/cache"
	"github.com/conduit-lang/roundtrip/internal/compiler/codegen"
	"github.com/conduit-lang/roundtrip/internal/compiler/errors"
	"github.com/conduit-lang/roundtrip/internal/compiler/parser"
	"github.com/conduit-lang/roundtrip/internal/compiler/shape"
)

// DefaultOutputSuffix replaces ".go" (or a shape file's extension) in the name
// of a generated file.
const DefaultOutputSuffix = "_roundtrip.go"

// Options configures a generation run
type Options struct {
	// Generator is the template for each file's generator options; Package and
	// Imports are filled in per input
	Generator    codegen.Options
	Parser       parser.Options
	OutputSuffix string
	MaxJobs      int
	DryRun       bool
	UseCache     bool
	ProgressFunc func(current, total int, message string)
}

// DefaultOptions returns sensible defaults
func DefaultOptions() *Options {
	return &Options{
		Generator: codegen.Options{
			LibraryImport: codegen.DefaultLibraryImport,
			LibraryName:   "roundtrip",
		},
		OutputSuffix: DefaultOutputSuffix,
		MaxJobs:      runtime.NumCPU(),
		UseCache:     true,
	}
}

// FileResult is the outcome of one input
type FileResult struct {
	Input  string
	Output string
	Source []byte
	Shapes int
	// Cached is set when the input hashed the same as last run
	Cached bool
	// Written is set when the output file changed on disk
	Written bool
	// Removed is set when a stale output of an input without derived types was deleted
	Removed bool
	Err     error
}

// Result contains information about a generation run
type Result struct {
	Files     []*FileResult
	Duration  time.Duration
	CacheHits int
	Written   int
	// Diagnostics collects the compiler errors of every failed input
	Diagnostics errors.ErrorList
}

// Success reports whether every input generated cleanly
func (r *Result) Success() bool {
	for _, f := range r.Files {
		if f.Err != nil {
			return false
		}
	}
	return true
}

// CacheHitRate returns the cache hit rate as a percentage
func (r *Result) CacheHitRate() float64 {
	if len(r.Files) == 0 {
		return 0.0
	}
	return float64(r.CacheHits) / float64(len(r.Files)) * 100.0
}

// System coordinates generation. One System may serve many runs; its cache
// carries over between them, which is what watch mode relies on.
type System struct {
	options *Options
	cache   *cache.OutputCache
	hasher  *cache.FileHasher
	logger  *zap.Logger
	mu      sync.Mutex // serializes runs
}

// NewSystem creates a new generation system
func NewSystem(opts *Options, logger *zap.Logger) *System {
	if opts == nil {
		opts = DefaultOptions()
	}
	if opts.OutputSuffix == "" {
		opts.OutputSuffix = DefaultOutputSuffix
	}
	if opts.MaxJobs <= 0 {
		opts.MaxJobs = runtime.NumCPU()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &System{
		options: opts,
		cache:   cache.NewOutputCache(),
		hasher:  cache.NewFileHasher(),
		logger:  logger,
	}
}

// Options returns the options the system runs with
func (s *System) Options() *Options {
	return s.options
}

// Generate processes every input concurrently. Per-file failures are reported
// in the result; the returned error is only set when ctx is cancelled.
func (s *System) Generate(ctx context.Context, inputs []string) (*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	result := &Result{Files: make([]*FileResult, len(inputs))}

	if s.options.ProgressFunc != nil {
		s.options.ProgressFunc(0, len(inputs), "Starting generation...")
	}

	var done int
	var progress sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.options.MaxJobs)
	for i, input := range inputs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			result.Files[i] = s.generateFile(input)

			if s.options.ProgressFunc != nil {
				progress.Lock()
				done++
				s.options.ProgressFunc(done, len(inputs), "Generated "+input)
				progress.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, f := range result.Files {
		if f.Cached {
			result.CacheHits++
		}
		if f.Written {
			result.Written++
		}
		var diags errors.ErrorList
		if stderrors.As(f.Err, &diags) {
			result.Diagnostics = append(result.Diagnostics, diags...)
		} else if f.Err != nil {
			result.Diagnostics = append(result.Diagnostics,
				errors.NewCodeGenFailed(shape.SourceLocation{File: f.Input}, f.Err.Error()))
		}
	}
	result.Duration = time.Since(start)

	s.logger.Info("generation finished",
		zap.Int("files", len(inputs)),
		zap.Int("written", result.Written),
		zap.Int("cache_hits", result.CacheHits),
		zap.Int("diagnostics", len(result.Diagnostics)),
		zap.Duration("duration", result.Duration))

	return result, nil
}

// generateFile runs one independent pass over input.
func (s *System) generateFile(input string) *FileResult {
	res := &FileResult{Input: input, Output: OutputPath(input, s.options.OutputSuffix)}
	log := s.logger.With(zap.String("input", input))

	src, err := os.ReadFile(input)
	if err != nil {
		res.Err = fmt.Errorf("failed to read %s: %w", input, err)
		return res
	}

	key := s.hasher.Key(src, s.fingerprint()...)
	if s.options.UseCache {
		if entry, ok := s.cache.Lookup(input, key); ok {
			res.Cached = true
			res.Source = entry.Output
			res.Shapes = entry.Shapes
			log.Debug("cache hit")
			if entry.Shapes == 0 || s.options.DryRun {
				return res
			}
			if err := s.write(res); err != nil {
				res.Err = err
			}
			return res
		}
	}

	file, err := parser.ParseFile(input, src, s.options.Parser)
	if err != nil {
		res.Err = annotate(err, input, src)
		s.cache.Invalidate(input)
		log.Debug("parse failed", zap.Error(err))
		return res
	}
	res.Shapes = len(file.Shapes)

	if len(file.Shapes) == 0 {
		if !s.options.DryRun {
			removed, err := removeStale(res.Output)
			if err != nil {
				res.Err = err
				return res
			}
			res.Removed = removed
		}
		s.cache.Store(input, key, nil, 0)
		return res
	}

	if file.Package == "" {
		res.Err = errors.ErrorList{errors.NewInvalidShape(shape.SourceLocation{File: input}, input, "missing package name")}
		return res
	}

	opts := s.options.Generator
	opts.Package = file.Package
	opts.Imports = make(map[string]string, len(s.options.Generator.Imports)+len(file.Imports))
	for k, v := range s.options.Generator.Imports {
		opts.Imports[k] = v
	}
	for k, v := range file.Imports {
		opts.Imports[k] = v
	}

	out, err := codegen.NewGenerator(opts).GenerateFile(file.Shapes)
	if err != nil {
		res.Err = annotate(err, input, src)
		s.cache.Invalidate(input)
		log.Debug("generation failed", zap.Error(err))
		return res
	}
	res.Source = out

	if !s.options.DryRun {
		if err := s.write(res); err != nil {
			res.Err = err
			return res
		}
	}
	s.cache.Store(input, key, out, res.Shapes)
	log.Debug("generated", zap.Int("shapes", res.Shapes), zap.Bool("written", res.Written))
	return res
}

// write puts res.Source on disk unless the file already holds exactly that.
func (s *System) write(res *FileResult) error {
	existing, err := os.ReadFile(res.Output)
	if err == nil && bytes.Equal(existing, res.Source) {
		return nil
	}
	if err := os.WriteFile(res.Output, res.Source, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", res.Output, err)
	}
	res.Written = true
	return nil
}

// fingerprint lists the options that change generated bytes.
func (s *System) fingerprint() []string {
	g := s.options.Generator
	parts := []string{
		g.LibraryImport,
		g.LibraryName,
		strconv.FormatBool(g.Register),
		s.options.Parser.Directive,
	}
	for _, k := range sortedKeys(g.Imports) {
		parts = append(parts, k+"="+g.Imports[k])
	}
	return parts
}

// removeStale deletes a previously generated output.
func removeStale(path string) (bool, error) {
	existing, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if !bytes.HasPrefix(existing, []byte(codegen.Header)) {
		return false, nil
	}
	if err := os.Remove(path); err != nil {
		return false, fmt.Errorf("failed to remove stale %s: %w", path, err)
	}
	return true, nil
}

// annotate points diagnostics without a file at input and attaches the
// source line to those that belong to it.
func annotate(err error, input string, src []byte) error {
	var diags errors.ErrorList
	if !stderrors.As(err, &diags) {
		return err
	}
	for _, d := range diags {
		if d.Location.File == "" {
			d.WithFile(input)
		}
		if d.Location.File == input {
			d.WithSource(src)
		}
	}
	return diags
}
