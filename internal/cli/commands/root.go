package commands

import (
	"runtime"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/conduit-lang/roundtrip/internal/cli/config"
	"github.com/conduit-lang/roundtrip/internal/compiler/parser"
	"github.com/conduit-lang/roundtrip/internal/tooling/build"
)

var (
	// Version information - set at build time
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
	GoVersion = "unknown"
)

// NewRootCommand creates the root command
func NewRootCommand() *cobra.Command {
	var configDir string

	rootCmd := &cobra.Command{
		Use:   "roundtrip-gen",
		Short: "Generate round-trip relations for Go types",
		Long: color.CyanString(`roundtrip-gen - round-trip relation generator

roundtrip-gen reads Go types marked with a //roundtrip:derive comment and
writes, next to each source file, the relations that map a value of the type
onto any other type with the same encoded form.

For every marked type Name it generates:
  • RoundTripName, the structural relation built from one relation per parameter
  • SameName, the identity relation naming the type's own decoding partner`),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", ".", "Directory containing "+config.FileName)

	rootCmd.AddCommand(NewVersionCommand())
	rootCmd.AddCommand(NewGenerateCommand(&configDir))
	rootCmd.AddCommand(NewWatchCommand(&configDir))
	rootCmd.AddCommand(NewInitCommand(&configDir))

	return rootCmd
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  "Display the roundtrip-gen version, Git commit, build date, and Go version",
		Run: func(cmd *cobra.Command, args []string) {
			// Set GoVersion to actual runtime if not set at build time
			goVer := GoVersion
			if goVer == "unknown" {
				goVer = runtime.Version()
			}

			out := cmd.OutOrStdout()
			titleColor := color.New(color.FgCyan, color.Bold)
			valueColor := color.New(color.FgWhite)

			titleColor.Fprint(out, "roundtrip-gen version: ")
			valueColor.Fprintln(out, Version)

			titleColor.Fprint(out, "Git commit: ")
			valueColor.Fprintln(out, GitCommit)

			titleColor.Fprint(out, "Build date: ")
			valueColor.Fprintln(out, BuildDate)

			titleColor.Fprint(out, "Go version: ")
			valueColor.Fprintln(out, goVer)
		},
	}
}

// Execute runs the root command
func Execute() error {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		errorColor := color.New(color.FgRed, color.Bold)
		errorColor.Fprintf(rootCmd.ErrOrStderr(), "Error: %v\n", err)
		return err
	}
	return nil
}

// newLogger builds the logger for cfg's level: development output for debug,
// production JSON otherwise. A logger that cannot be built is replaced by a
// no-op one.
func newLogger(cfg *config.Config) *zap.Logger {
	level, err := cfg.Level()
	if err != nil {
		return zap.NewNop()
	}

	zc := zap.NewProductionConfig()
	if level == zapcore.DebugLevel {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.OutputPaths = []string{"stderr"}
	zc.ErrorOutputPaths = []string{"stderr"}

	logger, err := zc.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// buildOptions maps the configuration onto generation options
func buildOptions(cfg *config.Config) *build.Options {
	opts := build.DefaultOptions()
	opts.OutputSuffix = cfg.OutputSuffix
	opts.Parser.Directive = cfg.Directive
	opts.Generator.Register = cfg.Register
	opts.Generator.LibraryImport = cfg.LibraryImport
	opts.Generator.LibraryName = parser.ImportName(cfg.LibraryImport)
	return opts
}
