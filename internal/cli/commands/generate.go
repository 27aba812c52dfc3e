package commands

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/conduit-lang/roundtrip/internal/cli/config"
	"github.com/conduit-lang/roundtrip/internal/cli/ui"
	"github.com/conduit-lang/roundtrip/internal/tooling/build"
)

// NewGenerateCommand creates the generate command
func NewGenerateCommand(configDir *string) *cobra.Command {
	var (
		dryRun  bool
		jsonOut bool
		quiet   bool
		noColor bool
	)

	cmd := &cobra.Command{
		Use:   "generate [files or directories...]",
		Short: "Generate relations for marked types",
		Long: `Generate round-trip relations for every type marked with //roundtrip:derive.

Each argument is a Go source file, a shape file (.yml, .yaml, .json) or a
directory, which is searched recursively for Go sources. Without arguments
the current directory is searched.

Outputs are written next to their inputs as <name>_roundtrip.go. Inputs
whose content has not changed since the last run are not regenerated, and
outputs whose inputs no longer mark any type are removed.`,
		Example: `  # Generate for the whole module
  roundtrip-gen generate

  # Generate for one file and show the result instead of writing it
  roundtrip-gen generate --dry-run geo/point.go

  # Report diagnostics as JSON (useful for tooling)
  roundtrip-gen generate --json ./...`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configDir)
			if err != nil {
				return err
			}
			logger := newLogger(cfg)
			defer func() { _ = logger.Sync() }()

			inputs, err := collectInputs(args, cfg.OutputSuffix)
			if err != nil {
				return err
			}

			opts := buildOptions(cfg)
			opts.DryRun = dryRun

			var bar *ui.ProgressBar
			if !jsonOut && !quiet {
				bar = ui.NewProgressBar(cmd.ErrOrStderr(), ui.ProgressBarOptions{NoColor: noColor})
				opts.ProgressFunc = bar.Update
			}

			result, err := build.NewSystem(opts, logger).Generate(cmd.Context(), inputs)
			if bar != nil {
				bar.Finish()
			}
			if err != nil {
				return err
			}

			if dryRun {
				writeSources(cmd.OutOrStdout(), result)
			}

			switch {
			case jsonOut:
				out, err := result.Diagnostics.ToJSON()
				if err != nil {
					return fmt.Errorf("failed to encode diagnostics: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), out)
			case !quiet || !result.Success():
				report := cmd.OutOrStdout()
				if dryRun {
					report = cmd.ErrOrStderr()
				}
				ui.WriteReport(report, result, noColor)
			}

			if !result.Success() {
				return fmt.Errorf("generation failed with %d diagnostic(s)", len(result.Diagnostics))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print generated sources instead of writing them")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print diagnostics as JSON")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Only report failures")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	return cmd
}

// collectInputs expands directory arguments into the Go sources below them.
// A "/..." suffix is accepted and ignored since directories are always
// searched recursively.
func collectInputs(args []string, suffix string) ([]string, error) {
	if len(args) == 0 {
		args = []string{"."}
	}

	var inputs []string
	for _, arg := range args {
		arg = trimRecursive(arg)
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("cannot read input %s: %w", arg, err)
		}
		if !info.IsDir() {
			inputs = append(inputs, arg)
			continue
		}
		found, err := build.FindInputs(arg, suffix)
		if err != nil {
			return nil, fmt.Errorf("failed to search %s: %w", arg, err)
		}
		inputs = append(inputs, found...)
	}
	return inputs, nil
}

func trimRecursive(arg string) string {
	if arg == "./..." || arg == "..." {
		return "."
	}
	return strings.TrimSuffix(arg, "/...")
}

func writeSources(w io.Writer, result *build.Result) {
	for _, f := range result.Files {
		if len(f.Source) == 0 {
			continue
		}
		fmt.Fprintf(w, "// %s\n", f.Output)
		w.Write(f.Source)
		fmt.Fprintln(w)
	}
}
