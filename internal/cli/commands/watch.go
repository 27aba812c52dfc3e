package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/conduit-lang/roundtrip/internal/cli/config"
	"github.com/conduit-lang/roundtrip/internal/cli/ui"
	"github.com/conduit-lang/roundtrip/internal/tooling/build"
	"github.com/conduit-lang/roundtrip/internal/watch"
)

// NewWatchCommand creates the watch command
func NewWatchCommand(configDir *string) *cobra.Command {
	var noColor bool

	cmd := &cobra.Command{
		Use:   "watch [dir]",
		Short: "Regenerate relations as sources change",
		Long: `Generate relations for every marked type under dir (default: the current
directory), then keep watching it and regenerate each source file that
changes. Generated outputs, tests, hidden directories, vendor and testdata
are ignored.

Press Ctrl+C to stop.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			if info, err := os.Stat(dir); err != nil || !info.IsDir() {
				return fmt.Errorf("%s is not a directory", dir)
			}

			cfg, err := config.Load(*configDir)
			if err != nil {
				return err
			}
			logger := newLogger(cfg)
			defer func() { _ = logger.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			out := cmd.OutOrStdout()
			session := watch.NewSession(build.NewSystem(buildOptions(cfg), logger), []string{dir}, cfg.Watch.Debounce, logger)
			session.OnResult = func(result *build.Result) {
				ui.WriteReport(out, result, noColor)
				fmt.Fprintln(out)
			}

			banner := color.New(color.FgCyan, color.Bold)
			banner.Fprintf(out, "Watching %s\n", dir)
			color.New(color.FgYellow).Fprintln(out, "Press Ctrl+C to stop")
			fmt.Fprintln(out)

			if err := session.Run(ctx); err != nil {
				logger.Error("watch stopped", zap.Error(err))
				return fmt.Errorf("watch failed: %w", err)
			}

			color.New(color.FgGreen).Fprintln(out, "Stopped")
			return nil
		},
	}

	cmd.Flags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	return cmd
}
