package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/AlecAivazis/survey/v2"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/conduit-lang/roundtrip/internal/cli/config"
)

// NewInitCommand creates the init command
func NewInitCommand(configDir *string) *cobra.Command {
	var (
		interactive bool
		force       bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a " + config.FileName + " with default settings",
		Long: `Write a ` + config.FileName + ` configuration file. With --interactive each
setting is prompted for; otherwise the defaults are written.

Every setting can also be overridden with a ROUNDTRIP_ environment variable,
e.g. ROUNDTRIP_REGISTER=true or ROUNDTRIP_WATCH_DEBOUNCE=250ms.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := filepath.Join(*configDir, config.FileName)
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}

			cfg := config.Default()
			if interactive {
				if err := promptConfig(cfg); err != nil {
					return err
				}
			}

			written, err := config.Write(*configDir, cfg)
			if err != nil {
				return err
			}

			color.New(color.FgGreen, color.Bold).Fprintf(cmd.OutOrStdout(), "✓ Wrote %s\n", written)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Prompt for each setting")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing configuration file")

	return cmd
}

// promptConfig asks for every setting, offering cfg's values as defaults
func promptConfig(cfg *config.Config) error {
	if err := survey.AskOne(&survey.Input{
		Message: "Library import path:",
		Default: cfg.LibraryImport,
	}, &cfg.LibraryImport, survey.WithValidator(survey.Required)); err != nil {
		return err
	}

	if err := survey.AskOne(&survey.Input{
		Message: "Generated file suffix:",
		Default: cfg.OutputSuffix,
	}, &cfg.OutputSuffix, survey.WithValidator(survey.Required)); err != nil {
		return err
	}

	if err := survey.AskOne(&survey.Input{
		Message: "Directive marking derived types:",
		Default: cfg.Directive,
	}, &cfg.Directive, survey.WithValidator(survey.Required)); err != nil {
		return err
	}

	if err := survey.AskOne(&survey.Confirm{
		Message: "Register zero-parameter types in the default registry?",
		Default: cfg.Register,
	}, &cfg.Register); err != nil {
		return err
	}

	if err := survey.AskOne(&survey.Select{
		Message: "Log level:",
		Options: []string{"debug", "info", "warn", "error"},
		Default: cfg.LogLevel,
	}, &cfg.LogLevel); err != nil {
		return err
	}

	debounce := cfg.Watch.Debounce.String()
	if err := survey.AskOne(&survey.Input{
		Message: "Watch debounce:",
		Default: debounce,
	}, &debounce, survey.WithValidator(validDuration)); err != nil {
		return err
	}
	d, err := time.ParseDuration(debounce)
	if err != nil {
		return err
	}
	cfg.Watch.Debounce = d
	return nil
}

func validDuration(ans interface{}) error {
	s, _ := ans.(string)
	if _, err := time.ParseDuration(s); err != nil {
		return fmt.Errorf("not a duration: %s", s)
	}
	return nil
}
