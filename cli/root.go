// ABOUTME: Root cobra command and shared command plumbing
// ABOUTME: Loads config once, then each subcommand opens the app stack it needs
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/harperreed/shaft/config"
)

type rootOptions struct {
	logLevel string
	cfg      *config.Config
}

// Execute runs the CLI with os.Args.
func Execute(ctx context.Context, version string) error {
	return NewRootCmd(version).ExecuteContext(ctx)
}

// NewRootCmd constructs the root CLI command; exposed for unit testing.
func NewRootCmd(version string) *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "shaft",
		Short:         "Shaft keeps your contacts, deals, tasks and calendar in one place",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if opts.logLevel != "" {
				cfg.LogLevel = opts.logLevel
			}
			opts.cfg = cfg
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error); overrides SHAFT_LOG_LEVEL")

	rootCmd.AddCommand(newLoginCmd(opts))
	rootCmd.AddCommand(newSignupCmd(opts))
	rootCmd.AddCommand(newLogoutCmd(opts))
	rootCmd.AddCommand(newWhoamiCmd(opts))
	rootCmd.AddCommand(newServeCmd(opts))
	rootCmd.AddCommand(newTUICmd(opts))
	rootCmd.AddCommand(newMCPCmd(opts, version))
	rootCmd.AddCommand(newContactsCmd(opts))
	rootCmd.AddCommand(newDealsCmd(opts))
	rootCmd.AddCommand(newTasksCmd(opts))
	rootCmd.AddCommand(newEventsCmd(opts))
	rootCmd.AddCommand(newAnalyticsCmd(opts))
	rootCmd.AddCommand(newVizCmd(opts))

	return rootCmd
}

// logWriter picks the configured log file, or stderr.
func (o *rootOptions) logWriter() (io.Writer, func(), error) {
	if o.cfg.LogFile == "" {
		return os.Stderr, func() {}, nil
	}
	f, err := os.OpenFile(o.cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}

// withApp opens the app for the duration of fn.
func (o *rootOptions) withApp(cmd *cobra.Command, fn func(app *App) error) error {
	w, closeLog, err := o.logWriter()
	if err != nil {
		return err
	}
	defer closeLog()

	app, err := OpenApp(cmd.Context(), o.cfg, w)
	if err != nil {
		return err
	}
	defer app.Close()

	return fn(app)
}
