// ABOUTME: Long-running front ends: the HTTP server, the TUI and the MCP server
// ABOUTME: All three share one session cache per process
package cli

import (
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/harperreed/shaft/config"
	"github.com/harperreed/shaft/handlers"
	"github.com/harperreed/shaft/tui"
	"github.com/harperreed/shaft/web"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the web app and JSON API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = opts.cfg.HTTPAddr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return opts.withApp(cmd, func(app *App) error {
				srv := web.NewServer(app.Sessions, app.Stores(),
					web.Options{AllowedOrigins: app.Config.AllowedOrigins}, app.Logger("web"))
				return srv.ListenAndServe(ctx, addr)
			})
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default SHAFT_HTTP_ADDR or :8080)")
	return cmd
}

func newTUICmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the full-screen terminal app",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// stderr belongs to the screen while the TUI runs
			if opts.cfg.LogFile == "" {
				opts.cfg.LogFile = filepath.Join(config.DataDir(), "shaft.log")
				if err := os.MkdirAll(config.DataDir(), 0755); err != nil {
					return err
				}
			}
			return opts.withApp(cmd, func(app *App) error {
				return tui.Run(cmd.Context(), app.Sessions, app.Stores(), app.Logger("tui"))
			})
		},
	}
}

func newMCPCmd(opts *rootOptions, version string) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Run the MCP server on stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(app *App) error {
				log := app.Logger("mcp")
				log.Info().Msg("starting MCP server")

				server := mcp.NewServer(&mcp.Implementation{
					Name:    "shaft",
					Version: version,
				}, nil)
				handlers.New(app.Sessions, app.Stores(), log).Register(server)

				return server.Run(cmd.Context(), &mcp.StdioTransport{})
			})
		},
	}
}
