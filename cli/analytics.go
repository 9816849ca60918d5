// ABOUTME: Analytics and visualization CLI commands
// ABOUTME: Prints the text dashboard or writes the pipeline as Graphviz
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/harperreed/shaft/viewmodel"
	"github.com/harperreed/shaft/viz"
)

func newAnalyticsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "analytics",
		Short: "Show the pipeline, totals and task completion",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(app *App) error {
				log := app.Logger("cli")

				nav := &navRecorder{}
				dash := viewmodel.NewDashboard(app.Sessions, app.Stores(), nav, log)
				if err := mount(cmd.Context(), dash, nav); err != nil {
					return err
				}
				defer dash.Unmount()

				a := viewmodel.NewAnalytics(app.Sessions, app.Repos.Deals, app.Repos.Tasks, nav, log)
				if err := mount(cmd.Context(), a, nav); err != nil {
					return err
				}
				defer a.Unmount()

				snap := a.Snapshot()
				_, _ = fmt.Fprint(cmd.OutOrStdout(), viz.RenderDashboard(dash.Snapshot().Stats, snap.Stages, snap.Monthly))
				return nil
			})
		},
	}
}

func newVizCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "viz",
		Short: "Visualization commands",
	}
	cmd.AddCommand(newVizPipelineCmd(opts))
	return cmd
}

func newVizPipelineCmd(opts *rootOptions) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "pipeline",
		Short: "Generate the deal pipeline graph in DOT format",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(app *App) error {
				nav := &navRecorder{}
				a := viewmodel.NewAnalytics(app.Sessions, app.Repos.Deals, app.Repos.Tasks, nav, app.Logger("cli"))
				if err := mount(cmd.Context(), a, nav); err != nil {
					return err
				}
				defer a.Unmount()

				dot, err := viz.PipelineGraph(cmd.Context(), a.Snapshot().Stages)
				if err != nil {
					return err
				}
				if output != "" {
					return os.WriteFile(output, []byte(dot), 0644)
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), dot)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&output, "output", "", "Output file (default: stdout)")
	return cmd
}
