// ABOUTME: Contact and deal CLI commands
// ABOUTME: Human-friendly list, add and delete commands backed by the controllers
package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/harperreed/shaft/models"
	"github.com/harperreed/shaft/viewmodel"
)

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// confirmer returns the --yes shortcut or an interactive prompt.
func confirmer(cmd *cobra.Command, yes bool) viewmodel.Confirmer {
	if yes {
		return viewmodel.AlwaysConfirm{}
	}
	return newPrompter(cmd)
}

func newContactsCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "contacts",
		Aliases: []string{"contact"},
		Short:   "Manage contacts",
	}
	cmd.AddCommand(newListContactsCmd(opts))
	cmd.AddCommand(newAddContactCmd(opts))
	cmd.AddCommand(newDeleteContactCmd(opts))
	return cmd
}

func printContacts(out io.Writer, contacts []models.Contact) {
	if len(contacts) == 0 {
		_, _ = fmt.Fprintln(out, "No contacts found")
		return
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "NAME\tEMAIL\tPHONE\tID")
	_, _ = fmt.Fprintln(w, "----\t-----\t-----\t--")
	for _, c := range contacts {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", c.Name, orDash(c.Email), orDash(c.Phone), c.ID)
	}
	_ = w.Flush()
}

func newListContactsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List contacts, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(app *App) error {
				nav := &navRecorder{}
				c := viewmodel.NewContacts(app.Sessions, app.Repos.Contacts, nav, viewmodel.AlwaysConfirm{}, app.Logger("cli"))
				if err := mount(cmd.Context(), c, nav); err != nil {
					return err
				}
				defer c.Unmount()
				printContacts(cmd.OutOrStdout(), c.Contacts())
				return nil
			})
		},
	}
}

func newAddContactCmd(opts *rootOptions) *cobra.Command {
	var form viewmodel.ContactForm

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a new contact",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(app *App) error {
				nav := &navRecorder{}
				c := viewmodel.NewContacts(app.Sessions, app.Repos.Contacts, nav, viewmodel.AlwaysConfirm{}, app.Logger("cli"))
				if err := mount(cmd.Context(), c, nav); err != nil {
					return err
				}
				defer c.Unmount()

				c.SetForm(form)
				if err := c.Submit(cmd.Context()); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "✓ Contact created: %s (ID: %s)\n", form.Name, c.Contacts()[0].ID)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&form.Name, "name", "", "Contact name (required)")
	cmd.Flags().StringVar(&form.Email, "email", "", "Email address")
	cmd.Flags().StringVar(&form.Phone, "phone", "", "Phone number")
	return cmd
}

func newDeleteContactCmd(opts *rootOptions) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a contact",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(app *App) error {
				nav := &navRecorder{}
				c := viewmodel.NewContacts(app.Sessions, app.Repos.Contacts, nav, confirmer(cmd, yes), app.Logger("cli"))
				if err := mount(cmd.Context(), c, nav); err != nil {
					return err
				}
				defer c.Unmount()

				before := len(c.Contacts())
				if err := c.Delete(cmd.Context(), args[0]); err != nil {
					return err
				}
				if len(c.Contacts()) == before {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Nothing deleted")
					return nil
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "✓ Contact deleted: %s\n", args[0])
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

func newDealsCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "deals",
		Aliases: []string{"deal"},
		Short:   "Manage deals",
	}
	cmd.AddCommand(newListDealsCmd(opts))
	cmd.AddCommand(newAddDealCmd(opts))
	cmd.AddCommand(newDeleteDealCmd(opts))
	return cmd
}

func printDeals(out io.Writer, deals []models.Deal) {
	if len(deals) == 0 {
		_, _ = fmt.Fprintln(out, "No deals found")
		return
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "NAME\tSTAGE\tAMOUNT\tID")
	_, _ = fmt.Fprintln(w, "----\t-----\t------\t--")
	for _, d := range deals {
		_, _ = fmt.Fprintf(w, "%s\t%s\t$%.2f\t%s\n", d.Name, d.Stage, d.Amount, d.ID)
	}
	_ = w.Flush()
}

func newListDealsCmd(opts *rootOptions) *cobra.Command {
	var stage string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List deals, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(app *App) error {
				nav := &navRecorder{}
				d := viewmodel.NewDeals(app.Sessions, app.Repos.Deals, nav, viewmodel.AlwaysConfirm{}, app.Logger("cli"))
				if err := mount(cmd.Context(), d, nav); err != nil {
					return err
				}
				defer d.Unmount()

				deals := d.Deals()
				if stage != "" {
					filtered := deals[:0]
					for _, deal := range deals {
						if deal.Stage == stage {
							filtered = append(filtered, deal)
						}
					}
					deals = filtered
				}
				printDeals(cmd.OutOrStdout(), deals)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&stage, "stage", "", "Only show deals in this stage")
	return cmd
}

func newAddDealCmd(opts *rootOptions) *cobra.Command {
	form := viewmodel.DealForm{Stage: models.StageProspecting}

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a new deal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(app *App) error {
				nav := &navRecorder{}
				d := viewmodel.NewDeals(app.Sessions, app.Repos.Deals, nav, viewmodel.AlwaysConfirm{}, app.Logger("cli"))
				if err := mount(cmd.Context(), d, nav); err != nil {
					return err
				}
				defer d.Unmount()

				d.SetForm(form)
				if err := d.Submit(cmd.Context()); err != nil {
					return err
				}
				deal := d.Deals()[0]
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "✓ Deal created: %s (ID: %s)\n", deal.Name, deal.ID)
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "  Stage: %s  Amount: $%.2f\n", deal.Stage, deal.Amount)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&form.Name, "name", "", "Deal name (required)")
	cmd.Flags().StringVar(&form.Amount, "amount", "0", "Deal amount")
	cmd.Flags().StringVar(&form.Stage, "stage", models.StageProspecting, "Deal stage")
	return cmd
}

func newDeleteDealCmd(opts *rootOptions) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a deal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(app *App) error {
				nav := &navRecorder{}
				d := viewmodel.NewDeals(app.Sessions, app.Repos.Deals, nav, confirmer(cmd, yes), app.Logger("cli"))
				if err := mount(cmd.Context(), d, nav); err != nil {
					return err
				}
				defer d.Unmount()

				before := len(d.Deals())
				if err := d.Delete(cmd.Context(), args[0]); err != nil {
					return err
				}
				if len(d.Deals()) == before {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Nothing deleted")
					return nil
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "✓ Deal deleted: %s\n", args[0])
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}
