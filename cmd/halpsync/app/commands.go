package app

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tophatmonocle/halpsync/pkg/constants"
	"github.com/tophatmonocle/halpsync/pkg/identity"
	"github.com/tophatmonocle/halpsync/pkg/reconcile"
)

// NewSyncCommand creates the sync command, which performs one
// reconciliation run for one inbound message.
func (a *App) NewSyncCommand() *cobra.Command {
	var (
		reply          bool
		requester      string
		requesterFirst string
		requesterLast  string
		ticketID       string
	)

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Reconcile the inbound-mailbox placeholder contact",
		Long: `Sync performs one reconciliation run: it loads the placeholder contact
holding the inbound-mailbox address, resolves the sender's directory
email by name, and merges the placeholder into the matching contact
record or promotes it into the canonical record.

For a reply to an existing ticket, pass --reply with the original
requester's name so the run targets whoever opened the ticket rather
than whoever mailed last.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rec, err := a.Reconciler()
			if err != nil {
				return err
			}

			name := identity.Name{First: requesterFirst, Last: requesterLast}
			if requester != "" {
				name = identity.SplitFullName(requester)
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), constants.RunTimeout)
			defer cancel()

			result, err := rec.Reconcile(ctx, reconcile.Request{
				Reply:         reply,
				RequesterName: name,
				TicketID:      ticketID,
			})
			if err != nil {
				return err
			}

			out, err := json.MarshalIndent(result, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}

	cmd.Flags().BoolVar(&reply, "reply", false, "the message is a reply to an existing ticket")
	cmd.Flags().StringVar(&requester, "requester", "", "original requester's full name (reply only, overrides --requester-first/--requester-last)")
	cmd.Flags().StringVar(&requesterFirst, "requester-first", "", "original requester's first name (reply only)")
	cmd.Flags().StringVar(&requesterLast, "requester-last", "", "original requester's last name (reply only)")
	cmd.Flags().StringVar(&ticketID, "ticket", "", "ticket id for requester annotation (e.g. INC-1042)")

	return cmd
}

// NewVersionCommand creates the version command.
func (a *App) NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "halpsync %s (commit %s, built %s)\n", a.version, a.commit, a.date)
			return nil
		},
	}
}
