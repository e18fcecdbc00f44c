package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/unievents/uni/internal/core"
	"github.com/unievents/uni/internal/rsvp"
)

var rsvpCmd = &cobra.Command{
	Use:   "rsvp <id>",
	Short: "RSVP to an event, or cancel an RSVP",
	Long: `RSVP to an event as the signed-in user, or as --email.

Examples:
  uni rsvp 7                       # reserve a place
  uni rsvp 7 --cancel              # give it back
  uni rsvp 7 --status              # show whether you are going and the head count`,
	Args: cobra.ExactArgs(1),
	RunE: runRSVP,
}

func init() {
	rootCmd.AddCommand(rsvpCmd)

	rsvpCmd.Flags().String("email", "", "email to RSVP with (default is the signed-in user)")
	rsvpCmd.Flags().Bool("cancel", false, "cancel the RSVP instead")
	rsvpCmd.Flags().Bool("status", false, "only show the RSVP status")
}

func runRSVP(cmd *cobra.Command, args []string) error {
	a, err := currentApp()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	flags := cmd.Flags()

	event, ok := a.events.Lookup(core.EventID(args[0]))
	if !ok {
		return fmt.Errorf("event %s not found (run 'uni' to refresh the list)", args[0])
	}

	email, _ := flags.GetString("email")
	if email == "" {
		if u, ok := a.session.User(); ok {
			email = u.Email
		}
	}
	if email == "" {
		return errors.New("no email to RSVP with (run 'uni login' or pass --email)")
	}

	status, _ := flags.GetBool("status")
	cancel, _ := flags.GetBool("cancel")
	switch {
	case status:
		going, err := a.rsvps.Has(ctx, event.ID, email)
		if err != nil {
			return err
		}
		if going {
			fmt.Fprintf(out, "✓ %s is going to %s\n", email, event.Title)
		} else {
			fmt.Fprintf(out, "%s has not RSVPed to %s\n", email, event.Title)
		}
	case cancel:
		if err := a.guard.Check(); err != nil {
			return err
		}
		if err := a.rsvps.Cancel(ctx, event.ID, email); err != nil {
			if errors.Is(err, rsvp.ErrNotFound) {
				return fmt.Errorf("%s has no RSVP for %s", email, event.Title)
			}
			return fmt.Errorf("cancel rsvp: %w", err)
		}
		fmt.Fprintf(out, "✓ RSVP cancelled for %s\n", event.Title)
	default:
		if err := a.guard.Check(); err != nil {
			return err
		}
		if _, err := a.rsvps.Create(ctx, event.ID, email); err != nil {
			if errors.Is(err, rsvp.ErrAlreadyRSVPed) {
				return fmt.Errorf("%s has already RSVPed to %s", email, event.Title)
			}
			return fmt.Errorf("rsvp: %w", err)
		}
		fmt.Fprintf(out, "✓ RSVP successful for %s\n", event.Title)
	}

	n, err := a.rsvps.Count(ctx, event.ID)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "👥 %d going\n", n)
	return nil
}
