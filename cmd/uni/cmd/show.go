package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/unievents/uni/internal/core"
)

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one event in full",
	Long: `Show everything about one event.

The events API is asked first. If it cannot answer, the saved copy of the
event is shown, and failing that a placeholder.`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	a, err := currentApp()
	if err != nil {
		return err
	}

	e := a.events.FetchEventByID(cmd.Context(), core.EventID(args[0]))
	out := cmd.OutOrStdout()
	if msg := a.events.Err(); msg != "" {
		fmt.Fprintf(out, "⚠️  Events API unavailable (%s)\n\n", msg)
	}
	printEventDetails(out, e)

	if n, err := a.rsvps.Count(cmd.Context(), e.ID); err != nil {
		logger.Warn("could not count rsvps", "err", err)
	} else {
		fmt.Fprintf(out, "👥 RSVPs:       %d\n", n)
	}
	return nil
}
