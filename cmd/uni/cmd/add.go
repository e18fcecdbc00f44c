package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/unievents/uni/internal/core"
	"github.com/unievents/uni/internal/tui"
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a local event",
	Long: `Create an event in the local collection.

Example:
  uni add --title "Robotics Club Kickoff" --date "2025-09-01 18:00" \
    --description "Meet the team" --location "Engineering Hall" --category Technology`,
	Args: cobra.NoArgs,
	RunE: runAdd,
}

func init() {
	rootCmd.AddCommand(addCmd)

	addCmd.Flags().String("title", "", "event title (at least 3 characters)")
	addCmd.Flags().String("date", "", "date, e.g. 2025-09-01 or 2025-09-01 18:00")
	addCmd.Flags().String("description", "", "what the event is about")
	addCmd.Flags().String("location", "", "where it happens")
	addCmd.Flags().String("category", "", "category label")
	addCmd.Flags().StringToString("extra", nil, "additional fields, e.g. organizerEmail=a@uni.edu")
}

func runAdd(cmd *cobra.Command, _ []string) error {
	a, err := currentApp()
	if err != nil {
		return err
	}
	if err := a.guard.Check(); err != nil {
		return err
	}

	flags := cmd.Flags()
	var d core.Draft
	d.Title, _ = flags.GetString("title")
	d.Date, _ = flags.GetString("date")
	d.Description, _ = flags.GetString("description")
	d.Location, _ = flags.GetString("location")
	d.Category, _ = flags.GetString("category")
	d.Extra, _ = flags.GetStringToString("extra")

	if err := tui.ValidateDraft(d); err != nil {
		return err
	}
	created, ok := a.events.CreateEvent(cmd.Context(), d)
	if !ok {
		return errors.New("failed to create event: " + a.events.Err())
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Created event %s: %s\n", created.ID, created.Title)
	return nil
}
