package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/unievents/uni/internal/core"
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Copy upcoming calendar entries into your events",
	Long: `Read upcoming entries from the connected Google or Outlook calendar and
add each one as an event.

Examples:
  uni import                         # next 7 days, all calendars
  uni import --days 30
  uni import --calendars "Clubs,Lectures" --dry-run`,
	Args: cobra.NoArgs,
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().IntP("days", "d", 7, "number of days ahead to import")
	importCmd.Flags().StringP("calendars", "c", "", "comma-separated calendar names or IDs")
	importCmd.Flags().Bool("dry-run", false, "print what would be imported without adding anything")

	viper.BindPFlag("days", importCmd.Flags().Lookup("days"))
	viper.BindPFlag("calendars", importCmd.Flags().Lookup("calendars"))
}

func runImport(cmd *cobra.Command, _ []string) error {
	a, err := currentApp()
	if err != nil {
		return err
	}
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	if !dryRun {
		if err := a.guard.Check(); err != nil {
			return err
		}
	}

	ctx := cmd.Context()
	src, err := openSource(ctx)
	if err != nil {
		return err
	}

	opts := core.DefaultImportOptions(time.Now(), viper.GetInt("days"))
	if filter := viper.GetString("calendars"); filter != "" {
		opts.CalendarIDs = resolveCalendarNames(strings.Split(filter, ","), src.Calendars())
		if len(opts.CalendarIDs) == 0 {
			return fmt.Errorf("no calendars match %q (see 'uni calendars')", filter)
		}
	}

	drafts, err := src.Drafts(ctx, opts)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", src.Name(), err)
	}

	out := cmd.OutOrStdout()
	if len(drafts) == 0 {
		fmt.Fprintln(out, "No upcoming calendar entries to import.")
		return nil
	}

	if dryRun {
		for _, d := range drafts {
			fmt.Fprintf(out, "  • %s  %s\n", d.Date, d.Title)
		}
		fmt.Fprintf(out, "\n%d entries would be imported from %s\n", len(drafts), src.Name())
		return nil
	}

	added := 0
	for _, d := range drafts {
		if a.events.AddEvent(ctx, d) {
			added++
			continue
		}
		logger.Warn("could not import entry", "title", d.Title, "err", a.events.Err())
	}
	fmt.Fprintf(out, "✓ Imported %d of %d entries from %s\n", added, len(drafts), src.Name())
	return nil
}
