package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

var calendarsCmd = &cobra.Command{
	Use:     "calendars",
	Aliases: []string{"cal", "cals"},
	Short:   "List calendars available for import",
	Long:    `List the calendars of the connected provider that 'uni import --calendars' can select.`,
	Args:    cobra.NoArgs,
	RunE:    runCalendars,
}

func init() {
	rootCmd.AddCommand(calendarsCmd)
}

func runCalendars(cmd *cobra.Command, _ []string) error {
	src, err := openSource(cmd.Context())
	if err != nil {
		return err
	}
	calendars := src.Calendars()

	ids := make([]string, 0, len(calendars))
	for id := range calendars {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if calendars[ids[i]] != calendars[ids[j]] {
			return calendars[ids[i]] < calendars[ids[j]]
		}
		return ids[i] < ids[j]
	})

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "📅 %s calendars:\n", src.Name())
	fmt.Fprintln(out, divider)
	for _, id := range ids {
		fmt.Fprintf(out, "\n  • %s\n", calendars[id])
		fmt.Fprintf(out, "    ID: %s\n", id)
	}
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Total: %d calendars\n", len(calendars))
	fmt.Fprintln(out, "\nTip: Use 'uni import --calendars \"calendar name\"' to import from specific calendars")
	return nil
}
