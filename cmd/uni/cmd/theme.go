package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var themeCmd = &cobra.Command{
	Use:       "theme [toggle]",
	Short:     "Show or toggle the dark/light theme",
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"toggle"},
	RunE:      runTheme,
}

func init() {
	rootCmd.AddCommand(themeCmd)
}

func runTheme(cmd *cobra.Command, args []string) error {
	a, err := currentApp()
	if err != nil {
		return err
	}
	if len(args) == 1 {
		if err := a.theme.Toggle(cmd.Context()); err != nil {
			return fmt.Errorf("save theme: %w", err)
		}
	}
	fmt.Fprintln(cmd.OutOrStdout(), a.theme.Name())
	return nil
}
