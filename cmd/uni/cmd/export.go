package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/unievents/uni/internal/ics"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the local collection as an iCalendar file",
	Long: `Write the saved events as iCalendar (.ics) so they can be imported
into any calendar app. Run 'uni' first to refresh the collection.`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringP("out", "o", "-", "output file, - for stdout")
	exportCmd.Flags().Bool("refresh", false, "fetch from the events API before exporting")
}

func runExport(cmd *cobra.Command, _ []string) error {
	a, err := currentApp()
	if err != nil {
		return err
	}
	if refresh, _ := cmd.Flags().GetBool("refresh"); refresh {
		a.events.FetchEvents(cmd.Context())
	}

	list := a.events.Events()
	path, _ := cmd.Flags().GetString("out")
	if path == "-" {
		return ics.Write(cmd.OutOrStdout(), list, time.Now())
	}

	f, err := os.Create(expandPath(path))
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := ics.Write(f, list, time.Now()); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	logger.Info("exported events", "count", len(list), "path", path)
	return nil
}
