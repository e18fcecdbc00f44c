package cmd

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/unievents/uni/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the local collection as a JSON API",
	Long: `Serve the local collection over HTTP and keep it fresh from api_url.

Routes:
  GET  /api/events       the collection
  GET  /api/events/{id}  one event (404 when absent)
  POST /api/events       create a local event
  POST|DELETE /api/events/{id}/rsvp     RSVP or cancel ({"user_email": ...})
  GET  /api/events/{id}/rsvp?email=     whether email has RSVPed
  GET  /api/events/{id}/rsvp/count      number of RSVPs
  GET  /health
  GET  /metrics          prometheus metrics

api_url must point at a different server than the one being started.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("listen", ":8083", "address to listen on")
	serveCmd.Flags().String("refresh", server.DefaultRefresh, "cron schedule for refreshing from api_url, empty to disable")
	viper.BindPFlag("serve.listen", serveCmd.Flags().Lookup("listen"))
	viper.BindPFlag("serve.refresh", serveCmd.Flags().Lookup("refresh"))
}

func runServe(cmd *cobra.Command, _ []string) error {
	a, err := currentApp()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := server.New(a.events, a.rsvps, viper.GetString("serve.refresh"), logger)
	return srv.Run(ctx, viper.GetString("serve.listen"))
}
