package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/exec"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/oauth2"

	"github.com/unievents/uni/internal/adapter"
	"github.com/unievents/uni/internal/adapter/google"
	"github.com/unievents/uni/internal/adapter/outlook"
)

const (
	redirectPort = "8085"
	redirectURL  = "http://localhost:" + redirectPort + "/callback"
)

var connectCmd = &cobra.Command{
	Use:   "connect",
	Short: "Authorize uni to read your Google or Outlook calendar",
	Long: `Authorize uni to read the calendar you import events from.

  1. Starts a local server to receive the OAuth callback
  2. Opens your browser to sign in
  3. Saves the token for 'uni import'

The provider comes from your profile (provider: google|outlook).`,
	Args: cobra.NoArgs,
	RunE: runConnect,
}

func init() {
	rootCmd.AddCommand(connectCmd)
}

func runConnect(cmd *cobra.Command, _ []string) error {
	var (
		config   *oauth2.Config
		name     string
		authOpts []oauth2.AuthCodeOption
	)

	switch provider := viper.GetString("provider"); provider {
	case "google":
		c, err := google.OAuthConfig(expandPath(viper.GetString("credentials_file")))
		if err != nil {
			return err
		}
		c.RedirectURL = redirectURL
		config, name = c, "Google"
		authOpts = []oauth2.AuthCodeOption{oauth2.AccessTypeOffline, oauth2.ApprovalForce}
	case "outlook":
		clientID := viper.GetString("client_id")
		if clientID == "" {
			return errors.New("client_id not configured\n\nAdd it to your profile config:\n  client_id: \"your-azure-app-client-id\"")
		}
		src := outlook.New("outlook", "Outlook Calendar", clientID, viper.GetString("tenant_id"), "", logger)
		config, name = src.OAuthConfig(), "Microsoft"
		authOpts = []oauth2.AuthCodeOption{oauth2.SetAuthURLParam("prompt", "consent")}
	default:
		return fmt.Errorf("unknown provider: %s (supported: google, outlook)", provider)
	}

	tok, err := getTokenViaLocalServer(cmd.Context(), config, name, authOpts...)
	if err != nil {
		return fmt.Errorf("failed to get token: %w", err)
	}

	tokenFile := expandPath(viper.GetString("token_file"))
	if err := adapter.SaveToken(tokenFile, tok); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "\n✅ Authorization successful!")
	fmt.Fprintf(out, "📁 Token saved to %s\n", tokenFile)
	fmt.Fprintln(out, "\nRun 'uni import' to copy upcoming calendar entries into your events.")
	return nil
}

const callbackPage = `<!DOCTYPE html>
<html>
<head><title>Authorization Successful</title></head>
<body style="font-family: sans-serif; text-align: center; padding-top: 20vh">
  <h1>Authorization Successful</h1>
  <p>You can close this window and return to the terminal.</p>
</body>
</html>`

func getTokenViaLocalServer(ctx context.Context, config *oauth2.Config, providerName string, authOpts ...oauth2.AuthCodeOption) (*oauth2.Token, error) {
	state := uuid.NewString()
	codeChan := make(chan string, 1)
	errChan := make(chan error, 1)

	mux := http.NewServeMux()
	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("state") != state {
			http.Error(w, "state mismatch", http.StatusBadRequest)
			errChan <- errors.New("authorization failed: state mismatch")
			return
		}
		code := q.Get("code")
		if code == "" {
			http.Error(w, "Authorization failed: "+q.Get("error"), http.StatusBadRequest)
			errChan <- fmt.Errorf("authorization failed: %s", q.Get("error"))
			return
		}
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, callbackPage)
		codeChan <- code
	})
	server := &http.Server{Addr: ":" + redirectPort, Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()
	defer server.Shutdown(context.Background())

	authURL := config.AuthCodeURL(state, authOpts...)
	fmt.Printf("🔐 Opening browser for %s authorization...\n\n", providerName)
	if err := openBrowser(authURL); err != nil {
		fmt.Println("⚠️  Couldn't open browser automatically.")
		fmt.Println("   Please open this URL manually:")
		fmt.Println(authURL)
	}
	fmt.Println("⏳ Waiting for authorization...")

	var code string
	select {
	case code = <-codeChan:
	case err := <-errChan:
		return nil, err
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(5 * time.Minute):
		return nil, errors.New("timeout waiting for authorization")
	}

	tok, err := config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange code: %w", err)
	}
	return tok, nil
}

func openBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		return errors.New("unsupported platform")
	}
	return cmd.Start()
}
