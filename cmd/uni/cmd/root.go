package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/oauth2"

	"github.com/unievents/uni/internal/core"
	"github.com/unievents/uni/internal/events"
	"github.com/unievents/uni/internal/gateway"
	"github.com/unievents/uni/internal/kv"
	"github.com/unievents/uni/internal/rsvp"
	"github.com/unievents/uni/internal/session"
	"github.com/unievents/uni/internal/theme"
)

// app holds the stores every command works against.
type app struct {
	storage core.Storage
	session *session.Store
	theme   *theme.Store
	events  *events.Store
	rsvps   *rsvp.Store
	guard   session.Guard
}

var (
	cfgFile string
	profile string
	verbose bool

	logger      = log.NewWithOptions(os.Stderr, log.Options{Prefix: "uni"})
	application *app
)

var rootCmd = &cobra.Command{
	Use:   "uni",
	Short: "Browse and create university events from the terminal",
	Long: `uni shows the campus event feed, keeps a local copy that survives
restarts and lets you add your own events.

When the events API cannot be reached uni falls back to the events it
already holds, or to a small built-in sample set when it holds none.`,
	SilenceUsage:       true,
	PersistentPreRunE:  initApp,
	PersistentPostRunE: closeApp,
	RunE:               listEvents,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/uni/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&profile, "profile", "p", "", "config profile to use (e.g., campus, staging)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	rootCmd.PersistentFlags().String("api-url", gateway.DefaultBaseURL, "events API base URL")
	rootCmd.PersistentFlags().String("storage", kv.BackendFile, "storage backend: file, sqlite, redis, memory")
	rootCmd.PersistentFlags().String("data-dir", "", "data directory for file and sqlite storage (default is $HOME/.local/share/uni)")

	viper.BindPFlag("api_url", rootCmd.PersistentFlags().Lookup("api-url"))
	viper.BindPFlag("storage.backend", rootCmd.PersistentFlags().Lookup("storage"))
	viper.BindPFlag("storage.path", rootCmd.PersistentFlags().Lookup("data-dir"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(filepath.Join(home, ".config", "uni"))
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("UNI")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("api_url", gateway.DefaultBaseURL)
	viper.SetDefault("api_timeout", 10*time.Second)
	viper.SetDefault("storage.backend", kv.BackendFile)
	viper.SetDefault("auth.enforce", false)
	viper.SetDefault("provider", "google")
	viper.SetDefault("credentials_file", "credentials.json")
	viper.SetDefault("token_file", "token.json")
	viper.SetDefault("days", 7)
	viper.SetDefault("serve.listen", ":8083")
	viper.SetDefault("serve.refresh", "*/15 * * * *")
	viper.SetDefault("log_level", "info")

	if err := viper.ReadInConfig(); err == nil {
		logger.Debug("using config file", "path", viper.ConfigFileUsed())
	}

	applyProfile()
	configureLogger()
}

func configureLogger() {
	level, err := log.ParseLevel(viper.GetString("log_level"))
	if err != nil {
		logger.Warn("unknown log_level, using info", "value", viper.GetString("log_level"))
		level = log.InfoLevel
	}
	if verbose {
		level = log.DebugLevel
	}
	logger.SetLevel(level)
}

// profileSettings are the keys a profile may override.
var profileSettings = []string{
	"api_url",
	"api_timeout",
	"storage.backend",
	"storage.path",
	"storage.redis_url",
	"auth.enforce",
	"provider",
	"credentials_file",
	"token_file",
	"client_id",
	"tenant_id",
	"days",
	"calendars",
	"serve.listen",
	"serve.refresh",
	"log_level",
}

// applyProfile merges profile-specific settings over defaults
func applyProfile() {
	activeProfile := profile
	if activeProfile == "" {
		activeProfile = viper.GetString("default_profile")
	}
	if activeProfile == "" {
		return
	}

	profileKey := "profiles." + activeProfile
	if !viper.IsSet(profileKey) {
		logger.Warn("profile not found in config", "profile", activeProfile)
		return
	}
	logger.Debug("using profile", "profile", activeProfile)

	// A flag given on the command line beats the profile.
	for _, key := range profileSettings {
		profileSettingKey := profileKey + "." + key
		if viper.IsSet(profileSettingKey) && !isFlagExplicitlySet(key) {
			viper.Set(key, viper.Get(profileSettingKey))
		}
	}
}

var flagForKey = map[string]string{
	"api_url":         "api-url",
	"storage.backend": "storage",
	"storage.path":    "data-dir",
	"serve.listen":    "listen",
	"serve.refresh":   "refresh",
}

func isFlagExplicitlySet(viperKey string) bool {
	name, ok := flagForKey[viperKey]
	if !ok {
		name = strings.ReplaceAll(viperKey, "_", "-")
	}
	if f := rootCmd.PersistentFlags().Lookup(name); f != nil && f.Changed {
		return true
	}
	// Subcommand flags are only parsed for the command being run.
	for _, c := range rootCmd.Commands() {
		if f := c.Flags().Lookup(name); f != nil && f.Changed {
			return true
		}
	}
	return false
}

// needsApp reports whether cmd works against the local stores.
func needsApp(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		switch c.Name() {
		case "help", "completion", "profile", "connect", "calendars":
			return false
		}
	}
	return true
}

func initApp(cmd *cobra.Command, _ []string) error {
	if !needsApp(cmd) {
		return nil
	}
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	application = a
	return nil
}

func closeApp(_ *cobra.Command, _ []string) error {
	if application == nil {
		return nil
	}
	err := application.storage.Close()
	application = nil
	return err
}

// openApp opens storage and builds the stores from the current config.
func openApp(ctx context.Context) (*app, error) {
	storage, err := kv.Open(kv.Config{
		Backend:  viper.GetString("storage.backend"),
		Path:     dataDir(),
		RedisURL: viper.GetString("storage.redis_url"),
	})
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}

	sess := session.New(ctx, storage)
	th, err := theme.New(ctx, storage)
	if err != nil {
		logger.Warn("could not save theme", "err", err)
	}

	var opts []gateway.Option
	if tok := sess.AccessToken(); tok != "" {
		opts = append(opts, gateway.WithTokenSource(oauth2.StaticTokenSource(&oauth2.Token{AccessToken: tok})))
	}
	gw := gateway.New(viper.GetString("api_url"), viper.GetDuration("api_timeout"), opts...)

	return &app{
		storage: storage,
		session: sess,
		theme:   th,
		events:  events.New(ctx, gw, storage, events.WithLogger(logger)),
		rsvps:   rsvp.New(storage, rsvp.WithLogger(logger)),
		guard:   session.Guard{Enforce: viper.GetBool("auth.enforce"), Session: sess},
	}, nil
}

func dataDir() string {
	if dir := viper.GetString("storage.path"); dir != "" {
		return expandPath(dir)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".uni")
	}
	return filepath.Join(home, ".local", "share", "uni")
}

// expandPath expands ~ to the user's home directory
func expandPath(path string) string {
	if rest, ok := strings.CutPrefix(path, "~/"); ok {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, rest)
	}
	return path
}

var errNoApp = errors.New("stores not initialized")

func currentApp() (*app, error) {
	if application == nil {
		return nil, errNoApp
	}
	return application, nil
}

func listEvents(cmd *cobra.Command, _ []string) error {
	a, err := currentApp()
	if err != nil {
		return err
	}
	hadSaved := a.events.Count() > 0
	a.events.FetchEvents(cmd.Context())

	out := cmd.OutOrStdout()
	list := a.events.Events()
	if msg := a.events.Err(); msg != "" {
		fmt.Fprintln(out, unavailableNotice(msg, hadSaved))
		fmt.Fprintln(out)
	}

	if featured := a.events.Featured(); len(featured) > 0 {
		fmt.Fprintln(out, "⭐ Featured")
		fmt.Fprintln(out, divider)
		for _, e := range featured {
			printEventLine(out, e)
		}
		fmt.Fprintln(out)
	}

	fmt.Fprintln(out, "🎓 All events")
	fmt.Fprintln(out, divider)
	if len(list) == 0 {
		fmt.Fprintln(out, "No events found.")
		return nil
	}
	for _, e := range list {
		printEventLine(out, e)
	}
	fmt.Fprintln(out, divider)
	fmt.Fprintf(out, "Total: %d events\n", len(list))
	return nil
}

// unavailableNotice says what is being shown after a failed fetch: the
// saved collection, or the built-in sample set when nothing was saved.
func unavailableNotice(msg string, hadSaved bool) string {
	if hadSaved {
		return fmt.Sprintf("⚠️  Events API unavailable (%s), showing saved events", msg)
	}
	return fmt.Sprintf("⚠️  Events API unavailable (%s), showing sample events", msg)
}

const divider = "─────────────────────────────────────────────────"
