package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage configuration profiles",
	Long: `Manage configuration profiles for different event APIs, storage
backends and calendar accounts.

Profiles let you switch quickly between, say, the campus feed and a
staging server, or between two Google accounts used for imports.`,
}

var profileListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all profiles",
	RunE:  runProfileList,
}

var profileShowCmd = &cobra.Command{
	Use:   "show [name]",
	Short: "Show profile settings",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runProfileShow,
}

var profileAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a new profile",
	Args:  cobra.ExactArgs(1),
	RunE:  runProfileAdd,
}

var profileSetDefaultCmd = &cobra.Command{
	Use:   "default <name>",
	Short: "Set the default profile",
	Args:  cobra.ExactArgs(1),
	RunE:  runProfileSetDefault,
}

var profileEditCmd = &cobra.Command{
	Use:   "edit <name>",
	Short: "Edit a profile's settings",
	Long: `Edit a profile's settings using flags.

Example:
  uni profile edit staging --api-url=http://localhost:8083
  uni profile edit work --provider=outlook --client-id=abc --days=14`,
	Args: cobra.ExactArgs(1),
	RunE: runProfileEdit,
}

// profileFlag maps a profile flag onto its config key.
type profileFlag struct {
	flag    string
	key     string
	kind    string
	usage   string
	section string
}

var profileFlags = []profileFlag{
	{"api-url", "api_url", "string", "Events API base URL", "🌐 Events API"},
	{"api-timeout", "api_timeout", "string", "Events API timeout (e.g. 10s)", "🌐 Events API"},
	{"storage", "storage.backend", "string", "Storage backend: file, sqlite, redis, memory", "💾 Storage"},
	{"data-dir", "storage.path", "string", "Data directory for file and sqlite storage", "💾 Storage"},
	{"redis-url", "storage.redis_url", "string", "Redis URL for the redis backend", "💾 Storage"},
	{"enforce-auth", "auth.enforce", "bool", "Require 'uni login' before creating events", "🔐 Access"},
	{"provider", "provider", "string", "Import provider: google or outlook", "📅 Import"},
	{"credentials-file", "credentials_file", "string", "Path to Google credentials file", "📅 Import"},
	{"token-file", "token_file", "string", "Path to token file", "📅 Import"},
	{"client-id", "client_id", "string", "Azure app client ID (outlook)", "📅 Import"},
	{"tenant-id", "tenant_id", "string", "Azure tenant ID (outlook)", "📅 Import"},
	{"days", "days", "int", "Number of days to import", "📅 Import"},
	{"calendars", "calendars", "string", "Calendar filter for import", "📅 Import"},
	{"log-level", "log_level", "string", "Log level: debug, info, warn, error", "🪵 Logging"},
}

func init() {
	rootCmd.AddCommand(profileCmd)
	profileCmd.AddCommand(profileListCmd)
	profileCmd.AddCommand(profileShowCmd)
	profileCmd.AddCommand(profileAddCmd)
	profileCmd.AddCommand(profileSetDefaultCmd)
	profileCmd.AddCommand(profileEditCmd)

	for _, c := range []*cobra.Command{profileAddCmd, profileEditCmd} {
		addProfileFlags(c.Flags())
	}
}

func addProfileFlags(fs *pflag.FlagSet) {
	for _, pf := range profileFlags {
		switch pf.kind {
		case "bool":
			fs.Bool(pf.flag, false, pf.usage)
		case "int":
			fs.Int(pf.flag, 0, pf.usage)
		default:
			fs.String(pf.flag, "", pf.usage)
		}
	}
}

// changedSettings applies every flag set on the command line to profile
// and reports whether anything changed.
func changedSettings(fs *pflag.FlagSet, profile map[string]interface{}) bool {
	changed := false
	for _, pf := range profileFlags {
		if !fs.Changed(pf.flag) {
			continue
		}
		var val interface{}
		switch pf.kind {
		case "bool":
			val, _ = fs.GetBool(pf.flag)
		case "int":
			val, _ = fs.GetInt(pf.flag)
		default:
			val, _ = fs.GetString(pf.flag)
		}
		setNested(profile, pf.key, val)
		changed = true
	}
	return changed
}

// setNested writes val under a dotted key, creating maps on the way.
func setNested(m map[string]interface{}, key string, val interface{}) {
	parts := strings.Split(key, ".")
	for _, p := range parts[:len(parts)-1] {
		next, ok := m[p].(map[string]interface{})
		if !ok {
			next = make(map[string]interface{})
			m[p] = next
		}
		m = next
	}
	m[parts[len(parts)-1]] = val
}

// lookupNested reads a dotted key from m.
func lookupNested(m map[string]interface{}, key string) (interface{}, bool) {
	parts := strings.Split(key, ".")
	for _, p := range parts[:len(parts)-1] {
		next, ok := m[p].(map[string]interface{})
		if !ok {
			return nil, false
		}
		m = next
	}
	v, ok := m[parts[len(parts)-1]]
	return v, ok
}

func runProfileList(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()
	profiles := viper.GetStringMap("profiles")
	defaultProfile := viper.GetString("default_profile")

	if len(profiles) == 0 {
		fmt.Fprintln(out, "No profiles configured.")
		fmt.Fprintln(out, "\nAdd one with: uni profile add <name> --api-url=<url>")
		return nil
	}

	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintln(out, "Available profiles:")
	fmt.Fprintln(out, divider)
	for _, name := range names {
		marker := "  "
		if name == defaultProfile {
			marker = "* "
		}
		fmt.Fprintf(out, "%s%s\n", marker, name)
	}
	fmt.Fprintln(out, divider)
	if defaultProfile != "" {
		fmt.Fprintf(out, "Default: %s\n", defaultProfile)
	}
	fmt.Fprintln(out, "\nUse 'uni profile show <name>' for details")
	return nil
}

func runProfileShow(cmd *cobra.Command, args []string) error {
	var profileName string
	if len(args) > 0 {
		profileName = args[0]
	} else {
		profileName = viper.GetString("default_profile")
		if profileName == "" {
			return fmt.Errorf("no profile specified and no default profile set")
		}
	}

	profileKey := "profiles." + profileName
	if !viper.IsSet(profileKey) {
		return fmt.Errorf("profile '%s' not found", profileName)
	}
	settings := viper.GetStringMap(profileKey)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Profile: %s\n", profileName)
	if profileName == viper.GetString("default_profile") {
		fmt.Fprintln(out, "(default)")
	}
	fmt.Fprintln(out, divider)

	section := ""
	for _, pf := range profileFlags {
		val, ok := lookupNested(settings, pf.key)
		if !ok {
			continue
		}
		if pf.section != section {
			section = pf.section
			fmt.Fprintf(out, "\n%s:\n", section)
		}
		fmt.Fprintf(out, "  %s: %v\n", pf.flag, val)
	}
	fmt.Fprintln(out)
	return nil
}

func runProfileAdd(cmd *cobra.Command, args []string) error {
	profileName := args[0]

	if viper.IsSet("profiles." + profileName) {
		return fmt.Errorf("profile '%s' already exists. Use 'uni profile edit %s' to modify it", profileName, profileName)
	}

	profile := make(map[string]interface{})
	changedSettings(cmd.Flags(), profile)

	if err := saveProfileToConfig(profileName, profile); err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "✓ Profile '%s' created\n", profileName)
	fmt.Fprintf(out, "\nUse it with: uni -p %s\n", profileName)
	fmt.Fprintf(out, "Set as default: uni profile default %s\n", profileName)
	return nil
}

func runProfileSetDefault(cmd *cobra.Command, args []string) error {
	profileName := args[0]

	if !viper.IsSet("profiles." + profileName) {
		return fmt.Errorf("profile '%s' not found", profileName)
	}

	if err := setDefaultProfileInConfig(profileName); err != nil {
		return fmt.Errorf("failed to set default profile: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Default profile set to '%s'\n", profileName)
	return nil
}

func runProfileEdit(cmd *cobra.Command, args []string) error {
	profileName := args[0]
	out := cmd.OutOrStdout()

	config, err := readConfigFile()
	if err != nil {
		return err
	}
	profiles, _ := config["profiles"].(map[string]interface{})
	profile, ok := profiles[profileName].(map[string]interface{})
	if !ok {
		return fmt.Errorf("profile '%s' not found. Use 'uni profile add %s' to create it", profileName, profileName)
	}

	if !changedSettings(cmd.Flags(), profile) {
		fmt.Fprintln(out, "No changes specified. Use flags to update settings:")
		fmt.Fprintln(out, "  uni profile edit", profileName, "--api-url=http://localhost:8083 --days=14")
		return nil
	}

	if err := saveProfileToConfig(profileName, profile); err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}

	fmt.Fprintf(out, "✓ Profile '%s' updated\n", profileName)
	return nil
}

// Config file manipulation functions

func getConfigPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "uni", "config.yaml")
}

func readConfigFile() (map[string]interface{}, error) {
	data, err := os.ReadFile(getConfigPath())
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string]interface{}), nil
		}
		return nil, err
	}

	var config map[string]interface{}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, err
	}
	if config == nil {
		config = make(map[string]interface{})
	}
	return config, nil
}

func writeConfigFile(config map[string]interface{}) error {
	configPath := getConfigPath()

	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return err
	}
	return os.WriteFile(configPath, data, 0644)
}

func saveProfileToConfig(name string, profile map[string]interface{}) error {
	config, err := readConfigFile()
	if err != nil {
		return err
	}

	profiles, ok := config["profiles"].(map[string]interface{})
	if !ok {
		profiles = make(map[string]interface{})
	}
	profiles[name] = profile
	config["profiles"] = profiles

	return writeConfigFile(config)
}

func setDefaultProfileInConfig(name string) error {
	config, err := readConfigFile()
	if err != nil {
		return err
	}
	config["default_profile"] = name
	return writeConfigFile(config)
}
