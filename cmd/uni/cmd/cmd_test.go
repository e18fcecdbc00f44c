package cmd

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func execute(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})
	require.NoError(t, rootCmd.ExecuteContext(context.Background()), out.String())
	return out.String()
}

func executeErr(t *testing.T, args ...string) error {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})
	return rootCmd.ExecuteContext(context.Background())
}

func TestListAddShow(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/events" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"id":7,"title":"Orientation Day","date":"2025-09-01","category":"academic"}]`))
	}))
	defer srv.Close()

	dir := t.TempDir()
	base := []string{
		"--config", filepath.Join(dir, "config.yaml"),
		"--storage", "file",
		"--data-dir", dir,
		"--api-url", srv.URL,
	}

	out := execute(t, base...)
	assert.Contains(t, out, "Orientation Day")
	assert.Contains(t, out, "Academic")
	assert.Contains(t, out, "Total: 1 events")

	err := executeErr(t, append(base, "add", "--title", "Robotics Kickoff", "--date", "2025-09-02 18:00", "--description", "")...)
	assert.EqualError(t, err, "Please fill all fields")

	out = execute(t, append(base, "add", "--title", "Robotics Kickoff", "--date", "2025-09-02 18:00",
		"--description", "Meet the team", "--location", "Lab 3")...)
	assert.Contains(t, out, "✓ Created event")
	assert.Contains(t, out, "Robotics Kickoff")

	out = execute(t, append(base, "show", "7")...)
	assert.Contains(t, out, "Orientation Day")
	assert.Contains(t, out, "Monday, September 1, 2025")
	assert.Contains(t, out, "RSVPs:       0")

	out = execute(t, append(base, "rsvp", "7", "--email", "ada@uni.edu", "--status=false")...)
	assert.Contains(t, out, "RSVP successful for Orientation Day")
	assert.Contains(t, out, "1 going")

	err = executeErr(t, append(base, "rsvp", "7", "--email", "ada@uni.edu", "--status=false")...)
	assert.ErrorContains(t, err, "already RSVPed")

	out = execute(t, append(base, "rsvp", "7.0", "--email", "ADA@uni.edu", "--status")...)
	assert.Contains(t, out, "ADA@uni.edu is going to Orientation Day")

	out = execute(t, append(base, "show", "7")...)
	assert.Contains(t, out, "RSVPs:       1")

	err = executeErr(t, append(base, "rsvp", "99", "--email", "ada@uni.edu")...)
	assert.ErrorContains(t, err, "event 99 not found")
}

func TestListOffline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	dir := t.TempDir()
	base := []string{
		"--config", filepath.Join(dir, "config.yaml"),
		"--storage", "file",
		"--data-dir", dir,
		"--api-url", srv.URL,
	}

	out := execute(t, base...)
	assert.Contains(t, out, "showing sample events")
	assert.Contains(t, out, "Total: 5 events")

	execute(t, append(base, "add", "--title", "Poetry Slam", "--date", "2025-10-01",
		"--description", "Open mic")...)

	out = execute(t, base...)
	assert.Contains(t, out, "showing saved events")
	assert.Contains(t, out, "Poetry Slam")
	assert.Contains(t, out, "Total: 1 events")
}

func TestUnavailableNotice(t *testing.T) {
	assert.Equal(t, "⚠️  Events API unavailable (timeout), showing saved events", unavailableNotice("timeout", true))
	assert.Equal(t, "⚠️  Events API unavailable (timeout), showing sample events", unavailableNotice("timeout", false))
}

func TestProfileAddAndEdit(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "uni", "config.yaml")

	out := execute(t, "--config", cfg, "profile", "add", "staging",
		"--api-url", "http://localhost:8083", "--storage", "sqlite", "--days", "14")
	assert.Contains(t, out, "Profile 'staging' created")

	out = execute(t, "--config", cfg, "profile", "edit", "staging", "--enforce-auth")
	assert.Contains(t, out, "Profile 'staging' updated")

	data, err := os.ReadFile(cfg)
	require.NoError(t, err)
	var config map[string]interface{}
	require.NoError(t, yaml.Unmarshal(data, &config))

	staging := config["profiles"].(map[string]interface{})["staging"].(map[string]interface{})
	assert.Equal(t, "http://localhost:8083", staging["api_url"])
	assert.Equal(t, 14, staging["days"])
	assert.Equal(t, map[string]interface{}{"backend": "sqlite"}, staging["storage"])
	assert.Equal(t, map[string]interface{}{"enforce": true}, staging["auth"])
	assert.NotContains(t, config, "default_profile")

	out = execute(t, "--config", cfg, "profile", "show", "staging")
	assert.Contains(t, out, "api-url: http://localhost:8083")
	assert.Contains(t, out, "storage: sqlite")
}

func TestSetDefaultProfileInConfig(t *testing.T) {
	old := cfgFile
	cfgFile = filepath.Join(t.TempDir(), "config.yaml")
	t.Cleanup(func() { cfgFile = old })

	require.NoError(t, saveProfileToConfig("campus", map[string]interface{}{"days": 3}))
	require.NoError(t, setDefaultProfileInConfig("campus"))

	config, err := readConfigFile()
	require.NoError(t, err)
	assert.Equal(t, "campus", config["default_profile"])
	assert.Contains(t, config["profiles"], "campus")
}

func TestNestedSettings(t *testing.T) {
	m := map[string]interface{}{}
	setNested(m, "storage.backend", "redis")
	setNested(m, "storage.redis_url", "redis://localhost:6379/0")
	setNested(m, "days", 3)

	v, ok := lookupNested(m, "storage.backend")
	assert.True(t, ok)
	assert.Equal(t, "redis", v)

	v, ok = lookupNested(m, "days")
	assert.True(t, ok)
	assert.Equal(t, 3, v)

	_, ok = lookupNested(m, "auth.enforce")
	assert.False(t, ok)
}

func TestResolveCalendarNames(t *testing.T) {
	calendars := map[string]string{
		"primary":       "student@uni.edu",
		"clubs@group":   "Campus Clubs",
		"lectures@grp":  "Lectures",
		"lectures2@grp": "Guest Lectures",
	}

	assert.Equal(t, []string{"primary"}, resolveCalendarNames([]string{"primary"}, calendars))
	assert.Equal(t, []string{"clubs@group"}, resolveCalendarNames([]string{" clubs "}, calendars))
	assert.Equal(t, []string{"lectures2@grp"}, resolveCalendarNames([]string{"guest"}, calendars))
	// Partial matches pick the lowest ID so results are stable.
	assert.Equal(t, []string{"lectures2@grp"}, resolveCalendarNames([]string{"lectures", "guest"}, calendars))
	assert.Empty(t, resolveCalendarNames([]string{"", "nope"}, calendars))
}

func TestWrapText(t *testing.T) {
	assert.Equal(t, []string{"one two", "three"}, wrapText("one two three", 7))
	assert.Equal(t, []string{"a", "b"}, wrapText("a\n\n b ", 10))
	assert.Nil(t, wrapText("", 10))
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, "x", "token.json"), expandPath("~/x/token.json"))
	assert.Equal(t, "/etc/token.json", expandPath("/etc/token.json"))
	assert.Equal(t, "~user/x", expandPath("~user/x"))
}

func TestNeedsApp(t *testing.T) {
	find := func(args ...string) *cobra.Command {
		c, _, err := rootCmd.Find(args)
		require.NoError(t, err)
		return c
	}

	assert.True(t, needsApp(rootCmd))
	assert.True(t, needsApp(find("add")))
	assert.True(t, needsApp(find("import")))
	assert.False(t, needsApp(find("profile", "list")))
	assert.False(t, needsApp(find("connect")))
	assert.False(t, needsApp(find("calendars")))
}
