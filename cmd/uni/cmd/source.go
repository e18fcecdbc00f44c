package cmd

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/viper"

	"github.com/unievents/uni/internal/adapter/google"
	"github.com/unievents/uni/internal/adapter/outlook"
	"github.com/unievents/uni/internal/core"
)

// openSource builds the configured calendar source and logs it in.
func openSource(ctx context.Context) (core.Source, error) {
	var src core.Source
	switch provider := viper.GetString("provider"); provider {
	case "google":
		src = google.New(
			"google",
			"Google Calendar",
			expandPath(viper.GetString("credentials_file")),
			expandPath(viper.GetString("token_file")),
			logger,
		)
	case "outlook":
		clientID := viper.GetString("client_id")
		if clientID == "" {
			return nil, errors.New("client_id not configured for the outlook provider")
		}
		src = outlook.New(
			"outlook",
			"Outlook Calendar",
			clientID,
			viper.GetString("tenant_id"),
			expandPath(viper.GetString("token_file")),
			logger,
		)
	default:
		return nil, fmt.Errorf("unknown provider: %s (supported: google, outlook)", provider)
	}

	if err := src.Login(ctx); err != nil {
		return nil, fmt.Errorf("%s login failed: %w\n\nRun 'uni connect' to authorize", src.Name(), err)
	}
	return src, nil
}

// resolveCalendarNames maps names (exact IDs or case-insensitive name
// fragments) to calendar IDs. Names that match nothing are dropped.
func resolveCalendarNames(names []string, calendars map[string]string) []string {
	ids := make([]string, 0, len(calendars))
	for id := range calendars {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var resolved []string
	seen := make(map[string]bool)
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		match := ""
		if _, ok := calendars[name]; ok {
			match = name
		} else {
			lower := strings.ToLower(name)
			for _, id := range ids {
				if strings.Contains(strings.ToLower(calendars[id]), lower) {
					match = id
					break
				}
			}
		}
		if match != "" && !seen[match] {
			seen[match] = true
			resolved = append(resolved, match)
		}
	}
	return resolved
}
