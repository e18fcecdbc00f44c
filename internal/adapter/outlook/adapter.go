// Package outlook imports upcoming Outlook / Microsoft 365 calendar
// entries as event drafts through Microsoft Graph.
package outlook

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/charmbracelet/log"
	msgraphsdk "github.com/microsoftgraph/msgraph-sdk-go"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/microsoft"

	"github.com/unievents/uni/internal/adapter"
	"github.com/unievents/uni/internal/core"
)

// RedirectURL is where 'uni connect' listens for the OAuth callback.
const RedirectURL = "http://localhost:8085/callback"

// tokenCredential lets the Graph SDK authenticate with our saved OAuth token.
type tokenCredential struct {
	src *Source
}

func (c *tokenCredential) GetToken(ctx context.Context, _ policy.TokenRequestOptions) (azcore.AccessToken, error) {
	tok, err := c.src.validToken(ctx)
	if err != nil {
		return azcore.AccessToken{}, err
	}
	return azcore.AccessToken{Token: tok.AccessToken, ExpiresOn: tok.Expiry}, nil
}

// Source reads the calendars of one Microsoft account.
type Source struct {
	id        string
	name      string
	clientID  string
	tenantID  string
	tokenFile string
	logger    *log.Logger

	tokenMu sync.Mutex
	token   *oauth2.Token

	client    *msgraphsdk.GraphServiceClient
	calendars map[string]string
}

// New returns a Source. An empty tenant means "common".
func New(id, name, clientID, tenantID, tokenFile string, logger *log.Logger) *Source {
	if tenantID == "" {
		tenantID = "common"
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Source{
		id:        id,
		name:      name,
		clientID:  clientID,
		tenantID:  tenantID,
		tokenFile: tokenFile,
		logger:    logger,
		calendars: make(map[string]string),
	}
}

func (o *Source) ID() string   { return o.id }
func (o *Source) Name() string { return o.name }

// OAuthConfig is the Microsoft identity platform config used by 'uni connect'.
func (o *Source) OAuthConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:    o.clientID,
		Endpoint:    microsoft.AzureADEndpoint(o.tenantID),
		RedirectURL: RedirectURL,
		Scopes: []string{
			"https://graph.microsoft.com/Calendars.Read",
			"https://graph.microsoft.com/User.Read",
			"offline_access",
		},
	}
}

// Login loads the saved token and lists the account's calendars.
func (o *Source) Login(ctx context.Context) error {
	tok, err := adapter.TokenFromFile(o.tokenFile)
	if err != nil {
		return fmt.Errorf("read token file (run 'uni connect' first): %w", err)
	}
	if tok.AccessToken == "" {
		return fmt.Errorf("token file %s has no access token, run 'uni connect' again", o.tokenFile)
	}
	o.token = tok

	client, err := msgraphsdk.NewGraphServiceClientWithCredentials(&tokenCredential{src: o}, []string{
		"https://graph.microsoft.com/.default",
	})
	if err != nil {
		return fmt.Errorf("create graph client: %w", err)
	}
	o.client = client

	result, err := client.Me().Calendars().Get(ctx, nil)
	if err != nil {
		return fmt.Errorf("load calendar list: %w", err)
	}
	for _, cal := range result.GetValue() {
		if id, name := cal.GetId(), cal.GetName(); id != nil && name != nil {
			o.calendars[*id] = *name
		}
	}
	return nil
}

// validToken returns the held token, refreshing and re-saving it once expired.
func (o *Source) validToken(ctx context.Context) (*oauth2.Token, error) {
	o.tokenMu.Lock()
	defer o.tokenMu.Unlock()

	if o.token == nil {
		return nil, errors.New("not logged in")
	}
	if o.token.Valid() {
		return o.token, nil
	}

	fresh, err := o.OAuthConfig().TokenSource(ctx, o.token).Token()
	if err != nil {
		return nil, fmt.Errorf("token expired and refresh failed (run 'uni connect'): %w", err)
	}
	o.token = fresh

	if err := adapter.SaveToken(o.tokenFile, fresh); err != nil {
		o.logger.Warn("could not save refreshed token", "err", err)
	}
	return fresh, nil
}

// Calendars returns ID -> name for every calendar the account can see.
func (o *Source) Calendars() map[string]string {
	return o.calendars
}

// Drafts reads entries in the window from the selected calendars.
// A calendar that fails is logged and skipped.
func (o *Source) Drafts(ctx context.Context, opts core.ImportOptions) ([]core.Draft, error) {
	if o.client == nil {
		return nil, fmt.Errorf("%s: not logged in", o.id)
	}

	var entries []adapter.Entry
	for _, calID := range adapter.SelectCalendars(opts.CalendarIDs, o.calendars) {
		got, err := o.entries(ctx, calID, opts)
		if err != nil {
			o.logger.Warn("skipping calendar", "calendar", o.calendars[calID], "err", err)
			continue
		}
		entries = append(entries, got...)
	}
	return adapter.Drafts(entries), nil
}
