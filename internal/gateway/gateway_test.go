package gateway

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/unievents/uni/internal/core"
)

func TestClient_ListEvents(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/events", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"id":1,"title":"Fetched Event","date":"2025-10-15T00:00:00Z"}]`))
	}))
	defer srv.Close()

	c := New(srv.URL+"/api/", time.Second)
	events, err := c.ListEvents(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "Fetched Event", events[0].Title)
	assert.True(t, events[0].ID.Equal("1"))
}

func TestClient_GetEvent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/events/42", r.URL.Path)
		w.Write([]byte(`{"id":"42","title":"Chess Championship"}`))
	}))
	defer srv.Close()

	c := New(srv.URL+"/api", time.Second)
	event, err := c.GetEvent(context.Background(), "42")
	require.NoError(t, err)
	assert.Equal(t, "Chess Championship", event.Title)
}

func TestClient_NonOKStatusIsAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Event not found", http.StatusNotFound)
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second)
	_, err := c.GetEvent(context.Background(), "9")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrStatus))
	assert.Contains(t, err.Error(), "404")

	_, err = c.ListEvents(context.Background())
	assert.True(t, errors.Is(err, ErrStatus))
}

func TestClient_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	_, err := New(srv.URL, time.Second).ListEvents(context.Background())
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrStatus))
}

func TestClient_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := New(url, time.Second).ListEvents(context.Background())
	assert.Error(t, err)
}

func TestClient_BearerToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer mock-token", r.Header.Get("Authorization"))
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "mock-token"})
	events, err := New(srv.URL, time.Second, WithTokenSource(ts)).ListEvents(context.Background())
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestNew_Defaults(t *testing.T) {
	c := New("", 0)
	assert.Equal(t, DefaultBaseURL, c.BaseURL())
	assert.Equal(t, 10*time.Second, c.http.Timeout)

	var _ core.Gateway = c
}
