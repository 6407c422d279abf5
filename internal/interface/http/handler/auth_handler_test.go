package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

type fakeFlow struct{ codes []string }

func (f *fakeFlow) AuthURL(state string) string {
	return "https://accounts.example.com/o/oauth2/auth?state=" + url.QueryEscape(state)
}

func (f *fakeFlow) Exchange(_ context.Context, code string) (*oauth2.Token, error) {
	if code == "bad" {
		return nil, errors.New("invalid_grant")
	}
	f.codes = append(f.codes, code)
	return &oauth2.Token{AccessToken: "secret", Expiry: time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)}, nil
}

func startState(t *testing.T, app *fiber.App) string {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/auth/google", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusTemporaryRedirect, resp.StatusCode)
	u, err := url.Parse(resp.Header.Get("Location"))
	require.NoError(t, err)
	st := u.Query().Get("state")
	require.Len(t, st, 32)
	return st
}

func TestAuthFlow(t *testing.T) {
	t.Parallel()

	flow := &fakeFlow{}
	app := NewApp(Handlers{Auth: NewAuthHandler(flow)})

	st := startState(t, app)
	resp := doJSON(t, app, http.MethodGet, "/auth/google/callback?state="+st+"&code=c1", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := string(readAll(t, resp))
	require.Contains(t, body, `"authorized":true`)
	require.NotContains(t, body, "secret")
	require.Equal(t, []string{"c1"}, flow.codes)

	// states are single use
	resp = doJSON(t, app, http.MethodGet, "/auth/google/callback?state="+st+"&code=c2", nil, "")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAuthCallbackErrors(t *testing.T) {
	t.Parallel()

	h := NewAuthHandler(&fakeFlow{})
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	h.now = func() time.Time { return now }
	app := NewApp(Handlers{Auth: h})

	resp := doJSON(t, app, http.MethodGet, "/auth/google/callback?state=unknown&code=c", nil, "")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	st := startState(t, app)
	resp = doJSON(t, app, http.MethodGet, "/auth/google/callback?state="+st+"&code=bad", nil, "")
	require.Equal(t, http.StatusBadGateway, resp.StatusCode)

	st = startState(t, app)
	resp = doJSON(t, app, http.MethodGet, "/auth/google/callback?state="+st, nil, "")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	st = startState(t, app)
	now = now.Add(stateTTL)
	resp = doJSON(t, app, http.MethodGet, "/auth/google/callback?state="+st+"&code=c", nil, "")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
