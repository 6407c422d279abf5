package googleauth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// DefaultScopes covers reading mail and publishing pages.
var DefaultScopes = []string{gmail.GmailReadonlyScope, drive.DriveFileScope}

const callbackPath = "/auth/google/callback"

// GoogleAuth wraps oauth2 configuration and the token file location.
type GoogleAuth struct {
	config    *oauth2.Config
	tokenPath string
}

// NewGoogleAuth creates GoogleAuth by reading the OAuth client credentials file.
func NewGoogleAuth(credentialsPath, tokenPath string, scopes ...string) (*GoogleAuth, error) {
	if len(scopes) == 0 {
		scopes = DefaultScopes
	}
	b, err := os.ReadFile(credentialsPath)
	if err != nil {
		return nil, errors.Wrap(err, "unable to read client secret file")
	}
	config, err := google.ConfigFromJSON(b, scopes...)
	if err != nil {
		return nil, errors.Wrap(err, "unable to parse client secret file to config")
	}
	log.Printf("[auth] using credentials: %s", credentialsPath)
	if config.RedirectURL == "" {
		config.RedirectURL = "http://localhost:8080" + callbackPath
	}
	return &GoogleAuth{config: config, tokenPath: tokenPath}, nil
}

// AuthURL generates Google OAuth consent URL.
func (ga *GoogleAuth) AuthURL(state string) string {
	return ga.config.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

// SetRedirectURL overrides the redirect URL (useful for loopback CLI flow).
func (ga *GoogleAuth) SetRedirectURL(redirect string) {
	ga.config.RedirectURL = redirect
}

// Exchange exchanges code to token and persists it.
func (ga *GoogleAuth) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	tok, err := ga.config.Exchange(ctx, code)
	if err != nil {
		return nil, errors.Wrap(err, "unable to retrieve token from web")
	}
	if err := SaveToken(ga.tokenPath, tok); err != nil {
		return nil, err
	}
	return tok, nil
}

// ObtainTokenInteractive starts a temporary loopback HTTP server on addr,
// logs the consent URL, waits for the redirect and saves the token.
func (ga *GoogleAuth) ObtainTokenInteractive(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.Wrapf(err, "listen %s", addr)
	}
	defer ln.Close()

	host := os.Getenv("GOOGLE_LOOPBACK_HOST")
	if host == "" {
		host = "localhost"
	}
	_, port, _ := net.SplitHostPort(ln.Addr().String())
	ga.SetRedirectURL(fmt.Sprintf("http://%s:%s%s", host, port, callbackPath))

	state, err := newState()
	if err != nil {
		return err
	}
	log.Printf("[auth] Open this URL to authorize:\n%s", ga.AuthURL(state))

	codeCh := make(chan string, 1)
	mux := http.NewServeMux()
	mux.HandleFunc(callbackPath, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("state") != state {
			http.Error(w, "state mismatch", http.StatusBadRequest)
			return
		}
		code := r.URL.Query().Get("code")
		if code == "" {
			http.Error(w, "code missing", http.StatusBadRequest)
			return
		}
		fmt.Fprint(w, "Authorization received. You can close this tab.")
		select {
		case codeCh <- code:
		default:
		}
	})
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() { _ = srv.Serve(ln) }()
	defer srv.Close()

	var code string
	select {
	case code = <-codeCh:
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(5 * time.Minute):
		return errors.New("authorization timeout")
	}
	_, err = ga.Exchange(ctx, code)
	return err
}

func newState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", errors.Wrap(err, "generate state")
	}
	return "st-" + hex.EncodeToString(b), nil
}

// SaveToken writes token to path with owner-only permissions.
func SaveToken(path string, token *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return errors.Wrap(err, "create token dir")
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return errors.Wrap(err, "unable to cache oauth token")
	}
	defer f.Close()
	return errors.Wrap(json.NewEncoder(f).Encode(token), "encode token")
}

// TokenFromFile retrieves token from local file.
func TokenFromFile(path string) (*oauth2.Token, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var tok oauth2.Token
	if err := json.NewDecoder(f).Decode(&tok); err != nil {
		return nil, errors.Wrap(err, "decode token")
	}
	return &tok, nil
}

// HTTPClient returns an authorized client whose requests are logged.
func (ga *GoogleAuth) HTTPClient(ctx context.Context) (*http.Client, error) {
	tok, err := TokenFromFile(ga.tokenPath)
	if err != nil {
		return nil, err
	}
	base := &http.Client{Transport: &loggingTransport{base: http.DefaultTransport}}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, base)
	return ga.config.Client(ctx, tok), nil
}

// BuildGmailService loads the token and builds a Gmail API service.
func (ga *GoogleAuth) BuildGmailService(ctx context.Context) (*gmail.Service, error) {
	client, err := ga.HTTPClient(ctx)
	if err != nil {
		return nil, err
	}
	return gmail.NewService(ctx, option.WithHTTPClient(client))
}

// BuildDriveService loads the token and builds a Drive API service.
func (ga *GoogleAuth) BuildDriveService(ctx context.Context) (*drive.Service, error) {
	client, err := ga.HTTPClient(ctx)
	if err != nil {
		return nil, err
	}
	return drive.NewService(ctx, option.WithHTTPClient(client))
}
