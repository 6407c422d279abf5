package handler

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/oauth2"
)

const stateTTL = 5 * time.Minute

// OAuthFlow is the part of googleauth.GoogleAuth the web flow needs.
type OAuthFlow interface {
	AuthURL(state string) string
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)
}

// AuthHandler serves the browser OAuth consent flow. The token is persisted
// by the flow; the response only confirms it.
type AuthHandler struct {
	flow OAuthFlow

	mu     sync.Mutex
	states map[string]time.Time
	now    func() time.Time
}

func NewAuthHandler(flow OAuthFlow) *AuthHandler {
	return &AuthHandler{flow: flow, states: make(map[string]time.Time), now: time.Now}
}

func (h *AuthHandler) Register(app *fiber.App) {
	app.Get("/auth/google", h.Start)
	app.Get("/auth/google/callback", h.Callback)
}

// GET /auth/google
func (h *AuthHandler) Start(c *fiber.Ctx) error {
	st, err := h.newState()
	if err != nil {
		return err
	}
	return c.Redirect(h.flow.AuthURL(st), http.StatusTemporaryRedirect)
}

// GET /auth/google/callback?state=&code=
func (h *AuthHandler) Callback(c *fiber.Ctx) error {
	if !h.consumeState(c.Query("state")) {
		return fiber.NewError(fiber.StatusBadRequest, "invalid state")
	}
	code := c.Query("code")
	if code == "" {
		return fiber.NewError(fiber.StatusBadRequest, "code is required")
	}
	tok, err := h.flow.Exchange(c.UserContext(), code)
	if err != nil {
		log.Printf("[auth] exchange failed: %v", err)
		return fiber.NewError(fiber.StatusBadGateway, "token exchange failed")
	}
	return c.JSON(fiber.Map{"authorized": true, "expiry": tok.Expiry})
}

func (h *AuthHandler) newState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	st := hex.EncodeToString(b)

	h.mu.Lock()
	defer h.mu.Unlock()
	now := h.now()
	for k, t := range h.states {
		if now.Sub(t) >= stateTTL {
			delete(h.states, k)
		}
	}
	h.states[st] = now
	return st, nil
}

// consumeState reports whether state was issued within stateTTL. A state
// is usable once.
func (h *AuthHandler) consumeState(state string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	issued, ok := h.states[state]
	if !ok {
		return false
	}
	delete(h.states, state)
	return h.now().Sub(issued) < stateTTL
}
