package handler

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"golang.org/x/oauth2"

	"github.com/whisperwall/whisperwall/internal/dependencies/random"
	"github.com/whisperwall/whisperwall/internal/services/auth"
	"github.com/whisperwall/whisperwall/internal/services/identity"
	"github.com/whisperwall/whisperwall/internal/web/middleware"
)

const stateCookieName = "oauth_state"

// OAuthProvider pairs an oauth2 client config with the provider's
// userinfo endpoint
type OAuthProvider struct {
	Config      *oauth2.Config
	UserInfoURL string
}

// OAuthHandler runs the authorization-code handshake against external
// identity providers and hands the vouched identity to the gateway
type OAuthHandler struct {
	gateway   *auth.Gateway
	providers map[string]OAuthProvider
	random    random.Random
	logger    *slog.Logger
}

// NewOAuthHandler creates a new OAuthHandler
func NewOAuthHandler(gateway *auth.Gateway, providers map[string]OAuthProvider, rnd random.Random, logger *slog.Logger) *OAuthHandler {
	return &OAuthHandler{
		gateway:   gateway,
		providers: providers,
		random:    rnd,
		logger:    logger,
	}
}

// Begin redirects the user to the provider's consent page
func (h *OAuthHandler) Begin(w http.ResponseWriter, r *http.Request) {
	provider, ok := h.providers[mux.Vars(r)["provider"]]
	if !ok {
		http.NotFound(w, r)
		return
	}

	state := h.random.ID("state_")
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     "/",
		MaxAge:   600,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, provider.Config.AuthCodeURL(state), http.StatusSeeOther)
}

// Callback completes the handshake: it verifies state, exchanges the code,
// fetches the subject identity, and starts a session
func (h *OAuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	providerName := mux.Vars(r)["provider"]
	provider, ok := h.providers[providerName]
	if !ok {
		http.NotFound(w, r)
		return
	}

	stateCookie, err := r.Cookie(stateCookieName)
	if err != nil || stateCookie.Value == "" || stateCookie.Value != r.URL.Query().Get("state") {
		h.failLogin(w, r, providerName, "state mismatch", err)
		return
	}
	clearStateCookie(w)

	code := r.URL.Query().Get("code")
	if code == "" {
		h.failLogin(w, r, providerName, "missing code", nil)
		return
	}

	token, err := provider.Config.Exchange(r.Context(), code)
	if err != nil {
		h.failLogin(w, r, providerName, "code exchange failed", err)
		return
	}

	subject, claims, err := fetchUserInfo(r, provider, token)
	if err != nil {
		h.failLogin(w, r, providerName, "fetching user info", err)
		return
	}

	session, err := h.gateway.LoginFederated(r.Context(), providerName, subject, claims)
	if err != nil {
		h.failLogin(w, r, providerName, "federated login", err)
		return
	}

	setSessionCookie(w, session.Token)
	http.Redirect(w, r, "/secrets", http.StatusSeeOther)
}

func (h *OAuthHandler) failLogin(w http.ResponseWriter, r *http.Request, provider, reason string, err error) {
	h.logger.Warn("oauth login failed", "provider", provider, "reason", reason, "error", err)
	middleware.SetFlash(w, "error", "Sign-in failed, please try again")
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func fetchUserInfo(r *http.Request, provider OAuthProvider, token *oauth2.Token) (string, identity.Claims, error) {
	client := provider.Config.Client(r.Context(), token)
	resp, err := client.Get(provider.UserInfoURL)
	if err != nil {
		return "", identity.Claims{}, fmt.Errorf("requesting user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", identity.Claims{}, fmt.Errorf("user info returned %d: %s", resp.StatusCode, body)
	}

	var info struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return "", identity.Claims{}, fmt.Errorf("decoding user info: %w", err)
	}
	if info.ID == "" {
		return "", identity.Claims{}, fmt.Errorf("user info has no subject id")
	}

	return info.ID, identity.Claims{DisplayName: info.Name, Email: info.Email}, nil
}

func clearStateCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
