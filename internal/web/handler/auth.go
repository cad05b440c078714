package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/whisperwall/whisperwall/internal/model"
	"github.com/whisperwall/whisperwall/internal/services/auth"
	"github.com/whisperwall/whisperwall/internal/web/middleware"
	"github.com/whisperwall/whisperwall/internal/web/templates/layout"
	"github.com/whisperwall/whisperwall/internal/web/templates/pages"
)

// AuthHandler handles registration, login, and logout
type AuthHandler struct {
	gateway *auth.Gateway
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(gateway *auth.Gateway) *AuthHandler {
	return &AuthHandler{
		gateway: gateway,
	}
}

// LoginPage renders the login page
func (h *AuthHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	if middleware.GetUser(r.Context()) != nil {
		http.Redirect(w, r, "/secrets", http.StatusSeeOther)
		return
	}

	data := pages.LoginData{
		PageData: layout.PageData{
			Title: "Log In",
			Flash: middleware.GetFlash(r.Context()),
		},
	}
	renderPage(w, r, pages.Login(data))
}

// Login handles the login form submission
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderLoginError(w, r, "Invalid form data", "")
		return
	}

	username := strings.TrimSpace(r.FormValue("username"))
	password := r.FormValue("password")

	if username == "" || password == "" {
		h.renderLoginError(w, r, "Username and password are required", username)
		return
	}

	session, err := h.gateway.LoginLocal(r.Context(), username, password)
	if err != nil {
		// Invalid credentials and unknown usernames render identically
		h.renderLoginError(w, r, "Invalid username or password", username)
		return
	}

	setSessionCookie(w, session.Token)
	http.Redirect(w, r, nextOrDefault(r, "/secrets"), http.StatusSeeOther)
}

// RegisterPage renders the registration page
func (h *AuthHandler) RegisterPage(w http.ResponseWriter, r *http.Request) {
	if middleware.GetUser(r.Context()) != nil {
		http.Redirect(w, r, "/secrets", http.StatusSeeOther)
		return
	}

	data := pages.RegisterData{
		PageData: layout.PageData{
			Title: "Register",
			Flash: middleware.GetFlash(r.Context()),
		},
		FieldErrors: make(map[string]string),
	}
	renderPage(w, r, pages.Register(data))
}

// Register handles the registration form submission
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderRegisterError(w, r, "Invalid form data", "", nil)
		return
	}

	username := strings.TrimSpace(r.FormValue("username"))
	password := r.FormValue("password")

	fieldErrors := make(map[string]string)
	if username == "" {
		fieldErrors["username"] = "Username is required"
	} else if len(username) > 64 {
		fieldErrors["username"] = "Username must be at most 64 characters"
	}
	if password == "" {
		fieldErrors["password"] = "Password is required"
	} else if len(password) < 8 {
		fieldErrors["password"] = "Password must be at least 8 characters"
	}

	if len(fieldErrors) > 0 {
		h.renderRegisterError(w, r, "", username, fieldErrors)
		return
	}

	session, err := h.gateway.Register(r.Context(), username, password)
	if err != nil {
		if errors.Is(err, model.ErrUsernameExists) {
			h.renderRegisterError(w, r, "", username, map[string]string{
				"username": "Username already taken",
			})
			return
		}
		h.renderRegisterError(w, r, "Registration failed, please try again", username, nil)
		return
	}

	setSessionCookie(w, session.Token)
	middleware.SetFlash(w, "success", "Welcome to Whisperwall!")
	http.Redirect(w, r, "/secrets", http.StatusSeeOther)
}

// Logout invalidates the session server-side and clears the cookie
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(middleware.SessionCookieName); err == nil {
		_ = h.gateway.Logout(r.Context(), cookie.Value)
	}

	clearSessionCookie(w)
	middleware.SetFlash(w, "info", "You have been logged out")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *AuthHandler) renderLoginError(w http.ResponseWriter, r *http.Request, errorMsg, username string) {
	data := pages.LoginData{
		PageData: layout.PageData{Title: "Log In"},
		Username: username,
		Error:    errorMsg,
	}
	renderPage(w, r, pages.Login(data))
}

func (h *AuthHandler) renderRegisterError(w http.ResponseWriter, r *http.Request, errorMsg, username string, fieldErrors map[string]string) {
	if fieldErrors == nil {
		fieldErrors = make(map[string]string)
	}
	data := pages.RegisterData{
		PageData:    layout.PageData{Title: "Register"},
		Username:    username,
		Error:       errorMsg,
		FieldErrors: fieldErrors,
	}
	renderPage(w, r, pages.Register(data))
}

func setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   86400 * 7,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func nextOrDefault(r *http.Request, fallback string) string {
	next := r.FormValue("next")
	if next != "" && strings.HasPrefix(next, "/") && !strings.HasPrefix(next, "//") {
		return next
	}
	return fallback
}
