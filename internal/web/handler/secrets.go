package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/whisperwall/whisperwall/internal/services/secrets"
	"github.com/whisperwall/whisperwall/internal/web/middleware"
	"github.com/whisperwall/whisperwall/internal/web/templates/layout"
	"github.com/whisperwall/whisperwall/internal/web/templates/pages"
)

// SecretsHandler handles the secrets wall and submissions
type SecretsHandler struct {
	secrets *secrets.Service
	logger  *slog.Logger
}

// NewSecretsHandler creates a new SecretsHandler
func NewSecretsHandler(secretsService *secrets.Service, logger *slog.Logger) *SecretsHandler {
	return &SecretsHandler{
		secrets: secretsService,
		logger:  logger,
	}
}

// Wall renders all shared secrets. The route is gated, so the user in
// context is never nil here.
func (h *SecretsHandler) Wall(w http.ResponseWriter, r *http.Request) {
	all, err := h.secrets.ListAll(r.Context())
	if err != nil {
		h.logger.Error("listing secrets", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	data := pages.SecretsData{
		PageData: layout.PageData{
			Title: "Secrets",
			User:  middleware.GetUser(r.Context()),
			Flash: middleware.GetFlash(r.Context()),
		},
		Secrets: all,
	}
	renderPage(w, r, pages.Secrets(data))
}

// SubmitPage renders the submission form along with the user's own secrets
func (h *SecretsHandler) SubmitPage(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())

	mine, err := h.secrets.GetMine(r.Context(), user.ID)
	if err != nil {
		h.logger.Error("fetching user secrets", "user_id", user.ID, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	data := pages.SubmitData{
		PageData: layout.PageData{
			Title: "Share a Secret",
			User:  user,
			Flash: middleware.GetFlash(r.Context()),
		},
		Mine: mine,
	}
	renderPage(w, r, pages.Submit(data))
}

// Submit handles the submission form post
func (h *SecretsHandler) Submit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	user := middleware.GetUser(r.Context())
	secret := strings.TrimSpace(r.FormValue("secret"))

	if secret == "" {
		middleware.SetFlash(w, "error", "A secret can't be empty")
		http.Redirect(w, r, "/submit", http.StatusSeeOther)
		return
	}

	if err := h.secrets.Submit(r.Context(), user.ID, secret); err != nil {
		h.logger.Error("submitting secret", "user_id", user.ID, "error", err)
		middleware.SetFlash(w, "error", "Could not save your secret, please try again")
		http.Redirect(w, r, "/submit", http.StatusSeeOther)
		return
	}

	middleware.SetFlash(w, "success", "Your secret is on the wall")
	http.Redirect(w, r, "/secrets", http.StatusSeeOther)
}
