package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/whisperwall/whisperwall/internal/api/apierr"
	"github.com/whisperwall/whisperwall/internal/api/middleware"
	"github.com/whisperwall/whisperwall/internal/api/request"
	"github.com/whisperwall/whisperwall/internal/api/response"
	"github.com/whisperwall/whisperwall/internal/services/secrets"
)

// SecretsHandler handles secret endpoints
type SecretsHandler struct {
	secrets *secrets.Service
}

// NewSecretsHandler creates a new secrets handler
func NewSecretsHandler(secretsService *secrets.Service) *SecretsHandler {
	return &SecretsHandler{
		secrets: secretsService,
	}
}

// List handles GET /api/v1/secrets
func (h *SecretsHandler) List(w http.ResponseWriter, r *http.Request) {
	all, err := h.secrets.ListAll(r.Context())
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.SecretsResponse{Secrets: all})
}

// Submit handles POST /api/v1/secrets
func (h *SecretsHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req request.SubmitSecretRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.WriteError(w, apierr.NewInvalidRequestError("invalid request body"))
		return
	}

	if strings.TrimSpace(req.Secret) == "" {
		apierr.WriteError(w, apierr.NewInvalidRequestError("secret is required"))
		return
	}

	user := middleware.MustGetUser(r.Context())
	if err := h.secrets.Submit(r.Context(), user.ID, req.Secret); err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.NoContent(w)
}

// Mine handles GET /api/v1/secrets/mine
func (h *SecretsHandler) Mine(w http.ResponseWriter, r *http.Request) {
	user := middleware.MustGetUser(r.Context())

	mine, err := h.secrets.GetMine(r.Context(), user.ID)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.SecretsResponse{Secrets: mine})
}
