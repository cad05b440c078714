package handler

import (
	"encoding/json"
	"net/http"

	"github.com/whisperwall/whisperwall/internal/api/apierr"
	"github.com/whisperwall/whisperwall/internal/api/middleware"
	"github.com/whisperwall/whisperwall/internal/api/request"
	"github.com/whisperwall/whisperwall/internal/api/response"
	"github.com/whisperwall/whisperwall/internal/services/auth"
)

// AccountHandler handles account and session endpoints
type AccountHandler struct {
	gateway *auth.Gateway
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(gateway *auth.Gateway) *AccountHandler {
	return &AccountHandler{
		gateway: gateway,
	}
}

// Register handles POST /api/v1/accounts/register
func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req request.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.WriteError(w, apierr.NewInvalidRequestError("invalid request body"))
		return
	}

	if req.Username == "" {
		apierr.WriteError(w, apierr.NewInvalidRequestError("username is required"))
		return
	}
	if req.Password == "" {
		apierr.WriteError(w, apierr.NewInvalidRequestError("password is required"))
		return
	}

	session, err := h.gateway.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.AuthResponseFromSession(session))
}

// Login handles POST /api/v1/accounts/login
func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req request.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.WriteError(w, apierr.NewInvalidRequestError("invalid request body"))
		return
	}

	if req.Username == "" {
		apierr.WriteError(w, apierr.NewInvalidRequestError("username is required"))
		return
	}
	if req.Password == "" {
		apierr.WriteError(w, apierr.NewInvalidRequestError("password is required"))
		return
	}

	session, err := h.gateway.LoginLocal(r.Context(), req.Username, req.Password)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.AuthResponseFromSession(session))
}

// Logout handles POST /api/v1/accounts/logout
func (h *AccountHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token := middleware.GetToken(r.Context())

	if err := h.gateway.Logout(r.Context(), token); err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.NoContent(w)
}

// GetMe handles GET /api/v1/accounts/me
func (h *AccountHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	user := middleware.MustGetUser(r.Context())
	response.JSON(w, http.StatusOK, response.UserFromModel(user))
}
