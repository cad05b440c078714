package handler

import (
	"net/http"

	"github.com/whisperwall/whisperwall/internal/web/middleware"
	"github.com/whisperwall/whisperwall/internal/web/templates/layout"
	"github.com/whisperwall/whisperwall/internal/web/templates/pages"
)

// HomeHandler handles the landing page
type HomeHandler struct{}

// NewHomeHandler creates a new HomeHandler
func NewHomeHandler() *HomeHandler {
	return &HomeHandler{}
}

// Home renders the landing page
func (h *HomeHandler) Home(w http.ResponseWriter, r *http.Request) {
	data := pages.HomeData{
		PageData: layout.PageData{
			Title: "Home",
			User:  middleware.GetUser(r.Context()),
			Flash: middleware.GetFlash(r.Context()),
		},
	}

	renderPage(w, r, pages.Home(data))
}
