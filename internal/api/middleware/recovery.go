package middleware

import (
	"log/slog"
	"net/http"

	"github.com/whisperwall/whisperwall/internal/api/apierr"
	"github.com/whisperwall/whisperwall/internal/middleware"
)

// Recovery creates panic recovery middleware that returns JSON errors
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Recovery(logger, apiPanicHandler)
}

func apiPanicHandler(w http.ResponseWriter, _ *http.Request, _ any) {
	apierr.WriteError(w, apierr.NewInternalError())
}
