package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/BradenHooton/realty/internal/models"
	pkghttp "github.com/BradenHooton/realty/pkg/http"
)

// writeServiceError maps a service error onto the JSON error envelope.
// Anything that is not a known domain error is logged and surfaced as a
// generic 500, so store details never reach the client.
func writeServiceError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	var denied *models.QuotaDeniedError
	switch {
	case errors.As(err, &denied):
		d := denied.Decision
		pkghttp.WriteErrorWithLimit(w, http.StatusForbidden, d.Code(), d.Message(), d.Limit)
	case errors.Is(err, models.ErrNotFound):
		pkghttp.WriteNotFound(w, "resource not found")
	case errors.Is(err, models.ErrUnauthorized):
		pkghttp.WriteUnauthorized(w, "authentication required")
	case errors.Is(err, models.ErrNoAgency):
		pkghttp.WriteError(w, http.StatusForbidden, "no_agency", err.Error())
	case errors.Is(err, models.ErrForbidden):
		pkghttp.WriteForbidden(w, "you do not have access to this resource")
	case errors.Is(err, models.ErrConflict):
		pkghttp.WriteConflict(w, err.Error())
	case errors.Is(err, models.ErrUnknownTier):
		pkghttp.WriteError(w, http.StatusBadRequest, "unknown_tier", err.Error())
	case errors.Is(err, models.ErrInvalidStatus):
		pkghttp.WriteError(w, http.StatusBadRequest, "invalid_status", err.Error())
	case errors.Is(err, models.ErrBadRequest), errors.Is(err, models.ErrAlreadyExpired):
		pkghttp.WriteBadRequest(w, err.Error())
	default:
		logger.ErrorContext(r.Context(), "request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Any("error", err),
		)
		pkghttp.WriteInternalError(w)
	}
}
