package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/BradenHooton/realty/internal/auth"
	"github.com/BradenHooton/realty/internal/models"
	pkghttp "github.com/BradenHooton/realty/pkg/http"
)

// QuotaChecker decides whether a user may perform a gated action
type QuotaChecker interface {
	CheckQuota(ctx context.Context, user *models.User, action models.QuotaAction) (models.Decision, error)
}

// QuotaDenialRecorder records denied checks in the audit trail
type QuotaDenialRecorder interface {
	LogQuotaDenied(ctx context.Context, user *models.User, d models.Decision, ipAddress *string)
}

// QuotaGateConfig wires QuotaGate
type QuotaGateConfig struct {
	Checker  QuotaChecker
	Audit    QuotaDenialRecorder
	IPConfig *pkghttp.IPConfig
	Logger   *slog.Logger
}

// QuotaGate checks action against the caller's plan before the handler runs.
// The caller is the user AuthMiddleware loaded for this request. A denial is
// a 403 naming the limit; a store or config failure is a generic 500.
func QuotaGate(config QuotaGateConfig, action models.QuotaAction) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := auth.GetUserFromContext(r)
			if user == nil {
				pkghttp.WriteUnauthorized(w, "unauthorized")
				return
			}

			decision, err := config.Checker.CheckQuota(r.Context(), user, action)
			if err != nil {
				config.Logger.ErrorContext(r.Context(), "quota check failed",
					slog.String("user_id", user.ID),
					slog.String("action", string(action)),
					slog.Any("error", err),
				)
				pkghttp.WriteInternalError(w)
				return
			}

			if !decision.Allowed {
				if config.Audit != nil {
					config.Audit.LogQuotaDenied(r.Context(), user, decision, pkghttp.ClientIPPtr(r, config.IPConfig))
				}
				pkghttp.WriteErrorWithLimit(w, http.StatusForbidden, decision.Code(), decision.Message(), decision.Limit)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
