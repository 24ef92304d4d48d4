package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/BradenHooton/realty/internal/models"
	pkghttp "github.com/BradenHooton/realty/pkg/http"
)

// contextKey is a custom type for context keys
type contextKey string

const (
	// ClaimsContextKey is the key for the validated token claims
	ClaimsContextKey contextKey = "claims"
	// UserContextKey is the key for the caller loaded for this request
	UserContextKey contextKey = "user"
)

// UserRepository is the user lookup the middleware needs
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
}

// bearerToken returns the token from an "Authorization: Bearer" header.
// ok is false when the header is absent; err is set when it is malformed.
func bearerToken(r *http.Request) (token string, ok bool, err error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", false, nil
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", true, errors.New("invalid authorization header format")
	}
	return strings.TrimSpace(parts[1]), true, nil
}

// authenticate validates the bearer token and loads the caller fresh from the
// store, so role and plan changes apply to the very next request.
func authenticate(tm *TokenManager, users UserRepository, logger *slog.Logger, w http.ResponseWriter, r *http.Request) (*http.Request, bool) {
	tokenString, present, err := bearerToken(r)
	if !present {
		pkghttp.WriteUnauthorized(w, "missing authorization header")
		return nil, false
	}
	if err != nil {
		pkghttp.WriteUnauthorized(w, err.Error())
		return nil, false
	}

	claims, err := tm.ValidateToken(tokenString)
	if err != nil {
		pkghttp.WriteUnauthorized(w, "invalid or expired token")
		return nil, false
	}

	user, err := users.GetByID(r.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			pkghttp.WriteUnauthorized(w, "user not found")
			return nil, false
		}
		logger.ErrorContext(r.Context(), "failed to load authenticated user",
			slog.String("user_id", claims.UserID),
			slog.Any("error", err),
		)
		pkghttp.WriteInternalError(w)
		return nil, false
	}

	ctx := context.WithValue(r.Context(), ClaimsContextKey, claims)
	ctx = context.WithValue(ctx, UserContextKey, user)
	return r.WithContext(ctx), true
}

// AuthMiddleware requires a valid bearer token and injects the caller into context
func AuthMiddleware(tm *TokenManager, users UserRepository, logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r, ok := authenticate(tm, users, logger, w, r)
			if !ok {
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// OptionalAuth injects the caller when a bearer token is present and lets
// anonymous requests through. A present but invalid token is still rejected.
func OptionalAuth(tm *TokenManager, users UserRepository, logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") == "" {
				next.ServeHTTP(w, r)
				return
			}
			r, ok := authenticate(tm, users, logger, w, r)
			if !ok {
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireRole enforces role-based access control. Must run after AuthMiddleware.
func RequireRole(roles ...string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := GetUserFromContext(r)
			if user == nil {
				pkghttp.WriteUnauthorized(w, "unauthorized")
				return
			}

			for _, role := range roles {
				if user.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}

			pkghttp.WriteForbidden(w, "forbidden: insufficient permissions")
		})
	}
}

// GetUserFromContext returns the caller loaded by AuthMiddleware, or nil
func GetUserFromContext(r *http.Request) *models.User {
	user, ok := r.Context().Value(UserContextKey).(*models.User)
	if !ok {
		return nil
	}
	return user
}

// GetClaimsFromContext extracts token claims from request context
func GetClaimsFromContext(r *http.Request) *models.TokenClaims {
	claims, ok := r.Context().Value(ClaimsContextKey).(*models.TokenClaims)
	if !ok {
		return nil
	}
	return claims
}

// WithUser returns a copy of ctx carrying user. Used by tests and internal callers.
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, UserContextKey, user)
}
