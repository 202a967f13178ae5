package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/iho/cashledger/internal/domain"
	"github.com/iho/cashledger/internal/infrastructure/auth"
)

// ContextKey is the type for context keys
type ContextKey string

const (
	// UserContextKey is the context key for the authenticated user
	UserContextKey ContextKey = "user"
)

// AuthMiddleware requires a valid bearer token and puts its user in the
// request context.
func AuthMiddleware(jwtManager *auth.JWTManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeError(w, http.StatusUnauthorized, "missing authorization header", domain.ErrAuthenticationRequired.Error())
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				writeError(w, http.StatusUnauthorized, "invalid authorization header format", "")
				return
			}

			claims, err := jwtManager.Verify(strings.TrimSpace(parts[1]))
			if err != nil {
				writeError(w, http.StatusUnauthorized, "invalid or expired token", err.Error())
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), claims.User())))
		})
	}
}

// StaticIdentity puts a fixed user in every request context. It is used when
// token authentication is disabled; a nil user leaves requests anonymous.
func StaticIdentity(user *domain.User) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if user == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u := *user
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), &u)))
		})
	}
}

// RequireRole creates a middleware that checks for a specific role
func RequireRole(minRole domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := GetUserFromContext(r.Context())
			if !ok {
				writeError(w, http.StatusUnauthorized, "unauthorized", domain.ErrAuthenticationRequired.Error())
				return
			}

			if !hasRole(user.Role, minRole) {
				writeError(w, http.StatusForbidden, "insufficient permissions", domain.ErrInsufficientRole.Error())
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func hasRole(role, minRole domain.Role) bool {
	switch minRole {
	case domain.RoleAdmin:
		return role == domain.RoleAdmin
	case domain.RoleOperator:
		return role.CanRecord()
	default:
		return role.IsValid()
	}
}

// WithUser returns ctx carrying user.
func WithUser(ctx context.Context, user *domain.User) context.Context {
	return context.WithValue(ctx, UserContextKey, user)
}

// GetUserFromContext extracts the authenticated user from context
func GetUserFromContext(ctx context.Context) (*domain.User, bool) {
	user, ok := ctx.Value(UserContextKey).(*domain.User)
	return user, ok && user != nil
}

// ContextIdentity resolves the acting user from the request context. It
// implements usecase.IdentityProvider.
type ContextIdentity struct{}

// CurrentUser returns the user placed in ctx by the auth middleware.
func (ContextIdentity) CurrentUser(ctx context.Context) (*domain.User, error) {
	user, ok := GetUserFromContext(ctx)
	if !ok {
		return nil, domain.ErrAuthenticationRequired
	}
	return user, nil
}
