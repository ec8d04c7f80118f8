package middleware

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"strings"

	"github.com/nkiryanov/bankledger/internal/apperrors"
	"github.com/nkiryanov/bankledger/internal/handlers/render"
	"github.com/nkiryanov/bankledger/internal/handlers/userctx"
	"github.com/nkiryanov/bankledger/internal/models"
)

const bearerScheme = "Bearer "

type authenticator interface {
	Authenticate(ctx context.Context, access string) (models.Actor, error)
}

// AuthMiddleware resolves bearer token to actor and puts it into request context
func AuthMiddleware(a authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, bearerScheme) {
				render.ServiceError(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			actor, err := a.Authenticate(r.Context(), strings.TrimPrefix(header, bearerScheme))
			switch {
			case errors.Is(err, apperrors.ErrUserInactive):
				render.ServiceError(w, "User is not active", http.StatusForbidden)
				return
			case err != nil:
				render.ServiceError(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := userctx.New(r.Context(), actor)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole lets through actors with one of roles only
// Has to be used after AuthMiddleware
func RequireRole(roles ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := userctx.FromContext(r.Context())
			if !ok {
				render.ServiceError(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			if !slices.Contains(roles, actor.Role) {
				render.ServiceError(w, "Forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
