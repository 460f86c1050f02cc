package middleware

import (
	"context"
	"errors"
	"net/http"

	"code_practice/internal/app/policy"
	"code_practice/internal/common"
	"code_practice/internal/common/security"
	"code_practice/internal/domain/model"

	"github.com/go-chi/jwtauth/v5"
)

type contextKey string

const (
	UserCtxKey     contextKey = "user"
	UserIDCtxKey   contextKey = "userID"
	UserRoleCtxKey contextKey = "userRole"
)

// UserLoader resolves a token subject to the current user record.
type UserLoader interface {
	Authenticate(ctx context.Context, userID string) (*model.User, error)
}

// Authenticator requires a verified bearer token whose user still exists.
// The stored role, not the token claim, is what later checks see.
func Authenticator(users UserLoader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, claims, err := jwtauth.FromContext(r.Context())
			if err != nil {
				if errors.Is(err, jwtauth.ErrNoTokenFound) {
					common.RespondWithError(w, http.StatusUnauthorized, "Authorization token required")
				} else {
					common.RespondWithError(w, http.StatusUnauthorized, "Invalid token: "+err.Error())
				}
				return
			}
			if token == nil {
				common.RespondWithError(w, http.StatusUnauthorized, "Invalid token")
				return
			}

			userID, err := security.GetUserIDFromClaims(claims)
			if err != nil {
				common.RespondWithError(w, http.StatusUnauthorized, "Invalid token claims: "+err.Error())
				return
			}
			user, err := users.Authenticate(r.Context(), userID)
			if err != nil {
				common.RespondWithErr(w, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// Require rejects the request unless the caller may perform action on resource.
// Ownership is checked later, once the resource is loaded.
func Require(action policy.Action, resource policy.Resource) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := policy.AuthorizeRoute(CallerFromContext(r.Context()), action, resource); err != nil {
				common.RespondWithErr(w, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func AdminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		role, ok := r.Context().Value(UserRoleCtxKey).(string)
		if !ok || role != model.RoleAdmin {
			common.RespondWithError(w, http.StatusForbidden, "Admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func WithUser(ctx context.Context, user *model.User) context.Context {
	ctx = context.WithValue(ctx, UserCtxKey, user)
	ctx = context.WithValue(ctx, UserIDCtxKey, user.ID)
	return context.WithValue(ctx, UserRoleCtxKey, user.Role)
}

func GetUserFromContext(ctx context.Context) (*model.User, bool) {
	user, ok := ctx.Value(UserCtxKey).(*model.User)
	return user, ok
}

// Helper to get user ID from context
func GetUserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(UserIDCtxKey).(string)
	return userID, ok
}

// CallerFromContext returns nil when the request is unauthenticated.
func CallerFromContext(ctx context.Context) *policy.Caller {
	user, ok := GetUserFromContext(ctx)
	if !ok {
		return nil
	}
	return policy.CallerFromUser(user)
}
