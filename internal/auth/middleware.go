package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/sakif/codigoteca/internal/apperror"
	"github.com/sakif/codigoteca/internal/authz"
)

// contextKey is an unexported type used for context keys in this package,
// so no other package can read or shadow the actor stored here.
type contextKey string

const actorKey contextKey = "actor"

// TokenCookie is the HttpOnly cookie the GitHub callback stores the JWT in.
const TokenCookie = "token"

var errNoToken = errors.New("auth: no token presented")

// RequireAuth is a middleware that enforces authentication on protected routes.
//
// It reads the JWT from the Authorization header ("Bearer <jwt>") or, failing
// that, from the "token" cookie, validates it and stores the resulting
// authz.Actor in the request context. Missing or invalid tokens get a 401 in
// the same envelope the handlers use for every other error.
//
// Chi applies middlewares in a chain: req → M1 → M2 → Handler → M2 → M1 → resp
func RequireAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, err := extractActor(r, tokens)
			if err != nil {
				message := "valid authentication required"
				if errors.Is(err, errNoToken) {
					message = "authentication token missing"
				}
				writeAuthError(w, http.StatusUnauthorized, apperror.CodeUnauthorized, message)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
		})
	}
}

// RequireRole rejects actors whose role is not role with 403. It must be
// mounted after RequireAuth.
func RequireRole(role authz.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := ActorFromContext(r.Context())
			if !ok {
				writeAuthError(w, http.StatusUnauthorized, apperror.CodeUnauthorized, "valid authentication required")
				return
			}
			if actor.Role != role {
				writeAuthError(w, http.StatusForbidden, apperror.CodeForbidden, "insufficient role for this operation")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// WithActor returns a copy of ctx carrying actor.
func WithActor(ctx context.Context, actor authz.Actor) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}

// ActorFromContext retrieves the authenticated actor from the request context.
//
// Returns (Actor{}, false) if the request is anonymous.
func ActorFromContext(ctx context.Context) (authz.Actor, bool) {
	actor, ok := ctx.Value(actorKey).(authz.Actor)
	return actor, ok && actor.ID > 0
}

// extractActor reads the bearer token (header first, then cookie) and
// validates it.
func extractActor(r *http.Request, tokens *TokenService) (authz.Actor, error) {
	if header := r.Header.Get("Authorization"); header != "" {
		scheme, token, found := strings.Cut(header, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			return authz.Actor{}, errors.New("auth: malformed Authorization header")
		}
		return tokens.Validate(strings.TrimSpace(token))
	}

	cookie, err := r.Cookie(TokenCookie)
	if err != nil {
		return authz.Actor{}, errNoToken
	}
	return tokens.Validate(cookie.Value)
}

func writeAuthError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"code":    code,
		"message": message,
		"error":   message,
	})
}
