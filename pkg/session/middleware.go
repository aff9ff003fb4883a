package session

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/jwtauth/v5"
	"github.com/google/uuid"
)

// AuthUser is the identity carried by a verified session cookie. The upstream
// signs tokens with the email as subject and a user_id claim.
type AuthUser struct {
	Email  string
	UserID uuid.UUID
}

func (u AuthUser) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("user", u.UserID.String()),
		slog.String("email", u.Email),
	)
}

// contextKey is a value for use with context.WithValue. It's used as
// a pointer so it fits in an interface{} without allocation. This technique
// for defining context keys was copied from Go 1.7's new use of context in net/http.
type contextKey struct {
	name string
}

func (k *contextKey) String() string {
	return "session context value " + k.name
}

var (
	AuthUserKey = &contextKey{"AuthUser"}
)

// Verifier verifies the session JWT from the Authorization header or the
// session cookie and stores the parse result in the request context.
func Verifier(ja *jwtauth.JWTAuth, cookieName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return jwtauth.Verify(ja, jwtauth.TokenFromHeader, func(r *http.Request) string {
			return TokenFromCookie(r, cookieName)
		})(next)
	}
}

// RequireSession rejects requests whose session token is missing or invalid
// and puts the AuthUser in the request context for downstream handlers.
func RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, claims, err := jwtauth.FromContext(r.Context())
		if err != nil {
			http.Error(w, "Not authenticated", http.StatusUnauthorized)
			return
		}

		authUser := AuthUser{}
		if sub, ok := claims["sub"].(string); ok {
			authUser.Email = sub
		}
		if rawID, ok := claims["user_id"].(string); ok {
			id, err := uuid.Parse(rawID)
			if err != nil {
				slog.Error("failed to parse user id claim", "err", err)
				http.Error(w, "Invalid session", http.StatusUnauthorized)
				return
			}
			authUser.UserID = id
		}
		if authUser.Email == "" {
			http.Error(w, "Invalid session", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), AuthUserKey, &authUser)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// AuthUserFromContext returns the AuthUser placed by RequireSession
func AuthUserFromContext(ctx context.Context) (*AuthUser, bool) {
	user, ok := ctx.Value(AuthUserKey).(*AuthUser)
	return user, ok
}
