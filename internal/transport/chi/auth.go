package chi

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// CallerHeader carries the caller id when token validation is disabled.
const CallerHeader = "X-Caller-ID"

// exemptPaths are routes that bypass authentication (health, metrics).
var exemptPaths = map[string]struct{}{
	"/health":  {},
	"/metrics": {},
}

type callerKey struct{}

// ContextWithCaller stores the authenticated caller id.
func ContextWithCaller(ctx context.Context, callerID string) context.Context {
	return context.WithValue(ctx, callerKey{}, callerID)
}

// CallerFromContext returns the caller id, or "" when unauthenticated.
func CallerFromContext(ctx context.Context) string {
	id, _ := ctx.Value(callerKey{}).(string)
	return id
}

var errInvalidToken = errors.New("invalid token")

// CallerAuthMiddleware resolves the caller identity.
// With a secret, requests must carry an HS256 bearer JWT whose sub claim is the
// caller id. Without one, the id is read from X-Caller-ID (local development).
// Whether an anonymous caller may proceed is decided by the handlers.
func CallerAuthMiddleware(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if secret == "" {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				id := strings.TrimSpace(r.Header.Get(CallerHeader))
				next.ServeHTTP(w, r.WithContext(ContextWithCaller(r.Context(), id)))
			})
		}

		key := []byte(secret)
		parser := jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithExpirationRequired(),
		)

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := exemptPaths[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			auth := r.Header.Get("Authorization")
			if auth == "" {
				writeError(w, http.StatusUnauthorized, CodeUnauthenticated, "missing authorization header")
				return
			}

			const bearerPrefix = "Bearer "
			if !strings.HasPrefix(auth, bearerPrefix) {
				writeError(w, http.StatusUnauthorized,
					CodeUnauthenticated, "authorization header must use Bearer scheme")
				return
			}

			sub, err := subject(parser, auth[len(bearerPrefix):], key)
			if err != nil {
				writeError(w, http.StatusUnauthorized, CodeUnauthenticated, "invalid token")
				return
			}

			next.ServeHTTP(w, r.WithContext(ContextWithCaller(r.Context(), sub)))
		})
	}
}

func subject(p *jwt.Parser, raw string, key []byte) (string, error) {
	var claims jwt.RegisteredClaims
	tok, err := p.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) { return key, nil })
	if err != nil {
		return "", err //nolint:wrapcheck // only the presence of an error matters
	}
	if !tok.Valid || claims.Subject == "" {
		return "", errInvalidToken
	}
	return claims.Subject, nil
}
