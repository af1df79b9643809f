package httpapi

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/whispervault/whispervault/internal/common"
	"github.com/whispervault/whispervault/internal/logging"
	"github.com/whispervault/whispervault/internal/server/auth"
)

type contextKey string

const claimsContextKey contextKey = "claims"

// ClaimsFromContext returns the verified token claims placed by the auth
// middleware, or nil when the request was not authenticated.
func ClaimsFromContext(ctx context.Context) *auth.Claims {
	claims, ok := ctx.Value(claimsContextKey).(*auth.Claims)
	if !ok {
		return nil
	}
	return claims
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get(common.AuthorizationHeader)
	if !strings.HasPrefix(header, common.BearerPrefix) {
		return ""
	}
	return strings.TrimPrefix(header, common.BearerPrefix)
}

// AuthMiddleware verifies bearer JWTs and places the claims in the request
// context. The two token kinds gate different routes: the challenge token
// only unlocks second-factor verification, the session token everything else.
type AuthMiddleware struct {
	secret []byte
}

func NewAuthMiddleware(secret []byte) *AuthMiddleware {
	return &AuthMiddleware{secret: secret}
}

func (m *AuthMiddleware) parse(r *http.Request) *auth.Claims {
	token := bearerToken(r)
	if token == "" {
		return nil
	}
	claims, err := auth.ParseToken(token, m.secret)
	if err != nil {
		return nil
	}
	return claims
}

func withClaims(r *http.Request, claims *auth.Claims) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), claimsContextKey, claims))
}

// RequireChallenge admits only a valid challenge (twofa) token.
func (m *AuthMiddleware) RequireChallenge(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := m.parse(r)
		if claims == nil {
			writeError(w, http.StatusUnauthorized, "Invalid temp token")
			return
		}
		if !claims.TwoFA {
			writeError(w, http.StatusUnauthorized, "Not a 2FA token")
			return
		}
		next.ServeHTTP(w, withClaims(r, claims))
	})
}

// RequireSession admits only a full session token. Challenge tokens are
// rejected so a half-authenticated caller cannot reach session-only routes.
func (m *AuthMiddleware) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := m.parse(r)
		if claims == nil || claims.TwoFA {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		next.ServeHTTP(w, withClaims(r, claims))
	})
}

// RequireToken admits any valid token, challenge or session.
func (m *AuthMiddleware) RequireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := m.parse(r)
		if claims == nil {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		next.ServeHTTP(w, withClaims(r, claims))
	})
}

// RequestLogger logs method, path, and duration of each request.
func RequestLogger(log logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			log.Info(r.Context(), "request", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
		})
	}
}

// Recover turns handler panics into 500 responses.
func Recover(log logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.Error(r.Context(), "panic recovered", "error", err)
					writeError(w, http.StatusInternalServerError, "internal")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// Chain applies middleware in order.
func Chain(h http.Handler, middleware ...func(http.Handler) http.Handler) http.Handler {
	for i := len(middleware) - 1; i >= 0; i-- {
		h = middleware[i](h)
	}
	return h
}
