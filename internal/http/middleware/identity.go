package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	chimw "github.com/go-chi/chi/v5/middleware"

	"courier-dispatch/internal/auth"
	"courier-dispatch/internal/logx"
)

// TokenParser verifies a bearer token.
type TokenParser interface {
	Parse(raw string) (auth.Identity, error)
}

// Authenticate puts the bearer token identity on the request context.
// Requests without an Authorization header pass through anonymously; a
// malformed or invalid token is rejected with 401.
func Authenticate(tokens TokenParser, logger logx.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = logx.Nop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}
			scheme, raw, ok := strings.Cut(header, " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(raw) == "" {
				deny(w, r, logger, http.StatusUnauthorized, "invalid authorization header")
				return
			}
			id, err := tokens.Parse(strings.TrimSpace(raw))
			if err != nil {
				deny(w, r, logger, http.StatusUnauthorized, "invalid token")
				return
			}
			next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), id)))
		})
	}
}

// RequireRole lets through only callers authenticated with role.
func RequireRole(role auth.Role, logger logx.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = logx.Nop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := auth.FromContext(r.Context())
			switch {
			case !ok:
				deny(w, r, logger, http.StatusUnauthorized, "unauthorized")
			case id.Role != role:
				deny(w, r, logger, http.StatusForbidden, "forbidden")
			default:
				next.ServeHTTP(w, r)
			}
		})
	}
}

// RequireIdentity lets through any authenticated caller.
func RequireIdentity(logger logx.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = logx.Nop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := auth.FromContext(r.Context()); !ok {
				deny(w, r, logger, http.StatusUnauthorized, "unauthorized")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func deny(w http.ResponseWriter, r *http.Request, logger logx.Logger, status int, msg string) {
	logger.Warn("request denied",
		logx.String("request_id", chimw.GetReqID(r.Context())),
		logx.String("path", r.URL.Path),
		logx.Int("status", status),
		logx.String("reason", msg),
	)
	w.Header().Set("Content-Type", "application/json")
	if status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", `Bearer realm="dispatch"`)
	}
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
