package httpserver

import (
	"net/http"
	"time"

	"github.com/dmitrijs2005/userauth/internal/common"
	"github.com/dmitrijs2005/userauth/internal/logging"
	"github.com/dmitrijs2005/userauth/internal/server/auth"
	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-ID"

// RequireAuthentication lets a request through only when it carries a valid
// token, taken from the Authorization header or else from the named cookie.
// On success the claims are available via auth.ClaimsFromContext; on failure
// the client gets 401 and next is not called.
func RequireAuthentication(a Authenticator, cookieName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := tokenFromRequest(r, cookieName)
			if !ok {
				writeError(w, common.ErrUnauthorized)
				return
			}

			claims, err := a.Authenticate(r.Context(), token)
			if err != nil {
				writeError(w, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithClaims(r.Context(), claims)))
		})
	}
}

// tokenFromRequest prefers the Authorization header; a present but
// non-bearer header does not fall back to the cookie.
func tokenFromRequest(r *http.Request, cookieName string) (string, bool) {
	if h := r.Header.Get("Authorization"); h != "" {
		return common.BearerToken(h)
	}
	c, err := r.Cookie(cookieName)
	if err != nil || c.Value == "" {
		return "", false
	}
	return c.Value, true
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rw *statusRecorder) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

// requestLogger tags every request with a request id (kept from the
// client's X-Request-ID when given) and logs it once it completes.
func requestLogger(l logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			id := r.Header.Get(requestIDHeader)
			if id == "" {
				id = uuid.NewString()
			}
			w.Header().Set(requestIDHeader, id)

			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			l.Info(r.Context(), "request",
				"request_id", id,
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status,
				"duration", time.Since(start),
			)
		})
	}
}
