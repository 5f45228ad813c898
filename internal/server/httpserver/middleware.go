package httpserver

import (
	"net/http"
	"runtime/debug"
	"time"

	"go.uber.org/zap"
)

// TokenHeader carries the session token on protected requests.
const TokenHeader = "x-access-token"

// requireToken guards an operation behind a valid session token. Missing
// header rejects with 403; any verification failure rejects with 401 and one
// generic reason, regardless of which check failed. On success the user ID is
// attached to the request context. The gate has no other side effects.
func (s *Server) requireToken(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.Header.Get(TokenHeader)
		if raw == "" {
			writeJSON(w, http.StatusForbidden, map[string]any{
				"auth": false, "message": "no token provided",
			})
			return
		}
		userID, err := s.tokens.Verify(raw)
		if err != nil {
			s.log.Info("token rejected", zap.Error(err))
			writeJSON(w, http.StatusUnauthorized, map[string]any{
				"auth": false, "message": "failed to authenticate token",
			})
			return
		}
		next(w, r.WithContext(WithUserID(r.Context(), userID)))
	})
}

// statusRecorder captures the response status for the request log line.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// loggingMiddleware emits one structured line per request: metadata only,
// never payloads.
func loggingMiddleware(log *zap.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// The websocket upgrade hijacks the connection; wrapping the writer
		// would break the upgrader's Hijacker assertion.
		if r.URL.Path == "/ws" {
			next.ServeHTTP(w, r)
			return
		}
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Info("http",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("dur", time.Since(start)),
			zap.String("remote", r.RemoteAddr),
		)
	})
}

// recoverMiddleware turns handler panics into 500 responses.
func recoverMiddleware(log *zap.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Error("panic",
					zap.Any("reason", rec),
					zap.ByteString("stack", debug.Stack()),
					zap.String("path", r.URL.Path),
				)
				writeError(w, http.StatusInternalServerError, "internal")
			}
		}()
		next.ServeHTTP(w, r)
	})
}
