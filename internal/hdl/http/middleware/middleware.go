package middleware

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/flaco/hooked/internal/auth/jwt"
	"github.com/flaco/hooked/internal/config"
	"github.com/flaco/hooked/internal/ctrl"
	"github.com/flaco/hooked/internal/hdl"
	"github.com/flaco/hooked/internal/hdl/http/utils"
	metrics "github.com/flaco/hooked/internal/observability/metrics/prometheus"
	"github.com/google/uuid"
	"github.com/opentracing/opentracing-go"
	"go.uber.org/zap"
)

// Device captures the caller's IP and User-Agent for session bookkeeping.
func Device(next http.Handler) http.Handler {
	return http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), config.IpKey, clientIP(r))
			ctx = context.WithValue(ctx, config.UaKey, r.UserAgent())
			next.ServeHTTP(w, r.WithContext(ctx))
		},
	)
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if i := strings.IndexByte(fwd, ','); i > 0 {
			return strings.TrimSpace(fwd[:i])
		}
		return strings.TrimSpace(fwd)
	}

	if real := r.Header.Get("X-Real-IP"); real != "" {
		return real
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// Gate reads the bearer credential, verifies it and attaches the caller's
// identity to the request context. It never rejects: a missing, invalid or
// unresolvable token leaves the request unauthenticated and the decision to
// route-level policy (see Protected).
func Gate(au jwt.Port, c ctrl.AppCtrl) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(
			func(w http.ResponseWriter, r *http.Request) {
				header := r.Header.Get("Authorization")
				if !strings.HasPrefix(header, "Bearer ") {
					next.ServeHTTP(w, r)
					return
				}

				subject, ok := au.VerifySubject(r.Context(), strings.TrimPrefix(header, "Bearer "))
				if !ok {
					next.ServeHTTP(w, r)
					return
				}

				u, err := c.GetUserByEmail(r.Context(), subject)
				if err != nil {
					zap.L().Debug(
						"failed to resolve token subject",
						zap.String("subject", subject),
						zap.Error(err),
					)
					next.ServeHTTP(w, r)
					return
				}

				ctx := context.WithValue(r.Context(), config.UidKey, u.ID)
				next.ServeHTTP(w, r.WithContext(ctx))
			},
		)
	}
}

// Protected is the route-level policy: it requires that the Gate resolved a
// principal.
func Protected(next http.Handler) http.Handler {
	return http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			if _, ok := r.Context().Value(config.UidKey).(uuid.UUID); !ok {
				utils.ErrResponse(w, http.StatusUnauthorized, hdl.ErrFailedToGetUUID)
				return
			}

			next.ServeHTTP(w, r)
		},
	)
}

type LoggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func NewLoggingResponseWriter(w http.ResponseWriter) *LoggingResponseWriter {
	return &LoggingResponseWriter{w, http.StatusOK}
}

func (lrw *LoggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

func Prometheus(next http.Handler) http.Handler {
	return http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			s := time.Now()
			op := fmt.Sprintf("%s %s", r.Method, r.URL.Path)

			lrw := NewLoggingResponseWriter(w)
			next.ServeHTTP(lrw, r)
			metrics.ObserveRequest(time.Since(s), lrw.statusCode, op)
		},
	)
}

func Logger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(
			func(w http.ResponseWriter, r *http.Request) {
				start := time.Now()
				lrw := NewLoggingResponseWriter(w)
				logger.Debug(
					"-->",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.String("remote", r.RemoteAddr),
				)

				next.ServeHTTP(lrw, r)

				logger.Info(
					"<--",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Int("status", lrw.statusCode),
					zap.Duration("duration", time.Since(start)),
					zap.String("remote", r.RemoteAddr),
				)
			},
		)
	}
}

func OT(next http.Handler) http.Handler {
	return http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			span, ctx := opentracing.StartSpanFromContext(r.Context(), fmt.Sprintf("%s %s", r.Method, r.URL.Path))
			defer span.Finish()

			next.ServeHTTP(w, r.WithContext(ctx))
		},
	)
}
