package logger

import (
	"bytes"
	"io"
	"net/http"
	"time"

	chimd "github.com/go-chi/chi/v5/middleware"
	"github.com/joeydtaylor/steeze-phases/pkg/middleware/auth"
	"go.uber.org/zap"
)

func (m *Middleware) Middleware(ca *auth.Middleware) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimd.NewWrapResponseWriter(w, r.ProtoMajor)

			// Read and RESTORE request body so downstream can consume it
			var body []byte
			if r.Body != nil {
				if b, err := io.ReadAll(r.Body); err == nil {
					body = b
				}
				r.Body.Close()
				r.Body = io.NopCloser(bytes.NewReader(body))
			}

			scheme := "http"
			if r.TLS != nil {
				scheme = "https"
			}

			start := time.Now()
			defer func() {
				fields := []zap.Field{
					zap.String("requestId", chimd.GetReqID(r.Context())),
					zap.String("httpScheme", scheme),
					zap.String("httpProto", r.Proto),
					zap.String("httpMethod", r.Method),
					zap.String("remoteAddr", r.RemoteAddr),
					zap.String("uri", r.URL.Path),
					zap.Duration("lat", time.Since(start)),
					zap.Int("responseSize", ww.BytesWritten()),
					zap.Int("status", ww.Status()),
				}
				if ca != nil {
					u := ca.GetUser(r.Context())
					fields = append(fields,
						zap.Bool("isAuthenticated", u.Username != ""),
						zap.String("username", u.Username),
						zap.String("role", u.Role.Name),
						zap.String("authenticationProvider", u.AuthenticationSource.Provider),
					)
				}

				// Redact by default; allowlist small JSON bodies only.
				if m.shouldLogBody(r, body) {
					fields = append(fields, zap.ByteString("requestData", body))
				}
				m.access.Info("request", fields...)
			}()

			next.ServeHTTP(ww, r)
		})
	}
}
