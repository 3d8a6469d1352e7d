package middleware

import (
	"net/http"
	"time"

	"github.com/fixora/taskhub/infrastructure/service/logger"
	"github.com/fixora/taskhub/infrastructure/service/metrics"
	"github.com/gorilla/mux"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// RequestLogMiddleware logs each request and feeds the HTTP metrics.
// m may be nil.
func RequestLogMiddleware(log logger.Logger, m *metrics.Metrics, enabled bool) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			duration := time.Since(start)

			path := r.URL.Path
			if route := mux.CurrentRoute(r); route != nil {
				if tpl, err := route.GetPathTemplate(); err == nil {
					path = tpl
				}
			}
			if m != nil {
				m.RecordRequest(r.Method, path, rec.status, duration)
			}
			if enabled {
				log.Info(r.Context(), "HTTP request", map[string]interface{}{
					"method":      r.Method,
					"path":        r.URL.Path,
					"status":      rec.status,
					"duration_ms": duration.Milliseconds(),
					"ip":          ClientIP(r),
				})
			}
		})
	}
}
