package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/fixora/taskhub/application/port/outbound"
	"github.com/fixora/taskhub/infrastructure/http/response"
	"github.com/fixora/taskhub/infrastructure/service/logger"
)

// RateLimitMiddleware caps requests per client IP across the API.
type RateLimitMiddleware struct {
	rateLimitService outbound.RateLimitService
	logger           logger.Logger
	limit            int
	window           time.Duration
	blockDuration    time.Duration
}

func NewRateLimitMiddleware(rateLimitService outbound.RateLimitService, log logger.Logger, limit int, window, blockDuration time.Duration) *RateLimitMiddleware {
	return &RateLimitMiddleware{
		rateLimitService: rateLimitService,
		logger:           log,
		limit:            limit,
		window:           window,
		blockDuration:    blockDuration,
	}
}

func (m *RateLimitMiddleware) RateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.rateLimitService == nil || m.limit <= 0 {
			next.ServeHTTP(w, r)
			return
		}

		ctx := r.Context()
		clientIP := ClientIP(r)
		key := fmt.Sprintf("general:ip:%s", clientIP)

		isBlocked, err := m.rateLimitService.IsBlocked(ctx, key)
		if err != nil {
			m.logger.Error(ctx, "Failed to check block status", err, map[string]interface{}{"ip": clientIP})
		}
		if isBlocked {
			w.Header().Set("Retry-After", strconv.Itoa(int(m.blockDuration.Seconds())))
			response.TooManyRequests(w, "Too many requests. Please try again later.")
			return
		}

		if err := m.rateLimitService.Increment(ctx, key, m.window); err != nil {
			m.logger.Error(ctx, "Failed to increment rate limit", err, map[string]interface{}{"ip": clientIP})
			next.ServeHTTP(w, r)
			return
		}

		allowed, err := m.rateLimitService.CheckLimit(ctx, key, m.limit+1, m.window)
		if err != nil {
			m.logger.Error(ctx, "Failed to check rate limit", err, map[string]interface{}{"ip": clientIP})
			allowed = true
		}

		if !allowed {
			if err := m.rateLimitService.Block(ctx, key, m.blockDuration, "Rate limit exceeded"); err != nil {
				m.logger.Error(ctx, "Failed to block IP", err, map[string]interface{}{"ip": clientIP})
			}
			m.logger.Warn(ctx, "Rate limit exceeded", map[string]interface{}{
				"ip":        clientIP,
				"path":      r.URL.Path,
				"userAgent": r.UserAgent(),
			})

			w.Header().Set("Retry-After", strconv.Itoa(int(m.blockDuration.Seconds())))
			response.TooManyRequests(w, "Too many requests. Please try again later.")
			return
		}

		next.ServeHTTP(w, r)
	})
}
