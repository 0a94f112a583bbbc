package middleware

import (
	"net"
	"net/http"
	"strings"
	"time"

	"AuthUserService/pkg/logger"
	"AuthUserService/pkg/ratelimit"
)

// authPathPrefix префикс маршрутов, на которые действует ограничение.
// Лимитируются только операции аутентификации: login, register, refresh.
const authPathPrefix = "/api/auth/"

// RateLimitMiddleware ограничивает частоту запросов к маршрутам
// аутентификации по IP адресу клиента. При недоступности Redis
// запросы пропускаются.
func RateLimitMiddleware(rateLimiter ratelimit.RateLimiter, limit int, window time.Duration, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !strings.HasPrefix(r.URL.Path, authPathPrefix) {
				next.ServeHTTP(w, r)
				return
			}

			key := "ip:" + clientIP(r)

			limitExceeded, err := rateLimiter.CheckRateLimit(r.Context(), key, limit, window)
			if err != nil {
				// В случае ошибки Rate Limiter разрешаем запрос
				log.Error("Rate limiter error, allowing request",
					logger.Error(err),
					logger.String("key", key))
				next.ServeHTTP(w, r)
				return
			}

			if limitExceeded {
				log.Warn("Rate limit exceeded",
					logger.String("key", key),
					logger.Int("limit", limit),
					logger.String("window", window.String()),
					logger.String("path", r.URL.Path))

				writeError(w, http.StatusTooManyRequests, "TOO_MANY_REQUESTS", "too many requests")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// clientIP извлекает IP адрес клиента из запроса
func clientIP(r *http.Request) string {
	// За прокси реальный адрес приходит в X-Forwarded-For
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		parts := strings.Split(forwarded, ",")
		return strings.TrimSpace(parts[0])
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
