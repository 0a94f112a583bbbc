package middleware

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"AuthUserService/pkg/logger"
)

// LoggingMiddleware логирует все HTTP запросы
func LoggingMiddleware(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Генерируем trace_id для запроса
			traceID := uuid.New().String()

			ctx := logger.WithTraceID(r.Context(), traceID)
			r = r.WithContext(ctx)

			logFields := []logger.Field{
				logger.String("method", r.Method),
				logger.String("url", r.URL.String()),
				logger.String("remote_addr", r.RemoteAddr),
				logger.String("user_agent", r.UserAgent()),
				logger.String("trace_id", traceID),
			}

			log.Info("Started request", logFields...)

			start := time.Now()

			// Обертка для ResponseWriter для перехвата статуса
			wrapped := &statusWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(wrapped, r)

			logFields = append(logFields, logger.Int("status_code", wrapped.statusCode))
			logFields = append(logFields, logger.Duration("duration", time.Since(start)))

			log.Info("Completed request", logFields...)
		})
	}
}

// statusWriter обертка для перехвата статуса ответа
type statusWriter struct {
	http.ResponseWriter
	statusCode int
}

// WriteHeader перехватывает установку статуса
func (sw *statusWriter) WriteHeader(code int) {
	sw.statusCode = code
	sw.ResponseWriter.WriteHeader(code)
}
