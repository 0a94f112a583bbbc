package middleware

import (
	"net/http"
	"strings"

	"AuthUserService/internal/service"
)

// publicPaths маршруты, доступные без токена
var publicPaths = map[string]bool{
	"/api/auth/log-in":   true,
	"/api/auth/register": true,
	"/api/auth/refresh":  true,
	"/health":            true,
	"/ready":             true,
	"/live":              true,
	"/metrics":           true,
}

// AuthMiddleware проверяет аутентификацию запроса по Bearer токену.
// Публичные маршруты пропускаются без проверки. Для остальных access
// токен валидируется, и principal кладется в контекст запроса.
func AuthMiddleware(authService service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if publicPaths[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			token, ok := bearerToken(r)
			if !ok {
				writeUnauthorized(w, "authorization header missing or malformed")
				return
			}

			principal, err := authService.Authenticate(r.Context(), token)
			if err != nil {
				writeUnauthorized(w, "invalid or expired token")
				return
			}

			ctx := service.WithPrincipal(r.Context(), principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bearerToken извлекает токен из заголовка Authorization
func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", false
	}

	token := strings.TrimPrefix(authHeader, "Bearer ")
	if token == "" {
		return "", false
	}

	return token, true
}
