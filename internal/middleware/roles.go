package middleware

import (
	"net/http"

	"AuthUserService/internal/domain"
	"AuthUserService/internal/service"
)

// RequireRole пропускает запрос только если у principal есть одна
// из указанных ролей. Вешается на отдельные обработчики после
// AuthMiddleware.
func RequireRole(next http.HandlerFunc, roles ...domain.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, err := service.PrincipalFromContext(r.Context())
		if err != nil {
			writeUnauthorized(w, "authentication required")
			return
		}

		for _, role := range roles {
			if principal.Role == role {
				next(w, r)
				return
			}
		}

		writeForbidden(w, "insufficient permissions")
	}
}

// RequireAdmin пропускает запрос только от администратора
func RequireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return RequireRole(next, domain.RoleAdmin)
}
