package service

import (
	"context"

	"AuthUserService/internal/domain"
)

// Ключи для использования в контексте
// Используются для передачи данных между middleware и обработчиками

type contextKey string

// principalKey ключ для хранения principal текущего запроса в контексте
const principalKey contextKey = "principal"

// WithPrincipal кладет principal аутентифицированного пользователя в контекст.
// Вызывается middleware после успешной валидации access токена.
func WithPrincipal(ctx context.Context, principal *domain.Principal) context.Context {
	return context.WithValue(ctx, principalKey, principal)
}

// PrincipalFromContext извлекает principal из контекста.
// Возвращает ErrUnauthenticated, если запрос не был аутентифицирован.
func PrincipalFromContext(ctx context.Context) (*domain.Principal, error) {
	principal, ok := ctx.Value(principalKey).(*domain.Principal)
	if !ok || principal == nil {
		return nil, ErrUnauthenticated
	}
	return principal, nil
}
