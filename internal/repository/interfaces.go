package repository

import (
	"context"
	"errors"

	"AuthUserService/internal/domain"
)

// ErrNotFound ошибка, когда запись не найдена в хранилище
var ErrNotFound = errors.New("record not found")

// ErrDuplicate ошибка нарушения уникального ограничения (email или телефон).
// Уникальные индексы БД — единственная настоящая гарантия от дубликатов;
// проверка на уровне сервиса лишь дает быстрый понятный ответ клиенту.
var ErrDuplicate = errors.New("duplicate record")

// UserRepository интерфейс для работы с пользователями
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id int) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByPhone(ctx context.Context, phone string) (*domain.User, error)
	FindByEmailOrPhone(ctx context.Context, email, phone string) ([]*domain.User, error)
	FindAll(ctx context.Context) ([]*domain.User, error)
	Update(ctx context.Context, user *domain.User) (*domain.User, error)
	Delete(ctx context.Context, id int) error
}
