package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"AuthUserService/internal/domain"
	"AuthUserService/internal/repository"
)

// uniqueViolation код SQLSTATE для нарушения уникального ограничения
const uniqueViolation = "23505"

// UserRepository реализация репозитория пользователей для PostgreSQL
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository создает новый экземпляр UserRepository
func NewUserRepository(pool *pgxpool.Pool) repository.UserRepository {
	return &UserRepository{pool: pool}
}

const userColumns = `id, email, password_hash, name, surname, phone, address, roles, created_at, updated_at`

// Create сохраняет нового пользователя в базе данных.
// ID назначается базой. Нарушение уникальных индексов по email
// или телефону возвращается как repository.ErrDuplicate.
func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	query := `INSERT INTO users (email, password_hash, name, surname, phone, address, roles, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`

	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	err := r.pool.QueryRow(ctx, query,
		user.Email,
		user.PasswordHash,
		user.Name,
		user.Surname,
		user.PhoneNumber,
		user.Address,
		rolesToStrings(user.Roles),
		user.CreatedAt,
		user.UpdatedAt,
	).Scan(&user.ID)

	if err != nil {
		if isUniqueViolation(err) {
			return nil, repository.ErrDuplicate
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// FindByID возвращает пользователя по его ID
func (r *UserRepository) FindByID(ctx context.Context, id int) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.scanOne(r.pool.QueryRow(ctx, query, id), "id")
}

// FindByEmail возвращает пользователя по его email
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return r.scanOne(r.pool.QueryRow(ctx, query, email), "email")
}

// FindByPhone возвращает пользователя по номеру телефона
func (r *UserRepository) FindByPhone(ctx context.Context, phone string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE phone = $1`
	return r.scanOne(r.pool.QueryRow(ctx, query, phone), "phone")
}

// FindByEmailOrPhone возвращает всех пользователей, у которых совпадает
// email ИЛИ телефон. Используется проверкой на дубликаты перед записью.
func (r *UserRepository) FindByEmailOrPhone(ctx context.Context, email, phone string) ([]*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1 OR phone = $2`

	rows, err := r.pool.Query(ctx, query, email, phone)
	if err != nil {
		return nil, fmt.Errorf("failed to find users by email or phone: %w", err)
	}
	defer rows.Close()

	return r.scanMany(rows)
}

// FindAll возвращает всех пользователей
func (r *UserRepository) FindAll(ctx context.Context) ([]*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	return r.scanMany(rows)
}

// Update обновляет существующего пользователя.
// ID неизменяем; конфликт уникальности — repository.ErrDuplicate.
func (r *UserRepository) Update(ctx context.Context, user *domain.User) (*domain.User, error) {
	query := `UPDATE users SET
		email = $2,
		password_hash = $3,
		name = $4,
		surname = $5,
		phone = $6,
		address = $7,
		roles = $8,
		updated_at = $9
	WHERE id = $1`

	user.UpdatedAt = time.Now().UTC()

	result, err := r.pool.Exec(ctx, query,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.Name,
		user.Surname,
		user.PhoneNumber,
		user.Address,
		rolesToStrings(user.Roles),
		user.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return nil, repository.ErrDuplicate
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	if result.RowsAffected() == 0 {
		return nil, repository.ErrNotFound
	}

	return user, nil
}

// Delete удаляет пользователя по ID
func (r *UserRepository) Delete(ctx context.Context, id int) error {
	query := `DELETE FROM users WHERE id = $1`

	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	if result.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// scanOne сканирует одну строку результата в domain.User
func (r *UserRepository) scanOne(row pgx.Row, by string) (*domain.User, error) {
	var user domain.User
	var roles []string

	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.Name,
		&user.Surname,
		&user.PhoneNumber,
		&user.Address,
		&roles,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by %s: %w", by, err)
	}

	user.Roles = stringsToRoles(roles)
	return &user, nil
}

// scanMany сканирует все строки результата в список пользователей
func (r *UserRepository) scanMany(rows pgx.Rows) ([]*domain.User, error) {
	var users []*domain.User

	for rows.Next() {
		var user domain.User
		var roles []string

		err := rows.Scan(
			&user.ID,
			&user.Email,
			&user.PasswordHash,
			&user.Name,
			&user.Surname,
			&user.PhoneNumber,
			&user.Address,
			&roles,
			&user.CreatedAt,
			&user.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user row: %w", err)
		}

		user.Roles = stringsToRoles(roles)
		users = append(users, &user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read user rows: %w", err)
	}

	return users, nil
}

// isUniqueViolation проверяет, является ли ошибка нарушением
// уникального ограничения PostgreSQL
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// rolesToStrings преобразует роли в строковый массив для колонки text[]
func rolesToStrings(roles []domain.Role) []string {
	result := make([]string, len(roles))
	for i, role := range roles {
		result[i] = role.String()
	}
	return result
}

// stringsToRoles преобразует строковый массив из БД в роли
func stringsToRoles(values []string) []domain.Role {
	result := make([]domain.Role, len(values))
	for i, value := range values {
		result[i] = domain.Role(value)
	}
	return result
}
