package domain

import (
	"fmt"
	"time"
)

// Role представляет роль пользователя в системе.
// Набор ролей закрыт: USER и ADMIN.
type Role string

const (
	// RoleUser обычный пользователь
	RoleUser Role = "USER"
	// RoleAdmin администратор
	RoleAdmin Role = "ADMIN"
)

// ParseRole преобразует строковое представление роли в Role.
// Возвращает ошибку, если роль не входит в закрытый набор.
func ParseRole(value string) (Role, error) {
	switch Role(value) {
	case RoleUser:
		return RoleUser, nil
	case RoleAdmin:
		return RoleAdmin, nil
	default:
		return "", fmt.Errorf("unknown role: %s", value)
	}
}

// String возвращает строковое представление роли для передачи по сети
func (r Role) String() string {
	return string(r)
}

// User представляет пользователя системы
// Пароли хранятся с использованием bcrypt
// Email и телефон уникальны среди всех пользователей (уникальные индексы в БД)
type User struct {
	ID           int       `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name"`
	Surname      string    `json:"surname"`
	PhoneNumber  string    `json:"phoneNumber"`
	Address      string    `json:"address"`
	Roles        []Role    `json:"roles"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// PrimaryRole возвращает первую (основную) роль пользователя.
// Роль назначается при регистрации и попадает в claims токена.
func (u *User) PrimaryRole() Role {
	if len(u.Roles) == 0 {
		return RoleUser
	}
	return u.Roles[0]
}

// HasRole проверяет, есть ли у пользователя указанная роль
func (u *User) HasRole(role Role) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// RegisterData представляет данные регистрации нового пользователя.
// Пароль здесь в открытом виде, существует только на время запроса.
type RegisterData struct {
	Email       string
	Password    string
	Name        string
	Surname     string
	PhoneNumber string
	Address     string
	Role        Role
}

// Credentials представляет данные для входа.
// Никогда не сохраняются, живут только в рамках вызова login.
type Credentials struct {
	Email    string
	Password string
}

// Principal представляет аутентифицированного пользователя текущего запроса.
// Строится middleware после валидации access токена и передается
// через context; никогда не кэшируется между запросами.
type Principal struct {
	Email string
	Role  Role
}

// IsAdmin проверяет, является ли principal администратором
func (p *Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// OrderData проекция данных пользователя для сервиса заказов.
// Наружу отдаются только адрес и телефон, полная запись не раскрывается.
type OrderData struct {
	Address     string `json:"address"`
	PhoneNumber string `json:"phoneNumber"`
}
