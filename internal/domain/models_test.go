package domain

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestParseRole проверяет разбор ролей из строки
func TestParseRole(t *testing.T) {
	role, err := ParseRole("USER")
	require.NoError(t, err)
	assert.Equal(t, RoleUser, role)

	role, err = ParseRole("ADMIN")
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, role)

	// Набор ролей закрыт
	_, err = ParseRole("MANAGER")
	assert.Error(t, err)

	_, err = ParseRole("user")
	assert.Error(t, err)

	_, err = ParseRole("")
	assert.Error(t, err)
}

// TestUser_PrimaryRole проверяет выбор основной роли
func TestUser_PrimaryRole(t *testing.T) {
	user := &User{Roles: []Role{RoleAdmin, RoleUser}}
	assert.Equal(t, RoleAdmin, user.PrimaryRole())

	// Без ролей по умолчанию USER
	user = &User{}
	assert.Equal(t, RoleUser, user.PrimaryRole())
}

// TestUser_HasRole проверяет наличие роли у пользователя
func TestUser_HasRole(t *testing.T) {
	user := &User{Roles: []Role{RoleUser}}

	assert.True(t, user.HasRole(RoleUser))
	assert.False(t, user.HasRole(RoleAdmin))
}

// TestUser_PasswordHashNotSerialized проверяет, что хеш пароля
// не попадает в JSON ответы
func TestUser_PasswordHashNotSerialized(t *testing.T) {
	user := &User{
		ID:           1,
		Email:        "user@example.com",
		PasswordHash: "$2a$10$secret",
	}

	body, err := json.Marshal(user)
	require.NoError(t, err)

	assert.False(t, strings.Contains(string(body), "secret"))
	assert.False(t, strings.Contains(string(body), "password"))
}

// TestPrincipal_IsAdmin проверяет определение администратора
func TestPrincipal_IsAdmin(t *testing.T) {
	admin := &Principal{Email: "admin@example.com", Role: RoleAdmin}
	assert.True(t, admin.IsAdmin())

	user := &Principal{Email: "user@example.com", Role: RoleUser}
	assert.False(t, user.IsAdmin())
}
