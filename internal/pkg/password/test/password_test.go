package password_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"AuthUserService/internal/pkg/password"
)

func TestBcryptHasher_HashAndCheck(t *testing.T) {
	hasher := password.NewBcryptHasher(4)

	hash, err := hasher.Hash("Secret123")
	require.NoError(t, err)
	assert.NotEmpty(t, hash)
	assert.NotEqual(t, "Secret123", hash)

	// Правильный пароль проходит проверку
	assert.True(t, hasher.Check("Secret123", hash))

	// Неправильный пароль не проходит
	assert.False(t, hasher.Check("Wrong123", hash))
}

func TestBcryptHasher_HashesDiffer(t *testing.T) {
	hasher := password.NewBcryptHasher(4)

	// Один и тот же пароль дает разные хеши из-за соли
	first, err := hasher.Hash("Secret123")
	require.NoError(t, err)
	second, err := hasher.Hash("Secret123")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, hasher.Check("Secret123", first))
	assert.True(t, hasher.Check("Secret123", second))
}

func TestBcryptHasher_Validate(t *testing.T) {
	hasher := password.NewBcryptHasher(4)

	tests := []struct {
		name     string
		password string
		valid    bool
	}{
		{"валидный пароль", "Secret123", true},
		{"слишком короткий", "Ab1", false},
		{"без цифры", "Secretpass", false},
		{"без заглавной буквы", "secret123", false},
		{"без строчной буквы", "SECRET123", false},
		{"пустой", "", false},
		{"ровно восемь символов", "Abcdefg1", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, hasher.Validate(tt.password))
		})
	}
}

func TestNewBcryptHasher_DefaultCost(t *testing.T) {
	// Нулевая и отрицательная стоимость заменяются значением по умолчанию
	hasher := password.NewBcryptHasher(0)

	hash, err := hasher.Hash("Secret123")
	require.NoError(t, err)
	assert.True(t, hasher.Check("Secret123", hash))
}
