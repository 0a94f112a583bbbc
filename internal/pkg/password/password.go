package password

import (
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// Hasher интерфейс для работы с паролями
type Hasher interface {
	Hash(password string) (string, error)
	Check(password, hash string) bool
	Validate(password string) bool
}

// BcryptHasher реализация Hasher с использованием bcrypt.
// Хеш самосолящийся: один и тот же пароль дает разные хеши,
// сравнивать можно только через Check.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher создает новый BcryptHasher
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

// Hash хеширует пароль с использованием bcrypt
func (h *BcryptHasher) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Check проверяет, соответствует ли пароль хешу
func (h *BcryptHasher) Check(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// Validate проверяет сложность пароля.
// Требования: минимум 8 символов, хотя бы одна цифра,
// одна строчная и одна заглавная буква.
func (h *BcryptHasher) Validate(password string) bool {
	if len(password) < 8 {
		return false
	}

	hasDigit := false
	hasUpper := false
	hasLower := false

	for _, r := range password {
		switch {
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		}
	}

	return hasDigit && hasUpper && hasLower
}
