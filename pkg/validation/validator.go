package validation

import (
	"fmt"
	"regexp"
	"unicode"
)

// Validator предоставляет общие функции валидации
type Validator struct{}

// NewValidator создает новый Validator
func NewValidator() *Validator {
	return &Validator{}
}

// emailPattern базовая проверка формата email
var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// personNamePattern имя и фамилия: заглавная буква и строчные буквы
var personNamePattern = regexp.MustCompile(`^[A-ZА-Я][a-zа-я]+$`)

// ValidateEmail проверяет корректность email адреса
func (v *Validator) ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email is required")
	}

	if len(email) > 100 {
		return fmt.Errorf("email must not exceed 100 characters")
	}

	if !emailPattern.MatchString(email) {
		return fmt.Errorf("invalid email format: %s", email)
	}

	return nil
}

// ValidatePassword проверяет стойкость пароля.
// Минимум 8 символов, хотя бы одна цифра, одна заглавная
// и одна строчная буква.
func (v *Validator) ValidatePassword(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters")
	}

	var hasDigit, hasUpper, hasLower bool
	for _, char := range password {
		switch {
		case unicode.IsDigit(char):
			hasDigit = true
		case unicode.IsUpper(char):
			hasUpper = true
		case unicode.IsLower(char):
			hasLower = true
		}
	}

	if !hasDigit {
		return fmt.Errorf("password must contain at least one digit")
	}
	if !hasUpper {
		return fmt.Errorf("password must contain at least one uppercase letter")
	}
	if !hasLower {
		return fmt.Errorf("password must contain at least one lowercase letter")
	}

	return nil
}

// ValidatePersonName проверяет имя или фамилию: первая буква
// заглавная, остальные строчные
func (v *Validator) ValidatePersonName(value, fieldName string) error {
	if value == "" {
		return fmt.Errorf("%s is required", fieldName)
	}

	if !personNamePattern.MatchString(value) {
		return fmt.Errorf("invalid %s: must start with an uppercase letter followed by lowercase letters", fieldName)
	}

	return nil
}

// ValidateEnum проверяет значение на соответствие enum
func (v *Validator) ValidateEnum(value string, allowedValues []string, fieldName string) error {
	if value == "" {
		return fmt.Errorf("%s is required", fieldName)
	}

	for _, allowed := range allowedValues {
		if value == allowed {
			return nil
		}
	}

	return fmt.Errorf("invalid %s: %s, allowed values: %v", fieldName, value, allowedValues)
}

// ValidateStringLength проверяет длину строки
func (v *Validator) ValidateStringLength(value, fieldName string, min, max int) error {
	length := len(value)
	if length < min {
		return fmt.Errorf("%s must be at least %d characters, got: %d", fieldName, min, length)
	}
	if length > max {
		return fmt.Errorf("%s must not exceed %d characters, got: %d", fieldName, max, length)
	}
	return nil
}
