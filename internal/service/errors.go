package service

import "errors"

// ErrUnauthenticated ошибка, когда учетные данные неверны.
// Возвращается одинаково для неизвестного email и неверного пароля,
// чтобы не раскрывать существование учетной записи.
var ErrUnauthenticated = errors.New("invalid credentials")

// ErrInvalidToken ошибка, когда токен не прошел валидацию
var ErrInvalidToken = errors.New("invalid token")

// ErrRefreshTokenFail ошибка, когда пару токенов не удалось обновить
var ErrRefreshTokenFail = errors.New("refresh token fail")

// ErrForbidden ошибка, когда у пользователя недостаточно прав
var ErrForbidden = errors.New("access denied")

// ErrUserAlreadyExists ошибка, когда email или телефон уже заняты
var ErrUserAlreadyExists = errors.New("user already exists")

// ErrUserNotFound ошибка, когда пользователь не найден
var ErrUserNotFound = errors.New("user not found")

// ErrRegistrationFail ошибка, когда регистрация не удалась
var ErrRegistrationFail = errors.New("registration fail")

// ErrCreateUserFail ошибка, когда пользователя не удалось создать
var ErrCreateUserFail = errors.New("create user fail")

// ErrDeleteUserFail ошибка, когда пользователя не удалось удалить
var ErrDeleteUserFail = errors.New("delete user fail")
