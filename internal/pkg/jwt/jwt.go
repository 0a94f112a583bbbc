package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenKind различает access и refresh токены
type TokenKind string

const (
	// TokenKindAccess короткоживущий токен, передается с каждым запросом
	TokenKindAccess TokenKind = "access"
	// TokenKindRefresh долгоживущий токен, используется только для обновления пары
	TokenKindRefresh TokenKind = "refresh"
)

// ErrInvalidToken ошибка валидации: плохая подпись, структура или истекший срок
var ErrInvalidToken = errors.New("invalid token")

// ErrRefreshFail ошибка обновления: токен не удалось разобрать вообще.
// Истекший, но структурно валидный токен обновляется без ошибки.
var ErrRefreshFail = errors.New("token refresh failed")

// TokenClaims структура для хранения пользовательских данных в JWT токене
type TokenClaims struct {
	Role      string `json:"role"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// Kind возвращает тип токена из claims
func (c *TokenClaims) Kind() TokenKind {
	return TokenKind(c.TokenType)
}

// Codec интерфейс для работы с JWT токенами.
// Единственный источник истины для "аутентифицирован ли этот запрос".
type Codec interface {
	Issue(subject, role string, kind TokenKind) (string, error)
	Validate(token string) (*TokenClaims, error)
	Refresh(token string, kind TokenKind) (string, error)
	Claims(token string) (*TokenClaims, error)
	ExtractSubject(token string) (string, error)
}

// Manager реализация Codec.
// Секрет подписи общий для всего процесса, только для чтения после старта.
type Manager struct {
	secret     string
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewManager создает новый экземпляр JWT менеджера
func NewManager(secret string, accessTTL, refreshTTL time.Duration) *Manager {
	return &Manager{
		secret:     secret,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// ttl возвращает время жизни токена для указанного типа
func (m *Manager) ttl(kind TokenKind) time.Duration {
	if kind == TokenKindRefresh {
		return m.refreshTTL
	}
	return m.accessTTL
}

// Issue генерирует подписанный токен указанного типа.
// В claims попадают subject (email), роль и временные метки.
func (m *Manager) Issue(subject, role string, kind TokenKind) (string, error) {
	now := time.Now().UTC()
	claims := &TokenClaims{
		Role:      role,
		TokenType: string(kind),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl(kind))),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)
	signed, err := token.SignedString([]byte(m.secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign %s token: %w", kind, err)
	}

	return signed, nil
}

// Validate проверяет подпись и срок действия токена.
// Токен валиден строго до момента истечения (now < exp).
// Токены, подписанные другим секретом или алгоритмом, не принимаются.
func (m *Manager) Validate(token string) (*TokenClaims, error) {
	parsed, err := jwt.ParseWithClaims(token, &TokenClaims{}, m.keyFunc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := parsed.Claims.(*TokenClaims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// Refresh переиздает токен со свежими временными метками.
// Срок действия входного токена НЕ проверяется: refresh обязан работать
// после истечения access токена, иначе операция теряет смысл.
// Ошибка возвращается только если токен не разбирается вообще
// (плохая структура или подпись).
func (m *Manager) Refresh(token string, kind TokenKind) (string, error) {
	claims, err := m.parseWithoutExpiry(token)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRefreshFail, err)
	}

	return m.Issue(claims.Subject, claims.Role, kind)
}

// Claims разбирает claims токена без проверки срока действия.
// Позволяет вызывающему коду смотреть на тип токена до переиздания.
func (m *Manager) Claims(token string) (*TokenClaims, error) {
	claims, err := m.parseWithoutExpiry(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return claims, nil
}

// ExtractSubject достает subject из claims без проверки срока действия.
// Используется после того, как Validate уже отработал, и для аудита.
func (m *Manager) ExtractSubject(token string) (string, error) {
	claims, err := m.parseWithoutExpiry(token)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return claims.Subject, nil
}

// parseWithoutExpiry разбирает токен, проверяя подпись, но не срок действия
func (m *Manager) parseWithoutExpiry(token string) (*TokenClaims, error) {
	parsed, err := jwt.ParseWithClaims(token, &TokenClaims{}, m.keyFunc, jwt.WithoutClaimsValidation())
	if err != nil {
		return nil, err
	}

	claims, ok := parsed.Claims.(*TokenClaims)
	if !ok {
		return nil, errors.New("unexpected claims type")
	}

	return claims, nil
}

// keyFunc возвращает секрет для проверки подписи.
// Принимается только HMAC, чтобы исключить подмену алгоритма.
func (m *Manager) keyFunc(token *jwt.Token) (interface{}, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
	}
	return []byte(m.secret), nil
}
