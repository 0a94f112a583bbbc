package service

import (
	"context"
	"errors"

	"AuthUserService/internal/domain"
	"AuthUserService/internal/events"
	"AuthUserService/internal/pkg/jwt"
	"AuthUserService/internal/pkg/password"
	"AuthUserService/internal/repository"
	"AuthUserService/pkg/logger"
)

// TokenPair пара токенов, возвращаемая при входе и обновлении.
// Email дублирует subject токенов, чтобы клиенту не нужно было
// разбирать JWT ради определения владельца пары.
type TokenPair struct {
	Email        string `json:"email"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// AuthService интерфейс для сервиса аутентификации
type AuthService interface {
	Login(ctx context.Context, credentials domain.Credentials) (*TokenPair, error)
	Register(ctx context.Context, data domain.RegisterData) (*domain.User, error)
	RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error)
	Authenticate(ctx context.Context, accessToken string) (*domain.Principal, error)
}

// authService реализация AuthService.
// Создание учетной записи делегируется UserService, здесь остается
// только логика токенов и проверки пароля.
type authService struct {
	userRepository repository.UserRepository
	users          UserService
	tokenCodec     jwt.Codec
	passwordHasher password.Hasher
	producer       events.Producer
	logger         logger.Logger
}

// NewAuthService создает новый экземпляр AuthService
func NewAuthService(
	userRepository repository.UserRepository,
	users UserService,
	tokenCodec jwt.Codec,
	passwordHasher password.Hasher,
	producer events.Producer,
	logger logger.Logger,
) AuthService {
	return &authService{
		userRepository: userRepository,
		users:          users,
		tokenCodec:     tokenCodec,
		passwordHasher: passwordHasher,
		producer:       producer,
		logger:         logger,
	}
}

// Login реализует аутентификацию пользователя.
// Неизвестный email и неверный пароль неразличимы для вызывающего:
// в обоих случаях возвращается ErrUnauthenticated.
func (s *authService) Login(ctx context.Context, credentials domain.Credentials) (*TokenPair, error) {
	if credentials.Email == "" || credentials.Password == "" {
		return nil, ErrUnauthenticated
	}

	// Поиск пользователя по email
	user, err := s.userRepository.FindByEmail(ctx, credentials.Email)
	if err != nil {
		return nil, ErrUnauthenticated
	}

	// Проверка пароля
	if !s.passwordHasher.Check(credentials.Password, user.PasswordHash) {
		return nil, ErrUnauthenticated
	}

	pair, err := s.issuePair(user.Email, user.PrimaryRole())
	if err != nil {
		s.logger.Error("failed to issue token pair", logger.Error(err))
		return nil, ErrUnauthenticated
	}

	return pair, nil
}

// Register создает нового пользователя и возвращает его.
// Сама запись создается через UserService: проверка занятости email
// и телефона, хеширование пароля и роль по умолчанию живут там.
func (s *authService) Register(ctx context.Context, data domain.RegisterData) (*domain.User, error) {
	created, err := s.users.CreateChecked(ctx, data)
	if err != nil {
		if errors.Is(err, ErrUserAlreadyExists) {
			return nil, ErrUserAlreadyExists
		}
		s.logger.Error("failed to register user", logger.Error(err))
		return nil, ErrRegistrationFail
	}

	// Событие публикуется best-effort: сбой брокера не откатывает регистрацию
	if err := s.producer.UserRegistered(ctx, created); err != nil {
		s.logger.Warn("failed to publish user.registered event", logger.Error(err))
	}

	return created, nil
}

// RefreshToken обновляет пару токенов по refresh токену.
// На вход принимается только refresh токен: access токен с валидной
// подписью здесь не обменивается. Новый access токен выпускается из
// старого refresh токена, а новый refresh токен — из только что
// выпущенного access токена, поэтому сроки жизни в паре всегда
// согласованы.
func (s *authService) RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.tokenCodec.Claims(refreshToken)
	if err != nil {
		return nil, ErrRefreshTokenFail
	}
	if claims.Kind() != jwt.TokenKindRefresh {
		return nil, ErrRefreshTokenFail
	}

	accessToken, err := s.tokenCodec.Refresh(refreshToken, jwt.TokenKindAccess)
	if err != nil {
		return nil, ErrRefreshTokenFail
	}

	newRefreshToken, err := s.tokenCodec.Refresh(accessToken, jwt.TokenKindRefresh)
	if err != nil {
		return nil, ErrRefreshTokenFail
	}

	return &TokenPair{
		Email:        claims.Subject,
		AccessToken:  accessToken,
		RefreshToken: newRefreshToken,
	}, nil
}

// Authenticate валидирует access токен и строит principal запроса.
// Refresh токен здесь не принимается: доступ к защищенным операциям
// дает только access токен.
func (s *authService) Authenticate(ctx context.Context, accessToken string) (*domain.Principal, error) {
	claims, err := s.tokenCodec.Validate(accessToken)
	if err != nil {
		return nil, ErrInvalidToken
	}

	if claims.Kind() != jwt.TokenKindAccess {
		return nil, ErrInvalidToken
	}

	role, err := domain.ParseRole(claims.Role)
	if err != nil {
		return nil, ErrInvalidToken
	}

	return &domain.Principal{
		Email: claims.Subject,
		Role:  role,
	}, nil
}

// issuePair выпускает согласованную пару access/refresh токенов
func (s *authService) issuePair(email string, role domain.Role) (*TokenPair, error) {
	accessToken, err := s.tokenCodec.Issue(email, role.String(), jwt.TokenKindAccess)
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.tokenCodec.Issue(email, role.String(), jwt.TokenKindRefresh)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		Email:        email,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}
