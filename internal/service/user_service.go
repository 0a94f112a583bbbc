package service

import (
	"context"
	"errors"

	"AuthUserService/internal/domain"
	"AuthUserService/internal/events"
	"AuthUserService/internal/pkg/password"
	"AuthUserService/internal/repository"
	"AuthUserService/pkg/logger"
)

// UserService интерфейс для сервиса управления пользователями
type UserService interface {
	Create(ctx context.Context, data domain.RegisterData) (*domain.User, error)
	CreateChecked(ctx context.Context, data domain.RegisterData) (*domain.User, error)
	Edit(ctx context.Context, id int, update domain.RegisterData) (*domain.User, error)
	Delete(ctx context.Context, id int) error
	GetByID(ctx context.Context, id int) (*domain.User, error)
	GetAll(ctx context.Context) ([]*domain.User, error)
	CurrentUser(ctx context.Context) (*domain.User, error)
	DataForOrder(ctx context.Context) (*domain.OrderData, error)
}

// userService реализация UserService
type userService struct {
	userRepository repository.UserRepository
	passwordHasher password.Hasher
	producer       events.Producer
	logger         logger.Logger
}

// NewUserService создает новый экземпляр UserService
func NewUserService(
	userRepository repository.UserRepository,
	passwordHasher password.Hasher,
	producer events.Producer,
	logger logger.Logger,
) UserService {
	return &userService{
		userRepository: userRepository,
		passwordHasher: passwordHasher,
		producer:       producer,
		logger:         logger,
	}
}

// Create создает пользователя без предварительной проверки занятости.
// Конфликт email или телефона ловится уникальными индексами БД.
func (s *userService) Create(ctx context.Context, data domain.RegisterData) (*domain.User, error) {
	hash, err := s.passwordHasher.Hash(data.Password)
	if err != nil {
		s.logger.Error("failed to hash password", logger.Error(err))
		return nil, ErrCreateUserFail
	}

	role := data.Role
	if role == "" {
		role = domain.RoleUser
	}

	user := &domain.User{
		Email:        data.Email,
		PasswordHash: hash,
		Name:         data.Name,
		Surname:      data.Surname,
		PhoneNumber:  data.PhoneNumber,
		Address:      data.Address,
		Roles:        []domain.Role{role},
	}

	created, err := s.userRepository.Create(ctx, user)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUserAlreadyExists
		}
		s.logger.Error("failed to create user", logger.Error(err))
		return nil, ErrCreateUserFail
	}

	return created, nil
}

// CreateChecked создает пользователя с явной проверкой занятости
// email и телефона перед записью
func (s *userService) CreateChecked(ctx context.Context, data domain.RegisterData) (*domain.User, error) {
	existing, err := s.userRepository.FindByEmailOrPhone(ctx, data.Email, data.PhoneNumber)
	if err != nil {
		s.logger.Error("failed to check existing users", logger.Error(err))
		return nil, ErrCreateUserFail
	}
	if len(existing) > 0 {
		return nil, ErrUserAlreadyExists
	}

	return s.Create(ctx, data)
}

// Edit обновляет пользователя по ID.
// Редактировать запись может администратор или сам владелец.
// Занятость перепроверяется только для фактически измененных email
// и телефона. Пустой или слабый новый пароль молча игнорируется,
// текущий хеш при этом сохраняется.
func (s *userService) Edit(ctx context.Context, id int, update domain.RegisterData) (*domain.User, error) {
	user, err := s.userRepository.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	principal, err := PrincipalFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if !principal.IsAdmin() && principal.Email != user.Email {
		return nil, ErrForbidden
	}

	if update.Email != user.Email {
		if _, err := s.userRepository.FindByEmail(ctx, update.Email); err == nil {
			return nil, ErrUserAlreadyExists
		} else if !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		user.Email = update.Email
	}

	if update.PhoneNumber != user.PhoneNumber {
		if _, err := s.userRepository.FindByPhone(ctx, update.PhoneNumber); err == nil {
			return nil, ErrUserAlreadyExists
		} else if !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		user.PhoneNumber = update.PhoneNumber
	}

	if update.Password != "" && s.passwordHasher.Validate(update.Password) {
		hash, err := s.passwordHasher.Hash(update.Password)
		if err != nil {
			s.logger.Error("failed to hash password", logger.Error(err))
			return nil, err
		}
		user.PasswordHash = hash
	}

	user.Name = update.Name
	user.Surname = update.Surname
	user.Address = update.Address

	updated, err := s.userRepository.Update(ctx, user)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUserAlreadyExists
		}
		return nil, err
	}

	return updated, nil
}

// Delete удаляет пользователя по ID
func (s *userService) Delete(ctx context.Context, id int) error {
	// Любой сбой удаления, включая отсутствующий ID, отдается единообразно
	user, err := s.userRepository.FindByID(ctx, id)
	if err != nil {
		return ErrDeleteUserFail
	}

	if err := s.userRepository.Delete(ctx, id); err != nil {
		s.logger.Error("failed to delete user", logger.Error(err), logger.Int("user_id", id))
		return ErrDeleteUserFail
	}

	// Событие публикуется best-effort: сбой брокера не откатывает удаление
	if err := s.producer.UserDeleted(ctx, user); err != nil {
		s.logger.Warn("failed to publish user.deleted event", logger.Error(err))
	}

	return nil
}

// GetByID возвращает пользователя по его ID
func (s *userService) GetByID(ctx context.Context, id int) (*domain.User, error) {
	user, err := s.userRepository.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// GetAll возвращает всех пользователей
func (s *userService) GetAll(ctx context.Context) ([]*domain.User, error) {
	return s.userRepository.FindAll(ctx)
}

// CurrentUser возвращает запись пользователя текущего запроса
func (s *userService) CurrentUser(ctx context.Context) (*domain.User, error) {
	principal, err := PrincipalFromContext(ctx)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepository.FindByEmail(ctx, principal.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// DataForOrder возвращает адрес и телефон текущего пользователя
// для оформления заказа. Остальные поля записи не раскрываются.
func (s *userService) DataForOrder(ctx context.Context) (*domain.OrderData, error) {
	user, err := s.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}

	return &domain.OrderData{
		Address:     user.Address,
		PhoneNumber: user.PhoneNumber,
	}, nil
}
