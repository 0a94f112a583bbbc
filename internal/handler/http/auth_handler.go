package http

import (
	"encoding/json"
	"net/http"

	"AuthUserService/internal/domain"
	pkgErrors "AuthUserService/pkg/errors"
)

// loginRequest тело запроса на вход
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// refreshRequest тело запроса на обновление пары токенов.
// Email опционален: владельца определяет subject самого токена.
type refreshRequest struct {
	Email        string `json:"email"`
	RefreshToken string `json:"refreshToken"`
}

// registerRequest тело запроса на регистрацию
type registerRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	Name        string `json:"name"`
	Surname     string `json:"surname"`
	PhoneNumber string `json:"phoneNumber"`
	Address     string `json:"address"`
	Role        string `json:"roleType"`
}

// handleLogin обрабатывает запросы на аутентификацию
func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.methodNotAllowed(w)
		return
	}

	// Декодирование запроса
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, pkgErrors.New(pkgErrors.ErrValidation, "invalid request body"))
		return
	}

	// Валидация входных данных
	if req.Email == "" {
		h.writeError(w, pkgErrors.New(pkgErrors.ErrValidation, "email is required"))
		return
	}

	if req.Password == "" {
		h.writeError(w, pkgErrors.New(pkgErrors.ErrValidation, "password is required"))
		return
	}

	// Вызов сервиса аутентификации
	tokenPair, err := h.authService.Login(r.Context(), domain.Credentials{
		Email:    req.Email,
		Password: req.Password,
	})
	h.countAuth("login", err)
	if err != nil {
		h.handleError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, tokenPair)
}

// handleRefreshToken обрабатывает запросы на обновление пары токенов
func (h *Handler) handleRefreshToken(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.methodNotAllowed(w)
		return
	}

	// Декодирование запроса
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, pkgErrors.New(pkgErrors.ErrValidation, "invalid request body"))
		return
	}

	if req.RefreshToken == "" {
		h.writeError(w, pkgErrors.New(pkgErrors.ErrValidation, "refresh token is required"))
		return
	}

	// Вызов сервиса
	tokenPair, err := h.authService.RefreshToken(r.Context(), req.RefreshToken)
	h.countAuth("refresh", err)
	if err != nil {
		h.handleError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, tokenPair)
}

// handleRegister обрабатывает запросы на регистрацию
func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.methodNotAllowed(w)
		return
	}

	// Декодирование запроса
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, pkgErrors.New(pkgErrors.ErrValidation, "invalid request body"))
		return
	}

	data, err := h.registerData(req)
	if err != nil {
		h.writeError(w, pkgErrors.Wrap(err, pkgErrors.ErrValidation, "validation failed"))
		return
	}

	// Вызов сервиса аутентификации
	user, err := h.authService.Register(r.Context(), *data)
	h.countAuth("register", err)
	if err != nil {
		h.handleError(w, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, user)
}

// registerData валидирует тело запроса и строит данные регистрации.
// Роль по умолчанию USER; явно указанная роль должна входить
// в закрытый набор.
func (h *Handler) registerData(req registerRequest) (*domain.RegisterData, error) {
	if err := h.validator.ValidateEmail(req.Email); err != nil {
		return nil, err
	}

	if err := h.validator.ValidatePassword(req.Password); err != nil {
		return nil, err
	}

	if err := h.validator.ValidatePersonName(req.Name, "name"); err != nil {
		return nil, err
	}

	if err := h.validator.ValidatePersonName(req.Surname, "surname"); err != nil {
		return nil, err
	}

	if err := h.validator.ValidateStringLength(req.PhoneNumber, "phoneNumber", 5, 20); err != nil {
		return nil, err
	}

	role := domain.RoleUser
	if req.Role != "" {
		parsed, err := domain.ParseRole(req.Role)
		if err != nil {
			return nil, err
		}
		role = parsed
	}

	return &domain.RegisterData{
		Email:       req.Email,
		Password:    req.Password,
		Name:        req.Name,
		Surname:     req.Surname,
		PhoneNumber: req.PhoneNumber,
		Address:     req.Address,
		Role:        role,
	}, nil
}
