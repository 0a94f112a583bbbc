package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"AuthUserService/internal/middleware"
	"AuthUserService/internal/service"
	pkgErrors "AuthUserService/pkg/errors"
	"AuthUserService/pkg/health"
	"AuthUserService/pkg/logger"
	"AuthUserService/pkg/metrics"
	"AuthUserService/pkg/validation"
)

// Handler структура для управления HTTP обработчиками
type Handler struct {
	mux           *http.ServeMux
	authService   service.AuthService
	userService   service.UserService
	healthChecker health.HealthChecker
	validator     *validation.Validator
	metrics       *metrics.Metrics
	logger        logger.Logger
}

// NewHandler создает новый экземпляр Handler
func NewHandler(
	authService service.AuthService,
	userService service.UserService,
	healthChecker health.HealthChecker,
	metrics *metrics.Metrics,
	logger logger.Logger,
) *Handler {
	h := &Handler{
		mux:           http.NewServeMux(),
		authService:   authService,
		userService:   userService,
		healthChecker: healthChecker,
		validator:     validation.NewValidator(),
		metrics:       metrics,
		logger:        logger,
	}

	// Настройка роутинга
	h.setupRoutes()

	return h
}

// ServeHTTP реализует интерфейс http.Handler
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// setupRoutes настраивает маршруты для приложения
func (h *Handler) setupRoutes() {
	// Публичные роуты аутентификации
	h.mux.HandleFunc("/api/auth/log-in", h.handleLogin)
	h.mux.HandleFunc("/api/auth/refresh", h.handleRefreshToken)
	h.mux.HandleFunc("/api/auth/register", h.handleRegister)

	// Роуты управления пользователями
	h.mux.HandleFunc("/api/users", middleware.RequireAdmin(h.handleListUsers))
	h.mux.HandleFunc("/api/users/create", middleware.RequireAdmin(h.handleCreateUser))
	h.mux.HandleFunc("/api/users/currently-logged-in", h.handleCurrentUser)
	h.mux.HandleFunc("/api/users/client/data-for-order", h.handleDataForOrder)
	h.mux.HandleFunc("/api/users/", h.handleUserByID)

	// Health check роуты
	h.mux.HandleFunc("/health", health.Handler(h.healthChecker))
	h.mux.HandleFunc("/ready", health.ReadyHandler())
	h.mux.HandleFunc("/live", health.LiveHandler())
}

// writeJSON отправляет успешный JSON ответ
func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

// writeError отправляет JSON ответ с ошибкой
func (h *Handler) writeError(w http.ResponseWriter, err *pkgErrors.Error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.HTTPStatus())
	json.NewEncoder(w).Encode(map[string]interface{}{"error": err})
}

// handleError переводит ошибки сервисного слоя в HTTP ответы
func (h *Handler) handleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrUnauthenticated):
		h.writeError(w, pkgErrors.New(pkgErrors.ErrUnauthorized, "invalid credentials"))
	case errors.Is(err, service.ErrInvalidToken):
		h.writeError(w, pkgErrors.New(pkgErrors.ErrInvalidToken, "invalid or expired token"))
	case errors.Is(err, service.ErrRefreshTokenFail):
		h.writeError(w, pkgErrors.New(pkgErrors.ErrBadRequest, "refresh token fail"))
	case errors.Is(err, service.ErrForbidden):
		h.writeError(w, pkgErrors.New(pkgErrors.ErrForbidden, "access denied"))
	case errors.Is(err, service.ErrUserNotFound):
		h.writeError(w, pkgErrors.New(pkgErrors.ErrNotFound, "user not found"))
	case errors.Is(err, service.ErrUserAlreadyExists):
		h.writeError(w, pkgErrors.New(pkgErrors.ErrConflict, "user already exists"))
	case errors.Is(err, service.ErrRegistrationFail):
		h.writeError(w, pkgErrors.New(pkgErrors.ErrBadRequest, "registration failed"))
	case errors.Is(err, service.ErrCreateUserFail):
		h.writeError(w, pkgErrors.New(pkgErrors.ErrBadRequest, "create user failed"))
	case errors.Is(err, service.ErrDeleteUserFail):
		h.writeError(w, pkgErrors.New(pkgErrors.ErrBadRequest, "delete user failed"))
	default:
		h.logger.Error("request failed", logger.Error(err))
		h.writeError(w, pkgErrors.New(pkgErrors.ErrInternal, "internal server error"))
	}
}

// countAuth фиксирует исход операции аутентификации в метриках
func (h *Handler) countAuth(operation string, err error) {
	if h.metrics == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	h.metrics.IncAuthAttempt(operation, outcome)
}

// methodNotAllowed отправляет ответ 405
func (h *Handler) methodNotAllowed(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusMethodNotAllowed)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error": pkgErrors.New(pkgErrors.ErrValidation, "method not allowed"),
	})
}
