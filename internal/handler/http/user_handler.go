package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"AuthUserService/internal/domain"
	"AuthUserService/internal/middleware"
	pkgErrors "AuthUserService/pkg/errors"
)

// editUserRequest тело запроса на редактирование пользователя.
// Пустой пароль означает "оставить текущий".
type editUserRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	Name        string `json:"name"`
	Surname     string `json:"surname"`
	PhoneNumber string `json:"phoneNumber"`
	Address     string `json:"address"`
}

// handleListUsers возвращает всех пользователей
func (h *Handler) handleListUsers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.methodNotAllowed(w)
		return
	}

	users, err := h.userService.GetAll(r.Context())
	if err != nil {
		h.handleError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, users)
}

// handleCreateUser создает пользователя от имени администратора
func (h *Handler) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.methodNotAllowed(w)
		return
	}

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

	user, err := h.userService.CreateChecked(r.Context(), *data)
	if err != nil {
		h.handleError(w, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, user)
}

// handleCurrentUser возвращает запись текущего пользователя
func (h *Handler) handleCurrentUser(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.methodNotAllowed(w)
		return
	}

	user, err := h.userService.CurrentUser(r.Context())
	if err != nil {
		h.handleError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, user)
}

// handleDataForOrder возвращает адрес и телефон текущего пользователя
// для сервиса заказов
func (h *Handler) handleDataForOrder(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.methodNotAllowed(w)
		return
	}

	data, err := h.userService.DataForOrder(r.Context())
	if err != nil {
		h.handleError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, data)
}

// handleUserByID маршрутизирует запросы вида /api/users/{id}
func (h *Handler) handleUserByID(w http.ResponseWriter, r *http.Request) {
	idPart := strings.TrimPrefix(r.URL.Path, "/api/users/")
	if idPart == "" || strings.Contains(idPart, "/") {
		h.writeError(w, pkgErrors.New(pkgErrors.ErrNotFound, "resource not found"))
		return
	}

	id, err := strconv.Atoi(idPart)
	if err != nil {
		h.writeError(w, pkgErrors.New(pkgErrors.ErrValidation, "invalid user id"))
		return
	}

	switch r.Method {
	case http.MethodGet:
		middleware.RequireAdmin(func(w http.ResponseWriter, r *http.Request) {
			h.getUser(w, r, id)
		})(w, r)
	case http.MethodPut:
		// Права (админ или владелец) проверяет сервисный слой
		h.editUser(w, r, id)
	case http.MethodDelete:
		middleware.RequireAdmin(func(w http.ResponseWriter, r *http.Request) {
			h.deleteUser(w, r, id)
		})(w, r)
	default:
		h.methodNotAllowed(w)
	}
}

// getUser возвращает пользователя по ID
func (h *Handler) getUser(w http.ResponseWriter, r *http.Request, id int) {
	user, err := h.userService.GetByID(r.Context(), id)
	if err != nil {
		h.handleError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, user)
}

// editUser обновляет пользователя по ID
func (h *Handler) editUser(w http.ResponseWriter, r *http.Request, id int) {
	var req editUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, pkgErrors.New(pkgErrors.ErrValidation, "invalid request body"))
		return
	}

	if err := h.validator.ValidateEmail(req.Email); err != nil {
		h.writeError(w, pkgErrors.Wrap(err, pkgErrors.ErrValidation, "validation failed"))
		return
	}

	if err := h.validator.ValidatePersonName(req.Name, "name"); err != nil {
		h.writeError(w, pkgErrors.Wrap(err, pkgErrors.ErrValidation, "validation failed"))
		return
	}

	if err := h.validator.ValidatePersonName(req.Surname, "surname"); err != nil {
		h.writeError(w, pkgErrors.Wrap(err, pkgErrors.ErrValidation, "validation failed"))
		return
	}

	if err := h.validator.ValidateStringLength(req.PhoneNumber, "phoneNumber", 5, 20); err != nil {
		h.writeError(w, pkgErrors.Wrap(err, pkgErrors.ErrValidation, "validation failed"))
		return
	}

	user, err := h.userService.Edit(r.Context(), id, domain.RegisterData{
		Email:       req.Email,
		Password:    req.Password,
		Name:        req.Name,
		Surname:     req.Surname,
		PhoneNumber: req.PhoneNumber,
		Address:     req.Address,
	})
	if err != nil {
		h.handleError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, user)
}

// deleteUser удаляет пользователя по ID
func (h *Handler) deleteUser(w http.ResponseWriter, r *http.Request, id int) {
	if err := h.userService.Delete(r.Context(), id); err != nil {
		h.handleError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}
