package test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"AuthUserService/internal/domain"
	handlerhttp "AuthUserService/internal/handler/http"
	"AuthUserService/internal/service"
	"AuthUserService/pkg/health"
	"AuthUserService/pkg/logger"
)

// stubAuthService подменяет сервис аутентификации.
// Ненастроенные операции возвращают service.ErrUnauthenticated.
type stubAuthService struct {
	loginFn    func(ctx context.Context, credentials domain.Credentials) (*service.TokenPair, error)
	registerFn func(ctx context.Context, data domain.RegisterData) (*domain.User, error)
	refreshFn  func(ctx context.Context, refreshToken string) (*service.TokenPair, error)
}

func (s *stubAuthService) Login(ctx context.Context, credentials domain.Credentials) (*service.TokenPair, error) {
	if s.loginFn == nil {
		return nil, service.ErrUnauthenticated
	}
	return s.loginFn(ctx, credentials)
}

func (s *stubAuthService) Register(ctx context.Context, data domain.RegisterData) (*domain.User, error) {
	if s.registerFn == nil {
		return nil, service.ErrRegistrationFail
	}
	return s.registerFn(ctx, data)
}

func (s *stubAuthService) RefreshToken(ctx context.Context, refreshToken string) (*service.TokenPair, error) {
	if s.refreshFn == nil {
		return nil, service.ErrRefreshTokenFail
	}
	return s.refreshFn(ctx, refreshToken)
}

func (s *stubAuthService) Authenticate(ctx context.Context, token string) (*domain.Principal, error) {
	return nil, service.ErrInvalidToken
}

// stubUserService подменяет сервис управления пользователями
type stubUserService struct {
	createFn        func(ctx context.Context, data domain.RegisterData) (*domain.User, error)
	createCheckedFn func(ctx context.Context, data domain.RegisterData) (*domain.User, error)
	editFn          func(ctx context.Context, id int, update domain.RegisterData) (*domain.User, error)
	deleteFn        func(ctx context.Context, id int) error
	getByIDFn       func(ctx context.Context, id int) (*domain.User, error)
	getAllFn        func(ctx context.Context) ([]*domain.User, error)
	currentUserFn   func(ctx context.Context) (*domain.User, error)
	dataForOrderFn  func(ctx context.Context) (*domain.OrderData, error)
}

func (s *stubUserService) Create(ctx context.Context, data domain.RegisterData) (*domain.User, error) {
	return s.createFn(ctx, data)
}

func (s *stubUserService) CreateChecked(ctx context.Context, data domain.RegisterData) (*domain.User, error) {
	return s.createCheckedFn(ctx, data)
}

func (s *stubUserService) Edit(ctx context.Context, id int, update domain.RegisterData) (*domain.User, error) {
	return s.editFn(ctx, id, update)
}

func (s *stubUserService) Delete(ctx context.Context, id int) error {
	return s.deleteFn(ctx, id)
}

func (s *stubUserService) GetByID(ctx context.Context, id int) (*domain.User, error) {
	return s.getByIDFn(ctx, id)
}

func (s *stubUserService) GetAll(ctx context.Context) ([]*domain.User, error) {
	return s.getAllFn(ctx)
}

func (s *stubUserService) CurrentUser(ctx context.Context) (*domain.User, error) {
	return s.currentUserFn(ctx)
}

func (s *stubUserService) DataForOrder(ctx context.Context) (*domain.OrderData, error) {
	return s.dataForOrderFn(ctx)
}

func newHandler(t *testing.T, auth *stubAuthService, users *stubUserService) *handlerhttp.Handler {
	log, err := logger.NewLogger("dev", "error", "handler-test")
	require.NoError(t, err)

	if auth == nil {
		auth = &stubAuthService{}
	}
	if users == nil {
		users = &stubUserService{}
	}

	return handlerhttp.NewHandler(auth, users, health.NewSimpleHealthChecker("test"), nil, log)
}

func jsonBody(t *testing.T, payload interface{}) *bytes.Buffer {
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	return bytes.NewBuffer(body)
}

func asAdmin(req *http.Request) *http.Request {
	ctx := service.WithPrincipal(req.Context(), &domain.Principal{
		Email: "admin@example.com",
		Role:  domain.RoleAdmin,
	})
	return req.WithContext(ctx)
}

func asUser(req *http.Request, email string) *http.Request {
	ctx := service.WithPrincipal(req.Context(), &domain.Principal{
		Email: email,
		Role:  domain.RoleUser,
	})
	return req.WithContext(ctx)
}

func errorCode(t *testing.T, body *bytes.Buffer) string {
	var response struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(body.Bytes(), &response))
	return response.Error.Code
}

func TestHandleLogin_Success(t *testing.T) {
	auth := &stubAuthService{
		loginFn: func(ctx context.Context, credentials domain.Credentials) (*service.TokenPair, error) {
			assert.Equal(t, "user@example.com", credentials.Email)
			return &service.TokenPair{Email: credentials.Email, AccessToken: "access", RefreshToken: "refresh"}, nil
		},
	}
	handler := newHandler(t, auth, nil)

	req := httptest.NewRequest("POST", "/api/auth/log-in", jsonBody(t, map[string]string{
		"email":    "user@example.com",
		"password": "Secret123",
	}))
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var pair service.TokenPair
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &pair))
	assert.Equal(t, "user@example.com", pair.Email)
	assert.Equal(t, "access", pair.AccessToken)
	assert.Equal(t, "refresh", pair.RefreshToken)
}

func TestHandleLogin_MissingFields(t *testing.T) {
	handler := newHandler(t, nil, nil)

	testCases := []map[string]string{
		{"password": "Secret123"},
		{"email": "user@example.com"},
		{},
	}

	for _, body := range testCases {
		req := httptest.NewRequest("POST", "/api/auth/log-in", jsonBody(t, body))
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "VALIDATION_ERROR", errorCode(t, w.Body))
	}
}

func TestHandleLogin_InvalidCredentials(t *testing.T) {
	handler := newHandler(t, &stubAuthService{}, nil)

	req := httptest.NewRequest("POST", "/api/auth/log-in", jsonBody(t, map[string]string{
		"email":    "user@example.com",
		"password": "WrongPass1",
	}))
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "UNAUTHORIZED", errorCode(t, w.Body))
}

func TestHandleLogin_MethodNotAllowed(t *testing.T) {
	handler := newHandler(t, nil, nil)

	req := httptest.NewRequest("GET", "/api/auth/log-in", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestHandleRefreshToken_Success(t *testing.T) {
	auth := &stubAuthService{
		refreshFn: func(ctx context.Context, refreshToken string) (*service.TokenPair, error) {
			assert.Equal(t, "old-refresh", refreshToken)
			return &service.TokenPair{AccessToken: "new-access", RefreshToken: "new-refresh"}, nil
		},
	}
	handler := newHandler(t, auth, nil)

	req := httptest.NewRequest("POST", "/api/auth/refresh", jsonBody(t, map[string]string{
		"email":        "user@example.com",
		"refreshToken": "old-refresh",
	}))
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var pair service.TokenPair
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &pair))
	assert.Equal(t, "new-access", pair.AccessToken)
	assert.Equal(t, "new-refresh", pair.RefreshToken)
}

func TestHandleRefreshToken_Failure(t *testing.T) {
	handler := newHandler(t, &stubAuthService{}, nil)

	req := httptest.NewRequest("POST", "/api/auth/refresh", jsonBody(t, map[string]string{
		"refreshToken": "broken-token",
	}))
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "BAD_REQUEST", errorCode(t, w.Body))
}

func TestHandleRefreshToken_EmptyToken(t *testing.T) {
	handler := newHandler(t, nil, nil)

	req := httptest.NewRequest("POST", "/api/auth/refresh", jsonBody(t, map[string]string{}))
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleRegister_Success(t *testing.T) {
	auth := &stubAuthService{
		registerFn: func(ctx context.Context, data domain.RegisterData) (*domain.User, error) {
			assert.Equal(t, domain.RoleUser, data.Role)
			return &domain.User{ID: 1, Email: data.Email}, nil
		},
	}
	handler := newHandler(t, auth, nil)

	req := httptest.NewRequest("POST", "/api/auth/register", jsonBody(t, map[string]string{
		"email":       "new@example.com",
		"password":    "Secret123",
		"name":        "Ivan",
		"surname":     "Petrov",
		"phoneNumber": "+70000000001",
	}))
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)

	var user domain.User
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &user))
	assert.Equal(t, 1, user.ID)
	assert.Equal(t, "new@example.com", user.Email)
}

func TestHandleRegister_ValidationFailure(t *testing.T) {
	handler := newHandler(t, nil, nil)

	testCases := []struct {
		name string
		body map[string]string
	}{
		{"некорректный email", map[string]string{
			"email": "not-an-email", "password": "Secret123",
			"name": "Ivan", "surname": "Petrov", "phoneNumber": "+70000000001",
		}},
		{"слабый пароль", map[string]string{
			"email": "new@example.com", "password": "weak",
			"name": "Ivan", "surname": "Petrov", "phoneNumber": "+70000000001",
		}},
		{"имя со строчной буквы", map[string]string{
			"email": "new@example.com", "password": "Secret123",
			"name": "ivan", "surname": "Petrov", "phoneNumber": "+70000000001",
		}},
		{"короткий телефон", map[string]string{
			"email": "new@example.com", "password": "Secret123",
			"name": "Ivan", "surname": "Petrov", "phoneNumber": "123",
		}},
		{"неизвестная роль", map[string]string{
			"email": "new@example.com", "password": "Secret123",
			"name": "Ivan", "surname": "Petrov", "phoneNumber": "+70000000001",
			"roleType": "SUPERVISOR",
		}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/api/auth/register", jsonBody(t, tc.body))
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, "VALIDATION_ERROR", errorCode(t, w.Body))
		})
	}
}

func TestHandleRegister_Duplicate(t *testing.T) {
	auth := &stubAuthService{
		registerFn: func(ctx context.Context, data domain.RegisterData) (*domain.User, error) {
			return nil, service.ErrUserAlreadyExists
		},
	}
	handler := newHandler(t, auth, nil)

	req := httptest.NewRequest("POST", "/api/auth/register", jsonBody(t, map[string]string{
		"email":       "taken@example.com",
		"password":    "Secret123",
		"name":        "Ivan",
		"surname":     "Petrov",
		"phoneNumber": "+70000000001",
	}))
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	// Дубликат отдается как 400: контракт не различает конфликт
	// и прочие ошибки запроса
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "CONFLICT", errorCode(t, w.Body))
}

func TestHandleRegister_ServiceFailure(t *testing.T) {
	auth := &stubAuthService{
		registerFn: func(ctx context.Context, data domain.RegisterData) (*domain.User, error) {
			return nil, service.ErrRegistrationFail
		},
	}
	handler := newHandler(t, auth, nil)

	req := httptest.NewRequest("POST", "/api/auth/register", jsonBody(t, map[string]string{
		"email":       "new@example.com",
		"password":    "Secret123",
		"name":        "Ivan",
		"surname":     "Petrov",
		"phoneNumber": "+70000000001",
	}))
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "BAD_REQUEST", errorCode(t, w.Body))
}

func TestHandleListUsers_AdminOnly(t *testing.T) {
	users := &stubUserService{
		getAllFn: func(ctx context.Context) ([]*domain.User, error) {
			return []*domain.User{{ID: 1}, {ID: 2}}, nil
		},
	}
	handler := newHandler(t, nil, users)

	// Администратору список доступен
	req := asAdmin(httptest.NewRequest("GET", "/api/users", nil))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var list []*domain.User
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Len(t, list, 2)

	// Обычному пользователю запрещено
	req = asUser(httptest.NewRequest("GET", "/api/users", nil), "user@example.com")
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)

	// Без principal отказ по аутентификации
	req = httptest.NewRequest("GET", "/api/users", nil)
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHandleCreateUser_Admin(t *testing.T) {
	users := &stubUserService{
		createCheckedFn: func(ctx context.Context, data domain.RegisterData) (*domain.User, error) {
			assert.Equal(t, domain.RoleAdmin, data.Role)
			return &domain.User{ID: 7, Email: data.Email}, nil
		},
	}
	handler := newHandler(t, nil, users)

	req := asAdmin(httptest.NewRequest("POST", "/api/users/create", jsonBody(t, map[string]string{
		"email":       "new-admin@example.com",
		"password":    "Secret123",
		"name":        "Anna",
		"surname":     "Orlova",
		"phoneNumber": "+70000000002",
		"roleType":    "ADMIN",
	})))
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
}

func TestHandleGetUser_Admin(t *testing.T) {
	users := &stubUserService{
		getByIDFn: func(ctx context.Context, id int) (*domain.User, error) {
			assert.Equal(t, 5, id)
			return &domain.User{ID: 5, Email: "user@example.com"}, nil
		},
	}
	handler := newHandler(t, nil, users)

	req := asAdmin(httptest.NewRequest("GET", "/api/users/5", nil))
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var user domain.User
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &user))
	assert.Equal(t, 5, user.ID)
}

func TestHandleGetUser_NotFound(t *testing.T) {
	users := &stubUserService{
		getByIDFn: func(ctx context.Context, id int) (*domain.User, error) {
			return nil, service.ErrUserNotFound
		},
	}
	handler := newHandler(t, nil, users)

	req := asAdmin(httptest.NewRequest("GET", "/api/users/99", nil))
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", errorCode(t, w.Body))
}

func TestHandleUserByID_InvalidID(t *testing.T) {
	handler := newHandler(t, nil, nil)

	req := asAdmin(httptest.NewRequest("GET", "/api/users/abc", nil))
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleEditUser_Owner(t *testing.T) {
	users := &stubUserService{
		editFn: func(ctx context.Context, id int, update domain.RegisterData) (*domain.User, error) {
			assert.Equal(t, 5, id)
			assert.Equal(t, "New street 2", update.Address)
			return &domain.User{ID: 5, Email: update.Email, Address: update.Address}, nil
		},
	}
	handler := newHandler(t, nil, users)

	req := asUser(httptest.NewRequest("PUT", "/api/users/5", jsonBody(t, map[string]string{
		"email":       "user@example.com",
		"name":        "Ivan",
		"surname":     "Petrov",
		"phoneNumber": "+70000000001",
		"address":     "New street 2",
	})), "user@example.com")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
}

func TestHandleEditUser_InvalidPhone(t *testing.T) {
	// Телефон проверяется и при редактировании: слишком короткое
	// значение не доходит до сервиса
	called := false
	users := &stubUserService{
		editFn: func(ctx context.Context, id int, update domain.RegisterData) (*domain.User, error) {
			called = true
			return nil, nil
		},
	}
	handler := newHandler(t, nil, users)

	req := asUser(httptest.NewRequest("PUT", "/api/users/5", jsonBody(t, map[string]string{
		"email":       "user@example.com",
		"name":        "Ivan",
		"surname":     "Petrov",
		"phoneNumber": "123",
	})), "user@example.com")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", errorCode(t, w.Body))
	assert.False(t, called)
}

func TestHandleEditUser_Forbidden(t *testing.T) {
	users := &stubUserService{
		editFn: func(ctx context.Context, id int, update domain.RegisterData) (*domain.User, error) {
			return nil, service.ErrForbidden
		},
	}
	handler := newHandler(t, nil, users)

	req := asUser(httptest.NewRequest("PUT", "/api/users/5", jsonBody(t, map[string]string{
		"email":       "victim@example.com",
		"name":        "Ivan",
		"surname":     "Petrov",
		"phoneNumber": "+70000000001",
	})), "attacker@example.com")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "FORBIDDEN", errorCode(t, w.Body))
}

func TestHandleDeleteUser_Admin(t *testing.T) {
	deleted := 0
	users := &stubUserService{
		deleteFn: func(ctx context.Context, id int) error {
			deleted = id
			return nil
		},
	}
	handler := newHandler(t, nil, users)

	req := asAdmin(httptest.NewRequest("DELETE", "/api/users/5", nil))
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 5, deleted)

	var response map[string]bool
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.True(t, response["success"])
}

func TestHandleDeleteUser_Failure(t *testing.T) {
	// Любой сбой удаления, включая несуществующий ID, дает 400
	users := &stubUserService{
		deleteFn: func(ctx context.Context, id int) error {
			return service.ErrDeleteUserFail
		},
	}
	handler := newHandler(t, nil, users)

	req := asAdmin(httptest.NewRequest("DELETE", "/api/users/99", nil))
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "BAD_REQUEST", errorCode(t, w.Body))
}

func TestHandleDeleteUser_UserForbidden(t *testing.T) {
	handler := newHandler(t, nil, nil)

	req := asUser(httptest.NewRequest("DELETE", "/api/users/5", nil), "user@example.com")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestHandleCurrentUser(t *testing.T) {
	users := &stubUserService{
		currentUserFn: func(ctx context.Context) (*domain.User, error) {
			principal, err := service.PrincipalFromContext(ctx)
			if err != nil {
				return nil, err
			}
			return &domain.User{ID: 5, Email: principal.Email}, nil
		},
	}
	handler := newHandler(t, nil, users)

	req := asUser(httptest.NewRequest("GET", "/api/users/currently-logged-in", nil), "user@example.com")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var user domain.User
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &user))
	assert.Equal(t, "user@example.com", user.Email)
}

func TestHandleDataForOrder(t *testing.T) {
	users := &stubUserService{
		dataForOrderFn: func(ctx context.Context) (*domain.OrderData, error) {
			return &domain.OrderData{Address: "Main street 1", PhoneNumber: "+70000000001"}, nil
		},
	}
	handler := newHandler(t, nil, users)

	req := asUser(httptest.NewRequest("GET", "/api/users/client/data-for-order", nil), "user@example.com")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var data domain.OrderData
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &data))
	assert.Equal(t, "Main street 1", data.Address)
	assert.Equal(t, "+70000000001", data.PhoneNumber)
}

func TestHealthEndpoints(t *testing.T) {
	handler := newHandler(t, nil, nil)

	for _, path := range []string{"/health", "/ready", "/live"} {
		req := httptest.NewRequest("GET", path, nil)
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code, "path: %s", path)
	}
}
