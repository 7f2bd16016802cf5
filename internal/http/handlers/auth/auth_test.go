package auth

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/audio-library/internal/http/middlewarectx"
	"github.com/magabrotheeeer/audio-library/internal/models"
)

// MockService реализует интерфейс auth.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	args := m.Called(ctx, req)
	if res := args.Get(0); res != nil {
		return res.(*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockService) Activate(ctx context.Context, uid, token string) error {
	return m.Called(ctx, uid, token).Error(0)
}

func (m *MockService) ResendActivation(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}

func (m *MockService) ResetPassword(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}

func (m *MockService) ResetPasswordConfirm(ctx context.Context, uid, token, newPassword string) error {
	return m.Called(ctx, uid, token, newPassword).Error(0)
}

func (m *MockService) SetPassword(ctx context.Context, userID int64, currentPassword, newPassword string) error {
	return m.Called(ctx, userID, currentPassword, newPassword).Error(0)
}

func (m *MockService) Login(ctx context.Context, email, password string) (models.TokenPair, error) {
	args := m.Called(ctx, email, password)
	return args.Get(0).(models.TokenPair), args.Error(1)
}

func (m *MockService) Refresh(ctx context.Context, refresh string) (models.TokenPair, error) {
	args := m.Called(ctx, refresh)
	return args.Get(0).(models.TokenPair), args.Error(1)
}

func (m *MockService) Verify(ctx context.Context, token string) error {
	return m.Called(ctx, token).Error(0)
}

func (m *MockService) DeleteMe(ctx context.Context, userID int64) error {
	return m.Called(ctx, userID).Error(0)
}

func newRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Post("/auth/users", h.Register)
	r.Post("/auth/users/activation", h.Activation)
	r.Post("/auth/users/reset_password", h.ResetPassword)
	r.Post("/auth/users/set_password", h.SetPassword)
	r.Post("/auth/jwt/create", h.CreateJWT)
	r.Post("/auth/jwt/refresh", h.RefreshJWT)
	r.Post("/auth/jwt/verify", h.VerifyJWT)
	r.Delete("/me", h.DeleteMe)
	return r
}

func TestAuthHandlers(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name           string
		method         string
		url            string
		body           string
		userID         int64
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "успешная регистрация",
			url:  "/auth/users",
			body: `{"email":"a@b.c","password":"password1","re_password":"password1","first_name":"Ann"}`,
			setupMock: func(m *MockService) {
				m.On("Register", mock.Anything, models.RegisterRequest{
					Email: "a@b.c", Password: "password1", RePassword: "password1", FirstName: "Ann",
				}).Return(&models.User{ID: 5, Email: "a@b.c", FirstName: "Ann"}, nil)
			},
			expectedStatus: http.StatusCreated,
			expectedBody:   `"id":5`,
		},
		{
			name:           "регистрация с невалидным email",
			url:            "/auth/users",
			body:           `{"email":"nope","password":"password1","re_password":"password1"}`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `email`,
		},
		{
			name: "email уже занят",
			url:  "/auth/users",
			body: `{"email":"a@b.c","password":"password1","re_password":"password1"}`,
			setupMock: func(m *MockService) {
				m.On("Register", mock.Anything, mock.Anything).Return(nil, models.ErrEmailTaken)
			},
			expectedStatus: http.StatusConflict,
			expectedBody:   models.ErrEmailTaken.Error(),
		},
		{
			name:           "битое тело запроса",
			url:            "/auth/users",
			body:           `{"email":`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `invalid request body`,
		},
		{
			name: "активация",
			url:  "/auth/users/activation",
			body: `{"uid":"NQ","token":"tok"}`,
			setupMock: func(m *MockService) {
				m.On("Activate", mock.Anything, "NQ", "tok").Return(nil)
			},
			expectedStatus: http.StatusNoContent,
		},
		{
			name: "активация с просроченным токеном",
			url:  "/auth/users/activation",
			body: `{"uid":"NQ","token":"old"}`,
			setupMock: func(m *MockService) {
				m.On("Activate", mock.Anything, "NQ", "old").Return(models.ErrInvalidToken)
			},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   models.ErrInvalidToken.Error(),
		},
		{
			name: "сброс пароля",
			url:  "/auth/users/reset_password",
			body: `{"email":"a@b.c"}`,
			setupMock: func(m *MockService) {
				m.On("ResetPassword", mock.Anything, "a@b.c").Return(nil)
			},
			expectedStatus: http.StatusNoContent,
		},
		{
			name:   "смена пароля с неверным текущим",
			url:    "/auth/users/set_password",
			body:   `{"current_password":"wrong-pass","new_password":"password2"}`,
			userID: 5,
			setupMock: func(m *MockService) {
				m.On("SetPassword", mock.Anything, int64(5), "wrong-pass", "password2").Return(models.ErrInvalidCredentials)
			},
			expectedStatus: http.StatusForbidden,
		},
		{
			name: "выпуск токенов",
			url:  "/auth/jwt/create",
			body: `{"email":"a@b.c","password":"password1"}`,
			setupMock: func(m *MockService) {
				m.On("Login", mock.Anything, "a@b.c", "password1").
					Return(models.TokenPair{Access: "acc", Refresh: "ref"}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"access":"acc"`,
		},
		{
			name: "вход в неактивный аккаунт",
			url:  "/auth/jwt/create",
			body: `{"email":"a@b.c","password":"password1"}`,
			setupMock: func(m *MockService) {
				m.On("Login", mock.Anything, "a@b.c", "password1").
					Return(models.TokenPair{}, models.ErrUserInactive)
			},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name: "обновление токена",
			url:  "/auth/jwt/refresh",
			body: `{"refresh":"ref"}`,
			setupMock: func(m *MockService) {
				m.On("Refresh", mock.Anything, "ref").Return(models.TokenPair{Access: "new"}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"access":"new"`,
		},
		{
			name: "проверка токена",
			url:  "/auth/jwt/verify",
			body: `{"token":"acc"}`,
			setupMock: func(m *MockService) {
				m.On("Verify", mock.Anything, "acc").Return(nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"status":"OK"`,
		},
		{
			name:   "удаление аккаунта",
			method: http.MethodDelete,
			url:    "/me",
			userID: 5,
			setupMock: func(m *MockService) {
				m.On("DeleteMe", mock.Anything, int64(5)).Return(nil)
			},
			expectedStatus: http.StatusNoContent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			method := tt.method
			if method == "" {
				method = http.MethodPost
			}
			req := httptest.NewRequest(method, tt.url, strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			if tt.userID != 0 {
				req = req.WithContext(context.WithValue(req.Context(), middlewarectx.UserID, tt.userID))
			}
			w := httptest.NewRecorder()

			newRouter(New(logger, mockService)).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
			mockService.AssertExpectations(t)
		})
	}
}
