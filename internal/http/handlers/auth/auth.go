// Package auth реализует HTTP-обработчики регистрации, активации аккаунта,
// восстановления пароля, выпуска JWT и удаления аккаунта.
package auth

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/audio-library/internal/http/middlewarectx"
	"github.com/magabrotheeeer/audio-library/internal/http/request"
	"github.com/magabrotheeeer/audio-library/internal/http/response"
	"github.com/magabrotheeeer/audio-library/internal/lib/sl"
	"github.com/magabrotheeeer/audio-library/internal/models"
)

// Service описывает бизнес-логику учётных записей.
type Service interface {
	Register(ctx context.Context, req models.RegisterRequest) (*models.User, error)
	Activate(ctx context.Context, uid, token string) error
	ResendActivation(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, email string) error
	ResetPasswordConfirm(ctx context.Context, uid, token, newPassword string) error
	SetPassword(ctx context.Context, userID int64, currentPassword, newPassword string) error
	Login(ctx context.Context, email, password string) (models.TokenPair, error)
	Refresh(ctx context.Context, refresh string) (models.TokenPair, error)
	Verify(ctx context.Context, token string) error
	DeleteMe(ctx context.Context, userID int64) error
}

// Handler обрабатывает запросы /auth и DELETE /me.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// Register godoc
// @Summary Регистрация пользователя
// @Description Создаёт неактивного пользователя с профилем и отправляет письмо активации.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body models.RegisterRequest true "Данные пользователя"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.ErrorResponse "Пароли не совпадают"
// @Failure 409 {object} response.ErrorResponse "Email уже занят"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /auth/users [post]
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	log := request.Logger(h.log, r, "handlers.auth.Register")

	var req models.RegisterRequest
	if !request.DecodeJSON(w, r, log, h.validate, &req) {
		return
	}

	user, err := h.service.Register(r.Context(), req)
	if err != nil {
		log.Error("failed to register user", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}

	log.Info("user registered", sl.ID("user_id", user.ID))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"id":         user.ID,
		"email":      user.Email,
		"first_name": user.FirstName,
		"last_name":  user.LastName,
	}))
}

// Activation godoc
// @Summary Активация аккаунта
// @Tags Auth
// @Accept json
// @Param request body models.ActivationRequest true "uid и token из письма"
// @Success 204
// @Failure 401 {object} response.ErrorResponse "Неверный или просроченный токен"
// @Router /auth/users/activation [post]
func (h *Handler) Activation(w http.ResponseWriter, r *http.Request) {
	log := request.Logger(h.log, r, "handlers.auth.Activation")

	var req models.ActivationRequest
	if !request.DecodeJSON(w, r, log, h.validate, &req) {
		return
	}
	if err := h.service.Activate(r.Context(), req.UID, req.Token); err != nil {
		log.Warn("activation failed", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}
	render.NoContent(w, r)
}

// ResendActivation godoc
// @Summary Повторная отправка письма активации
// @Tags Auth
// @Accept json
// @Param request body models.EmailRequest true "Email"
// @Success 204
// @Router /auth/users/resend_activation [post]
func (h *Handler) ResendActivation(w http.ResponseWriter, r *http.Request) {
	log := request.Logger(h.log, r, "handlers.auth.ResendActivation")

	var req models.EmailRequest
	if !request.DecodeJSON(w, r, log, h.validate, &req) {
		return
	}
	if err := h.service.ResendActivation(r.Context(), req.Email); err != nil {
		log.Error("failed to resend activation", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}
	render.NoContent(w, r)
}

// ResetPassword godoc
// @Summary Запрос на сброс пароля
// @Tags Auth
// @Accept json
// @Param request body models.EmailRequest true "Email"
// @Success 204
// @Router /auth/users/reset_password [post]
func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	log := request.Logger(h.log, r, "handlers.auth.ResetPassword")

	var req models.EmailRequest
	if !request.DecodeJSON(w, r, log, h.validate, &req) {
		return
	}
	if err := h.service.ResetPassword(r.Context(), req.Email); err != nil {
		log.Error("failed to reset password", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}
	render.NoContent(w, r)
}

// ResetPasswordConfirm godoc
// @Summary Установка нового пароля по ссылке из письма
// @Tags Auth
// @Accept json
// @Param request body models.ResetPasswordConfirmRequest true "uid, token и новый пароль"
// @Success 204
// @Failure 401 {object} response.ErrorResponse "Неверный или просроченный токен"
// @Router /auth/users/reset_password_confirm [post]
func (h *Handler) ResetPasswordConfirm(w http.ResponseWriter, r *http.Request) {
	log := request.Logger(h.log, r, "handlers.auth.ResetPasswordConfirm")

	var req models.ResetPasswordConfirmRequest
	if !request.DecodeJSON(w, r, log, h.validate, &req) {
		return
	}
	if err := h.service.ResetPasswordConfirm(r.Context(), req.UID, req.Token, req.NewPassword); err != nil {
		log.Warn("password reset confirm failed", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}
	render.NoContent(w, r)
}

// SetPassword godoc
// @Summary Смена пароля
// @Tags Auth
// @Accept json
// @Param request body models.SetPasswordRequest true "Текущий и новый пароль"
// @Success 204
// @Failure 403 {object} response.ErrorResponse "Неверный текущий пароль"
// @Security BearerAuth
// @Router /auth/users/set_password [post]
func (h *Handler) SetPassword(w http.ResponseWriter, r *http.Request) {
	log := request.Logger(h.log, r, "handlers.auth.SetPassword")

	var req models.SetPasswordRequest
	if !request.DecodeJSON(w, r, log, h.validate, &req) {
		return
	}
	userID := middlewarectx.UserIDFromContext(r.Context())
	if err := h.service.SetPassword(r.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		log.Warn("failed to set password", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}
	render.NoContent(w, r)
}

// CreateJWT godoc
// @Summary Выпуск access и refresh токенов
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body models.LoginRequest true "Учетные данные пользователя"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.ErrorResponse "Аккаунт не активирован"
// @Failure 403 {object} response.ErrorResponse "Неверный пароль"
// @Failure 404 {object} response.ErrorResponse "Пользователь не найден"
// @Router /auth/jwt/create [post]
func (h *Handler) CreateJWT(w http.ResponseWriter, r *http.Request) {
	log := request.Logger(h.log, r, "handlers.auth.CreateJWT")

	var req models.LoginRequest
	if !request.DecodeJSON(w, r, log, h.validate, &req) {
		return
	}
	pair, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		log.Warn("login failed", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}
	log.Info("login success")
	render.JSON(w, r, response.StatusOKWithData(pair))
}

// RefreshJWT godoc
// @Summary Обновление access-токена
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body models.RefreshRequest true "Refresh-токен"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.ErrorResponse "Неверный или просроченный токен"
// @Router /auth/jwt/refresh [post]
func (h *Handler) RefreshJWT(w http.ResponseWriter, r *http.Request) {
	log := request.Logger(h.log, r, "handlers.auth.RefreshJWT")

	var req models.RefreshRequest
	if !request.DecodeJSON(w, r, log, h.validate, &req) {
		return
	}
	pair, err := h.service.Refresh(r.Context(), req.Refresh)
	if err != nil {
		log.Warn("refresh failed", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}
	render.JSON(w, r, response.StatusOKWithData(pair))
}

// VerifyJWT godoc
// @Summary Проверка токена
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body models.VerifyRequest true "Токен"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.ErrorResponse "Неверный или просроченный токен"
// @Router /auth/jwt/verify [post]
func (h *Handler) VerifyJWT(w http.ResponseWriter, r *http.Request) {
	log := request.Logger(h.log, r, "handlers.auth.VerifyJWT")

	var req models.VerifyRequest
	if !request.DecodeJSON(w, r, log, h.validate, &req) {
		return
	}
	if err := h.service.Verify(r.Context(), req.Token); err != nil {
		log.Warn("token verification failed", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}
	render.JSON(w, r, response.OK())
}

// DeleteMe godoc
// @Summary Удаление своего аккаунта со всеми данными
// @Tags Auth
// @Success 204
// @Security BearerAuth
// @Router /me [delete]
func (h *Handler) DeleteMe(w http.ResponseWriter, r *http.Request) {
	log := request.Logger(h.log, r, "handlers.auth.DeleteMe")

	userID := middlewarectx.UserIDFromContext(r.Context())
	if err := h.service.DeleteMe(r.Context(), userID); err != nil {
		log.Error("failed to delete account", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}
	log.Info("account deleted", sl.ID("user_id", userID))
	render.NoContent(w, r)
}
