// Package profile реализует HTTP-обработчики профиля текущего пользователя,
// его ссылок на соцсети и подписки на рассылку.
package profile

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

// Service описывает бизнес-логику профиля.
type Service interface {
	GetProfile(ctx context.Context, userID int64) (*models.Profile, error)
	UpdateProfile(ctx context.Context, userID int64, in models.ProfileInput) (*models.Profile, error)
	ListSocialLinks(ctx context.Context, userID int64) ([]*models.SocialLink, error)
	CreateSocialLink(ctx context.Context, userID int64, link string) (*models.SocialLink, error)
	UpdateSocialLink(ctx context.Context, userID, id int64, link string) (*models.SocialLink, error)
	DeleteSocialLink(ctx context.Context, userID, id int64) error
	SetNewsletter(ctx context.Context, userID int64, subscribed bool) (string, error)
}

// Handler обрабатывает запросы /me/profile, /me/social-links и /me/newsletter.
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

// Get godoc
// @Summary Профиль текущего пользователя
// @Tags Profile
// @Produce json
// @Success 200 {object} response.Response
// @Security BearerAuth
// @Router /me/profile [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	log := request.Logger(h.log, r, "handlers.profile.Get")

	profile, err := h.service.GetProfile(r.Context(), middlewarectx.UserIDFromContext(r.Context()))
	if err != nil {
		log.Error("failed to get profile", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}
	render.JSON(w, r, response.StatusOKWithData(profile))
}

// Update godoc
// @Summary Изменение профиля
// @Tags Profile
// @Accept multipart/form-data
// @Produce json
// @Param country formData string false "Страна"
// @Param city formData string false "Город"
// @Param bio formData string false "О себе"
// @Param display_name formData string false "Отображаемое имя"
// @Param avatar formData file false "Аватар, jpg"
// @Success 200 {object} response.Response
// @Security BearerAuth
// @Router /me/profile [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	log := request.Logger(h.log, r, "handlers.profile.Update")

	form, err := request.ParseForm(r)
	if err != nil {
		log.Warn("invalid form", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error(err.Error()))
		return
	}
	defer form.Close()

	avatar, err := form.File("avatar")
	if err != nil {
		log.Warn("invalid avatar", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error(err.Error()))
		return
	}
	in := models.ProfileInput{
		Country:     form.String("country"),
		City:        form.String("city"),
		Bio:         form.String("bio"),
		DisplayName: form.String("display_name"),
		Avatar:      avatar,
	}
	if err := h.validate.Struct(in); err != nil {
		response.RenderValidation(w, r, err)
		return
	}

	profile, err := h.service.UpdateProfile(r.Context(), middlewarectx.UserIDFromContext(r.Context()), in)
	if err != nil {
		log.Error("failed to update profile", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}
	render.JSON(w, r, response.StatusOKWithData(profile))
}

// ListSocialLinks godoc
// @Summary Ссылки на соцсети
// @Tags Profile
// @Produce json
// @Success 200 {object} response.Response
// @Security BearerAuth
// @Router /me/social-links [get]
func (h *Handler) ListSocialLinks(w http.ResponseWriter, r *http.Request) {
	log := request.Logger(h.log, r, "handlers.profile.ListSocialLinks")

	links, err := h.service.ListSocialLinks(r.Context(), middlewarectx.UserIDFromContext(r.Context()))
	if err != nil {
		log.Error("failed to list social links", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}
	render.JSON(w, r, response.StatusOKWithData(links))
}

// CreateSocialLink godoc
// @Summary Новая ссылка на соцсеть
// @Tags Profile
// @Accept json
// @Produce json
// @Param request body models.SocialLinkInput true "Ссылка"
// @Success 201 {object} response.Response
// @Security BearerAuth
// @Router /me/social-links [post]
func (h *Handler) CreateSocialLink(w http.ResponseWriter, r *http.Request) {
	log := request.Logger(h.log, r, "handlers.profile.CreateSocialLink")

	var req models.SocialLinkInput
	if !request.DecodeJSON(w, r, log, h.validate, &req) {
		return
	}
	link, err := h.service.CreateSocialLink(r.Context(), middlewarectx.UserIDFromContext(r.Context()), req.Link)
	if err != nil {
		log.Error("failed to create social link", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.StatusOKWithData(link))
}

// UpdateSocialLink godoc
// @Summary Изменение ссылки на соцсеть
// @Tags Profile
// @Accept json
// @Produce json
// @Param id path int true "ID ссылки"
// @Param request body models.SocialLinkInput true "Ссылка"
// @Success 200 {object} response.Response
// @Security BearerAuth
// @Router /me/social-links/{id} [put]
func (h *Handler) UpdateSocialLink(w http.ResponseWriter, r *http.Request) {
	log := request.Logger(h.log, r, "handlers.profile.UpdateSocialLink")

	id, ok := request.PathID(w, r, log, "id")
	if !ok {
		return
	}
	var req models.SocialLinkInput
	if !request.DecodeJSON(w, r, log, h.validate, &req) {
		return
	}
	link, err := h.service.UpdateSocialLink(r.Context(), middlewarectx.UserIDFromContext(r.Context()), id, req.Link)
	if err != nil {
		log.Warn("failed to update social link", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}
	render.JSON(w, r, response.StatusOKWithData(link))
}

// DeleteSocialLink godoc
// @Summary Удаление ссылки на соцсеть
// @Tags Profile
// @Param id path int true "ID ссылки"
// @Success 204
// @Security BearerAuth
// @Router /me/social-links/{id} [delete]
func (h *Handler) DeleteSocialLink(w http.ResponseWriter, r *http.Request) {
	log := request.Logger(h.log, r, "handlers.profile.DeleteSocialLink")

	id, ok := request.PathID(w, r, log, "id")
	if !ok {
		return
	}
	if err := h.service.DeleteSocialLink(r.Context(), middlewarectx.UserIDFromContext(r.Context()), id); err != nil {
		log.Warn("failed to delete social link", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}
	render.NoContent(w, r)
}

// Subscribe godoc
// @Summary Подписка на рассылку
// @Tags Profile
// @Produce json
// @Success 200 {object} response.Response
// @Security BearerAuth
// @Router /me/newsletter [post]
func (h *Handler) Subscribe(w http.ResponseWriter, r *http.Request) {
	h.setNewsletter(w, r, true)
}

// Unsubscribe godoc
// @Summary Отписка от рассылки
// @Tags Profile
// @Produce json
// @Success 200 {object} response.Response
// @Security BearerAuth
// @Router /me/newsletter [delete]
func (h *Handler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	h.setNewsletter(w, r, false)
}

func (h *Handler) setNewsletter(w http.ResponseWriter, r *http.Request, subscribed bool) {
	log := request.Logger(h.log, r, "handlers.profile.setNewsletter")

	msg, err := h.service.SetNewsletter(r.Context(), middlewarectx.UserIDFromContext(r.Context()), subscribed)
	if err != nil {
		log.Error("failed to change newsletter subscription", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}
	render.JSON(w, r, response.StatusOKWithData(response.Message{Detail: msg}))
}
