// Package authors реализует публичные HTTP-обработчики авторов и подписок на них.
package authors

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/audio-library/internal/http/middlewarectx"
	"github.com/magabrotheeeer/audio-library/internal/http/request"
	"github.com/magabrotheeeer/audio-library/internal/http/response"
	"github.com/magabrotheeeer/audio-library/internal/lib/sl"
	"github.com/magabrotheeeer/audio-library/internal/models"
)

// Service описывает чтение публичных данных авторов.
type Service interface {
	ListAuthors(ctx context.Context, params models.ListParams) (*models.Page[*models.Author], error)
	GetAuthor(ctx context.Context, id int64) (*models.Author, error)
	ListFollowers(ctx context.Context, authorID int64, params models.ListParams) (*models.Page[*models.Author], error)
	ListFollowing(ctx context.Context, authorID int64, params models.ListParams) (*models.Page[*models.Author], error)
}

// Follower описывает подписки между пользователями.
type Follower interface {
	Follow(ctx context.Context, requesterID, targetID int64) (models.FollowResult, error)
	Unfollow(ctx context.Context, requesterID, targetID int64) error
}

// Handler обрабатывает запросы /authors.
type Handler struct {
	log      *slog.Logger
	service  Service
	follower Follower
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service, follower Follower) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		follower: follower,
	}
}

// List godoc
// @Summary Список авторов
// @Tags Authors
// @Produce json
// @Param search query string false "Поиск по имени"
// @Param page query int false "Номер страницы"
// @Param page_size query int false "Размер страницы"
// @Success 200 {object} response.Response
// @Router /authors [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	log := request.Logger(h.log, r, "handlers.authors.List")

	page, err := h.service.ListAuthors(r.Context(), request.List(r))
	if err != nil {
		log.Error("failed to list authors", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}
	render.JSON(w, r, response.StatusOKWithData(page))
}

// Get godoc
// @Summary Автор со ссылками и счётчиками подписок
// @Tags Authors
// @Produce json
// @Param id path int true "ID автора"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse "Автор не найден"
// @Router /authors/{id} [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	log := request.Logger(h.log, r, "handlers.authors.Get")

	id, ok := request.PathID(w, r, log, "id")
	if !ok {
		return
	}
	author, err := h.service.GetAuthor(r.Context(), id)
	if err != nil {
		log.Warn("failed to get author", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}
	render.JSON(w, r, response.StatusOKWithData(author))
}

// Followers godoc
// @Summary Подписчики автора
// @Tags Authors
// @Produce json
// @Param id path int true "ID автора"
// @Success 200 {object} response.Response
// @Router /authors/{id}/followers [get]
func (h *Handler) Followers(w http.ResponseWriter, r *http.Request) {
	log := request.Logger(h.log, r, "handlers.authors.Followers")

	id, ok := request.PathID(w, r, log, "id")
	if !ok {
		return
	}
	page, err := h.service.ListFollowers(r.Context(), id, request.List(r))
	if err != nil {
		log.Warn("failed to list followers", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}
	render.JSON(w, r, response.StatusOKWithData(page))
}

// Following godoc
// @Summary Авторы, на которых подписан автор
// @Tags Authors
// @Produce json
// @Param id path int true "ID автора"
// @Success 200 {object} response.Response
// @Router /authors/{id}/following [get]
func (h *Handler) Following(w http.ResponseWriter, r *http.Request) {
	log := request.Logger(h.log, r, "handlers.authors.Following")

	id, ok := request.PathID(w, r, log, "id")
	if !ok {
		return
	}
	page, err := h.service.ListFollowing(r.Context(), id, request.List(r))
	if err != nil {
		log.Warn("failed to list following", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}
	render.JSON(w, r, response.StatusOKWithData(page))
}

// Follow godoc
// @Summary Подписка на автора
// @Description Подписка на себя и повторная подписка не ошибка: 200 с пояснением.
// @Tags Authors
// @Produce json
// @Param id path int true "ID автора"
// @Success 201 {object} response.Response
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse "Автор не найден"
// @Security BearerAuth
// @Router /authors/{id}/follow [post]
func (h *Handler) Follow(w http.ResponseWriter, r *http.Request) {
	log := request.Logger(h.log, r, "handlers.authors.Follow")

	id, ok := request.PathID(w, r, log, "id")
	if !ok {
		return
	}
	res, err := h.follower.Follow(r.Context(), middlewarectx.UserIDFromContext(r.Context()), id)
	if err != nil {
		log.Warn("failed to follow", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}
	if res.Created {
		render.Status(r, http.StatusCreated)
	}
	render.JSON(w, r, response.StatusOKWithData(response.Message{Detail: res.Message}))
}

// Unfollow godoc
// @Summary Отписка от автора
// @Tags Authors
// @Param id path int true "ID автора"
// @Success 204
// @Failure 404 {object} response.ErrorResponse "Подписки нет"
// @Security BearerAuth
// @Router /authors/{id}/follow [delete]
func (h *Handler) Unfollow(w http.ResponseWriter, r *http.Request) {
	log := request.Logger(h.log, r, "handlers.authors.Unfollow")

	id, ok := request.PathID(w, r, log, "id")
	if !ok {
		return
	}
	if err := h.follower.Unfollow(r.Context(), middlewarectx.UserIDFromContext(r.Context()), id); err != nil {
		log.Warn("failed to unfollow", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}
	render.NoContent(w, r)
}
