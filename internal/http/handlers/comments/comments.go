// Package comments реализует HTTP-обработчики комментариев к трекам.
package comments

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

// Service описывает бизнес-логику комментариев.
type Service interface {
	ListMine(ctx context.Context, requesterID int64, params models.ListParams) (*models.Page[*models.Comment], error)
	ListByTrack(ctx context.Context, requesterID, trackID int64, params models.ListParams) (*models.Page[*models.Comment], error)
	Create(ctx context.Context, requesterID int64, in models.CommentInput) (*models.Comment, error)
	Update(ctx context.Context, requesterID, id int64, in models.CommentUpdate) (*models.Comment, error)
	Delete(ctx context.Context, requesterID, id int64) error
}

// Handler обрабатывает запросы комментариев.
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

// ListMine godoc
// @Summary Комментарии текущего пользователя
// @Tags Comments
// @Produce json
// @Success 200 {object} response.Response
// @Security BearerAuth
// @Router /me/comments [get]
func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	log := request.Logger(h.log, r, "handlers.comments.ListMine")

	page, err := h.service.ListMine(r.Context(), middlewarectx.UserIDFromContext(r.Context()), request.List(r))
	if err != nil {
		log.Error("failed to list comments", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}
	render.JSON(w, r, response.StatusOKWithData(page))
}

// ListByTrack godoc
// @Summary Комментарии к треку по возрастанию даты
// @Tags Comments
// @Produce json
// @Param id path int true "ID трека"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse "Трек не найден"
// @Router /tracks/{id}/comments [get]
func (h *Handler) ListByTrack(w http.ResponseWriter, r *http.Request) {
	log := request.Logger(h.log, r, "handlers.comments.ListByTrack")

	trackID, ok := request.PathID(w, r, log, "id")
	if !ok {
		return
	}
	page, err := h.service.ListByTrack(r.Context(), middlewarectx.UserIDFromContext(r.Context()), trackID, request.List(r))
	if err != nil {
		log.Warn("failed to list track comments", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}
	render.JSON(w, r, response.StatusOKWithData(page))
}

// Create godoc
// @Summary Новый комментарий
// @Tags Comments
// @Accept json
// @Produce json
// @Param request body models.CommentInput true "Трек и текст"
// @Success 201 {object} response.Response
// @Failure 404 {object} response.ErrorResponse "Трек не найден"
// @Security BearerAuth
// @Router /me/comments [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	log := request.Logger(h.log, r, "handlers.comments.Create")

	var req models.CommentInput
	if !request.DecodeJSON(w, r, log, h.validate, &req) {
		return
	}
	comment, err := h.service.Create(r.Context(), middlewarectx.UserIDFromContext(r.Context()), req)
	if err != nil {
		log.Warn("failed to create comment", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.StatusOKWithData(comment))
}

// Update godoc
// @Summary Изменение своего комментария
// @Tags Comments
// @Accept json
// @Produce json
// @Param id path int true "ID комментария"
// @Param request body models.CommentUpdate true "Текст"
// @Success 200 {object} response.Response
// @Security BearerAuth
// @Router /me/comments/{id} [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	log := request.Logger(h.log, r, "handlers.comments.Update")

	id, ok := request.PathID(w, r, log, "id")
	if !ok {
		return
	}
	var req models.CommentUpdate
	if !request.DecodeJSON(w, r, log, h.validate, &req) {
		return
	}
	comment, err := h.service.Update(r.Context(), middlewarectx.UserIDFromContext(r.Context()), id, req)
	if err != nil {
		log.Warn("failed to update comment", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}
	render.JSON(w, r, response.StatusOKWithData(comment))
}

// Delete godoc
// @Summary Удаление своего комментария
// @Tags Comments
// @Param id path int true "ID комментария"
// @Success 204
// @Security BearerAuth
// @Router /me/comments/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	log := request.Logger(h.log, r, "handlers.comments.Delete")

	id, ok := request.PathID(w, r, log, "id")
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), middlewarectx.UserIDFromContext(r.Context()), id); err != nil {
		log.Warn("failed to delete comment", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}
	render.NoContent(w, r)
}
