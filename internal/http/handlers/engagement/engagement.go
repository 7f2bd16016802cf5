// Package engagement реализует HTTP-обработчики прослушивания, скачивания,
// лайков и истории прослушиваний.
package engagement

import (
	"context"
	"log/slog"
	"mime"
	"net/http"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/audio-library/internal/http/middlewarectx"
	"github.com/magabrotheeeer/audio-library/internal/http/request"
	"github.com/magabrotheeeer/audio-library/internal/http/response"
	"github.com/magabrotheeeer/audio-library/internal/lib/sl"
	"github.com/magabrotheeeer/audio-library/internal/models"
)

// Service описывает бизнес-логику взаимодействия с треками.
type Service interface {
	Stream(ctx context.Context, requesterID, id int64) (*models.StoredFile, error)
	StreamOwn(ctx context.Context, requesterID, id int64) (*models.StoredFile, error)
	Download(ctx context.Context, id int64) (*models.StoredFile, error)
	Like(ctx context.Context, requesterID, id int64) (*models.LikeResult, error)
	Unlike(ctx context.Context, requesterID, id int64) (*models.LikeResult, error)
	RecentlyPlayed(ctx context.Context, requesterID int64, params models.ListParams) (*models.Page[*models.PlayedTrack], error)
}

// Handler обрабатывает запросы к трекам, меняющие счётчики.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// Stream godoc
// @Summary Прослушивание публичного трека
// @Description Поддерживает Range-запросы. Увеличивает plays_count и пишет историю для авторизованного пользователя.
// @Tags Engagement
// @Produce octet-stream
// @Param id path int true "ID трека"
// @Success 200 {file} binary
// @Success 206 {file} binary
// @Failure 404 {object} response.ErrorResponse "Трек или файл не найден"
// @Router /tracks/{id}/stream [get]
func (h *Handler) Stream(w http.ResponseWriter, r *http.Request) {
	log := request.Logger(h.log, r, "handlers.engagement.Stream")

	id, ok := request.PathID(w, r, log, "id")
	if !ok {
		return
	}
	file, err := h.service.Stream(r.Context(), middlewarectx.UserIDFromContext(r.Context()), id)
	if err != nil {
		log.Warn("failed to stream track", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}
	serveFile(w, r, file, false)
}

// StreamOwn godoc
// @Summary Прослушивание своего трека, в том числе приватного
// @Tags Engagement
// @Produce octet-stream
// @Param id path int true "ID трека"
// @Success 200 {file} binary
// @Security BearerAuth
// @Router /me/tracks/{id}/stream [get]
func (h *Handler) StreamOwn(w http.ResponseWriter, r *http.Request) {
	log := request.Logger(h.log, r, "handlers.engagement.StreamOwn")

	id, ok := request.PathID(w, r, log, "id")
	if !ok {
		return
	}
	file, err := h.service.StreamOwn(r.Context(), middlewarectx.UserIDFromContext(r.Context()), id)
	if err != nil {
		log.Warn("failed to stream own track", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}
	serveFile(w, r, file, false)
}

// Download godoc
// @Summary Скачивание публичного трека
// @Tags Engagement
// @Produce octet-stream
// @Param id path int true "ID трека"
// @Success 200 {file} binary
// @Failure 404 {object} response.ErrorResponse "Трек или файл не найден"
// @Router /tracks/{id}/download [get]
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	log := request.Logger(h.log, r, "handlers.engagement.Download")

	id, ok := request.PathID(w, r, log, "id")
	if !ok {
		return
	}
	file, err := h.service.Download(r.Context(), id)
	if err != nil {
		log.Warn("failed to download track", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}
	serveFile(w, r, file, true)
}

// Like godoc
// @Summary Лайк трека
// @Tags Engagement
// @Produce json
// @Param id path int true "ID трека"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.ErrorResponse "Трек уже лайкнут"
// @Failure 403 {object} response.ErrorResponse "Свой трек"
// @Security BearerAuth
// @Router /tracks/{id}/like [post]
func (h *Handler) Like(w http.ResponseWriter, r *http.Request) {
	log := request.Logger(h.log, r, "handlers.engagement.Like")

	id, ok := request.PathID(w, r, log, "id")
	if !ok {
		return
	}
	res, err := h.service.Like(r.Context(), middlewarectx.UserIDFromContext(r.Context()), id)
	if err != nil {
		log.Warn("failed to like track", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.StatusOKWithData(res))
}

// Unlike godoc
// @Summary Снятие лайка
// @Tags Engagement
// @Param id path int true "ID трека"
// @Success 204
// @Failure 400 {object} response.ErrorResponse "Трек не был лайкнут"
// @Security BearerAuth
// @Router /tracks/{id}/like [delete]
func (h *Handler) Unlike(w http.ResponseWriter, r *http.Request) {
	log := request.Logger(h.log, r, "handlers.engagement.Unlike")

	id, ok := request.PathID(w, r, log, "id")
	if !ok {
		return
	}
	if _, err := h.service.Unlike(r.Context(), middlewarectx.UserIDFromContext(r.Context()), id); err != nil {
		log.Warn("failed to unlike track", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}
	render.NoContent(w, r)
}

// RecentlyPlayed godoc
// @Summary История прослушиваний
// @Tags Engagement
// @Produce json
// @Param page query int false "Номер страницы"
// @Param page_size query int false "Размер страницы"
// @Success 200 {object} response.Response
// @Security BearerAuth
// @Router /me/recently-played [get]
func (h *Handler) RecentlyPlayed(w http.ResponseWriter, r *http.Request) {
	log := request.Logger(h.log, r, "handlers.engagement.RecentlyPlayed")

	page, err := h.service.RecentlyPlayed(r.Context(), middlewarectx.UserIDFromContext(r.Context()), request.List(r))
	if err != nil {
		log.Error("failed to list played tracks", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}
	render.JSON(w, r, response.StatusOKWithData(page))
}

// serveFile отдаёт файл с поддержкой Range и закрывает его.
func serveFile(w http.ResponseWriter, r *http.Request, file *models.StoredFile, attachment bool) {
	defer file.Content.Close()

	if file.ContentType != "" {
		w.Header().Set("Content-Type", file.ContentType)
	}
	if attachment {
		w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": file.Name}))
	}
	http.ServeContent(w, r, file.Name, file.ModTime, file.Content)
}
