package catalog

import (
	"net/http"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/audio-library/internal/http/middlewarectx"
	"github.com/magabrotheeeer/audio-library/internal/http/request"
	"github.com/magabrotheeeer/audio-library/internal/http/response"
	"github.com/magabrotheeeer/audio-library/internal/lib/sl"
	"github.com/magabrotheeeer/audio-library/internal/models"
)

// ListTracks godoc
// @Summary Публичные треки
// @Tags Tracks
// @Produce json
// @Param search query string false "Поиск по названию, автору, альбому и жанру"
// @Param ordering query string false "Сортировка: create_at, plays_count, download, likes_count, с '-' по убыванию"
// @Param page query int false "Номер страницы"
// @Param page_size query int false "Размер страницы"
// @Success 200 {object} response.Response
// @Router /tracks [get]
func (h *Handler) ListTracks(w http.ResponseWriter, r *http.Request) {
	log := request.Logger(h.log, r, "handlers.catalog.ListTracks")

	page, err := h.service.ListPublicTracks(r.Context(), request.List(r))
	if err != nil {
		log.Error("failed to list tracks", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}
	render.JSON(w, r, response.StatusOKWithData(page))
}

// ListAuthorTracks godoc
// @Summary Публичные треки автора
// @Tags Tracks
// @Produce json
// @Param id path int true "ID автора"
// @Success 200 {object} response.Response
// @Router /authors/{id}/tracks [get]
func (h *Handler) ListAuthorTracks(w http.ResponseWriter, r *http.Request) {
	log := request.Logger(h.log, r, "handlers.catalog.ListAuthorTracks")

	authorID, ok := request.PathID(w, r, log, "id")
	if !ok {
		return
	}
	page, err := h.service.ListAuthorTracks(r.Context(), authorID, request.List(r))
	if err != nil {
		log.Error("failed to list author tracks", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}
	render.JSON(w, r, response.StatusOKWithData(page))
}

// GetTrack godoc
// @Summary Трек по id
// @Description Приватный трек виден только автору.
// @Tags Tracks
// @Produce json
// @Param id path int true "ID трека"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse "Трек не найден"
// @Router /tracks/{id} [get]
func (h *Handler) GetTrack(w http.ResponseWriter, r *http.Request) {
	log := request.Logger(h.log, r, "handlers.catalog.GetTrack")

	id, ok := request.PathID(w, r, log, "id")
	if !ok {
		return
	}
	track, err := h.service.GetTrack(r.Context(), middlewarectx.UserIDFromContext(r.Context()), id)
	if err != nil {
		log.Warn("failed to get track", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}
	render.JSON(w, r, response.StatusOKWithData(track))
}

// ListMyTracks godoc
// @Summary Треки текущего пользователя, включая приватные
// @Tags Tracks
// @Produce json
// @Success 200 {object} response.Response
// @Security BearerAuth
// @Router /me/tracks [get]
func (h *Handler) ListMyTracks(w http.ResponseWriter, r *http.Request) {
	log := request.Logger(h.log, r, "handlers.catalog.ListMyTracks")

	page, err := h.service.ListMyTracks(r.Context(), middlewarectx.UserIDFromContext(r.Context()), request.List(r))
	if err != nil {
		log.Error("failed to list tracks", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}
	render.JSON(w, r, response.StatusOKWithData(page))
}

// CreateTrack godoc
// @Summary Загрузка трека
// @Tags Tracks
// @Accept multipart/form-data
// @Produce json
// @Param title formData string true "Название"
// @Param license formData int true "ID лицензии"
// @Param genre formData []int false "ID жанров"
// @Param album formData int false "ID альбома"
// @Param link_of_author formData string false "Ссылка на автора"
// @Param private formData bool false "Приватный"
// @Param file formData file true "Аудиофайл"
// @Param cover_image formData file false "Обложка"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.ErrorResponse "Неверный файл или ссылка"
// @Security BearerAuth
// @Router /me/tracks [post]
func (h *Handler) CreateTrack(w http.ResponseWriter, r *http.Request) {
	log := request.Logger(h.log, r, "handlers.catalog.CreateTrack")

	form, err := request.ParseForm(r)
	if err != nil {
		badForm(w, r, log, err)
		return
	}
	defer form.Close()

	in, err := trackInput(form)
	if err != nil {
		badForm(w, r, log, err)
		return
	}
	if err := h.validate.Struct(in); err != nil {
		response.RenderValidation(w, r, err)
		return
	}

	track, err := h.service.CreateTrack(r.Context(), middlewarectx.UserIDFromContext(r.Context()), in)
	if err != nil {
		log.Error("failed to create track", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}
	log.Info("track uploaded", sl.ID("track_id", track.ID))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.StatusOKWithData(track))
}

// UpdateTrack godoc
// @Summary Изменение трека
// @Description Файл и обложка необязательны, без них остаются прежние.
// @Tags Tracks
// @Accept multipart/form-data
// @Produce json
// @Param id path int true "ID трека"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse "Трек не найден"
// @Security BearerAuth
// @Router /me/tracks/{id} [put]
func (h *Handler) UpdateTrack(w http.ResponseWriter, r *http.Request) {
	log := request.Logger(h.log, r, "handlers.catalog.UpdateTrack")

	id, ok := request.PathID(w, r, log, "id")
	if !ok {
		return
	}
	form, err := request.ParseForm(r)
	if err != nil {
		badForm(w, r, log, err)
		return
	}
	defer form.Close()

	in, err := trackInput(form)
	if err != nil {
		badForm(w, r, log, err)
		return
	}
	if err := h.validate.Struct(in); err != nil {
		response.RenderValidation(w, r, err)
		return
	}

	track, err := h.service.UpdateTrack(r.Context(), middlewarectx.UserIDFromContext(r.Context()), id, in)
	if err != nil {
		log.Error("failed to update track", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}
	render.JSON(w, r, response.StatusOKWithData(track))
}

// DeleteTrack godoc
// @Summary Удаление трека вместе с файлами
// @Tags Tracks
// @Param id path int true "ID трека"
// @Success 204
// @Security BearerAuth
// @Router /me/tracks/{id} [delete]
func (h *Handler) DeleteTrack(w http.ResponseWriter, r *http.Request) {
	log := request.Logger(h.log, r, "handlers.catalog.DeleteTrack")

	id, ok := request.PathID(w, r, log, "id")
	if !ok {
		return
	}
	if err := h.service.DeleteTrack(r.Context(), middlewarectx.UserIDFromContext(r.Context()), id); err != nil {
		log.Error("failed to delete track", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}
	log.Info("track deleted", sl.ID("track_id", id))
	render.NoContent(w, r)
}

func trackInput(form *request.Form) (models.TrackInput, error) {
	var in models.TrackInput
	var err error

	in.Title = form.String("title")
	in.LinkOfAuthor = form.String("link_of_author")
	in.Private = form.Bool("private")
	if in.LicenseID, err = form.Int64("license"); err != nil {
		return in, err
	}
	if in.GenreIDs, err = form.Int64s("genre"); err != nil {
		return in, err
	}
	if in.AlbumID, err = form.OptionalInt64("album"); err != nil {
		return in, err
	}
	if in.File, err = form.File("file"); err != nil {
		return in, err
	}
	if in.Cover, err = form.File("cover_image"); err != nil {
		return in, err
	}
	return in, nil
}
