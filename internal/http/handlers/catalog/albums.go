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

// ListMyAlbums godoc
// @Summary Альбомы текущего пользователя
// @Tags Albums
// @Produce json
// @Param page query int false "Номер страницы"
// @Param page_size query int false "Размер страницы"
// @Success 200 {object} response.Response
// @Security BearerAuth
// @Router /me/albums [get]
func (h *Handler) ListMyAlbums(w http.ResponseWriter, r *http.Request) {
	log := request.Logger(h.log, r, "handlers.catalog.ListMyAlbums")

	page, err := h.service.ListMyAlbums(r.Context(), middlewarectx.UserIDFromContext(r.Context()), request.List(r))
	if err != nil {
		log.Error("failed to list albums", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}
	render.JSON(w, r, response.StatusOKWithData(page))
}

// ListAuthorAlbums godoc
// @Summary Публичные альбомы автора
// @Tags Albums
// @Produce json
// @Param id path int true "ID автора"
// @Success 200 {object} response.Response
// @Router /authors/{id}/albums [get]
func (h *Handler) ListAuthorAlbums(w http.ResponseWriter, r *http.Request) {
	log := request.Logger(h.log, r, "handlers.catalog.ListAuthorAlbums")

	authorID, ok := request.PathID(w, r, log, "id")
	if !ok {
		return
	}
	page, err := h.service.ListAuthorAlbums(r.Context(), authorID, request.List(r))
	if err != nil {
		log.Error("failed to list author albums", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}
	render.JSON(w, r, response.StatusOKWithData(page))
}

// CreateAlbum godoc
// @Summary Создание альбома
// @Tags Albums
// @Accept multipart/form-data
// @Produce json
// @Param name formData string true "Название"
// @Param description formData string false "Описание"
// @Param private formData bool false "Приватный"
// @Param cover_image formData file false "Обложка"
// @Success 201 {object} response.Response
// @Security BearerAuth
// @Router /me/albums [post]
func (h *Handler) CreateAlbum(w http.ResponseWriter, r *http.Request) {
	log := request.Logger(h.log, r, "handlers.catalog.CreateAlbum")

	form, err := request.ParseForm(r)
	if err != nil {
		badForm(w, r, log, err)
		return
	}
	defer form.Close()

	in, err := albumInput(form)
	if err != nil {
		badForm(w, r, log, err)
		return
	}
	if err := h.validate.Struct(in); err != nil {
		response.RenderValidation(w, r, err)
		return
	}

	album, err := h.service.CreateAlbum(r.Context(), middlewarectx.UserIDFromContext(r.Context()), in)
	if err != nil {
		log.Error("failed to create album", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}
	log.Info("album created", sl.ID("album_id", album.ID))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.StatusOKWithData(album))
}

// UpdateAlbum godoc
// @Summary Изменение альбома
// @Tags Albums
// @Accept multipart/form-data
// @Produce json
// @Param id path int true "ID альбома"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse "Альбом не найден"
// @Security BearerAuth
// @Router /me/albums/{id} [put]
func (h *Handler) UpdateAlbum(w http.ResponseWriter, r *http.Request) {
	log := request.Logger(h.log, r, "handlers.catalog.UpdateAlbum")

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

	in, err := albumInput(form)
	if err != nil {
		badForm(w, r, log, err)
		return
	}
	if err := h.validate.Struct(in); err != nil {
		response.RenderValidation(w, r, err)
		return
	}

	album, err := h.service.UpdateAlbum(r.Context(), middlewarectx.UserIDFromContext(r.Context()), id, in)
	if err != nil {
		log.Error("failed to update album", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}
	render.JSON(w, r, response.StatusOKWithData(album))
}

// DeleteAlbum godoc
// @Summary Удаление альбома
// @Tags Albums
// @Param id path int true "ID альбома"
// @Success 204
// @Security BearerAuth
// @Router /me/albums/{id} [delete]
func (h *Handler) DeleteAlbum(w http.ResponseWriter, r *http.Request) {
	log := request.Logger(h.log, r, "handlers.catalog.DeleteAlbum")

	id, ok := request.PathID(w, r, log, "id")
	if !ok {
		return
	}
	if err := h.service.DeleteAlbum(r.Context(), middlewarectx.UserIDFromContext(r.Context()), id); err != nil {
		log.Error("failed to delete album", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}
	render.NoContent(w, r)
}

func albumInput(form *request.Form) (models.AlbumInput, error) {
	cover, err := form.File("cover_image")
	if err != nil {
		return models.AlbumInput{}, err
	}
	return models.AlbumInput{
		Name:        form.String("name"),
		Description: form.String("description"),
		Private:     form.Bool("private"),
		Cover:       cover,
	}, nil
}
