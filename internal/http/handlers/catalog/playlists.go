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

// ListPlaylists godoc
// @Summary Плейлисты текущего пользователя
// @Tags Playlists
// @Produce json
// @Success 200 {object} response.Response
// @Security BearerAuth
// @Router /me/playlists [get]
func (h *Handler) ListPlaylists(w http.ResponseWriter, r *http.Request) {
	log := request.Logger(h.log, r, "handlers.catalog.ListPlaylists")

	page, err := h.service.ListMyPlaylists(r.Context(), middlewarectx.UserIDFromContext(r.Context()), request.List(r))
	if err != nil {
		log.Error("failed to list playlists", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}
	render.JSON(w, r, response.StatusOKWithData(page))
}

// CreatePlaylist godoc
// @Summary Создание плейлиста
// @Tags Playlists
// @Accept multipart/form-data
// @Produce json
// @Param title formData string true "Название"
// @Param tracks formData []int false "ID треков"
// @Param cover_image formData file false "Обложка"
// @Success 201 {object} response.Response
// @Security BearerAuth
// @Router /me/playlists [post]
func (h *Handler) CreatePlaylist(w http.ResponseWriter, r *http.Request) {
	log := request.Logger(h.log, r, "handlers.catalog.CreatePlaylist")

	form, err := request.ParseForm(r)
	if err != nil {
		badForm(w, r, log, err)
		return
	}
	defer form.Close()

	in, err := playlistInput(form)
	if err != nil {
		badForm(w, r, log, err)
		return
	}
	if err := h.validate.Struct(in); err != nil {
		response.RenderValidation(w, r, err)
		return
	}

	playlist, err := h.service.CreatePlaylist(r.Context(), middlewarectx.UserIDFromContext(r.Context()), in)
	if err != nil {
		log.Error("failed to create playlist", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.StatusOKWithData(playlist))
}

// UpdatePlaylist godoc
// @Summary Изменение плейлиста
// @Description Список треков заменяется целиком.
// @Tags Playlists
// @Accept multipart/form-data
// @Produce json
// @Param id path int true "ID плейлиста"
// @Success 200 {object} response.Response
// @Security BearerAuth
// @Router /me/playlists/{id} [put]
func (h *Handler) UpdatePlaylist(w http.ResponseWriter, r *http.Request) {
	log := request.Logger(h.log, r, "handlers.catalog.UpdatePlaylist")

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

	in, err := playlistInput(form)
	if err != nil {
		badForm(w, r, log, err)
		return
	}
	if err := h.validate.Struct(in); err != nil {
		response.RenderValidation(w, r, err)
		return
	}

	playlist, err := h.service.UpdatePlaylist(r.Context(), middlewarectx.UserIDFromContext(r.Context()), id, in)
	if err != nil {
		log.Error("failed to update playlist", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}
	render.JSON(w, r, response.StatusOKWithData(playlist))
}

// DeletePlaylist godoc
// @Summary Удаление плейлиста
// @Tags Playlists
// @Param id path int true "ID плейлиста"
// @Success 204
// @Security BearerAuth
// @Router /me/playlists/{id} [delete]
func (h *Handler) DeletePlaylist(w http.ResponseWriter, r *http.Request) {
	log := request.Logger(h.log, r, "handlers.catalog.DeletePlaylist")

	id, ok := request.PathID(w, r, log, "id")
	if !ok {
		return
	}
	if err := h.service.DeletePlaylist(r.Context(), middlewarectx.UserIDFromContext(r.Context()), id); err != nil {
		log.Error("failed to delete playlist", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}
	render.NoContent(w, r)
}

func playlistInput(form *request.Form) (models.PlaylistInput, error) {
	ids, err := form.Int64s("tracks")
	if err != nil {
		return models.PlaylistInput{}, err
	}
	cover, err := form.File("cover_image")
	if err != nil {
		return models.PlaylistInput{}, err
	}
	return models.PlaylistInput{
		Title:    form.String("title"),
		TrackIDs: ids,
		Cover:    cover,
	}, nil
}
