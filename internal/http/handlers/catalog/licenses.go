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

// ListLicenses godoc
// @Summary Лицензии текущего пользователя
// @Tags Licenses
// @Produce json
// @Success 200 {object} response.Response
// @Security BearerAuth
// @Router /me/licenses [get]
func (h *Handler) ListLicenses(w http.ResponseWriter, r *http.Request) {
	log := request.Logger(h.log, r, "handlers.catalog.ListLicenses")

	licenses, err := h.service.ListLicenses(r.Context(), middlewarectx.UserIDFromContext(r.Context()))
	if err != nil {
		log.Error("failed to list licenses", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}
	render.JSON(w, r, response.StatusOKWithData(licenses))
}

// CreateLicense godoc
// @Summary Создание лицензии
// @Tags Licenses
// @Accept json
// @Produce json
// @Param request body models.LicenseInput true "Текст лицензии"
// @Success 201 {object} response.Response
// @Security BearerAuth
// @Router /me/licenses [post]
func (h *Handler) CreateLicense(w http.ResponseWriter, r *http.Request) {
	log := request.Logger(h.log, r, "handlers.catalog.CreateLicense")

	var req models.LicenseInput
	if !request.DecodeJSON(w, r, log, h.validate, &req) {
		return
	}
	license, err := h.service.CreateLicense(r.Context(), middlewarectx.UserIDFromContext(r.Context()), req.Text)
	if err != nil {
		log.Error("failed to create license", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.StatusOKWithData(license))
}

// UpdateLicense godoc
// @Summary Изменение лицензии
// @Tags Licenses
// @Accept json
// @Produce json
// @Param id path int true "ID лицензии"
// @Param request body models.LicenseInput true "Текст лицензии"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse "Лицензия не найдена"
// @Security BearerAuth
// @Router /me/licenses/{id} [put]
func (h *Handler) UpdateLicense(w http.ResponseWriter, r *http.Request) {
	log := request.Logger(h.log, r, "handlers.catalog.UpdateLicense")

	id, ok := request.PathID(w, r, log, "id")
	if !ok {
		return
	}
	var req models.LicenseInput
	if !request.DecodeJSON(w, r, log, h.validate, &req) {
		return
	}
	license, err := h.service.UpdateLicense(r.Context(), middlewarectx.UserIDFromContext(r.Context()), id, req.Text)
	if err != nil {
		log.Error("failed to update license", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}
	render.JSON(w, r, response.StatusOKWithData(license))
}

// DeleteLicense godoc
// @Summary Удаление лицензии
// @Tags Licenses
// @Param id path int true "ID лицензии"
// @Success 204
// @Failure 400 {object} response.ErrorResponse "Лицензия используется треками"
// @Security BearerAuth
// @Router /me/licenses/{id} [delete]
func (h *Handler) DeleteLicense(w http.ResponseWriter, r *http.Request) {
	log := request.Logger(h.log, r, "handlers.catalog.DeleteLicense")

	id, ok := request.PathID(w, r, log, "id")
	if !ok {
		return
	}
	if err := h.service.DeleteLicense(r.Context(), middlewarectx.UserIDFromContext(r.Context()), id); err != nil {
		log.Error("failed to delete license", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}
	render.NoContent(w, r)
}
