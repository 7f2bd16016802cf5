// Package catalog реализует HTTP-обработчики каталога: жанры, лицензии,
// альбомы, треки и плейлисты.
package catalog

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/audio-library/internal/http/request"
	"github.com/magabrotheeeer/audio-library/internal/http/response"
	"github.com/magabrotheeeer/audio-library/internal/lib/sl"
	"github.com/magabrotheeeer/audio-library/internal/models"
)

// Service описывает бизнес-логику каталога.
type Service interface {
	ListGenres(ctx context.Context) ([]*models.Genre, error)

	ListLicenses(ctx context.Context, requesterID int64) ([]*models.License, error)
	CreateLicense(ctx context.Context, requesterID int64, text string) (*models.License, error)
	UpdateLicense(ctx context.Context, requesterID, id int64, text string) (*models.License, error)
	DeleteLicense(ctx context.Context, requesterID, id int64) error

	ListMyAlbums(ctx context.Context, requesterID int64, params models.ListParams) (*models.Page[*models.Album], error)
	ListAuthorAlbums(ctx context.Context, authorID int64, params models.ListParams) (*models.Page[*models.Album], error)
	CreateAlbum(ctx context.Context, requesterID int64, in models.AlbumInput) (*models.Album, error)
	UpdateAlbum(ctx context.Context, requesterID, id int64, in models.AlbumInput) (*models.Album, error)
	DeleteAlbum(ctx context.Context, requesterID, id int64) error

	ListPublicTracks(ctx context.Context, params models.ListParams) (*models.Page[*models.Track], error)
	ListAuthorTracks(ctx context.Context, authorID int64, params models.ListParams) (*models.Page[*models.Track], error)
	ListMyTracks(ctx context.Context, requesterID int64, params models.ListParams) (*models.Page[*models.Track], error)
	GetTrack(ctx context.Context, requesterID, id int64) (*models.Track, error)
	CreateTrack(ctx context.Context, requesterID int64, in models.TrackInput) (*models.Track, error)
	UpdateTrack(ctx context.Context, requesterID, id int64, in models.TrackInput) (*models.Track, error)
	DeleteTrack(ctx context.Context, requesterID, id int64) error

	ListMyPlaylists(ctx context.Context, requesterID int64, params models.ListParams) (*models.Page[*models.Playlist], error)
	CreatePlaylist(ctx context.Context, requesterID int64, in models.PlaylistInput) (*models.Playlist, error)
	UpdatePlaylist(ctx context.Context, requesterID, id int64, in models.PlaylistInput) (*models.Playlist, error)
	DeletePlaylist(ctx context.Context, requesterID, id int64) error
}

// Handler обрабатывает запросы каталога.
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

func badForm(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	log.Warn("invalid form", sl.Err(err))
	render.Status(r, http.StatusBadRequest)
	render.JSON(w, r, response.Error(err.Error()))
}

// ListGenres godoc
// @Summary Список жанров
// @Tags Genres
// @Produce json
// @Success 200 {object} response.Response
// @Router /genres [get]
func (h *Handler) ListGenres(w http.ResponseWriter, r *http.Request) {
	log := request.Logger(h.log, r, "handlers.catalog.ListGenres")

	genres, err := h.service.ListGenres(r.Context())
	if err != nil {
		log.Error("failed to list genres", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}
	render.JSON(w, r, response.StatusOKWithData(genres))
}
