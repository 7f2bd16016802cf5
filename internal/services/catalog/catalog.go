// Package services каталог: жанры, лицензии, альбомы, треки и плейлисты.
//
// Изменение и удаление разрешены только владельцу, чужие записи для него
// не существуют. Файлы сохраняются до записи в базу под новым ключом,
// старый файл удаляется только после успешного сохранения записи.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/audio-library/internal/config"
	"github.com/magabrotheeeer/audio-library/internal/lib/query"
	"github.com/magabrotheeeer/audio-library/internal/lib/sl"
	"github.com/magabrotheeeer/audio-library/internal/lib/upload"
	"github.com/magabrotheeeer/audio-library/internal/models"
	"github.com/magabrotheeeer/audio-library/internal/storage/files"
)

const (
	genresCacheKey = "genres"
	genresCacheTTL = time.Hour
)

// CatalogRepository хранилище каталога.
type CatalogRepository interface {
	ListGenres(ctx context.Context) ([]*models.Genre, error)
	CountGenres(ctx context.Context, ids []int64) (int, error)

	ListLicenses(ctx context.Context, userID int64) ([]*models.License, error)
	GetLicense(ctx context.Context, id int64) (*models.License, error)
	CreateLicense(ctx context.Context, userID int64, text string) (*models.License, error)
	UpdateLicense(ctx context.Context, userID, id int64, text string) (*models.License, error)
	DeleteLicense(ctx context.Context, userID, id int64) error

	ListAlbums(ctx context.Context, userID int64, publicOnly bool, limit, offset int) ([]*models.Album, int, error)
	GetAlbum(ctx context.Context, id int64) (*models.Album, error)
	CreateAlbum(ctx context.Context, a models.Album) (*models.Album, error)
	UpdateAlbum(ctx context.Context, a models.Album) error
	DeleteAlbum(ctx context.Context, userID, id int64) error

	ListTracks(ctx context.Context, f models.TrackFilter) ([]*models.Track, int, error)
	GetTrack(ctx context.Context, id int64) (*models.Track, error)
	CreateTrack(ctx context.Context, t models.Track, genreIDs []int64) (int64, error)
	UpdateTrack(ctx context.Context, t models.Track, genreIDs []int64) error
	DeleteTrack(ctx context.Context, userID, id int64) error

	ListPlaylists(ctx context.Context, userID int64, limit, offset int) ([]*models.Playlist, int, error)
	GetPlaylist(ctx context.Context, id int64) (*models.Playlist, error)
	CountVisibleTracks(ctx context.Context, userID int64, ids []int64) (int, error)
	CreatePlaylist(ctx context.Context, p models.Playlist, trackIDs []int64) (int64, error)
	UpdatePlaylist(ctx context.Context, p models.Playlist, trackIDs []int64) error
	DeletePlaylist(ctx context.Context, userID, id int64) error
}

// Cache кэш справочников.
type Cache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
}

// CatalogService бизнес-логика каталога.
type CatalogService struct {
	repo       CatalogRepository
	cache      Cache
	files      files.Storage
	imageRule  upload.Rule
	audioRule  upload.Rule
	pagination config.Pagination
	log        *slog.Logger
}

// NewCatalogService создает новый экземпляр CatalogService.
func NewCatalogService(repo CatalogRepository, cache Cache, fileStorage files.Storage, cfg *config.Config,
	log *slog.Logger) *CatalogService {
	return &CatalogService{
		repo:  repo,
		cache: cache,
		files: fileStorage,
		imageRule: upload.Rule{
			MaxSize:    cfg.Upload.ImageMaxSize,
			Extensions: cfg.Upload.ImageExtensions,
		},
		audioRule: upload.Rule{
			MaxSize:    cfg.Upload.AudioMaxSize,
			Extensions: cfg.Upload.AudioExtensions,
		},
		pagination: cfg.Pagination,
		log:        log,
	}
}

// ListGenres возвращает справочник жанров, сначала из кэша.
func (s *CatalogService) ListGenres(ctx context.Context) ([]*models.Genre, error) {
	const op = "catalog.ListGenres"
	var genres []*models.Genre
	found, err := s.cache.Get(ctx, genresCacheKey, &genres)
	if err != nil {
		s.log.Warn("failed to read genres from cache", sl.Err(err))
	}
	if found {
		return genres, nil
	}

	genres, err = s.repo.ListGenres(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = s.cache.Set(ctx, genresCacheKey, genres, genresCacheTTL); err != nil {
		s.log.Warn("failed to cache genres", sl.Err(err))
	}
	return genres, nil
}

func (s *CatalogService) page(params models.ListParams) (page, size, offset int) {
	return query.Page(params.Page, params.PageSize, s.pagination.PageSize, s.pagination.MaxPageSize)
}

// discard удаляет файлы, сохранённые для записи, которую не удалось записать.
func (s *CatalogService) discard(ctx context.Context, keys ...string) {
	files.DeleteAll(ctx, s.files, s.log, keys...)
}

// replaced возвращает старый ключ, если файл был заменён новым.
func replaced(oldKey, newKey string) string {
	if newKey == "" {
		return ""
	}
	return oldKey
}

func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
