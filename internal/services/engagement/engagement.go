// Package services прослушивания, скачивания, лайки и история прослушиваний.
//
// Файл трека открывается до изменения счётчиков: если файла нет в хранилище,
// запрос завершается ErrFileNotFound и счётчики не меняются.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/audio-library/internal/config"
	"github.com/magabrotheeeer/audio-library/internal/lib/query"
	"github.com/magabrotheeeer/audio-library/internal/lib/sl"
	"github.com/magabrotheeeer/audio-library/internal/metrics"
	"github.com/magabrotheeeer/audio-library/internal/models"
	access "github.com/magabrotheeeer/audio-library/internal/services/access"
	"github.com/magabrotheeeer/audio-library/internal/storage/files"
)

// EngagementRepository счётчики и связи пользователя с треками.
type EngagementRepository interface {
	GetTrack(ctx context.Context, id int64) (*models.Track, error)
	IncrementPlays(ctx context.Context, trackID, userID int64) error
	IncrementDownload(ctx context.Context, trackID int64) error
	LikeTrack(ctx context.Context, userID, trackID int64) (int64, error)
	UnlikeTrack(ctx context.Context, userID, trackID int64) (int64, error)
	ListPlayed(ctx context.Context, userID int64, limit, offset int) ([]*models.PlayedTrack, int, error)
}

// EngagementService бизнес-логика взаимодействия с треками.
type EngagementService struct {
	repo       EngagementRepository
	files      files.Storage
	pagination config.Pagination
	log        *slog.Logger
}

// NewEngagementService создает новый экземпляр EngagementService.
func NewEngagementService(repo EngagementRepository, fileStorage files.Storage, cfg *config.Config, log *slog.Logger) *EngagementService {
	return &EngagementService{
		repo:       repo,
		files:      fileStorage,
		pagination: cfg.Pagination,
		log:        log,
	}
}

// Stream открывает публичный трек для прослушивания и засчитывает прослушивание.
// Приватный трек через этот метод недоступен даже владельцу.
func (s *EngagementService) Stream(ctx context.Context, requesterID, id int64) (*models.StoredFile, error) {
	const op = "engagement.Stream"
	track, err := s.repo.GetTrack(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if track.Private {
		return nil, fmt.Errorf("%s: %w", op, models.ErrNotFound)
	}
	f, err := s.play(ctx, track, requesterID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return f, nil
}

// StreamOwn открывает собственный трек владельца независимо от приватности.
func (s *EngagementService) StreamOwn(ctx context.Context, requesterID, id int64) (*models.StoredFile, error) {
	const op = "engagement.StreamOwn"
	if err := access.RequireUser(requesterID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	track, err := s.repo.GetTrack(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = access.CheckWrite(track.UserID, requesterID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	f, err := s.play(ctx, track, requesterID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return f, nil
}

func (s *EngagementService) play(ctx context.Context, track *models.Track, requesterID int64) (*models.StoredFile, error) {
	f, err := s.files.Open(ctx, track.File)
	if err != nil {
		return nil, err
	}
	if err = s.repo.IncrementPlays(ctx, track.ID, requesterID); err != nil {
		f.Content.Close()
		return nil, err
	}
	metrics.TrackPlays.Inc()
	return f, nil
}

// Download открывает публичный трек для скачивания и увеличивает счётчик скачиваний.
func (s *EngagementService) Download(ctx context.Context, id int64) (*models.StoredFile, error) {
	const op = "engagement.Download"
	track, err := s.repo.GetTrack(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if track.Private {
		return nil, fmt.Errorf("%s: %w", op, models.ErrNotFound)
	}
	f, err := s.files.Open(ctx, track.File)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = s.repo.IncrementDownload(ctx, track.ID); err != nil {
		f.Content.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	metrics.TrackDownloads.Inc()
	return f, nil
}

// Like ставит лайк чужому треку.
func (s *EngagementService) Like(ctx context.Context, requesterID, id int64) (*models.LikeResult, error) {
	const op = "engagement.Like"
	if err := s.checkLikeable(ctx, requesterID, id); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	count, err := s.repo.LikeTrack(ctx, requesterID, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	metrics.TrackLikes.WithLabelValues(metrics.ActionLike).Inc()
	s.log.Debug("track liked", sl.ID("track_id", id), sl.ID("user_id", requesterID))
	return &models.LikeResult{TrackID: id, LikesCount: count}, nil
}

// Unlike снимает лайк.
func (s *EngagementService) Unlike(ctx context.Context, requesterID, id int64) (*models.LikeResult, error) {
	const op = "engagement.Unlike"
	if err := s.checkLikeable(ctx, requesterID, id); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	count, err := s.repo.UnlikeTrack(ctx, requesterID, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	metrics.TrackLikes.WithLabelValues(metrics.ActionUnlike).Inc()
	return &models.LikeResult{TrackID: id, LikesCount: count}, nil
}

func (s *EngagementService) checkLikeable(ctx context.Context, requesterID, id int64) error {
	if err := access.RequireUser(requesterID); err != nil {
		return err
	}
	track, err := s.repo.GetTrack(ctx, id)
	if err != nil {
		return err
	}
	if err = access.CheckRead(track.UserID, track.Private, requesterID); err != nil {
		return err
	}
	if track.UserID == requesterID {
		return models.ErrOwnTrack
	}
	return nil
}

// RecentlyPlayed возвращает историю прослушиваний, последние сверху.
func (s *EngagementService) RecentlyPlayed(ctx context.Context, requesterID int64, params models.ListParams) (*models.Page[*models.PlayedTrack], error) {
	const op = "engagement.RecentlyPlayed"
	if err := access.RequireUser(requesterID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	page, size, offset := query.Page(params.Page, params.PageSize, s.pagination.PageSize, s.pagination.MaxPageSize)
	played, count, err := s.repo.ListPlayed(ctx, requesterID, size, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return models.NewPage(played, count, page, size), nil
}
