// Package services комментарии к трекам.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/audio-library/internal/config"
	"github.com/magabrotheeeer/audio-library/internal/lib/query"
	"github.com/magabrotheeeer/audio-library/internal/models"
	access "github.com/magabrotheeeer/audio-library/internal/services/access"
)

// CommentRepository хранилище комментариев.
type CommentRepository interface {
	GetTrack(ctx context.Context, id int64) (*models.Track, error)
	ListCommentsByUser(ctx context.Context, userID int64, limit, offset int) ([]*models.Comment, int, error)
	ListCommentsByTrack(ctx context.Context, trackID int64, limit, offset int) ([]*models.Comment, int, error)
	CreateComment(ctx context.Context, userID, trackID int64, text string) (*models.Comment, error)
	UpdateComment(ctx context.Context, userID, id int64, text string) (*models.Comment, error)
	DeleteComment(ctx context.Context, userID, id int64) error
}

// CommentService бизнес-логика комментариев.
type CommentService struct {
	repo       CommentRepository
	pagination config.Pagination
	log        *slog.Logger
}

// NewCommentService создает новый экземпляр CommentService.
func NewCommentService(repo CommentRepository, cfg *config.Config, log *slog.Logger) *CommentService {
	return &CommentService{
		repo:       repo,
		pagination: cfg.Pagination,
		log:        log,
	}
}

// ListMine возвращает комментарии пользователя, новые сверху.
func (s *CommentService) ListMine(ctx context.Context, requesterID int64, params models.ListParams) (*models.Page[*models.Comment], error) {
	const op = "comment.ListMine"
	if err := access.RequireUser(requesterID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	page, size, offset := s.page(params)
	comments, count, err := s.repo.ListCommentsByUser(ctx, requesterID, size, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return models.NewPage(comments, count, page, size), nil
}

// ListByTrack возвращает комментарии трека в порядке создания.
func (s *CommentService) ListByTrack(ctx context.Context, requesterID, trackID int64, params models.ListParams) (*models.Page[*models.Comment], error) {
	const op = "comment.ListByTrack"
	if err := s.checkTrack(ctx, requesterID, trackID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	page, size, offset := s.page(params)
	comments, count, err := s.repo.ListCommentsByTrack(ctx, trackID, size, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return models.NewPage(comments, count, page, size), nil
}

// Create добавляет комментарий к видимому пользователю треку.
func (s *CommentService) Create(ctx context.Context, requesterID int64, in models.CommentInput) (*models.Comment, error) {
	const op = "comment.Create"
	if err := access.RequireUser(requesterID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.checkTrack(ctx, requesterID, in.TrackID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	c, err := s.repo.CreateComment(ctx, requesterID, in.TrackID, in.Text)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return c, nil
}

// Update меняет текст собственного комментария.
func (s *CommentService) Update(ctx context.Context, requesterID, id int64, in models.CommentUpdate) (*models.Comment, error) {
	const op = "comment.Update"
	if err := access.RequireUser(requesterID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	c, err := s.repo.UpdateComment(ctx, requesterID, id, in.Text)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return c, nil
}

// Delete удаляет собственный комментарий.
func (s *CommentService) Delete(ctx context.Context, requesterID, id int64) error {
	const op = "comment.Delete"
	if err := access.RequireUser(requesterID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.repo.DeleteComment(ctx, requesterID, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *CommentService) checkTrack(ctx context.Context, requesterID, trackID int64) error {
	track, err := s.repo.GetTrack(ctx, trackID)
	if err != nil {
		return err
	}
	return access.CheckRead(track.UserID, track.Private, requesterID)
}

func (s *CommentService) page(params models.ListParams) (page, size, offset int) {
	return query.Page(params.Page, params.PageSize, s.pagination.PageSize, s.pagination.MaxPageSize)
}
