// Package services профиль пользователя, публичные страницы авторов,
// ссылки на соцсети и подписка на рассылку.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/audio-library/internal/config"
	"github.com/magabrotheeeer/audio-library/internal/lib/query"
	"github.com/magabrotheeeer/audio-library/internal/lib/sl"
	"github.com/magabrotheeeer/audio-library/internal/lib/upload"
	"github.com/magabrotheeeer/audio-library/internal/models"
	access "github.com/magabrotheeeer/audio-library/internal/services/access"
	"github.com/magabrotheeeer/audio-library/internal/storage/files"
)

// Сообщения ответа на изменение подписки на рассылку.
const (
	MsgNewsletterSubscribed   = "You have subscribed to the newsletter"
	MsgNewsletterUnsubscribed = "You have unsubscribed from the newsletter"
)

// ProfileRepository описывает доступ к профилям и авторам.
type ProfileRepository interface {
	GetProfile(ctx context.Context, userID int64) (*models.Profile, error)
	UpdateProfile(ctx context.Context, p models.Profile) error
	ListAuthors(ctx context.Context, limit, offset int, search string) ([]*models.Author, int, error)
	GetAuthor(ctx context.Context, id int64) (*models.Author, error)
	ListFollowers(ctx context.Context, authorID int64, limit, offset int) ([]*models.Author, int, error)
	ListFollowing(ctx context.Context, userID int64, limit, offset int) ([]*models.Author, int, error)
	ListSocialLinks(ctx context.Context, userID int64) ([]*models.SocialLink, error)
	CreateSocialLink(ctx context.Context, userID int64, link string) (*models.SocialLink, error)
	UpdateSocialLink(ctx context.Context, userID, id int64, link string) (*models.SocialLink, error)
	DeleteSocialLink(ctx context.Context, userID, id int64) error
	SetNewsletter(ctx context.Context, id int64, subscribed bool) error
}

// ProfileService бизнес-логика профилей.
type ProfileService struct {
	repo       ProfileRepository
	files      files.Storage
	imageRule  upload.Rule
	pagination config.Pagination
	log        *slog.Logger
}

// NewProfileService создает новый экземпляр ProfileService.
func NewProfileService(repo ProfileRepository, fileStorage files.Storage, cfg *config.Config, log *slog.Logger) *ProfileService {
	return &ProfileService{
		repo:  repo,
		files: fileStorage,
		imageRule: upload.Rule{
			MaxSize:    cfg.Upload.ImageMaxSize,
			Extensions: cfg.Upload.ImageExtensions,
		},
		pagination: cfg.Pagination,
		log:        log,
	}
}

// GetProfile возвращает профиль пользователя.
func (s *ProfileService) GetProfile(ctx context.Context, userID int64) (*models.Profile, error) {
	const op = "profile.GetProfile"
	if err := access.RequireUser(userID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	p, err := s.repo.GetProfile(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

// UpdateProfile сохраняет поля профиля и, если передан, новый аватар.
// Старый аватар удаляется только после сохранения записи.
func (s *ProfileService) UpdateProfile(ctx context.Context, userID int64, in models.ProfileInput) (*models.Profile, error) {
	const op = "profile.UpdateProfile"
	if err := access.RequireUser(userID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := upload.Validate(in.Avatar, s.imageRule); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	current, err := s.repo.GetProfile(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	oldAvatar := current.Avatar

	newAvatar, err := upload.Store(ctx, s.files, upload.KindAvatar, userID, in.Avatar, false)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	updated := *current
	updated.Country = in.Country
	updated.City = in.City
	updated.Bio = in.Bio
	updated.DisplayName = in.DisplayName
	if newAvatar != "" {
		updated.Avatar = newAvatar
	}
	if err = s.repo.UpdateProfile(ctx, updated); err != nil {
		files.DeleteAll(ctx, s.files, s.log, newAvatar)
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if newAvatar != "" {
		files.DeleteAll(ctx, s.files, s.log, oldAvatar)
	}
	return &updated, nil
}

// ListAuthors возвращает страницу активных авторов.
func (s *ProfileService) ListAuthors(ctx context.Context, params models.ListParams) (*models.Page[*models.Author], error) {
	const op = "profile.ListAuthors"
	page, size, offset := query.Page(params.Page, params.PageSize, s.pagination.PageSize, s.pagination.MaxPageSize)
	authors, count, err := s.repo.ListAuthors(ctx, size, offset, params.Search)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return models.NewPage(authors, count, page, size), nil
}

// GetAuthor возвращает публичную страницу автора.
func (s *ProfileService) GetAuthor(ctx context.Context, id int64) (*models.Author, error) {
	const op = "profile.GetAuthor"
	a, err := s.repo.GetAuthor(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return a, nil
}

// ListFollowers возвращает подписчиков автора.
func (s *ProfileService) ListFollowers(ctx context.Context, authorID int64, params models.ListParams) (*models.Page[*models.Author], error) {
	const op = "profile.ListFollowers"
	if _, err := s.repo.GetAuthor(ctx, authorID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	page, size, offset := query.Page(params.Page, params.PageSize, s.pagination.PageSize, s.pagination.MaxPageSize)
	authors, count, err := s.repo.ListFollowers(ctx, authorID, size, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return models.NewPage(authors, count, page, size), nil
}

// ListFollowing возвращает авторов, на которых подписан пользователь.
func (s *ProfileService) ListFollowing(ctx context.Context, authorID int64, params models.ListParams) (*models.Page[*models.Author], error) {
	const op = "profile.ListFollowing"
	if _, err := s.repo.GetAuthor(ctx, authorID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	page, size, offset := query.Page(params.Page, params.PageSize, s.pagination.PageSize, s.pagination.MaxPageSize)
	authors, count, err := s.repo.ListFollowing(ctx, authorID, size, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return models.NewPage(authors, count, page, size), nil
}

// ListSocialLinks возвращает ссылки пользователя.
func (s *ProfileService) ListSocialLinks(ctx context.Context, userID int64) ([]*models.SocialLink, error) {
	const op = "profile.ListSocialLinks"
	if err := access.RequireUser(userID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	links, err := s.repo.ListSocialLinks(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return links, nil
}

// CreateSocialLink добавляет ссылку пользователю.
func (s *ProfileService) CreateSocialLink(ctx context.Context, userID int64, link string) (*models.SocialLink, error) {
	const op = "profile.CreateSocialLink"
	if err := access.RequireUser(userID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	l, err := s.repo.CreateSocialLink(ctx, userID, link)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return l, nil
}

// UpdateSocialLink меняет ссылку пользователя.
func (s *ProfileService) UpdateSocialLink(ctx context.Context, userID, id int64, link string) (*models.SocialLink, error) {
	const op = "profile.UpdateSocialLink"
	if err := access.RequireUser(userID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	l, err := s.repo.UpdateSocialLink(ctx, userID, id, link)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return l, nil
}

// DeleteSocialLink удаляет ссылку пользователя.
func (s *ProfileService) DeleteSocialLink(ctx context.Context, userID, id int64) error {
	const op = "profile.DeleteSocialLink"
	if err := access.RequireUser(userID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.repo.DeleteSocialLink(ctx, userID, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// SetNewsletter включает или выключает рассылку и возвращает сообщение для ответа.
func (s *ProfileService) SetNewsletter(ctx context.Context, userID int64, subscribed bool) (string, error) {
	const op = "profile.SetNewsletter"
	if err := access.RequireUser(userID); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if err := s.repo.SetNewsletter(ctx, userID, subscribed); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("newsletter subscription changed", sl.ID("user_id", userID), slog.Bool("subscribed", subscribed))
	if subscribed {
		return MsgNewsletterSubscribed, nil
	}
	return MsgNewsletterUnsubscribed, nil
}
