package services

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/audio-library/internal/lib/sl"
	"github.com/magabrotheeeer/audio-library/internal/lib/upload"
	"github.com/magabrotheeeer/audio-library/internal/models"
	access "github.com/magabrotheeeer/audio-library/internal/services/access"
)

// ListMyAlbums возвращает все альбомы пользователя, включая приватные.
func (s *CatalogService) ListMyAlbums(ctx context.Context, requesterID int64, params models.ListParams) (*models.Page[*models.Album], error) {
	const op = "catalog.ListMyAlbums"
	if err := access.RequireUser(requesterID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	page, size, offset := s.page(params)
	albums, count, err := s.repo.ListAlbums(ctx, requesterID, false, size, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return models.NewPage(albums, count, page, size), nil
}

// ListAuthorAlbums возвращает публичные альбомы автора.
func (s *CatalogService) ListAuthorAlbums(ctx context.Context, authorID int64, params models.ListParams) (*models.Page[*models.Album], error) {
	const op = "catalog.ListAuthorAlbums"
	page, size, offset := s.page(params)
	albums, count, err := s.repo.ListAlbums(ctx, authorID, true, size, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return models.NewPage(albums, count, page, size), nil
}

// CreateAlbum создаёт альбом с необязательной обложкой.
func (s *CatalogService) CreateAlbum(ctx context.Context, requesterID int64, in models.AlbumInput) (*models.Album, error) {
	const op = "catalog.CreateAlbum"
	if err := access.RequireUser(requesterID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := upload.Validate(in.Cover, s.imageRule); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	cover, err := upload.Store(ctx, s.files, upload.KindAlbum, requesterID, in.Cover, false)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	album, err := s.repo.CreateAlbum(ctx, models.Album{
		UserID:      requesterID,
		Name:        in.Name,
		Description: in.Description,
		Private:     in.Private,
		CoverImage:  cover,
	})
	if err != nil {
		s.discard(ctx, cover)
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("album created", sl.ID("album_id", album.ID), sl.ID("user_id", requesterID))
	return album, nil
}

// UpdateAlbum меняет альбом владельца.
func (s *CatalogService) UpdateAlbum(ctx context.Context, requesterID, id int64, in models.AlbumInput) (*models.Album, error) {
	const op = "catalog.UpdateAlbum"
	current, err := s.ownAlbum(ctx, requesterID, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = upload.Validate(in.Cover, s.imageRule); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	oldCover := current.CoverImage

	cover, err := upload.Store(ctx, s.files, upload.KindAlbum, requesterID, in.Cover, false)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	updated := *current
	updated.Name = in.Name
	updated.Description = in.Description
	updated.Private = in.Private
	if cover != "" {
		updated.CoverImage = cover
	}
	if err = s.repo.UpdateAlbum(ctx, updated); err != nil {
		s.discard(ctx, cover)
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.discard(ctx, replaced(oldCover, cover))
	return &updated, nil
}

// DeleteAlbum удаляет альбом владельца. Треки альбома остаются без альбома.
func (s *CatalogService) DeleteAlbum(ctx context.Context, requesterID, id int64) error {
	const op = "catalog.DeleteAlbum"
	current, err := s.ownAlbum(ctx, requesterID, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err = s.repo.DeleteAlbum(ctx, requesterID, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.discard(ctx, current.CoverImage)
	return nil
}

func (s *CatalogService) ownAlbum(ctx context.Context, requesterID, id int64) (*models.Album, error) {
	if err := access.RequireUser(requesterID); err != nil {
		return nil, err
	}
	album, err := s.repo.GetAlbum(ctx, id)
	if err != nil {
		return nil, err
	}
	if err = access.CheckWrite(album.UserID, requesterID); err != nil {
		return nil, err
	}
	return album, nil
}
