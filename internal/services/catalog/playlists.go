package services

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/audio-library/internal/lib/upload"
	"github.com/magabrotheeeer/audio-library/internal/models"
	access "github.com/magabrotheeeer/audio-library/internal/services/access"
)

// ListMyPlaylists возвращает плейлисты пользователя.
func (s *CatalogService) ListMyPlaylists(ctx context.Context, requesterID int64, params models.ListParams) (*models.Page[*models.Playlist], error) {
	const op = "catalog.ListMyPlaylists"
	if err := access.RequireUser(requesterID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	page, size, offset := s.page(params)
	playlists, count, err := s.repo.ListPlaylists(ctx, requesterID, size, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return models.NewPage(playlists, count, page, size), nil
}

// CreatePlaylist создаёт плейлист из видимых пользователю треков.
func (s *CatalogService) CreatePlaylist(ctx context.Context, requesterID int64, in models.PlaylistInput) (*models.Playlist, error) {
	const op = "catalog.CreatePlaylist"
	if err := access.RequireUser(requesterID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	trackIDs, err := s.validatePlaylist(ctx, requesterID, in)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	cover, err := upload.Store(ctx, s.files, upload.KindPlaylist, requesterID, in.Cover, true)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	id, err := s.repo.CreatePlaylist(ctx, models.Playlist{
		UserID:     requesterID,
		Title:      in.Title,
		CoverImage: cover,
	}, trackIDs)
	if err != nil {
		s.discard(ctx, cover)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	p, err := s.repo.GetPlaylist(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

// UpdatePlaylist меняет название, обложку и состав плейлиста владельца.
func (s *CatalogService) UpdatePlaylist(ctx context.Context, requesterID, id int64, in models.PlaylistInput) (*models.Playlist, error) {
	const op = "catalog.UpdatePlaylist"
	current, err := s.ownPlaylist(ctx, requesterID, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	trackIDs, err := s.validatePlaylist(ctx, requesterID, in)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	oldCover := current.CoverImage

	cover, err := upload.Store(ctx, s.files, upload.KindPlaylist, requesterID, in.Cover, true)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	updated := *current
	updated.Title = in.Title
	if cover != "" {
		updated.CoverImage = cover
	}
	if err = s.repo.UpdatePlaylist(ctx, updated, trackIDs); err != nil {
		s.discard(ctx, cover)
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.discard(ctx, replaced(oldCover, cover))

	p, err := s.repo.GetPlaylist(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

// DeletePlaylist удаляет плейлист владельца.
func (s *CatalogService) DeletePlaylist(ctx context.Context, requesterID, id int64) error {
	const op = "catalog.DeletePlaylist"
	current, err := s.ownPlaylist(ctx, requesterID, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err = s.repo.DeletePlaylist(ctx, requesterID, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.discard(ctx, current.CoverImage)
	return nil
}

func (s *CatalogService) ownPlaylist(ctx context.Context, requesterID, id int64) (*models.Playlist, error) {
	if err := access.RequireUser(requesterID); err != nil {
		return nil, err
	}
	p, err := s.repo.GetPlaylist(ctx, id)
	if err != nil {
		return nil, err
	}
	if err = access.CheckWrite(p.UserID, requesterID); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *CatalogService) validatePlaylist(ctx context.Context, requesterID int64, in models.PlaylistInput) ([]int64, error) {
	if err := upload.Validate(in.Cover, s.imageRule); err != nil {
		return nil, err
	}
	trackIDs := uniqueIDs(in.TrackIDs)
	if len(trackIDs) == 0 {
		return trackIDs, nil
	}
	n, err := s.repo.CountVisibleTracks(ctx, requesterID, trackIDs)
	if err != nil {
		return nil, err
	}
	if n != len(trackIDs) {
		return nil, fmt.Errorf("%w: track is not available", models.ErrInvalidReference)
	}
	return trackIDs, nil
}
