package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/audio-library/internal/lib/sl"
	"github.com/magabrotheeeer/audio-library/internal/lib/upload"
	"github.com/magabrotheeeer/audio-library/internal/models"
	access "github.com/magabrotheeeer/audio-library/internal/services/access"
)

// ListPublicTracks возвращает публичные треки всех авторов.
func (s *CatalogService) ListPublicTracks(ctx context.Context, params models.ListParams) (*models.Page[*models.Track], error) {
	const op = "catalog.ListPublicTracks"
	res, err := s.listTracks(ctx, models.TrackFilter{PublicOnly: true}, params)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}

// ListAuthorTracks возвращает публичные треки автора.
func (s *CatalogService) ListAuthorTracks(ctx context.Context, authorID int64, params models.ListParams) (*models.Page[*models.Track], error) {
	const op = "catalog.ListAuthorTracks"
	res, err := s.listTracks(ctx, models.TrackFilter{UserID: authorID, PublicOnly: true}, params)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}

// ListMyTracks возвращает все треки пользователя, включая приватные.
func (s *CatalogService) ListMyTracks(ctx context.Context, requesterID int64, params models.ListParams) (*models.Page[*models.Track], error) {
	const op = "catalog.ListMyTracks"
	if err := access.RequireUser(requesterID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	res, err := s.listTracks(ctx, models.TrackFilter{UserID: requesterID}, params)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}

func (s *CatalogService) listTracks(ctx context.Context, f models.TrackFilter, params models.ListParams) (*models.Page[*models.Track], error) {
	page, size, offset := s.page(params)
	f.Search = params.Search
	f.Ordering = params.Ordering
	f.Limit = size
	f.Offset = offset
	tracks, count, err := s.repo.ListTracks(ctx, f)
	if err != nil {
		return nil, err
	}
	return models.NewPage(tracks, count, page, size), nil
}

// GetTrack возвращает трек, если он виден пользователю.
func (s *CatalogService) GetTrack(ctx context.Context, requesterID, id int64) (*models.Track, error) {
	const op = "catalog.GetTrack"
	track, err := s.repo.GetTrack(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = access.CheckRead(track.UserID, track.Private, requesterID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return track, nil
}

// CreateTrack загружает трек с необязательной обложкой.
func (s *CatalogService) CreateTrack(ctx context.Context, requesterID int64, in models.TrackInput) (*models.Track, error) {
	const op = "catalog.CreateTrack"
	if err := access.RequireUser(requesterID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if in.File == nil {
		return nil, fmt.Errorf("%s: %w", op, models.ErrFileRequired)
	}
	genreIDs, err := s.validateTrack(ctx, requesterID, in)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	file, cover, err := s.storeTrackFiles(ctx, requesterID, in)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	id, err := s.repo.CreateTrack(ctx, models.Track{
		UserID:       requesterID,
		Title:        in.Title,
		LicenseID:    in.LicenseID,
		AlbumID:      in.AlbumID,
		LinkOfAuthor: in.LinkOfAuthor,
		File:         file,
		CoverImage:   cover,
		Private:      in.Private,
	}, genreIDs)
	if err != nil {
		s.discard(ctx, file, cover)
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("track created", sl.ID("track_id", id), sl.ID("user_id", requesterID))

	track, err := s.repo.GetTrack(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return track, nil
}

// UpdateTrack меняет трек владельца. Аудио и обложка заменяются, только если переданы.
func (s *CatalogService) UpdateTrack(ctx context.Context, requesterID, id int64, in models.TrackInput) (*models.Track, error) {
	const op = "catalog.UpdateTrack"
	current, err := s.ownTrack(ctx, requesterID, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	genreIDs, err := s.validateTrack(ctx, requesterID, in)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	oldFile, oldCover := current.File, current.CoverImage

	file, cover, err := s.storeTrackFiles(ctx, requesterID, in)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	updated := *current
	updated.Title = in.Title
	updated.LicenseID = in.LicenseID
	updated.AlbumID = in.AlbumID
	updated.LinkOfAuthor = in.LinkOfAuthor
	updated.Private = in.Private
	if file != "" {
		updated.File = file
	}
	if cover != "" {
		updated.CoverImage = cover
	}
	if err = s.repo.UpdateTrack(ctx, updated, genreIDs); err != nil {
		s.discard(ctx, file, cover)
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.discard(ctx, replaced(oldFile, file), replaced(oldCover, cover))

	track, err := s.repo.GetTrack(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return track, nil
}

// DeleteTrack удаляет трек владельца и затем его файлы.
func (s *CatalogService) DeleteTrack(ctx context.Context, requesterID, id int64) error {
	const op = "catalog.DeleteTrack"
	current, err := s.ownTrack(ctx, requesterID, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err = s.repo.DeleteTrack(ctx, requesterID, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.discard(ctx, current.File, current.CoverImage)
	return nil
}

func (s *CatalogService) ownTrack(ctx context.Context, requesterID, id int64) (*models.Track, error) {
	if err := access.RequireUser(requesterID); err != nil {
		return nil, err
	}
	track, err := s.repo.GetTrack(ctx, id)
	if err != nil {
		return nil, err
	}
	if err = access.CheckWrite(track.UserID, requesterID); err != nil {
		return nil, err
	}
	return track, nil
}

// validateTrack проверяет файлы и ссылки трека. Лицензия и альбом должны
// принадлежать пользователю, жанры должны существовать.
func (s *CatalogService) validateTrack(ctx context.Context, requesterID int64, in models.TrackInput) ([]int64, error) {
	if err := upload.Validate(in.File, s.audioRule); err != nil {
		return nil, err
	}
	if err := upload.Validate(in.Cover, s.imageRule); err != nil {
		return nil, err
	}

	license, err := s.repo.GetLicense(ctx, in.LicenseID)
	if errors.Is(err, models.ErrNotFound) {
		return nil, fmt.Errorf("%w: license %d", models.ErrInvalidReference, in.LicenseID)
	}
	if err != nil {
		return nil, err
	}
	if license.UserID != requesterID {
		return nil, fmt.Errorf("%w: license %d", models.ErrInvalidReference, in.LicenseID)
	}

	if in.AlbumID != nil {
		album, err := s.repo.GetAlbum(ctx, *in.AlbumID)
		if errors.Is(err, models.ErrNotFound) {
			return nil, fmt.Errorf("%w: album %d", models.ErrInvalidReference, *in.AlbumID)
		}
		if err != nil {
			return nil, err
		}
		if album.UserID != requesterID {
			return nil, fmt.Errorf("%w: album %d", models.ErrInvalidReference, *in.AlbumID)
		}
	}

	genreIDs := uniqueIDs(in.GenreIDs)
	if len(genreIDs) > 0 {
		n, err := s.repo.CountGenres(ctx, genreIDs)
		if err != nil {
			return nil, err
		}
		if n != len(genreIDs) {
			return nil, fmt.Errorf("%w: unknown genre", models.ErrInvalidReference)
		}
	}
	return genreIDs, nil
}

func (s *CatalogService) storeTrackFiles(ctx context.Context, requesterID int64, in models.TrackInput) (string, string, error) {
	file, err := upload.Store(ctx, s.files, upload.KindTrack, requesterID, in.File, false)
	if err != nil {
		return "", "", err
	}
	cover, err := upload.Store(ctx, s.files, upload.KindTrack, requesterID, in.Cover, true)
	if err != nil {
		s.discard(ctx, file)
		return "", "", err
	}
	return file, cover, nil
}
