package repository

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/audio-library/internal/lib/query"
	"github.com/magabrotheeeer/audio-library/internal/models"
)

const albumSelect = `SELECT a.id, a.user_id, a.name, a.description, a.private, a.cover FROM albums a`

func scanAlbum(row scanner) (*models.Album, error) {
	a := &models.Album{}
	if err := row.Scan(&a.ID, &a.UserID, &a.Name, &a.Description, &a.Private, &a.CoverImage); err != nil {
		return nil, err
	}
	return a, nil
}

// ListAlbums возвращает альбомы автора. publicOnly скрывает приватные.
func (s *Storage) ListAlbums(ctx context.Context, userID int64, publicOnly bool, limit, offset int) ([]*models.Album, int, error) {
	const op = "storage.ListAlbums"
	if err := checkCtx(ctx, op); err != nil {
		return nil, 0, err
	}

	b := query.New(albumSelect).Where("a.user_id = ?", userID)
	if publicOnly {
		b.Where("a.private = ?", false)
	}
	b.OrderBy("", nil, "a.id ASC").Paginate(limit, offset)

	var count int
	countQuery, countArgs := b.BuildCount()
	if err := s.DB.QueryRowContext(ctx, countQuery, countArgs...).Scan(&count); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	q, args := b.Build()
	rows, err := s.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := make([]*models.Album, 0)
	for rows.Next() {
		a, err := scanAlbum(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, a)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	return result, count, nil
}

// GetAlbum возвращает альбом по id.
func (s *Storage) GetAlbum(ctx context.Context, id int64) (*models.Album, error) {
	const op = "storage.GetAlbum"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	a, err := scanAlbum(s.DB.QueryRowContext(ctx, albumSelect+` WHERE a.id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, notFound(err))
	}
	return a, nil
}

// CreateAlbum сохраняет альбом.
func (s *Storage) CreateAlbum(ctx context.Context, a models.Album) (*models.Album, error) {
	const op = "storage.CreateAlbum"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	err := s.DB.QueryRowContext(ctx, `
		INSERT INTO albums (user_id, name, description, private, cover)
		VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		a.UserID, a.Name, a.Description, a.Private, a.CoverImage).Scan(&a.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &a, nil
}

// UpdateAlbum сохраняет альбом владельца целиком.
func (s *Storage) UpdateAlbum(ctx context.Context, a models.Album) error {
	const op = "storage.UpdateAlbum"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	res, err := s.DB.ExecContext(ctx, `
		UPDATE albums SET name = $1, description = $2, private = $3, cover = $4
		WHERE id = $5 AND user_id = $6`,
		a.Name, a.Description, a.Private, a.CoverImage, a.ID, a.UserID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err = affected(res); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// DeleteAlbum удаляет альбом владельца, у треков ссылка на него обнуляется.
func (s *Storage) DeleteAlbum(ctx context.Context, userID, id int64) error {
	const op = "storage.DeleteAlbum"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	res, err := s.DB.ExecContext(ctx, `DELETE FROM albums WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err = affected(res); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
