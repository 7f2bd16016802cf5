package repository

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/audio-library/internal/models"
)

// ListGenres возвращает все жанры по имени.
func (s *Storage) ListGenres(ctx context.Context) ([]*models.Genre, error) {
	const op = "storage.ListGenres"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	rows, err := s.DB.QueryContext(ctx, `SELECT id, name FROM genres ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := make([]*models.Genre, 0)
	for rows.Next() {
		g := &models.Genre{}
		if err = rows.Scan(&g.ID, &g.Name); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, g)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// CountGenres возвращает количество существующих жанров среди ids.
func (s *Storage) CountGenres(ctx context.Context, ids []int64) (int, error) {
	const op = "storage.CountGenres"
	if err := checkCtx(ctx, op); err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}

	var n int
	if err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM genres WHERE id = ANY($1)`, ids).Scan(&n); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return n, nil
}
