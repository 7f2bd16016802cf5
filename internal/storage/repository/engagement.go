package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/magabrotheeeer/audio-library/internal/models"
)

// IncrementPlays увеличивает счётчик прослушиваний трека.
// Для авторизованного пользователя (userID != 0) обновляет историю прослушиваний.
func (s *Storage) IncrementPlays(ctx context.Context, trackID, userID int64) error {
	const op = "storage.IncrementPlays"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `UPDATE tracks SET plays_count = plays_count + 1 WHERE id = $1`, trackID)
		if err != nil {
			return err
		}
		if err = affected(res); err != nil {
			return err
		}
		if userID == 0 {
			return nil
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO played_user_tracks (user_id, track_id, played_at)
			VALUES ($1, $2, NOW())
			ON CONFLICT (user_id, track_id) DO UPDATE SET played_at = EXCLUDED.played_at`, userID, trackID)
		return err
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// IncrementDownload увеличивает счётчик скачиваний трека.
func (s *Storage) IncrementDownload(ctx context.Context, trackID int64) error {
	const op = "storage.IncrementDownload"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	res, err := s.DB.ExecContext(ctx, `UPDATE tracks SET download = download + 1 WHERE id = $1`, trackID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err = affected(res); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// LikeTrack добавляет лайк и увеличивает likes_count в одной транзакции.
// Возвращает новое значение счётчика.
func (s *Storage) LikeTrack(ctx context.Context, userID, trackID int64) (int64, error) {
	const op = "storage.LikeTrack"
	if err := checkCtx(ctx, op); err != nil {
		return 0, err
	}

	var count int64
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO track_likes (user_id, track_id) VALUES ($1, $2)
			ON CONFLICT DO NOTHING`, userID, trackID)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return models.ErrAlreadyLiked
		}
		return tx.QueryRowContext(ctx, `
			UPDATE tracks SET likes_count = likes_count + 1
			WHERE id = $1 RETURNING likes_count`, trackID).Scan(&count)
	})
	if pgCode(err) == pgForeignKeyViolation {
		return 0, fmt.Errorf("%s: %w", op, models.ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}

// UnlikeTrack убирает лайк и уменьшает likes_count в одной транзакции.
func (s *Storage) UnlikeTrack(ctx context.Context, userID, trackID int64) (int64, error) {
	const op = "storage.UnlikeTrack"
	if err := checkCtx(ctx, op); err != nil {
		return 0, err
	}

	var count int64
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM track_likes WHERE user_id = $1 AND track_id = $2`, userID, trackID)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return models.ErrNotLiked
		}
		return tx.QueryRowContext(ctx, `
			UPDATE tracks SET likes_count = GREATEST(likes_count - 1, 0)
			WHERE id = $1 RETURNING likes_count`, trackID).Scan(&count)
	})
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}

// CountLikes возвращает реальное количество лайков трека.
func (s *Storage) CountLikes(ctx context.Context, trackID int64) (int64, error) {
	const op = "storage.CountLikes"
	if err := checkCtx(ctx, op); err != nil {
		return 0, err
	}

	var count int64
	if err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM track_likes WHERE track_id = $1`, trackID).Scan(&count); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}

// ListPlayed возвращает историю прослушиваний пользователя, последние сверху.
// Чужие приватные треки в историю не попадают.
func (s *Storage) ListPlayed(ctx context.Context, userID int64, limit, offset int) ([]*models.PlayedTrack, int, error) {
	const op = "storage.ListPlayed"
	if err := checkCtx(ctx, op); err != nil {
		return nil, 0, err
	}

	const filter = `
		FROM played_user_tracks pu
		JOIN tracks t ON t.id = pu.track_id
		JOIN user_profiles p ON p.user_id = t.user_id
		WHERE pu.user_id = $1 AND (t.private = FALSE OR t.user_id = $1)`

	var count int
	if err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) `+filter, userID).Scan(&count); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	rows, err := s.DB.QueryContext(ctx, `
		SELECT t.id, t.user_id, t.title, t.license_id, t.album_id, t.link_of_author, t.file, t.cover,
		       t.private, t.create_at, t.plays_count, t.download, t.likes_count, p.display_name, pu.played_at
		`+filter+`
		ORDER BY pu.played_at DESC, t.id DESC
		LIMIT $2 OFFSET $3`, userID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := make([]*models.PlayedTrack, 0)
	tracks := make([]*models.Track, 0)
	for rows.Next() {
		pt := &models.PlayedTrack{Track: models.Track{Genres: []models.Genre{}}}
		t := &pt.Track
		var albumID sql.NullInt64
		if err = rows.Scan(&t.ID, &t.UserID, &t.Title, &t.LicenseID, &albumID, &t.LinkOfAuthor, &t.File,
			&t.CoverImage, &t.Private, &t.CreateAt, &t.PlaysCount, &t.Download, &t.LikesCount, &t.AuthorName,
			&pt.PlayedAt); err != nil {
			return nil, 0, fmt.Errorf("%s: %w", op, err)
		}
		if albumID.Valid {
			t.AlbumID = &albumID.Int64
		}
		result = append(result, pt)
		tracks = append(tracks, t)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	if err = loadGenres(ctx, s.DB, tracks); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	return result, count, nil
}
