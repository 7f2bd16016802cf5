package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/magabrotheeeer/audio-library/internal/lib/query"
	"github.com/magabrotheeeer/audio-library/internal/models"
)

const trackSelect = `
	SELECT t.id, t.user_id, t.title, t.license_id, t.album_id, t.link_of_author, t.file, t.cover,
	       t.private, t.create_at, t.plays_count, t.download, t.likes_count, p.display_name
	FROM tracks t
	JOIN user_profiles p ON p.user_id = t.user_id`

// TrackOrdering допустимые поля сортировки треков.
var TrackOrdering = map[string]string{
	"create_at":   "t.create_at",
	"plays_count": "t.plays_count",
	"download":    "t.download",
	"user":        "t.user_id",
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func scanTrack(row scanner) (*models.Track, error) {
	t := &models.Track{Genres: []models.Genre{}}
	var albumID sql.NullInt64
	if err := row.Scan(&t.ID, &t.UserID, &t.Title, &t.LicenseID, &albumID, &t.LinkOfAuthor, &t.File,
		&t.CoverImage, &t.Private, &t.CreateAt, &t.PlaysCount, &t.Download, &t.LikesCount, &t.AuthorName); err != nil {
		return nil, err
	}
	if albumID.Valid {
		t.AlbumID = &albumID.Int64
	}
	return t, nil
}

// loadGenres заполняет жанры у переданных треков одним запросом.
func loadGenres(ctx context.Context, q querier, tracks []*models.Track) error {
	if len(tracks) == 0 {
		return nil
	}
	ids := make([]int64, 0, len(tracks))
	byID := make(map[int64][]*models.Track, len(tracks))
	for _, t := range tracks {
		if _, ok := byID[t.ID]; !ok {
			ids = append(ids, t.ID)
		}
		byID[t.ID] = append(byID[t.ID], t)
	}

	rows, err := q.QueryContext(ctx, `
		SELECT tg.track_id, g.id, g.name
		FROM track_genres tg
		JOIN genres g ON g.id = tg.genre_id
		WHERE tg.track_id = ANY($1)
		ORDER BY g.name`, ids)
	if err != nil {
		return err
	}
	defer func() {
		_ = rows.Close()
	}()
	for rows.Next() {
		var trackID int64
		var g models.Genre
		if err = rows.Scan(&trackID, &g.ID, &g.Name); err != nil {
			return err
		}
		for _, t := range byID[trackID] {
			t.Genres = append(t.Genres, g)
		}
	}
	return rows.Err()
}

// ListTracks возвращает страницу треков и общее количество по фильтру.
func (s *Storage) ListTracks(ctx context.Context, f models.TrackFilter) ([]*models.Track, int, error) {
	const op = "storage.ListTracks"
	if err := checkCtx(ctx, op); err != nil {
		return nil, 0, err
	}

	b := query.New(trackSelect)
	if f.UserID != 0 {
		b.Where("t.user_id = ?", f.UserID)
	}
	if f.PublicOnly {
		b.Where("t.private = ?", false)
	}
	b.Search(f.Search, "t.title", "p.display_name").
		OrderBy(f.Ordering, TrackOrdering, "t.id DESC").
		Paginate(f.Limit, f.Offset)

	var count int
	countQuery, countArgs := b.BuildCount()
	if err := s.DB.QueryRowContext(ctx, countQuery, countArgs...).Scan(&count); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	tracks, err := s.queryTracks(ctx, b)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	return tracks, count, nil
}

func (s *Storage) queryTracks(ctx context.Context, b *query.Builder) ([]*models.Track, error) {
	q, args := b.Build()
	rows, err := s.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()

	result := make([]*models.Track, 0)
	for rows.Next() {
		t, err := scanTrack(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, t)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	if err = loadGenres(ctx, s.DB, result); err != nil {
		return nil, err
	}
	return result, nil
}

// GetTrack возвращает трек по id без проверки видимости.
func (s *Storage) GetTrack(ctx context.Context, id int64) (*models.Track, error) {
	const op = "storage.GetTrack"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	t, err := scanTrack(s.DB.QueryRowContext(ctx, trackSelect+` WHERE t.id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, notFound(err))
	}
	if err = loadGenres(ctx, s.DB, []*models.Track{t}); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return t, nil
}

// CreateTrack сохраняет трек и его жанры в одной транзакции.
func (s *Storage) CreateTrack(ctx context.Context, t models.Track, genreIDs []int64) (int64, error) {
	const op = "storage.CreateTrack"
	if err := checkCtx(ctx, op); err != nil {
		return 0, err
	}

	var id int64
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if err := tx.QueryRowContext(ctx, `
			INSERT INTO tracks (user_id, title, license_id, album_id, link_of_author, file, cover, private)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`,
			t.UserID, t.Title, t.LicenseID, t.AlbumID, t.LinkOfAuthor, t.File, t.CoverImage, t.Private).Scan(&id); err != nil {
			return err
		}
		return setTrackGenres(ctx, tx, id, genreIDs)
	})
	if pgCode(err) == pgForeignKeyViolation {
		return 0, fmt.Errorf("%s: %w", op, models.ErrInvalidReference)
	}
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

// UpdateTrack сохраняет изменяемые поля трека владельца и заменяет жанры.
func (s *Storage) UpdateTrack(ctx context.Context, t models.Track, genreIDs []int64) error {
	const op = "storage.UpdateTrack"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE tracks
			SET title = $1, license_id = $2, album_id = $3, link_of_author = $4, file = $5, cover = $6, private = $7
			WHERE id = $8 AND user_id = $9`,
			t.Title, t.LicenseID, t.AlbumID, t.LinkOfAuthor, t.File, t.CoverImage, t.Private, t.ID, t.UserID)
		if err != nil {
			return err
		}
		if err = affected(res); err != nil {
			return err
		}
		if _, err = tx.ExecContext(ctx, `DELETE FROM track_genres WHERE track_id = $1`, t.ID); err != nil {
			return err
		}
		return setTrackGenres(ctx, tx, t.ID, genreIDs)
	})
	if pgCode(err) == pgForeignKeyViolation {
		return fmt.Errorf("%s: %w", op, models.ErrInvalidReference)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func setTrackGenres(ctx context.Context, tx *sql.Tx, trackID int64, genreIDs []int64) error {
	if len(genreIDs) == 0 {
		return nil
	}
	_, err := tx.ExecContext(ctx, `
		INSERT INTO track_genres (track_id, genre_id)
		SELECT $1, unnest($2::bigint[])
		ON CONFLICT DO NOTHING`, trackID, genreIDs)
	return err
}

// DeleteTrack удаляет трек владельца.
func (s *Storage) DeleteTrack(ctx context.Context, userID, id int64) error {
	const op = "storage.DeleteTrack"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	res, err := s.DB.ExecContext(ctx, `DELETE FROM tracks WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err = affected(res); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
