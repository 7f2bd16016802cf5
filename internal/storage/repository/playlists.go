package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/magabrotheeeer/audio-library/internal/models"
)

func scanPlaylist(row scanner) (*models.Playlist, error) {
	p := &models.Playlist{Tracks: []models.Track{}}
	if err := row.Scan(&p.ID, &p.UserID, &p.Title, &p.CoverImage); err != nil {
		return nil, err
	}
	return p, nil
}

// ListPlaylists возвращает плейлисты пользователя вместе с треками.
func (s *Storage) ListPlaylists(ctx context.Context, userID int64, limit, offset int) ([]*models.Playlist, int, error) {
	const op = "storage.ListPlaylists"
	if err := checkCtx(ctx, op); err != nil {
		return nil, 0, err
	}

	var count int
	if err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM playlists WHERE user_id = $1`, userID).Scan(&count); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, user_id, title, cover FROM playlists
		WHERE user_id = $1
		ORDER BY id ASC
		LIMIT $2 OFFSET $3`, userID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := make([]*models.Playlist, 0)
	for rows.Next() {
		p, err := scanPlaylist(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, p)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	if err = s.loadPlaylistTracks(ctx, result); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	return result, count, nil
}

// GetPlaylist возвращает плейлист по id вместе с треками.
func (s *Storage) GetPlaylist(ctx context.Context, id int64) (*models.Playlist, error) {
	const op = "storage.GetPlaylist"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	p, err := scanPlaylist(s.DB.QueryRowContext(ctx, `SELECT id, user_id, title, cover FROM playlists WHERE id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, notFound(err))
	}
	if err = s.loadPlaylistTracks(ctx, []*models.Playlist{p}); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

// loadPlaylistTracks подгружает треки плейлистов, видимые их владельцу.
func (s *Storage) loadPlaylistTracks(ctx context.Context, playlists []*models.Playlist) error {
	if len(playlists) == 0 {
		return nil
	}
	ids := make([]int64, 0, len(playlists))
	byID := make(map[int64]*models.Playlist, len(playlists))
	for _, p := range playlists {
		ids = append(ids, p.ID)
		byID[p.ID] = p
	}

	rows, err := s.DB.QueryContext(ctx, `
		SELECT pt.playlist_id, t.id, t.user_id, t.title, t.license_id, t.album_id, t.link_of_author, t.file, t.cover,
		       t.private, t.create_at, t.plays_count, t.download, t.likes_count, p.display_name
		FROM playlist_tracks pt
		JOIN playlists pl ON pl.id = pt.playlist_id
		JOIN tracks t ON t.id = pt.track_id
		JOIN user_profiles p ON p.user_id = t.user_id
		WHERE pt.playlist_id = ANY($1) AND (t.private = FALSE OR t.user_id = pl.user_id)
		ORDER BY t.id ASC`, ids)
	if err != nil {
		return err
	}
	defer func() {
		_ = rows.Close()
	}()

	type member struct {
		playlistID int64
		track      *models.Track
	}
	members := make([]member, 0)
	tracks := make([]*models.Track, 0)
	for rows.Next() {
		var playlistID int64
		t := &models.Track{Genres: []models.Genre{}}
		var albumID sql.NullInt64
		if err = rows.Scan(&playlistID, &t.ID, &t.UserID, &t.Title, &t.LicenseID, &albumID, &t.LinkOfAuthor,
			&t.File, &t.CoverImage, &t.Private, &t.CreateAt, &t.PlaysCount, &t.Download, &t.LikesCount,
			&t.AuthorName); err != nil {
			return err
		}
		if albumID.Valid {
			t.AlbumID = &albumID.Int64
		}
		members = append(members, member{playlistID: playlistID, track: t})
		tracks = append(tracks, t)
	}
	if err = rows.Err(); err != nil {
		return err
	}
	if err = loadGenres(ctx, s.DB, tracks); err != nil {
		return err
	}
	for _, m := range members {
		p := byID[m.playlistID]
		p.Tracks = append(p.Tracks, *m.track)
	}
	return nil
}

// CountVisibleTracks считает треки из ids, доступные пользователю: публичные и собственные.
func (s *Storage) CountVisibleTracks(ctx context.Context, userID int64, ids []int64) (int, error) {
	const op = "storage.CountVisibleTracks"
	if err := checkCtx(ctx, op); err != nil {
		return 0, err
	}

	var count int
	err := s.DB.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM tracks
		WHERE id = ANY($1) AND (private = FALSE OR user_id = $2)`, ids, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}

// CreatePlaylist сохраняет плейлист и его треки в одной транзакции.
func (s *Storage) CreatePlaylist(ctx context.Context, p models.Playlist, trackIDs []int64) (int64, error) {
	const op = "storage.CreatePlaylist"
	if err := checkCtx(ctx, op); err != nil {
		return 0, err
	}

	var id int64
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if err := tx.QueryRowContext(ctx, `
			INSERT INTO playlists (user_id, title, cover) VALUES ($1, $2, $3) RETURNING id`,
			p.UserID, p.Title, p.CoverImage).Scan(&id); err != nil {
			return err
		}
		return setPlaylistTracks(ctx, tx, id, trackIDs)
	})
	if pgCode(err) == pgForeignKeyViolation {
		return 0, fmt.Errorf("%s: %w", op, models.ErrInvalidReference)
	}
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

// UpdatePlaylist сохраняет поля плейлиста владельца и заменяет набор треков.
func (s *Storage) UpdatePlaylist(ctx context.Context, p models.Playlist, trackIDs []int64) error {
	const op = "storage.UpdatePlaylist"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `UPDATE playlists SET title = $1, cover = $2 WHERE id = $3 AND user_id = $4`,
			p.Title, p.CoverImage, p.ID, p.UserID)
		if err != nil {
			return err
		}
		if err = affected(res); err != nil {
			return err
		}
		if _, err = tx.ExecContext(ctx, `DELETE FROM playlist_tracks WHERE playlist_id = $1`, p.ID); err != nil {
			return err
		}
		return setPlaylistTracks(ctx, tx, p.ID, trackIDs)
	})
	if pgCode(err) == pgForeignKeyViolation {
		return fmt.Errorf("%s: %w", op, models.ErrInvalidReference)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func setPlaylistTracks(ctx context.Context, tx *sql.Tx, playlistID int64, trackIDs []int64) error {
	if len(trackIDs) == 0 {
		return nil
	}
	_, err := tx.ExecContext(ctx, `
		INSERT INTO playlist_tracks (playlist_id, track_id)
		SELECT $1, unnest($2::bigint[])
		ON CONFLICT DO NOTHING`, playlistID, trackIDs)
	return err
}

// DeletePlaylist удаляет плейлист владельца.
func (s *Storage) DeletePlaylist(ctx context.Context, userID, id int64) error {
	const op = "storage.DeletePlaylist"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	res, err := s.DB.ExecContext(ctx, `DELETE FROM playlists WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err = affected(res); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
