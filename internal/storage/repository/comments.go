package repository

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/audio-library/internal/models"
)

const commentColumns = `id, user_id, track_id, text, create_at`

func scanComment(row scanner) (*models.Comment, error) {
	c := &models.Comment{}
	if err := row.Scan(&c.ID, &c.UserID, &c.TrackID, &c.Text, &c.CreateAt); err != nil {
		return nil, err
	}
	return c, nil
}

// ListCommentsByUser возвращает комментарии автора, новые сверху.
func (s *Storage) ListCommentsByUser(ctx context.Context, userID int64, limit, offset int) ([]*models.Comment, int, error) {
	const op = "storage.ListCommentsByUser"
	if err := checkCtx(ctx, op); err != nil {
		return nil, 0, err
	}

	result, count, err := s.listComments(ctx, `user_id = $1`, `create_at DESC, id DESC`, userID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	return result, count, nil
}

// ListCommentsByTrack возвращает комментарии к треку в порядке создания.
func (s *Storage) ListCommentsByTrack(ctx context.Context, trackID int64, limit, offset int) ([]*models.Comment, int, error) {
	const op = "storage.ListCommentsByTrack"
	if err := checkCtx(ctx, op); err != nil {
		return nil, 0, err
	}

	result, count, err := s.listComments(ctx, `track_id = $1`, `create_at ASC, id ASC`, trackID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	return result, count, nil
}

func (s *Storage) listComments(ctx context.Context, where, order string, id int64, limit, offset int) ([]*models.Comment, int, error) {
	var count int
	if err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM comments WHERE `+where, id).Scan(&count); err != nil {
		return nil, 0, err
	}

	rows, err := s.DB.QueryContext(ctx, `SELECT `+commentColumns+` FROM comments WHERE `+where+
		` ORDER BY `+order+` LIMIT $2 OFFSET $3`, id, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer func() {
		_ = rows.Close()
	}()

	result := make([]*models.Comment, 0)
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, c)
	}
	return result, count, rows.Err()
}

// CreateComment сохраняет комментарий.
func (s *Storage) CreateComment(ctx context.Context, userID, trackID int64, text string) (*models.Comment, error) {
	const op = "storage.CreateComment"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	c, err := scanComment(s.DB.QueryRowContext(ctx, `
		INSERT INTO comments (user_id, track_id, text) VALUES ($1, $2, $3)
		RETURNING `+commentColumns, userID, trackID, text))
	if pgCode(err) == pgForeignKeyViolation {
		return nil, fmt.Errorf("%s: %w", op, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return c, nil
}

// UpdateComment меняет текст комментария автора.
func (s *Storage) UpdateComment(ctx context.Context, userID, id int64, text string) (*models.Comment, error) {
	const op = "storage.UpdateComment"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	c, err := scanComment(s.DB.QueryRowContext(ctx, `
		UPDATE comments SET text = $1 WHERE id = $2 AND user_id = $3
		RETURNING `+commentColumns, text, id, userID))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, notFound(err))
	}
	return c, nil
}

// DeleteComment удаляет комментарий автора.
func (s *Storage) DeleteComment(ctx context.Context, userID, id int64) error {
	const op = "storage.DeleteComment"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	res, err := s.DB.ExecContext(ctx, `DELETE FROM comments WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err = affected(res); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
