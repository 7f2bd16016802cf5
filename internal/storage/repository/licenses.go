package repository

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/audio-library/internal/models"
)

// ListLicenses возвращает лицензии пользователя.
func (s *Storage) ListLicenses(ctx context.Context, userID int64) ([]*models.License, error) {
	const op = "storage.ListLicenses"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	rows, err := s.DB.QueryContext(ctx, `SELECT id, user_id, text FROM licenses WHERE user_id = $1 ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := make([]*models.License, 0)
	for rows.Next() {
		l := &models.License{}
		if err = rows.Scan(&l.ID, &l.UserID, &l.Text); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, l)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// GetLicense возвращает лицензию по id.
func (s *Storage) GetLicense(ctx context.Context, id int64) (*models.License, error) {
	const op = "storage.GetLicense"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	l := &models.License{}
	err := s.DB.QueryRowContext(ctx, `SELECT id, user_id, text FROM licenses WHERE id = $1`, id).
		Scan(&l.ID, &l.UserID, &l.Text)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, notFound(err))
	}
	return l, nil
}

// CreateLicense сохраняет лицензию.
func (s *Storage) CreateLicense(ctx context.Context, userID int64, text string) (*models.License, error) {
	const op = "storage.CreateLicense"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	l := &models.License{UserID: userID, Text: text}
	if err := s.DB.QueryRowContext(ctx, `INSERT INTO licenses (user_id, text) VALUES ($1, $2) RETURNING id`,
		userID, text).Scan(&l.ID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return l, nil
}

// UpdateLicense меняет текст лицензии владельца.
func (s *Storage) UpdateLicense(ctx context.Context, userID, id int64, text string) (*models.License, error) {
	const op = "storage.UpdateLicense"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	res, err := s.DB.ExecContext(ctx, `UPDATE licenses SET text = $1 WHERE id = $2 AND user_id = $3`, text, id, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = affected(res); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &models.License{ID: id, UserID: userID, Text: text}, nil
}

// DeleteLicense удаляет лицензию владельца.
// Если на лицензию ссылается трек, возвращает ErrLicenseInUse.
func (s *Storage) DeleteLicense(ctx context.Context, userID, id int64) error {
	const op = "storage.DeleteLicense"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	res, err := s.DB.ExecContext(ctx, `DELETE FROM licenses WHERE id = $1 AND user_id = $2`, id, userID)
	if pgCode(err) == pgForeignKeyViolation {
		return fmt.Errorf("%s: %w", op, models.ErrLicenseInUse)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err = affected(res); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
