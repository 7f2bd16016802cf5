package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/magabrotheeeer/audio-library/internal/models"
)

const userColumns = `id, email, password_hash, first_name, last_name, is_active, is_staff, is_spam_email, created_at`

func scanUser(row scanner) (*models.User, error) {
	u := &models.User{}
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName,
		&u.IsActive, &u.IsStaff, &u.IsSpamEmail, &u.CreatedAt); err != nil {
		return nil, err
	}
	return u, nil
}

// CreateUser сохраняет пользователя и его пустой профиль в одной транзакции.
func (s *Storage) CreateUser(ctx context.Context, user models.User) (int64, error) {
	const op = "storage.CreateUser"
	if err := checkCtx(ctx, op); err != nil {
		return 0, err
	}

	var id int64
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		query := `INSERT INTO users (email, password_hash, first_name, last_name, is_active, is_staff, is_spam_email)
				  VALUES ($1, $2, $3, $4, $5, $6, $7)
				  RETURNING id`
		if err := tx.QueryRowContext(ctx, query, user.Email, user.PasswordHash, user.FirstName, user.LastName,
			user.IsActive, user.IsStaff, user.IsSpamEmail).Scan(&id); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `INSERT INTO user_profiles (user_id) VALUES ($1)`, id)
		return err
	})
	if pgCode(err) == pgUniqueViolation {
		return 0, fmt.Errorf("%s: %w", op, models.ErrEmailTaken)
	}
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

// GetUserByEmail возвращает пользователя по email.
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.GetUserByEmail"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, email))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, notFound(err))
	}
	return u, nil
}

// GetUser возвращает пользователя по id.
func (s *Storage) GetUser(ctx context.Context, id int64) (*models.User, error) {
	const op = "storage.GetUser"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, notFound(err))
	}
	return u, nil
}

// ActivateUser отмечает пользователя активным.
func (s *Storage) ActivateUser(ctx context.Context, id int64) error {
	const op = "storage.ActivateUser"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	res, err := s.DB.ExecContext(ctx, `UPDATE users SET is_active = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err = affected(res); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// SetPassword заменяет хэш пароля.
func (s *Storage) SetPassword(ctx context.Context, id int64, passwordHash string) error {
	const op = "storage.SetPassword"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	res, err := s.DB.ExecContext(ctx, `UPDATE users SET password_hash = $1 WHERE id = $2`, passwordHash, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err = affected(res); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// SetNewsletter включает или выключает рассылку для пользователя.
func (s *Storage) SetNewsletter(ctx context.Context, id int64, subscribed bool) error {
	const op = "storage.SetNewsletter"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	res, err := s.DB.ExecContext(ctx, `UPDATE users SET is_spam_email = $1 WHERE id = $2`, subscribed, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err = affected(res); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ListNewsletterRecipients возвращает активных пользователей, согласных на рассылку.
func (s *Storage) ListNewsletterRecipients(ctx context.Context) ([]*models.User, error) {
	const op = "storage.ListNewsletterRecipients"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT ` + userColumns + ` FROM users
			  WHERE is_active = TRUE AND is_spam_email = TRUE
			  ORDER BY id`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, u)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// DeleteUser удаляет пользователя, остальные строки удаляются каскадом.
// Возвращает ключи всех файлов пользователя, собранные в той же транзакции.
func (s *Storage) DeleteUser(ctx context.Context, id int64) ([]string, error) {
	const op = "storage.DeleteUser"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	var keys []string
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx, `
			SELECT avatar FROM user_profiles WHERE user_id = $1
			UNION ALL SELECT cover FROM albums WHERE user_id = $1
			UNION ALL SELECT file FROM tracks WHERE user_id = $1
			UNION ALL SELECT cover FROM tracks WHERE user_id = $1
			UNION ALL SELECT cover FROM playlists WHERE user_id = $1`, id)
		if err != nil {
			return err
		}
		for rows.Next() {
			var key string
			if err = rows.Scan(&key); err != nil {
				_ = rows.Close()
				return err
			}
			if key != "" {
				keys = append(keys, key)
			}
		}
		if err = rows.Err(); err != nil {
			_ = rows.Close()
			return err
		}
		_ = rows.Close()

		res, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
		if err != nil {
			return err
		}
		return affected(res)
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return keys, nil
}
