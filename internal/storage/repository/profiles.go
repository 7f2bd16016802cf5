package repository

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/audio-library/internal/lib/query"
	"github.com/magabrotheeeer/audio-library/internal/models"
)

// GetProfile возвращает профиль пользователя.
func (s *Storage) GetProfile(ctx context.Context, userID int64) (*models.Profile, error) {
	const op = "storage.GetProfile"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	p := &models.Profile{}
	err := s.DB.QueryRowContext(ctx, `
		SELECT user_id, country, city, bio, display_name, avatar
		FROM user_profiles WHERE user_id = $1`, userID).
		Scan(&p.UserID, &p.Country, &p.City, &p.Bio, &p.DisplayName, &p.Avatar)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, notFound(err))
	}
	return p, nil
}

// UpdateProfile сохраняет профиль целиком, включая ключ аватара.
func (s *Storage) UpdateProfile(ctx context.Context, p models.Profile) error {
	const op = "storage.UpdateProfile"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	res, err := s.DB.ExecContext(ctx, `
		UPDATE user_profiles
		SET country = $1, city = $2, bio = $3, display_name = $4, avatar = $5
		WHERE user_id = $6`,
		p.Country, p.City, p.Bio, p.DisplayName, p.Avatar, p.UserID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err = affected(res); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

const authorSelect = `
	SELECT u.id, u.first_name, u.last_name, p.display_name, p.country, p.city, p.bio, p.avatar,
	       (SELECT COUNT(*) FROM user_following f WHERE f.following_user_id = u.id) AS followers_count,
	       (SELECT COUNT(*) FROM user_following f WHERE f.user_id = u.id) AS following_count
	FROM users u
	JOIN user_profiles p ON p.user_id = u.id`

func scanAuthor(row scanner) (*models.Author, error) {
	a := &models.Author{}
	if err := row.Scan(&a.ID, &a.FirstName, &a.LastName, &a.DisplayName, &a.Country, &a.City,
		&a.Bio, &a.Avatar, &a.FollowersCount, &a.FollowingCount); err != nil {
		return nil, err
	}
	return a, nil
}

// ListAuthors возвращает активных авторов с поиском по имени.
func (s *Storage) ListAuthors(ctx context.Context, limit, offset int, search string) ([]*models.Author, int, error) {
	const op = "storage.ListAuthors"
	b := query.New(authorSelect).
		Where("u.is_active = ?", true).
		Search(search, "p.display_name", "u.first_name", "u.last_name").
		OrderBy("", nil, "u.id ASC").
		Paginate(limit, offset)
	authors, count, err := s.listAuthors(ctx, b)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	return authors, count, nil
}

// ListFollowers возвращает подписчиков автора.
func (s *Storage) ListFollowers(ctx context.Context, authorID int64, limit, offset int) ([]*models.Author, int, error) {
	const op = "storage.ListFollowers"
	b := query.New(authorSelect).
		Where("u.id IN (SELECT user_id FROM user_following WHERE following_user_id = ?)", authorID).
		OrderBy("", nil, "u.id ASC").
		Paginate(limit, offset)
	authors, count, err := s.listAuthors(ctx, b)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	return authors, count, nil
}

// ListFollowing возвращает авторов, на которых подписан пользователь.
func (s *Storage) ListFollowing(ctx context.Context, userID int64, limit, offset int) ([]*models.Author, int, error) {
	const op = "storage.ListFollowing"
	b := query.New(authorSelect).
		Where("u.id IN (SELECT following_user_id FROM user_following WHERE user_id = ?)", userID).
		OrderBy("", nil, "u.id ASC").
		Paginate(limit, offset)
	authors, count, err := s.listAuthors(ctx, b)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	return authors, count, nil
}

func (s *Storage) listAuthors(ctx context.Context, b *query.Builder) ([]*models.Author, int, error) {
	if err := checkCtx(ctx, "storage.listAuthors"); err != nil {
		return nil, 0, err
	}
	var count int
	countQuery, countArgs := b.BuildCount()
	if err := s.DB.QueryRowContext(ctx, countQuery, countArgs...).Scan(&count); err != nil {
		return nil, 0, err
	}

	q, args := b.Build()
	rows, err := s.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	defer func() {
		_ = rows.Close()
	}()

	result := make([]*models.Author, 0)
	for rows.Next() {
		a, err := scanAuthor(rows)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, a)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, err
	}
	return result, count, nil
}

// GetAuthor возвращает автора вместе с его ссылками.
func (s *Storage) GetAuthor(ctx context.Context, id int64) (*models.Author, error) {
	const op = "storage.GetAuthor"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	a, err := scanAuthor(s.DB.QueryRowContext(ctx, authorSelect+` WHERE u.id = $1 AND u.is_active = TRUE`, id))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, notFound(err))
	}
	links, err := s.ListSocialLinks(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	a.SocialLinks = make([]models.SocialLink, 0, len(links))
	for _, l := range links {
		a.SocialLinks = append(a.SocialLinks, *l)
	}
	return a, nil
}

// ListSocialLinks возвращает ссылки пользователя.
func (s *Storage) ListSocialLinks(ctx context.Context, userID int64) ([]*models.SocialLink, error) {
	const op = "storage.ListSocialLinks"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	rows, err := s.DB.QueryContext(ctx, `SELECT id, user_id, link FROM social_links WHERE user_id = $1 ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := make([]*models.SocialLink, 0)
	for rows.Next() {
		l := &models.SocialLink{}
		if err = rows.Scan(&l.ID, &l.UserID, &l.Link); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, l)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// CreateSocialLink добавляет ссылку пользователю.
func (s *Storage) CreateSocialLink(ctx context.Context, userID int64, link string) (*models.SocialLink, error) {
	const op = "storage.CreateSocialLink"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	l := &models.SocialLink{UserID: userID, Link: link}
	err := s.DB.QueryRowContext(ctx, `INSERT INTO social_links (user_id, link) VALUES ($1, $2) RETURNING id`,
		userID, link).Scan(&l.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return l, nil
}

// UpdateSocialLink меняет ссылку, принадлежащую userID.
func (s *Storage) UpdateSocialLink(ctx context.Context, userID, id int64, link string) (*models.SocialLink, error) {
	const op = "storage.UpdateSocialLink"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	res, err := s.DB.ExecContext(ctx, `UPDATE social_links SET link = $1 WHERE id = $2 AND user_id = $3`, link, id, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = affected(res); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &models.SocialLink{ID: id, UserID: userID, Link: link}, nil
}

// DeleteSocialLink удаляет ссылку, принадлежащую userID.
func (s *Storage) DeleteSocialLink(ctx context.Context, userID, id int64) error {
	const op = "storage.DeleteSocialLink"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	res, err := s.DB.ExecContext(ctx, `DELETE FROM social_links WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err = affected(res); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Follow создаёт подписку userID на targetID. created равен false, если подписка уже была.
func (s *Storage) Follow(ctx context.Context, userID, targetID int64) (bool, error) {
	const op = "storage.Follow"
	if err := checkCtx(ctx, op); err != nil {
		return false, err
	}

	res, err := s.DB.ExecContext(ctx, `
		INSERT INTO user_following (user_id, following_user_id) VALUES ($1, $2)
		ON CONFLICT (user_id, following_user_id) DO NOTHING`, userID, targetID)
	if pgCode(err) == pgForeignKeyViolation {
		return false, fmt.Errorf("%s: %w", op, models.ErrNotFound)
	}
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return n == 1, nil
}

// Unfollow удаляет подписку. Если подписки нет, возвращает ErrNotFollowing.
func (s *Storage) Unfollow(ctx context.Context, userID, targetID int64) error {
	const op = "storage.Unfollow"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	res, err := s.DB.ExecContext(ctx, `DELETE FROM user_following WHERE user_id = $1 AND following_user_id = $2`,
		userID, targetID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, models.ErrNotFollowing)
	}
	return nil
}

