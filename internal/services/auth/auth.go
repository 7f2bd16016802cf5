// Package services содержит логику регистрации, активации, восстановления пароля
// и выпуска JWT.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/audio-library/internal/config"
	"github.com/magabrotheeeer/audio-library/internal/lib/jwt"
	"github.com/magabrotheeeer/audio-library/internal/lib/password"
	"github.com/magabrotheeeer/audio-library/internal/lib/sl"
	"github.com/magabrotheeeer/audio-library/internal/models"
	"github.com/magabrotheeeer/audio-library/internal/storage/files"
)

const (
	activationPrefix = "activation:"
	resetPrefix      = "password_reset:"
)

// UserRepository описывает контракт для работы с пользователями в базе данных.
type UserRepository interface {
	CreateUser(ctx context.Context, user models.User) (int64, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUser(ctx context.Context, id int64) (*models.User, error)
	ActivateUser(ctx context.Context, id int64) error
	SetPassword(ctx context.Context, id int64, passwordHash string) error
	DeleteUser(ctx context.Context, id int64) ([]string, error)
}

// TokenStore хранит одноразовые токены активации и сброса пароля.
type TokenStore interface {
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Pop(ctx context.Context, key string, result any) (bool, error)
}

// Notifier ставит письмо в очередь на отправку.
type Notifier interface {
	Send(ctx context.Context, task models.EmailTask) error
}

// AuthService отвечает за жизненный цикл аккаунта и JWT.
type AuthService struct {
	users    UserRepository
	tokens   TokenStore
	notifier Notifier
	files    files.Storage
	jwtMaker jwt.Maker
	site     config.Site
	ttl      config.Tokens
	log      *slog.Logger
}

// NewAuthService создает новый экземпляр AuthService.
func NewAuthService(users UserRepository, tokens TokenStore, notifier Notifier, fileStorage files.Storage,
	jwtMaker jwt.Maker, cfg *config.Config, log *slog.Logger) *AuthService {
	return &AuthService{
		users:    users,
		tokens:   tokens,
		notifier: notifier,
		files:    fileStorage,
		jwtMaker: jwtMaker,
		site:     cfg.Site,
		ttl:      cfg.Tokens,
		log:      log,
	}
}

// NormalizeEmail приводит email к виду, в котором он хранится.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register создаёт неактивного пользователя и отправляет письмо активации.
func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	const op = "auth.Register"
	if req.Password != req.RePassword {
		return nil, fmt.Errorf("%s: %w", op, models.ErrPasswordMismatch)
	}
	hashed, err := password.GetHash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	user := models.User{
		Email:        NormalizeEmail(req.Email),
		PasswordHash: hashed,
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
	}
	user.ID, err = s.users.CreateUser(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("user registered", sl.ID("user_id", user.ID))

	if err = s.sendTokenEmail(ctx, &user, activationPrefix, s.ttl.ActivationTTL, models.EmailActivation, "activate"); err != nil {
		s.log.Error("failed to send activation email", sl.ID("user_id", user.ID), sl.Err(err))
	}
	return &user, nil
}

// Activate активирует пользователя по uid и токену из письма.
func (s *AuthService) Activate(ctx context.Context, uid, token string) error {
	const op = "auth.Activate"
	user, err := s.consumeToken(ctx, activationPrefix, uid, token)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err = s.users.ActivateUser(ctx, user.ID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("user activated", sl.ID("user_id", user.ID))

	s.notify(ctx, models.EmailTask{
		Kind:    models.EmailConfirmation,
		To:      user.Email,
		Context: s.emailContext(user, ""),
	})
	return nil
}

// ResendActivation повторно отправляет письмо активации.
// Для неизвестного или уже активного email ничего не делает.
func (s *AuthService) ResendActivation(ctx context.Context, email string) error {
	const op = "auth.ResendActivation"
	user, err := s.users.GetUserByEmail(ctx, NormalizeEmail(email))
	if errors.Is(err, models.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if user.IsActive {
		return nil
	}
	if err = s.sendTokenEmail(ctx, user, activationPrefix, s.ttl.ActivationTTL, models.EmailActivation, "activate"); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ResetPassword отправляет письмо со ссылкой на сброс пароля активному пользователю.
func (s *AuthService) ResetPassword(ctx context.Context, email string) error {
	const op = "auth.ResetPassword"
	user, err := s.users.GetUserByEmail(ctx, NormalizeEmail(email))
	if errors.Is(err, models.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if !user.IsActive {
		return nil
	}
	if err = s.sendTokenEmail(ctx, user, resetPrefix, s.ttl.ResetTTL, models.EmailPasswordReset, "password/reset/confirm"); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ResetPasswordConfirm устанавливает новый пароль по uid и токену из письма.
func (s *AuthService) ResetPasswordConfirm(ctx context.Context, uid, token, newPassword string) error {
	const op = "auth.ResetPasswordConfirm"
	user, err := s.consumeToken(ctx, resetPrefix, uid, token)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err = s.changePassword(ctx, user, newPassword); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// SetPassword меняет пароль после проверки текущего.
func (s *AuthService) SetPassword(ctx context.Context, userID int64, currentPassword, newPassword string) error {
	const op = "auth.SetPassword"
	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err = password.CompareHash(user.PasswordHash, currentPassword); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err = s.changePassword(ctx, user, newPassword); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *AuthService) changePassword(ctx context.Context, user *models.User, newPassword string) error {
	hashed, err := password.GetHash(newPassword)
	if err != nil {
		return err
	}
	if err = s.users.SetPassword(ctx, user.ID, hashed); err != nil {
		return err
	}
	s.log.Info("password changed", sl.ID("user_id", user.ID))
	s.notify(ctx, models.EmailTask{
		Kind:    models.EmailPasswordChanged,
		To:      user.Email,
		Context: s.emailContext(user, ""),
	})
	return nil
}

// Login проверяет email и пароль и выпускает пару токенов.
func (s *AuthService) Login(ctx context.Context, email, rawPassword string) (models.TokenPair, error) {
	const op = "auth.Login"
	user, err := s.users.GetUserByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("%s: %w", op, err)
	}
	if !user.IsActive {
		return models.TokenPair{}, fmt.Errorf("%s: %w", op, models.ErrUserInactive)
	}
	if err = password.CompareHash(user.PasswordHash, rawPassword); err != nil {
		return models.TokenPair{}, fmt.Errorf("%s: %w", op, err)
	}

	var pair models.TokenPair
	if pair.Access, err = s.jwtMaker.GenerateToken(user.ID, user.Email, jwt.AccessToken); err != nil {
		return models.TokenPair{}, fmt.Errorf("%s: %w", op, err)
	}
	if pair.Refresh, err = s.jwtMaker.GenerateToken(user.ID, user.Email, jwt.RefreshToken); err != nil {
		return models.TokenPair{}, fmt.Errorf("%s: %w", op, err)
	}
	return pair, nil
}

// Refresh выпускает новый access-токен по refresh-токену.
func (s *AuthService) Refresh(ctx context.Context, refresh string) (models.TokenPair, error) {
	const op = "auth.Refresh"
	claims, err := s.jwtMaker.ParseToken(refresh, jwt.RefreshToken)
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("%s: %w: %v", op, models.ErrInvalidToken, err)
	}
	user, err := s.activeUser(ctx, claims.UserID)
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("%s: %w", op, err)
	}
	access, err := s.jwtMaker.GenerateToken(user.ID, user.Email, jwt.AccessToken)
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("%s: %w", op, err)
	}
	return models.TokenPair{Access: access}, nil
}

// Verify проверяет подпись и срок действия access или refresh токена.
func (s *AuthService) Verify(_ context.Context, token string) error {
	const op = "auth.Verify"
	if _, err := s.jwtMaker.ParseToken(token, jwt.AccessToken); err == nil {
		return nil
	}
	if _, err := s.jwtMaker.ParseToken(token, jwt.RefreshToken); err != nil {
		return fmt.Errorf("%s: %w: %v", op, models.ErrInvalidToken, err)
	}
	return nil
}

// Authenticate проверяет access-токен и возвращает id активного пользователя.
func (s *AuthService) Authenticate(ctx context.Context, token string) (int64, error) {
	const op = "auth.Authenticate"
	claims, err := s.jwtMaker.ParseToken(token, jwt.AccessToken)
	if err != nil {
		return 0, fmt.Errorf("%s: %w: %v", op, models.ErrInvalidToken, err)
	}
	user, err := s.activeUser(ctx, claims.UserID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return user.ID, nil
}

// DeleteMe удаляет аккаунт со всеми данными и затем файлы пользователя.
func (s *AuthService) DeleteMe(ctx context.Context, userID int64) error {
	const op = "auth.DeleteMe"
	keys, err := s.users.DeleteUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	files.DeleteAll(ctx, s.files, s.log, keys...)
	s.log.Info("user deleted", sl.ID("user_id", userID), slog.Int("files", len(keys)))
	return nil
}

func (s *AuthService) activeUser(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.users.GetUser(ctx, id)
	if errors.Is(err, models.ErrNotFound) {
		return nil, models.ErrInvalidToken
	}
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, models.ErrUserInactive
	}
	return user, nil
}

// sendTokenEmail выпускает одноразовый токен и ставит письмо со ссылкой в очередь.
func (s *AuthService) sendTokenEmail(ctx context.Context, user *models.User, prefix string, ttl time.Duration,
	kind, path string) error {
	token := uuid.NewString()
	if err := s.tokens.Set(ctx, prefix+token, user.ID, ttl); err != nil {
		return err
	}
	uid := strconv.FormatInt(user.ID, 10)
	url := fmt.Sprintf("%s://%s/%s/%s/%s", s.site.Protocol, s.site.Domain, path, uid, token)
	return s.notifier.Send(ctx, models.EmailTask{
		Kind:    kind,
		To:      user.Email,
		Context: s.emailContext(user, url),
	})
}

// consumeToken удаляет токен и проверяет, что он выпущен для uid.
func (s *AuthService) consumeToken(ctx context.Context, prefix, uid, token string) (*models.User, error) {
	id, err := strconv.ParseInt(uid, 10, 64)
	if err != nil {
		return nil, models.ErrInvalidToken
	}
	var stored int64
	found, err := s.tokens.Pop(ctx, prefix+token, &stored)
	if err != nil {
		return nil, err
	}
	if !found || stored != id {
		return nil, models.ErrInvalidToken
	}
	user, err := s.users.GetUser(ctx, id)
	if errors.Is(err, models.ErrNotFound) {
		return nil, models.ErrInvalidToken
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *AuthService) notify(ctx context.Context, task models.EmailTask) {
	if err := s.notifier.Send(ctx, task); err != nil {
		s.log.Error("failed to publish email task", slog.String("kind", task.Kind), sl.Err(err))
	}
}

func (s *AuthService) emailContext(user *models.User, url string) map[string]string {
	ctx := map[string]string{
		"site_name":  s.site.Name,
		"domain":     s.site.Domain,
		"first_name": user.FirstName,
	}
	if url != "" {
		ctx["url"] = url
	}
	return ctx
}
