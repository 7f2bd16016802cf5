// Package services подписки пользователей на авторов.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/audio-library/internal/lib/sl"
	"github.com/magabrotheeeer/audio-library/internal/models"
	access "github.com/magabrotheeeer/audio-library/internal/services/access"
)

// Сообщение об успешной подписке.
const MsgFollowed = "You are now following this user"

// FollowRepository хранилище подписок.
type FollowRepository interface {
	Follow(ctx context.Context, userID, targetID int64) (bool, error)
	Unfollow(ctx context.Context, userID, targetID int64) error
}

// RelationshipService бизнес-логика подписок.
type RelationshipService struct {
	repo FollowRepository
	log  *slog.Logger
}

// NewRelationshipService создает новый экземпляр RelationshipService.
func NewRelationshipService(repo FollowRepository, log *slog.Logger) *RelationshipService {
	return &RelationshipService{
		repo: repo,
		log:  log,
	}
}

// Follow подписывает requester на target.
func (s *RelationshipService) Follow(ctx context.Context, requesterID, targetID int64) (models.FollowResult, error) {
	const op = "relationship.Follow"
	if err := access.RequireUser(requesterID); err != nil {
		return models.FollowResult{}, fmt.Errorf("%s: %w", op, err)
	}
	if requesterID == targetID {
		return models.FollowResult{Message: models.ErrSelfFollow.Error()}, nil
	}

	created, err := s.repo.Follow(ctx, requesterID, targetID)
	if err != nil {
		return models.FollowResult{}, fmt.Errorf("%s: %w", op, err)
	}
	if !created {
		return models.FollowResult{Message: models.ErrAlreadyFollowing.Error()}, nil
	}
	s.log.Info("user followed", sl.ID("user_id", requesterID), sl.ID("target_id", targetID))
	return models.FollowResult{Created: true, Message: MsgFollowed}, nil
}

// Unfollow удаляет подписку. Если подписки нет, возвращает ErrNotFollowing.
func (s *RelationshipService) Unfollow(ctx context.Context, requesterID, targetID int64) error {
	const op = "relationship.Unfollow"
	if err := access.RequireUser(requesterID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.repo.Unfollow(ctx, requesterID, targetID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
