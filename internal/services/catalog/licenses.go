package services

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/audio-library/internal/models"
	access "github.com/magabrotheeeer/audio-library/internal/services/access"
)

// ListLicenses возвращает лицензии пользователя.
func (s *CatalogService) ListLicenses(ctx context.Context, requesterID int64) ([]*models.License, error) {
	const op = "catalog.ListLicenses"
	if err := access.RequireUser(requesterID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	licenses, err := s.repo.ListLicenses(ctx, requesterID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return licenses, nil
}

// CreateLicense создаёт лицензию пользователя.
func (s *CatalogService) CreateLicense(ctx context.Context, requesterID int64, text string) (*models.License, error) {
	const op = "catalog.CreateLicense"
	if err := access.RequireUser(requesterID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	l, err := s.repo.CreateLicense(ctx, requesterID, text)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return l, nil
}

// UpdateLicense меняет текст лицензии владельца.
func (s *CatalogService) UpdateLicense(ctx context.Context, requesterID, id int64, text string) (*models.License, error) {
	const op = "catalog.UpdateLicense"
	if err := access.RequireUser(requesterID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	l, err := s.repo.UpdateLicense(ctx, requesterID, id, text)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return l, nil
}

// DeleteLicense удаляет лицензию владельца, если на неё не ссылаются треки.
func (s *CatalogService) DeleteLicense(ctx context.Context, requesterID, id int64) error {
	const op = "catalog.DeleteLicense"
	if err := access.RequireUser(requesterID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.repo.DeleteLicense(ctx, requesterID, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
