package core

import (
	"context"
	"errors"
	"fmt"

	"grantmatch-backend-go/internal/db"
	"grantmatch-backend-go/internal/models"
)

type startupService struct {
	startups db.StartupRepository
}

// NewStartupService creates a StartupService.
func NewStartupService(startups db.StartupRepository) StartupService {
	return &startupService{startups: startups}
}

func (s *startupService) Mine(ctx context.Context, account *models.Account) (*models.Startup, error) {
	st, err := s.startups.GetByID(ctx, account.ID)
	if err == nil {
		return st, nil
	}
	if !errors.Is(err, db.ErrNotFound) {
		return nil, fmt.Errorf("failed to get startup: %w", err)
	}

	st, err = s.startups.GetByEmail(ctx, account.Email)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get startup: %w", err)
	}
	return st, nil
}

func (s *startupService) List(ctx context.Context, actor *models.Account) ([]*models.Startup, error) {
	if !actor.Tier.In(models.TierExpert, models.TierAdmin) {
		return nil, ErrAccessDenied
	}
	list, err := s.startups.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list startups: %w", err)
	}
	return list, nil
}
