package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"grantmatch-backend-go/internal/db"
	"grantmatch-backend-go/internal/models"
)

// ScreeningResult is returned after a submission.
type ScreeningResult struct {
	Message      string  `json:"message"`
	MatchesFound int     `json:"matches_found"`
	Outcome      Outcome `json:"ranking"`
}

// ScreeningStatus reports whether an account has completed screening.
type ScreeningStatus struct {
	HasCompletedScreening bool       `json:"has_completed_screening"`
	ScreeningCompletedAt  *time.Time `json:"screening_completed_at,omitempty"`
}

type screeningService struct {
	accounts db.AccountRepository
	startups db.StartupRepository
	matches  db.MatchRepository
	catalog  CatalogService
	ranker   Ranker
	syncer   TierSynchronizer
	logger   *zap.Logger
	now      func() time.Time
}

// NewScreeningService creates a ScreeningService.
func NewScreeningService(
	accounts db.AccountRepository,
	startups db.StartupRepository,
	matches db.MatchRepository,
	catalog CatalogService,
	ranker Ranker,
	syncer TierSynchronizer,
	logger *zap.Logger,
) ScreeningService {
	return &screeningService{
		accounts: accounts,
		startups: startups,
		matches:  matches,
		catalog:  catalog,
		ranker:   ranker,
		syncer:   syncer,
		logger:   logger,
		now:      time.Now,
	}
}

// Submit records the answers, refreshes the startup profile and replaces the
// account's matches with a fresh ranking.
func (s *screeningService) Submit(ctx context.Context, accountID string, answers models.ScreeningAnswers) (*ScreeningResult, error) {
	if strings.TrimSpace(answers.StartupName) == "" || strings.TrimSpace(answers.Industry) == "" {
		return nil, validationErrorf("startup_name and industry are required")
	}
	now := s.now().UTC()

	account, err := s.accounts.Update(ctx, accountID, func(a *models.Account) error {
		submitted := answers
		a.HasCompletedScreening = true
		a.ScreeningCompletedAt = &now
		a.Profile = a.Profile.Merge(models.ProfilePayload{Screening: &submitted})
		return nil
	})
	if err != nil {
		return nil, repoError(err, fmt.Sprintf("account '%s'", accountID))
	}

	_, err = s.startups.Upsert(ctx, account.ID, func(st *models.Startup, exists bool) error {
		if !exists {
			st.Email = account.Email
			st.Tier = account.Tier
			st.CreatedAt = now
		}
		st.ApplyScreening(answers)
		st.UpdatedAt = now
		return nil
	})
	if err != nil {
		s.logger.Error("Failed to save startup profile", zap.String("account_id", account.ID), zap.Error(err))
	} else {
		syncTier(ctx, s.syncer, s.logger, account.Email, account.Tier)
	}

	grants, err := s.catalog.Grants(ctx)
	if err != nil {
		return nil, err
	}
	matches, outcome := s.ranker.Rank(ctx, answers, grants)

	if err := s.matches.Replace(ctx, account.ID, matches); err != nil {
		return nil, fmt.Errorf("failed to store matches: %w", err)
	}

	s.logger.Info("Screening completed",
		zap.String("account_id", account.ID), zap.Int("matches", len(matches)), zap.String("ranking", string(outcome)))
	return &ScreeningResult{
		Message:      "Screening completed and startup data saved",
		MatchesFound: len(matches),
		Outcome:      outcome,
	}, nil
}

func (s *screeningService) Status(ctx context.Context, accountID string) (*ScreeningStatus, error) {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return nil, repoError(err, fmt.Sprintf("account '%s'", accountID))
	}
	return &ScreeningStatus{
		HasCompletedScreening: account.HasCompletedScreening,
		ScreeningCompletedAt:  account.ScreeningCompletedAt,
	}, nil
}
