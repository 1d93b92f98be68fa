package core

import (
	"context"
	"fmt"
	"math"

	"grantmatch-backend-go/internal/db"
	"grantmatch-backend-go/internal/models"
)

// PublicStats are the landing-page counters.
type PublicStats struct {
	TotalStartups int     `json:"total_startups"`
	TotalGrants   int     `json:"total_grants"`
	ActiveMatches int     `json:"active_matches"`
	SuccessRate   float64 `json:"success_rate"`
}

// AdminStats breaks the platform down for staff.
type AdminStats struct {
	AccountsByTier   map[models.Tier]int           `json:"accounts_by_tier"`
	Startups         int                           `json:"startups"`
	Grants           int                           `json:"grants"`
	Matches          int                           `json:"matches"`
	TrackingByStatus map[models.TrackingStatus]int `json:"tracking_by_status"`
}

type statsService struct {
	accounts db.AccountRepository
	startups db.StartupRepository
	tracking db.TrackingRepository
	matches  db.MatchRepository
	catalog  CatalogService
}

// NewStatsService creates a StatsService.
func NewStatsService(
	accounts db.AccountRepository,
	startups db.StartupRepository,
	tracking db.TrackingRepository,
	matches db.MatchRepository,
	catalog CatalogService,
) StatsService {
	return &statsService{accounts: accounts, startups: startups, tracking: tracking, matches: matches, catalog: catalog}
}

// SuccessRate is the share of decided applications that were approved or
// disbursed, as a percentage rounded to one decimal. No decided applications
// gives 0.
func SuccessRate(entries []*models.TrackingEntry) float64 {
	var won, decided int
	for _, e := range entries {
		switch e.Status {
		case models.StatusApproved, models.StatusDisbursed:
			won++
			decided++
		case models.StatusRejected:
			decided++
		}
	}
	if decided == 0 {
		return 0
	}
	return math.Round(float64(won)/float64(decided)*1000) / 10
}

func (s *statsService) Public(ctx context.Context) (*PublicStats, error) {
	startups, err := s.startups.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count startups: %w", err)
	}
	grants, err := s.catalog.Grants(ctx)
	if err != nil {
		return nil, err
	}
	matches, err := s.matches.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count matches: %w", err)
	}
	entries, err := s.tracking.List(ctx, db.TrackingFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to list tracking entries: %w", err)
	}
	return &PublicStats{
		TotalStartups: len(startups),
		TotalGrants:   len(grants),
		ActiveMatches: matches,
		SuccessRate:   SuccessRate(entries),
	}, nil
}

func (s *statsService) Admin(ctx context.Context) (*AdminStats, error) {
	accounts, err := s.accounts.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	pub, err := s.Public(ctx)
	if err != nil {
		return nil, err
	}
	entries, err := s.tracking.List(ctx, db.TrackingFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to list tracking entries: %w", err)
	}

	out := &AdminStats{
		AccountsByTier:   make(map[models.Tier]int),
		Startups:         pub.TotalStartups,
		Grants:           pub.TotalGrants,
		Matches:          pub.ActiveMatches,
		TrackingByStatus: make(map[models.TrackingStatus]int),
	}
	for _, a := range accounts {
		out.AccountsByTier[a.Tier]++
	}
	for _, e := range entries {
		out.TrackingByStatus[e.Status]++
	}
	return out, nil
}
