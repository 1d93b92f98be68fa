package core

import (
	"context"
	"time"

	"grantmatch-backend-go/internal/db"
	"grantmatch-backend-go/internal/models"
)

const sampleScore = 85.0

// MatchList is the tier-filtered view of an account's matches.
type MatchList struct {
	Tier   models.Tier         `json:"tier"`
	Grants []models.GrantMatch `json:"grants"`
	Total  int                 `json:"total"`
}

type matchService struct {
	matches db.MatchRepository
	catalog CatalogService
	now     func() time.Time
}

// NewMatchService creates a MatchService.
func NewMatchService(matches db.MatchRepository, catalog CatalogService) MatchService {
	return &matchService{matches: matches, catalog: catalog, now: time.Now}
}

// FilterByTier applies the visibility policy of tier to ranked matches:
// free sees 3, premium 10, everyone else all of them.
func FilterByTier(matches []models.GrantMatch, tier models.Tier) []models.GrantMatch {
	limit := len(matches)
	switch tier {
	case models.TierFree:
		limit = 3
	case models.TierPremium:
		limit = 10
	}
	if limit > len(matches) {
		limit = len(matches)
	}
	return matches[:limit]
}

func (s *matchService) GetMatches(ctx context.Context, account *models.Account) (*MatchList, error) {
	stored, err := s.matches.Get(ctx, account.ID)
	if err != nil {
		return nil, repoError(err, "matches")
	}

	if len(stored) == 0 {
		stored, err = s.sampleMatches(ctx)
		if err != nil {
			return nil, err
		}
	}

	soft, err := s.catalog.SoftApprovedIDs(ctx)
	if err != nil {
		return nil, err
	}
	for i := range stored {
		_, stored[i].SoftApproval = soft[models.CanonicalGrantID(stored[i].GrantID)]
	}

	visible := FilterByTier(stored, account.Tier)
	return &MatchList{Tier: account.Tier, Grants: visible, Total: len(visible)}, nil
}

// sampleMatches stands in for an empty match store with the catalog head.
func (s *matchService) sampleMatches(ctx context.Context) ([]models.GrantMatch, error) {
	grants, err := s.catalog.Grants(ctx)
	if err != nil {
		return nil, err
	}
	if len(grants) > maxRankedMatches {
		grants = grants[:maxRankedMatches]
	}
	at := s.now().UTC()
	out := make([]models.GrantMatch, 0, len(grants))
	for _, g := range grants {
		out = append(out, models.MatchFromGrant(g, sampleScore, "Sample match for "+orDefault(g.Sector, "your sector"), at))
	}
	return out, nil
}
