package core

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"grantmatch-backend-go/internal/db"
	"grantmatch-backend-go/internal/models"
	"grantmatch-backend-go/pkg/cache"
)

const catalogCacheKey = "catalog:grants"

type catalogService struct {
	repo     db.CatalogRepository
	cache    cache.Cache
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewCatalogService creates a CatalogService. c may be nil to disable the
// listing cache.
func NewCatalogService(repo db.CatalogRepository, c cache.Cache, cacheTTL time.Duration, logger *zap.Logger) CatalogService {
	return &catalogService{repo: repo, cache: c, cacheTTL: cacheTTL, logger: logger}
}

func (s *catalogService) Grants(ctx context.Context) ([]models.Grant, error) {
	if s.cache != nil {
		if raw, ok, err := s.cache.Get(ctx, catalogCacheKey); err == nil && ok {
			var grants []models.Grant
			if err := json.Unmarshal([]byte(raw), &grants); err == nil {
				return grants, nil
			}
			s.logger.Warn("Discarding undecodable catalog cache entry")
		}
	}

	grants, err := s.repo.ListGrants(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list grants: %w", err)
	}

	if s.cache != nil {
		if raw, err := json.Marshal(grants); err == nil {
			if err := s.cache.Set(ctx, catalogCacheKey, string(raw), s.cacheTTL); err != nil {
				s.logger.Warn("Failed to cache catalog listing", zap.Error(err))
			}
		}
	}
	return grants, nil
}

func (s *catalogService) ListGrants(ctx context.Context) ([]models.GrantView, error) {
	grants, err := s.Grants(ctx)
	if err != nil {
		return nil, err
	}
	soft, err := s.SoftApprovedIDs(ctx)
	if err != nil {
		return nil, err
	}
	views := make([]models.GrantView, 0, len(grants))
	for _, g := range grants {
		_, flagged := soft[models.CanonicalGrantID(g.ID)]
		views = append(views, models.GrantView{Grant: g, SoftApproval: flagged})
	}
	return views, nil
}

func (s *catalogService) GetGrant(ctx context.Context, id string) (*models.Grant, error) {
	g, err := s.repo.GetGrant(ctx, id)
	if err != nil {
		return nil, repoError(err, fmt.Sprintf("grant '%s'", id))
	}
	return g, nil
}

func (s *catalogService) CreateGrant(ctx context.Context, req models.CreateGrantRequest) (*models.GrantView, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, validationErrorf("grant name is required")
	}
	g, err := s.repo.CreateGrant(ctx, models.Grant{
		Name:            strings.TrimSpace(req.Name),
		Sector:          req.Sector,
		Eligibility:     req.Eligibility,
		FundingAmount:   req.FundingAmount,
		FundingType:     req.FundingType,
		ApplicationLink: req.ApplicationLink,
		Deadline:        req.Deadline,
		Region:          req.Region,
		Stage:           req.Stage,
		Description:     req.Description,
	}, req.SoftApproval)
	if err != nil {
		return nil, repoError(err, "grant")
	}

	if s.cache != nil {
		if err := s.cache.Delete(ctx, catalogCacheKey); err != nil {
			s.logger.Warn("Failed to invalidate catalog cache", zap.Error(err))
		}
	}
	s.logger.Info("Grant created", zap.String("grant_id", g.ID), zap.Bool("soft_approval", req.SoftApproval))
	return &models.GrantView{Grant: g, SoftApproval: req.SoftApproval}, nil
}

func (s *catalogService) SoftApprovedIDs(ctx context.Context) (map[string]struct{}, error) {
	ids, err := s.repo.ListSoftApprovedIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list soft approvals: %w", err)
	}
	return ids, nil
}

// grantIndex resolves grant ids the way the catalog does: exact first, then
// canonical.
type grantIndex struct {
	exact     map[string]models.Grant
	canonical map[string]models.Grant
}

func newGrantIndex(grants []models.Grant) grantIndex {
	ix := grantIndex{
		exact:     make(map[string]models.Grant, len(grants)),
		canonical: make(map[string]models.Grant, len(grants)),
	}
	for _, g := range grants {
		if _, seen := ix.exact[g.ID]; !seen {
			ix.exact[g.ID] = g
		}
		key := models.CanonicalGrantID(g.ID)
		if _, seen := ix.canonical[key]; !seen {
			ix.canonical[key] = g
		}
	}
	return ix
}

func (ix grantIndex) lookup(id string) (models.Grant, bool) {
	if g, ok := ix.exact[id]; ok {
		return g, true
	}
	g, ok := ix.canonical[models.CanonicalGrantID(id)]
	return g, ok
}

// name returns the catalog name for id or a "Grant {id}" placeholder.
func (ix grantIndex) name(id string) string {
	if g, ok := ix.lookup(id); ok {
		return g.Name
	}
	return "Grant " + id
}
