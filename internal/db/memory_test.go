package db

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grantmatch-backend-go/internal/models"
)

func TestMemoryAccountRepository_EmailUniqueness(t *testing.T) {
	repo := NewMemoryAccountRepository()
	ctx := context.Background()

	a := &models.Account{Email: "Founder@Example.com", Tier: models.TierFree}
	require.NoError(t, repo.Create(ctx, a))
	assert.NotEmpty(t, a.ID)

	err := repo.Create(ctx, &models.Account{Email: "founder@example.COM"})
	assert.ErrorIs(t, err, ErrDuplicate)

	got, err := repo.GetByEmail(ctx, "FOUNDER@example.com")
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)

	_, err = repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryAccountRepository_UpdateIsolation(t *testing.T) {
	repo := NewMemoryAccountRepository()
	ctx := context.Background()
	a := &models.Account{Email: "x@example.com", Tier: models.TierFree}
	require.NoError(t, repo.Create(ctx, a))

	got, err := repo.GetByID(ctx, a.ID)
	require.NoError(t, err)
	got.Tier = models.TierExpert

	again, err := repo.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TierFree, again.Tier)

	updated, err := repo.Update(ctx, a.ID, func(acc *models.Account) error {
		acc.Tier = models.TierPremium
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, models.TierPremium, updated.Tier)

	_, err = repo.Update(ctx, a.ID, func(acc *models.Account) error {
		acc.Tier = models.TierExpert
		return assert.AnError
	})
	assert.ErrorIs(t, err, assert.AnError)
	again, _ = repo.GetByID(ctx, a.ID)
	assert.Equal(t, models.TierPremium, again.Tier)
}

func TestMemoryStartupRepository_UpsertAndSetTier(t *testing.T) {
	repo := NewMemoryStartupRepository()
	ctx := context.Background()

	s, err := repo.Upsert(ctx, "acc-1", func(s *models.Startup, exists bool) error {
		assert.False(t, exists)
		s.Email = "Team@Startup.io"
		s.Name = "Acme"
		s.Tier = models.TierFree
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "acc-1", s.ID)
	assert.Equal(t, "acc-1", s.AccountID)

	_, err = repo.Upsert(ctx, "acc-1", func(s *models.Startup, exists bool) error {
		assert.True(t, exists)
		assert.Equal(t, "Acme", s.Name)
		return nil
	})
	require.NoError(t, err)

	n, err := repo.SetTierByEmail(ctx, "team@startup.IO", models.TierExpert)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = repo.SetTierByEmail(ctx, "nobody@startup.io", models.TierExpert)
	require.NoError(t, err)
	assert.Zero(t, n)

	got, err := repo.GetByEmail(ctx, "TEAM@startup.io")
	require.NoError(t, err)
	assert.Equal(t, models.TierExpert, got.Tier)
}

func TestMemoryTrackingRepository(t *testing.T) {
	repo := NewMemoryTrackingRepository()
	ctx := context.Background()

	e := &models.TrackingEntry{UserID: "analyst", StartupID: "s1", GrantID: "007", Status: models.StatusDraft}
	require.NoError(t, repo.Create(ctx, e))
	assert.Equal(t, "7", e.GrantKey)

	err := repo.Create(ctx, &models.TrackingEntry{UserID: "other", StartupID: "s1", GrantID: "7"})
	assert.ErrorIs(t, err, ErrDuplicate)

	require.NoError(t, repo.Create(ctx, &models.TrackingEntry{UserID: "other", StartupID: "s2", GrantID: "7"}))

	mine, err := repo.List(ctx, TrackingFilter{UserID: "analyst"})
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	forStartup, err := repo.List(ctx, TrackingFilter{StartupID: "s2"})
	require.NoError(t, err)
	require.Len(t, forStartup, 1)
	assert.Equal(t, "other", forStartup[0].UserID)

	require.NoError(t, repo.Delete(ctx, e.ID))
	assert.ErrorIs(t, repo.Delete(ctx, e.ID), ErrNotFound)
	_, err = repo.GetByID(ctx, e.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryCatalogRepository_Grants(t *testing.T) {
	repo := NewMemoryCatalogRepository()
	ctx := context.Background()

	require.NoError(t, repo.PutGrant(ctx, models.Grant{ID: "007", Name: "Padded"}))
	require.NoError(t, repo.PutGrant(ctx, models.Grant{ID: "12", Name: "Twelve"}))
	require.NoError(t, repo.PutGrant(ctx, models.Grant{ID: "legacy", Name: "Legacy"}))

	g, err := repo.GetGrant(ctx, "7")
	require.NoError(t, err)
	assert.Equal(t, "Padded", g.Name)

	created, err := repo.CreateGrant(ctx, models.Grant{Name: "New"}, true)
	require.NoError(t, err)
	assert.Equal(t, "13", created.ID)

	soft, err := repo.ListSoftApprovedIDs(ctx)
	require.NoError(t, err)
	assert.Contains(t, soft, "13")

	grants, err := repo.ListGrants(ctx)
	require.NoError(t, err)
	require.Len(t, grants, 4)
	assert.Equal(t, "007", grants[0].ID)
	assert.Equal(t, "13", grants[3].ID)
}

func TestMemoryCatalogRepository_ConcurrentCreateAssignsDistinctIDs(t *testing.T) {
	repo := NewMemoryCatalogRepository()
	ctx := context.Background()

	const n = 50
	ids := make(chan string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			g, err := repo.CreateGrant(ctx, models.Grant{Name: "g"}, false)
			if err == nil {
				ids <- g.ID
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[string]struct{})
	for id := range ids {
		seen[id] = struct{}{}
	}
	assert.Len(t, seen, n)
}

func TestMemoryCatalogRepository_Coupons(t *testing.T) {
	repo := NewMemoryCatalogRepository()
	ctx := context.Background()

	require.NoError(t, repo.PutCoupon(ctx, models.Coupon{Code: "launch50", Active: true, Tier: models.TierPremium}))
	c, err := repo.GetCoupon(ctx, " LAUNCH50 ")
	require.NoError(t, err)
	assert.Equal(t, "LAUNCH50", c.Code)

	_, err = repo.GetCoupon(ctx, "other")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryMatchRepository(t *testing.T) {
	repo := NewMemoryMatchRepository()
	ctx := context.Background()

	require.NoError(t, repo.Replace(ctx, "a", []models.GrantMatch{{GrantID: "1"}, {GrantID: "2"}}))
	require.NoError(t, repo.Replace(ctx, "b", []models.GrantMatch{{GrantID: "3"}}))
	require.NoError(t, repo.Replace(ctx, "a", []models.GrantMatch{{GrantID: "4"}}))

	got, err := repo.Get(ctx, "a")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "4", got[0].GrantID)

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestMemoryNotificationRepository(t *testing.T) {
	repo := NewMemoryNotificationRepository()
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	older := &models.Notification{AccountID: "a", Title: "old", CreatedAt: base}
	newer := &models.Notification{AccountID: "a", Title: "new", CreatedAt: base.Add(time.Hour)}
	require.NoError(t, repo.Create(ctx, older))
	require.NoError(t, repo.Create(ctx, newer))
	require.NoError(t, repo.Create(ctx, &models.Notification{AccountID: "b", Title: "theirs", CreatedAt: base}))

	list, err := repo.ListByAccount(ctx, "a")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "new", list[0].Title)

	assert.ErrorIs(t, repo.MarkRead(ctx, "b", older.ID), ErrNotFound)
	require.NoError(t, repo.MarkRead(ctx, "a", older.ID))

	list, _ = repo.ListByAccount(ctx, "a")
	assert.True(t, list[1].Read)
}
