package core

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grantmatch-backend-go/internal/models"
)

func TestFilterByTier(t *testing.T) {
	matches := make([]models.GrantMatch, 12)
	for i := range matches {
		matches[i].GrantID = fmt.Sprint(i + 1)
	}

	tests := []struct {
		tier models.Tier
		want int
	}{
		{models.TierFree, 3},
		{models.TierPremium, 10},
		{models.TierExpert, 12},
		{models.TierAdmin, 12},
		{models.TierVentureAnalyst, 12},
		{models.TierIncubationAdmin, 12},
	}
	for _, tt := range tests {
		t.Run(string(tt.tier), func(t *testing.T) {
			got := FilterByTier(matches, tt.tier)
			assert.Len(t, got, tt.want)
			assert.Equal(t, "1", got[0].GrantID)
		})
	}

	assert.Len(t, FilterByTier(matches[:2], models.TierFree), 2)
	assert.Empty(t, FilterByTier(nil, models.TierPremium))
}

func TestGetMatches_StoredWithSoftApproval(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	grants := f.seedGrants(t, 5)
	require.NoError(t, f.catalogRepo.SetSoftApproval(ctx, "0002", true))

	a := f.account(t, "Ada", "ada@example.com", models.TierPremium)
	var stored []models.GrantMatch
	for _, g := range grants {
		stored = append(stored, models.MatchFromGrant(g, 70, "stored", time.Now()))
	}
	require.NoError(t, f.matches.Replace(ctx, a.ID, stored))

	list, err := NewMatchService(f.matches, f.catalog).GetMatches(ctx, a)
	require.NoError(t, err)
	assert.Equal(t, models.TierPremium, list.Tier)
	assert.Equal(t, 5, list.Total)
	require.Len(t, list.Grants, 5)
	assert.False(t, list.Grants[0].SoftApproval)
	assert.True(t, list.Grants[1].SoftApproval)
	assert.Equal(t, "stored", list.Grants[1].Reason)
}

func TestGetMatches_SampleForEmptyStore(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedGrants(t, 12)
	a := f.account(t, "Ada", "ada@example.com", models.TierFree)

	list, err := NewMatchService(f.matches, f.catalog).GetMatches(ctx, a)
	require.NoError(t, err)
	require.Len(t, list.Grants, 3)
	assert.Equal(t, 3, list.Total)
	for _, m := range list.Grants {
		assert.Equal(t, 85.0, m.RelevanceScore)
		assert.Equal(t, "Sample match for Fintech", m.Reason)
	}
}

func TestGetMatches_EmptyCatalog(t *testing.T) {
	f := newFixture(t)
	a := f.account(t, "Ada", "ada@example.com", models.TierExpert)

	list, err := NewMatchService(f.matches, f.catalog).GetMatches(context.Background(), a)
	require.NoError(t, err)
	assert.Empty(t, list.Grants)
	assert.Zero(t, list.Total)
}
