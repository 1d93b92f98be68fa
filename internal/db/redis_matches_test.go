package db

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grantmatch-backend-go/internal/models"
)

func newMiniredisMatches(t *testing.T) (MatchRepository, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client, err := OpenRedis(context.Background(), mr.Addr(), "", 0)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return NewRedisMatchRepository(client), mr
}

func TestRedisMatchRepository_ReplaceAndGet(t *testing.T) {
	repo, _ := newMiniredisMatches(t)
	ctx := context.Background()
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	first := []models.GrantMatch{
		{GrantID: "1", Name: "Seed", RelevanceScore: 91, CreatedAt: at},
		{GrantID: "2", Name: "Scale", RelevanceScore: 80, CreatedAt: at},
		{GrantID: "3", Name: "Export", RelevanceScore: 70, CreatedAt: at},
	}
	require.NoError(t, repo.Replace(ctx, "acc-1", first))

	got, err := repo.Get(ctx, "acc-1")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "1", got[0].GrantID)
	assert.Equal(t, "3", got[2].GrantID)
	assert.True(t, got[0].CreatedAt.Equal(at))

	require.NoError(t, repo.Replace(ctx, "acc-1", []models.GrantMatch{{GrantID: "9", Name: "Only"}}))
	got, err = repo.Get(ctx, "acc-1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "9", got[0].GrantID)

	require.NoError(t, repo.Replace(ctx, "acc-1", nil))
	got, err = repo.Get(ctx, "acc-1")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRedisMatchRepository_Count(t *testing.T) {
	repo, mr := newMiniredisMatches(t)
	ctx := context.Background()

	require.NoError(t, repo.Replace(ctx, "a", []models.GrantMatch{{GrantID: "1"}, {GrantID: "2"}}))
	require.NoError(t, repo.Replace(ctx, "b", []models.GrantMatch{{GrantID: "3"}}))
	mr.Set("unrelated", "x")

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestRedisMatchRepository_GetUnknownAccount(t *testing.T) {
	repo, _ := newMiniredisMatches(t)

	got, err := repo.Get(context.Background(), "ghost")
	require.NoError(t, err)
	assert.Empty(t, got)
}
