package db

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grantmatch-backend-go/internal/config"
	"grantmatch-backend-go/internal/logger"
)

func TestOpenStores_Memory(t *testing.T) {
	cfg := &config.Config{StorageDriver: config.DriverMemory, CatalogDriver: config.DriverMemory, MatchStore: config.DriverMemory}

	s, err := OpenStores(context.Background(), cfg, logger.NewTest(t))
	require.NoError(t, err)
	defer s.Close()

	assert.NotNil(t, s.Accounts)
	assert.NotNil(t, s.Catalog)
	assert.NotNil(t, s.Matches)
	assert.Nil(t, s.Redis)
}

func TestOpenStores_RedisMatches(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := &config.Config{
		StorageDriver: config.DriverMemory,
		CatalogDriver: config.DriverMemory,
		MatchStore:    config.DriverRedis,
		RedisAddr:     mr.Addr(),
	}

	s, err := OpenStores(context.Background(), cfg, logger.NewTest(t))
	require.NoError(t, err)
	require.NotNil(t, s.Redis)

	n, err := s.Matches.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.NoError(t, s.Close())
}

func TestOpenStores_RedisUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	cfg := &config.Config{StorageDriver: config.DriverMemory, CatalogDriver: config.DriverMemory, MatchStore: config.DriverRedis, RedisAddr: addr}
	_, err := OpenStores(context.Background(), cfg, logger.NewTest(t))
	assert.Error(t, err)
}
