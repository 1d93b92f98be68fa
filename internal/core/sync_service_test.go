package core

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grantmatch-backend-go/internal/db"
	"grantmatch-backend-go/internal/logger"
	"grantmatch-backend-go/internal/metrics"
	"grantmatch-backend-go/internal/models"
)

func TestSyncTierToStartup(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.account(t, "Ada", "Ada@Acme.test", models.TierPremium)
	f.startupFor(t, a, "Acme", models.TierFree)

	out, err := f.syncer.SyncTierToStartup(ctx, "ada@acme.TEST", models.TierPremium)
	require.NoError(t, err)
	assert.Equal(t, 1, out.Updated)
	assert.Equal(t, DirectionAccountToStartup, out.Direction)

	st, err := f.startups.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TierPremium, st.Tier)

	out, err = f.syncer.SyncTierToStartup(ctx, "nobody@acme.test", models.TierPremium)
	require.NoError(t, err)
	assert.Zero(t, out.Updated)
}

func TestSyncStartupToUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.account(t, "Ada", "ada@acme.test", models.TierFree)

	out, err := f.syncer.SyncStartupToUser(ctx, "ada@acme.test", models.TierExpert)
	require.NoError(t, err)
	assert.Equal(t, 1, out.Updated)

	stored, err := f.accounts.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TierExpert, stored.Tier)

	out, err = f.syncer.SyncStartupToUser(ctx, "ada@acme.test", models.TierExpert)
	require.NoError(t, err)
	assert.Zero(t, out.Updated)

	out, err = f.syncer.SyncStartupToUser(ctx, "ghost@acme.test", models.TierExpert)
	require.NoError(t, err)
	assert.Zero(t, out.Updated)
}

type failingStartups struct {
	db.StartupRepository
}

func (failingStartups) SetTierByEmail(ctx context.Context, email string, tier models.Tier) (int, error) {
	return 0, errors.New("datastore unavailable")
}

func TestSyncTierToStartup_FailureIsTyped(t *testing.T) {
	syncer := NewTierSynchronizer(db.NewMemoryAccountRepository(), failingStartups{db.NewMemoryStartupRepository()}, logger.NewTest(t))
	before := testutil.ToFloat64(metrics.SyncFailures.WithLabelValues(DirectionAccountToStartup))

	_, err := syncer.SyncTierToStartup(context.Background(), "ada@acme.test", models.TierPremium)
	var syncErr *SyncError
	require.ErrorAs(t, err, &syncErr)
	assert.Equal(t, DirectionAccountToStartup, syncErr.Direction)
	assert.Contains(t, err.Error(), "datastore unavailable")
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.SyncFailures.WithLabelValues(DirectionAccountToStartup)))
}

func TestReconcileAllTiers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ada := f.account(t, "Ada", "ada@acme.test", models.TierPremium)
	f.startupFor(t, ada, "Acme", models.TierFree)
	f.account(t, "Bo", "bo@tiny.test", models.TierFree)
	f.account(t, "Root", "root@acme.test", models.TierAdmin)

	report, err := ReconcileAllTiers(ctx, f.accounts, f.startups, f.syncer, false, f.logger)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Checked)
	assert.Equal(t, 1, report.Updated)
	assert.Equal(t, 1, report.Missing)

	st, err := f.startups.GetByID(ctx, ada.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TierPremium, st.Tier)

	_, err = f.startups.Upsert(ctx, ada.ID, func(s *models.Startup, _ bool) error {
		s.Tier = models.TierExpert
		return nil
	})
	require.NoError(t, err)

	report, err = ReconcileAllTiers(ctx, f.accounts, f.startups, f.syncer, true, f.logger)
	require.NoError(t, err)
	assert.Equal(t, DirectionStartupToAccount, report.Direction)
	assert.Equal(t, 1, report.Updated)

	stored, err := f.accounts.GetByID(ctx, ada.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TierExpert, stored.Tier)
}
