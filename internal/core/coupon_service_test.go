package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grantmatch-backend-go/internal/models"
)

func newCoupons(f *fixture) CouponService {
	return NewCouponService(f.catalogRepo, f.accounts, f.syncer, f.notifications, f.logger)
}

func TestRedeem_UpgradesAndMirrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.catalogRepo.PutCoupon(ctx, models.Coupon{Code: "GRANT199", Active: true, Tier: models.TierPremium, Description: "Premium for 199"}))
	a := f.account(t, "Ada", "ada@acme.test", models.TierFree)
	f.startupFor(t, a, "Acme", models.TierFree)

	res, err := newCoupons(f).Redeem(ctx, a.ID, " grant199 ")
	require.NoError(t, err)
	assert.Equal(t, models.TierPremium, res.Tier)
	assert.Equal(t, "Premium for 199", res.Description)

	stored, err := f.accounts.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TierPremium, stored.Tier)
	assert.Equal(t, "GRANT199", stored.CouponUsed)
	assert.NotNil(t, stored.UpgradedAt)

	st, err := f.startups.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TierPremium, st.Tier)

	notes, err := f.notes.ListByAccount(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, models.NotificationTierChanged, notes[0].Kind)
	assert.Equal(t, "premium", notes[0].Details["new_tier"])
}

func TestRedeem_WithoutStartupStillUpgrades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.catalogRepo.PutCoupon(ctx, models.Coupon{Code: "EXPERT", Active: true, Tier: models.TierExpert}))
	a := f.account(t, "Ada", "ada@acme.test", models.TierFree)

	res, err := newCoupons(f).Redeem(ctx, a.ID, "expert")
	require.NoError(t, err)
	assert.Equal(t, models.TierExpert, res.Tier)
}

func TestRedeem_Rejects(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.catalogRepo.PutCoupon(ctx, models.Coupon{Code: "OLD", Active: false, Tier: models.TierPremium}))
	a := f.account(t, "Ada", "ada@acme.test", models.TierFree)
	svc := newCoupons(f)

	_, err := svc.Redeem(ctx, a.ID, "NOPE")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Redeem(ctx, a.ID, "old")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Redeem(ctx, a.ID, "  ")
	assert.ErrorIs(t, err, ErrValidation)

	stored, err := f.accounts.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TierFree, stored.Tier)
}
