package seed

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grantmatch-backend-go/internal/crypto"
	"grantmatch-backend-go/internal/db"
	"grantmatch-backend-go/internal/logger"
	"grantmatch-backend-go/internal/models"
)

func TestLoadAndApply(t *testing.T) {
	file, err := Load("testdata/seed.yaml")
	require.NoError(t, err)
	require.Len(t, file.Grants, 3)

	ctx := context.Background()
	catalog := db.NewMemoryCatalogRepository()
	accounts := db.NewMemoryAccountRepository()

	res, err := Apply(ctx, file, catalog, accounts, logger.NewTest(t))
	require.NoError(t, err)
	assert.Equal(t, 3, res.Grants)
	assert.Equal(t, 1, res.SoftApprovals)
	assert.Equal(t, 2, res.Coupons)
	assert.True(t, res.AdminCreated)

	grants, err := catalog.ListGrants(ctx)
	require.NoError(t, err)
	require.Len(t, grants, 3)
	assert.Equal(t, "3", grants[2].ID)

	soft, err := catalog.ListSoftApprovedIDs(ctx)
	require.NoError(t, err)
	assert.Contains(t, soft, "2")

	coupon, err := catalog.GetCoupon(ctx, "GRANT199")
	require.NoError(t, err)
	assert.Equal(t, models.TierPremium, coupon.Tier)

	admin, err := accounts.GetByEmail(ctx, "admin@grantmatch.test")
	require.NoError(t, err)
	assert.Equal(t, models.TierAdmin, admin.Tier)
	assert.NoError(t, crypto.CheckPassword(admin.PasswordHash, "change-me-now"))

	again, err := Apply(ctx, &File{Admin: file.Admin}, catalog, accounts, logger.NewTest(t))
	require.NoError(t, err)
	assert.False(t, again.AdminCreated)
}

func TestParse_Rejects(t *testing.T) {
	tests := map[string]string{
		"unknown key":  "grant:\n  - name: x\n",
		"nameless":     "grants:\n  - id: \"1\"\n",
		"bad tier":     "coupons:\n  - code: X\n    tier: gold\n",
		"invalid yaml": "grants: [",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(doc))
			assert.Error(t, err)
		})
	}
}

func TestParse_Empty(t *testing.T) {
	file, err := Parse(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, file.Grants)
}

func TestEnsureAdmin_Validation(t *testing.T) {
	_, _, err := EnsureAdmin(context.Background(), db.NewMemoryAccountRepository(), "", "admin@x.test", "123")
	assert.Error(t, err)
}
