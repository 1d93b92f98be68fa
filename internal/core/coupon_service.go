package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"grantmatch-backend-go/internal/db"
	"grantmatch-backend-go/internal/models"
)

// CouponRedemption is returned after a successful redemption.
type CouponRedemption struct {
	Message     string      `json:"message"`
	Tier        models.Tier `json:"tier"`
	Description string      `json:"description"`
}

type couponService struct {
	coupons       db.CouponRepository
	accounts      db.AccountRepository
	syncer        TierSynchronizer
	notifications NotificationService
	logger        *zap.Logger
	now           func() time.Time
}

// NewCouponService creates a CouponService.
func NewCouponService(
	coupons db.CouponRepository,
	accounts db.AccountRepository,
	syncer TierSynchronizer,
	notifications NotificationService,
	logger *zap.Logger,
) CouponService {
	return &couponService{
		coupons:       coupons,
		accounts:      accounts,
		syncer:        syncer,
		notifications: notifications,
		logger:        logger,
		now:           time.Now,
	}
}

func (s *couponService) Redeem(ctx context.Context, accountID, code string) (*CouponRedemption, error) {
	key := db.CouponKey(code)
	if key == "" {
		return nil, validationErrorf("coupon code is required")
	}

	coupon, err := s.coupons.GetCoupon(ctx, key)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("invalid coupon code: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to look up coupon: %w", err)
	}
	if !coupon.Active {
		return nil, validationErrorf("coupon is no longer active")
	}
	if !coupon.Tier.Valid() {
		return nil, fmt.Errorf("coupon %s carries unknown tier %q", key, coupon.Tier)
	}

	var oldTier models.Tier
	account, err := s.accounts.Update(ctx, accountID, func(a *models.Account) error {
		oldTier = a.Tier
		at := s.now().UTC()
		a.Tier = coupon.Tier
		a.UpgradedAt = &at
		a.CouponUsed = key
		return nil
	})
	if err != nil {
		return nil, repoError(err, fmt.Sprintf("account '%s'", accountID))
	}

	syncTier(ctx, s.syncer, s.logger, account.Email, account.Tier)
	notify(ctx, s.notifications, s.logger, models.Notification{
		AccountID: account.ID,
		Kind:      models.NotificationTierChanged,
		Title:     "Your plan has been upgraded",
		Message:   fmt.Sprintf("Coupon %s upgraded your tier to %s.", key, coupon.Tier),
		Details:   map[string]string{"old_tier": string(oldTier), "new_tier": string(coupon.Tier), "coupon": key},
	}, account.Email)

	s.logger.Info("Coupon redeemed", zap.String("account_id", account.ID), zap.String("coupon", key), zap.String("tier", string(coupon.Tier)))
	return &CouponRedemption{
		Message:     fmt.Sprintf("Tier upgraded to %s", coupon.Tier),
		Tier:        coupon.Tier,
		Description: coupon.Description,
	}, nil
}
