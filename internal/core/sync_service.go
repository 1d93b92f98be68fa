package core

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"grantmatch-backend-go/internal/db"
	"grantmatch-backend-go/internal/metrics"
	"grantmatch-backend-go/internal/models"
)

// Sync directions, also used as metric labels.
const (
	DirectionAccountToStartup = "account_to_startup"
	DirectionStartupToAccount = "startup_to_account"
)

// SyncOutcome reports what a tier synchronization changed.
type SyncOutcome struct {
	Direction string
	Email     string
	Tier      models.Tier
	Updated   int
}

// SyncError is returned when a synchronization could not be written. It is
// never fatal to the operation that triggered it.
type SyncError struct {
	Direction string
	Email     string
	Tier      models.Tier
	Err       error
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("tier sync %s for %s to %s failed: %v", e.Direction, e.Email, e.Tier, e.Err)
}

func (e *SyncError) Unwrap() error { return e.Err }

// TierSynchronizer keeps the account tier and the startup's mirrored tier equal.
type TierSynchronizer interface {
	SyncTierToStartup(ctx context.Context, email string, tier models.Tier) (SyncOutcome, error)
	SyncStartupToUser(ctx context.Context, email string, tier models.Tier) (SyncOutcome, error)
}

type tierSynchronizer struct {
	accounts db.AccountRepository
	startups db.StartupRepository
	logger   *zap.Logger
}

// NewTierSynchronizer creates a TierSynchronizer.
func NewTierSynchronizer(accounts db.AccountRepository, startups db.StartupRepository, logger *zap.Logger) TierSynchronizer {
	return &tierSynchronizer{accounts: accounts, startups: startups, logger: logger}
}

func (s *tierSynchronizer) SyncTierToStartup(ctx context.Context, email string, tier models.Tier) (SyncOutcome, error) {
	out := SyncOutcome{Direction: DirectionAccountToStartup, Email: email, Tier: tier}
	n, err := s.startups.SetTierByEmail(ctx, email, tier)
	if err != nil {
		metrics.SyncFailures.WithLabelValues(DirectionAccountToStartup).Inc()
		return out, &SyncError{Direction: DirectionAccountToStartup, Email: email, Tier: tier, Err: err}
	}
	out.Updated = n
	if n == 0 {
		metrics.SyncMisses.WithLabelValues(DirectionAccountToStartup).Inc()
		s.logger.Info("No startup profile to sync tier into", zap.String("email", email), zap.String("tier", string(tier)))
	}
	return out, nil
}

func (s *tierSynchronizer) SyncStartupToUser(ctx context.Context, email string, tier models.Tier) (SyncOutcome, error) {
	out := SyncOutcome{Direction: DirectionStartupToAccount, Email: email, Tier: tier}
	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			metrics.SyncMisses.WithLabelValues(DirectionStartupToAccount).Inc()
			s.logger.Info("No account to sync tier into", zap.String("email", email))
			return out, nil
		}
		metrics.SyncFailures.WithLabelValues(DirectionStartupToAccount).Inc()
		return out, &SyncError{Direction: DirectionStartupToAccount, Email: email, Tier: tier, Err: err}
	}
	if account.Tier == tier {
		return out, nil
	}

	_, err = s.accounts.Update(ctx, account.ID, func(a *models.Account) error {
		a.Tier = tier
		return nil
	})
	if err != nil {
		metrics.SyncFailures.WithLabelValues(DirectionStartupToAccount).Inc()
		return out, &SyncError{Direction: DirectionStartupToAccount, Email: email, Tier: tier, Err: err}
	}
	out.Updated = 1
	return out, nil
}

// syncTier runs the account-to-startup sync and logs failures.
func syncTier(ctx context.Context, syncer TierSynchronizer, logger *zap.Logger, email string, tier models.Tier) {
	if _, err := syncer.SyncTierToStartup(ctx, email, tier); err != nil {
		logger.Warn("Tier synchronization failed", zap.String("email", email), zap.String("tier", string(tier)), zap.Error(err))
	}
}

// SyncReport summarizes a bulk reconciliation.
type SyncReport struct {
	Direction string
	Checked   int
	Updated   int
	Missing   int
	Failed    int
}

// ReconcileAllTiers runs the synchronizer over every record. Forward pushes
// each startup-owning account's tier onto its startup; reverse pushes each
// startup's tier back onto its account. Individual failures are counted and
// logged, not returned.
func ReconcileAllTiers(
	ctx context.Context,
	accounts db.AccountRepository,
	startups db.StartupRepository,
	syncer TierSynchronizer,
	reverse bool,
	logger *zap.Logger,
) (*SyncReport, error) {
	report := &SyncReport{Direction: DirectionAccountToStartup}
	record := func(out SyncOutcome, err error) {
		report.Checked++
		switch {
		case err != nil:
			report.Failed++
			logger.Warn("Tier reconciliation failed", zap.String("email", out.Email), zap.Error(err))
		case out.Updated > 0:
			report.Updated += out.Updated
		default:
			report.Missing++
		}
	}

	if reverse {
		report.Direction = DirectionStartupToAccount
		list, err := startups.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list startups: %w", err)
		}
		for _, st := range list {
			if st.Email == "" || !st.Tier.Valid() {
				continue
			}
			record(syncer.SyncStartupToUser(ctx, st.Email, st.Tier))
		}
		return report, nil
	}

	list, err := accounts.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	for _, a := range list {
		if a.Tier.IsAdministrative() {
			continue
		}
		record(syncer.SyncTierToStartup(ctx, a.Email, a.Tier))
	}
	return report, nil
}
