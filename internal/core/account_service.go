package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"grantmatch-backend-go/internal/crypto"
	"grantmatch-backend-go/internal/db"
	"grantmatch-backend-go/internal/models"
)

// AuthResult is returned by register and login.
type AuthResult struct {
	Token   string          `json:"token"`
	Account *models.Account `json:"user"`
}

// TierChange describes a staff-initiated tier change.
type TierChange struct {
	Message string      `json:"message"`
	UserID  string      `json:"user_id"`
	Email   string      `json:"email"`
	OldTier models.Tier `json:"old_tier"`
	NewTier models.Tier `json:"new_tier"`
}

type accountService struct {
	accounts      db.AccountRepository
	tokens        *crypto.TokenIssuer
	syncer        TierSynchronizer
	notifications NotificationService
	logger        *zap.Logger
	now           func() time.Time
}

// NewAccountService creates an AccountService.
func NewAccountService(
	accounts db.AccountRepository,
	tokens *crypto.TokenIssuer,
	syncer TierSynchronizer,
	notifications NotificationService,
	logger *zap.Logger,
) AccountService {
	return &accountService{
		accounts:      accounts,
		tokens:        tokens,
		syncer:        syncer,
		notifications: notifications,
		logger:        logger,
		now:           time.Now,
	}
}

func (s *accountService) Register(ctx context.Context, req models.RegisterRequest) (*AuthResult, error) {
	email := strings.TrimSpace(req.Email)
	if email == "" || strings.TrimSpace(req.Name) == "" {
		return nil, validationErrorf("name and email are required")
	}
	if len(req.Password) < 6 {
		return nil, validationErrorf("password must be at least 6 characters")
	}

	hash, err := crypto.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	account := &models.Account{
		Email:        email,
		PasswordHash: hash,
		Name:         strings.TrimSpace(req.Name),
		Tier:         models.TierFree,
		CreatedAt:    s.now().UTC(),
	}
	if req.RegistrationLink != "" || req.Source != "" {
		account.Profile.Provenance = &models.Provenance{RegistrationLink: req.RegistrationLink, Source: req.Source}
	}

	if err := s.accounts.Create(ctx, account); err != nil {
		if errors.Is(err, db.ErrDuplicate) {
			return nil, fmt.Errorf("%w: %s", ErrEmailTaken, email)
		}
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	token, err := s.tokens.Issue(account.ID, account.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}
	s.logger.Info("Account registered", zap.String("account_id", account.ID))
	return &AuthResult{Token: token, Account: account}, nil
}

func (s *accountService) Login(ctx context.Context, req models.LoginRequest) (*AuthResult, error) {
	account, err := s.accounts.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}
	if err := crypto.CheckPassword(account.PasswordHash, req.Password); err != nil {
		return nil, ErrInvalidCredentials
	}

	s.ReconcileTierOnLogin(ctx, account.Email, account.Tier)

	token, err := s.tokens.Issue(account.ID, account.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}
	return &AuthResult{Token: token, Account: account}, nil
}

func (s *accountService) ReconcileTierOnLogin(ctx context.Context, email string, tier models.Tier) {
	if tier.IsAdministrative() {
		return
	}
	syncTier(ctx, s.syncer, s.logger, email, tier)
}

func (s *accountService) GetByID(ctx context.Context, accountID string) (*models.Account, error) {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return nil, repoError(err, fmt.Sprintf("account '%s'", accountID))
	}
	return account, nil
}

func (s *accountService) ChangeTier(ctx context.Context, actor *models.Account, targetID, tier string) (*TierChange, error) {
	if !actor.Tier.In(models.TierAdmin, models.TierVentureAnalyst) {
		return nil, ErrAccessDenied
	}
	newTier, ok := models.ParseTier(tier)
	if !ok || !newTier.In(models.TierFree, models.TierPremium, models.TierExpert) {
		return nil, validationErrorf("invalid tier, must be 'free', 'premium', or 'expert'")
	}

	var oldTier models.Tier
	updated, err := s.accounts.Update(ctx, targetID, func(a *models.Account) error {
		oldTier = a.Tier
		a.Tier = newTier
		at := s.now().UTC()
		a.UpgradedAt = &at
		return nil
	})
	if err != nil {
		return nil, repoError(err, fmt.Sprintf("account '%s'", targetID))
	}

	syncTier(ctx, s.syncer, s.logger, updated.Email, newTier)
	notify(ctx, s.notifications, s.logger, models.Notification{
		AccountID: updated.ID,
		Kind:      models.NotificationTierChanged,
		Title:     "Your plan has changed",
		Message:   fmt.Sprintf("Your tier was changed from %s to %s.", oldTier, newTier),
		Details:   map[string]string{"old_tier": string(oldTier), "new_tier": string(newTier), "changed_by": actor.ID},
	}, updated.Email)

	s.logger.Info("Account tier changed",
		zap.String("account_id", updated.ID), zap.String("actor_id", actor.ID),
		zap.String("old_tier", string(oldTier)), zap.String("new_tier", string(newTier)))
	return &TierChange{
		Message: fmt.Sprintf("User tier updated from %s to %s", oldTier, newTier),
		UserID:  updated.ID,
		Email:   updated.Email,
		OldTier: oldTier,
		NewTier: newTier,
	}, nil
}
