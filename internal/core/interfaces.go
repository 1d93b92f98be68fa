package core

import (
	"context"

	"grantmatch-backend-go/internal/models"
)

// AccountService covers registration, login and tier administration.
type AccountService interface {
	Register(ctx context.Context, req models.RegisterRequest) (*AuthResult, error)
	Login(ctx context.Context, req models.LoginRequest) (*AuthResult, error)
	GetByID(ctx context.Context, accountID string) (*models.Account, error)
	// ChangeTier sets a startup tier on another account on behalf of staff.
	ChangeTier(ctx context.Context, actor *models.Account, targetID, tier string) (*TierChange, error)
	// ReconcileTierOnLogin pushes the account tier onto its startup profile.
	// Administrative tiers are skipped.
	ReconcileTierOnLogin(ctx context.Context, email string, tier models.Tier)
}

// ScreeningService runs the questionnaire submission pipeline.
type ScreeningService interface {
	Submit(ctx context.Context, accountID string, answers models.ScreeningAnswers) (*ScreeningResult, error)
	Status(ctx context.Context, accountID string) (*ScreeningStatus, error)
}

// CatalogService reads and extends the grant catalog.
type CatalogService interface {
	// Grants returns the raw catalog in insertion order.
	Grants(ctx context.Context) ([]models.Grant, error)
	// ListGrants returns the catalog annotated with soft-approval flags.
	ListGrants(ctx context.Context) ([]models.GrantView, error)
	GetGrant(ctx context.Context, id string) (*models.Grant, error)
	CreateGrant(ctx context.Context, req models.CreateGrantRequest) (*models.GrantView, error)
	SoftApprovedIDs(ctx context.Context) (map[string]struct{}, error)
}

// Ranker turns a profile and the catalog into ranked matches. It never fails;
// the Outcome tells how the result was produced.
type Ranker interface {
	Rank(ctx context.Context, profile models.ScreeningAnswers, grants []models.Grant) ([]models.GrantMatch, Outcome)
}

// MatchService serves the caller's stored matches through the tier filter.
type MatchService interface {
	GetMatches(ctx context.Context, account *models.Account) (*MatchList, error)
}

// CouponService redeems coupons for tier upgrades.
type CouponService interface {
	Redeem(ctx context.Context, accountID, code string) (*CouponRedemption, error)
}

// StartupService exposes startup profiles.
type StartupService interface {
	// Mine returns the caller's startup, or nil when none exists yet.
	Mine(ctx context.Context, account *models.Account) (*models.Startup, error)
	List(ctx context.Context, actor *models.Account) ([]*models.Startup, error)
}

// TrackingService manages grant application tracking entries.
type TrackingService interface {
	Create(ctx context.Context, actor *models.Account, req models.CreateTrackingRequest) (*models.TrackingEntry, error)
	Update(ctx context.Context, actor *models.Account, id string, req models.UpdateTrackingRequest) (*models.TrackingEntry, error)
	Delete(ctx context.Context, actor *models.Account, id string) error
	// Authorize returns the entry when actor may mutate it.
	Authorize(ctx context.Context, actor *models.Account, id string) (*models.TrackingEntry, error)
	AttachScreenshot(ctx context.Context, actor *models.Account, id, path string) (*models.TrackingEntry, error)
	// List returns every entry visible to a staff actor.
	List(ctx context.Context, actor *models.Account) ([]models.TrackingView, error)
	// ListForStartup is the staff view of one startup's entries.
	ListForStartup(ctx context.Context, actor *models.Account, startupID string) ([]models.TrackingView, error)
	// ListForOwner is the startup owner's view, including analyst names.
	ListForOwner(ctx context.Context, actor *models.Account, startupID string) ([]models.TrackingView, error)
	TrackableStartups(ctx context.Context, actor *models.Account) ([]TrackableStartup, error)
}

// NotificationService stores and fans out account notifications.
type NotificationService interface {
	// Notify stores n and hands it to the configured delivery channels.
	// email is the recipient address used for mail delivery.
	Notify(ctx context.Context, n models.Notification, email string) error
	ListForAccount(ctx context.Context, accountID string) ([]*models.Notification, error)
	MarkRead(ctx context.Context, accountID, id string) error
}

// StatsService aggregates platform counters.
type StatsService interface {
	Public(ctx context.Context) (*PublicStats, error)
	Admin(ctx context.Context) (*AdminStats, error)
}
