package db

import (
	"context"
	"errors"

	"grantmatch-backend-go/internal/models"
)

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("document not found")
	// ErrDuplicate is returned when a uniqueness constraint would be violated.
	ErrDuplicate = errors.New("document already exists")
)

// AccountRepository stores account records.
type AccountRepository interface {
	// Create inserts a new account. It returns ErrDuplicate when the email is
	// already registered, compared case-insensitively.
	Create(ctx context.Context, account *models.Account) error
	GetByID(ctx context.Context, id string) (*models.Account, error)
	// GetByEmail looks an account up by case-insensitive email.
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
	// Update runs mutate on the stored account and writes the result back
	// atomically. Returning an error from mutate aborts the write.
	Update(ctx context.Context, id string, mutate func(*models.Account) error) (*models.Account, error)
	List(ctx context.Context) ([]*models.Account, error)
}

// StartupRepository stores startup profiles. A startup's ID is the ID of the
// account it belongs to; email is a secondary, case-insensitive index.
type StartupRepository interface {
	GetByID(ctx context.Context, id string) (*models.Startup, error)
	GetByEmail(ctx context.Context, email string) (*models.Startup, error)
	// Upsert loads the startup with the given ID (or a zero value when
	// absent), runs mutate and stores the result atomically.
	Upsert(ctx context.Context, id string, mutate func(s *models.Startup, exists bool) error) (*models.Startup, error)
	// SetTierByEmail overwrites the mirrored tier on every startup whose
	// email matches case-insensitively and returns how many rows changed.
	SetTierByEmail(ctx context.Context, email string, tier models.Tier) (int, error)
	List(ctx context.Context) ([]*models.Startup, error)
}

// TrackingFilter narrows a tracking listing. Empty fields match everything.
type TrackingFilter struct {
	UserID    string
	StartupID string
}

// TrackingRepository stores tracking entries.
type TrackingRepository interface {
	// Create inserts entry, assigning an ID when empty. It returns
	// ErrDuplicate when an entry already exists for the same startup and
	// canonical grant id.
	Create(ctx context.Context, entry *models.TrackingEntry) error
	GetByID(ctx context.Context, id string) (*models.TrackingEntry, error)
	Update(ctx context.Context, id string, mutate func(*models.TrackingEntry) error) (*models.TrackingEntry, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter TrackingFilter) ([]*models.TrackingEntry, error)
}

// CatalogRepository stores the grant catalog and its soft-approval overlay.
type CatalogRepository interface {
	// ListGrants returns every grant in insertion order.
	ListGrants(ctx context.Context) ([]models.Grant, error)
	// GetGrant matches id exactly first and then by canonical form.
	GetGrant(ctx context.Context, id string) (*models.Grant, error)
	// CreateGrant assigns the next numeric id and stores g.
	CreateGrant(ctx context.Context, g models.Grant, softApproved bool) (models.Grant, error)
	// PutGrant stores g under its own id, replacing any grant with the same
	// canonical id.
	PutGrant(ctx context.Context, g models.Grant) error
	// ListSoftApprovedIDs returns canonical ids with a soft-approval pathway.
	ListSoftApprovedIDs(ctx context.Context) (map[string]struct{}, error)
	SetSoftApproval(ctx context.Context, grantID string, approved bool) error
}

// CouponRepository stores redeemable coupons keyed by upper-cased code.
type CouponRepository interface {
	GetCoupon(ctx context.Context, code string) (*models.Coupon, error)
	PutCoupon(ctx context.Context, coupon models.Coupon) error
}

// Catalog is a store that serves both grants and coupons.
type Catalog interface {
	CatalogRepository
	CouponRepository
}

// MatchRepository stores each account's latest ranked matches.
type MatchRepository interface {
	// Replace discards every stored match for the account and stores
	// matches in order, atomically.
	Replace(ctx context.Context, accountID string, matches []models.GrantMatch) error
	Get(ctx context.Context, accountID string) ([]models.GrantMatch, error)
	// Count returns the number of stored matches across all accounts.
	Count(ctx context.Context) (int, error)
}

// NotificationRepository stores account notifications.
type NotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	// ListByAccount returns the account's notifications, newest first.
	ListByAccount(ctx context.Context, accountID string) ([]*models.Notification, error)
	// MarkRead flags a notification as read. It returns ErrNotFound when the
	// notification does not exist or belongs to another account.
	MarkRead(ctx context.Context, accountID, id string) error
}
