package db

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"grantmatch-backend-go/internal/models"
)

// The memory repositories back local development and service tests. Every
// read-modify-write holds the repository mutex for the whole cycle, and
// values are copied on the way in and out so callers never share state.

func cloneAccount(a *models.Account) *models.Account {
	c := *a
	if a.UpgradedAt != nil {
		t := *a.UpgradedAt
		c.UpgradedAt = &t
	}
	if a.ScreeningCompletedAt != nil {
		t := *a.ScreeningCompletedAt
		c.ScreeningCompletedAt = &t
	}
	if a.Profile.Screening != nil {
		s := *a.Profile.Screening
		c.Profile.Screening = &s
	}
	if a.Profile.Provenance != nil {
		p := *a.Profile.Provenance
		c.Profile.Provenance = &p
	}
	return &c
}

func cloneTracking(e *models.TrackingEntry) *models.TrackingEntry {
	c := *e
	if e.DisbursedAmount != nil {
		v := *e.DisbursedAmount
		c.DisbursedAmount = &v
	}
	return &c
}

// --- accounts ---

type memoryAccountRepository struct {
	mu       sync.RWMutex
	accounts map[string]*models.Account
	order    []string
}

// NewMemoryAccountRepository returns an in-process AccountRepository.
func NewMemoryAccountRepository() AccountRepository {
	return &memoryAccountRepository{accounts: make(map[string]*models.Account)}
}

func (r *memoryAccountRepository) Create(ctx context.Context, account *models.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if account.ID == "" {
		account.ID = uuid.NewString()
	}
	if _, exists := r.accounts[account.ID]; exists {
		return fmt.Errorf("account with ID '%s': %w", account.ID, ErrDuplicate)
	}
	account.EmailLower = models.NormalizeEmail(account.Email)
	for _, existing := range r.accounts {
		if existing.EmailLower == account.EmailLower {
			return fmt.Errorf("account with email '%s': %w", account.Email, ErrDuplicate)
		}
	}
	r.accounts[account.ID] = cloneAccount(account)
	r.order = append(r.order, account.ID)
	return nil
}

func (r *memoryAccountRepository) GetByID(ctx context.Context, id string) (*models.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.accounts[id]
	if !ok {
		return nil, fmt.Errorf("account with ID '%s' not found: %w", id, ErrNotFound)
	}
	return cloneAccount(a), nil
}

func (r *memoryAccountRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	key := models.NormalizeEmail(email)
	for _, id := range r.order {
		if a := r.accounts[id]; a.EmailLower == key {
			return cloneAccount(a), nil
		}
	}
	return nil, fmt.Errorf("account with email '%s' not found: %w", email, ErrNotFound)
}

func (r *memoryAccountRepository) Update(ctx context.Context, id string, mutate func(*models.Account) error) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.accounts[id]
	if !ok {
		return nil, fmt.Errorf("account with ID '%s' not found: %w", id, ErrNotFound)
	}
	working := cloneAccount(stored)
	if err := mutate(working); err != nil {
		return nil, err
	}
	working.ID = id
	working.EmailLower = models.NormalizeEmail(working.Email)
	r.accounts[id] = working
	return cloneAccount(working), nil
}

func (r *memoryAccountRepository) List(ctx context.Context) ([]*models.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*models.Account, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, cloneAccount(r.accounts[id]))
	}
	return out, nil
}

// --- startups ---

type memoryStartupRepository struct {
	mu       sync.RWMutex
	startups map[string]*models.Startup
	order    []string
	now      func() time.Time
}

// NewMemoryStartupRepository returns an in-process StartupRepository.
func NewMemoryStartupRepository() StartupRepository {
	return &memoryStartupRepository{startups: make(map[string]*models.Startup), now: time.Now}
}

func (r *memoryStartupRepository) GetByID(ctx context.Context, id string) (*models.Startup, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.startups[id]
	if !ok {
		return nil, fmt.Errorf("startup with ID '%s' not found: %w", id, ErrNotFound)
	}
	c := *s
	return &c, nil
}

func (r *memoryStartupRepository) GetByEmail(ctx context.Context, email string) (*models.Startup, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	key := models.NormalizeEmail(email)
	for _, id := range r.order {
		if s := r.startups[id]; s.EmailLower == key {
			c := *s
			return &c, nil
		}
	}
	return nil, fmt.Errorf("startup with email '%s' not found: %w", email, ErrNotFound)
}

func (r *memoryStartupRepository) Upsert(ctx context.Context, id string, mutate func(*models.Startup, bool) error) (*models.Startup, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var working models.Startup
	stored, exists := r.startups[id]
	if exists {
		working = *stored
	}
	if err := mutate(&working, exists); err != nil {
		return nil, err
	}
	working.ID = id
	working.AccountID = id
	working.EmailLower = models.NormalizeEmail(working.Email)
	if !exists {
		r.order = append(r.order, id)
	}
	r.startups[id] = &working
	c := working
	return &c, nil
}

func (r *memoryStartupRepository) SetTierByEmail(ctx context.Context, email string, tier models.Tier) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := models.NormalizeEmail(email)
	updated := 0
	for _, s := range r.startups {
		if s.EmailLower == key {
			s.Tier = tier
			s.UpdatedAt = r.now().UTC()
			updated++
		}
	}
	return updated, nil
}

func (r *memoryStartupRepository) List(ctx context.Context) ([]*models.Startup, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*models.Startup, 0, len(r.order))
	for _, id := range r.order {
		c := *r.startups[id]
		out = append(out, &c)
	}
	return out, nil
}

// --- tracking ---

type memoryTrackingRepository struct {
	mu      sync.RWMutex
	entries map[string]*models.TrackingEntry
	order   []string
}

// NewMemoryTrackingRepository returns an in-process TrackingRepository.
func NewMemoryTrackingRepository() TrackingRepository {
	return &memoryTrackingRepository{entries: make(map[string]*models.TrackingEntry)}
}

func (r *memoryTrackingRepository) Create(ctx context.Context, entry *models.TrackingEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	pair := trackingPairKey(entry.StartupID, entry.GrantID)
	for _, existing := range r.entries {
		if trackingPairKey(existing.StartupID, existing.GrantID) == pair {
			return fmt.Errorf("tracking for startup '%s' and grant '%s': %w", entry.StartupID, entry.GrantID, ErrDuplicate)
		}
	}
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	entry.GrantKey = models.CanonicalGrantID(entry.GrantID)
	r.entries[entry.ID] = cloneTracking(entry)
	r.order = append(r.order, entry.ID)
	return nil
}

func (r *memoryTrackingRepository) GetByID(ctx context.Context, id string) (*models.TrackingEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[id]
	if !ok {
		return nil, fmt.Errorf("tracking entry with ID '%s' not found: %w", id, ErrNotFound)
	}
	return cloneTracking(e), nil
}

func (r *memoryTrackingRepository) Update(ctx context.Context, id string, mutate func(*models.TrackingEntry) error) (*models.TrackingEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.entries[id]
	if !ok {
		return nil, fmt.Errorf("tracking entry with ID '%s' not found: %w", id, ErrNotFound)
	}
	working := cloneTracking(stored)
	if err := mutate(working); err != nil {
		return nil, err
	}
	working.ID = id
	r.entries[id] = working
	return cloneTracking(working), nil
}

func (r *memoryTrackingRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.entries[id]; !ok {
		return fmt.Errorf("tracking entry with ID '%s' not found for deletion: %w", id, ErrNotFound)
	}
	delete(r.entries, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

func (r *memoryTrackingRepository) List(ctx context.Context, filter TrackingFilter) ([]*models.TrackingEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*models.TrackingEntry
	for _, id := range r.order {
		e := r.entries[id]
		if filter.UserID != "" && e.UserID != filter.UserID {
			continue
		}
		if filter.StartupID != "" && e.StartupID != filter.StartupID {
			continue
		}
		out = append(out, cloneTracking(e))
	}
	return out, nil
}

// --- catalog and coupons ---

type memoryCatalogRepository struct {
	mu           sync.RWMutex
	grants       []models.Grant
	softApproved map[string]struct{}
	coupons      map[string]models.Coupon
}

// NewMemoryCatalogRepository returns an in-process catalog and coupon store.
func NewMemoryCatalogRepository() Catalog {
	return &memoryCatalogRepository{
		softApproved: make(map[string]struct{}),
		coupons:      make(map[string]models.Coupon),
	}
}

func (r *memoryCatalogRepository) ListGrants(ctx context.Context) ([]models.Grant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Grant, len(r.grants))
	copy(out, r.grants)
	return out, nil
}

func (r *memoryCatalogRepository) GetGrant(ctx context.Context, id string) (*models.Grant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, g := range r.grants {
		if g.ID == id {
			found := g
			return &found, nil
		}
	}
	key := models.CanonicalGrantID(id)
	for _, g := range r.grants {
		if models.CanonicalGrantID(g.ID) == key {
			found := g
			return &found, nil
		}
	}
	return nil, fmt.Errorf("grant with ID '%s' not found: %w", id, ErrNotFound)
}

func (r *memoryCatalogRepository) CreateGrant(ctx context.Context, g models.Grant, softApproved bool) (models.Grant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := make([]string, 0, len(r.grants))
	for _, existing := range r.grants {
		ids = append(ids, existing.ID)
	}
	g.ID = NextGrantID(ids)
	r.grants = append(r.grants, g)
	if softApproved {
		r.softApproved[models.CanonicalGrantID(g.ID)] = struct{}{}
	}
	return g, nil
}

func (r *memoryCatalogRepository) PutGrant(ctx context.Context, g models.Grant) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := models.CanonicalGrantID(g.ID)
	for i, existing := range r.grants {
		if models.CanonicalGrantID(existing.ID) == key {
			r.grants[i] = g
			return nil
		}
	}
	r.grants = append(r.grants, g)
	return nil
}

func (r *memoryCatalogRepository) ListSoftApprovedIDs(ctx context.Context) (map[string]struct{}, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]struct{}, len(r.softApproved))
	for id := range r.softApproved {
		out[id] = struct{}{}
	}
	return out, nil
}

func (r *memoryCatalogRepository) SetSoftApproval(ctx context.Context, grantID string, approved bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := models.CanonicalGrantID(grantID)
	if approved {
		r.softApproved[key] = struct{}{}
	} else {
		delete(r.softApproved, key)
	}
	return nil
}

func (r *memoryCatalogRepository) GetCoupon(ctx context.Context, code string) (*models.Coupon, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.coupons[CouponKey(code)]
	if !ok {
		return nil, fmt.Errorf("coupon '%s' not found: %w", code, ErrNotFound)
	}
	return &c, nil
}

func (r *memoryCatalogRepository) PutCoupon(ctx context.Context, coupon models.Coupon) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	coupon.Code = CouponKey(coupon.Code)
	r.coupons[coupon.Code] = coupon
	return nil
}

// --- matches ---

type memoryMatchRepository struct {
	mu      sync.RWMutex
	matches map[string][]models.GrantMatch
}

// NewMemoryMatchRepository returns an in-process MatchRepository.
func NewMemoryMatchRepository() MatchRepository {
	return &memoryMatchRepository{matches: make(map[string][]models.GrantMatch)}
}

func (r *memoryMatchRepository) Replace(ctx context.Context, accountID string, matches []models.GrantMatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := make([]models.GrantMatch, len(matches))
	copy(stored, matches)
	r.matches[accountID] = stored
	return nil
}

func (r *memoryMatchRepository) Get(ctx context.Context, accountID string) ([]models.GrantMatch, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.GrantMatch, len(r.matches[accountID]))
	copy(out, r.matches[accountID])
	return out, nil
}

func (r *memoryMatchRepository) Count(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	total := 0
	for _, m := range r.matches {
		total += len(m)
	}
	return total, nil
}

// --- notifications ---

type memoryNotificationRepository struct {
	mu            sync.RWMutex
	notifications []*models.Notification
}

// NewMemoryNotificationRepository returns an in-process NotificationRepository.
func NewMemoryNotificationRepository() NotificationRepository {
	return &memoryNotificationRepository{}
}

func (r *memoryNotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	c := *n
	r.notifications = append(r.notifications, &c)
	return nil
}

func (r *memoryNotificationRepository) ListByAccount(ctx context.Context, accountID string) ([]*models.Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*models.Notification
	for _, n := range r.notifications {
		if n.AccountID == accountID {
			c := *n
			out = append(out, &c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *memoryNotificationRepository) MarkRead(ctx context.Context, accountID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, n := range r.notifications {
		if n.ID == id && n.AccountID == accountID {
			n.Read = true
			return nil
		}
	}
	return fmt.Errorf("notification with ID '%s' not found: %w", id, ErrNotFound)
}
