package core

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"grantmatch-backend-go/internal/db"
	"grantmatch-backend-go/internal/logger"
	"grantmatch-backend-go/internal/models"
	"grantmatch-backend-go/pkg/mailer"
)

type fixture struct {
	accounts      db.AccountRepository
	startups      db.StartupRepository
	tracking      db.TrackingRepository
	catalogRepo   db.Catalog
	matches       db.MatchRepository
	notes         db.NotificationRepository
	catalog       CatalogService
	syncer        TierSynchronizer
	notifications NotificationService
	logger        *zap.Logger
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log := logger.NewTest(t)
	f := &fixture{
		accounts:    db.NewMemoryAccountRepository(),
		startups:    db.NewMemoryStartupRepository(),
		tracking:    db.NewMemoryTrackingRepository(),
		catalogRepo: db.NewMemoryCatalogRepository(),
		matches:     db.NewMemoryMatchRepository(),
		notes:       db.NewMemoryNotificationRepository(),
		logger:      log,
	}
	f.catalog = NewCatalogService(f.catalogRepo, nil, 0, log)
	f.syncer = NewTierSynchronizer(f.accounts, f.startups, log)
	f.notifications = NewNotificationService(f.notes, NotificationDelivery{}, log)
	return f
}

func (f *fixture) account(t *testing.T, name, email string, tier models.Tier) *models.Account {
	t.Helper()
	a := &models.Account{Name: name, Email: email, Tier: tier, CreatedAt: time.Now().UTC()}
	require.NoError(t, f.accounts.Create(context.Background(), a))
	return a
}

func (f *fixture) startupFor(t *testing.T, a *models.Account, name string, tier models.Tier) *models.Startup {
	t.Helper()
	st, err := f.startups.Upsert(context.Background(), a.ID, func(s *models.Startup, _ bool) error {
		s.Email = a.Email
		s.Name = name
		s.Tier = tier
		return nil
	})
	require.NoError(t, err)
	return st
}

// seedGrants stores n grants with ids "1".."n" named Fund-01...
func (f *fixture) seedGrants(t *testing.T, n int) []models.Grant {
	t.Helper()
	var out []models.Grant
	for i := 1; i <= n; i++ {
		g := models.Grant{
			ID:     fmt.Sprint(i),
			Name:   fmt.Sprintf("Fund-%02d", i),
			Sector: "Fintech",
			Stage:  "Seed",
		}
		require.NoError(t, f.catalogRepo.PutGrant(context.Background(), g))
		out = append(out, g)
	}
	return out
}

type fakeOracle struct {
	mu      sync.Mutex
	content string
	err     error
	block   bool
	prompts []string
}

func (o *fakeOracle) Complete(ctx context.Context, system, prompt string) (string, error) {
	o.mu.Lock()
	o.prompts = append(o.prompts, prompt)
	o.mu.Unlock()
	if o.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return o.content, o.err
}

func (o *fakeOracle) Provider() string { return "fake" }

type recordingMailer struct {
	mu   sync.Mutex
	sent []mailer.Message
	err  error
}

func (m *recordingMailer) Send(ctx context.Context, msg mailer.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

type recordingQueue struct {
	mu        sync.Mutex
	published map[string][][]byte
	err       error
}

func (q *recordingQueue) Publish(ctx context.Context, queueName string, body []byte) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return q.err
	}
	if q.published == nil {
		q.published = make(map[string][][]byte)
	}
	q.published[queueName] = append(q.published[queueName], body)
	return nil
}

func (q *recordingQueue) Consume(ctx context.Context, queueName string, handler func(body []byte) error) error {
	<-ctx.Done()
	return nil
}

func (q *recordingQueue) Close() error { return nil }

// steppingClock returns a clock that advances one minute per call.
func steppingClock(start time.Time) func() time.Time {
	var mu sync.Mutex
	current := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		current = current.Add(time.Minute)
		return current
	}
}

func grantIDs(matches []models.GrantMatch) []string {
	ids := make([]string, len(matches))
	for i, m := range matches {
		ids[i] = m.GrantID
	}
	return ids
}
