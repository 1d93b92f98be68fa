package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"grantmatch-backend-go/internal/models"
)

const startupsCollection = "startups"

type firestoreStartupRepository struct {
	client *firestore.Client
}

// NewFirestoreStartupRepository creates a StartupRepository backed by Firestore.
// Startup documents share their ID with the owning account.
func NewFirestoreStartupRepository(client *firestore.Client) StartupRepository {
	if client == nil {
		panic("Firestore client is not initialized for StartupRepository")
	}
	return &firestoreStartupRepository{client: client}
}

func (r *firestoreStartupRepository) GetByID(ctx context.Context, id string) (*models.Startup, error) {
	if id == "" {
		return nil, errors.New("id cannot be empty for GetByID operation")
	}
	snap, err := r.client.Collection(startupsCollection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("startup with ID '%s' not found: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get startup with ID '%s': %w", id, err)
	}
	return decodeStartup(snap)
}

func (r *firestoreStartupRepository) GetByEmail(ctx context.Context, email string) (*models.Startup, error) {
	iter := r.client.Collection(startupsCollection).
		Where("emailLower", "==", models.NormalizeEmail(email)).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	doc, err := iter.Next()
	if err == iterator.Done {
		return nil, fmt.Errorf("startup with email '%s' not found: %w", email, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query startup by email '%s': %w", email, err)
	}
	return decodeStartup(doc)
}

func (r *firestoreStartupRepository) Upsert(ctx context.Context, id string, mutate func(*models.Startup, bool) error) (*models.Startup, error) {
	ref := r.client.Collection(startupsCollection).Doc(id)
	var stored *models.Startup

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		working := &models.Startup{}
		exists := true
		snap, err := tx.Get(ref)
		switch {
		case status.Code(err) == codes.NotFound:
			exists = false
		case err != nil:
			return err
		default:
			if working, err = decodeStartup(snap); err != nil {
				return err
			}
		}

		if err := mutate(working, exists); err != nil {
			return err
		}
		working.ID = id
		working.AccountID = id
		working.EmailLower = models.NormalizeEmail(working.Email)
		stored = working
		return tx.Set(ref, working)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upsert startup with ID '%s': %w", id, err)
	}
	return stored, nil
}

// SetTierByEmail updates the mirrored tier on every startup with a matching
// email in a single transaction.
func (r *firestoreStartupRepository) SetTierByEmail(ctx context.Context, email string, tier models.Tier) (int, error) {
	query := r.client.Collection(startupsCollection).Where("emailLower", "==", models.NormalizeEmail(email))
	updated := 0

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		updated = 0
		docs, err := tx.Documents(query).GetAll()
		if err != nil {
			return err
		}
		now := time.Now().UTC()
		for _, doc := range docs {
			if err := tx.Update(doc.Ref, []firestore.Update{
				{Path: "tier", Value: string(tier)},
				{Path: "updatedAt", Value: now},
			}); err != nil {
				return err
			}
			updated++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to set tier for startups with email '%s': %w", email, err)
	}
	return updated, nil
}

func (r *firestoreStartupRepository) List(ctx context.Context) ([]*models.Startup, error) {
	iter := r.client.Collection(startupsCollection).OrderBy("createdAt", firestore.Asc).Documents(ctx)
	defer iter.Stop()

	var startups []*models.Startup
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate startups: %w", err)
		}
		s, err := decodeStartup(doc)
		if err != nil {
			return nil, err
		}
		startups = append(startups, s)
	}
	return startups, nil
}

func decodeStartup(doc *firestore.DocumentSnapshot) (*models.Startup, error) {
	var s models.Startup
	if err := doc.DataTo(&s); err != nil {
		return nil, fmt.Errorf("failed to decode startup data for ID '%s': %w", doc.Ref.ID, err)
	}
	s.ID = doc.Ref.ID
	return &s, nil
}
