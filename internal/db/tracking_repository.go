package db

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"grantmatch-backend-go/internal/models"
)

const trackingCollection = "grantTracking"

type firestoreTrackingRepository struct {
	client *firestore.Client
}

// NewFirestoreTrackingRepository creates a TrackingRepository backed by Firestore.
func NewFirestoreTrackingRepository(client *firestore.Client) TrackingRepository {
	if client == nil {
		panic("Firestore client is not initialized for TrackingRepository")
	}
	return &firestoreTrackingRepository{client: client}
}

// Create checks the (startupId, grantKey) pair and writes the new entry in
// one transaction so two concurrent creates cannot both succeed.
func (r *firestoreTrackingRepository) Create(ctx context.Context, entry *models.TrackingEntry) error {
	col := r.client.Collection(trackingCollection)
	entry.GrantKey = models.CanonicalGrantID(entry.GrantID)

	var ref *firestore.DocumentRef
	if entry.ID == "" {
		ref = col.NewDoc()
		entry.ID = ref.ID
	} else {
		ref = col.Doc(entry.ID)
	}

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		dupes, err := tx.Documents(col.
			Where("startupId", "==", entry.StartupID).
			Where("grantKey", "==", entry.GrantKey).
			Limit(1)).GetAll()
		if err != nil {
			return err
		}
		if len(dupes) > 0 {
			return fmt.Errorf("tracking for startup '%s' and grant '%s': %w", entry.StartupID, entry.GrantID, ErrDuplicate)
		}
		return tx.Create(ref, entry)
	})
	if err != nil {
		if errors.Is(err, ErrDuplicate) {
			return err
		}
		return fmt.Errorf("failed to create tracking entry: %w", err)
	}
	return nil
}

func (r *firestoreTrackingRepository) GetByID(ctx context.Context, id string) (*models.TrackingEntry, error) {
	if id == "" {
		return nil, errors.New("id cannot be empty for GetByID operation")
	}
	snap, err := r.client.Collection(trackingCollection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("tracking entry with ID '%s' not found: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get tracking entry with ID '%s': %w", id, err)
	}
	return decodeTracking(snap)
}

func (r *firestoreTrackingRepository) Update(ctx context.Context, id string, mutate func(*models.TrackingEntry) error) (*models.TrackingEntry, error) {
	ref := r.client.Collection(trackingCollection).Doc(id)
	var updated *models.TrackingEntry

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return fmt.Errorf("tracking entry with ID '%s' not found: %w", id, ErrNotFound)
			}
			return err
		}
		entry, err := decodeTracking(snap)
		if err != nil {
			return err
		}
		if err := mutate(entry); err != nil {
			return err
		}
		updated = entry
		return tx.Set(ref, entry)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update tracking entry with ID '%s': %w", id, err)
	}
	return updated, nil
}

// Delete removes the entry, failing with ErrNotFound when it is absent.
func (r *firestoreTrackingRepository) Delete(ctx context.Context, id string) error {
	if id == "" {
		return errors.New("id cannot be empty for Delete operation")
	}
	_, err := r.client.Collection(trackingCollection).Doc(id).Delete(ctx, firestore.Exists)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return fmt.Errorf("tracking entry with ID '%s' not found for deletion: %w", id, ErrNotFound)
		}
		return fmt.Errorf("failed to delete tracking entry with ID '%s': %w", id, err)
	}
	return nil
}

func (r *firestoreTrackingRepository) List(ctx context.Context, filter TrackingFilter) ([]*models.TrackingEntry, error) {
	query := r.client.Collection(trackingCollection).Query
	if filter.UserID != "" {
		query = query.Where("userId", "==", filter.UserID)
	}
	if filter.StartupID != "" {
		query = query.Where("startupId", "==", filter.StartupID)
	}

	iter := query.OrderBy("createdAt", firestore.Asc).Documents(ctx)
	defer iter.Stop()

	var entries []*models.TrackingEntry
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate tracking entries: %w", err)
		}
		entry, err := decodeTracking(doc)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func decodeTracking(doc *firestore.DocumentSnapshot) (*models.TrackingEntry, error) {
	var entry models.TrackingEntry
	if err := doc.DataTo(&entry); err != nil {
		return nil, fmt.Errorf("failed to decode tracking data for ID '%s': %w", doc.Ref.ID, err)
	}
	entry.ID = doc.Ref.ID
	return &entry, nil
}
