package db

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"grantmatch-backend-go/internal/models"
)

const notificationsCollection = "notifications"

type firestoreNotificationRepository struct {
	client *firestore.Client
}

// NewFirestoreNotificationRepository creates a NotificationRepository backed by Firestore.
func NewFirestoreNotificationRepository(client *firestore.Client) NotificationRepository {
	if client == nil {
		panic("Firestore client is not initialized for NotificationRepository")
	}
	return &firestoreNotificationRepository{client: client}
}

func (r *firestoreNotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	ref := r.client.Collection(notificationsCollection).NewDoc()
	if n.ID != "" {
		ref = r.client.Collection(notificationsCollection).Doc(n.ID)
	}
	n.ID = ref.ID
	if _, err := ref.Create(ctx, n); err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

func (r *firestoreNotificationRepository) ListByAccount(ctx context.Context, accountID string) ([]*models.Notification, error) {
	iter := r.client.Collection(notificationsCollection).
		Where("accountId", "==", accountID).
		OrderBy("createdAt", firestore.Desc).
		Documents(ctx)
	defer iter.Stop()

	var out []*models.Notification
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate notifications for account '%s': %w", accountID, err)
		}
		var n models.Notification
		if err := doc.DataTo(&n); err != nil {
			return nil, fmt.Errorf("failed to decode notification '%s': %w", doc.Ref.ID, err)
		}
		n.ID = doc.Ref.ID
		out = append(out, &n)
	}
	return out, nil
}

func (r *firestoreNotificationRepository) MarkRead(ctx context.Context, accountID, id string) error {
	ref := r.client.Collection(notificationsCollection).Doc(id)
	return r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return fmt.Errorf("notification with ID '%s' not found: %w", id, ErrNotFound)
			}
			return err
		}
		owner, err := snap.DataAt("accountId")
		if err != nil || owner != accountID {
			return fmt.Errorf("notification with ID '%s' not found: %w", id, ErrNotFound)
		}
		return tx.Update(ref, []firestore.Update{{Path: "read", Value: true}})
	})
}
