package db

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	firestorepb "cloud.google.com/go/firestore/apiv1/firestorepb"

	"grantmatch-backend-go/internal/models"
)

const matchesSubcollection = "matches"

// Firestore caps a transaction at 500 writes; deletes and inserts of one
// replace must fit together.
const maxMatchWrites = 500

// firestoreMatchRepository keeps matches in a subcollection of the account
// document, one document per rank position.
type firestoreMatchRepository struct {
	client *firestore.Client
}

// NewFirestoreMatchRepository creates a MatchRepository backed by Firestore.
func NewFirestoreMatchRepository(client *firestore.Client) MatchRepository {
	if client == nil {
		panic("Firestore client is not initialized for MatchRepository")
	}
	return &firestoreMatchRepository{client: client}
}

func (r *firestoreMatchRepository) col(accountID string) *firestore.CollectionRef {
	return r.client.Collection(accountsCollection).Doc(accountID).Collection(matchesSubcollection)
}

// Replace deletes the previous match documents and writes the new ones in a
// single transaction.
func (r *firestoreMatchRepository) Replace(ctx context.Context, accountID string, matches []models.GrantMatch) error {
	col := r.col(accountID)
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		previous, err := tx.Documents(col).GetAll()
		if err != nil {
			return err
		}
		if len(previous)+len(matches) > maxMatchWrites {
			return fmt.Errorf("replace of %d matches over %d stored exceeds transaction limit", len(matches), len(previous))
		}
		for _, doc := range previous {
			if err := tx.Delete(doc.Ref); err != nil {
				return err
			}
		}
		for i := range matches {
			if err := tx.Set(col.Doc(fmt.Sprintf("%04d", i)), matches[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to replace matches for account '%s': %w", accountID, err)
	}
	return nil
}

// Get returns the matches ordered by rank position (document ID).
func (r *firestoreMatchRepository) Get(ctx context.Context, accountID string) ([]models.GrantMatch, error) {
	docs, err := r.col(accountID).OrderBy(firestore.DocumentID, firestore.Asc).Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to get matches for account '%s': %w", accountID, err)
	}
	out := make([]models.GrantMatch, 0, len(docs))
	for _, doc := range docs {
		var m models.GrantMatch
		if err := doc.DataTo(&m); err != nil {
			return nil, fmt.Errorf("failed to decode match '%s': %w", doc.Ref.Path, err)
		}
		out = append(out, m)
	}
	return out, nil
}

// Count runs a collection-group count aggregation over every account's matches.
func (r *firestoreMatchRepository) Count(ctx context.Context) (int, error) {
	results, err := r.client.CollectionGroup(matchesSubcollection).NewAggregationQuery().WithCount("all").Get(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count matches: %w", err)
	}
	raw, ok := results["all"]
	if !ok {
		return 0, fmt.Errorf("aggregation count 'all' missing from results")
	}
	if v, ok := raw.(*firestorepb.Value); ok {
		return int(v.GetIntegerValue()), nil
	}
	return 0, fmt.Errorf("unexpected type %T for aggregation count", raw)
}
