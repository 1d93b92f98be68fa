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

const accountsCollection = "accounts"

// firestoreAccountRepository implements the AccountRepository interface using Firestore.
type firestoreAccountRepository struct {
	client *firestore.Client
}

// NewFirestoreAccountRepository creates a new instance of firestoreAccountRepository.
func NewFirestoreAccountRepository(client *firestore.Client) AccountRepository {
	if client == nil {
		panic("Firestore client is not initialized for AccountRepository")
	}
	return &firestoreAccountRepository{client: client}
}

// Create adds a new account document. Email uniqueness is checked inside the
// same transaction that writes the document.
func (r *firestoreAccountRepository) Create(ctx context.Context, account *models.Account) error {
	account.EmailLower = models.NormalizeEmail(account.Email)
	col := r.client.Collection(accountsCollection)

	var ref *firestore.DocumentRef
	if account.ID == "" {
		ref = col.NewDoc()
		account.ID = ref.ID
	} else {
		ref = col.Doc(account.ID)
	}

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		existing, err := tx.Documents(col.Where("emailLower", "==", account.EmailLower).Limit(1)).GetAll()
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			return fmt.Errorf("account with email '%s': %w", account.Email, ErrDuplicate)
		}
		return tx.Create(ref, account)
	})
	if err != nil {
		if errors.Is(err, ErrDuplicate) {
			return err
		}
		if status.Code(err) == codes.AlreadyExists {
			return fmt.Errorf("account with ID '%s': %w", account.ID, ErrDuplicate)
		}
		return fmt.Errorf("failed to create account with ID '%s': %w", account.ID, err)
	}
	return nil
}

// GetByID retrieves an account document by its ID.
func (r *firestoreAccountRepository) GetByID(ctx context.Context, id string) (*models.Account, error) {
	if id == "" {
		return nil, errors.New("id cannot be empty for GetByID operation")
	}
	docSnap, err := r.client.Collection(accountsCollection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("account with ID '%s' not found: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get account with ID '%s': %w", id, err)
	}
	return decodeAccount(docSnap)
}

// GetByEmail looks an account up through the lower-cased email field.
func (r *firestoreAccountRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	iter := r.client.Collection(accountsCollection).
		Where("emailLower", "==", models.NormalizeEmail(email)).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	doc, err := iter.Next()
	if err == iterator.Done {
		return nil, fmt.Errorf("account with email '%s' not found: %w", email, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query account by email '%s': %w", email, err)
	}
	return decodeAccount(doc)
}

// Update reads, mutates and writes an account inside a transaction.
func (r *firestoreAccountRepository) Update(ctx context.Context, id string, mutate func(*models.Account) error) (*models.Account, error) {
	ref := r.client.Collection(accountsCollection).Doc(id)
	var updated *models.Account

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return fmt.Errorf("account with ID '%s' not found: %w", id, ErrNotFound)
			}
			return err
		}
		account, err := decodeAccount(snap)
		if err != nil {
			return err
		}
		if err := mutate(account); err != nil {
			return err
		}
		account.EmailLower = models.NormalizeEmail(account.Email)
		updated = account
		return tx.Set(ref, account)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update account with ID '%s': %w", id, err)
	}
	return updated, nil
}

// List returns every account ordered by creation time.
func (r *firestoreAccountRepository) List(ctx context.Context) ([]*models.Account, error) {
	iter := r.client.Collection(accountsCollection).OrderBy("createdAt", firestore.Asc).Documents(ctx)
	defer iter.Stop()

	var accounts []*models.Account
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate accounts: %w", err)
		}
		account, err := decodeAccount(doc)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}
	return accounts, nil
}

func decodeAccount(doc *firestore.DocumentSnapshot) (*models.Account, error) {
	var account models.Account
	if err := doc.DataTo(&account); err != nil {
		return nil, fmt.Errorf("failed to decode account data for ID '%s': %w", doc.Ref.ID, err)
	}
	account.ID = doc.Ref.ID
	return &account, nil
}
