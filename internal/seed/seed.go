// Package seed loads catalog, coupon and admin fixtures from YAML.
package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"grantmatch-backend-go/internal/crypto"
	"grantmatch-backend-go/internal/db"
	"grantmatch-backend-go/internal/models"
)

// File is the layout of a seed document.
type File struct {
	Grants        []models.Grant  `yaml:"grants"`
	SoftApprovals []string        `yaml:"soft_approvals"`
	Coupons       []models.Coupon `yaml:"coupons"`
	Admin         *Admin          `yaml:"admin"`
}

// Admin describes the bootstrap administrator.
type Admin struct {
	Name     string `yaml:"name"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
}

// Result counts what Apply wrote.
type Result struct {
	Grants        int
	SoftApprovals int
	Coupons       int
	AdminCreated  bool
}

// Load reads and parses the seed file at path.
func Load(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open seed file: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse decodes a seed document. Unknown keys are rejected.
func Parse(r io.Reader) (*File, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var file File
	if err := dec.Decode(&file); err != nil {
		if errors.Is(err, io.EOF) {
			return &file, nil
		}
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}
	for i, g := range file.Grants {
		if strings.TrimSpace(g.Name) == "" {
			return nil, fmt.Errorf("grant #%d has no name", i+1)
		}
	}
	for i, c := range file.Coupons {
		if !c.Tier.Valid() {
			return nil, fmt.Errorf("coupon #%d (%s) has unknown tier %q", i+1, c.Code, c.Tier)
		}
	}
	return &file, nil
}

// Apply writes the seed into the stores. Grants, coupons and the admin are
// written concurrently; grants without an id get the next numeric one.
func Apply(ctx context.Context, file *File, catalog db.Catalog, accounts db.AccountRepository, logger *zap.Logger) (*Result, error) {
	var (
		grants, soft, coupons int
		adminCreated          bool
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		for _, grant := range file.Grants {
			var err error
			if strings.TrimSpace(grant.ID) == "" {
				_, err = catalog.CreateGrant(gctx, grant, false)
			} else {
				err = catalog.PutGrant(gctx, grant)
			}
			if err != nil {
				return fmt.Errorf("failed to seed grant %q: %w", grant.Name, err)
			}
			grants++
		}
		for _, id := range file.SoftApprovals {
			if err := catalog.SetSoftApproval(gctx, id, true); err != nil {
				return fmt.Errorf("failed to seed soft approval %s: %w", id, err)
			}
			soft++
		}
		return nil
	})

	g.Go(func() error {
		for _, c := range file.Coupons {
			if err := catalog.PutCoupon(gctx, c); err != nil {
				return fmt.Errorf("failed to seed coupon %s: %w", c.Code, err)
			}
			coupons++
		}
		return nil
	})

	if file.Admin != nil {
		g.Go(func() error {
			_, created, err := EnsureAdmin(gctx, accounts, file.Admin.Name, file.Admin.Email, file.Admin.Password)
			adminCreated = created
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := &Result{Grants: grants, SoftApprovals: soft, Coupons: coupons, AdminCreated: adminCreated}
	logger.Info("Seed applied",
		zap.Int("grants", res.Grants), zap.Int("soft_approvals", res.SoftApprovals),
		zap.Int("coupons", res.Coupons), zap.Bool("admin_created", res.AdminCreated))
	return res, nil
}

// EnsureAdmin creates an admin account unless the email is already
// registered, in which case the existing account is returned untouched.
func EnsureAdmin(ctx context.Context, accounts db.AccountRepository, name, email, password string) (*models.Account, bool, error) {
	email = strings.TrimSpace(email)
	if email == "" || len(password) < 6 {
		return nil, false, errors.New("admin needs an email and a password of at least 6 characters")
	}
	if name == "" {
		name = "Administrator"
	}

	existing, err := accounts.GetByEmail(ctx, email)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, db.ErrNotFound) {
		return nil, false, fmt.Errorf("failed to look up admin: %w", err)
	}

	hash, err := crypto.HashPassword(password)
	if err != nil {
		return nil, false, err
	}
	admin := &models.Account{
		Email:        email,
		PasswordHash: hash,
		Name:         name,
		Tier:         models.TierAdmin,
		CreatedAt:    time.Now().UTC(),
	}
	if err := accounts.Create(ctx, admin); err != nil {
		return nil, false, fmt.Errorf("failed to create admin: %w", err)
	}
	return admin, true, nil
}
