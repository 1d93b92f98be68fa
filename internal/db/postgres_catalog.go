package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"grantmatch-backend-go/internal/models"
)

// grantIDLockKey serializes id assignment across server instances.
const grantIDLockKey = 7301

const catalogSchema = `
CREATE TABLE IF NOT EXISTS grants (
	seq                BIGSERIAL PRIMARY KEY,
	grant_id           TEXT NOT NULL UNIQUE,
	grant_key          TEXT NOT NULL UNIQUE,
	name               TEXT NOT NULL,
	sector             TEXT NOT NULL DEFAULT '',
	eligibility        TEXT NOT NULL DEFAULT '',
	funding_amount     TEXT NOT NULL DEFAULT '',
	funding_type       TEXT NOT NULL DEFAULT '',
	funding_ratio      TEXT NOT NULL DEFAULT '',
	application_link   TEXT NOT NULL DEFAULT '',
	deadline           TEXT NOT NULL DEFAULT '',
	region             TEXT NOT NULL DEFAULT '',
	stage              TEXT NOT NULL DEFAULT '',
	description        TEXT NOT NULL DEFAULT '',
	agency             TEXT NOT NULL DEFAULT '',
	grant_type         TEXT NOT NULL DEFAULT '',
	tenure             TEXT NOT NULL DEFAULT '',
	documents_required TEXT NOT NULL DEFAULT '',
	contact            TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS soft_approvals (
	grant_key TEXT PRIMARY KEY
);
CREATE TABLE IF NOT EXISTS coupons (
	code        TEXT PRIMARY KEY,
	active      BOOLEAN NOT NULL DEFAULT TRUE,
	tier        TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT ''
);`

const grantColumns = `grant_id, name, sector, eligibility, funding_amount, funding_type, funding_ratio, application_link,
	deadline, region, stage, description, agency, grant_type, tenure, documents_required, contact`

const insertGrantSQL = `INSERT INTO grants (grant_key, ` + grantColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`

// PostgresCatalog implements Catalog on PostgreSQL through lib/pq.
type PostgresCatalog struct {
	db *sql.DB
}

// OpenPostgres opens and pings a PostgreSQL connection pool.
func OpenPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
	conn, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}
	conn.SetMaxOpenConns(10)
	conn.SetMaxIdleConns(5)
	conn.SetConnMaxLifetime(5 * time.Minute)
	conn.SetConnMaxIdleTime(5 * time.Minute)

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}
	return conn, nil
}

// NewPostgresCatalog wraps an open database handle.
func NewPostgresCatalog(conn *sql.DB) *PostgresCatalog {
	if conn == nil {
		panic("sql.DB is not initialized for PostgresCatalog")
	}
	return &PostgresCatalog{db: conn}
}

// Migrate creates the catalog tables when they do not exist.
func (c *PostgresCatalog) Migrate(ctx context.Context) error {
	if _, err := c.db.ExecContext(ctx, catalogSchema); err != nil {
		return fmt.Errorf("failed to migrate catalog schema: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanGrant(row rowScanner) (models.Grant, error) {
	var g models.Grant
	err := row.Scan(&g.ID, &g.Name, &g.Sector, &g.Eligibility, &g.FundingAmount, &g.FundingType, &g.FundingRatio,
		&g.ApplicationLink, &g.Deadline, &g.Region, &g.Stage, &g.Description, &g.Agency, &g.GrantType, &g.Tenure,
		&g.DocumentsRequired, &g.Contact)
	return g, err
}

func grantArgs(g models.Grant) []interface{} {
	return []interface{}{models.CanonicalGrantID(g.ID), g.ID, g.Name, g.Sector, g.Eligibility, g.FundingAmount,
		g.FundingType, g.FundingRatio, g.ApplicationLink, g.Deadline, g.Region, g.Stage, g.Description, g.Agency,
		g.GrantType, g.Tenure, g.DocumentsRequired, g.Contact}
}

func (c *PostgresCatalog) ListGrants(ctx context.Context) ([]models.Grant, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT `+grantColumns+` FROM grants ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("failed to list grants: %w", err)
	}
	defer rows.Close()

	var grants []models.Grant
	for rows.Next() {
		g, err := scanGrant(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan grant: %w", err)
		}
		grants = append(grants, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate grants: %w", err)
	}
	return grants, nil
}

// GetGrant prefers an exact id match over a canonical one.
func (c *PostgresCatalog) GetGrant(ctx context.Context, id string) (*models.Grant, error) {
	row := c.db.QueryRowContext(ctx, `SELECT `+grantColumns+` FROM grants
		WHERE grant_id = $1 OR grant_key = $2
		ORDER BY (grant_id = $1) DESC, seq
		LIMIT 1`, id, models.CanonicalGrantID(id))
	g, err := scanGrant(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("grant with ID '%s' not found: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get grant with ID '%s': %w", id, err)
	}
	return &g, nil
}

// CreateGrant assigns max(numeric id)+1 under a transaction-scoped advisory lock.
func (c *PostgresCatalog) CreateGrant(ctx context.Context, g models.Grant, softApproved bool) (models.Grant, error) {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Grant{}, fmt.Errorf("failed to begin grant transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, grantIDLockKey); err != nil {
		return models.Grant{}, fmt.Errorf("failed to lock grant ids: %w", err)
	}

	rows, err := tx.QueryContext(ctx, `SELECT grant_id FROM grants`)
	if err != nil {
		return models.Grant{}, fmt.Errorf("failed to read grant ids: %w", err)
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return models.Grant{}, fmt.Errorf("failed to scan grant id: %w", err)
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return models.Grant{}, fmt.Errorf("failed to iterate grant ids: %w", err)
	}

	g.ID = NextGrantID(ids)
	if _, err := tx.ExecContext(ctx, insertGrantSQL, grantArgs(g)...); err != nil {
		return models.Grant{}, mapPostgresError(fmt.Sprintf("grant '%s'", g.ID), err)
	}
	if softApproved {
		if _, err := tx.ExecContext(ctx, `INSERT INTO soft_approvals (grant_key) VALUES ($1) ON CONFLICT DO NOTHING`,
			models.CanonicalGrantID(g.ID)); err != nil {
			return models.Grant{}, fmt.Errorf("failed to flag soft approval for grant '%s': %w", g.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return models.Grant{}, fmt.Errorf("failed to commit grant '%s': %w", g.ID, err)
	}
	return g, nil
}

func (c *PostgresCatalog) PutGrant(ctx context.Context, g models.Grant) error {
	_, err := c.db.ExecContext(ctx, insertGrantSQL+`
		ON CONFLICT (grant_key) DO UPDATE SET
			grant_id = EXCLUDED.grant_id, name = EXCLUDED.name, sector = EXCLUDED.sector,
			eligibility = EXCLUDED.eligibility, funding_amount = EXCLUDED.funding_amount,
			funding_type = EXCLUDED.funding_type, funding_ratio = EXCLUDED.funding_ratio,
			application_link = EXCLUDED.application_link, deadline = EXCLUDED.deadline,
			region = EXCLUDED.region, stage = EXCLUDED.stage, description = EXCLUDED.description,
			agency = EXCLUDED.agency, grant_type = EXCLUDED.grant_type, tenure = EXCLUDED.tenure,
			documents_required = EXCLUDED.documents_required, contact = EXCLUDED.contact`, grantArgs(g)...)
	if err != nil {
		return mapPostgresError(fmt.Sprintf("grant '%s'", g.ID), err)
	}
	return nil
}

func (c *PostgresCatalog) ListSoftApprovedIDs(ctx context.Context) (map[string]struct{}, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT grant_key FROM soft_approvals`)
	if err != nil {
		return nil, fmt.Errorf("failed to list soft approvals: %w", err)
	}
	defer rows.Close()

	ids := make(map[string]struct{})
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("failed to scan soft approval: %w", err)
		}
		ids[models.CanonicalGrantID(key)] = struct{}{}
	}
	return ids, rows.Err()
}

func (c *PostgresCatalog) SetSoftApproval(ctx context.Context, grantID string, approved bool) error {
	key := models.CanonicalGrantID(grantID)
	var err error
	if approved {
		_, err = c.db.ExecContext(ctx, `INSERT INTO soft_approvals (grant_key) VALUES ($1) ON CONFLICT DO NOTHING`, key)
	} else {
		_, err = c.db.ExecContext(ctx, `DELETE FROM soft_approvals WHERE grant_key = $1`, key)
	}
	if err != nil {
		return fmt.Errorf("failed to set soft approval for grant '%s': %w", grantID, err)
	}
	return nil
}

func (c *PostgresCatalog) GetCoupon(ctx context.Context, code string) (*models.Coupon, error) {
	var (
		coupon models.Coupon
		tier   string
	)
	err := c.db.QueryRowContext(ctx, `SELECT code, active, tier, description FROM coupons WHERE code = $1`, CouponKey(code)).
		Scan(&coupon.Code, &coupon.Active, &tier, &coupon.Description)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("coupon '%s' not found: %w", code, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get coupon '%s': %w", code, err)
	}
	coupon.Tier = models.Tier(tier)
	return &coupon, nil
}

func (c *PostgresCatalog) PutCoupon(ctx context.Context, coupon models.Coupon) error {
	_, err := c.db.ExecContext(ctx, `INSERT INTO coupons (code, active, tier, description) VALUES ($1, $2, $3, $4)
		ON CONFLICT (code) DO UPDATE SET active = EXCLUDED.active, tier = EXCLUDED.tier, description = EXCLUDED.description`,
		CouponKey(coupon.Code), coupon.Active, string(coupon.Tier), coupon.Description)
	if err != nil {
		return fmt.Errorf("failed to store coupon '%s': %w", coupon.Code, err)
	}
	return nil
}

// mapPostgresError translates unique violations into ErrDuplicate.
func mapPostgresError(what string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return fmt.Errorf("%s: %w", what, ErrDuplicate)
	}
	return fmt.Errorf("failed to write %s: %w", what, err)
}
