package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/vimmo/listingrank/internal/database"
	"github.com/vimmo/listingrank/internal/models"
)

const sqliteTimeLayout = time.RFC3339Nano

// SQLite implements all repositories on an embedded SQLite database.
// Timestamps are stored as RFC 3339 text, booleans as integers.
type SQLite struct {
	db *database.DB
}

// NewSQLite creates the SQLite repository set
func NewSQLite(db *database.DB) *Repositories {
	s := &SQLite{db: db}
	return &Repositories{
		Listings:  s,
		Leads:     s,
		Accounts:  s,
		Snapshots: s,
	}
}

// GetListingByID retrieves a listing by its ID, leads attached
func (s *SQLite) GetListingByID(ctx context.Context, id string) (*models.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings WHERE id = ?`

	listing, err := s.scanListingRow(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrListingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get listing: %w", err)
	}

	leads, err := s.LeadsByListing(ctx, id)
	if err != nil {
		return nil, err
	}
	listing.Leads = leads
	return listing, nil
}

// ListListings returns all listings, leads attached, oldest first
func (s *SQLite) ListListings(ctx context.Context) ([]models.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings ORDER BY created_at, id`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query listings: %w", err)
	}
	defer rows.Close()

	var listings []models.Listing
	for rows.Next() {
		listing, err := s.scanListingRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan listing: %w", err)
		}
		listings = append(listings, *listing)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating listings: %w", err)
	}

	for i := range listings {
		leads, err := s.LeadsByListing(ctx, listings[i].ID)
		if err != nil {
			return nil, err
		}
		listings[i].Leads = leads
	}
	return listings, nil
}

// SaveListing upserts a listing (without its leads)
func (s *SQLite) SaveListing(ctx context.Context, listing *models.Listing) error {
	query := `
		INSERT INTO listings (` + listingColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			postcode = excluded.postcode,
			address = excluded.address,
			location = excluded.location,
			type = excluded.type,
			price = excluded.price,
			bedrooms = excluded.bedrooms,
			bathrooms = excluded.bathrooms,
			surface = excluded.surface,
			energy_label = excluded.energy_label,
			transaction_type = excluded.transaction_type,
			status = excluded.status,
			photos = excluded.photos,
			docs = excluded.docs,
			owner_verified = excluded.owner_verified,
			viewing_slots = excluded.viewing_slots,
			boost_until = excluded.boost_until,
			updated_at = excluded.updated_at
	`

	now := time.Now().UTC()
	if listing.CreatedAt.IsZero() {
		listing.CreatedAt = now
	}
	listing.UpdatedAt = now

	photos, docs, slots, err := marshalListingJSON(listing)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, query,
		listing.ID, listing.Name, listing.Description, listing.Postcode,
		listing.Address, listing.Location, listing.Type, listing.Price,
		listing.Bedrooms, listing.Bathrooms, listing.Surface,
		string(listing.EnergyLabel), string(listing.TransactionType), string(listing.Status),
		string(photos), string(docs), boolToInt(listing.OwnerVerified), string(slots),
		formatNullTime(listing.BoostUntil),
		listing.CreatedAt.Format(sqliteTimeLayout), listing.UpdatedAt.Format(sqliteTimeLayout),
	)
	if err != nil {
		return fmt.Errorf("failed to save listing: %w", err)
	}
	return nil
}

// LeadsByListing returns all leads of a listing, oldest first
func (s *SQLite) LeadsByListing(ctx context.Context, listingID string) ([]models.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE listing_id = ? ORDER BY created_at, id`

	rows, err := s.db.QueryContext(ctx, query, listingID)
	if err != nil {
		return nil, fmt.Errorf("failed to query leads: %w", err)
	}
	defer rows.Close()

	var leads []models.Lead
	for rows.Next() {
		lead, err := s.scanLeadRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan lead: %w", err)
		}
		leads = append(leads, *lead)
	}
	return leads, rows.Err()
}

// CreateLead inserts a new lead
func (s *SQLite) CreateLead(ctx context.Context, lead *models.Lead) error {
	if lead.CreatedAt.IsZero() {
		lead.CreatedAt = time.Now().UTC()
	}
	if lead.Status == "" {
		lead.Status = models.LeadStatusNew
	}

	meta, err := marshalReplyMeta(lead.ReplyMeta)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO leads (` + leadColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = s.db.ExecContext(ctx, query,
		lead.ID, lead.ListingID, string(lead.Status), lead.Name, lead.Email,
		lead.Phone, lead.Message, lead.CreatedAt.Format(sqliteTimeLayout),
		formatNullTime(lead.FirstReplyAt), formatNullTime(lead.LastReplyAt),
		nullString(meta),
	)
	if err != nil {
		return fmt.Errorf("failed to create lead: %w", err)
	}
	return nil
}

// ReplaceLeads replaces the full lead collection of a listing
func (s *SQLite) ReplaceLeads(ctx context.Context, listingID string, leads []models.Lead) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM leads WHERE listing_id = ?`, listingID); err != nil {
		return fmt.Errorf("failed to clear leads: %w", err)
	}

	query := `
		INSERT INTO leads (` + leadColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	for _, lead := range leads {
		meta, err := marshalReplyMeta(lead.ReplyMeta)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, query,
			lead.ID, listingID, string(lead.Status), lead.Name, lead.Email,
			lead.Phone, lead.Message, lead.CreatedAt.Format(sqliteTimeLayout),
			formatNullTime(lead.FirstReplyAt), formatNullTime(lead.LastReplyAt),
			nullString(meta),
		); err != nil {
			return fmt.Errorf("failed to insert lead: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// LeadCountsByStatus returns lead counts grouped by status
func (s *SQLite) LeadCountsByStatus(ctx context.Context) (map[models.LeadStatus]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM leads GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("failed to query lead counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[models.LeadStatus]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		counts[models.LeadStatus(status)] = count
	}
	return counts, rows.Err()
}

// GetAccount retrieves an account by its ID
func (s *SQLite) GetAccount(ctx context.Context, id string) (*models.Account, error) {
	query := `SELECT id, email, package_tier, upgraded_at, created_at FROM accounts WHERE id = ?`

	account := &models.Account{}
	var tier, createdAt string
	var upgradedAt sql.NullString
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&account.ID, &account.Email, &tier, &upgradedAt, &createdAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	account.PackageTier = models.PackageTier(tier)
	if account.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if account.UpgradedAt, err = parseNullTime(upgradedAt); err != nil {
		return nil, err
	}
	return account, nil
}

// SaveAccount upserts an account
func (s *SQLite) SaveAccount(ctx context.Context, account *models.Account) error {
	query := `
		INSERT INTO accounts (id, email, package_tier, upgraded_at, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			email = excluded.email,
			package_tier = excluded.package_tier,
			upgraded_at = excluded.upgraded_at
	`

	if account.CreatedAt.IsZero() {
		account.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, query,
		account.ID, account.Email, string(account.PackageTier),
		formatNullTime(account.UpgradedAt), account.CreatedAt.Format(sqliteTimeLayout),
	)
	if err != nil {
		return fmt.Errorf("failed to save account: %w", err)
	}
	return nil
}

// SaveSnapshotRun replaces the stored snapshot with a new run
func (s *SQLite) SaveSnapshotRun(ctx context.Context, snapshots []RankSnapshot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM rank_snapshots`); err != nil {
		return fmt.Errorf("failed to clear snapshots: %w", err)
	}

	query := `
		INSERT INTO rank_snapshots (
			listing_id, rank_position, tier, sort_key, vimmo, fit, sla, multiplier, computed_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	for _, snap := range snapshots {
		if _, err := tx.ExecContext(ctx, query,
			snap.ListingID, snap.Position, snap.Tier, snap.SortKey,
			snap.Vimmo, snap.Fit, snap.SLA, snap.Multiplier,
			snap.ComputedAt.Format(sqliteTimeLayout),
		); err != nil {
			return fmt.Errorf("failed to insert snapshot: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// LatestSnapshot returns the most recent run ordered by position
func (s *SQLite) LatestSnapshot(ctx context.Context) ([]RankSnapshot, error) {
	query := `
		SELECT listing_id, rank_position, tier, sort_key, vimmo, fit, sla, multiplier, computed_at
		FROM rank_snapshots ORDER BY rank_position
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []RankSnapshot
	for rows.Next() {
		var snap RankSnapshot
		var fit sql.NullFloat64
		var computedAt string
		if err := rows.Scan(
			&snap.ListingID, &snap.Position, &snap.Tier, &snap.SortKey,
			&snap.Vimmo, &fit, &snap.SLA, &snap.Multiplier, &computedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		if fit.Valid {
			v := fit.Float64
			snap.Fit = &v
		}
		if snap.ComputedAt, err = parseTime(computedAt); err != nil {
			return nil, err
		}
		snapshots = append(snapshots, snap)
	}
	return snapshots, rows.Err()
}

func (s *SQLite) scanListingRow(row rowScanner) (*models.Listing, error) {
	listing := &models.Listing{}
	var energy, transaction, status string
	var photos, docs, slots string
	var ownerVerified int
	var boostUntil sql.NullString
	var createdAt, updatedAt string

	err := row.Scan(
		&listing.ID, &listing.Name, &listing.Description, &listing.Postcode,
		&listing.Address, &listing.Location, &listing.Type, &listing.Price,
		&listing.Bedrooms, &listing.Bathrooms, &listing.Surface,
		&energy, &transaction, &status,
		&photos, &docs, &ownerVerified, &slots, &boostUntil,
		&createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	listing.EnergyLabel = models.EPCLabel(energy)
	listing.TransactionType = models.TransactionType(transaction)
	listing.Status = models.ListingStatus(status)
	listing.OwnerVerified = ownerVerified != 0

	if err := unmarshalListingJSON(listing, []byte(photos), []byte(docs), []byte(slots)); err != nil {
		return nil, err
	}

	if listing.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if listing.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	if listing.BoostUntil, err = parseNullTime(boostUntil); err != nil {
		return nil, err
	}
	return listing, nil
}

func (s *SQLite) scanLeadRow(row rowScanner) (*models.Lead, error) {
	lead := &models.Lead{}
	var status, createdAt string
	var firstReply, lastReply, meta sql.NullString

	err := row.Scan(
		&lead.ID, &lead.ListingID, &status, &lead.Name, &lead.Email,
		&lead.Phone, &lead.Message, &createdAt, &firstReply, &lastReply, &meta,
	)
	if err != nil {
		return nil, err
	}

	lead.Status = models.LeadStatus(status)
	if lead.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if lead.FirstReplyAt, err = parseNullTime(firstReply); err != nil {
		return nil, err
	}
	if lead.LastReplyAt, err = parseNullTime(lastReply); err != nil {
		return nil, err
	}
	if meta.Valid && meta.String != "" {
		replyMeta := &models.ReplyMeta{}
		if err := json.Unmarshal([]byte(meta.String), replyMeta); err != nil {
			return nil, fmt.Errorf("failed to decode reply meta: %w", err)
		}
		lead.ReplyMeta = replyMeta
	}
	return lead, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func formatNullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(sqliteTimeLayout)
}

func nullString(b []byte) any {
	if b == nil {
		return nil
	}
	return string(b)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(sqliteTimeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse stored time %q: %w", s, err)
	}
	return t, nil
}

func parseNullTime(s sql.NullString) (*time.Time, error) {
	if !s.Valid || s.String == "" {
		return nil, nil
	}
	t, err := parseTime(s.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
