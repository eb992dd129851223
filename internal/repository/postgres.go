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

// Postgres implements all repositories on a Postgres pool
type Postgres struct {
	db *database.DB
}

// NewPostgres creates the Postgres repository set
func NewPostgres(db *database.DB) *Repositories {
	p := &Postgres{db: db}
	return &Repositories{
		Listings:  p,
		Leads:     p,
		Accounts:  p,
		Snapshots: p,
	}
}

const listingColumns = `
	id, name, description, postcode, address, location, type,
	price, bedrooms, bathrooms, surface, energy_label, transaction_type,
	status, photos, docs, owner_verified, viewing_slots, boost_until,
	created_at, updated_at
`

// GetListingByID retrieves a listing by its ID, leads attached
func (p *Postgres) GetListingByID(ctx context.Context, id string) (*models.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings WHERE id = $1`

	listing, err := scanListing(p.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrListingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get listing: %w", err)
	}

	leads, err := p.LeadsByListing(ctx, id)
	if err != nil {
		return nil, err
	}
	listing.Leads = leads
	return listing, nil
}

// ListListings returns all listings, leads attached, oldest first
func (p *Postgres) ListListings(ctx context.Context) ([]models.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings ORDER BY created_at, id`

	rows, err := p.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query listings: %w", err)
	}
	defer rows.Close()

	var listings []models.Listing
	for rows.Next() {
		listing, err := scanListing(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan listing: %w", err)
		}
		listings = append(listings, *listing)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating listings: %w", err)
	}

	for i := range listings {
		leads, err := p.LeadsByListing(ctx, listings[i].ID)
		if err != nil {
			return nil, err
		}
		listings[i].Leads = leads
	}
	return listings, nil
}

// SaveListing upserts a listing (without its leads)
func (p *Postgres) SaveListing(ctx context.Context, listing *models.Listing) error {
	query := `
		INSERT INTO listings (` + listingColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			postcode = EXCLUDED.postcode,
			address = EXCLUDED.address,
			location = EXCLUDED.location,
			type = EXCLUDED.type,
			price = EXCLUDED.price,
			bedrooms = EXCLUDED.bedrooms,
			bathrooms = EXCLUDED.bathrooms,
			surface = EXCLUDED.surface,
			energy_label = EXCLUDED.energy_label,
			transaction_type = EXCLUDED.transaction_type,
			status = EXCLUDED.status,
			photos = EXCLUDED.photos,
			docs = EXCLUDED.docs,
			owner_verified = EXCLUDED.owner_verified,
			viewing_slots = EXCLUDED.viewing_slots,
			boost_until = EXCLUDED.boost_until,
			updated_at = EXCLUDED.updated_at
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

	_, err = p.db.ExecContext(ctx, query,
		listing.ID, listing.Name, listing.Description, listing.Postcode,
		listing.Address, listing.Location, listing.Type, listing.Price,
		listing.Bedrooms, listing.Bathrooms, listing.Surface,
		listing.EnergyLabel, listing.TransactionType, listing.Status,
		photos, docs, listing.OwnerVerified, slots, listing.BoostUntil,
		listing.CreatedAt, listing.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save listing: %w", err)
	}
	return nil
}

const leadColumns = `
	id, listing_id, status, name, email, phone, message,
	created_at, first_reply_at, last_reply_at, reply_meta
`

// LeadsByListing returns all leads of a listing, oldest first
func (p *Postgres) LeadsByListing(ctx context.Context, listingID string) ([]models.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE listing_id = $1 ORDER BY created_at, id`

	rows, err := p.db.QueryContext(ctx, query, listingID)
	if err != nil {
		return nil, fmt.Errorf("failed to query leads: %w", err)
	}
	defer rows.Close()

	var leads []models.Lead
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan lead: %w", err)
		}
		leads = append(leads, *lead)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating leads: %w", err)
	}
	return leads, nil
}

// CreateLead inserts a new lead
func (p *Postgres) CreateLead(ctx context.Context, lead *models.Lead) error {
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
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err = p.db.ExecContext(ctx, query,
		lead.ID, lead.ListingID, lead.Status, lead.Name, lead.Email,
		lead.Phone, lead.Message, lead.CreatedAt, lead.FirstReplyAt,
		lead.LastReplyAt, meta,
	)
	if err != nil {
		return fmt.Errorf("failed to create lead: %w", err)
	}
	return nil
}

// ReplaceLeads replaces the full lead collection of a listing
func (p *Postgres) ReplaceLeads(ctx context.Context, listingID string, leads []models.Lead) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM leads WHERE listing_id = $1`, listingID); err != nil {
		return fmt.Errorf("failed to clear leads: %w", err)
	}

	query := `
		INSERT INTO leads (` + leadColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	for _, lead := range leads {
		meta, err := marshalReplyMeta(lead.ReplyMeta)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, query,
			lead.ID, listingID, lead.Status, lead.Name, lead.Email,
			lead.Phone, lead.Message, lead.CreatedAt, lead.FirstReplyAt,
			lead.LastReplyAt, meta,
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
func (p *Postgres) LeadCountsByStatus(ctx context.Context) (map[models.LeadStatus]int, error) {
	query := `SELECT status, COUNT(*) FROM leads GROUP BY status`

	rows, err := p.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query lead counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[models.LeadStatus]int)
	for rows.Next() {
		var status models.LeadStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

// GetAccount retrieves an account by its ID
func (p *Postgres) GetAccount(ctx context.Context, id string) (*models.Account, error) {
	query := `SELECT id, email, package_tier, upgraded_at, created_at FROM accounts WHERE id = $1`

	account := &models.Account{}
	err := p.db.QueryRowContext(ctx, query, id).Scan(
		&account.ID, &account.Email, &account.PackageTier,
		&account.UpgradedAt, &account.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return account, nil
}

// SaveAccount upserts an account
func (p *Postgres) SaveAccount(ctx context.Context, account *models.Account) error {
	query := `
		INSERT INTO accounts (id, email, package_tier, upgraded_at, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			email = EXCLUDED.email,
			package_tier = EXCLUDED.package_tier,
			upgraded_at = EXCLUDED.upgraded_at
	`

	if account.CreatedAt.IsZero() {
		account.CreatedAt = time.Now().UTC()
	}

	_, err := p.db.ExecContext(ctx, query,
		account.ID, account.Email, account.PackageTier,
		account.UpgradedAt, account.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save account: %w", err)
	}
	return nil
}

// SaveSnapshotRun replaces the stored snapshot with a new run
func (p *Postgres) SaveSnapshotRun(ctx context.Context, snapshots []RankSnapshot) error {
	tx, err := p.db.BeginTx(ctx, nil)
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
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	for _, snap := range snapshots {
		if _, err := tx.ExecContext(ctx, query,
			snap.ListingID, snap.Position, snap.Tier, snap.SortKey,
			snap.Vimmo, snap.Fit, snap.SLA, snap.Multiplier, snap.ComputedAt,
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
func (p *Postgres) LatestSnapshot(ctx context.Context) ([]RankSnapshot, error) {
	query := `
		SELECT listing_id, rank_position, tier, sort_key, vimmo, fit, sla, multiplier, computed_at
		FROM rank_snapshots ORDER BY rank_position
	`

	rows, err := p.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []RankSnapshot
	for rows.Next() {
		var snap RankSnapshot
		if err := rows.Scan(
			&snap.ListingID, &snap.Position, &snap.Tier, &snap.SortKey,
			&snap.Vimmo, &snap.Fit, &snap.SLA, &snap.Multiplier, &snap.ComputedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		snapshots = append(snapshots, snap)
	}
	return snapshots, rows.Err()
}

// rowScanner covers *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

func scanListing(row rowScanner) (*models.Listing, error) {
	listing := &models.Listing{}
	var photos, docs, slots []byte

	err := row.Scan(
		&listing.ID, &listing.Name, &listing.Description, &listing.Postcode,
		&listing.Address, &listing.Location, &listing.Type, &listing.Price,
		&listing.Bedrooms, &listing.Bathrooms, &listing.Surface,
		&listing.EnergyLabel, &listing.TransactionType, &listing.Status,
		&photos, &docs, &listing.OwnerVerified, &slots, &listing.BoostUntil,
		&listing.CreatedAt, &listing.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := unmarshalListingJSON(listing, photos, docs, slots); err != nil {
		return nil, err
	}
	return listing, nil
}

func scanLead(row rowScanner) (*models.Lead, error) {
	lead := &models.Lead{}
	var meta []byte

	err := row.Scan(
		&lead.ID, &lead.ListingID, &lead.Status, &lead.Name, &lead.Email,
		&lead.Phone, &lead.Message, &lead.CreatedAt, &lead.FirstReplyAt,
		&lead.LastReplyAt, &meta,
	)
	if err != nil {
		return nil, err
	}

	if len(meta) > 0 {
		replyMeta := &models.ReplyMeta{}
		if err := json.Unmarshal(meta, replyMeta); err != nil {
			return nil, fmt.Errorf("failed to decode reply meta: %w", err)
		}
		lead.ReplyMeta = replyMeta
	}
	return lead, nil
}

func marshalListingJSON(listing *models.Listing) (photos, docs, slots []byte, err error) {
	if photos, err = json.Marshal(listing.Photos); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to encode photos: %w", err)
	}
	if docs, err = json.Marshal(listing.Docs); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to encode docs: %w", err)
	}
	if slots, err = json.Marshal(listing.ViewingSlots); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to encode viewing slots: %w", err)
	}
	return photos, docs, slots, nil
}

func unmarshalListingJSON(listing *models.Listing, photos, docs, slots []byte) error {
	if len(photos) > 0 {
		if err := json.Unmarshal(photos, &listing.Photos); err != nil {
			return fmt.Errorf("failed to decode photos: %w", err)
		}
	}
	if len(docs) > 0 {
		if err := json.Unmarshal(docs, &listing.Docs); err != nil {
			return fmt.Errorf("failed to decode docs: %w", err)
		}
	}
	if len(slots) > 0 {
		if err := json.Unmarshal(slots, &listing.ViewingSlots); err != nil {
			return fmt.Errorf("failed to decode viewing slots: %w", err)
		}
	}
	return nil
}

func marshalReplyMeta(meta *models.ReplyMeta) ([]byte, error) {
	if meta == nil {
		return nil, nil
	}
	out, err := json.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("failed to encode reply meta: %w", err)
	}
	return out, nil
}
