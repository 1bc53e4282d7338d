package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/Ryz3nPlayZ/austin-luxury-living/internal/model"
)

type LeadRepository struct {
	db *sqlx.DB
}

func NewLeadRepository(db *sqlx.DB) *LeadRepository {
	return &LeadRepository{db: db}
}

// Insert saves a new lead and fills in its generated created_at.
func (r *LeadRepository) Insert(ctx context.Context, lead *model.Lead) error {
	const insertQuery = `
        INSERT INTO leads (id, name, email, phone, message, property_id)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING created_at
    `
	err := r.db.QueryRowxContext(ctx, insertQuery,
		lead.ID,
		lead.Name,
		lead.Email,
		lead.Phone,
		lead.Message,
		lead.PropertyID,
	).Scan(&lead.CreatedAt)
	if err != nil {
		return fmt.Errorf("LeadRepository.Insert: %w", err)
	}
	return nil
}

const leadWithPropertySelect = `
	SELECT l.id, l.name, l.email, l.phone, l.message, l.property_id, l.created_at,
	       p.title AS property_title, p.address AS property_address
	FROM leads l
	LEFT JOIN properties p ON p.id = l.property_id
`

// List returns all leads with their listing title and address, newest first.
func (r *LeadRepository) List(ctx context.Context) ([]model.LeadWithProperty, error) {
	var leads []model.LeadWithProperty
	if err := r.db.SelectContext(ctx, &leads, leadWithPropertySelect+` ORDER BY l.created_at DESC`); err != nil {
		return nil, fmt.Errorf("LeadRepository.List: %w", err)
	}
	return leads, nil
}

// ListByProperty returns the leads that reference one listing, newest first.
func (r *LeadRepository) ListByProperty(ctx context.Context, propertyID string) ([]model.LeadWithProperty, error) {
	var leads []model.LeadWithProperty
	err := r.db.SelectContext(ctx, &leads,
		leadWithPropertySelect+` WHERE l.property_id = $1 ORDER BY l.created_at DESC`, propertyID)
	if err != nil {
		return nil, fmt.Errorf("LeadRepository.ListByProperty: %w", err)
	}
	return leads, nil
}

// ListSince returns the leads created at or after t.
func (r *LeadRepository) ListSince(ctx context.Context, t time.Time) ([]model.Lead, error) {
	var leads []model.Lead
	err := r.db.SelectContext(ctx, &leads, `
		SELECT id, name, email, phone, message, property_id, created_at
		FROM leads
		WHERE created_at >= $1
		ORDER BY created_at DESC
	`, t)
	if err != nil {
		return nil, fmt.Errorf("LeadRepository.ListSince: %w", err)
	}
	return leads, nil
}

// Recent returns the newest n leads.
func (r *LeadRepository) Recent(ctx context.Context, n int) ([]model.Lead, error) {
	var leads []model.Lead
	err := r.db.SelectContext(ctx, &leads, `
		SELECT id, name, email, phone, message, property_id, created_at
		FROM leads
		ORDER BY created_at DESC
		LIMIT $1
	`, n)
	if err != nil {
		return nil, fmt.Errorf("LeadRepository.Recent: %w", err)
	}
	return leads, nil
}

// Count returns the number of leads created at or after since. A zero since
// counts every lead.
func (r *LeadRepository) Count(ctx context.Context, since time.Time) (int, error) {
	var n int
	var err error
	if since.IsZero() {
		err = r.db.GetContext(ctx, &n, `SELECT COUNT(1) FROM leads`)
	} else {
		err = r.db.GetContext(ctx, &n, `SELECT COUNT(1) FROM leads WHERE created_at >= $1`, since)
	}
	if err != nil {
		return 0, fmt.Errorf("LeadRepository.Count: %w", err)
	}
	return n, nil
}

func (r *LeadRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM leads WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("LeadRepository.Delete: %w", err)
	}
	return expectRow(res, "LeadRepository.Delete")
}
