package postgres

import (
	"context"
	"database/sql"

	"corpcab/internal/domain"
)

// ServiceAreaRepository is a PostgreSQL implementation of repository.ServiceAreaRepository.
type ServiceAreaRepository struct {
	q Querier
}

// NewServiceAreaRepository creates a new PostgreSQL service area repository.
func NewServiceAreaRepository(db *sql.DB) *ServiceAreaRepository {
	return &ServiceAreaRepository{q: db}
}

// Create persists a new service area.
func (r *ServiceAreaRepository) Create(ctx context.Context, area *domain.ServiceArea) error {
	query := `
		INSERT INTO service_areas (id, name, city, active, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.q.ExecContext(ctx, query, area.ID, area.Name, area.City, area.Active, area.CreatedAt)
	return err
}

// List retrieves all service areas ordered by name.
func (r *ServiceAreaRepository) List(ctx context.Context) ([]*domain.ServiceArea, error) {
	query := `SELECT id, name, city, active, created_at FROM service_areas ORDER BY name`

	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var areas []*domain.ServiceArea
	for rows.Next() {
		var area domain.ServiceArea
		if err := rows.Scan(&area.ID, &area.Name, &area.City, &area.Active, &area.CreatedAt); err != nil {
			return nil, err
		}
		areas = append(areas, &area)
	}
	return areas, rows.Err()
}

// Update updates an existing service area.
func (r *ServiceAreaRepository) Update(ctx context.Context, area *domain.ServiceArea) error {
	query := `UPDATE service_areas SET name = $1, city = $2, active = $3 WHERE id = $4`

	result, err := r.q.ExecContext(ctx, query, area.Name, area.City, area.Active, area.ID)
	if err != nil {
		return err
	}
	return requireRow(result)
}

// Delete removes a service area.
func (r *ServiceAreaRepository) Delete(ctx context.Context, id string) error {
	result, err := r.q.ExecContext(ctx, `DELETE FROM service_areas WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireRow(result)
}

// ContactRepository is a PostgreSQL implementation of repository.ContactRepository.
type ContactRepository struct {
	q Querier
}

// NewContactRepository creates a new PostgreSQL contact message repository.
func NewContactRepository(db *sql.DB) *ContactRepository {
	return &ContactRepository{q: db}
}

// Create persists a new contact message.
func (r *ContactRepository) Create(ctx context.Context, msg *domain.ContactMessage) error {
	query := `
		INSERT INTO contact_messages (id, name, email, message, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.q.ExecContext(ctx, query, msg.ID, msg.Name, msg.Email, msg.Message, msg.Status, msg.CreatedAt)
	return err
}

// List retrieves all contact messages, newest first.
func (r *ContactRepository) List(ctx context.Context) ([]*domain.ContactMessage, error) {
	query := `SELECT id, name, email, message, status, created_at FROM contact_messages ORDER BY created_at DESC`

	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []*domain.ContactMessage
	for rows.Next() {
		var msg domain.ContactMessage
		if err := rows.Scan(&msg.ID, &msg.Name, &msg.Email, &msg.Message, &msg.Status, &msg.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, &msg)
	}
	return messages, rows.Err()
}

// UpdateStatus updates the handling status of a contact message.
func (r *ContactRepository) UpdateStatus(ctx context.Context, id string, status domain.ContactStatus) error {
	result, err := r.q.ExecContext(ctx, `UPDATE contact_messages SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return err
	}
	return requireRow(result)
}
