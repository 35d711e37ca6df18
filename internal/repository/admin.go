package repository

import (
	"context"

	"corpcab/internal/domain"
)

// ServiceAreaRepository defines the persistence operations for service areas.
type ServiceAreaRepository interface {
	Create(ctx context.Context, area *domain.ServiceArea) error
	List(ctx context.Context) ([]*domain.ServiceArea, error)
	Update(ctx context.Context, area *domain.ServiceArea) error
	Delete(ctx context.Context, id string) error
}

// ContactRepository defines the persistence operations for contact messages.
type ContactRepository interface {
	Create(ctx context.Context, msg *domain.ContactMessage) error
	List(ctx context.Context) ([]*domain.ContactMessage, error)
	UpdateStatus(ctx context.Context, id string, status domain.ContactStatus) error
}
