package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"corpcab/internal/domain"
	"corpcab/internal/repository"
)

// AdminService handles the operational surface behind the admin console:
// service areas, contact messages and the full booking list.
type AdminService struct {
	areaRepo    repository.ServiceAreaRepository
	contactRepo repository.ContactRepository
	rideRepo    repository.RideRepository
	now         func() time.Time
}

// NewAdminService creates a new AdminService.
func NewAdminService(
	areaRepo repository.ServiceAreaRepository,
	contactRepo repository.ContactRepository,
	rideRepo repository.RideRepository,
) *AdminService {
	return &AdminService{
		areaRepo:    areaRepo,
		contactRepo: contactRepo,
		rideRepo:    rideRepo,
		now:         time.Now,
	}
}

// ServiceAreaRequest contains the parameters for creating or updating an area.
type ServiceAreaRequest struct {
	Name   string
	City   string
	Active bool
}

// ListAreas returns every service area, active and inactive.
func (s *AdminService) ListAreas(ctx context.Context) ([]*domain.ServiceArea, error) {
	return s.areaRepo.List(ctx)
}

// ListActiveAreas returns the areas shown on the public booking form.
func (s *AdminService) ListActiveAreas(ctx context.Context) ([]*domain.ServiceArea, error) {
	areas, err := s.areaRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	active := make([]*domain.ServiceArea, 0, len(areas))
	for _, area := range areas {
		if area.Active {
			active = append(active, area)
		}
	}
	return active, nil
}

// CreateArea adds a service area.
func (s *AdminService) CreateArea(ctx context.Context, req ServiceAreaRequest) (*domain.ServiceArea, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrMissingAreaName
	}

	area := &domain.ServiceArea{
		ID:        uuid.New().String(),
		Name:      name,
		City:      strings.TrimSpace(req.City),
		Active:    req.Active,
		CreatedAt: s.now(),
	}
	if err := s.areaRepo.Create(ctx, area); err != nil {
		return nil, err
	}
	return area, nil
}

// UpdateArea replaces an area's fields.
func (s *AdminService) UpdateArea(ctx context.Context, id string, req ServiceAreaRequest) (*domain.ServiceArea, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrMissingAreaName
	}

	area := &domain.ServiceArea{
		ID:     id,
		Name:   name,
		City:   strings.TrimSpace(req.City),
		Active: req.Active,
	}
	if err := s.areaRepo.Update(ctx, area); err != nil {
		return nil, err
	}
	return area, nil
}

// DeleteArea removes an area.
func (s *AdminService) DeleteArea(ctx context.Context, id string) error {
	return s.areaRepo.Delete(ctx, id)
}

// ContactRequest contains the parameters of a public contact-form submission.
type ContactRequest struct {
	Name    string
	Email   string
	Message string
}

// SubmitContact records a contact-form message.
func (s *AdminService) SubmitContact(ctx context.Context, req ContactRequest) (*domain.ContactMessage, error) {
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Message) == "" {
		return nil, ErrMissingContactFields
	}
	if !validEmail(strings.ToLower(strings.TrimSpace(req.Email))) {
		return nil, ErrInvalidEmail
	}

	msg := &domain.ContactMessage{
		ID:        uuid.New().String(),
		Name:      strings.TrimSpace(req.Name),
		Email:     strings.ToLower(strings.TrimSpace(req.Email)),
		Message:   strings.TrimSpace(req.Message),
		Status:    domain.ContactStatusNew,
		CreatedAt: s.now(),
	}
	if err := s.contactRepo.Create(ctx, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

// ListContacts returns every contact message, newest first.
func (s *AdminService) ListContacts(ctx context.Context) ([]*domain.ContactMessage, error) {
	return s.contactRepo.List(ctx)
}

// ResolveContact marks a contact message handled.
func (s *AdminService) ResolveContact(ctx context.Context, id string) error {
	return s.contactRepo.UpdateStatus(ctx, id, domain.ContactStatusResolved)
}

// ListBookings returns recent bookings across all users.
func (s *AdminService) ListBookings(ctx context.Context) ([]*domain.Ride, error) {
	return s.rideRepo.ListAll(ctx)
}
