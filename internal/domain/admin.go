package domain

import "time"

// ServiceArea represents a city/region the company serves.
type ServiceArea struct {
	ID        string
	Name      string
	City      string
	Active    bool
	CreatedAt time.Time
}

// ContactStatus represents the handling state of a contact message.
type ContactStatus string

const (
	ContactStatusNew      ContactStatus = "new"
	ContactStatusResolved ContactStatus = "resolved"
)

// ContactMessage represents a message submitted through the contact form.
type ContactMessage struct {
	ID        string
	Name      string
	Email     string
	Message   string
	Status    ContactStatus
	CreatedAt time.Time
}
