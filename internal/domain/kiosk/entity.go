package kiosk

import "time"

// Kiosk authenticates a shared terminal. Only the bcrypt hash of its
// token is stored.
type Kiosk struct {
	ID        string
	CompanyID string
	Name      string
	TokenHash string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
