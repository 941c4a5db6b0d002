package models

import "time"

// Service represents a benefit in the admin-managed catalog. MaxAmount caps
// the amount a member may request against it.
type Service struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	MaxAmount   float64   `json:"max_amount"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
