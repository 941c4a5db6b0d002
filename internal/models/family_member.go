package models

import "time"

// FamilyMember represents a dependent registered by a member. Rows are owned
// exclusively by one profile and cascade-deleted with it.
type FamilyMember struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	NationalID   string    `json:"national_id"`
	Relationship string    `json:"relationship"`
	BirthDate    time.Time `json:"birth_date"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// FullName returns the dependent's display name
func (m *FamilyMember) FullName() string {
	return m.FirstName + " " + m.LastName
}
