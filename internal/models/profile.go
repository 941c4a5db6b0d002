package models

import "time"

// Roles a profile can hold. Role is assigned at account creation and never
// changes afterwards.
const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// Profile statuses. Suspended members keep their data but cannot sign in.
const (
	StatusActive    = "active"
	StatusSuspended = "suspended"
)

// Profile represents a society member or administrator account
type Profile struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	FirstName    string     `json:"first_name"`
	LastName     string     `json:"last_name"`
	NationalID   string     `json:"national_id"`
	Phone        string     `json:"phone,omitempty"`
	Address      string     `json:"address,omitempty"`
	BirthDate    *time.Time `json:"birth_date,omitempty"`
	Role         string     `json:"role"`
	Status       string     `json:"status"`
	FirstLogin   bool       `json:"first_login"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// IsAdmin reports whether the profile holds the administrator role
func (p *Profile) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// IsSuspended reports whether the account has been suspended
func (p *Profile) IsSuspended() bool {
	return p.Status == StatusSuspended
}

// FullName returns the display name used in emails and listings
func (p *Profile) FullName() string {
	return p.FirstName + " " + p.LastName
}

// ProfileUpdate carries the member-editable profile fields. Role, status and
// email are deliberately absent; only administrators may change those.
type ProfileUpdate struct {
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
	Phone     string     `json:"phone"`
	Address   string     `json:"address"`
	BirthDate *time.Time `json:"birth_date"`
}
