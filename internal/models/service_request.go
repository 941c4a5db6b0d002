package models

import "time"

// RequestStatus is the state of a benefit request. Pending requests may move
// to approved or rejected; both of those are terminal.
type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestApproved RequestStatus = "approved"
	RequestRejected RequestStatus = "rejected"
)

// Valid reports whether the status is one of the known values
func (s RequestStatus) Valid() bool {
	switch s {
	case RequestPending, RequestApproved, RequestRejected:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition is allowed from s
func (s RequestStatus) IsTerminal() bool {
	return s == RequestApproved || s == RequestRejected
}

// CanTransitionTo reports whether moving from s to target is a legal status
// transition. Only pending→approved and pending→rejected are allowed;
// re-opening a processed request is refused so processed_at can never go
// stale.
func (s RequestStatus) CanTransitionTo(target RequestStatus) bool {
	return s == RequestPending && target.IsTerminal()
}

// ServiceRequest represents a member's request for a benefit payment.
// Invariant: ProcessedAt is non-nil exactly when Status is not pending.
type ServiceRequest struct {
	ID            string        `json:"id"`
	UserID        string        `json:"user_id"`
	ServiceID     string        `json:"service_id"`
	BeneficiaryID *string       `json:"beneficiary_id,omitempty"`
	Amount        float64       `json:"amount"`
	Description   string        `json:"description"`
	Status        RequestStatus `json:"status"`
	AdminComments string        `json:"admin_comments,omitempty"`
	SubmittedAt   time.Time     `json:"submitted_at"`
	ProcessedAt   *time.Time    `json:"processed_at,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`

	// Expanded relations, populated by the joined listing queries
	Service     *Service      `json:"service,omitempty"`
	Beneficiary *FamilyMember `json:"beneficiary,omitempty"`
	User        *Profile      `json:"user,omitempty"`
}

// IsProcessed reports whether an admin has decided the request
func (r *ServiceRequest) IsProcessed() bool {
	return r.Status.IsTerminal()
}
