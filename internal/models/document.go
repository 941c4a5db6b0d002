package models

import "time"

// Document is a metadata record for a supporting file attached to a profile,
// a dependent or a request. Only metadata is tracked; the storage backend for
// file contents is not wired up yet.
type Document struct {
	ID               string    `json:"id"`
	UserID           string    `json:"user_id"`
	FamilyMemberID   *string   `json:"family_member_id,omitempty"`
	ServiceRequestID *string   `json:"service_request_id,omitempty"`
	FileName         string    `json:"file_name"`
	FilePath         string    `json:"file_path"`
	FileSize         int64     `json:"file_size"`
	MimeType         string    `json:"mime_type"`
	CreatedAt        time.Time `json:"created_at"`
}
