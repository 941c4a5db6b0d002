package handlers

import (
	"net/http"
	"time"

	"mutuelle/internal/models"
	"mutuelle/internal/service"
)

// MemberHandler serves the member-facing endpoints. Every route is behind
// RequireMember, so GetProfile never returns nil here.
type MemberHandler struct {
	auth      *service.AuthService
	catalog   *service.CatalogService
	family    *service.FamilyService
	requests  *service.RequestService
	documents *service.DocumentService
	stats     *service.StatsService
}

// NewMemberHandler creates a new member handler
func NewMemberHandler(auth *service.AuthService, catalog *service.CatalogService, family *service.FamilyService,
	requests *service.RequestService, documents *service.DocumentService, stats *service.StatsService) *MemberHandler {
	return &MemberHandler{
		auth:      auth,
		catalog:   catalog,
		family:    family,
		requests:  requests,
		documents: documents,
		stats:     stats,
	}
}

// Dashboard returns the member's landing-page figures and active catalog
func (h *MemberHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	profile := GetProfile(r)

	figures, err := h.stats.MemberDashboard(profile.ID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	services, err := h.catalog.ActiveServices()
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"profile":  profile,
		"stats":    figures,
		"services": services,
	})
}

// Profile returns the member's own profile
func (h *MemberHandler) Profile(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, GetProfile(r))
}

// UpdateProfile writes the member-editable profile fields
func (h *MemberHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	profile := GetProfile(r)

	var upd models.ProfileUpdate
	if err := decodeJSON(w, r, &upd); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := h.auth.UpdateProfile(profile.ID, &upd)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

// Services returns the catalog entries open to new requests
func (h *MemberHandler) Services(w http.ResponseWriter, r *http.Request) {
	services, err := h.catalog.ActiveServices()
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, services)
}

// Family returns the member's dependents
func (h *MemberHandler) Family(w http.ResponseWriter, r *http.Request) {
	members, err := h.family.List(GetProfile(r).ID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, members)
}

type familyRequest struct {
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	NationalID   string    `json:"national_id"`
	Relationship string    `json:"relationship"`
	BirthDate    time.Time `json:"birth_date"`
}

func (f *familyRequest) toInput() *service.FamilyInput {
	return &service.FamilyInput{
		FirstName:    f.FirstName,
		LastName:     f.LastName,
		NationalID:   f.NationalID,
		Relationship: f.Relationship,
		BirthDate:    f.BirthDate,
	}
}

// CreateFamilyMember declares a new dependent
func (h *MemberHandler) CreateFamilyMember(w http.ResponseWriter, r *http.Request) {
	var req familyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	member, err := h.family.Create(GetProfile(r).ID, req.toInput())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, member)
}

// UpdateFamilyMember edits one of the member's dependents
func (h *MemberHandler) UpdateFamilyMember(w http.ResponseWriter, r *http.Request) {
	var req familyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	member, err := h.family.Update(GetProfile(r).ID, r.PathValue("id"), req.toInput())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, member)
}

// DeleteFamilyMember removes one of the member's dependents
func (h *MemberHandler) DeleteFamilyMember(w http.ResponseWriter, r *http.Request) {
	if err := h.family.Delete(GetProfile(r).ID, r.PathValue("id")); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "family member deleted"})
}

// NewRequestForm returns what the submission form needs: the active catalog
// and the member's dependents
func (h *MemberHandler) NewRequestForm(w http.ResponseWriter, r *http.Request) {
	services, err := h.catalog.ActiveServices()
	if err != nil {
		respondServiceError(w, err)
		return
	}
	family, err := h.family.List(GetProfile(r).ID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"services":       services,
		"family_members": family,
	})
}

type createRequestRequest struct {
	ServiceID     string  `json:"service_id"`
	BeneficiaryID string  `json:"beneficiary_id"`
	Amount        float64 `json:"amount"`
	Description   string  `json:"description"`
}

// CreateRequest submits a new benefit request, always as pending
func (h *MemberHandler) CreateRequest(w http.ResponseWriter, r *http.Request) {
	var req createRequestRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := h.requests.Create(GetProfile(r).ID, &service.RequestInput{
		ServiceID:     req.ServiceID,
		BeneficiaryID: req.BeneficiaryID,
		Amount:        req.Amount,
		Description:   req.Description,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

// History returns the member's own requests, newest first
func (h *MemberHandler) History(w http.ResponseWriter, r *http.Request) {
	requests, err := h.requests.ListByUser(GetProfile(r).ID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, requests)
}

// Request returns one of the member's requests
func (h *MemberHandler) Request(w http.ResponseWriter, r *http.Request) {
	req, err := h.requests.GetOwned(GetProfile(r).ID, r.PathValue("id"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, req)
}

// Documents returns the member's document records
func (h *MemberHandler) Documents(w http.ResponseWriter, r *http.Request) {
	docs, err := h.documents.List(GetProfile(r).ID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, docs)
}

type createDocumentRequest struct {
	FamilyMemberID   *string `json:"family_member_id"`
	ServiceRequestID *string `json:"service_request_id"`
	FileName         string  `json:"file_name"`
	FilePath         string  `json:"file_path"`
	FileSize         int64   `json:"file_size"`
	MimeType         string  `json:"mime_type"`
}

// CreateDocument records supporting-file metadata
func (h *MemberHandler) CreateDocument(w http.ResponseWriter, r *http.Request) {
	var req createDocumentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	doc, err := h.documents.Create(GetProfile(r).ID, &models.Document{
		FamilyMemberID:   req.FamilyMemberID,
		ServiceRequestID: req.ServiceRequestID,
		FileName:         req.FileName,
		FilePath:         req.FilePath,
		FileSize:         req.FileSize,
		MimeType:         req.MimeType,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, doc)
}

// DeleteDocument removes one of the member's document records
func (h *MemberHandler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	if err := h.documents.Delete(GetProfile(r).ID, r.PathValue("id")); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "document deleted"})
}
