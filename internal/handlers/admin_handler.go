package handlers

import (
	"net/http"
	"time"

	"mutuelle/internal/models"
	"mutuelle/internal/service"
)

// AdminHandler serves the administrator endpoints. Every route is behind
// RequireAdmin.
type AdminHandler struct {
	auth     *service.AuthService
	users    *service.UserService
	catalog  *service.CatalogService
	requests *service.RequestService
	stats    *service.StatsService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(auth *service.AuthService, users *service.UserService, catalog *service.CatalogService,
	requests *service.RequestService, stats *service.StatsService) *AdminHandler {
	return &AdminHandler{
		auth:     auth,
		users:    users,
		catalog:  catalog,
		requests: requests,
		stats:    stats,
	}
}

// Dashboard returns the portal-wide figures for the admin landing page
func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	figures, err := h.stats.AdminDashboard()
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"profile": GetProfile(r),
		"stats":   figures,
	})
}

// Users lists every account
func (h *AdminHandler) Users(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.users.List()
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, profiles)
}

type createUserRequest struct {
	Email      string     `json:"email"`
	Password   string     `json:"password"`
	FirstName  string     `json:"first_name"`
	LastName   string     `json:"last_name"`
	NationalID string     `json:"national_id"`
	Phone      string     `json:"phone"`
	Address    string     `json:"address"`
	BirthDate  *time.Time `json:"birth_date"`
	Role       string     `json:"role"`
}

// CreateUser registers a new account with a provisional password
func (h *AdminHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	profile, err := h.users.Create(r.Context(), &service.CreateUserInput{
		Email:      req.Email,
		Password:   req.Password,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		NationalID: req.NationalID,
		Phone:      req.Phone,
		Address:    req.Address,
		BirthDate:  req.BirthDate,
		Role:       req.Role,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, profile)
}

// UpdateUser edits an account's profile fields
func (h *AdminHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var upd models.ProfileUpdate
	if err := decodeJSON(w, r, &upd); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	profile, err := h.users.Update(r.PathValue("id"), &upd)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, profile)
}

type setStatusRequest struct {
	Status string `json:"status"`
}

// SetUserStatus activates or suspends an account
func (h *AdminHandler) SetUserStatus(w http.ResponseWriter, r *http.Request) {
	var req setStatusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	profile, err := h.users.SetStatus(r.PathValue("id"), req.Status)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, profile)
}

// DeleteUser removes an account and everything attached to it
func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.users.Delete(r.PathValue("id")); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "account deleted"})
}

// Requests lists every benefit request, newest submission first
func (h *AdminHandler) Requests(w http.ResponseWriter, r *http.Request) {
	requests, err := h.requests.List()
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, requests)
}

// Request returns one benefit request with relations expanded
func (h *AdminHandler) Request(w http.ResponseWriter, r *http.Request) {
	req, err := h.requests.Get(r.PathValue("id"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, req)
}

type decisionRequest struct {
	Status        string `json:"status"`
	AdminComments string `json:"admin_comments"`
}

// DecideRequest approves or rejects a pending request. Requests that have
// already been decided come back 409.
func (h *AdminHandler) DecideRequest(w http.ResponseWriter, r *http.Request) {
	var req decisionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	decided, err := h.requests.Decide(r.Context(), r.PathValue("id"),
		models.RequestStatus(req.Status), req.AdminComments)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, decided)
}

// Services lists the full catalog, inactive entries included
func (h *AdminHandler) Services(w http.ResponseWriter, r *http.Request) {
	services, err := h.catalog.List()
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, services)
}

type serviceRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	MaxAmount   float64 `json:"max_amount"`
	IsActive    bool    `json:"is_active"`
}

// CreateService adds a catalog entry
func (h *AdminHandler) CreateService(w http.ResponseWriter, r *http.Request) {
	var req serviceRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	svc, err := h.catalog.Create(req.Name, req.Description, req.MaxAmount, req.IsActive)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, svc)
}

// UpdateService edits a catalog entry
func (h *AdminHandler) UpdateService(w http.ResponseWriter, r *http.Request) {
	var req serviceRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	svc, err := h.catalog.Update(r.PathValue("id"), req.Name, req.Description, req.MaxAmount, req.IsActive)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, svc)
}

// DeleteService removes a catalog entry
func (h *AdminHandler) DeleteService(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.Delete(r.PathValue("id")); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "service deleted"})
}

// Profile returns the administrator's own profile
func (h *AdminHandler) Profile(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, GetProfile(r))
}

// UpdateProfile writes the administrator's own editable fields
func (h *AdminHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var upd models.ProfileUpdate
	if err := decodeJSON(w, r, &upd); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	profile, err := h.auth.UpdateProfile(GetProfile(r).ID, &upd)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, profile)
}
