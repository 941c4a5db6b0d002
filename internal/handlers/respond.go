package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"mutuelle/internal/service"
	"mutuelle/internal/validation"
)

// errorResponse is the JSON body of every non-2xx response
type errorResponse struct {
	Error string `json:"error"`
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, errorResponse{Error: message})
}

// respondServiceError maps service-layer errors onto HTTP statuses. Unknown
// errors are logged and reported as a generic 500 so internals never leak.
func respondServiceError(w http.ResponseWriter, err error) {
	var ve validation.ValidationError
	if errors.As(err, &ve) {
		respondError(w, http.StatusBadRequest, ve.Error())
		return
	}

	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		respondError(w, http.StatusUnauthorized, "invalid email or password")
	case errors.Is(err, service.ErrAccountSuspended):
		respondError(w, http.StatusForbidden, "account suspended")
	case errors.Is(err, service.ErrEmailTaken):
		respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrServiceNotFound),
		errors.Is(err, service.ErrRequestNotFound),
		errors.Is(err, service.ErrFamilyMemberNotFound),
		errors.Is(err, service.ErrDocumentNotFound),
		errors.Is(err, service.ErrProfileNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrNotFamilyOwner),
		errors.Is(err, service.ErrNotRequestOwner),
		errors.Is(err, service.ErrNotDocumentOwner),
		errors.Is(err, service.ErrBeneficiaryNotOwned):
		respondError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrInvalidDecision),
		errors.Is(err, service.ErrInvalidRole):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrServiceInactive),
		errors.Is(err, service.ErrInvalidTransition),
		errors.Is(err, service.ErrLastAdmin):
		respondError(w, http.StatusConflict, err.Error())
	default:
		log.Printf("Internal error: %v", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
	}
}

// decodeJSON reads a JSON request body into dst with a size cap
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}
