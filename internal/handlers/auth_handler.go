package handlers

import (
	"log"
	"net/http"
	"strings"

	"mutuelle/internal/models"
	"mutuelle/internal/security"
	"mutuelle/internal/service"
)

// AuthHandler serves the public authentication endpoints
type AuthHandler struct {
	auth   *service.AuthService
	email  *service.EmailService
	tokens *security.TokenManager
	csrf   *security.CSRFGenerator
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(auth *service.AuthService, email *service.EmailService, tokens *security.TokenManager, csrf *security.CSRFGenerator) *AuthHandler {
	return &AuthHandler{auth: auth, email: email, tokens: tokens, csrf: csrf}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Profile     *models.Profile `json:"profile"`
	AccessToken string          `json:"access_token"`
	CSRFToken   string          `json:"csrf_token"`
	RedirectTo  string          `json:"redirect_to"`
}

// Login authenticates a user and sets the session cookie. The response also
// carries a bearer token for API clients and the role's landing page.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session, profile, err := h.auth.Login(strings.ToLower(strings.TrimSpace(req.Email)), req.Password)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	token, err := h.tokens.Generate(profile.ID, profile.Email, profile.Role)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	csrfToken, err := h.csrf.GenerateToken(session.ID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	http.SetCookie(w, security.CreateSessionCookie(r, security.SessionCookieName, session.ID, session.ExpiresAt))

	redirectTo := "/member"
	if profile.IsAdmin() {
		redirectTo = "/admin"
	}
	respondJSON(w, http.StatusOK, loginResponse{
		Profile:     profile,
		AccessToken: token,
		CSRFToken:   csrfToken,
		RedirectTo:  redirectTo,
	})
}

// Logout invalidates the caller's session and clears the cookie. Always
// succeeds from the client's point of view.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(security.SessionCookieName); err == nil && cookie.Value != "" {
		if err := h.auth.Logout(cookie.Value); err != nil {
			log.Printf("Warning: logout failed for session: %v", err)
		}
	}
	http.SetCookie(w, security.CreateDeleteCookie(r, security.SessionCookieName))
	respondJSON(w, http.StatusOK, map[string]string{"redirect_to": "/login"})
}

type passwordResetRequest struct {
	Email string `json:"email"`
}

// RequestPasswordReset sends a reset link when the address matches an
// account. The response is identical either way.
func (h *AuthHandler) RequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req passwordResetRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.auth.RequestPasswordReset(r.Context(), h.email, strings.ToLower(strings.TrimSpace(req.Email))); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"message": "if the address matches an account, a reset email has been sent",
	})
}

type resetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

// ResetPassword completes a reset started by email. All of the account's
// sessions are invalidated; the user signs in again with the new password.
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.auth.ResetPassword(req.Token, req.NewPassword); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"redirect_to": "/login"})
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// ChangePassword lets a signed-in user replace their password. The current
// password is verified before anything is written.
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	profile := GetProfile(r)

	var req changePasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.auth.ChangePassword(profile.ID, req.CurrentPassword, req.NewPassword); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "password updated"})
}

// Me returns the caller's own profile
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, GetProfile(r))
}

// Root sends unauthenticated visitors to the login page and signed-in users
// to their role's landing page.
func (h *AuthHandler) Root(w http.ResponseWriter, r *http.Request) {
	profile := GetProfile(r)
	switch {
	case profile == nil:
		http.Redirect(w, r, "/login", http.StatusSeeOther)
	case profile.IsAdmin():
		http.Redirect(w, r, "/admin", http.StatusSeeOther)
	default:
		http.Redirect(w, r, "/member", http.StatusSeeOther)
	}
}
