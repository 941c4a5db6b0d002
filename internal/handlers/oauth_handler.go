package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"mutuelle/internal/security"
	"mutuelle/internal/service"
)

const oauthStateCookie = "oauth_state"

// OAuthHandler runs the Google sign-in flow. Google identities only attach
// to accounts an administrator already created; there is no self-signup
// through this path.
type OAuthHandler struct {
	auth   *service.AuthService
	config *oauth2.Config
}

// NewOAuthHandler creates the Google OAuth handler. Returns nil when no
// client ID is configured, which disables the routes.
func NewOAuthHandler(auth *service.AuthService, clientID, clientSecret, appBaseURL string) *OAuthHandler {
	if clientID == "" {
		return nil
	}
	return &OAuthHandler{
		auth: auth,
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  appBaseURL + "/auth/google/callback",
			Scopes:       []string{"openid", "email"},
			Endpoint:     google.Endpoint,
		},
	}
}

// Start redirects the browser to Google's consent page with a random state
// bound to a short-lived cookie.
func (h *OAuthHandler) Start(w http.ResponseWriter, r *http.Request) {
	state, err := security.GenerateSecureToken(16)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/auth/google",
		Expires:  time.Now().Add(10 * time.Minute),
		HttpOnly: true,
		Secure:   security.IsSecureRequest(r),
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, h.config.AuthCodeURL(state), http.StatusSeeOther)
}

// Callback exchanges the authorization code, reads the Google identity and
// signs the matching account in.
func (h *OAuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	stateCookie, err := r.Cookie(oauthStateCookie)
	if err != nil || stateCookie.Value == "" || stateCookie.Value != r.URL.Query().Get("state") {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	http.SetCookie(w, security.CreateDeleteCookie(r, oauthStateCookie))

	code := r.URL.Query().Get("code")
	if code == "" {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	token, err := h.config.Exchange(r.Context(), code)
	if err != nil {
		log.Printf("OAuth exchange failed: %v", err)
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	identity, err := h.fetchIdentity(r.Context(), token)
	if err != nil {
		log.Printf("OAuth identity lookup failed: %v", err)
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	h.completeLogin(w, r, identity)
}

// completeLogin signs the matched account in and sends the browser to its
// landing page. Any refused sign-in, unknown address included, goes back to
// the login page; this endpoint never answers a browser with JSON.
func (h *OAuthHandler) completeLogin(w http.ResponseWriter, r *http.Request, identity *googleIdentity) {
	session, profile, err := h.auth.OAuthLogin("google", identity.Subject, identity.Email)
	if err != nil {
		// Expected refusals (unknown address, suspended account) are silent
		if !errors.Is(err, service.ErrProfileNotFound) && !errors.Is(err, service.ErrAccountSuspended) {
			log.Printf("OAuth sign-in failed: %v", err)
		}
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	http.SetCookie(w, security.CreateSessionCookie(r, security.SessionCookieName, session.ID, session.ExpiresAt))
	if profile.IsAdmin() {
		http.Redirect(w, r, "/admin", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/member", http.StatusSeeOther)
}

type googleIdentity struct {
	Subject string `json:"sub"`
	Email   string `json:"email"`
}

func (h *OAuthHandler) fetchIdentity(ctx context.Context, token *oauth2.Token) (*googleIdentity, error) {
	client := h.config.Client(ctx, token)
	resp, err := client.Get("https://openidconnect.googleapis.com/v1/userinfo")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo returned status %d", resp.StatusCode)
	}

	var identity googleIdentity
	if err := json.NewDecoder(resp.Body).Decode(&identity); err != nil {
		return nil, err
	}
	return &identity, nil
}
