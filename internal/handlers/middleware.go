package handlers

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"mutuelle/internal/authstate"
	"mutuelle/internal/models"
	"mutuelle/internal/security"
	"mutuelle/internal/service"
)

type contextKey string

const profileContextKey contextKey = "profile"

// GetProfile returns the authenticated profile stored on the request context
func GetProfile(r *http.Request) *models.Profile {
	p, _ := r.Context().Value(profileContextKey).(*models.Profile)
	return p
}

// Middleware bundles the cross-cutting request wrappers: authentication via
// cookie session or bearer token, role gating, rate limiting and logging.
type Middleware struct {
	registry *authstate.Registry
	auth     *service.AuthService
	tokens   *security.TokenManager
	limiter  *security.RateLimiter
	csrf     *security.CSRFGenerator
}

// NewMiddleware creates the middleware set
func NewMiddleware(registry *authstate.Registry, auth *service.AuthService, tokens *security.TokenManager, limiter *security.RateLimiter, csrf *security.CSRFGenerator) *Middleware {
	return &Middleware{
		registry: registry,
		auth:     auth,
		tokens:   tokens,
		limiter:  limiter,
		csrf:     csrf,
	}
}

// resolveProfile authenticates the request. Cookie sessions are resolved
// through the registry; API clients may send a bearer token instead.
func (m *Middleware) resolveProfile(r *http.Request) (*models.Profile, bool) {
	if cookie, err := r.Cookie(security.SessionCookieName); err == nil && cookie.Value != "" {
		profile, err := m.registry.Resolve(cookie.Value)
		if err == nil && profile != nil {
			return profile, true
		}
		return nil, false
	}

	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		claims, err := m.tokens.Verify(strings.TrimPrefix(auth, "Bearer "))
		if err != nil {
			return nil, false
		}
		// Tokens carry identity only; the profile row decides role and status
		profile, err := m.auth.GetProfile(claims.UserID)
		if err != nil || profile == nil || profile.IsSuspended() {
			return nil, false
		}
		return profile, true
	}

	return nil, false
}

// isAPIRequest reports whether failures should be JSON rather than a
// redirect to the login page
func isAPIRequest(r *http.Request) bool {
	if strings.HasPrefix(r.Header.Get("Authorization"), "Bearer ") {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

func (m *Middleware) denyUnauthenticated(w http.ResponseWriter, r *http.Request) {
	// Drop a dead session cookie so the client stops presenting it
	if _, err := r.Cookie(security.SessionCookieName); err == nil {
		http.SetCookie(w, security.CreateDeleteCookie(r, security.SessionCookieName))
	}
	if isAPIRequest(r) {
		respondError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// RequireAuth resolves the caller's profile and rejects unauthenticated
// requests. The profile lands on the request context for handlers.
func (m *Middleware) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profile, ok := m.resolveProfile(r)
		if !ok {
			m.denyUnauthenticated(w, r)
			return
		}
		ctx := context.WithValue(r.Context(), profileContextKey, profile)
		next(w, r.WithContext(ctx))
	}
}

// OptionalAuth attaches the caller's profile when one resolves but lets
// anonymous requests through
func (m *Middleware) OptionalAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if profile, ok := m.resolveProfile(r); ok {
			r = r.WithContext(context.WithValue(r.Context(), profileContextKey, profile))
		}
		next(w, r)
	}
}

// RequireRole gates a route to one role. A signed-in caller with the wrong
// role is sent back to the login page, same as an anonymous one; the portal
// never reveals which routes exist for the other role.
func (m *Middleware) RequireRole(role string, next http.HandlerFunc) http.HandlerFunc {
	return m.RequireAuth(func(w http.ResponseWriter, r *http.Request) {
		profile := GetProfile(r)
		if profile.Role != role {
			if isAPIRequest(r) {
				respondError(w, http.StatusForbidden, "insufficient role")
				return
			}
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next(w, r)
	})
}

// RequireAdmin gates a route to administrators
func (m *Middleware) RequireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return m.RequireRole(models.RoleAdmin, next)
}

// RequireMember gates a route to members
func (m *Middleware) RequireMember(next http.HandlerFunc) http.HandlerFunc {
	return m.RequireRole(models.RoleMember, next)
}

// CSRFProtect validates the CSRF token on state-changing requests made with
// a session cookie. Bearer clients skip the check: a cross-site form cannot
// set the Authorization header.
func (m *Middleware) CSRFProtect(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(security.SessionCookieName)
		if err != nil || cookie.Value == "" {
			next(w, r)
			return
		}

		token := r.Header.Get("X-CSRF-Token")
		if token == "" {
			token = r.FormValue("csrf_token")
		}
		if !m.csrf.ValidateToken(cookie.Value, token) {
			log.Printf("CSRF validation failed: path=%s", r.URL.Path)
			respondError(w, http.StatusForbidden, "invalid csrf token")
			return
		}
		next(w, r)
	}
}

// RateLimit rejects clients that exceed the configured request rate
func (m *Middleware) RateLimit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip := security.GetClientIP(r)
		if !m.limiter.Allow(ip) {
			log.Printf("Rate limit exceeded: ip=%s path=%s", ip, r.URL.Path)
			respondError(w, http.StatusTooManyRequests, "too many requests")
			return
		}
		next(w, r)
	}
}

// Logging records each request with its duration and status
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		log.Printf("%s %s %d %s", r.Method, r.URL.Path, sw.status, time.Since(start))
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
