package handlers

import (
	"net/http"

	"github.com/rs/cors"
)

// Handlers groups everything the route table needs
type Handlers struct {
	Middleware *Middleware
	Auth       *AuthHandler
	OAuth      *OAuthHandler
	Admin      *AdminHandler
	Member     *MemberHandler
}

// Routes builds the portal's HTTP handler: the full route table wrapped in
// request logging and CORS for the front-end origin.
func Routes(h *Handlers, allowedOrigins []string) http.Handler {
	mux := http.NewServeMux()
	mw := h.Middleware

	// Public
	mux.HandleFunc("GET /{$}", mw.OptionalAuth(h.Auth.Root))
	mux.HandleFunc("POST /login", mw.RateLimit(h.Auth.Login))
	mux.HandleFunc("POST /logout", h.Auth.Logout)
	mux.HandleFunc("POST /password-reset", mw.RateLimit(h.Auth.RequestPasswordReset))
	mux.HandleFunc("POST /password-reset/confirm", mw.RateLimit(h.Auth.ResetPassword))
	mux.HandleFunc("POST /change-password", mw.RequireAuth(mw.CSRFProtect(h.Auth.ChangePassword)))
	mux.HandleFunc("GET /me", mw.RequireAuth(h.Auth.Me))

	if h.OAuth != nil {
		mux.HandleFunc("GET /auth/google/start", h.OAuth.Start)
		mux.HandleFunc("GET /auth/google/callback", h.OAuth.Callback)
	}

	// Administrator
	mux.HandleFunc("GET /admin", mw.RequireAdmin(h.Admin.Dashboard))
	mux.HandleFunc("GET /admin/users", mw.RequireAdmin(h.Admin.Users))
	mux.HandleFunc("POST /admin/users/create", mw.RequireAdmin(mw.CSRFProtect(h.Admin.CreateUser)))
	mux.HandleFunc("POST /admin/users/{id}/update", mw.RequireAdmin(mw.CSRFProtect(h.Admin.UpdateUser)))
	mux.HandleFunc("POST /admin/users/{id}/status", mw.RequireAdmin(mw.CSRFProtect(h.Admin.SetUserStatus)))
	mux.HandleFunc("POST /admin/users/{id}/delete", mw.RequireAdmin(mw.CSRFProtect(h.Admin.DeleteUser)))
	mux.HandleFunc("GET /admin/requests", mw.RequireAdmin(h.Admin.Requests))
	mux.HandleFunc("GET /admin/requests/{id}", mw.RequireAdmin(h.Admin.Request))
	mux.HandleFunc("POST /admin/requests/{id}/decision", mw.RequireAdmin(mw.CSRFProtect(h.Admin.DecideRequest)))
	mux.HandleFunc("GET /admin/services", mw.RequireAdmin(h.Admin.Services))
	mux.HandleFunc("POST /admin/services/create", mw.RequireAdmin(mw.CSRFProtect(h.Admin.CreateService)))
	mux.HandleFunc("POST /admin/services/{id}/update", mw.RequireAdmin(mw.CSRFProtect(h.Admin.UpdateService)))
	mux.HandleFunc("POST /admin/services/{id}/delete", mw.RequireAdmin(mw.CSRFProtect(h.Admin.DeleteService)))
	mux.HandleFunc("GET /admin/profile", mw.RequireAdmin(h.Admin.Profile))
	mux.HandleFunc("POST /admin/profile/update", mw.RequireAdmin(mw.CSRFProtect(h.Admin.UpdateProfile)))

	// Member
	mux.HandleFunc("GET /member", mw.RequireMember(h.Member.Dashboard))
	mux.HandleFunc("GET /member/profile", mw.RequireMember(h.Member.Profile))
	mux.HandleFunc("POST /member/profile/update", mw.RequireMember(mw.CSRFProtect(h.Member.UpdateProfile)))
	mux.HandleFunc("GET /member/services", mw.RequireMember(h.Member.Services))
	mux.HandleFunc("GET /member/family", mw.RequireMember(h.Member.Family))
	mux.HandleFunc("POST /member/family/create", mw.RequireMember(mw.CSRFProtect(h.Member.CreateFamilyMember)))
	mux.HandleFunc("POST /member/family/{id}/update", mw.RequireMember(mw.CSRFProtect(h.Member.UpdateFamilyMember)))
	mux.HandleFunc("POST /member/family/{id}/delete", mw.RequireMember(mw.CSRFProtect(h.Member.DeleteFamilyMember)))
	mux.HandleFunc("GET /member/request", mw.RequireMember(h.Member.NewRequestForm))
	mux.HandleFunc("POST /member/request", mw.RequireMember(mw.CSRFProtect(h.Member.CreateRequest)))
	mux.HandleFunc("GET /member/requests/{id}", mw.RequireMember(h.Member.Request))
	mux.HandleFunc("GET /member/history", mw.RequireMember(h.Member.History))
	mux.HandleFunc("GET /member/documents", mw.RequireMember(h.Member.Documents))
	mux.HandleFunc("POST /member/documents/create", mw.RequireMember(mw.CSRFProtect(h.Member.CreateDocument)))
	mux.HandleFunc("POST /member/documents/{id}/delete", mw.RequireMember(mw.CSRFProtect(h.Member.DeleteDocument)))

	c := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-CSRF-Token"},
		AllowCredentials: true,
	})

	return Logging(c.Handler(mux))
}
