package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mutuelle/internal/authstate"
	"mutuelle/internal/config"
	"mutuelle/internal/database"
	"mutuelle/internal/handlers"
	"mutuelle/internal/models"
	"mutuelle/internal/repository"
	"mutuelle/internal/security"
	"mutuelle/internal/service"
)

func main() {
	cfg := config.Load()

	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Repositories
	profileRepo := repository.NewProfileRepository(db)
	serviceRepo := repository.NewServiceRepository(db)
	familyRepo := repository.NewFamilyRepository(db)
	requestRepo := repository.NewRequestRepository(db)
	documentRepo := repository.NewDocumentRepository(db)

	// Services
	emailService, err := service.NewEmailService(cfg.AWSRegion, cfg.SESFromEmail, cfg.SESFromName, cfg.AppBaseURL, cfg.EmailDebug)
	if err != nil {
		log.Fatalf("Failed to initialize email service: %v", err)
	}

	dispatcher := service.NewAuthDispatcher()
	defer dispatcher.Close()

	authService := service.NewAuthService(profileRepo, dispatcher, cfg.SessionDuration)
	userService := service.NewUserService(profileRepo, dispatcher, emailService)
	catalogService := service.NewCatalogService(serviceRepo)
	familyService := service.NewFamilyService(familyRepo)
	requestService := service.NewRequestService(requestRepo, familyRepo, catalogService, emailService)
	documentService := service.NewDocumentService(documentRepo, familyRepo, requestRepo)
	statsService := service.NewStatsService(profileRepo, requestRepo)

	if err := catalogService.Load(); err != nil {
		log.Fatalf("Failed to load service catalog: %v", err)
	}

	if err := seedAdmin(profileRepo); err != nil {
		log.Fatalf("Failed to seed admin account: %v", err)
	}

	// Auth state registry resolves session cookies for the middleware and
	// reconciles itself against auth events
	registry := authstate.NewRegistry(authService, dispatcher)
	defer registry.Close()

	tokens := security.NewTokenManager(cfg.SecretKey, cfg.TokenDuration)
	limiter := security.NewRateLimiter(10, time.Minute)
	csrf := security.NewCSRFGenerator(cfg.SecretKey)

	h := &handlers.Handlers{
		Middleware: handlers.NewMiddleware(registry, authService, tokens, limiter, csrf),
		Auth:       handlers.NewAuthHandler(authService, emailService, tokens, csrf),
		OAuth:      handlers.NewOAuthHandler(authService, cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.AppBaseURL),
		Admin:      handlers.NewAdminHandler(authService, userService, catalogService, requestService, statsService),
		Member:     handlers.NewMemberHandler(authService, catalogService, familyService, requestService, documentService, statsService),
	}

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      handlers.Routes(h, cfg.AllowedOrigins),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Hourly cleanup of expired sessions and reset tokens
	cleanupDone := make(chan struct{})
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := authService.CleanupExpiredSessions(); err != nil {
					log.Printf("Session cleanup failed: %v", err)
				}
				if err := authService.CleanupExpiredPasswordResetTokens(); err != nil {
					log.Printf("Reset token cleanup failed: %v", err)
				}
			case <-cleanupDone:
				return
			}
		}
	}()

	go func() {
		log.Printf("Server listening on port %s", cfg.ServerPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Println("Shutting down...")
	close(cleanupDone)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
	log.Println("Server stopped")
}

// seedAdmin creates the initial administrator account when the portal has
// none, using ADMIN_EMAIL and ADMIN_PASSWORD. Without those variables a
// fresh install logs a reminder and starts anyway.
func seedAdmin(profileRepo *repository.ProfileRepository) error {
	count, err := profileRepo.CountByRole(models.RoleAdmin)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	email := os.Getenv("ADMIN_EMAIL")
	password := os.Getenv("ADMIN_PASSWORD")
	if email == "" || password == "" {
		log.Println("No administrator account exists; set ADMIN_EMAIL and ADMIN_PASSWORD to create one")
		return nil
	}

	hash, err := security.HashPassword(password)
	if err != nil {
		return err
	}

	_, err = profileRepo.Create(&models.Profile{
		Email:        email,
		PasswordHash: hash,
		FirstName:    "Admin",
		LastName:     "Portail",
		Role:         models.RoleAdmin,
		Status:       models.StatusActive,
		FirstLogin:   true,
	})
	if err != nil {
		return err
	}
	log.Printf("Administrator account created: %s", email)
	return nil
}
