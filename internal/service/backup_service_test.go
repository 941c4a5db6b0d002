package service

import (
	"path/filepath"
	"testing"
	"time"

	"mutuelle/internal/models"
	"mutuelle/internal/repository"
)

func TestBackupRoundTrip(t *testing.T) {
	source := newTestDB(t)
	_, profileRepo := newTestAuthService(t, source)
	serviceRepo := repository.NewServiceRepository(source)
	familyRepo := repository.NewFamilyRepository(source)
	requestRepo := repository.NewRequestRepository(source)
	documentRepo := repository.NewDocumentRepository(source)

	member := seedProfile(t, profileRepo, "member@example.com", "password123", models.RoleMember)
	seedProfile(t, profileRepo, "admin@example.com", "password123", models.RoleAdmin)
	svc := seedService(t, serviceRepo, "Allocation naissance", 500, true)

	child, err := familyRepo.Create(&models.FamilyMember{
		UserID: member.ID, FirstName: "Lina", LastName: "User",
		Relationship: "child", BirthDate: time.Date(2015, 6, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("Failed to create family member: %v", err)
	}
	if _, err := requestRepo.Create(&models.ServiceRequest{
		UserID: member.ID, ServiceID: svc.ID, BeneficiaryID: &child.ID,
		Amount: 120, Description: "naissance",
	}); err != nil {
		t.Fatalf("Failed to create request: %v", err)
	}
	if _, err := documentRepo.Create(&models.Document{
		UserID: member.ID, FileName: "acte.pdf", FileSize: 1024, MimeType: "application/pdf",
	}); err != nil {
		t.Fatalf("Failed to create document: %v", err)
	}

	backupPath := filepath.Join(t.TempDir(), "backup.json")
	if err := NewBackupService(source).Export(backupPath); err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	target := newTestDB(t)
	if err := NewBackupService(target).Import(backupPath, false); err != nil {
		t.Fatalf("Import() error = %v", err)
	}

	targetProfiles := repository.NewProfileRepository(target)
	restored, err := targetProfiles.GetByEmail("member@example.com")
	if err != nil {
		t.Fatalf("GetByEmail() error = %v", err)
	}
	if restored == nil {
		t.Fatal("imported database is missing the member profile")
	}
	if restored.ID != member.ID {
		t.Errorf("restored ID = %q, want %q", restored.ID, member.ID)
	}

	// The password hash survives; the member can authenticate against the copy
	auth, _ := newTestAuthService(t, target)
	if _, _, err := auth.Login("member@example.com", "password123"); err != nil {
		t.Errorf("Login() against restored database error = %v", err)
	}

	requests, err := repository.NewRequestRepository(target).ListByUser(member.ID)
	if err != nil {
		t.Fatalf("ListByUser() error = %v", err)
	}
	if len(requests) != 1 {
		t.Fatalf("restored %d requests, want 1", len(requests))
	}
	if requests[0].Beneficiary == nil || requests[0].Beneficiary.ID != child.ID {
		t.Error("restored request lost its beneficiary link")
	}
}

func TestImportCollisionsAndClear(t *testing.T) {
	db := newTestDB(t)
	_, profileRepo := newTestAuthService(t, db)
	seedProfile(t, profileRepo, "member@example.com", "password123", models.RoleMember)

	backupPath := filepath.Join(t.TempDir(), "backup.json")
	backups := NewBackupService(db)
	if err := backups.Export(backupPath); err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	// Importing over existing rows without clear collides on IDs
	if err := backups.Import(backupPath, false); err == nil {
		t.Error("Import() without clear succeeded over colliding rows")
	}

	// With clear the import replaces the data and leaves exactly the
	// exported rows
	seedProfile(t, profileRepo, "extra@example.com", "password123", models.RoleMember)
	if err := backups.Import(backupPath, true); err != nil {
		t.Fatalf("Import() with clear error = %v", err)
	}

	extra, err := profileRepo.GetByEmail("extra@example.com")
	if err != nil {
		t.Fatalf("GetByEmail() error = %v", err)
	}
	if extra != nil {
		t.Error("clear import kept a row that was not in the backup")
	}
	restored, err := profileRepo.GetByEmail("member@example.com")
	if err != nil {
		t.Fatalf("GetByEmail() error = %v", err)
	}
	if restored == nil {
		t.Error("clear import dropped the backed-up profile")
	}
}
