package service

import (
	"errors"
	"testing"
	"time"

	"mutuelle/internal/models"
	"mutuelle/internal/repository"
)

type documentEnv struct {
	docs        *DocumentService
	profileRepo *repository.ProfileRepository
	familyRepo  *repository.FamilyRepository
	requestRepo *repository.RequestRepository
	serviceRepo *repository.ServiceRepository
}

func newDocumentEnv(t *testing.T) *documentEnv {
	t.Helper()

	db := newTestDB(t)
	_, profileRepo := newTestAuthService(t, db)
	familyRepo := repository.NewFamilyRepository(db)
	requestRepo := repository.NewRequestRepository(db)

	return &documentEnv{
		docs:        NewDocumentService(repository.NewDocumentRepository(db), familyRepo, requestRepo),
		profileRepo: profileRepo,
		familyRepo:  familyRepo,
		requestRepo: requestRepo,
		serviceRepo: repository.NewServiceRepository(db),
	}
}

func TestDocumentLifecycle(t *testing.T) {
	env := newDocumentEnv(t)
	owner := seedProfile(t, env.profileRepo, "owner@example.com", "password123", models.RoleMember)
	stranger := seedProfile(t, env.profileRepo, "stranger@example.com", "password123", models.RoleMember)

	doc, err := env.docs.Create(owner.ID, &models.Document{
		FileName: "justificatif.pdf",
		FilePath: "/uploads/justificatif.pdf",
		FileSize: 2048,
		MimeType: "application/pdf",
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if doc.ID == "" {
		t.Error("Create() assigned no ID")
	}
	if doc.UserID != owner.ID {
		t.Errorf("UserID = %q, want %q", doc.UserID, owner.ID)
	}

	list, err := env.docs.List(owner.ID)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("List() returned %d documents, want 1", len(list))
	}

	// Another account sees nothing and cannot delete
	otherList, err := env.docs.List(stranger.ID)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(otherList) != 0 {
		t.Errorf("stranger sees %d documents, want 0", len(otherList))
	}
	if err := env.docs.Delete(stranger.ID, doc.ID); !errors.Is(err, ErrNotDocumentOwner) {
		t.Errorf("stranger Delete() error = %v, want ErrNotDocumentOwner", err)
	}

	if err := env.docs.Delete(owner.ID, doc.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := env.docs.Delete(owner.ID, doc.ID); !errors.Is(err, ErrDocumentNotFound) {
		t.Errorf("repeat Delete() error = %v, want ErrDocumentNotFound", err)
	}
}

func TestCreateDocumentValidation(t *testing.T) {
	env := newDocumentEnv(t)
	owner := seedProfile(t, env.profileRepo, "owner@example.com", "password123", models.RoleMember)

	if _, err := env.docs.Create(owner.ID, &models.Document{FileName: "  "}); err == nil {
		t.Error("Create() accepted an empty file name")
	}
	if _, err := env.docs.Create(owner.ID, &models.Document{FileName: "a.pdf", FileSize: -1}); err == nil {
		t.Error("Create() accepted a negative file size")
	}

	// Path components are stripped from stored names
	doc, err := env.docs.Create(owner.ID, &models.Document{FileName: "../../etc/passwd"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if doc.FileName != "passwd" {
		t.Errorf("FileName = %q, want %q", doc.FileName, "passwd")
	}
}

func TestCreateDocumentAttachmentOwnership(t *testing.T) {
	env := newDocumentEnv(t)
	owner := seedProfile(t, env.profileRepo, "owner@example.com", "password123", models.RoleMember)
	stranger := seedProfile(t, env.profileRepo, "stranger@example.com", "password123", models.RoleMember)
	svc := seedService(t, env.serviceRepo, "Allocation", 500, true)

	ownChild, err := env.familyRepo.Create(&models.FamilyMember{
		UserID: owner.ID, FirstName: "Lina", LastName: "Owner",
		Relationship: "child", BirthDate: time.Date(2015, 6, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("Failed to create family member: %v", err)
	}
	otherChild, err := env.familyRepo.Create(&models.FamilyMember{
		UserID: stranger.ID, FirstName: "Nour", LastName: "Stranger",
		Relationship: "child", BirthDate: time.Date(2016, 2, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("Failed to create family member: %v", err)
	}

	ownRequest, err := env.requestRepo.Create(&models.ServiceRequest{
		UserID: owner.ID, ServiceID: svc.ID, Amount: 100,
	})
	if err != nil {
		t.Fatalf("Failed to create request: %v", err)
	}
	otherRequest, err := env.requestRepo.Create(&models.ServiceRequest{
		UserID: stranger.ID, ServiceID: svc.ID, Amount: 100,
	})
	if err != nil {
		t.Fatalf("Failed to create request: %v", err)
	}
	unknownID := "00000000-0000-0000-0000-000000000000"

	tests := []struct {
		name    string
		doc     *models.Document
		wantErr error
	}{
		{"own dependent", &models.Document{FileName: "a.pdf", FamilyMemberID: &ownChild.ID}, nil},
		{"own request", &models.Document{FileName: "b.pdf", ServiceRequestID: &ownRequest.ID}, nil},
		{"foreign dependent", &models.Document{FileName: "c.pdf", FamilyMemberID: &otherChild.ID}, ErrNotFamilyOwner},
		{"foreign request", &models.Document{FileName: "d.pdf", ServiceRequestID: &otherRequest.ID}, ErrNotRequestOwner},
		{"unknown dependent", &models.Document{FileName: "e.pdf", FamilyMemberID: &unknownID}, ErrFamilyMemberNotFound},
		{"unknown request", &models.Document{FileName: "f.pdf", ServiceRequestID: &unknownID}, ErrRequestNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.docs.Create(owner.ID, tt.doc)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Create() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
