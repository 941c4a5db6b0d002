package service

import (
	"errors"
	"testing"
	"time"

	"mutuelle/internal/models"
	"mutuelle/internal/repository"
)

func newFamilyEnv(t *testing.T) (*FamilyService, *models.Profile, *models.Profile) {
	t.Helper()
	db := newTestDB(t)
	profileRepo := repository.NewProfileRepository(db)
	family := NewFamilyService(repository.NewFamilyRepository(db))
	owner := seedProfile(t, profileRepo, "owner@example.com", "password123", models.RoleMember)
	other := seedProfile(t, profileRepo, "other@example.com", "password123", models.RoleMember)
	return family, owner, other
}

func validDependent() *FamilyInput {
	return &FamilyInput{
		FirstName:    "Lina",
		LastName:     "Martin",
		Relationship: "child",
		BirthDate:    time.Date(2018, 4, 12, 0, 0, 0, 0, time.UTC),
	}
}

func TestFamilyCreateValidation(t *testing.T) {
	family, owner, _ := newFamilyEnv(t)

	tests := []struct {
		name   string
		mutate func(*FamilyInput)
	}{
		{"empty first name", func(in *FamilyInput) { in.FirstName = "" }},
		{"empty last name", func(in *FamilyInput) { in.LastName = "" }},
		{"unknown relationship", func(in *FamilyInput) { in.Relationship = "cousin" }},
		{"missing birth date", func(in *FamilyInput) { in.BirthDate = time.Time{} }},
		{"future birth date", func(in *FamilyInput) { in.BirthDate = time.Now().Add(24 * time.Hour) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validDependent()
			tt.mutate(in)
			if _, err := family.Create(owner.ID, in); err == nil {
				t.Error("Create() should have failed")
			}
		})
	}

	if _, err := family.Create(owner.ID, validDependent()); err != nil {
		t.Errorf("Create() with valid input error = %v", err)
	}
}

func TestFamilyOwnership(t *testing.T) {
	family, owner, other := newFamilyEnv(t)

	dependent, err := family.Create(owner.ID, validDependent())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	// A different member can neither read, edit nor delete it
	if _, err := family.Get(other.ID, dependent.ID); !errors.Is(err, ErrNotFamilyOwner) {
		t.Errorf("Get() error = %v, want ErrNotFamilyOwner", err)
	}
	if _, err := family.Update(other.ID, dependent.ID, validDependent()); !errors.Is(err, ErrNotFamilyOwner) {
		t.Errorf("Update() error = %v, want ErrNotFamilyOwner", err)
	}
	if err := family.Delete(other.ID, dependent.ID); !errors.Is(err, ErrNotFamilyOwner) {
		t.Errorf("Delete() error = %v, want ErrNotFamilyOwner", err)
	}

	// And the lists stay separate
	mine, err := family.List(owner.ID)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	theirs, err := family.List(other.ID)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(mine) != 1 || len(theirs) != 0 {
		t.Errorf("List() sizes = %d and %d, want 1 and 0", len(mine), len(theirs))
	}

	if err := family.Delete(owner.ID, dependent.ID); err != nil {
		t.Errorf("Delete() by owner error = %v", err)
	}
	if _, err := family.Get(owner.ID, dependent.ID); !errors.Is(err, ErrFamilyMemberNotFound) {
		t.Errorf("Get() after delete error = %v, want ErrFamilyMemberNotFound", err)
	}
}

func TestFamilyUpdate(t *testing.T) {
	family, owner, _ := newFamilyEnv(t)

	dependent, err := family.Create(owner.ID, validDependent())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	in := validDependent()
	in.FirstName = "Nora"
	in.Relationship = "spouse"
	updated, err := family.Update(owner.ID, dependent.ID, in)
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.FirstName != "Nora" || updated.Relationship != "spouse" {
		t.Errorf("Update() = %+v", updated)
	}
}
