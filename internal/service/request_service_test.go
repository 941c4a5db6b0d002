package service

import (
	"errors"
	"testing"
	"time"

	"mutuelle/internal/models"
	"mutuelle/internal/repository"
)

type requestEnv struct {
	requests *RequestService
	family   *FamilyService
	catalog  *CatalogService
	member   *models.Profile
	other    *models.Profile
	svc      *models.Service
	inactive *models.Service
}

func newRequestEnv(t *testing.T) *requestEnv {
	t.Helper()
	db := newTestDB(t)

	profileRepo := repository.NewProfileRepository(db)
	serviceRepo := repository.NewServiceRepository(db)
	familyRepo := repository.NewFamilyRepository(db)
	requestRepo := repository.NewRequestRepository(db)

	catalog := NewCatalogService(serviceRepo)

	return &requestEnv{
		requests: NewRequestService(requestRepo, familyRepo, catalog, nil),
		family:   NewFamilyService(familyRepo),
		catalog:  catalog,
		member:   seedProfile(t, profileRepo, "member@example.com", "password123", models.RoleMember),
		other:    seedProfile(t, profileRepo, "other@example.com", "password123", models.RoleMember),
		svc:      seedService(t, serviceRepo, "Allocation naissance", 500, true),
		inactive: seedService(t, serviceRepo, "Ancienne prestation", 300, false),
	}
}

func TestCreateRequest(t *testing.T) {
	env := newRequestEnv(t)

	req, err := env.requests.Create(env.member.ID, &RequestInput{
		ServiceID:   env.svc.ID,
		Amount:      250,
		Description: "naissance de notre fille",
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if req.Status != models.RequestPending {
		t.Errorf("new request status = %q, want pending", req.Status)
	}
	if req.ProcessedAt != nil {
		t.Error("new request should have no processed_at")
	}
	if req.SubmittedAt.IsZero() {
		t.Error("new request should have a submission timestamp")
	}
	if req.Service == nil || req.Service.Name != "Allocation naissance" {
		t.Error("created request should come back with its service expanded")
	}
}

func TestCreateRequestValidation(t *testing.T) {
	env := newRequestEnv(t)

	dependent, err := env.family.Create(env.member.ID, &FamilyInput{
		FirstName:    "Lina",
		LastName:     "Martin",
		Relationship: "child",
		BirthDate:    time.Date(2018, 4, 12, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("family Create() error = %v", err)
	}

	tests := []struct {
		name    string
		userID  string
		input   *RequestInput
		wantErr error
	}{
		{
			name:    "inactive service",
			userID:  env.member.ID,
			input:   &RequestInput{ServiceID: env.inactive.ID, Amount: 100},
			wantErr: ErrServiceInactive,
		},
		{
			name:    "unknown service",
			userID:  env.member.ID,
			input:   &RequestInput{ServiceID: "missing", Amount: 100},
			wantErr: ErrServiceNotFound,
		},
		{
			name:   "amount above ceiling",
			userID: env.member.ID,
			input:  &RequestInput{ServiceID: env.svc.ID, Amount: 501},
		},
		{
			name:   "zero amount",
			userID: env.member.ID,
			input:  &RequestInput{ServiceID: env.svc.ID, Amount: 0},
		},
		{
			name:    "beneficiary owned by someone else",
			userID:  env.other.ID,
			input:   &RequestInput{ServiceID: env.svc.ID, Amount: 100, BeneficiaryID: dependent.ID},
			wantErr: ErrBeneficiaryNotOwned,
		},
		{
			name:    "unknown beneficiary",
			userID:  env.member.ID,
			input:   &RequestInput{ServiceID: env.svc.ID, Amount: 100, BeneficiaryID: "missing"},
			wantErr: ErrBeneficiaryNotOwned,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.requests.Create(tt.userID, tt.input)
			if err == nil {
				t.Fatal("Create() should have failed")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Create() error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	// Ceiling boundary: exactly max_amount is accepted
	if _, err := env.requests.Create(env.member.ID, &RequestInput{ServiceID: env.svc.ID, Amount: 500}); err != nil {
		t.Errorf("Create() at exact ceiling error = %v", err)
	}

	// Owned beneficiary is accepted
	req, err := env.requests.Create(env.member.ID, &RequestInput{
		ServiceID: env.svc.ID, Amount: 100, BeneficiaryID: dependent.ID,
	})
	if err != nil {
		t.Fatalf("Create() with owned beneficiary error = %v", err)
	}
	if req.Beneficiary == nil || req.Beneficiary.FirstName != "Lina" {
		t.Error("request should come back with its beneficiary expanded")
	}
}

func TestDecideRequest(t *testing.T) {
	env := newRequestEnv(t)

	req, err := env.requests.Create(env.member.ID, &RequestInput{ServiceID: env.svc.ID, Amount: 100})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	decided, err := env.requests.Decide(t.Context(), req.ID, models.RequestApproved, "justificatif conforme")
	if err != nil {
		t.Fatalf("Decide() error = %v", err)
	}
	if decided.Status != models.RequestApproved {
		t.Errorf("status = %q, want approved", decided.Status)
	}
	if decided.ProcessedAt == nil {
		t.Error("decided request must carry processed_at")
	}
	if decided.AdminComments != "justificatif conforme" {
		t.Errorf("admin comments = %q", decided.AdminComments)
	}

	// Decisions are final
	if _, err := env.requests.Decide(t.Context(), req.ID, models.RequestRejected, ""); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("second Decide() error = %v, want ErrInvalidTransition", err)
	}

	// Moving back to pending is not a decision at all
	if _, err := env.requests.Decide(t.Context(), req.ID, models.RequestPending, ""); !errors.Is(err, ErrInvalidDecision) {
		t.Errorf("Decide(pending) error = %v, want ErrInvalidDecision", err)
	}

	// The stored row reflects the decision
	stored, err := env.requests.Get(req.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if stored.Status != models.RequestApproved || stored.ProcessedAt == nil {
		t.Error("decision not persisted")
	}
}

func TestGetOwned(t *testing.T) {
	env := newRequestEnv(t)

	req, err := env.requests.Create(env.member.ID, &RequestInput{ServiceID: env.svc.ID, Amount: 100})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if _, err := env.requests.GetOwned(env.member.ID, req.ID); err != nil {
		t.Errorf("GetOwned() by owner error = %v", err)
	}
	if _, err := env.requests.GetOwned(env.other.ID, req.ID); !errors.Is(err, ErrNotRequestOwner) {
		t.Errorf("GetOwned() by stranger error = %v, want ErrNotRequestOwner", err)
	}
}

func TestListByUserSeesOnlyOwnRequests(t *testing.T) {
	env := newRequestEnv(t)

	if _, err := env.requests.Create(env.member.ID, &RequestInput{ServiceID: env.svc.ID, Amount: 10}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := env.requests.Create(env.other.ID, &RequestInput{ServiceID: env.svc.ID, Amount: 20}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	mine, err := env.requests.ListByUser(env.member.ID)
	if err != nil {
		t.Fatalf("ListByUser() error = %v", err)
	}
	if len(mine) != 1 {
		t.Fatalf("ListByUser() returned %d requests, want 1", len(mine))
	}
	if mine[0].UserID != env.member.ID {
		t.Error("ListByUser() leaked another member's request")
	}

	all, err := env.requests.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(all) != 2 {
		t.Errorf("List() returned %d requests, want 2", len(all))
	}
}
