package service

import (
	"testing"

	"mutuelle/internal/models"
	"mutuelle/internal/repository"
)

func TestDashboards(t *testing.T) {
	db := newTestDB(t)
	profileRepo := repository.NewProfileRepository(db)
	serviceRepo := repository.NewServiceRepository(db)
	familyRepo := repository.NewFamilyRepository(db)
	requestRepo := repository.NewRequestRepository(db)

	catalog := NewCatalogService(serviceRepo)
	requests := NewRequestService(requestRepo, familyRepo, catalog, nil)
	stats := NewStatsService(profileRepo, requestRepo)

	seedProfile(t, profileRepo, "admin@example.com", "password123", models.RoleAdmin)
	member := seedProfile(t, profileRepo, "member@example.com", "password123", models.RoleMember)
	other := seedProfile(t, profileRepo, "other@example.com", "password123", models.RoleMember)
	svc := seedService(t, serviceRepo, "Allocation", 1000, true)

	r1, err := requests.Create(member.ID, &RequestInput{ServiceID: svc.ID, Amount: 100})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	r2, err := requests.Create(member.ID, &RequestInput{ServiceID: svc.ID, Amount: 200})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := requests.Create(other.ID, &RequestInput{ServiceID: svc.ID, Amount: 50}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if _, err := requests.Decide(t.Context(), r1.ID, models.RequestApproved, ""); err != nil {
		t.Fatalf("Decide() error = %v", err)
	}
	if _, err := requests.Decide(t.Context(), r2.ID, models.RequestRejected, ""); err != nil {
		t.Fatalf("Decide() error = %v", err)
	}

	admin, err := stats.AdminDashboard()
	if err != nil {
		t.Fatalf("AdminDashboard() error = %v", err)
	}
	if admin.TotalMembers != 2 {
		t.Errorf("TotalMembers = %d, want 2", admin.TotalMembers)
	}
	if admin.PendingRequests != 1 {
		t.Errorf("PendingRequests = %d, want 1", admin.PendingRequests)
	}
	if admin.ProcessedRequests != 2 {
		t.Errorf("ProcessedRequests = %d, want 2", admin.ProcessedRequests)
	}
	if admin.MonthlyRequests != 3 {
		t.Errorf("MonthlyRequests = %d, want 3", admin.MonthlyRequests)
	}

	mine, err := stats.MemberDashboard(member.ID)
	if err != nil {
		t.Fatalf("MemberDashboard() error = %v", err)
	}
	if mine.PendingRequests != 0 || mine.ApprovedRequests != 1 || mine.RejectedRequests != 1 {
		t.Errorf("member counts = %+v", mine)
	}
	if mine.TotalApproved != 100 {
		t.Errorf("TotalApproved = %v, want 100", mine.TotalApproved)
	}

	theirs, err := stats.MemberDashboard(other.ID)
	if err != nil {
		t.Fatalf("MemberDashboard() error = %v", err)
	}
	if theirs.PendingRequests != 1 || theirs.TotalApproved != 0 {
		t.Errorf("other member counts = %+v", theirs)
	}
}
