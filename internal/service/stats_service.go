package service

import (
	"time"

	"mutuelle/internal/models"
	"mutuelle/internal/repository"
)

// AdminStats summarizes portal activity for the admin dashboard
type AdminStats struct {
	TotalMembers      int `json:"total_members"`
	PendingRequests   int `json:"pending_requests"`
	ProcessedRequests int `json:"processed_requests"`
	MonthlyRequests   int `json:"monthly_requests"`
}

// MemberStats summarizes a member's own activity
type MemberStats struct {
	PendingRequests  int     `json:"pending_requests"`
	ApprovedRequests int     `json:"approved_requests"`
	RejectedRequests int     `json:"rejected_requests"`
	TotalApproved    float64 `json:"total_approved"`
}

// StatsService computes dashboard figures from the request and profile tables
type StatsService struct {
	profileRepo *repository.ProfileRepository
	requestRepo *repository.RequestRepository
}

// NewStatsService creates a new stats service
func NewStatsService(profileRepo *repository.ProfileRepository, requestRepo *repository.RequestRepository) *StatsService {
	return &StatsService{
		profileRepo: profileRepo,
		requestRepo: requestRepo,
	}
}

// AdminDashboard returns portal-wide figures. Monthly counts run from the
// first day of the current calendar month.
func (s *StatsService) AdminDashboard() (*AdminStats, error) {
	members, err := s.profileRepo.CountByRole(models.RoleMember)
	if err != nil {
		return nil, err
	}
	pending, err := s.requestRepo.CountByStatus(models.RequestPending)
	if err != nil {
		return nil, err
	}
	processed, err := s.requestRepo.CountProcessed()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	monthly, err := s.requestRepo.CountSubmittedSince(monthStart)
	if err != nil {
		return nil, err
	}

	return &AdminStats{
		TotalMembers:      members,
		PendingRequests:   pending,
		ProcessedRequests: processed,
		MonthlyRequests:   monthly,
	}, nil
}

// MemberDashboard returns a member's own figures
func (s *StatsService) MemberDashboard(userID string) (*MemberStats, error) {
	pending, err := s.requestRepo.CountByUserAndStatus(userID, models.RequestPending)
	if err != nil {
		return nil, err
	}
	approved, err := s.requestRepo.CountByUserAndStatus(userID, models.RequestApproved)
	if err != nil {
		return nil, err
	}
	rejected, err := s.requestRepo.CountByUserAndStatus(userID, models.RequestRejected)
	if err != nil {
		return nil, err
	}
	total, err := s.requestRepo.SumApprovedAmountByUser(userID)
	if err != nil {
		return nil, err
	}

	return &MemberStats{
		PendingRequests:  pending,
		ApprovedRequests: approved,
		RejectedRequests: rejected,
		TotalApproved:    total,
	}, nil
}
