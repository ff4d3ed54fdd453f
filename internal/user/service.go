package user

import (
	"log/slog"

	"github.com/frahmantamala/transport-management/internal"
	"github.com/frahmantamala/transport-management/internal/auth"
)

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// GetProfile returns one user's profile; non-staff only see themselves.
func (s *Service) GetProfile(actor *auth.User, userID int64) (*Profile, error) {
	if userID != actor.ID && !actor.IsStaff() {
		return nil, internal.NewForbiddenError("not allowed to view another user's profile", internal.ErrCodeNotResourceOwner)
	}
	return s.repo.GetByID(userID)
}

// List returns user profiles for staff.
func (s *Service) List(actor *auth.User, limit, offset int) ([]*Profile, error) {
	if !actor.IsStaff() {
		return nil, internal.NewForbiddenError("staff role required", internal.ErrCodeInsufficientRole)
	}
	profiles, err := s.repo.List(limit, offset)
	if err != nil {
		s.logger.Error("failed to list users", "error", err)
		return nil, internal.NewInternalError("failed to list users", err)
	}
	return profiles, nil
}

// DepartmentFor resolves the department and company recorded on trips at
// request time.
func (s *Service) DepartmentFor(userID int64) (string, string, error) {
	profile, err := s.repo.GetByID(userID)
	if err != nil {
		return "", "", err
	}
	return profile.Department, profile.Company, nil
}
