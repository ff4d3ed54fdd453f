package availability

import (
	"log/slog"
	"time"

	"github.com/frahmantamala/transport-management/internal"
	"github.com/frahmantamala/transport-management/internal/auth"
)

// Repository reads fleet and trip state for the availability computation.
// ConflictingDriverIDs/ConflictingVehicleIDs implement the half-open overlap
// predicate against trips in an active assignment status.
type Repository interface {
	ActiveDrivers() ([]*Driver, error)
	ActiveVehicles() ([]*Vehicle, error)
	ConflictingDriverIDs(from, to time.Time) ([]int64, error)
	ConflictingVehicleIDs(from, to time.Time) ([]int64, error)
}

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

// FindAvailable returns drivers and vehicles free for the given window.
// This is the advisory pre-assignment query; the binding conflict check runs
// again inside the assignment transaction.
func (s *Service) FindAvailable(actor *auth.User, window Window) (*Availability, error) {
	if !actor.IsStaff() {
		s.logger.Warn("availability query denied", "user_id", actor.ID, "role", actor.Role)
		return nil, internal.NewForbiddenError("staff role required", internal.ErrCodeInsufficientRole)
	}

	if err := window.Validate(); err != nil {
		return nil, err
	}

	drivers, err := s.repo.ActiveDrivers()
	if err != nil {
		s.logger.Error("failed to load active drivers", "error", err)
		return nil, internal.NewInternalError("failed to load drivers", err)
	}

	vehicles, err := s.repo.ActiveVehicles()
	if err != nil {
		s.logger.Error("failed to load active vehicles", "error", err)
		return nil, internal.NewInternalError("failed to load vehicles", err)
	}

	busyDrivers, err := s.repo.ConflictingDriverIDs(window.FromTime, window.ToTime)
	if err != nil {
		s.logger.Error("driver conflict query failed", "error", err)
		return nil, internal.NewInternalError("failed to compute driver conflicts", err)
	}

	busyVehicles, err := s.repo.ConflictingVehicleIDs(window.FromTime, window.ToTime)
	if err != nil {
		s.logger.Error("vehicle conflict query failed", "error", err)
		return nil, internal.NewInternalError("failed to compute vehicle conflicts", err)
	}

	result := &Availability{
		FromTime: window.FromTime,
		ToTime:   window.ToTime,
		Drivers:  make([]*Driver, 0, len(drivers)),
		Vehicles: make([]*Vehicle, 0, len(vehicles)),
	}

	busyDriverSet := toSet(busyDrivers)
	for _, d := range drivers {
		if !busyDriverSet[d.ID] {
			result.Drivers = append(result.Drivers, d)
		}
	}

	busyVehicleSet := toSet(busyVehicles)
	for _, v := range vehicles {
		if !busyVehicleSet[v.ID] {
			result.Vehicles = append(result.Vehicles, v)
		}
	}

	s.logger.Info("availability computed",
		"from", window.FromTime,
		"to", window.ToTime,
		"available_drivers", len(result.Drivers),
		"available_vehicles", len(result.Vehicles))

	return result, nil
}

func toSet(ids []int64) map[int64]bool {
	set := make(map[int64]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
