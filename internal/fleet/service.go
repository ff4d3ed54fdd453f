package fleet

import (
	"log/slog"

	"github.com/frahmantamala/transport-management/internal"
	"github.com/frahmantamala/transport-management/internal/auth"
)

type Repository interface {
	CreateDriver(driver *Driver) error
	UpdateDriver(id int64, dto UpdateDriverDTO) (*Driver, error)
	GetDriver(id int64) (*Driver, error)
	ListDrivers(includeInactive bool) ([]*Driver, error)
	SetDriverActive(id int64, active bool) (*Driver, error)
	// DeleteDriver hard-deletes the driver; ErrDriverReferenced when any
	// trip still points at them.
	DeleteDriver(id int64) error

	CreateVehicle(vehicle *Vehicle) error
	UpdateVehicle(id int64, dto UpdateVehicleDTO) (*Vehicle, error)
	GetVehicle(id int64) (*Vehicle, error)
	ListVehicles(includeInactive bool) ([]*Vehicle, error)
	SetVehicleActive(id int64, active bool) (*Vehicle, error)
	DeleteVehicle(id int64) error

	CreateEntitledVehicle(ev *EntitledVehicle) error
	ListEntitledVehiclesByUser(userID int64) ([]*EntitledVehicle, error)
	SetEntitledVehicleActive(id int64, active bool) (*EntitledVehicle, error)
}

// UserGateway verifies entitlement targets exist.
type UserGateway interface {
	// Exists fails when no active user has the ID.
	Exists(userID int64) error
}

type Service struct {
	repo   Repository
	users  UserGateway
	logger *slog.Logger
}

func NewService(repo Repository, users UserGateway, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		users:  users,
		logger: logger,
	}
}

func (s *Service) requireTransport(actor *auth.User) error {
	if !actor.HasRole(auth.RoleTransport, auth.RoleAdmin) {
		s.logger.Warn("fleet operation denied", "user_id", actor.ID, "role", actor.Role)
		return internal.NewForbiddenError("transport role required", internal.ErrCodeInsufficientRole)
	}
	return nil
}

func (s *Service) CreateDriver(actor *auth.User, dto CreateDriverDTO) (*Driver, error) {
	if err := s.requireTransport(actor); err != nil {
		return nil, err
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	driver := &Driver{
		Name:      dto.Name,
		Phone:     dto.Phone,
		LicenseNo: dto.LicenseNo,
		Active:    true,
	}
	if err := s.repo.CreateDriver(driver); err != nil {
		s.logger.Error("failed to create driver", "error", err)
		return nil, internal.NewInternalError("failed to create driver", err)
	}

	s.logger.Info("driver created", "driver_id", driver.ID, "user_id", actor.ID)
	return driver, nil
}

func (s *Service) UpdateDriver(actor *auth.User, id int64, dto UpdateDriverDTO) (*Driver, error) {
	if err := s.requireTransport(actor); err != nil {
		return nil, err
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	return s.repo.UpdateDriver(id, dto)
}

func (s *Service) ListDrivers(actor *auth.User, includeInactive bool) ([]*Driver, error) {
	if err := s.requireTransport(actor); err != nil {
		return nil, err
	}
	drivers, err := s.repo.ListDrivers(includeInactive)
	if err != nil {
		s.logger.Error("failed to list drivers", "error", err)
		return nil, internal.NewInternalError("failed to list drivers", err)
	}
	return drivers, nil
}

// DeactivateDriver soft-deletes: the driver stays referenceable by past
// trips but disappears from availability.
func (s *Service) DeactivateDriver(actor *auth.User, id int64) (*Driver, error) {
	if err := s.requireTransport(actor); err != nil {
		return nil, err
	}
	return s.repo.SetDriverActive(id, false)
}

func (s *Service) ReactivateDriver(actor *auth.User, id int64) (*Driver, error) {
	if err := s.requireTransport(actor); err != nil {
		return nil, err
	}
	return s.repo.SetDriverActive(id, true)
}

// DeleteDriver removes the driver permanently. Only drivers no trip has
// ever referenced can be deleted; deactivate otherwise.
func (s *Service) DeleteDriver(actor *auth.User, id int64) error {
	if err := s.requireTransport(actor); err != nil {
		return err
	}
	if err := s.repo.DeleteDriver(id); err != nil {
		return err
	}
	s.logger.Info("driver deleted", "driver_id", id, "user_id", actor.ID)
	return nil
}

func (s *Service) CreateVehicle(actor *auth.User, dto CreateVehicleDTO) (*Vehicle, error) {
	if err := s.requireTransport(actor); err != nil {
		return nil, err
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	vehicle := &Vehicle{
		Number:   dto.Number,
		Type:     dto.Type,
		Capacity: dto.Capacity,
		Active:   true,
	}
	if err := s.repo.CreateVehicle(vehicle); err != nil {
		s.logger.Error("failed to create vehicle", "error", err)
		return nil, internal.NewInternalError("failed to create vehicle", err)
	}

	s.logger.Info("vehicle created", "vehicle_id", vehicle.ID, "user_id", actor.ID)
	return vehicle, nil
}

func (s *Service) UpdateVehicle(actor *auth.User, id int64, dto UpdateVehicleDTO) (*Vehicle, error) {
	if err := s.requireTransport(actor); err != nil {
		return nil, err
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	return s.repo.UpdateVehicle(id, dto)
}

func (s *Service) ListVehicles(actor *auth.User, includeInactive bool) ([]*Vehicle, error) {
	if err := s.requireTransport(actor); err != nil {
		return nil, err
	}
	vehicles, err := s.repo.ListVehicles(includeInactive)
	if err != nil {
		s.logger.Error("failed to list vehicles", "error", err)
		return nil, internal.NewInternalError("failed to list vehicles", err)
	}
	return vehicles, nil
}

func (s *Service) DeactivateVehicle(actor *auth.User, id int64) (*Vehicle, error) {
	if err := s.requireTransport(actor); err != nil {
		return nil, err
	}
	return s.repo.SetVehicleActive(id, false)
}

func (s *Service) ReactivateVehicle(actor *auth.User, id int64) (*Vehicle, error) {
	if err := s.requireTransport(actor); err != nil {
		return nil, err
	}
	return s.repo.SetVehicleActive(id, true)
}

func (s *Service) DeleteVehicle(actor *auth.User, id int64) error {
	if err := s.requireTransport(actor); err != nil {
		return err
	}
	if err := s.repo.DeleteVehicle(id); err != nil {
		return err
	}
	s.logger.Info("vehicle deleted", "vehicle_id", id, "user_id", actor.ID)
	return nil
}

// CreateEntitledVehicle registers a vehicle as entitled to an employee.
// Admin only.
func (s *Service) CreateEntitledVehicle(actor *auth.User, dto CreateEntitledVehicleDTO) (*EntitledVehicle, error) {
	if !actor.IsAdmin() {
		s.logger.Warn("entitled vehicle create denied", "user_id", actor.ID, "role", actor.Role)
		return nil, internal.NewForbiddenError("admin role required", internal.ErrCodeInsufficientRole)
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	if err := s.users.Exists(dto.UserID); err != nil {
		return nil, err
	}

	ev := &EntitledVehicle{
		UserID:        dto.UserID,
		VehicleNumber: dto.VehicleNumber,
		VehicleType:   dto.VehicleType,
		Active:        true,
	}
	if err := s.repo.CreateEntitledVehicle(ev); err != nil {
		s.logger.Error("failed to create entitled vehicle", "error", err)
		return nil, internal.NewInternalError("failed to create entitled vehicle", err)
	}

	s.logger.Info("entitled vehicle created", "entitled_vehicle_id", ev.ID, "owner_id", ev.UserID)
	return ev, nil
}

// ListEntitledVehicles returns the caller's own entitlements; staff may
// query any user via userID.
func (s *Service) ListEntitledVehicles(actor *auth.User, userID int64) ([]*EntitledVehicle, error) {
	if userID == 0 {
		userID = actor.ID
	}
	if userID != actor.ID && !actor.IsStaff() {
		return nil, internal.NewForbiddenError("not allowed to view another user's entitled vehicles", internal.ErrCodeNotResourceOwner)
	}

	vehicles, err := s.repo.ListEntitledVehiclesByUser(userID)
	if err != nil {
		s.logger.Error("failed to list entitled vehicles", "error", err, "owner_id", userID)
		return nil, internal.NewInternalError("failed to list entitled vehicles", err)
	}
	return vehicles, nil
}

func (s *Service) DeactivateEntitledVehicle(actor *auth.User, id int64) (*EntitledVehicle, error) {
	if !actor.IsAdmin() {
		return nil, internal.NewForbiddenError("admin role required", internal.ErrCodeInsufficientRole)
	}
	return s.repo.SetEntitledVehicleActive(id, false)
}
