package fleet_test

import (
	"log/slog"
	"os"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/transport-management/internal"
	"github.com/frahmantamala/transport-management/internal/auth"
	"github.com/frahmantamala/transport-management/internal/fleet"
)

func TestFleet(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Fleet Suite")
}

type mockFleetRepository struct {
	drivers  map[int64]*fleet.Driver
	vehicles map[int64]*fleet.Vehicle
	entitled map[int64]*fleet.EntitledVehicle
	nextID   int64

	// referencedDrivers marks drivers some trip points at; hard delete must
	// refuse them.
	referencedDrivers  map[int64]bool
	referencedVehicles map[int64]bool
}

func newMockFleetRepository() *mockFleetRepository {
	return &mockFleetRepository{
		drivers:            make(map[int64]*fleet.Driver),
		vehicles:           make(map[int64]*fleet.Vehicle),
		entitled:           make(map[int64]*fleet.EntitledVehicle),
		nextID:             1,
		referencedDrivers:  make(map[int64]bool),
		referencedVehicles: make(map[int64]bool),
	}
}

func (m *mockFleetRepository) CreateDriver(driver *fleet.Driver) error {
	driver.ID = m.nextID
	m.nextID++
	cp := *driver
	m.drivers[driver.ID] = &cp
	return nil
}

func (m *mockFleetRepository) UpdateDriver(id int64, dto fleet.UpdateDriverDTO) (*fleet.Driver, error) {
	d, ok := m.drivers[id]
	if !ok {
		return nil, fleet.ErrDriverNotFound
	}
	if dto.Name != nil {
		d.Name = *dto.Name
	}
	if dto.Phone != nil {
		d.Phone = *dto.Phone
	}
	if dto.LicenseNo != nil {
		d.LicenseNo = *dto.LicenseNo
	}
	cp := *d
	return &cp, nil
}

func (m *mockFleetRepository) GetDriver(id int64) (*fleet.Driver, error) {
	d, ok := m.drivers[id]
	if !ok {
		return nil, fleet.ErrDriverNotFound
	}
	cp := *d
	return &cp, nil
}

func (m *mockFleetRepository) ListDrivers(includeInactive bool) ([]*fleet.Driver, error) {
	var out []*fleet.Driver
	for _, d := range m.drivers {
		if d.Active || includeInactive {
			cp := *d
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *mockFleetRepository) SetDriverActive(id int64, active bool) (*fleet.Driver, error) {
	d, ok := m.drivers[id]
	if !ok {
		return nil, fleet.ErrDriverNotFound
	}
	d.Active = active
	cp := *d
	return &cp, nil
}

func (m *mockFleetRepository) DeleteDriver(id int64) error {
	if _, ok := m.drivers[id]; !ok {
		return fleet.ErrDriverNotFound
	}
	if m.referencedDrivers[id] {
		return fleet.ErrDriverReferenced
	}
	delete(m.drivers, id)
	return nil
}

func (m *mockFleetRepository) CreateVehicle(vehicle *fleet.Vehicle) error {
	vehicle.ID = m.nextID
	m.nextID++
	cp := *vehicle
	m.vehicles[vehicle.ID] = &cp
	return nil
}

func (m *mockFleetRepository) UpdateVehicle(id int64, dto fleet.UpdateVehicleDTO) (*fleet.Vehicle, error) {
	v, ok := m.vehicles[id]
	if !ok {
		return nil, fleet.ErrVehicleNotFound
	}
	if dto.Number != nil {
		v.Number = *dto.Number
	}
	if dto.Type != nil {
		v.Type = *dto.Type
	}
	if dto.Capacity != nil {
		v.Capacity = *dto.Capacity
	}
	cp := *v
	return &cp, nil
}

func (m *mockFleetRepository) GetVehicle(id int64) (*fleet.Vehicle, error) {
	v, ok := m.vehicles[id]
	if !ok {
		return nil, fleet.ErrVehicleNotFound
	}
	cp := *v
	return &cp, nil
}

func (m *mockFleetRepository) ListVehicles(includeInactive bool) ([]*fleet.Vehicle, error) {
	var out []*fleet.Vehicle
	for _, v := range m.vehicles {
		if v.Active || includeInactive {
			cp := *v
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *mockFleetRepository) SetVehicleActive(id int64, active bool) (*fleet.Vehicle, error) {
	v, ok := m.vehicles[id]
	if !ok {
		return nil, fleet.ErrVehicleNotFound
	}
	v.Active = active
	cp := *v
	return &cp, nil
}

func (m *mockFleetRepository) DeleteVehicle(id int64) error {
	if _, ok := m.vehicles[id]; !ok {
		return fleet.ErrVehicleNotFound
	}
	if m.referencedVehicles[id] {
		return fleet.ErrVehicleReferenced
	}
	delete(m.vehicles, id)
	return nil
}

func (m *mockFleetRepository) CreateEntitledVehicle(ev *fleet.EntitledVehicle) error {
	ev.ID = m.nextID
	m.nextID++
	cp := *ev
	m.entitled[ev.ID] = &cp
	return nil
}

func (m *mockFleetRepository) ListEntitledVehiclesByUser(userID int64) ([]*fleet.EntitledVehicle, error) {
	var out []*fleet.EntitledVehicle
	for _, ev := range m.entitled {
		if ev.UserID == userID {
			cp := *ev
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *mockFleetRepository) SetEntitledVehicleActive(id int64, active bool) (*fleet.EntitledVehicle, error) {
	ev, ok := m.entitled[id]
	if !ok {
		return nil, fleet.ErrEntitledVehicleNotFound
	}
	ev.Active = active
	cp := *ev
	return &cp, nil
}

type mockUserGateway struct {
	users map[int64]bool
}

func (m *mockUserGateway) Exists(userID int64) error {
	if !m.users[userID] {
		return internal.NewNotFoundError("user not found", internal.ErrCodeUserNotFound)
	}
	return nil
}

var _ = Describe("FleetService", func() {
	var (
		service  *fleet.Service
		mockRepo *mockFleetRepository
		users    *mockUserGateway

		transport *auth.User
		admin     *auth.User
		employee  *auth.User
	)

	BeforeEach(func() {
		mockRepo = newMockFleetRepository()
		users = &mockUserGateway{users: map[int64]bool{1: true}}
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = fleet.NewService(mockRepo, users, logger)

		transport = &auth.User{ID: 3, Role: auth.RoleTransport}
		admin = &auth.User{ID: 4, Role: auth.RoleAdmin}
		employee = &auth.User{ID: 1, Role: auth.RoleEmployee}
	})

	createDriver := func() *fleet.Driver {
		driver, err := service.CreateDriver(transport, fleet.CreateDriverDTO{
			Name:      "Budi",
			Phone:     "+62-811-111",
			LicenseNo: "SIM-A-12345",
		})
		Expect(err).ToNot(HaveOccurred())
		return driver
	}

	Describe("Drivers", func() {
		It("creates an active driver", func() {
			driver := createDriver()

			Expect(driver.ID).ToNot(BeZero())
			Expect(driver.Active).To(BeTrue())
		})

		It("refuses employees", func() {
			_, err := service.CreateDriver(employee, fleet.CreateDriverDTO{Name: "X", LicenseNo: "Y"})

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeInsufficientRole))
		})

		It("updates only the provided fields", func() {
			driver := createDriver()
			phone := "+62-822-222"

			updated, err := service.UpdateDriver(transport, driver.ID, fleet.UpdateDriverDTO{Phone: &phone})

			Expect(err).ToNot(HaveOccurred())
			Expect(updated.Phone).To(Equal(phone))
			Expect(updated.Name).To(Equal(driver.Name))
		})

		It("rejects an empty update", func() {
			driver := createDriver()

			_, err := service.UpdateDriver(transport, driver.ID, fleet.UpdateDriverDTO{})

			Expect(err).To(HaveOccurred())
		})

		It("hides deactivated drivers from the default listing", func() {
			driver := createDriver()
			_, err := service.DeactivateDriver(transport, driver.ID)
			Expect(err).ToNot(HaveOccurred())

			active, err := service.ListDrivers(transport, false)
			Expect(err).ToNot(HaveOccurred())
			Expect(active).To(BeEmpty())

			all, err := service.ListDrivers(transport, true)
			Expect(err).ToNot(HaveOccurred())
			Expect(all).To(HaveLen(1))
		})

		It("deletes an unreferenced driver", func() {
			driver := createDriver()

			Expect(service.DeleteDriver(transport, driver.ID)).To(Succeed())

			_, err := mockRepo.GetDriver(driver.ID)
			Expect(err).To(Equal(fleet.ErrDriverNotFound))
		})

		It("refuses to delete a driver with trip history", func() {
			driver := createDriver()
			mockRepo.referencedDrivers[driver.ID] = true

			err := service.DeleteDriver(transport, driver.ID)

			Expect(err).To(Equal(fleet.ErrDriverReferenced))
		})
	})

	Describe("Vehicles", func() {
		It("creates and deactivates a vehicle", func() {
			vehicle, err := service.CreateVehicle(transport, fleet.CreateVehicleDTO{
				Number:   "B 1234 ABC",
				Type:     "minibus",
				Capacity: 12,
			})
			Expect(err).ToNot(HaveOccurred())

			deactivated, err := service.DeactivateVehicle(transport, vehicle.ID)
			Expect(err).ToNot(HaveOccurred())
			Expect(deactivated.Active).To(BeFalse())
		})

		It("rejects a negative capacity", func() {
			_, err := service.CreateVehicle(transport, fleet.CreateVehicleDTO{
				Number:   "B 1234 ABC",
				Type:     "minibus",
				Capacity: -1,
			})

			Expect(err).To(HaveOccurred())
		})

		It("refuses to delete a vehicle with trip history", func() {
			vehicle, err := service.CreateVehicle(transport, fleet.CreateVehicleDTO{
				Number: "B 1234 ABC",
				Type:   "minibus",
			})
			Expect(err).ToNot(HaveOccurred())
			mockRepo.referencedVehicles[vehicle.ID] = true

			Expect(service.DeleteVehicle(transport, vehicle.ID)).To(Equal(fleet.ErrVehicleReferenced))
		})
	})

	Describe("EntitledVehicles", func() {
		It("registers an entitlement for an existing user", func() {
			ev, err := service.CreateEntitledVehicle(admin, fleet.CreateEntitledVehicleDTO{
				UserID:        1,
				VehicleNumber: "B 9999 ZZ",
				VehicleType:   "sedan",
			})

			Expect(err).ToNot(HaveOccurred())
			Expect(ev.Active).To(BeTrue())
			Expect(ev.UserID).To(Equal(int64(1)))
		})

		It("requires admin", func() {
			_, err := service.CreateEntitledVehicle(transport, fleet.CreateEntitledVehicleDTO{
				UserID:        1,
				VehicleNumber: "B 9999 ZZ",
			})

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeInsufficientRole))
		})

		It("refuses an unknown user", func() {
			_, err := service.CreateEntitledVehicle(admin, fleet.CreateEntitledVehicleDTO{
				UserID:        999,
				VehicleNumber: "B 9999 ZZ",
			})

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeUserNotFound))
		})

		It("lets employees list their own entitlements only", func() {
			_, err := service.CreateEntitledVehicle(admin, fleet.CreateEntitledVehicleDTO{
				UserID:        1,
				VehicleNumber: "B 9999 ZZ",
			})
			Expect(err).ToNot(HaveOccurred())

			own, err := service.ListEntitledVehicles(employee, 0)
			Expect(err).ToNot(HaveOccurred())
			Expect(own).To(HaveLen(1))

			_, err = service.ListEntitledVehicles(employee, 2)
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeNotResourceOwner))
		})
	})
})
