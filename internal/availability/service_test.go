package availability_test

import (
	"log/slog"
	"os"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/transport-management/internal"
	"github.com/frahmantamala/transport-management/internal/auth"
	"github.com/frahmantamala/transport-management/internal/availability"
)

func TestAvailability(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Availability Suite")
}

type mockAvailabilityRepository struct {
	drivers      []*availability.Driver
	vehicles     []*availability.Vehicle
	busyDrivers  []int64
	busyVehicles []int64
}

func (m *mockAvailabilityRepository) ActiveDrivers() ([]*availability.Driver, error) {
	return m.drivers, nil
}

func (m *mockAvailabilityRepository) ActiveVehicles() ([]*availability.Vehicle, error) {
	return m.vehicles, nil
}

func (m *mockAvailabilityRepository) ConflictingDriverIDs(from, to time.Time) ([]int64, error) {
	return m.busyDrivers, nil
}

func (m *mockAvailabilityRepository) ConflictingVehicleIDs(from, to time.Time) ([]int64, error) {
	return m.busyVehicles, nil
}

var _ = Describe("AvailabilityService", func() {
	var (
		service  *availability.Service
		mockRepo *mockAvailabilityRepository

		transport *auth.User
		employee  *auth.User
	)

	window := availability.Window{
		FromTime: time.Date(2026, 3, 9, 9, 0, 0, 0, time.UTC),
		ToTime:   time.Date(2026, 3, 9, 11, 0, 0, 0, time.UTC),
	}

	BeforeEach(func() {
		mockRepo = &mockAvailabilityRepository{
			drivers: []*availability.Driver{
				{ID: 1, Name: "Budi"},
				{ID: 2, Name: "Sari"},
				{ID: 3, Name: "Agus"},
			},
			vehicles: []*availability.Vehicle{
				{ID: 1, Number: "B 1234 ABC"},
				{ID: 2, Number: "B 5678 DEF"},
			},
		}
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = availability.NewService(mockRepo, logger)

		transport = &auth.User{ID: 3, Role: auth.RoleTransport}
		employee = &auth.User{ID: 1, Role: auth.RoleEmployee}
	})

	Describe("FindAvailable", func() {
		It("returns every active driver and vehicle when nothing is booked", func() {
			result, err := service.FindAvailable(transport, window)

			Expect(err).ToNot(HaveOccurred())
			Expect(result.Drivers).To(HaveLen(3))
			Expect(result.Vehicles).To(HaveLen(2))
		})

		It("filters out resources committed to overlapping trips", func() {
			mockRepo.busyDrivers = []int64{2}
			mockRepo.busyVehicles = []int64{1}

			result, err := service.FindAvailable(transport, window)

			Expect(err).ToNot(HaveOccurred())
			Expect(result.Drivers).To(HaveLen(2))
			for _, d := range result.Drivers {
				Expect(d.ID).ToNot(Equal(int64(2)))
			}
			Expect(result.Vehicles).To(HaveLen(1))
			Expect(result.Vehicles[0].ID).To(Equal(int64(2)))
		})

		It("returns empty slices, not nil, when everything is busy", func() {
			mockRepo.busyDrivers = []int64{1, 2, 3}
			mockRepo.busyVehicles = []int64{1, 2}

			result, err := service.FindAvailable(transport, window)

			Expect(err).ToNot(HaveOccurred())
			Expect(result.Drivers).ToNot(BeNil())
			Expect(result.Drivers).To(BeEmpty())
			Expect(result.Vehicles).ToNot(BeNil())
			Expect(result.Vehicles).To(BeEmpty())
		})

		It("refuses employees", func() {
			_, err := service.FindAvailable(employee, window)

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeInsufficientRole))
		})

		It("rejects an inverted window", func() {
			_, err := service.FindAvailable(transport, availability.Window{
				FromTime: window.ToTime,
				ToTime:   window.FromTime,
			})

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeInvalidWindow))
		})

		It("rejects a missing window", func() {
			_, err := service.FindAvailable(transport, availability.Window{})

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeInvalidWindow))
		})
	})
})
