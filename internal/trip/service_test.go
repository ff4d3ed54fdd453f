package trip_test

import (
	"context"
	"log/slog"
	"os"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/transport-management/internal"
	"github.com/frahmantamala/transport-management/internal/auth"
	"github.com/frahmantamala/transport-management/internal/core/events"
	"github.com/frahmantamala/transport-management/internal/trip"
)

type mockTripRepository struct {
	trips       map[int64]*trip.Trip
	nextID      int64
	createError error
	// forceNotApplied simulates losing a transition race: the guarded
	// update reports zero rows even though the read saw the pre-state.
	forceNotApplied bool
	assignResult    *trip.Trip
	assignError     error
}

func newMockTripRepository() *mockTripRepository {
	return &mockTripRepository{
		trips:  make(map[int64]*trip.Trip),
		nextID: 1,
	}
}

func (m *mockTripRepository) Create(t *trip.Trip) error {
	if m.createError != nil {
		return m.createError
	}
	t.ID = m.nextID
	m.nextID++
	t.CreatedAt = time.Now()
	t.UpdatedAt = t.CreatedAt
	cp := *t
	m.trips[t.ID] = &cp
	return nil
}

func (m *mockTripRepository) GetByID(id int64) (*trip.Trip, error) {
	t, ok := m.trips[id]
	if !ok {
		return nil, trip.ErrTripNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *mockTripRepository) ListByRequester(requesterID int64, limit, offset int) ([]*trip.Trip, error) {
	var out []*trip.Trip
	for _, t := range m.trips {
		if t.RequesterID == requesterID {
			cp := *t
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *mockTripRepository) ListAll(limit, offset int) ([]*trip.Trip, error) {
	var out []*trip.Trip
	for _, t := range m.trips {
		cp := *t
		out = append(out, &cp)
	}
	return out, nil
}

func (m *mockTripRepository) ListByStatus(status trip.Status, limit, offset int) ([]*trip.Trip, error) {
	var out []*trip.Trip
	for _, t := range m.trips {
		if t.Status == status {
			cp := *t
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *mockTripRepository) ApplyStatus(id int64, change trip.StatusChange) (bool, error) {
	if m.forceNotApplied {
		return false, nil
	}
	t, ok := m.trips[id]
	if !ok || t.Status != change.From {
		return false, nil
	}
	t.Status = change.To
	if change.ApprovedBy != nil {
		t.ApprovedByID = change.ApprovedBy
	}
	if change.TouchRejection {
		t.RejectionReason = change.RejectionReason
	}
	t.UpdatedAt = time.Now()
	return true, nil
}

func (m *mockTripRepository) Assign(id int64, driverID, vehicleID int64) (*trip.Trip, error) {
	if m.assignError != nil {
		return nil, m.assignError
	}
	if m.assignResult != nil {
		return m.assignResult, nil
	}
	t, ok := m.trips[id]
	if !ok {
		return nil, trip.ErrTripNotFound
	}
	if t.Status != trip.StatusManagerApproved {
		return nil, internal.NewStateTransitionError("trip", string(t.Status), string(trip.StatusTransportAssigned))
	}
	t.Status = trip.StatusTransportAssigned
	t.DriverID = &driverID
	t.VehicleID = &vehicleID
	cp := *t
	return &cp, nil
}

type mockProfileAPI struct {
	department string
	company    string
	err        error
}

func (m *mockProfileAPI) DepartmentFor(userID int64) (string, string, error) {
	return m.department, m.company, m.err
}

type mockEventBus struct {
	published []events.Event
}

func (m *mockEventBus) PublishSync(ctx context.Context, event events.Event) error {
	m.published = append(m.published, event)
	return nil
}

func (m *mockEventBus) lastEventType() string {
	if len(m.published) == 0 {
		return ""
	}
	return m.published[len(m.published)-1].EventType()
}

var _ = Describe("TripService", func() {
	var (
		service  *trip.Service
		mockRepo *mockTripRepository
		profiles *mockProfileAPI
		bus      *mockEventBus

		employee  *auth.User
		manager   *auth.User
		operator  *auth.User
		stranger  *auth.User
		validBase time.Time
	)

	BeforeEach(func() {
		mockRepo = newMockTripRepository()
		profiles = &mockProfileAPI{department: "Engineering", company: "PT Nusantara"}
		bus = &mockEventBus{}
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = trip.NewService(mockRepo, profiles, bus, logger)

		employee = &auth.User{ID: 1, Role: auth.RoleEmployee}
		manager = &auth.User{ID: 2, Role: auth.RoleManager}
		operator = &auth.User{ID: 3, Role: auth.RoleTransport}
		stranger = &auth.User{ID: 4, Role: auth.RoleEmployee}
		validBase = time.Date(2025, 8, 12, 9, 0, 0, 0, time.UTC)
	})

	validDTO := func() trip.CreateTripDTO {
		return trip.CreateTripDTO{
			Purpose:  "client visit",
			FromLoc:  "HQ",
			ToLoc:    "Client site",
			FromTime: time.Date(2025, 8, 12, 9, 0, 0, 0, time.UTC),
			ToTime:   time.Date(2025, 8, 12, 11, 0, 0, 0, time.UTC),
		}
	}

	createRequested := func() *trip.Trip {
		t, err := service.Create(context.Background(), employee, validDTO())
		Expect(err).ToNot(HaveOccurred())
		return t
	}

	approve := func(id int64) *trip.Trip {
		t, err := service.Decide(context.Background(), manager, id, trip.DecideTripDTO{Decision: trip.DecisionApprove})
		Expect(err).ToNot(HaveOccurred())
		return t
	}

	Describe("Create", func() {
		It("creates a requested trip with the requester's department", func() {
			result := createRequested()

			Expect(result.Status).To(Equal(trip.StatusRequested))
			Expect(result.RequesterID).To(Equal(employee.ID))
			Expect(result.Department).To(Equal("Engineering"))
			Expect(result.Company).To(Equal("PT Nusantara"))
			Expect(bus.lastEventType()).To(Equal(events.EventTypeTripRequested))
		})

		It("prefers an explicitly supplied company", func() {
			dto := validDTO()
			dto.Company = "PT Client"
			result, err := service.Create(context.Background(), employee, dto)

			Expect(err).ToNot(HaveOccurred())
			Expect(result.Company).To(Equal("PT Client"))
		})

		It("rejects transport staff as requesters", func() {
			_, err := service.Create(context.Background(), operator, validDTO())

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(403))
		})

		It("rejects an inverted time window", func() {
			dto := validDTO()
			dto.FromTime = validBase.Add(2 * time.Hour)
			dto.ToTime = validBase

			_, err := service.Create(context.Background(), employee, dto)

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeInvalidWindow))
		})
	})

	Describe("Decide", func() {
		It("approves a requested trip and records the approver", func() {
			t := createRequested()

			updated := approve(t.ID)

			Expect(updated.Status).To(Equal(trip.StatusManagerApproved))
			Expect(updated.ApprovedByID).ToNot(BeNil())
			Expect(*updated.ApprovedByID).To(Equal(manager.ID))
			Expect(bus.lastEventType()).To(Equal(events.EventTypeTripApproved))
		})

		It("rejects with a reason", func() {
			t := createRequested()

			reason := "budget freeze"
			updated, err := service.Decide(context.Background(), manager, t.ID, trip.DecideTripDTO{
				Decision: trip.DecisionReject,
				Reason:   &reason,
			})

			Expect(err).ToNot(HaveOccurred())
			Expect(updated.Status).To(Equal(trip.StatusManagerRejected))
			Expect(updated.RejectionReason).ToNot(BeNil())
			Expect(*updated.RejectionReason).To(Equal(reason))
			Expect(bus.lastEventType()).To(Equal(events.EventTypeTripRejected))
		})

		It("clears an earlier rejection reason on approval", func() {
			t := createRequested()
			reason := "stale"
			stored := mockRepo.trips[t.ID]
			stored.RejectionReason = &reason

			updated := approve(t.ID)

			Expect(updated.RejectionReason).To(BeNil())
		})

		It("refuses employees", func() {
			t := createRequested()

			_, err := service.Decide(context.Background(), employee, t.ID, trip.DecideTripDTO{Decision: trip.DecisionApprove})

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(403))
		})

		It("refuses to decide an already approved trip", func() {
			t := createRequested()
			approve(t.ID)

			_, err := service.Decide(context.Background(), manager, t.ID, trip.DecideTripDTO{Decision: trip.DecisionApprove})

			Expect(internal.IsStateTransitionError(err)).To(BeTrue())
		})

		It("surfaces a conflict to the loser of a decision race", func() {
			t := createRequested()
			mockRepo.forceNotApplied = true

			_, err := service.Decide(context.Background(), manager, t.ID, trip.DecideTripDTO{Decision: trip.DecisionApprove})

			Expect(internal.IsStateTransitionError(err)).To(BeTrue())
		})
	})

	Describe("Assign", func() {
		It("books driver and vehicle on an approved trip", func() {
			t := createRequested()
			approve(t.ID)

			updated, err := service.Assign(context.Background(), operator, t.ID, trip.AssignTripDTO{DriverID: 7, VehicleID: 9})

			Expect(err).ToNot(HaveOccurred())
			Expect(updated.Status).To(Equal(trip.StatusTransportAssigned))
			Expect(*updated.DriverID).To(Equal(int64(7)))
			Expect(*updated.VehicleID).To(Equal(int64(9)))
			Expect(bus.lastEventType()).To(Equal(events.EventTypeTripAssigned))
		})

		It("refuses managers", func() {
			t := createRequested()
			approve(t.ID)

			_, err := service.Assign(context.Background(), manager, t.ID, trip.AssignTripDTO{DriverID: 7, VehicleID: 9})

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(403))
		})

		It("refuses to assign a requested trip", func() {
			t := createRequested()

			_, err := service.Assign(context.Background(), operator, t.ID, trip.AssignTripDTO{DriverID: 7, VehicleID: 9})

			Expect(internal.IsStateTransitionError(err)).To(BeTrue())
		})

		It("passes double-booking conflicts through untouched", func() {
			t := createRequested()
			approve(t.ID)
			mockRepo.assignError = trip.ErrDriverConflict

			_, err := service.Assign(context.Background(), operator, t.ID, trip.AssignTripDTO{DriverID: 7, VehicleID: 9})

			Expect(err).To(Equal(trip.ErrDriverConflict))
		})
	})

	Describe("Start and Complete", func() {
		It("walks assigned -> in_progress -> completed", func() {
			t := createRequested()
			approve(t.ID)
			_, err := service.Assign(context.Background(), operator, t.ID, trip.AssignTripDTO{DriverID: 7, VehicleID: 9})
			Expect(err).ToNot(HaveOccurred())

			started, err := service.Start(context.Background(), operator, t.ID)
			Expect(err).ToNot(HaveOccurred())
			Expect(started.Status).To(Equal(trip.StatusInProgress))

			completed, err := service.Complete(context.Background(), operator, t.ID)
			Expect(err).ToNot(HaveOccurred())
			Expect(completed.Status).To(Equal(trip.StatusCompleted))
			Expect(bus.lastEventType()).To(Equal(events.EventTypeTripCompleted))
		})

		It("refuses to complete a trip that never started", func() {
			t := createRequested()
			approve(t.ID)
			_, err := service.Assign(context.Background(), operator, t.ID, trip.AssignTripDTO{DriverID: 7, VehicleID: 9})
			Expect(err).ToNot(HaveOccurred())

			_, err = service.Complete(context.Background(), operator, t.ID)

			Expect(internal.IsStateTransitionError(err)).To(BeTrue())
		})
	})

	Describe("Cancel", func() {
		It("lets the owner cancel a requested trip", func() {
			t := createRequested()

			updated, err := service.Cancel(context.Background(), employee, t.ID)

			Expect(err).ToNot(HaveOccurred())
			Expect(updated.Status).To(Equal(trip.StatusCancelled))
			Expect(bus.lastEventType()).To(Equal(events.EventTypeTripCancelled))
		})

		It("lets the owner cancel after approval but before assignment", func() {
			t := createRequested()
			approve(t.ID)

			updated, err := service.Cancel(context.Background(), employee, t.ID)

			Expect(err).ToNot(HaveOccurred())
			Expect(updated.Status).To(Equal(trip.StatusCancelled))
		})

		It("refuses another employee", func() {
			t := createRequested()

			_, err := service.Cancel(context.Background(), stranger, t.ID)

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(403))
		})

		It("refuses once resources are committed", func() {
			t := createRequested()
			approve(t.ID)
			_, err := service.Assign(context.Background(), operator, t.ID, trip.AssignTripDTO{DriverID: 7, VehicleID: 9})
			Expect(err).ToNot(HaveOccurred())

			_, err = service.Cancel(context.Background(), employee, t.ID)

			Expect(internal.IsStateTransitionError(err)).To(BeTrue())
		})
	})

	Describe("GetByID", func() {
		It("hides other employees' trips", func() {
			t := createRequested()

			_, err := service.GetByID(stranger, t.ID)

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(403))
		})

		It("shows staff any trip", func() {
			t := createRequested()

			got, err := service.GetByID(manager, t.ID)

			Expect(err).ToNot(HaveOccurred())
			Expect(got.ID).To(Equal(t.ID))
		})
	})
})
