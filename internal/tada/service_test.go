package tada_test

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"

	"github.com/frahmantamala/transport-management/internal"
	"github.com/frahmantamala/transport-management/internal/auth"
	"github.com/frahmantamala/transport-management/internal/core/events"
	"github.com/frahmantamala/transport-management/internal/tada"
	"github.com/frahmantamala/transport-management/internal/trip"
)

func TestTada(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Tada Suite")
}

type mockClaimRepository struct {
	claims      map[int64]*tada.Claim
	nextID      int64
	createError error
}

func newMockClaimRepository() *mockClaimRepository {
	return &mockClaimRepository{
		claims: make(map[int64]*tada.Claim),
		nextID: 1,
	}
}

// CreateBatch mirrors the transactional repository: any error leaves the
// store untouched.
func (m *mockClaimRepository) CreateBatch(claims []*tada.Claim) error {
	if m.createError != nil {
		return m.createError
	}
	for _, c := range claims {
		c.ID = m.nextID
		m.nextID++
		c.CreatedAt = time.Now()
		c.UpdatedAt = c.CreatedAt
		cp := *c
		m.claims[c.ID] = &cp
	}
	return nil
}

func (m *mockClaimRepository) GetByID(id int64) (*tada.Claim, error) {
	c, ok := m.claims[id]
	if !ok {
		return nil, tada.ErrClaimNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *mockClaimRepository) ListByTrip(tripID int64) ([]*tada.Claim, error) {
	var out []*tada.Claim
	for _, c := range m.claims {
		if c.TripID == tripID {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *mockClaimRepository) ListByStatus(status tada.Status, limit, offset int) ([]*tada.Claim, error) {
	var out []*tada.Claim
	for _, c := range m.claims {
		if c.Status == status {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *mockClaimRepository) ApplyDecision(id int64, change tada.DecisionChange) (bool, error) {
	c, ok := m.claims[id]
	if !ok || c.Status != tada.StatusPending {
		return false, nil
	}
	if change.Approve {
		c.Status = tada.StatusApproved
	} else {
		c.Status = tada.StatusRejected
		c.RejectionReason = change.Reason
	}
	c.ApprovedByID = &change.ApprovedBy
	c.ProcessedAt = &change.ProcessedAt
	return true, nil
}

type mockTripGateway struct {
	requesters map[int64]int64
}

func (m *mockTripGateway) RequesterOf(tripID int64) (int64, error) {
	requesterID, ok := m.requesters[tripID]
	if !ok {
		return 0, trip.ErrTripNotFound
	}
	return requesterID, nil
}

type mockBus struct {
	published []events.Event
}

func (m *mockBus) PublishSync(ctx context.Context, event events.Event) error {
	m.published = append(m.published, event)
	return nil
}

var _ = Describe("TadaService", func() {
	var (
		service  *tada.Service
		mockRepo *mockClaimRepository
		gateway  *mockTripGateway
		bus      *mockBus

		employee *auth.User
		manager  *auth.User
		admin    *auth.User
	)

	const ownedTripID = int64(10)

	BeforeEach(func() {
		mockRepo = newMockClaimRepository()
		gateway = &mockTripGateway{requesters: map[int64]int64{ownedTripID: 1, 11: 99}}
		bus = &mockBus{}
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = tada.NewService(mockRepo, gateway, bus, logger)

		employee = &auth.User{ID: 1, Role: auth.RoleEmployee}
		manager = &auth.User{ID: 2, Role: auth.RoleManager}
		admin = &auth.User{ID: 3, Role: auth.RoleAdmin}
	})

	fuelClaim := func(amount int64) tada.CreateClaimDTO {
		return tada.CreateClaimDTO{
			ClaimType:   "fuel",
			Amount:      decimal.NewFromInt(amount),
			Description: "fuel on the way back",
		}
	}

	Describe("Create", func() {
		It("files a pending claim on the actor's own trip", func() {
			claim, err := service.Create(context.Background(), employee, ownedTripID, fuelClaim(50000))

			Expect(err).ToNot(HaveOccurred())
			Expect(claim.Status).To(Equal(tada.StatusPending))
			Expect(claim.TripID).To(Equal(ownedTripID))
			Expect(bus.published).To(HaveLen(1))
			Expect(bus.published[0].EventType()).To(Equal(events.EventTypeClaimSubmitted))
		})

		It("refuses an employee filing on someone else's trip", func() {
			_, err := service.Create(context.Background(), employee, 11, fuelClaim(50000))

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeNotResourceOwner))
			Expect(mockRepo.claims).To(BeEmpty())
		})

		It("lets an admin file on any trip", func() {
			_, err := service.Create(context.Background(), admin, 11, fuelClaim(50000))

			Expect(err).ToNot(HaveOccurred())
		})

		It("refuses an unknown trip", func() {
			_, err := service.Create(context.Background(), employee, 999, fuelClaim(50000))

			Expect(err).To(Equal(trip.ErrTripNotFound))
		})

		It("rejects a non-positive amount", func() {
			_, err := service.Create(context.Background(), employee, ownedTripID, fuelClaim(0))

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeInvalidAmount))
		})

		It("rejects an unknown claim type", func() {
			dto := fuelClaim(50000)
			dto.ClaimType = "souvenirs"

			_, err := service.Create(context.Background(), employee, ownedTripID, dto)

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeInvalidClaimType))
		})
	})

	Describe("CreateBatch", func() {
		It("persists every claim of a valid batch", func() {
			dto := tada.CreateBatchDTO{Claims: []tada.CreateClaimDTO{
				fuelClaim(50000), fuelClaim(25000), fuelClaim(10000),
			}}

			claims, err := service.CreateBatch(context.Background(), employee, ownedTripID, dto)

			Expect(err).ToNot(HaveOccurred())
			Expect(claims).To(HaveLen(3))
			Expect(mockRepo.claims).To(HaveLen(3))
			Expect(bus.published).To(HaveLen(3))
		})

		It("writes nothing when one entry is invalid", func() {
			bad := fuelClaim(-5)
			dto := tada.CreateBatchDTO{Claims: []tada.CreateClaimDTO{
				fuelClaim(50000), fuelClaim(25000), fuelClaim(10000), bad,
			}}

			_, err := service.CreateBatch(context.Background(), employee, ownedTripID, dto)

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Details).To(HaveKeyWithValue("claim_index", 3))
			Expect(mockRepo.claims).To(BeEmpty())
			Expect(bus.published).To(BeEmpty())
		})

		It("rejects an empty batch", func() {
			_, err := service.CreateBatch(context.Background(), employee, ownedTripID, tada.CreateBatchDTO{})

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeEmptyBatch))
		})

		It("rejects an oversized batch", func() {
			var claims []tada.CreateClaimDTO
			for i := 0; i <= tada.MaxBatchSize; i++ {
				claims = append(claims, fuelClaim(1000))
			}

			_, err := service.CreateBatch(context.Background(), employee, ownedTripID, tada.CreateBatchDTO{Claims: claims})

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeBatchTooLarge))
		})
	})

	Describe("Decide", func() {
		var claimID int64

		BeforeEach(func() {
			claim, err := service.Create(context.Background(), employee, ownedTripID, fuelClaim(50000))
			Expect(err).ToNot(HaveOccurred())
			claimID = claim.ID
		})

		It("approves a pending claim", func() {
			updated, err := service.Decide(context.Background(), manager, claimID, tada.DecideClaimDTO{Decision: tada.DecisionApprove})

			Expect(err).ToNot(HaveOccurred())
			Expect(updated.Status).To(Equal(tada.StatusApproved))
			Expect(*updated.ApprovedByID).To(Equal(manager.ID))
			Expect(updated.ProcessedAt).ToNot(BeNil())
		})

		It("rejects with a reason", func() {
			reason := "no receipt"
			updated, err := service.Decide(context.Background(), manager, claimID, tada.DecideClaimDTO{
				Decision: tada.DecisionReject,
				Reason:   &reason,
			})

			Expect(err).ToNot(HaveOccurred())
			Expect(updated.Status).To(Equal(tada.StatusRejected))
			Expect(*updated.RejectionReason).To(Equal(reason))
		})

		It("refuses employees", func() {
			_, err := service.Decide(context.Background(), employee, claimID, tada.DecideClaimDTO{Decision: tada.DecisionApprove})

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(403))
		})

		It("refuses a second decision", func() {
			_, err := service.Decide(context.Background(), manager, claimID, tada.DecideClaimDTO{Decision: tada.DecisionApprove})
			Expect(err).ToNot(HaveOccurred())

			_, err = service.Decide(context.Background(), manager, claimID, tada.DecideClaimDTO{Decision: tada.DecisionReject})

			Expect(internal.IsStateTransitionError(err)).To(BeTrue())
		})
	})

	Describe("ListByTrip", func() {
		It("hides other employees' trip claims", func() {
			other := &auth.User{ID: 42, Role: auth.RoleEmployee}

			_, err := service.ListByTrip(other, ownedTripID)

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeNotResourceOwner))
		})

		It("shows staff any trip's claims", func() {
			_, err := service.Create(context.Background(), employee, ownedTripID, fuelClaim(50000))
			Expect(err).ToNot(HaveOccurred())

			claims, err := service.ListByTrip(manager, ownedTripID)

			Expect(err).ToNot(HaveOccurred())
			Expect(claims).To(HaveLen(1))
		})
	})
})
