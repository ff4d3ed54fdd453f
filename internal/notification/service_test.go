package notification_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/transport-management/internal"
	"github.com/frahmantamala/transport-management/internal/auth"
	"github.com/frahmantamala/transport-management/internal/core/events"
	"github.com/frahmantamala/transport-management/internal/notification"
)

func TestNotification(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Notification Suite")
}

type mockNotificationRepository struct {
	rows []*notification.Notification
}

// Create mirrors the unique event_id constraint: a replayed event is a
// silent no-op.
func (m *mockNotificationRepository) Create(n *notification.Notification) error {
	for _, existing := range m.rows {
		if existing.EventID == n.EventID {
			return nil
		}
	}
	cp := *n
	m.rows = append(m.rows, &cp)
	return nil
}

func (m *mockNotificationRepository) ListRecent(limit, offset int) ([]*notification.Notification, error) {
	return m.rows, nil
}

func (m *mockNotificationRepository) ListByEntity(entityKind string, entityID int64) ([]*notification.Notification, error) {
	var out []*notification.Notification
	for _, n := range m.rows {
		if n.EntityKind == entityKind && n.EntityID == entityID {
			out = append(out, n)
		}
	}
	return out, nil
}

var _ = Describe("NotificationService", func() {
	var (
		service  *notification.Service
		mockRepo *mockNotificationRepository
		logger   *slog.Logger
	)

	BeforeEach(func() {
		mockRepo = &mockNotificationRepository{}
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = notification.NewService(mockRepo, logger)
	})

	Describe("HandleWorkflowEvent", func() {
		It("persists one audit row per transition event", func() {
			event := events.NewWorkflowEvent(events.EventTypeTripApproved, "trip", 7, 2, "trip approved", map[string]interface{}{
				"status": "manager_approved",
			})

			err := service.HandleWorkflowEvent(context.Background(), event)

			Expect(err).ToNot(HaveOccurred())
			Expect(mockRepo.rows).To(HaveLen(1))

			row := mockRepo.rows[0]
			Expect(row.EventID).To(Equal(event.EventID()))
			Expect(row.EventType).To(Equal(events.EventTypeTripApproved))
			Expect(row.EntityKind).To(Equal("trip"))
			Expect(row.EntityID).To(Equal(int64(7)))
			Expect(row.ActorID).To(Equal(int64(2)))

			var payload map[string]interface{}
			Expect(json.Unmarshal([]byte(row.Payload), &payload)).To(Succeed())
			Expect(payload).To(HaveKeyWithValue("status", "manager_approved"))
		})

		It("ignores events that are not workflow transitions", func() {
			event := events.BaseEvent{ID: "x", Type: "system.ping"}

			err := service.HandleWorkflowEvent(context.Background(), event)

			Expect(err).ToNot(HaveOccurred())
			Expect(mockRepo.rows).To(BeEmpty())
		})

		It("does not duplicate a replayed event", func() {
			event := events.NewWorkflowEvent(events.EventTypeClaimSubmitted, "tada_claim", 3, 1, "claim submitted", nil)

			Expect(service.HandleWorkflowEvent(context.Background(), event)).To(Succeed())
			Expect(service.HandleWorkflowEvent(context.Background(), event)).To(Succeed())

			Expect(mockRepo.rows).To(HaveLen(1))
		})
	})

	Describe("RegisterSubscriptions", func() {
		It("records every transition published on the bus", func() {
			bus := events.NewEventBus(logger)
			service.RegisterSubscriptions(bus)

			for _, eventType := range notification.WorkflowEventTypes {
				event := events.NewWorkflowEvent(eventType, "trip", 1, 1, "transition", nil)
				Expect(bus.PublishSync(context.Background(), event)).To(Succeed())
			}

			Expect(mockRepo.rows).To(HaveLen(len(notification.WorkflowEventTypes)))
		})
	})

	Describe("Reads", func() {
		var (
			manager  *auth.User
			employee *auth.User
		)

		BeforeEach(func() {
			manager = &auth.User{ID: 2, Role: auth.RoleManager}
			employee = &auth.User{ID: 1, Role: auth.RoleEmployee}

			event := events.NewWorkflowEvent(events.EventTypeTripRequested, "trip", 7, 1, "trip requested", nil)
			Expect(service.HandleWorkflowEvent(context.Background(), event)).To(Succeed())
		})

		It("lists recent records for staff", func() {
			rows, err := service.ListRecent(manager, 50, 0)

			Expect(err).ToNot(HaveOccurred())
			Expect(rows).To(HaveLen(1))
		})

		It("filters by entity", func() {
			rows, err := service.ListByEntity(manager, "trip", 7)
			Expect(err).ToNot(HaveOccurred())
			Expect(rows).To(HaveLen(1))

			rows, err = service.ListByEntity(manager, "trip", 8)
			Expect(err).ToNot(HaveOccurred())
			Expect(rows).To(BeEmpty())
		})

		It("refuses employees", func() {
			_, err := service.ListRecent(employee, 50, 0)

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeInsufficientRole))
		})
	})
})
