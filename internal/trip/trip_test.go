package trip_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/transport-management/internal/auth"
	"github.com/frahmantamala/transport-management/internal/trip"
)

var _ = Describe("Transitions", func() {
	It("approves only from requested", func() {
		rule := trip.Transitions[trip.ActionApprove]
		Expect(rule.AllowsFrom(trip.StatusRequested)).To(BeTrue())
		Expect(rule.AllowsFrom(trip.StatusManagerApproved)).To(BeFalse())
		Expect(rule.AllowsFrom(trip.StatusCompleted)).To(BeFalse())
		Expect(rule.Next).To(Equal(trip.StatusManagerApproved))
	})

	It("rejects only from requested", func() {
		rule := trip.Transitions[trip.ActionReject]
		Expect(rule.AllowsFrom(trip.StatusRequested)).To(BeTrue())
		Expect(rule.AllowsFrom(trip.StatusManagerRejected)).To(BeFalse())
		Expect(rule.Next).To(Equal(trip.StatusManagerRejected))
	})

	It("assigns only from manager_approved", func() {
		rule := trip.Transitions[trip.ActionAssign]
		Expect(rule.AllowsFrom(trip.StatusManagerApproved)).To(BeTrue())
		Expect(rule.AllowsFrom(trip.StatusRequested)).To(BeFalse())
		Expect(rule.Next).To(Equal(trip.StatusTransportAssigned))
	})

	It("runs the linear assigned -> in_progress -> completed path", func() {
		start := trip.Transitions[trip.ActionStart]
		Expect(start.AllowsFrom(trip.StatusTransportAssigned)).To(BeTrue())
		Expect(start.Next).To(Equal(trip.StatusInProgress))

		complete := trip.Transitions[trip.ActionComplete]
		Expect(complete.AllowsFrom(trip.StatusInProgress)).To(BeTrue())
		Expect(complete.AllowsFrom(trip.StatusTransportAssigned)).To(BeFalse())
		Expect(complete.Next).To(Equal(trip.StatusCompleted))
	})

	It("cancels only before resources are committed", func() {
		rule := trip.Transitions[trip.ActionCancel]
		Expect(rule.AllowsFrom(trip.StatusRequested)).To(BeTrue())
		Expect(rule.AllowsFrom(trip.StatusManagerApproved)).To(BeTrue())
		Expect(rule.AllowsFrom(trip.StatusTransportAssigned)).To(BeFalse())
		Expect(rule.AllowsFrom(trip.StatusInProgress)).To(BeFalse())
		Expect(rule.AllowsFrom(trip.StatusCompleted)).To(BeFalse())
	})

	Describe("actor checks", func() {
		manager := &auth.User{ID: 10, Role: auth.RoleManager}
		employee := &auth.User{ID: 20, Role: auth.RoleEmployee}
		otherEmployee := &auth.User{ID: 21, Role: auth.RoleEmployee}

		It("lets managers but not employees decide", func() {
			rule := trip.Transitions[trip.ActionApprove]
			Expect(rule.AllowsActor(manager, 20)).To(BeTrue())
			Expect(rule.AllowsActor(employee, 20)).To(BeFalse())
		})

		It("lets the owner cancel their own trip but nobody else's", func() {
			rule := trip.Transitions[trip.ActionCancel]
			Expect(rule.AllowsActor(employee, employee.ID)).To(BeTrue())
			Expect(rule.AllowsActor(otherEmployee, employee.ID)).To(BeFalse())
			Expect(rule.AllowsActor(manager, employee.ID)).To(BeTrue())
		})
	})
})

var _ = Describe("Overlaps", func() {
	base := time.Date(2025, 8, 12, 9, 0, 0, 0, time.UTC)
	at := func(h int) time.Time { return base.Add(time.Duration(h) * time.Hour) }

	It("detects a plain overlap", func() {
		// 09:00-11:00 vs 10:00-12:00
		Expect(trip.Overlaps(at(0), at(2), at(1), at(3))).To(BeTrue())
	})

	It("treats touching windows as free", func() {
		// 09:00-11:00 vs 11:00-13:00: half-open, no conflict
		Expect(trip.Overlaps(at(0), at(2), at(2), at(4))).To(BeFalse())
		Expect(trip.Overlaps(at(2), at(4), at(0), at(2))).To(BeFalse())
	})

	It("detects containment", func() {
		Expect(trip.Overlaps(at(0), at(4), at(1), at(2))).To(BeTrue())
		Expect(trip.Overlaps(at(1), at(2), at(0), at(4))).To(BeTrue())
	})

	It("ignores disjoint windows", func() {
		Expect(trip.Overlaps(at(0), at(1), at(2), at(3))).To(BeFalse())
	})

	It("is symmetric", func() {
		Expect(trip.Overlaps(at(0), at(2), at(1), at(3))).To(Equal(trip.Overlaps(at(1), at(3), at(0), at(2))))
	})
})
