package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestInvitationStatus_IsTerminal(t *testing.T) {
	active := []InvitationStatus{
		InvitationStatusSent,
		InvitationStatusViewed,
		InvitationStatusAccepted,
		InvitationStatusPaymentPending,
	}
	for _, s := range active {
		assert.False(t, s.IsTerminal(), "status %s should be active", s)
	}

	terminal := []InvitationStatus{
		InvitationStatusConfirmed,
		InvitationStatusDeclined,
		InvitationStatusExpired,
	}
	for _, s := range terminal {
		assert.True(t, s.IsTerminal(), "status %s should be terminal", s)
	}
}

func TestActiveInvitationStatuses_CoverNonTerminal(t *testing.T) {
	assert.Len(t, ActiveInvitationStatuses, 4)
	for _, s := range ActiveInvitationStatuses {
		assert.False(t, s.IsTerminal())
	}
}

func TestInvitation_SlotRoundTrip(t *testing.T) {
	inv := Invitation{
		SlotDate:        time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC),
		SlotStartTime:   "10:30",
		SlotDuration:    45,
		AppointmentType: "dental_cleaning",
		ReasonFreed:     SlotFreedReasonCancellation,
	}

	slot := inv.Slot()
	assert.Equal(t, "2026-09-15|10:30|dental_cleaning", slot.Key())
	assert.Equal(t, slot.Key(), inv.SlotKey())
	assert.Equal(t, 45, slot.DurationMinutes)
}

func TestInvitation_IsOverdue(t *testing.T) {
	deadline := time.Date(2026, 9, 15, 12, 0, 0, 0, time.UTC)
	inv := Invitation{ConfirmationDeadline: deadline}

	assert.False(t, inv.IsOverdue(deadline.Add(-time.Second)))
	assert.False(t, inv.IsOverdue(deadline))
	assert.True(t, inv.IsOverdue(deadline.Add(time.Second)))
}
