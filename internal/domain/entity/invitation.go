package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvitationStatus represents the state machine position of an invitation.
//
//	sent -> viewed -> accepted -> payment_pending -> confirmed
//
// declined and expired are reachable from any non-terminal state;
// confirmed, declined and expired are terminal.
type InvitationStatus string

const (
	InvitationStatusSent           InvitationStatus = "sent"
	InvitationStatusViewed         InvitationStatus = "viewed"
	InvitationStatusAccepted       InvitationStatus = "accepted"
	InvitationStatusPaymentPending InvitationStatus = "payment_pending"
	InvitationStatusConfirmed      InvitationStatus = "confirmed"
	InvitationStatusDeclined       InvitationStatus = "declined"
	InvitationStatusExpired        InvitationStatus = "expired"
)

// IsTerminal reports whether no further transitions are allowed
func (s InvitationStatus) IsTerminal() bool {
	switch s {
	case InvitationStatusConfirmed, InvitationStatusDeclined, InvitationStatusExpired:
		return true
	}
	return false
}

// ActiveInvitationStatuses are the non-terminal states, used by conditional
// updates and the active-per-slot uniqueness queries.
var ActiveInvitationStatuses = []InvitationStatus{
	InvitationStatusSent,
	InvitationStatusViewed,
	InvitationStatusAccepted,
	InvitationStatusPaymentPending,
}

// Decline reason recorded when the deadline monitor expires an invitation
const DeclineReasonDeadlinePassed = "deadline_passed"

// Invitation is a time-boxed offer of one slot to one waiting-list entry.
// The slot is flattened into columns; SlotKey is indexed to enforce at most
// one active invitation per physical slot.
type Invitation struct {
	ID                   uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	WaitingListEntryID   uuid.UUID        `gorm:"type:uuid;not null;index" json:"waiting_list_entry_id"`
	PatientID            uuid.UUID        `gorm:"type:uuid;not null;index" json:"patient_id"`
	SlotDate             time.Time        `gorm:"type:date;not null" json:"slot_date"`
	SlotStartTime        string           `gorm:"type:varchar(5);not null" json:"slot_start_time"`
	SlotDuration         int              `gorm:"not null" json:"slot_duration_minutes"`
	AppointmentType      string           `gorm:"type:varchar(50);not null;index" json:"appointment_type"`
	ReasonFreed          string           `gorm:"type:varchar(50)" json:"reason_freed,omitempty"`
	SentAt               time.Time        `gorm:"type:timestamptz;not null" json:"sent_at"`
	ConfirmationDeadline time.Time        `gorm:"type:timestamptz;not null;index" json:"confirmation_deadline"`
	PaymentRequired      decimal.Decimal  `gorm:"type:decimal(10,2);not null" json:"payment_required"`
	Status               InvitationStatus `gorm:"type:varchar(20);not null;default:'sent';index" json:"status"`
	ViewedAt             *time.Time       `gorm:"type:timestamptz" json:"viewed_at,omitempty"`
	AcceptedAt           *time.Time       `gorm:"type:timestamptz" json:"accepted_at,omitempty"`
	PaymentConfirmedAt   *time.Time       `gorm:"type:timestamptz" json:"payment_confirmed_at,omitempty"`
	DeclineReason        string           `gorm:"type:varchar(100)" json:"decline_reason,omitempty"`
	CreatedAt            time.Time        `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt            time.Time        `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	WaitingListEntry WaitingListEntry `gorm:"foreignKey:WaitingListEntryID" json:"waiting_list_entry,omitempty"`
}

func (Invitation) TableName() string {
	return "invitations"
}

// IsTerminal checks if the invitation reached a terminal state
func (i *Invitation) IsTerminal() bool {
	return i.Status.IsTerminal()
}

// Slot reconstructs the offered slot from the flattened columns
func (i *Invitation) Slot() AvailableSlot {
	return AvailableSlot{
		Date:            i.SlotDate,
		StartTime:       i.SlotStartTime,
		DurationMinutes: i.SlotDuration,
		AppointmentType: i.AppointmentType,
		ReasonFreed:     i.ReasonFreed,
	}
}

// SlotKey identifies the physical slot this invitation offers
func (i *Invitation) SlotKey() string {
	return i.Slot().Key()
}

// IsOverdue checks whether the confirmation deadline has passed
func (i *Invitation) IsOverdue(now time.Time) bool {
	return now.After(i.ConfirmationDeadline)
}
