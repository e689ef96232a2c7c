package entity

import (
	"fmt"
	"time"
)

// Slot freed reasons
const (
	SlotFreedReasonCancellation = "cancellation"
	SlotFreedReasonManual       = "manual"
)

// AvailableSlot describes a bookable opportunity. It is a value type, not a
// persisted entity: slots come from cancellations or staff input and only
// live on as flattened columns of the invitations they produce.
type AvailableSlot struct {
	Date            time.Time `json:"date"`
	StartTime       string    `json:"start_time"` // "HH:MM"
	DurationMinutes int       `json:"duration_minutes"`
	AppointmentType string    `json:"appointment_type"`
	ReasonFreed     string    `json:"reason_freed"`
}

// Key identifies the physical slot for reservation and the at-most-one
// active invitation invariant. Two slots with the same date, start time and
// type are the same opportunity regardless of why they were freed.
func (s AvailableSlot) Key() string {
	return fmt.Sprintf("%s|%s|%s", s.Date.Format("2006-01-02"), s.StartTime, s.AppointmentType)
}

// Validate checks the slot describes a concrete opportunity
func (s AvailableSlot) Validate() error {
	if s.Date.IsZero() {
		return fmt.Errorf("slot date is required")
	}
	if _, err := time.Parse("15:04", s.StartTime); err != nil {
		return fmt.Errorf("invalid slot start time %q, use HH:MM", s.StartTime)
	}
	if s.DurationMinutes <= 0 {
		return fmt.Errorf("slot duration must be positive")
	}
	if s.AppointmentType == "" {
		return fmt.Errorf("slot appointment type is required")
	}
	return nil
}
