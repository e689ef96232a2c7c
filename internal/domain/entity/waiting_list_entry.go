package entity

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Priority ranks waiting-list entries against each other when a slot frees up
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Rank maps a priority to a sortable weight, higher wins
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	}
	return 0
}

func (p Priority) IsValid() bool {
	return p.Rank() > 0
}

// WaitingListStatus represents the lifecycle state of a waiting-list entry
type WaitingListStatus string

const (
	WaitingListStatusWaiting   WaitingListStatus = "waiting"
	WaitingListStatusContacted WaitingListStatus = "contacted"
	WaitingListStatusScheduled WaitingListStatus = "scheduled"
	WaitingListStatusRemoved   WaitingListStatus = "removed"
)

// StringList is stored as a JSONB array of strings
type StringList []string

// Value implements driver.Valuer
func (l StringList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return "[]", nil
	}
	return json.Marshal(l)
}

// Scan implements sql.Scanner
func (l *StringList) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New(fmt.Sprint("Failed to unmarshal JSONB value:", value))
	}

	var result []string
	if err := json.Unmarshal(bytes, &result); err != nil {
		return err
	}
	*l = StringList(result)
	return nil
}

// Contains reports whether the list holds the given value
func (l StringList) Contains(v string) bool {
	for _, s := range l {
		if s == v {
			return true
		}
	}
	return false
}

// WaitingListEntry represents a patient's standing request for an
// appointment of a given type. At most one entry per patient may be in
// waiting status at a time (enforced by a partial unique index).
type WaitingListEntry struct {
	ID              uuid.UUID         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	PatientID       uuid.UUID         `gorm:"type:uuid;not null;index" json:"patient_id"`
	AppointmentType string            `gorm:"type:varchar(50);not null;index" json:"appointment_type"`
	PreferredDates  StringList        `gorm:"type:jsonb" json:"preferred_dates"` // "YYYY-MM-DD", empty = any date
	PreferredTimes  StringList        `gorm:"type:jsonb" json:"preferred_times"` // "HH:MM", empty = any time
	Priority        Priority          `gorm:"type:varchar(10);not null;default:'medium';index" json:"priority"`
	Status          WaitingListStatus `gorm:"type:varchar(20);not null;default:'waiting';index" json:"status"`
	ContactAttempts int               `gorm:"not null;default:0" json:"contact_attempts"`
	LastContactDate *time.Time        `gorm:"type:timestamptz" json:"last_contact_date,omitempty"`
	CreatedAt       time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time         `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Patient PatientProfile `gorm:"foreignKey:PatientID;references:UserID" json:"patient,omitempty"`
}

func (WaitingListEntry) TableName() string {
	return "waiting_list_entries"
}

// IsWaiting checks if the entry is still eligible for matching
func (e *WaitingListEntry) IsWaiting() bool {
	return e.Status == WaitingListStatusWaiting
}

// Matches reports whether the entry is eligible for the given slot:
// appointment type must match, and each non-empty preference set must
// contain the slot's date or start time. Empty preference sets match
// anything of the right type.
func (e *WaitingListEntry) Matches(slot AvailableSlot) bool {
	if e.AppointmentType != slot.AppointmentType {
		return false
	}
	if len(e.PreferredDates) > 0 && !e.PreferredDates.Contains(slot.Date.Format("2006-01-02")) {
		return false
	}
	if len(e.PreferredTimes) > 0 && !e.PreferredTimes.Contains(slot.StartTime) {
		return false
	}
	return true
}
