package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAvailableSlot_Key(t *testing.T) {
	a := AvailableSlot{
		Date:            time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC),
		StartTime:       "10:00",
		AppointmentType: "dermatology",
		ReasonFreed:     SlotFreedReasonCancellation,
	}
	b := a
	b.ReasonFreed = SlotFreedReasonManual
	b.DurationMinutes = 60

	// Same physical slot regardless of why it was freed
	assert.Equal(t, a.Key(), b.Key())
	assert.Equal(t, "2026-09-15|10:00|dermatology", a.Key())
}

func TestAvailableSlot_Validate(t *testing.T) {
	valid := AvailableSlot{
		Date:            time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC),
		StartTime:       "10:00",
		DurationMinutes: 30,
		AppointmentType: "dermatology",
	}
	assert.NoError(t, valid.Validate())

	noDate := valid
	noDate.Date = time.Time{}
	assert.Error(t, noDate.Validate())

	badTime := valid
	badTime.StartTime = "25:99"
	assert.Error(t, badTime.Validate())

	badDuration := valid
	badDuration.DurationMinutes = 0
	assert.Error(t, badDuration.Validate())

	noType := valid
	noType.AppointmentType = ""
	assert.Error(t, noType.Validate())
}
