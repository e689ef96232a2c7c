package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPriority_Rank(t *testing.T) {
	assert.Greater(t, PriorityHigh.Rank(), PriorityMedium.Rank())
	assert.Greater(t, PriorityMedium.Rank(), PriorityLow.Rank())
	assert.Equal(t, 0, Priority("urgent").Rank())

	assert.True(t, PriorityHigh.IsValid())
	assert.False(t, Priority("").IsValid())
}

func TestWaitingListEntry_Matches(t *testing.T) {
	slot := AvailableSlot{
		Date:            time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC),
		StartTime:       "10:00",
		DurationMinutes: 30,
		AppointmentType: "dermatology",
	}

	tests := []struct {
		name  string
		entry WaitingListEntry
		want  bool
	}{
		{
			name:  "no preferences matches any slot of the right type",
			entry: WaitingListEntry{AppointmentType: "dermatology"},
			want:  true,
		},
		{
			name:  "wrong appointment type",
			entry: WaitingListEntry{AppointmentType: "cardiology"},
			want:  false,
		},
		{
			name: "preferred date matches",
			entry: WaitingListEntry{
				AppointmentType: "dermatology",
				PreferredDates:  StringList{"2026-09-14", "2026-09-15"},
			},
			want: true,
		},
		{
			name: "preferred date excludes slot",
			entry: WaitingListEntry{
				AppointmentType: "dermatology",
				PreferredDates:  StringList{"2026-09-20"},
			},
			want: false,
		},
		{
			name: "preferred time matches",
			entry: WaitingListEntry{
				AppointmentType: "dermatology",
				PreferredTimes:  StringList{"10:00"},
			},
			want: true,
		},
		{
			name: "preferred time excludes slot",
			entry: WaitingListEntry{
				AppointmentType: "dermatology",
				PreferredTimes:  StringList{"14:00"},
			},
			want: false,
		},
		{
			name: "both preference sets must contain the slot",
			entry: WaitingListEntry{
				AppointmentType: "dermatology",
				PreferredDates:  StringList{"2026-09-15"},
				PreferredTimes:  StringList{"14:00"},
			},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.entry.Matches(slot))
		})
	}
}

func TestWaitingListEntry_IsWaiting(t *testing.T) {
	assert.True(t, (&WaitingListEntry{Status: WaitingListStatusWaiting}).IsWaiting())
	assert.False(t, (&WaitingListEntry{Status: WaitingListStatusContacted}).IsWaiting())
	assert.False(t, (&WaitingListEntry{Status: WaitingListStatusScheduled}).IsWaiting())
	assert.False(t, (&WaitingListEntry{Status: WaitingListStatusRemoved}).IsWaiting())
}

func TestStringList_Value(t *testing.T) {
	v, err := StringList(nil).Value()
	assert.NoError(t, err)
	assert.Equal(t, "[]", v)

	v, err = StringList{"a", "b"}.Value()
	assert.NoError(t, err)
	assert.JSONEq(t, `["a","b"]`, string(v.([]byte)))
}

func TestStringList_Scan(t *testing.T) {
	var l StringList
	assert.NoError(t, l.Scan([]byte(`["10:00","11:00"]`)))
	assert.True(t, l.Contains("10:00"))
	assert.False(t, l.Contains("12:00"))

	var empty StringList
	assert.NoError(t, empty.Scan(nil))
	assert.Nil(t, empty)

	assert.Error(t, (&StringList{}).Scan(42))
}
