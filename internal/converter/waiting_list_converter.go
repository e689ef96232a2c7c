package converter

import (
	"clinic-appointment-manager/internal/delivery/dto"
	"clinic-appointment-manager/internal/domain/entity"
)

func WaitingListEntryToResponse(entry *entity.WaitingListEntry) *dto.WaitingListEntryResponse {
	if entry == nil {
		return nil
	}
	return &dto.WaitingListEntryResponse{
		ID:              entry.ID,
		PatientID:       entry.PatientID,
		AppointmentType: entry.AppointmentType,
		PreferredDates:  entry.PreferredDates,
		PreferredTimes:  entry.PreferredTimes,
		Priority:        string(entry.Priority),
		Status:          string(entry.Status),
		ContactAttempts: entry.ContactAttempts,
		LastContactDate: entry.LastContactDate,
		CreatedAt:       entry.CreatedAt,
	}
}

func WaitingListEntriesToResponse(entries []entity.WaitingListEntry) []dto.WaitingListEntryResponse {
	responses := make([]dto.WaitingListEntryResponse, 0, len(entries))
	for i := range entries {
		responses = append(responses, *WaitingListEntryToResponse(&entries[i]))
	}
	return responses
}
