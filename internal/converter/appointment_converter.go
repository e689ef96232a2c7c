package converter

import (
	"clinic-appointment-manager/internal/delivery/dto"
	"clinic-appointment-manager/internal/domain/entity"
)

func AppointmentToResponse(appointment *entity.Appointment) *dto.AppointmentResponse {
	if appointment == nil {
		return nil
	}
	return &dto.AppointmentResponse{
		ID:              appointment.ID,
		PatientID:       appointment.PatientID,
		InvitationID:    appointment.InvitationID,
		Date:            appointment.Date.Format("2006-01-02"),
		StartTime:       appointment.StartTime,
		DurationMinutes: appointment.DurationMinutes,
		AppointmentType: appointment.AppointmentType,
		Status:          string(appointment.Status),
		CreatedAt:       appointment.CreatedAt,
	}
}

func AppointmentsToResponse(appointments []entity.Appointment) []dto.AppointmentResponse {
	responses := make([]dto.AppointmentResponse, 0, len(appointments))
	for i := range appointments {
		responses = append(responses, *AppointmentToResponse(&appointments[i]))
	}
	return responses
}
