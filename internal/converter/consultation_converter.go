package converter

import (
	"clinic-appointment-manager/internal/delivery/dto"
	"clinic-appointment-manager/internal/domain/entity"
)

func ConsultationToResponse(consultation *entity.Consultation) *dto.ConsultationResponse {
	if consultation == nil {
		return nil
	}
	return &dto.ConsultationResponse{
		ID:            consultation.ID,
		AppointmentID: consultation.AppointmentID,
		PatientID:     consultation.PatientID,
		StaffID:       consultation.StaffID,
		Diagnosis:     consultation.Diagnosis,
		Notes:         consultation.Notes,
		CreatedAt:     consultation.CreatedAt,
		UpdatedAt:     consultation.UpdatedAt,
	}
}

func ConsultationsToResponse(consultations []entity.Consultation) []dto.ConsultationResponse {
	responses := make([]dto.ConsultationResponse, 0, len(consultations))
	for i := range consultations {
		responses = append(responses, *ConsultationToResponse(&consultations[i]))
	}
	return responses
}
