package dto

import "github.com/google/uuid"

type UpdatePatientProfileRequest struct {
	PhoneNumber string `json:"phone_number" validate:"omitempty,min=10,max=20"`
	Address     string `json:"address" validate:"omitempty"`
}

type PatientProfileResponse struct {
	UserID              uuid.UUID `json:"user_id"`
	MedicalRecordNumber string    `json:"medical_record_number"`
	PhoneNumber         string    `json:"phone_number,omitempty"`
	DateOfBirth         string    `json:"date_of_birth"`
	Gender              string    `json:"gender"`
	Address             string    `json:"address,omitempty"`
}
