package converter

import (
	"clinic-appointment-manager/internal/delivery/dto"
	"clinic-appointment-manager/internal/domain/entity"
)

// UserToResponse converts a User entity to UserResponse DTO.
// Includes the patient profile when it is loaded.
func UserToResponse(user *entity.User) *dto.UserResponse {
	if user == nil {
		return nil
	}

	response := &dto.UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		FullName:  user.FullName,
		Role:      user.Role.RoleName,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}

	if user.PatientProfile != nil {
		response.PatientProfile = PatientProfileToResponse(user.PatientProfile)
	}

	return response
}

// PatientProfileToResponse converts a PatientProfile entity to its DTO
func PatientProfileToResponse(profile *entity.PatientProfile) *dto.PatientProfileResponse {
	if profile == nil {
		return nil
	}
	return &dto.PatientProfileResponse{
		UserID:              profile.UserID,
		MedicalRecordNumber: profile.MedicalRecordNumber,
		PhoneNumber:         profile.PhoneNumber,
		DateOfBirth:         profile.DateOfBirth.Format("2006-01-02"),
		Gender:              profile.Gender,
		Address:             profile.Address,
	}
}
