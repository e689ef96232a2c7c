package converter

import (
	"clinic-appointment-manager/internal/delivery/dto"
	"clinic-appointment-manager/internal/domain/entity"
)

func ClinicServiceToResponse(service *entity.ClinicService) *dto.ClinicServiceResponse {
	if service == nil {
		return nil
	}
	isActive := true
	if service.IsActive != nil {
		isActive = *service.IsActive
	}
	return &dto.ClinicServiceResponse{
		ID:              service.ID,
		Code:            service.Code,
		Name:            service.Name,
		Description:     service.Description,
		DurationMinutes: service.DurationMinutes,
		Price:           service.Price,
		IsActive:        isActive,
		CreatedAt:       service.CreatedAt,
	}
}

func ClinicServicesToResponse(services []entity.ClinicService) []dto.ClinicServiceResponse {
	responses := make([]dto.ClinicServiceResponse, 0, len(services))
	for i := range services {
		responses = append(responses, *ClinicServiceToResponse(&services[i]))
	}
	return responses
}
