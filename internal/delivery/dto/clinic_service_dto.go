package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CreateClinicServiceRequest struct {
	Code            string          `json:"code" validate:"required,min=2,max=50"`
	Name            string          `json:"name" validate:"required,min=2,max=255"`
	Description     string          `json:"description" validate:"omitempty"`
	DurationMinutes int             `json:"duration_minutes" validate:"required,gte=5,lte=480"`
	Price           decimal.Decimal `json:"price" validate:"required"`
}

type UpdateClinicServiceRequest struct {
	Name            string           `json:"name" validate:"omitempty,min=2,max=255"`
	Description     *string          `json:"description"`
	DurationMinutes int              `json:"duration_minutes" validate:"omitempty,gte=5,lte=480"`
	Price           *decimal.Decimal `json:"price"`
	IsActive        *bool            `json:"is_active"`
}

type ClinicServiceResponse struct {
	ID              uuid.UUID       `json:"id"`
	Code            string          `json:"code"`
	Name            string          `json:"name"`
	Description     string          `json:"description,omitempty"`
	DurationMinutes int             `json:"duration_minutes"`
	Price           decimal.Decimal `json:"price"`
	IsActive        bool            `json:"is_active"`
	CreatedAt       time.Time       `json:"created_at"`
}
