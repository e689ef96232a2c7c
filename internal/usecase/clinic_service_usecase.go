package usecase

import (
	"context"
	"errors"

	"clinic-appointment-manager/internal/converter"
	"clinic-appointment-manager/internal/delivery/dto"
	"clinic-appointment-manager/internal/domain/entity"
	"clinic-appointment-manager/internal/domain/repository"
	"clinic-appointment-manager/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrServiceNotFound   = errors.New("clinic service not found")
	ErrServiceCodeExists = errors.New("clinic service code already exists")
	ErrServiceHasEntries = errors.New("clinic service still has waiting list entries")
)

type ClinicServiceUsecase interface {
	Create(ctx context.Context, actorID uuid.UUID, req *dto.CreateClinicServiceRequest) (*dto.ClinicServiceResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*dto.ClinicServiceResponse, error)
	List(ctx context.Context, activeOnly bool) ([]dto.ClinicServiceResponse, error)
	Update(ctx context.Context, actorID, id uuid.UUID, req *dto.UpdateClinicServiceRequest) (*dto.ClinicServiceResponse, error)
	Delete(ctx context.Context, actorID, id uuid.UUID) error
}

type clinicServiceUsecase struct {
	db          *gorm.DB
	log         *logrus.Logger
	serviceRepo repository.ClinicServiceRepository
	entryRepo   repository.WaitingListRepository
	audit       *service.AuditService
}

func NewClinicServiceUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	serviceRepo repository.ClinicServiceRepository,
	entryRepo repository.WaitingListRepository,
	audit *service.AuditService,
) ClinicServiceUsecase {
	return &clinicServiceUsecase{
		db:          db,
		log:         log,
		serviceRepo: serviceRepo,
		entryRepo:   entryRepo,
		audit:       audit,
	}
}

func (u *clinicServiceUsecase) Create(ctx context.Context, actorID uuid.UUID, req *dto.CreateClinicServiceRequest) (*dto.ClinicServiceResponse, error) {
	db := u.db.WithContext(ctx)

	active := true
	svc := &entity.ClinicService{
		Code:            req.Code,
		Name:            req.Name,
		Description:     req.Description,
		DurationMinutes: req.DurationMinutes,
		Price:           req.Price,
		IsActive:        &active,
	}

	if err := u.serviceRepo.Create(db, svc); err != nil {
		if isDuplicateKeyError(err, "code") {
			return nil, ErrServiceCodeExists
		}
		u.log.Warnf("Failed to create clinic service: %+v", err)
		return nil, err
	}

	u.audit.Record(ctx, &actorID, entity.AuditActionServiceCreate, entity.JSON{
		"service_id": svc.ID.String(),
		"code":       svc.Code,
	})

	return converter.ClinicServiceToResponse(svc), nil
}

func (u *clinicServiceUsecase) GetByID(ctx context.Context, id uuid.UUID) (*dto.ClinicServiceResponse, error) {
	svc, err := u.serviceRepo.FindByID(u.db.WithContext(ctx), id)
	if err != nil {
		u.log.Warnf("Failed to find clinic service %s: %+v", id, err)
		return nil, err
	}
	if svc == nil {
		return nil, ErrServiceNotFound
	}
	return converter.ClinicServiceToResponse(svc), nil
}

func (u *clinicServiceUsecase) List(ctx context.Context, activeOnly bool) ([]dto.ClinicServiceResponse, error) {
	services, err := u.serviceRepo.FindAll(u.db.WithContext(ctx), activeOnly)
	if err != nil {
		u.log.Warnf("Failed to list clinic services: %+v", err)
		return nil, err
	}
	return converter.ClinicServicesToResponse(services), nil
}

func (u *clinicServiceUsecase) Update(ctx context.Context, actorID, id uuid.UUID, req *dto.UpdateClinicServiceRequest) (*dto.ClinicServiceResponse, error) {
	db := u.db.WithContext(ctx)

	svc, err := u.serviceRepo.FindByID(db, id)
	if err != nil {
		u.log.Warnf("Failed to find clinic service %s: %+v", id, err)
		return nil, err
	}
	if svc == nil {
		return nil, ErrServiceNotFound
	}

	if req.Name != "" {
		svc.Name = req.Name
	}
	if req.Description != nil {
		svc.Description = *req.Description
	}
	if req.DurationMinutes > 0 {
		svc.DurationMinutes = req.DurationMinutes
	}
	if req.Price != nil {
		svc.Price = *req.Price
	}
	if req.IsActive != nil {
		svc.IsActive = req.IsActive
	}

	if err := u.serviceRepo.Update(db, svc); err != nil {
		u.log.Warnf("Failed to update clinic service %s: %+v", id, err)
		return nil, err
	}

	u.audit.Record(ctx, &actorID, entity.AuditActionServiceUpdate, entity.JSON{
		"service_id": svc.ID.String(),
	})

	return converter.ClinicServiceToResponse(svc), nil
}

func (u *clinicServiceUsecase) Delete(ctx context.Context, actorID, id uuid.UUID) error {
	db := u.db.WithContext(ctx)

	svc, err := u.serviceRepo.FindByID(db, id)
	if err != nil {
		u.log.Warnf("Failed to find clinic service %s: %+v", id, err)
		return err
	}
	if svc == nil {
		return ErrServiceNotFound
	}

	// A type with people still waiting on it cannot disappear under them
	waiting, err := u.entryRepo.FindWaitingByType(db, svc.Code)
	if err != nil {
		u.log.Warnf("Failed to check waiting entries for service %s: %+v", svc.Code, err)
		return err
	}
	if len(waiting) > 0 {
		return ErrServiceHasEntries
	}

	rows, err := u.serviceRepo.Delete(db, id)
	if err != nil {
		u.log.Warnf("Failed to delete clinic service %s: %+v", id, err)
		return err
	}
	if rows == 0 {
		return ErrServiceNotFound
	}

	u.audit.Record(ctx, &actorID, entity.AuditActionServiceDelete, entity.JSON{
		"service_id": id.String(),
		"code":       svc.Code,
	})

	return nil
}
