package service

import (
	"context"

	"clinic-appointment-manager/internal/domain/entity"
	domainRepo "clinic-appointment-manager/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// AuditService records who did what. Writes are best effort: an audit
// failure is logged and never fails the operation it describes.
type AuditService struct {
	db   *gorm.DB
	log  *logrus.Logger
	repo domainRepo.AuditLogRepository
}

func NewAuditService(db *gorm.DB, log *logrus.Logger, repo domainRepo.AuditLogRepository) *AuditService {
	return &AuditService{db: db, log: log, repo: repo}
}

// Record persists one audit entry. userID may be nil for system actions
// such as expiry sweeps.
func (s *AuditService) Record(ctx context.Context, userID *uuid.UUID, action string, metadata entity.JSON) {
	entry := &entity.AuditLog{
		UserID:   userID,
		Action:   action,
		Metadata: metadata,
	}
	if err := s.repo.Create(s.db.WithContext(ctx), entry); err != nil {
		s.log.Warnf("Failed to write audit log for action %s: %+v", action, err)
	}
}

// Recent returns the newest audit entries for the admin endpoint
func (s *AuditService) Recent(ctx context.Context, limit int) ([]entity.AuditLog, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return s.repo.FindRecent(s.db.WithContext(ctx), limit)
}
