package audit

import (
	"context"

	"github.com/khanghh/clubhub/model"
	"gorm.io/gorm"
)

type AuditEventRepository interface {
	RecordEvent(ctx context.Context, event *model.AuditEvent) error
	ListByEmail(ctx context.Context, email string, limit int) ([]model.AuditEvent, error)
}

type auditEventRepository struct {
	db *gorm.DB
}

func (r *auditEventRepository) RecordEvent(ctx context.Context, event *model.AuditEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *auditEventRepository) ListByEmail(ctx context.Context, email string, limit int) ([]model.AuditEvent, error) {
	var events []model.AuditEvent
	err := r.db.WithContext(ctx).
		Where("email = ?", email).
		Order("id DESC").
		Limit(limit).
		Find(&events).Error
	return events, err
}

func NewAuditEventRepository(db *gorm.DB) AuditEventRepository {
	return &auditEventRepository{
		db: db,
	}
}
