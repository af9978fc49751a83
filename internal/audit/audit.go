package audit

import (
	"context"
	"sync"

	"github.com/khanghh/clubhub/model"
)

var auditRepo AuditEventRepository
var initOnce sync.Once

func Initialize(repo AuditEventRepository) {
	initOnce.Do(func() {
		auditRepo = repo
	})
}

const (
	EventTypeLoginSuccess  = "login_success"
	EventTypeLoginFailure  = "login_failure"
	EventTypeVerifySuccess = "verify_success"
	EventTypeVerifyFailure = "verify_failure"
)

type AuthRecord struct {
	UserID    uint
	Email     string
	IP        string
	UserAgent string
	Success   bool
	Reason    string
}

func record(ctx context.Context, eventType string, rec AuthRecord) error {
	if auditRepo == nil {
		return nil
	}
	return auditRepo.RecordEvent(ctx, &model.AuditEvent{
		UserID:    rec.UserID,
		Email:     rec.Email,
		EventType: eventType,
		Reason:    rec.Reason,
		IP:        rec.IP,
		UserAgent: rec.UserAgent,
	})
}

func RecordLogin(ctx context.Context, rec AuthRecord) error {
	eventType := EventTypeLoginFailure
	if rec.Success {
		eventType = EventTypeLoginSuccess
	}
	return record(ctx, eventType, rec)
}

func RecordVerification(ctx context.Context, rec AuthRecord) error {
	eventType := EventTypeVerifyFailure
	if rec.Success {
		eventType = EventTypeVerifySuccess
	}
	return record(ctx, eventType, rec)
}
