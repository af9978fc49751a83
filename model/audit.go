package model

import "time"

type AuditEvent struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	UserID    uint      `gorm:"index"`                  // zero when the account could not be resolved
	Email     string    `gorm:"size:256;not null;index"` // email as submitted, normalized
	EventType string    `gorm:"size:64;not null;index"`  // login_success, verify_failure...
	Reason    string    `gorm:"size:512"`                // failure reason
	IP        string    `gorm:"size:45;not null"`
	UserAgent string    `gorm:"size:512;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (AuditEvent) TableName() string {
	return "audit"
}
