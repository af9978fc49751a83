package model

import (
	"time"

	"gorm.io/gorm"
)

// User is a durable account. Rows are either verified permanently or
// unverified with a VerificationExpiresAt after which the sweep removes them.
type User struct {
	ID                    uint       `gorm:"primarykey"`
	Email                 string     `gorm:"uniqueIndex;size:256;not null"`
	Password              string     `gorm:"size:64;not null"`
	Role                  Role       `gorm:"size:16;not null;default:USER"`
	IsVerified            bool       `gorm:"default:false;not null;index"`
	LastCodeSentAt        *time.Time `gorm:""`
	VerificationExpiresAt *time.Time `gorm:"index"`
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == 0 {
		u.ID = GenerateID()
	}
	if u.Role == "" {
		u.Role = RoleUser
	}
	return nil
}
