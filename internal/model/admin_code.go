package model

import (
	"time"
)

// AdminAccessCode 管理员注册用的访问码，仅作开通凭证，
// 授权以 users.role 为准
type AdminAccessCode struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	Code      string    `gorm:"size:100;uniqueIndex;not null" json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

func (AdminAccessCode) TableName() string {
	return "admin_access_codes"
}
