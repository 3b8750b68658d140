package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	NotificationChannelKakao = "KAKAO"

	NotificationStatusSuccess = "SUCCESS"
	NotificationStatusFailed  = "FAILED"
)

// Notification is one delivery receipt: a single send attempt to a
// single recipient. Rows are append-only.
type Notification struct {
	gorm.Model

	ScheduleID uint   `gorm:"not null;index"`
	UserID     uint   `gorm:"not null;index"`
	Type       string `gorm:"not null"` // SCHEDULE_CREATED, SCHEDULE_UPDATED, SCHEDULE_DELETED
	Channel    string `gorm:"not null"`
	Status     string `gorm:"not null"`
	Message    string
	SentAt     *time.Time

	// Relationships
	Schedule Schedule `gorm:"foreignKey:ScheduleID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	User     User     `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
