package models

import (
	"github.com/teamcal-dev/teamcal/internal/types"
	"gorm.io/gorm"
)

// NotificationPreference is a per-user opt-in flag for one
// (schedule type, action type) pair. A missing row means enabled:
// new users receive notifications by default, so readers must never
// treat absence as opted out.
type NotificationPreference struct {
	gorm.Model

	UserID       uint               `gorm:"not null;uniqueIndex:idx_user_type_action"`
	ScheduleType types.ScheduleType `gorm:"not null;size:10;uniqueIndex:idx_user_type_action"`
	ActionType   types.ActionType   `gorm:"not null;size:10;uniqueIndex:idx_user_type_action"`
	Enabled      bool               `gorm:"not null;default:true"`

	// Relationships
	User User `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
