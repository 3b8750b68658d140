package models

import (
	"time"

	"github.com/teamcal-dev/teamcal/internal/types"
	"gorm.io/gorm"
)

// Schedule is soft-deleted: DeletedAt is set instead of removing the
// row, so deleted entries stay visible in the team archive and can
// still be referenced by delivery receipts.
type Schedule struct {
	gorm.Model

	TeamID      uint               `gorm:"not null;index"`
	Title       string             `gorm:"not null;size:100"`
	Description string             `gorm:"type:text"`
	Type        types.ScheduleType `gorm:"not null;size:10"`
	StartAt     time.Time          `gorm:"not null"`
	EndAt       time.Time          `gorm:"not null"`
	AllDay      bool               `gorm:"not null;default:false"`
	CreatedByID uint               `gorm:"not null;index"`

	// Relationships
	Team          Team           `gorm:"foreignKey:TeamID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	CreatedBy     User           `gorm:"foreignKey:CreatedByID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Notifications []Notification `gorm:"foreignKey:ScheduleID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
