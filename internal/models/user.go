package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type User struct {
	gorm.Model

	KakaoID         int64  `gorm:"uniqueIndex;not null"`
	Name            string `gorm:"not null"`
	Email           string
	ProfileImageURL string
	// NULL means the user holds no messaging credential and is
	// excluded from notification fan-out.
	KakaoAccessToken *string
	KakaoProfile     datatypes.JSON `gorm:"type:jsonb"`
	Role             string         `gorm:"not null;default:USER"`

	// Relationships
	OwnedTeams              []Team                   `gorm:"foreignKey:OwnerID;constraint:OnUpdate:Cascade,OnDelete:SET NULL"`
	TeamMemberships         []TeamMember             `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Notifications           []Notification           `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	NotificationPreferences []NotificationPreference `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	RefreshTokens           []RefreshToken           `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
