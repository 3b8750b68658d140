package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	InvitationPending  = "PENDING"
	InvitationAccepted = "ACCEPTED"
	InvitationRejected = "REJECTED"
	InvitationExpired  = "EXPIRED"
)

type TeamInvitation struct {
	gorm.Model

	TeamID         uint   `gorm:"not null;index"`
	InviterID      uint   `gorm:"not null"`
	InviteeKakaoID int64  `gorm:"not null;index"`
	Token          string `gorm:"uniqueIndex;not null"`
	Status         string `gorm:"not null;default:PENDING"`
	ExpiresAt      time.Time

	// Relationships
	Team    Team `gorm:"foreignKey:TeamID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Inviter User `gorm:"foreignKey:InviterID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}

func (i TeamInvitation) IsPending() bool {
	return i.Status == InvitationPending
}

func (i TeamInvitation) IsExpired() bool {
	return time.Now().After(i.ExpiresAt)
}
