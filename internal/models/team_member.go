package models

import "gorm.io/gorm"

const (
	TeamRoleAdmin  = "ADMIN"
	TeamRoleMember = "MEMBER"
)

type TeamMember struct {
	gorm.Model

	TeamID uint   `gorm:"not null;uniqueIndex:idx_team_user"`
	UserID uint   `gorm:"not null;uniqueIndex:idx_team_user"`
	Role   string `gorm:"not null"`

	// Relationships
	Team Team `gorm:"foreignKey:TeamID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	User User `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}

func (m TeamMember) IsAdmin() bool {
	return m.Role == TeamRoleAdmin
}
