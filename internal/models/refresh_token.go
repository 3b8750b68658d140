package models

import (
	"time"

	"gorm.io/gorm"
)

// RefreshToken holds one issued refresh credential. The raw token is
// "selector.verifier"; only the selector is stored in clear, the
// verifier as a bcrypt hash.
type RefreshToken struct {
	gorm.Model

	UserID       uint      `gorm:"not null;index"`
	Selector     string    `gorm:"uniqueIndex;not null"`
	VerifierHash string    `gorm:"not null"`
	ExpiresAt    time.Time `gorm:"not null"`

	// Relationships
	User User `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
