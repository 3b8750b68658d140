package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/teamcal-dev/teamcal/db"
	"github.com/teamcal-dev/teamcal/internal/models"
)

const cleanupInterval = time.Hour

// Cleanup is the background janitor: it expires stale team
// invitations and drops dead refresh tokens on a fixed interval.
type Cleanup struct {
	ctx    context.Context
	cancel context.CancelFunc
}

func NewCleanup() *Cleanup {
	ctx, cancel := context.WithCancel(context.Background())
	return &Cleanup{ctx: ctx, cancel: cancel}
}

// Start runs one pass immediately, then ticks hourly until Stop.
func (c *Cleanup) Start() {
	log.Println("Starting cleanup job...")

	go func() {
		c.runOnce()

		ticker := time.NewTicker(cleanupInterval)
		defer ticker.Stop()

		for {
			select {
			case <-c.ctx.Done():
				return
			case <-ticker.C:
				c.runOnce()
			}
		}
	}()
}

func (c *Cleanup) Stop() {
	log.Println("Stopping cleanup job...")
	c.cancel()
}

func (c *Cleanup) runOnce() {
	now := time.Now()

	result := db.DB.Model(&models.TeamInvitation{}).
		Where("status = ? AND expires_at < ?", models.InvitationPending, now).
		Update("status", models.InvitationExpired)

	if result.Error != nil {
		log.Printf("Failed to expire invitations: %v", result.Error)
	} else if result.RowsAffected > 0 {
		log.Printf("Expired %d stale invitations", result.RowsAffected)
	}

	result = db.DB.Where("expires_at < ?", now).Delete(&models.RefreshToken{})

	if result.Error != nil {
		log.Printf("Failed to purge refresh tokens: %v", result.Error)
	} else if result.RowsAffected > 0 {
		log.Printf("Purged %d expired refresh tokens", result.RowsAffected)
	}
}
