package handlers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/teamcal-dev/teamcal/db"
	"github.com/teamcal-dev/teamcal/internal/models"
	"github.com/teamcal-dev/teamcal/internal/utils"
	"gorm.io/gorm"
)

const (
	invitationTTL = 7 * 24 * time.Hour
	maxTeamCount  = 10
)

type InviteMemberRequest struct {
	KakaoID int64 `json:"kakao_id" binding:"required"`
}

type InvitationResponse struct {
	Token          string    `json:"token"`
	TeamID         uint      `json:"team_id"`
	InviteeKakaoID int64     `json:"invitee_kakao_id"`
	Status         string    `json:"status"`
	ExpiresAt      time.Time `json:"expires_at"`
}

// InviteMember creates a pending invitation addressed to a Kakao id.
// Admin only; duplicate pending invitations and existing members are
// rejected.
func InviteMember(ctx *gin.Context) {
	teamID, err := utils.GetTeamID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var body InviteMemberRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if _, ok := requireTeamAdmin(ctx, teamID, userID); !ok {
		return
	}

	// If the invitee already signed up, make sure they are not a
	// member yet.
	var invitee models.User

	err = db.DB.Where("kakao_id = ?", body.KakaoID).First(&invitee).Error

	if err == nil {
		var existing models.TeamMember

		if err := db.DB.Where("team_id = ? AND user_id = ?", teamID, invitee.ID).First(&existing).Error; err == nil {
			ctx.JSON(http.StatusConflict, gin.H{"error": "Already a team member"})
			return
		}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	var pending models.TeamInvitation

	err = db.DB.Where("team_id = ? AND invitee_kakao_id = ? AND status = ?",
		teamID, body.KakaoID, models.InvitationPending).First(&pending).Error

	if err == nil {
		ctx.JSON(http.StatusConflict, gin.H{"error": "A pending invitation already exists"})
		return
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	invitation := models.TeamInvitation{
		TeamID:         teamID,
		InviterID:      userID,
		InviteeKakaoID: body.KakaoID,
		Token:          uuid.NewString(),
		Status:         models.InvitationPending,
		ExpiresAt:      time.Now().Add(invitationTTL),
	}

	if err := db.DB.Create(&invitation).Error; err != nil {
		log.Printf("Failed to create invitation: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create invitation"})
		return
	}

	ctx.JSON(http.StatusCreated, InvitationResponse{
		Token:          invitation.Token,
		TeamID:         invitation.TeamID,
		InviteeKakaoID: invitation.InviteeKakaoID,
		Status:         invitation.Status,
		ExpiresAt:      invitation.ExpiresAt,
	})
}

// AcceptInvitation turns a pending invitation into a membership. The
// accepting user's Kakao id must match the invitee.
func AcceptInvitation(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	token := ctx.Param("token")

	var invitation models.TeamInvitation

	if err := db.DB.Where("token = ?", token).First(&invitation).Error; err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "Invitation not found"})
		return
	}

	if !invitation.IsPending() {
		ctx.JSON(http.StatusConflict, gin.H{"error": "Invitation already responded to"})
		return
	}

	if invitation.IsExpired() {
		db.DB.Model(&invitation).Update("status", models.InvitationExpired)
		ctx.JSON(http.StatusGone, gin.H{"error": "Invitation expired"})
		return
	}

	if invitation.InviteeKakaoID != currentUser.KakaoID {
		log.Printf("Invitation %s accept denied for user %d", token, currentUser.ID)
		ctx.JSON(http.StatusForbidden, gin.H{"error": "이 초대를 수락할 권한이 없습니다."})
		return
	}

	var teamCount int64

	if err := db.DB.Model(&models.TeamMember{}).Where("user_id = ?", currentUser.ID).Count(&teamCount).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if teamCount >= maxTeamCount {
		ctx.JSON(http.StatusConflict, gin.H{"error": "Maximum number of teams exceeded"})
		return
	}

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&invitation).Update("status", models.InvitationAccepted).Error; err != nil {
			return err
		}

		member := models.TeamMember{
			TeamID: invitation.TeamID,
			UserID: currentUser.ID,
			Role:   models.TeamRoleMember,
		}

		return tx.Create(&member).Error
	})

	if err != nil {
		log.Printf("Failed to accept invitation %s: %v", token, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to accept invitation"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Invitation accepted", "team_id": invitation.TeamID})
}

// RejectInvitation marks a pending invitation rejected.
func RejectInvitation(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	token := ctx.Param("token")

	var invitation models.TeamInvitation

	if err := db.DB.Where("token = ?", token).First(&invitation).Error; err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "Invitation not found"})
		return
	}

	if !invitation.IsPending() {
		ctx.JSON(http.StatusConflict, gin.H{"error": "Invitation already responded to"})
		return
	}

	if invitation.InviteeKakaoID != currentUser.KakaoID {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "이 초대를 거절할 권한이 없습니다."})
		return
	}

	if err := db.DB.Model(&invitation).Update("status", models.InvitationRejected).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reject invitation"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Invitation rejected"})
}
