package handlers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/teamcal-dev/teamcal/db"
	"github.com/teamcal-dev/teamcal/internal/models"
	"github.com/teamcal-dev/teamcal/internal/services"
	"github.com/teamcal-dev/teamcal/internal/types"
	"github.com/teamcal-dev/teamcal/internal/utils"
)

type NotifyRequest struct {
	ScheduleID  uint   `json:"scheduleId" binding:"required"`
	ActionType  string `json:"actionType" binding:"required,oneof=CREATED UPDATED DELETED"`
	ActorUserID uint   `json:"actorUserId" binding:"required"`
}

type NotificationHistoryItem struct {
	ID         uint       `json:"id"`
	ScheduleID uint       `json:"schedule_id"`
	Type       string     `json:"type"`
	Channel    string     `json:"channel"`
	Status     string     `json:"status"`
	Message    string     `json:"message"`
	SentAt     *time.Time `json:"sent_at"`
	CreatedAt  time.Time  `json:"created_at"`
}

// Notify is the fan-out trigger: it runs a full notification pass for
// one schedule event and reports aggregate delivery counts. Individual
// delivery failures do not fail the request; only a missing schedule
// does.
func Notify(ctx *gin.Context) {
	var req NotifyRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields: scheduleId, actionType, actorUserId"})
		return
	}

	result, err := Notifier.Notify(ctx.Request.Context(), req.ScheduleID, types.ActionType(req.ActionType), req.ActorUserID)

	if err != nil {
		if errors.Is(err, services.ErrScheduleNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "일정을 찾을 수 없습니다."})
			return
		}

		log.Printf("Notification run failed for schedule %d: %v", req.ScheduleID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "알림 처리 중 오류가 발생했습니다."})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"sent":           result.Sent,
		"failed":         result.Failed,
		"failureDetails": result.FailureDetails,
	})
}

// ListMyNotifications returns the current user's delivery receipts,
// newest first.
func ListMyNotifications(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var notifications []models.Notification

	if err := db.DB.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(100).
		Find(&notifications).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve notifications"})
		return
	}

	response := make([]NotificationHistoryItem, 0, len(notifications))

	for _, notification := range notifications {
		response = append(response, NotificationHistoryItem{
			ID:         notification.ID,
			ScheduleID: notification.ScheduleID,
			Type:       notification.Type,
			Channel:    notification.Channel,
			Status:     notification.Status,
			Message:    notification.Message,
			SentAt:     notification.SentAt,
			CreatedAt:  notification.CreatedAt,
		})
	}

	ctx.JSON(http.StatusOK, response)
}
