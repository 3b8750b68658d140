package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/teamcal-dev/teamcal/db"
	"github.com/teamcal-dev/teamcal/internal/models"
	"github.com/teamcal-dev/teamcal/internal/types"
	"github.com/teamcal-dev/teamcal/internal/utils"
	"gorm.io/gorm"
)

type PreferenceResponse struct {
	Key          string `json:"key"`
	ScheduleType string `json:"schedule_type"`
	ActionType   string `json:"action_type"`
	Enabled      bool   `json:"enabled"`
}

type UpdatePreferenceRequest struct {
	Enabled *bool `json:"enabled" binding:"required"`
}

// GetPreferences lists the current user's notification flags, seeding
// the default grid first if none exist yet.
func GetPreferences(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var prefs []models.NotificationPreference

	if err := db.DB.Where("user_id = ?", userID).Find(&prefs).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve preferences"})
		return
	}

	if len(prefs) == 0 {
		if err := seedDefaultPreferences(userID); err != nil {
			log.Printf("Failed to seed default preferences for user %d: %v", userID, err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to initialize preferences"})
			return
		}

		if err := db.DB.Where("user_id = ?", userID).Find(&prefs).Error; err != nil {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve preferences"})
			return
		}
	}

	response := make([]PreferenceResponse, 0, len(prefs))

	for _, pref := range prefs {
		response = append(response, PreferenceResponse{
			Key:          string(pref.ScheduleType) + "_" + string(pref.ActionType),
			ScheduleType: string(pref.ScheduleType),
			ActionType:   string(pref.ActionType),
			Enabled:      pref.Enabled,
		})
	}

	ctx.JSON(http.StatusOK, response)
}

// UpdatePreference flips one flag, addressed by a "WORK_CREATED" style
// key. A missing row is created on the spot.
func UpdatePreference(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	scheduleType, actionType, err := parsePreferenceKey(ctx.Param("key"))

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var req UpdatePreferenceRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "enabled field is required"})
		return
	}

	var pref models.NotificationPreference

	err = db.DB.Where("user_id = ? AND schedule_type = ? AND action_type = ?",
		userID, scheduleType, actionType).First(&pref).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		pref = models.NotificationPreference{
			UserID:       userID,
			ScheduleType: scheduleType,
			ActionType:   actionType,
			Enabled:      *req.Enabled,
		}

		if err := db.DB.Create(&pref).Error; err != nil {
			log.Printf("Failed to create preference for user %d: %v", userID, err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save preference"})
			return
		}
	} else if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve preference"})
		return
	} else {
		if err := db.DB.Model(&pref).Update("enabled", *req.Enabled).Error; err != nil {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save preference"})
			return
		}
		pref.Enabled = *req.Enabled
	}

	ctx.JSON(http.StatusOK, PreferenceResponse{
		Key:          string(pref.ScheduleType) + "_" + string(pref.ActionType),
		ScheduleType: string(pref.ScheduleType),
		ActionType:   string(pref.ActionType),
		Enabled:      pref.Enabled,
	})
}

// parsePreferenceKey splits "VACATION_CREATED" into its two enum
// halves.
func parsePreferenceKey(key string) (types.ScheduleType, types.ActionType, error) {
	parts := strings.SplitN(key, "_", 2)

	if len(parts) != 2 {
		return "", "", errors.New("key must look like VACATION_CREATED")
	}

	scheduleType := types.ScheduleType(parts[0])
	actionType := types.ActionType(parts[1])

	if !scheduleType.Valid() {
		return "", "", errors.New("unsupported schedule type: " + parts[0])
	}

	if !actionType.Valid() {
		return "", "", errors.New("unsupported action type: " + parts[1])
	}

	return scheduleType, actionType, nil
}
