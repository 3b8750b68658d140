package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/teamcal-dev/teamcal/db"
	"github.com/teamcal-dev/teamcal/internal/models"
	"github.com/teamcal-dev/teamcal/internal/types"
	"github.com/teamcal-dev/teamcal/internal/utils"
	"gorm.io/gorm"
)

type CreateScheduleRequest struct {
	Title       string    `json:"title" binding:"required,max=100"`
	Description string    `json:"description"`
	Type        string    `json:"type" binding:"required,oneof=WORK VACATION"`
	StartAt     time.Time `json:"start_at" binding:"required"`
	EndAt       time.Time `json:"end_at" binding:"required"`
	AllDay      bool      `json:"all_day"`
}

// Type is fixed after creation, matching the create payload minus it.
type UpdateScheduleRequest struct {
	Title       string    `json:"title" binding:"required,max=100"`
	Description string    `json:"description"`
	StartAt     time.Time `json:"start_at" binding:"required"`
	EndAt       time.Time `json:"end_at" binding:"required"`
	AllDay      bool      `json:"all_day"`
}

type ScheduleResponse struct {
	ID          uint       `json:"id"`
	TeamID      uint       `json:"team_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Type        string     `json:"type"`
	StartAt     time.Time  `json:"start_at"`
	EndAt       time.Time  `json:"end_at"`
	AllDay      bool       `json:"all_day"`
	CreatedByID uint       `json:"created_by_id"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty"`
	CanEdit     bool       `json:"can_edit"`
	CanDelete   bool       `json:"can_delete"`
}

func CreateSchedule(ctx *gin.Context) {
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

	var req CreateScheduleRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.EndAt.Before(req.StartAt) {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "end_at must not be before start_at"})
		return
	}

	member, ok := requireTeamMember(ctx, teamID, userID)
	if !ok {
		return
	}

	schedule := models.Schedule{
		TeamID:      teamID,
		Title:       req.Title,
		Description: req.Description,
		Type:        types.ScheduleType(req.Type),
		StartAt:     req.StartAt,
		EndAt:       req.EndAt,
		AllDay:      req.AllDay,
		CreatedByID: userID,
	}

	if err := db.DB.Create(&schedule).Error; err != nil {
		log.Printf("Failed to create schedule: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create schedule"})
		return
	}

	dispatchScheduleEvent(schedule.ID, types.ActionCreated, userID, teamID)

	ctx.JSON(http.StatusCreated, scheduleResponse(schedule, userID, member.IsAdmin()))
}

// ListSchedules returns the team's calendar entries in a date window.
// Any authenticated user may look; non-members see entries with the
// description blanked out.
func ListSchedules(ctx *gin.Context) {
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

	if err := requireTeamExists(ctx, teamID); err != nil {
		return
	}

	isMember, isAdmin := membershipFlags(teamID, userID)

	query := db.DB.Where("team_id = ?", teamID)

	if from, ok := parseTimeQuery(ctx, "from"); ok {
		query = query.Where("start_at >= ?", from)
	}

	if to, ok := parseTimeQuery(ctx, "to"); ok {
		query = query.Where("start_at < ?", to)
	}

	if scheduleType := ctx.Query("type"); scheduleType != "" {
		if !types.ScheduleType(scheduleType).Valid() {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid schedule type"})
			return
		}
		query = query.Where("type = ?", scheduleType)
	}

	var schedules []models.Schedule

	if err := query.Order("start_at ASC").Find(&schedules).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve schedules"})
		return
	}

	response := make([]ScheduleResponse, 0, len(schedules))

	for _, schedule := range schedules {
		item := scheduleResponse(schedule, userID, isAdmin)
		if !isMember {
			item.Description = ""
			item.CanEdit = false
			item.CanDelete = false
		}
		response = append(response, item)
	}

	ctx.JSON(http.StatusOK, response)
}

func GetSchedule(ctx *gin.Context) {
	teamID, scheduleID, err := utils.GetTeamScheduleID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	schedule, ok := findScheduleInTeam(ctx, teamID, scheduleID)
	if !ok {
		return
	}

	isMember, isAdmin := membershipFlags(teamID, userID)

	response := scheduleResponse(schedule, userID, isAdmin)
	if !isMember {
		response.Description = ""
		response.CanEdit = false
		response.CanDelete = false
	}

	ctx.JSON(http.StatusOK, response)
}

// UpdateSchedule rewrites a schedule's editable fields. Only the
// entry's creator or a team admin may update; the type never changes.
func UpdateSchedule(ctx *gin.Context) {
	teamID, scheduleID, err := utils.GetTeamScheduleID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req UpdateScheduleRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.EndAt.Before(req.StartAt) {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "end_at must not be before start_at"})
		return
	}

	schedule, ok := findScheduleInTeam(ctx, teamID, scheduleID)
	if !ok {
		return
	}

	member, ok := requireTeamMember(ctx, teamID, userID)
	if !ok {
		return
	}

	if schedule.CreatedByID != userID && !member.IsAdmin() {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "Only the creator or a team admin can update this schedule"})
		return
	}

	schedule.Title = req.Title
	schedule.Description = req.Description
	schedule.StartAt = req.StartAt
	schedule.EndAt = req.EndAt
	schedule.AllDay = req.AllDay

	if err := db.DB.Save(&schedule).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update schedule"})
		return
	}

	dispatchScheduleEvent(schedule.ID, types.ActionUpdated, userID, teamID)

	ctx.JSON(http.StatusOK, scheduleResponse(schedule, userID, member.IsAdmin()))
}

// DeleteSchedule soft-deletes the entry; it disappears from the
// calendar but stays in the team archive.
func DeleteSchedule(ctx *gin.Context) {
	teamID, scheduleID, err := utils.GetTeamScheduleID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	schedule, ok := findScheduleInTeam(ctx, teamID, scheduleID)
	if !ok {
		return
	}

	member, ok := requireTeamMember(ctx, teamID, userID)
	if !ok {
		return
	}

	if schedule.CreatedByID != userID && !member.IsAdmin() {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "Only the creator or a team admin can delete this schedule"})
		return
	}

	if err := db.DB.Delete(&schedule).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete schedule"})
		return
	}

	dispatchScheduleEvent(schedule.ID, types.ActionDeleted, userID, teamID)

	ctx.Status(http.StatusNoContent)
}

// ListArchivedSchedules returns soft-deleted entries. Admin only.
func ListArchivedSchedules(ctx *gin.Context) {
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

	if _, ok := requireTeamAdmin(ctx, teamID, userID); !ok {
		return
	}

	var schedules []models.Schedule

	if err := db.DB.Unscoped().
		Where("team_id = ? AND deleted_at IS NOT NULL", teamID).
		Order("deleted_at DESC").
		Find(&schedules).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve archived schedules"})
		return
	}

	response := make([]ScheduleResponse, 0, len(schedules))

	for _, schedule := range schedules {
		response = append(response, scheduleResponse(schedule, userID, true))
	}

	ctx.JSON(http.StatusOK, response)
}

// dispatchScheduleEvent kicks off the notification fan-out off the
// request path and tells connected calendars to refresh. Delivery
// results land in the notifications table, not in this response.
func dispatchScheduleEvent(scheduleID uint, action types.ActionType, actorID uint, teamID uint) {
	go func() {
		if _, err := Notifier.Notify(context.Background(), scheduleID, action, actorID); err != nil {
			log.Printf("Notification run failed for schedule %d (%s): %v", scheduleID, action, err)
		}
	}()

	BroadcastTeamRefresh(strconv.FormatUint(uint64(teamID), 10))
}

// findScheduleInTeam loads a live schedule scoped to the team. A
// soft-deleted entry yields 410 so callers can tell "archived" from
// "never existed".
func findScheduleInTeam(ctx *gin.Context, teamID, scheduleID uint) (models.Schedule, bool) {
	var schedule models.Schedule

	err := db.DB.Where("team_id = ?", teamID).First(&schedule, scheduleID).Error

	if err == nil {
		return schedule, true
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve schedule"})
		return models.Schedule{}, false
	}

	var archived models.Schedule

	if err := db.DB.Unscoped().
		Where("team_id = ? AND deleted_at IS NOT NULL", teamID).
		First(&archived, scheduleID).Error; err == nil {
		ctx.JSON(http.StatusGone, gin.H{"error": "Schedule has been archived"})
		return models.Schedule{}, false
	}

	ctx.JSON(http.StatusNotFound, gin.H{"error": "Schedule not found"})
	return models.Schedule{}, false
}

func requireTeamExists(ctx *gin.Context, teamID uint) error {
	var team models.Team

	if err := db.DB.First(&team, teamID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Team not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve team"})
		}
		return err
	}

	return nil
}

func membershipFlags(teamID, userID uint) (isMember bool, isAdmin bool) {
	var member models.TeamMember

	if err := db.DB.Where("team_id = ? AND user_id = ?", teamID, userID).First(&member).Error; err != nil {
		return false, false
	}

	return true, member.IsAdmin()
}

func parseTimeQuery(ctx *gin.Context, key string) (time.Time, bool) {
	value := ctx.Query(key)

	if value == "" {
		return time.Time{}, false
	}

	parsed, err := time.Parse(time.RFC3339, value)

	if err != nil {
		return time.Time{}, false
	}

	return parsed, true
}

func scheduleResponse(schedule models.Schedule, userID uint, isAdmin bool) ScheduleResponse {
	canModify := isAdmin || schedule.CreatedByID == userID

	response := ScheduleResponse{
		ID:          schedule.ID,
		TeamID:      schedule.TeamID,
		Title:       schedule.Title,
		Description: schedule.Description,
		Type:        string(schedule.Type),
		StartAt:     schedule.StartAt,
		EndAt:       schedule.EndAt,
		AllDay:      schedule.AllDay,
		CreatedByID: schedule.CreatedByID,
		CanEdit:     canModify,
		CanDelete:   canModify,
	}

	if schedule.DeletedAt.Valid {
		deletedAt := schedule.DeletedAt.Time
		response.DeletedAt = &deletedAt
	}

	return response
}
