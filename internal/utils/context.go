package utils

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/teamcal-dev/teamcal/internal/middleware"
	"github.com/teamcal-dev/teamcal/internal/types"
)

func GetCurrentUser(ctx *gin.Context) (middleware.AuthenticatedUser, error) {
	user, exists := ctx.Get(types.ContextUserKey)

	if !exists {
		return middleware.AuthenticatedUser{}, fmt.Errorf("User not authenticated")
	}

	authenticatedUser, ok := user.(middleware.AuthenticatedUser)

	if !ok {
		return middleware.AuthenticatedUser{}, fmt.Errorf("Invalid user type in context")
	}

	return authenticatedUser, nil
}

func GetCurrentUserID(ctx *gin.Context) (uint, error) {
	user, err := GetCurrentUser(ctx)

	if err != nil {
		return 0, err
	}

	return user.ID, nil
}

func GetTeamID(ctx *gin.Context) (uint, error) {
	teamID, err := strconv.ParseUint(ctx.Param("team_id"), 10, 64)

	if err != nil {
		return 0, fmt.Errorf("Invalid Team ID")
	}

	return uint(teamID), nil
}

func GetTargetUserID(ctx *gin.Context) (uint, error) {
	targetID, err := strconv.ParseUint(ctx.Param("user_id"), 10, 64)

	if err != nil {
		return 0, fmt.Errorf("Invalid User ID")
	}

	return uint(targetID), nil
}

func GetTeamScheduleID(ctx *gin.Context) (uint, uint, error) {
	teamID, err := GetTeamID(ctx)

	if err != nil {
		return 0, 0, err
	}

	scheduleID, err := strconv.ParseUint(ctx.Param("schedule_id"), 10, 64)

	if err != nil {
		return 0, 0, fmt.Errorf("Invalid Schedule ID")
	}

	return teamID, uint(scheduleID), nil
}
