package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/teamcal-dev/teamcal/db"
	"github.com/teamcal-dev/teamcal/internal/models"
	"github.com/teamcal-dev/teamcal/internal/utils"
	"gorm.io/gorm"
)

type CreateTeamRequest struct {
	Name        string `json:"name" binding:"required,max=50"`
	Description string `json:"description"`
}

type UpdateTeamRequest struct {
	Name        string `json:"name" binding:"required,max=50"`
	Description string `json:"description"`
}

type TeamResponse struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	OwnerID     uint   `json:"owner_id"`
	MyRole      string `json:"my_role,omitempty"`
}

type TeamMemberResponse struct {
	UserID          uint   `json:"user_id"`
	Name            string `json:"name"`
	ProfileImageURL string `json:"profile_image_url"`
	Role            string `json:"role"`
}

// CreateTeam creates a team and registers the creator as its admin.
func CreateTeam(ctx *gin.Context) {
	var body CreateTeamRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	team := models.Team{
		Name:        body.Name,
		Description: body.Description,
		OwnerID:     userID,
	}

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&team).Error; err != nil {
			return err
		}

		member := models.TeamMember{
			TeamID: team.ID,
			UserID: userID,
			Role:   models.TeamRoleAdmin,
		}

		return tx.Create(&member).Error
	})

	if err != nil {
		log.Printf("Failed to create team: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create team"})
		return
	}

	ctx.JSON(http.StatusCreated, TeamResponse{
		ID:          team.ID,
		Name:        team.Name,
		Description: team.Description,
		OwnerID:     team.OwnerID,
		MyRole:      models.TeamRoleAdmin,
	})
}

// ListTeams returns the teams the current user belongs to.
func ListTeams(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var memberships []models.TeamMember

	if err := db.DB.Preload("Team").Where("user_id = ?", userID).Find(&memberships).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve teams"})
		return
	}

	response := make([]TeamResponse, 0, len(memberships))

	for _, membership := range memberships {
		response = append(response, TeamResponse{
			ID:          membership.Team.ID,
			Name:        membership.Team.Name,
			Description: membership.Team.Description,
			OwnerID:     membership.Team.OwnerID,
			MyRole:      membership.Role,
		})
	}

	ctx.JSON(http.StatusOK, response)
}

func UpdateTeam(ctx *gin.Context) {
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

	var body UpdateTeamRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if _, ok := requireTeamAdmin(ctx, teamID, userID); !ok {
		return
	}

	var team models.Team

	if err := db.DB.First(&team, teamID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Team not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve team"})
		}
		return
	}

	team.Name = body.Name
	team.Description = body.Description

	if err := db.DB.Save(&team).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update team"})
		return
	}

	ctx.JSON(http.StatusOK, TeamResponse{
		ID:          team.ID,
		Name:        team.Name,
		Description: team.Description,
		OwnerID:     team.OwnerID,
	})
}

func DeleteTeam(ctx *gin.Context) {
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

	var team models.Team

	if err := db.DB.Where("id = ? AND owner_id = ?", teamID, userID).First(&team).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Team not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve team"})
		}
		return
	}

	if err := db.DB.Delete(&team).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete team"})
		return
	}

	ctx.Status(http.StatusNoContent)
}

func ListTeamMembers(ctx *gin.Context) {
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

	if _, ok := requireTeamMember(ctx, teamID, userID); !ok {
		return
	}

	var members []models.TeamMember

	if err := db.DB.Preload("User").Where("team_id = ?", teamID).Find(&members).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve members"})
		return
	}

	response := make([]TeamMemberResponse, 0, len(members))

	for _, member := range members {
		response = append(response, TeamMemberResponse{
			UserID:          member.UserID,
			Name:            member.User.Name,
			ProfileImageURL: member.User.ProfileImageURL,
			Role:            member.Role,
		})
	}

	ctx.JSON(http.StatusOK, response)
}

// RemoveTeamMember kicks a member out of the team. Admin only; the
// team owner cannot be removed.
func RemoveTeamMember(ctx *gin.Context) {
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

	targetID, err := utils.GetTargetUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var team models.Team

	if err := db.DB.First(&team, teamID).Error; err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "Team not found"})
		return
	}

	if team.OwnerID == targetID {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Team owner cannot be removed"})
		return
	}

	result := db.DB.Where("team_id = ? AND user_id = ?", teamID, targetID).Delete(&models.TeamMember{})

	if result.Error != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove member"})
		return
	}

	if result.RowsAffected == 0 {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "Member not found"})
		return
	}

	ctx.Status(http.StatusNoContent)
}

// ChangeTeamMemberRole switches a member between ADMIN and MEMBER.
func ChangeTeamMemberRole(ctx *gin.Context) {
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

	targetID, err := utils.GetTargetUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var body struct {
		Role string `json:"role" binding:"required,oneof=ADMIN MEMBER"`
	}

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Role must be ADMIN or MEMBER"})
		return
	}

	var member models.TeamMember

	if err := db.DB.Where("team_id = ? AND user_id = ?", teamID, targetID).First(&member).Error; err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "Member not found"})
		return
	}

	if err := db.DB.Model(&member).Update("role", body.Role).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to change role"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Role updated successfully"})
}

// requireTeamMember loads the membership row or writes the error
// response and returns ok=false.
func requireTeamMember(ctx *gin.Context, teamID, userID uint) (models.TeamMember, bool) {
	var member models.TeamMember

	if err := db.DB.Where("team_id = ? AND user_id = ?", teamID, userID).First(&member).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusForbidden, gin.H{"error": "Not a member of this team"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve membership"})
		}
		return models.TeamMember{}, false
	}

	return member, true
}

func requireTeamAdmin(ctx *gin.Context, teamID, userID uint) (models.TeamMember, bool) {
	member, ok := requireTeamMember(ctx, teamID, userID)

	if !ok {
		return models.TeamMember{}, false
	}

	if !member.IsAdmin() {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "Admin role required"})
		return models.TeamMember{}, false
	}

	return member, true
}
