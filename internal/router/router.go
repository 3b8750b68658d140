package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/teamcal-dev/teamcal/internal/handlers"
	"github.com/teamcal-dev/teamcal/internal/middleware"
	"github.com/teamcal-dev/teamcal/internal/types"
)

func NewRouter() *gin.Engine {
	r := gin.Default()

	// Add CORS middleware
	r.Use(cors.New(cors.Config{
		AllowOrigins:     types.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	api := r.Group("/api")
	{
		api.GET("/health", handlers.HealthCheck)
		api.GET("/ws/:team_id", middleware.AuthMiddleware(), handlers.WebSocket)

		// Fan-out trigger for schedule lifecycle events
		api.POST("/notify", handlers.Notify)

		auth := api.Group("/auth")
		{
			auth.POST("/kakao", handlers.KakaoLogin)
			auth.POST("/refresh", handlers.RefreshSession)
			auth.POST("/logout", middleware.AuthMiddleware(), handlers.Logout)
			auth.GET("/me", middleware.AuthMiddleware(), handlers.Me)
		}

		users := api.Group("/users", middleware.AuthMiddleware())
		{
			users.PATCH("/me", handlers.UpdateUser)
		}

		teams := api.Group("/teams", middleware.AuthMiddleware())
		{
			teams.POST("", handlers.CreateTeam)
			teams.GET("", handlers.ListTeams)
			teams.PATCH("/:team_id", handlers.UpdateTeam)
			teams.DELETE("/:team_id", handlers.DeleteTeam)

			teams.GET("/:team_id/members", handlers.ListTeamMembers)
			teams.DELETE("/:team_id/members/:user_id", handlers.RemoveTeamMember)
			teams.PATCH("/:team_id/members/:user_id/role", handlers.ChangeTeamMemberRole)

			teams.POST("/:team_id/invitations", handlers.InviteMember)

			// Schedule endpoints
			teams.POST("/:team_id/schedules", handlers.CreateSchedule)
			teams.GET("/:team_id/schedules", handlers.ListSchedules)
			teams.GET("/:team_id/schedules/archived", handlers.ListArchivedSchedules)
			teams.GET("/:team_id/schedules/:schedule_id", handlers.GetSchedule)
			teams.PUT("/:team_id/schedules/:schedule_id", handlers.UpdateSchedule)
			teams.DELETE("/:team_id/schedules/:schedule_id", handlers.DeleteSchedule)
		}

		invitations := api.Group("/invitations", middleware.AuthMiddleware())
		{
			invitations.POST("/:token/accept", handlers.AcceptInvitation)
			invitations.POST("/:token/reject", handlers.RejectInvitation)
		}

		notifications := api.Group("/notifications", middleware.AuthMiddleware())
		{
			notifications.GET("", handlers.ListMyNotifications)
			notifications.GET("/preferences", handlers.GetPreferences)
			notifications.PUT("/preferences/:key", handlers.UpdatePreference)
		}
	}

	return r
}
