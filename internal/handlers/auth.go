package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/teamcal-dev/teamcal/db"
	"github.com/teamcal-dev/teamcal/internal/auth"
	"github.com/teamcal-dev/teamcal/internal/kakao"
	"github.com/teamcal-dev/teamcal/internal/models"
	"github.com/teamcal-dev/teamcal/internal/services"
	"github.com/teamcal-dev/teamcal/internal/types"
	"github.com/teamcal-dev/teamcal/internal/utils"
	"gorm.io/gorm"
)

// PendingName marks a freshly signed-up user who has not picked a
// display name yet; the frontend prompts for one before proceeding.
const PendingName = "__PENDING__"

const refreshTokenTTL = 14 * 24 * time.Hour

// Wired in main before the router starts serving.
var (
	KakaoClient *kakao.Client
	Notifier    *services.NotificationService
)

type KakaoLoginRequest struct {
	Code        string `json:"code" binding:"required"`
	RedirectURI string `json:"redirectUri" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

type TokenPairResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// KakaoLogin exchanges a Kakao authorization code for a session. New
// users are created with a pending name and seeded default
// notification preferences; returning users get their stored Kakao
// access token refreshed.
func KakaoLogin(ctx *gin.Context) {
	var req KakaoLoginRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "인가 코드가 필요합니다."})
		return
	}

	token, err := KakaoClient.ExchangeCode(ctx.Request.Context(), req.Code, req.RedirectURI)

	if err != nil {
		log.Printf("Kakao token exchange failed: %v", err)
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "카카오 인증에 실패했습니다."})
		return
	}

	info, err := KakaoClient.GetUserInfo(ctx.Request.Context(), token.AccessToken)

	if err != nil {
		log.Printf("Kakao user info fetch failed: %v", err)
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "카카오 사용자 정보 조회에 실패했습니다."})
		return
	}

	var user models.User
	isNewUser := false

	err = db.DB.Where("kakao_id = ?", info.ID).First(&user).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		isNewUser = true

		user = models.User{
			KakaoID:          info.ID,
			Name:             PendingName,
			Email:            info.KakaoAccount.Email,
			ProfileImageURL:  info.Properties.ProfileImage,
			KakaoAccessToken: &token.AccessToken,
			KakaoProfile:     []byte(info.RawProfile),
			Role:             "USER",
		}

		if err := db.DB.Create(&user).Error; err != nil {
			log.Printf("Failed to create user: %v", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "사용자 생성에 실패했습니다."})
			return
		}

		if err := seedDefaultPreferences(user.ID); err != nil {
			// Missing rows fall back to default-allow, so signup
			// still succeeds.
			log.Printf("Failed to seed default preferences for user %d: %v", user.ID, err)
		}
	} else if err != nil {
		log.Printf("Database error when fetching user: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	} else {
		updates := map[string]interface{}{
			"kakao_access_token": token.AccessToken,
			"profile_image_url":  info.Properties.ProfileImage,
		}
		if err := db.DB.Model(&user).Updates(updates).Error; err != nil {
			log.Printf("Failed to update kakao token for user %d: %v", user.ID, err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}
	}

	pair, err := issueTokenPair(user)

	if err != nil {
		log.Printf("Failed to issue tokens: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "로그인 처리에 실패했습니다."})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
		"is_new_user":   isNewUser,
		"user":          userResponse(user),
	})
}

// RefreshSession rotates a refresh token: the presented token is
// revoked and a fresh pair is issued.
func RefreshSession(ctx *gin.Context) {
	var req RefreshRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	selector, verifier, err := auth.SplitRefreshToken(req.RefreshToken)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid refresh token"})
		return
	}

	var stored models.RefreshToken

	if err := db.DB.Where("selector = ?", selector).First(&stored).Error; err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid refresh token"})
		return
	}

	if time.Now().After(stored.ExpiresAt) || !auth.MatchRefreshToken(stored.VerifierHash, verifier) {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired refresh token"})
		return
	}

	var user models.User

	if err := db.DB.First(&user, stored.UserID).Error; err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
		return
	}

	if err := db.DB.Delete(&stored).Error; err != nil {
		log.Printf("Failed to revoke refresh token %d: %v", stored.ID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	pair, err := issueTokenPair(user)

	if err != nil {
		log.Printf("Failed to issue tokens: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusOK, pair)
}

// Logout revokes every refresh token of the current user.
func Logout(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	if err := db.DB.Where("user_id = ?", userID).Delete(&models.RefreshToken{}).Error; err != nil {
		log.Printf("Failed to delete refresh tokens for user %d: %v", userID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

func Me(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var user models.User

	if err := db.DB.First(&user, currentUser.ID).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"user": userResponse(user)})
}

func issueTokenPair(user models.User) (TokenPairResponse, error) {
	accessToken, err := auth.GenerateJWT(user.ID, user.KakaoID)

	if err != nil {
		return TokenPairResponse{}, err
	}

	raw, selector, verifierHash, err := auth.NewRefreshToken()

	if err != nil {
		return TokenPairResponse{}, err
	}

	record := models.RefreshToken{
		UserID:       user.ID,
		Selector:     selector,
		VerifierHash: verifierHash,
		ExpiresAt:    time.Now().Add(refreshTokenTTL),
	}

	if err := db.DB.Create(&record).Error; err != nil {
		return TokenPairResponse{}, err
	}

	return TokenPairResponse{AccessToken: accessToken, RefreshToken: raw}, nil
}

// seedDefaultPreferences creates the full preference grid for a new
// user, every flag enabled.
func seedDefaultPreferences(userID uint) error {
	var prefs []models.NotificationPreference

	for _, scheduleType := range types.ScheduleTypes() {
		for _, action := range types.ActionTypes() {
			prefs = append(prefs, models.NotificationPreference{
				UserID:       userID,
				ScheduleType: scheduleType,
				ActionType:   action,
				Enabled:      true,
			})
		}
	}

	return db.DB.Create(&prefs).Error
}

func userResponse(user models.User) types.UserResponse {
	return types.UserResponse{
		ID:              user.ID,
		KakaoID:         user.KakaoID,
		Name:            user.Name,
		Email:           user.Email,
		ProfileImageURL: user.ProfileImageURL,
	}
}

// UpdateUser changes the current user's display name, used once after
// signup to replace the pending placeholder.
func UpdateUser(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req struct {
		Name string `json:"name" binding:"required,max=20"`
	}

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	name := strings.TrimSpace(req.Name)

	if name == "" || name == PendingName {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid name"})
		return
	}

	var user models.User

	if err := db.DB.First(&user, currentUser.ID).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if err := db.DB.Model(&user).Update("name", name).Error; err != nil {
		log.Printf("Failed to update name for user %d: %v", user.ID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	user.Name = name

	ctx.JSON(http.StatusOK, gin.H{"user": userResponse(user)})
}
