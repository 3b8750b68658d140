package services

import (
	"context"

	"github.com/teamcal-dev/teamcal/internal/models"
	"github.com/teamcal-dev/teamcal/internal/types"
	"gorm.io/gorm"
)

// GormNotificationStore backs the fan-out run with the application
// database.
type GormNotificationStore struct {
	db *gorm.DB
}

func NewGormNotificationStore(db *gorm.DB) *GormNotificationStore {
	return &GormNotificationStore{db: db}
}

func (s *GormNotificationStore) GetSchedule(ctx context.Context, id uint) (*models.Schedule, error) {
	var schedule models.Schedule

	// Unscoped: DELETED events fire after the soft delete.
	if err := s.db.WithContext(ctx).Unscoped().First(&schedule, id).Error; err != nil {
		return nil, err
	}

	return &schedule, nil
}

func (s *GormNotificationStore) GetUserName(ctx context.Context, id uint) (string, error) {
	var user models.User

	if err := s.db.WithContext(ctx).Select("name").First(&user, id).Error; err != nil {
		return "", err
	}

	return user.Name, nil
}

func (s *GormNotificationStore) ListRecipients(ctx context.Context) ([]Recipient, error) {
	var users []models.User

	if err := s.db.WithContext(ctx).
		Select("id, kakao_access_token").
		Where("kakao_access_token IS NOT NULL").
		Find(&users).Error; err != nil {
		return nil, err
	}

	recipients := make([]Recipient, 0, len(users))
	for _, user := range users {
		if user.KakaoAccessToken == nil {
			continue
		}
		recipients = append(recipients, Recipient{
			ID:          user.ID,
			AccessToken: *user.KakaoAccessToken,
		})
	}

	return recipients, nil
}

// ListPreferences is a single bulk query for all recipients; issuing
// one lookup per user here would reintroduce the N+1 pattern this
// method exists to avoid.
func (s *GormNotificationStore) ListPreferences(ctx context.Context, userIDs []uint, scheduleType types.ScheduleType, action types.ActionType) (map[uint]bool, error) {
	var prefs []models.NotificationPreference

	if err := s.db.WithContext(ctx).
		Where("user_id IN ? AND schedule_type = ? AND action_type = ?", userIDs, scheduleType, action).
		Find(&prefs).Error; err != nil {
		return nil, err
	}

	result := make(map[uint]bool, len(prefs))
	for _, pref := range prefs {
		result[pref.UserID] = pref.Enabled
	}

	return result, nil
}

func (s *GormNotificationStore) CreateNotification(ctx context.Context, n *models.Notification) error {
	return s.db.WithContext(ctx).Create(n).Error
}
