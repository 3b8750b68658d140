package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/teamcal-dev/teamcal/internal/kakao"
	"github.com/teamcal-dev/teamcal/internal/models"
	"github.com/teamcal-dev/teamcal/internal/types"
)

// ErrScheduleNotFound is the only fatal precondition of a notification
// run: without the schedule there is nothing to announce.
var ErrScheduleNotFound = errors.New("schedule not found")

// FallbackActorName is used when the actor lookup fails; a broken
// actor row must not block delivery.
const FallbackActorName = "알 수 없음"

const defaultRunTimeout = 2 * time.Minute

// Gateway sends one message to one recipient's own chat.
type Gateway interface {
	SendMemo(ctx context.Context, accessToken, message string) kakao.SendResult
}

// Recipient is a user holding a messaging credential.
type Recipient struct {
	ID          uint
	AccessToken string
}

// NotificationStore is the persistence port of the fan-out run.
type NotificationStore interface {
	// GetSchedule must return soft-deleted schedules too: DELETED
	// notifications go out after the schedule is archived.
	GetSchedule(ctx context.Context, id uint) (*models.Schedule, error)
	GetUserName(ctx context.Context, id uint) (string, error)
	ListRecipients(ctx context.Context) ([]Recipient, error)
	// ListPreferences loads the flags for all given users in one
	// query. Users without a row are simply absent from the map.
	ListPreferences(ctx context.Context, userIDs []uint, scheduleType types.ScheduleType, action types.ActionType) (map[uint]bool, error)
	CreateNotification(ctx context.Context, n *models.Notification) error
}

type FailureDetail struct {
	RecipientID uint   `json:"recipient_id"`
	StatusCode  int    `json:"status_code"`
	ErrorDetail string `json:"error_detail"`
}

type NotifyResult struct {
	Sent           int             `json:"sent"`
	Failed         int             `json:"failed"`
	FailureDetails []FailureDetail `json:"failure_details"`
}

type NotificationService struct {
	store      NotificationStore
	gateway    Gateway
	runTimeout time.Duration
}

func NewNotificationService(store NotificationStore, gateway Gateway) *NotificationService {
	return &NotificationService{
		store:      store,
		gateway:    gateway,
		runTimeout: defaultRunTimeout,
	}
}

// Notify fans a schedule event out to every opted-in recipient and
// records one delivery receipt per attempt. A single recipient's
// failure never aborts the run; only a missing schedule does.
func (s *NotificationService) Notify(ctx context.Context, scheduleID uint, action types.ActionType, actorID uint) (NotifyResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.runTimeout)
	defer cancel()

	var result NotifyResult

	schedule, err := s.store.GetSchedule(ctx, scheduleID)
	if err != nil {
		return result, ErrScheduleNotFound
	}

	actorName, err := s.store.GetUserName(ctx, actorID)
	if err != nil || actorName == "" {
		actorName = FallbackActorName
	}

	recipients, err := s.store.ListRecipients(ctx)
	if err != nil {
		log.Printf("Failed to list notification recipients: %v", err)
		return result, err
	}

	if len(recipients) == 0 {
		return result, nil
	}

	userIDs := make([]uint, 0, len(recipients))
	for _, r := range recipients {
		userIDs = append(userIDs, r.ID)
	}

	prefs, err := s.store.ListPreferences(ctx, userIDs, schedule.Type, action)
	if err != nil {
		// Degraded lookup: default-allow means everyone gets notified.
		log.Printf("Failed to load notification preferences: %v", err)
		prefs = map[uint]bool{}
	}

	message := BuildScheduleMessage(*schedule, actorName, action)
	notifType := "SCHEDULE_" + string(action)

	for _, recipient := range recipients {
		// Absent row means enabled.
		if enabled, ok := prefs[recipient.ID]; ok && !enabled {
			continue
		}

		sendResult := s.gateway.SendMemo(ctx, recipient.AccessToken, message)

		receipt := models.Notification{
			ScheduleID: schedule.ID,
			UserID:     recipient.ID,
			Type:       notifType,
			Channel:    models.NotificationChannelKakao,
		}

		if sendResult.Delivered {
			now := time.Now()
			receipt.Status = models.NotificationStatusSuccess
			receipt.Message = message
			receipt.SentAt = &now
			result.Sent++
		} else {
			receipt.Status = models.NotificationStatusFailed
			receipt.Message = failedReceiptMessage(sendResult, message)
			result.Failed++
			result.FailureDetails = append(result.FailureDetails, FailureDetail{
				RecipientID: recipient.ID,
				StatusCode:  sendResult.StatusCode,
				ErrorDetail: sendResult.ErrorDetail,
			})
		}

		if err := s.store.CreateNotification(ctx, &receipt); err != nil {
			// Receipt persistence must not block the remaining
			// recipients.
			log.Printf("Failed to save delivery receipt for user %d: %v", recipient.ID, err)
		}
	}

	return result, nil
}

func failedReceiptMessage(r kakao.SendResult, original string) string {
	detail := r.ErrorDetail
	if detail == "" {
		detail = "unknown error"
	}
	return fmt.Sprintf("[KAKAO_ERROR %d] %s | 원본: %s", r.StatusCode, detail, original)
}
