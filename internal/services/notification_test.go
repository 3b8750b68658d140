package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teamcal-dev/teamcal/internal/kakao"
	"github.com/teamcal-dev/teamcal/internal/models"
	"github.com/teamcal-dev/teamcal/internal/types"
	"gorm.io/gorm"
)

type fakeStore struct {
	schedule   *models.Schedule
	actorName  string
	actorErr   error
	recipients []Recipient
	prefs      map[uint]bool
	prefsErr   error

	prefQueries int
	receipts    []models.Notification
	receiptErrs map[uint]error
}

func (f *fakeStore) GetSchedule(ctx context.Context, id uint) (*models.Schedule, error) {
	if f.schedule == nil || f.schedule.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return f.schedule, nil
}

func (f *fakeStore) GetUserName(ctx context.Context, id uint) (string, error) {
	if f.actorErr != nil {
		return "", f.actorErr
	}
	return f.actorName, nil
}

func (f *fakeStore) ListRecipients(ctx context.Context) ([]Recipient, error) {
	return f.recipients, nil
}

func (f *fakeStore) ListPreferences(ctx context.Context, userIDs []uint, scheduleType types.ScheduleType, action types.ActionType) (map[uint]bool, error) {
	f.prefQueries++
	if f.prefsErr != nil {
		return nil, f.prefsErr
	}
	return f.prefs, nil
}

func (f *fakeStore) CreateNotification(ctx context.Context, n *models.Notification) error {
	if err, ok := f.receiptErrs[n.UserID]; ok {
		return err
	}
	f.receipts = append(f.receipts, *n)
	return nil
}

type fakeGateway struct {
	results map[string]kakao.SendResult
	calls   []string
}

func (f *fakeGateway) SendMemo(ctx context.Context, accessToken, message string) kakao.SendResult {
	f.calls = append(f.calls, accessToken)
	if result, ok := f.results[accessToken]; ok {
		return result
	}
	return kakao.SendResult{Delivered: true, StatusCode: 200}
}

func newTestSchedule(id uint) *models.Schedule {
	return &models.Schedule{
		Model:   gorm.Model{ID: id},
		TeamID:  1,
		Title:   "휴가",
		Type:    types.ScheduleTypeVacation,
		StartAt: time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC),
		EndAt:   time.Date(2025, 8, 5, 0, 0, 0, 0, time.UTC),
		AllDay:  true,
	}
}

func TestNotify_ScheduleNotFound(t *testing.T) {
	store := &fakeStore{}
	gateway := &fakeGateway{}
	svc := NewNotificationService(store, gateway)

	_, err := svc.Notify(context.Background(), 42, types.ActionCreated, 1)

	assert.ErrorIs(t, err, ErrScheduleNotFound)
	assert.Empty(t, store.receipts)
	assert.Empty(t, gateway.calls)
}

func TestNotify_NoRecipients(t *testing.T) {
	store := &fakeStore{schedule: newTestSchedule(1), actorName: "김철수"}
	gateway := &fakeGateway{}
	svc := NewNotificationService(store, gateway)

	result, err := svc.Notify(context.Background(), 1, types.ActionCreated, 1)

	require.NoError(t, err)
	assert.Equal(t, 0, result.Sent)
	assert.Equal(t, 0, result.Failed)
	assert.Zero(t, store.prefQueries, "preference lookup must be skipped with no recipients")
	assert.Empty(t, gateway.calls)
}

func TestNotify_DisabledPreferenceSkipsGateway(t *testing.T) {
	store := &fakeStore{
		schedule:  newTestSchedule(1),
		actorName: "김철수",
		recipients: []Recipient{
			{ID: 10, AccessToken: "token-10"},
			{ID: 11, AccessToken: "token-11"},
			{ID: 12, AccessToken: "token-12"},
		},
		// User 10 opted out; 11 and 12 have no row at all.
		prefs: map[uint]bool{10: false},
	}
	gateway := &fakeGateway{}
	svc := NewNotificationService(store, gateway)

	result, err := svc.Notify(context.Background(), 1, types.ActionCreated, 1)

	require.NoError(t, err)
	assert.Equal(t, 2, result.Sent)
	assert.Equal(t, 0, result.Failed)
	assert.Equal(t, []string{"token-11", "token-12"}, gateway.calls)
	assert.Len(t, store.receipts, 2)
	assert.Equal(t, 1, store.prefQueries, "preferences must be resolved in one bulk query")

	for _, receipt := range store.receipts {
		assert.NotEqual(t, uint(10), receipt.UserID)
	}
}

func TestNotify_FailureIsolation(t *testing.T) {
	store := &fakeStore{
		schedule:  newTestSchedule(1),
		actorName: "김철수",
		recipients: []Recipient{
			{ID: 10, AccessToken: "token-bad"},
			{ID: 11, AccessToken: "token-good"},
		},
	}
	gateway := &fakeGateway{
		results: map[string]kakao.SendResult{
			"token-bad": {Delivered: false, StatusCode: 401, ErrorDetail: "this access token does not exist"},
		},
	}
	svc := NewNotificationService(store, gateway)

	result, err := svc.Notify(context.Background(), 1, types.ActionUpdated, 1)

	require.NoError(t, err)
	assert.Equal(t, 1, result.Sent)
	assert.Equal(t, 1, result.Failed)
	assert.Len(t, gateway.calls, 2, "a failed recipient must not block later recipients")

	require.Len(t, result.FailureDetails, 1)
	assert.Equal(t, uint(10), result.FailureDetails[0].RecipientID)
	assert.Equal(t, 401, result.FailureDetails[0].StatusCode)
	assert.NotEmpty(t, result.FailureDetails[0].ErrorDetail)

	require.Len(t, store.receipts, 2)

	failed := store.receipts[0]
	assert.Equal(t, models.NotificationStatusFailed, failed.Status)
	assert.Nil(t, failed.SentAt)
	assert.Contains(t, failed.Message, "[KAKAO_ERROR 401]")
	assert.Contains(t, failed.Message, "this access token does not exist")
	assert.Contains(t, failed.Message, "제목: 휴가")

	succeeded := store.receipts[1]
	assert.Equal(t, models.NotificationStatusSuccess, succeeded.Status)
	assert.NotNil(t, succeeded.SentAt)
	assert.Equal(t, "SCHEDULE_UPDATED", succeeded.Type)
	assert.Equal(t, models.NotificationChannelKakao, succeeded.Channel)
}

func TestNotify_ActorLookupFailureUsesFallback(t *testing.T) {
	store := &fakeStore{
		schedule:   newTestSchedule(1),
		actorErr:   errors.New("connection reset"),
		recipients: []Recipient{{ID: 10, AccessToken: "token-10"}},
	}
	gateway := &fakeGateway{}
	svc := NewNotificationService(store, gateway)

	result, err := svc.Notify(context.Background(), 1, types.ActionCreated, 99)

	require.NoError(t, err)
	assert.Equal(t, 1, result.Sent)
	require.Len(t, store.receipts, 1)
	assert.Contains(t, store.receipts[0].Message, "작성자: "+FallbackActorName)
}

func TestNotify_PreferenceLoadErrorDefaultsToAllow(t *testing.T) {
	store := &fakeStore{
		schedule:   newTestSchedule(1),
		actorName:  "김철수",
		recipients: []Recipient{{ID: 10, AccessToken: "token-10"}},
		prefsErr:   errors.New("query timeout"),
	}
	gateway := &fakeGateway{}
	svc := NewNotificationService(store, gateway)

	result, err := svc.Notify(context.Background(), 1, types.ActionCreated, 1)

	require.NoError(t, err)
	assert.Equal(t, 1, result.Sent)
}

func TestNotify_ReceiptWriteFailureDoesNotAbortRun(t *testing.T) {
	store := &fakeStore{
		schedule:  newTestSchedule(1),
		actorName: "김철수",
		recipients: []Recipient{
			{ID: 10, AccessToken: "token-10"},
			{ID: 11, AccessToken: "token-11"},
		},
		receiptErrs: map[uint]error{10: errors.New("disk full")},
	}
	gateway := &fakeGateway{}
	svc := NewNotificationService(store, gateway)

	result, err := svc.Notify(context.Background(), 1, types.ActionCreated, 1)

	require.NoError(t, err)
	assert.Equal(t, 2, result.Sent)
	assert.Len(t, gateway.calls, 2)
	require.Len(t, store.receipts, 1)
	assert.Equal(t, uint(11), store.receipts[0].UserID)
}
