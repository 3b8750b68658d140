package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teamcal-dev/teamcal/internal/kakao"
	"github.com/teamcal-dev/teamcal/internal/models"
	"github.com/teamcal-dev/teamcal/internal/services"
	"github.com/teamcal-dev/teamcal/internal/types"
	"gorm.io/gorm"
)

type stubStore struct {
	schedule   *models.Schedule
	recipients []services.Recipient
	receipts   []models.Notification
}

func (s *stubStore) GetSchedule(ctx context.Context, id uint) (*models.Schedule, error) {
	if s.schedule == nil || s.schedule.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return s.schedule, nil
}

func (s *stubStore) GetUserName(ctx context.Context, id uint) (string, error) {
	return "김철수", nil
}

func (s *stubStore) ListRecipients(ctx context.Context) ([]services.Recipient, error) {
	return s.recipients, nil
}

func (s *stubStore) ListPreferences(ctx context.Context, userIDs []uint, scheduleType types.ScheduleType, action types.ActionType) (map[uint]bool, error) {
	return map[uint]bool{}, nil
}

func (s *stubStore) CreateNotification(ctx context.Context, n *models.Notification) error {
	s.receipts = append(s.receipts, *n)
	return nil
}

type stubGateway struct {
	results map[string]kakao.SendResult
}

func (g *stubGateway) SendMemo(ctx context.Context, accessToken, message string) kakao.SendResult {
	if result, ok := g.results[accessToken]; ok {
		return result
	}
	return kakao.SendResult{Delivered: true, StatusCode: 200}
}

func notifyRouter(t *testing.T, store *stubStore, gateway *stubGateway) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	previous := Notifier
	Notifier = services.NewNotificationService(store, gateway)
	t.Cleanup(func() { Notifier = previous })

	r := gin.New()
	r.POST("/api/notify", Notify)
	return r
}

func postNotify(t *testing.T, r *gin.Engine, body any) *httptest.ResponseRecorder {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/notify", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestNotifyHandler_MissingFields(t *testing.T) {
	r := notifyRouter(t, &stubStore{}, &stubGateway{})

	w := postNotify(t, r, gin.H{"scheduleId": 1})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestNotifyHandler_InvalidActionType(t *testing.T) {
	r := notifyRouter(t, &stubStore{}, &stubGateway{})

	w := postNotify(t, r, gin.H{"scheduleId": 1, "actionType": "ARCHIVED", "actorUserId": 2})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestNotifyHandler_ScheduleNotFound(t *testing.T) {
	r := notifyRouter(t, &stubStore{}, &stubGateway{})

	w := postNotify(t, r, gin.H{"scheduleId": 42, "actionType": "CREATED", "actorUserId": 2})

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "일정을 찾을 수 없습니다.")
}

func TestNotifyHandler_ReportsCounts(t *testing.T) {
	store := &stubStore{
		schedule: &models.Schedule{
			Model:   gorm.Model{ID: 1},
			TeamID:  1,
			Title:   "휴가",
			Type:    types.ScheduleTypeVacation,
			StartAt: time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC),
			EndAt:   time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC),
			AllDay:  true,
		},
		recipients: []services.Recipient{
			{ID: 10, AccessToken: "token-good"},
			{ID: 11, AccessToken: "token-bad"},
		},
	}
	gateway := &stubGateway{
		results: map[string]kakao.SendResult{
			"token-bad": {Delivered: false, StatusCode: 401, ErrorDetail: "this access token does not exist"},
		},
	}
	r := notifyRouter(t, store, gateway)

	w := postNotify(t, r, gin.H{"scheduleId": 1, "actionType": "CREATED", "actorUserId": 2})

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Sent           int `json:"sent"`
		Failed         int `json:"failed"`
		FailureDetails []struct {
			RecipientID uint   `json:"recipient_id"`
			StatusCode  int    `json:"status_code"`
			ErrorDetail string `json:"error_detail"`
		} `json:"failureDetails"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))

	assert.Equal(t, 1, body.Sent)
	assert.Equal(t, 1, body.Failed)
	require.Len(t, body.FailureDetails, 1)
	assert.Equal(t, uint(11), body.FailureDetails[0].RecipientID)
	assert.Equal(t, 401, body.FailureDetails[0].StatusCode)
}
