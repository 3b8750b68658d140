package services

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/teamcal-dev/teamcal/internal/models"
	"github.com/teamcal-dev/teamcal/internal/types"
)

func testSchedule(start, end time.Time, allDay bool) models.Schedule {
	return models.Schedule{
		Title:   "주간 회의",
		Type:    types.ScheduleTypeWork,
		StartAt: start,
		EndAt:   end,
		AllDay:  allDay,
	}
}

func TestBuildScheduleMessage_SingleDayWithTime(t *testing.T) {
	start := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	end := time.Date(2025, 3, 10, 18, 30, 0, 0, time.UTC)

	message := BuildScheduleMessage(testSchedule(start, end, false), "김철수", types.ActionCreated)

	assert.Contains(t, message, "[일정 등록]")
	assert.Contains(t, message, "작성자: 김철수")
	assert.Contains(t, message, "제목: 주간 회의")
	assert.Contains(t, message, "일자: 2025-03-10")
	assert.Contains(t, message, "시간: 09:00 ~ 18:30")

	// Same start and end date must not render a date range
	assert.Equal(t, 1, strings.Count(message, "2025-03-10"))
	assert.NotContains(t, message, "~ 2025-03-10")
}

func TestBuildScheduleMessage_MultiDayRange(t *testing.T) {
	start := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 7, 3, 23, 59, 0, 0, time.UTC)

	message := BuildScheduleMessage(testSchedule(start, end, true), "이영희", types.ActionUpdated)

	assert.Contains(t, message, "[일정 수정]")
	assert.Contains(t, message, "일자: 2025-07-01 ~ 2025-07-03")
}

func TestBuildScheduleMessage_AllDayOmitsTimeLine(t *testing.T) {
	start := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)

	message := BuildScheduleMessage(testSchedule(start, end, true), "이영희", types.ActionDeleted)

	assert.Contains(t, message, "[일정 삭제]")
	assert.NotContains(t, message, "시간:")
}

func TestBuildScheduleMessage_Deterministic(t *testing.T) {
	start := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	end := time.Date(2025, 3, 11, 10, 0, 0, 0, time.UTC)
	schedule := testSchedule(start, end, false)

	first := BuildScheduleMessage(schedule, "김철수", types.ActionCreated)
	second := BuildScheduleMessage(schedule, "김철수", types.ActionCreated)

	assert.Equal(t, first, second)
}

func TestActionLabelsAreTotal(t *testing.T) {
	for _, action := range types.ActionTypes() {
		assert.NotEmpty(t, action.Label(), "label missing for %s", action)
	}
}
