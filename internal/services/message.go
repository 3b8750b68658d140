package services

import (
	"fmt"
	"strings"

	"github.com/teamcal-dev/teamcal/internal/models"
	"github.com/teamcal-dev/teamcal/internal/types"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// BuildScheduleMessage renders the notification text for one schedule
// event. Pure function: the same inputs always produce the same text,
// and the orchestrator renders it once per run for all recipients.
func BuildScheduleMessage(schedule models.Schedule, actorName string, action types.ActionType) string {
	var b strings.Builder

	fmt.Fprintf(&b, "📅 [일정 %s]\n", action.Label())
	fmt.Fprintf(&b, "작성자: %s\n", actorName)
	fmt.Fprintf(&b, "제목: %s\n", schedule.Title)

	startDate := schedule.StartAt.Format(dateLayout)
	endDate := schedule.EndAt.Format(dateLayout)

	fmt.Fprintf(&b, "일자: %s", startDate)
	if startDate != endDate {
		fmt.Fprintf(&b, " ~ %s", endDate)
	}

	if !schedule.AllDay {
		fmt.Fprintf(&b, "\n시간: %s ~ %s",
			schedule.StartAt.Format(timeLayout),
			schedule.EndAt.Format(timeLayout))
	}

	return b.String()
}
