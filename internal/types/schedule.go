package types

// ScheduleType categorizes a calendar entry.
type ScheduleType string

const (
	ScheduleTypeWork     ScheduleType = "WORK"
	ScheduleTypeVacation ScheduleType = "VACATION"
)

// ActionType is the schedule lifecycle event that triggers a notification.
type ActionType string

const (
	ActionCreated ActionType = "CREATED"
	ActionUpdated ActionType = "UPDATED"
	ActionDeleted ActionType = "DELETED"
)

var actionLabels = map[ActionType]string{
	ActionCreated: "등록",
	ActionUpdated: "수정",
	ActionDeleted: "삭제",
}

func (t ScheduleType) Valid() bool {
	return t == ScheduleTypeWork || t == ScheduleTypeVacation
}

func (a ActionType) Valid() bool {
	_, ok := actionLabels[a]
	return ok
}

// Label returns the user-facing Korean label for the action.
func (a ActionType) Label() string {
	return actionLabels[a]
}

func ScheduleTypes() []ScheduleType {
	return []ScheduleType{ScheduleTypeVacation, ScheduleTypeWork}
}

func ActionTypes() []ActionType {
	return []ActionType{ActionCreated, ActionUpdated, ActionDeleted}
}
