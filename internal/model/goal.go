package model

import (
	"time"
)

// Status is the closed set of goal lifecycle states.
// Transitions are strictly New -> InProgress -> Completed.
type Status string

const (
	StatusNew        Status = "New"
	StatusInProgress Status = "InProgress"
	StatusCompleted  Status = "Completed"

	// StatusAll is the list-filter sentinel meaning "no status filter".
	StatusAll = "All"
)

func (s Status) Valid() bool {
	switch s {
	case StatusNew, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

func (s Status) Label() string {
	if s == StatusInProgress {
		return "In progress"
	}
	return string(s)
}

// Priority is the goal priority level.
type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

type Goal struct {
	ID          int64    `db:"id"`
	Name        string   `db:"name"`
	Description string   `db:"description"`
	Priority    Priority `db:"priority"`
	// PriorityValue and StatusValue are optional secondary sort keys,
	// independent of the Priority and Status fields.
	PriorityValue *int       `db:"priority_value"`
	Status        Status     `db:"status"`
	StatusValue   *int       `db:"status_value"`
	Created       *time.Time `db:"created"`
	Started       *time.Time `db:"started"`
	Ended         *time.Time `db:"ended"`
	CreatorID     int64      `db:"creator_id"`
	ExecutorID    *int64     `db:"executor_id"`

	// Computed fields (not in database)
	CreatorName  string `db:"-"`
	ExecutorName string `db:"-"`
}
