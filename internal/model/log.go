package model

import "time"

type Action string

const (
	ActionCreate      Action = "create"
	ActionUpdate      Action = "update"
	ActionDelete      Action = "delete"
	ActionSmartAssign Action = "smart_assign"
)

// UserRef is the populated actor shape returned by the log read path.
type UserRef struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// ActionLog is an immutable audit record. Task is a value snapshot taken at
// action time, so the record stays intact after the task itself is deleted.
type ActionLog struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	User      *UserRef  `json:"user,omitempty"`
	Action    Action    `json:"action"`
	Task      Task      `json:"task"`
	Timestamp time.Time `json:"timestamp"`
}
