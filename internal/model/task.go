package model

import "time"

type Status string

const (
	StatusTodo       Status = "Todo"
	StatusInProgress Status = "In Progress"
	StatusDone       Status = "Done"
)

type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

// Task is the single board entity. Version increments by one on every
// accepted mutation and is the optimistic-concurrency token.
type Task struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	AssignedUser *string   `json:"assignedUser"`
	Status       Status    `json:"status"`
	Priority     Priority  `json:"priority"`
	UpdatedAt    time.Time `json:"updatedAt"`
	Version      int       `json:"version"`
}

// TaskPatch carries a partial update: nil fields are left unchanged.
type TaskPatch struct {
	Title        *string   `json:"title"`
	Description  *string   `json:"description"`
	AssignedUser *string   `json:"assignedUser"`
	Status       *Status   `json:"status"`
	Priority     *Priority `json:"priority"`
}

type TaskFilter struct {
	Title *string
}

func ValidStatus(s Status) bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone:
		return true
	}
	return false
}

func ValidPriority(p Priority) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}
