package model

import "time"

// Task status values. A task is created OPEN and moves through
// IN_PROGRESS to a terminal DONE or CANCELLED state.
const (
	TaskStatusOpen       = "OPEN"
	TaskStatusInProgress = "IN_PROGRESS"
	TaskStatusDone       = "DONE"
	TaskStatusCancelled  = "CANCELLED"
)

// Task priority values, ordered from least to most urgent.
const (
	PriorityLow      = "LOW"
	PriorityMedium   = "MEDIUM"
	PriorityHigh     = "HIGH"
	PriorityCritical = "CRITICAL"
)

// Task is a maintenance work order raised against a site asset.
// This is a pure domain model with no database-specific dependencies or tags.
type Task struct {
	TaskID      string    `json:"task_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	AssetType   string    `json:"asset_type"`
	AssetID     string    `json:"asset_id"`
	BuildingID  string    `json:"building_id"`
	Priority    string    `json:"priority"`
	SLAHours    int       `json:"sla_hours"`
	Status      string    `json:"status"`
	AssigneeID  string    `json:"assignee_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Notes       string    `json:"notes,omitempty"`
}

// ValidTaskStatus reports whether s is one of the known task statuses.
func ValidTaskStatus(s string) bool {
	switch s {
	case TaskStatusOpen, TaskStatusInProgress, TaskStatusDone, TaskStatusCancelled:
		return true
	}
	return false
}

// ValidPriority reports whether p is one of the known priorities.
func ValidPriority(p string) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}
