package model

import "time"

// Notification is an in-app message for residents/operators, usually raised
// alongside a work order. Delivery (push, email) is out of scope; these are
// records served to clients.
type Notification struct {
	ID            string    `json:"id"`
	Type          string    `json:"type"`
	Title         string    `json:"title"`
	Message       string    `json:"message"`
	Severity      string    `json:"severity"`
	BuildingID    string    `json:"building_id,omitempty"`
	RelatedTaskID string    `json:"related_task_id,omitempty"`
	Read          bool      `json:"read"`
	CreatedAt     time.Time `json:"created_at"`
}
