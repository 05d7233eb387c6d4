package sendassignmentnotification

import (
	"encoding/json"

	"ac-dispatch-workers/internal/matching"
)

// Input identifies the assignment. Technician and requirements are loaded from
// the roster unless passed inline.
type Input struct {
	AssignmentID string                    `json:"assignmentId"`
	JobID        string                    `json:"jobId"`
	TechnicianID string                    `json:"technicianId"`
	Technician   json.RawMessage           `json:"technician,omitempty"`
	Requirements *matching.JobRequirements `json:"requirements,omitempty"`
}

type Delivery struct {
	Channel   string `json:"channel"`
	Status    string `json:"status"`
	MessageID string `json:"messageId,omitempty"`
	Error     string `json:"error,omitempty"`
}

type Output struct {
	NotificationID string     `json:"notificationId"`
	Status         string     `json:"notificationStatus"`
	Channels       []Delivery `json:"channels"`
}
