// internal/models/job.go
package models

import (
	"time"

	"ac-dispatch-workers/internal/matching"
)

type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusAssigned   JobStatus = "assigned"
	JobStatusInProgress JobStatus = "in_progress"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusCancelled  JobStatus = "cancelled"
)

// Assignable reports whether a technician may still be assigned to the job.
func (s JobStatus) Assignable() bool {
	return s == JobStatusPending || s == ""
}

// Held reports whether a technician currently holds the job.
func (s JobStatus) Held() bool {
	return s == JobStatusAssigned || s == JobStatusInProgress
}

// ServiceJob is a customer booking awaiting or holding a technician.
type ServiceJob struct {
	ID                   string              `json:"id"`
	CustomerID           string              `json:"customerId"`
	RequiredSkills       []matching.Skill    `json:"requiredSkills"`
	ServiceArea          string              `json:"serviceArea"`
	Complexity           matching.Complexity `json:"complexity"`
	Emergency            bool                `json:"emergency"`
	RequiresVehicle      bool                `json:"requiresVehicle"`
	Status               JobStatus           `json:"status"`
	AssignedTechnicianID string              `json:"assignedTechnicianId,omitempty"`
	AssignmentID         string              `json:"assignmentId,omitempty"`
	AssignedAt           *time.Time          `json:"assignedAt,omitempty"`
	ScheduledFor         *time.Time          `json:"scheduledFor,omitempty"`
}

func (j ServiceJob) Requirements() matching.JobRequirements {
	return matching.JobRequirements{
		RequiredSkills:  j.RequiredSkills,
		ServiceArea:     j.ServiceArea,
		Complexity:      j.Complexity,
		Emergency:       j.Emergency,
		RequiresVehicle: j.RequiresVehicle,
	}
}
