package assigntechnician

import "time"

type Input struct {
	JobID        string `json:"jobId"`
	TechnicianID string `json:"technicianId"`
}

type Output struct {
	AssignmentID    string    `json:"assignmentId"`
	JobID           string    `json:"jobId"`
	TechnicianID    string    `json:"technicianId"`
	Status          string    `json:"assignmentStatus"`
	AssignedAt      time.Time `json:"assignedAt"`
	CurrentJobCount int       `json:"currentJobCount"`
	// AlreadyAssigned is set when a redelivered job finds its own assignment.
	AlreadyAssigned bool `json:"alreadyAssigned"`
}
