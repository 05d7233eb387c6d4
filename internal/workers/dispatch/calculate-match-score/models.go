package calculatematchscore

import (
	"encoding/json"

	"ac-dispatch-workers/internal/matching"
)

// Input names the technician by id or carries it inline, and the job by id or
// by its requirements. Inline values win.
type Input struct {
	TechnicianID string                    `json:"technicianId"`
	Technician   json.RawMessage           `json:"technician,omitempty"`
	JobID        string                    `json:"jobId"`
	Requirements *matching.JobRequirements `json:"requirements,omitempty"`
}

type Output struct {
	TechnicianID    string                  `json:"technicianId"`
	MatchScore      float64                 `json:"matchScore"`
	MatchFactors    matching.ScoreBreakdown `json:"matchFactors"`
	IsCandidate     bool                    `json:"isCandidate"`
	ExclusionReason matching.ExclusionCode  `json:"exclusionReason,omitempty"`
}
