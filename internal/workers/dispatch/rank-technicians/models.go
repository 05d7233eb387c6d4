package ranktechnicians

import (
	"encoding/json"

	"ac-dispatch-workers/internal/matching"
)

// Input identifies the job by id or by inline requirements. The roster is
// the inline technicians when given, otherwise technician accounts from the
// store, optionally restricted to TechnicianIDs.
type Input struct {
	JobID         string                    `json:"jobId"`
	Requirements  *matching.JobRequirements `json:"requirements,omitempty"`
	Technicians   []json.RawMessage         `json:"technicians,omitempty"`
	TechnicianIDs []string                  `json:"technicianIds,omitempty"`
	Limit         int                       `json:"limit,omitempty"`
}

type Output struct {
	RankedTechnicians []matching.MatchResult `json:"rankedTechnicians"`
	TopTechnicianID   string                 `json:"topTechnicianId"`
	TopScore          float64                `json:"topScore"`
	CandidateCount    int                    `json:"candidateCount"`
	ExcludedCount     int                    `json:"excludedCount"`
	UnknownSkills     []matching.Skill       `json:"unknownSkills,omitempty"`
}
