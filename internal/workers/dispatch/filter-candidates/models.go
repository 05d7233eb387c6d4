package filtercandidates

import (
	"encoding/json"

	"ac-dispatch-workers/internal/matching"
)

type Input struct {
	Technicians []json.RawMessage `json:"technicians"`
}

type Output struct {
	CandidateIDs   []string             `json:"candidateIds"`
	CandidateCount int                  `json:"candidateCount"`
	Exclusions     []matching.Exclusion `json:"exclusions"`
}
