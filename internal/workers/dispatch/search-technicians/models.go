package searchtechnicians

import (
	"encoding/json"

	"ac-dispatch-workers/internal/matching"
)

type Input struct {
	ServiceArea    string           `json:"serviceArea"`
	RequiredSkills []matching.Skill `json:"requiredSkills"`
	// Statuses to include; defaults to available and busy.
	AvailabilityStatuses []matching.AvailabilityStatus `json:"availabilityStatuses,omitempty"`
	Size                 int                           `json:"size,omitempty"`
}

type Output struct {
	Technicians   []matching.TechnicianProfile `json:"technicians"`
	TechnicianIDs []string                     `json:"technicianIds"`
	TotalHits     int                          `json:"totalHits"`
}

type searchResponse struct {
	Hits struct {
		Total struct {
			Value int `json:"value"`
		} `json:"total"`
		Hits []searchHit `json:"hits"`
	} `json:"hits"`
}

type searchHit struct {
	ID     string          `json:"_id"`
	Source json.RawMessage `json:"_source"`
}
