// internal/matching/filter.go
package matching

// ExclusionCode says why a technician cannot take a job at all.
type ExclusionCode string

const (
	ExcludedOffline    ExclusionCode = "offline"
	ExcludedAtCapacity ExclusionCode = "at_capacity"
)

// Exclusion records a technician dropped before scoring.
type Exclusion struct {
	TechnicianID string        `json:"technicianId"`
	Reason       ExclusionCode `json:"reason"`
}

// ExclusionReason returns the structural reason t is not a candidate.
// Skill and area mismatches are never a reason; those are scored.
func ExclusionReason(t TechnicianProfile) (Exclusion, bool) {
	if t.AvailabilityStatus.normalized() == StatusOffline {
		return Exclusion{TechnicianID: t.ID, Reason: ExcludedOffline}, true
	}
	if len(t.CurrentJobIDs) >= t.MaxJobsPerDay {
		return Exclusion{TechnicianID: t.ID, Reason: ExcludedAtCapacity}, true
	}
	return Exclusion{}, false
}

// FilterCandidates drops offline and at-capacity technicians, keeping input order.
func FilterCandidates(technicians []TechnicianProfile) []TechnicianProfile {
	kept, _ := Partition(technicians)
	return kept
}

// Partition splits the roster into candidates and exclusions. Both slices keep
// input order and are never nil.
func Partition(technicians []TechnicianProfile) ([]TechnicianProfile, []Exclusion) {
	kept := make([]TechnicianProfile, 0, len(technicians))
	excluded := make([]Exclusion, 0)
	for _, t := range technicians {
		if ex, ok := ExclusionReason(t); ok {
			excluded = append(excluded, ex)
			continue
		}
		kept = append(kept, t)
	}
	return kept, excluded
}
