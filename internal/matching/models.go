// internal/matching/models.go
package matching

import "strings"

// Skill is a technician skill tag. Unknown tags are valid; the constants below
// cover the service catalog.
type Skill string

const (
	SkillACInstallation Skill = "ac_installation"
	SkillACRepair       Skill = "ac_repair"
	SkillACMaintenance  Skill = "ac_maintenance"
	SkillElectrical     Skill = "electrical"
	SkillRefrigeration  Skill = "refrigeration"
	SkillDuctCleaning   Skill = "duct_cleaning"
	SkillGasRefill      Skill = "gas_refill"
	SkillPlumbing       Skill = "plumbing"
)

// KnownSkills lists the catalog skills in display order.
var KnownSkills = []Skill{
	SkillACInstallation,
	SkillACRepair,
	SkillACMaintenance,
	SkillElectrical,
	SkillRefrigeration,
	SkillDuctCleaning,
	SkillGasRefill,
	SkillPlumbing,
}

// IsKnown reports whether the skill is part of the catalog.
func (s Skill) IsKnown() bool {
	n := normalizeTag(string(s))
	for _, k := range KnownSkills {
		if string(k) == n {
			return true
		}
	}
	return false
}

// UnknownSkills returns the distinct tags in skills that are not in the
// catalog, normalized and in first-seen order.
func UnknownSkills(skills []Skill) []Skill {
	var unknown []Skill
	seen := make(map[string]struct{})
	for _, s := range skills {
		n := normalizeTag(string(s))
		if n == "" || s.IsKnown() {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		unknown = append(unknown, Skill(n))
	}
	return unknown
}

// AvailabilityStatus is the technician's current dispatch state. Only offline
// excludes a technician; busy is a score penalty.
type AvailabilityStatus string

const (
	StatusAvailable AvailabilityStatus = "available"
	StatusBusy      AvailabilityStatus = "busy"
	StatusOffline   AvailabilityStatus = "offline"
)

func (a AvailabilityStatus) normalized() AvailabilityStatus {
	return AvailabilityStatus(normalizeTag(string(a)))
}

// Level is the technician's seniority grade.
type Level string

func (l Level) normalized() Level {
	return Level(normalizeTag(string(l)))
}

const (
	LevelJunior Level = "junior"
	LevelMid    Level = "mid"
	LevelSenior Level = "senior"
)

// Complexity grades a job. Values outside the constants have no effect on
// the experience factor.
type Complexity string

func (c Complexity) normalized() Complexity {
	return Complexity(normalizeTag(string(c)))
}

const (
	ComplexitySimple   Complexity = "simple"
	ComplexityModerate Complexity = "moderate"
	ComplexityComplex  Complexity = "complex"
)

// Contact is carried through the engine untouched.
type Contact struct {
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// TechnicianProfile is the read-only view of a technician the engine scores.
// Zero values are the conservative reading of a missing field.
type TechnicianProfile struct {
	ID          string  `json:"id"`
	DisplayName string  `json:"displayName,omitempty"`
	Contact     Contact `json:"contact,omitempty"`

	Skills                []Skill            `json:"skills"`
	ServiceAreas          []string           `json:"serviceAreas"`
	AvailabilityStatus    AvailabilityStatus `json:"availabilityStatus"`
	Level                 Level              `json:"level"`
	YearsOfExperience     int                `json:"yearsOfExperience"`
	CurrentJobIDs         []string           `json:"currentJobIds"`
	MaxJobsPerDay         int                `json:"maxJobsPerDay"`
	PrimarySpecialization Skill              `json:"primarySpecialization,omitempty"`
	IsTeamLead            bool               `json:"isTeamLead"`

	TotalJobsCompleted int     `json:"totalJobsCompleted"`
	TotalJobsAssigned  int     `json:"totalJobsAssigned"`
	AverageRating      float64 `json:"averageRating"`
	FirstTimeFixRate   float64 `json:"firstTimeFixRate"`
	AverageJobDuration float64 `json:"averageJobDuration"`

	HasVehicle            bool `json:"hasVehicle"`
	HasToolKit            bool `json:"hasToolKit"`
	IsEmergencyTechnician bool `json:"isEmergencyTechnician"`
}

// JobRequirements is built per matching request. Emergency and RequiresVehicle
// default to false and then have no effect on the score.
type JobRequirements struct {
	RequiredSkills  []Skill    `json:"requiredSkills"`
	ServiceArea     string     `json:"serviceArea"`
	Complexity      Complexity `json:"complexity"`
	Emergency       bool       `json:"emergency,omitempty"`
	RequiresVehicle bool       `json:"requiresVehicle,omitempty"`
}

// MatchResult is one ranked candidate.
type MatchResult struct {
	TechnicianID string         `json:"technicianId"`
	Score        float64        `json:"score"`
	Rank         int            `json:"rank"`
	Factors      ScoreBreakdown `json:"factors"`
}

func normalizeTag(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func tagSet[T ~string](tags []T) map[string]struct{} {
	set := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		n := normalizeTag(string(t))
		if n == "" {
			continue
		}
		set[n] = struct{}{}
	}
	return set
}
