// internal/matching/score.go
package matching

import (
	"errors"
	"fmt"
	"math"
)

// Weights is the point policy of the score calculator. Bonuses are positive,
// penalties are stored as positive magnitudes and subtracted.
type Weights struct {
	SkillCoverage     float64
	Specialization    float64
	AreaMatch         float64
	AreaMismatch      float64
	Available         float64
	Busy              float64
	ComplexSenior     float64
	ComplexJunior     float64
	HighRating        float64
	HighFirstTimeFix  float64
	IdleBonus         float64
	EmergencyReady    float64
	MissingVehicle    float64
	RatingThreshold   float64
	FixRateThreshold  float64
	SeniorYearsCutoff int
}

// DefaultWeights is the starting policy: a fully matched, available, highly
// rated technician lands around 80-100; a busy, off-area, unskilled one below 0.
func DefaultWeights() Weights {
	return Weights{
		SkillCoverage:     40,
		Specialization:    10,
		AreaMatch:         20,
		AreaMismatch:      15,
		Available:         15,
		Busy:              20,
		ComplexSenior:     10,
		ComplexJunior:     10,
		HighRating:        5,
		HighFirstTimeFix:  5,
		IdleBonus:         5,
		EmergencyReady:    10,
		MissingVehicle:    10,
		RatingThreshold:   4.5,
		FixRateThreshold:  90,
		SeniorYearsCutoff: 5,
	}
}

var ErrInvalidWeights = errors.New("invalid matching weights")

// Validate rejects negative or non-finite weights and any policy under which a
// strong match no longer clears 80 or a weak match no longer stays under 50.
func (w Weights) Validate() error {
	fields := map[string]float64{
		"skill_coverage":      w.SkillCoverage,
		"specialization":      w.Specialization,
		"area_match":          w.AreaMatch,
		"area_mismatch":       w.AreaMismatch,
		"available":           w.Available,
		"busy":                w.Busy,
		"complex_senior":      w.ComplexSenior,
		"complex_junior":      w.ComplexJunior,
		"high_rating":         w.HighRating,
		"high_first_time_fix": w.HighFirstTimeFix,
		"idle_bonus":          w.IdleBonus,
		"emergency_ready":     w.EmergencyReady,
		"missing_vehicle":     w.MissingVehicle,
		"rating_threshold":    w.RatingThreshold,
		"fix_rate_threshold":  w.FixRateThreshold,
	}
	for name, v := range fields {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return fmt.Errorf("%w: %s must be a finite non-negative number, got %v", ErrInvalidWeights, name, v)
		}
	}
	if w.SkillCoverage == 0 {
		return fmt.Errorf("%w: skill_coverage must be positive", ErrInvalidWeights)
	}

	s := NewScorer(w)
	strong := referenceStrongMatch()
	if got := s.Score(strong, referenceRequirements(ComplexityModerate)); got < 80 {
		return fmt.Errorf("%w: fully matched technician scores %.1f, want >= 80", ErrInvalidWeights, got)
	}
	weak := referenceWeakMatch()
	if got := s.Score(weak, JobRequirements{
		RequiredSkills: []Skill{SkillRefrigeration},
		ServiceArea:    "Accra",
		Complexity:     ComplexityComplex,
	}); got >= 50 {
		return fmt.Errorf("%w: busy off-area technician scores %.1f, want < 50", ErrInvalidWeights, got)
	}
	return nil
}

func referenceStrongMatch() TechnicianProfile {
	return TechnicianProfile{
		ID:                 "reference-strong",
		Skills:             []Skill{SkillACInstallation, SkillElectrical},
		ServiceAreas:       []string{"Accra"},
		AvailabilityStatus: StatusAvailable,
		Level:              LevelSenior,
		AverageRating:      4.8,
		MaxJobsPerDay:      3,
	}
}

func referenceWeakMatch() TechnicianProfile {
	t := referenceStrongMatch()
	t.ID = "reference-weak"
	t.ServiceAreas = []string{"Kumasi"}
	t.AvailabilityStatus = StatusBusy
	return t
}

func referenceRequirements(c Complexity) JobRequirements {
	return JobRequirements{
		RequiredSkills: []Skill{SkillACInstallation},
		ServiceArea:    "Accra",
		Complexity:     c,
	}
}

// ScoreBreakdown holds each factor's signed contribution.
type ScoreBreakdown struct {
	SkillCoverage  float64 `json:"skillCoverage"`
	Specialization float64 `json:"specialization"`
	ServiceArea    float64 `json:"serviceArea"`
	Availability   float64 `json:"availability"`
	Experience     float64 `json:"experience"`
	TrackRecord    float64 `json:"trackRecord"`
	Workload       float64 `json:"workload"`
	Emergency      float64 `json:"emergency"`
	Vehicle        float64 `json:"vehicle"`
}

func (b ScoreBreakdown) Total() float64 {
	return b.SkillCoverage + b.Specialization + b.ServiceArea + b.Availability +
		b.Experience + b.TrackRecord + b.Workload + b.Emergency + b.Vehicle
}

// Scorer is immutable and safe for concurrent use.
type Scorer struct {
	weights Weights
}

// NewScorer trusts w; see Weights.Validate.
func NewScorer(w Weights) *Scorer {
	return &Scorer{weights: w}
}

var defaultScorer = NewScorer(DefaultWeights())

// CalculateMatchScore scores one technician under the default policy.
func CalculateMatchScore(t TechnicianProfile, requiredSkills []Skill, serviceArea string, complexity Complexity) float64 {
	return defaultScorer.Score(t, JobRequirements{
		RequiredSkills: requiredSkills,
		ServiceArea:    serviceArea,
		Complexity:     complexity,
	})
}

// Score returns the total of Breakdown.
func (s *Scorer) Score(t TechnicianProfile, req JobRequirements) float64 {
	return s.Breakdown(t, req).Total()
}

// Breakdown scores every factor of t against req.
func (s *Scorer) Breakdown(t TechnicianProfile, req JobRequirements) ScoreBreakdown {
	w := s.weights
	return ScoreBreakdown{
		SkillCoverage:  w.SkillCoverage * CoverageFraction(t.Skills, req.RequiredSkills),
		Specialization: s.specialization(t, req),
		ServiceArea:    s.serviceArea(t, req.ServiceArea),
		Availability:   s.availability(t.AvailabilityStatus),
		Experience:     s.experience(t, req.Complexity),
		TrackRecord:    s.trackRecord(t),
		Workload:       s.workload(t),
		Emergency:      s.emergency(t, req),
		Vehicle:        s.vehicle(t, req),
	}
}

// CoverageFraction is the share of distinct required skills the technician has.
// No required skills gives 0.
func CoverageFraction(have, required []Skill) float64 {
	req := tagSet(required)
	if len(req) == 0 {
		return 0
	}
	owned := tagSet(have)
	matched := 0
	for skill := range req {
		if _, ok := owned[skill]; ok {
			matched++
		}
	}
	return float64(matched) / float64(len(req))
}

func (s *Scorer) specialization(t TechnicianProfile, req JobRequirements) float64 {
	primary := normalizeTag(string(t.PrimarySpecialization))
	if primary == "" {
		return 0
	}
	if _, ok := tagSet(req.RequiredSkills)[primary]; ok {
		return s.weights.Specialization
	}
	return 0
}

func (s *Scorer) serviceArea(t TechnicianProfile, area string) float64 {
	if _, ok := tagSet(t.ServiceAreas)[normalizeTag(area)]; ok {
		return s.weights.AreaMatch
	}
	return -s.weights.AreaMismatch
}

func (s *Scorer) availability(status AvailabilityStatus) float64 {
	switch status.normalized() {
	case StatusAvailable:
		return s.weights.Available
	case StatusBusy:
		return -s.weights.Busy
	}
	return 0
}

func (s *Scorer) experience(t TechnicianProfile, c Complexity) float64 {
	if c.normalized() != ComplexityComplex {
		return 0
	}
	level := t.Level.normalized()
	if level == LevelSenior || (s.weights.SeniorYearsCutoff > 0 && t.YearsOfExperience >= s.weights.SeniorYearsCutoff) {
		return s.weights.ComplexSenior
	}
	if level == LevelJunior {
		return -s.weights.ComplexJunior
	}
	return 0
}

func (s *Scorer) trackRecord(t TechnicianProfile) float64 {
	score := 0.0
	if t.AverageRating >= s.weights.RatingThreshold {
		score += s.weights.HighRating
	}
	if t.FirstTimeFixRate >= s.weights.FixRateThreshold {
		score += s.weights.HighFirstTimeFix
	}
	return score
}

func (s *Scorer) workload(t TechnicianProfile) float64 {
	if len(t.CurrentJobIDs) == 0 {
		return s.weights.IdleBonus
	}
	return 0
}

func (s *Scorer) emergency(t TechnicianProfile, req JobRequirements) float64 {
	if req.Emergency && t.IsEmergencyTechnician {
		return s.weights.EmergencyReady
	}
	return 0
}

func (s *Scorer) vehicle(t TechnicianProfile, req JobRequirements) float64 {
	if req.RequiresVehicle && !t.HasVehicle {
		return -s.weights.MissingVehicle
	}
	return 0
}
