// Package labels maps engine enums to display strings for notifications and
// dispatcher views. Scoring never reads these.
package labels

import (
	"strings"

	"ac-dispatch-workers/internal/matching"
)

var skillLabels = map[matching.Skill]string{
	matching.SkillACInstallation: "AC Installation",
	matching.SkillACRepair:       "AC Repair",
	matching.SkillACMaintenance:  "AC Maintenance",
	matching.SkillElectrical:     "Electrical",
	matching.SkillRefrigeration:  "Refrigeration",
	matching.SkillDuctCleaning:   "Duct Cleaning",
	matching.SkillGasRefill:      "Gas Refill",
	matching.SkillPlumbing:       "Plumbing",
}

var complexityLabels = map[matching.Complexity]string{
	matching.ComplexitySimple:   "Simple",
	matching.ComplexityModerate: "Moderate",
	matching.ComplexityComplex:  "Complex",
}

var availabilityLabels = map[matching.AvailabilityStatus]string{
	matching.StatusAvailable: "Available",
	matching.StatusBusy:      "Busy",
	matching.StatusOffline:   "Offline",
}

var levelLabels = map[matching.Level]string{
	matching.LevelJunior: "Junior Technician",
	matching.LevelMid:    "Technician",
	matching.LevelSenior: "Senior Technician",
}

// Skill returns the catalog label, or a title-cased form of an unknown tag.
func Skill(s matching.Skill) string {
	key := matching.Skill(normalize(string(s)))
	if l, ok := skillLabels[key]; ok {
		return l
	}
	return humanize(string(key))
}

func Skills(skills []matching.Skill) []string {
	out := make([]string, 0, len(skills))
	for _, s := range skills {
		if normalize(string(s)) == "" {
			continue
		}
		out = append(out, Skill(s))
	}
	return out
}

func Complexity(c matching.Complexity) string {
	if l, ok := complexityLabels[matching.Complexity(normalize(string(c)))]; ok {
		return l
	}
	return humanize(normalize(string(c)))
}

func Availability(a matching.AvailabilityStatus) string {
	if l, ok := availabilityLabels[matching.AvailabilityStatus(normalize(string(a)))]; ok {
		return l
	}
	return humanize(normalize(string(a)))
}

func Level(l matching.Level) string {
	if s, ok := levelLabels[matching.Level(normalize(string(l)))]; ok {
		return s
	}
	return humanize(normalize(string(l)))
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// humanize turns "duct_cleaning" into "Duct Cleaning".
func humanize(tag string) string {
	words := strings.FieldsFunc(tag, func(r rune) bool { return r == '_' || r == '-' || r == ' ' })
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
