package searchtechnicians

import (
	"strings"

	"ac-dispatch-workers/internal/matching"
)

var defaultStatuses = []matching.AvailabilityStatus{matching.StatusAvailable, matching.StatusBusy}

// buildQuery filters on service area and availability. Skills only boost
// relevance; the engine decides the final order.
func buildQuery(input *Input, size int) map[string]interface{} {
	statuses := input.AvailabilityStatuses
	if len(statuses) == 0 {
		statuses = defaultStatuses
	}
	statusTerms := make([]string, 0, len(statuses))
	for _, s := range statuses {
		statusTerms = append(statusTerms, strings.ToLower(strings.TrimSpace(string(s))))
	}

	filterClauses := []interface{}{
		map[string]interface{}{
			"match": map[string]interface{}{
				"serviceAreas": map[string]interface{}{
					"query":    input.ServiceArea,
					"operator": "and",
				},
			},
		},
		map[string]interface{}{
			"terms": map[string]interface{}{"availabilityStatus": statusTerms},
		},
	}

	boolQuery := map[string]interface{}{
		"filter": filterClauses,
	}

	if len(input.RequiredSkills) > 0 {
		skills := make([]string, 0, len(input.RequiredSkills))
		for _, s := range input.RequiredSkills {
			if tag := strings.ToLower(strings.TrimSpace(string(s))); tag != "" {
				skills = append(skills, tag)
			}
		}
		if len(skills) > 0 {
			boolQuery["should"] = []interface{}{
				map[string]interface{}{"terms": map[string]interface{}{"skills": skills}},
			}
		}
	}

	return map[string]interface{}{
		"size":  size,
		"query": map[string]interface{}{"bool": boolQuery},
		"sort": []interface{}{
			"_score",
			map[string]interface{}{"id": map[string]interface{}{"order": "asc"}},
		},
	}
}
