// internal/matching/rank.go
package matching

import "sort"

// Ranker runs filter, score and sort for one job at a time. It holds no
// per-call state.
type Ranker struct {
	scorer *Scorer
}

// NewRanker ranks with scorer, or the default policy when scorer is nil.
func NewRanker(scorer *Scorer) *Ranker {
	if scorer == nil {
		scorer = defaultScorer
	}
	return &Ranker{scorer: scorer}
}

var defaultRanker = NewRanker(defaultScorer)

// RankCandidates ranks the roster for a job under the default policy.
func RankCandidates(technicians []TechnicianProfile, req JobRequirements) []MatchResult {
	return defaultRanker.Rank(technicians, req, 0)
}

// Rank returns candidates by score descending, ties broken by technician id
// ascending, ranked 1..N. A positive limit keeps only the top limit results.
func (r *Ranker) Rank(technicians []TechnicianProfile, req JobRequirements, limit int) []MatchResult {
	candidates := FilterCandidates(technicians)

	results := make([]MatchResult, 0, len(candidates))
	for _, t := range candidates {
		factors := r.scorer.Breakdown(t, req)
		results = append(results, MatchResult{
			TechnicianID: t.ID,
			Score:        factors.Total(),
			Factors:      factors,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].TechnicianID < results[j].TechnicianID
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	for i := range results {
		results[i].Rank = i + 1
	}
	return results
}
