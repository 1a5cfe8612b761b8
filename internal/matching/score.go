package matching

import (
	"sort"

	"github.com/kindling-app/kindling/internal/db"
)

// Scoring weights.
const (
	interestWeight = 10
	// Prior dislikes sink a candidate to the bottom of the ranking without
	// hiding them entirely (soft exclusion, unlike the hard exclusion used
	// for likes).
	dislikePenalty = 1000
)

// ScoredCandidate is a candidate user annotated with ranking data.
type ScoredCandidate struct {
	User            db.User
	CommonInterests int
	Score           int
	WasDisliked     bool
}

// Rank scores and orders a candidate pool for a requester.
//
// Behavior:
//   - score = shared-interest count * 10, minus 1000 if the requester
//     previously sent this candidate a DISLIKE.
//   - Sort is stable on score descending, so equal scores keep the pool's
//     natural order and output stays deterministic.
//   - Result is truncated to limit (when limit > 0).
func Rank(requesterInterestIDs []string, dislikedIDs map[string]bool, pool []db.User, limit int) []ScoredCandidate {
	mine := make(map[string]bool, len(requesterInterestIDs))
	for _, id := range requesterInterestIDs {
		mine[id] = true
	}

	scored := make([]ScoredCandidate, 0, len(pool))
	for _, candidate := range pool {
		common := 0
		for _, ui := range candidate.Interests {
			if mine[ui.InterestID] {
				common++
			}
		}

		score := common * interestWeight
		disliked := dislikedIDs[candidate.ID]
		if disliked {
			score -= dislikePenalty
		}

		scored = append(scored, ScoredCandidate{
			User:            candidate,
			CommonInterests: common,
			Score:           score,
			WasDisliked:     disliked,
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if limit > 0 && len(scored) > limit {
		scored = scored[:limit]
	}
	return scored
}
