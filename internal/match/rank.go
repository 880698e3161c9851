package match

import (
	"sort"

	"homecare/models"
)

// DefaultTopK is how many caregivers the matcher ultimately recommends.
const DefaultTopK = 5

// Select sorts candidates ascending by ETA, breaking ties by straight-line
// distance, and truncates to the first k. The sort is stable, so candidates
// identical on both keys keep their original relative order.
func Select(results []models.RankedCandidate, k int) []models.RankedCandidate {
	ranked := append([]models.RankedCandidate(nil), results...)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].ETASeconds != ranked[j].ETASeconds {
			return ranked[i].ETASeconds < ranked[j].ETASeconds
		}
		return ranked[i].DistanceKm < ranked[j].DistanceKm
	})
	if k >= 0 && len(ranked) > k {
		ranked = ranked[:k]
	}
	return ranked
}
