package geo

import "homecare/models"

// DefaultRadiusKm narrows the candidate pool to roughly one urban district.
const DefaultRadiusKm = 15.0

// FilterByRadius returns the candidates within radiusKm of center, boundary
// inclusive. The input slice is not mutated and relative order is preserved;
// ordering by travel time is the ranker's job, not this filter's.
func FilterByRadius(center models.Coordinates, candidates []models.CaregiverCandidate, radiusKm float64) []models.CaregiverCandidate {
	within := make([]models.CaregiverCandidate, 0, len(candidates))
	for _, c := range candidates {
		if DistanceKm(center, c.Location) <= radiusKm {
			within = append(within, c)
		}
	}
	return within
}
