// Package gate decides pass/fail for each caregiver candidate against a
// service request, given the structured preference the extraction
// collaborator produced. All applicable checks must succeed; a check with no
// stated constraint on either side is satisfied.
package gate

import (
	"strings"

	"homecare/models"
)

// Gate evaluates candidates. Permissive mode passes every candidate through
// unconditionally; it exists for tests and debugging only and is never the
// production default.
type Gate struct {
	permissive bool
}

func New(permissive bool) *Gate {
	return &Gate{permissive: permissive}
}

// Allows reports whether the candidate is compatible with the request.
// A candidate without structured preference data fails closed: if the
// extraction collaborator could not produce data, nothing can be verified.
func (g *Gate) Allows(candidate models.CaregiverCandidate, req models.MatchRequest) bool {
	if g.permissive {
		return true
	}
	pref := candidate.Preference
	if pref == nil {
		return false
	}

	return dayMatches(pref, req) &&
		windowContains(pref.WorkStartTime, pref.WorkEndTime, req.StartTime, req.EndTime) &&
		areaMatches(pref, req) &&
		serviceTypeMatches(pref, req) &&
		conditionsCovered(pref, req) &&
		demographicsMatch(pref, req)
}

// Filter returns the candidates that pass the gate, preserving input order.
func (g *Gate) Filter(candidates []models.CaregiverCandidate, req models.MatchRequest) []models.CaregiverCandidate {
	passed := make([]models.CaregiverCandidate, 0, len(candidates))
	for _, c := range candidates {
		if g.Allows(c, req) {
			passed = append(passed, c)
		}
	}
	return passed
}

func dayMatches(pref *models.StructuredPreference, req models.MatchRequest) bool {
	if req.Day == "" || len(pref.WorkingDays) == 0 {
		return true
	}
	for _, d := range pref.WorkingDays {
		if strings.EqualFold(d, req.Day) {
			return true
		}
	}
	return false
}

func areaMatches(pref *models.StructuredPreference, req models.MatchRequest) bool {
	if pref.CoversAllAreas {
		return true
	}
	if req.Location.AdminArea == "" || len(pref.WorkAreas) == 0 {
		return true
	}
	for _, a := range pref.WorkAreas {
		if strings.EqualFold(a, req.Location.AdminArea) {
			return true
		}
	}
	return false
}

func serviceTypeMatches(pref *models.StructuredPreference, req models.MatchRequest) bool {
	if req.ServiceType == "" || len(pref.ServiceTypes) == 0 {
		return true
	}
	for _, s := range pref.ServiceTypes {
		if strings.EqualFold(s, req.ServiceType) {
			return true
		}
	}
	return false
}

// conditionsCovered requires every requested care condition to be in the
// candidate's supported set.
func conditionsCovered(pref *models.StructuredPreference, req models.MatchRequest) bool {
	if len(req.Conditions) == 0 || len(pref.SupportedConditions) == 0 {
		return true
	}
	for _, want := range req.Conditions {
		found := false
		for _, have := range pref.SupportedConditions {
			if strings.EqualFold(have, want) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func demographicsMatch(pref *models.StructuredPreference, req models.MatchRequest) bool {
	if req.Patient == nil {
		return true
	}
	if pref.PreferredGender != "" && !strings.EqualFold(pref.PreferredGender, "ALL") &&
		req.Patient.Gender != "" && !strings.EqualFold(pref.PreferredGender, req.Patient.Gender) {
		return false
	}
	if req.Patient.Age > 0 {
		if pref.PreferredMinAge > 0 && req.Patient.Age < pref.PreferredMinAge {
			return false
		}
		if pref.PreferredMaxAge > 0 && req.Patient.Age > pref.PreferredMaxAge {
			return false
		}
	}
	return true
}
