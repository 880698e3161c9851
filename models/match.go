package models

// MatchRequest is one matching request as received from the upstream service.
// Candidates arrive in the payload; there is no caregiver store on this side.
type MatchRequest struct {
	RequestID   string               `json:"request_id"`
	Location    ServiceLocation      `json:"location"`
	Day         string               `json:"day,omitempty"`        // MONDAY..SUNDAY
	StartTime   string               `json:"start_time,omitempty"` // HH:MM
	EndTime     string               `json:"end_time,omitempty"`   // HH:MM
	ServiceType string               `json:"service_type,omitempty"`
	Conditions  []string             `json:"conditions,omitempty"`
	Patient     *PatientInfo         `json:"patient,omitempty"`
	Candidates  []CaregiverCandidate `json:"candidates"`
}

type PatientInfo struct {
	Gender string `json:"gender,omitempty"` // MALE or FEMALE
	Age    int    `json:"age,omitempty"`    // 0 means unknown
}

// ETASource records where a travel-time estimate came from.
type ETASource string

const (
	ETASourceAPI      ETASource = "api"
	ETASourceFallback ETASource = "fallback"
)

// RankedCandidate is one row of the final output, ordered by ETA ascending.
type RankedCandidate struct {
	CaregiverID string    `json:"caregiver_id"`
	DistanceKm  float64   `json:"distance_km"`
	ETASeconds  int       `json:"eta_seconds"`
	ETASource   ETASource `json:"eta_source"`
}

// MatchStatus distinguishes an empty result from a fault: running out of
// candidates during filtering is a normal outcome, not an error.
type MatchStatus string

const (
	StatusMatched      MatchStatus = "matched"
	StatusNoCandidates MatchStatus = "no_candidates"
)

type MatchResult struct {
	RequestID string            `json:"request_id"`
	Status    MatchStatus       `json:"status"`
	Ranked    []RankedCandidate `json:"ranked"`
}
