package models

// CaregiverCandidate is one caregiver eligible for a matching request.
// PreferenceText is the raw free-text availability description; Preference is
// its structured form once the extraction collaborator has produced one.
type CaregiverCandidate struct {
	ID             string                `json:"caregiver_id"`
	Location       Coordinates           `json:"location"`
	PreferenceText string                `json:"preference_text,omitempty"`
	Qualifications []string              `json:"qualifications,omitempty"`
	Preference     *StructuredPreference `json:"preference,omitempty"`
}

// StructuredPreference is the output of the preference-extraction
// collaborator. Immutable once created; empty fields mean "no constraint".
type StructuredPreference struct {
	WorkingDays []string `json:"day_of_week,omitempty"` // MONDAY..SUNDAY

	WorkStartTime string `json:"work_start_time,omitempty"` // HH:MM
	WorkEndTime   string `json:"work_end_time,omitempty"`   // HH:MM

	WorkAreas      []string `json:"work_areas,omitempty"`
	CoversAllAreas bool     `json:"covers_all_areas,omitempty"`

	SupportedConditions []string `json:"supported_conditions,omitempty"`
	ServiceTypes        []string `json:"service_types,omitempty"`

	PreferredGender string `json:"preferred_gender,omitempty"` // ALL, MALE, FEMALE
	PreferredMinAge int    `json:"preferred_min_age,omitempty"`
	PreferredMaxAge int    `json:"preferred_max_age,omitempty"`
}
