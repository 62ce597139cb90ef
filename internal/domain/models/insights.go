package models

// Insights is the structured advisory reply from the AI collaborator. The
// three fields are always present; callers never see a partial shape.
type Insights struct {
	Summary         string   `json:"summary"`
	Warnings        []string `json:"warnings"`
	Recommendations []string `json:"recommendations"`
}

// FallbackInsights is the fixed payload substituted whenever the AI call
// fails, times out, or returns something unparsable.
func FallbackInsights() Insights {
	return Insights{
		Summary:         "Unable to generate AI insights at this time.",
		Warnings:        []string{"Check your internet connection or API key."},
		Recommendations: []string{"Manually review your feed and medicine stocks."},
	}
}
