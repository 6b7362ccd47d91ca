package domain

// ClassifierRule maps a set of lowercase keywords to a recommendation.
// Rules are evaluated in declared order and the first match wins.
type ClassifierRule struct {
	ID             string         `json:"id" yaml:"id"`
	Keywords       []string       `json:"keywords" yaml:"keywords"`
	Specialization Specialization `json:"specialization" yaml:"specialization"`
	Message        string         `json:"message" yaml:"message"`
}

// Recommendation returns the outcome produced when the rule matches.
func (r ClassifierRule) Recommendation() Recommendation {
	return Recommend(r.Specialization, r.Message)
}
