package domain

// Recommendation is the terminal output of both engines.
// It is a value type: once built it is never mutated.
type Recommendation struct {
	Specialization Specialization `json:"specialization,omitempty" yaml:"specialization,omitempty"`
	Message        string         `json:"message" yaml:"message"`
}

// Recommend builds a Recommendation carrying a specialization tag.
func Recommend(s Specialization, message string) Recommendation {
	return Recommendation{Specialization: s, Message: message}
}

// NoRecommendation builds a Recommendation without a specialization tag.
func NoRecommendation(message string) Recommendation {
	return Recommendation{Message: message}
}

// HasSpecialization reports whether a confident recommendation was made.
func (r Recommendation) HasSpecialization() bool {
	return r.Specialization != ""
}
