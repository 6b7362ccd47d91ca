package domain

// Doctor is the hand-off shape consumed by the listing flow.
// Recommended marks provenance (the doctor came from a triage match), not a score.
type Doctor struct {
	ID             string `json:"id"`
	FullName       string `json:"full_name"`
	Email          string `json:"email,omitempty"`
	Specialization string `json:"specialization"`
	Recommended    bool   `json:"recommended"`
}

// DoctorQuery selects doctors by exactly one criterion.
type DoctorQuery struct {
	Specialization Specialization `json:"specialization,omitempty"`
	ConcernID      string         `json:"concern_id,omitempty"`
	ConditionID    string         `json:"condition_id,omitempty"`
}

// IsEmpty reports whether no criterion is set.
func (q DoctorQuery) IsEmpty() bool {
	return q.Specialization == "" && q.ConcernID == "" && q.ConditionID == ""
}
