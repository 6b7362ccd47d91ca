package domain

import (
	"fmt"
	"strings"
)

// Specialization is an enumerated tag identifying a medical field.
// The empty value means "no specialization".
type Specialization string

const (
	Cardiology       Specialization = "cardiology"
	Neurology        Specialization = "neurology"
	Dermatology      Specialization = "dermatology"
	General          Specialization = "general"
	MentalHealth     Specialization = "mental-health"
	Orthopedics      Specialization = "orthopedics"
	Ophthalmology    Specialization = "ophthalmology"
	InternalMedicine Specialization = "internal-medicine"
)

var specializations = []Specialization{
	Cardiology,
	Neurology,
	Dermatology,
	General,
	MentalHealth,
	Orthopedics,
	Ophthalmology,
	InternalMedicine,
}

var displayNames = map[Specialization]string{
	Cardiology:       "Cardiology",
	Neurology:        "Neurology",
	Dermatology:      "Dermatology",
	General:          "General Practice",
	MentalHealth:     "Mental Health",
	Orthopedics:      "Orthopedics",
	Ophthalmology:    "Ophthalmology",
	InternalMedicine: "Internal Medicine",
}

// Specializations returns every known tag in declaration order.
func Specializations() []Specialization {
	out := make([]Specialization, len(specializations))
	copy(out, specializations)
	return out
}

// Valid reports whether s is one of the enumerated tags.
func (s Specialization) Valid() bool {
	_, ok := displayNames[s]
	return ok
}

// DisplayName returns the human-readable label, or the raw tag if unknown.
func (s Specialization) DisplayName() string {
	if name, ok := displayNames[s]; ok {
		return name
	}
	return string(s)
}

func (s Specialization) String() string { return string(s) }

// ParseSpecialization converts a tag (case-insensitive, surrounding spaces ignored).
func ParseSpecialization(raw string) (Specialization, error) {
	s := Specialization(strings.ToLower(strings.TrimSpace(raw)))
	if !s.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidSpecialization, raw)
	}
	return s, nil
}
