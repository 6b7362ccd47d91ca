package memory

import (
	"context"
	"strings"

	"github.com/aretw0/triage/pkg/domain"
)

// Directory implements ports.DoctorDirectory over a static roster.
// Concern and condition links are keyed by their external ids.
type Directory struct {
	doctors    []domain.Doctor
	concerns   map[string][]string // concern id -> doctor ids
	conditions map[string][]string // condition id -> doctor ids
}

// NewDirectory creates a directory over the given doctors.
func NewDirectory(doctors ...domain.Doctor) *Directory {
	return &Directory{
		doctors:    append([]domain.Doctor(nil), doctors...),
		concerns:   make(map[string][]string),
		conditions: make(map[string][]string),
	}
}

// LinkConcern associates doctors with a concern id.
func (d *Directory) LinkConcern(concernID string, doctorIDs ...string) *Directory {
	d.concerns[concernID] = append(d.concerns[concernID], doctorIDs...)
	return d
}

// LinkCondition associates doctors with a condition id.
func (d *Directory) LinkCondition(conditionID string, doctorIDs ...string) *Directory {
	d.conditions[conditionID] = append(d.conditions[conditionID], doctorIDs...)
	return d
}

// FindDoctors filters the roster. Specializations match by case-insensitive
// substring of the display name or the raw tag.
func (d *Directory) FindDoctors(ctx context.Context, q domain.DoctorQuery) ([]domain.Doctor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	switch {
	case q.ConcernID != "":
		return d.byIDs(d.concerns[q.ConcernID]), nil
	case q.ConditionID != "":
		return d.byIDs(d.conditions[q.ConditionID]), nil
	case q.Specialization != "":
		var out []domain.Doctor
		for _, doc := range d.doctors {
			if MatchesSpecialization(doc.Specialization, q.Specialization) {
				out = append(out, doc)
			}
		}
		return out, nil
	default:
		return append([]domain.Doctor(nil), d.doctors...), nil
	}
}

func (d *Directory) byIDs(ids []string) []domain.Doctor {
	var out []domain.Doctor
	for _, id := range ids {
		for _, doc := range d.doctors {
			if doc.ID == id {
				out = append(out, doc)
			}
		}
	}
	return out
}

// MatchesSpecialization reports whether a free-form specialization label
// (as stored on a doctor profile) belongs to tag.
func MatchesSpecialization(label string, tag domain.Specialization) bool {
	l := strings.ToLower(label)
	return strings.Contains(l, strings.ToLower(string(tag))) ||
		strings.Contains(l, strings.ToLower(tag.DisplayName()))
}
