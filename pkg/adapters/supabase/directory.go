package supabase

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/aretw0/triage/pkg/domain"
	"github.com/aretw0/triage/pkg/ports"
)

const profileColumns = "id,full_name,email,specialization"

// Directory implements ports.DoctorDirectory over the profiles,
// doctor_concerns and doctor_diseases tables.
type Directory struct {
	client *Client
}

var _ ports.DoctorDirectory = (*Directory)(nil)

// NewDirectory wraps a client.
func NewDirectory(client *Client) *Directory {
	return &Directory{client: client}
}

type profileRow struct {
	ID             string `json:"id"`
	FullName       string `json:"full_name"`
	Email          string `json:"email"`
	Specialization string `json:"specialization"`
}

func (p profileRow) doctor() domain.Doctor {
	return domain.Doctor{ID: p.ID, FullName: p.FullName, Email: p.Email, Specialization: p.Specialization}
}

type linkRow struct {
	DoctorID string      `json:"doctor_id"`
	Profile  *profileRow `json:"profiles"`
}

// FindDoctors runs one PostgREST query per criterion. A specialization
// matches profiles whose label contains either the tag or its display name,
// case-insensitively.
func (d *Directory) FindDoctors(ctx context.Context, q domain.DoctorQuery) ([]domain.Doctor, error) {
	switch {
	case q.Specialization != "":
		var rows []profileRow
		err := d.client.Select(ctx, "profiles", url.Values{
			"select": {profileColumns},
			"role":   {"eq.doctor"},
			"or":     {specializationFilter(q.Specialization)},
		}, &rows)
		if err != nil {
			return nil, fmt.Errorf("profiles by specialization %q: %w", q.Specialization, err)
		}
		out := make([]domain.Doctor, len(rows))
		for i, r := range rows {
			out[i] = r.doctor()
		}
		return out, nil
	case q.ConcernID != "":
		return d.linked(ctx, "doctor_concerns", "concern_id", q.ConcernID)
	case q.ConditionID != "":
		return d.linked(ctx, "doctor_diseases", "disease_id", q.ConditionID)
	default:
		return nil, nil
	}
}

// specializationFilter builds the PostgREST or-group for a tag:
// "general" becomes (specialization.ilike.*general*,specialization.ilike.*General Practice*).
func specializationFilter(tag domain.Specialization) string {
	terms := []string{strings.ReplaceAll(string(tag), "-", " ")}
	if name := tag.DisplayName(); !strings.EqualFold(name, terms[0]) {
		terms = append(terms, name)
	}
	parts := make([]string, len(terms))
	for i, t := range terms {
		parts[i] = "specialization.ilike.*" + t + "*"
	}
	return "(" + strings.Join(parts, ",") + ")"
}

// linked follows the doctor_id foreign key into profiles. Rows whose profile
// is missing are dropped.
func (d *Directory) linked(ctx context.Context, table, column, id string) ([]domain.Doctor, error) {
	var rows []linkRow
	err := d.client.Select(ctx, table, url.Values{
		"select": {"doctor_id,profiles:doctor_id(" + profileColumns + ")"},
		column:   {"eq." + id},
	}, &rows)
	if err != nil {
		return nil, fmt.Errorf("%s by %s %q: %w", table, column, id, err)
	}
	var out []domain.Doctor
	for _, r := range rows {
		if r.Profile == nil {
			continue
		}
		out = append(out, r.Profile.doctor())
	}
	return out, nil
}
