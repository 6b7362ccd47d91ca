// Package directory turns a triage recommendation into a doctor listing.
//
// Doctors returned by the DoctorDirectory port are marked Recommended. A
// fallback roster may be appended so the listing is never empty; fallback
// doctors keep Recommended=false and are skipped when a directory doctor
// with the same name is already present.
package directory

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aretw0/triage/internal/logging"
	"github.com/aretw0/triage/pkg/adapters/memory"
	"github.com/aretw0/triage/pkg/domain"
	"github.com/aretw0/triage/pkg/ports"
)

// Options configures Match.
type Options struct {
	// Fallback is appended after directory results.
	Fallback []domain.Doctor
	// Limit caps the fallback shown when the query has no specialization.
	// Zero shows the whole fallback roster.
	Limit int
	Logger *slog.Logger
}

// Match lists doctors for a recommendation. Without a specialization tag the
// directory is not queried and only the fallback roster is returned.
func Match(ctx context.Context, dir ports.DoctorDirectory, rec domain.Recommendation, opts Options) ([]domain.Doctor, error) {
	if !rec.HasSpecialization() {
		return fallbackFor("", opts), nil
	}
	return MatchQuery(ctx, dir, domain.DoctorQuery{Specialization: rec.Specialization}, opts)
}

// MatchQuery lists doctors for any hand-off query (specialization, concern or
// condition).
func MatchQuery(ctx context.Context, dir ports.DoctorDirectory, q domain.DoctorQuery, opts Options) ([]domain.Doctor, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}

	var found []domain.Doctor
	if dir != nil && !q.IsEmpty() {
		var err error
		found, err = dir.FindDoctors(ctx, q)
		if err != nil {
			return nil, fmt.Errorf("find doctors: %w", err)
		}
	}

	out := make([]domain.Doctor, 0, len(found)+len(opts.Fallback))
	seen := make(map[string]bool, len(found))
	for _, d := range found {
		d.Recommended = true
		out = append(out, d)
		seen[nameKey(d.FullName)] = true
	}
	for _, d := range fallbackFor(q.Specialization, opts) {
		if seen[nameKey(d.FullName)] {
			continue
		}
		out = append(out, d)
	}

	logger.Debug("doctors matched",
		"specialization", q.Specialization,
		"concern_id", q.ConcernID,
		"condition_id", q.ConditionID,
		"recommended", len(found),
		"total", len(out),
	)
	return out, nil
}

// fallbackFor selects fallback doctors for tag. With no tag the roster is
// returned unfiltered (up to Limit). When nothing matches the tag, general
// practitioners are offered instead.
func fallbackFor(tag domain.Specialization, opts Options) []domain.Doctor {
	if tag == "" {
		roster := opts.Fallback
		if opts.Limit > 0 && len(roster) > opts.Limit {
			roster = roster[:opts.Limit]
		}
		return unmarked(roster)
	}

	filtered := filter(opts.Fallback, tag)
	if len(filtered) == 0 && tag != domain.General {
		filtered = filter(opts.Fallback, domain.General)
	}
	return filtered
}

func filter(doctors []domain.Doctor, tag domain.Specialization) []domain.Doctor {
	var out []domain.Doctor
	for _, d := range doctors {
		if memory.MatchesSpecialization(d.Specialization, tag) {
			d.Recommended = false
			out = append(out, d)
		}
	}
	return out
}

func unmarked(doctors []domain.Doctor) []domain.Doctor {
	out := make([]domain.Doctor, len(doctors))
	for i, d := range doctors {
		d.Recommended = false
		out[i] = d
	}
	return out
}

func nameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
