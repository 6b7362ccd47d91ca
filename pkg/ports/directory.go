package ports

import (
	"context"

	"github.com/aretw0/triage/pkg/domain"
)

// DoctorDirectory looks up doctors for a hand-off query.
// Implementations return doctors with Recommended unset; provenance is
// decided by the caller.
type DoctorDirectory interface {
	FindDoctors(ctx context.Context, q domain.DoctorQuery) ([]domain.Doctor, error)
}
