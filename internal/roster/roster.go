package roster

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

// Patient is a read-only roster record for a registered patient.
type Patient struct {
	ID        uuid.UUID `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
}

// FullName returns "First Last" with single spacing.
func (p Patient) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// Provider is a clinician roster record.
type Provider struct {
	ID         uuid.UUID `json:"id"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	Department string    `json:"department"`
	Role       string    `json:"role"`
}

// FullName returns "First Last" with single spacing.
func (p Provider) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// Directory exposes the organization roster the assistant resolves names
// against. Implementations must scope results to the organization.
type Directory interface {
	ListPatients(ctx context.Context, orgID string) ([]Patient, error)
	ListProviders(ctx context.Context, orgID string) ([]Provider, error)
}

// clinicianRoles are the membership roles ListProviders implementations
// should treat as bookable clinicians.
var clinicianRoles = map[string]bool{
	"doctor":             true,
	"physician":          true,
	"clinician":          true,
	"nurse_practitioner": true,
	"specialist":         true,
}

// IsClinicianRole reports whether a roster role is bookable.
func IsClinicianRole(role string) bool {
	return clinicianRoles[strings.ToLower(strings.TrimSpace(role))]
}
