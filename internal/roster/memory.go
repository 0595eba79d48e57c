package roster

import (
	"context"
	"sync"
)

// MemoryDirectory is an in-memory Directory used in tests and demo mode.
type MemoryDirectory struct {
	mu        sync.RWMutex
	patients  map[string][]Patient
	providers map[string][]Provider
}

// NewMemoryDirectory creates an empty in-memory directory.
func NewMemoryDirectory() *MemoryDirectory {
	return &MemoryDirectory{
		patients:  make(map[string][]Patient),
		providers: make(map[string][]Provider),
	}
}

// AddPatient registers a patient under the organization.
func (d *MemoryDirectory) AddPatient(orgID string, p Patient) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.patients[orgID] = append(d.patients[orgID], p)
}

// AddProvider registers a provider under the organization. Non-clinician
// roles are stored but never listed, mirroring the SQL directory.
func (d *MemoryDirectory) AddProvider(orgID string, p Provider) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.providers[orgID] = append(d.providers[orgID], p)
}

// ListPatients returns patients registered under the organization.
func (d *MemoryDirectory) ListPatients(ctx context.Context, orgID string) ([]Patient, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]Patient, len(d.patients[orgID]))
	copy(out, d.patients[orgID])
	return out, nil
}

// ListProviders returns clinician-role providers registered under the org.
func (d *MemoryDirectory) ListProviders(ctx context.Context, orgID string) ([]Provider, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	var out []Provider
	for _, p := range d.providers[orgID] {
		if IsClinicianRole(p.Role) {
			out = append(out, p)
		}
	}
	return out, nil
}

var _ Directory = (*MemoryDirectory)(nil)
