package roster

import (
	"context"
	"fmt"
	"sort"

	"github.com/jackc/pgx/v5"
)

// DB is the subset of pgxpool.Pool the repository needs. It matches
// pgxmock's pool interface so tests can inject a mock.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Repository reads roster records from Postgres.
type Repository struct {
	db DB
}

// NewRepository creates a repository backed by a pgx pool.
func NewRepository(db DB) *Repository {
	if db == nil {
		panic("roster: db required")
	}
	return &Repository{db: db}
}

var _ Directory = (*Repository)(nil)

// ListPatients returns every patient registered with the organization.
func (r *Repository) ListPatients(ctx context.Context, orgID string) ([]Patient, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, first_name, last_name
		FROM patients
		WHERE org_id = $1
		ORDER BY last_name, first_name`, orgID)
	if err != nil {
		return nil, fmt.Errorf("roster: list patients: %w", err)
	}
	defer rows.Close()

	var out []Patient
	for rows.Next() {
		var p Patient
		if err := rows.Scan(&p.ID, &p.FirstName, &p.LastName); err != nil {
			return nil, fmt.Errorf("roster: scan patient: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ListProviders returns the organization's clinician-role members only.
func (r *Repository) ListProviders(ctx context.Context, orgID string) ([]Provider, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, first_name, last_name, department, role
		FROM providers
		WHERE org_id = $1
		  AND role = ANY($2)
		ORDER BY last_name, first_name`, orgID, clinicianRoleList())
	if err != nil {
		return nil, fmt.Errorf("roster: list providers: %w", err)
	}
	defer rows.Close()

	var out []Provider
	for rows.Next() {
		var p Provider
		if err := rows.Scan(&p.ID, &p.FirstName, &p.LastName, &p.Department, &p.Role); err != nil {
			return nil, fmt.Errorf("roster: scan provider: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func clinicianRoleList() []string {
	roles := make([]string, 0, len(clinicianRoles))
	for role := range clinicianRoles {
		roles = append(roles, role)
	}
	sort.Strings(roles)
	return roles
}
