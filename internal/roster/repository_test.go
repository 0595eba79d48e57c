package roster

import (
	"context"
	"testing"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v4"
)

func TestRepositoryListPatients(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()

	id1 := uuid.New()
	id2 := uuid.New()
	rows := pgxmock.NewRows([]string{"id", "first_name", "last_name"}).
		AddRow(id1, "Jane", "Doe").
		AddRow(id2, "Omar", "Younus")
	mock.ExpectQuery("SELECT id, first_name, last_name").
		WithArgs("org-1").
		WillReturnRows(rows)

	repo := NewRepository(mock)
	patients, err := repo.ListPatients(context.Background(), "org-1")
	if err != nil {
		t.Fatalf("ListPatients: %v", err)
	}
	if len(patients) != 2 {
		t.Fatalf("got %d patients, want 2", len(patients))
	}
	if patients[0].FullName() != "Jane Doe" {
		t.Errorf("FullName = %q, want Jane Doe", patients[0].FullName())
	}
	if patients[1].ID != id2 {
		t.Errorf("ID = %s, want %s", patients[1].ID, id2)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestRepositoryListProvidersFiltersRoles(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()

	rows := pgxmock.NewRows([]string{"id", "first_name", "last_name", "department", "role"}).
		AddRow(uuid.New(), "Sarah", "Adams", "cardiology", "doctor")
	mock.ExpectQuery("SELECT id, first_name, last_name, department, role").
		WithArgs("org-1", clinicianRoleList()).
		WillReturnRows(rows)

	repo := NewRepository(mock)
	providers, err := repo.ListProviders(context.Background(), "org-1")
	if err != nil {
		t.Fatalf("ListProviders: %v", err)
	}
	if len(providers) != 1 {
		t.Fatalf("got %d providers, want 1", len(providers))
	}
	if providers[0].Department != "cardiology" {
		t.Errorf("Department = %q, want cardiology", providers[0].Department)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestMemoryDirectoryFiltersNonClinicians(t *testing.T) {
	dir := NewMemoryDirectory()
	dir.AddPatient("org-1", Patient{ID: uuid.New(), FirstName: "Jane", LastName: "Doe"})
	dir.AddProvider("org-1", Provider{ID: uuid.New(), FirstName: "Sarah", LastName: "Adams", Department: "cardiology", Role: "doctor"})
	dir.AddProvider("org-1", Provider{ID: uuid.New(), FirstName: "Bob", LastName: "Ledger", Department: "billing", Role: "admin"})

	providers, err := dir.ListProviders(context.Background(), "org-1")
	if err != nil {
		t.Fatalf("ListProviders: %v", err)
	}
	if len(providers) != 1 {
		t.Fatalf("got %d providers, want 1 (admin filtered)", len(providers))
	}
	if providers[0].FullName() != "Sarah Adams" {
		t.Errorf("FullName = %q, want Sarah Adams", providers[0].FullName())
	}

	patients, err := dir.ListPatients(context.Background(), "other-org")
	if err != nil {
		t.Fatalf("ListPatients: %v", err)
	}
	if len(patients) != 0 {
		t.Errorf("got %d patients for unknown org, want 0", len(patients))
	}
}
