package scheduling

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/medloop/practice-assistant/internal/roster"
	"github.com/medloop/practice-assistant/pkg/logging"
)

var (
	testPatient = &roster.Patient{ID: uuid.New(), FirstName: "Jane", LastName: "Doe"}
	testDoctor  = &roster.Provider{ID: uuid.New(), FirstName: "Sarah", LastName: "Adams", Department: "cardiology", Role: "doctor"}
)

func newTestCommitter(store Store) *Committer {
	c := NewCommitter(store, logging.Default(), 5*time.Minute)
	return c.WithClock(func() time.Time { return at(8, 0) })
}

func TestCommitCreatesBooking(t *testing.T) {
	store := NewMemoryStore()
	c := newTestCommitter(store)

	booking, err := c.Commit(context.Background(), CommitRequest{
		OrgID:    "org-1",
		Patient:  testPatient,
		Provider: testDoctor,
		Start:    at(14, 0),
		Type:     "checkup",
	})
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if booking.DurationMinutes != DefaultDurationMinutes {
		t.Errorf("DurationMinutes = %d, want %d", booking.DurationMinutes, DefaultDurationMinutes)
	}
	if booking.Title != "Cardiology Consultation" {
		t.Errorf("Title = %q, want Cardiology Consultation", booking.Title)
	}
	if booking.Location != "Cardiology Department" {
		t.Errorf("Location = %q, want Cardiology Department", booking.Location)
	}
	if booking.ID == uuid.Nil {
		t.Error("booking ID not assigned")
	}
}

func TestCommitUnresolvedParties(t *testing.T) {
	c := newTestCommitter(NewMemoryStore())

	_, err := c.Commit(context.Background(), CommitRequest{
		OrgID:       "org-1",
		PatientText: "Jane Doe",
		Provider:    testDoctor,
		Start:       at(14, 0),
	})
	var commitErr *CommitError
	if !errors.As(err, &commitErr) || commitErr.Kind != FailurePatientNotFound {
		t.Fatalf("err = %v, want PATIENT_NOT_FOUND", err)
	}
	if commitErr.Name != "Jane Doe" {
		t.Errorf("Name = %q, want the typed text", commitErr.Name)
	}

	_, err = c.Commit(context.Background(), CommitRequest{
		OrgID:        "org-1",
		Patient:      testPatient,
		ProviderText: "Dr. Ghost",
		Start:        at(14, 0),
	})
	if !errors.As(err, &commitErr) || commitErr.Kind != FailureProviderNotFound {
		t.Fatalf("err = %v, want PROVIDER_NOT_FOUND", err)
	}
}

func TestCommitStartTooSoon(t *testing.T) {
	c := newTestCommitter(NewMemoryStore())

	_, err := c.Commit(context.Background(), CommitRequest{
		OrgID:    "org-1",
		Patient:  testPatient,
		Provider: testDoctor,
		Start:    at(7, 0), // clock is 08:00
	})
	if !errors.Is(err, ErrStartTooSoon) {
		t.Fatalf("err = %v, want ErrStartTooSoon", err)
	}

	// Inside the five-minute buffer counts as too soon.
	_, err = c.Commit(context.Background(), CommitRequest{
		OrgID:    "org-1",
		Patient:  testPatient,
		Provider: testDoctor,
		Start:    at(8, 2),
	})
	if !errors.Is(err, ErrStartTooSoon) {
		t.Fatalf("err = %v, want ErrStartTooSoon for buffered start", err)
	}
}

func TestCommitConflictVersusDuplicate(t *testing.T) {
	store := NewMemoryStore()
	c := newTestCommitter(store)

	if _, err := c.Commit(context.Background(), CommitRequest{
		OrgID:    "org-1",
		Patient:  testPatient,
		Provider: testDoctor,
		Start:    at(10, 15),
	}); err != nil {
		t.Fatalf("seed commit: %v", err)
	}

	// Identical patient+provider+time within a minute is the duplicate kind.
	_, err := c.Commit(context.Background(), CommitRequest{
		OrgID:    "org-1",
		Patient:  testPatient,
		Provider: testDoctor,
		Start:    at(10, 15).Add(30 * time.Second),
	})
	var commitErr *CommitError
	if !errors.As(err, &commitErr) || commitErr.Kind != FailureDuplicate {
		t.Fatalf("err = %v, want APPOINTMENT_ALREADY_EXISTS", err)
	}

	// A different patient overlapping the slot is a plain conflict.
	other := &roster.Patient{ID: uuid.New(), FirstName: "Omar", LastName: "Younus"}
	_, err = c.Commit(context.Background(), CommitRequest{
		OrgID:    "org-1",
		Patient:  other,
		Provider: testDoctor,
		Start:    at(10, 0),
	})
	if !errors.As(err, &commitErr) || commitErr.Kind != FailureConflict {
		t.Fatalf("err = %v, want CONFLICT", err)
	}
	if len(commitErr.Conflicts) != 1 {
		t.Fatalf("got %d conflicts surfaced, want 1", len(commitErr.Conflicts))
	}

	// Back-to-back with the existing 10:15-10:45 booking is allowed.
	if _, err := c.Commit(context.Background(), CommitRequest{
		OrgID:    "org-1",
		Patient:  other,
		Provider: testDoctor,
		Start:    at(10, 45),
	}); err != nil {
		t.Fatalf("boundary commit: %v", err)
	}
}

func TestCommitMapsStoreDuplicate(t *testing.T) {
	store := &duplicateStore{}
	c := newTestCommitter(store)

	_, err := c.Commit(context.Background(), CommitRequest{
		OrgID:    "org-1",
		Patient:  testPatient,
		Provider: testDoctor,
		Start:    at(14, 0),
	})
	var commitErr *CommitError
	if !errors.As(err, &commitErr) || commitErr.Kind != FailureDuplicate {
		t.Fatalf("err = %v, want APPOINTMENT_ALREADY_EXISTS from store race", err)
	}
}

func TestTitleForDepartment(t *testing.T) {
	tests := []struct {
		department string
		want       string
	}{
		{"cardiology", "Cardiology Consultation"},
		{"Dermatology", "Dermatology Consultation"},
		{"pediatrics", "Pediatric Consultation"},
		{"billing", "General Consultation"},
		{"", "General Consultation"},
	}
	for _, tt := range tests {
		if got := titleForDepartment(tt.department); got != tt.want {
			t.Errorf("titleForDepartment(%q) = %q, want %q", tt.department, got, tt.want)
		}
	}
}

// duplicateStore simulates losing the check-then-act race: the conflict
// scan sees nothing, the insert hits the unique index.
type duplicateStore struct{}

func (s *duplicateStore) ListForProviderOn(ctx context.Context, providerID uuid.UUID, orgID string, day time.Time) ([]Booking, error) {
	return nil, nil
}

func (s *duplicateStore) Create(ctx context.Context, req BookingRequest) (*Booking, error) {
	return nil, ErrDuplicateBooking
}
