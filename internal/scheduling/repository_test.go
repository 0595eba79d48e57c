package scheduling

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v4"
)

func TestRepositoryListForProviderOn(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()

	providerID := uuid.New()
	day := time.Date(2026, time.September, 1, 14, 0, 0, 0, time.UTC)
	dayStart := time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC)

	rows := pgxmock.NewRows([]string{
		"id", "org_id", "patient_id", "provider_id", "start_time",
		"duration_minutes", "title", "location", "type", "created_at",
	}).AddRow(
		uuid.New(), "org-1", uuid.New(), providerID, day,
		30, "General Consultation", "Main Clinic", "checkup", time.Now().UTC(),
	)
	mock.ExpectQuery("SELECT id, org_id, patient_id, provider_id, start_time").
		WithArgs(providerID, "org-1", dayStart, dayStart.Add(24*time.Hour)).
		WillReturnRows(rows)

	repo := NewRepository(mock)
	bookings, err := repo.ListForProviderOn(context.Background(), providerID, "org-1", day)
	if err != nil {
		t.Fatalf("ListForProviderOn: %v", err)
	}
	if len(bookings) != 1 {
		t.Fatalf("got %d bookings, want 1", len(bookings))
	}
	if !bookings[0].End().Equal(day.Add(30 * time.Minute)) {
		t.Errorf("End = %s, want %s", bookings[0].End(), day.Add(30*time.Minute))
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestRepositoryCreate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()

	created := time.Now().UTC()
	mock.ExpectQuery("INSERT INTO appointments").
		WithArgs(pgxmock.AnyArg(), "org-1", pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), 30, "General Consultation", "Main Clinic", "checkup").
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(created))

	repo := NewRepository(mock)
	booking, err := repo.Create(context.Background(), BookingRequest{
		OrgID:      "org-1",
		PatientID:  uuid.New(),
		ProviderID: uuid.New(),
		Start:      time.Date(2026, time.September, 1, 14, 0, 0, 0, time.UTC),
		Title:      "General Consultation",
		Location:   "Main Clinic",
		Type:       "checkup",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if booking.CreatedAt != created {
		t.Errorf("CreatedAt = %s, want %s", booking.CreatedAt, created)
	}
	if booking.DurationMinutes != 30 {
		t.Errorf("DurationMinutes = %d, want default 30", booking.DurationMinutes)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestRepositoryCreateUniqueViolation(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery("INSERT INTO appointments").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "idx_appointments_provider_slot"})

	repo := NewRepository(mock)
	_, err = repo.Create(context.Background(), BookingRequest{
		OrgID:      "org-1",
		PatientID:  uuid.New(),
		ProviderID: uuid.New(),
		Start:      time.Date(2026, time.September, 1, 14, 0, 0, 0, time.UTC),
	})
	if !errors.Is(err, ErrDuplicateBooking) {
		t.Fatalf("err = %v, want ErrDuplicateBooking", err)
	}
}

func TestMemoryStoreSlotUniqueness(t *testing.T) {
	store := NewMemoryStore()
	providerID := uuid.New()
	start := time.Date(2026, time.September, 1, 10, 15, 0, 0, time.UTC)

	if _, err := store.Create(context.Background(), BookingRequest{
		OrgID: "org-1", PatientID: uuid.New(), ProviderID: providerID, Start: start,
	}); err != nil {
		t.Fatalf("first create: %v", err)
	}

	_, err := store.Create(context.Background(), BookingRequest{
		OrgID: "org-1", PatientID: uuid.New(), ProviderID: providerID, Start: start.Add(20 * time.Second),
	})
	if !errors.Is(err, ErrDuplicateBooking) {
		t.Fatalf("err = %v, want ErrDuplicateBooking for same minute slot", err)
	}

	bookings, err := store.ListForProviderOn(context.Background(), providerID, "org-1", start)
	if err != nil {
		t.Fatalf("ListForProviderOn: %v", err)
	}
	if len(bookings) != 1 {
		t.Errorf("got %d bookings, want 1", len(bookings))
	}
}
