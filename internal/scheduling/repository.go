package scheduling

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const pgUniqueViolation = "23505"

// DB is the subset of pgxpool.Pool the repository needs; pgxmock's pool
// satisfies it for tests.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository persists appointments in Postgres. The appointments table
// carries a unique index on (provider_id, minute-truncated start) which
// backs the duplicate detection under concurrent commits.
type Repository struct {
	db DB
}

// NewRepository creates a repository backed by a pgx pool.
func NewRepository(db DB) *Repository {
	if db == nil {
		panic("scheduling: db required")
	}
	return &Repository{db: db}
}

var _ Store = (*Repository)(nil)

// ListForProviderOn returns the provider's bookings on the calendar day of
// the supplied timestamp, ordered by start time.
func (r *Repository) ListForProviderOn(ctx context.Context, providerID uuid.UUID, orgID string, day time.Time) ([]Booking, error) {
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	dayEnd := dayStart.Add(24 * time.Hour)

	rows, err := r.db.Query(ctx, `
		SELECT id, org_id, patient_id, provider_id, start_time, duration_minutes, title, location, type, created_at
		FROM appointments
		WHERE provider_id = $1 AND org_id = $2
		  AND start_time >= $3 AND start_time < $4
		ORDER BY start_time`, providerID, orgID, dayStart, dayEnd)
	if err != nil {
		return nil, fmt.Errorf("scheduling: list bookings: %w", err)
	}
	defer rows.Close()

	var out []Booking
	for rows.Next() {
		var b Booking
		if err := rows.Scan(&b.ID, &b.OrgID, &b.PatientID, &b.ProviderID, &b.StartTime,
			&b.DurationMinutes, &b.Title, &b.Location, &b.Type, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("scheduling: scan booking: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// Create inserts one appointment. Unique-violation errors from the slot
// index surface as ErrDuplicateBooking.
func (r *Repository) Create(ctx context.Context, req BookingRequest) (*Booking, error) {
	minutes := req.DurationMinutes
	if minutes <= 0 {
		minutes = DefaultDurationMinutes
	}

	booking := Booking{
		ID:              uuid.New(),
		OrgID:           req.OrgID,
		PatientID:       req.PatientID,
		ProviderID:      req.ProviderID,
		StartTime:       req.Start,
		DurationMinutes: minutes,
		Title:           req.Title,
		Location:        req.Location,
		Type:            req.Type,
	}

	err := r.db.QueryRow(ctx, `
		INSERT INTO appointments (id, org_id, patient_id, provider_id, start_time, duration_minutes, title, location, type)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at`,
		booking.ID, booking.OrgID, booking.PatientID, booking.ProviderID,
		booking.StartTime, booking.DurationMinutes, booking.Title, booking.Location, booking.Type,
	).Scan(&booking.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil, ErrDuplicateBooking
		}
		return nil, fmt.Errorf("scheduling: insert booking: %w", err)
	}
	return &booking, nil
}
