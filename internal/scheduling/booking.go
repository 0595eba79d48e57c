package scheduling

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// DefaultDurationMinutes is assumed whenever a booking carries no duration.
const DefaultDurationMinutes = 30

// Booking is a persisted appointment for a provider.
type Booking struct {
	ID              uuid.UUID `json:"id"`
	OrgID           string    `json:"org_id"`
	PatientID       uuid.UUID `json:"patient_id"`
	ProviderID      uuid.UUID `json:"provider_id"`
	StartTime       time.Time `json:"start_time"`
	DurationMinutes int       `json:"duration_minutes"`
	Title           string    `json:"title"`
	Location        string    `json:"location"`
	Type            string    `json:"type"`
	CreatedAt       time.Time `json:"created_at"`
}

// End returns the exclusive end of the booking interval.
func (b Booking) End() time.Time {
	minutes := b.DurationMinutes
	if minutes <= 0 {
		minutes = DefaultDurationMinutes
	}
	return b.StartTime.Add(time.Duration(minutes) * time.Minute)
}

// BookingRequest describes the appointment to create once every
// precondition holds.
type BookingRequest struct {
	OrgID           string    `json:"org_id"`
	PatientID       uuid.UUID `json:"patient_id"`
	ProviderID      uuid.UUID `json:"provider_id"`
	Start           time.Time `json:"start"`
	DurationMinutes int       `json:"duration_minutes"`
	Title           string    `json:"title"`
	Location        string    `json:"location"`
	Type            string    `json:"type"`
}

// ErrDuplicateBooking is returned by stores when the provider slot
// uniqueness constraint rejects an insert.
var ErrDuplicateBooking = errors.New("scheduling: duplicate booking for provider slot")

// Store persists bookings. Create must enforce uniqueness on the
// (provider, minute-bucket) slot so concurrent commits cannot both land.
type Store interface {
	ListForProviderOn(ctx context.Context, providerID uuid.UUID, orgID string, day time.Time) ([]Booking, error)
	Create(ctx context.Context, req BookingRequest) (*Booking, error)
}
