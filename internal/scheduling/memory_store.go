package scheduling

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-process Store used by tests and demo mode. It
// enforces the same provider-slot uniqueness the SQL schema does.
type MemoryStore struct {
	mu       sync.Mutex
	bookings []Booking
	now      func() time.Time
}

// NewMemoryStore creates an empty in-memory booking store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{now: time.Now}
}

var _ Store = (*MemoryStore)(nil)

// ListForProviderOn returns the provider's bookings on the calendar day of
// the supplied timestamp.
func (s *MemoryStore) ListForProviderOn(ctx context.Context, providerID uuid.UUID, orgID string, day time.Time) ([]Booking, error) {
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	dayEnd := dayStart.Add(24 * time.Hour)

	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Booking
	for _, b := range s.bookings {
		if b.ProviderID == providerID && b.OrgID == orgID &&
			!b.StartTime.Before(dayStart) && b.StartTime.Before(dayEnd) {
			out = append(out, b)
		}
	}
	return out, nil
}

// Create inserts the booking, rejecting a second booking in the same
// provider minute slot with ErrDuplicateBooking.
func (s *MemoryStore) Create(ctx context.Context, req BookingRequest) (*Booking, error) {
	minutes := req.DurationMinutes
	if minutes <= 0 {
		minutes = DefaultDurationMinutes
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	slot := req.Start.Truncate(time.Minute)
	for _, b := range s.bookings {
		if b.ProviderID == req.ProviderID && b.StartTime.Truncate(time.Minute).Equal(slot) {
			return nil, ErrDuplicateBooking
		}
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
		CreatedAt:       s.now().UTC(),
	}
	s.bookings = append(s.bookings, booking)
	return &booking, nil
}
