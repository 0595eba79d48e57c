package scheduling

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/medloop/practice-assistant/internal/roster"
	"github.com/medloop/practice-assistant/pkg/logging"
)

var committerTracer = otel.Tracer("assistant.internal.scheduling")

// FailureKind names a booking precondition that did not hold.
type FailureKind string

const (
	FailurePatientNotFound  FailureKind = "PATIENT_NOT_FOUND"
	FailureProviderNotFound FailureKind = "PROVIDER_NOT_FOUND"
	FailureDuplicate        FailureKind = "APPOINTMENT_ALREADY_EXISTS"
	FailureConflict         FailureKind = "CONFLICT"
)

// CommitError reports a named booking failure. Name carries the originally
// typed text for the not-found kinds; Conflicts carries the overlapping
// bookings for FailureConflict.
type CommitError struct {
	Kind      FailureKind
	Name      string
	Conflicts []Booking
}

func (e *CommitError) Error() string {
	switch e.Kind {
	case FailurePatientNotFound:
		return fmt.Sprintf("scheduling: patient %q not found", e.Name)
	case FailureProviderNotFound:
		return fmt.Sprintf("scheduling: provider %q not found", e.Name)
	case FailureDuplicate:
		return "scheduling: identical appointment already exists"
	case FailureConflict:
		return fmt.Sprintf("scheduling: %d conflicting booking(s)", len(e.Conflicts))
	}
	return "scheduling: booking failed"
}

// ErrStartTooSoon is returned when the proposed start is in the past or
// inside the commit buffer. Callers surface it as a temporal failure with
// re-entry examples rather than a named booking failure.
var ErrStartTooSoon = errors.New("scheduling: start time is in the past")

// duplicateWindow is how close two starts must be for the same
// patient+provider pair to count as the identical appointment.
const duplicateWindow = time.Minute

// CommitRequest carries the resolved parties plus the originally typed
// names. A nil party means resolution failed upstream.
type CommitRequest struct {
	OrgID           string
	Patient         *roster.Patient
	PatientText     string
	Provider        *roster.Provider
	ProviderText    string
	Start           time.Time
	DurationMinutes int
	Type            string
}

// Committer creates appointments once every precondition holds.
type Committer struct {
	store  Store
	logger *logging.Logger
	buffer time.Duration
	now    func() time.Time
}

// NewCommitter wires a committer over the booking store. buffer is the
// minimum lead time a booking must have; zero uses 5 minutes.
func NewCommitter(store Store, logger *logging.Logger, buffer time.Duration) *Committer {
	if store == nil {
		panic("scheduling: store required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if buffer <= 0 {
		buffer = 5 * time.Minute
	}
	return &Committer{
		store:  store,
		logger: logger,
		buffer: buffer,
		now:    time.Now,
	}
}

// WithClock overrides the committer clock. Test hook.
func (c *Committer) WithClock(now func() time.Time) *Committer {
	c.now = now
	return c
}

// Commit validates every precondition and persists the booking. The
// conflict check and the insert are not atomic here; the store's slot
// uniqueness closes the race and surfaces as FailureDuplicate.
func (c *Committer) Commit(ctx context.Context, req CommitRequest) (*Booking, error) {
	ctx, span := committerTracer.Start(ctx, "scheduling.commit")
	defer span.End()
	span.SetAttributes(attribute.String("assistant.org_id", req.OrgID))

	if req.Patient == nil {
		return nil, &CommitError{Kind: FailurePatientNotFound, Name: req.PatientText}
	}
	if req.Provider == nil {
		return nil, &CommitError{Kind: FailureProviderNotFound, Name: req.ProviderText}
	}
	if req.Start.Before(c.now().Add(c.buffer)) {
		return nil, ErrStartTooSoon
	}

	minutes := req.DurationMinutes
	if minutes <= 0 {
		minutes = DefaultDurationMinutes
	}

	existing, err := c.store.ListForProviderOn(ctx, req.Provider.ID, req.OrgID, req.Start)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("scheduling: list provider bookings: %w", err)
	}

	for _, b := range existing {
		if b.PatientID == req.Patient.ID && absDuration(b.StartTime.Sub(req.Start)) < duplicateWindow {
			return nil, &CommitError{Kind: FailureDuplicate}
		}
	}
	if conflicts := FindConflicts(req.Start, minutes, existing); len(conflicts) > 0 {
		return nil, &CommitError{Kind: FailureConflict, Conflicts: conflicts}
	}

	booking, err := c.store.Create(ctx, BookingRequest{
		OrgID:           req.OrgID,
		PatientID:       req.Patient.ID,
		ProviderID:      req.Provider.ID,
		Start:           req.Start,
		DurationMinutes: minutes,
		Title:           titleForDepartment(req.Provider.Department),
		Location:        locationForDepartment(req.Provider.Department),
		Type:            req.Type,
	})
	if err != nil {
		if errors.Is(err, ErrDuplicateBooking) {
			// Lost the check-then-act race to a concurrent commit.
			return nil, &CommitError{Kind: FailureDuplicate}
		}
		span.RecordError(err)
		return nil, fmt.Errorf("scheduling: create booking: %w", err)
	}

	c.logger.Info("booking committed",
		"org_id", req.OrgID,
		"booking_id", booking.ID,
		"provider_id", req.Provider.ID,
		"start", req.Start,
	)
	return booking, nil
}

// departmentTitles maps department keywords to canonical visit titles.
// Checked in order; first keyword contained in the department wins.
var departmentTitles = []struct {
	keyword string
	title   string
}{
	{"cardio", "Cardiology Consultation"},
	{"derm", "Dermatology Consultation"},
	{"pedia", "Pediatric Consultation"},
	{"ortho", "Orthopedic Consultation"},
	{"neuro", "Neurology Consultation"},
	{"gyn", "Gynecology Consultation"},
	{"onco", "Oncology Consultation"},
	{"psych", "Psychiatry Consultation"},
	{"dent", "Dental Consultation"},
	{"ophthal", "Ophthalmology Consultation"},
}

func titleForDepartment(department string) string {
	dept := strings.ToLower(strings.TrimSpace(department))
	for _, entry := range departmentTitles {
		if strings.Contains(dept, entry.keyword) {
			return entry.title
		}
	}
	return "General Consultation"
}

func locationForDepartment(department string) string {
	dept := strings.ToLower(strings.TrimSpace(department))
	if dept == "" {
		return "Main Clinic"
	}
	return capitalize(dept) + " Department"
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
