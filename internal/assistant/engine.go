package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/medloop/practice-assistant/internal/observability/metrics"
	"github.com/medloop/practice-assistant/internal/roster"
	"github.com/medloop/practice-assistant/internal/scheduling"
	"github.com/medloop/practice-assistant/pkg/logging"
)

// TurnRequest is one user utterance inside a session.
type TurnRequest struct {
	SessionID string `json:"session_id"`
	UserID    string `json:"user_id"`
	OrgID     string `json:"org_id"`
	Text      string `json:"text"`
}

// TurnResult is the assistant's answer for a single turn. ContextUpdate
// carries the mutated session state back to the caller.
type TurnResult struct {
	ResponseText  string               `json:"response_text"`
	Intent        Intent               `json:"intent"`
	Entities      ExtractedEntities    `json:"entities"`
	Confidence    float64              `json:"confidence"`
	NextActions   []string             `json:"next_actions,omitempty"`
	State         BookingState         `json:"state,omitempty"`
	BookingID     string               `json:"booking_id,omitempty"`
	ContextUpdate *ConversationContext `json:"context_update"`
}

// TurnProcessor is the contract both tiers implement: the model-backed
// understanding and the deterministic pipeline are interchangeable
// behind it.
type TurnProcessor interface {
	ProcessTurn(ctx context.Context, req TurnRequest, convo *ConversationContext) (*TurnResult, error)
}

// Engine is the deterministic tier: heuristic NLU plus the slot-filling
// dialogue state machine. It is a complete implementation of the turn
// contract, not a degraded stub.
type Engine struct {
	directory    roster.Directory
	committer    *scheduling.Committer
	classifier   *Classifier
	metrics      *metrics.AssistantMetrics
	logger       *logging.Logger
	now          func() time.Time
	visitMinutes int
}

var _ TurnProcessor = (*Engine)(nil)

// NewEngine wires the deterministic tier.
func NewEngine(directory roster.Directory, committer *scheduling.Committer, m *metrics.AssistantMetrics, logger *logging.Logger) *Engine {
	if directory == nil {
		panic("assistant: roster directory required")
	}
	if committer == nil {
		panic("assistant: committer required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Engine{
		directory:  directory,
		committer:  committer,
		classifier: NewClassifier(),
		metrics:    m,
		logger:     logger,
		now:        time.Now,
	}
}

// WithClock overrides the engine clock. Test hook.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// WithVisitDuration overrides the default visit length. Zero keeps the
// store default.
func (e *Engine) WithVisitDuration(minutes int) *Engine {
	e.visitMinutes = minutes
	return e
}

// ProcessTurn classifies and extracts the turn, then advances the
// dialogue. Steps run sequentially: classify, extract, resolve, merge,
// then book or prompt.
func (e *Engine) ProcessTurn(ctx context.Context, req TurnRequest, convo *ConversationContext) (*TurnResult, error) {
	intent, confidence := e.classifier.Classify(req.Text, convo)
	entities := Extract(req.Text, e.now())
	return e.processUnderstood(ctx, req, convo, intent, confidence, entities, "deterministic")
}

// processUnderstood advances the dialogue from an already-classified
// turn. Shared by both tiers so the model-backed understanding reuses
// the same merge/commit semantics.
func (e *Engine) processUnderstood(ctx context.Context, req TurnRequest, convo *ConversationContext, intent Intent, confidence float64, entities ExtractedEntities, tier string) (*TurnResult, error) {
	if convo == nil {
		convo = NewConversationContext(req.SessionID, req.UserID, req.OrgID)
	}
	now := e.now()

	convo.recordTurn(Turn{
		Role:      RoleUser,
		Text:      req.Text,
		Timestamp: now,
		Intent:    intent,
		Entities:  entities,
	})
	e.metrics.ObserveTurn(string(intent), tier)

	result := &TurnResult{
		Intent:     intent,
		Entities:   entities,
		Confidence: confidence,
	}

	var err error
	switch intent {
	case IntentAppointmentBooking:
		err = e.handleBookingTurn(ctx, convo, entities, result)
	case IntentPrescriptionInquiry:
		e.handlePrescription(convo, entities, result)
	case IntentMedicalQuestion:
		result.ResponseText = "I'm not able to give medical advice, but a clinician can. Would you like me to book an appointment so a doctor can take a look?"
		result.NextActions = []string{"book_appointment"}
	case IntentGreeting:
		result.ResponseText = "Hello! I can help you book appointments, answer practice questions, or look into prescriptions. What can I do for you today?"
	default:
		result.ResponseText = "I can help with appointment booking, prescriptions, and general practice questions. Could you tell me a bit more about what you need?"
	}
	if err != nil {
		return nil, err
	}

	convo.recordTurn(Turn{
		Role:      RoleAssistant,
		Text:      result.ResponseText,
		Timestamp: e.now(),
	})
	result.ContextUpdate = convo
	return result, nil
}

// slotLabels and slotQuestions drive acknowledgement and prompting.
var slotLabels = map[string]string{
	SlotPatientName:      "Patient",
	SlotDate:             "Date",
	SlotTime:             "Time",
	SlotAppointmentType:  "Type",
	SlotDoctorPreference: "Doctor",
	SlotReason:           "Reason",
}

var slotQuestions = map[string]string{
	SlotPatientName: "the patient's full name",
	SlotDate:        "the appointment date",
	SlotTime:        "a preferred time",
}

func (e *Engine) handleBookingTurn(ctx context.Context, convo *ConversationContext, entities ExtractedEntities, result *TurnResult) error {
	before := convo.Knowledge.Pending
	convo.Knowledge.Pending.Merge(entities)
	after := convo.Knowledge.Pending

	missing := after.Missing()
	if len(missing) > 0 {
		e.promptForMissing(convo, before, after, missing, result)
		return nil
	}

	// All required slots filled; the commit decides the final state.
	result.State = StateReadyToBook
	return e.attemptBooking(ctx, convo, after, result)
}

// promptForMissing acknowledges newly filled slots and asks only for the
// still-missing fields. Filled slots are never re-requested.
func (e *Engine) promptForMissing(convo *ConversationContext, before, after PendingSlots, missing []string, result *TurnResult) {
	var b strings.Builder
	for _, pair := range filledDelta(before, after) {
		fmt.Fprintf(&b, "✓ %s: %s\n", slotLabels[pair[0]], pair[1])
	}

	questions := make([]string, 0, len(missing))
	for _, slot := range missing {
		questions = append(questions, slotQuestions[slot])
		result.NextActions = append(result.NextActions, "provide_"+slot)
	}
	if b.Len() > 0 {
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "Could you tell me %s?", strings.Join(questions, " and "))

	convo.Knowledge.SlotPromptHistory = append(convo.Knowledge.SlotPromptHistory, missing...)
	result.ResponseText = b.String()
	result.State = StateCollecting
}

func (e *Engine) attemptBooking(ctx context.Context, convo *ConversationContext, slots PendingSlots, result *TurnResult) error {
	now := e.now()

	start, err := CombineDateTime(slots.Date, slots.Time, now)
	if err != nil {
		e.metrics.ObserveBooking("temporal")
		result.State = StateBookingFailed
		if errors.Is(err, errPastDate) {
			result.ResponseText = fmt.Sprintf("That time has already passed (%s %s). Could you give me a future date and time, like \"tomorrow at 2pm\" or \"12 September at 10:30\"?", slots.Date, slots.Time)
		} else {
			result.ResponseText = "I couldn't work out the date and time. Could you re-enter them, for example \"tomorrow at 2pm\" or \"Friday at 10:30\"?"
		}
		result.NextActions = []string{"provide_date", "provide_time"}
		return nil
	}

	patients, err := e.directory.ListPatients(ctx, convo.OrgID)
	if err != nil {
		return fmt.Errorf("assistant: list patients: %w", err)
	}
	providers, err := e.directory.ListProviders(ctx, convo.OrgID)
	if err != nil {
		return fmt.Errorf("assistant: list providers: %w", err)
	}

	patient, _ := ResolvePatient(slots.PatientName, patients)

	var provider *roster.Provider
	if slots.DoctorPreference != "" {
		provider, _ = ResolveProvider(slots.DoctorPreference, providers)
	} else if len(providers) > 0 {
		// No stated preference: assign the first available clinician.
		provider = &providers[0]
	}

	commitStart := time.Now()
	booking, err := e.committer.Commit(ctx, scheduling.CommitRequest{
		OrgID:           convo.OrgID,
		Patient:         patient,
		PatientText:     slots.PatientName,
		Provider:        provider,
		ProviderText:    slots.DoctorPreference,
		Start:           start,
		DurationMinutes: e.visitMinutes,
		Type:            slots.AppointmentType,
	})
	e.metrics.ObserveCommitLatency(time.Since(commitStart).Seconds())

	if err != nil {
		return e.reportBookingFailure(err, slots, result)
	}

	e.metrics.ObserveBooking("booked")
	result.State = StateBooked
	result.BookingID = booking.ID.String()
	result.ResponseText = fmt.Sprintf(
		"✓ Appointment booked! %s is scheduled with Dr. %s (%s) on %s. Your reference is %s.",
		patient.FullName(), provider.LastName, booking.Title, formatWhen(start), booking.ID,
	)

	// Terminal outcome: the booking form is done.
	convo.Knowledge.Pending = PendingSlots{}
	convo.Knowledge.SlotPromptHistory = nil
	return nil
}

// reportBookingFailure turns a named commit failure into its remediation
// message. Collected slots stay intact so only the offending field needs
// correcting; the dialogue returns to collecting.
func (e *Engine) reportBookingFailure(err error, slots PendingSlots, result *TurnResult) error {
	result.State = StateBookingFailed

	if errors.Is(err, scheduling.ErrStartTooSoon) {
		e.metrics.ObserveBooking("temporal")
		result.ResponseText = "That time is too soon or already past. Could you pick a later time, like \"tomorrow at 2pm\"?"
		result.NextActions = []string{"provide_date", "provide_time"}
		return nil
	}

	var commitErr *scheduling.CommitError
	if !errors.As(err, &commitErr) {
		// Outside the failure taxonomy: bubble up for the generic retry path.
		return err
	}

	switch commitErr.Kind {
	case scheduling.FailurePatientNotFound:
		e.metrics.ObserveBooking("patient_not_found")
		result.ResponseText = fmt.Sprintf("I couldn't find a patient named %q in our records. Could you double-check the spelling of the name?", commitErr.Name)
		result.NextActions = []string{"provide_" + SlotPatientName}
	case scheduling.FailureProviderNotFound:
		e.metrics.ObserveBooking("provider_not_found")
		name := commitErr.Name
		if name == "" {
			name = "the requested doctor"
		}
		result.ResponseText = fmt.Sprintf("I couldn't find %s on the clinician roster. Could you check the doctor's name?", quoteIfTyped(commitErr.Name, name))
		result.NextActions = []string{"provide_" + SlotDoctorPreference}
	case scheduling.FailureDuplicate:
		e.metrics.ObserveBooking("duplicate")
		result.ResponseText = "This exact appointment is already on the calendar, so I haven't created a second one. Would you like a different time instead?"
		result.NextActions = []string{"provide_" + SlotTime}
	case scheduling.FailureConflict:
		e.metrics.ObserveBooking("conflict")
		result.ResponseText = fmt.Sprintf("That slot clashes with an existing booking (%s). Could you pick a different time?", describeConflicts(commitErr.Conflicts))
		result.NextActions = []string{"provide_" + SlotTime}
	default:
		return err
	}

	e.logger.Warn("booking attempt failed",
		"kind", string(commitErr.Kind),
		"patient", slots.PatientName,
	)
	return nil
}

func (e *Engine) handlePrescription(convo *ConversationContext, entities ExtractedEntities, result *TurnResult) {
	if name := firstNonEmpty(entities.PatientName, convo.Knowledge.Pending.PatientName); name != "" {
		result.ResponseText = fmt.Sprintf("I'll pass the prescription question for %s to the clinical team. They'll confirm the medication details with the prescribing doctor. Is there anything else?", name)
	} else {
		result.ResponseText = "I can help with prescription questions. Whose prescription is this about?"
		result.NextActions = []string{"provide_" + SlotPatientName}
	}
}

func describeConflicts(conflicts []scheduling.Booking) string {
	parts := make([]string, 0, len(conflicts))
	for _, b := range conflicts {
		parts = append(parts, fmt.Sprintf("%s–%s", b.StartTime.Format("3:04 PM"), b.End().Format("3:04 PM")))
	}
	return strings.Join(parts, ", ")
}

func quoteIfTyped(typed, fallback string) string {
	if typed != "" {
		return fmt.Sprintf("a doctor named %q", typed)
	}
	return fallback
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
