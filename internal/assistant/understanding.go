package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/medloop/practice-assistant/pkg/logging"
)

const understandingPrompt = `You are the language-understanding layer of a medical practice assistant.
Clinicians on staff: %s
Read the patient's message and respond with JSON only.

Intents:
- appointment_booking: booking, scheduling, or continuing to fill in appointment details
- prescription_inquiry: medication, refills, pharmacy questions
- medical_question: symptoms or requests for medical advice
- greeting: a salutation with no other request
- general_inquiry: anything else

Entities: only include a field when the message states it.
- patient_name: the patient's name as written
- date: the appointment date, as YYYY-MM-DD if explicit, otherwise the phrase used ("tomorrow", "next Friday")
- time: the appointment time, as HH:MM 24-hour if explicit, otherwise the phrase used ("2pm", "noon")
- doctor_preference: the requested doctor's name, without title
- appointment_type: one of follow-up, checkup, consultation, procedure, emergency, routine
- reason: the stated reason for the visit

Message: %s

Respond with: {"intent": "<intent>", "confidence": <0..1>, "entities": {...}}`

// modelUnderstanding is the parsed shape of the model's JSON answer.
type modelUnderstanding struct {
	Intent     string  `json:"intent"`
	Confidence float64 `json:"confidence"`
	Entities   struct {
		PatientName      string `json:"patient_name"`
		Date             string `json:"date"`
		Time             string `json:"time"`
		DoctorPreference string `json:"doctor_preference"`
		AppointmentType  string `json:"appointment_type"`
		Reason           string `json:"reason"`
	} `json:"entities"`
}

var knownIntents = map[Intent]bool{
	IntentAppointmentBooking:  true,
	IntentPrescriptionInquiry: true,
	IntentMedicalQuestion:     true,
	IntentGreeting:            true,
	IntentGeneralInquiry:      true,
}

// ModelProcessor is the model-backed tier: the LLM does intent and
// entity understanding, and the shared engine does everything after
// that. Dialogue state is not touched until understanding succeeds, so
// a failed model turn leaves nothing for the fallback tier to undo.
type ModelProcessor struct {
	client  LLMClient
	engine  *Engine
	logger  *logging.Logger
	timeout time.Duration
}

var _ TurnProcessor = (*ModelProcessor)(nil)

// NewModelProcessor wires the model tier over the shared engine.
func NewModelProcessor(client LLMClient, engine *Engine, timeout time.Duration, logger *logging.Logger) *ModelProcessor {
	if client == nil {
		panic("assistant: llm client required")
	}
	if engine == nil {
		panic("assistant: engine required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	return &ModelProcessor{
		client:  client,
		engine:  engine,
		logger:  logger,
		timeout: timeout,
	}
}

// ProcessTurn asks the model for intent and entities, then advances the
// dialogue through the shared engine.
func (p *ModelProcessor) ProcessTurn(ctx context.Context, req TurnRequest, convo *ConversationContext) (*TurnResult, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	prompt := fmt.Sprintf(understandingPrompt, p.rosterSnapshot(ctx, req.OrgID), req.Text)
	messages := historyMessages(convo)
	messages = append(messages, ChatMessage{Role: ChatRoleUser, Content: prompt})

	resp, err := p.client.Complete(ctx, LLMRequest{
		Messages:  messages,
		MaxTokens: 300,
	})
	if err != nil {
		return nil, fmt.Errorf("assistant: model understanding: %w", err)
	}

	understanding, err := parseUnderstanding(resp.Text)
	if err != nil {
		return nil, err
	}

	intent := Intent(understanding.Intent)
	if !knownIntents[intent] {
		return nil, fmt.Errorf("assistant: model returned unknown intent %q", understanding.Intent)
	}

	now := p.engine.now()
	entities := ExtractedEntities{
		PatientName:      cleanName(understanding.Entities.PatientName),
		Date:             canonicalDate(understanding.Entities.Date, now),
		Time:             canonicalClock(understanding.Entities.Time),
		DoctorPreference: cleanName(understanding.Entities.DoctorPreference),
		AppointmentType:  strings.ToLower(strings.TrimSpace(understanding.Entities.AppointmentType)),
		Reason:           strings.TrimSpace(understanding.Entities.Reason),
	}

	return p.engine.processUnderstood(ctx, req, convo, intent, understanding.Confidence, entities, "model")
}

// rosterSnapshot renders the clinician roster for the prompt so the
// model anchors doctor_preference to real names. Best effort: a roster
// outage should not cost the turn, the deterministic resolver still
// validates whatever the model returns.
func (p *ModelProcessor) rosterSnapshot(ctx context.Context, orgID string) string {
	providers, err := p.engine.directory.ListProviders(ctx, orgID)
	if err != nil || len(providers) == 0 {
		if err != nil {
			p.logger.Warn("roster snapshot unavailable", "error", err, "org_id", orgID)
		}
		return "unknown"
	}
	entries := make([]string, 0, len(providers))
	for _, provider := range providers {
		entries = append(entries, fmt.Sprintf("Dr. %s (%s)", provider.FullName(), provider.Department))
	}
	return strings.Join(entries, ", ")
}

// parseUnderstanding extracts the JSON object from the model's text.
// Models sometimes wrap the JSON in prose or code fences.
func parseUnderstanding(text string) (*modelUnderstanding, error) {
	content := strings.TrimSpace(text)
	startIdx := strings.Index(content, "{")
	endIdx := strings.LastIndex(content, "}")
	if startIdx < 0 || endIdx <= startIdx {
		return nil, fmt.Errorf("assistant: no JSON object in model response")
	}
	content = content[startIdx : endIdx+1]

	var out modelUnderstanding
	if err := json.Unmarshal([]byte(content), &out); err != nil {
		return nil, fmt.Errorf("assistant: decode model response: %w", err)
	}
	return &out, nil
}

// canonicalDate normalizes a model-supplied date to YYYY-MM-DD. Phrases
// like "tomorrow" go through the same parser user text does.
func canonicalDate(value string, now time.Time) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	if _, err := time.Parse(dateLayout, value); err == nil {
		return value
	}
	if date, ok := ExtractDate(value, now); ok {
		return date
	}
	return ""
}

// canonicalClock normalizes a model-supplied time to HH:MM.
func canonicalClock(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	if _, err := time.Parse(clockLayout, value); err == nil {
		return value
	}
	if clock, ok := ExtractClock(value); ok {
		return clock
	}
	return ""
}

// historyMessages replays the recent transcript so the model sees the
// dialogue so far.
const historyWindow = 6

func historyMessages(convo *ConversationContext) []ChatMessage {
	if convo == nil {
		return nil
	}
	turns := convo.Turns
	if len(turns) > historyWindow {
		turns = turns[len(turns)-historyWindow:]
	}
	messages := make([]ChatMessage, 0, len(turns))
	for _, turn := range turns {
		role := ChatRoleUser
		if turn.Role == RoleAssistant {
			role = ChatRoleAssistant
		}
		messages = append(messages, ChatMessage{Role: role, Content: turn.Text})
	}
	return messages
}
