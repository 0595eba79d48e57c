package assistant

import (
	"strings"
	"time"
)

// Intent labels the conversational intent of a single turn.
type Intent string

const (
	IntentAppointmentBooking  Intent = "appointment_booking"
	IntentPrescriptionInquiry Intent = "prescription_inquiry"
	IntentMedicalQuestion     Intent = "medical_question"
	IntentGreeting            Intent = "greeting"
	IntentGeneralInquiry      Intent = "general_inquiry"
)

// BookingState tracks where the slot-filling dialogue stands.
type BookingState string

const (
	StateCollecting    BookingState = "collecting"
	StateReadyToBook   BookingState = "ready_to_book"
	StateBooked        BookingState = "booked"
	StateBookingFailed BookingState = "booking_failed"
)

// Turn roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is one entry in the session transcript.
type Turn struct {
	Role      string            `json:"role"`
	Text      string            `json:"text"`
	Timestamp time.Time         `json:"timestamp"`
	Intent    Intent            `json:"intent,omitempty"`
	Entities  ExtractedEntities `json:"entities,omitempty"`
}

// UserProfile is the caller-supplied identity of the person chatting.
type UserProfile struct {
	Name string `json:"name,omitempty"`
	Role string `json:"role,omitempty"`
}

// ContextualKnowledge is the rolling understanding the assistant keeps
// about the session.
type ContextualKnowledge struct {
	RecentTopics      []string          `json:"recent_topics,omitempty"`
	Entities          ExtractedEntities `json:"extracted_entities"`
	Sentiment         string            `json:"sentiment,omitempty"`
	Pending           PendingSlots      `json:"pending_slots"`
	LastIntent        Intent            `json:"last_intent,omitempty"`
	SlotPromptHistory []string          `json:"slot_prompt_history,omitempty"`
}

// ConversationContext is the per-session dialogue state. It is created at
// session start, mutated on every turn, and handed back to the caller;
// persisting it between turns is the caller's responsibility.
type ConversationContext struct {
	SessionID string              `json:"session_id"`
	UserID    string              `json:"user_id"`
	OrgID     string              `json:"org_id"`
	StartedAt time.Time           `json:"started_at"`
	Turns     []Turn              `json:"turns"`
	Profile   UserProfile         `json:"profile"`
	Knowledge ContextualKnowledge `json:"contextual_knowledge"`
}

// NewConversationContext opens a session.
func NewConversationContext(sessionID, userID, orgID string) *ConversationContext {
	return &ConversationContext{
		SessionID: sessionID,
		UserID:    userID,
		OrgID:     orgID,
		StartedAt: time.Now().UTC(),
	}
}

const maxRecentTopics = 5

// recordTurn appends a turn and refreshes the rolling knowledge.
func (c *ConversationContext) recordTurn(turn Turn) {
	c.Turns = append(c.Turns, turn)
	if turn.Role != RoleUser {
		return
	}
	c.Knowledge.LastIntent = turn.Intent
	if !turn.Entities.IsEmpty() {
		c.Knowledge.Entities = turn.Entities
	}
	c.Knowledge.Sentiment = detectSentiment(turn.Text)
	c.pushTopic(topicForIntent(turn.Intent))
}

func (c *ConversationContext) pushTopic(topic string) {
	if topic == "" {
		return
	}
	if n := len(c.Knowledge.RecentTopics); n > 0 && c.Knowledge.RecentTopics[n-1] == topic {
		return
	}
	c.Knowledge.RecentTopics = append(c.Knowledge.RecentTopics, topic)
	if len(c.Knowledge.RecentTopics) > maxRecentTopics {
		c.Knowledge.RecentTopics = c.Knowledge.RecentTopics[len(c.Knowledge.RecentTopics)-maxRecentTopics:]
	}
}

// lastUserIntent returns the intent of the most recent user turn, if any.
func (c *ConversationContext) lastUserIntent() Intent {
	for i := len(c.Turns) - 1; i >= 0; i-- {
		if c.Turns[i].Role == RoleUser {
			return c.Turns[i].Intent
		}
	}
	return ""
}

// recentUserIntents returns intents of the latest user turns, newest first.
func (c *ConversationContext) recentUserIntents(limit int) []Intent {
	var intents []Intent
	for i := len(c.Turns) - 1; i >= 0 && len(intents) < limit; i-- {
		if c.Turns[i].Role == RoleUser {
			intents = append(intents, c.Turns[i].Intent)
		}
	}
	return intents
}

func topicForIntent(intent Intent) string {
	switch intent {
	case IntentAppointmentBooking:
		return "appointments"
	case IntentPrescriptionInquiry:
		return "prescriptions"
	case IntentMedicalQuestion:
		return "medical"
	case IntentGreeting:
		return ""
	}
	return "general"
}

var negativeWords = []string{"angry", "upset", "terrible", "awful", "frustrated", "worst", "unacceptable", "annoyed"}
var positiveWords = []string{"thanks", "thank you", "great", "perfect", "wonderful", "appreciate", "awesome"}

func detectSentiment(text string) string {
	lower := strings.ToLower(text)
	for _, w := range negativeWords {
		if strings.Contains(lower, w) {
			return "negative"
		}
	}
	for _, w := range positiveWords {
		if strings.Contains(lower, w) {
			return "positive"
		}
	}
	return "neutral"
}
