package assistant

import "strings"

// intentRule is one guarded predicate in the classifier cascade. Rules
// run in order and the first match wins; priority lives in the ordering,
// not in scores.
type intentRule struct {
	name       string
	intent     Intent
	confidence float64
	matches    func(text, lower string, convo *ConversationContext) bool
}

var bookingKeywords = []string{
	"book", "appointment", "schedule", "reschedule", "see the doctor",
	"make a visit", "slot",
}

var prescriptionKeywords = []string{
	"prescription", "prescribe", "medication", "medicine", "refill",
	"dosage", "pharmacy", "tablets", "pills",
}

var symptomKeywords = []string{
	"pain", "fever", "headache", "cough", "nausea", "dizzy", "rash",
	"symptom", "hurts", "sore", "swelling", "vomit", "fatigue",
}

var greetingKeywords = []string{
	"hello", "hi", "hey", "good morning", "good afternoon", "good evening",
}

// isGreeting anchors greeting words to the start of the turn so "hi"
// inside an unrelated sentence does not trip the rule.
func isGreeting(lower string) bool {
	trimmed := strings.TrimSpace(lower)
	for _, g := range greetingKeywords {
		if trimmed == g || strings.HasPrefix(trimmed, g+" ") ||
			strings.HasPrefix(trimmed, g+",") || strings.HasPrefix(trimmed, g+"!") {
			return true
		}
	}
	return false
}

// Classifier decides the conversational intent for a turn.
type Classifier struct {
	rules []intentRule
}

// NewClassifier builds the ordered rule cascade.
func NewClassifier() *Classifier {
	return &Classifier{rules: []intentRule{
		{
			// Mid-booking turns rarely repeat the word "book"; any
			// slot-shaped content keeps the booking flow alive.
			name:       "booking_continuation",
			intent:     IntentAppointmentBooking,
			confidence: 0.9,
			matches: func(text, lower string, convo *ConversationContext) bool {
				if convo == nil || convo.lastUserIntent() != IntentAppointmentBooking {
					return false
				}
				return hasSlotContent(text)
			},
		},
		{
			// Medication vocabulary outranks booking keywords: "book a
			// prescription refill" is a prescription question.
			name:       "prescription_vocabulary",
			intent:     IntentPrescriptionInquiry,
			confidence: 0.95,
			matches: func(text, lower string, convo *ConversationContext) bool {
				return containsAny(lower, prescriptionKeywords)
			},
		},
		{
			name:       "booking_keywords",
			intent:     IntentAppointmentBooking,
			confidence: 0.9,
			matches: func(text, lower string, convo *ConversationContext) bool {
				return containsAny(lower, bookingKeywords)
			},
		},
		{
			// A structured multi-field utterance is a booking even without
			// booking vocabulary: "Jane Doe tomorrow 2pm".
			name:       "structured_booking",
			intent:     IntentAppointmentBooking,
			confidence: 0.85,
			matches: func(text, lower string, convo *ConversationContext) bool {
				name := looksLikeName(text)
				when := hasDateExpression(text) || hasClockExpression(text)
				doctor := doctorTitleRE.MatchString(text)
				return (name && when) || (name && doctor)
			},
		},
		{
			name:       "prescription_topic_continuation",
			intent:     IntentPrescriptionInquiry,
			confidence: 0.75,
			matches: func(text, lower string, convo *ConversationContext) bool {
				if !hadRecentIntent(convo, IntentPrescriptionInquiry) {
					return false
				}
				return looksLikeName(text) && !hasDateExpression(text) && !hasClockExpression(text)
			},
		},
		{
			name:       "appointment_topic_continuation",
			intent:     IntentAppointmentBooking,
			confidence: 0.75,
			matches: func(text, lower string, convo *ConversationContext) bool {
				if !hadRecentIntent(convo, IntentAppointmentBooking) {
					return false
				}
				return hasSlotContent(text)
			},
		},
		{
			name:       "symptom_vocabulary",
			intent:     IntentMedicalQuestion,
			confidence: 0.8,
			matches: func(text, lower string, convo *ConversationContext) bool {
				return containsAny(lower, symptomKeywords)
			},
		},
		{
			name:       "greeting",
			intent:     IntentGreeting,
			confidence: 0.9,
			matches: func(text, lower string, convo *ConversationContext) bool {
				return isGreeting(lower)
			},
		},
	}}
}

// Classify returns the turn's intent and a confidence score. Unmatched
// turns fall through to general_inquiry.
func (c *Classifier) Classify(text string, convo *ConversationContext) (Intent, float64) {
	lower := strings.ToLower(text)
	for _, rule := range c.rules {
		if rule.matches(text, lower, convo) {
			return rule.intent, rule.confidence
		}
	}
	return IntentGeneralInquiry, 0.5
}

// hasSlotContent reports whether a turn carries anything that could fill
// a booking slot: a name-shaped token run, a date word, or a clock.
func hasSlotContent(text string) bool {
	return looksLikeName(text) || hasDateExpression(text) || hasClockExpression(text)
}

const topicLookback = 3

func hadRecentIntent(convo *ConversationContext, intent Intent) bool {
	if convo == nil {
		return false
	}
	for _, recent := range convo.recentUserIntents(topicLookback) {
		if recent == intent {
			return true
		}
	}
	return false
}

func containsAny(lower string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
