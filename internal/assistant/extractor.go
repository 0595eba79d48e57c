package assistant

import (
	"regexp"
	"strings"
	"time"
)

// namePart matches one capitalized name token.
const namePart = `[A-Z][a-z'-]+`

var (
	patientLabeledREs = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bpatient(?:'s)?\s+name\s+is\s+([A-Za-z][A-Za-z'-]*(?:\s+[A-Za-z][A-Za-z'-]*){0,2})`),
		regexp.MustCompile(`(?i)\b(?:patient|name)\s*[:=]\s*([A-Za-z][A-Za-z'-]*(?:\s+[A-Za-z][A-Za-z'-]*){0,2})`),
		regexp.MustCompile(`(?i)\bname\s+is\s+([A-Za-z][A-Za-z'-]*(?:\s+[A-Za-z][A-Za-z'-]*){0,2})`),
	}
	patientContextualRE = regexp.MustCompile(`\b[Ff]or\s+(` + namePart + `(?:\s+` + namePart + `){0,2})\b`)
	genericNameRE       = regexp.MustCompile(`\b(` + namePart + `(?:\s+` + namePart + `){1,2})\b`)

	doctorTitleRE   = regexp.MustCompile(`(?i)\b(?:dr\.?|doctor)\s+([A-Za-z][A-Za-z'-]*(?:\s+[A-Za-z][A-Za-z'-]*)?)`)
	doctorGenericRE = regexp.MustCompile(`\b(?:with|see)\s+(` + namePart + `(?:\s+` + namePart + `)?)\b`)

	reasonRE = regexp.MustCompile(`(?i)\bfor\s+(?:an?\s+|my\s+|the\s+)?([a-z][a-z]+(?:\s+[a-z]+){0,3})`)
)

// appointmentTypes is the canonical keyword set, checked in order.
var appointmentTypes = []struct {
	keywords []string
	label    string
}{
	{[]string{"follow-up", "follow up", "followup"}, "follow-up"},
	{[]string{"check-up", "checkup", "check up"}, "checkup"},
	{[]string{"consultation", "consult"}, "consultation"},
	{[]string{"procedure", "surgery"}, "procedure"},
	{[]string{"emergency", "urgent"}, "emergency"},
	{[]string{"routine"}, "routine"},
}

// scheduleWords terminate a captured name: anything after them belongs to
// the date/time portion of the utterance, not the name.
var scheduleWords = map[string]bool{
	"today": true, "tonight": true, "tomorrow": true,
	"next": true, "this": true, "at": true, "on": true, "in": true,
	"morning": true, "afternoon": true, "evening": true, "noon": true,
	"am": true, "pm": true, "and": true, "with": true,
}

// nonNamePhrases rejects common verb phrases the generic capitalized
// heuristic would otherwise mistake for names.
var nonNamePhrases = map[string]bool{
	"book appointment":     true,
	"book an":              true,
	"an appointment":       true,
	"the appointment":      true,
	"schedule appointment": true,
	"next week":            true,
	"this week":            true,
	"good morning":         true,
	"good afternoon":       true,
	"good evening":         true,
	"thank you":            true,
}

// nonNameTokens are words that never occur inside a person's name.
var nonNameTokens = map[string]bool{
	"book": true, "appointment": true, "appt": true, "schedule": true,
	"booking": true, "cancel": true, "please": true, "hello": true,
	"thanks": true, "prescription": true, "medication": true,
	"doctor": true, "dr": true, "patient": true, "clinic": true,
	"checkup": true, "consultation": true, "emergency": true,
}

// Extract pulls this turn's scheduling entities out of free text.
// Extraction rules run in priority order per slot; the first acceptable
// hit wins. Every field is optional.
func Extract(text string, now time.Time) ExtractedEntities {
	var entities ExtractedEntities

	if date, ok := ExtractDate(text, now); ok {
		entities.Date = date
	}
	if clock, ok := ExtractClock(text); ok {
		entities.Time = clock
	}

	entities.DoctorPreference = extractDoctor(text)
	entities.PatientName = extractPatient(text, entities.DoctorPreference)
	entities.AppointmentType, entities.Reason = extractTypeAndReason(text)

	return entities
}

func extractPatient(text, doctorName string) string {
	for _, re := range patientLabeledREs {
		if m := re.FindStringSubmatch(text); m != nil {
			if name := cleanName(m[1]); name != "" {
				return name
			}
		}
	}

	if m := patientContextualRE.FindStringSubmatch(text); m != nil {
		if name := cleanName(m[1]); name != "" && !strings.EqualFold(name, doctorName) {
			return name
		}
	}

	for _, m := range genericNameRE.FindAllStringSubmatchIndex(text, -1) {
		candidate := text[m[2]:m[3]]
		if precededByTitle(text, m[2]) {
			continue
		}
		name := cleanName(candidate)
		if name == "" || strings.EqualFold(name, doctorName) {
			continue
		}
		return name
	}

	return ""
}

func extractDoctor(text string) string {
	if m := doctorTitleRE.FindStringSubmatch(text); m != nil {
		if name := cleanName(m[1]); name != "" {
			return name
		}
	}
	if m := doctorGenericRE.FindStringSubmatch(text); m != nil {
		if name := cleanName(m[1]); name != "" {
			return name
		}
	}
	return ""
}

func extractTypeAndReason(text string) (string, string) {
	lower := strings.ToLower(text)

	var typ string
	for _, entry := range appointmentTypes {
		for _, kw := range entry.keywords {
			if strings.Contains(lower, kw) {
				typ = entry.label
				break
			}
		}
		if typ != "" {
			break
		}
	}

	var reason string
	if m := reasonRE.FindStringSubmatch(text); m != nil {
		candidate := trimAtScheduleWord(m[1])
		// "for Jane" style captures are names, not reasons.
		if candidate != "" && !looksLikeNamePhrase(text, m[1]) {
			reason = candidate
		}
	}
	if reason == "" && typ != "" {
		reason = typ
	}

	return typ, reason
}

// cleanName trims trailing schedule words from a captured name and
// validates what remains: one to three alphabetic tokens of at least two
// characters, none of them a known non-name word.
func cleanName(raw string) string {
	tokens := strings.Fields(raw)
	var kept []string
	for _, tok := range tokens {
		lower := strings.ToLower(strings.Trim(tok, ".,!?"))
		if scheduleWords[lower] || isWeekday(lower) || isMonth(lower) {
			break
		}
		kept = append(kept, strings.Trim(tok, ".,!?"))
	}
	if len(kept) == 0 || len(kept) > 3 {
		return ""
	}

	name := strings.Join(kept, " ")
	if nonNamePhrases[strings.ToLower(name)] {
		return ""
	}
	for _, tok := range kept {
		if !isNameToken(tok) {
			return ""
		}
	}
	return name
}

func isNameToken(tok string) bool {
	if len(tok) < 2 || nonNameTokens[strings.ToLower(tok)] {
		return false
	}
	for _, r := range tok {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r == '\'' || r == '-') {
			return false
		}
	}
	return true
}

func isWeekday(lower string) bool {
	_, ok := weekdayNames[lower]
	return ok
}

func isMonth(lower string) bool {
	_, ok := monthNames[lower]
	return ok
}

func precededByTitle(text string, start int) bool {
	prefix := strings.ToLower(strings.TrimRight(text[:start], " ."))
	return strings.HasSuffix(prefix, "dr") || strings.HasSuffix(prefix, "doctor") ||
		strings.HasSuffix(prefix, "with") || strings.HasSuffix(prefix, "see")
}

func trimAtScheduleWord(phrase string) string {
	var kept []string
	for _, tok := range strings.Fields(phrase) {
		if scheduleWords[strings.ToLower(tok)] || isWeekday(strings.ToLower(tok)) {
			break
		}
		kept = append(kept, tok)
	}
	return strings.Join(kept, " ")
}

// looksLikeNamePhrase reports whether the original text carried the
// captured phrase capitalized, i.e. "for Jane Doe" rather than "for back
// pain".
func looksLikeNamePhrase(text, phrase string) bool {
	idx := strings.Index(strings.ToLower(text), strings.ToLower(phrase))
	if idx < 0 {
		return false
	}
	first := text[idx]
	return first >= 'A' && first <= 'Z'
}

// looksLikeName reports whether the text carries anything name-shaped.
// Used by the intent classifier's slot-content checks.
func looksLikeName(text string) bool {
	for _, re := range patientLabeledREs {
		if re.MatchString(text) {
			return true
		}
	}
	for _, m := range genericNameRE.FindAllStringSubmatch(text, -1) {
		if cleanName(m[1]) != "" {
			return true
		}
	}
	return false
}
