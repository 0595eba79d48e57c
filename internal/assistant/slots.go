package assistant

import "strings"

// Slot names used across extraction, prompting, and merge.
const (
	SlotPatientName      = "patient_name"
	SlotDate             = "date"
	SlotTime             = "time"
	SlotAppointmentType  = "appointment_type"
	SlotDoctorPreference = "doctor_preference"
	SlotReason           = "reason"
)

// requiredSlots must all be filled before a booking attempt fires.
var requiredSlots = []string{SlotPatientName, SlotDate, SlotTime}

// ExtractedEntities holds the scheduling fields pulled out of a single
// turn. Any field may be empty; that is expected, not a failure. Dates
// are normalized to 2006-01-02 and times to 15:04 at extraction so later
// merges compare canonical values.
type ExtractedEntities struct {
	PatientName      string `json:"patient_name,omitempty"`
	Date             string `json:"date,omitempty"`
	Time             string `json:"time,omitempty"`
	AppointmentType  string `json:"appointment_type,omitempty"`
	DoctorPreference string `json:"doctor_preference,omitempty"`
	Reason           string `json:"reason,omitempty"`
}

// IsEmpty reports whether the turn produced no entities at all.
func (e ExtractedEntities) IsEmpty() bool {
	return e == ExtractedEntities{}
}

// PendingSlots is the session's partially filled booking form.
type PendingSlots struct {
	PatientName      string `json:"patient_name,omitempty"`
	Date             string `json:"date,omitempty"`
	Time             string `json:"time,omitempty"`
	AppointmentType  string `json:"appointment_type,omitempty"`
	DoctorPreference string `json:"doctor_preference,omitempty"`
	Reason           string `json:"reason,omitempty"`
}

// Merge folds a turn's extraction into the pending slots. A slot keeps its
// first non-empty value until a later turn supplies a new non-empty value;
// an empty extraction never clears a filled slot.
func (s *PendingSlots) Merge(e ExtractedEntities) {
	mergeSlot(&s.PatientName, e.PatientName)
	mergeSlot(&s.Date, e.Date)
	mergeSlot(&s.Time, e.Time)
	mergeSlot(&s.AppointmentType, e.AppointmentType)
	mergeSlot(&s.DoctorPreference, e.DoctorPreference)
	mergeSlot(&s.Reason, e.Reason)
}

func mergeSlot(current *string, incoming string) {
	if incoming = strings.TrimSpace(incoming); incoming != "" {
		*current = incoming
	}
}

// Get returns the value of the named slot.
func (s PendingSlots) Get(name string) string {
	switch name {
	case SlotPatientName:
		return s.PatientName
	case SlotDate:
		return s.Date
	case SlotTime:
		return s.Time
	case SlotAppointmentType:
		return s.AppointmentType
	case SlotDoctorPreference:
		return s.DoctorPreference
	case SlotReason:
		return s.Reason
	}
	return ""
}

// Missing lists the required slots still empty, in canonical order.
func (s PendingSlots) Missing() []string {
	var missing []string
	for _, name := range requiredSlots {
		if s.Get(name) == "" {
			missing = append(missing, name)
		}
	}
	return missing
}

// Complete reports whether every required slot is filled.
func (s PendingSlots) Complete() bool {
	return len(s.Missing()) == 0
}

// filledDelta lists the slots the merge filled or replaced this turn, in
// canonical order, as (slot, value) pairs.
func filledDelta(before, after PendingSlots) [][2]string {
	var delta [][2]string
	for _, name := range []string{
		SlotPatientName, SlotDate, SlotTime,
		SlotAppointmentType, SlotDoctorPreference, SlotReason,
	} {
		if v := after.Get(name); v != "" && v != before.Get(name) {
			delta = append(delta, [2]string{name, v})
		}
	}
	return delta
}
