package scheduling

import "time"

// Overlaps reports whether two half-open booking intervals intersect.
// Back-to-back bookings (one ending exactly when the next starts) do
// not overlap.
func Overlaps(aStart time.Time, aMinutes int, bStart time.Time, bMinutes int) bool {
	if aMinutes <= 0 {
		aMinutes = DefaultDurationMinutes
	}
	if bMinutes <= 0 {
		bMinutes = DefaultDurationMinutes
	}
	aEnd := aStart.Add(time.Duration(aMinutes) * time.Minute)
	bEnd := bStart.Add(time.Duration(bMinutes) * time.Minute)
	return aStart.Before(bEnd) && aEnd.After(bStart)
}

// FindConflicts returns the existing bookings whose intervals overlap the
// proposed one.
func FindConflicts(start time.Time, minutes int, existing []Booking) []Booking {
	var conflicts []Booking
	for _, b := range existing {
		if Overlaps(start, minutes, b.StartTime, b.DurationMinutes) {
			conflicts = append(conflicts, b)
		}
	}
	return conflicts
}
