package assistant

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Date slots are canonicalized to this layout, time slots to clockLayout.
const (
	dateLayout  = "2006-01-02"
	clockLayout = "15:04"
)

var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"sun":       time.Sunday,
	"monday":    time.Monday,
	"mon":       time.Monday,
	"tuesday":   time.Tuesday,
	"tues":      time.Tuesday,
	"tue":       time.Tuesday,
	"wednesday": time.Wednesday,
	"wed":       time.Wednesday,
	"thursday":  time.Thursday,
	"thurs":     time.Thursday,
	"thu":       time.Thursday,
	"friday":    time.Friday,
	"fri":       time.Friday,
	"saturday":  time.Saturday,
	"sat":       time.Saturday,
}

var monthNames = map[string]time.Month{
	"january": time.January, "jan": time.January,
	"february": time.February, "feb": time.February,
	"march": time.March, "mar": time.March,
	"april": time.April, "apr": time.April,
	"may": time.May,
	"june": time.June, "jun": time.June,
	"july": time.July, "jul": time.July,
	"august": time.August, "aug": time.August,
	"september": time.September, "sept": time.September, "sep": time.September,
	"october": time.October, "oct": time.October,
	"november": time.November, "nov": time.November,
	"december": time.December, "dec": time.December,
}

const monthPattern = `jan(?:uary)?|feb(?:ruary)?|mar(?:ch)?|apr(?:il)?|may|jun(?:e)?|jul(?:y)?|aug(?:ust)?|sep(?:t(?:ember)?)?|oct(?:ober)?|nov(?:ember)?|dec(?:ember)?`

var (
	weekdayRE      = regexp.MustCompile(`(?i)\b(sun(?:day)?|mon(?:day)?|tue(?:s(?:day)?)?|wed(?:nesday)?|thu(?:rs(?:day)?)?|fri(?:day)?|sat(?:urday)?)\b`)
	dayMonthYearRE = regexp.MustCompile(`(?i)\b(\d{1,2})(?:st|nd|rd|th)?\s+(` + monthPattern + `)\s+(\d{4})\b`)
	monthDayRE     = regexp.MustCompile(`(?i)\b(` + monthPattern + `)\s+(\d{1,2})(?:st|nd|rd|th)?\b`)
	isoDateRE      = regexp.MustCompile(`\b(\d{4})-(\d{2})-(\d{2})\b`)

	ampmClockRE = regexp.MustCompile(`(?i)\b(\d{1,2})(?::(\d{2}))?\s*([ap])\.?m\.?\b`)
	bareClockRE = regexp.MustCompile(`\b([01]?\d|2[0-3]):([0-5]\d)\b`)
)

// ExtractDate finds a date expression in the turn text and returns it as
// 2006-01-02 relative to now. Supports today/tomorrow, weekday names
// (next occurrence), "12 March 2026", "March 12", and ISO dates. No match
// is a normal outcome.
func ExtractDate(text string, now time.Time) (string, bool) {
	lower := strings.ToLower(text)

	if strings.Contains(lower, "day after tomorrow") {
		return now.AddDate(0, 0, 2).Format(dateLayout), true
	}
	if strings.Contains(lower, "tomorrow") {
		return now.AddDate(0, 0, 1).Format(dateLayout), true
	}
	if strings.Contains(lower, "today") || strings.Contains(lower, "tonight") {
		return now.Format(dateLayout), true
	}

	if m := isoDateRE.FindStringSubmatch(text); m != nil {
		if t, err := time.ParseInLocation(dateLayout, m[0], now.Location()); err == nil {
			return t.Format(dateLayout), true
		}
	}

	if m := dayMonthYearRE.FindStringSubmatch(text); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, ok := monthNames[strings.ToLower(m[2])]
		year, _ := strconv.Atoi(m[3])
		if ok && validDay(day) {
			return time.Date(year, month, day, 0, 0, 0, 0, now.Location()).Format(dateLayout), true
		}
	}

	if m := monthDayRE.FindStringSubmatch(text); m != nil {
		month, ok := monthNames[strings.ToLower(m[1])]
		day, _ := strconv.Atoi(m[2])
		if ok && validDay(day) {
			candidate := time.Date(now.Year(), month, day, 0, 0, 0, 0, now.Location())
			// A bare "March 12" that already passed means next year.
			if candidate.Before(startOfDay(now)) {
				candidate = candidate.AddDate(1, 0, 0)
			}
			return candidate.Format(dateLayout), true
		}
	}

	if m := weekdayRE.FindStringSubmatch(text); m != nil {
		if target, ok := weekdayNames[strings.ToLower(m[1])]; ok {
			delta := (int(target) - int(now.Weekday()) + 7) % 7
			if delta == 0 {
				delta = 7 // a bare weekday name means the next one
			}
			return now.AddDate(0, 0, delta).Format(dateLayout), true
		}
	}

	return "", false
}

// ExtractClock finds a clock expression and returns it as 15:04. The
// am/pm form takes priority over a bare HH:MM match on the same text so
// "2:30pm" is not double-counted as 02:30.
func ExtractClock(text string) (string, bool) {
	if m := ampmClockRE.FindStringSubmatch(text); m != nil {
		hour, _ := strconv.Atoi(m[1])
		minute := 0
		if m[2] != "" {
			minute, _ = strconv.Atoi(m[2])
		}
		if hour >= 1 && hour <= 12 && minute <= 59 {
			meridiem := strings.ToLower(m[3])
			if meridiem == "p" && hour != 12 {
				hour += 12
			} else if meridiem == "a" && hour == 12 {
				hour = 0
			}
			return fmt.Sprintf("%02d:%02d", hour, minute), true
		}
	}

	lower := strings.ToLower(text)
	if strings.Contains(lower, "noon") || strings.Contains(lower, "midday") {
		return "12:00", true
	}
	if strings.Contains(lower, "midnight") {
		return "00:00", true
	}

	if m := bareClockRE.FindStringSubmatch(text); m != nil {
		hour, _ := strconv.Atoi(m[1])
		minute, _ := strconv.Atoi(m[2])
		return fmt.Sprintf("%02d:%02d", hour, minute), true
	}

	return "", false
}

// errPastDate marks an explicitly supplied date/time that has already
// passed. Surfaced to the user as a temporal failure, never an internal
// error.
var errPastDate = errors.New("assistant: requested time is in the past")

// CombineDateTime builds an absolute timestamp from canonical date and
// clock slot values. An empty date assumes today; if that makes the
// timestamp past relative to now it rolls forward one day. An explicit
// past date returns errPastDate.
func CombineDateTime(dateStr, clockStr string, now time.Time) (time.Time, error) {
	clock, err := time.Parse(clockLayout, clockStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("assistant: bad time slot %q: %w", clockStr, err)
	}

	assumedToday := dateStr == ""
	day := now
	if !assumedToday {
		parsed, err := time.ParseInLocation(dateLayout, dateStr, now.Location())
		if err != nil {
			return time.Time{}, fmt.Errorf("assistant: bad date slot %q: %w", dateStr, err)
		}
		day = parsed
	}

	ts := time.Date(day.Year(), day.Month(), day.Day(), clock.Hour(), clock.Minute(), 0, 0, now.Location())
	if ts.Before(now) {
		if assumedToday {
			ts = ts.AddDate(0, 0, 1)
		} else {
			return time.Time{}, errPastDate
		}
	}
	return ts, nil
}

// hasDateExpression reports whether the text carries any recognizable
// date fragment. Used by the intent classifier's continuation checks.
func hasDateExpression(text string) bool {
	lower := strings.ToLower(text)
	if strings.Contains(lower, "today") || strings.Contains(lower, "tomorrow") || strings.Contains(lower, "tonight") {
		return true
	}
	return weekdayRE.MatchString(text) || monthDayRE.MatchString(text) ||
		dayMonthYearRE.MatchString(text) || isoDateRE.MatchString(text)
}

// hasClockExpression reports whether the text carries a clock fragment.
func hasClockExpression(text string) bool {
	_, ok := ExtractClock(text)
	return ok
}

func validDay(day int) bool {
	return day >= 1 && day <= 31
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// formatWhen renders a timestamp the way confirmations read it back.
func formatWhen(t time.Time) string {
	return t.Format("Monday, 2 January 2006 at 3:04 PM")
}
