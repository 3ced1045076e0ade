package ledger

import (
	"fmt"
	"time"
)

// Urgency classifies a due date against today.
type Urgency string

const (
	UrgencyLate     Urgency = "late"
	UrgencyToday    Urgency = "today"
	UrgencyUpcoming Urgency = "upcoming"
)

// DaysUntil returns the number of calendar days from now's day to due's day,
// both taken in now's location. Negative means the due date has passed.
func DaysUntil(due, now time.Time) int {
	loc := now.Location()
	d := startOfDay(due, loc)
	n := startOfDay(now, loc)
	// Dates at midnight UTC avoid DST-shortened days skewing the division.
	du := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	nu := time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, time.UTC)
	return int(du.Sub(nu).Hours() / 24)
}

// Classify reports whether due is late, today or upcoming relative to now.
// Time of day is ignored.
func Classify(due, now time.Time) Urgency {
	days := DaysUntil(due, now)
	switch {
	case days < 0:
		return UrgencyLate
	case days == 0:
		return UrgencyToday
	default:
		return UrgencyUpcoming
	}
}

// DescribeDue renders the days-remaining caption shown on payment cards.
func DescribeDue(due, now time.Time) string {
	days := DaysUntil(due, now)
	switch {
	case days < 0:
		return fmt.Sprintf("late by %s", pluralDays(-days))
	case days == 0:
		return "due today"
	default:
		return fmt.Sprintf("%s remaining", pluralDays(days))
	}
}

func pluralDays(n int) string {
	if n == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", n)
}
