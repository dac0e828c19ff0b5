package alarm

import (
	"fmt"
	"time"

	"github.com/teambition/rrule-go"
)

var rruleDay = map[int]rrule.Weekday{
	Sunday:    rrule.SU,
	Monday:    rrule.MO,
	Tuesday:   rrule.TU,
	Wednesday: rrule.WE,
	Thursday:  rrule.TH,
	Friday:    rrule.FR,
	Saturday:  rrule.SA,
}

// NextTrigger computes the next wall-clock instant strictly after now at
// which an alarm with the given time and repeat-day set must fire.
//
// One-shot alarms resolve to today at hour:minute, or tomorrow if that
// already passed. Repeating alarms resolve to the earliest selected
// weekday whose hour:minute is still ahead; a same-day future time wins
// over any later day, and a lone weekday whose time already passed lands
// exactly one week out.
func NextTrigger(hour, minute int, repeatDays Weekdays, now time.Time) (time.Time, error) {
	candidate := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())

	if len(repeatDays) == 0 {
		if !candidate.After(now) {
			candidate = candidate.AddDate(0, 0, 1)
		}
		return candidate, nil
	}

	byweekday := make([]rrule.Weekday, len(repeatDays))
	for i, d := range repeatDays {
		byweekday[i] = rruleDay[d]
	}

	r, err := rrule.NewRRule(rrule.ROption{
		Freq: rrule.WEEKLY,
		// Anchored a week back so the iterator covers today as well.
		Dtstart:   candidate.AddDate(0, 0, -7),
		Byweekday: byweekday,
	})
	if err != nil {
		return time.Time{}, fmt.Errorf("alarm - NextTrigger - rrule.NewRRule: %w", err)
	}

	next := r.After(now, false)
	if next.IsZero() {
		return time.Time{}, fmt.Errorf("alarm - NextTrigger: no occurrence after %v", now)
	}
	return next, nil
}

// RepeatRule renders the weekly recurrence of a repeating alarm as an
// iCalendar RRULE value. It returns the empty string for one-shots.
func RepeatRule(repeatDays Weekdays) string {
	if len(repeatDays) == 0 {
		return ""
	}
	byweekday := make([]rrule.Weekday, len(repeatDays))
	for i, d := range repeatDays {
		byweekday[i] = rruleDay[d]
	}
	opt := rrule.ROption{Freq: rrule.WEEKLY, Byweekday: byweekday}
	return opt.RRuleString()
}
