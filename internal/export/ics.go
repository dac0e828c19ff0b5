// Package export renders the alarm table as an iCalendar document so
// alarms can be pulled into a calendar client.
package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/Raimguhinov/alarm-go/internal/alarm"
	"github.com/emersion/go-ical"
)

const prodID = "-//alarm-go//alarm-go//EN"

// ICS renders every active alarm as a VEVENT starting at its next
// trigger. Repeating alarms carry a weekly RRULE; one-shots carry none.
func ICS(alarms []alarm.Alarm, now time.Time) ([]byte, error) {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, prodID)

	for _, a := range alarms {
		if !a.IsActive {
			continue
		}

		next, err := alarm.NextTrigger(a.Hour, a.Minute, a.RepeatDays, now)
		if err != nil {
			return nil, fmt.Errorf("export - ICS - NextTrigger: %w", err)
		}

		event := ical.NewEvent()
		event.Props.SetText(ical.PropUID, fmt.Sprintf("alarm-%d@alarm-go", a.ID))
		event.Props.SetDateTime(ical.PropDateTimeStamp, now)
		event.Props.SetDateTime(ical.PropDateTimeStart, next)
		event.Props.SetText(ical.PropSummary, fmt.Sprintf("Alarm %02d:%02d", a.Hour, a.Minute))

		if rule := alarm.RepeatRule(a.RepeatDays); rule != "" {
			event.Props.Set(&ical.Prop{Name: ical.PropRecurrenceRule, Value: rule})
		}

		cal.Children = append(cal.Children, event.Component)
	}

	if len(cal.Children) == 0 {
		// go-ical refuses to encode a component-less calendar; an empty
		// or all-inactive table still yields a valid empty VCALENDAR.
		return []byte("BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:" + prodID + "\r\nEND:VCALENDAR\r\n"), nil
	}

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, fmt.Errorf("export - ICS - Encode: %w", err)
	}
	return buf.Bytes(), nil
}
