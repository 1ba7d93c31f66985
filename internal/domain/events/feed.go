package events

import (
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/teambition/rrule-go"
)

const icsDateTimeLayout = "20060102T150405Z"

// BuildICS serializa las definiciones activas como calendario iCalendar.
// Los eventos recurrentes llevan su RRULE + EXDATEs en vez de expandirse:
// el cliente de calendario hace su propia proyección.
func BuildICS(evs []Event) string {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)

	for _, e := range evs {
		ve := cal.AddEvent(e.ID + "@memoriaviva")
		ve.SetDtStampTime(e.UpdatedAt)
		ve.SetCreatedTime(e.CreatedAt)
		ve.SetSummary(e.Title)
		if e.Description != "" {
			ve.SetDescription(e.Description)
		}
		if e.Location != "" {
			ve.SetLocation(e.Location)
		}
		ve.SetStartAt(e.StartsAt)
		if e.EndsAt != nil {
			ve.SetEndAt(*e.EndsAt)
		}

		if !e.Recurring || !e.RecurrencePattern.Valid() {
			continue
		}

		if rule := recurrenceRule(e); rule != "" {
			ve.AddRrule(rule)
		}
		for _, d := range e.ExcludedDates {
			// EXDATE debe calzar con el inicio de la ocurrencia suprimida.
			ex := time.Date(
				d.Year(), d.Month(), d.Day(),
				e.StartsAt.Hour(), e.StartsAt.Minute(), e.StartsAt.Second(),
				0, e.StartsAt.Location(),
			)
			ve.AddExdate(ex.UTC().Format(icsDateTimeLayout))
		}
	}

	return cal.Serialize()
}

// recurrenceRule traduce el patrón propio a un RRULE estándar.
func recurrenceRule(e Event) string {
	opt := rrule.ROption{Dtstart: e.StartsAt}

	switch e.RecurrencePattern {
	case PatternDaily:
		opt.Freq = rrule.DAILY
	case PatternWeekly:
		opt.Freq = rrule.WEEKLY
	case PatternFortnightly:
		opt.Freq = rrule.WEEKLY
		opt.Interval = 2
	case PatternMonthly:
		opt.Freq = rrule.MONTHLY
	default:
		return ""
	}

	if e.RecurrenceEndDate != nil {
		d := *e.RecurrenceEndDate
		opt.Until = time.Date(d.Year(), d.Month(), d.Day(), 23, 59, 59, 0, e.StartsAt.Location()).UTC()
	}

	if _, err := rrule.NewRRule(opt); err != nil {
		return ""
	}
	// Solo la regla; DTSTART ya va como propiedad propia del VEVENT.
	return opt.RRuleString()
}
