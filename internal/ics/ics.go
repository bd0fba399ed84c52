// Package ics renders the event list as an iCalendar feed so the calendar
// can be subscribed to from other clients.
package ics

import (
	ical "github.com/arran4/golang-ical"

	"personalcal/internal/model"
)

// ContentType is the media type of a serialized feed.
const ContentType = "text/calendar; charset=utf-8"

// Export serializes events into a single VCALENDAR with one VEVENT each.
// Attendee names are free text, not addresses, so they are emitted with a
// common-name parameter.
func Export(events []model.Event) string {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId("-//personalcal//calendar//EN")

	for _, e := range events {
		ve := cal.AddEvent(e.ID)
		ve.SetCreatedTime(e.CreatedAt)
		ve.SetDtStampTime(e.UpdatedAt)
		ve.SetModifiedAt(e.UpdatedAt)
		ve.SetStartAt(e.StartTime)
		ve.SetEndAt(e.EndTime)
		ve.SetSummary(e.Title)
		if e.Description != "" {
			ve.SetDescription(e.Description)
		}
		if e.Location != "" {
			ve.SetLocation(e.Location)
		}
		for _, name := range e.Attendees {
			ve.AddAttendee(name, ical.WithCN(name))
		}
	}
	return cal.Serialize()
}
