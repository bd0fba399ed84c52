// Package calendar computes the visible date range for the two calendar
// views and buckets events onto calendar days.
//
// Month mode renders the grid superset of a month: from the first rendered
// weekday of the week containing the 1st through the last rendered weekday
// of the week containing the month's final day. Five-day mode renders
// exactly five consecutive days from an anchor date.
package calendar

import (
	"time"

	"personalcal/internal/model"
)

// Mode selects the visible range shape.
type Mode string

const (
	ModeMonth   Mode = "month"
	ModeFiveDay Mode = "five-day"
)

// FiveDaySpan is the width of the mobile strip.
const FiveDaySpan = 5

// View performs day arithmetic for a fixed week start and timezone.
type View struct {
	weekStart time.Weekday
	loc       *time.Location
}

// New constructs a View. A nil location defaults to time.Local.
func New(weekStart time.Weekday, loc *time.Location) *View {
	if loc == nil {
		loc = time.Local
	}
	return &View{weekStart: weekStart, loc: loc}
}

// Location returns the zone the view does its day arithmetic in.
func (v *View) Location() *time.Location {
	return v.loc
}

// Midnight truncates t to the start of its calendar day in the view's zone.
func (v *View) Midnight(t time.Time) time.Time {
	t = t.In(v.loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, v.loc)
}

// StartOfWeek returns the first rendered day of the week containing t.
func (v *View) StartOfWeek(t time.Time) time.Time {
	day := v.Midnight(t)
	back := (int(day.Weekday()) - int(v.weekStart) + 7) % 7
	return day.AddDate(0, 0, -back)
}

// MonthRange returns the inclusive grid range for the month containing ref.
func (v *View) MonthRange(ref time.Time) (start, end time.Time) {
	ref = ref.In(v.loc)
	first := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, v.loc)
	last := first.AddDate(0, 1, -1)
	start = v.StartOfWeek(first)
	end = v.StartOfWeek(last).AddDate(0, 0, 6)
	return start, end
}

// FiveDayRange returns the inclusive range of the strip anchored at anchor.
func (v *View) FiveDayRange(anchor time.Time) (start, end time.Time) {
	start = v.Midnight(anchor)
	return start, start.AddDate(0, 0, FiveDaySpan-1)
}

// Range dispatches on mode. In five-day mode ref is the anchor date.
func (v *View) Range(mode Mode, ref time.Time) (start, end time.Time) {
	if mode == ModeFiveDay {
		return v.FiveDayRange(ref)
	}
	return v.MonthRange(ref)
}

// Next advances the reference date: one calendar month in month mode, five
// days in five-day mode.
func (v *View) Next(mode Mode, ref time.Time) time.Time {
	if mode == ModeFiveDay {
		return v.Midnight(ref).AddDate(0, 0, FiveDaySpan)
	}
	return ref.In(v.loc).AddDate(0, 1, 0)
}

// Previous is the inverse of Next.
func (v *View) Previous(mode Mode, ref time.Time) time.Time {
	if mode == ModeFiveDay {
		return v.Midnight(ref).AddDate(0, 0, -FiveDaySpan)
	}
	return ref.In(v.loc).AddDate(0, -1, 0)
}

// SameDay reports whether a and b fall on the same calendar day in the
// view's zone.
func (v *View) SameDay(a, b time.Time) bool {
	a, b = a.In(v.loc), b.In(v.loc)
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// Day is one rendered cell of a calendar view.
type Day struct {
	Date    string        `json:"date"`
	Weekday string        `json:"weekday"`
	Today   bool          `json:"today"`
	InMonth bool          `json:"inMonth"`
	Events  []model.Event `json:"events"`
}

// Page is the assembled view-model response for one visible range.
type Page struct {
	Mode  Mode   `json:"mode"`
	Start string `json:"start"`
	End   string `json:"end"`
	Days  []Day  `json:"days"`
}

// Page buckets events onto the days visible for (mode, ref) as of now.
//
// An event belongs to the single day containing its start time; an event
// spanning several days is not replicated across them. That is a product
// decision carried over intact.
func (v *View) Page(mode Mode, ref time.Time, events []model.Event, now time.Time) Page {
	start, end := v.Range(mode, ref)
	refMonth := ref.In(v.loc).Month()
	refYear := ref.In(v.loc).Year()

	var days []Day
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		day := Day{
			Date:    d.Format("2006-01-02"),
			Weekday: d.Weekday().String()[:3],
			Today:   v.SameDay(d, now),
			InMonth: d.Month() == refMonth && d.Year() == refYear,
			Events:  []model.Event{},
		}
		for _, e := range events {
			if v.SameDay(e.StartTime, d) {
				day.Events = append(day.Events, e)
			}
		}
		days = append(days, day)
	}

	return Page{
		Mode:  mode,
		Start: start.Format("2006-01-02"),
		End:   end.Format("2006-01-02"),
		Days:  days,
	}
}

// ParseMode maps a query-string value onto a Mode, defaulting to month.
func ParseMode(s string) Mode {
	if Mode(s) == ModeFiveDay {
		return ModeFiveDay
	}
	return ModeMonth
}
