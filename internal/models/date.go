package models

import "time"

// DateLayout is the canonical calendar-day format used for map keys and
// for every date rendered at the JSON boundary.
const DateLayout = "2006-01-02"

// Date is a calendar day in DateLayout form. Keeping the ISO string as the
// key type means date-keyed maps marshal directly to the wire format and
// lexicographic order equals chronological order.
type Date string

// NewDate truncates t to its calendar day.
func NewDate(t time.Time) Date {
	return Date(t.Format(DateLayout))
}

// ParseDate parses an ISO calendar day string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return "", err
	}
	return NewDate(t), nil
}

// Time returns the day at midnight UTC. The zero time is returned for a
// malformed Date; construct values through NewDate/ParseDate to avoid that.
func (d Date) Time() time.Time {
	t, _ := time.Parse(DateLayout, string(d))
	return t
}

// AddDays returns the day n calendar days after d (n may be negative).
func (d Date) AddDays(n int) Date {
	return NewDate(d.Time().AddDate(0, 0, n))
}

// Before reports whether d falls before other.
func (d Date) Before(other Date) bool { return d < other }

// After reports whether d falls after other.
func (d Date) After(other Date) bool { return d > other }

// Period is an inclusive calendar-day range.
type Period struct {
	Start Date `json:"start_date"`
	End   Date `json:"end_date"`
}

// Contains reports whether day falls inside the period.
func (p Period) Contains(day Date) bool {
	return !day.Before(p.Start) && !day.After(p.End)
}

// Days returns every calendar day in the period in order. An inverted
// period yields nil.
func (p Period) Days() []Date {
	if p.End.Before(p.Start) {
		return nil
	}
	var days []Date
	for d := p.Start; !d.After(p.End); d = d.AddDays(1) {
		days = append(days, d)
	}
	return days
}
