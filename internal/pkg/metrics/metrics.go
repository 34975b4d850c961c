// Package metrics derives the values the HR API does not serve directly.
// Every function degrades to a sentinel instead of failing.
package metrics

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-report-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-report-go/internal/domain/leave"
	"github.com/shopspring/decimal"
)

// Sentinels rendered verbatim on screen and in exports.
const (
	NotAvailable = "N/A"
	NoValue      = "-"
	ZeroRate     = "0%"
)

const (
	DayTypeRegular = "Regular"
	DayTypeLate    = "Late"
	DayTypeHalfDay = "Half-day"
)

const LongDateLayout = "January 2, 2006"

var msPerHour = decimal.NewFromInt(int64(time.Hour / time.Millisecond))

var timestampLayouts = []string{
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
}

var clockLayouts = []string{
	"15:04:05",
	"15:04",
	"3:04 PM",
	"03:04 PM",
	"3:04PM",
}

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"02-01-2006",
	"02/01/2006",
	"January 2, 2006",
	"2 January 2006",
	"02 Jan 2006",
}

// ParseTimestamp parses a punch timestamp. clockOnly is true when the source carried
// no date part, in which case the returned time sits on the zero date.
func ParseTimestamp(s string) (t time.Time, clockOnly bool, ok bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false, false
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			return parsed, false, true
		}
	}
	for _, layout := range clockLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			return parsed, true, true
		}
	}
	return time.Time{}, false, false
}

// ParseDate parses a calendar date and truncates it to the day.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			return TruncateDay(parsed), true
		}
	}
	return time.Time{}, false
}

// TruncateDay drops the clock of t, keeping the calendar day in t's own offset.
func TruncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// HoursWorked returns punchOut-punchIn in hours with two decimals, or N/A.
func HoursWorked(punchIn, punchOut string) string {
	start, startClockOnly, ok := ParseTimestamp(punchIn)
	if !ok {
		return NotAvailable
	}
	end, endClockOnly, ok := ParseTimestamp(punchOut)
	if !ok {
		return NotAvailable
	}

	// A bare clock is read on the day of the other punch.
	if startClockOnly != endClockOnly {
		if startClockOnly {
			start = onDayOf(end, start)
		} else {
			end = onDayOf(start, end)
		}
	}

	if end.Before(start) {
		return NotAvailable
	}

	ms := end.Sub(start).Milliseconds()
	return decimal.NewFromInt(ms).Div(msPerHour).StringFixed(2)
}

func onDayOf(day, clock time.Time) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, clock.Hour(), clock.Minute(), clock.Second(), clock.Nanosecond(), day.Location())
}

// DayType classifies a day. Lateness is taken from the source flag, never computed here.
func DayType(status attendance.Status, isLate bool) string {
	if status == attendance.StatusHalfDay {
		return DayTypeHalfDay
	}
	if isLate {
		return DayTypeLate
	}
	return DayTypeRegular
}

// DeriveAttendance fills the computed fields of a record.
func DeriveAttendance(r attendance.Record) attendance.Record {
	r.HoursWorked = HoursWorked(r.PunchIn, r.PunchOut)
	r.DayType = DayType(r.Status, r.IsLate)
	return r
}

// ParseRate strips the % suffix of a served rate. Absent or malformed rates are 0.
func ParseRate(s string) float64 {
	s = strings.TrimSuffix(strings.TrimSpace(s), "%")
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// FormatRate renders a served rate, falling back to 0%.
func FormatRate(s string) string {
	num := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	if num == "" {
		return ZeroRate
	}
	if _, err := strconv.ParseFloat(num, 64); err != nil {
		return ZeroRate
	}
	return num + "%"
}

// FormatDays renders a day count without trailing zeros ("0.5", "2").
func FormatDays(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return NotAvailable
	}
	return decimal.NewFromFloat(v).String()
}

// BalanceDrift is allocated-used-pending-remaining. The served remaining value is
// never replaced; a non-zero drift only flags that the source disagrees with itself.
func BalanceDrift(e leave.BalanceEntry) float64 {
	d := decimal.NewFromFloat(e.Allocated).
		Sub(decimal.NewFromFloat(e.Used)).
		Sub(decimal.NewFromFloat(e.Pending)).
		Sub(decimal.NewFromFloat(e.Remaining))
	f, _ := d.Float64()
	return f
}

// FormatDate renders a calendar day in long form, N/A when unknown.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return NotAvailable
	}
	return t.Format(LongDateLayout)
}

// FormatClock renders a punch time as "09:05 AM"; "-" when absent, N/A when unparseable.
func FormatClock(ts string) string {
	if strings.TrimSpace(ts) == "" {
		return NoValue
	}
	t, _, ok := ParseTimestamp(ts)
	if !ok {
		return NotAvailable
	}
	return t.Format("03:04 PM")
}

// OrNA renders an optional text field.
func OrNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return NotAvailable
	}
	return s
}

// LeaveDays counts the calendar days of a leave, both ends inclusive. A half-day leave
// counts 0.5. It is only used when the source omits numberOfDays.
func LeaveDays(start, end time.Time, halfDay bool) float64 {
	if halfDay {
		return 0.5
	}
	if start.IsZero() {
		return 0
	}
	if end.IsZero() || end.Before(start) {
		end = start
	}
	return math.Round(TruncateDay(end).Sub(TruncateDay(start)).Hours()/24) + 1
}
