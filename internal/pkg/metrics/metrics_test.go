package metrics

import (
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-report-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-report-go/internal/domain/leave"
	"github.com/stretchr/testify/assert"
)

func TestHoursWorked(t *testing.T) {
	tests := []struct {
		name     string
		in, out  string
		expected string
	}{
		{"clock only", "09:00:00", "17:30:00", "8.50"},
		{"full timestamps", "2024-01-15T09:00:00Z", "2024-01-15T17:45:30Z", "8.76"},
		{"with offset", "2024-01-15T09:00:00+05:30", "2024-01-15T18:00:00+05:30", "9.00"},
		{"milliseconds", "2024-01-15T09:00:00.000Z", "2024-01-15T10:30:00.000Z", "1.50"},
		{"space separated", "2024-01-15 08:00:00", "2024-01-15 16:15:00", "8.25"},
		{"zero length shift", "2024-01-15T09:00:00Z", "2024-01-15T09:00:00Z", "0.00"},
		{"bare clock against timestamp", "09:00", "2024-01-15T18:00:00Z", "9.00"},
		{"overnight across dates", "2024-01-15T22:00:00Z", "2024-01-16T06:00:00Z", "8.00"},
		{"punch out before punch in", "17:30:00", "09:00:00", NotAvailable},
		{"missing punch in", "", "17:30:00", NotAvailable},
		{"missing punch out", "09:00:00", "", NotAvailable},
		{"unparseable", "yesterday", "17:30:00", NotAvailable},
		{"whitespace only", "  ", "  ", NotAvailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, HoursWorked(tt.in, tt.out))
		})
	}
}

func TestHoursWorked_NeverNegative(t *testing.T) {
	got := HoursWorked("2024-01-15T18:00:00Z", "2024-01-15T09:00:00Z")
	assert.Equal(t, NotAvailable, got)
	assert.NotContains(t, got, "-")
	assert.NotContains(t, got, "NaN")
}

func TestDayType(t *testing.T) {
	assert.Equal(t, DayTypeLate, DayType(attendance.StatusPresent, true))
	assert.Equal(t, DayTypeRegular, DayType(attendance.StatusPresent, false))
	assert.Equal(t, DayTypeRegular, DayType(attendance.StatusAbsent, false))
	assert.Equal(t, DayTypeHalfDay, DayType(attendance.StatusHalfDay, true))
}

func TestDeriveAttendance(t *testing.T) {
	r := DeriveAttendance(attendance.Record{
		EmployeeID: "EMP001",
		PunchIn:    "09:00:00",
		PunchOut:   "17:30:00",
		Status:     attendance.StatusPresent,
		IsLate:     true,
	})
	assert.Equal(t, "8.50", r.HoursWorked)
	assert.Equal(t, DayTypeLate, r.DayType)
}

func TestParseRate(t *testing.T) {
	cases := map[string]float64{
		"82%":    82,
		"82.5 %": 82.5,
		"100":    100,
		"":       0,
		"%":      0,
		"abc%":   0,
		"NaN%":   0,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseRate(in), "ParseRate(%q)", in)
	}
}

func TestFormatRate(t *testing.T) {
	assert.Equal(t, "82%", FormatRate("82%"))
	assert.Equal(t, "75%", FormatRate("75"))
	assert.Equal(t, ZeroRate, FormatRate(""))
	assert.Equal(t, ZeroRate, FormatRate("n/a"))
}

func TestParseDate(t *testing.T) {
	want := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	for _, in := range []string{"2024-01-15", "2024-01-15T23:30:00+05:30", "15-01-2024", "15/01/2024", "January 15, 2024"} {
		got, ok := ParseDate(in)
		assert.True(t, ok, "ParseDate(%q)", in)
		assert.Equal(t, want, got, "ParseDate(%q)", in)
	}

	_, ok := ParseDate("not a date")
	assert.False(t, ok)
	_, ok = ParseDate("")
	assert.False(t, ok)
}

func TestFormatting(t *testing.T) {
	assert.Equal(t, "January 5, 2024", FormatDate(time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, NotAvailable, FormatDate(time.Time{}))

	assert.Equal(t, "09:05 AM", FormatClock("2024-01-15T09:05:00Z"))
	assert.Equal(t, "05:30 PM", FormatClock("17:30:00"))
	assert.Equal(t, NoValue, FormatClock(""))
	assert.Equal(t, NotAvailable, FormatClock("soon"))

	assert.Equal(t, "0.5", FormatDays(0.5))
	assert.Equal(t, "2", FormatDays(2))
	assert.Equal(t, NotAvailable, OrNA(" "))
	assert.Equal(t, "Exozen-Ops", OrNA("Exozen-Ops"))
}

func TestBalanceDrift(t *testing.T) {
	consistent := leave.BalanceEntry{Allocated: 12, Used: 3, Pending: 1, Remaining: 8}
	assert.Equal(t, 0.0, BalanceDrift(consistent))

	drifted := leave.BalanceEntry{Allocated: 12, Used: 3, Pending: 1, Remaining: 10}
	assert.Equal(t, -2.0, BalanceDrift(drifted))
}

func TestLeaveDays(t *testing.T) {
	jan15 := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	jan17 := time.Date(2024, 1, 17, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, 3.0, LeaveDays(jan15, jan17, false))
	assert.Equal(t, 1.0, LeaveDays(jan15, jan15, false))
	assert.Equal(t, 0.5, LeaveDays(jan15, jan15, true))
	assert.Equal(t, 1.0, LeaveDays(jan17, jan15, false))
	assert.Equal(t, 0.0, LeaveDays(time.Time{}, jan15, false))
}
