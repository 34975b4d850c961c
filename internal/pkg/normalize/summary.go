package normalize

import (
	"encoding/json"
	"strconv"

	"github.com/cmlabs-hris/hris-report-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-report-go/internal/pkg/metrics"
)

var summaryRoots = []string{"data.summary", "summary", "stats", "data"}

var summaryAliases = map[string][]string{
	"total":   {"totalDays", "totalWorkingDays", "workingDays"},
	"present": {"presentDays", "present", "totalPresent"},
	"absent":  {"absentDays", "absent", "totalAbsent"},
	"half":    {"halfDays", "halfDay", "totalHalfDays"},
	"leave":   {"leaveDays", "onLeave", "leaves", "totalLeaves"},
	"late":    {"lateDays", "late", "lateCount", "totalLate"},
}

var rateAliases = []string{"attendanceRate", "attendancePercentage", "rate", "percentage"}

// MonthlySummary normalizes a monthly summary or monthly stats body. The body itself
// is used as the summary when it carries summary fields at the top level.
func MonthlySummary(body []byte) (attendance.MonthlySummary, Kind) {
	root, ok := parseRoot(body)
	if !ok {
		return attendance.MonthlySummary{}, KindMalformedShape
	}

	raw, found := findRoot(root, summaryRoots)
	if !found {
		whole, _ := decodeObject(body)
		if !hasSummaryFields(whole) {
			return attendance.MonthlySummary{}, KindEmptyRoot
		}
		raw = json.RawMessage(body)
	}

	o, ok := decodeObject(raw)
	if !ok {
		return attendance.MonthlySummary{}, KindMalformedShape
	}

	s := attendance.MonthlySummary{EmployeeID: o.str(employeeIDAliases...)}
	month, _ := o.num("month")
	year, _ := o.num("year")
	s.Month, s.Year = int(month), int(year)
	s.TotalDays, _ = o.num(summaryAliases["total"]...)
	s.PresentDays, _ = o.num(summaryAliases["present"]...)
	s.AbsentDays, _ = o.num(summaryAliases["absent"]...)
	s.HalfDays, _ = o.num(summaryAliases["half"]...)
	s.LeaveDays, _ = o.num(summaryAliases["leave"]...)
	s.LateDays, _ = o.num(summaryAliases["late"]...)

	s.AttendanceRate = o.str(rateAliases...)
	if v, ok := o.num(rateAliases...); ok {
		// Bare numbers are served as percentages without the sign.
		s.AttendanceRate = strconv.FormatFloat(v, 'f', -1, 64) + "%"
	}
	s.AttendanceRate = metrics.FormatRate(s.AttendanceRate)
	s.RateValue = metrics.ParseRate(s.AttendanceRate)
	return s, KindOK
}

func hasSummaryFields(o object) bool {
	for _, aliases := range summaryAliases {
		if _, ok := o.num(aliases...); ok {
			return true
		}
	}
	_, ok := o.num(rateAliases...)
	return ok
}
