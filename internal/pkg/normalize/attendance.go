package normalize

import (
	"github.com/cmlabs-hris/hris-report-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-report-go/internal/pkg/metrics"
)

var attendanceRoots = []string{"attendance", "data.attendance", "data.records", "records", "data"}

var (
	punchInAliases  = []string{"punchInTime", "punchIn", "checkIn", "checkInTime", "clockIn", "inTime"}
	punchOutAliases = []string{"punchOutTime", "punchOut", "checkOut", "checkOutTime", "clockOut", "outTime"}
	dateAliases     = []string{"date", "attendanceDate", "day", "workDate"}
)

// Attendance normalizes an attendance listing rooted at "attendance" or "data".
// Hours worked and day type are derived for every kept record.
func Attendance(body []byte) Result[attendance.Record] {
	return collect(body, attendanceRoots, buildAttendance)
}

func buildAttendance(o object) (attendance.Record, bool) {
	id := o.str(employeeIDAliases...)
	if id == "" {
		return attendance.Record{}, false
	}

	r := attendance.Record{
		EmployeeID:   id,
		EmployeeName: o.name(),
		Designation:  o.str(designationAliases...),
		ProjectName:  o.str(projectAliases...),
		RawDate:      o.str(dateAliases...),
		PunchIn:      o.str(punchInAliases...),
		PunchOut:     o.str(punchOutAliases...),
		Status:       attendance.ParseStatus(o.str("status", "attendanceStatus")),
		IsLate:       o.boolean("isLate", "late", "lateArrival", "isLateArrival"),
	}

	if d, ok := metrics.ParseDate(r.RawDate); ok {
		r.Date = d
	} else if ts, clockOnly, ok := metrics.ParseTimestamp(r.PunchIn); ok && !clockOnly {
		// Some listings omit the date and carry a full punch-in timestamp instead.
		r.Date = metrics.TruncateDay(ts)
	}

	return metrics.DeriveAttendance(r), true
}
