package report

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-report-go/internal/domain/action"
	"github.com/cmlabs-hris/hris-report-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-report-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-report-go/internal/domain/issuance"
	"github.com/cmlabs-hris/hris-report-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-report-go/internal/domain/report"
	"github.com/cmlabs-hris/hris-report-go/internal/pkg/export"
	"github.com/cmlabs-hris/hris-report-go/internal/pkg/fsp"
	"github.com/cmlabs-hris/hris-report-go/internal/pkg/hrapi"
	"github.com/cmlabs-hris/hris-report-go/internal/pkg/metrics"
	"github.com/cmlabs-hris/hris-report-go/internal/pkg/normalize"
)

var (
	reviewActions   = []action.Kind{action.KindApprove, action.KindReject}
	issuanceActions = []action.Kind{action.KindApprove, action.KindReject, action.KindIssue}
)

// ========================================
// ATTENDANCE
// ========================================

func attendanceColumns(withEmployee bool) []Column[attendance.Record] {
	var cols []Column[attendance.Record]
	if withEmployee {
		cols = append(cols,
			Column[attendance.Record]{Key: "employee_id", Header: "Employee ID", Value: func(r attendance.Record) string { return r.EmployeeID }},
			Column[attendance.Record]{Key: "name", Header: "Name", Value: func(r attendance.Record) string { return metrics.OrNA(r.EmployeeName) }},
			Column[attendance.Record]{Key: "designation", Header: "Designation", Value: func(r attendance.Record) string { return metrics.OrNA(r.Designation) }},
			Column[attendance.Record]{Key: "project", Header: "Project", Value: func(r attendance.Record) string { return metrics.OrNA(r.ProjectName) }},
		)
	}
	return append(cols,
		Column[attendance.Record]{
			Key:       "date",
			Header:    "Date",
			Value:     func(r attendance.Record) string { return dateOrRaw(r.Date, r.RawDate) },
			SortValue: func(r attendance.Record) string { return isoDate(r.Date) },
		},
		Column[attendance.Record]{Key: "punch_in", Header: "Punch In", Value: func(r attendance.Record) string { return metrics.FormatClock(r.PunchIn) }, NoSort: true},
		Column[attendance.Record]{Key: "punch_out", Header: "Punch Out", Value: func(r attendance.Record) string { return metrics.FormatClock(r.PunchOut) }, NoSort: true},
		Column[attendance.Record]{
			Key:       "hours",
			Header:    "Hours Worked",
			Value:     func(r attendance.Record) string { return r.HoursWorked },
			SortValue: func(r attendance.Record) string { return sortableNumber(r.HoursWorked) },
		},
		Column[attendance.Record]{Key: "status", Header: "Status", Value: func(r attendance.Record) string { return r.Status.Label() }},
		Column[attendance.Record]{Key: "day_type", Header: "Day Type", Value: func(r attendance.Record) string { return r.DayType }},
	)
}

func attendanceDate(r attendance.Record) (time.Time, bool) { return r.Date, !r.Date.IsZero() }

func attendanceFigures(records []attendance.Record) []report.Figure {
	var present, absent, half, onLeave, late int
	for _, r := range records {
		switch r.Status {
		case attendance.StatusPresent:
			present++
		case attendance.StatusAbsent:
			absent++
		case attendance.StatusHalfDay:
			half++
		case attendance.StatusOnLeave:
			onLeave++
		}
		if r.IsLate {
			late++
		}
	}
	return []report.Figure{
		{Label: "Present", Value: strconv.Itoa(present)},
		{Label: "Absent", Value: strconv.Itoa(absent)},
		{Label: "Half Day", Value: strconv.Itoa(half)},
		{Label: "On Leave", Value: strconv.Itoa(onLeave)},
		{Label: "Late", Value: strconv.Itoa(late)},
	}
}

var attendanceReport = &Definition[attendance.Record]{
	Key:       report.KeyAttendance,
	Title:     "Attendance Report",
	FileName:  "attendance_report",
	SheetName: "Attendance",
	PageSize:  15,
	Endpoint: func(s Scope) hrapi.Endpoint {
		if s.restrictsProject() {
			return hrapi.ProjectAttendance(s.ProjectName)
		}
		return hrapi.AllAttendance()
	},
	Normalize: normalize.Attendance,
	Columns:   attendanceColumns(true),
	Search: []fsp.Field[attendance.Record]{
		func(r attendance.Record) string { return r.EmployeeID },
		func(r attendance.Record) string { return r.EmployeeName },
		func(r attendance.Record) string { return r.ProjectName },
		func(r attendance.Record) string { return metrics.FormatDate(r.Date) },
	},
	Exact: map[fsp.Dimension]fsp.Field[attendance.Record]{
		fsp.DimensionProject:     func(r attendance.Record) string { return strings.TrimSpace(r.ProjectName) },
		fsp.DimensionDesignation: func(r attendance.Record) string { return strings.TrimSpace(r.Designation) },
		fsp.DimensionStatus:      func(r attendance.Record) string { return r.Status.Label() },
	},
	Date:     attendanceDate,
	Project:  func(r attendance.Record) string { return r.ProjectName },
	Employee: func(r attendance.Record) string { return r.EmployeeID },
	ID:       attendance.Record.Key,
	Status:   func(r attendance.Record) string { return r.Status.Label() },
	Summary:  attendanceFigures,
}

// ========================================
// LEAVE
// ========================================

func leaveColumns(withEmployee bool) []Column[leave.Record] {
	var cols []Column[leave.Record]
	if withEmployee {
		cols = append(cols,
			Column[leave.Record]{Key: "leave_id", Header: "Leave ID", Value: func(r leave.Record) string { return r.LeaveID }},
			Column[leave.Record]{Key: "employee_id", Header: "Employee ID", Value: func(r leave.Record) string { return metrics.OrNA(r.EmployeeID) }},
			Column[leave.Record]{Key: "name", Header: "Name", Value: func(r leave.Record) string { return metrics.OrNA(r.EmployeeName) }},
			Column[leave.Record]{Key: "project", Header: "Project", Value: func(r leave.Record) string { return metrics.OrNA(r.ProjectName) }},
		)
	}
	return append(cols,
		Column[leave.Record]{Key: "type", Header: "Leave Type", Value: func(r leave.Record) string { return metrics.OrNA(string(r.LeaveType)) }},
		Column[leave.Record]{
			Key:       "from",
			Header:    "From",
			Value:     func(r leave.Record) string { return dateOrRaw(r.StartDate, r.RawStartDate) },
			SortValue: func(r leave.Record) string { return isoDate(r.StartDate) },
		},
		Column[leave.Record]{
			Key:       "to",
			Header:    "To",
			Value:     func(r leave.Record) string { return dateOrRaw(r.EndDate, r.RawEndDate) },
			SortValue: func(r leave.Record) string { return isoDate(r.EndDate) },
		},
		Column[leave.Record]{
			Key:       "days",
			Header:    "Days",
			Value:     func(r leave.Record) string { return metrics.FormatDays(r.NumberOfDays) },
			SortValue: func(r leave.Record) string { return sortableFloat(r.NumberOfDays) },
		},
		Column[leave.Record]{Key: "half_day", Header: "Half Day", Value: func(r leave.Record) string { return yesNo(r.IsHalfDay) }},
		Column[leave.Record]{Key: "status", Header: "Status", Value: func(r leave.Record) string { return string(r.Status) }},
		Column[leave.Record]{Key: "reason", Header: "Reason", Value: func(r leave.Record) string { return metrics.OrNA(r.Reason) }, NoSort: true},
	)
}

func leaveDate(r leave.Record) (time.Time, bool) { return r.StartDate, !r.StartDate.IsZero() }

func leaveStatus(r leave.Record) string { return string(r.Status) }

func setLeaveStatus(r *leave.Record, status string) { r.Status = leave.ParseStatus(status) }

func leaveFigures(records []leave.Record) []report.Figure {
	var approved, pending, rejected int
	var approvedDays float64
	for _, r := range records {
		switch r.Status {
		case leave.StatusApproved:
			approved++
			approvedDays += r.NumberOfDays
		case leave.StatusRejected:
			rejected++
		default:
			pending++
		}
	}
	return []report.Figure{
		{Label: "Total Requests", Value: strconv.Itoa(len(records))},
		{Label: "Approved", Value: strconv.Itoa(approved)},
		{Label: "Pending", Value: strconv.Itoa(pending)},
		{Label: "Rejected", Value: strconv.Itoa(rejected)},
		{Label: "Approved Days", Value: metrics.FormatDays(approvedDays)},
	}
}

var leaveRequestsReport = &Definition[leave.Record]{
	Key:       report.KeyLeaveRequests,
	Title:     "Leave Requests",
	FileName:  "leave_requests",
	SheetName: "Leave Requests",
	PageSize:  12,
	Endpoint:  func(Scope) hrapi.Endpoint { return hrapi.AllLeaveRequests() },
	Normalize: normalize.LeaveRequests,
	Columns:   leaveColumns(true),
	Search: []fsp.Field[leave.Record]{
		func(r leave.Record) string { return r.LeaveID },
		func(r leave.Record) string { return r.EmployeeID },
		func(r leave.Record) string { return r.EmployeeName },
		func(r leave.Record) string { return string(r.LeaveType) },
		func(r leave.Record) string { return r.Reason },
	},
	Exact: map[fsp.Dimension]fsp.Field[leave.Record]{
		fsp.DimensionProject: func(r leave.Record) string { return strings.TrimSpace(r.ProjectName) },
		fsp.DimensionStatus:  leaveStatus,
	},
	Date:      leaveDate,
	Project:   func(r leave.Record) string { return r.ProjectName },
	Employee:  func(r leave.Record) string { return r.EmployeeID },
	ID:        func(r leave.Record) string { return r.LeaveID },
	Status:    leaveStatus,
	SetStatus: setLeaveStatus,
	Resource:  hrapi.ResourceLeave,
	Actions:   reviewActions,
	Summary:   leaveFigures,
}

var leaveHistoryReport = &Definition[leave.Record]{
	Key:           report.KeyLeaveHistory,
	Title:         "Leave History",
	FileName:      "leave_history",
	SheetName:     "Leave History",
	PageSize:      5,
	NeedsEmployee: true,
	Endpoint:      func(s Scope) hrapi.Endpoint { return hrapi.LeaveHistory(s.EmployeeID) },
	Normalize:     normalize.LeaveHistory,
	Columns:       leaveColumns(false),
	Search: []fsp.Field[leave.Record]{
		func(r leave.Record) string { return string(r.LeaveType) },
		func(r leave.Record) string { return r.Reason },
	},
	Exact: map[fsp.Dimension]fsp.Field[leave.Record]{
		fsp.DimensionStatus: leaveStatus,
	},
	Date:    leaveDate,
	ID:      func(r leave.Record) string { return r.LeaveID },
	Status:  leaveStatus,
	Summary: leaveFigures,
}

func balanceColumns() []Column[leave.BalanceEntry] {
	days := func(key, header string, v func(leave.BalanceEntry) float64) Column[leave.BalanceEntry] {
		return Column[leave.BalanceEntry]{
			Key:       key,
			Header:    header,
			Value:     func(e leave.BalanceEntry) string { return metrics.FormatDays(v(e)) },
			SortValue: func(e leave.BalanceEntry) string { return sortableFloat(v(e)) },
		}
	}
	return []Column[leave.BalanceEntry]{
		{Key: "type", Header: "Leave Type", Value: func(e leave.BalanceEntry) string { return string(e.LeaveType) }},
		days("allocated", "Allocated", func(e leave.BalanceEntry) float64 { return e.Allocated }),
		days("used", "Used", func(e leave.BalanceEntry) float64 { return e.Used }),
		days("pending", "Pending", func(e leave.BalanceEntry) float64 { return e.Pending }),
		days("remaining", "Remaining", func(e leave.BalanceEntry) float64 { return e.Remaining }),
		{Key: "check", Header: "Check", Value: balanceCheck, NoSort: true},
	}
}

// balanceCheck flags entries whose served figures do not add up. Remaining is never recomputed.
func balanceCheck(e leave.BalanceEntry) string {
	drift := metrics.BalanceDrift(e)
	if drift == 0 {
		return "OK"
	}
	return fmt.Sprintf("Mismatch (%s)", metrics.FormatDays(drift))
}

func balanceTotals(body []byte) []report.Figure {
	b := normalize.LeaveBalance(body).Balance
	return []report.Figure{
		{Label: "Total Allocated", Value: metrics.FormatDays(b.TotalAllocated)},
		{Label: "Total Used", Value: metrics.FormatDays(b.TotalUsed)},
		{Label: "Total Pending", Value: metrics.FormatDays(b.TotalPending)},
		{Label: "Total Remaining", Value: metrics.FormatDays(b.TotalRemaining)},
	}
}

var leaveBalanceReport = &Definition[leave.BalanceEntry]{
	Key:           report.KeyLeaveBalance,
	Title:         "Leave Balance",
	FileName:      "leave_balance",
	SheetName:     "Leave Balance",
	PageSize:      20,
	NeedsEmployee: true,
	Endpoint:      func(s Scope) hrapi.Endpoint { return hrapi.LeaveBalance(s.EmployeeID) },
	Normalize: func(body []byte) normalize.Result[leave.BalanceEntry] {
		return normalize.LeaveBalance(body).Result
	},
	Columns: balanceColumns(),
	Search: []fsp.Field[leave.BalanceEntry]{
		func(e leave.BalanceEntry) string { return string(e.LeaveType) },
	},
	ID:          func(e leave.BalanceEntry) string { return string(e.LeaveType) },
	BodyFigures: balanceTotals,
}

// ========================================
// REGULARIZATION
// ========================================

var regularizationsReport = &Definition[attendance.Regularization]{
	Key:       report.KeyRegularizations,
	Title:     "Regularization Requests",
	FileName:  "regularization_requests",
	SheetName: "Regularizations",
	PageSize:  15,
	Endpoint:  func(Scope) hrapi.Endpoint { return hrapi.Regularizations() },
	Normalize: normalize.Regularizations,
	Columns: []Column[attendance.Regularization]{
		{Key: "id", Header: "Request ID", Value: func(r attendance.Regularization) string { return r.ID }},
		{Key: "employee_id", Header: "Employee ID", Value: func(r attendance.Regularization) string { return r.EmployeeID }},
		{Key: "name", Header: "Name", Value: func(r attendance.Regularization) string { return metrics.OrNA(r.EmployeeName) }},
		{Key: "project", Header: "Project", Value: func(r attendance.Regularization) string { return metrics.OrNA(r.ProjectName) }},
		{
			Key:       "date",
			Header:    "Date",
			Value:     func(r attendance.Regularization) string { return dateOrRaw(r.Date, r.RawDate) },
			SortValue: func(r attendance.Regularization) string { return isoDate(r.Date) },
		},
		{Key: "requested_in", Header: "Requested In", Value: func(r attendance.Regularization) string { return metrics.FormatClock(r.RequestedIn) }, NoSort: true},
		{Key: "requested_out", Header: "Requested Out", Value: func(r attendance.Regularization) string { return metrics.FormatClock(r.RequestedOut) }, NoSort: true},
		{Key: "reason", Header: "Reason", Value: func(r attendance.Regularization) string { return metrics.OrNA(r.Reason) }, NoSort: true},
		{Key: "status", Header: "Status", Value: func(r attendance.Regularization) string { return string(r.Status) }},
	},
	Search: []fsp.Field[attendance.Regularization]{
		func(r attendance.Regularization) string { return r.ID },
		func(r attendance.Regularization) string { return r.EmployeeID },
		func(r attendance.Regularization) string { return r.EmployeeName },
		func(r attendance.Regularization) string { return r.Reason },
	},
	Exact: map[fsp.Dimension]fsp.Field[attendance.Regularization]{
		fsp.DimensionProject: func(r attendance.Regularization) string { return strings.TrimSpace(r.ProjectName) },
		fsp.DimensionStatus:  func(r attendance.Regularization) string { return string(r.Status) },
	},
	Date:     func(r attendance.Regularization) (time.Time, bool) { return r.Date, !r.Date.IsZero() },
	Project:  func(r attendance.Regularization) string { return r.ProjectName },
	Employee: func(r attendance.Regularization) string { return r.EmployeeID },
	ID:       func(r attendance.Regularization) string { return r.ID },
	Status:   func(r attendance.Regularization) string { return string(r.Status) },
	SetStatus: func(r *attendance.Regularization, status string) {
		r.Status = attendance.ParseRequestStatus(status)
	},
	Resource: hrapi.ResourceRegularization,
	Actions:  reviewActions,
}

// ========================================
// KYC
// ========================================

var kycReport = &Definition[employee.Employee]{
	Key:       report.KeyKYC,
	Title:     "KYC Forms",
	FileName:  "kyc_forms",
	SheetName: "KYC",
	PageSize:  20,
	Endpoint:  func(Scope) hrapi.Endpoint { return hrapi.KYCForms() },
	Normalize: normalize.KYCForms,
	Columns: []Column[employee.Employee]{
		{Key: "employee_id", Header: "Employee ID", Value: func(e employee.Employee) string { return e.EmployeeID }},
		{Key: "name", Header: "Name", Value: func(e employee.Employee) string { return metrics.OrNA(e.FullName) }},
		{Key: "designation", Header: "Designation", Value: func(e employee.Employee) string { return metrics.OrNA(e.Designation) }},
		{Key: "project", Header: "Project", Value: func(e employee.Employee) string { return metrics.OrNA(e.ProjectName) }},
		{Key: "email", Header: "Email", Value: func(e employee.Employee) string { return metrics.OrNA(e.Email) }},
		{Key: "phone", Header: "Phone", Value: func(e employee.Employee) string { return metrics.OrNA(e.Phone) }, NoSort: true},
		{
			Key:       "submitted",
			Header:    "Submitted",
			Value:     func(e employee.Employee) string { return dateOrRaw(e.SubmittedAt, e.RawSubmittedAt) },
			SortValue: func(e employee.Employee) string { return isoDate(e.SubmittedAt) },
		},
		{Key: "status", Header: "Status", Value: func(e employee.Employee) string { return string(e.KYCStatus) }},
	},
	Search: []fsp.Field[employee.Employee]{
		func(e employee.Employee) string { return e.EmployeeID },
		func(e employee.Employee) string { return e.FullName },
		func(e employee.Employee) string { return e.Email },
		func(e employee.Employee) string { return e.Phone },
	},
	Exact: map[fsp.Dimension]fsp.Field[employee.Employee]{
		fsp.DimensionProject:     func(e employee.Employee) string { return strings.TrimSpace(e.ProjectName) },
		fsp.DimensionDesignation: func(e employee.Employee) string { return strings.TrimSpace(e.Designation) },
		fsp.DimensionStatus:      func(e employee.Employee) string { return string(e.KYCStatus) },
	},
	Date:      func(e employee.Employee) (time.Time, bool) { return e.SubmittedAt, !e.SubmittedAt.IsZero() },
	Project:   func(e employee.Employee) string { return e.ProjectName },
	Employee:  func(e employee.Employee) string { return e.EmployeeID },
	ID:        func(e employee.Employee) string { return e.EmployeeID },
	Status:    func(e employee.Employee) string { return string(e.KYCStatus) },
	SetStatus: func(e *employee.Employee, status string) { e.KYCStatus = employee.ParseKYCStatus(status) },
	Resource:  hrapi.ResourceKYC,
	Actions:   reviewActions,
}

// ========================================
// ISSUANCE
// ========================================

var uniformsReport = &Definition[issuance.UniformRequest]{
	Key:       report.KeyUniforms,
	Title:     "Uniform Requests",
	FileName:  "uniform_requests",
	SheetName: "Uniforms",
	PageSize:  12,
	Endpoint:  func(Scope) hrapi.Endpoint { return hrapi.AllUniforms() },
	Normalize: normalize.Uniforms,
	Columns: []Column[issuance.UniformRequest]{
		{Key: "id", Header: "Request ID", Value: func(r issuance.UniformRequest) string { return r.ID }},
		{Key: "employee_id", Header: "Employee ID", Value: func(r issuance.UniformRequest) string { return r.EmployeeID }},
		{Key: "name", Header: "Name", Value: func(r issuance.UniformRequest) string { return metrics.OrNA(r.EmployeeName) }},
		{Key: "designation", Header: "Designation", Value: func(r issuance.UniformRequest) string { return metrics.OrNA(r.Designation) }},
		{Key: "project", Header: "Project", Value: func(r issuance.UniformRequest) string { return metrics.OrNA(r.ProjectName) }},
		{Key: "items", Header: "Items", Value: func(r issuance.UniformRequest) string { return metrics.OrNA(strings.Join(r.Items, ", ")) }, NoSort: true},
		{
			Key:       "requested",
			Header:    "Requested",
			Value:     func(r issuance.UniformRequest) string { return dateOrRaw(r.RequestedAt, r.RawRequestedAt) },
			SortValue: func(r issuance.UniformRequest) string { return isoDate(r.RequestedAt) },
		},
		{Key: "status", Header: "Status", Value: func(r issuance.UniformRequest) string { return string(r.Status) }},
	},
	Search: []fsp.Field[issuance.UniformRequest]{
		func(r issuance.UniformRequest) string { return r.ID },
		func(r issuance.UniformRequest) string { return r.EmployeeID },
		func(r issuance.UniformRequest) string { return r.EmployeeName },
		func(r issuance.UniformRequest) string { return strings.Join(r.Items, " ") },
	},
	Exact: map[fsp.Dimension]fsp.Field[issuance.UniformRequest]{
		fsp.DimensionProject:     func(r issuance.UniformRequest) string { return strings.TrimSpace(r.ProjectName) },
		fsp.DimensionDesignation: func(r issuance.UniformRequest) string { return strings.TrimSpace(r.Designation) },
		fsp.DimensionStatus:      func(r issuance.UniformRequest) string { return string(r.Status) },
	},
	Date:      func(r issuance.UniformRequest) (time.Time, bool) { return r.RequestedAt, !r.RequestedAt.IsZero() },
	Project:   func(r issuance.UniformRequest) string { return r.ProjectName },
	Employee:  func(r issuance.UniformRequest) string { return r.EmployeeID },
	ID:        func(r issuance.UniformRequest) string { return r.ID },
	Status:    func(r issuance.UniformRequest) string { return string(r.Status) },
	SetStatus: func(r *issuance.UniformRequest, status string) { r.Status = issuance.ParseStatus(status) },
	Resource:  hrapi.ResourceUniform,
	Actions:   issuanceActions,
}

var idCardsReport = &Definition[issuance.IDCard]{
	Key:       report.KeyIDCards,
	Title:     "ID Cards",
	FileName:  "id_cards",
	SheetName: "ID Cards",
	PageSize:  12,
	Endpoint:  func(Scope) hrapi.Endpoint { return hrapi.AllIDCards() },
	Normalize: normalize.IDCards,
	Columns: []Column[issuance.IDCard]{
		{Key: "id", Header: "Card ID", Value: func(c issuance.IDCard) string { return c.ID }},
		{Key: "employee_id", Header: "Employee ID", Value: func(c issuance.IDCard) string { return c.EmployeeID }},
		{Key: "name", Header: "Name", Value: func(c issuance.IDCard) string { return metrics.OrNA(c.EmployeeName) }},
		{Key: "designation", Header: "Designation", Value: func(c issuance.IDCard) string { return metrics.OrNA(c.Designation) }},
		{Key: "project", Header: "Project", Value: func(c issuance.IDCard) string { return metrics.OrNA(c.ProjectName) }},
		{
			Key:       "issued",
			Header:    "Issued",
			Value:     func(c issuance.IDCard) string { return dateOrRaw(c.IssuedAt, c.RawIssuedAt) },
			SortValue: func(c issuance.IDCard) string { return isoDate(c.IssuedAt) },
		},
		{
			Key:       "valid_until",
			Header:    "Valid Until",
			Value:     func(c issuance.IDCard) string { return dateOrRaw(c.ValidUntil, c.RawValidTil) },
			SortValue: func(c issuance.IDCard) string { return isoDate(c.ValidUntil) },
		},
		{Key: "status", Header: "Status", Value: func(c issuance.IDCard) string { return string(c.Status) }},
	},
	Search: []fsp.Field[issuance.IDCard]{
		func(c issuance.IDCard) string { return c.ID },
		func(c issuance.IDCard) string { return c.EmployeeID },
		func(c issuance.IDCard) string { return c.EmployeeName },
	},
	Exact: map[fsp.Dimension]fsp.Field[issuance.IDCard]{
		fsp.DimensionProject:     func(c issuance.IDCard) string { return strings.TrimSpace(c.ProjectName) },
		fsp.DimensionDesignation: func(c issuance.IDCard) string { return strings.TrimSpace(c.Designation) },
		fsp.DimensionStatus:      func(c issuance.IDCard) string { return string(c.Status) },
	},
	Date:      func(c issuance.IDCard) (time.Time, bool) { return c.IssuedAt, !c.IssuedAt.IsZero() },
	Project:   func(c issuance.IDCard) string { return c.ProjectName },
	Employee:  func(c issuance.IDCard) string { return c.EmployeeID },
	ID:        func(c issuance.IDCard) string { return c.ID },
	Status:    func(c issuance.IDCard) string { return string(c.Status) },
	SetStatus: func(c *issuance.IDCard, status string) { c.Status = issuance.ParseStatus(status) },
	Resource:  hrapi.ResourceIDCard,
	Actions:   issuanceActions,
}

// ========================================
// EMPLOYEE MONTHLY
// ========================================

func monthlySummaryCompanion(body []byte) CompanionResult {
	s, kind := normalize.MonthlySummary(body)
	if kind != normalize.KindOK {
		return CompanionResult{Kind: kind}
	}
	return CompanionResult{
		Kind: kind,
		Figures: []report.Figure{
			{Label: "Working Days", Value: metrics.FormatDays(s.TotalDays)},
			{Label: "Present Days", Value: metrics.FormatDays(s.PresentDays)},
			{Label: "Absent Days", Value: metrics.FormatDays(s.AbsentDays)},
			{Label: "Half Days", Value: metrics.FormatDays(s.HalfDays)},
			{Label: "Leave Days", Value: metrics.FormatDays(s.LeaveDays)},
			{Label: "Late Days", Value: metrics.FormatDays(s.LateDays)},
			{Label: "Attendance Rate", Value: metrics.FormatRate(s.AttendanceRate)},
		},
	}
}

func leaveHistoryCompanion(body []byte) CompanionResult {
	res := normalize.LeaveHistory(body)
	return CompanionResult{Kind: res.Kind, Table: tableOf(leaveHistoryReport, "Leave History", res.Records)}
}

func leaveBalanceCompanion(body []byte) CompanionResult {
	res := normalize.LeaveBalance(body)
	table := tableOf(leaveBalanceReport, "Leave Balance", res.Records)
	if res.Kind == normalize.KindOK {
		b := res.Balance
		table.Rows = append(table.Rows, []string{
			"Total",
			metrics.FormatDays(b.TotalAllocated),
			metrics.FormatDays(b.TotalUsed),
			metrics.FormatDays(b.TotalPending),
			metrics.FormatDays(b.TotalRemaining),
			"",
		})
	}
	return CompanionResult{Kind: res.Kind, Table: table}
}

var employeeMonthlyReport = &Definition[attendance.Record]{
	Key:           report.KeyEmployeeMonthly,
	Title:         "Employee Monthly Report",
	FileName:      "employee_monthly_report",
	SheetName:     "Attendance",
	PageSize:      15,
	NeedsEmployee: true,
	Endpoint: func(s Scope) hrapi.Endpoint {
		return hrapi.MonthlyEmployeeAttendance(s.EmployeeID, s.Month, s.Year)
	},
	Normalize: normalize.Attendance,
	Columns:   attendanceColumns(false),
	Search: []fsp.Field[attendance.Record]{
		func(r attendance.Record) string { return metrics.FormatDate(r.Date) },
		func(r attendance.Record) string { return r.Status.Label() },
	},
	Exact: map[fsp.Dimension]fsp.Field[attendance.Record]{
		fsp.DimensionStatus: func(r attendance.Record) string { return r.Status.Label() },
	},
	Date:   attendanceDate,
	ID:     attendance.Record.Key,
	Status: func(r attendance.Record) string { return r.Status.Label() },
	Companions: []Companion{
		{
			Name: "Monthly Summary",
			Endpoint: func(s Scope) hrapi.Endpoint {
				return hrapi.MonthlySummary(s.EmployeeID, s.Month, s.Year)
			},
			Render: monthlySummaryCompanion,
		},
		{
			Name:     "Leave History",
			Endpoint: func(s Scope) hrapi.Endpoint { return hrapi.LeaveHistory(s.EmployeeID) },
			Render:   leaveHistoryCompanion,
			Exported: true,
		},
		{
			Name:     "Leave Balance",
			Endpoint: func(s Scope) hrapi.Endpoint { return hrapi.LeaveBalance(s.EmployeeID) },
			Render:   leaveBalanceCompanion,
			Exported: true,
		},
	},
}

// ========================================
// HELPERS
// ========================================

func tableOf[T any](d *Definition[T], name string, records []T) *export.Table {
	t := &export.Table{Name: name, Headers: d.headers(), Rows: make([][]string, len(records))}
	for i, r := range records {
		t.Rows[i] = d.cells(r)
	}
	return t
}

// dateOrRaw renders a parsed date in long form, the source text when it did not parse,
// and N/A when there was none.
func dateOrRaw(t time.Time, raw string) string {
	if t.IsZero() {
		return metrics.OrNA(raw)
	}
	return metrics.FormatDate(t)
}

func isoDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(report.DateLayout)
}

// sortableNumber left-pads a numeric string so it orders correctly as text.
// Non-numeric values sort first.
func sortableNumber(s string) string {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return ""
	}
	return sortableFloat(v)
}

// sortableFloat renders v so that text order matches numeric order. Negative
// values are shifted by negativeBias under a lower prefix.
func sortableFloat(v float64) string {
	if v >= 0 {
		return "1" + fmt.Sprintf("%020.4f", v)
	}
	return "0" + fmt.Sprintf("%020.4f", max(negativeBias+v, 0))
}

const negativeBias = 1e12

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

func sameText(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
