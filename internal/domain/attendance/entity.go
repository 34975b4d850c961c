package attendance

import (
	"strings"
	"time"
)

type Status string

const (
	StatusPresent  Status = "Present"
	StatusAbsent   Status = "Absent"
	StatusHalfDay  Status = "HalfDay"
	StatusOnLeave  Status = "OnLeave"
	StatusUnmarked Status = "Unmarked"
)

// ParseStatus normalizes the many spellings the HR API uses. Unknown values map to Unmarked.
func ParseStatus(s string) Status {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.NewReplacer("-", "", "_", "", " ", "").Replace(key)
	switch key {
	case "present", "p":
		return StatusPresent
	case "absent", "a":
		return StatusAbsent
	case "halfday", "hd":
		return StatusHalfDay
	case "onleave", "leave", "l":
		return StatusOnLeave
	}
	return StatusUnmarked
}

// Label is the on-screen rendering of a status
func (s Status) Label() string {
	switch s {
	case StatusHalfDay:
		return "Half Day"
	case StatusOnLeave:
		return "On Leave"
	case "":
		return string(StatusUnmarked)
	}
	return string(s)
}

// Record is one employee-day of attendance.
type Record struct {
	EmployeeID   string
	EmployeeName string
	Designation  string
	ProjectName  string

	// Date is truncated to the calendar day; zero when the source date did not parse
	Date    time.Time
	RawDate string

	// PunchIn/PunchOut keep the source timestamp text; empty means not punched
	PunchIn  string
	PunchOut string

	Status Status
	IsLate bool

	// Derived
	HoursWorked string
	DayType     string
}

// Key identifies a record within one fetch cycle
func (r Record) Key() string {
	if r.Date.IsZero() {
		return r.EmployeeID + "@" + r.RawDate
	}
	return r.EmployeeID + "@" + r.Date.Format("2006-01-02")
}

type RequestStatus string

const (
	RequestStatusPending  RequestStatus = "Pending"
	RequestStatusApproved RequestStatus = "Approved"
	RequestStatusRejected RequestStatus = "Rejected"
)

// ParseRequestStatus normalizes regularization statuses. Unknown values stay Pending.
func ParseRequestStatus(s string) RequestStatus {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "approved", "approve", "accepted":
		return RequestStatusApproved
	case "rejected", "reject", "declined":
		return RequestStatusRejected
	}
	return RequestStatusPending
}

// Regularization is an employee's request to correct a missed or wrong punch.
type Regularization struct {
	ID           string
	EmployeeID   string
	EmployeeName string
	ProjectName  string

	Date    time.Time
	RawDate string

	RequestedIn  string
	RequestedOut string
	Reason       string
	Status       RequestStatus
}

// MonthlySummary is the per-employee monthly aggregate served by the HR API.
type MonthlySummary struct {
	EmployeeID     string
	Month          int
	Year           int
	TotalDays      float64
	PresentDays    float64
	AbsentDays     float64
	HalfDays       float64
	LeaveDays      float64
	LateDays       float64
	AttendanceRate string  // as served, e.g. "82%"
	RateValue      float64 // parsed for charts, 0 when absent or malformed
}
