package leave

import (
	"strings"
	"time"
)

// Type is a leave category. Known codes are normalized; anything else keeps its source text.
type Type string

const (
	TypeEarned  Type = "EL"
	TypeSick    Type = "SL"
	TypeCasual  Type = "CL"
	TypeCompOff Type = "CompOff"
)

func ParseType(s string) Type {
	trimmed := strings.TrimSpace(s)
	key := strings.NewReplacer("-", "", "_", "", " ", "").Replace(strings.ToLower(trimmed))
	switch key {
	case "el", "earnedleave", "earned", "privilegeleave", "pl":
		return TypeEarned
	case "sl", "sickleave", "sick":
		return TypeSick
	case "cl", "casualleave", "casual":
		return TypeCasual
	case "compoff", "compensatoryoff", "co":
		return TypeCompOff
	}
	return Type(trimmed)
}

// IsKnown reports whether t is one of the standard leave codes
func (t Type) IsKnown() bool {
	switch t {
	case TypeEarned, TypeSick, TypeCasual, TypeCompOff:
		return true
	}
	return false
}

type Status string

const (
	StatusPending  Status = "Pending"
	StatusApproved Status = "Approved"
	StatusRejected Status = "Rejected"
)

// ParseStatus normalizes leave statuses. Unknown values stay Pending.
func ParseStatus(s string) Status {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "approved", "approve", "accepted":
		return StatusApproved
	case "rejected", "reject", "declined":
		return StatusRejected
	}
	return StatusPending
}

// IsFinal reports whether the status can no longer transition
func (s Status) IsFinal() bool {
	return s == StatusApproved || s == StatusRejected
}

// Record is one leave application.
type Record struct {
	LeaveID      string
	EmployeeID   string
	EmployeeName string
	ProjectName  string
	LeaveType    Type

	StartDate    time.Time
	EndDate      time.Time
	RawStartDate string
	RawEndDate   string

	// NumberOfDays may be fractional (0.5 for a half day); 0 when absent
	NumberOfDays float64
	IsHalfDay    bool

	Status Status
	Reason string
}

// BalanceEntry is the balance of one leave type. All values are taken verbatim from the API.
type BalanceEntry struct {
	EmployeeID string
	LeaveType  Type
	Allocated  float64
	Used       float64
	Remaining  float64
	Pending    float64
}

// Key identifies a balance entry within one fetch cycle
func (e BalanceEntry) Key() string {
	return e.EmployeeID + "/" + string(e.LeaveType)
}

// Balance is the leave balance of one employee.
type Balance struct {
	EmployeeID     string
	Entries        []BalanceEntry
	TotalAllocated float64
	TotalUsed      float64
	TotalRemaining float64
	TotalPending   float64
}
