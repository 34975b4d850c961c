package employee

import (
	"strings"
	"time"
)

type KYCStatus string

const (
	KYCStatusPending  KYCStatus = "Pending"
	KYCStatusApproved KYCStatus = "Approved"
	KYCStatusRejected KYCStatus = "Rejected"
)

// ParseKYCStatus normalizes KYC statuses. Unknown values stay Pending.
func ParseKYCStatus(s string) KYCStatus {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "approved", "approve", "verified":
		return KYCStatusApproved
	case "rejected", "reject":
		return KYCStatusRejected
	}
	return KYCStatusPending
}

// Employee is one entry of the KYC-backed employee directory.
type Employee struct {
	EmployeeID  string
	FullName    string
	Designation string
	ProjectName string
	Email       string
	Phone       string
	KYCStatus   KYCStatus

	SubmittedAt    time.Time
	RawSubmittedAt string
}

// JoinName builds a display name from its parts, skipping blanks.
func JoinName(parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " ")
}
