package issuance

import (
	"strings"
	"time"
)

// Status is shared by uniform requests and ID cards.
type Status string

const (
	StatusPending  Status = "Pending"
	StatusApproved Status = "Approved"
	StatusIssued   Status = "Issued"
	StatusRejected Status = "Rejected"
)

// ParseStatus normalizes issuance statuses. Unknown values stay Pending.
func ParseStatus(s string) Status {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "approved", "approve":
		return StatusApproved
	case "issued", "issue", "delivered", "distributed":
		return StatusIssued
	case "rejected", "reject", "declined":
		return StatusRejected
	}
	return StatusPending
}

// UniformRequest is an employee's request for uniform items.
type UniformRequest struct {
	ID           string
	EmployeeID   string
	EmployeeName string
	Designation  string
	ProjectName  string
	Items        []string
	Status       Status

	RequestedAt    time.Time
	RawRequestedAt string
}

// IDCard is the issuance record of an employee identity card.
type IDCard struct {
	ID           string
	EmployeeID   string
	EmployeeName string
	Designation  string
	ProjectName  string
	Status       Status

	IssuedAt    time.Time
	RawIssuedAt string
	ValidUntil  time.Time
	RawValidTil string
}
