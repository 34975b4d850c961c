package action

import (
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-report-go/internal/pkg/validator"
)

type Kind string

const (
	KindApprove Kind = "approve"
	KindReject  Kind = "reject"
	KindIssue   Kind = "issue"
)

func ParseKind(s string) (Kind, bool) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case KindApprove:
		return KindApprove, true
	case KindReject:
		return KindReject, true
	case KindIssue:
		return KindIssue, true
	}
	return "", false
}

// TargetStatus is the status label a record carries after a successful action.
func (k Kind) TargetStatus() string {
	switch k {
	case KindApprove:
		return "Approved"
	case KindReject:
		return "Rejected"
	case KindIssue:
		return "Issued"
	}
	return ""
}

// RequiresReason reports whether the action must carry a non-blank reason.
func (k Kind) RequiresReason() bool {
	return k == KindReject
}

// SubmitRequest asks for one status transition of one record in a view.
type SubmitRequest struct {
	ViewID   string `json:"-"`
	RecordID string `json:"-"`
	Kind     Kind   `json:"-"`
	Reason   string `json:"reason"`
}

func (r *SubmitRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.RecordID) {
		errs = append(errs, validator.ValidationError{
			Field:   "record_id",
			Message: "record_id is required",
		})
	}

	if _, ok := ParseKind(string(r.Kind)); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "action",
			Message: "action must be one of approve, reject, issue",
		})
	}

	if r.Kind.RequiresReason() && validator.IsEmpty(r.Reason) {
		errs = append(errs, validator.ValidationError{
			Field:   "reason",
			Message: "reason is required to reject",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type ToastLevel string

const (
	ToastSuccess ToastLevel = "success"
	ToastError   ToastLevel = "error"
)

// Toast is a transient notification about an action outcome.
type Toast struct {
	ID        string     `json:"id"`
	Level     ToastLevel `json:"level"`
	Message   string     `json:"message"`
	RecordID  string     `json:"record_id"`
	Action    Kind       `json:"action"`
	CreatedAt time.Time  `json:"created_at"`
}

// Result is returned to the caller once the action settled.
type Result struct {
	RecordID string `json:"record_id"`
	Action   Kind   `json:"action"`
	Status   string `json:"status,omitempty"`
	Toast    Toast  `json:"toast"`
}

// AuditEntry is one recorded action outcome.
type AuditEntry struct {
	ID         string    `json:"id"`
	ViewID     string    `json:"view_id"`
	Report     string    `json:"report"`
	RecordID   string    `json:"record_id"`
	Action     Kind      `json:"action"`
	Role       string    `json:"role"`
	EmployeeID string    `json:"employee_id"`
	Succeeded  bool      `json:"succeeded"`
	Message    string    `json:"message"`
	CreatedAt  time.Time `json:"created_at"`
}
