package action

import "errors"

const FallbackErrorMessage = "Something went wrong. Please try again."

var (
	ErrActionInFlight     = errors.New("action already in progress for this record")
	ErrActionNotSupported = errors.New("action not supported for this report")
	ErrActionFailed       = errors.New("action failed")
	ErrNotPermitted       = errors.New("role is not permitted to perform actions")
	ErrAuditDisabled      = errors.New("action audit trail is not configured")
)

// FailureError carries the error toast of a failed action.
type FailureError struct {
	Toast Toast
	Err   error
}

func (e *FailureError) Error() string {
	return e.Toast.Message
}

func (e *FailureError) Unwrap() []error {
	return []error{ErrActionFailed, e.Err}
}
