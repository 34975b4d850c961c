package attendance

import "errors"

// Attendance domain errors
var (
	ErrRecordNotFound = errors.New("attendance record not found")
	ErrInvalidMonth   = errors.New("month must be between 1 and 12")
	ErrInvalidYear    = errors.New("year must be a valid year")
)
