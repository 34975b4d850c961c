package report

import "errors"

var (
	ErrInvalidMonth      = errors.New("month must be between 1 and 12")
	ErrInvalidYear       = errors.New("year must be a valid year")
	ErrInvalidDateRange  = errors.New("date_to must not be before date_from")
	ErrUnknownReport     = errors.New("unknown report")
	ErrReportNotAllowed  = errors.New("report is not available for this role")
	ErrViewNotFound      = errors.New("view not found")
	ErrRecordNotFound    = errors.New("record not found in view")
	ErrUnknownSortKey    = errors.New("unknown sort key")
	ErrUnknownFilter     = errors.New("unknown filter")
	ErrUpstreamFailed    = errors.New("failed to load data from the HR service")
	ErrMalformedResponse = errors.New("unexpected response shape from the HR service")
	ErrRefreshSuperseded = errors.New("refresh superseded by a newer one")
	ErrArchiveDisabled   = errors.New("export archive is not configured")
)
