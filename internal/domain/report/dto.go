package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-report-go/internal/pkg/fsp"
	"github.com/cmlabs-hris/hris-report-go/internal/pkg/validator"
)

type Key string

const (
	KeyAttendance      Key = "attendance"
	KeyLeaveRequests   Key = "leave-requests"
	KeyLeaveHistory    Key = "leave-history"
	KeyLeaveBalance    Key = "leave-balance"
	KeyRegularizations Key = "regularizations"
	KeyKYC             Key = "kyc"
	KeyUniforms        Key = "uniforms"
	KeyIDCards         Key = "id-cards"
	KeyEmployeeMonthly Key = "employee-monthly"
)

// LoadState is the lifecycle of a view's collection.
type LoadState string

const (
	StateIdle      LoadState = "idle"
	StateLoading   LoadState = "loading"
	StateReady     LoadState = "ready"
	StateEmpty     LoadState = "empty"
	StateMalformed LoadState = "malformed"
	StateFailed    LoadState = "failed"
)

const DateLayout = "2006-01-02"

// ========================================
// REQUESTS
// ========================================

// ScopeParams selects whose records a report covers.
type ScopeParams struct {
	EmployeeID  string `json:"employee_id,omitempty"`
	ProjectName string `json:"project_name,omitempty"`
	Month       int    `json:"month,omitempty"`
	Year        int    `json:"year,omitempty"`
}

func (p ScopeParams) validate(errs validator.ValidationErrors) validator.ValidationErrors {
	if p.Month != 0 && !validator.IsValidMonth(p.Month) {
		errs = append(errs, validator.ValidationError{
			Field:   "month",
			Message: "month must be between 1 and 12",
		})
	}
	if p.Year != 0 && !validator.IsValidYear(p.Year) {
		errs = append(errs, validator.ValidationError{
			Field:   "year",
			Message: fmt.Sprintf("year must be between 2020 and %d", time.Now().Year()+1),
		})
	}
	return errs
}

type CreateViewRequest struct {
	Report Key `json:"report"`
	ScopeParams
}

func (r *CreateViewRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(string(r.Report)) {
		errs = append(errs, validator.ValidationError{
			Field:   "report",
			Message: "report is required",
		})
	}
	errs = r.ScopeParams.validate(errs)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// FilterUpdate changes only the fields that are set.
type FilterUpdate struct {
	Search      *string `json:"search,omitempty"`
	Project     *string `json:"project,omitempty"`
	Designation *string `json:"designation,omitempty"`
	Status      *string `json:"status,omitempty"`
	DateFrom    *string `json:"date_from,omitempty"`
	DateTo      *string `json:"date_to,omitempty"`
}

func (r *FilterUpdate) Validate() error {
	var errs validator.ValidationErrors
	errs = validateDate(errs, "date_from", r.DateFrom)
	errs = validateDate(errs, "date_to", r.DateTo)

	if len(errs) == 0 && r.DateFrom != nil && r.DateTo != nil && *r.DateFrom != "" && *r.DateTo != "" {
		from, _ := validator.IsValidDate(*r.DateFrom)
		to, _ := validator.IsValidDate(*r.DateTo)
		if to.Before(from) {
			errs = append(errs, validator.ValidationError{
				Field:   "date_to",
				Message: "date_to must not be before date_from",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// DateBounds parses the date range; an empty or unset bound is zero.
func (r *FilterUpdate) DateBounds() (from, to time.Time) {
	if r.DateFrom != nil && *r.DateFrom != "" {
		from, _ = validator.IsValidDate(*r.DateFrom)
	}
	if r.DateTo != nil && *r.DateTo != "" {
		to, _ = validator.IsValidDate(*r.DateTo)
	}
	return from, to
}

// HasDateRange reports whether either bound was sent.
func (r *FilterUpdate) HasDateRange() bool {
	return r.DateFrom != nil || r.DateTo != nil
}

func validateDate(errs validator.ValidationErrors, field string, v *string) validator.ValidationErrors {
	if v == nil || *v == "" {
		return errs
	}
	if _, ok := validator.IsValidDate(*v); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   field,
			Message: field + " must be in YYYY-MM-DD format",
		})
	}
	return errs
}

type SortRequest struct {
	Key string `json:"key"`
}

type PageRequest struct {
	Page int `json:"page"`
}

func (r *PageRequest) Validate() error {
	if r.Page < 1 {
		return validator.ValidationErrors{{Field: "page", Message: "page must be at least 1"}}
	}
	return nil
}

// QueryRequest is a one-shot report query: scope, filters, sort and page together.
type QueryRequest struct {
	ScopeParams
	Filters   FilterUpdate
	SortKey   string
	Direction fsp.Direction
	Page      int
}

func (r *QueryRequest) Validate() error {
	var errs validator.ValidationErrors
	errs = r.ScopeParams.validate(errs)

	if err := r.Filters.Validate(); err != nil {
		if ve, ok := err.(validator.ValidationErrors); ok {
			errs = append(errs, ve...)
		}
	}

	switch r.Direction {
	case "", fsp.Asc, fsp.Desc:
	default:
		errs = append(errs, validator.ValidationError{
			Field:   "dir",
			Message: "dir must be asc or desc",
		})
	}

	if r.Page < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "page",
			Message: "page must be at least 1",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ========================================
// RESPONSES
// ========================================

type Column struct {
	Key      string `json:"key"`
	Header   string `json:"header"`
	Sortable bool   `json:"sortable"`
}

type Row struct {
	ID     string   `json:"id"`
	Status string   `json:"status,omitempty"`
	Cells  []string `json:"cells"`
	// Pending lists the actions disabled while an action on this record is in flight
	Pending []string `json:"pending,omitempty"`
}

type Figure struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Section is a companion table shown below the main one.
type Section struct {
	Name    string     `json:"name"`
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
	State   LoadState  `json:"state"`
	Error   string     `json:"error,omitempty"`
}

type Snapshot struct {
	ID            string              `json:"id,omitempty"`
	Report        Key                 `json:"report"`
	Title         string              `json:"title"`
	State         LoadState           `json:"state"`
	Error         string              `json:"error,omitempty"`
	Filters       fsp.FilterState     `json:"filters"`
	FilterOptions map[string][]string `json:"filter_options,omitempty"`
	Columns       []Column            `json:"columns"`
	Rows          []Row               `json:"rows"`
	CurrentPage   int                 `json:"current_page"`
	TotalPages    int                 `json:"total_pages"`
	TotalItems    int                 `json:"total_items"`
	PageSize      int                 `json:"page_size"`
	Summary       []Figure            `json:"summary,omitempty"`
	Sections      []Section           `json:"sections,omitempty"`
	Actions       []string            `json:"actions,omitempty"`
	Generation    uint64              `json:"generation"`
	LoadedAt      *time.Time          `json:"loaded_at,omitempty"`
}

// Info describes a report in the catalog.
type Info struct {
	Key      Key      `json:"key"`
	Title    string   `json:"title"`
	Filters  []string `json:"filters"`
	SortKeys []string `json:"sort_keys"`
	Actions  []string `json:"actions,omitempty"`
	Requires []string `json:"requires,omitempty"`
	PageSize int      `json:"page_size"`
}

// Artifact is a rendered export.
type Artifact struct {
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
	Data        []byte `json:"-"`
	RowCount    int    `json:"row_count"`
	ArchiveKey  string `json:"archive_key,omitempty"`
	ArchiveURL  string `json:"archive_url,omitempty"`
}

// ParseKey accepts a report key in any letter case.
func ParseKey(s string) Key {
	return Key(strings.ToLower(strings.TrimSpace(s)))
}
