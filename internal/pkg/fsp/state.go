// Package fsp implements the filter, sort and paginate pipeline applied to a
// canonical record collection before it is rendered or exported.
package fsp

import (
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-report-go/internal/pkg/metrics"
)

// Dimension names an exact-match dropdown filter.
type Dimension string

const (
	DimensionProject     Dimension = "project"
	DimensionDesignation Dimension = "designation"
	DimensionStatus      Dimension = "status"
)

func ParseDimension(s string) (Dimension, bool) {
	switch Dimension(strings.ToLower(strings.TrimSpace(s))) {
	case DimensionProject:
		return DimensionProject, true
	case DimensionDesignation:
		return DimensionDesignation, true
	case DimensionStatus:
		return DimensionStatus, true
	}
	return "", false
}

type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// FilterState is owned by exactly one view. Any change to search, filters or sort
// sends the view back to page 1.
type FilterState struct {
	SearchText    string    `json:"search_text"`
	Project       string    `json:"project"`
	Designation   string    `json:"designation"`
	Status        string    `json:"status"`
	DateFrom      time.Time `json:"date_from,omitzero"`
	DateTo        time.Time `json:"date_to,omitzero"`
	SortKey       string    `json:"sort_key,omitempty"`
	SortDirection Direction `json:"sort_direction,omitempty"`
	CurrentPage   int       `json:"current_page"`
}

func NewFilterState() FilterState {
	return FilterState{CurrentPage: 1}
}

// IsAll reports whether a dropdown value is the inactive "All ..." choice.
func IsAll(v string) bool {
	v = strings.ToLower(strings.TrimSpace(v))
	return v == "" || v == "all" || strings.HasPrefix(v, "all ")
}

func normalizeExact(v string) string {
	if IsAll(v) {
		return ""
	}
	return strings.TrimSpace(v)
}

// SetSearch reports whether the search text changed.
func (f *FilterState) SetSearch(text string) bool {
	if f.SearchText == text {
		return false
	}
	f.SearchText = text
	f.resetPage()
	return true
}

// SetExact sets one dropdown filter. Unknown dimensions are ignored.
func (f *FilterState) SetExact(dim Dimension, value string) bool {
	target := f.exactField(dim)
	if target == nil {
		return false
	}
	value = normalizeExact(value)
	if *target == value {
		return false
	}
	*target = value
	f.resetPage()
	return true
}

// Exact returns the active value of a dropdown filter, "" when inactive.
func (f FilterState) Exact(dim Dimension) string {
	if p := f.exactField(dim); p != nil {
		return *p
	}
	return ""
}

func (f *FilterState) exactField(dim Dimension) *string {
	switch dim {
	case DimensionProject:
		return &f.Project
	case DimensionDesignation:
		return &f.Designation
	case DimensionStatus:
		return &f.Status
	}
	return nil
}

// SetDateRange sets both bounds; a zero bound is unconstrained. Bounds are truncated to the day.
func (f *FilterState) SetDateRange(from, to time.Time) bool {
	if !from.IsZero() {
		from = metrics.TruncateDay(from)
	}
	if !to.IsZero() {
		to = metrics.TruncateDay(to)
	}
	if f.DateFrom.Equal(from) && f.DateTo.Equal(to) {
		return false
	}
	f.DateFrom, f.DateTo = from, to
	f.resetPage()
	return true
}

// ToggleSort flips the direction when key is already active, otherwise sorts ascending by key.
// An empty key clears the sort.
func (f *FilterState) ToggleSort(key string) {
	switch {
	case key == "":
		f.SortKey, f.SortDirection = "", ""
	case f.SortKey == key && f.SortDirection == Asc:
		f.SortDirection = Desc
	case f.SortKey == key:
		f.SortDirection = Asc
	default:
		f.SortKey, f.SortDirection = key, Asc
	}
	f.resetPage()
}

// SetPage requests a page. It is clamped against the filtered count when applied.
func (f *FilterState) SetPage(n int) {
	if n < 1 {
		n = 1
	}
	f.CurrentPage = n
}

func (f *FilterState) resetPage() {
	f.CurrentPage = 1
}

// HasDateRange reports whether either date bound is set.
func (f FilterState) HasDateRange() bool {
	return !f.DateFrom.IsZero() || !f.DateTo.IsZero()
}
