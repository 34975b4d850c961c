package fsp

import (
	"sort"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-report-go/internal/pkg/metrics"
)

const DefaultPageSize = 15

// Field renders the value of a record used for search, matching or sorting.
type Field[T any] func(T) string

// Schema declares which fields of T take part in each stage.
type Schema[T any] struct {
	Search []Field[T]
	Exact  map[Dimension]Field[T]
	// Date returns the record's calendar day; false when the record has none.
	Date     func(T) (time.Time, bool)
	Sort     map[string]Field[T]
	PageSize int
}

func (s Schema[T]) pageSize() int {
	if s.PageSize <= 0 {
		return DefaultPageSize
	}
	return s.PageSize
}

// SortKeys lists the keys accepted by ToggleSort for this schema.
func (s Schema[T]) SortKeys() []string {
	keys := make([]string, 0, len(s.Sort))
	for k := range s.Sort {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Page is the output of one pipeline run. FilteredAll is what exports read.
type Page[T any] struct {
	Rows        []T
	FilteredAll []T
	TotalPages  int
	CurrentPage int
	TotalCount  int
	PageSize    int
}

// Apply runs filter, sort and paginate in that order.
func Apply[T any](records []T, s Schema[T], f FilterState) Page[T] {
	filtered := Sort(Filter(records, s, f), s, f)
	rows, totalPages, current := Paginate(filtered, s.pageSize(), f.CurrentPage)
	return Page[T]{
		Rows:        rows,
		FilteredAll: filtered,
		TotalPages:  totalPages,
		CurrentPage: current,
		TotalCount:  len(filtered),
		PageSize:    s.pageSize(),
	}
}

// Filter keeps the records satisfying every active predicate. Input order is preserved.
func Filter[T any](records []T, s Schema[T], f FilterState) []T {
	needle := strings.ToLower(strings.TrimSpace(f.SearchText))
	out := make([]T, 0, len(records))
	for _, r := range records {
		if needle != "" && !matchesSearch(r, s.Search, needle) {
			continue
		}
		if !matchesExact(r, s.Exact, f) {
			continue
		}
		if s.Date != nil && f.HasDateRange() && !inRange(r, s.Date, f.DateFrom, f.DateTo) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func matchesSearch[T any](r T, fields []Field[T], needle string) bool {
	for _, field := range fields {
		if strings.Contains(strings.ToLower(field(r)), needle) {
			return true
		}
	}
	return false
}

func matchesExact[T any](r T, fields map[Dimension]Field[T], f FilterState) bool {
	for dim, field := range fields {
		want := f.Exact(dim)
		if want == "" {
			continue
		}
		if field(r) != want {
			return false
		}
	}
	return true
}

func inRange[T any](r T, date func(T) (time.Time, bool), from, to time.Time) bool {
	d, ok := date(r)
	if !ok {
		return false
	}
	d = metrics.TruncateDay(d)
	if !from.IsZero() && d.Before(from) {
		return false
	}
	if !to.IsZero() && d.After(to) {
		return false
	}
	return true
}

// Sort returns a stably sorted copy ordered by the active sort key, compared
// case-insensitively. Unknown or empty keys leave the order untouched.
func Sort[T any](records []T, s Schema[T], f FilterState) []T {
	out := make([]T, len(records))
	copy(out, records)

	field, ok := s.Sort[f.SortKey]
	if f.SortKey == "" || !ok {
		return out
	}

	keys := make([]string, len(out))
	for i, r := range out {
		keys[i] = strings.ToLower(field(r))
	}
	idx := make([]int, len(out))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		if f.SortDirection == Desc {
			return keys[idx[a]] > keys[idx[b]]
		}
		return keys[idx[a]] < keys[idx[b]]
	})

	sorted := make([]T, len(out))
	for i, j := range idx {
		sorted[i] = out[j]
	}
	return sorted
}

// Paginate slices one page. totalPages is at least 1 and page is clamped to [1, totalPages].
func Paginate[T any](records []T, pageSize, page int) ([]T, int, int) {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	totalPages := (len(records) + pageSize - 1) / pageSize
	if totalPages < 1 {
		totalPages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	start := (page - 1) * pageSize
	if start >= len(records) {
		return []T{}, totalPages, page
	}
	end := min(start+pageSize, len(records))
	rows := make([]T, end-start)
	copy(rows, records[start:end])
	return rows, totalPages, page
}

// Distinct lists the non-blank values of field, sorted, for populating a dropdown.
func Distinct[T any](records []T, field Field[T]) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, r := range records {
		v := strings.TrimSpace(field(r))
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
