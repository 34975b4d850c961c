package report

import (
	"time"

	"github.com/cmlabs-hris/hris-report-go/internal/domain/action"
	"github.com/cmlabs-hris/hris-report-go/internal/domain/report"
	"github.com/cmlabs-hris/hris-report-go/internal/pkg/export"
	"github.com/cmlabs-hris/hris-report-go/internal/pkg/fsp"
	"github.com/cmlabs-hris/hris-report-go/internal/pkg/hrapi"
	"github.com/cmlabs-hris/hris-report-go/internal/pkg/normalize"
)

// Column maps one record field onto a table column.
type Column[T any] struct {
	Key    string
	Header string
	Value  func(T) string
	// SortValue orders the column when the display text does not sort, e.g. long-form dates
	SortValue func(T) string
	NoSort    bool
}

// CompanionResult is what a companion section contributes to a view.
type CompanionResult struct {
	Kind    normalize.Kind
	Table   *export.Table
	Figures []report.Figure
}

// Companion is an extra fetch loaded in parallel with the main collection.
type Companion struct {
	Name     string
	Endpoint func(Scope) hrapi.Endpoint
	Render   func(body []byte) CompanionResult
	// Exported companions are appended to exports after the main table
	Exported bool
}

// Definition parameterizes one report over its canonical record type.
type Definition[T any] struct {
	Key       report.Key
	Title     string
	FileName  string
	SheetName string
	PageSize  int

	NeedsEmployee bool

	Endpoint  func(Scope) hrapi.Endpoint
	Normalize func([]byte) normalize.Result[T]
	Columns   []Column[T]

	Search []fsp.Field[T]
	Exact  map[fsp.Dimension]fsp.Field[T]
	Date   func(T) (time.Time, bool)

	// Project and Employee restrict the collection to the scope; nil disables the restriction
	Project  func(T) string
	Employee func(T) string

	ID        func(T) string
	Status    func(T) string
	SetStatus func(*T, string)
	Resource  hrapi.Resource
	Actions   []action.Kind

	Companions []Companion
	// Summary derives figures from the whole collection
	Summary func([]T) []report.Figure
	// BodyFigures reads figures the API serves next to the collection, e.g. totals
	BodyFigures func(body []byte) []report.Figure
}

func (d *Definition[T]) schema(pageSize int) fsp.Schema[T] {
	sorts := make(map[string]fsp.Field[T], len(d.Columns))
	for _, c := range d.Columns {
		if c.NoSort {
			continue
		}
		if c.SortValue != nil {
			sorts[c.Key] = c.SortValue
		} else {
			sorts[c.Key] = c.Value
		}
	}
	return fsp.Schema[T]{
		Search:   d.Search,
		Exact:    d.Exact,
		Date:     d.Date,
		Sort:     sorts,
		PageSize: pageSize,
	}
}

func (d *Definition[T]) columns() []report.Column {
	cols := make([]report.Column, len(d.Columns))
	for i, c := range d.Columns {
		cols[i] = report.Column{Key: c.Key, Header: c.Header, Sortable: !c.NoSort}
	}
	return cols
}

func (d *Definition[T]) headers() []string {
	headers := make([]string, len(d.Columns))
	for i, c := range d.Columns {
		headers[i] = c.Header
	}
	return headers
}

func (d *Definition[T]) cells(r T) []string {
	cells := make([]string, len(d.Columns))
	for i, c := range d.Columns {
		cells[i] = c.Value(r)
	}
	return cells
}

func (d *Definition[T]) filterNames() []string {
	names := []string{"search"}
	for _, dim := range []fsp.Dimension{fsp.DimensionProject, fsp.DimensionDesignation, fsp.DimensionStatus} {
		if _, ok := d.Exact[dim]; ok {
			names = append(names, string(dim))
		}
	}
	if d.Date != nil {
		names = append(names, "date_from", "date_to")
	}
	return names
}

func (d *Definition[T]) supports(kind action.Kind) bool {
	for _, k := range d.Actions {
		if k == kind {
			return true
		}
	}
	return false
}

func (d *Definition[T]) info(pageSize int, canApprove bool) report.Info {
	info := report.Info{
		Key:      d.Key,
		Title:    d.Title,
		Filters:  d.filterNames(),
		SortKeys: d.schema(pageSize).SortKeys(),
		PageSize: pageSize,
	}
	if canApprove {
		for _, k := range d.Actions {
			info.Actions = append(info.Actions, string(k))
		}
	}
	if d.NeedsEmployee {
		info.Requires = append(info.Requires, "employee_id")
	}
	return info
}

// restrict drops records outside the scope without reordering.
func (d *Definition[T]) restrict(records []T, scope Scope) []T {
	byProject := d.Project != nil && scope.restrictsProject()
	byEmployee := d.Employee != nil && scope.restrictsEmployee()
	if !byProject && !byEmployee {
		return records
	}

	out := make([]T, 0, len(records))
	for _, r := range records {
		if byProject && !sameText(d.Project(r), scope.ProjectName) {
			continue
		}
		if byEmployee && d.Employee(r) != scope.EmployeeID {
			continue
		}
		out = append(out, r)
	}
	return out
}
