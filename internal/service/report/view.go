package report

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cmlabs-hris/hris-report-go/internal/domain/action"
	"github.com/cmlabs-hris/hris-report-go/internal/domain/report"
	"github.com/cmlabs-hris/hris-report-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-report-go/internal/pkg/export"
	"github.com/cmlabs-hris/hris-report-go/internal/pkg/fsp"
	"github.com/cmlabs-hris/hris-report-go/internal/pkg/hrapi"
	"github.com/cmlabs-hris/hris-report-go/internal/pkg/normalize"
	"golang.org/x/sync/errgroup"
)

const (
	msgMalformed   = "Unexpected response from the HR service."
	msgUnreachable = "Unable to reach the HR service. Please try again."
	msgTimeout     = "The HR service took too long to respond."
	msgLoadFailed  = "Failed to load data. Please try again."
)

// Fetcher returns the raw body of an HR API endpoint.
type Fetcher interface {
	Fetch(ctx context.Context, ep hrapi.Endpoint) ([]byte, error)
}

// View is one live report page: a collection, its filter state and its load state.
type View interface {
	ID() string
	Key() report.Key
	Owner() user.Principal
	Scope() Scope

	// Refresh re-fetches the collection. A refresh started later wins; the earlier
	// one returns ErrRefreshSuperseded and leaves the view untouched.
	Refresh(ctx context.Context) error

	Filters() fsp.FilterState
	SetSearch(text string) bool
	SetFilter(dim fsp.Dimension, value string) (bool, error)
	SetDateRange(from, to time.Time) (bool, error)
	// CheckFilter and CheckDateRange report what the setters would reject, without mutating
	CheckFilter(dim fsp.Dimension, value string) error
	CheckDateRange(from, to time.Time) error
	ToggleSort(key string) error
	SetPage(n int)

	Snapshot() report.Snapshot
	// Export renders the filtered and sorted collection, ignoring pagination
	Export() export.Document

	Resource() hrapi.Resource
	// Supports reports whether the report accepts kind at all
	Supports(kind action.Kind) bool
	// Actions lists what the owner may do to records of this view
	Actions() []action.Kind
	HasRecord(recordID string) bool
	ApplyStatus(recordID, status string) bool
	BeginAction(recordID string, kind action.Kind) bool
	EndAction(recordID string)

	LastAccess() time.Time
	Close()
}

type companionState struct {
	section report.Section
	table   *export.Table
	figures []report.Figure
}

type loadOutcome[T any] struct {
	result     normalize.Result[T]
	figures    []report.Figure
	companions []companionState
	err        error
}

type view[T any] struct {
	mu sync.Mutex

	id         string
	def        *Definition[T]
	scope      Scope
	owner      user.Principal
	canApprove bool
	schema     fsp.Schema[T]
	fetcher    Fetcher
	logger     *slog.Logger
	now        func() time.Time

	filters    fsp.FilterState
	records    []T
	figures    []report.Figure
	companions []companionState
	state      report.LoadState
	errMsg     string
	loadedAt   time.Time

	generation uint64
	cancel     context.CancelFunc
	closed     bool

	pending    map[string]action.Kind
	lastAccess time.Time
}

type viewOptions struct {
	ID         string
	Scope      Scope
	Owner      user.Principal
	CanApprove bool
	PageSize   int
	Fetcher    Fetcher
	Logger     *slog.Logger
	Now        func() time.Time
}

func newView[T any](def *Definition[T], opts viewOptions) *view[T] {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &view[T]{
		id:         opts.ID,
		def:        def,
		scope:      opts.Scope,
		owner:      opts.Owner,
		canApprove: opts.CanApprove,
		schema:     def.schema(opts.PageSize),
		fetcher:    opts.Fetcher,
		logger:     logger.With("view_id", opts.ID, "report", string(def.Key)),
		now:        now,
		filters:    fsp.NewFilterState(),
		records:    []T{},
		state:      report.StateIdle,
		pending:    make(map[string]action.Kind),
		lastAccess: now(),
	}
}

func (v *view[T]) ID() string            { return v.id }
func (v *view[T]) Key() report.Key       { return v.def.Key }
func (v *view[T]) Owner() user.Principal { return v.owner }
func (v *view[T]) Scope() Scope          { return v.scope }

func (v *view[T]) Resource() hrapi.Resource { return v.def.Resource }

func (v *view[T]) Refresh(ctx context.Context) error {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return report.ErrViewNotFound
	}
	v.generation++
	gen := v.generation
	if v.cancel != nil {
		v.cancel()
	}
	ctx, cancel := context.WithCancel(ctx)
	v.cancel = cancel
	v.state = report.StateLoading
	v.lastAccess = v.now()
	v.mu.Unlock()
	defer cancel()

	if v.owner.BearerToken != "" {
		ctx = hrapi.WithBearer(ctx, v.owner.BearerToken)
	}
	out := v.load(ctx)

	v.mu.Lock()
	defer v.mu.Unlock()
	if gen != v.generation {
		v.logger.Debug("discarded stale response", "generation", gen, "current", v.generation)
		return report.ErrRefreshSuperseded
	}
	v.cancel = nil
	return v.apply(out)
}

func (v *view[T]) load(ctx context.Context) loadOutcome[T] {
	out := loadOutcome[T]{companions: make([]companionState, len(v.def.Companions))}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		body, err := v.fetcher.Fetch(gctx, v.def.Endpoint(v.scope))
		if err != nil {
			return err
		}
		out.result = v.def.Normalize(body)
		if v.def.BodyFigures != nil && out.result.Kind == normalize.KindOK {
			out.figures = v.def.BodyFigures(body)
		}
		return nil
	})
	for i, c := range v.def.Companions {
		g.Go(func() error {
			out.companions[i] = v.loadCompanion(gctx, c)
			return nil
		})
	}
	out.err = g.Wait()
	return out
}

func (v *view[T]) loadCompanion(ctx context.Context, c Companion) companionState {
	cs := companionState{section: report.Section{Name: c.Name, Headers: []string{}, Rows: [][]string{}}}

	body, err := v.fetcher.Fetch(ctx, c.Endpoint(v.scope))
	if err != nil {
		cs.section.State = report.StateFailed
		cs.section.Error = failureMessage(err)
		return cs
	}

	res := c.Render(body)
	switch res.Kind {
	case normalize.KindEmptyRoot:
		cs.section.State = report.StateEmpty
	case normalize.KindMalformedShape:
		cs.section.State = report.StateMalformed
		cs.section.Error = msgMalformed
		return cs
	default:
		cs.section.State = report.StateReady
	}

	cs.figures = res.Figures
	if res.Table != nil && c.Exported {
		cs.table = res.Table
	}
	if res.Table != nil {
		cs.section.Headers = res.Table.Headers
		cs.section.Rows = res.Table.Rows
	}
	return cs
}

// apply installs a load outcome. Callers hold v.mu.
func (v *view[T]) apply(out loadOutcome[T]) error {
	v.loadedAt = v.now()
	v.companions = out.companions
	v.figures = out.figures

	if out.err != nil {
		v.records = []T{}
		v.state = report.StateFailed
		v.errMsg = failureMessage(out.err)
		v.logger.Warn("failed to load report", "error", out.err)
		return fmt.Errorf("%w: %w", report.ErrUpstreamFailed, out.err)
	}

	switch out.result.Kind {
	case normalize.KindEmptyRoot:
		v.records = []T{}
		v.state = report.StateEmpty
		v.errMsg = ""
	case normalize.KindMalformedShape:
		v.records = []T{}
		v.state = report.StateMalformed
		v.errMsg = msgMalformed
		v.logger.Warn("malformed response from HR service")
		return report.ErrMalformedResponse
	default:
		v.records = v.def.restrict(out.result.Records, v.scope)
		v.state = report.StateReady
		v.errMsg = ""
	}

	if out.result.Dropped > 0 {
		v.logger.Debug("dropped records without identity", "dropped", out.result.Dropped)
	}
	return nil
}

func failureMessage(err error) string {
	if msg, ok := hrapi.ServerMessage(err); ok {
		return msg
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return msgTimeout
	case errors.Is(err, hrapi.ErrNetwork):
		return msgUnreachable
	}
	return msgLoadFailed
}

func (v *view[T]) Filters() fsp.FilterState {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.filters
}

func (v *view[T]) SetSearch(text string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.lastAccess = v.now()
	return v.filters.SetSearch(text)
}

func (v *view[T]) SetFilter(dim fsp.Dimension, value string) (bool, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.lastAccess = v.now()

	if _, ok := v.def.Exact[dim]; !ok {
		return false, v.CheckFilter(dim, value)
	}
	return v.filters.SetExact(dim, value), nil
}

func (v *view[T]) CheckFilter(dim fsp.Dimension, value string) error {
	if _, ok := v.def.Exact[dim]; !ok && !fsp.IsAll(value) {
		return fmt.Errorf("%w: %s", report.ErrUnknownFilter, dim)
	}
	return nil
}

func (v *view[T]) SetDateRange(from, to time.Time) (bool, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.lastAccess = v.now()

	if v.def.Date == nil {
		return false, v.CheckDateRange(from, to)
	}
	return v.filters.SetDateRange(from, to), nil
}

func (v *view[T]) CheckDateRange(from, to time.Time) error {
	if v.def.Date == nil && (!from.IsZero() || !to.IsZero()) {
		return fmt.Errorf("%w: date range", report.ErrUnknownFilter)
	}
	return nil
}

func (v *view[T]) ToggleSort(key string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.lastAccess = v.now()

	if _, ok := v.schema.Sort[key]; key != "" && !ok {
		return fmt.Errorf("%w: %s", report.ErrUnknownSortKey, key)
	}
	v.filters.ToggleSort(key)
	return nil
}

func (v *view[T]) SetPage(n int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.lastAccess = v.now()
	v.filters.SetPage(n)
}

func (v *view[T]) Snapshot() report.Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.lastAccess = v.now()

	page := fsp.Apply(v.records, v.schema, v.filters)
	v.filters.CurrentPage = page.CurrentPage

	snap := report.Snapshot{
		ID:          v.id,
		Report:      v.def.Key,
		Title:       v.def.Title,
		State:       v.state,
		Error:       v.errMsg,
		Filters:     v.filters,
		Columns:     v.def.columns(),
		Rows:        make([]report.Row, len(page.Rows)),
		CurrentPage: page.CurrentPage,
		TotalPages:  page.TotalPages,
		TotalItems:  page.TotalCount,
		PageSize:    page.PageSize,
		Generation:  v.generation,
	}

	actions := v.actions()
	for i, r := range page.Rows {
		row := report.Row{Cells: v.def.cells(r)}
		if v.def.ID != nil {
			row.ID = v.def.ID(r)
		}
		if v.def.Status != nil {
			row.Status = v.def.Status(r)
		}
		if _, ok := v.pending[row.ID]; ok && row.ID != "" {
			for _, k := range actions {
				row.Pending = append(row.Pending, string(k))
			}
		}
		snap.Rows[i] = row
	}

	if len(v.def.Exact) > 0 {
		snap.FilterOptions = make(map[string][]string, len(v.def.Exact))
		for dim, field := range v.def.Exact {
			snap.FilterOptions[string(dim)] = fsp.Distinct(v.records, field)
		}
	}

	if v.state == report.StateReady {
		if v.def.Summary != nil {
			snap.Summary = append(snap.Summary, v.def.Summary(v.records)...)
		}
		snap.Summary = append(snap.Summary, v.figures...)
	}
	for _, c := range v.companions {
		snap.Summary = append(snap.Summary, c.figures...)
		snap.Sections = append(snap.Sections, c.section)
	}

	for _, k := range actions {
		snap.Actions = append(snap.Actions, string(k))
	}
	if !v.loadedAt.IsZero() {
		loadedAt := v.loadedAt
		snap.LoadedAt = &loadedAt
	}
	return snap
}

func (v *view[T]) Export() export.Document {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.lastAccess = v.now()

	page := fsp.Apply(v.records, v.schema, v.filters)
	main := export.Table{
		Name:    v.def.SheetName,
		Headers: v.def.headers(),
		Rows:    make([][]string, len(page.FilteredAll)),
	}
	for i, r := range page.FilteredAll {
		main.Rows[i] = v.def.cells(r)
	}

	doc := export.Document{
		Filename: v.def.FileName,
		Title:    v.def.Title,
		Tables:   []export.Table{main},
	}
	for _, c := range v.companions {
		if c.table != nil {
			doc.Tables = append(doc.Tables, *c.table)
		}
	}
	return doc
}

func (v *view[T]) Supports(kind action.Kind) bool {
	return v.def.supports(kind)
}

func (v *view[T]) Actions() []action.Kind {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.actions()
}

func (v *view[T]) actions() []action.Kind {
	if !v.canApprove || v.def.ID == nil {
		return nil
	}
	return v.def.Actions
}

func (v *view[T]) HasRecord(recordID string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.indexOf(recordID) >= 0
}

// ApplyStatus sets the status of the first record with recordID. Other records are untouched.
func (v *view[T]) ApplyStatus(recordID, status string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	i := v.indexOf(recordID)
	if i < 0 || v.def.SetStatus == nil {
		return false
	}
	v.def.SetStatus(&v.records[i], status)
	return true
}

func (v *view[T]) indexOf(recordID string) int {
	if v.def.ID == nil || recordID == "" {
		return -1
	}
	for i, r := range v.records {
		if v.def.ID(r) == recordID {
			return i
		}
	}
	return -1
}

// BeginAction marks recordID in flight with kind. It returns false while any
// action on that record is still in flight.
func (v *view[T]) BeginAction(recordID string, kind action.Kind) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.lastAccess = v.now()

	if _, ok := v.pending[recordID]; ok {
		return false
	}
	v.pending[recordID] = kind
	return true
}

func (v *view[T]) EndAction(recordID string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	delete(v.pending, recordID)
}

func (v *view[T]) LastAccess() time.Time {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.lastAccess
}

// Close cancels any in-flight refresh. The view cannot be refreshed afterwards.
func (v *view[T]) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.closed = true
	v.generation++
	if v.cancel != nil {
		v.cancel()
		v.cancel = nil
	}
}

