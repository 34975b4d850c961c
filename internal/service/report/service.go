package report

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-report-go/internal/domain/report"
	"github.com/cmlabs-hris/hris-report-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-report-go/internal/pkg/export"
	"github.com/cmlabs-hris/hris-report-go/internal/pkg/fsp"
	"github.com/cmlabs-hris/hris-report-go/internal/service/file"
	"github.com/google/uuid"
)

// entry erases the record type of a definition.
type entry struct {
	info          func(pageSize int, canApprove bool) report.Info
	pageSize      int
	needsEmployee bool
	open          func(opts viewOptions) View
}

func register[T any](d *Definition[T]) entry {
	return entry{
		info:          d.info,
		pageSize:      d.PageSize,
		needsEmployee: d.NeedsEmployee,
		open:          func(opts viewOptions) View { return newView(d, opts) },
	}
}

type ReportServiceImpl struct {
	fetcher  Fetcher
	registry *Registry
	profiles Profiles
	archive  file.ArchiveService
	logger   *slog.Logger
	now      func() time.Time

	reports map[report.Key]entry
	order   []report.Key
}

// NewReportService wires the report engine. archive may be nil to disable archiving.
func NewReportService(fetcher Fetcher, registry *Registry, profiles Profiles, archive file.ArchiveService, logger *slog.Logger) report.ReportService {
	if logger == nil {
		logger = slog.Default()
	}
	s := &ReportServiceImpl{
		fetcher:  fetcher,
		registry: registry,
		profiles: profiles,
		archive:  archive,
		logger:   logger,
		now:      time.Now,
		reports: map[report.Key]entry{
			report.KeyAttendance:      register(attendanceReport),
			report.KeyLeaveRequests:   register(leaveRequestsReport),
			report.KeyLeaveHistory:    register(leaveHistoryReport),
			report.KeyLeaveBalance:    register(leaveBalanceReport),
			report.KeyRegularizations: register(regularizationsReport),
			report.KeyKYC:             register(kycReport),
			report.KeyUniforms:        register(uniformsReport),
			report.KeyIDCards:         register(idCardsReport),
			report.KeyEmployeeMonthly: register(employeeMonthlyReport),
		},
		order: allKeys,
	}
	return s
}

func (s *ReportServiceImpl) profile(p user.Principal) (Profile, error) {
	profile, ok := s.profiles[p.Role]
	if !ok {
		return Profile{}, user.ErrInvalidRole
	}
	return profile, nil
}

// Catalog lists the reports the principal's role may open.
func (s *ReportServiceImpl) Catalog(p user.Principal) []report.Info {
	profile, err := s.profile(p)
	if err != nil {
		return []report.Info{}
	}

	infos := make([]report.Info, 0, len(profile.Reports))
	for _, key := range s.order {
		if !profile.Allows(key) {
			continue
		}
		e := s.reports[key]
		infos = append(infos, e.info(profile.PageSize(key, e.pageSize), profile.CanApprove))
	}
	return infos
}

// build creates an unregistered view for key
func (s *ReportServiceImpl) build(p user.Principal, key report.Key, params report.ScopeParams, id string) (View, error) {
	e, ok := s.reports[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", report.ErrUnknownReport, key)
	}

	profile, err := s.profile(p)
	if err != nil {
		return nil, err
	}
	if !profile.Allows(key) {
		return nil, fmt.Errorf("%w: %s", report.ErrReportNotAllowed, key)
	}

	scope, err := ResolveScope(p, profile, params, s.now())
	if err != nil {
		return nil, err
	}
	if e.needsEmployee && scope.EmployeeID == "" {
		return nil, fmt.Errorf("%s: %w", key, user.ErrEmployeeIDRequired)
	}

	return e.open(viewOptions{
		ID:         id,
		Scope:      scope,
		Owner:      p,
		CanApprove: profile.CanApprove,
		PageSize:   profile.PageSize(key, e.pageSize),
		Fetcher:    s.fetcher,
		Logger:     s.logger,
	}), nil
}

// ========================================
// ONE-SHOT
// ========================================

func (s *ReportServiceImpl) Query(ctx context.Context, p user.Principal, key report.Key, req report.QueryRequest) (report.Snapshot, error) {
	v, err := s.prepare(ctx, p, key, req)
	if err != nil {
		return report.Snapshot{}, err
	}
	return v.Snapshot(), nil
}

func (s *ReportServiceImpl) ExportReport(ctx context.Context, p user.Principal, key report.Key, req report.QueryRequest, format export.Format) (report.Artifact, error) {
	v, err := s.prepare(ctx, p, key, req)
	if err != nil {
		return report.Artifact{}, err
	}
	return s.render(ctx, p, v, format)
}

// prepare builds a transient view, applies the query and loads it. Load failures are returned.
func (s *ReportServiceImpl) prepare(ctx context.Context, p user.Principal, key report.Key, req report.QueryRequest) (View, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	v, err := s.build(p, key, req.ScopeParams, "")
	if err != nil {
		return nil, err
	}

	if err := applyFilters(v, req.Filters); err != nil {
		return nil, err
	}
	if err := setSort(v, req.SortKey, req.Direction); err != nil {
		return nil, err
	}
	if req.Page > 0 {
		v.SetPage(req.Page)
	}

	if err := v.Refresh(ctx); err != nil {
		return nil, err
	}
	return v, nil
}

// ========================================
// VIEWS
// ========================================

func (s *ReportServiceImpl) OpenView(ctx context.Context, p user.Principal, req report.CreateViewRequest) (report.Snapshot, error) {
	if err := req.Validate(); err != nil {
		return report.Snapshot{}, err
	}

	v, err := s.build(p, report.ParseKey(string(req.Report)), req.ScopeParams, uuid.NewString())
	if err != nil {
		return report.Snapshot{}, err
	}
	s.registry.Add(v)
	s.logger.Info("view opened", "view_id", v.ID(), "report", string(v.Key()), "role", string(p.Role))

	if err := s.refresh(ctx, v); err != nil {
		return report.Snapshot{}, err
	}
	return v.Snapshot(), nil
}

func (s *ReportServiceImpl) GetView(p user.Principal, viewID string) (report.Snapshot, error) {
	v, err := s.lookup(p, viewID)
	if err != nil {
		return report.Snapshot{}, err
	}
	return v.Snapshot(), nil
}

func (s *ReportServiceImpl) CloseView(p user.Principal, viewID string) error {
	if _, err := s.lookup(p, viewID); err != nil {
		return err
	}
	s.registry.Remove(viewID)
	return nil
}

func (s *ReportServiceImpl) RefreshView(ctx context.Context, p user.Principal, viewID string) (report.Snapshot, error) {
	v, err := s.lookup(p, viewID)
	if err != nil {
		return report.Snapshot{}, err
	}
	if err := s.refresh(ctx, v); err != nil {
		return report.Snapshot{}, err
	}
	return v.Snapshot(), nil
}

func (s *ReportServiceImpl) UpdateFilters(p user.Principal, viewID string, req report.FilterUpdate) (report.Snapshot, error) {
	if err := req.Validate(); err != nil {
		return report.Snapshot{}, err
	}
	v, err := s.lookup(p, viewID)
	if err != nil {
		return report.Snapshot{}, err
	}
	if err := applyFilters(v, req); err != nil {
		return report.Snapshot{}, err
	}
	return v.Snapshot(), nil
}

func (s *ReportServiceImpl) ToggleSort(p user.Principal, viewID string, key string) (report.Snapshot, error) {
	v, err := s.lookup(p, viewID)
	if err != nil {
		return report.Snapshot{}, err
	}
	if err := v.ToggleSort(key); err != nil {
		return report.Snapshot{}, err
	}
	return v.Snapshot(), nil
}

func (s *ReportServiceImpl) SetPage(p user.Principal, viewID string, page int) (report.Snapshot, error) {
	req := report.PageRequest{Page: page}
	if err := req.Validate(); err != nil {
		return report.Snapshot{}, err
	}
	v, err := s.lookup(p, viewID)
	if err != nil {
		return report.Snapshot{}, err
	}
	v.SetPage(page)
	return v.Snapshot(), nil
}

func (s *ReportServiceImpl) ExportView(ctx context.Context, p user.Principal, viewID string, format export.Format) (report.Artifact, error) {
	v, err := s.lookup(p, viewID)
	if err != nil {
		return report.Artifact{}, err
	}
	return s.render(ctx, p, v, format)
}

// lookup returns a view owned by p. Views of other principals are reported as missing.
func (s *ReportServiceImpl) lookup(p user.Principal, viewID string) (View, error) {
	return s.registry.Owned(p, viewID)
}

// refresh loads a view. Load failures stay on the view as its state.
func (s *ReportServiceImpl) refresh(ctx context.Context, v View) error {
	err := v.Refresh(ctx)
	switch {
	case err == nil,
		errors.Is(err, report.ErrUpstreamFailed),
		errors.Is(err, report.ErrMalformedResponse),
		errors.Is(err, report.ErrRefreshSuperseded):
		return nil
	}
	return err
}

// ========================================
// EXPORT
// ========================================

func (s *ReportServiceImpl) render(ctx context.Context, p user.Principal, v View, format export.Format) (report.Artifact, error) {
	if !user.HasPermission(p.Role, user.PermissionReportExport) {
		return report.Artifact{}, user.ErrInsufficientPermissions
	}

	doc := v.Export()
	var buf bytes.Buffer
	if err := export.Write(&buf, doc, format); err != nil {
		return report.Artifact{}, fmt.Errorf("failed to render %s export: %w", v.Key(), err)
	}

	artifact := report.Artifact{
		FileName:    doc.FileName(format),
		ContentType: format.ContentType(),
		Data:        buf.Bytes(),
		RowCount:    doc.RowCount(),
	}

	if s.archive != nil {
		key, url, err := s.archive.Archive(ctx, string(v.Key()), artifact.FileName, artifact.ContentType, artifact.Data)
		if err != nil {
			s.logger.Warn("failed to archive export", "report", string(v.Key()), "error", err)
		} else {
			artifact.ArchiveKey, artifact.ArchiveURL = key, url
		}
	}
	return artifact, nil
}

func (s *ReportServiceImpl) ListArchive(ctx context.Context, p user.Principal, key report.Key) ([]string, error) {
	if s.archive == nil {
		return nil, report.ErrArchiveDisabled
	}
	if !user.HasPermission(p.Role, user.PermissionReportViewAll) {
		return nil, user.ErrInsufficientPermissions
	}
	if key != "" {
		if _, ok := s.reports[key]; !ok {
			return nil, fmt.Errorf("%w: %s", report.ErrUnknownReport, key)
		}
	}
	return s.archive.List(ctx, string(key))
}

// ========================================
// HELPERS
// ========================================

// applyFilters applies only the fields set in u. A single date bound keeps the other one.
// Every field is checked before any is applied, so a rejected update leaves the view as it was.
func applyFilters(v View, u report.FilterUpdate) error {
	exact := []struct {
		dim   fsp.Dimension
		value *string
	}{
		{fsp.DimensionProject, u.Project},
		{fsp.DimensionDesignation, u.Designation},
		{fsp.DimensionStatus, u.Status},
	}
	for _, f := range exact {
		if f.value == nil {
			continue
		}
		if err := v.CheckFilter(f.dim, *f.value); err != nil {
			return err
		}
	}

	var from, to time.Time
	if u.HasDateRange() {
		current := v.Filters()
		from, to = u.DateBounds()
		if u.DateFrom == nil {
			from = current.DateFrom
		}
		if u.DateTo == nil {
			to = current.DateTo
		}
		if !from.IsZero() && !to.IsZero() && to.Before(from) {
			return report.ErrInvalidDateRange
		}
		if err := v.CheckDateRange(from, to); err != nil {
			return err
		}
	}

	if u.Search != nil {
		v.SetSearch(*u.Search)
	}
	for _, f := range exact {
		if f.value == nil {
			continue
		}
		if _, err := v.SetFilter(f.dim, *f.value); err != nil {
			return err
		}
	}
	if u.HasDateRange() {
		if _, err := v.SetDateRange(from, to); err != nil {
			return err
		}
	}
	return nil
}

// setSort activates key in direction dir; descending takes a second toggle.
func setSort(v View, key string, dir fsp.Direction) error {
	if key == "" {
		return nil
	}
	if err := v.ToggleSort(key); err != nil {
		return err
	}
	if dir == fsp.Desc {
		return v.ToggleSort(key)
	}
	return nil
}
