package http

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/cmlabs-hris/hris-report-go/internal/domain/report"
	"github.com/cmlabs-hris/hris-report-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-report-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/hris-report-go/internal/handler/http/response"
	"github.com/cmlabs-hris/hris-report-go/internal/pkg/fsp"
	"github.com/cmlabs-hris/hris-report-go/internal/pkg/validator"
)

// principal returns the authenticated caller, writing 401 when there is none.
func principal(w http.ResponseWriter, r *http.Request) (user.Principal, bool) {
	p, ok := middleware.PrincipalFrom(r.Context())
	if !ok {
		response.Unauthorized(w, "Unauthorized")
		return user.Principal{}, false
	}
	return p, true
}

// parseQueryRequest reads a one-shot report query from the URL.
func parseQueryRequest(q url.Values) (report.QueryRequest, error) {
	var errs validator.ValidationErrors
	req := report.QueryRequest{
		ScopeParams: report.ScopeParams{
			EmployeeID:  strings.TrimSpace(q.Get("employee_id")),
			ProjectName: strings.TrimSpace(q.Get("project_name")),
		},
		SortKey:   strings.TrimSpace(q.Get("sort")),
		Direction: fsp.Direction(strings.ToLower(strings.TrimSpace(q.Get("dir")))),
	}

	req.Month, errs = intParam(q, "month", errs)
	req.Year, errs = intParam(q, "year", errs)
	req.Page, errs = intParam(q, "page", errs)

	req.Filters = report.FilterUpdate{
		Search:      optional(q, "search"),
		Project:     optional(q, "project"),
		Designation: optional(q, "designation"),
		Status:      optional(q, "status"),
		DateFrom:    optional(q, "date_from"),
		DateTo:      optional(q, "date_to"),
	}

	if len(errs) > 0 {
		return req, errs
	}
	return req, nil
}

func intParam(q url.Values, name string, errs validator.ValidationErrors) (int, validator.ValidationErrors) {
	raw := strings.TrimSpace(q.Get(name))
	if raw == "" {
		return 0, errs
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, append(errs, validator.ValidationError{
			Field:   name,
			Message: fmt.Sprintf("%s must be a number", name),
		})
	}
	return n, errs
}

func optional(q url.Values, name string) *string {
	if !q.Has(name) {
		return nil
	}
	v := q.Get(name)
	return &v
}

// writeArtifact streams an export as a download.
func writeArtifact(w http.ResponseWriter, art report.Artifact) {
	w.Header().Set("Content-Type", art.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", art.FileName))
	w.Header().Set("Content-Length", strconv.Itoa(len(art.Data)))
	w.Header().Set("X-Row-Count", strconv.Itoa(art.RowCount))
	if art.ArchiveKey != "" {
		w.Header().Set("X-Archive-Key", art.ArchiveKey)
	}
	if art.ArchiveURL != "" {
		w.Header().Set("X-Archive-URL", art.ArchiveURL)
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(art.Data)
}

func pageMeta(snap report.Snapshot) *response.Meta {
	return &response.Meta{
		Page:       snap.CurrentPage,
		Limit:      snap.PageSize,
		TotalItems: snap.TotalItems,
		TotalPages: snap.TotalPages,
	}
}
