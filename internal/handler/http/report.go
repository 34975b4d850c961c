package http

import (
	"net/http"

	"github.com/cmlabs-hris/hris-report-go/internal/domain/report"
	"github.com/cmlabs-hris/hris-report-go/internal/handler/http/response"
	"github.com/cmlabs-hris/hris-report-go/internal/pkg/export"
	"github.com/go-chi/chi/v5"
)

type ReportHandler interface {
	// ListReports handles GET /reports
	ListReports(w http.ResponseWriter, r *http.Request)

	// QueryReport handles GET /reports/{report}
	QueryReport(w http.ResponseWriter, r *http.Request)

	// ExportReport handles GET /reports/{report}/export
	ExportReport(w http.ResponseWriter, r *http.Request)

	// ListExports handles GET /exports
	ListExports(w http.ResponseWriter, r *http.Request)
}

type reportHandlerImpl struct {
	reportService report.ReportService
}

func NewReportHandler(reportService report.ReportService) ReportHandler {
	return &reportHandlerImpl{
		reportService: reportService,
	}
}

func (h *reportHandlerImpl) ListReports(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	response.Success(w, h.reportService.Catalog(p))
}

func (h *reportHandlerImpl) QueryReport(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	req, err := parseQueryRequest(r.URL.Query())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	key := report.ParseKey(chi.URLParam(r, "report"))
	snap, err := h.reportService.Query(r.Context(), p, key, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, snap, pageMeta(snap))
}

func (h *reportHandlerImpl) ExportReport(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	req, err := parseQueryRequest(r.URL.Query())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	key := report.ParseKey(chi.URLParam(r, "report"))
	art, err := h.reportService.ExportReport(r.Context(), p, key, req, format)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	writeArtifact(w, art)
}

func (h *reportHandlerImpl) ListExports(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	keys, err := h.reportService.ListArchive(r.Context(), p, report.ParseKey(r.URL.Query().Get("report")))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, keys)
}
