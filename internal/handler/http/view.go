package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/hris-report-go/internal/domain/report"
	"github.com/cmlabs-hris/hris-report-go/internal/handler/http/response"
	"github.com/cmlabs-hris/hris-report-go/internal/pkg/export"
	"github.com/go-chi/chi/v5"
)

type ViewHandler interface {
	OpenView(w http.ResponseWriter, r *http.Request)
	GetView(w http.ResponseWriter, r *http.Request)
	CloseView(w http.ResponseWriter, r *http.Request)
	RefreshView(w http.ResponseWriter, r *http.Request)
	UpdateFilters(w http.ResponseWriter, r *http.Request)
	ToggleSort(w http.ResponseWriter, r *http.Request)
	SetPage(w http.ResponseWriter, r *http.Request)
	ExportView(w http.ResponseWriter, r *http.Request)
}

type viewHandlerImpl struct {
	reportService report.ReportService
}

func NewViewHandler(reportService report.ReportService) ViewHandler {
	return &viewHandlerImpl{
		reportService: reportService,
	}
}

// OpenView handles POST /views
func (h *viewHandlerImpl) OpenView(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	var req report.CreateViewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("OpenView decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	snap, err := h.reportService.OpenView(r.Context(), p, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "View opened", snap)
}

// GetView handles GET /views/{id}
func (h *viewHandlerImpl) GetView(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	snap, err := h.reportService.GetView(p, chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, snap, pageMeta(snap))
}

// CloseView handles DELETE /views/{id}
func (h *viewHandlerImpl) CloseView(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	if err := h.reportService.CloseView(p, chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "View closed", nil)
}

// RefreshView handles POST /views/{id}/refresh. A failed load is reported in the snapshot state.
func (h *viewHandlerImpl) RefreshView(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	snap, err := h.reportService.RefreshView(r.Context(), p, chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, snap, pageMeta(snap))
}

// UpdateFilters handles PATCH /views/{id}/filters
func (h *viewHandlerImpl) UpdateFilters(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	var req report.FilterUpdate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("UpdateFilters decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	snap, err := h.reportService.UpdateFilters(p, chi.URLParam(r, "id"), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, snap, pageMeta(snap))
}

// ToggleSort handles POST /views/{id}/sort
func (h *viewHandlerImpl) ToggleSort(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	var req report.SortRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("ToggleSort decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	snap, err := h.reportService.ToggleSort(p, chi.URLParam(r, "id"), req.Key)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, snap, pageMeta(snap))
}

// SetPage handles PUT /views/{id}/page
func (h *viewHandlerImpl) SetPage(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	var req report.PageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("SetPage decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	snap, err := h.reportService.SetPage(p, chi.URLParam(r, "id"), req.Page)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, snap, pageMeta(snap))
}

// ExportView handles GET /views/{id}/export
func (h *viewHandlerImpl) ExportView(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	art, err := h.reportService.ExportView(r.Context(), p, chi.URLParam(r, "id"), format)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	writeArtifact(w, art)
}
