package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/cmlabs-hris/hris-report-go/internal/domain/action"
	"github.com/cmlabs-hris/hris-report-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type ActionHandler interface {
	// SubmitAction handles POST /views/{id}/records/{recordID}/{action}
	SubmitAction(w http.ResponseWriter, r *http.Request)

	// ActionHistory handles GET /views/{id}/records/{recordID}/history
	ActionHistory(w http.ResponseWriter, r *http.Request)
}

type actionHandlerImpl struct {
	actionService action.ActionService
}

func NewActionHandler(actionService action.ActionService) ActionHandler {
	return &actionHandlerImpl{
		actionService: actionService,
	}
}

func (h *actionHandlerImpl) SubmitAction(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	var req action.SubmitRequest
	// The body is optional; only reject carries a reason
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		slog.Error("SubmitAction decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.ViewID = chi.URLParam(r, "id")
	req.RecordID = chi.URLParam(r, "recordID")
	req.Kind = action.Kind(chi.URLParam(r, "action"))

	result, err := h.actionService.Submit(r.Context(), p, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, result.Toast.Message, result)
}

func (h *actionHandlerImpl) ActionHistory(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			response.BadRequest(w, "limit must be a number", nil)
			return
		}
		limit = n
	}

	entries, err := h.actionService.History(r.Context(), p, chi.URLParam(r, "id"), chi.URLParam(r, "recordID"), limit)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, entries)
}
