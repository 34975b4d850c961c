package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/cmlabs-hris/hris-report-go/internal/domain/report"
	"github.com/cmlabs-hris/hris-report-go/internal/handler/http/response"
	"github.com/cmlabs-hris/hris-report-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-report-go/internal/pkg/sse"
	"github.com/go-chi/chi/v5"
)

const keepaliveInterval = 30 * time.Second

type EventHandler interface {
	// IssueToken handles POST /views/{id}/events/token
	IssueToken(w http.ResponseWriter, r *http.Request)

	// Stream handles GET /views/{id}/events
	Stream(w http.ResponseWriter, r *http.Request)
}

type SSETokenResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expires_in"`
}

type eventHandlerImpl struct {
	jwtService    jwt.Service
	reportService report.ReportService
	hub           *sse.Hub
}

func NewEventHandler(jwtService jwt.Service, reportService report.ReportService, hub *sse.Hub) EventHandler {
	return &eventHandlerImpl{
		jwtService:    jwtService,
		reportService: reportService,
		hub:           hub,
	}
}

func (h *eventHandlerImpl) IssueToken(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	viewID := chi.URLParam(r, "id")
	if _, err := h.reportService.GetView(p, viewID); err != nil {
		response.HandleError(w, err)
		return
	}

	token, expiresIn, err := h.jwtService.GenerateSSEToken(viewID, p)
	if err != nil {
		response.InternalServerError(w, "Failed to generate SSE token")
		return
	}

	response.Success(w, SSETokenResponse{
		Token:     token,
		ExpiresIn: expiresIn,
	})
}

func (h *eventHandlerImpl) Stream(w http.ResponseWriter, r *http.Request) {
	viewID := chi.URLParam(r, "id")

	// Get token from query parameter (SSE doesn't support custom headers)
	tokenStr := r.URL.Query().Get("token")
	if tokenStr == "" {
		http.Error(w, "Missing token", http.StatusUnauthorized)
		return
	}

	p, err := h.jwtService.ValidateSSEToken(tokenStr, viewID)
	if err != nil {
		http.Error(w, "Invalid token", http.StatusUnauthorized)
		return
	}

	if _, err := h.reportService.GetView(p, viewID); err != nil {
		http.Error(w, "View not found", http.StatusNotFound)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	events, cleanup := h.hub.Subscribe(viewID)
	defer cleanup()

	fmt.Fprintf(w, "event: connected\ndata: {\"status\":\"connected\",\"view_id\":%q}\n\n", viewID)
	flusher.Flush()

	keepalive := time.NewTicker(keepaliveInterval)
	defer keepalive.Stop()

	for {
		select {
		case event, ok := <-events:
			// Closed when the view is discarded or evicted
			if !ok {
				fmt.Fprint(w, "event: closed\ndata: {}\n\n")
				flusher.Flush()
				return
			}
			data, err := json.Marshal(event.Data)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Event, data)
			flusher.Flush()

		case <-keepalive.C:
			fmt.Fprintf(w, "event: ping\ndata: {\"timestamp\":%d}\n\n", time.Now().Unix())
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}
