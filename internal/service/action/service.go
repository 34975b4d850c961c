package action

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-report-go/internal/domain/action"
	"github.com/cmlabs-hris/hris-report-go/internal/domain/report"
	"github.com/cmlabs-hris/hris-report-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-report-go/internal/pkg/hrapi"
	"github.com/cmlabs-hris/hris-report-go/internal/pkg/sse"
	reportsvc "github.com/cmlabs-hris/hris-report-go/internal/service/report"
	"github.com/google/uuid"
)

const (
	ToastEvent          = "toast"
	defaultHistoryLimit = 50
)

// Submitter performs one status transition call and returns the server's message.
type Submitter interface {
	Submit(ctx context.Context, ep hrapi.Endpoint, reason string) (string, error)
}

type ActionServiceImpl struct {
	registry *reportsvc.Registry
	client   Submitter
	hub      *sse.Hub
	audit    action.AuditRepository
	logger   *slog.Logger
	now      func() time.Time
}

// NewActionService wires status transitions. hub and audit may be nil.
func NewActionService(registry *reportsvc.Registry, client Submitter, hub *sse.Hub, audit action.AuditRepository, logger *slog.Logger) action.ActionService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ActionServiceImpl{
		registry: registry,
		client:   client,
		hub:      hub,
		audit:    audit,
		logger:   logger,
		now:      time.Now,
	}
}

// Submit runs one action on one record of a view. Only that record's control for that
// action is locked while the call is in flight.
func (s *ActionServiceImpl) Submit(ctx context.Context, p user.Principal, req action.SubmitRequest) (action.Result, error) {
	if kind, ok := action.ParseKind(string(req.Kind)); ok {
		req.Kind = kind
	}
	// Validate before anything reaches the network
	if err := req.Validate(); err != nil {
		return action.Result{}, err
	}

	v, err := s.registry.Owned(p, req.ViewID)
	if err != nil {
		return action.Result{}, err
	}

	if !v.Supports(req.Kind) {
		return action.Result{}, fmt.Errorf("%w: %s on %s", action.ErrActionNotSupported, req.Kind, v.Key())
	}
	if !containsKind(v.Actions(), req.Kind) {
		return action.Result{}, action.ErrNotPermitted
	}
	if !v.HasRecord(req.RecordID) {
		return action.Result{}, report.ErrRecordNotFound
	}

	if !v.BeginAction(req.RecordID, req.Kind) {
		return action.Result{}, action.ErrActionInFlight
	}
	defer v.EndAction(req.RecordID)

	ep, err := hrapi.ActionEndpoint(v.Resource(), req.RecordID, string(req.Kind))
	if err != nil {
		return action.Result{}, err
	}

	if p.BearerToken != "" {
		ctx = hrapi.WithBearer(ctx, p.BearerToken)
	}
	message, err := s.client.Submit(ctx, ep, strings.TrimSpace(req.Reason))
	if err != nil {
		text := action.FallbackErrorMessage
		if m, ok := hrapi.ServerMessage(err); ok {
			text = m
		}
		toast := s.toast(action.ToastError, text, req)
		s.publish(req.ViewID, toast)
		s.record(ctx, p, v, req, false, text)

		s.logger.Warn("action failed",
			"view_id", req.ViewID,
			"record_id", req.RecordID,
			"action", string(req.Kind),
			"error", err,
		)
		return action.Result{RecordID: req.RecordID, Action: req.Kind, Toast: toast}, &action.FailureError{Toast: toast, Err: err}
	}

	status := req.Kind.TargetStatus()
	v.ApplyStatus(req.RecordID, status)

	if strings.TrimSpace(message) == "" {
		message = successMessage(req.Kind)
	}
	toast := s.toast(action.ToastSuccess, message, req)
	s.publish(req.ViewID, toast)
	s.record(ctx, p, v, req, true, message)

	s.logger.Info("action succeeded",
		"view_id", req.ViewID,
		"record_id", req.RecordID,
		"action", string(req.Kind),
		"status", status,
	)
	return action.Result{RecordID: req.RecordID, Action: req.Kind, Status: status, Toast: toast}, nil
}

// History lists recorded outcomes for a record of a view the caller owns.
func (s *ActionServiceImpl) History(ctx context.Context, p user.Principal, viewID, recordID string, limit int) ([]action.AuditEntry, error) {
	if s.audit == nil {
		return nil, action.ErrAuditDisabled
	}
	if _, err := s.registry.Owned(p, viewID); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > defaultHistoryLimit {
		limit = defaultHistoryLimit
	}

	entries, err := s.audit.ListByRecord(ctx, recordID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list action history: %w", err)
	}
	return entries, nil
}

func (s *ActionServiceImpl) toast(level action.ToastLevel, message string, req action.SubmitRequest) action.Toast {
	return action.Toast{
		ID:        uuid.NewString(),
		Level:     level,
		Message:   message,
		RecordID:  req.RecordID,
		Action:    req.Kind,
		CreatedAt: s.now(),
	}
}

func (s *ActionServiceImpl) publish(viewID string, toast action.Toast) {
	if s.hub == nil {
		return
	}
	s.hub.Publish(viewID, sse.Event{Event: ToastEvent, Data: toast})
}

// record writes the audit entry. A failed write is logged, never returned.
func (s *ActionServiceImpl) record(ctx context.Context, p user.Principal, v reportsvc.View, req action.SubmitRequest, succeeded bool, message string) {
	if s.audit == nil {
		return
	}

	entry := action.AuditEntry{
		ID:         uuid.NewString(),
		ViewID:     req.ViewID,
		Report:     string(v.Key()),
		RecordID:   req.RecordID,
		Action:     req.Kind,
		Role:       string(p.Role),
		EmployeeID: p.EmployeeID,
		Succeeded:  succeeded,
		Message:    message,
		CreatedAt:  s.now(),
	}
	if err := s.audit.Record(context.WithoutCancel(ctx), entry); err != nil {
		s.logger.Error("failed to record action audit", "record_id", req.RecordID, "error", err)
	}
}

func successMessage(kind action.Kind) string {
	switch kind {
	case action.KindApprove:
		return "Approved successfully."
	case action.KindReject:
		return "Rejected successfully."
	case action.KindIssue:
		return "Issued successfully."
	}
	return "Done."
}

func containsKind(kinds []action.Kind, k action.Kind) bool {
	for _, kind := range kinds {
		if kind == k {
			return true
		}
	}
	return false
}
