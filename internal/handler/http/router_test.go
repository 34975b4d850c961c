package http

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-report-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-report-go/internal/pkg/hrapi"
	"github.com/cmlabs-hris/hris-report-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-report-go/internal/pkg/sse"
	actionService "github.com/cmlabs-hris/hris-report-go/internal/service/action"
	reportService "github.com/cmlabs-hris/hris-report-go/internal/service/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const handlerTestSecret = "test-secret-key-for-jwt"

const kycBody = `{"kycForms": [
	{"personalDetails": {"employeeId": "E1", "firstName": "Asha", "lastName": "Rao", "projectName": "Alpha", "designation": "Guard"}, "status": "Pending"},
	{"personalDetails": {"employeeId": "E2", "firstName": "Budi", "lastName": "Santoso", "projectName": "Beta", "designation": "Cleaner"}, "status": "Pending"},
	{"personalDetails": {"employeeId": "E3", "firstName": "Citra", "lastName": "Dewi", "projectName": "Alpha", "designation": "Guard"}, "status": "Approved"}
]}`

var (
	hrdUser         = user.Principal{Role: user.RoleHRD, EmployeeID: "HR1"}
	coordinatorUser = user.Principal{Role: user.RoleCoordinator, EmployeeID: "C1", ProjectName: "Alpha"}
	employeeUser    = user.Principal{Role: user.RoleEmployee, EmployeeID: "E9"}
)

type stubUpstream struct{}

func (stubUpstream) Fetch(ctx context.Context, ep hrapi.Endpoint) ([]byte, error) {
	switch ep.Path {
	case "/kyc":
		return []byte(kycBody), nil
	case "/leave/history/E9":
		return []byte(`{"leaveHistory": []}`), nil
	}
	return nil, &hrapi.APIError{StatusCode: http.StatusInternalServerError, Message: "boom"}
}

func (stubUpstream) Submit(ctx context.Context, ep hrapi.Endpoint, reason string) (string, error) {
	if strings.HasPrefix(ep.Path, "/kyc/E2/") {
		return "", &hrapi.APIError{StatusCode: http.StatusConflict, Message: "KYC already processed"}
	}
	return "", nil
}

type testServer struct {
	router http.Handler
	jwt    jwt.Service
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	jwtSvc := jwt.NewJWTService(handlerTestSecret)
	registry := reportService.NewRegistry(time.Hour, nil)
	hub := sse.NewHub()
	upstream := stubUpstream{}

	reports := reportService.NewReportService(upstream, registry, reportService.DefaultProfiles(), nil, nil)
	actions := actionService.NewActionService(registry, upstream, hub, nil, nil)

	router := NewRouter(
		RouterConfig{},
		jwtSvc,
		NewReportHandler(reports),
		NewViewHandler(reports),
		NewActionHandler(actions),
		NewEventHandler(jwtSvc, reports, hub),
	)
	return &testServer{router: router, jwt: jwtSvc}
}

func (s *testServer) token(t *testing.T, p user.Principal) string {
	t.Helper()
	token, _, err := s.jwt.GenerateAccessToken(p, time.Hour)
	require.NoError(t, err)
	return token
}

func (s *testServer) do(t *testing.T, p *user.Principal, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if p != nil {
		req.Header.Set("Authorization", "Bearer "+s.token(t, *p))
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details"`
	} `json:"error"`
	Meta *struct {
		Page       int `json:"page"`
		TotalItems int `json:"total_items"`
		TotalPages int `json:"total_pages"`
	} `json:"meta"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

type snapshotBody struct {
	ID    string `json:"id"`
	State string `json:"state"`
	Rows  []struct {
		ID      string   `json:"id"`
		Status  string   `json:"status"`
		Cells   []string `json:"cells"`
		Pending []string `json:"pending"`
	} `json:"rows"`
	Filters struct {
		SortKey       string `json:"sort_key"`
		SortDirection string `json:"sort_direction"`
	} `json:"filters"`
	TotalItems int `json:"total_items"`
}

func snapshotOf(t *testing.T, w *httptest.ResponseRecorder) snapshotBody {
	t.Helper()
	var snap snapshotBody
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &snap))
	return snap
}

func TestRouter_HeartbeatAndAuth(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, nil, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, nil, http.MethodGet, "/api/v1/reports", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/reports", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// SSE tokens are not access tokens
	sseToken, _, err := s.jwt.GenerateSSEToken("view-1", hrdUser)
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/api/v1/reports", nil)
	req.Header.Set("Authorization", "Bearer "+sseToken)
	rec = httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_ListReports(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, &employeeUser, http.MethodGet, "/api/v1/reports", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var infos []struct {
		Key string `json:"key"`
	}
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &infos))
	var keys []string
	for _, info := range infos {
		keys = append(keys, info.Key)
	}
	assert.ElementsMatch(t, []string{"leave-history", "leave-balance", "employee-monthly"}, keys)
}

func TestRouter_QueryReport(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name       string
		principal  user.Principal
		path       string
		wantStatus int
		wantItems  int
	}{
		{"all records", hrdUser, "/api/v1/reports/kyc", http.StatusOK, 3},
		{"search", hrdUser, "/api/v1/reports/kyc?search=citra", http.StatusOK, 1},
		{"project filter", hrdUser, "/api/v1/reports/kyc?project=Beta", http.StatusOK, 1},
		{"coordinator sees own project", coordinatorUser, "/api/v1/reports/kyc", http.StatusOK, 2},
		{"upper case key", hrdUser, "/api/v1/reports/KYC", http.StatusOK, 3},
		{"bad page", hrdUser, "/api/v1/reports/kyc?page=two", http.StatusUnprocessableEntity, 0},
		{"bad date", hrdUser, "/api/v1/reports/kyc?date_from=14-03-2025", http.StatusUnprocessableEntity, 0},
		{"unknown sort", hrdUser, "/api/v1/reports/kyc?sort=salary", http.StatusBadRequest, 0},
		{"unknown report", hrdUser, "/api/v1/reports/payroll", http.StatusNotFound, 0},
		{"not allowed", employeeUser, "/api/v1/reports/kyc", http.StatusForbidden, 0},
		{"missing employee", hrdUser, "/api/v1/reports/leave-history", http.StatusBadRequest, 0},
		{"upstream failure", hrdUser, "/api/v1/reports/uniforms", http.StatusBadGateway, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(t, &tt.principal, http.MethodGet, tt.path, nil)
			require.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			if tt.wantStatus != http.StatusOK {
				assert.False(t, decode(t, w).Success)
				return
			}
			env := decode(t, w)
			require.NotNil(t, env.Meta)
			assert.Equal(t, tt.wantItems, env.Meta.TotalItems)
		})
	}
}

func TestRouter_ExportReport(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, &hrdUser, http.MethodGet, "/api/v1/reports/kyc/export?format=xlsx", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")
	assert.Equal(t, "3", w.Header().Get("X-Row-Count"))
	assert.NotEmpty(t, w.Body.Bytes())

	w = s.do(t, &hrdUser, http.MethodGet, "/api/v1/reports/kyc/export?format=docx", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, &hrdUser, http.MethodGet, "/api/v1/exports", nil)
	assert.Equal(t, http.StatusNotImplemented, w.Code)
}

func TestRouter_ViewLifecycle(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, &hrdUser, http.MethodPost, "/api/v1/views", map[string]any{"report": "kyc"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	snap := snapshotOf(t, w)
	require.NotEmpty(t, snap.ID)
	assert.Equal(t, "ready", snap.State)
	assert.Equal(t, 3, snap.TotalItems)
	base := "/api/v1/views/" + snap.ID

	// Another caller cannot see the view
	w = s.do(t, &coordinatorUser, http.MethodGet, base, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, &hrdUser, http.MethodPatch, base+"/filters", map[string]any{"project": "Alpha"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, snapshotOf(t, w).TotalItems)

	w = s.do(t, &hrdUser, http.MethodPost, base+"/sort", map[string]any{"key": "name"})
	require.Equal(t, http.StatusOK, w.Code)
	snap = snapshotOf(t, w)
	assert.Equal(t, "name", snap.Filters.SortKey)
	assert.Equal(t, "asc", snap.Filters.SortDirection)
	require.Len(t, snap.Rows, 2)
	assert.Equal(t, "E1", snap.Rows[0].ID)

	w = s.do(t, &hrdUser, http.MethodPost, base+"/sort", map[string]any{"key": "name"})
	snap = snapshotOf(t, w)
	assert.Equal(t, "desc", snap.Filters.SortDirection)
	assert.Equal(t, "E3", snap.Rows[0].ID)

	w = s.do(t, &hrdUser, http.MethodPut, base+"/page", map[string]any{"page": 0})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = s.do(t, &hrdUser, http.MethodPut, base+"/page", map[string]any{"page": 9})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, decode(t, w).Meta.Page)

	w = s.do(t, &hrdUser, http.MethodPost, base+"/refresh", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, snapshotOf(t, w).TotalItems)

	w = s.do(t, &hrdUser, http.MethodGet, base+"/export?format=pdf", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Equal(t, "2", w.Header().Get("X-Row-Count"))

	w = s.do(t, &hrdUser, http.MethodDelete, base, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, &hrdUser, http.MethodGet, base, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_Actions(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, &hrdUser, http.MethodPost, "/api/v1/views", map[string]any{"report": "kyc"})
	require.Equal(t, http.StatusCreated, w.Code)
	base := "/api/v1/views/" + snapshotOf(t, w).ID

	w = s.do(t, &hrdUser, http.MethodPost, base+"/records/E1/reject", map[string]any{"reason": "  "})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, decode(t, w).Error.Details, "reason")

	w = s.do(t, &hrdUser, http.MethodPost, base+"/records/E1/approve", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Approved successfully.", decode(t, w).Message)

	w = s.do(t, &hrdUser, http.MethodPost, base+"/records/E2/approve", nil)
	require.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, "KYC already processed", decode(t, w).Error.Message)

	w = s.do(t, &hrdUser, http.MethodPost, base+"/records/E1/issue", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, &hrdUser, http.MethodPost, base+"/records/E404/approve", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, &hrdUser, http.MethodGet, base, nil)
	snap := snapshotOf(t, w)
	statuses := map[string]string{}
	for _, row := range snap.Rows {
		statuses[row.ID] = row.Status
	}
	assert.Equal(t, map[string]string{"E1": "Approved", "E2": "Pending", "E3": "Approved"}, statuses)

	w = s.do(t, &hrdUser, http.MethodGet, base+"/records/E1/history", nil)
	assert.Equal(t, http.StatusNotImplemented, w.Code)

	// Coordinators can view KYC but not act on it
	w = s.do(t, &coordinatorUser, http.MethodPost, "/api/v1/views", map[string]any{"report": "kyc"})
	require.Equal(t, http.StatusCreated, w.Code)
	coordBase := "/api/v1/views/" + snapshotOf(t, w).ID
	w = s.do(t, &coordinatorUser, http.MethodPost, coordBase+"/records/E1/approve", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRouter_EventStream(t *testing.T) {
	s := newTestServer(t)
	srv := httptest.NewServer(s.router)
	defer srv.Close()

	w := s.do(t, &hrdUser, http.MethodPost, "/api/v1/views", map[string]any{"report": "kyc"})
	require.Equal(t, http.StatusCreated, w.Code)
	viewID := snapshotOf(t, w).ID

	w = s.do(t, &coordinatorUser, http.MethodPost, "/api/v1/views/"+viewID+"/events/token", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, &hrdUser, http.MethodPost, "/api/v1/views/"+viewID+"/events/token", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var tok SSETokenResponse
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &tok))

	resp, err := http.Get(srv.URL + "/api/v1/views/" + viewID + "/events")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/v1/views/"+viewID+"/events?token="+tok.Token, nil)
	require.NoError(t, err)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	lines := make(chan string, 32)
	go func() {
		scanner := bufio.NewScanner(resp.Body)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		close(lines)
	}()

	waitFor := func(prefix string) string {
		for {
			select {
			case line, ok := <-lines:
				if !ok {
					t.Fatalf("stream closed before %q", prefix)
				}
				if strings.HasPrefix(line, prefix) {
					return line
				}
			case <-ctx.Done():
				t.Fatalf("timed out waiting for %q", prefix)
			}
		}
	}

	waitFor("event: connected")

	w = s.do(t, &hrdUser, http.MethodPost, "/api/v1/views/"+viewID+"/records/E1/approve", nil)
	require.Equal(t, http.StatusOK, w.Code)

	waitFor("event: toast")
	data := waitFor("data: ")
	assert.Contains(t, data, "Approved successfully.")
}
