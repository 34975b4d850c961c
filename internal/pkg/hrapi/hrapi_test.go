package hrapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2/clientcredentials"
)

func TestClient_FetchBuildsURLAndForwardsBearer(t *testing.T) {
	var gotPath, gotQuery, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"attendance":[]}`))
	}))
	defer srv.Close()

	c := NewClient(NewTransport(srv.URL+"/", "static-token", time.Second))

	body, err := c.Fetch(context.Background(), ProjectAttendance("Exozen Ops"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"attendance":[]}`, string(body))
	assert.Equal(t, "/attendance/project/attendance", gotPath)
	assert.Equal(t, "projectName=Exozen+Ops", gotQuery)
	assert.Equal(t, "Bearer static-token", gotAuth)

	_, err = c.Fetch(WithBearer(context.Background(), "caller-token"), AllAttendance())
	require.NoError(t, err)
	assert.Equal(t, "Bearer caller-token", gotAuth)
}

func TestClient_FetchWithoutToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	_, err := NewClient(NewTransport(srv.URL, "", time.Second)).Fetch(context.Background(), KYCForms())
	require.NoError(t, err)
	assert.Empty(t, gotAuth)
}

func TestClient_APIErrorMessage(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		message string
	}{
		{"message field", http.StatusBadRequest, `{"message":"Leave already processed"}`, "Leave already processed"},
		{"reason field", http.StatusConflict, `{"reason":"Duplicate request"}`, "Duplicate request"},
		{"error object", http.StatusInternalServerError, `{"error":{"message":"db down"}}`, "db down"},
		{"blank message field", http.StatusBadRequest, `{"message":"  "}`, ""},
		{"plain text", http.StatusBadGateway, `upstream timeout`, ""},
		{"html page", http.StatusBadGateway, `<html><body><h1>502 Bad Gateway</h1></body></html>`, ""},
		{"empty body", http.StatusBadGateway, ``, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewClient(NewTransport(srv.URL, "", time.Second)).Fetch(context.Background(), AllUniforms())
			require.Error(t, err)

			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.message, apiErr.Message)

			msg, ok := ServerMessage(err)
			assert.Equal(t, tt.message != "", ok)
			assert.Equal(t, tt.message, msg)
		})
	}
}

func TestAPIError_ErrorKeepsRawBodyForLogs(t *testing.T) {
	err := &APIError{Method: http.MethodGet, Path: "/kyc", StatusCode: http.StatusBadGateway, Body: "<html>down</html>"}
	assert.Equal(t, "GET /kyc failed with status code 502: <html>down</html>", err.Error())

	err = &APIError{Method: http.MethodGet, Path: "/kyc", StatusCode: http.StatusBadGateway}
	assert.Equal(t, "GET /kyc failed with status code 502: Bad Gateway", err.Error())
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		n    int
		want string
	}{
		{"short", "abc", 5, "abc"},
		{"ascii", "abcdef", 3, "abc"},
		{"inside rune", "ab\u00e9c", 3, "ab"},
		{"after rune", "ab\u00e9c", 4, "ab\u00e9"},
		{"multibyte only", "\u65e5\u672c", 4, "\u65e5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncate(tt.in, tt.n)
			assert.Equal(t, tt.want, got)
			assert.True(t, utf8.ValidString(got))
		})
	}
}

func TestClient_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := NewClient(NewTransport(url, "", time.Second)).Fetch(context.Background(), AllIDCards())
	assert.ErrorIs(t, err, ErrNetwork)

	_, ok := ServerMessage(err)
	assert.False(t, ok)
}

func TestClient_Cancellation(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		_, err := NewClient(NewTransport(srv.URL, "", 5*time.Second)).Fetch(ctx, AllLeaveRequests())
		errCh <- err
	}()
	cancel()

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, context.Canceled)
		assert.NotErrorIs(t, err, ErrNetwork)
	case <-time.After(2 * time.Second):
		t.Fatal("fetch was not cancelled")
	}
}

func TestClient_Submit(t *testing.T) {
	var gotMethod, gotPath string
	var gotBody map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath = r.Method, r.URL.Path
		gotBody = map[string]string{}
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Write([]byte(`{"message":"Leave rejected"}`))
	}))
	defer srv.Close()

	c := NewClient(NewTransport(srv.URL, "", time.Second))
	ep, err := ActionEndpoint(ResourceLeave, "L1", "reject")
	require.NoError(t, err)

	msg, err := c.Submit(context.Background(), ep, "  Not enough cover ")
	require.NoError(t, err)
	assert.Equal(t, "Leave rejected", msg)
	assert.Equal(t, http.MethodPut, gotMethod)
	assert.Equal(t, "/leave/L1/reject", gotPath)
	assert.Equal(t, "Not enough cover", gotBody["reason"])

	ep, err = ActionEndpoint(ResourceKYC, "EMP001", "approve")
	require.NoError(t, err)
	_, err = c.Submit(context.Background(), ep, "")
	require.NoError(t, err)
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "/kyc/EMP001/approve", gotPath)
	_, hasReason := gotBody["reason"]
	assert.False(t, hasReason)
}

func TestActionEndpoint(t *testing.T) {
	tests := []struct {
		resource Resource
		method   string
		path     string
	}{
		{ResourceKYC, http.MethodPost, "/kyc/EMP%2F1/approve"},
		{ResourceRegularization, http.MethodPut, "/attendance/regularization/EMP%2F1/approve"},
		{ResourceUniform, http.MethodPut, "/uniforms/EMP%2F1/approve"},
		{ResourceIDCard, http.MethodPut, "/id-cards/EMP%2F1/approve"},
	}
	for _, tt := range tests {
		ep, err := ActionEndpoint(tt.resource, "EMP/1", "approve")
		require.NoError(t, err)
		assert.Equal(t, tt.method, ep.Method)
		assert.Equal(t, tt.path, ep.Path)
	}

	_, err := ActionEndpoint("payroll", "1", "approve")
	assert.Error(t, err)
}

func TestEndpoints(t *testing.T) {
	ep := MonthlyEmployeeAttendance("EMP001", 1, 2024)
	assert.Equal(t, "/attendance/report/monthly/employee", ep.Path)
	assert.Equal(t, "GET /attendance/report/monthly/employee?employeeId=EMP001&month=1&year=2024", ep.String())

	assert.Equal(t, "/attendance/EMP001/monthly-summary", MonthlySummary("EMP001", 2, 2024).Path)
	assert.Equal(t, "/attendance/EMP001/monthly-stats", MonthlyStats("EMP001", 0, 0).Path)
	assert.Empty(t, MonthlyStats("EMP001", 0, 0).Query)
	assert.Equal(t, "/leave/history/EMP001", LeaveHistory("EMP001").Path)
	assert.Equal(t, "/leave/balance/EMP001", LeaveBalance("EMP001").Path)
	assert.Equal(t, "/attendance/regularization/all", Regularizations().Path)
}

func TestClientCredentialsTransport(t *testing.T) {
	var gotAuth string
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"machine-token","token_type":"Bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/kyc", func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"kycForms":[]}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	tr := NewClientCredentialsTransport(context.Background(), srv.URL, clientcredentials.Config{
		ClientID:     "report-service",
		ClientSecret: "secret",
		TokenURL:     srv.URL + "/oauth/token",
	}, time.Second)

	_, err := NewClient(tr).Fetch(WithBearer(context.Background(), "caller-token"), KYCForms())
	require.NoError(t, err)
	assert.Equal(t, "Bearer machine-token", gotAuth)
}
