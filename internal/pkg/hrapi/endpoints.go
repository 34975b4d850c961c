package hrapi

import (
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// Endpoint is one HR API call.
type Endpoint struct {
	Method string
	Path   string
	Query  map[string]string
}

// String renders the endpoint with its query in a stable order, for logs.
func (e Endpoint) String() string {
	if len(e.Query) == 0 {
		return e.Method + " " + e.Path
	}
	keys := make([]string, 0, len(e.Query))
	for k := range e.Query {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+e.Query[k])
	}
	return e.Method + " " + e.Path + "?" + strings.Join(parts, "&")
}

func get(path string, query map[string]string) Endpoint {
	return Endpoint{Method: http.MethodGet, Path: path, Query: query}
}

func monthQuery(month, year int) map[string]string {
	q := map[string]string{}
	if month > 0 {
		q["month"] = strconv.Itoa(month)
	}
	if year > 0 {
		q["year"] = strconv.Itoa(year)
	}
	return q
}

func KYCForms() Endpoint {
	return get("/kyc", nil)
}

func AllAttendance() Endpoint {
	return get("/attendance/all", nil)
}

func ProjectAttendance(projectName string) Endpoint {
	return get("/attendance/project/attendance", map[string]string{"projectName": projectName})
}

func MonthlyEmployeeAttendance(employeeID string, month, year int) Endpoint {
	q := monthQuery(month, year)
	q["employeeId"] = employeeID
	return get("/attendance/report/monthly/employee", q)
}

func MonthlySummary(employeeID string, month, year int) Endpoint {
	return get(fmt.Sprintf("/attendance/%s/monthly-summary", url.PathEscape(employeeID)), monthQuery(month, year))
}

func MonthlyStats(employeeID string, month, year int) Endpoint {
	return get(fmt.Sprintf("/attendance/%s/monthly-stats", url.PathEscape(employeeID)), monthQuery(month, year))
}

func LeaveHistory(employeeID string) Endpoint {
	return get("/leave/history/"+url.PathEscape(employeeID), nil)
}

func LeaveBalance(employeeID string) Endpoint {
	return get("/leave/balance/"+url.PathEscape(employeeID), nil)
}

func AllLeaveRequests() Endpoint {
	return get("/leave/all", nil)
}

func Regularizations() Endpoint {
	return get("/attendance/regularization/all", nil)
}

func AllUniforms() Endpoint {
	return get("/uniforms/all", nil)
}

func AllIDCards() Endpoint {
	return get("/id-cards/all", nil)
}

// Resource is a record family that accepts status transitions.
type Resource string

const (
	ResourceKYC            Resource = "kyc"
	ResourceRegularization Resource = "regularization"
	ResourceLeave          Resource = "leave"
	ResourceUniform        Resource = "uniform"
	ResourceIDCard         Resource = "id-card"
)

// ActionEndpoint is the status transition call for one record. verb is approve, reject or issue.
func ActionEndpoint(resource Resource, id, verb string) (Endpoint, error) {
	id = url.PathEscape(id)
	switch resource {
	case ResourceKYC:
		return Endpoint{Method: http.MethodPost, Path: fmt.Sprintf("/kyc/%s/%s", id, verb)}, nil
	case ResourceRegularization:
		return Endpoint{Method: http.MethodPut, Path: fmt.Sprintf("/attendance/regularization/%s/%s", id, verb)}, nil
	case ResourceLeave:
		return Endpoint{Method: http.MethodPut, Path: fmt.Sprintf("/leave/%s/%s", id, verb)}, nil
	case ResourceUniform:
		return Endpoint{Method: http.MethodPut, Path: fmt.Sprintf("/uniforms/%s/%s", id, verb)}, nil
	case ResourceIDCard:
		return Endpoint{Method: http.MethodPut, Path: fmt.Sprintf("/id-cards/%s/%s", id, verb)}, nil
	}
	return Endpoint{}, fmt.Errorf("unknown resource %q", resource)
}
