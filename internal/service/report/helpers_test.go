package report

import (
	"context"
	"net/http"
	"sync"

	"github.com/cmlabs-hris/hris-report-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-report-go/internal/pkg/hrapi"
)

// fakeFetcher serves canned bodies by endpoint path.
type fakeFetcher struct {
	mu     sync.Mutex
	bodies map[string]string
	errs   map[string]error
	calls  []hrapi.Endpoint
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{bodies: map[string]string{}, errs: map[string]error{}}
}

func (f *fakeFetcher) with(path, body string) *fakeFetcher {
	f.bodies[path] = body
	return f
}

func (f *fakeFetcher) failing(path string, err error) *fakeFetcher {
	f.errs[path] = err
	return f
}

func (f *fakeFetcher) Fetch(ctx context.Context, ep hrapi.Endpoint) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, ep)

	if err := f.errs[ep.Path]; err != nil {
		return nil, err
	}
	body, ok := f.bodies[ep.Path]
	if !ok {
		return nil, &hrapi.APIError{Method: ep.Method, Path: ep.Path, StatusCode: http.StatusNotFound, Message: "not found"}
	}
	return []byte(body), nil
}

func (f *fakeFetcher) paths() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	paths := make([]string, len(f.calls))
	for i, c := range f.calls {
		paths[i] = c.Path
	}
	return paths
}

var (
	hrd         = user.Principal{Role: user.RoleHRD, EmployeeID: "HR1", BearerToken: "token-hr"}
	manager     = user.Principal{Role: user.RoleManager, EmployeeID: "M1", ProjectName: "Alpha"}
	coordinator = user.Principal{Role: user.RoleCoordinator, EmployeeID: "C1", ProjectName: "Alpha"}
	staff       = user.Principal{Role: user.RoleEmployee, EmployeeID: "E9", ProjectName: "Beta"}
)

const attendanceBody = `{"attendance": [
	{"employeeId": "E1", "employeeName": "Asha Rao", "projectName": "Alpha", "designation": "Guard",
	 "date": "2025-03-03", "punchInTime": "2025-03-03T09:00:00Z", "punchOutTime": "2025-03-03T17:30:00Z", "status": "Present"},
	{"employeeId": "E2", "employeeName": "Budi Santoso", "projectName": "Beta", "designation": "Cleaner",
	 "date": "2025-03-04", "status": "Absent"},
	{"employeeId": "E3", "employeeName": "Citra Dewi", "projectName": "Alpha", "designation": "Guard",
	 "date": "2025-03-05", "punchInTime": "2025-03-05T09:20:00Z", "punchOutTime": "2025-03-05T13:20:00Z",
	 "status": "Half Day", "isLate": true}
]}`

const kycBody = `{"kycForms": [
	{"personalDetails": {"employeeId": "E1", "firstName": "Asha", "lastName": "Rao", "projectName": "Alpha", "designation": "Guard"}, "status": "Pending"},
	{"personalDetails": {"employeeId": "E2", "firstName": "Budi", "lastName": "Santoso", "projectName": "beta", "designation": "Cleaner"}, "status": "Pending"},
	{"personalDetails": {"employeeId": "E3", "firstName": "Citra", "lastName": "Dewi", "projectName": "alpha", "designation": "Guard"}, "status": "Approved"}
]}`

const leaveHistoryBody = `{"leaveHistory": [
	{"leaveId": "L1", "leaveType": "EL", "startDate": "2025-03-10", "endDate": "2025-03-12", "status": "Approved"},
	{"leaveId": "L2", "leaveType": "SL", "startDate": "2025-03-20", "endDate": "2025-03-20", "isHalfDay": true, "status": "Pending"}
]}`

const leaveBalanceBody = `{"balances": [
	{"leaveType": "EL", "allocated": 12, "used": 3, "pending": 0, "remaining": 9},
	{"leaveType": "SL", "allocated": 6, "used": 1, "pending": 0.5, "remaining": 4}
], "totalAllocated": 18, "totalUsed": 4, "totalPending": 0.5, "totalRemaining": 13}`

const summaryBody = `{"summary": {"totalDays": 22, "presentDays": 18, "absentDays": 2, "halfDays": 1, "leaveDays": 1, "lateDays": 3, "attendanceRate": "82%"}}`
