package normalize

import (
	"github.com/cmlabs-hris/hris-report-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-report-go/internal/pkg/metrics"
)

var regularizationRoots = []string{"regularizations", "data.regularizations", "requests", "data"}

// Regularizations normalizes punch correction requests.
func Regularizations(body []byte) Result[attendance.Regularization] {
	return collect(body, regularizationRoots, buildRegularization)
}

func buildRegularization(o object) (attendance.Regularization, bool) {
	empID := o.str(employeeIDAliases...)
	if empID == "" {
		return attendance.Regularization{}, false
	}

	r := attendance.Regularization{
		ID:           o.str("_id", "id", "regularizationId", "requestId"),
		EmployeeID:   empID,
		EmployeeName: o.name(),
		ProjectName:  o.str(projectAliases...),
		RawDate:      o.str(append([]string{"regularizationDate"}, dateAliases...)...),
		RequestedIn:  o.str(append([]string{"requestedPunchIn", "requestedIn"}, punchInAliases...)...),
		RequestedOut: o.str(append([]string{"requestedPunchOut", "requestedOut"}, punchOutAliases...)...),
		Reason:       o.str("reason", "remarks", "comment"),
		Status:       attendance.ParseRequestStatus(o.str(statusAliases...)),
	}
	if r.ID == "" {
		r.ID = empID
	}
	r.Date, _ = metrics.ParseDate(r.RawDate)
	return r, true
}
