package normalize

import (
	"github.com/cmlabs-hris/hris-report-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-report-go/internal/pkg/metrics"
)

var kycRoots = []string{"kycForms", "data.kycForms", "data"}

// KYCForms normalizes the KYC listing that doubles as the employee directory.
func KYCForms(body []byte) Result[employee.Employee] {
	return collect(body, kycRoots, buildEmployee)
}

func buildEmployee(o object) (employee.Employee, bool) {
	id := o.str(employeeIDAliases...)
	if id == "" {
		return employee.Employee{}, false
	}

	e := employee.Employee{
		EmployeeID:     id,
		FullName:       o.name(),
		Designation:    o.str(designationAliases...),
		ProjectName:    o.str(projectAliases...),
		Email:          o.str("personalDetails.email", "email", "contactDetails.email"),
		Phone:          o.str("personalDetails.phoneNumber", "personalDetails.phone", "phoneNumber", "phone", "mobile"),
		KYCStatus:      employee.ParseKYCStatus(o.str("status", "kycStatus", "verificationStatus")),
		RawSubmittedAt: o.str("submittedAt", "createdAt", "updatedAt"),
	}
	e.SubmittedAt, _ = metrics.ParseDate(e.RawSubmittedAt)
	return e, true
}
