package normalize

import (
	"github.com/cmlabs-hris/hris-report-go/internal/domain/issuance"
	"github.com/cmlabs-hris/hris-report-go/internal/pkg/metrics"
)

var (
	uniformRoots = []string{"uniforms", "uniformRequests", "data.uniforms", "data"}
	idCardRoots  = []string{"allIdCards", "idCards", "data.allIdCards", "data"}
)

// Uniforms normalizes uniform requests. A request without its own id is addressed by employee id.
func Uniforms(body []byte) Result[issuance.UniformRequest] {
	return collect(body, uniformRoots, buildUniform)
}

func buildUniform(o object) (issuance.UniformRequest, bool) {
	empID := o.str(employeeIDAliases...)
	if empID == "" {
		return issuance.UniformRequest{}, false
	}

	u := issuance.UniformRequest{
		ID:             o.str("_id", "id", "uniformId", "requestId"),
		EmployeeID:     empID,
		EmployeeName:   o.name(),
		Designation:    o.str(designationAliases...),
		ProjectName:    o.str(projectAliases...),
		Items:          o.list("items", "uniformItems", "requestedItems", "uniformType"),
		Status:         issuance.ParseStatus(o.str(statusAliases...)),
		RawRequestedAt: o.str("requestedAt", "requestDate", "createdAt"),
	}
	if u.ID == "" {
		u.ID = empID
	}
	u.RequestedAt, _ = metrics.ParseDate(u.RawRequestedAt)
	return u, true
}

// IDCards normalizes the ID card issuance listing.
func IDCards(body []byte) Result[issuance.IDCard] {
	return collect(body, idCardRoots, buildIDCard)
}

func buildIDCard(o object) (issuance.IDCard, bool) {
	empID := o.str(employeeIDAliases...)
	if empID == "" {
		return issuance.IDCard{}, false
	}

	c := issuance.IDCard{
		ID:           o.str("_id", "id", "cardId", "idCardId"),
		EmployeeID:   empID,
		EmployeeName: o.name(),
		Designation:  o.str(designationAliases...),
		ProjectName:  o.str(projectAliases...),
		Status:       issuance.ParseStatus(o.str(statusAliases...)),
		RawIssuedAt:  o.str("issuedAt", "issueDate", "issuedOn", "createdAt"),
		RawValidTil:  o.str("validUntil", "validTill", "expiryDate", "expiresAt"),
	}
	if c.ID == "" {
		c.ID = empID
	}
	c.IssuedAt, _ = metrics.ParseDate(c.RawIssuedAt)
	c.ValidUntil, _ = metrics.ParseDate(c.RawValidTil)
	return c, true
}
