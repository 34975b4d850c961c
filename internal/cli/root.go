// Package cli holds the hrreport command implementations.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/cmlabs-hris/hris-report-go/internal/domain/report"
	"github.com/cmlabs-hris/hris-report-go/internal/domain/user"
)

// Context is passed to every command's Run method
type Context struct {
	Reports report.ReportService
	Logger  *slog.Logger
	Out     io.Writer
}

// Caller identifies whose view of the data a command runs with.
type Caller struct {
	Role       string `help:"Role to run as (hrd|manager-ops|manager|coordinator|employee)." default:"hrd" env:"HRREPORT_ROLE"`
	EmployeeID string `name:"as-employee" help:"Employee ID of the caller." env:"HRREPORT_EMPLOYEE_ID"`
	Project    string `name:"as-project" help:"Project of the caller, for project scoped roles." env:"HRREPORT_PROJECT"`
	Token      string `help:"Bearer token forwarded to the HR API." env:"HR_API_TOKEN"`
}

func (c Caller) Principal() (user.Principal, error) {
	role, ok := user.ParseRole(c.Role)
	if !ok {
		return user.Principal{}, fmt.Errorf("%w: %q", user.ErrInvalidRole, c.Role)
	}
	return user.Principal{
		Role:        role,
		EmployeeID:  strings.TrimSpace(c.EmployeeID),
		ProjectName: strings.TrimSpace(c.Project),
		BearerToken: c.Token,
	}, nil
}
