package report

import (
	"time"

	"github.com/cmlabs-hris/hris-report-go/internal/domain/report"
	"github.com/cmlabs-hris/hris-report-go/internal/domain/user"
)

// RecordScope is how far a role can see.
type RecordScope string

const (
	ScopeSelf    RecordScope = "self"
	ScopeProject RecordScope = "project"
	ScopeAll     RecordScope = "all"
)

func (s RecordScope) valid() bool {
	switch s {
	case ScopeSelf, ScopeProject, ScopeAll:
		return true
	}
	return false
}

// Scope is the context a view is created with. It never changes for the life of the view.
type Scope struct {
	Role        user.Role
	Records     RecordScope
	EmployeeID  string
	ProjectName string
	Month       int
	Year        int
}

// ResolveScope binds the request parameters to what the principal's profile allows.
// Self-scoped principals always see their own records; project-scoped principals are
// pinned to the project in their token.
func ResolveScope(p user.Principal, profile Profile, params report.ScopeParams, now time.Time) (Scope, error) {
	scope := Scope{
		Role:    p.Role,
		Records: profile.Scope,
		Month:   params.Month,
		Year:    params.Year,
	}
	if scope.Month == 0 {
		scope.Month = int(now.Month())
	}
	if scope.Year == 0 {
		scope.Year = now.Year()
	}

	switch profile.Scope {
	case ScopeSelf:
		if p.EmployeeID == "" {
			return Scope{}, user.ErrEmployeeIDRequired
		}
		scope.EmployeeID = p.EmployeeID
		scope.ProjectName = p.ProjectName
	case ScopeProject:
		if p.ProjectName == "" {
			return Scope{}, user.ErrProjectRequired
		}
		scope.ProjectName = p.ProjectName
		scope.EmployeeID = params.EmployeeID
	default:
		scope.ProjectName = params.ProjectName
		scope.EmployeeID = params.EmployeeID
	}

	return scope, nil
}

// restrictsProject reports whether records outside ProjectName must be dropped.
func (s Scope) restrictsProject() bool {
	switch s.Records {
	case ScopeProject:
		return true
	case ScopeAll:
		return s.ProjectName != ""
	}
	return false
}

// restrictsEmployee reports whether records of other employees must be dropped.
func (s Scope) restrictsEmployee() bool {
	return s.Records == ScopeSelf
}
