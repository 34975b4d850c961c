package report

import (
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-report-go/internal/domain/report"
	"github.com/cmlabs-hris/hris-report-go/internal/domain/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveScope(t *testing.T) {
	now := time.Date(2025, 4, 15, 10, 0, 0, 0, time.UTC)
	profiles := DefaultProfiles()

	tests := []struct {
		name      string
		principal user.Principal
		params    report.ScopeParams
		want      Scope
		wantErr   error
	}{
		{
			name:      "self scope ignores requested employee",
			principal: staff,
			params:    report.ScopeParams{EmployeeID: "E1", ProjectName: "Alpha", Month: 2, Year: 2025},
			want:      Scope{Role: user.RoleEmployee, Records: ScopeSelf, EmployeeID: "E9", ProjectName: "Beta", Month: 2, Year: 2025},
		},
		{
			name:      "project scope pins the token project",
			principal: manager,
			params:    report.ScopeParams{EmployeeID: "E1", ProjectName: "Beta"},
			want:      Scope{Role: user.RoleManager, Records: ScopeProject, EmployeeID: "E1", ProjectName: "Alpha", Month: 4, Year: 2025},
		},
		{
			name:      "all scope may narrow to a project",
			principal: hrd,
			params:    report.ScopeParams{ProjectName: "Beta"},
			want:      Scope{Role: user.RoleHRD, Records: ScopeAll, ProjectName: "Beta", Month: 4, Year: 2025},
		},
		{
			name:      "self scope needs an employee id",
			principal: user.Principal{Role: user.RoleEmployee},
			wantErr:   user.ErrEmployeeIDRequired,
		},
		{
			name:      "project scope needs a project",
			principal: user.Principal{Role: user.RoleCoordinator, EmployeeID: "C1"},
			wantErr:   user.ErrProjectRequired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveScope(tt.principal, profiles[tt.principal.Role], tt.params, now)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestScope_Restrictions(t *testing.T) {
	assert.True(t, Scope{Records: ScopeProject, ProjectName: "Alpha"}.restrictsProject())
	assert.False(t, Scope{Records: ScopeAll}.restrictsProject())
	assert.True(t, Scope{Records: ScopeAll, ProjectName: "Alpha"}.restrictsProject())
	assert.False(t, Scope{Records: ScopeSelf, ProjectName: "Alpha"}.restrictsProject())
	assert.True(t, Scope{Records: ScopeSelf}.restrictsEmployee())
	assert.False(t, Scope{Records: ScopeProject}.restrictsEmployee())
}
