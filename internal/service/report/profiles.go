package report

import (
	"errors"
	"fmt"
	"os"

	"github.com/cmlabs-hris/hris-report-go/internal/domain/report"
	"github.com/cmlabs-hris/hris-report-go/internal/domain/user"
	"gopkg.in/yaml.v3"
)

var ErrInvalidProfiles = errors.New("invalid role profiles")

// Profile declares what one role may open.
type Profile struct {
	Role       user.Role
	Reports    []report.Key
	Scope      RecordScope
	CanApprove bool
	PageSizes  map[report.Key]int
}

// Allows reports whether the profile lists key.
func (p Profile) Allows(key report.Key) bool {
	for _, k := range p.Reports {
		if k == key {
			return true
		}
	}
	return false
}

// PageSize returns the override for key, or fallback.
func (p Profile) PageSize(key report.Key, fallback int) int {
	if n, ok := p.PageSizes[key]; ok && n > 0 {
		return n
	}
	return fallback
}

type Profiles map[user.Role]Profile

var allKeys = []report.Key{
	report.KeyAttendance,
	report.KeyLeaveRequests,
	report.KeyLeaveHistory,
	report.KeyLeaveBalance,
	report.KeyRegularizations,
	report.KeyKYC,
	report.KeyUniforms,
	report.KeyIDCards,
	report.KeyEmployeeMonthly,
}

// DefaultProfiles are the compiled-in role profiles.
func DefaultProfiles() Profiles {
	return Profiles{
		user.RoleHRD: {
			Role:       user.RoleHRD,
			Reports:    allKeys,
			Scope:      ScopeAll,
			CanApprove: user.HasPermission(user.RoleHRD, user.PermissionActionApprove),
		},
		user.RoleManagerOps: {
			Role:       user.RoleManagerOps,
			Reports:    allKeys,
			Scope:      ScopeAll,
			CanApprove: user.HasPermission(user.RoleManagerOps, user.PermissionActionApprove),
		},
		user.RoleManager: {
			Role:       user.RoleManager,
			Reports:    allKeys,
			Scope:      ScopeProject,
			CanApprove: user.HasPermission(user.RoleManager, user.PermissionActionApprove),
		},
		user.RoleCoordinator: {
			Role: user.RoleCoordinator,
			Reports: []report.Key{
				report.KeyAttendance,
				report.KeyLeaveHistory,
				report.KeyLeaveBalance,
				report.KeyKYC,
				report.KeyUniforms,
				report.KeyIDCards,
				report.KeyEmployeeMonthly,
			},
			Scope:      ScopeProject,
			CanApprove: user.HasPermission(user.RoleCoordinator, user.PermissionActionApprove),
		},
		user.RoleEmployee: {
			Role: user.RoleEmployee,
			Reports: []report.Key{
				report.KeyLeaveHistory,
				report.KeyLeaveBalance,
				report.KeyEmployeeMonthly,
			},
			Scope:      ScopeSelf,
			CanApprove: false,
		},
	}
}

// profileFile is the YAML overlay. Fields left out keep their defaults.
type profileFile struct {
	Roles map[string]profileOverride `yaml:"roles"`
}

type profileOverride struct {
	Reports    []report.Key       `yaml:"reports"`
	Scope      *RecordScope       `yaml:"scope"`
	CanApprove *bool              `yaml:"can_approve"`
	PageSizes  map[report.Key]int `yaml:"page_sizes"`
}

// LoadProfiles returns the defaults overlaid with the YAML file at path. An empty path
// returns the defaults.
func LoadProfiles(path string) (Profiles, error) {
	profiles := DefaultProfiles()
	if path == "" {
		return profiles, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read role profiles: %w", err)
	}
	if err := profiles.overlay(data); err != nil {
		return nil, err
	}
	return profiles, nil
}

func (ps Profiles) overlay(data []byte) error {
	var file profileFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidProfiles, err)
	}

	for name, o := range file.Roles {
		role, ok := user.ParseRole(name)
		if !ok {
			return fmt.Errorf("%w: unknown role %q", ErrInvalidProfiles, name)
		}
		profile := ps[role]
		profile.Role = role

		if o.Reports != nil {
			for _, k := range o.Reports {
				if !isKnownKey(k) {
					return fmt.Errorf("%w: role %s lists unknown report %q", ErrInvalidProfiles, role, k)
				}
			}
			profile.Reports = o.Reports
		}
		if o.Scope != nil {
			if !o.Scope.valid() {
				return fmt.Errorf("%w: role %s has unknown scope %q", ErrInvalidProfiles, role, *o.Scope)
			}
			profile.Scope = *o.Scope
		}
		if o.CanApprove != nil {
			profile.CanApprove = *o.CanApprove
		}
		if len(o.PageSizes) > 0 {
			sizes := make(map[report.Key]int, len(profile.PageSizes)+len(o.PageSizes))
			for k, n := range profile.PageSizes {
				sizes[k] = n
			}
			for k, n := range o.PageSizes {
				if !isKnownKey(k) || n < 1 {
					return fmt.Errorf("%w: role %s has invalid page size for %q", ErrInvalidProfiles, role, k)
				}
				sizes[k] = n
			}
			profile.PageSizes = sizes
		}

		ps[role] = profile
	}
	return nil
}

func isKnownKey(k report.Key) bool {
	for _, known := range allKeys {
		if known == k {
			return true
		}
	}
	return false
}
