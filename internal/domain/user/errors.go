package user

import "errors"

var (
	ErrInvalidRole             = errors.New("invalid role")
	ErrEmployeeIDRequired      = errors.New("employee ID is required")
	ErrProjectRequired         = errors.New("project name is required")
	ErrInsufficientPermissions = errors.New("insufficient permissions")
)
