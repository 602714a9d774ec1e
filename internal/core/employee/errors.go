package employee

import "errors"

var (
	ErrInvalidID        = errors.New("employee: invalid id")
	ErrInvalidFirstName = errors.New("employee: invalid first name")
	ErrInvalidStatus    = errors.New("employee: invalid status")
	ErrInvalidSource    = errors.New("employee: invalid source")
	ErrEmployeeNotFound = errors.New("employee: not found")
	ErrEmailTaken       = errors.New("employee: email already exists")
	ErrSameEmployee     = errors.New("employee: cannot merge an employee with itself")
	ErrKeepRetired      = errors.New("employee: employee to keep is terminated")
	ErrInvalidTable     = errors.New("employee: invalid collaborator table")
	ErrMergeFailed      = errors.New("employee: merge failed")
)
