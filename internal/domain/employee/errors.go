package employee

import "errors"

var (
	ErrEmployeeNotFound = errors.New("employee not found")
	ErrEmailExists      = errors.New("email already registered in this company")
	ErrEmployeeInactive = errors.New("employee is inactive")
	ErrCannotDeleteSelf = errors.New("cannot delete your own employee record")
	ErrInvalidStatus    = errors.New("status must be active or inactive")
)
