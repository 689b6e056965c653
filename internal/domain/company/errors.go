package company

import "errors"

var (
	ErrCompanyNotFound      = errors.New("company not found")
	ErrInvalidCompanyName   = errors.New("company name cannot be empty")
	ErrDuplicateLocation    = errors.New("location names must be unique")
	ErrMissingCoordinates   = errors.New("location coordinates are required")
	ErrMultipleMainLocation = errors.New("only one location can be flagged main")
)
