package kiosk

import "errors"

var (
	ErrKioskNotFound     = errors.New("kiosk not found")
	ErrKioskForbidden    = errors.New("kiosk belongs to another company")
	ErrInvalidKioskName  = errors.New("kiosk name cannot be empty")
	ErrKioskNameConflict = errors.New("kiosk name already exists in this company")
)
