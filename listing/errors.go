package listing

import "errors"

var (
	ErrInvalidName        = errors.New("full name must be at least 2 characters and contain only letters")
	ErrInvalidMobile      = errors.New("mobile number must be exactly 10 digits")
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrMissingVisitDate   = errors.New("visit date is required")
	ErrMissingID          = errors.New("property id is required")
	ErrUnexpectedResponse = errors.New("unexpected response format")
)
