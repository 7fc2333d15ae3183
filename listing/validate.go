package listing

import (
	"errors"
	"net/mail"
	"unicode/utf8"
)

const (
	minNameLength = 2
	mobileLength  = 10
)

// Validate checks the lead-capture rules. All violations are joined.
func (e Enquiry) Validate() error {
	var errs []error
	if !validName(e.Name) {
		errs = append(errs, ErrInvalidName)
	}
	if utf8.RuneCountInString(e.MobileNo) != mobileLength {
		errs = append(errs, ErrInvalidMobile)
	}
	if !validEmail(e.Email) {
		errs = append(errs, ErrInvalidEmail)
	}
	return errors.Join(errs...)
}

// Validate checks the enquiry rules plus the visit date.
func (v Visit) Validate() error {
	err := v.Enquiry.Validate()
	if v.VisitAt.IsZero() {
		err = errors.Join(err, ErrMissingVisitDate)
	}
	return err
}

func validName(name string) bool {
	if len(name) < minNameLength {
		return false
	}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r == ' ', r == '\t', r == '\n', r == '\r', r == '\f', r == '\v':
		default:
			return false
		}
	}
	return true
}

// validEmail accepts a bare address only, no display name.
func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}
