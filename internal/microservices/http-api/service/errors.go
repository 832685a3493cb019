package service

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// Error kinds returned by every service. Callers match with errors.Is;
// the wrapped message carries the detail.
var (
	ErrValidation              = errors.New("validation error")
	ErrInvalidConfirmationCode = errors.New("invalid confirmation code")
	ErrUnauthorized            = errors.New("unauthorized")
	ErrForbidden               = errors.New("forbidden")
	ErrNotFound                = errors.New("not found")
	ErrConflict                = errors.New("conflict")
	ErrDelivery                = errors.New("delivery failed")
)

func validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// translate maps storage errors onto the error kinds above. Unknown errors pass through.
func translate(err error, subject string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%w: %s", ErrNotFound, subject)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %s already exists", ErrConflict, subject)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return fmt.Errorf("%w: %s refers to a missing record", ErrNotFound, subject)
	case errors.Is(err, gorm.ErrCheckConstraintViolated):
		return fmt.Errorf("%w: %s", ErrValidation, subject)
	}
	return err
}
