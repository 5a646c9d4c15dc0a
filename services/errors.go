package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// ErrNotFound is wrapped by every lookup failure of a missing entity.
var ErrNotFound = errors.New("not found")

// ValidationError is a business rule violation caused by the request.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func validationf(format string, args ...interface{}) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func notFound(entity string, id uint) error {
	return fmt.Errorf("%s %d %w", entity, id, ErrNotFound)
}

// lookupErr turns gorm's record-not-found into ErrNotFound and leaves other errors alone.
func lookupErr(err error, entity string, id uint) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound(entity, id)
	}
	return err
}
