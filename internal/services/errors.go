// Package services holds the trip/reservation capacity core: trip
// record management, the reservation ledger, and cascade deletion.
// Controllers translate the sentinel errors below into HTTP statuses.
package services

import (
	"errors"
	"fmt"
)

var (
	ErrValidation          = errors.New("invalid input")
	ErrNotFound            = errors.New("record not found")
	ErrForbidden           = errors.New("permission denied")
	ErrCapacityExceeded    = errors.New("seats exceed vehicle capacity")
	ErrInsufficientSeats   = errors.New("not enough seats available")
	ErrDuplicateActiveTrip = errors.New("driver already has an active trip")
)

// validationf wraps ErrValidation so errors.Is still matches while the
// message names the offending field.
func validationf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{ErrValidation}, args...)...)
}
