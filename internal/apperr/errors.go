package apperr

import (
	"errors"
	"fmt"
)

// ErrInvalid is returned when the input fails domain validation.
var ErrInvalid = errors.New("invalid input")

// ErrNotFound indicates that the requested resource does not exist.
var ErrNotFound = errors.New("not found")

// ErrForbidden is returned when the caller may not act on the resource.
var ErrForbidden = errors.New("forbidden")

// ErrNoCourierAvailable is returned when matching finds nobody in range.
// It is an expected outcome, not a fault.
var ErrNoCourierAvailable = errors.New("no courier available")

// ErrAlreadyClaimed is returned to every courier that lost a claim race.
var ErrAlreadyClaimed = errors.New("order already claimed")

// ErrInvalidTransition is returned when a status change leaves the forward chain.
var ErrInvalidTransition = errors.New("invalid status transition")

// ErrInvalidDistance is returned by pricing for negative or non-finite distances.
var ErrInvalidDistance = errors.New("invalid distance")

// NoCourierAvailableError carries the radius that was searched.
type NoCourierAvailableError struct {
	RadiusKm float64
}

func (e *NoCourierAvailableError) Error() string {
	return fmt.Sprintf("no courier available within %.2f km", e.RadiusKm)
}

// Is makes errors.Is(err, ErrNoCourierAvailable) hold.
func (e *NoCourierAvailableError) Is(target error) bool {
	return target == ErrNoCourierAvailable
}
