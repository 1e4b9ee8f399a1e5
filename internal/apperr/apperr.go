package apperr

import (
	"errors"
	"fmt"
)

var ErrShowNotFound = errors.New("show not found")
var ErrBookingNotFound = errors.New("booking not found")
var ErrNotOwner = errors.New("booking belongs to another user")
var ErrAlreadyFinalized = errors.New("booking is already finalized")
var ErrUpstreamUnavailable = errors.New("payment provider unavailable")
var ErrVerificationFailed = errors.New("payment verification failed")

// ErrHoldLost means a seat that should have been held by the requester no
// longer is: the hold lapsed and may have been reclaimed or re-acquired.
var ErrHoldLost = errors.New("seat hold no longer active")

// Seat conflict reasons.
const (
	ReasonBooked     = "booked"
	ReasonHeldByUser = "held"
	ReasonUnknown    = "unknown"
)

// SeatConflictError reports the first seat that made an acquire or commit
// impossible. The whole operation fails; no seat state changes.
type SeatConflictError struct {
	Row    string
	Number int
	Reason string
}

func (e *SeatConflictError) Error() string {
	return fmt.Sprintf("seat %s%d is not available (%s)", e.Row, e.Number, e.Reason)
}

// IsConflict reports whether err is a seat conflict.
func IsConflict(err error) bool {
	var sc *SeatConflictError
	return errors.As(err, &sc) || errors.Is(err, ErrHoldLost)
}
