package order

import (
	"fmt"
	"time"

	"labdesk/internal/pkg/errs"
)

// SlotDetail is the booked lab visit of a SlotBooking order. Immutable.
type SlotDetail struct {
	at    time.Time
	token int
}

// NewSlotDetail validates a booked slot. The token number is the queue number printed
// for the patient and must be positive.
func NewSlotDetail(at time.Time, token int) (SlotDetail, error) {
	if at.IsZero() {
		return SlotDetail{}, errs.NewValueIsRequiredError("slot time")
	}
	if token <= 0 {
		return SlotDetail{}, errs.NewValueIsInvalidErrorWithCause("token number", fmt.Errorf("%d is not greater than 0", token))
	}
	return SlotDetail{at: at.UTC(), token: token}, nil
}

func (s SlotDetail) At() time.Time {
	return s.at
}

func (s SlotDetail) Token() int {
	return s.token
}
