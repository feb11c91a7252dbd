package order

import (
	"fmt"

	"labdesk/internal/pkg/errs"
)

// Source is the intake channel an order came from. It selects the row set of the
// transition table and decides which sub-record (home collection or slot) the
// order carries.
type Source int

const (
	UnknownSource Source = iota
	WalkIn
	HomeCollection
	OnlineTestBooking
	OnlinePackageBooking
	SlotBooking
)

func getSourceStrings() map[Source]string {
	return map[Source]string{
		UnknownSource:        "Unknown",
		WalkIn:               "WalkIn",
		HomeCollection:       "HomeCollection",
		OnlineTestBooking:    "OnlineTestBooking",
		OnlinePackageBooking: "OnlinePackageBooking",
		SlotBooking:          "SlotBooking",
	}
}

// Sources lists every valid intake channel.
func Sources() []Source {
	return []Source{WalkIn, HomeCollection, OnlineTestBooking, OnlinePackageBooking, SlotBooking}
}

// SourceFromString parses the API representation of a source.
func SourceFromString(s string) (Source, error) {
	for _, source := range Sources() {
		if source.String() == s {
			return source, nil
		}
	}
	return UnknownSource, errs.NewValueIsInvalidErrorWithCause("source is invalid", fmt.Errorf("%q is not a valid source", s))
}

func (s Source) Validate() error {
	if s < WalkIn || s > SlotBooking {
		return errs.NewValueIsInvalidErrorWithCause("source is invalid", fmt.Errorf("%d is not a valid source", s))
	}
	return nil
}

func (s Source) String() string {
	if str, ok := getSourceStrings()[s]; ok {
		return str
	}
	return "Unknown"
}
