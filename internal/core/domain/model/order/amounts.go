package order

import (
	"errors"
	"fmt"

	"labdesk/internal/pkg/errs"
)

// PaymentStatus summarises how much of the order total has been paid.
type PaymentStatus int

const (
	UnknownPaymentStatus PaymentStatus = iota
	PaymentPending
	PaymentPartial
	PaymentPaid
	PaymentRefunded
)

func (s PaymentStatus) String() string {
	switch s {
	case PaymentPending:
		return "Pending"
	case PaymentPartial:
		return "Partial"
	case PaymentPaid:
		return "Paid"
	case PaymentRefunded:
		return "Refunded"
	case UnknownPaymentStatus:
		return "Unknown"
	default:
		return "Unknown"
	}
}

// PaymentStatusFromString parses the stored representation of a payment status.
func PaymentStatusFromString(s string) (PaymentStatus, error) {
	for _, ps := range []PaymentStatus{PaymentPending, PaymentPartial, PaymentPaid, PaymentRefunded} {
		if ps.String() == s {
			return ps, nil
		}
	}
	return UnknownPaymentStatus, errs.NewValueIsInvalidErrorWithCause("payment status", fmt.Errorf("%q is not a valid payment status", s))
}

// Amounts are the billing figures of an order in minor currency units (paise, cents).
// Total is derived as subtotal - discount + tax.
type Amounts struct {
	subtotal int64
	discount int64
	tax      int64
	paid     int64
}

// NewAmounts validates the billing figures.
//
// Rules:
//   - every figure is non-negative
//   - discount does not exceed subtotal
//   - paid does not exceed the total
func NewAmounts(subtotal, discount, tax, paid int64) (Amounts, error) {
	var errList []error
	figures := []struct {
		name  string
		value int64
	}{{"subtotal", subtotal}, {"discount", discount}, {"tax", tax}, {"paid", paid}}
	for _, f := range figures {
		if f.value < 0 {
			errList = append(errList, errs.NewValueIsInvalidErrorWithCause(f.name, fmt.Errorf("%d is negative", f.value)))
		}
	}
	if discount > subtotal {
		errList = append(errList, errs.NewValueIsOutOfRangeError("discount", discount, 0, subtotal))
	}
	a := Amounts{subtotal: subtotal, discount: discount, tax: tax, paid: paid}
	if paid > a.Total() {
		errList = append(errList, errs.NewValueIsOutOfRangeError("paid", paid, 0, a.Total()))
	}
	if err := errors.Join(errList...); err != nil {
		return Amounts{}, err
	}
	return a, nil
}

func (a Amounts) Subtotal() int64 { return a.subtotal }
func (a Amounts) Discount() int64 { return a.discount }
func (a Amounts) Tax() int64 { return a.tax }
func (a Amounts) Paid() int64 { return a.paid }

func (a Amounts) Total() int64 {
	return a.subtotal - a.discount + a.tax
}

func (a Amounts) Due() int64 {
	return a.Total() - a.paid
}

// PaymentStatus derives the payment status from the figures.
func (a Amounts) PaymentStatus() PaymentStatus {
	switch {
	case a.paid == 0 && a.Total() > 0:
		return PaymentPending
	case a.paid < a.Total():
		return PaymentPartial
	default:
		return PaymentPaid
	}
}
