package commands

import (
	"errors"

	"labdesk/internal/core/domain/model/kernel"
	"labdesk/internal/pkg/errs"
)

// OrderTarget addresses one order. ExpectedVersion is the version the caller last saw;
// zero means "latest" and selects the retrying update.
type OrderTarget struct {
	orderID         kernel.UUID
	expectedVersion int64
}

// NewOrderTarget validates the order id and the version.
func NewOrderTarget(orderID kernel.UUID, expectedVersion int64) (OrderTarget, error) {
	var errList []error
	if err := orderID.Validate(); err != nil {
		errList = append(errList, err)
	}
	if expectedVersion < 0 {
		errList = append(errList, errs.NewValueIsOutOfRangeError("version", expectedVersion, 0, "unbounded"))
	}
	if err := errors.Join(errList...); err != nil {
		return OrderTarget{}, err
	}
	return OrderTarget{orderID: orderID, expectedVersion: expectedVersion}, nil
}

func (t OrderTarget) OrderID() kernel.UUID {
	return t.orderID
}

func (t OrderTarget) ExpectedVersion() int64 {
	return t.expectedVersion
}

// testTarget addresses one test line item of an order.
type testTarget struct {
	OrderTarget
	testID kernel.UUID
}

func newTestTarget(orderID kernel.UUID, expectedVersion int64, testID kernel.UUID) (testTarget, error) {
	target, err := NewOrderTarget(orderID, expectedVersion)
	if err = errors.Join(err, testID.Validate()); err != nil {
		return testTarget{}, err
	}
	return testTarget{OrderTarget: target, testID: testID}, nil
}

func (t testTarget) TestID() kernel.UUID {
	return t.testID
}
