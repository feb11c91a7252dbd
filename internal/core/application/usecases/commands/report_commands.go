package commands

import (
	"errors"
	"strings"

	"labdesk/internal/core/domain/model/kernel"
	"labdesk/internal/pkg/errs"
	"labdesk/internal/pkg/guard"
)

var (
	ErrUploadReportCommandIsNotConstructed = errors.New(
		"UploadReportCommand must be created via NewUploadReportCommand constructor",
	)
	ErrVerifyReportCommandIsNotConstructed = errors.New(
		"VerifyReportCommand must be created via NewVerifyReportCommand constructor",
	)
	ErrDeleteReportCommandIsNotConstructed = errors.New(
		"DeleteReportCommand must be created via NewDeleteReportCommand constructor",
	)
	ErrFileRefIsRequired = errs.NewValueIsRequiredError("report file reference")
)

// UploadReportCommand attaches a report file reference to a completed test. The
// reference is opaque; storage of the file itself is somebody else's concern.
type UploadReportCommand struct {
	testTarget
	fileRef     string
	remarks     string
	performedBy string

	guard guard.ConstructorGuard
}

func NewUploadReportCommand(
	orderID kernel.UUID,
	expectedVersion int64,
	testID kernel.UUID,
	fileRef, remarks, by string,
) (UploadReportCommand, error) {
	target, err := newTestTarget(orderID, expectedVersion, testID)
	errList := []error{err}
	fileRef = strings.TrimSpace(fileRef)
	if fileRef == "" {
		errList = append(errList, ErrFileRefIsRequired)
	}
	if err = errors.Join(errList...); err != nil {
		return UploadReportCommand{}, err
	}
	return UploadReportCommand{
		testTarget:  target,
		fileRef:     fileRef,
		remarks:     strings.TrimSpace(remarks),
		performedBy: strings.TrimSpace(by),
		guard:       guard.NewConstructorGuard(),
	}, nil
}

func (c UploadReportCommand) Validate() error {
	return c.guard.Validate(ErrUploadReportCommandIsNotConstructed)
}

func (c UploadReportCommand) FileRef() string     { return c.fileRef }
func (c UploadReportCommand) Remarks() string     { return c.remarks }
func (c UploadReportCommand) PerformedBy() string { return c.performedBy }

// VerifyReportCommand records a pathologist's sign-off on an uploaded report.
type VerifyReportCommand struct {
	testTarget
	performedBy string

	guard guard.ConstructorGuard
}

func NewVerifyReportCommand(orderID kernel.UUID, expectedVersion int64, testID kernel.UUID, by string) (VerifyReportCommand, error) {
	target, err := newTestTarget(orderID, expectedVersion, testID)
	if err != nil {
		return VerifyReportCommand{}, err
	}
	return VerifyReportCommand{testTarget: target, performedBy: strings.TrimSpace(by), guard: guard.NewConstructorGuard()}, nil
}

func (c VerifyReportCommand) Validate() error {
	return c.guard.Validate(ErrVerifyReportCommandIsNotConstructed)
}

func (c VerifyReportCommand) PerformedBy() string {
	return c.performedBy
}

// DeleteReportCommand withdraws an uploaded or verified report.
type DeleteReportCommand struct {
	testTarget

	guard guard.ConstructorGuard
}

func NewDeleteReportCommand(orderID kernel.UUID, expectedVersion int64, testID kernel.UUID) (DeleteReportCommand, error) {
	target, err := newTestTarget(orderID, expectedVersion, testID)
	if err != nil {
		return DeleteReportCommand{}, err
	}
	return DeleteReportCommand{testTarget: target, guard: guard.NewConstructorGuard()}, nil
}

func (c DeleteReportCommand) Validate() error {
	return c.guard.Validate(ErrDeleteReportCommandIsNotConstructed)
}
