package order

import (
	"time"

	"labdesk/internal/core/domain/model/kernel"
)

// UploadReport attaches a result document to a Completed test (report → Uploaded).
// Uploading over an existing unverified report replaces the file reference.
func (o *Order) UploadReport(testID kernel.UUID, fileRef, remarks, by string, at time.Time) error {
	if err := o.checkMutable(); err != nil {
		return err
	}
	t, err := o.Test(testID)
	if err != nil {
		return err
	}
	if err = t.uploadReport(fileRef, remarks, by, at); err != nil {
		return err
	}
	o.touch(at)
	return nil
}

// VerifyReport records the pathologist sign-off (Uploaded → Verified).
func (o *Order) VerifyReport(testID kernel.UUID, by string, at time.Time) error {
	if err := o.checkMutable(); err != nil {
		return err
	}
	t, err := o.Test(testID)
	if err != nil {
		return err
	}
	if err = t.verifyReport(by, at); err != nil {
		return err
	}
	o.touch(at)
	return nil
}

// DeleteReport removes an uploaded report and returns it to Pending, closing the gate
// again. The order status is not changed: a ReportReady order stays ReportReady and a
// Completed order rejects the call with TerminalStateError.
func (o *Order) DeleteReport(testID kernel.UUID, at time.Time) error {
	if err := o.checkMutable(); err != nil {
		return err
	}
	t, err := o.Test(testID)
	if err != nil {
		return err
	}
	if err = t.deleteReport(); err != nil {
		return err
	}
	o.touch(at)
	return nil
}

// OutstandingReports lists, in line-item order, every test whose report is neither
// Uploaded nor Verified.
func (o *Order) OutstandingReports() []kernel.UUID {
	var outstanding []kernel.UUID
	for _, t := range o.AllTests() {
		if !t.report.isReleasable() {
			outstanding = append(outstanding, t.id)
		}
	}
	return outstanding
}

// CanComplete is the report completion gate: true iff every flattened test has an
// Uploaded or Verified report.
func (o *Order) CanComplete() bool {
	return len(o.OutstandingReports()) == 0
}

// MarkCompleted is the only way into Completed. It fails with IncompleteReportsError
// while the gate is closed; on success every report becomes Delivered.
func (o *Order) MarkCompleted(at time.Time) error {
	if err := o.checkMutable(); err != nil {
		return err
	}
	if outstanding := o.OutstandingReports(); len(outstanding) > 0 {
		return NewIncompleteReportsError(outstanding)
	}
	next, err := o.resolve(ReportsReleased)
	if err != nil {
		return err
	}

	for _, t := range o.AllTests() {
		t.deliverReport(at)
	}
	o.moveTo(next, at)
	return nil
}
