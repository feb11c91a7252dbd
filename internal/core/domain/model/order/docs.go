// Package order provides the Order aggregate of the lab fulfillment core together with
// the status transition engine and the report completion gate.
//
// The package includes:
//   - Order: the aggregate root (line items, home collection visit or slot, amounts)
//   - NextStatus: the pure transition engine over a per-source table
//   - TestItem / PackageItem: line items with their processing and report state machines
//   - HomeCollectionDetail: the field visit of a HomeCollection order
//
// Key business rules:
//   - Status moves only through NextStatus; Completed and Cancelled are terminal
//   - Only HomeCollection orders pass through SampleCollected
//   - The first started test moves the order to Processing, the last completed one to ReportReady
//   - Completed is reachable only through MarkCompleted once every report is Uploaded or Verified
//   - Cancelling marks outstanding tests Cancelled and cancels an open home collection
//
// Every mutating method takes the wall-clock instant explicitly so that callers decide
// the clock and tests stay deterministic.
package order
