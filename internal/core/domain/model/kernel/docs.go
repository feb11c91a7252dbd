// Package kernel provides the shared value objects of the lab domain.
//
// The package includes:
//   - UUID: identifier for orders, line items and collectors
//   - Priority: clinical urgency (Normal, Urgent, Critical) used to rank the lab worklist
//
// Values are immutable and safe to share between goroutines.
package kernel
