// Package collector provides the Collector aggregate: the field phlebotomist who is
// attached to home collection orders.
//
// Key business rules:
//   - Collectors must have a valid unique identifier, name and mobile number
//   - Off-duty collectors refuse new work with ErrCollectorUnavailable
//   - The assignment counter is informational (no hard cap) and never negative
//   - Releasing the last active assignment puts the collector back on duty
package collector
