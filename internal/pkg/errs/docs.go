// Package errs holds the typed errors shared by the lab order core.
//
// Every type here unwraps to one sentinel:
//   - ObjectNotFoundError -> ErrObjectNotFound
//   - ValueIsInvalidError -> ErrValueIsInvalid
//   - ValueIsOutOfRangeError -> ErrValueIsOutOfRange
//   - ValueIsRequiredError -> ErrValueIsRequired
//   - VersionConflictError -> ErrVersionConflict (a stale write; re-read and retry)
//   - InvalidTransitionError -> ErrInvalidTransition
//   - TerminalStateError -> ErrTerminalState (Completed or Cancelled subjects)
//
// Callers branch on errors.Is and pull details out with errors.As. Most types have a
// WithCause constructor that appends "(cause: ...)" to the message.
//
// Domain packages keep their own sentinels (CollectorUnavailable, AlreadyInProgress,
// IncompleteReports) beside the aggregates that raise them. The HTTP layer maps both
// kinds to status codes.
package errs
