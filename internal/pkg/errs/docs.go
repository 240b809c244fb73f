// Package errs provides standardized error types for the order workflow engine.
// It implements a consistent pattern for error creation, formatting, and unwrapping
// that is used throughout the application.
//
// The package includes two families of errors:
//   - Input errors: ValueIsRequiredError, ValueIsInvalidError, ValueIsOutOfRangeError
//     for malformed command attributes, ObjectNotFoundError for missing aggregates
//   - Workflow errors: InvalidTransitionError, UnauthorizedActorError,
//     PreconditionFailedError, ConcurrentModificationError and
//     AuditWriteDegradedError for the outcomes of an attempted transition
//
// Each error type follows a consistent pattern:
//   - A sentinel error variable (e.g., ErrInvalidTransition)
//   - A struct type with fields for error details
//   - Constructor functions with and without cause
//   - Error() method for formatting the error message
//   - Unwrap() method returning the sentinel for errors.Is support
//
// KindOf maps any error onto the ErrorKind taxonomy exposed to callers.
package errs
