/*
errors.go - Centralized error types for the enrollment engine

PURPOSE:
  All error types in one place. Every sentinel carries a machine-readable
  Code so transports can surface a specific reason without string matching.

ERROR CATEGORIES:
  1. Validation errors - field length, capacity bounds, invalid status for a
     transition, unauthorized caller. Recoverable, state untouched.
  2. Arithmetic guard errors - Overflow/Underflow. A counter check that
     should have prevented them failed: a logic defect, not a user error.
  3. Store errors - duplicate key on create-if-absent, missing record.

USAGE:
  if errors.Is(err, roster.ErrFormationFull) { ... }
  code := roster.CodeOf(err) // "FORMATION_FULL"

SEE ALSO:
  - address.go: DuplicateKeyError is raised by stores on address collision
  - offering.go: CounterError from checked arithmetic
*/
package roster

import (
	"errors"
	"fmt"
)

// Code is a machine-readable error code.
type Code string

const (
	CodeUnknown               Code = "UNKNOWN"
	CodeFieldTooLong          Code = "FIELD_TOO_LONG"
	CodeCapacityExceeded      Code = "CAPACITY_EXCEEDED"
	CodeWaitlistTooLarge      Code = "WAITLIST_TOO_LARGE"
	CodeInvalidCapacity       Code = "INVALID_CAPACITY"
	CodeInvalidMode           Code = "INVALID_MODE"
	CodeFormationFull         Code = "FORMATION_FULL"
	CodeWaitlistFull          Code = "WAITLIST_FULL"
	CodeInvalidWaitlistStatus Code = "INVALID_WAITLIST_STATUS"
	CodeInvalidOfferingStatus Code = "INVALID_OFFERING_STATUS"
	CodeInvalidRequestStatus  Code = "INVALID_REQUEST_STATUS"
	CodeInvalidAttendance     Code = "INVALID_ATTENDANCE_STATUS"
	CodeInvalidRole           Code = "INVALID_ROLE"
	CodeInvalidIdentity       Code = "INVALID_IDENTITY"
	CodeNotEnrolled           Code = "NOT_ENROLLED"
	CodeUnauthorizedAccess    Code = "UNAUTHORIZED_ACCESS"
	CodeInvalidSessionTime    Code = "INVALID_SESSION_DURATION"
	CodeOfferNotExpired       Code = "OFFER_NOT_EXPIRED"
	CodeOverflow              Code = "OVERFLOW"
	CodeUnderflow             Code = "UNDERFLOW"
	CodeDuplicateKey          Code = "DUPLICATE_KEY"
	CodeNotFound              Code = "NOT_FOUND"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	ErrFieldTooLong          = errors.New("field too long")
	ErrCapacityExceeded      = errors.New("offering capacity exceeded")
	ErrWaitlistTooLarge      = errors.New("waitlist capacity too large")
	ErrInvalidCapacity       = errors.New("invalid capacity")
	ErrInvalidMode           = errors.New("invalid delivery mode")
	ErrFormationFull         = errors.New("formation is full")
	ErrWaitlistFull          = errors.New("waitlist is full")
	ErrInvalidWaitlistStatus = errors.New("invalid waitlist status")
	ErrInvalidOfferingStatus = errors.New("invalid offering status")
	ErrInvalidRequestStatus  = errors.New("invalid request status")
	ErrInvalidAttendance     = errors.New("invalid attendance status")
	ErrInvalidRole           = errors.New("invalid role")
	ErrInvalidIdentity       = errors.New("invalid identity")
	ErrNotEnrolled           = errors.New("participant is not enrolled")
	ErrUnauthorizedAccess    = errors.New("unauthorized access")
	ErrInvalidSessionTime    = errors.New("invalid session duration")
	ErrOfferNotExpired       = errors.New("promotion offer has not expired")

	// ErrOverflow and ErrUnderflow signal a violated counter invariant.
	ErrOverflow  = errors.New("counter overflow")
	ErrUnderflow = errors.New("counter underflow")

	// ErrDuplicateKey is returned by stores when a record already exists at
	// the address being created.
	ErrDuplicateKey = errors.New("record already exists")
	ErrNotFound     = errors.New("record not found")
)

var codes = map[error]Code{
	ErrFieldTooLong:          CodeFieldTooLong,
	ErrCapacityExceeded:      CodeCapacityExceeded,
	ErrWaitlistTooLarge:      CodeWaitlistTooLarge,
	ErrInvalidCapacity:       CodeInvalidCapacity,
	ErrInvalidMode:           CodeInvalidMode,
	ErrFormationFull:         CodeFormationFull,
	ErrWaitlistFull:          CodeWaitlistFull,
	ErrInvalidWaitlistStatus: CodeInvalidWaitlistStatus,
	ErrInvalidOfferingStatus: CodeInvalidOfferingStatus,
	ErrInvalidRequestStatus:  CodeInvalidRequestStatus,
	ErrInvalidAttendance:     CodeInvalidAttendance,
	ErrInvalidRole:           CodeInvalidRole,
	ErrInvalidIdentity:       CodeInvalidIdentity,
	ErrNotEnrolled:           CodeNotEnrolled,
	ErrUnauthorizedAccess:    CodeUnauthorizedAccess,
	ErrInvalidSessionTime:    CodeInvalidSessionTime,
	ErrOfferNotExpired:       CodeOfferNotExpired,
	ErrOverflow:              CodeOverflow,
	ErrUnderflow:             CodeUnderflow,
	ErrDuplicateKey:          CodeDuplicateKey,
	ErrNotFound:              CodeNotFound,
}

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// FieldTooLongError reports which field exceeded its byte bound.
type FieldTooLongError struct {
	Field  string
	Length int
	Max    int
}

func (e *FieldTooLongError) Error() string {
	return fmt.Sprintf("field too long: %s is %d bytes, max %d", e.Field, e.Length, e.Max)
}

func (e *FieldTooLongError) Unwrap() error { return ErrFieldTooLong }

// CounterError reports a checked counter update that would leave the uint8
// range. It unwraps to ErrOverflow or ErrUnderflow.
type CounterError struct {
	OfferingID OfferingID
	Counter    string
	Value      uint8
	Overflow   bool
}

func (e *CounterError) Error() string {
	dir := "underflow"
	if e.Overflow {
		dir = "overflow"
	}
	return fmt.Sprintf("counter %s: %s at %d (offering %s)", dir, e.Counter, e.Value, e.OfferingID)
}

func (e *CounterError) Unwrap() error {
	if e.Overflow {
		return ErrOverflow
	}
	return ErrUnderflow
}

// DuplicateKeyError is raised by stores when create-if-absent collides.
type DuplicateKeyError struct {
	Address Address
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("record already exists at %s", e.Address)
}

func (e *DuplicateKeyError) Unwrap() error { return ErrDuplicateKey }

// NotFoundError is raised by stores when an addressed record is missing.
type NotFoundError struct {
	Address Address
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("record not found at %s", e.Address)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// CodeOf extracts the machine-readable code from any error.
// Returns CodeUnknown for errors outside the taxonomy.
func CodeOf(err error) Code {
	if err == nil {
		return ""
	}
	for sentinel, code := range codes {
		if errors.Is(err, sentinel) {
			return code
		}
	}
	return CodeUnknown
}

// IsInvariantViolation returns true for arithmetic guard failures.
func IsInvariantViolation(err error) bool {
	return errors.Is(err, ErrOverflow) || errors.Is(err, ErrUnderflow)
}

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsClientError returns true if the error is due to the request itself and
// left all state untouched.
func IsClientError(err error) bool {
	code := CodeOf(err)
	switch code {
	case CodeUnknown, CodeOverflow, CodeUnderflow, "":
		return false
	}
	return true
}
