/*
errors.go - Centralized error types for the compliance engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Callers translate these into user-facing messages; the structured
  types carry which invariant failed and which dates were involved
  so nothing has to be re-derived at the boundary.

ERROR CATEGORIES:
  1. Input errors - Malformed licenses, windows, records
  2. Configuration errors - Malformed rule tables, unknown jurisdictions
  3. Advisory errors - Window sequences cut short by the walk bound

USAGE:
  Transport layers classify with the helpers:

    if engine.IsClientError(err) {
        writeError(w, http.StatusBadRequest, err)
    }

SEE ALSO:
  - generator.go: Returns TruncatedSequenceError alongside valid windows
  - registry.go: Returns ErrJurisdictionNotFound
*/
package engine

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidLicense is returned when a license violates its date
	// invariant (issue date must strictly precede expiration date).
	ErrInvalidLicense = errors.New("invalid license dates")

	// ErrInvalidWindow is returned for inverted or zero-length windows.
	// These are a defect, never a valid output.
	ErrInvalidWindow = errors.New("invalid window: end not after start")

	// ErrInvalidRecord is returned when an education record is malformed
	// (negative hours, missing completion date).
	ErrInvalidRecord = errors.New("invalid education record")

	// ErrInvalidRuleTable is returned when a rule table fails validation.
	ErrInvalidRuleTable = errors.New("invalid rule table")

	// ErrJurisdictionNotFound is returned when a jurisdiction code has no
	// registered rule table.
	ErrJurisdictionNotFound = errors.New("jurisdiction not registered")

	// ErrSequenceTruncated signals that the walk bound stopped window
	// generation before the license's full span was covered. Advisory:
	// the windows returned with it are valid.
	ErrSequenceTruncated = errors.New("window sequence truncated")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// InvalidLicenseError reports a license date invariant violation.
type InvalidLicenseError struct {
	Number         string
	IssueDate      Date
	ExpirationDate Date
	Reason         string
}

func (e *InvalidLicenseError) Error() string {
	return fmt.Sprintf("invalid license %s: %s (issue %s, expiration %s)",
		e.Number, e.Reason, e.IssueDate, e.ExpirationDate)
}

func (e *InvalidLicenseError) Unwrap() error {
	return ErrInvalidLicense
}

// InvalidWindowError reports an inverted or zero-length window.
type InvalidWindowError struct {
	Start  Date
	End    Date
	Reason string
}

func (e *InvalidWindowError) Error() string {
	return fmt.Sprintf("invalid window [%s, %s]: %s", e.Start, e.End, e.Reason)
}

func (e *InvalidWindowError) Unwrap() error {
	return ErrInvalidWindow
}

// InvalidRecordError reports a malformed education record.
type InvalidRecordError struct {
	CompletionDate Date
	Hours          Hours
	Reason         string
}

func (e *InvalidRecordError) Error() string {
	return fmt.Sprintf("invalid education record (completed %s, %s hours): %s",
		e.CompletionDate, e.Hours, e.Reason)
}

func (e *InvalidRecordError) Unwrap() error {
	return ErrInvalidRecord
}

// InvalidRuleTableError reports a malformed rule table.
type InvalidRuleTableError struct {
	Jurisdiction string
	Reason       string
}

func (e *InvalidRuleTableError) Error() string {
	return fmt.Sprintf("invalid rule table %q: %s", e.Jurisdiction, e.Reason)
}

func (e *InvalidRuleTableError) Unwrap() error {
	return ErrInvalidRuleTable
}

// TruncatedSequenceError reports the span the walk bound left uncovered.
// Returned together with the valid windows that were generated; callers
// may surface it as a warning or ignore it.
type TruncatedSequenceError struct {
	LicenseNumber string
	MaxWindows    int
	UncoveredFrom Date
	UncoveredTo   Date
}

func (e *TruncatedSequenceError) Error() string {
	return fmt.Sprintf("window sequence for license %s truncated at %d windows: %s to %s not covered",
		e.LicenseNumber, e.MaxWindows, e.UncoveredFrom, e.UncoveredTo)
}

func (e *TruncatedSequenceError) Unwrap() error {
	return ErrSequenceTruncated
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid caller input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidLicense) ||
		errors.Is(err, ErrInvalidWindow) ||
		errors.Is(err, ErrInvalidRecord)
}

// IsNotFound returns true if the error indicates a missing rule table.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrJurisdictionNotFound)
}

// IsTruncated returns true for the advisory truncation error, which
// accompanies an otherwise valid window sequence.
func IsTruncated(err error) bool {
	return errors.Is(err, ErrSequenceTruncated)
}
