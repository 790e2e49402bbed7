/*
Package engine provides the compliance window engine.

PURPOSE:
  This package contains the pure domain types and algorithms for
  continuing-education compliance: deriving the reporting windows that
  apply to a license over its lifetime, and evaluating completed
  education records against a window to produce a compliance verdict.

KEY CONCEPTS IN THIS FILE (types.go):
  - Hours: A credit-hour quantity (decimal, fractional credits are routine)
  - License: The issue/expiration dates the generator derives windows from
  - EducationRecord: A single completed course with hours and ethics flag

DESIGN PRINCIPLES:
  1. Purity: No clock reads, no I/O, no logging - every entry point takes
     an explicit evaluation date, so identical inputs give identical output
  2. Precision: Uses decimal.Decimal to avoid floating-point errors in
     legally significant hour sums
  3. Validation at the edge: Malformed inputs fail fast with structured
     errors; legitimate absence of data (no records) is a valid result

USAGE:
  gen, err := engine.NewGenerator(rules)
  windows, err := gen.Windows(license, asOf)
  result, err := engine.Analyzer{}.Analyze(windows[0], records)

SEE ALSO:
  - regime.go: Rule regimes and the jurisdiction rule table
  - generator.go: Window derivation (backward and forward walks)
  - analyzer.go: Window evaluation and recommendations
*/
package engine

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// HOURS - Credit-hour quantity
// =============================================================================

type Hours struct {
	Value decimal.Decimal
}

func NewHours(value float64) Hours {
	return Hours{Value: decimal.NewFromFloat(value)}
}

func NewHoursFromInt(value int) Hours {
	return Hours{Value: decimal.NewFromInt(int64(value))}
}

// ParseHours parses a decimal hour string such as "1.5".
func ParseHours(s string) (Hours, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Hours{}, err
	}
	return Hours{Value: d}, nil
}

func (h Hours) Add(o Hours) Hours              { return Hours{Value: h.Value.Add(o.Value)} }
func (h Hours) Sub(o Hours) Hours              { return Hours{Value: h.Value.Sub(o.Value)} }
func (h Hours) Neg() Hours                     { return Hours{Value: h.Value.Neg()} }
func (h Hours) IsNegative() bool               { return h.Value.IsNegative() }
func (h Hours) IsZero() bool                   { return h.Value.IsZero() }
func (h Hours) IsPositive() bool               { return h.Value.IsPositive() }
func (h Hours) Equal(o Hours) bool             { return h.Value.Equal(o.Value) }
func (h Hours) GreaterThan(o Hours) bool       { return h.Value.GreaterThan(o.Value) }
func (h Hours) GreaterOrEqual(o Hours) bool    { return h.Value.GreaterThanOrEqual(o.Value) }
func (h Hours) LessThan(o Hours) bool          { return h.Value.LessThan(o.Value) }
func (h Hours) Min(o Hours) Hours              { return Hours{Value: decimal.Min(h.Value, o.Value)} }
func (h Hours) Max(o Hours) Hours              { return Hours{Value: decimal.Max(h.Value, o.Value)} }
func (h Hours) Float64() float64               { return h.Value.InexactFloat64() }

func (h Hours) String() string { return h.Value.String() }

// JSON round-trips as the decimal's own encoding, so "1.5" and 1.5 both
// parse.
func (h Hours) MarshalJSON() ([]byte, error)     { return h.Value.MarshalJSON() }
func (h *Hours) UnmarshalJSON(data []byte) error { return h.Value.UnmarshalJSON(data) }

// =============================================================================
// LICENSE - Read-only input to the generator
// =============================================================================

type License struct {
	Number         string
	IssueDate      Date
	ExpirationDate Date
}

// Validate checks the license date invariant: issue strictly before expiration.
func (l License) Validate() error {
	if l.IssueDate.IsZero() || l.ExpirationDate.IsZero() {
		return &InvalidLicenseError{
			Number:         l.Number,
			IssueDate:      l.IssueDate,
			ExpirationDate: l.ExpirationDate,
			Reason:         "issue and expiration dates are required",
		}
	}
	if !l.IssueDate.Before(l.ExpirationDate) {
		return &InvalidLicenseError{
			Number:         l.Number,
			IssueDate:      l.IssueDate,
			ExpirationDate: l.ExpirationDate,
			Reason:         "issue date must precede expiration date",
		}
	}
	return nil
}

// =============================================================================
// EDUCATION RECORD - Read-only input to the analyzer
// =============================================================================

type EducationRecord struct {
	CompletionDate Date
	Hours          Hours
	Ethics         bool
}

func (r EducationRecord) Validate() error {
	if r.CompletionDate.IsZero() {
		return &InvalidRecordError{
			CompletionDate: r.CompletionDate,
			Hours:          r.Hours,
			Reason:         "completion date is required",
		}
	}
	if r.Hours.IsNegative() {
		return &InvalidRecordError{
			CompletionDate: r.CompletionDate,
			Hours:          r.Hours,
			Reason:         "hours must not be negative",
		}
	}
	return nil
}
