/*
generator.go - Window derivation for a license

PURPOSE:
  Produces the ordered sequence of reporting windows that apply to a
  license: its history, its current period, and the near future. This is
  where the temporal rules transition lives, so boundary handling here
  decides whether compliance verdicts are legally correct.

THE TWO WALKS:
  Legacy licenses (issued on or before the regime change date) renew on
  a fixed calendar date, so windows are anchored to the expiration date
  and derived BACKWARD. Each window's own end date picks its regime:
  ends before the transition date run under the legacy regime, ends on
  or after it under the modern one. A license can therefore hold a
  legacy triennial window immediately followed by a modern biennial one.

  Modern licenses (issued after the regime change date) renew on their
  own anniversary, so windows run FORWARD from the issue date, always
  under the modern regime, the last one clamped to the expiration date.

BOUNDS:
  Both walks stop after RuleTable.MaxWindows steps. When the bound cuts
  generation short of the license's full span, the valid windows are
  returned together with a TruncatedSequenceError so callers can warn;
  the error is advisory, never fatal.

EDGE CASES:
  A window whose start would precede the issue date is not emitted - the
  walk stops rather than clipping the window. An evaluation date before
  the issue date yields an empty sequence, which callers must read as
  "no applicable window", not as an error.

SEE ALSO:
  - regime.go: RegimeForWindowEnd, the transition boundary rule
  - analyzer.go: Consumes the windows produced here
*/
package engine

import (
	"fmt"
	"sort"
)

// =============================================================================
// GENERATOR
// =============================================================================

// Generator derives compliance windows under one jurisdiction's rule
// table. It is stateless beyond the immutable table and safe for
// concurrent use.
type Generator struct {
	rules RuleTable
}

func NewGenerator(rules RuleTable) (*Generator, error) {
	if err := rules.Validate(); err != nil {
		return nil, err
	}
	return &Generator{rules: rules}, nil
}

func (g *Generator) Rules() RuleTable { return g.rules }

// Windows returns every window for the license in ascending end-date
// order: historical, current, and future, tagged relative to asOf.
//
// An empty slice with a nil error means no window applies (evaluation
// date precedes the license). A TruncatedSequenceError may accompany a
// valid slice when the walk bound cut history short; treat it as a
// warning, not a failure.
func (g *Generator) Windows(license License, asOf Date) ([]Window, error) {
	if err := license.Validate(); err != nil {
		return nil, err
	}
	if asOf.Before(license.IssueDate) {
		return nil, nil
	}

	var (
		windows []Window
		err     error
	)
	if g.rules.IsLegacyLicense(license.IssueDate) {
		windows, err = g.legacyWindows(license, asOf)
	} else {
		windows, err = g.modernWindows(license, asOf)
	}
	if err != nil && !IsTruncated(err) {
		return nil, err
	}

	sort.Slice(windows, func(i, j int) bool {
		return windows[i].End.Before(windows[j].End)
	})
	return windows, err
}

// CurrentWindow returns the window containing asOf, if any.
func (g *Generator) CurrentWindow(license License, asOf Date) (Window, bool, error) {
	windows, err := g.Windows(license, asOf)
	if err != nil && !IsTruncated(err) {
		return Window{}, false, err
	}
	for _, w := range windows {
		if w.IsCurrent() {
			return w, true, nil
		}
	}
	return Window{}, false, nil
}

// CustomWindow builds a caller-chosen window under this rule table,
// inferring the regime from the span length.
func (g *Generator) CustomWindow(start, end, asOf Date) (Window, error) {
	return NewCustomWindow(start, end, g.rules.RegimeForSpan(start, end), asOf)
}

// =============================================================================
// BACKWARD WALK - Legacy licenses, anchored to the expiration date
// =============================================================================

func (g *Generator) legacyWindows(license License, asOf Date) ([]Window, error) {
	var windows []Window
	end := license.ExpirationDate

	for i := 0; i < g.rules.MaxWindows; i++ {
		regime := g.rules.RegimeForWindowEnd(end)
		start := end.AddYears(-regime.Years).AddDays(1)
		if start.Before(license.IssueDate) {
			// Stop, never clip: a partial leading period is not a window.
			return windows, nil
		}

		w, err := NewWindow(start, end, regime, asOf)
		if err != nil {
			return nil, err
		}
		windows = append(windows, w)

		end = start.AddDays(-1)
		if end.Before(license.IssueDate) {
			return windows, nil
		}
	}

	return windows, &TruncatedSequenceError{
		LicenseNumber: license.Number,
		MaxWindows:    g.rules.MaxWindows,
		UncoveredFrom: license.IssueDate,
		UncoveredTo:   end,
	}
}

// =============================================================================
// FORWARD WALK - Modern licenses, anchored to the issue date
// =============================================================================

func (g *Generator) modernWindows(license License, asOf Date) ([]Window, error) {
	regime := g.rules.Modern
	var windows []Window
	start := license.IssueDate

	for i := 0; i < g.rules.MaxWindows; i++ {
		if !start.Before(license.ExpirationDate) {
			return windows, nil
		}
		end := MinDate(start.AddYears(regime.Years).AddDays(-1), license.ExpirationDate)

		w, err := NewWindow(start, end, regime, asOf)
		if err != nil {
			return nil, err
		}
		w.Description = modernDescription(w, i+1)
		windows = append(windows, w)

		start = end.AddDays(1)
	}

	if start.Before(license.ExpirationDate) {
		return windows, &TruncatedSequenceError{
			LicenseNumber: license.Number,
			MaxWindows:    g.rules.MaxWindows,
			UncoveredFrom: start,
			UncoveredTo:   license.ExpirationDate,
		}
	}
	return windows, nil
}

// modernDescription labels anniversary-cycle windows. Historical windows
// are numbered from the first period rather than called "historical",
// matching how anniversary renewals are communicated to licensees.
func modernDescription(w Window, index int) string {
	span := fmt.Sprintf("%s - %s", w.Start.Format("Jan 2006"), w.End.Format("Jan 2006"))
	kind := kindLabel(w.Regime.Kind)
	switch w.Status {
	case StatusCurrent:
		return fmt.Sprintf("Current Period: %s (%s)", span, kind)
	case StatusFuture:
		return fmt.Sprintf("Future Period: %s (%s)", span, kind)
	default:
		return fmt.Sprintf("Period %d: %s (%s)", index, span, kind)
	}
}

func kindLabel(k RegimeKind) string {
	switch k {
	case KindBiennial:
		return "Biennial"
	case KindTriennial:
		return "Triennial"
	default:
		return string(k)
	}
}
