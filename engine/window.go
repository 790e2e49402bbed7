package engine

import "fmt"

// =============================================================================
// WINDOW - One concrete reporting period
// =============================================================================

// WindowStatus places a window relative to the evaluation date it was
// constructed with. Exactly one status applies to any window.
type WindowStatus string

const (
	StatusHistorical WindowStatus = "historical"
	StatusCurrent    WindowStatus = "current"
	StatusFuture     WindowStatus = "future"
)

func statusFor(start, end, asOf Date) WindowStatus {
	switch {
	case end.Before(asOf):
		return StatusHistorical
	case start.After(asOf):
		return StatusFuture
	default:
		return StatusCurrent
	}
}

// Window is a reporting period with fixed boundaries and the regime in
// force for it. Constructed fresh on every query, never mutated.
type Window struct {
	Start       Date
	End         Date
	Regime      Regime
	Status      WindowStatus
	Description string
}

// NewWindow builds a validated window, deriving its status from asOf.
func NewWindow(start, end Date, regime Regime, asOf Date) (Window, error) {
	w := Window{Start: start, End: end, Regime: regime, Status: statusFor(start, end, asOf)}
	if err := w.Validate(); err != nil {
		return Window{}, err
	}
	w.Description = describeWindow(w, w.statusLabel())
	return w, nil
}

// NewCustomWindow builds a window from caller-chosen dates rather than a
// regime-derived boundary. Same invariants, distinct labeling.
func NewCustomWindow(start, end Date, regime Regime, asOf Date) (Window, error) {
	w, err := NewWindow(start, end, regime, asOf)
	if err != nil {
		return Window{}, err
	}
	w.Description = fmt.Sprintf("Custom Analysis: %s - %s", start.Format("Jan 2006"), end.Format("Jan 2006"))
	return w, nil
}

// Validate checks the boundary invariant. Inverted and zero-length
// windows are a defect in the caller, never a valid value.
func (w Window) Validate() error {
	if w.Start.IsZero() || w.End.IsZero() {
		return &InvalidWindowError{Start: w.Start, End: w.End, Reason: "start and end dates are required"}
	}
	if w.End.Before(w.Start) {
		return &InvalidWindowError{Start: w.Start, End: w.End, Reason: "end precedes start"}
	}
	if w.End.Equal(w.Start) {
		return &InvalidWindowError{Start: w.Start, End: w.End, Reason: "zero-length window"}
	}
	return w.Regime.Validate()
}

// Contains returns true if the date falls within [Start, End], both ends
// inclusive. Records exactly on a boundary count toward the window.
func (w Window) Contains(d Date) bool {
	return d.AfterOrEqual(w.Start) && d.BeforeOrEqual(w.End)
}

func (w Window) IsHistorical() bool { return w.Status == StatusHistorical }
func (w Window) IsCurrent() bool    { return w.Status == StatusCurrent }
func (w Window) IsFuture() bool     { return w.Status == StatusFuture }

func (w Window) String() string {
	return "[" + w.Start.String() + ", " + w.End.String() + "]"
}

func (w Window) statusLabel() string {
	switch w.Status {
	case StatusCurrent:
		return "Current Period"
	case StatusFuture:
		return "Next Period"
	default:
		return "Historical Period"
	}
}

func describeWindow(w Window, prefix string) string {
	label := fmt.Sprintf("%s: %s - %s", prefix, w.Start.Format("Jan 2006"), w.End.Format("Jan 2006"))
	if w.Regime.Label != "" {
		label += " (" + w.Regime.Label + ")"
	}
	return label
}

// =============================================================================
// ANNUAL SLICES - One-year sub-periods for the annual minimum check
// =============================================================================

// AnnualSlice is one consecutive year inside a window. The final slice
// is truncated to the window end when the period length does not divide
// evenly.
type AnnualSlice struct {
	Year  int
	Start Date
	End   Date
}

// AnnualSlices partitions the window into consecutive one-year slices
// starting at the window start, at most Regime.Years of them.
func (w Window) AnnualSlices() []AnnualSlice {
	var slices []AnnualSlice
	start := w.Start
	for year := 1; year <= w.Regime.Years; year++ {
		end := MinDate(start.AddYears(1).AddDays(-1), w.End)
		slices = append(slices, AnnualSlice{Year: year, Start: start, End: end})
		start = end.AddDays(1)
		if start.After(w.End) {
			break
		}
	}
	return slices
}
