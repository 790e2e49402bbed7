/*
Package factory provides JSON to Go rule-table conversion.

PURPOSE:
  Converts JSON rule-table definitions into engine.RuleTable values. This
  makes the jurisdiction's rules swappable without code changes - a
  regulator update can ship as a config file, and other jurisdictions can
  be described without touching the engine.

WHY JSON?
  - Rule changes ship without a release
  - Easy to review against the statute text
  - Version control for regulatory history
  - Per-environment tables (demo fixtures, test jurisdictions)

JSON SCHEMA:
  {
    "jurisdiction": "nh-cpa",
    "regime_change_date": "2023-02-22",
    "transition_date": "2025-07-01",
    "legacy": {
      "kind": "triennial",
      "years": 3,
      "hours_required": 120,
      "ethics_required": 4,
      "annual_minimum": 20,
      "label": "Triennial - Old System"
    },
    "modern": {
      "kind": "biennial",
      "years": 2,
      "hours_required": 80,
      "ethics_required": 4,
      "annual_minimum": 20,
      "label": "Biennial - New System"
    },
    "max_windows": 6
  }

KEY FEATURES:
  - Validates the parsed table (cutover ordering, positive hours)
  - Sets sensible defaults (kind from period length, walk bound)
  - Round-trips tables back to JSON
  - Resolves the active table: file override or registry lookup

USAGE:
  f := factory.NewRuleTableFactory()

  // From a JSON string
  table, err := f.ParseRuleTable(jsonStr)

  // From a file (server config override)
  table, err := f.LoadFile("./rules/nh-cpa.json")

  // Registry fallback when no file is configured
  table, err := f.Resolve("", accountancy.Jurisdiction)

SEE ALSO:
  - engine/regime.go: RuleTable and Regime definitions
  - accountancy/rules.go: The registered New Hampshire table
  - config/config.go: rule_table_file setting
*/
package factory

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/warp/compliance-engine/engine"
)

// DefaultMaxWindows bounds the window walks when the JSON omits a value.
const DefaultMaxWindows = 6

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// RuleTableJSON is the JSON representation of a jurisdiction rule table.
type RuleTableJSON struct {
	Jurisdiction     string     `json:"jurisdiction"`
	RegimeChangeDate string     `json:"regime_change_date"`
	TransitionDate   string     `json:"transition_date"`
	Legacy           RegimeJSON `json:"legacy"`
	Modern           RegimeJSON `json:"modern"`
	MaxWindows       int        `json:"max_windows,omitempty"`
}

// RegimeJSON represents one requirement set.
type RegimeJSON struct {
	Kind           string  `json:"kind,omitempty"` // biennial, triennial; inferred from years when omitted
	Years          int     `json:"years"`
	HoursRequired  float64 `json:"hours_required"`
	EthicsRequired float64 `json:"ethics_required,omitempty"`
	AnnualMinimum  float64 `json:"annual_minimum,omitempty"`
	Label          string  `json:"label,omitempty"`
}

// =============================================================================
// RULE TABLE FACTORY
// =============================================================================

// RuleTableFactory converts JSON rule tables to engine structs.
type RuleTableFactory struct{}

// NewRuleTableFactory creates a new rule-table factory.
func NewRuleTableFactory() *RuleTableFactory {
	return &RuleTableFactory{}
}

// ParseRuleTable parses a JSON string into a validated RuleTable.
func (f *RuleTableFactory) ParseRuleTable(jsonStr string) (engine.RuleTable, error) {
	var tj RuleTableJSON
	if err := json.Unmarshal([]byte(jsonStr), &tj); err != nil {
		return engine.RuleTable{}, fmt.Errorf("failed to parse rule table JSON: %w", err)
	}
	return f.FromJSON(tj)
}

// FromJSON converts RuleTableJSON to an engine.RuleTable.
func (f *RuleTableFactory) FromJSON(tj RuleTableJSON) (engine.RuleTable, error) {
	changeDate, err := engine.ParseDate(tj.RegimeChangeDate)
	if err != nil {
		return engine.RuleTable{}, fmt.Errorf("invalid regime_change_date: %w", err)
	}
	transitionDate, err := engine.ParseDate(tj.TransitionDate)
	if err != nil {
		return engine.RuleTable{}, fmt.Errorf("invalid transition_date: %w", err)
	}

	table := engine.RuleTable{
		Jurisdiction:     tj.Jurisdiction,
		RegimeChangeDate: changeDate,
		TransitionDate:   transitionDate,
		Legacy:           parseRegime(tj.Legacy),
		Modern:           parseRegime(tj.Modern),
		MaxWindows:       tj.MaxWindows,
	}
	if table.MaxWindows == 0 {
		table.MaxWindows = DefaultMaxWindows
	}

	if err := table.Validate(); err != nil {
		return engine.RuleTable{}, err
	}
	return table, nil
}

// ToJSON converts a RuleTable back to its JSON representation.
func (f *RuleTableFactory) ToJSON(table engine.RuleTable) RuleTableJSON {
	return RuleTableJSON{
		Jurisdiction:     table.Jurisdiction,
		RegimeChangeDate: table.RegimeChangeDate.String(),
		TransitionDate:   table.TransitionDate.String(),
		Legacy:           regimeJSON(table.Legacy),
		Modern:           regimeJSON(table.Modern),
		MaxWindows:       table.MaxWindows,
	}
}

// LoadFile reads and parses a rule-table JSON file.
func (f *RuleTableFactory) LoadFile(path string) (engine.RuleTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return engine.RuleTable{}, fmt.Errorf("failed to read rule table file: %w", err)
	}
	return f.ParseRuleTable(string(data))
}

// Resolve picks the active rule table: a file override when path is set,
// otherwise the registered table for the jurisdiction.
func (f *RuleTableFactory) Resolve(path, jurisdiction string) (engine.RuleTable, error) {
	if path != "" {
		return f.LoadFile(path)
	}
	table, ok := engine.LookupRuleTable(jurisdiction)
	if !ok {
		return engine.RuleTable{}, fmt.Errorf("no rule table registered for jurisdiction %q", jurisdiction)
	}
	return table, nil
}

// =============================================================================
// PARSING HELPERS
// =============================================================================

func parseRegime(rj RegimeJSON) engine.Regime {
	return engine.Regime{
		Kind:           parseKind(rj.Kind, rj.Years),
		Years:          rj.Years,
		HoursRequired:  engine.NewHours(rj.HoursRequired),
		EthicsRequired: engine.NewHours(rj.EthicsRequired),
		AnnualMinimum:  engine.NewHours(rj.AnnualMinimum),
		Label:          rj.Label,
	}
}

func parseKind(s string, years int) engine.RegimeKind {
	switch s {
	case "biennial":
		return engine.KindBiennial
	case "triennial":
		return engine.KindTriennial
	default:
		if years >= 3 {
			return engine.KindTriennial
		}
		return engine.KindBiennial
	}
}

func regimeJSON(r engine.Regime) RegimeJSON {
	return RegimeJSON{
		Kind:           string(r.Kind),
		Years:          r.Years,
		HoursRequired:  r.HoursRequired.Float64(),
		EthicsRequired: r.EthicsRequired.Float64(),
		AnnualMinimum:  r.AnnualMinimum.Float64(),
		Label:          r.Label,
	}
}
