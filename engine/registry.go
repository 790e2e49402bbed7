/*
registry.go - Rule table registration and lookup

PURPOSE:
  Provides a registry for jurisdiction packages to register their rule
  tables. This enables configuration and storage to resolve a
  jurisdiction code back to a concrete table while keeping the engine
  itself jurisdiction-agnostic.

HOW IT WORKS:
  1. Jurisdiction packages define their RuleTable values
  2. Jurisdiction packages register them on init()
  3. Config/factory code uses the registry to reconstruct tables

USAGE:
  // In accountancy/rules.go
  func init() {
      engine.RegisterRuleTable(newHampshireCPA)
  }

  // In a config loader
  table, ok := engine.LookupRuleTable("nh-cpa")

SEE ALSO:
  - regime.go: RuleTable definition
  - factory: Builds tables from JSON and consults this registry
*/
package engine

import (
	"fmt"
	"sort"
	"sync"
)

// =============================================================================
// RULE TABLE REGISTRY
// =============================================================================

var (
	ruleTableRegistry = make(map[string]RuleTable)
	registryMu        sync.RWMutex
)

// RegisterRuleTable adds a rule table to the global registry, keyed by
// jurisdiction code. Call from jurisdiction package init() functions.
// Registering an invalid table is a programming error and panics.
func RegisterRuleTable(t RuleTable) {
	if err := t.Validate(); err != nil {
		panic(fmt.Sprintf("engine: refusing to register rule table: %v", err))
	}
	registryMu.Lock()
	defer registryMu.Unlock()
	ruleTableRegistry[t.Jurisdiction] = t
}

// LookupRuleTable finds a registered rule table by jurisdiction code.
func LookupRuleTable(jurisdiction string) (RuleTable, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	t, ok := ruleTableRegistry[jurisdiction]
	return t, ok
}

// MustLookupRuleTable finds a registered rule table or panics.
// Use in tests or when the jurisdiction is known to exist.
func MustLookupRuleTable(jurisdiction string) RuleTable {
	t, ok := LookupRuleTable(jurisdiction)
	if !ok {
		panic(fmt.Sprintf("rule table not registered: %s", jurisdiction))
	}
	return t
}

// ListRuleTables returns all registered tables, ordered by jurisdiction
// code for deterministic output.
func ListRuleTables() []RuleTable {
	registryMu.RLock()
	defer registryMu.RUnlock()
	result := make([]RuleTable, 0, len(ruleTableRegistry))
	for _, t := range ruleTableRegistry {
		result = append(result, t)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Jurisdiction < result[j].Jurisdiction
	})
	return result
}
