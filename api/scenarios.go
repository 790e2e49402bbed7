/* scenarios.go - Demo Scenario Loader

PURPOSE:
  Pre-built demonstration datasets for exploring the compliance engine
  without hand-entering licenses and course records. Each scenario
  resets the store and seeds it with one licensee whose history shows
  off a particular corner of the window rules.

SCENARIOS:
  established-cpa      Long-tenured licensee issued in 2010. Exercises
                       the full backward walk: triennial windows from
                       the paper era, then the switch to a biennial
                       window once renewals cross 2025-07-01. Partially
                       complete in the current window.

  new-licensee         First license issued after 2023-02-22. Windows
                       run forward from the issue date on license
                       anniversaries. Light course history, long runway.

  transition-straddler Licensed late 2022, so windows walk backward
                       from expiration, but the current window ends
                       after 2025-07-01 and therefore carries the
                       biennial requirements even though it opened
                       under the triennial rules. No ethics hours yet,
                       so the report flags the gap.

ENDPOINTS:
  GET  /api/scenarios          - list available scenarios
  GET  /api/scenarios/current  - which scenario is loaded (if any)
  POST /api/scenarios/load     - reset the store and load one by id

USAGE:
  curl -X POST localhost:8080/api/scenarios/load \
    -d '{"scenario_id": "transition-straddler"}'

  The straddler's current window ends 2026-06-30; pass as_of to the
  read endpoints to explore it from different evaluation dates.

NOTE:
  Loading a scenario resets the store. Only wire these routes up in
  development and demo environments.

SEE ALSO:
  - handlers.go: the endpoints the loaded data feeds
  - store/store.go: Reset, SaveLicense, AddCourse
*/

package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/warp/compliance-engine/accountancy"
	"github.com/warp/compliance-engine/engine"
	"github.com/warp/compliance-engine/store"
)

var scenarios = []ScenarioDTO{
	{
		ID:          "established-cpa",
		Name:        "Established CPA",
		Description: "Licensed since 2010. Six reporting windows: five triennial, then the first biennial window opening 2025-07-01. 32 of 80 hours logged so far, ethics already covered.",
		Category:    "renewal-history",
	},
	{
		ID:          "new-licensee",
		Name:        "New Licensee",
		Description: "First licensed 2023-09-15, after the electronic-records cutover. Windows run forward from the issue date. 12 of 80 hours logged in the second window.",
		Category:    "modern-rules",
	},
	{
		ID:          "transition-straddler",
		Name:        "Transition Straddler",
		Description: "Licensed 2022-11-03 under the old numbering, but the current window ends 2026-06-30 and so carries the biennial requirements. 36 hours logged, no ethics yet.",
		Category:    "rule-transition",
	},
}

// ====================================================================
// HANDLERS
// ====================================================================

// ListScenarios returns the scenario catalog.
// GET /api/scenarios
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario reports which scenario is loaded, if any.
// GET /api/scenarios/current
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	if h.currentScenario == "" {
		writeJSON(w, http.StatusOK, map[string]any{"loaded": false})
		return
	}
	for _, s := range scenarios {
		if s.ID == h.currentScenario {
			writeJSON(w, http.StatusOK, map[string]any{"loaded": true, "scenario": s})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"loaded": true, "scenario_id": h.currentScenario})
}

// LoadScenario wipes the store and seeds the requested scenario.
// POST /api/scenarios/load
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	ctx := r.Context()
	if err := h.Store.Reset(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset store", err)
		return
	}
	h.currentScenario = ""

	var err error
	switch req.ScenarioID {
	case "established-cpa":
		err = h.loadEstablishedCPAScenario(ctx)
	case "new-licensee":
		err = h.loadNewLicenseeScenario(ctx)
	case "transition-straddler":
		err = h.loadTransitionStraddlerScenario(ctx)
	default:
		writeError(w, http.StatusBadRequest, "Unknown scenario: "+req.ScenarioID, nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load scenario", err)
		return
	}

	h.currentScenario = req.ScenarioID
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "loaded",
		"scenario": req.ScenarioID,
	})
}

// ====================================================================
// LOADERS
// ====================================================================

func (h *Handler) seedScenario(ctx context.Context, rec store.LicenseRecord, courses []store.CourseRecord) error {
	if _, err := h.Store.SaveLicense(ctx, rec); err != nil {
		return err
	}
	for _, c := range courses {
		c.LicenseNumber = rec.Number
		if _, err := h.Store.AddCourse(ctx, c); err != nil {
			return err
		}
	}
	return nil
}

func (h *Handler) loadEstablishedCPAScenario(ctx context.Context) error {
	rec := store.LicenseRecord{
		Number:         "NH-04821",
		FullName:       "Morgan Tate, CPA",
		Status:         accountancy.StatusActive,
		Jurisdiction:   accountancy.Jurisdiction,
		IssueDate:      engine.NewDate(2010, time.July, 1),
		ExpirationDate: engine.NewDate(2027, time.June, 30),
		Email:          "morgan.tate@example.com",
		LastRosterSync: time.Now().UTC(),
	}

	// Current window is 2025-07-01 through 2027-06-30, the first
	// biennial one in this license's history.
	courses := []store.CourseRecord{
		{
			CourseName:     "Advanced Auditing Standards",
			Provider:       "Granite State CPE Institute",
			SubjectArea:    "Auditing",
			CompletionDate: engine.NewDate(2025, time.September, 12),
			Hours:          engine.NewHours(16),
		},
		{
			CourseName:     "Professional Ethics for CPAs",
			Provider:       "NH Society of CPAs",
			SubjectArea:    "Ethics",
			CompletionDate: engine.NewDate(2026, time.January, 20),
			Hours:          engine.NewHours(4),
			Ethics:         true,
		},
		{
			CourseName:     "Revenue Recognition Deep Dive",
			Provider:       "Granite State CPE Institute",
			SubjectArea:    "Accounting",
			CompletionDate: engine.NewDate(2026, time.April, 8),
			Hours:          engine.NewHours(12),
		},
	}
	return h.seedScenario(ctx, rec, courses)
}

func (h *Handler) loadNewLicenseeScenario(ctx context.Context) error {
	rec := store.LicenseRecord{
		Number:         "NH-17305",
		FullName:       "Jamie Okafor",
		Status:         accountancy.StatusActive,
		Jurisdiction:   accountancy.Jurisdiction,
		IssueDate:      engine.NewDate(2023, time.September, 15),
		ExpirationDate: engine.NewDate(2027, time.September, 14),
		Email:          "jamie.okafor@example.com",
		LastRosterSync: time.Now().UTC(),
	}

	// Two anniversary windows; the second runs 2025-09-15 through
	// 2027-09-14.
	courses := []store.CourseRecord{
		{
			CourseName:     "Introduction to Governmental Accounting",
			Provider:       "Online CPE Direct",
			SubjectArea:    "Accounting",
			CompletionDate: engine.NewDate(2025, time.November, 5),
			Hours:          engine.NewHours(8),
		},
		{
			CourseName:     "Ethics in Practice",
			Provider:       "NH Society of CPAs",
			SubjectArea:    "Ethics",
			CompletionDate: engine.NewDate(2026, time.March, 22),
			Hours:          engine.NewHours(4),
			Ethics:         true,
		},
	}
	return h.seedScenario(ctx, rec, courses)
}

func (h *Handler) loadTransitionStraddlerScenario(ctx context.Context) error {
	rec := store.LicenseRecord{
		Number:         "NH-09112",
		FullName:       "Riley Nash",
		Status:         accountancy.StatusActive,
		Jurisdiction:   accountancy.Jurisdiction,
		IssueDate:      engine.NewDate(2022, time.November, 3),
		ExpirationDate: engine.NewDate(2026, time.June, 30),
		Email:          "riley.nash@example.com",
		LastRosterSync: time.Now().UTC(),
	}

	// Single window 2024-07-01 through 2026-06-30: it opened under the
	// triennial rules but ends after 2025-07-01, so 80 hours apply.
	// No ethics recorded, which the report calls out.
	courses := []store.CourseRecord{
		{
			CourseName:     "Financial Statement Fraud",
			Provider:       "Forensic CPE Partners",
			SubjectArea:    "Auditing",
			CompletionDate: engine.NewDate(2024, time.September, 18),
			Hours:          engine.NewHours(20),
		},
		{
			CourseName:     "Estate Tax Update",
			Provider:       "Online CPE Direct",
			SubjectArea:    "Taxation",
			CompletionDate: engine.NewDate(2025, time.February, 11),
			Hours:          engine.NewHours(10),
		},
		{
			CourseName:     "New Hampshire Law and Rules",
			Provider:       "NH Society of CPAs",
			SubjectArea:    "Regulatory",
			CompletionDate: engine.NewDate(2025, time.October, 2),
			Hours:          engine.NewHours(6),
		},
	}
	return h.seedScenario(ctx, rec, courses)
}
