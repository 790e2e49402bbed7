/*
handlers.go - HTTP API handlers for the compliance service

PURPOSE:
  Exposes the compliance engine via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Licenses:
    GET    /api/licenses                   List roster (optional ?status=)
    POST   /api/licenses                   Create or update a license
    GET    /api/licenses/{number}          License details
    DELETE /api/licenses/{number}          Remove license and its records

  Windows and analysis:
    GET    /api/licenses/{number}/windows          All reporting windows
    GET    /api/licenses/{number}/windows/current  Current-period standing
    POST   /api/licenses/{number}/analyze          Custom window analysis
    GET    /api/licenses/{number}/report           Full compliance report

  Education records:
    GET    /api/licenses/{number}/records      List course certificates
    POST   /api/licenses/{number}/records      Record a certificate
    DELETE /api/licenses/{number}/records/{id} Remove a certificate

  Monitoring:
    GET    /api/alerts                 Renewal alerts (optional ?license=)
    GET    /api/stats                  Roster statistics

  Scenarios:
    GET    /api/scenarios              List demo scenarios
    GET    /api/scenarios/current      Which scenario is loaded
    POST   /api/scenarios/load         Load a demo scenario

EVALUATION DATE:
  Every window computation is relative to a date. Handlers accept an
  optional ?as_of=YYYY-MM-DD query parameter and default to today (UTC),
  so historical rosters and demo scenarios can be explored at any point
  in time. The engine itself never reads the clock.

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, rule violations (with a machine code)
  - 404: Unknown license, course, or no window covering the date
  - 409: Duplicate course certificate
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo scenario loaders
  - monitor.go: Background renewal deadline scanning
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/warp/compliance-engine/accountancy"
	"github.com/warp/compliance-engine/engine"
	"github.com/warp/compliance-engine/report"
	"github.com/warp/compliance-engine/store"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store     store.Store
	Generator *engine.Generator
	Analyzer  engine.Analyzer

	// Track currently loaded scenario
	currentScenario string
}

// NewHandler creates a new handler with the given store and generator.
func NewHandler(st store.Store, gen *engine.Generator) *Handler {
	return &Handler{Store: st, Generator: gen}
}

// asOfDate resolves the evaluation date for a request: an explicit
// as_of query parameter wins, otherwise today in UTC.
func asOfDate(r *http.Request) (engine.Date, error) {
	if s := r.URL.Query().Get("as_of"); s != "" {
		return engine.ParseDate(s)
	}
	return engine.DateOf(time.Now().UTC()), nil
}

// =============================================================================
// LICENSE HANDLERS
// =============================================================================

// ListLicenses returns the roster, optionally filtered by status.
func (h *Handler) ListLicenses(w http.ResponseWriter, r *http.Request) {
	filter := store.LicenseFilter{Status: r.URL.Query().Get("status")}

	licenses, err := h.Store.ListLicenses(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list licenses", err)
		return
	}

	dtos := make([]LicenseDTO, len(licenses))
	for i, rec := range licenses {
		dtos[i] = toLicenseDTO(rec)
	}

	writeJSON(w, http.StatusOK, dtos)
}

// GetLicense returns a single license.
func (h *Handler) GetLicense(w http.ResponseWriter, r *http.Request) {
	number := chi.URLParam(r, "number")

	rec, err := h.Store.GetLicense(r.Context(), number)
	if err != nil {
		writeDomainError(w, "Failed to get license", err)
		return
	}

	writeJSON(w, http.StatusOK, toLicenseDTO(rec))
}

// SaveLicense creates or updates a roster entry.
func (h *Handler) SaveLicense(w http.ResponseWriter, r *http.Request) {
	var req SaveLicenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	issued, err := engine.ParseDate(req.IssueDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid issue_date format (use YYYY-MM-DD)", err)
		return
	}
	expires, err := engine.ParseDate(req.ExpirationDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid expiration_date format (use YYYY-MM-DD)", err)
		return
	}

	status := req.Status
	if status == "" {
		status = accountancy.StatusActive
	}

	rec := store.LicenseRecord{
		Number:         req.Number,
		FullName:       req.FullName,
		Status:         status,
		IssueDate:      issued,
		ExpirationDate: expires,
		Jurisdiction:   accountancy.Jurisdiction,
		Email:          req.Email,
	}
	if err := rec.License().Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid license", err)
		return
	}

	ctx := r.Context()
	created, err := h.Store.SaveLicense(ctx, rec)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save license", err)
		return
	}

	saved, err := h.Store.GetLicense(ctx, rec.Number)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load saved license", err)
		return
	}

	code := http.StatusOK
	if created {
		code = http.StatusCreated
	}
	writeJSON(w, code, toLicenseDTO(saved))
}

// DeleteLicense removes a license together with its course records.
func (h *Handler) DeleteLicense(w http.ResponseWriter, r *http.Request) {
	number := chi.URLParam(r, "number")

	if err := h.Store.DeleteLicense(r.Context(), number); err != nil {
		writeDomainError(w, "Failed to delete license", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status": "deleted",
		"number": number,
	})
}

// =============================================================================
// WINDOW HANDLERS
// =============================================================================

// ListWindows returns every reporting window for a license: history,
// current period, and upcoming periods, relative to the evaluation date.
func (h *Handler) ListWindows(w http.ResponseWriter, r *http.Request) {
	number := chi.URLParam(r, "number")

	asOf, err := asOfDate(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid as_of format (use YYYY-MM-DD)", err)
		return
	}

	rec, err := h.Store.GetLicense(r.Context(), number)
	if err != nil {
		writeDomainError(w, "Failed to get license", err)
		return
	}

	windows, err := h.Generator.Windows(rec.License(), asOf)
	truncated := engine.IsTruncated(err)
	if err != nil && !truncated {
		writeDomainError(w, "Failed to generate windows", err)
		return
	}
	windowsGenerated.Add(float64(len(windows)))

	writeJSON(w, http.StatusOK, WindowListDTO{
		LicenseNumber: number,
		AsOf:          asOf.String(),
		Windows:       toWindowDTOs(windows, asOf),
		Truncated:     truncated,
	})
}

// CurrentPeriod analyzes the window containing the evaluation date.
func (h *Handler) CurrentPeriod(w http.ResponseWriter, r *http.Request) {
	number := chi.URLParam(r, "number")

	asOf, err := asOfDate(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid as_of format (use YYYY-MM-DD)", err)
		return
	}

	ctx := r.Context()
	rec, err := h.Store.GetLicense(ctx, number)
	if err != nil {
		writeDomainError(w, "Failed to get license", err)
		return
	}

	window, ok, err := h.Generator.CurrentWindow(rec.License(), asOf)
	if err != nil {
		writeDomainError(w, "Failed to generate windows", err)
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "No reporting window covers this date", nil)
		return
	}

	result, err := h.analyze(ctx, window, number)
	if err != nil {
		writeDomainError(w, "Analysis failed", err)
		return
	}

	days := engine.DaysBetween(asOf, window.End)
	top := result.Recommendations
	if len(top) > 3 {
		top = top[:3]
	}
	if top == nil {
		top = []string{}
	}

	writeJSON(w, http.StatusOK, CurrentPeriodDTO{
		LicenseNumber: number,
		AsOf:          asOf.String(),
		Result:        toResultDTO(result, asOf),
		DaysRemaining: days,
		Urgency:       string(report.UrgencyFor(days)),
		TopActions:    top,
	})
}

// AnalyzeCustomWindow runs the analyzer over a caller-chosen window.
// Without explicit regime fields the requirements are inferred from the
// span length: up to two and a half years reads as a biennial period,
// anything longer as triennial.
func (h *Handler) AnalyzeCustomWindow(w http.ResponseWriter, r *http.Request) {
	number := chi.URLParam(r, "number")

	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	asOf, err := asOfDate(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid as_of format (use YYYY-MM-DD)", err)
		return
	}
	start, err := engine.ParseDate(req.Start)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid start format (use YYYY-MM-DD)", err)
		return
	}
	end, err := engine.ParseDate(req.End)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid end format (use YYYY-MM-DD)", err)
		return
	}

	ctx := r.Context()
	if _, err := h.Store.GetLicense(ctx, number); err != nil {
		writeDomainError(w, "Failed to get license", err)
		return
	}

	window, err := h.customWindow(req, start, end, asOf)
	if err != nil {
		writeDomainError(w, "Invalid analysis window", err)
		return
	}

	result, err := h.analyze(ctx, window, number)
	if err != nil {
		writeDomainError(w, "Analysis failed", err)
		return
	}

	writeJSON(w, http.StatusOK, toResultDTO(result, asOf))
}

// customWindow builds the requested window, applying any explicit
// regime overrides on top of the span-inferred defaults.
func (h *Handler) customWindow(req AnalyzeRequest, start, end, asOf engine.Date) (engine.Window, error) {
	rules := h.Generator.Rules()

	if req.Kind == "" && req.HoursRequired == nil && req.EthicsRequired == nil && req.AnnualMinimum == nil {
		return h.Generator.CustomWindow(start, end, asOf)
	}

	regime := rules.RegimeForSpan(start, end)
	if req.Kind != "" {
		switch engine.RegimeKind(req.Kind) {
		case rules.Modern.Kind:
			regime = rules.Modern
		case rules.Legacy.Kind:
			regime = rules.Legacy
		default:
			return engine.Window{}, &engine.InvalidWindowError{
				Start:  start,
				End:    end,
				Reason: "unknown period kind " + req.Kind,
			}
		}
	}
	if req.HoursRequired != nil {
		regime.HoursRequired = engine.NewHours(*req.HoursRequired)
	}
	if req.EthicsRequired != nil {
		regime.EthicsRequired = engine.NewHours(*req.EthicsRequired)
	}
	if req.AnnualMinimum != nil {
		regime.AnnualMinimum = engine.NewHours(*req.AnnualMinimum)
	}

	return engine.NewCustomWindow(start, end, regime, asOf)
}

// analyze loads a license's course records and runs the analyzer,
// recording the duration and verdict metrics.
func (h *Handler) analyze(ctx context.Context, window engine.Window, number string) (engine.ComplianceResult, error) {
	courses, err := h.Store.ListCourses(ctx, number)
	if err != nil {
		return engine.ComplianceResult{}, err
	}

	startedAt := time.Now()
	result, err := h.Analyzer.Analyze(window, store.EducationRecords(courses))
	analysisDuration.Observe(time.Since(startedAt).Seconds())
	if err != nil {
		return engine.ComplianceResult{}, err
	}
	analysesPerformed.WithLabelValues(verdictLabel(result.Compliant)).Inc()

	return result, nil
}

// =============================================================================
// REPORT HANDLER
// =============================================================================

// GetReport returns the full compliance report for a license. With
// ?format=text the plain-text rendering is returned instead of JSON.
func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	number := chi.URLParam(r, "number")

	asOf, err := asOfDate(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid as_of format (use YYYY-MM-DD)", err)
		return
	}

	ctx := r.Context()
	rec, err := h.Store.GetLicense(ctx, number)
	if err != nil {
		writeDomainError(w, "Failed to get license", err)
		return
	}

	windows, err := h.Generator.Windows(rec.License(), asOf)
	if err != nil && !engine.IsTruncated(err) {
		writeDomainError(w, "Failed to generate windows", err)
		return
	}

	var current engine.Window
	found := false
	for _, win := range windows {
		if win.IsCurrent() {
			current, found = win, true
			break
		}
	}
	if !found {
		writeError(w, http.StatusNotFound, "No reporting window covers this date", nil)
		return
	}

	result, err := h.analyze(ctx, current, number)
	if err != nil {
		writeDomainError(w, "Analysis failed", err)
		return
	}

	rep := report.Build(rec.License(), windows, result, asOf)

	if r.URL.Query().Get("format") == "text" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(rep.Render()))
		return
	}

	writeJSON(w, http.StatusOK, toReportDTO(rep, rec))
}

// =============================================================================
// EDUCATION RECORD HANDLERS
// =============================================================================

// ListCourses returns a license's course certificates, oldest first.
func (h *Handler) ListCourses(w http.ResponseWriter, r *http.Request) {
	number := chi.URLParam(r, "number")

	ctx := r.Context()
	if _, err := h.Store.GetLicense(ctx, number); err != nil {
		writeDomainError(w, "Failed to get license", err)
		return
	}

	courses, err := h.Store.ListCourses(ctx, number)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list course records", err)
		return
	}

	writeJSON(w, http.StatusOK, toCourseDTOs(courses))
}

// AddCourse records one completed course certificate.
func (h *Handler) AddCourse(w http.ResponseWriter, r *http.Request) {
	number := chi.URLParam(r, "number")

	var req AddCourseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if req.CourseName == "" {
		writeError(w, http.StatusBadRequest, "Course name is required", nil)
		return
	}
	completed, err := engine.ParseDate(req.CompletionDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid completion_date format (use YYYY-MM-DD)", err)
		return
	}

	course := store.CourseRecord{
		LicenseNumber:  number,
		CourseName:     req.CourseName,
		Provider:       req.Provider,
		SubjectArea:    req.SubjectArea,
		CompletionDate: completed,
		Hours:          engine.NewHours(req.Hours),
		Ethics:         req.Ethics,
	}
	record := engine.EducationRecord{
		CompletionDate: course.CompletionDate,
		Hours:          course.Hours,
		Ethics:         course.Ethics,
	}
	if err := record.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid course record", err)
		return
	}

	saved, err := h.Store.AddCourse(r.Context(), course)
	if err != nil {
		writeDomainError(w, "Failed to record course", err)
		return
	}

	writeJSON(w, http.StatusCreated, toCourseDTO(saved))
}

// DeleteCourse removes one course certificate belonging to the license.
func (h *Handler) DeleteCourse(w http.ResponseWriter, r *http.Request) {
	number := chi.URLParam(r, "number")
	id := chi.URLParam(r, "id")

	ctx := r.Context()
	courses, err := h.Store.ListCourses(ctx, number)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list course records", err)
		return
	}

	owned := false
	for _, c := range courses {
		if c.ID == id {
			owned = true
			break
		}
	}
	if !owned {
		writeError(w, http.StatusNotFound, "Course record not found", nil)
		return
	}

	if err := h.Store.DeleteCourse(ctx, id); err != nil {
		writeDomainError(w, "Failed to delete course record", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status": "deleted",
		"id":     id,
	})
}

// =============================================================================
// ALERT AND STATS HANDLERS
// =============================================================================

// ListAlerts returns renewal alerts, newest first. An optional
// ?license= parameter narrows to one license.
func (h *Handler) ListAlerts(w http.ResponseWriter, r *http.Request) {
	alerts, err := h.Store.ListAlerts(r.Context(), r.URL.Query().Get("license"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list alerts", err)
		return
	}

	dtos := make([]AlertDTO, len(alerts))
	for i, a := range alerts {
		dtos[i] = toAlertDTO(a)
	}

	writeJSON(w, http.StatusOK, dtos)
}

// GetStats returns roster-level statistics.
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Store.Stats(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to compute stats", err)
		return
	}

	writeJSON(w, http.StatusOK, toStatsDTO(stats))
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Code = errorCode(err)
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError maps engine and store errors onto HTTP statuses:
// rule violations 400, unknown resources 404, duplicates 409, the
// rest 500.
func writeDomainError(w http.ResponseWriter, message string, err error) {
	switch {
	case errors.Is(err, store.ErrLicenseNotFound):
		writeError(w, http.StatusNotFound, "License not found", err)
	case errors.Is(err, store.ErrCourseNotFound):
		writeError(w, http.StatusNotFound, "Course record not found", err)
	case errors.Is(err, store.ErrDuplicateCourse):
		writeError(w, http.StatusConflict, "Course already recorded for this completion date", err)
	case engine.IsClientError(err):
		writeError(w, http.StatusBadRequest, message, err)
	default:
		writeError(w, http.StatusInternalServerError, message, err)
	}
}

// errorCode names the violated rule for client errors so API consumers
// can branch without parsing prose.
func errorCode(err error) string {
	switch {
	case errors.Is(err, engine.ErrInvalidLicense):
		return "invalid_license"
	case errors.Is(err, engine.ErrInvalidWindow):
		return "invalid_window"
	case errors.Is(err, engine.ErrInvalidRecord):
		return "invalid_record"
	case errors.Is(err, engine.ErrInvalidRuleTable):
		return "invalid_rule_table"
	case errors.Is(err, engine.ErrSequenceTruncated):
		return "sequence_truncated"
	case errors.Is(err, store.ErrDuplicateCourse):
		return "duplicate_course"
	}
	return ""
}

func verdictLabel(compliant bool) string {
	if compliant {
		return "compliant"
	}
	return "non_compliant"
}
