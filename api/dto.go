/*
dto.go - Request and response types for the HTTP API

PURPOSE:
  Defines the JSON shapes the API speaks. Domain types (engine, store,
  report) stay free of wire concerns; everything crossing the HTTP
  boundary is converted here.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

TYPES:
  Dates cross the wire as YYYY-MM-DD strings, timestamps as RFC3339,
  hours as JSON numbers.

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data
  carriers.

SEE ALSO:
  - handlers.go: Produces and consumes these types
  - report: The domain report ReportDTO flattens for the dashboard
*/
package api

import (
	"time"

	"github.com/warp/compliance-engine/engine"
	"github.com/warp/compliance-engine/report"
	"github.com/warp/compliance-engine/store"
)

// =============================================================================
// REQUEST TYPES
// =============================================================================

// SaveLicenseRequest creates or updates a roster entry.
type SaveLicenseRequest struct {
	Number         string `json:"number"`
	FullName       string `json:"full_name"`
	Status         string `json:"status"`
	IssueDate      string `json:"issue_date"`
	ExpirationDate string `json:"expiration_date"`
	Email          string `json:"email"`
}

// AddCourseRequest records one completed course certificate.
type AddCourseRequest struct {
	CourseName     string  `json:"course_name"`
	Provider       string  `json:"provider"`
	SubjectArea    string  `json:"subject_area"`
	CompletionDate string  `json:"completion_date"`
	Hours          float64 `json:"hours"`
	Ethics         bool    `json:"ethics"`
}

// AnalyzeRequest asks for a verdict over a caller-chosen window. When
// the regime fields are omitted, the period kind and requirements are
// inferred from the span length.
type AnalyzeRequest struct {
	Start          string   `json:"start"`
	End            string   `json:"end"`
	Kind           string   `json:"kind,omitempty"`
	HoursRequired  *float64 `json:"hours_required,omitempty"`
	EthicsRequired *float64 `json:"ethics_required,omitempty"`
	AnnualMinimum  *float64 `json:"annual_minimum,omitempty"`
}

// LoadScenarioRequest selects a demo scenario by ID.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

type LicenseDTO struct {
	Number         string `json:"number"`
	FullName       string `json:"full_name"`
	Status         string `json:"status"`
	IssueDate      string `json:"issue_date"`
	ExpirationDate string `json:"expiration_date"`
	Jurisdiction   string `json:"jurisdiction"`
	Email          string `json:"email,omitempty"`
	LastRosterSync string `json:"last_roster_sync,omitempty"`
	CreatedAt      string `json:"created_at,omitempty"`
	UpdatedAt      string `json:"updated_at,omitempty"`
}

type CourseDTO struct {
	ID             string  `json:"id"`
	LicenseNumber  string  `json:"license_number"`
	CourseName     string  `json:"course_name"`
	Provider       string  `json:"provider,omitempty"`
	SubjectArea    string  `json:"subject_area,omitempty"`
	CompletionDate string  `json:"completion_date"`
	Hours          float64 `json:"hours"`
	Ethics         bool    `json:"ethics"`
	CreatedAt      string  `json:"created_at,omitempty"`
}

type RegimeDTO struct {
	Kind           string  `json:"kind"`
	Years          int     `json:"years"`
	HoursRequired  float64 `json:"hours_required"`
	EthicsRequired float64 `json:"ethics_required"`
	AnnualMinimum  float64 `json:"annual_minimum"`
	Label          string  `json:"label,omitempty"`
}

type WindowDTO struct {
	Start        string    `json:"start"`
	End          string    `json:"end"`
	Status       string    `json:"status"`
	Description  string    `json:"description"`
	Regime       RegimeDTO `json:"regime"`
	DaysUntilEnd int       `json:"days_until_end"`
}

// WindowListDTO is the windows listing with its truncation flag: a
// license older than the walk bound still gets its valid windows, the
// flag just warns that the earliest history is missing.
type WindowListDTO struct {
	LicenseNumber string      `json:"license_number"`
	AsOf          string      `json:"as_of"`
	Windows       []WindowDTO `json:"windows"`
	Truncated     bool        `json:"truncated"`
}

type AnnualComplianceDTO struct {
	Year           int     `json:"year"`
	Start          string  `json:"start"`
	End            string  `json:"end"`
	HoursCompleted float64 `json:"hours_completed"`
	HoursRequired  float64 `json:"hours_required"`
	Compliant      bool    `json:"compliant"`
}

type ResultDTO struct {
	Window            WindowDTO             `json:"window"`
	TotalHours        float64               `json:"total_hours"`
	EthicsHours       float64               `json:"ethics_hours"`
	AnnualBreakdown   []AnnualComplianceDTO `json:"annual_breakdown"`
	Compliant         bool                  `json:"compliant"`
	CompliancePercent float64               `json:"compliance_percent"`
	MissingHours      float64               `json:"missing_hours"`
	MissingEthics     float64               `json:"missing_ethics"`
	Recommendations   []string              `json:"recommendations"`
}

// CurrentPeriodDTO is the at-a-glance answer for "where do I stand
// right now": the analyzed current window plus the top recommendations.
type CurrentPeriodDTO struct {
	LicenseNumber string    `json:"license_number"`
	AsOf          string    `json:"as_of"`
	Result        ResultDTO `json:"result"`
	DaysRemaining int       `json:"days_remaining"`
	Urgency       string    `json:"urgency"`
	TopActions    []string  `json:"top_actions"`
}

type ImportantDateDTO struct {
	Date        string `json:"date"`
	Event       string `json:"event"`
	Description string `json:"description"`
	Importance  string `json:"importance"`
}

type ReportDTO struct {
	License        LicenseDTO         `json:"license"`
	AsOf           string             `json:"as_of"`
	Category       string             `json:"category"`
	CategoryNote   string             `json:"category_note"`
	RenewalPattern string             `json:"renewal_pattern"`
	History        string             `json:"history"`
	Status         string             `json:"status"`
	Summary        string             `json:"summary"`
	DaysRemaining  int                `json:"days_remaining"`
	Urgency        string             `json:"urgency"`
	Result         ResultDTO          `json:"result"`
	Windows        []WindowDTO        `json:"windows"`
	ImportantDates []ImportantDateDTO `json:"important_dates"`
	NextActions    []string           `json:"next_actions"`
}

type AlertDTO struct {
	ID            string `json:"id"`
	LicenseNumber string `json:"license_number"`
	WindowEnd     string `json:"window_end"`
	DaysRemaining int    `json:"days_remaining"`
	Urgency       string `json:"urgency"`
	Message       string `json:"message,omitempty"`
	CreatedAt     string `json:"created_at,omitempty"`
}

type StatsDTO struct {
	TotalLicenses  int     `json:"total_licenses"`
	ActiveLicenses int     `json:"active_licenses"`
	TotalCourses   int     `json:"total_courses"`
	TotalHours     float64 `json:"total_hours"`
	TotalAlerts    int     `json:"total_alerts"`
	LastRosterSync string  `json:"last_roster_sync,omitempty"`
}

type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category,omitempty"`
}

// =============================================================================
// ERROR RESPONSE
// =============================================================================

// ErrorResponse is the uniform error body. Code carries the violated
// rule for client errors ("invalid_window", "invalid_record", ...) so
// callers can branch without parsing prose.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toLicenseDTO(rec store.LicenseRecord) LicenseDTO {
	dto := LicenseDTO{
		Number:         rec.Number,
		FullName:       rec.FullName,
		Status:         rec.Status,
		IssueDate:      rec.IssueDate.String(),
		ExpirationDate: rec.ExpirationDate.String(),
		Jurisdiction:   rec.Jurisdiction,
		Email:          rec.Email,
	}
	if !rec.LastRosterSync.IsZero() {
		dto.LastRosterSync = rec.LastRosterSync.Format(time.RFC3339)
	}
	if !rec.CreatedAt.IsZero() {
		dto.CreatedAt = rec.CreatedAt.Format(time.RFC3339)
	}
	if !rec.UpdatedAt.IsZero() {
		dto.UpdatedAt = rec.UpdatedAt.Format(time.RFC3339)
	}
	return dto
}

func toCourseDTO(c store.CourseRecord) CourseDTO {
	dto := CourseDTO{
		ID:             c.ID,
		LicenseNumber:  c.LicenseNumber,
		CourseName:     c.CourseName,
		Provider:       c.Provider,
		SubjectArea:    c.SubjectArea,
		CompletionDate: c.CompletionDate.String(),
		Hours:          c.Hours.Float64(),
		Ethics:         c.Ethics,
	}
	if !c.CreatedAt.IsZero() {
		dto.CreatedAt = c.CreatedAt.Format(time.RFC3339)
	}
	return dto
}

func toCourseDTOs(courses []store.CourseRecord) []CourseDTO {
	dtos := make([]CourseDTO, len(courses))
	for i, c := range courses {
		dtos[i] = toCourseDTO(c)
	}
	return dtos
}

func toRegimeDTO(r engine.Regime) RegimeDTO {
	return RegimeDTO{
		Kind:           string(r.Kind),
		Years:          r.Years,
		HoursRequired:  r.HoursRequired.Float64(),
		EthicsRequired: r.EthicsRequired.Float64(),
		AnnualMinimum:  r.AnnualMinimum.Float64(),
		Label:          r.Label,
	}
}

func toWindowDTO(w engine.Window, asOf engine.Date) WindowDTO {
	return WindowDTO{
		Start:        w.Start.String(),
		End:          w.End.String(),
		Status:       string(w.Status),
		Description:  w.Description,
		Regime:       toRegimeDTO(w.Regime),
		DaysUntilEnd: engine.DaysBetween(asOf, w.End),
	}
}

func toWindowDTOs(windows []engine.Window, asOf engine.Date) []WindowDTO {
	dtos := make([]WindowDTO, len(windows))
	for i, w := range windows {
		dtos[i] = toWindowDTO(w, asOf)
	}
	return dtos
}

func toResultDTO(res engine.ComplianceResult, asOf engine.Date) ResultDTO {
	breakdown := make([]AnnualComplianceDTO, len(res.AnnualBreakdown))
	for i, a := range res.AnnualBreakdown {
		breakdown[i] = AnnualComplianceDTO{
			Year:           a.Year,
			Start:          a.Start.String(),
			End:            a.End.String(),
			HoursCompleted: a.HoursCompleted.Float64(),
			HoursRequired:  a.HoursRequired.Float64(),
			Compliant:      a.Compliant,
		}
	}
	recommendations := res.Recommendations
	if recommendations == nil {
		recommendations = []string{}
	}
	return ResultDTO{
		Window:            toWindowDTO(res.Window, asOf),
		TotalHours:        res.TotalHours.Float64(),
		EthicsHours:       res.EthicsHours.Float64(),
		AnnualBreakdown:   breakdown,
		Compliant:         res.Compliant,
		CompliancePercent: res.CompliancePercent,
		MissingHours:      res.MissingHours.Float64(),
		MissingEthics:     res.MissingEthics.Float64(),
		Recommendations:   recommendations,
	}
}

func toReportDTO(rep report.ComplianceReport, rec store.LicenseRecord) ReportDTO {
	dates := make([]ImportantDateDTO, len(rep.ImportantDates))
	for i, d := range rep.ImportantDates {
		dates[i] = ImportantDateDTO{
			Date:        d.Date.String(),
			Event:       d.Event,
			Description: d.Description,
			Importance:  string(d.Importance),
		}
	}
	actions := rep.NextActions
	if actions == nil {
		actions = []string{}
	}
	return ReportDTO{
		License:        toLicenseDTO(rec),
		AsOf:           rep.AsOf.String(),
		Category:       string(rep.Category),
		CategoryNote:   rep.CategoryNote,
		RenewalPattern: rep.RenewalPattern,
		History:        rep.History,
		Status:         rep.Status,
		Summary:        rep.Summary,
		DaysRemaining:  rep.DaysRemaining,
		Urgency:        string(rep.Urgency),
		Result:         toResultDTO(rep.Result, rep.AsOf),
		Windows:        toWindowDTOs(rep.Windows, rep.AsOf),
		ImportantDates: dates,
		NextActions:    actions,
	}
}

func toAlertDTO(a store.RenewalAlert) AlertDTO {
	dto := AlertDTO{
		ID:            a.ID,
		LicenseNumber: a.LicenseNumber,
		WindowEnd:     a.WindowEnd.String(),
		DaysRemaining: a.DaysRemaining,
		Urgency:       a.Urgency,
		Message:       a.Message,
	}
	if !a.CreatedAt.IsZero() {
		dto.CreatedAt = a.CreatedAt.Format(time.RFC3339)
	}
	return dto
}

func toStatsDTO(s store.Stats) StatsDTO {
	dto := StatsDTO{
		TotalLicenses:  s.TotalLicenses,
		ActiveLicenses: s.ActiveLicenses,
		TotalCourses:   s.TotalCourses,
		TotalHours:     s.TotalHours,
		TotalAlerts:    s.TotalAlerts,
	}
	if !s.LastRosterSync.IsZero() {
		dto.LastRosterSync = s.LastRosterSync.Format(time.RFC3339)
	}
	return dto
}
