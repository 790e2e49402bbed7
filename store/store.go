/*
store.go - Persistence interfaces for roster and education data

PURPOSE:
  Defines the interface between the compliance service and the database.
  The engine itself never touches storage; these interfaces feed it
  licenses and course records and keep what the monitor produces.

KEY INTERFACES:
  LicenseStore: Roster licenses (upsert on import, keyed by number)
  CourseStore:  Education records backing the analyzer
  AlertStore:   Renewal alerts, idempotent per license+window end
  StatsStore:   Roster-level counters for the importer and dashboard
  Store:        All of the above plus lifecycle

DUPLICATE HANDLING:
  A course certificate is identified by (license, course name, completion
  date). Re-adding the same certificate returns ErrDuplicateCourse so a
  re-uploaded transcript cannot double-count hours. Renewal alerts are
  keyed by (license, window end): recording the same alert twice is a
  no-op, which keeps the monitor idempotent across restarts.

IMPLEMENTATIONS:
  - store/sqlite: Production SQLite (WAL, auto-migrated schema)
  - store/memory: In-memory for tests and demo scenarios

SEE ALSO:
  - engine: The types these records convert into
  - api: Maps the sentinel errors onto HTTP statuses
*/
package store

import (
	"context"
	"errors"
	"time"

	"github.com/warp/compliance-engine/engine"
)

// =============================================================================
// SENTINEL ERRORS
// =============================================================================

var (
	ErrLicenseNotFound = errors.New("license not found")
	ErrCourseNotFound  = errors.New("course record not found")
	ErrDuplicateCourse = errors.New("duplicate course record")
)

// =============================================================================
// RECORDS
// =============================================================================

// LicenseRecord is one roster row. Number is the natural key; imports
// upsert against it.
type LicenseRecord struct {
	Number         string
	FullName       string
	Status         string
	IssueDate      engine.Date
	ExpirationDate engine.Date
	Jurisdiction   string
	Email          string
	LastRosterSync time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// License converts the stored row into the engine's input type.
func (r LicenseRecord) License() engine.License {
	return engine.License{
		Number:         r.Number,
		IssueDate:      r.IssueDate,
		ExpirationDate: r.ExpirationDate,
	}
}

// CourseRecord is one completed course certificate.
type CourseRecord struct {
	ID             string
	LicenseNumber  string
	CourseName     string
	Provider       string
	SubjectArea    string
	CompletionDate engine.Date
	Hours          engine.Hours
	Ethics         bool
	CreatedAt      time.Time
}

// EducationRecords converts stored courses into analyzer input.
func EducationRecords(courses []CourseRecord) []engine.EducationRecord {
	records := make([]engine.EducationRecord, 0, len(courses))
	for _, c := range courses {
		records = append(records, engine.EducationRecord{
			CompletionDate: c.CompletionDate,
			Hours:          c.Hours,
			Ethics:         c.Ethics,
		})
	}
	return records
}

// RenewalAlert is one deadline warning produced by the monitor.
type RenewalAlert struct {
	ID            string
	LicenseNumber string
	WindowEnd     engine.Date
	DaysRemaining int
	Urgency       string
	Message       string
	CreatedAt     time.Time
}

// Stats are roster-level counters for the importer and the dashboard.
type Stats struct {
	TotalLicenses  int
	ActiveLicenses int
	TotalCourses   int
	TotalHours     float64
	TotalAlerts    int
	LastRosterSync time.Time
}

// =============================================================================
// INTERFACES
// =============================================================================

// LicenseFilter narrows license listings. Zero value lists everything.
type LicenseFilter struct {
	Status string
}

type LicenseStore interface {
	// SaveLicense upserts by license number. Returns true when the row
	// was created rather than updated.
	SaveLicense(ctx context.Context, lic LicenseRecord) (created bool, err error)

	// GetLicense returns ErrLicenseNotFound for unknown numbers.
	GetLicense(ctx context.Context, number string) (LicenseRecord, error)

	// ListLicenses returns matching rows ordered by license number.
	ListLicenses(ctx context.Context, filter LicenseFilter) ([]LicenseRecord, error)

	// DeleteLicense removes the license and its course records.
	DeleteLicense(ctx context.Context, number string) error
}

type CourseStore interface {
	// AddCourse stores a certificate, assigning an ID when empty.
	// Returns ErrDuplicateCourse for a repeated (license, course,
	// completion date) and ErrLicenseNotFound for an unknown license.
	AddCourse(ctx context.Context, course CourseRecord) (CourseRecord, error)

	// ListCourses returns a license's records ordered by completion date.
	ListCourses(ctx context.Context, licenseNumber string) ([]CourseRecord, error)

	// DeleteCourse returns ErrCourseNotFound for unknown IDs.
	DeleteCourse(ctx context.Context, id string) error
}

type AlertStore interface {
	// RecordAlert stores an alert once per (license, window end).
	// Returns true when the alert is new, false when it already existed.
	RecordAlert(ctx context.Context, alert RenewalAlert) (created bool, err error)

	// ListAlerts returns alerts newest first. An empty license number
	// lists alerts for the whole roster.
	ListAlerts(ctx context.Context, licenseNumber string) ([]RenewalAlert, error)
}

type StatsStore interface {
	Stats(ctx context.Context) (Stats, error)
}

// Store is the full persistence surface the server wires up.
type Store interface {
	LicenseStore
	CourseStore
	AlertStore
	StatsStore

	// Reset clears all data (tests and demo scenario loading).
	Reset(ctx context.Context) error
	Close() error
}
