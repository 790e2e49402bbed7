/*
Package sqlite provides the SQLite-backed implementation of the storage
interfaces.

PURPOSE:
  Implements store.Store for production use. The same patterns apply to
  PostgreSQL - only minor SQL dialect differences.

KEY TABLES:
  licenses:       Roster rows, keyed by license number
  courses:        Education records backing the analyzer
  renewal_alerts: Deadline warnings recorded by the monitor

UNIQUENESS:
  idx_unique_course: one (license_number, course_name, completion_date) -
  a re-uploaded certificate cannot double-count hours.
  idx_unique_alert: one (license_number, window_end) - the renewal
  monitor stays idempotent across restarts.

DATES:
  Calendar dates (issue, expiration, completion, window end) are stored
  as YYYY-MM-DD text so SQLite string comparison matches date order.
  Timestamps are RFC3339 text. Hours are stored as decimal text, never
  as REAL.

WAL MODE:
  Opened with WAL (Write-Ahead Logging) for better concurrency:
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

USAGE:
  st, err := sqlite.New("./data/compliance.db")
  if err != nil {
      log.Fatal(err)
  }
  defer st.Close()

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - store/store.go: Interface definitions
  - store/memory: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/warp/compliance-engine/accountancy"
	"github.com/warp/compliance-engine/engine"
	"github.com/warp/compliance-engine/store"
)

// Store implements store.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a SQLite store at the given path. Use ":memory:" for an
// in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Roster licenses, upserted by the importer
	CREATE TABLE IF NOT EXISTS licenses (
		number TEXT PRIMARY KEY,
		full_name TEXT NOT NULL,
		status TEXT NOT NULL,
		issue_date TEXT NOT NULL,
		expiration_date TEXT NOT NULL,
		jurisdiction TEXT NOT NULL,
		email TEXT,
		last_roster_sync TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_licenses_status
		ON licenses(status);
	CREATE INDEX IF NOT EXISTS idx_licenses_expiration
		ON licenses(expiration_date);

	-- Education records feeding the analyzer
	CREATE TABLE IF NOT EXISTS courses (
		id TEXT PRIMARY KEY,
		license_number TEXT NOT NULL REFERENCES licenses(number) ON DELETE CASCADE,
		course_name TEXT NOT NULL,
		provider TEXT,
		subject_area TEXT,
		completion_date TEXT NOT NULL,
		hours TEXT NOT NULL,
		ethics BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TEXT NOT NULL
	);

	-- CRITICAL: a certificate is one (license, course, completion date).
	-- Re-adding the same certificate must not double-count hours.
	CREATE UNIQUE INDEX IF NOT EXISTS idx_unique_course
		ON courses(license_number, course_name, completion_date);

	-- Hot path: analyzer loads a license's records by completion date
	CREATE INDEX IF NOT EXISTS idx_courses_license_date
		ON courses(license_number, completion_date);

	-- Renewal alerts recorded by the monitor
	CREATE TABLE IF NOT EXISTS renewal_alerts (
		id TEXT PRIMARY KEY,
		license_number TEXT NOT NULL REFERENCES licenses(number) ON DELETE CASCADE,
		window_end TEXT NOT NULL,
		days_remaining INTEGER NOT NULL,
		urgency TEXT NOT NULL,
		message TEXT,
		created_at TEXT NOT NULL
	);

	-- One alert per license and window end keeps the monitor idempotent
	CREATE UNIQUE INDEX IF NOT EXISTS idx_unique_alert
		ON renewal_alerts(license_number, window_end);

	CREATE INDEX IF NOT EXISTS idx_alerts_license
		ON renewal_alerts(license_number);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// LICENSE STORE
// =============================================================================

// SaveLicense upserts by license number and reports whether the row was
// created.
func (s *Store) SaveLicense(ctx context.Context, lic store.LicenseRecord) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var count int
	if err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM licenses WHERE number = ?", lic.Number,
	).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check license: %w", err)
	}

	query := `
		INSERT INTO licenses
		(number, full_name, status, issue_date, expiration_date, jurisdiction, email, last_roster_sync, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(number) DO UPDATE SET
			full_name = excluded.full_name,
			status = excluded.status,
			issue_date = excluded.issue_date,
			expiration_date = excluded.expiration_date,
			jurisdiction = excluded.jurisdiction,
			email = excluded.email,
			last_roster_sync = excluded.last_roster_sync,
			updated_at = excluded.updated_at
	`

	now := time.Now().UTC().Format(time.RFC3339)
	rosterSync := ""
	if !lic.LastRosterSync.IsZero() {
		rosterSync = lic.LastRosterSync.UTC().Format(time.RFC3339)
	}

	_, err := s.db.ExecContext(ctx, query,
		lic.Number,
		lic.FullName,
		lic.Status,
		lic.IssueDate.String(),
		lic.ExpirationDate.String(),
		lic.Jurisdiction,
		lic.Email,
		nullString(rosterSync),
		now,
		now,
	)
	if err != nil {
		return false, fmt.Errorf("failed to save license: %w", err)
	}
	return count == 0, nil
}

// GetLicense retrieves a license by number.
func (s *Store) GetLicense(ctx context.Context, number string) (store.LicenseRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT number, full_name, status, issue_date, expiration_date, jurisdiction, email, last_roster_sync, created_at, updated_at
		FROM licenses WHERE number = ?`, number)

	lic, err := scanLicense(row)
	if err == sql.ErrNoRows {
		return store.LicenseRecord{}, store.ErrLicenseNotFound
	}
	return lic, err
}

// ListLicenses returns matching licenses ordered by number.
func (s *Store) ListLicenses(ctx context.Context, filter store.LicenseFilter) ([]store.LicenseRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT number, full_name, status, issue_date, expiration_date, jurisdiction, email, last_roster_sync, created_at, updated_at
		FROM licenses
	`
	var args []any
	if filter.Status != "" {
		query += " WHERE status = ?"
		args = append(args, filter.Status)
	}
	query += " ORDER BY number ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query licenses: %w", err)
	}
	defer rows.Close()

	var licenses []store.LicenseRecord
	for rows.Next() {
		lic, err := scanLicense(rows)
		if err != nil {
			return nil, err
		}
		licenses = append(licenses, lic)
	}
	return licenses, rows.Err()
}

// DeleteLicense removes a license; course records and alerts cascade.
func (s *Store) DeleteLicense(ctx context.Context, number string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM licenses WHERE number = ?", number)
	if err != nil {
		return fmt.Errorf("failed to delete license: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrLicenseNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLicense(row rowScanner) (store.LicenseRecord, error) {
	var (
		lic                  store.LicenseRecord
		issue, expiration    string
		email, rosterSync    sql.NullString
		createdAt, updatedAt string
	)
	err := row.Scan(&lic.Number, &lic.FullName, &lic.Status, &issue, &expiration,
		&lic.Jurisdiction, &email, &rosterSync, &createdAt, &updatedAt)
	if err != nil {
		return lic, err
	}

	lic.IssueDate, _ = engine.ParseDate(issue)
	lic.ExpirationDate, _ = engine.ParseDate(expiration)
	lic.Email = email.String
	if rosterSync.Valid {
		lic.LastRosterSync, _ = time.Parse(time.RFC3339, rosterSync.String)
	}
	lic.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	lic.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return lic, nil
}

// =============================================================================
// COURSE STORE
// =============================================================================

// AddCourse stores a certificate, assigning an ID when empty.
func (s *Store) AddCourse(ctx context.Context, course store.CourseRecord) (store.CourseRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var count int
	if err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM licenses WHERE number = ?", course.LicenseNumber,
	).Scan(&count); err != nil {
		return store.CourseRecord{}, fmt.Errorf("failed to check license: %w", err)
	}
	if count == 0 {
		return store.CourseRecord{}, store.ErrLicenseNotFound
	}

	if course.ID == "" {
		course.ID = uuid.NewString()
	}
	if course.CreatedAt.IsZero() {
		course.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO courses (id, license_number, course_name, provider, subject_area, completion_date, hours, ethics, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		course.ID,
		course.LicenseNumber,
		course.CourseName,
		course.Provider,
		course.SubjectArea,
		course.CompletionDate.String(),
		course.Hours.String(),
		course.Ethics,
		course.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return store.CourseRecord{}, store.ErrDuplicateCourse
		}
		return store.CourseRecord{}, fmt.Errorf("failed to add course: %w", err)
	}
	return course, nil
}

// ListCourses returns a license's records ordered by completion date.
func (s *Store) ListCourses(ctx context.Context, licenseNumber string) ([]store.CourseRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, license_number, course_name, provider, subject_area, completion_date, hours, ethics, created_at
		FROM courses
		WHERE license_number = ?
		ORDER BY completion_date ASC, created_at ASC
	`
	rows, err := s.db.QueryContext(ctx, query, licenseNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to query courses: %w", err)
	}
	defer rows.Close()

	var courses []store.CourseRecord
	for rows.Next() {
		var (
			c                store.CourseRecord
			provider, area   sql.NullString
			completion       string
			hours, createdAt string
		)
		if err := rows.Scan(&c.ID, &c.LicenseNumber, &c.CourseName, &provider, &area,
			&completion, &hours, &c.Ethics, &createdAt); err != nil {
			return nil, err
		}
		c.Provider = provider.String
		c.SubjectArea = area.String
		c.CompletionDate, _ = engine.ParseDate(completion)
		c.Hours, _ = engine.ParseHours(hours)
		c.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		courses = append(courses, c)
	}
	return courses, rows.Err()
}

// DeleteCourse removes a course record by ID.
func (s *Store) DeleteCourse(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM courses WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete course: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrCourseNotFound
	}
	return nil
}

// =============================================================================
// ALERT STORE
// =============================================================================

// RecordAlert inserts an alert once per (license, window end).
func (s *Store) RecordAlert(ctx context.Context, alert store.RenewalAlert) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if alert.ID == "" {
		alert.ID = uuid.NewString()
	}
	if alert.CreatedAt.IsZero() {
		alert.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO renewal_alerts (id, license_number, window_end, days_remaining, urgency, message, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(license_number, window_end) DO NOTHING
	`
	res, err := s.db.ExecContext(ctx, query,
		alert.ID,
		alert.LicenseNumber,
		alert.WindowEnd.String(),
		alert.DaysRemaining,
		alert.Urgency,
		alert.Message,
		alert.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return false, fmt.Errorf("failed to record alert: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// ListAlerts returns alerts newest first. Empty license number lists the
// whole roster.
func (s *Store) ListAlerts(ctx context.Context, licenseNumber string) ([]store.RenewalAlert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, license_number, window_end, days_remaining, urgency, message, created_at
		FROM renewal_alerts
	`
	var args []any
	if licenseNumber != "" {
		query += " WHERE license_number = ?"
		args = append(args, licenseNumber)
	}
	query += " ORDER BY created_at DESC, window_end DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query alerts: %w", err)
	}
	defer rows.Close()

	var alerts []store.RenewalAlert
	for rows.Next() {
		var (
			a                  store.RenewalAlert
			windowEnd, created string
			message            sql.NullString
		)
		if err := rows.Scan(&a.ID, &a.LicenseNumber, &windowEnd, &a.DaysRemaining,
			&a.Urgency, &message, &created); err != nil {
			return nil, err
		}
		a.WindowEnd, _ = engine.ParseDate(windowEnd)
		a.Message = message.String
		a.CreatedAt, _ = time.Parse(time.RFC3339, created)
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}

// =============================================================================
// STATS
// =============================================================================

// Stats returns roster-level counters.
func (s *Store) Stats(ctx context.Context) (store.Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var st store.Stats
	var lastSync sql.NullString

	err := s.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM licenses),
			(SELECT COUNT(*) FROM licenses WHERE status = ?),
			(SELECT COUNT(*) FROM courses),
			(SELECT COALESCE(SUM(CAST(hours AS REAL)), 0) FROM courses),
			(SELECT COUNT(*) FROM renewal_alerts),
			(SELECT MAX(last_roster_sync) FROM licenses)
	`, accountancy.StatusActive).Scan(
		&st.TotalLicenses,
		&st.ActiveLicenses,
		&st.TotalCourses,
		&st.TotalHours,
		&st.TotalAlerts,
		&lastSync,
	)
	if err != nil {
		return store.Stats{}, fmt.Errorf("failed to query stats: %w", err)
	}

	if lastSync.Valid {
		st.LastRosterSync, _ = time.Parse(time.RFC3339, lastSync.String)
	}
	return st, nil
}

// =============================================================================
// UTILITIES
// =============================================================================

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := []string{"renewal_alerts", "courses", "licenses"}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
