// Package memory provides an in-memory Store implementation for tests
// and demo scenarios. Semantics match store/sqlite, including duplicate
// detection and alert idempotency.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/warp/compliance-engine/accountancy"
	"github.com/warp/compliance-engine/store"
)

// =============================================================================
// MEMORY STORE
// =============================================================================

type Store struct {
	mu        sync.RWMutex
	licenses  map[string]store.LicenseRecord
	courses   map[string]store.CourseRecord
	courseIDs map[courseKey]string
	alerts    map[string]store.RenewalAlert
	alertSeen map[alertKey]bool
}

// courseKey is the certificate identity: the same course completed on
// the same day by the same license is one record.
type courseKey struct {
	license    string
	course     string
	completion string
}

type alertKey struct {
	license   string
	windowEnd string
}

func New() *Store {
	return &Store{
		licenses:  make(map[string]store.LicenseRecord),
		courses:   make(map[string]store.CourseRecord),
		courseIDs: make(map[courseKey]string),
		alerts:    make(map[string]store.RenewalAlert),
		alertSeen: make(map[alertKey]bool),
	}
}

// =============================================================================
// LICENSE STORE
// =============================================================================

func (m *Store) SaveLicense(_ context.Context, lic store.LicenseRecord) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now().UTC()
	existing, exists := m.licenses[lic.Number]
	if exists {
		lic.CreatedAt = existing.CreatedAt
	} else {
		lic.CreatedAt = now
	}
	lic.UpdatedAt = now
	m.licenses[lic.Number] = lic
	return !exists, nil
}

func (m *Store) GetLicense(_ context.Context, number string) (store.LicenseRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	lic, ok := m.licenses[number]
	if !ok {
		return store.LicenseRecord{}, store.ErrLicenseNotFound
	}
	return lic, nil
}

func (m *Store) ListLicenses(_ context.Context, filter store.LicenseFilter) ([]store.LicenseRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []store.LicenseRecord
	for _, lic := range m.licenses {
		if filter.Status != "" && lic.Status != filter.Status {
			continue
		}
		result = append(result, lic)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Number < result[j].Number
	})
	return result, nil
}

func (m *Store) DeleteLicense(_ context.Context, number string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.licenses[number]; !ok {
		return store.ErrLicenseNotFound
	}
	delete(m.licenses, number)

	// Cascade, matching the sqlite foreign keys.
	for id, c := range m.courses {
		if c.LicenseNumber == number {
			delete(m.courses, id)
			delete(m.courseIDs, courseKey{c.LicenseNumber, c.CourseName, c.CompletionDate.String()})
		}
	}
	for id, a := range m.alerts {
		if a.LicenseNumber == number {
			delete(m.alerts, id)
			delete(m.alertSeen, alertKey{a.LicenseNumber, a.WindowEnd.String()})
		}
	}
	return nil
}

// =============================================================================
// COURSE STORE
// =============================================================================

func (m *Store) AddCourse(_ context.Context, course store.CourseRecord) (store.CourseRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.licenses[course.LicenseNumber]; !ok {
		return store.CourseRecord{}, store.ErrLicenseNotFound
	}

	key := courseKey{course.LicenseNumber, course.CourseName, course.CompletionDate.String()}
	if _, dup := m.courseIDs[key]; dup {
		return store.CourseRecord{}, store.ErrDuplicateCourse
	}

	if course.ID == "" {
		course.ID = uuid.NewString()
	}
	if course.CreatedAt.IsZero() {
		course.CreatedAt = time.Now().UTC()
	}

	m.courses[course.ID] = course
	m.courseIDs[key] = course.ID
	return course, nil
}

func (m *Store) ListCourses(_ context.Context, licenseNumber string) ([]store.CourseRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []store.CourseRecord
	for _, c := range m.courses {
		if c.LicenseNumber == licenseNumber {
			result = append(result, c)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CompletionDate.Equal(result[j].CompletionDate) {
			return result[i].CompletionDate.Before(result[j].CompletionDate)
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func (m *Store) DeleteCourse(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.courses[id]
	if !ok {
		return store.ErrCourseNotFound
	}
	delete(m.courses, id)
	delete(m.courseIDs, courseKey{c.LicenseNumber, c.CourseName, c.CompletionDate.String()})
	return nil
}

// =============================================================================
// ALERT STORE
// =============================================================================

func (m *Store) RecordAlert(_ context.Context, alert store.RenewalAlert) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := alertKey{alert.LicenseNumber, alert.WindowEnd.String()}
	if m.alertSeen[key] {
		return false, nil
	}

	if alert.ID == "" {
		alert.ID = uuid.NewString()
	}
	if alert.CreatedAt.IsZero() {
		alert.CreatedAt = time.Now().UTC()
	}

	m.alerts[alert.ID] = alert
	m.alertSeen[key] = true
	return true, nil
}

func (m *Store) ListAlerts(_ context.Context, licenseNumber string) ([]store.RenewalAlert, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []store.RenewalAlert
	for _, a := range m.alerts {
		if licenseNumber != "" && a.LicenseNumber != licenseNumber {
			continue
		}
		result = append(result, a)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[j].WindowEnd.Before(result[i].WindowEnd)
	})
	return result, nil
}

// =============================================================================
// STATS
// =============================================================================

func (m *Store) Stats(_ context.Context) (store.Stats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	st := store.Stats{
		TotalLicenses: len(m.licenses),
		TotalCourses:  len(m.courses),
		TotalAlerts:   len(m.alerts),
	}
	for _, lic := range m.licenses {
		if lic.Status == accountancy.StatusActive {
			st.ActiveLicenses++
		}
		if lic.LastRosterSync.After(st.LastRosterSync) {
			st.LastRosterSync = lic.LastRosterSync
		}
	}
	for _, c := range m.courses {
		st.TotalHours += c.Hours.Float64()
	}
	return st, nil
}

// =============================================================================
// LIFECYCLE
// =============================================================================

func (m *Store) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.licenses = make(map[string]store.LicenseRecord)
	m.courses = make(map[string]store.CourseRecord)
	m.courseIDs = make(map[courseKey]string)
	m.alerts = make(map[string]store.RenewalAlert)
	m.alertSeen = make(map[alertKey]bool)
	return nil
}

func (m *Store) Close() error { return nil }
