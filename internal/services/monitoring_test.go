package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"classpulse-backend/internal/models"
	"classpulse-backend/internal/monitor"
)

// ─── Fakes ───

type fakeSessions struct {
	sessions map[uuid.UUID]*models.ClassSession
}

func (f *fakeSessions) GetByID(_ context.Context, id uuid.UUID) (*models.ClassSession, error) {
	s, ok := f.sessions[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return s, nil
}

type fakeSamples struct {
	mu        sync.Mutex
	logs      []models.BehaviorLog
	insertErr error
}

func (f *fakeSamples) Insert(_ context.Context, l *models.BehaviorLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return f.insertErr
	}
	l.ID = uuid.New()
	l.Timestamp = time.Now()
	f.logs = append(f.logs, *l)
	return nil
}

func (f *fakeSamples) bySession(sessionID uuid.UUID) []models.BehaviorLog {
	var out []models.BehaviorLog
	for _, l := range f.logs {
		if l.SessionID == sessionID {
			out = append(out, l)
		}
	}
	return out
}

func (f *fakeSamples) Recent(_ context.Context, sessionID uuid.UUID, limit int) ([]models.BehaviorLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	logs := f.bySession(sessionID)
	if len(logs) > limit {
		logs = logs[len(logs)-limit:]
	}
	return logs, nil
}

func (f *fakeSamples) Count(_ context.Context, sessionID uuid.UUID) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.bySession(sessionID)), nil
}

func (f *fakeSamples) EngagementTotals(_ context.Context, sessionID uuid.UUID) (monitor.EngagementTotals, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return monitor.Accumulate(f.bySession(sessionID)), nil
}

// memAlerts implements both monitor.AlertStore and AlertReader with the
// repository's conditional-insert contract.
type memAlerts struct {
	mu        sync.Mutex
	alerts    []models.Alert
	owners    map[uuid.UUID]uuid.UUID // session id -> teacher id
	insertErr error
}

func (m *memAlerts) InsertIfNotRecent(_ context.Context, alert *models.Alert, window time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.insertErr != nil {
		return false, m.insertErr
	}
	for _, a := range m.alerts {
		if a.SessionID == alert.SessionID && a.Type == alert.Type &&
			alert.TriggeredAt.Sub(a.TriggeredAt) < window {
			return false, nil
		}
	}
	m.alerts = append(m.alerts, *alert)
	return true, nil
}

func (m *memAlerts) UnreadBySession(_ context.Context, sessionID uuid.UUID) ([]models.Alert, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Alert{}
	for _, a := range m.alerts {
		if a.SessionID == sessionID && !a.IsRead {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *memAlerts) MarkRead(_ context.Context, alertID, teacherID uuid.UUID) (*models.Alert, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.alerts {
		if m.alerts[i].ID == alertID && m.owners[m.alerts[i].SessionID] == teacherID {
			m.alerts[i].IsRead = true
			a := m.alerts[i]
			return &a, nil
		}
	}
	return nil, pgx.ErrNoRows
}

// ─── Harness ───

type monitoringFixture struct {
	svc      *MonitoringService
	sessions *fakeSessions
	samples  *fakeSamples
	alerts   *memAlerts
	now      time.Time
}

func newMonitoringFixture() *monitoringFixture {
	fx := &monitoringFixture{
		sessions: &fakeSessions{sessions: map[uuid.UUID]*models.ClassSession{}},
		samples:  &fakeSamples{},
		alerts:   &memAlerts{owners: map[uuid.UUID]uuid.UUID{}},
		now:      time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC),
	}

	rules := monitor.NewRuleSet(
		monitor.SleepingRule{Threshold: 0.30, MinDetected: 5},
		monitor.PhoneRule{Threshold: 0.20},
	)
	cooldown := monitor.NewCooldownTracker(fx.alerts, 5*time.Minute)

	fx.svc = NewMonitoringService(fx.sessions, fx.samples, fx.alerts, rules, cooldown, NopEventPublisher{}, 20)
	fx.svc.now = func() time.Time { return fx.now }
	return fx
}

func (fx *monitoringFixture) addSession(active bool) *models.ClassSession {
	s := &models.ClassSession{
		ID:                    uuid.New(),
		TeacherID:             uuid.New(),
		SubjectID:             uuid.New(),
		SectionID:             uuid.New(),
		StartTime:             fx.now.Add(-time.Hour),
		IsActive:              active,
		TotalStudentsEnrolled: 30,
	}
	fx.sessions.sessions[s.ID] = s
	fx.alerts.owners[s.ID] = s.TeacherID
	return s
}

// ─── Ingest ───

func TestIngestUnknownSession(t *testing.T) {
	fx := newMonitoringFixture()

	_, err := fx.svc.Ingest(context.Background(), uuid.New(), models.BehaviorCounts{Attentive: 5})

	var notFound *NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	if len(fx.samples.logs) != 0 {
		t.Errorf("no sample may be recorded for an unknown session")
	}
}

func TestIngestStoppedSession(t *testing.T) {
	fx := newMonitoringFixture()
	session := fx.addSession(false)

	_, err := fx.svc.Ingest(context.Background(), session.ID, models.BehaviorCounts{Sleeping: 10})

	var invalidState *InvalidStateError
	if !errors.As(err, &invalidState) {
		t.Fatalf("expected InvalidStateError, got %v", err)
	}
	if len(fx.samples.logs) != 0 {
		t.Errorf("no sample may be recorded for a stopped session")
	}
	if len(fx.alerts.alerts) != 0 {
		t.Errorf("no alert may fire for a stopped session")
	}
}

func TestIngestNegativeCounts(t *testing.T) {
	fx := newMonitoringFixture()
	session := fx.addSession(true)

	_, err := fx.svc.Ingest(context.Background(), session.ID, models.BehaviorCounts{Sleeping: -1})

	var validation *ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if _, ok := validation.Fields["sleeping"]; !ok {
		t.Errorf("expected sleeping in field errors: %v", validation.Fields)
	}
	if len(fx.samples.logs) != 0 {
		t.Errorf("malformed sample must not be recorded")
	}
}

func TestIngestSleepingScenario(t *testing.T) {
	fx := newMonitoringFixture()
	session := fx.addSession(true)

	// 2/5 sleeping (40%): fires.
	counts := models.BehaviorCounts{Sleeping: 2, Attentive: 3}
	fired, err := fx.svc.Ingest(context.Background(), session.ID, counts)
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if len(fired) != 1 || fired[0].Type != models.AlertSleeping {
		t.Fatalf("expected one sleeping alert, got %+v", fired)
	}

	// Same sample 1 minute later: suppressed by cooldown.
	fx.now = fx.now.Add(1 * time.Minute)
	fired, err = fx.svc.Ingest(context.Background(), session.ID, counts)
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if len(fired) != 0 {
		t.Fatalf("alert inside cooldown window must be suppressed, got %+v", fired)
	}

	// 6 minutes after the first alert: fires again.
	fx.now = fx.now.Add(5 * time.Minute)
	fired, err = fx.svc.Ingest(context.Background(), session.ID, counts)
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if len(fired) != 1 {
		t.Fatalf("alert after cooldown window must fire, got %+v", fired)
	}

	// Every sample was recorded regardless of alert outcome.
	if len(fx.samples.logs) != 3 {
		t.Errorf("expected 3 recorded samples, got %d", len(fx.samples.logs))
	}
	if fx.samples.logs[0].TotalDetected != 5 {
		t.Errorf("TotalDetected = %d, want 5", fx.samples.logs[0].TotalDetected)
	}
}

func TestIngestPhoneScenario(t *testing.T) {
	fx := newMonitoringFixture()
	session := fx.addSession(true)

	// 3/10 on phones (30%): fires; sleeping rule stays quiet.
	fired, err := fx.svc.Ingest(context.Background(), session.ID,
		models.BehaviorCounts{UsingPhone: 3, Attentive: 5, Writing: 2})
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if len(fired) != 1 || fired[0].Type != models.AlertPhone {
		t.Fatalf("expected one phone alert, got %+v", fired)
	}
}

func TestIngestAlertWriteFailureSurfaces(t *testing.T) {
	fx := newMonitoringFixture()
	session := fx.addSession(true)
	fx.alerts.insertErr = errors.New("connection refused")

	_, err := fx.svc.Ingest(context.Background(), session.ID,
		models.BehaviorCounts{Sleeping: 3, Attentive: 3})

	var storage *StorageError
	if !errors.As(err, &storage) {
		t.Fatalf("alert write failure must surface as StorageError, got %v", err)
	}
	// The sample itself was recorded before rules ran.
	if len(fx.samples.logs) != 1 {
		t.Errorf("expected the sample to be recorded, got %d logs", len(fx.samples.logs))
	}
}

// ─── Metrics ───

func TestMetricsEmptySession(t *testing.T) {
	fx := newMonitoringFixture()
	session := fx.addSession(true)

	m, err := fx.svc.Metrics(context.Background(), session.ID)
	if err != nil {
		t.Fatalf("Metrics: %v", err)
	}
	if m.TotalLogs != 0 {
		t.Errorf("TotalLogs = %d, want 0", m.TotalLogs)
	}
	if m.AverageEngagement != 0.0 {
		t.Errorf("AverageEngagement = %v, want 0.0", m.AverageEngagement)
	}
	if len(m.RecentLogs) != 0 || len(m.Alerts) != 0 {
		t.Errorf("expected empty logs and alerts, got %+v", m)
	}
}

func TestMetricsUnknownSession(t *testing.T) {
	fx := newMonitoringFixture()

	_, err := fx.svc.Metrics(context.Background(), uuid.New())
	var notFound *NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestMetricsFullyEngagedSession(t *testing.T) {
	fx := newMonitoringFixture()
	session := fx.addSession(true)

	samples := []models.BehaviorCounts{
		{Attentive: 2, Writing: 1},
		{Attentive: 2, RaisingHand: 1},
		{Attentive: 2, Writing: 1, RaisingHand: 1},
	}
	for _, c := range samples {
		if _, err := fx.svc.Ingest(context.Background(), session.ID, c); err != nil {
			t.Fatalf("Ingest: %v", err)
		}
	}

	m, err := fx.svc.Metrics(context.Background(), session.ID)
	if err != nil {
		t.Fatalf("Metrics: %v", err)
	}
	if m.TotalLogs != 3 {
		t.Errorf("TotalLogs = %d, want 3", m.TotalLogs)
	}
	if m.AverageEngagement != 100.0 {
		t.Errorf("AverageEngagement = %v, want 100.0", m.AverageEngagement)
	}
	if len(m.RecentLogs) != 3 {
		t.Errorf("expected 3 recent logs, got %d", len(m.RecentLogs))
	}
}

func TestMetricsIncludesUnreadAlerts(t *testing.T) {
	fx := newMonitoringFixture()
	session := fx.addSession(true)

	if _, err := fx.svc.Ingest(context.Background(), session.ID,
		models.BehaviorCounts{Sleeping: 3, Attentive: 2}); err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	m, err := fx.svc.Metrics(context.Background(), session.ID)
	if err != nil {
		t.Fatalf("Metrics: %v", err)
	}
	if len(m.Alerts) != 1 {
		t.Fatalf("expected 1 unread alert, got %d", len(m.Alerts))
	}

	// Read alerts drop out of the snapshot.
	if _, err := fx.svc.MarkAlertRead(context.Background(), m.Alerts[0].ID, session.TeacherID); err != nil {
		t.Fatalf("MarkAlertRead: %v", err)
	}
	m, err = fx.svc.Metrics(context.Background(), session.ID)
	if err != nil {
		t.Fatalf("Metrics: %v", err)
	}
	if len(m.Alerts) != 0 {
		t.Errorf("expected no unread alerts after marking read, got %d", len(m.Alerts))
	}
}

// ─── Alerts ───

func TestMarkAlertRead(t *testing.T) {
	fx := newMonitoringFixture()
	session := fx.addSession(true)

	fired, err := fx.svc.Ingest(context.Background(), session.ID,
		models.BehaviorCounts{UsingPhone: 5, Attentive: 5})
	if err != nil || len(fired) != 1 {
		t.Fatalf("expected one alert, got %v / %v", fired, err)
	}

	alert, err := fx.svc.MarkAlertRead(context.Background(), fired[0].ID, session.TeacherID)
	if err != nil {
		t.Fatalf("MarkAlertRead: %v", err)
	}
	if !alert.IsRead {
		t.Error("alert should be marked read")
	}

	// Idempotent: marking again succeeds with no change.
	again, err := fx.svc.MarkAlertRead(context.Background(), fired[0].ID, session.TeacherID)
	if err != nil {
		t.Fatalf("MarkAlertRead (second): %v", err)
	}
	if !again.IsRead {
		t.Error("alert should stay read")
	}
}

func TestMarkAlertReadWrongOwner(t *testing.T) {
	fx := newMonitoringFixture()
	session := fx.addSession(true)

	fired, err := fx.svc.Ingest(context.Background(), session.ID,
		models.BehaviorCounts{UsingPhone: 5, Attentive: 5})
	if err != nil || len(fired) != 1 {
		t.Fatalf("expected one alert, got %v / %v", fired, err)
	}

	_, err = fx.svc.MarkAlertRead(context.Background(), fired[0].ID, uuid.New())
	var notFound *NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError for foreign alert, got %v", err)
	}
}
