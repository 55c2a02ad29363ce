package services

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"classpulse-backend/internal/models"
	"classpulse-backend/internal/monitor"
)

// Store capabilities the monitoring pipeline depends on; satisfied by the
// repositories.

type sessionReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.ClassSession, error)
}

type SampleStore interface {
	Insert(ctx context.Context, l *models.BehaviorLog) error
	Recent(ctx context.Context, sessionID uuid.UUID, limit int) ([]models.BehaviorLog, error)
	Count(ctx context.Context, sessionID uuid.UUID) (int, error)
	EngagementTotals(ctx context.Context, sessionID uuid.UUID) (monitor.EngagementTotals, error)
}

type AlertReader interface {
	UnreadBySession(ctx context.Context, sessionID uuid.UUID) ([]models.Alert, error)
	MarkRead(ctx context.Context, alertID, teacherID uuid.UUID) (*models.Alert, error)
}

// MonitoringService is the ingestion pipeline and metrics read path: it
// validates samples against session state, records them, evaluates alert
// rules, and emits alerts through the cooldown tracker.
type MonitoringService struct {
	sessions     sessionReader
	samples      SampleStore
	alerts       AlertReader
	rules        *monitor.RuleSet
	cooldown     *monitor.CooldownTracker
	events       EventPublisher
	recentWindow int
	now          func() time.Time
}

func NewMonitoringService(
	sessions sessionReader,
	samples SampleStore,
	alerts AlertReader,
	rules *monitor.RuleSet,
	cooldown *monitor.CooldownTracker,
	events EventPublisher,
	recentWindow int,
) *MonitoringService {
	return &MonitoringService{
		sessions:     sessions,
		samples:      samples,
		alerts:       alerts,
		rules:        rules,
		cooldown:     cooldown,
		events:       events,
		recentWindow: recentWindow,
		now:          time.Now,
	}
}

// Ingest records one detector sample for an active session and fires any
// alerts its rules produce, deduplicated by the cooldown tracker. The sample
// row is always written before rules run; an alert-write failure surfaces as
// a StorageError and is never reported as "not triggered".
func (s *MonitoringService) Ingest(ctx context.Context, sessionID uuid.UUID, counts models.BehaviorCounts) ([]models.Alert, error) {
	if fields := monitor.ValidateCounts(counts); fields != nil {
		return nil, &ValidationError{Fields: fields}
	}

	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Message: "Session not found"}
		}
		return nil, &StorageError{Err: err}
	}
	if !session.IsActive {
		return nil, &InvalidStateError{Message: "Session is not active"}
	}

	sample := &models.BehaviorLog{
		SessionID:      sessionID,
		BehaviorCounts: counts,
		TotalDetected:  counts.Detected(),
	}
	if err := s.samples.Insert(ctx, sample); err != nil {
		return nil, &StorageError{Err: err}
	}

	s.events.Publish(ctx, models.MonitorEvent{
		Type:      models.EventSampleRecorded,
		SessionID: sessionID,
		TeacherID: session.TeacherID,
		Log:       sample,
	})

	var fired []models.Alert
	for _, finding := range s.rules.Evaluate(counts) {
		alert, err := s.cooldown.TryFire(ctx, sessionID, finding.Type, finding.Message, s.now())
		if err != nil {
			return fired, &StorageError{Err: err}
		}
		if alert == nil {
			continue // suppressed by cooldown
		}

		log.Printf("ALERT TRIGGERED (%s): %s", sessionID, alert.Message)
		fired = append(fired, *alert)

		s.events.Publish(ctx, models.MonitorEvent{
			Type:      models.EventAlertTriggered,
			SessionID: sessionID,
			TeacherID: session.TeacherID,
			Alert:     alert,
		})
	}

	return fired, nil
}

// Metrics assembles the dashboard snapshot for a session.
func (s *MonitoringService) Metrics(ctx context.Context, sessionID uuid.UUID) (*models.SessionMetrics, error) {
	if _, err := s.sessions.GetByID(ctx, sessionID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Message: "Session not found"}
		}
		return nil, &StorageError{Err: err}
	}

	totals, err := s.samples.EngagementTotals(ctx, sessionID)
	if err != nil {
		return nil, &StorageError{Err: err}
	}

	count, err := s.samples.Count(ctx, sessionID)
	if err != nil {
		return nil, &StorageError{Err: err}
	}

	recent, err := s.samples.Recent(ctx, sessionID, s.recentWindow)
	if err != nil {
		return nil, &StorageError{Err: err}
	}

	unread, err := s.alerts.UnreadBySession(ctx, sessionID)
	if err != nil {
		return nil, &StorageError{Err: err}
	}

	return &models.SessionMetrics{
		SessionID:         sessionID,
		TotalLogs:         count,
		AverageEngagement: monitor.AverageEngagement(totals),
		RecentLogs:        recent,
		Alerts:            unread,
	}, nil
}

// MarkAlertRead flips the read flag on an alert the caller owns through its
// session. Idempotent.
func (s *MonitoringService) MarkAlertRead(ctx context.Context, alertID, teacherID uuid.UUID) (*models.Alert, error) {
	alert, err := s.alerts.MarkRead(ctx, alertID, teacherID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Message: "Alert not found"}
		}
		return nil, &StorageError{Err: err}
	}
	return alert, nil
}
