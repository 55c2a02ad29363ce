package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"classpulse-backend/internal/models"
)

type AlertRepo struct {
	pool *pgxpool.Pool
}

func NewAlertRepo(pool *pgxpool.Pool) *AlertRepo {
	return &AlertRepo{pool: pool}
}

// InsertIfNotRecent writes the alert unless one of the same (session, type)
// was triggered inside the cooldown window. Check and write happen in a single
// statement; the in-process keyed lock in monitor.CooldownTracker keeps two
// concurrent statements from both passing the NOT EXISTS check.
func (r *AlertRepo) InsertIfNotRecent(ctx context.Context, alert *models.Alert, window time.Duration) (bool, error) {
	cutoff := alert.TriggeredAt.Add(-window)

	tag, err := r.pool.Exec(ctx, `
		INSERT INTO alerts (id, session_id, alert_type, message, triggered_at)
		SELECT $1, $2, $3, $4, $5
		WHERE NOT EXISTS (
			SELECT 1 FROM alerts
			WHERE session_id = $2
			  AND alert_type = $3
			  AND triggered_at > $6
		)`,
		alert.ID, alert.SessionID, alert.Type, alert.Message, alert.TriggeredAt, cutoff)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *AlertRepo) UnreadBySession(ctx context.Context, sessionID uuid.UUID) ([]models.Alert, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, session_id, alert_type, message, triggered_at, is_read
		FROM alerts
		WHERE session_id = $1 AND is_read = FALSE
		ORDER BY triggered_at`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	alerts := []models.Alert{}
	for rows.Next() {
		var a models.Alert
		if err := rows.Scan(&a.ID, &a.SessionID, &a.Type, &a.Message, &a.TriggeredAt, &a.IsRead); err != nil {
			return nil, err
		}
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}

// MarkRead flips the read flag on an alert owned (via its session) by the
// given teacher. Idempotent: re-marking a read alert succeeds unchanged.
func (r *AlertRepo) MarkRead(ctx context.Context, alertID, teacherID uuid.UUID) (*models.Alert, error) {
	a := &models.Alert{}
	err := r.pool.QueryRow(ctx, `
		UPDATE alerts a
		SET is_read = TRUE
		FROM class_sessions s
		WHERE a.id = $1
		  AND s.id = a.session_id
		  AND s.teacher_id = $2
		RETURNING a.id, a.session_id, a.alert_type, a.message, a.triggered_at, a.is_read`,
		alertID, teacherID,
	).Scan(&a.ID, &a.SessionID, &a.Type, &a.Message, &a.TriggeredAt, &a.IsRead)
	if err != nil {
		return nil, err
	}
	return a, nil
}
