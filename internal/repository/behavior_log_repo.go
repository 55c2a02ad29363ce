package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"classpulse-backend/internal/models"
	"classpulse-backend/internal/monitor"
)

type BehaviorLogRepo struct {
	pool *pgxpool.Pool
}

func NewBehaviorLogRepo(pool *pgxpool.Pool) *BehaviorLogRepo {
	return &BehaviorLogRepo{pool: pool}
}

// Insert records one sample. The timestamp is server-assigned so the stored
// order matches arrival order as the database observed it.
func (r *BehaviorLogRepo) Insert(ctx context.Context, l *models.BehaviorLog) error {
	l.ID = uuid.New()
	return r.pool.QueryRow(ctx, `
		INSERT INTO behavior_logs
			(id, session_id, raising_hand, sleeping, writing, using_phone, attentive, undetected, total_detected)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING timestamp`,
		l.ID, l.SessionID,
		l.RaisingHand, l.Sleeping, l.Writing, l.UsingPhone, l.Attentive, l.Undetected,
		l.TotalDetected,
	).Scan(&l.Timestamp)
}

// Recent returns the last limit samples ordered oldest first, so dashboard
// charts render chronologically.
func (r *BehaviorLogRepo) Recent(ctx context.Context, sessionID uuid.UUID, limit int) ([]models.BehaviorLog, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, session_id, timestamp,
			raising_hand, sleeping, writing, using_phone, attentive, undetected, total_detected
		FROM (
			SELECT * FROM behavior_logs
			WHERE session_id = $1
			ORDER BY timestamp DESC
			LIMIT $2
		) recent
		ORDER BY timestamp ASC`, sessionID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	logs := []models.BehaviorLog{}
	for rows.Next() {
		var l models.BehaviorLog
		if err := rows.Scan(
			&l.ID, &l.SessionID, &l.Timestamp,
			&l.RaisingHand, &l.Sleeping, &l.Writing, &l.UsingPhone, &l.Attentive, &l.Undetected,
			&l.TotalDetected,
		); err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

func (r *BehaviorLogRepo) Count(ctx context.Context, sessionID uuid.UUID) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM behavior_logs WHERE session_id = $1`, sessionID,
	).Scan(&n)
	return n, err
}

func (r *BehaviorLogRepo) EngagementTotals(ctx context.Context, sessionID uuid.UUID) (monitor.EngagementTotals, error) {
	var t monitor.EngagementTotals
	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(attentive), 0),
			   COALESCE(SUM(writing), 0),
			   COALESCE(SUM(raising_hand), 0),
			   COALESCE(SUM(total_detected), 0)
		FROM behavior_logs
		WHERE session_id = $1`, sessionID,
	).Scan(&t.Attentive, &t.Writing, &t.RaisingHand, &t.Detected)
	return t, err
}
