package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"classpulse-backend/internal/models"
)

type SessionRepo struct {
	pool *pgxpool.Pool
}

func NewSessionRepo(pool *pgxpool.Pool) *SessionRepo {
	return &SessionRepo{pool: pool}
}

const sessionColumns = `id, teacher_id, subject_id, section_id, start_time, end_time, is_active, total_students_enrolled`

func (r *SessionRepo) Create(ctx context.Context, s *models.ClassSession) error {
	s.ID = uuid.New()
	s.IsActive = true

	return r.pool.QueryRow(ctx, `
		INSERT INTO class_sessions (id, teacher_id, subject_id, section_id, total_students_enrolled)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING start_time`,
		s.ID, s.TeacherID, s.SubjectID, s.SectionID, s.TotalStudentsEnrolled,
	).Scan(&s.StartTime)
}

func (r *SessionRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.ClassSession, error) {
	s := &models.ClassSession{}
	err := r.pool.QueryRow(ctx,
		`SELECT `+sessionColumns+` FROM class_sessions WHERE id = $1`, id,
	).Scan(
		&s.ID, &s.TeacherID, &s.SubjectID, &s.SectionID,
		&s.StartTime, &s.EndTime, &s.IsActive, &s.TotalStudentsEnrolled,
	)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Stop deactivates an owned session. Idempotent: re-stopping keeps the
// original end time.
func (r *SessionRepo) Stop(ctx context.Context, id, teacherID uuid.UUID) (*models.ClassSession, error) {
	s := &models.ClassSession{}
	err := r.pool.QueryRow(ctx, `
		UPDATE class_sessions
		SET is_active = FALSE,
			end_time = CASE WHEN end_time IS NULL THEN NOW() ELSE end_time END
		WHERE id = $1
		  AND teacher_id = $2
		RETURNING `+sessionColumns,
		id, teacherID,
	).Scan(
		&s.ID, &s.TeacherID, &s.SubjectID, &s.SectionID,
		&s.StartTime, &s.EndTime, &s.IsActive, &s.TotalStudentsEnrolled,
	)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// GetActiveByTeacher returns the most recently started active session.
func (r *SessionRepo) GetActiveByTeacher(ctx context.Context, teacherID uuid.UUID) (*models.ClassSession, error) {
	s := &models.ClassSession{}
	err := r.pool.QueryRow(ctx, `
		SELECT `+sessionColumns+`
		FROM class_sessions
		WHERE teacher_id = $1 AND is_active = TRUE
		ORDER BY start_time DESC
		LIMIT 1`, teacherID,
	).Scan(
		&s.ID, &s.TeacherID, &s.SubjectID, &s.SectionID,
		&s.StartTime, &s.EndTime, &s.IsActive, &s.TotalStudentsEnrolled,
	)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Delete removes an owned session; behavior logs and alerts cascade with it.
func (r *SessionRepo) Delete(ctx context.Context, id, teacherID uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM class_sessions WHERE id = $1 AND teacher_id = $2`, id, teacherID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}
