package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"classpulse-backend/internal/models"
)

// SessionStore is the session persistence capability the lifecycle manager
// depends on. *repository.SessionRepo satisfies it.
type SessionStore interface {
	Create(ctx context.Context, s *models.ClassSession) error
	Stop(ctx context.Context, id, teacherID uuid.UUID) (*models.ClassSession, error)
	GetActiveByTeacher(ctx context.Context, teacherID uuid.UUID) (*models.ClassSession, error)
	Delete(ctx context.Context, id, teacherID uuid.UUID) (bool, error)
}

// SessionService owns the Active/Stopped lifecycle.
type SessionService struct {
	sessions SessionStore
}

func NewSessionService(sessions SessionStore) *SessionService {
	return &SessionService{sessions: sessions}
}

// Start opens a new active session. A teacher may run several active sessions
// concurrently; nothing closes previous ones.
func (s *SessionService) Start(ctx context.Context, teacherID uuid.UUID, req models.SessionStartRequest) (*models.ClassSession, error) {
	fieldErrors := make(map[string]string)
	if req.SubjectID == uuid.Nil {
		fieldErrors["subject_id"] = "Subject is required"
	}
	if req.SectionID == uuid.Nil {
		fieldErrors["section_id"] = "Section is required"
	}
	if req.TotalStudentsEnrolled < 0 {
		fieldErrors["total_students_enrolled"] = "must be a non-negative integer"
	}
	if len(fieldErrors) > 0 {
		return nil, &ValidationError{Fields: fieldErrors}
	}

	session := &models.ClassSession{
		TeacherID:             teacherID,
		SubjectID:             req.SubjectID,
		SectionID:             req.SectionID,
		TotalStudentsEnrolled: req.TotalStudentsEnrolled,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, &StorageError{Err: err}
	}
	return session, nil
}

// Stop deactivates an owned session. Stopping an already stopped session
// succeeds and keeps the original end time.
func (s *SessionService) Stop(ctx context.Context, sessionID, teacherID uuid.UUID) (*models.ClassSession, error) {
	session, err := s.sessions.Stop(ctx, sessionID, teacherID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Message: "Session not found"}
		}
		return nil, &StorageError{Err: err}
	}
	return session, nil
}

// Active returns the teacher's most recently started active session.
func (s *SessionService) Active(ctx context.Context, teacherID uuid.UUID) (*models.ClassSession, error) {
	session, err := s.sessions.GetActiveByTeacher(ctx, teacherID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Message: "No active session"}
		}
		return nil, &StorageError{Err: err}
	}
	return session, nil
}

// Delete removes an owned session together with its logs and alerts.
func (s *SessionService) Delete(ctx context.Context, sessionID, teacherID uuid.UUID) error {
	deleted, err := s.sessions.Delete(ctx, sessionID, teacherID)
	if err != nil {
		return &StorageError{Err: err}
	}
	if !deleted {
		return &NotFoundError{Message: "Session not found"}
	}
	return nil
}
