package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"classpulse-backend/internal/models"
)

type ClassroomRepo struct {
	pool *pgxpool.Pool
}

func NewClassroomRepo(pool *pgxpool.Pool) *ClassroomRepo {
	return &ClassroomRepo{pool: pool}
}

func (r *ClassroomRepo) CreateSubject(ctx context.Context, subject *models.Subject) error {
	subject.ID = uuid.New()
	return r.pool.QueryRow(ctx, `
		INSERT INTO subjects (id, name, code, teacher_id)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`,
		subject.ID, subject.Name, subject.Code, subject.TeacherID,
	).Scan(&subject.CreatedAt)
}

func (r *ClassroomRepo) ListSubjects(ctx context.Context, teacherID uuid.UUID) ([]models.Subject, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, code, teacher_id, created_at
		FROM subjects
		WHERE teacher_id = $1
		ORDER BY created_at`, teacherID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	subjects := []models.Subject{}
	for rows.Next() {
		var s models.Subject
		if err := rows.Scan(&s.ID, &s.Name, &s.Code, &s.TeacherID, &s.CreatedAt); err != nil {
			return nil, err
		}
		subjects = append(subjects, s)
	}
	return subjects, rows.Err()
}

func (r *ClassroomRepo) CreateSection(ctx context.Context, section *models.ClassSection) error {
	section.ID = uuid.New()
	return r.pool.QueryRow(ctx, `
		INSERT INTO class_sections (id, name, teacher_id)
		VALUES ($1, $2, $3)
		RETURNING created_at`,
		section.ID, section.Name, section.TeacherID,
	).Scan(&section.CreatedAt)
}

func (r *ClassroomRepo) ListSections(ctx context.Context, teacherID uuid.UUID) ([]models.ClassSection, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, teacher_id, created_at
		FROM class_sections
		WHERE teacher_id = $1
		ORDER BY created_at`, teacherID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sections := []models.ClassSection{}
	for rows.Next() {
		var s models.ClassSection
		if err := rows.Scan(&s.ID, &s.Name, &s.TeacherID, &s.CreatedAt); err != nil {
			return nil, err
		}
		sections = append(sections, s)
	}
	return sections, rows.Err()
}
