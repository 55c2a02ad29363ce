package models

import (
	"time"

	"github.com/google/uuid"
)

type Subject struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Code      *string   `json:"code,omitempty"`
	TeacherID uuid.UUID `json:"teacher_id"`
	CreatedAt time.Time `json:"created_at"`
}

// ClassSection is a student group a subject is taught to, e.g. "Grade 10 - A".
type ClassSection struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	TeacherID uuid.UUID `json:"teacher_id"`
	CreatedAt time.Time `json:"created_at"`
}

type SubjectCreateRequest struct {
	Name string  `json:"name"`
	Code *string `json:"code,omitempty"`
}

type SectionCreateRequest struct {
	Name string `json:"name"`
}
