package models

import (
	"time"

	"github.com/google/uuid"
)

type AlertType string

const (
	AlertSleeping AlertType = "SLEEPING"
	AlertPhone    AlertType = "PHONE"
	// AlertEngagementDrop is reserved for a future rule; no current rule emits it.
	AlertEngagementDrop AlertType = "ENGAGEMENT_DROP"
)

// ClassSession is one bounded teaching period. Logs and alerts belong to it
// exclusively and are removed with it.
type ClassSession struct {
	ID        uuid.UUID `json:"id"`
	TeacherID uuid.UUID `json:"teacher_id"`
	SubjectID uuid.UUID `json:"subject_id"`
	SectionID uuid.UUID `json:"section_id"`

	StartTime time.Time  `json:"start_time"`
	EndTime   *time.Time `json:"end_time,omitempty"`
	IsActive  bool       `json:"is_active"`

	// Enrollment snapshot taken when the session starts.
	TotalStudentsEnrolled int `json:"total_students_enrolled"`
}

// BehaviorCounts is one detection interval's aggregate counts as reported by
// the detector. Undetected students are tracked but are not a behavior.
type BehaviorCounts struct {
	RaisingHand int `json:"raising_hand"`
	Sleeping    int `json:"sleeping"`
	Writing     int `json:"writing"`
	UsingPhone  int `json:"using_phone"`
	Attentive   int `json:"attentive"`
	Undetected  int `json:"undetected"`
}

// Detected returns the number of students classified into one of the five
// behaviors. Undetected is excluded.
func (c BehaviorCounts) Detected() int {
	return c.RaisingHand + c.Sleeping + c.Writing + c.UsingPhone + c.Attentive
}

type BehaviorLog struct {
	ID        uuid.UUID `json:"id"`
	SessionID uuid.UUID `json:"session_id"`
	Timestamp time.Time `json:"timestamp"`
	BehaviorCounts
	TotalDetected int `json:"total_detected"`
}

type Alert struct {
	ID          uuid.UUID `json:"id"`
	SessionID   uuid.UUID `json:"session_id"`
	Type        AlertType `json:"alert_type"`
	Message     string    `json:"message"`
	TriggeredAt time.Time `json:"triggered_at"`
	IsRead      bool      `json:"is_read"`
}

type SessionStartRequest struct {
	SubjectID             uuid.UUID `json:"subject_id"`
	SectionID             uuid.UUID `json:"section_id"`
	TotalStudentsEnrolled int       `json:"total_students_enrolled"`
}

// SessionMetrics is the on-demand dashboard snapshot. RecentLogs is a bounded
// window ordered oldest first so charts render chronologically.
type SessionMetrics struct {
	SessionID         uuid.UUID     `json:"session_id"`
	TotalLogs         int           `json:"total_logs"`
	AverageEngagement float64       `json:"average_engagement"`
	RecentLogs        []BehaviorLog `json:"recent_logs"`
	Alerts            []Alert       `json:"alerts"`
}
