package models

import "github.com/google/uuid"

const (
	EventSampleRecorded = "sample_recorded"
	EventAlertTriggered = "alert_triggered"
)

// MonitorEvent is the fan-out payload pushed onto the monitor event queue by
// the ingestion pipeline and delivered to dashboards over WebSocket.
type MonitorEvent struct {
	Type      string       `json:"type"`
	SessionID uuid.UUID    `json:"session_id"`
	TeacherID uuid.UUID    `json:"teacher_id"`
	Log       *BehaviorLog `json:"log,omitempty"`
	Alert     *Alert       `json:"alert,omitempty"`
}
