package monitor

import (
	"math"

	"classpulse-backend/internal/models"
)

// EngagementTotals are running sums over a session's behavior logs. The
// repository computes them in SQL for stored sessions; Accumulate folds them
// from an in-memory slice.
type EngagementTotals struct {
	Attentive   int64
	Writing     int64
	RaisingHand int64
	Detected    int64
}

func Accumulate(logs []models.BehaviorLog) EngagementTotals {
	var t EngagementTotals
	for _, l := range logs {
		t.Attentive += int64(l.Attentive)
		t.Writing += int64(l.Writing)
		t.RaisingHand += int64(l.RaisingHand)
		t.Detected += int64(l.TotalDetected)
	}
	return t
}

// AverageEngagement is the percentage of detected students classified as
// attentive, writing, or raising a hand, rounded to two decimals. A session
// with no detections reports 0, not an error.
func AverageEngagement(t EngagementTotals) float64 {
	if t.Detected <= 0 {
		return 0
	}
	engaged := t.Attentive + t.Writing + t.RaisingHand
	pct := float64(engaged) / float64(t.Detected) * 100
	return math.Round(pct*100) / 100
}
