package monitor

import (
	"testing"

	"classpulse-backend/internal/models"
)

func TestBehaviorCountsDetected(t *testing.T) {
	tests := []struct {
		name     string
		counts   models.BehaviorCounts
		expected int
	}{
		{"all zero", models.BehaviorCounts{}, 0},
		{"undetected excluded", models.BehaviorCounts{Attentive: 3, Undetected: 7}, 3},
		{"sums five behaviors", models.BehaviorCounts{RaisingHand: 1, Sleeping: 2, Writing: 3, UsingPhone: 4, Attentive: 5, Undetected: 6}, 15},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.counts.Detected(); got != tc.expected {
				t.Errorf("Detected() = %d, want %d", got, tc.expected)
			}
		})
	}
}

func TestSleepingRule(t *testing.T) {
	rule := SleepingRule{Threshold: 0.30, MinDetected: 5}

	tests := []struct {
		name    string
		counts  models.BehaviorCounts
		fired   bool
		message string
	}{
		{
			name:    "fires above threshold at minimum size",
			counts:  models.BehaviorCounts{Sleeping: 2, Attentive: 3},
			fired:   true,
			message: "High sleeping detected: 2 students (40%).",
		},
		{
			name:   "boundary ratio does not fire",
			counts: models.BehaviorCounts{Sleeping: 3, Attentive: 7},
			fired:  false,
		},
		{
			name:   "below minimum sample size",
			counts: models.BehaviorCounts{Sleeping: 2, Attentive: 2},
			fired:  false,
		},
		{
			name:   "no detections",
			counts: models.BehaviorCounts{Undetected: 10},
			fired:  false,
		},
		{
			name:   "nobody sleeping",
			counts: models.BehaviorCounts{Attentive: 10},
			fired:  false,
		},
		{
			name:    "percentage is truncated",
			counts:  models.BehaviorCounts{Sleeping: 2, Attentive: 3, Writing: 1}, // 2/6 = 33.3%
			fired:   true,
			message: "High sleeping detected: 2 students (33%).",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			msg, fired := rule.Evaluate(tc.counts)
			if fired != tc.fired {
				t.Fatalf("fired = %v, want %v", fired, tc.fired)
			}
			if tc.fired && msg != tc.message {
				t.Errorf("message = %q, want %q", msg, tc.message)
			}
		})
	}
}

func TestPhoneRule(t *testing.T) {
	rule := PhoneRule{Threshold: 0.20}

	tests := []struct {
		name    string
		counts  models.BehaviorCounts
		fired   bool
		message string
	}{
		{
			name:    "fires above threshold",
			counts:  models.BehaviorCounts{UsingPhone: 3, Attentive: 5, Writing: 2},
			fired:   true,
			message: "Phone usage spike: 3 students (30%).",
		},
		{
			name:   "boundary ratio does not fire",
			counts: models.BehaviorCounts{UsingPhone: 2, Attentive: 8},
			fired:  false,
		},
		{
			// No minimum sample guard, unlike the sleeping rule.
			name:    "fires on a tiny sample",
			counts:  models.BehaviorCounts{UsingPhone: 1, Attentive: 1},
			fired:   true,
			message: "Phone usage spike: 1 students (50%).",
		},
		{
			name:   "no detections",
			counts: models.BehaviorCounts{},
			fired:  false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			msg, fired := rule.Evaluate(tc.counts)
			if fired != tc.fired {
				t.Fatalf("fired = %v, want %v", fired, tc.fired)
			}
			if tc.fired && msg != tc.message {
				t.Errorf("message = %q, want %q", msg, tc.message)
			}
		})
	}
}

func TestRuleSetEvaluate(t *testing.T) {
	rs := NewRuleSet(
		SleepingRule{Threshold: 0.30, MinDetected: 5},
		PhoneRule{Threshold: 0.20},
	)

	// 3/9 sleeping and 3/9 on phones: both rules fire from one sample.
	counts := models.BehaviorCounts{Sleeping: 3, UsingPhone: 3, Attentive: 3}
	findings := rs.Evaluate(counts)
	if len(findings) != 2 {
		t.Fatalf("expected 2 findings, got %d", len(findings))
	}
	if findings[0].Type != models.AlertSleeping {
		t.Errorf("first finding = %s, want %s", findings[0].Type, models.AlertSleeping)
	}
	if findings[1].Type != models.AlertPhone {
		t.Errorf("second finding = %s, want %s", findings[1].Type, models.AlertPhone)
	}

	if got := rs.Evaluate(models.BehaviorCounts{Attentive: 30}); len(got) != 0 {
		t.Errorf("expected no findings for a calm classroom, got %d", len(got))
	}
}

func TestRuleSetRegister(t *testing.T) {
	rs := NewRuleSet()
	if got := rs.Evaluate(models.BehaviorCounts{Sleeping: 10}); len(got) != 0 {
		t.Fatalf("empty rule set produced findings")
	}

	rs.Register(SleepingRule{Threshold: 0.30, MinDetected: 5})
	if got := rs.Evaluate(models.BehaviorCounts{Sleeping: 10}); len(got) != 1 {
		t.Fatalf("expected 1 finding after Register, got %d", len(got))
	}
}

func TestValidateCounts(t *testing.T) {
	if fields := ValidateCounts(models.BehaviorCounts{}); fields != nil {
		t.Errorf("zero counts should validate, got %v", fields)
	}

	fields := ValidateCounts(models.BehaviorCounts{Sleeping: -1, Undetected: -2})
	if len(fields) != 2 {
		t.Fatalf("expected 2 invalid fields, got %v", fields)
	}
	if _, ok := fields["sleeping"]; !ok {
		t.Errorf("expected sleeping to be flagged: %v", fields)
	}
	if _, ok := fields["undetected"]; !ok {
		t.Errorf("expected undetected to be flagged: %v", fields)
	}
}
