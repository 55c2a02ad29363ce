// Package monitor holds the session monitoring core: threshold rules over
// behavior samples, engagement aggregation, and the alert cooldown tracker.
// Everything here is storage-agnostic; durable writes go through the small
// store interfaces the services wire to the repositories.
package monitor

import (
	"fmt"

	"classpulse-backend/internal/models"
)

// Finding is a rule that decided to fire for one sample.
type Finding struct {
	Type    models.AlertType
	Message string
}

// Rule inspects a single sample's counts. Rules are stateless; dedup across
// samples is the CooldownTracker's job.
type Rule interface {
	Type() models.AlertType
	Evaluate(c models.BehaviorCounts) (message string, fired bool)
}

// SleepingRule fires when strictly more than Threshold of detected students
// are sleeping. MinDetected guards against false alarms on tiny samples.
type SleepingRule struct {
	Threshold   float64
	MinDetected int
}

func (r SleepingRule) Type() models.AlertType { return models.AlertSleeping }

func (r SleepingRule) Evaluate(c models.BehaviorCounts) (string, bool) {
	total := c.Detected()
	if total == 0 || c.Sleeping == 0 {
		return "", false
	}
	ratio := float64(c.Sleeping) / float64(total)
	if ratio > r.Threshold && total >= r.MinDetected {
		// Percentage is truncated, not rounded.
		return fmt.Sprintf("High sleeping detected: %d students (%d%%).", c.Sleeping, int(ratio*100)), true
	}
	return "", false
}

// PhoneRule fires when strictly more than Threshold of detected students are
// on their phones. Unlike SleepingRule it has no minimum sample guard.
type PhoneRule struct {
	Threshold float64
}

func (r PhoneRule) Type() models.AlertType { return models.AlertPhone }

func (r PhoneRule) Evaluate(c models.BehaviorCounts) (string, bool) {
	total := c.Detected()
	if total == 0 || c.UsingPhone == 0 {
		return "", false
	}
	ratio := float64(c.UsingPhone) / float64(total)
	if ratio > r.Threshold {
		return fmt.Sprintf("Phone usage spike: %d students (%d%%).", c.UsingPhone, int(ratio*100)), true
	}
	return "", false
}

// RuleSet is an ordered registry of rules. New alert kinds (engagement drop)
// plug in via Register without touching the pipeline.
type RuleSet struct {
	rules []Rule
}

func NewRuleSet(rules ...Rule) *RuleSet {
	return &RuleSet{rules: rules}
}

func (rs *RuleSet) Register(r Rule) {
	rs.rules = append(rs.rules, r)
}

// Evaluate runs every rule independently; one sample can produce multiple
// findings.
func (rs *RuleSet) Evaluate(c models.BehaviorCounts) []Finding {
	var findings []Finding
	for _, r := range rs.rules {
		if msg, fired := r.Evaluate(c); fired {
			findings = append(findings, Finding{Type: r.Type(), Message: msg})
		}
	}
	return findings
}

// ValidateCounts reports malformed sample fields. Counts must be non-negative;
// an empty map means the sample is acceptable.
func ValidateCounts(c models.BehaviorCounts) map[string]string {
	fields := make(map[string]string)
	check := func(name string, v int) {
		if v < 0 {
			fields[name] = "must be a non-negative integer"
		}
	}
	check("raising_hand", c.RaisingHand)
	check("sleeping", c.Sleeping)
	check("writing", c.Writing)
	check("using_phone", c.UsingPhone)
	check("attentive", c.Attentive)
	check("undetected", c.Undetected)
	if len(fields) == 0 {
		return nil
	}
	return fields
}
