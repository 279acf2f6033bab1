package monitoring

import (
	"fmt"
	"time"

	"github.com/sells-group/scaling-cli/internal/config"
)

// AlertType identifies the kind of alert.
type AlertType string

const (
	AlertCycleFailureRate AlertType = "cycle_failure_rate"
	AlertLowSuccessRate   AlertType = "low_success_rate"
	AlertIdleEngine       AlertType = "idle_engine"
)

// Alert represents a single threshold breach.
type Alert struct {
	Type      AlertType      `json:"type"`
	Severity  string         `json:"severity"`
	Message   string         `json:"message"`
	Details   map[string]any `json:"details,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// Checker evaluates a MetricsSnapshot against configured thresholds.
type Checker struct {
	cfg config.MonitorConfig
}

// NewChecker creates a Checker with the given monitor config.
func NewChecker(cfg config.MonitorConfig) *Checker {
	return &Checker{cfg: cfg}
}

// Evaluate checks the snapshot against thresholds and returns any alerts.
func (c *Checker) Evaluate(snap *MetricsSnapshot) []Alert {
	var alerts []Alert
	now := time.Now().UTC()

	// Cycle failure rate, once enough cycles finished to be meaningful.
	finished := snap.CyclesComplete + snap.CyclesFailed
	if finished >= 5 && c.cfg.MaxFailRate > 0 && snap.CycleFailRate > c.cfg.MaxFailRate {
		alerts = append(alerts, Alert{
			Type:     AlertCycleFailureRate,
			Severity: "high",
			Message: fmt.Sprintf(
				"cycle failure rate %.1f%% exceeds threshold %.1f%% (%d failed / %d finished in last %dh)",
				snap.CycleFailRate*100, c.cfg.MaxFailRate*100,
				snap.CyclesFailed, finished, snap.LookbackHours,
			),
			Details: map[string]any{
				"fail_rate": snap.CycleFailRate,
				"threshold": c.cfg.MaxFailRate,
				"failed":    snap.CyclesFailed,
				"finished":  finished,
			},
			Timestamp: now,
		})
	}

	// Action success rate across reporting cycles.
	if snap.ActionsExecuted+snap.ActionsFailed > 0 &&
		c.cfg.MinSuccessRate > 0 && snap.AvgSuccessRate < c.cfg.MinSuccessRate {
		alerts = append(alerts, Alert{
			Type:     AlertLowSuccessRate,
			Severity: "medium",
			Message: fmt.Sprintf(
				"average action success rate %.1f%% is below threshold %.1f%% in last %dh",
				snap.AvgSuccessRate, c.cfg.MinSuccessRate, snap.LookbackHours,
			),
			Details: map[string]any{
				"avg_success_rate": snap.AvgSuccessRate,
				"threshold":        c.cfg.MinSuccessRate,
				"executed":         snap.ActionsExecuted,
				"failed":           snap.ActionsFailed,
			},
			Timestamp: now,
		})
	}

	// Idle engine: no cycles at all in the idle window.
	if c.cfg.MaxIdleHours > 0 && !snap.LastCycleAt.IsZero() {
		idle := now.Sub(snap.LastCycleAt)
		if idle > time.Duration(c.cfg.MaxIdleHours)*time.Hour {
			alerts = append(alerts, Alert{
				Type:     AlertIdleEngine,
				Severity: "medium",
				Message: fmt.Sprintf(
					"no scaling cycle has run for %.1fh (threshold %dh)",
					idle.Hours(), c.cfg.MaxIdleHours,
				),
				Details: map[string]any{
					"last_cycle_at":  snap.LastCycleAt,
					"idle_hours":     idle.Hours(),
					"max_idle_hours": c.cfg.MaxIdleHours,
				},
				Timestamp: now,
			})
		}
	}

	return alerts
}
