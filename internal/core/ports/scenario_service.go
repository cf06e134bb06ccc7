package ports

import (
	"context"
	"time"
)

// ScenarioAttempt is the outcome of one admission attempt fired by the
// harness. Reason holds the typed rejection/conflict code for protocol
// refusals, or "error" for attempt-level failures (timeout, panic recovered
// by the pool) that are not protocol outcomes.
type ScenarioAttempt struct {
	Index   int    `json:"index"`
	Success bool   `json:"success"`
	Reason  string `json:"reason,omitempty"`
	OrderID string `json:"order_id,omitempty"`
	Message string `json:"message"`
}

// ScenarioSummary aggregates a scenario run. Attempts are reported in
// harness-assigned index order, not completion order.
type ScenarioSummary struct {
	Scenario  string            `json:"scenario"`
	Requested int               `json:"requested"`
	Succeeded int               `json:"succeeded"`
	Failed    int               `json:"failed"`
	Attempts  []ScenarioAttempt `json:"attempts"`
}

// ScenarioService drives canned concurrent-admission scenarios against the
// protocol and aggregates per-attempt outcomes.
type ScenarioService interface {
	// RunDuplicates fires n attempts with an identical business key; exactly
	// one should succeed.
	RunDuplicates(ctx context.Context, n int) (*ScenarioSummary, error)
	// RunDescending seeds the consumer close to the floor and fires attempts
	// with strictly decreasing prices under one shared title.
	RunDescending(ctx context.Context, n int) (*ScenarioSummary, error)
	// RunDeactivationRace fires n distinct-title attempts concurrently with
	// one consumer deactivation after the given delay. The summary counts
	// cover the order attempts only; the deactivation worker is appended as
	// an extra attempt with index n.
	RunDeactivationRace(ctx context.Context, n int, deactivateAfter time.Duration) (*ScenarioSummary, error)
}
