package alerts

import (
	"context"
	"time"

	"lightwatch/internal/types"
)

// InvocationInput is the payload accepted by the scheduled handler and the
// HTTP trigger. Both fields are optional.
type InvocationInput struct {
	// ReferenceTime pins "now" for the cycle, for replays and backfills.
	ReferenceTime *time.Time `json:"reference_time,omitempty"`
	// Verbose includes per-rule outcomes in the result.
	Verbose bool `json:"verbose,omitempty"`
}

// InvocationResult is the caller-facing view of a cycle.
type InvocationResult struct {
	CycleID   string                    `json:"cycle_id"`
	Checked   int                       `json:"checked"`
	Triggered int                       `json:"triggered"`
	Errors    int                       `json:"errors"`
	Outcomes  []types.EvaluationOutcome `json:"outcomes,omitempty"`
}

// ResultOf projects a summary into an InvocationResult. A nil summary yields
// a zero result.
func ResultOf(summary *types.CycleSummary, verbose bool) *InvocationResult {
	if summary == nil {
		return &InvocationResult{}
	}
	res := &InvocationResult{
		CycleID:   summary.CycleID,
		Checked:   summary.Checked,
		Triggered: summary.Triggered,
		Errors:    summary.Errors,
	}
	if verbose {
		res.Outcomes = summary.Outcomes
	}
	return res
}

// Invoke runs one cycle for an invocation payload. When the cycle is
// interrupted the partial result is returned together with the error.
func (o *Orchestrator) Invoke(ctx context.Context, in InvocationInput) (*InvocationResult, error) {
	now := o.clock.Now()
	if in.ReferenceTime != nil && !in.ReferenceTime.IsZero() {
		now = in.ReferenceTime.UTC()
	}
	summary, err := o.RunAt(ctx, now)
	return ResultOf(summary, in.Verbose), err
}
