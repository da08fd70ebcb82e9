package workflow

// Outcome classifies how a workflow entry point concluded
type Outcome string

const (
	// OutcomeApplied means the workflow ran its side effects
	OutcomeApplied Outcome = "applied"

	// OutcomeSkipped means a precondition made the workflow a no-op
	// (missing entity, nothing to do)
	OutcomeSkipped Outcome = "skipped"

	// OutcomeRejected means the requested transition is not allowed
	OutcomeRejected Outcome = "rejected"

	// OutcomeFailed means a side effect errored mid-flight
	OutcomeFailed Outcome = "failed"
)

// Result is the typed outcome of a workflow entry point. Callers can react
// to failures without log-scraping; Err is only set for OutcomeFailed.
type Result struct {
	Outcome Outcome
	Reason  string
	Err     error
}

// OK reports whether the invocation is not an error condition
func (r *Result) OK() bool {
	return r.Outcome == OutcomeApplied || r.Outcome == OutcomeSkipped
}

func applied(reason string) *Result {
	return &Result{Outcome: OutcomeApplied, Reason: reason}
}

func skipped(reason string) *Result {
	return &Result{Outcome: OutcomeSkipped, Reason: reason}
}

func rejected(reason string) *Result {
	return &Result{Outcome: OutcomeRejected, Reason: reason}
}

func failed(reason string, err error) *Result {
	return &Result{Outcome: OutcomeFailed, Reason: reason, Err: err}
}
