package reconcile

import (
	"fmt"
	"time"
)

// Outcome is how reconciliation of one endpoint, or of a whole run, ended.
type Outcome int

const (
	// Converged means every service reached the terminal status.
	Converged Outcome = iota
	// Faulted means the server answered a call with a SOAP fault.
	Faulted
	// Failed means the server could not be reached or answered garbage.
	Failed
	// NotConverged means the maximum wait elapsed with services still pending.
	NotConverged
	// Canceled means the run was interrupted.
	Canceled
)

func (o Outcome) String() string {
	switch o {
	case Converged:
		return "converged"
	case Faulted:
		return "faulted"
	case Failed:
		return "failed"
	case NotConverged:
		return "not-converged"
	case Canceled:
		return "canceled"
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

// EndpointResult records how one endpoint was reconciled.
type EndpointResult struct {
	Endpoint string
	Outcome  Outcome
	// Pending holds the services still unconfirmed when polling stopped.
	Pending Pending
	Polls   int
	Sleeps  int
	Elapsed time.Duration
	Err     error
}

// Summary is the result of a whole run. Results holds one entry per
// endpoint visited, in order. Endpoints after a failed one are never visited.
type Summary struct {
	Results []EndpointResult
	Elapsed time.Duration
}

// Outcome is Converged when every visited endpoint converged, otherwise
// the outcome of the endpoint that stopped the run.
func (s *Summary) Outcome() Outcome {
	if s == nil || len(s.Results) == 0 {
		return Converged
	}
	return s.Results[len(s.Results)-1].Outcome
}

// RunError stops a run. It carries the endpoint and the reason so callers
// can map it to an exit status.
type RunError struct {
	Endpoint string
	Outcome  Outcome
	Err      error
}

func (e *RunError) Error() string {
	if e.Endpoint == "" {
		return fmt.Sprintf("%s: %v", e.Outcome, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Endpoint, e.Outcome, e.Err)
}

func (e *RunError) Unwrap() error { return e.Err }
