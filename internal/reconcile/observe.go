package reconcile

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"log/slog"
)

// Observe queries the status of Services on every endpoint without issuing
// a command. Action is not needed. Like Run, it stops at the first endpoint
// whose query fails.
func (r *Reconciler) Observe(ctx context.Context, endpoints iter.Seq2[string, error]) (*Summary, error) {
	if len(r.Services) == 0 {
		return nil, errors.New("no services to query")
	}
	if r.Dial == nil {
		return nil, errors.New("no dial function set")
	}
	start := r.now()
	summary := &Summary{}
	defer func() { summary.Elapsed = r.now().Sub(start) }()

	for endpoint, err := range endpoints {
		if err != nil {
			return summary, fmt.Errorf("loading servers: %w", err)
		}
		res := r.observe(ctx, endpoint)
		summary.Results = append(summary.Results, res)
		if res.Outcome != Converged {
			return summary, &RunError{Endpoint: endpoint, Outcome: res.Outcome, Err: res.Err}
		}
	}
	return summary, nil
}

func (r *Reconciler) observe(ctx context.Context, endpoint string) EndpointResult {
	rep := r.report()
	start := r.now()
	res := EndpointResult{Endpoint: endpoint, Pending: NewPending(r.Services)}
	fail := func(o Outcome, err error) EndpointResult {
		res.Outcome, res.Err = o, err
		res.Elapsed = r.now().Sub(start)
		rep.Failure(endpoint, err)
		return res
	}

	rep.Endpoint(endpoint)
	ctl, err := r.Dial(endpoint)
	if err != nil {
		return fail(Failed, fmt.Errorf("connecting to %s: %w", endpoint, err))
	}
	if c, ok := ctl.(io.Closer); ok {
		defer c.Close()
	}

	infos, err := ctl.GetServiceStatus(ctx, res.Pending)
	if err != nil {
		return fail(classify(ctx, err), err)
	}
	res.Polls = 1
	rep.StatusHeader()
	for _, info := range infos {
		rep.Observation(info)
	}
	res.Elapsed = r.now().Sub(start)
	r.logger().Debug("status observed", slog.String("endpoint", endpoint), slog.Int("services", len(infos)))
	return res
}
