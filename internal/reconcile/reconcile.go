// Package reconcile issues a control command to each server in turn and
// polls it until every service reports the terminal status.
//
// Servers are handled strictly one after another. Any failure on one
// server stops the whole run; servers already handled are left as they are.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"time"

	"cucm-service-cli/internal/action"
	"cucm-service-cli/internal/soap"
)

// DefaultPollInterval is the pause between two status queries.
const DefaultPollInterval = 5 * time.Second

// Controller is the remote control capability of one server.
type Controller interface {
	DoControlServices(ctx context.Context, ctl action.Action, services []string) ([]soap.ServiceInfo, error)
	GetServiceStatus(ctx context.Context, services []string) ([]soap.ServiceInfo, error)
}

// DialFunc returns a fresh Controller for an endpoint. If the Controller
// implements io.Closer it is closed when the endpoint is done.
type DialFunc func(endpoint string) (Controller, error)

// Reporter receives everything the operator should see.
type Reporter interface {
	// Endpoint is called before the command is issued to an endpoint.
	Endpoint(endpoint string)
	// StatusHeader precedes the statuses returned by the command call.
	StatusHeader()
	// Observation is called for every (service, status) pair received.
	Observation(info soap.ServiceInfo)
	// Failure is called when a call to the endpoint fails.
	Failure(endpoint string, err error)
}

// Reconciler holds the settings of a run. Action, Services and Dial are
// required.
type Reconciler struct {
	Action   action.Action
	Services []string

	// TerminalStatus is the status that removes a service from the pending
	// set. Empty means Action.TerminalStatus().
	TerminalStatus string

	// PollInterval defaults to DefaultPollInterval.
	PollInterval time.Duration

	// MaxWait bounds the polling phase of each endpoint. Zero polls forever.
	MaxWait time.Duration

	Dial     DialFunc
	Reporter Reporter
	Logger   *slog.Logger

	// Sleep and Now are replaced in tests.
	Sleep func(ctx context.Context, d time.Duration) error
	Now   func() time.Time
}

func (r *Reconciler) terminal() string {
	if r.TerminalStatus != "" {
		return r.TerminalStatus
	}
	return r.Action.TerminalStatus()
}

func (r *Reconciler) interval() time.Duration {
	if r.PollInterval > 0 {
		return r.PollInterval
	}
	return DefaultPollInterval
}

func (r *Reconciler) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

func (r *Reconciler) sleep(ctx context.Context, d time.Duration) error {
	if r.Sleep != nil {
		return r.Sleep(ctx, d)
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (r *Reconciler) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func (r *Reconciler) report() Reporter {
	if r.Reporter != nil {
		return r.Reporter
	}
	return nopReporter{}
}

func (r *Reconciler) validate() error {
	if r.Action == "" {
		return errors.New("no action set")
	}
	if len(r.Services) == 0 {
		return errors.New("no services to reconcile")
	}
	if r.Dial == nil {
		return errors.New("no dial function set")
	}
	return nil
}

// Run reconciles every endpoint in order and stops at the first one that
// does not converge. The returned error is a *RunError in that case.
func (r *Reconciler) Run(ctx context.Context, endpoints iter.Seq2[string, error]) (*Summary, error) {
	if err := r.validate(); err != nil {
		return nil, err
	}
	start := r.now()
	summary := &Summary{}
	defer func() { summary.Elapsed = r.now().Sub(start) }()

	for endpoint, err := range endpoints {
		if err != nil {
			return summary, fmt.Errorf("loading servers: %w", err)
		}
		res := r.Endpoint(ctx, endpoint)
		summary.Results = append(summary.Results, res)
		if res.Outcome != Converged {
			return summary, &RunError{Endpoint: endpoint, Outcome: res.Outcome, Err: res.Err}
		}
	}
	return summary, nil
}

// Endpoint issues the command to one endpoint and polls it until the
// pending set is empty, a call fails, MaxWait elapses or ctx is done.
func (r *Reconciler) Endpoint(ctx context.Context, endpoint string) EndpointResult {
	log := r.logger().With(slog.String("endpoint", endpoint))
	rep := r.report()
	start := r.now()
	res := EndpointResult{Endpoint: endpoint, Pending: NewPending(r.Services)}
	finish := func(o Outcome, err error) EndpointResult {
		res.Outcome = o
		res.Err = err
		res.Elapsed = r.now().Sub(start)
		if err != nil {
			rep.Failure(endpoint, err)
		}
		log.Debug("endpoint done", slog.String("outcome", o.String()),
			slog.Int("polls", res.Polls), slog.Duration("elapsed", res.Elapsed))
		return res
	}

	rep.Endpoint(endpoint)

	ctl, err := r.Dial(endpoint)
	if err != nil {
		return finish(Failed, fmt.Errorf("connecting to %s: %w", endpoint, err))
	}
	if c, ok := ctl.(io.Closer); ok {
		defer c.Close()
	}

	// The command response is informational only.
	infos, err := ctl.DoControlServices(ctx, r.Action, res.Pending)
	if err != nil {
		return finish(classify(ctx, err), err)
	}
	log.Debug("control command accepted", slog.String("action", r.Action.String()))
	rep.StatusHeader()
	for _, info := range infos {
		rep.Observation(info)
	}

	terminal := r.terminal()
	pollStart := r.now()
	for {
		infos, err := ctl.GetServiceStatus(ctx, res.Pending)
		if err != nil {
			return finish(classify(ctx, err), err)
		}
		res.Polls++
		for _, info := range infos {
			rep.Observation(info)
			if info.Status == terminal {
				res.Pending = res.Pending.Remove(info.Name)
			}
		}
		log.Debug("polled", slog.Int("poll", res.Polls), slog.Int("pending", len(res.Pending)))
		if res.Pending.Empty() {
			return finish(Converged, nil)
		}

		if r.MaxWait > 0 && r.now().Sub(pollStart) >= r.MaxWait {
			return finish(NotConverged, fmt.Errorf("%d service(s) not %s after %s: %v",
				len(res.Pending), terminal, r.MaxWait, []string(res.Pending)))
		}
		if err := r.sleep(ctx, r.interval()); err != nil {
			return finish(Canceled, err)
		}
		res.Sleeps++
	}
}

func classify(ctx context.Context, err error) Outcome {
	switch {
	case soap.IsFault(err):
		return Faulted
	case ctx.Err() != nil:
		return Canceled
	}
	return Failed
}

type nopReporter struct{}

func (nopReporter) Endpoint(string)              {}
func (nopReporter) StatusHeader()                {}
func (nopReporter) Observation(soap.ServiceInfo) {}
func (nopReporter) Failure(string, error)        {}
