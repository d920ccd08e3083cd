package plan

import (
	"context"
	"sync"

	"github.com/felixgeelhaar/statekit"

	"github.com/felixgeelhaar/santa/internal/domainerr"
)

const (
	gateEventStartCheck = "START_CHECK"
	gateEventComplete   = "COMPLETE"
	gateEventCancel     = "CANCEL"
)

// gateContext is the statekit context type for a single source's check
// gate; it carries nothing beyond the source's name, since the actual
// in-flight result is held outside the machine (statekit models the
// transition, not the payload).
type gateContext struct {
	sourceName string
}

// sourceGate guarantees at most one concurrent check_command invocation
// per source (§4.H, §5 "at-most-one-per-fingerprint"): the first caller to
// arrive runs fn; every caller that arrives while it is in flight is
// suspended and, on completion, receives the same result.
//
// inFlight is the authoritative single-flight flag, checked and set under
// mu in the same critical section: statekit's interpreter processes events
// on its own schedule (observed elsewhere in this codebase to need a
// deliberate delay before a sent event's target state is visible), so it
// is driven here for observability only and must never gate a correctness
// decision.
type sourceGate struct {
	mu       sync.Mutex
	interp   *statekit.Interpreter[gateContext]
	inFlight bool
	waiters  []chan struct{}
	result   []string
	err      error
}

func newSourceGate(name string) (*sourceGate, error) {
	machine, err := statekit.NewMachine[gateContext]("source-check-gate").
		WithInitial("idle").
		WithContext(gateContext{sourceName: name}).
		State("idle").
		On(gateEventStartCheck).Target("checking").Done().
		State("checking").
		On(gateEventComplete).Target("done").
		On(gateEventCancel).Target("cancelled").Done().
		State("done").
		On(gateEventStartCheck).Target("checking").Done().
		State("cancelled").
		On(gateEventStartCheck).Target("checking").Done().
		Build()
	if err != nil {
		return nil, err
	}

	interp := statekit.NewInterpreter(machine)
	interp.Start()

	return &sourceGate{interp: interp}, nil
}

// Do runs fn if no check is currently in flight for this gate, or waits
// for the in-flight call to finish and returns its result otherwise.
func (g *sourceGate) Do(ctx context.Context, fn func(context.Context) ([]string, error)) ([]string, error) {
	g.mu.Lock()
	if g.inFlight {
		wait := make(chan struct{})
		g.waiters = append(g.waiters, wait)
		g.mu.Unlock()

		select {
		case <-wait:
			g.mu.Lock()
			defer g.mu.Unlock()
			return g.result, g.err
		case <-ctx.Done():
			return nil, domainerr.New(domainerr.KindCancelled, "cancelled while waiting for in-flight check").WithUnderlying(ctx.Err())
		}
	}

	g.inFlight = true
	g.interp.Send(statekit.Event{Type: gateEventStartCheck})
	g.mu.Unlock()

	result, err := fn(ctx)

	g.mu.Lock()
	g.inFlight = false
	g.result, g.err = result, err
	if domainerr.Category(err) == domainerr.KindCancelled {
		g.interp.Send(statekit.Event{Type: gateEventCancel})
	} else {
		g.interp.Send(statekit.Event{Type: gateEventComplete})
	}
	waiters := g.waiters
	g.waiters = nil
	g.mu.Unlock()

	for _, w := range waiters {
		close(w)
	}
	return result, err
}

// Gates is a registry of per-source gates, created lazily and kept for the
// lifetime of the planner.
type Gates struct {
	mu       sync.Mutex
	bySource map[string]*sourceGate
}

// NewGates creates an empty gate registry.
func NewGates() *Gates {
	return &Gates{bySource: map[string]*sourceGate{}}
}

// For returns the gate for source, creating it on first use.
func (g *Gates) For(source string) (*sourceGate, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if gate, ok := g.bySource[source]; ok {
		return gate, nil
	}
	gate, err := newSourceGate(source)
	if err != nil {
		return nil, err
	}
	g.bySource[source] = gate
	return gate, nil
}
