// Package navigate escalates a page-navigation request through increasingly
// forceful methods. The hosting router cannot be trusted to always complete
// a transition, so each request walks a three-tier chain: in-app history
// push, direct URL assignment, then a hard location set. A path check
// short-circuits later tiers once any tier lands, and a superseding request
// cancels the stale retry timers of the previous one.
package navigate

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Tier identifies one escalation level.
type Tier int

const (
	TierHistory Tier = iota + 1
	TierAssign
	TierLocation
)

func (t Tier) String() string {
	switch t {
	case TierHistory:
		return "history"
	case TierAssign:
		return "assign"
	case TierLocation:
		return "location"
	default:
		return "unknown"
	}
}

// Phase is the lifecycle state of one navigation request.
type Phase string

const (
	PhasePending   Phase = "pending"
	PhaseAttempted Phase = "attempted"
	PhaseSucceeded Phase = "succeeded"
	PhaseExhausted Phase = "exhausted"
	PhaseCancelled Phase = "cancelled"
)

// Transport performs one navigation attempt at the given tier. Errors are
// advisory; the chain escalates regardless.
type Transport interface {
	Attempt(ctx context.Context, tier Tier, destination string) error
}

// Prober reports the page path currently in effect, so the chain can detect
// arrival and stop escalating.
type Prober interface {
	CurrentPath() string
}

// TransportFunc adapts a function to Transport.
type TransportFunc func(ctx context.Context, tier Tier, destination string) error

func (f TransportFunc) Attempt(ctx context.Context, tier Tier, destination string) error {
	return f(ctx, tier, destination)
}

// ProberFunc adapts a function to Prober.
type ProberFunc func() string

func (f ProberFunc) CurrentPath() string { return f() }

// Ticket tracks one fire-and-forget navigation request.
type Ticket struct {
	destination string
	cancel      context.CancelFunc
	done        chan struct{}

	mu       sync.Mutex
	phase    Phase
	attempts int
}

// Phase returns the request's current lifecycle phase.
func (t *Ticket) Phase() Phase {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.phase
}

// Attempts returns how many tiers have fired so far.
func (t *Ticket) Attempts() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.attempts
}

// Done is closed when the request reaches a terminal phase.
func (t *Ticket) Done() <-chan struct{} { return t.done }

// Destination returns the requested path.
func (t *Ticket) Destination() string { return t.destination }

func (t *Ticket) setPhase(phase Phase) {
	t.mu.Lock()
	t.phase = phase
	t.mu.Unlock()
}

func (t *Ticket) recordAttempt() {
	t.mu.Lock()
	t.phase = PhaseAttempted
	t.attempts++
	t.mu.Unlock()
}

// Chain walks navigation requests through the tiers.
type Chain struct {
	transport   Transport
	prober      Prober
	logger      *slog.Logger
	firstDelay  time.Duration
	secondDelay time.Duration

	mu     sync.Mutex
	active *Ticket
}

// NewChain builds a chain. Delays at or below zero fall back to defaults
// (600ms before tier two, 1500ms before tier three).
func NewChain(transport Transport, prober Prober, logger *slog.Logger, firstDelay, secondDelay time.Duration) *Chain {
	if transport == nil {
		transport = TransportFunc(func(context.Context, Tier, string) error { return nil })
	}
	if prober == nil {
		prober = ProberFunc(func() string { return "" })
	}
	if firstDelay <= 0 {
		firstDelay = 600 * time.Millisecond
	}
	if secondDelay <= 0 {
		secondDelay = 1500 * time.Millisecond
	}
	return &Chain{
		transport:   transport,
		prober:      prober,
		logger:      logger,
		firstDelay:  firstDelay,
		secondDelay: secondDelay,
	}
}

// Go starts a navigation request and returns its ticket without waiting.
// Any previous in-flight request is cancelled first: a superseding command
// must not leave stale retry timers running.
func (c *Chain) Go(ctx context.Context, destination string) *Ticket {
	runCtx, cancel := context.WithCancel(ctx)
	ticket := &Ticket{
		destination: destination,
		cancel:      cancel,
		done:        make(chan struct{}),
		phase:       PhasePending,
	}

	c.mu.Lock()
	if c.active != nil {
		c.active.cancel()
	}
	c.active = ticket
	c.mu.Unlock()

	go c.run(runCtx, ticket)
	return ticket
}

// CancelActive cancels the in-flight request, if any.
func (c *Chain) CancelActive() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active != nil {
		c.active.cancel()
	}
}

func (c *Chain) run(ctx context.Context, ticket *Ticket) {
	defer close(ticket.done)
	defer ticket.cancel()

	tiers := []Tier{TierHistory, TierAssign, TierLocation}
	delays := []time.Duration{0, c.firstDelay, c.secondDelay}

	for i, tier := range tiers {
		if delays[i] > 0 {
			if !c.wait(ctx, delays[i]) {
				ticket.setPhase(PhaseCancelled)
				return
			}
		}

		if c.arrived(ticket.destination) {
			ticket.setPhase(PhaseSucceeded)
			return
		}

		ticket.recordAttempt()
		if err := c.transport.Attempt(ctx, tier, ticket.destination); err != nil && c.logger != nil {
			c.logger.Debug("navigation attempt failed",
				"tier", tier.String(),
				"destination", ticket.destination,
				"error", err.Error(),
			)
		}
	}

	// Give the final tier the same settle time as tier one before judging.
	// There is no detectable total-failure state beyond this: an exhausted
	// request returns normally with no error.
	if !c.wait(ctx, c.firstDelay) {
		ticket.setPhase(PhaseCancelled)
		return
	}
	if c.arrived(ticket.destination) {
		ticket.setPhase(PhaseSucceeded)
		return
	}
	ticket.setPhase(PhaseExhausted)
	if c.logger != nil {
		c.logger.Warn("navigation exhausted all tiers", "destination", ticket.destination)
	}
}

func (c *Chain) wait(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func (c *Chain) arrived(destination string) bool {
	return c.prober.CurrentPath() == destination
}
