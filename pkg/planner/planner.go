// Package planner generates trip itineraries for cabin guests.
package planner

import (
	"context"
	"errors"
	"strings"
	"sync"

	"k8s.io/klog/v2"
)

const (
	// FailureText is shown when the guide could not be reached.
	FailureText = "Unable to reach our mountain guide right now. Please try again later."
	// EmptyText is shown when the guide answered with nothing.
	EmptyText = "Something went wrong. Please try again."
)

var (
	// ErrBusy is returned while a request is already in flight.
	ErrBusy = errors.New("itinerary request already in flight")
	// ErrNoInterest is returned when there is nothing to plan around.
	ErrNoInterest = errors.New("no interest given")
)

// Generator produces an itinerary for an interest.
type Generator interface {
	Itinerary(ctx context.Context, interest string) (string, error)
}

// Outcome of a finished request, for metrics.
type Outcome string

const (
	OutcomeOK        Outcome = "ok"
	OutcomeEmpty     Outcome = "empty"
	OutcomeError     Outcome = "error"
	OutcomeDiscarded Outcome = "discarded"
)

// Planner is the trip planner view state: one interest, one itinerary and
// at most one request in flight.
type Planner struct {
	gen      Generator
	onResult func(Outcome)

	mu        sync.Mutex
	interest  string
	itinerary string
	loading   bool
	epoch     uint64
}

// New returns a planner that asks g for itineraries. onResult may be nil.
func New(g Generator, onResult func(Outcome)) *Planner {
	return &Planner{gen: g, onResult: onResult}
}

// State is a snapshot of the planner for rendering.
type State struct {
	Interest  string
	Itinerary string
	Loading   bool
}

// State returns the current state.
func (p *Planner) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return State{Interest: p.interest, Itinerary: p.itinerary, Loading: p.loading}
}

// Plan requests an itinerary for interest and stores the result, or one of
// the fallback texts on failure. It blocks until the request finishes.
func (p *Planner) Plan(ctx context.Context, interest string) error {
	interest = strings.TrimSpace(interest)

	p.mu.Lock()
	p.interest = interest
	if interest == "" {
		p.mu.Unlock()
		return ErrNoInterest
	}
	if p.loading {
		p.mu.Unlock()
		return ErrBusy
	}
	p.loading = true
	epoch := p.epoch
	p.mu.Unlock()

	text, err := p.ask(ctx, interest)

	p.mu.Lock()
	defer p.mu.Unlock()
	if epoch != p.epoch {
		klog.V(1).Infof("planner reset while waiting, discarding itinerary")
		p.report(OutcomeDiscarded)
		return nil
	}
	p.loading = false

	switch {
	case err != nil:
		klog.Errorf("itinerary for %q: %v", interest, err)
		p.itinerary = FailureText
		p.report(OutcomeError)
	case strings.TrimSpace(text) == "":
		p.itinerary = EmptyText
		p.report(OutcomeEmpty)
	default:
		p.itinerary = text
		p.report(OutcomeOK)
	}
	return nil
}

// ask calls the generator, turning panics into errors so loading always clears.
func (p *Planner) ask(ctx context.Context, interest string) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.New("generator panicked")
			klog.Errorf("itinerary generator panic: %v", r)
		}
	}()
	if p.gen == nil {
		return "", errors.New("no generator configured")
	}
	return p.gen.Itinerary(ctx, interest)
}

// Reset clears the planner; a request still in flight is discarded when it returns.
func (p *Planner) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.epoch++
	p.interest = ""
	p.itinerary = ""
	p.loading = false
}

func (p *Planner) report(o Outcome) {
	if p.onResult != nil {
		p.onResult(o)
	}
}
