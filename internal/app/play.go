package app

import (
	"sync"
	"time"

	"quiz-competition-service/internal/domain"
)

// DefaultClearDelay is how long a wrong selection stays visible before it is cleared.
const DefaultClearDelay = time.Second

// Scheduler runs f after d and returns a function that cancels it.
type Scheduler func(d time.Duration, f func()) (stop func() bool)

// AfterFunc is the production Scheduler.
func AfterFunc(d time.Duration, f func()) func() bool {
	return time.AfterFunc(d, f).Stop
}

// Play is a live play-through: a Session plus the timer that clears wrong
// selections. It has a single driver; the mutex orders the driver against the timer.
type Play struct {
	id         string
	clearDelay time.Duration
	schedule   Scheduler

	mu          sync.Mutex
	session     Session
	stopTimer   func() bool
	closed      bool
	lastActive  time.Time
	subscribers map[chan domain.PlayState]struct{}
}

// NewPlay wraps session with the production scheduler.
func NewPlay(id string, session Session, clearDelay time.Duration) *Play {
	return NewPlayWithScheduler(id, session, clearDelay, AfterFunc)
}

// NewPlayWithScheduler lets tests fire the clear timer deterministically.
func NewPlayWithScheduler(id string, session Session, clearDelay time.Duration, schedule Scheduler) *Play {
	if clearDelay <= 0 {
		clearDelay = DefaultClearDelay
	}
	return &Play{
		id:          id,
		clearDelay:  clearDelay,
		schedule:    schedule,
		session:     session,
		subscribers: make(map[chan domain.PlayState]struct{}),
	}
}

func (p *Play) ID() string { return p.id }

// Session returns the current immutable session value.
func (p *Play) Session() Session {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.session
}

// State returns the current client snapshot.
func (p *Play) State() domain.PlayState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.session.State(p.id)
}

// Select applies a selection. A wrong answer schedules the delayed clear; any
// earlier pending clear is cancelled first.
func (p *Play) Select(option int) (domain.PlayState, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	next, err := p.session.Select(option)
	if err != nil {
		return p.session.State(p.id), err
	}
	p.session = next
	p.cancelTimerLocked()
	if next.Retrying() && !p.closed {
		seq := next.Seq()
		p.stopTimer = p.schedule(p.clearDelay, func() { p.clear(seq) })
	}
	return p.broadcastLocked(), nil
}

// Advance moves forward after a correct answer or dismisses a wrong one.
func (p *Play) Advance() (domain.PlayState, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	next, err := p.session.Advance()
	if err != nil {
		return p.session.State(p.id), err
	}
	p.session = next
	p.cancelTimerLocked()
	return p.broadcastLocked(), nil
}

// Restart resets progress; it is valid from any state.
func (p *Play) Restart() domain.PlayState {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.session = p.session.Restart()
	p.cancelTimerLocked()
	return p.broadcastLocked()
}

// Subscribe returns a channel that receives the current state and every change after it.
// The caller must invoke the returned cancel function to avoid leaks.
func (p *Play) Subscribe() (<-chan domain.PlayState, func()) {
	ch := make(chan domain.PlayState, 8)

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	p.subscribers[ch] = struct{}{}
	ch <- p.session.State(p.id)
	p.mu.Unlock()

	cancel := func() {
		p.mu.Lock()
		if _, ok := p.subscribers[ch]; ok {
			delete(p.subscribers, ch)
			close(ch)
		}
		p.mu.Unlock()
	}
	return ch, cancel
}

// Touch records activity at t. Earlier times are ignored.
func (p *Play) Touch(t time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if t.After(p.lastActive) {
		p.lastActive = t
	}
}

// LastActive is the latest time passed to Touch.
func (p *Play) LastActive() time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastActive
}

// Close stops the pending timer and ends every subscription.
func (p *Play) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	p.cancelTimerLocked()
	for ch := range p.subscribers {
		delete(p.subscribers, ch)
		close(ch)
	}
}

func (p *Play) clear(seq uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	next := p.session.ClearSelection(seq)
	if next.Seq() == p.session.Seq() {
		return
	}
	p.session = next
	p.stopTimer = nil
	p.broadcastLocked()
}

func (p *Play) cancelTimerLocked() {
	if p.stopTimer != nil {
		p.stopTimer()
		p.stopTimer = nil
	}
}

func (p *Play) broadcastLocked() domain.PlayState {
	state := p.session.State(p.id)
	for ch := range p.subscribers {
		select {
		case ch <- state:
		default:
			// Drop the oldest snapshot so a slow reader never blocks the driver.
			select {
			case <-ch:
			default:
			}
			ch <- state
		}
	}
	return state
}
