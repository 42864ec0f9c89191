package app_test

import (
	"sync"
	"testing"
	"time"

	"quiz-competition-service/internal/app"
	"quiz-competition-service/internal/domain"
)

// manualScheduler records scheduled callbacks so tests decide when they fire.
type manualScheduler struct {
	mu     sync.Mutex
	timers []*manualTimer
}

type manualTimer struct {
	delay   time.Duration
	fn      func()
	stopped bool
}

func (m *manualScheduler) schedule(d time.Duration, f func()) func() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	timer := &manualTimer{delay: d, fn: f}
	m.timers = append(m.timers, timer)
	return func() bool {
		m.mu.Lock()
		defer m.mu.Unlock()
		wasActive := !timer.stopped
		timer.stopped = true
		return wasActive
	}
}

// fire runs timer i even if it was stopped, like a timer that raced its Stop call.
func (m *manualScheduler) fire(i int) {
	m.mu.Lock()
	fn := m.timers[i].fn
	m.mu.Unlock()
	fn()
}

func (m *manualScheduler) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.timers)
}

func (m *manualScheduler) stopped(i int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.timers[i].stopped
}

func newTestPlay(t *testing.T) (*app.Play, *manualScheduler) {
	t.Helper()
	sched := &manualScheduler{}
	play := app.NewPlayWithScheduler("p1", mustSession(t), time.Second, sched.schedule)
	return play, sched
}

func TestPlayWrongSelectionClearsAfterDelay(t *testing.T) {
	play, sched := newTestPlay(t)

	state, err := play.Select(0)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if state.IsCorrect == nil || *state.IsCorrect || state.SelectedOption == nil || *state.SelectedOption != 0 {
		t.Fatalf("expected wrong selection visible, got %+v", state)
	}
	if sched.count() != 1 || sched.timers[0].delay != time.Second {
		t.Fatalf("expected one clear timer with 1s delay")
	}

	sched.fire(0)
	state = play.State()
	if state.SelectedOption != nil {
		t.Fatalf("expected selection cleared by timer")
	}
	if state.IsCorrect == nil || *state.IsCorrect {
		t.Fatalf("expected to stay in retry after clear")
	}
}

func TestPlaySupersededTimerIsIgnored(t *testing.T) {
	play, sched := newTestPlay(t)

	if _, err := play.Select(0); err != nil {
		t.Fatalf("select: %v", err)
	}
	if _, err := play.Select(1); err != nil {
		t.Fatalf("select correct: %v", err)
	}
	if !sched.stopped(0) {
		t.Fatalf("expected pending clear to be cancelled by the new selection")
	}

	// The cancelled timer fires anyway; the newer correct selection must win.
	sched.fire(0)
	state := play.State()
	if state.SelectedOption == nil || *state.SelectedOption != 1 || state.IsCorrect == nil || !*state.IsCorrect {
		t.Fatalf("stale timer overwrote state: %+v", state)
	}
	if state.Score != 1 {
		t.Fatalf("expected score 1, got %d", state.Score)
	}
}

func TestPlayRestartCancelsTimer(t *testing.T) {
	play, sched := newTestPlay(t)

	_, _ = play.Select(2)
	state := play.Restart()
	if !sched.stopped(0) {
		t.Fatalf("expected restart to cancel pending clear")
	}
	sched.fire(0)
	if got := play.State(); got.SelectedOption != nil || got.IsCorrect != nil || got.Score != 0 || got.CurrentQuestion != 0 {
		t.Fatalf("unexpected state after restart: %+v (restart returned %+v)", got, state)
	}
}

func TestPlaySubscribeReceivesUpdates(t *testing.T) {
	play, sched := newTestPlay(t)

	ch, cancel := play.Subscribe()
	defer cancel()

	initial := <-ch
	if initial.CurrentQuestion != 0 || initial.Score != 0 {
		t.Fatalf("unexpected initial snapshot %+v", initial)
	}

	_, _ = play.Select(0)
	update := <-ch
	if update.SelectedOption == nil || *update.SelectedOption != 0 {
		t.Fatalf("expected wrong selection broadcast, got %+v", update)
	}

	sched.fire(0)
	cleared := <-ch
	if cleared.SelectedOption != nil {
		t.Fatalf("expected timer-driven clear broadcast, got %+v", cleared)
	}
}

func TestPlayCloseEndsSubscriptions(t *testing.T) {
	play, sched := newTestPlay(t)
	ch, cancel := play.Subscribe()
	defer cancel()
	<-ch

	_, _ = play.Select(0)
	<-ch
	play.Close()

	if !sched.stopped(0) {
		t.Fatalf("expected close to stop the timer")
	}
	if _, ok := <-ch; ok {
		t.Fatalf("expected subscription closed")
	}
	sched.fire(0) // must not panic on closed subscribers
}

func TestPlayRejectionsLeaveStateUntouched(t *testing.T) {
	play, sched := newTestPlay(t)

	_, _ = play.Select(1)
	state, err := play.Select(0)
	if err != domain.ErrSelectionLocked {
		t.Fatalf("expected locked, got %v", err)
	}
	if state.Score != 1 || sched.count() != 0 {
		t.Fatalf("rejected select changed state or scheduled a timer")
	}
}

func TestPlayWithRealTimer(t *testing.T) {
	play := app.NewPlay("p1", mustSession(t), 10*time.Millisecond)
	defer play.Close()

	ch, cancel := play.Subscribe()
	defer cancel()
	<-ch

	_, _ = play.Select(0)
	<-ch

	select {
	case state := <-ch:
		if state.SelectedOption != nil {
			t.Fatalf("expected cleared selection, got %+v", state)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timer never cleared the selection")
	}
}
