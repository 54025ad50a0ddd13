package usecase

import (
	"errors"
	"sync"
	"time"

	"portfolio-backend/internal/domain"

	"k8s.io/utils/clock"
)

// DefaultFeedbackClearDelay is how long success or failure feedback stays visible
const DefaultFeedbackClearDelay = 5 * time.Second

// FeedbackController is the single authority over one form instance's
// FeedbackState. At most one auto-clear timer is pending at any time.
//
// The clock is never called while mu is held: the fake clock runs AfterFunc
// callbacks under its own lock, and the callback takes mu.
type FeedbackController struct {
	clock clock.WithDelayedExecution
	delay time.Duration

	mu       sync.Mutex
	state    domain.FeedbackState
	timer    clock.Timer
	gen      uint64
	disposed bool
}

// NewFeedbackController creates a controller in the Idle state
func NewFeedbackController(clk clock.WithDelayedExecution, delay time.Duration) *FeedbackController {
	if clk == nil {
		clk = clock.RealClock{}
	}
	if delay <= 0 {
		delay = DefaultFeedbackClearDelay
	}
	return &FeedbackController{
		clock: clk,
		delay: delay,
		state: domain.FeedbackState{Status: domain.FeedbackIdle},
	}
}

// State returns the current feedback
func (f *FeedbackController) State() domain.FeedbackState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// SubmitEnabled is false while a submission is outstanding
func (f *FeedbackController) SubmitEnabled() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state.Status != domain.FeedbackSubmitting
}

// OnSubmitAccepted enters Submitting and cancels any pending auto-clear.
// It returns false when a submission is already outstanding or the
// controller was disposed.
func (f *FeedbackController) OnSubmitAccepted() bool {
	f.mu.Lock()
	if f.disposed || f.state.Status == domain.FeedbackSubmitting {
		f.mu.Unlock()
		return false
	}
	f.gen++
	f.state = domain.FeedbackState{Status: domain.FeedbackSubmitting}
	stale := f.takeTimerLocked()
	f.mu.Unlock()

	stopTimer(stale)
	return true
}

// OnSubmitResult settles into Succeeded or Failed and arms the auto-clear.
// It returns the toast that accompanies the result.
func (f *FeedbackController) OnSubmitResult(err error) string {
	state, toast := feedbackFor(err)

	f.mu.Lock()
	if f.disposed {
		f.mu.Unlock()
		return toast
	}
	f.gen++
	gen := f.gen
	f.state = state
	stale := f.takeTimerLocked()
	f.mu.Unlock()

	stopTimer(stale)

	timer := f.clock.AfterFunc(f.delay, func() { f.expire(gen) })

	f.mu.Lock()
	if f.disposed || f.gen != gen {
		// superseded while arming
		f.mu.Unlock()
		stopTimer(timer)
		return toast
	}
	f.timer = timer
	f.mu.Unlock()
	return toast
}

// Dispose cancels the pending timer. No state change is applied afterwards.
func (f *FeedbackController) Dispose() {
	f.mu.Lock()
	if f.disposed {
		f.mu.Unlock()
		return
	}
	f.disposed = true
	f.gen++
	stale := f.takeTimerLocked()
	f.mu.Unlock()

	stopTimer(stale)
}

// Disposed reports whether Dispose was called
func (f *FeedbackController) Disposed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.disposed
}

func (f *FeedbackController) expire(gen uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.disposed || f.gen != gen {
		return
	}
	f.state = domain.FeedbackState{Status: domain.FeedbackIdle}
	f.timer = nil
}

func (f *FeedbackController) takeTimerLocked() clock.Timer {
	t := f.timer
	f.timer = nil
	return t
}

func stopTimer(t clock.Timer) {
	if t != nil {
		t.Stop()
	}
}

func feedbackFor(err error) (domain.FeedbackState, string) {
	switch {
	case err == nil:
		return domain.FeedbackState{Status: domain.FeedbackSucceeded, Message: domain.MessageSent}, domain.ToastSent
	case errors.Is(err, domain.ErrNotConfigured):
		return domain.FeedbackState{Status: domain.FeedbackFailed, Message: domain.MessageNotConfigured}, domain.ToastNotConfigured
	default:
		return domain.FeedbackState{Status: domain.FeedbackFailed, Message: domain.MessageFailed}, domain.ToastFailed
	}
}
