package engine

import (
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/sync/semaphore"
)

// ErrSlotBusy is returned when a callback is registered while another one is live.
var ErrSlotBusy = errors.New("result callback is already registered")

// call is one queued fetch. done is closed once the call has settled.
type call struct {
	url  string
	done chan struct{}
}

// CallbackSlot is the single well-known callback a result script reports to.
//
// Fetches queue on the slot: each one waits for the previously queued fetch
// to settle before it registers. Every Fetcher sharing a slot shares that
// queue, so at most one fetch holds the slot at a time.
type CallbackSlot struct {
	sem *semaphore.Weighted

	mu     sync.Mutex
	active string
	last   *call // most recently queued, unsettled fetch
}

// NewCallbackSlot creates an empty slot.
func NewCallbackSlot() *CallbackSlot {
	return &CallbackSlot{sem: semaphore.NewWeighted(1)}
}

// enqueue installs a new call for url as the last one and returns it with
// the call it must wait for, which is nil if the queue was empty.
func (s *CallbackSlot) enqueue(url string) (c, prev *call) {
	c = &call{url: url, done: make(chan struct{})}

	s.mu.Lock()
	defer s.mu.Unlock()
	prev = s.last
	s.last = c
	return c, prev
}

// settle clears the queue if c is still its last call and wakes the call
// queued behind c.
func (s *CallbackSlot) settle(c *call) {
	s.mu.Lock()
	if s.last == c {
		s.last = nil
	}
	s.mu.Unlock()
	close(c.done)
}

// Acquire registers url as the owner of the slot. The returned release
// function clears the registration and may be called more than once.
// Acquiring a live slot is an error; queued fetches never do so.
func (s *CallbackSlot) Acquire(url string) (func(), error) {
	if !s.sem.TryAcquire(1) {
		return nil, errors.Wrapf(ErrSlotBusy, "register %s while %s is live", url, s.Active())
	}

	s.mu.Lock()
	s.active = url
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			s.active = ""
			s.mu.Unlock()
			s.sem.Release(1)
		})
	}, nil
}

// Active returns the URL currently holding the slot, or "" if it is free.
func (s *CallbackSlot) Active() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Pending reports whether any queued fetch has not settled yet.
func (s *CallbackSlot) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last != nil
}
