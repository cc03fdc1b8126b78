package hotkey

import (
	"fmt"
	"log"
	"sync"
	"time"
)

const defaultQueueSize = 64

// Event reports one activation of a registered binding.
type Event struct {
	Binding string
	Time    time.Time
}

// State is the registration state of the hotkey subsystem.
type State int

const (
	StateUnregistered State = iota
	StateRegistered
)

func (s State) String() string {
	if s == StateRegistered {
		return "registered"
	}
	return "unregistered"
}

// Status describes the outcome of hotkey setup for display to the user.
type Status struct {
	State   State
	Binding string
	Err     error
}

// Listener owns one global hotkey registration and queues its activations
// in FIFO order. Create it with Listen and release it with Close.
type Listener struct {
	binding Binding
	backend Backend
	handle  RegisteredHotkey
	events  chan Event
	stopCh  chan struct{}
	done    chan struct{}
	now     func() time.Time

	closeOnce sync.Once
	closeErr  error
}

// Option configures a Listener.
type Option func(*Listener)

// WithClock sets the time source used to stamp events.
func WithClock(now func() time.Time) Option {
	return func(l *Listener) { l.now = now }
}

// WithQueueSize sets how many undelivered events are kept before new
// activations are dropped.
func WithQueueSize(n int) Option {
	return func(l *Listener) {
		if n > 0 {
			l.events = make(chan Event, n)
		}
	}
}

// Listen registers binding with backend and starts queueing its activations.
// A registration failure is returned as is; there is no retry or fallback.
func Listen(backend Backend, binding Binding, opts ...Option) (*Listener, error) {
	if backend == nil {
		return nil, ErrBackendNotAvailable
	}

	l := &Listener{
		binding: binding,
		backend: backend,
		events:  make(chan Event, defaultQueueSize),
		stopCh:  make(chan struct{}),
		done:    make(chan struct{}),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}

	handle, err := backend.Register(binding.String())
	if err != nil {
		return nil, fmt.Errorf("hotkey '%s' via %s: %w", binding, backend.Name(), err)
	}
	l.handle = handle

	go l.pump()
	return l, nil
}

// pump moves activations from the OS hook into the queue without ever
// blocking the hook.
func (l *Listener) pump() {
	defer close(l.done)
	defer close(l.events)

	keydown := l.handle.Keydown()
	id := l.binding.String()
	for {
		select {
		case <-l.stopCh:
			return
		case _, ok := <-keydown:
			if !ok {
				return
			}
			ev := Event{Binding: id, Time: l.now()}
			select {
			case l.events <- ev:
			default:
				log.Printf("Hotkey '%s': event queue full, dropping activation", id)
			}
		}
	}
}

// Binding returns the registered binding.
func (l *Listener) Binding() Binding {
	return l.binding
}

// Events returns the queue of activations, closed after Close.
func (l *Listener) Events() <-chan Event {
	return l.events
}

// TryRecv returns the oldest pending event without waiting. The boolean is
// false when nothing is pending.
func (l *Listener) TryRecv() (Event, bool) {
	select {
	case ev, ok := <-l.events:
		return ev, ok
	default:
		return Event{}, false
	}
}

// Close releases the registration. Only the first call has an effect.
func (l *Listener) Close() error {
	l.closeOnce.Do(func() {
		close(l.stopCh)
		l.closeErr = l.backend.Unregister(l.binding.String())
		<-l.done
		log.Printf("Hotkey '%s' released", l.binding)
	})
	return l.closeErr
}
