// Package hotkeytest provides an in-memory hotkey backend for tests.
package hotkeytest

import (
	"sync"
	"time"

	"github.com/techtalk/clip-translator/internal/hotkey"
)

// Backend is a hotkey.Backend whose activations are triggered by Fire.
type Backend struct {
	mu          sync.Mutex
	registerErr error
	keys        map[string]*Hotkey
	registers   int
}

// NewBackend returns an empty backend.
func NewBackend() *Backend {
	return &Backend{keys: make(map[string]*Hotkey)}
}

// FailRegister makes every following Register call return err.
func (b *Backend) FailRegister(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.registerErr = err
}

// Register implements hotkey.Backend.
func (b *Backend) Register(hotkeyStr string) (hotkey.RegisteredHotkey, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.registerErr != nil {
		return nil, b.registerErr
	}
	if hk, ok := b.keys[hotkeyStr]; ok {
		return hk, nil
	}
	hk := &Hotkey{keydown: make(chan struct{}), closed: make(chan struct{})}
	b.keys[hotkeyStr] = hk
	b.registers++
	return hk, nil
}

// Unregister implements hotkey.Backend.
func (b *Backend) Unregister(hotkeyStr string) error {
	b.mu.Lock()
	hk, ok := b.keys[hotkeyStr]
	delete(b.keys, hotkeyStr)
	b.mu.Unlock()
	if ok {
		return hk.Close()
	}
	return nil
}

// UnregisterAll implements hotkey.Backend.
func (b *Backend) UnregisterAll() error {
	b.mu.Lock()
	keys := b.keys
	b.keys = make(map[string]*Hotkey)
	b.mu.Unlock()
	for _, hk := range keys {
		hk.Close()
	}
	return nil
}

// Name implements hotkey.Backend.
func (b *Backend) Name() string { return "test backend" }

// IsAvailable implements hotkey.Backend.
func (b *Backend) IsAvailable() bool { return true }

// Registered reports whether hotkeyStr is currently registered.
func (b *Backend) Registered(hotkeyStr string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.keys[hotkeyStr]
	return ok
}

// Registrations returns how many distinct registrations were made.
func (b *Backend) Registrations() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.registers
}

// Fire simulates one press of hotkeyStr. It returns once the listener has
// taken the activation, or false if nobody did within a second.
func (b *Backend) Fire(hotkeyStr string) bool {
	b.mu.Lock()
	hk, ok := b.keys[hotkeyStr]
	b.mu.Unlock()
	if !ok {
		return false
	}
	select {
	case hk.keydown <- struct{}{}:
		return true
	case <-hk.closed:
		return false
	case <-time.After(time.Second):
		return false
	}
}

// Hotkey is a registration made through Backend.
type Hotkey struct {
	keydown chan struct{}
	closed  chan struct{}
	once    sync.Once
}

// Keydown implements hotkey.RegisteredHotkey.
func (h *Hotkey) Keydown() <-chan struct{} { return h.keydown }

// Close implements hotkey.RegisteredHotkey.
func (h *Hotkey) Close() error {
	h.once.Do(func() { close(h.closed) })
	return nil
}
