// Package xhotkey registers global hotkeys through golang.design/x/hotkey.
// Importing it on Linux requires an X display: the library checks for one
// when the package is initialized.
package xhotkey

import (
	"fmt"
	"log"
	"sync"

	"golang.design/x/hotkey"

	ghk "github.com/techtalk/clip-translator/internal/hotkey"
)

// Backend registers hotkeys through golang.design/x/hotkey.
// It supports Windows, macOS and X11; it does not work on Wayland.
type Backend struct {
	mu             sync.Mutex
	registeredKeys map[string]*legacyHotkey
	displayServer  ghk.DisplayServer
}

// NewBackend creates a backend for the detected display server.
func NewBackend() ghk.Backend {
	return &Backend{
		registeredKeys: make(map[string]*legacyHotkey),
		displayServer:  ghk.DetectDisplayServer(),
	}
}

// Name returns the name of this backend.
func (b *Backend) Name() string {
	return "golang.design/x/hotkey"
}

// IsAvailable reports whether the session is one x/hotkey can grab keys in.
func (b *Backend) IsAvailable() bool {
	switch b.displayServer {
	case ghk.DisplayServerWindows, ghk.DisplayServerX11, ghk.DisplayServerMacOS:
		return true
	default:
		return false
	}
}

// Register registers a hotkey. On Linux the NumLock/CapsLock variants are
// grabbed as well; only a failure of the plain combination is an error.
func (b *Backend) Register(hotkeyStr string) (ghk.RegisteredHotkey, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if existing, exists := b.registeredKeys[hotkeyStr]; exists {
		log.Printf("Hotkey '%s' already registered, reusing it", hotkeyStr)
		return existing, nil
	}

	modifiers, key, err := parseHotkey(hotkeyStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse hotkey '%s': %w", hotkeyStr, err)
	}

	wrapped := &legacyHotkey{
		hotkeyStr: hotkeyStr,
		keydownCh: make(chan struct{}),
		stopCh:    make(chan struct{}),
	}

	for i, mods := range expandModifiers(modifiers) {
		hk := hotkey.New(mods, key)
		if err := hk.Register(); err != nil {
			if i == 0 {
				return nil, fmt.Errorf("failed to register hotkey '%s': %w", hotkeyStr, err)
			}
			log.Printf("Hotkey '%s': lock-key variant %d not registered: %v", hotkeyStr, i, err)
			continue
		}
		wrapped.hotkeys = append(wrapped.hotkeys, hk)
	}

	wrapped.startEventConverter()
	b.registeredKeys[hotkeyStr] = wrapped
	log.Printf("Registered hotkey '%s' (%d grab(s))", hotkeyStr, len(wrapped.hotkeys))

	return wrapped, nil
}

// Unregister removes a single hotkey.
func (b *Backend) Unregister(hotkeyStr string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	hk, exists := b.registeredKeys[hotkeyStr]
	if !exists {
		return nil
	}
	delete(b.registeredKeys, hotkeyStr)

	if err := hk.Close(); err != nil {
		return err
	}
	log.Printf("Unregistered hotkey '%s'", hotkeyStr)
	return nil
}

// UnregisterAll removes all registered hotkeys.
func (b *Backend) UnregisterAll() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	var firstErr error
	for hotkeyStr, hk := range b.registeredKeys {
		if err := hk.Close(); err != nil {
			log.Printf("Error unregistering '%s': %v", hotkeyStr, err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	b.registeredKeys = make(map[string]*legacyHotkey)
	return firstErr
}

// legacyHotkey fans the keydown events of every grab of one combination
// into a single channel.
type legacyHotkey struct {
	hotkeys   []*hotkey.Hotkey
	hotkeyStr string
	keydownCh chan struct{}
	stopCh    chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// Keydown returns the channel that receives keydown events.
func (lh *legacyHotkey) Keydown() <-chan struct{} {
	return lh.keydownCh
}

func (lh *legacyHotkey) startEventConverter() {
	for _, hk := range lh.hotkeys {
		lh.wg.Add(1)
		go lh.forward(hk)
	}
	go func() {
		lh.wg.Wait()
		close(lh.keydownCh)
	}()
}

func (lh *legacyHotkey) forward(hk *hotkey.Hotkey) {
	defer lh.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Recovered from panic in hotkey converter (%s): %v", lh.hotkeyStr, r)
		}
	}()

	for {
		select {
		case <-lh.stopCh:
			return
		case _, ok := <-hk.Keydown():
			if !ok {
				return
			}
			select {
			case lh.keydownCh <- struct{}{}:
			case <-lh.stopCh:
				return
			}
		}
	}
}

// Close stops the converters and releases every grab.
func (lh *legacyHotkey) Close() error {
	var firstErr error
	lh.closeOnce.Do(func() {
		close(lh.stopCh)
		for _, hk := range lh.hotkeys {
			if err := hk.Unregister(); err != nil && firstErr == nil {
				firstErr = fmt.Errorf("failed to unregister hotkey '%s': %w", lh.hotkeyStr, err)
			}
		}
	})
	return firstErr
}

// parseHotkey converts a combination into golang.design/x/hotkey modifiers
// and key, using the platform's modifier mapping.
func parseHotkey(hotkeyStr string) ([]hotkey.Modifier, hotkey.Key, error) {
	b, err := ghk.ParseBinding(hotkeyStr)
	if err != nil {
		return nil, 0, err
	}

	key, ok := keyMap[b.Key]
	if !ok {
		return nil, 0, fmt.Errorf("key '%s' has no x/hotkey code", b.Key)
	}

	modifiers := make([]hotkey.Modifier, 0, len(b.Modifiers))
	for _, m := range b.Modifiers {
		mod, ok := platformModifier(m)
		if !ok {
			return nil, 0, fmt.Errorf("modifier '%s' is not supported on this OS", m)
		}
		modifiers = append(modifiers, mod)
	}

	return modifiers, key, nil
}
