//go:build linux

package hotkey

import (
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/google/uuid"
)

const (
	portalBusName     = "org.freedesktop.portal.Desktop"
	portalObjectPath  = dbus.ObjectPath("/org/freedesktop/portal/desktop")
	shortcutsIface    = "org.freedesktop.portal.GlobalShortcuts"
	requestIface      = "org.freedesktop.portal.Request"
	sessionIface      = "org.freedesktop.portal.Session"
	portalTokenPrefix = "cliptranslator"

	// BindShortcuts may put a confirmation dialog in front of the user.
	portalResponseTimeout = 2 * time.Minute
)

// PortalBackend registers hotkeys through the XDG Desktop Portal
// GlobalShortcuts interface, which is how Wayland compositors expose global
// shortcuts. The compositor may ask the user to confirm or change the trigger.
type PortalBackend struct {
	mu       sync.Mutex // serializes Register/Unregister
	conn     *dbus.Conn
	signals  chan *dbus.Signal
	tokenSeq int

	sigMu     sync.Mutex // guards the fields below, shared with the dispatcher
	session   dbus.ObjectPath
	pending   map[dbus.ObjectPath]chan *dbus.Signal
	shortcuts map[string]*portalHotkey
}

// portalShortcut marshals as the (sa{sv}) tuple BindShortcuts expects.
type portalShortcut struct {
	ID         string
	Properties map[string]dbus.Variant
}

// NewPortalBackend creates a backend. The session bus is contacted lazily.
func NewPortalBackend() *PortalBackend {
	return &PortalBackend{
		pending:   make(map[dbus.ObjectPath]chan *dbus.Signal),
		shortcuts: make(map[string]*portalHotkey),
	}
}

// Name returns the name of this backend.
func (b *PortalBackend) Name() string {
	return "XDG Desktop Portal GlobalShortcuts"
}

// IsAvailable reports whether the portal implements GlobalShortcuts.
func (b *PortalBackend) IsAvailable() bool {
	if !HasPortalSupport() {
		return false
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.connect(); err != nil {
		log.Printf("Portal backend: %v", err)
		return false
	}
	v, err := b.conn.Object(portalBusName, portalObjectPath).GetProperty(shortcutsIface + ".version")
	if err != nil {
		log.Printf("Portal backend: GlobalShortcuts interface not available: %v", err)
		return false
	}
	log.Printf("Portal backend: GlobalShortcuts version %v", v.Value())
	return true
}

// Register binds the combination as a portal shortcut.
func (b *PortalBackend) Register(hotkeyStr string) (RegisteredHotkey, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.sigMu.Lock()
	existing, exists := b.shortcuts[hotkeyStr]
	b.sigMu.Unlock()
	if exists {
		return existing, nil
	}

	trigger, err := portalTrigger(hotkeyStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse hotkey '%s': %w", hotkeyStr, err)
	}
	if err := b.connect(); err != nil {
		return nil, err
	}
	if err := b.ensureSession(); err != nil {
		return nil, err
	}

	ph := &portalHotkey{
		backend:   b,
		id:        portalShortcutID(hotkeyStr),
		hotkeyStr: hotkeyStr,
		trigger:   trigger,
		keydownCh: make(chan struct{}, 8),
		stopCh:    make(chan struct{}),
	}

	// BindShortcuts replaces the session's whole set.
	b.sigMu.Lock()
	list := make([]portalShortcut, 0, len(b.shortcuts)+1)
	for _, other := range b.shortcuts {
		list = append(list, other.shortcut())
	}
	session := b.session
	b.sigMu.Unlock()
	list = append(list, ph.shortcut())

	results, err := b.request("BindShortcuts", map[string]dbus.Variant{}, session, list, "")
	if err != nil {
		return nil, fmt.Errorf("failed to register hotkey '%s': %w", hotkeyStr, err)
	}
	if !boundShortcut(results, ph.id) {
		return nil, fmt.Errorf("failed to register hotkey '%s': shortcut was not bound by the portal", hotkeyStr)
	}

	b.sigMu.Lock()
	b.shortcuts[hotkeyStr] = ph
	b.sigMu.Unlock()

	log.Printf("Portal backend: registered hotkey '%s' (trigger %s)", hotkeyStr, trigger)
	return ph, nil
}

// Unregister stops delivering events for the combination. The portal has no
// per-shortcut unbind; the binding ends with the session.
func (b *PortalBackend) Unregister(hotkeyStr string) error {
	b.sigMu.Lock()
	ph, ok := b.shortcuts[hotkeyStr]
	b.sigMu.Unlock()
	if !ok {
		return nil
	}
	return ph.Close()
}

// UnregisterAll closes the portal session and the bus connection.
func (b *PortalBackend) UnregisterAll() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.sigMu.Lock()
	hotkeys := make([]*portalHotkey, 0, len(b.shortcuts))
	for _, ph := range b.shortcuts {
		hotkeys = append(hotkeys, ph)
	}
	session := b.session
	b.session = ""
	b.sigMu.Unlock()

	for _, ph := range hotkeys {
		ph.Close()
	}
	if b.conn == nil {
		return nil
	}

	var firstErr error
	if session != "" {
		if call := b.conn.Object(portalBusName, session).Call(sessionIface+".Close", 0); call.Err != nil {
			firstErr = fmt.Errorf("failed to close portal session: %w", call.Err)
		}
	}
	b.conn.RemoveSignal(b.signals)
	if err := b.conn.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	b.conn = nil
	return firstErr
}

func (b *PortalBackend) connect() error {
	if b.conn != nil {
		return nil
	}
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return fmt.Errorf("failed to connect to session bus: %w", err)
	}
	if err := conn.AddMatchSignal(dbus.WithMatchInterface(requestIface), dbus.WithMatchMember("Response")); err != nil {
		conn.Close()
		return fmt.Errorf("failed to subscribe to portal responses: %w", err)
	}
	if err := conn.AddMatchSignal(dbus.WithMatchInterface(shortcutsIface), dbus.WithMatchMember("Activated")); err != nil {
		conn.Close()
		return fmt.Errorf("failed to subscribe to shortcut activations: %w", err)
	}

	b.conn = conn
	b.signals = make(chan *dbus.Signal, 16)
	conn.Signal(b.signals)
	go b.dispatch(b.signals)
	return nil
}

func (b *PortalBackend) ensureSession() error {
	b.sigMu.Lock()
	session := b.session
	b.sigMu.Unlock()
	if session != "" {
		return nil
	}

	options := map[string]dbus.Variant{
		"session_handle_token": dbus.MakeVariant(sessionToken()),
	}
	results, err := b.request("CreateSession", options)
	if err != nil {
		return fmt.Errorf("failed to create portal session: %w", err)
	}

	var handle dbus.ObjectPath
	switch v := results["session_handle"].Value().(type) {
	case string:
		handle = dbus.ObjectPath(v)
	case dbus.ObjectPath:
		handle = v
	}
	if !handle.IsValid() {
		return fmt.Errorf("portal returned an invalid session handle")
	}

	b.sigMu.Lock()
	b.session = handle
	b.sigMu.Unlock()
	log.Printf("Portal backend: session %s created", handle)
	return nil
}

// request calls a portal method that answers through a Request object and
// waits for its Response signal. options is passed as the last argument.
func (b *PortalBackend) request(method string, options map[string]dbus.Variant, leading ...interface{}) (map[string]dbus.Variant, error) {
	b.tokenSeq++
	token := fmt.Sprintf("%s%d", portalTokenPrefix, b.tokenSeq)
	options["handle_token"] = dbus.MakeVariant(token)

	// Subscribe before calling so a fast Response is not lost.
	ch := make(chan *dbus.Signal, 1)
	expected := b.requestPath(token)
	b.watch(expected, ch)
	defer b.unwatch(expected)

	var handle dbus.ObjectPath
	args := append(leading, options)
	if err := b.conn.Object(portalBusName, portalObjectPath).Call(shortcutsIface+"."+method, 0, args...).Store(&handle); err != nil {
		return nil, fmt.Errorf("%s call failed: %w", method, err)
	}
	if handle != expected {
		b.watch(handle, ch)
		defer b.unwatch(handle)
	}

	select {
	case sig := <-ch:
		if len(sig.Body) < 2 {
			return nil, fmt.Errorf("%s: malformed portal response", method)
		}
		code, _ := sig.Body[0].(uint32)
		results, _ := sig.Body[1].(map[string]dbus.Variant)
		switch code {
		case 0:
			return results, nil
		case 1:
			return nil, fmt.Errorf("%s: request cancelled by the user", method)
		default:
			return nil, fmt.Errorf("%s: request failed (response %d)", method, code)
		}
	case <-time.After(portalResponseTimeout):
		return nil, fmt.Errorf("%s: timed out waiting for the portal", method)
	}
}

// sessionToken is unique across restarts, so a session left behind by an
// earlier process is never reused. Object path elements allow no dashes.
func sessionToken() string {
	return portalTokenPrefix + "_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

func (b *PortalBackend) requestPath(token string) dbus.ObjectPath {
	names := b.conn.Names()
	sender := ""
	if len(names) > 0 {
		sender = strings.ReplaceAll(strings.TrimPrefix(names[0], ":"), ".", "_")
	}
	return dbus.ObjectPath("/org/freedesktop/portal/desktop/request/" + sender + "/" + token)
}

func (b *PortalBackend) watch(path dbus.ObjectPath, ch chan *dbus.Signal) {
	b.sigMu.Lock()
	b.pending[path] = ch
	b.sigMu.Unlock()
}

func (b *PortalBackend) unwatch(path dbus.ObjectPath) {
	b.sigMu.Lock()
	delete(b.pending, path)
	b.sigMu.Unlock()
}

// dispatch routes Response signals to waiting requests and Activated signals
// to the matching hotkey. It ends when the connection is closed.
func (b *PortalBackend) dispatch(signals <-chan *dbus.Signal) {
	for sig := range signals {
		switch sig.Name {
		case requestIface + ".Response":
			b.sigMu.Lock()
			ch, ok := b.pending[sig.Path]
			b.sigMu.Unlock()
			if ok {
				select {
				case ch <- sig:
				default:
				}
			}

		case shortcutsIface + ".Activated":
			if len(sig.Body) < 2 {
				continue
			}
			session, _ := sig.Body[0].(dbus.ObjectPath)
			id, _ := sig.Body[1].(string)

			b.sigMu.Lock()
			var target *portalHotkey
			if session == b.session {
				for _, ph := range b.shortcuts {
					if ph.id == id {
						target = ph
						break
					}
				}
			}
			b.sigMu.Unlock()

			if target != nil {
				target.fire()
			}
		}
	}
}

func (b *PortalBackend) release(ph *portalHotkey) {
	b.sigMu.Lock()
	if b.shortcuts[ph.hotkeyStr] == ph {
		delete(b.shortcuts, ph.hotkeyStr)
	}
	b.sigMu.Unlock()
}

// boundShortcut reports whether BindShortcuts results include id. Portals
// that omit the list are trusted.
func boundShortcut(results map[string]dbus.Variant, id string) bool {
	v, ok := results["shortcuts"]
	if !ok {
		return true
	}
	var bound []portalShortcut
	if err := dbus.Store([]interface{}{v.Value()}, &bound); err != nil {
		return true
	}
	for _, s := range bound {
		if s.ID == id {
			return true
		}
	}
	return false
}

func portalShortcutID(hotkeyStr string) string {
	return portalTokenPrefix + "-" + strings.ReplaceAll(hotkeyStr, "+", "-")
}

type portalHotkey struct {
	backend   *PortalBackend
	id        string
	hotkeyStr string
	trigger   string
	keydownCh chan struct{}
	stopCh    chan struct{}
	closeOnce sync.Once
}

func (ph *portalHotkey) shortcut() portalShortcut {
	return portalShortcut{
		ID: ph.id,
		Properties: map[string]dbus.Variant{
			"description":       dbus.MakeVariant("Translate clipboard (" + ph.hotkeyStr + ")"),
			"preferred_trigger": dbus.MakeVariant(ph.trigger),
		},
	}
}

func (ph *portalHotkey) fire() {
	select {
	case <-ph.stopCh:
	case ph.keydownCh <- struct{}{}:
	default:
		log.Printf("Portal backend: hotkey '%s' activation dropped, consumer is behind", ph.hotkeyStr)
	}
}

// Keydown returns the channel that receives activations.
func (ph *portalHotkey) Keydown() <-chan struct{} {
	return ph.keydownCh
}

// Close stops delivering activations.
func (ph *portalHotkey) Close() error {
	ph.closeOnce.Do(func() {
		close(ph.stopCh)
		ph.backend.release(ph)
	})
	return nil
}
