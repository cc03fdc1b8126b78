package hotkey

import "errors"

// ErrBackendNotAvailable is returned when no hotkey backend can serve the
// current desktop session.
var ErrBackendNotAvailable = errors.New("hotkey backend not available on this system")

// Backend registers global hotkeys with one platform mechanism
// (Win32/X11/Carbon through golang.design/x/hotkey, or the XDG portal on Wayland).
type Backend interface {
	// Register registers the combination and returns its handle.
	// Registering an already registered combination returns the existing handle.
	Register(hotkeyStr string) (RegisteredHotkey, error)

	// Unregister releases a combination. Unknown combinations are ignored.
	Unregister(hotkeyStr string) error

	// UnregisterAll releases every combination registered by this backend.
	UnregisterAll() error

	// Name returns a human-readable name for logging.
	Name() string

	// IsAvailable reports whether the backend can be used in this session.
	IsAvailable() bool
}

// RegisteredHotkey is an active registration.
type RegisteredHotkey interface {
	// Keydown receives a value each time the combination is pressed.
	Keydown() <-chan struct{}

	// Close releases the registration. The Keydown channel must not be used
	// afterwards. Close is safe to call more than once.
	Close() error
}
