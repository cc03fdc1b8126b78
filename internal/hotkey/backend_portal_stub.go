//go:build !linux

package hotkey

// PortalBackend is only implemented on Linux.
type PortalBackend struct{}

// NewPortalBackend returns a backend that is never available.
func NewPortalBackend() *PortalBackend {
	return &PortalBackend{}
}

// Name returns the name of this backend.
func (b *PortalBackend) Name() string {
	return "XDG Desktop Portal (Linux only)"
}

// IsAvailable always returns false on non-Linux platforms.
func (b *PortalBackend) IsAvailable() bool {
	return false
}

// Register always fails on non-Linux platforms.
func (b *PortalBackend) Register(hotkeyStr string) (RegisteredHotkey, error) {
	return nil, ErrBackendNotAvailable
}

// Unregister is a no-op on non-Linux platforms.
func (b *PortalBackend) Unregister(hotkeyStr string) error {
	return nil
}

// UnregisterAll is a no-op on non-Linux platforms.
func (b *PortalBackend) UnregisterAll() error {
	return nil
}
