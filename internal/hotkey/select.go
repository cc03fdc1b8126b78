package hotkey

import (
	"fmt"
	"log"
)

// SelectBackend chooses the backend for the current session: the backend
// built by newLegacy on Windows, macOS and X11, the XDG portal on Wayland.
// newLegacy may be nil when the binary is built without x/hotkey.
func SelectBackend(newLegacy func() Backend) (Backend, error) {
	return selectBackend(DetectDisplayServer(), newLegacy)
}

func selectBackend(ds DisplayServer, newLegacy func() Backend) (Backend, error) {
	switch ds {
	case DisplayServerWindows, DisplayServerX11, DisplayServerMacOS:
		if newLegacy == nil {
			return nil, fmt.Errorf("%w: built without x/hotkey support for %s", ErrBackendNotAvailable, ds)
		}
		backend := newLegacy()
		log.Printf("Selected hotkey backend %s for %s", backend.Name(), ds)
		return backend, nil

	case DisplayServerWayland:
		if HasPortalSupport() {
			portal := NewPortalBackend()
			if portal.IsAvailable() {
				log.Printf("Selected hotkey backend %s for %s", portal.Name(), ds)
				return portal, nil
			}
		}
		return nil, fmt.Errorf("%w: Wayland session without the GlobalShortcuts portal", ErrBackendNotAvailable)

	default:
		return nil, fmt.Errorf("%w: unknown display server", ErrBackendNotAvailable)
	}
}
