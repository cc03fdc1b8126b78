package hotkey

import (
	"os"
	"runtime"
)

// DisplayServer is the windowing system hotkeys are registered with.
type DisplayServer int

const (
	DisplayServerUnknown DisplayServer = iota
	DisplayServerWindows
	DisplayServerX11
	DisplayServerWayland
	DisplayServerMacOS
)

func (ds DisplayServer) String() string {
	switch ds {
	case DisplayServerWindows:
		return "Windows"
	case DisplayServerX11:
		return "X11"
	case DisplayServerWayland:
		return "Wayland"
	case DisplayServerMacOS:
		return "macOS"
	default:
		return "Unknown"
	}
}

// DetectDisplayServer determines which display server is in use.
func DetectDisplayServer() DisplayServer {
	return detectDisplayServer(runtime.GOOS, os.Getenv)
}

func detectDisplayServer(goos string, getenv func(string) string) DisplayServer {
	switch goos {
	case "windows":
		return DisplayServerWindows
	case "darwin":
		return DisplayServerMacOS
	}

	// Wayland first: XWayland sessions also set DISPLAY.
	if getenv("WAYLAND_DISPLAY") != "" || getenv("XDG_SESSION_TYPE") == "wayland" {
		return DisplayServerWayland
	}
	if getenv("DISPLAY") != "" {
		return DisplayServerX11
	}
	return DisplayServerUnknown
}

// HasPortalSupport reports whether a D-Bus session bus is reachable, which
// the XDG Desktop Portal needs.
func HasPortalSupport() bool {
	return hasPortalSupport(runtime.GOOS, os.Getenv)
}

func hasPortalSupport(goos string, getenv func(string) string) bool {
	if goos != "linux" {
		return false
	}
	return getenv("DBUS_SESSION_BUS_ADDRESS") != ""
}
