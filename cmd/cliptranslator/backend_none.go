//go:build noxhotkey

package main

import "github.com/techtalk/clip-translator/internal/hotkey"

// Built with -tags noxhotkey: no X display is needed at startup and only
// the Wayland portal backend is available.
var newLegacyBackend func() hotkey.Backend
