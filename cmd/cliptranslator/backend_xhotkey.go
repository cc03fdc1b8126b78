//go:build !noxhotkey

package main

import "github.com/techtalk/clip-translator/internal/hotkey/xhotkey"

// newLegacyBackend grabs hotkeys through golang.design/x/hotkey on
// Windows, macOS and X11.
var newLegacyBackend = xhotkey.NewBackend
