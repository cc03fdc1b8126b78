//go:build !windows && !linux && !darwin

package xhotkey

import "golang.design/x/hotkey"

// platformModifier reports every modifier as unsupported; global hotkeys
// are only available on Windows, Linux and macOS.
func platformModifier(_ string) (hotkey.Modifier, bool) {
	return 0, false
}
