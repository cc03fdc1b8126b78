//go:build windows

package xhotkey

import (
	"golang.design/x/hotkey"

	ghk "github.com/techtalk/clip-translator/internal/hotkey"
)

// platformModifier maps a canonical modifier to its Win32 flag.
func platformModifier(name string) (hotkey.Modifier, bool) {
	switch name {
	case ghk.ModifierCtrl:
		return hotkey.ModCtrl, true
	case ghk.ModifierAlt:
		return hotkey.ModAlt, true
	case ghk.ModifierShift:
		return hotkey.ModShift, true
	case ghk.ModifierSuper:
		return hotkey.ModWin, true
	}
	return 0, false
}
