//go:build linux

package xhotkey

import (
	"golang.design/x/hotkey"

	ghk "github.com/techtalk/clip-translator/internal/hotkey"
)

// platformModifier maps a canonical modifier to its X11 mask.
// Alt is Mod1 and Super is Mod4 on common keyboard layouts.
func platformModifier(name string) (hotkey.Modifier, bool) {
	switch name {
	case ghk.ModifierCtrl:
		return hotkey.ModCtrl, true
	case ghk.ModifierAlt:
		return hotkey.Mod1, true
	case ghk.ModifierShift:
		return hotkey.ModShift, true
	case ghk.ModifierSuper:
		return hotkey.Mod4, true
	}
	return 0, false
}
