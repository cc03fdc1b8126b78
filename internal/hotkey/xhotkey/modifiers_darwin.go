//go:build darwin

package xhotkey

import (
	"golang.design/x/hotkey"

	ghk "github.com/techtalk/clip-translator/internal/hotkey"
)

// platformModifier maps a canonical modifier to its Carbon flag.
// Alt is the Option key and Super is Command.
func platformModifier(name string) (hotkey.Modifier, bool) {
	switch name {
	case ghk.ModifierCtrl:
		return hotkey.ModCtrl, true
	case ghk.ModifierAlt:
		return hotkey.ModOption, true
	case ghk.ModifierShift:
		return hotkey.ModShift, true
	case ghk.ModifierSuper:
		return hotkey.ModCmd, true
	}
	return 0, false
}
