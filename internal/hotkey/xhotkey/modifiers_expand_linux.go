//go:build linux

package xhotkey

import "golang.design/x/hotkey"

// CapsLock is LockMask (1<<1) on X11; NumLock is usually Mod2.
const linuxCapsLockMask hotkey.Modifier = 1 << 1

// expandModifiers returns the combination plus its NumLock/CapsLock variants.
// XGrabKey matches the exact modifier state, so without the variants the
// hotkey stops firing whenever a lock key is on. The base combination is
// always first.
func expandModifiers(modifiers []hotkey.Modifier) [][]hotkey.Modifier {
	with := func(extra ...hotkey.Modifier) []hotkey.Modifier {
		return append(append([]hotkey.Modifier(nil), modifiers...), extra...)
	}
	return [][]hotkey.Modifier{
		with(),
		with(hotkey.Mod2),
		with(linuxCapsLockMask),
		with(hotkey.Mod2, linuxCapsLockMask),
	}
}
