//go:build !linux

package xhotkey

import "golang.design/x/hotkey"

// expandModifiers returns the combination unchanged; lock keys do not affect
// hotkey matching outside X11.
func expandModifiers(modifiers []hotkey.Modifier) [][]hotkey.Modifier {
	return [][]hotkey.Modifier{modifiers}
}
