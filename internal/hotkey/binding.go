package hotkey

import (
	"fmt"
	"sort"
	"strings"
)

// DefaultBinding is the combination the app registers at startup.
const DefaultBinding = "ctrl+k"

// Canonical modifier names, in display order.
const (
	ModifierCtrl  = "ctrl"
	ModifierAlt   = "alt"
	ModifierShift = "shift"
	ModifierSuper = "super"
)

var modifierOrder = map[string]int{
	ModifierCtrl:  0,
	ModifierAlt:   1,
	ModifierShift: 2,
	ModifierSuper: 3,
}

var modifierAliases = map[string]string{
	"ctrl":    ModifierCtrl,
	"control": ModifierCtrl,
	"alt":     ModifierAlt,
	"option":  ModifierAlt,
	"shift":   ModifierShift,
	"super":   ModifierSuper,
	"win":     ModifierSuper,
	"cmd":     ModifierSuper,
	"meta":    ModifierSuper,
}

// Binding is a global shortcut: a set of modifiers plus one key.
type Binding struct {
	Modifiers []string
	Key       string
}

// ParseBinding parses a combination such as "ctrl+k" or "Ctrl + Shift + F5".
// Modifiers are normalized to their canonical names and deduplicated.
func ParseBinding(s string) (Binding, error) {
	parts := strings.Split(strings.ToLower(s), "+")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	keyStr := parts[len(parts)-1]
	if keyStr == "" {
		return Binding{}, fmt.Errorf("hotkey '%s' has no key", s)
	}
	if !keyNames[keyStr] {
		return Binding{}, fmt.Errorf("unsupported key: %s", keyStr)
	}

	seen := make(map[string]bool)
	var mods []string
	for _, part := range parts[:len(parts)-1] {
		mod, ok := modifierAliases[part]
		if !ok {
			return Binding{}, fmt.Errorf("unsupported modifier: %s", part)
		}
		if !seen[mod] {
			seen[mod] = true
			mods = append(mods, mod)
		}
	}
	sort.Slice(mods, func(i, j int) bool { return modifierOrder[mods[i]] < modifierOrder[mods[j]] })

	return Binding{Modifiers: mods, Key: keyStr}, nil
}

// MustParseBinding is like ParseBinding but panics on error.
func MustParseBinding(s string) Binding {
	b, err := ParseBinding(s)
	if err != nil {
		panic(err)
	}
	return b
}

// String returns the normalized form, e.g. "ctrl+shift+k".
func (b Binding) String() string {
	return strings.Join(append(append([]string(nil), b.Modifiers...), b.Key), "+")
}

// portalTrigger renders a combination in the XDG shortcuts notation
// used for the portal's preferred_trigger, e.g. "CTRL+SHIFT+k".
func portalTrigger(hotkeyStr string) (string, error) {
	b, err := ParseBinding(hotkeyStr)
	if err != nil {
		return "", err
	}
	parts := make([]string, 0, len(b.Modifiers)+1)
	for _, m := range b.Modifiers {
		switch m {
		case ModifierSuper:
			parts = append(parts, "LOGO")
		default:
			parts = append(parts, strings.ToUpper(m))
		}
	}
	key := b.Key
	switch key {
	case "enter":
		key = "Return"
	case "escape":
		key = "Escape"
	case "space", "tab":
		key = strings.ToUpper(key[:1]) + key[1:]
	default:
		if strings.HasPrefix(key, "f") && len(key) > 1 {
			key = strings.ToUpper(key)
		}
	}
	return strings.Join(append(parts, key), "+"), nil
}
