package xhotkey

import (
	"runtime"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ghk "github.com/techtalk/clip-translator/internal/hotkey"
)

func TestKeyMap_CoversBindingKeys(t *testing.T) {
	var names []string
	for c := 'a'; c <= 'z'; c++ {
		names = append(names, string(c))
	}
	for i := 0; i <= 9; i++ {
		names = append(names, strconv.Itoa(i))
	}
	for i := 1; i <= 12; i++ {
		names = append(names, "f"+strconv.Itoa(i))
	}
	names = append(names, "space", "tab", "enter", "escape")

	for _, name := range names {
		_, err := ghk.ParseBinding("ctrl+" + name)
		require.NoError(t, err, name)
		assert.Contains(t, keyMap, name)
	}
	assert.Len(t, keyMap, len(names))
}

func TestParseHotkey_PlatformModifiers(t *testing.T) {
	switch runtime.GOOS {
	case "linux", "windows", "darwin":
	default:
		t.Skip("global hotkeys are not supported on " + runtime.GOOS)
	}

	mods, key, err := parseHotkey("ctrl+shift+k")
	require.NoError(t, err)
	assert.Len(t, mods, 2)
	assert.Equal(t, keyMap["k"], key)
}

func TestParseHotkey_InvalidBinding(t *testing.T) {
	_, _, err := parseHotkey("ctrl+")
	assert.Error(t, err)
}
