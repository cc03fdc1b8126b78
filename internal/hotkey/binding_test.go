package hotkey_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/techtalk/clip-translator/internal/hotkey"
)

func TestParseBinding(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"ctrl+k", "ctrl+k"},
		{"Ctrl + K", "ctrl+k"},
		{"control+k", "ctrl+k"},
		{"shift+ctrl+f5", "ctrl+shift+f5"},
		{"cmd+option+space", "alt+super+space"},
		{"ctrl+ctrl+v", "ctrl+v"},
		{"escape", "escape"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			b, err := hotkey.ParseBinding(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, b.String())
		})
	}
}

func TestParseBinding_Errors(t *testing.T) {
	for _, in := range []string{"", "ctrl+", "ctrl+hyper", "hyper+k", "ctrl+pgdn"} {
		t.Run(in, func(t *testing.T) {
			_, err := hotkey.ParseBinding(in)
			assert.Error(t, err)
		})
	}
}

func TestMustParseBinding_Panics(t *testing.T) {
	assert.Panics(t, func() { hotkey.MustParseBinding("ctrl+nope") })
}

func TestPortalTrigger(t *testing.T) {
	tests := map[string]string{
		"ctrl+k":             "CTRL+k",
		"super+shift+enter":  "SHIFT+LOGO+Return",
		"alt+f12":            "ALT+F12",
		"ctrl+alt+space":     "CTRL+ALT+Space",
		"shift+ctrl+super+z": "CTRL+SHIFT+LOGO+z",
	}
	for in, want := range tests {
		got, err := hotkey.PortalTrigger(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}
