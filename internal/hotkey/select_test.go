package hotkey_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/techtalk/clip-translator/internal/hotkey"
	"github.com/techtalk/clip-translator/internal/hotkey/hotkeytest"
)

func TestSelectBackend(t *testing.T) {
	fake := hotkeytest.NewBackend()
	newLegacy := func() hotkey.Backend { return fake }

	for _, ds := range []hotkey.DisplayServer{
		hotkey.DisplayServerWindows,
		hotkey.DisplayServerX11,
		hotkey.DisplayServerMacOS,
	} {
		t.Run(ds.String(), func(t *testing.T) {
			got, err := hotkey.SelectBackendFor(ds, newLegacy)
			require.NoError(t, err)
			assert.Same(t, fake, got)

			_, err = hotkey.SelectBackendFor(ds, nil)
			assert.ErrorIs(t, err, hotkey.ErrBackendNotAvailable)
		})
	}

	t.Run("unknown", func(t *testing.T) {
		_, err := hotkey.SelectBackendFor(hotkey.DisplayServerUnknown, newLegacy)
		assert.ErrorIs(t, err, hotkey.ErrBackendNotAvailable)
	})
}
