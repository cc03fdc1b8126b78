//go:build linux

package hotkey

import (
	"regexp"
	"testing"

	"github.com/godbus/dbus/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionToken(t *testing.T) {
	valid := regexp.MustCompile(`^[A-Za-z0-9_]+$`)

	a, b := sessionToken(), sessionToken()
	assert.Regexp(t, valid, a)
	assert.Regexp(t, valid, b)
	assert.NotEqual(t, a, b)
}

const testSession = dbus.ObjectPath("/org/freedesktop/portal/desktop/session/1_0/cliptranslator")

func newTestPortal(hotkeys ...string) (*PortalBackend, map[string]*portalHotkey) {
	b := NewPortalBackend()
	b.session = testSession
	for _, hk := range hotkeys {
		b.shortcuts[hk] = &portalHotkey{
			backend:   b,
			id:        portalShortcutID(hk),
			hotkeyStr: hk,
			keydownCh: make(chan struct{}, 8),
			stopCh:    make(chan struct{}),
		}
	}
	return b, b.shortcuts
}

// runDispatch feeds sigs through dispatch and returns once all are handled.
func runDispatch(b *PortalBackend, sigs ...*dbus.Signal) {
	ch := make(chan *dbus.Signal, len(sigs))
	for _, s := range sigs {
		ch <- s
	}
	close(ch)
	b.dispatch(ch)
}

func activated(session dbus.ObjectPath, id string) *dbus.Signal {
	return &dbus.Signal{
		Path: portalObjectPath,
		Name: shortcutsIface + ".Activated",
		Body: []interface{}{session, id, uint64(0), map[string]dbus.Variant{}},
	}
}

func TestPortalDispatch_Activated(t *testing.T) {
	tests := []struct {
		name string
		sig  *dbus.Signal
		want map[string]int
	}{
		{
			name: "matching id",
			sig:  activated(testSession, portalShortcutID("ctrl+k")),
			want: map[string]int{"ctrl+k": 1, "ctrl+j": 0},
		},
		{
			name: "other session",
			sig:  activated("/org/freedesktop/portal/desktop/session/1_0/other", portalShortcutID("ctrl+k")),
			want: map[string]int{"ctrl+k": 0, "ctrl+j": 0},
		},
		{
			name: "unknown id",
			sig:  activated(testSession, "someone-else"),
			want: map[string]int{"ctrl+k": 0, "ctrl+j": 0},
		},
		{
			name: "short body",
			sig:  &dbus.Signal{Name: shortcutsIface + ".Activated", Body: []interface{}{testSession}},
			want: map[string]int{"ctrl+k": 0, "ctrl+j": 0},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, hotkeys := newTestPortal("ctrl+k", "ctrl+j")
			runDispatch(b, tt.sig)
			for hk, n := range tt.want {
				assert.Len(t, hotkeys[hk].keydownCh, n, hk)
			}
		})
	}
}

func TestPortalDispatch_Response(t *testing.T) {
	b, _ := newTestPortal()
	path := dbus.ObjectPath("/org/freedesktop/portal/desktop/request/1_42/cliptranslator1")
	ch := make(chan *dbus.Signal, 1)
	b.watch(path, ch)

	response := func(p dbus.ObjectPath, code uint32) *dbus.Signal {
		return &dbus.Signal{
			Path: p,
			Name: requestIface + ".Response",
			Body: []interface{}{code, map[string]dbus.Variant{}},
		}
	}

	// The second response to the same path is dropped instead of blocking.
	runDispatch(b,
		response("/org/freedesktop/portal/desktop/request/1_42/other", 2),
		response(path, 0),
		response(path, 1),
	)

	require.Len(t, ch, 1)
	got := <-ch
	assert.Equal(t, path, got.Path)
	assert.Equal(t, uint32(0), got.Body[0])

	b.unwatch(path)
	runDispatch(b, response(path, 0))
	assert.Empty(t, ch)
}

func TestPortalHotkey_FireDropsWhenFull(t *testing.T) {
	_, hotkeys := newTestPortal("ctrl+k")
	ph := hotkeys["ctrl+k"]

	for i := 0; i < cap(ph.keydownCh)+3; i++ {
		ph.fire()
	}
	assert.Len(t, ph.keydownCh, cap(ph.keydownCh))
}

func TestPortalHotkey_CloseReleases(t *testing.T) {
	b, hotkeys := newTestPortal("ctrl+k")
	ph := hotkeys["ctrl+k"]

	require.NoError(t, ph.Close())
	require.NoError(t, ph.Close())
	assert.NotContains(t, b.shortcuts, "ctrl+k")

	runDispatch(b, activated(testSession, ph.id))
	assert.Empty(t, ph.keydownCh)
}

func TestBoundShortcut(t *testing.T) {
	id := portalShortcutID("ctrl+k")
	// Decoded structs arrive as []interface{}, one per a(sa{sv}) element.
	list := func(ids ...string) map[string]dbus.Variant {
		bound := make([][]interface{}, 0, len(ids))
		for _, id := range ids {
			bound = append(bound, []interface{}{id, map[string]dbus.Variant{}})
		}
		sig := dbus.ParseSignatureMust("a(sa{sv})")
		return map[string]dbus.Variant{"shortcuts": dbus.MakeVariantWithSignature(bound, sig)}
	}

	tests := []struct {
		name    string
		results map[string]dbus.Variant
		want    bool
	}{
		{"missing list", map[string]dbus.Variant{}, true},
		{"matching", list("cliptranslator-ctrl-j", id), true},
		{"mismatched", list("cliptranslator-ctrl-j"), false},
		{"empty list", list(), false},
		{"unreadable list", map[string]dbus.Variant{"shortcuts": dbus.MakeVariant("nope")}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, boundShortcut(tt.results, id))
		})
	}
}

func TestPortalShortcutID(t *testing.T) {
	assert.Equal(t, "cliptranslator-ctrl-shift-k", portalShortcutID("ctrl+shift+k"))
}
