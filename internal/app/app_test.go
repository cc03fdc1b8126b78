package app

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/ncruces/zenity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/techtalk/clip-translator/internal/bridge"
	"github.com/techtalk/clip-translator/internal/clipboard"
	"github.com/techtalk/clip-translator/internal/config"
	"github.com/techtalk/clip-translator/internal/hotkey/hotkeytest"
	"github.com/techtalk/clip-translator/internal/storage"
	"github.com/techtalk/clip-translator/internal/ui"
)

type fakeWorkflow struct {
	mu       sync.Mutex
	calls    int
	err       error
	canRevert bool
	restored  bool
}

func (w *fakeWorkflow) ProcessClipboard(context.Context) (*clipboard.Outcome, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.calls++
	if w.err != nil {
		return nil, w.err
	}
	return &clipboard.Outcome{Original: "hello", Translated: "こんにちは"}, nil
}

func (w *fakeWorkflow) CanRevert() bool { return w.canRevert }

func (w *fakeWorkflow) RestoreOriginalClipboard() bool { return w.restored }

func (w *fakeWorkflow) Calls() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.calls
}

type note struct {
	level ui.NotificationLevel
	title string
	text  string
}

type fakeNotifier struct {
	mu    sync.Mutex
	notes []note
}

func (n *fakeNotifier) ShowAdminNotification(level ui.NotificationLevel, title, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notes = append(n.notes, note{level, title, message})
}

func (n *fakeNotifier) ShowTranslationNotification(title, text string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notes = append(n.notes, note{ui.LevelInfo, title, text})
}

func (n *fakeNotifier) Notes() []note {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]note(nil), n.notes...)
}

type infoPrompter struct{ infos []string }

func (p *infoPrompter) Entry(string, ...zenity.Option) (string, error) { return "", zenity.ErrCanceled }
func (p *infoPrompter) Info(text string, _ ...zenity.Option) error {
	p.infos = append(p.infos, text)
	return nil
}
func (p *infoPrompter) Error(string, ...zenity.Option) error { return nil }

type harness struct {
	app      *Application
	backend  *hotkeytest.Backend
	workflow *fakeWorkflow
	notifier *fakeNotifier
	prompter *infoPrompter
	store    *config.Store
}

func newHarness(t *testing.T, opts ...Option) *harness {
	t.Helper()
	h := &harness{
		backend:  hotkeytest.NewBackend(),
		workflow: &fakeWorkflow{},
		notifier: &fakeNotifier{},
		prompter: &infoPrompter{},
		store:    config.NewStore(config.WithConfigDir(filepath.Join(t.TempDir(), "cfg"))),
	}
	base := []Option{
		WithStore(h.store),
		WithBackend(h.backend),
		WithWorkflow(h.workflow),
		WithNotifier(h.notifier),
		WithPrompter(h.prompter),
	}
	a, err := New("v-test", append(base, opts...)...)
	require.NoError(t, err)
	t.Cleanup(a.shutdown)
	h.app = a
	return h
}

func TestNew_DefaultNotifier(t *testing.T) {
	a, err := New("v", WithBackend(hotkeytest.NewBackend()), WithWorkflow(&fakeWorkflow{}),
		WithStore(config.NewStore(config.WithConfigDir(t.TempDir()))))
	require.NoError(t, err)
	t.Cleanup(a.shutdown)
	assert.IsType(t, &ui.NotificationManager{}, a.notifier)
}

func hotkeyStatus(t *testing.T, a *Application) bridge.HotkeyStatus {
	t.Helper()
	resp := a.Bridge().Invoke(bridge.CmdHotkeyStatus, nil)
	require.True(t, resp.OK())
	var s bridge.HotkeyStatus
	require.NoError(t, json.Unmarshal(resp.Result, &s))
	return s
}

func TestNew_RejectsInvalidBinding(t *testing.T) {
	_, err := New("v", WithBackend(hotkeytest.NewBackend()), WithWorkflow(&fakeWorkflow{}),
		WithNotifier(&fakeNotifier{}), WithBinding("ctrl+"))
	assert.Error(t, err)
}

func TestSetupHotkey_Registered(t *testing.T) {
	h := newHarness(t)

	assert.Equal(t, bridge.HotkeyStatus{State: "unregistered", Binding: "ctrl+k"}, hotkeyStatus(t, h.app))

	h.app.setupHotkey()

	assert.True(t, h.backend.Registered("ctrl+k"))
	assert.Equal(t, bridge.HotkeyStatus{State: "registered", Binding: "ctrl+k"}, hotkeyStatus(t, h.app))
	assert.Equal(t, "Hotkey: Ctrl+K", h.app.hotkeyStatusText())
	assert.Empty(t, h.notifier.Notes())

	// Registration happens once per session.
	h.app.setupHotkey()
	assert.Equal(t, 1, h.backend.Registrations())
}

func TestSetupHotkey_FailureIsReported(t *testing.T) {
	h := newHarness(t)
	h.backend.FailRegister(errors.New("already grabbed by another program"))

	h.app.setupHotkey()

	status := hotkeyStatus(t, h.app)
	assert.Equal(t, "unregistered", status.State)
	assert.Equal(t, "ctrl+k", status.Binding)
	assert.Contains(t, status.Error, "already grabbed")
	assert.Equal(t, "Hotkey unavailable (Ctrl+K)", h.app.hotkeyStatusText())

	notes := h.notifier.Notes()
	require.Len(t, notes, 1)
	assert.Equal(t, ui.LevelWarn, notes[0].level)
	assert.Equal(t, "Hotkey Unavailable", notes[0].title)

	// No retry: the drain loop is never started.
	h.app.start()
	assert.Nil(t, h.app.drainDone)
}

func TestDrainHotkeys_TriggersWorkflowPerPress(t *testing.T) {
	h := newHarness(t)
	h.app.setupHotkey()
	h.app.start()

	for i := 0; i < 3; i++ {
		require.True(t, h.backend.Fire("ctrl+k"))
	}
	require.Eventually(t, func() bool { return h.workflow.Calls() == 3 }, 2*time.Second, 5*time.Millisecond)

	notes := h.notifier.Notes()
	require.Len(t, notes, 3)
	assert.Equal(t, "Clipboard Translated", notes[0].title)
	assert.Equal(t, "こんにちは", notes[0].text)
}

func TestShutdown_ReleasesHotkeyOnce(t *testing.T) {
	h := newHarness(t)
	h.app.setupHotkey()
	h.app.start()

	h.app.shutdown()
	h.app.shutdown()

	assert.False(t, h.backend.Registered("ctrl+k"))
	assert.False(t, h.backend.Fire("ctrl+k"))
	assert.Equal(t, "unregistered", hotkeyStatus(t, h.app).State)
}

func TestTranslateClipboard_Errors(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		level ui.NotificationLevel
		title string
	}{
		{"missing key", clipboard.ErrMissingAPIKey, ui.LevelWarn, "API Key Missing"},
		{"empty clipboard", clipboard.ErrEmptyClipboard, ui.LevelInfo, "Nothing to Translate"},
		{"api failure", errors.New("translation failed: 500"), ui.LevelError, "Translation Failed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.workflow.err = tt.err

			h.app.translateClipboard(context.Background())

			notes := h.notifier.Notes()
			require.Len(t, notes, 1)
			assert.Equal(t, tt.level, notes[0].level)
			assert.Equal(t, tt.title, notes[0].title)
		})
	}

	t.Run("canceled", func(t *testing.T) {
		h := newHarness(t)
		h.workflow.err = context.Canceled
		h.app.translateClipboard(context.Background())
		assert.Empty(t, h.notifier.Notes())
	})
}

func TestOnRevert(t *testing.T) {
	tests := []struct {
		name      string
		canRevert bool
		restored  bool
		want      []string
	}{
		{"nothing stored", false, false, []string{"Nothing to Revert"}},
		{"restore failed", true, false, nil},
		{"restored", true, true, []string{"Clipboard Reverted"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.workflow.canRevert = tt.canRevert
			h.workflow.restored = tt.restored
			h.app.onRevert()

			var titles []string
			for _, n := range h.notifier.Notes() {
				titles = append(titles, n.title)
			}
			assert.Equal(t, tt.want, titles)
		})
	}
}

func TestOnUsage(t *testing.T) {
	db, err := storage.Open(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, db.RecordTranslation(context.Background(), &storage.Translation{
		Model: "m", InputTokens: 100, OutputTokens: 50, CostUSD: 0.5, Success: true,
	}))

	h := newHarness(t, WithLedger(db))
	h.app.onUsage()

	require.Len(t, h.prompter.infos, 1)
	assert.Contains(t, h.prompter.infos[0], "Today: 1 translation(s)")
	assert.Contains(t, h.prompter.infos[0], "100 input / 50 output tokens, $0.5000")
	assert.Contains(t, h.prompter.infos[0], "Last translation: ")
	assert.Contains(t, h.prompter.infos[0], "with m")
}

func TestUsageReport_LastTranslation(t *testing.T) {
	ctx := context.Background()
	db, err := storage.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	now := time.Date(2026, 10, 15, 18, 30, 0, 0, time.Local)
	report, err := usageReport(ctx, db, now)
	require.NoError(t, err)
	assert.NotContains(t, report, "Last translation")

	require.NoError(t, db.RecordTranslation(ctx, &storage.Translation{
		CreatedAt: now.Add(-time.Hour), Model: "old", Success: true,
	}))
	require.NoError(t, db.RecordTranslation(ctx, &storage.Translation{
		CreatedAt: now, Model: "new", ErrorMessage: "overloaded",
	}))

	report, err = usageReport(ctx, db, now)
	require.NoError(t, err)
	assert.Contains(t, report, "Last translation: 2026-10-15 18:30 with new (failed: overloaded)")
	assert.Contains(t, report, "Today: 2 translation(s), 1 failed")
}

func TestQuitOn(t *testing.T) {
	t.Run("signal", func(t *testing.T) {
		h := newHarness(t)
		sig := make(chan os.Signal, 1)
		quit := make(chan struct{})
		go h.app.quitOn(sig, func() { close(quit) })

		sig <- os.Interrupt
		select {
		case <-quit:
		case <-time.After(2 * time.Second):
			t.Fatal("quit was not called")
		}
	})

	t.Run("shutdown first", func(t *testing.T) {
		h := newHarness(t)
		h.app.shutdown()
		h.app.quitOn(make(chan os.Signal), func() { t.Error("quit called after shutdown") })
	})
}

func TestUsagePeriods(t *testing.T) {
	now := time.Date(2026, 10, 15, 18, 30, 0, 0, time.UTC)
	p := usagePeriods(now)

	require.Len(t, p, 3)
	assert.Equal(t, time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC), p[0].since)
	assert.Equal(t, time.Date(2026, 9, 16, 0, 0, 0, 0, time.UTC), p[1].since)
	assert.True(t, p[2].since.IsZero())
}

func TestSettingsCanceledShowsNothing(t *testing.T) {
	h := newHarness(t)
	h.app.onSettings()
	assert.Empty(t, h.notifier.Notes())
}

func TestDisplayBinding(t *testing.T) {
	assert.Equal(t, "Ctrl+K", displayBinding("ctrl+k"))
	assert.Equal(t, "Ctrl+Shift+F5", displayBinding("ctrl+shift+f5"))
}
