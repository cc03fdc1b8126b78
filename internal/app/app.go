// Package app wires settings, the command bridge, the global hotkey and the
// clipboard workflow into the tray application.
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/techtalk/clip-translator/internal/bridge"
	"github.com/techtalk/clip-translator/internal/clipboard"
	"github.com/techtalk/clip-translator/internal/config"
	"github.com/techtalk/clip-translator/internal/hotkey"
	"github.com/techtalk/clip-translator/internal/resources"
	"github.com/techtalk/clip-translator/internal/storage"
	"github.com/techtalk/clip-translator/internal/translate"
	"github.com/techtalk/clip-translator/internal/ui"
)

// AppName is shown in the tray, dialogs and notifications.
const AppName = "Clip Translator"

// Workflow is the clipboard translation run on every hotkey press.
type Workflow interface {
	ProcessClipboard(ctx context.Context) (*clipboard.Outcome, error)
	CanRevert() bool
	RestoreOriginalClipboard() bool
}

// Notifier shows desktop notifications.
type Notifier interface {
	ShowAdminNotification(level ui.NotificationLevel, title, message string)
	ShowTranslationNotification(title, text string)
}

// Application represents the main application
type Application struct {
	version    string
	store      *config.Store
	bridge     *bridge.Bridge
	binding    string
	backend    hotkey.Backend
	newLegacy  func() hotkey.Backend
	backendErr error
	workflow   Workflow
	ledger     *storage.DB
	notifier   Notifier
	prompter   ui.Prompter
	systray    *ui.SystrayManager
	iconData   []byte

	ctx    context.Context
	cancel context.CancelFunc

	mu        sync.Mutex
	listener  *hotkey.Listener
	status    hotkey.Status
	drainDone chan struct{}
	closeOnce sync.Once
}

// Option configures an Application.
type Option func(*Application)

// WithStore sets where settings are kept.
func WithStore(store *config.Store) Option {
	return func(a *Application) { a.store = store }
}

// WithBackend sets the hotkey backend instead of detecting one.
func WithBackend(backend hotkey.Backend) Option {
	return func(a *Application) { a.backend = backend }
}

// WithLegacyBackend sets the constructor used for Windows, macOS and X11
// sessions when no backend is given.
func WithLegacyBackend(newLegacy func() hotkey.Backend) Option {
	return func(a *Application) { a.newLegacy = newLegacy }
}

// WithBinding overrides the global hotkey.
func WithBinding(binding string) Option {
	return func(a *Application) { a.binding = binding }
}

// WithWorkflow replaces the clipboard workflow.
func WithWorkflow(w Workflow) Option {
	return func(a *Application) { a.workflow = w }
}

// WithLedger sets the usage ledger.
func WithLedger(db *storage.DB) Option {
	return func(a *Application) { a.ledger = db }
}

// WithNotifier replaces desktop notifications.
func WithNotifier(n Notifier) Option {
	return func(a *Application) { a.notifier = n }
}

// WithPrompter replaces the dialog implementation.
func WithPrompter(p ui.Prompter) Option {
	return func(a *Application) { a.prompter = p }
}

// New creates a new application instance
func New(version string, opts ...Option) (*Application, error) {
	a := &Application{
		version: version,
		binding: hotkey.DefaultBinding,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.ctx, a.cancel = context.WithCancel(context.Background())

	binding, err := hotkey.ParseBinding(a.binding)
	if err != nil {
		return nil, fmt.Errorf("invalid hotkey: %w", err)
	}
	a.binding = binding.String()
	a.status = hotkey.Status{State: hotkey.StateUnregistered, Binding: a.binding}

	if a.store == nil {
		a.store = config.NewStore()
	}
	if a.backend == nil {
		a.backend, a.backendErr = hotkey.SelectBackend(a.newLegacy)
	}

	a.iconData, err = resources.GetIcon()
	if err != nil {
		log.Printf("Warning: Failed to load icon: %v", err)
	}
	if a.notifier == nil {
		a.notifier = ui.NewNotificationManager(AppName, a.iconData)
	}
	if a.prompter == nil {
		a.prompter = ui.ZenityPrompter()
	}

	if a.ledger == nil {
		a.ledger = openLedger(a.store)
	}
	if a.workflow == nil {
		cbOpts := []clipboard.Option{clipboard.WithRevertStatusCallback(a.onRevertStatusChange)}
		if a.ledger != nil {
			cbOpts = append(cbOpts, clipboard.WithUsageRecorder(a.ledger))
		}
		client := translate.NewClient()
		log.Printf("Translating with %s", client.Model())
		a.workflow = clipboard.NewManager(a.store, client, cbOpts...)
	}

	a.bridge = bridge.New(a.store, bridge.WithHotkeyStatus(a.HotkeyStatus))
	a.systray = ui.NewSystrayManager(AppName, version, a.iconData, ui.MenuCallbacks{
		OnSettings:      a.onSettings,
		OnTranslateNow:  func() { a.translateClipboard(a.ctx) },
		OnRevert:        a.onRevert,
		OnUsage:         a.onUsage,
		OnOpenConfigDir: a.onOpenConfigDir,
		OnQuit:          func() { log.Println("Quit requested.") },
	})

	return a, nil
}

func openLedger(store *config.Store) *storage.DB {
	dir, err := store.Dir()
	if err != nil {
		log.Printf("Usage ledger disabled: %v", err)
		return nil
	}
	db, err := storage.Open(dir)
	if err != nil {
		log.Printf("Usage ledger disabled: %v", err)
		return nil
	}
	return db
}

// Bridge returns the command bridge.
func (a *Application) Bridge() *bridge.Bridge {
	return a.bridge
}

// HotkeyStatus reports the state of the global hotkey.
func (a *Application) HotkeyStatus() hotkey.Status {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.status
}

// Run registers the hotkey and blocks in the tray loop until Quit.
func (a *Application) Run() {
	a.setupHotkey()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sig)
	go a.quitOn(sig, a.systray.Quit)

	a.systray.Run(a.start, a.shutdown)
}

// quitOn calls quit when a signal arrives before the application shuts down.
func (a *Application) quitOn(sig <-chan os.Signal, quit func()) {
	select {
	case s := <-sig:
		log.Printf("Received %v, quitting.", s)
		quit()
	case <-a.ctx.Done():
	}
}

// setupHotkey registers the binding once. A failure leaves the hotkey
// unregistered for the rest of the session and is reported to the user.
func (a *Application) setupHotkey() {
	if err := a.registerHotkey(); err != nil {
		log.Printf("Warning: Hotkey %s could not be registered: %v", a.binding, err)
		a.notifier.ShowAdminNotification(ui.LevelWarn, "Hotkey Unavailable",
			fmt.Sprintf("%s could not be registered: %v. Use the tray menu to translate.", displayBinding(a.binding), err))
	}
	a.systray.SetHotkeyStatus(a.hotkeyStatusText())
}

func (a *Application) registerHotkey() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.listener != nil {
		return nil
	}
	if a.backendErr != nil {
		a.status.Err = a.backendErr
		return a.backendErr
	}

	binding, err := hotkey.ParseBinding(a.binding)
	if err != nil {
		a.status.Err = err
		return err
	}
	l, err := hotkey.Listen(a.backend, binding)
	if err != nil {
		a.status.Err = err
		return err
	}
	a.listener = l
	a.status = hotkey.Status{State: hotkey.StateRegistered, Binding: l.Binding().String()}
	return nil
}

func (a *Application) hotkeyStatusText() string {
	s := a.HotkeyStatus()
	if s.State == hotkey.StateRegistered {
		return "Hotkey: " + displayBinding(s.Binding)
	}
	return "Hotkey unavailable (" + displayBinding(s.Binding) + ")"
}

// displayBinding turns "ctrl+k" into "Ctrl+K".
func displayBinding(binding string) string {
	parts := strings.Split(binding, "+")
	for i, p := range parts {
		if p != "" {
			parts[i] = strings.ToUpper(p[:1]) + p[1:]
		}
	}
	return strings.Join(parts, "+")
}

// start runs once the tray loop is up.
func (a *Application) start() {
	a.mu.Lock()
	l := a.listener
	if l == nil || a.drainDone != nil {
		a.mu.Unlock()
		return
	}
	a.drainDone = make(chan struct{})
	done := a.drainDone
	a.mu.Unlock()

	go func() {
		defer close(done)
		a.drainHotkeys(a.ctx, l)
	}()
}

// drainHotkeys handles activations one at a time, oldest first, until the
// listener is closed or ctx ends.
func (a *Application) drainHotkeys(ctx context.Context, l *hotkey.Listener) {
	events := l.Events()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			log.Printf("Hotkey %s pressed at %s", ev.Binding, ev.Time.Format("15:04:05.000"))
			a.translateClipboard(ctx)
		}
	}
}

func (a *Application) translateClipboard(ctx context.Context) {
	out, err := a.workflow.ProcessClipboard(ctx)
	switch {
	case err == nil:
		a.notifier.ShowTranslationNotification("Clipboard Translated", out.Translated)
	case errors.Is(err, clipboard.ErrMissingAPIKey):
		a.notifier.ShowAdminNotification(ui.LevelWarn, "API Key Missing",
			"Add your Anthropic API key under Settings… in the tray menu.")
	case errors.Is(err, clipboard.ErrEmptyClipboard):
		a.notifier.ShowAdminNotification(ui.LevelInfo, "Nothing to Translate", "The clipboard contains no text.")
	case errors.Is(err, context.Canceled):
		log.Println("Translation canceled during shutdown.")
	default:
		log.Printf("Translation failed: %v", err)
		a.notifier.ShowAdminNotification(ui.LevelError, "Translation Failed", err.Error())
	}
}

// shutdown releases the hotkey and the ledger. Only the first call has an
// effect.
func (a *Application) shutdown() {
	a.closeOnce.Do(func() {
		a.cancel()

		a.mu.Lock()
		l, done := a.listener, a.drainDone
		a.listener = nil
		a.status = hotkey.Status{State: hotkey.StateUnregistered, Binding: a.binding}
		a.mu.Unlock()

		if l != nil {
			if err := l.Close(); err != nil {
				log.Printf("Error releasing hotkey: %v", err)
			}
		}
		if done != nil {
			<-done
		}
		if a.backend != nil {
			if err := a.backend.UnregisterAll(); err != nil {
				log.Printf("Error unregistering hotkeys: %v", err)
			}
		}
		if a.ledger != nil {
			if err := a.ledger.Close(); err != nil {
				log.Printf("Error closing usage ledger: %v", err)
			}
		}
		log.Println("Shutdown complete.")
	})
}

func (a *Application) onRevertStatusChange(canRevert bool) {
	if a.systray != nil {
		a.systray.UpdateRevertStatus(canRevert)
	}
}

func (a *Application) onRevert() {
	if !a.workflow.CanRevert() {
		a.notifier.ShowAdminNotification(ui.LevelInfo, "Nothing to Revert", "No translation has replaced the clipboard yet.")
		return
	}
	if a.workflow.RestoreOriginalClipboard() {
		a.notifier.ShowAdminNotification(ui.LevelInfo, "Clipboard Reverted", "Original clipboard content has been restored.")
	}
}

func (a *Application) onSettings() {
	err := ui.NewSettingsDialog(AppName, a.bridge, a.prompter).Run()
	switch {
	case err == nil:
		a.notifier.ShowAdminNotification(ui.LevelInfo, "Settings Saved", "New settings apply to the next translation.")
	case errors.Is(err, ui.ErrCanceled):
	default:
		log.Printf("Settings dialog failed: %v", err)
	}
}

func (a *Application) onOpenConfigDir() {
	dir, err := a.store.Dir()
	if err == nil {
		err = os.MkdirAll(dir, 0o700)
	}
	if err == nil {
		err = ui.OpenInDefaultApp(dir)
	}
	if err != nil {
		log.Printf("Could not open config folder: %v", err)
		a.notifier.ShowAdminNotification(ui.LevelWarn, "Error Opening Folder", err.Error())
	}
}
