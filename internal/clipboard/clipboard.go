// Package clipboard runs the translate-the-clipboard workflow.
package clipboard

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/atotto/clipboard"

	"github.com/techtalk/clip-translator/internal/config"
	"github.com/techtalk/clip-translator/internal/storage"
	"github.com/techtalk/clip-translator/internal/translate"
)

var (
	// ErrMissingAPIKey means no API key has been saved yet.
	ErrMissingAPIKey = errors.New("no Anthropic API key configured")
	// ErrEmptyClipboard means there is no text to translate.
	ErrEmptyClipboard = errors.New("clipboard contains no text")
)

// ConfigLoader supplies the saved settings.
type ConfigLoader interface {
	Load() (config.AppConfig, bool)
}

// Translator turns text into its translation.
type Translator interface {
	Translate(ctx context.Context, apiKey, systemPrompt, text string) (*translate.Result, error)
}

// UsageRecorder stores what each translation cost.
type UsageRecorder interface {
	RecordTranslation(ctx context.Context, t *storage.Translation) error
}

// Outcome describes one completed translation of the clipboard.
type Outcome struct {
	Original   string
	Translated string
	Result     *translate.Result
}

// Manager reads the clipboard, translates it with the saved settings and
// writes the translation back, keeping the original for Revert.
type Manager struct {
	mu sync.Mutex

	settings   ConfigLoader
	translator Translator
	usage      UsageRecorder
	read       func() (string, error)
	write      func(string) error
	now        func() time.Time

	previousClipboard        string
	lastTransformedClipboard string

	onRevertStatusChange func(bool)
}

// Option configures a Manager.
type Option func(*Manager)

// WithClipboardFuncs replaces the system clipboard.
func WithClipboardFuncs(read func() (string, error), write func(string) error) Option {
	return func(m *Manager) {
		m.read = read
		m.write = write
	}
}

// WithUsageRecorder records every API call.
func WithUsageRecorder(u UsageRecorder) Option {
	return func(m *Manager) { m.usage = u }
}

// WithRevertStatusCallback is told whether Revert has something to restore.
func WithRevertStatusCallback(fn func(bool)) Option {
	return func(m *Manager) { m.onRevertStatusChange = fn }
}

// NewManager creates a clipboard manager.
func NewManager(settings ConfigLoader, translator Translator, opts ...Option) *Manager {
	m := &Manager{
		settings:   settings,
		translator: translator,
		read:       clipboard.ReadAll,
		write:      clipboard.WriteAll,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// ProcessClipboard translates the current clipboard text and replaces it with
// the translation. Settings are loaded fresh on every call. Calls are
// serialized so hotkey presses are handled one at a time.
func (m *Manager) ProcessClipboard(ctx context.Context) (*Outcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cfg, ok := m.settings.Load()
	if !ok || strings.TrimSpace(cfg.AnthropicAPIKey) == "" {
		return nil, ErrMissingAPIKey
	}

	origText, err := m.read()
	if err != nil {
		return nil, fmt.Errorf("failed to read clipboard: %w", err)
	}
	if strings.TrimSpace(origText) == "" {
		return nil, ErrEmptyClipboard
	}

	start := m.now()
	res, err := m.translator.Translate(ctx, cfg.AnthropicAPIKey, cfg.SystemPrompt, origText)
	m.record(ctx, origText, res, start, err)
	if err != nil {
		return nil, fmt.Errorf("translation failed: %w", err)
	}

	if err := m.write(res.Text); err != nil {
		return nil, fmt.Errorf("failed to write clipboard: %w", err)
	}

	// Translating our own output again keeps the first original for Revert.
	if m.previousClipboard == "" || origText != m.lastTransformedClipboard {
		m.previousClipboard = origText
	}
	m.lastTransformedClipboard = res.Text
	m.notifyRevert(true)

	log.Printf("Clipboard: replaced %d characters with %d translated characters",
		utf8.RuneCountInString(origText), utf8.RuneCountInString(res.Text))
	return &Outcome{Original: origText, Translated: res.Text, Result: res}, nil
}

func (m *Manager) record(ctx context.Context, source string, res *translate.Result, start time.Time, callErr error) {
	if m.usage == nil {
		return
	}
	t := &storage.Translation{
		CreatedAt:   start,
		SourceChars: utf8.RuneCountInString(source),
		Latency:     m.now().Sub(start),
		Success:     callErr == nil,
	}
	if res != nil {
		t.Model = res.Model
		t.InputTokens = res.InputTokens
		t.OutputTokens = res.OutputTokens
		t.CostUSD = res.CostUSD
		t.ResultChars = utf8.RuneCountInString(res.Text)
	}
	if callErr != nil {
		t.ErrorMessage = callErr.Error()
	}
	if err := m.usage.RecordTranslation(ctx, t); err != nil {
		log.Printf("Clipboard: failed to record usage: %v", err)
	}
}

// CanRevert reports whether an original is stored.
func (m *Manager) CanRevert() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.previousClipboard != ""
}

// RestoreOriginalClipboard puts the text that was translated last back on
// the clipboard.
func (m *Manager) RestoreOriginalClipboard() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.previousClipboard == "" {
		log.Println("No original clipboard content available to restore.")
		return false
	}
	if err := m.write(m.previousClipboard); err != nil {
		log.Printf("Failed to restore original clipboard: %v", err)
		return false
	}

	log.Println("Original clipboard content restored.")
	m.lastTransformedClipboard = m.previousClipboard
	m.previousClipboard = ""
	m.notifyRevert(false)
	return true
}

func (m *Manager) notifyRevert(enabled bool) {
	if m.onRevertStatusChange != nil {
		m.onRevertStatusChange(enabled)
	}
}
