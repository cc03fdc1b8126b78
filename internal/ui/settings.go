package ui

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/ncruces/zenity"

	"github.com/techtalk/clip-translator/internal/bridge"
	"github.com/techtalk/clip-translator/internal/config"
)

// ErrCanceled is returned when the user dismisses a dialog.
var ErrCanceled = errors.New("dialog canceled")

// Invoker runs bridge commands.
type Invoker interface {
	Invoke(name string, payload json.RawMessage) bridge.Response
}

// Prompter shows modal dialogs.
type Prompter interface {
	Entry(text string, options ...zenity.Option) (string, error)
	Info(text string, options ...zenity.Option) error
	Error(text string, options ...zenity.Option) error
}

type zenityPrompter struct{}

func (zenityPrompter) Entry(text string, options ...zenity.Option) (string, error) {
	return zenity.Entry(text, options...)
}

func (zenityPrompter) Info(text string, options ...zenity.Option) error {
	return zenity.Info(text, options...)
}

func (zenityPrompter) Error(text string, options ...zenity.Option) error {
	return zenity.Error(text, options...)
}

// ZenityPrompter returns the Prompter backed by native dialogs.
func ZenityPrompter() Prompter {
	return zenityPrompter{}
}

// SettingsDialog edits the settings through the command bridge, the same
// way any other front end would.
type SettingsDialog struct {
	appName  string
	invoker  Invoker
	prompter Prompter
}

// NewSettingsDialog creates a settings dialog.
func NewSettingsDialog(appName string, invoker Invoker, prompter Prompter) *SettingsDialog {
	return &SettingsDialog{appName: appName, invoker: invoker, prompter: prompter}
}

// Run loads the current settings, lets the user edit them and saves the
// result. It returns ErrCanceled if the user backs out.
func (d *SettingsDialog) Run() error {
	current, err := d.load()
	if err != nil {
		d.showError(err.Error())
		return err
	}

	keyPrompt := "Anthropic API key:"
	if current.AnthropicAPIKey != "" {
		keyPrompt = "Anthropic API key (leave empty to keep the saved key):"
	}
	key, err := d.prompter.Entry(keyPrompt,
		zenity.Title(d.appName+" - Settings"),
		zenity.HideText(),
	)
	if err != nil {
		return d.dialogErr("API key entry", err)
	}
	key = strings.TrimSpace(key)
	if key == "" {
		key = current.AnthropicAPIKey
	}

	prompt, err := d.prompter.Entry("System prompt sent with every translation ("+lineBreakMark+" is a line break):",
		zenity.Title(d.appName+" - Settings"),
		zenity.EntryText(flattenPrompt(current.SystemPrompt)),
	)
	if err != nil {
		return d.dialogErr("system prompt entry", err)
	}
	prompt = restorePrompt(prompt)

	payload, err := json.Marshal(config.AppConfig{AnthropicAPIKey: key, SystemPrompt: prompt})
	if err != nil {
		return err
	}
	resp := d.invoker.Invoke(bridge.CmdSaveAppConfig, payload)
	if !resp.OK() {
		d.showError("Settings were not saved: " + resp.Error)
		return errors.New(resp.Error)
	}

	log.Println("Settings saved through the command bridge.")
	return nil
}

// lineBreakMark stands in for line breaks in the single-line prompt entry.
const lineBreakMark = "⏎"

func flattenPrompt(prompt string) string {
	prompt = strings.ReplaceAll(prompt, "\r\n", "\n")
	return strings.ReplaceAll(prompt, "\n", lineBreakMark)
}

func restorePrompt(entry string) string {
	return strings.ReplaceAll(entry, lineBreakMark, "\n")
}

func (d *SettingsDialog) load() (config.AppConfig, error) {
	resp := d.invoker.Invoke(bridge.CmdLoadAppConfig, nil)
	if !resp.OK() {
		return config.AppConfig{}, fmt.Errorf("could not load settings: %s", resp.Error)
	}

	cfg := config.AppConfig{SystemPrompt: config.DefaultSystemPrompt}
	if len(resp.Result) == 0 || string(resp.Result) == "null" {
		log.Println("No saved settings, starting from defaults.")
		return cfg, nil
	}
	if err := json.Unmarshal(resp.Result, &cfg); err != nil {
		return config.AppConfig{}, fmt.Errorf("could not read settings: %w", err)
	}
	return cfg, nil
}

func (d *SettingsDialog) dialogErr(step string, err error) error {
	if errors.Is(err, zenity.ErrCanceled) {
		log.Printf("Settings canceled by user (%s).", step)
		return ErrCanceled
	}
	log.Printf("Error during %s: %v", step, err)
	return fmt.Errorf("%s: %w", step, err)
}

func (d *SettingsDialog) showError(text string) {
	if err := d.prompter.Error(text, zenity.Title(d.appName+" - Settings")); err != nil {
		log.Printf("Error showing error dialog: %v", err)
	}
}
