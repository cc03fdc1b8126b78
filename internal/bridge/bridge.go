// Package bridge exposes native operations to the UI layer as named,
// synchronous request/response commands.
package bridge

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"

	"github.com/techtalk/clip-translator/internal/config"
	"github.com/techtalk/clip-translator/internal/hotkey"
)

// Command names understood by Invoke.
const (
	CmdLoadAppConfig = "load_app_config"
	CmdSaveAppConfig = "save_app_config"
	CmdHotkeyStatus  = "hotkey_status"
)

var jsonNull = json.RawMessage("null")

// ConfigStore is the persistence the bridge forwards to.
type ConfigStore interface {
	Load() (config.AppConfig, bool)
	Save(config.AppConfig) error
}

// Response is the result of Invoke as seen by the UI. Exactly one of Result
// and Error is meaningful; a successful command without payload has neither.
type Response struct {
	Result json.RawMessage `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// OK reports whether the command succeeded.
func (r Response) OK() bool {
	return r.Error == ""
}

// PayloadError reports a command payload that does not match the schema.
type PayloadError struct {
	Command string
	Reason  string
}

func (e *PayloadError) Error() string {
	return fmt.Sprintf("invalid %s payload: %s", e.Command, e.Reason)
}

// HotkeyStatus is the JSON shape of the hotkey_status result.
type HotkeyStatus struct {
	State   string `json:"state"`
	Binding string `json:"binding"`
	Error   string `json:"error,omitempty"`
}

type handlerFunc func(payload json.RawMessage) (json.RawMessage, error)

// Bridge dispatches commands to native handlers. It holds no copy of the
// settings; every command goes to the store.
type Bridge struct {
	store        ConfigStore
	hotkeyStatus func() hotkey.Status
	handlers     map[string]handlerFunc
}

// Option configures a Bridge.
type Option func(*Bridge)

// WithHotkeyStatus sets where hotkey_status reads the subsystem state from.
func WithHotkeyStatus(fn func() hotkey.Status) Option {
	return func(b *Bridge) { b.hotkeyStatus = fn }
}

// New creates a bridge over store.
func New(store ConfigStore, opts ...Option) *Bridge {
	b := &Bridge{store: store}
	for _, opt := range opts {
		opt(b)
	}
	b.handlers = map[string]handlerFunc{
		CmdLoadAppConfig: func(json.RawMessage) (json.RawMessage, error) {
			return b.LoadConfig(), nil
		},
		CmdSaveAppConfig: func(payload json.RawMessage) (json.RawMessage, error) {
			return nil, b.SaveConfig(payload)
		},
		CmdHotkeyStatus: func(json.RawMessage) (json.RawMessage, error) {
			return b.HotkeyStatus(), nil
		},
	}
	return b
}

// Invoke runs the named command. Every failure, including an unknown
// command, is returned as Response.Error.
func (b *Bridge) Invoke(name string, payload json.RawMessage) Response {
	handler, ok := b.handlers[name]
	if !ok {
		return Response{Error: fmt.Sprintf("unknown command: %s", name)}
	}
	result, err := handler(payload)
	if err != nil {
		log.Printf("Bridge: %s failed: %v", name, err)
		return Response{Error: err.Error()}
	}
	return Response{Result: result}
}

// LoadConfig returns the saved settings as JSON, or null when nothing usable
// has been saved.
func (b *Bridge) LoadConfig() json.RawMessage {
	cfg, ok := b.store.Load()
	if !ok {
		return jsonNull
	}
	data, err := json.Marshal(cfg)
	if err != nil {
		log.Printf("Bridge: cannot encode settings: %v", err)
		return jsonNull
	}
	return data
}

// SaveConfig validates payload as a complete settings record and saves it.
// Validation failures are *PayloadError.
func (b *Bridge) SaveConfig(payload json.RawMessage) error {
	cfg, err := decodeAppConfig(payload)
	if err != nil {
		return err
	}
	if err := b.store.Save(cfg); err != nil {
		return fmt.Errorf("could not save settings: %w", err)
	}
	return nil
}

// HotkeyStatus reports whether the global hotkey is active and, if not, why.
func (b *Bridge) HotkeyStatus() json.RawMessage {
	status := HotkeyStatus{State: hotkey.StateUnregistered.String()}
	if b.hotkeyStatus != nil {
		s := b.hotkeyStatus()
		status.State = s.State.String()
		status.Binding = s.Binding
		if s.Err != nil {
			status.Error = s.Err.Error()
		}
	}
	data, _ := json.Marshal(status)
	return data
}

func decodeAppConfig(payload json.RawMessage) (config.AppConfig, error) {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return config.AppConfig{}, &PayloadError{Command: CmdSaveAppConfig, Reason: "expected a JSON object"}
	}

	var fields struct {
		AnthropicAPIKey *string `json:"anthropicApiKey"`
		SystemPrompt    *string `json:"systemPrompt"`
	}
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return config.AppConfig{}, &PayloadError{Command: CmdSaveAppConfig, Reason: err.Error()}
	}
	if fields.AnthropicAPIKey == nil {
		return config.AppConfig{}, &PayloadError{Command: CmdSaveAppConfig, Reason: `missing field "anthropicApiKey"`}
	}
	if fields.SystemPrompt == nil {
		return config.AppConfig{}, &PayloadError{Command: CmdSaveAppConfig, Reason: `missing field "systemPrompt"`}
	}

	return config.AppConfig{
		AnthropicAPIKey: *fields.AnthropicAPIKey,
		SystemPrompt:    *fields.SystemPrompt,
	}, nil
}
