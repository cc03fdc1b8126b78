package ui

import (
	"log"
	"strings"
	"unicode/utf8"
)

// NotificationLevel orders administrative notifications by severity.
type NotificationLevel int

const (
	LevelInfo NotificationLevel = iota
	LevelWarn
	LevelError
)

func (l NotificationLevel) String() string {
	switch l {
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "INFO"
	}
}

// maxPreviewRunes bounds how much translated text goes into a notification.
const maxPreviewRunes = 200

// NotificationManager shows desktop notifications.
type NotificationManager struct {
	appName      string
	embeddedIcon []byte
	minLevel     NotificationLevel
	notify       func(title, message string) error
}

// NotificationOption configures a NotificationManager.
type NotificationOption func(*NotificationManager)

// WithMinLevel hides administrative notifications below level.
func WithMinLevel(level NotificationLevel) NotificationOption {
	return func(n *NotificationManager) { n.minLevel = level }
}

// WithNotifier replaces the platform notifier.
func WithNotifier(fn func(title, message string) error) NotificationOption {
	return func(n *NotificationManager) { n.notify = fn }
}

// NewNotificationManager creates a notification manager.
func NewNotificationManager(appName string, embeddedIcon []byte, opts ...NotificationOption) *NotificationManager {
	n := &NotificationManager{
		appName:      appName,
		embeddedIcon: embeddedIcon,
	}
	n.notify = n.platformNotify
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// ShowAdminNotification reports application state such as settings saved,
// hotkey failures and errors.
func (n *NotificationManager) ShowAdminNotification(level NotificationLevel, title, message string) {
	if level < n.minLevel {
		log.Printf("Notification suppressed (%s < %s): %s - %s", level, n.minLevel, title, message)
		return
	}
	n.send(title, message)
}

// ShowTranslationNotification shows the result of a translation, shortened
// to a preview.
func (n *NotificationManager) ShowTranslationNotification(title, text string) {
	n.send(title, preview(text))
}

func (n *NotificationManager) send(title, message string) {
	if err := n.notify(title, message); err != nil {
		log.Printf("Error showing notification: %v", err)
	}
}

func preview(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	if utf8.RuneCountInString(text) <= maxPreviewRunes {
		return text
	}
	runes := []rune(text)
	return string(runes[:maxPreviewRunes-1]) + "…"
}
