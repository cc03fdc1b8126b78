package ui

import (
	"fmt"
	"log"
	"sync"

	"github.com/getlantern/systray"
)

// MenuCallbacks are invoked from the tray menu. Nil callbacks leave their
// item inert.
type MenuCallbacks struct {
	OnSettings      func()
	OnTranslateNow  func()
	OnRevert        func()
	OnUsage         func()
	OnOpenConfigDir func()
	OnQuit          func()
}

// SystrayManager owns the system tray icon and menu. Its Run is the UI
// event loop of the process.
type SystrayManager struct {
	appName      string
	version      string
	embeddedIcon []byte
	callbacks    MenuCallbacks

	mu           sync.Mutex
	hotkeyStatus string
	canRevert    bool
	miHotkey     *systray.MenuItem
	miRevert     *systray.MenuItem
}

// NewSystrayManager creates a system tray manager.
func NewSystrayManager(appName, version string, embeddedIcon []byte, callbacks MenuCallbacks) *SystrayManager {
	return &SystrayManager{
		appName:      appName,
		version:      version,
		embeddedIcon: embeddedIcon,
		callbacks:    callbacks,
	}
}

// Run builds the menu and blocks until Quit. onStart runs once the tray is
// ready; onStop runs when the loop ends.
func (s *SystrayManager) Run(onStart, onStop func()) {
	systray.Run(func() {
		s.onReady()
		if onStart != nil {
			onStart()
		}
	}, func() {
		log.Println("Systray exiting.")
		if onStop != nil {
			onStop()
		}
	})
}

// Quit ends the tray loop.
func (s *SystrayManager) Quit() {
	systray.Quit()
}

// SetHotkeyStatus updates the hotkey line of the menu. It may be called
// before the tray is ready.
func (s *SystrayManager) SetHotkeyStatus(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hotkeyStatus = text
	if s.miHotkey != nil {
		s.miHotkey.SetTitle(text)
	}
}

// UpdateRevertStatus enables or disables "Revert to Original".
func (s *SystrayManager) UpdateRevertStatus(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.canRevert = enabled
	s.applyRevertStatus()
}

func (s *SystrayManager) applyRevertStatus() {
	if s.miRevert == nil {
		return
	}
	if s.canRevert {
		s.miRevert.Enable()
	} else {
		s.miRevert.Disable()
	}
}

func (s *SystrayManager) onReady() {
	title := fmt.Sprintf("%s %s", s.appName, s.version)
	systray.SetTitle(s.appName)
	systray.SetTooltip(title)
	if len(s.embeddedIcon) > 0 {
		systray.SetIcon(s.embeddedIcon)
	} else {
		log.Println("Warning: No icon data to set for systray.")
	}

	miVersion := systray.AddMenuItem(fmt.Sprintf("Version: %s", s.version), title)
	miVersion.Disable()

	s.mu.Lock()
	s.miHotkey = systray.AddMenuItem(s.hotkeyStatus, "Global translation hotkey")
	s.miHotkey.Disable()
	s.mu.Unlock()
	systray.AddSeparator()

	miSettings := systray.AddMenuItem("Settings…", "Edit the API key and system prompt")
	miTranslate := systray.AddMenuItem("Translate Clipboard Now", "Translate the clipboard text")

	s.mu.Lock()
	s.miRevert = systray.AddMenuItem("Revert to Original", "Put the untranslated text back on the clipboard")
	s.applyRevertStatus()
	s.mu.Unlock()

	systray.AddSeparator()
	miUsage := systray.AddMenuItem("Usage…", "Show token usage and cost")
	miOpenConfig := systray.AddMenuItem("Open Config Folder", "Open the folder holding the settings file")
	systray.AddSeparator()
	miQuit := systray.AddMenuItem("Quit", "Exit the application")

	s.handle(miSettings, "Settings", s.callbacks.OnSettings)
	s.handle(miTranslate, "Translate Clipboard Now", s.callbacks.OnTranslateNow)
	s.handle(s.miRevert, "Revert to Original", s.callbacks.OnRevert)
	s.handle(miUsage, "Usage", s.callbacks.OnUsage)
	s.handle(miOpenConfig, "Open Config Folder", s.callbacks.OnOpenConfigDir)

	go func() {
		<-miQuit.ClickedCh
		log.Println("Quit menu item clicked.")
		if s.callbacks.OnQuit != nil {
			s.callbacks.OnQuit()
		}
		systray.Quit()
	}()

	log.Println("Systray ready and menu configured.")
}

func (s *SystrayManager) handle(item *systray.MenuItem, name string, fn func()) {
	if fn == nil {
		return
	}
	go func() {
		for range item.ClickedCh {
			log.Printf("%s menu item clicked.", name)
			fn()
		}
	}()
}
