//go:build windows

package ui

import (
	"fmt"
	"log"

	"golang.org/x/sys/windows"
)

// OpenInDefaultApp opens a file or folder with ShellExecute "open".
func OpenInDefaultApp(path string) error {
	verb, err := windows.UTF16PtrFromString("open")
	if err != nil {
		return err
	}
	file, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return fmt.Errorf("invalid path %q: %w", path, err)
	}

	log.Printf("Opening %s with ShellExecute", path)
	if err := windows.ShellExecute(0, verb, file, nil, nil, windows.SW_SHOWNORMAL); err != nil {
		return fmt.Errorf("ShellExecute failed for %s: %w", path, err)
	}
	return nil
}
