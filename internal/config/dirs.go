package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// Application identity used to locate the per-user configuration directory.
const (
	Qualifier    = "jp"
	Organization = "techtalk"
	Application  = "clip-translator"
)

// ErrNoConfigDir is returned when the platform offers no usable base directory.
var ErrNoConfigDir = errors.New("no configuration directory available")

// ProjectDirs identifies an application by a reverse-domain qualifier,
// an organization name and an application name.
type ProjectDirs struct {
	Qualifier    string
	Organization string
	Application  string
}

// DefaultProjectDirs returns the identity of this application.
func DefaultProjectDirs() ProjectDirs {
	return ProjectDirs{
		Qualifier:    Qualifier,
		Organization: Organization,
		Application:  Application,
	}
}

// ConfigDir returns the per-application configuration directory for the
// current platform. The directory is not created.
func (p ProjectDirs) ConfigDir() (string, error) {
	return p.configDirFor(runtime.GOOS, os.Getenv, os.UserHomeDir)
}

// configDirFor resolves the directory for goos using the supplied environment
// lookups, so each platform convention can be exercised from any host.
func (p ProjectDirs) configDirFor(goos string, getenv func(string) string, home func() (string, error)) (string, error) {
	if p.Application == "" {
		return "", fmt.Errorf("%w: empty application name", ErrNoConfigDir)
	}

	switch goos {
	case "windows":
		appData := getenv("APPDATA")
		if appData == "" {
			profile := getenv("USERPROFILE")
			if profile == "" {
				return "", fmt.Errorf("%w: APPDATA and USERPROFILE are unset", ErrNoConfigDir)
			}
			appData = filepath.Join(profile, "AppData", "Roaming")
		}
		return filepath.Join(appData, p.Organization, p.Application, "config"), nil

	case "darwin":
		h, err := home()
		if err != nil || h == "" {
			return "", fmt.Errorf("%w: home directory unknown", ErrNoConfigDir)
		}
		bundleID := strings.Join(nonEmpty(p.Qualifier, p.Organization, p.Application), ".")
		return filepath.Join(h, "Library", "Application Support", bundleID), nil

	default:
		// XDG layout for Linux and the BSDs.
		base := getenv("XDG_CONFIG_HOME")
		if base == "" || !filepath.IsAbs(base) {
			h, err := home()
			if err != nil || h == "" {
				return "", fmt.Errorf("%w: XDG_CONFIG_HOME and HOME are unset", ErrNoConfigDir)
			}
			base = filepath.Join(h, ".config")
		}
		return filepath.Join(base, xdgName(p.Application)), nil
	}
}

// xdgName lowercases the application name and drops whitespace, the way
// XDG directory names are conventionally written.
func xdgName(app string) string {
	return strings.ToLower(strings.Join(strings.Fields(app), ""))
}

func nonEmpty(parts ...string) []string {
	out := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
