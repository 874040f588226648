package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// Paths contains the standard directories Otter uses for cached binaries.
// Otter has no persisted session state (spec §6: "Persisted state: None");
// these directories exist solely for the bootstrap installer's downloaded
// adapter/server cache.
type Paths struct {
	Data  string // ~/.local/share/otter
	Cache string // ~/.cache/otter
	State string // ~/.local/state/otter
}

// GetPaths returns the standard paths for Otter's cached data.
func GetPaths() *Paths {
	return &Paths{
		Data:  filepath.Join(getEnvOrDefault("XDG_DATA_HOME", defaultDataHome()), "otter"),
		Cache: filepath.Join(getEnvOrDefault("XDG_CACHE_HOME", defaultCacheHome()), "otter"),
		State: filepath.Join(getEnvOrDefault("XDG_STATE_HOME", defaultStateHome()), "otter"),
	}
}

// EnsurePaths creates all required directories.
func (p *Paths) EnsurePaths() error {
	for _, dir := range []string{p.Data, p.Cache, p.State} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return nil
}

// AdapterCachePath returns the directory bootstrap installs download
// language servers and debug adapters into.
func (p *Paths) AdapterCachePath() string {
	return filepath.Join(p.Data, "adapters")
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func defaultDataHome() string {
	if runtime.GOOS == "windows" {
		return os.Getenv("APPDATA")
	}
	return filepath.Join(os.Getenv("HOME"), ".local", "share")
}

func defaultCacheHome() string {
	if runtime.GOOS == "windows" {
		return filepath.Join(os.Getenv("APPDATA"), "cache")
	}
	return filepath.Join(os.Getenv("HOME"), ".cache")
}

func defaultStateHome() string {
	if runtime.GOOS == "windows" {
		return os.Getenv("APPDATA")
	}
	return filepath.Join(os.Getenv("HOME"), ".local", "state")
}

// ProjectConfigPath returns the path to a project's .otter.toml file.
func ProjectConfigPath(directory string) string {
	return filepath.Join(directory, ".otter.toml")
}
