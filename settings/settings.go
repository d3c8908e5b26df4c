// Package settings persists the user's download directory and bulk archive
// policy to a small JSON file in the home directory.
package settings

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	util "webdl/utils"
)

const (
	DefaultFileName = ".downloader_web_config.json"
	DefaultDirName  = "downloader_web_downloads"
)

// Settings is the persisted record.
type Settings struct {
	DownloadDir     string `json:"download_dir"`
	AutoArchiveBulk bool   `json:"auto_archive_bulk"`
}

// Defaults returns the settings used when no valid file exists.
func Defaults() Settings {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}
	return Settings{
		DownloadDir:     filepath.Join(homeDir, DefaultDirName),
		AutoArchiveBulk: false,
	}
}

// DefaultPath is the per-user config file location.
func DefaultPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return DefaultFileName
	}
	return filepath.Join(homeDir, DefaultFileName)
}

// Store owns the process-wide settings. The in-memory copy is authoritative;
// failing to persist it is logged and otherwise ignored.
type Store struct {
	mu      sync.RWMutex
	path    string
	current Settings
}

// Open loads path. A missing or unreadable file falls back to defaults and
// is rewritten.
func Open(path string) *Store {
	if path == "" {
		path = DefaultPath()
	}
	s := &Store{path: path}

	loaded, err := load(path)
	if err != nil {
		log.Printf("[Settings] using defaults: %v", err)
		s.current = Defaults()
		s.current.DownloadDir = resolveDir(s.current.DownloadDir)
		s.save()
	} else {
		s.current = loaded
		s.current.DownloadDir = resolveDir(s.current.DownloadDir)
	}

	if _, err := s.EnsureDownloadDir(); err != nil {
		log.Printf("[Settings] %v", err)
	}
	return s
}

func load(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, err
	}

	// start from defaults so keys absent from the file keep their default
	settings := Defaults()
	if err := json.Unmarshal(data, &settings); err != nil {
		return Settings{}, fmt.Errorf("parse %s: %w", path, err)
	}
	if settings.DownloadDir == "" {
		settings.DownloadDir = Defaults().DownloadDir
	}
	return settings, nil
}

func resolveDir(dir string) string {
	abs, err := util.ResolvePath(dir)
	if err != nil {
		return dir
	}
	return abs
}

// Path returns the backing file.
func (s *Store) Path() string {
	return s.path
}

// Get returns a copy of the current settings.
func (s *Store) Get() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

func (s *Store) DownloadDir() string {
	return s.Get().DownloadDir
}

func (s *Store) AutoArchiveBulk() bool {
	return s.Get().AutoArchiveBulk
}

// EnsureDownloadDir creates the configured download directory if needed.
func (s *Store) EnsureDownloadDir() (string, error) {
	return util.EnsureDirectory(s.DownloadDir())
}

// SetDownloadDir resolves dir, creates it and persists it.
func (s *Store) SetDownloadDir(dir string) (string, error) {
	abs, err := util.EnsureDirectory(dir)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	s.current.DownloadDir = abs
	s.mu.Unlock()

	s.save()
	return abs, nil
}

func (s *Store) SetAutoArchiveBulk(enabled bool) {
	s.mu.Lock()
	s.current.AutoArchiveBulk = enabled
	s.mu.Unlock()

	s.save()
}

func (s *Store) save() {
	snapshot := s.Get()

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		log.Printf("[Settings] marshal failed: %v", err)
		return
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		log.Printf("[Settings] could not save %s: %v", s.path, err)
		return
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		log.Printf("[Settings] could not save %s: %v", s.path, err)
	}
}
