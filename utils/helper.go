package util

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// check if the download directory exist, create it otherwise
func EnsureDirectory(dir string) (string, error) {
	absPath, err := ResolvePath(dir)
	if err != nil {
		return "", err
	}

	st, err := os.Stat(absPath)
	if os.IsNotExist(err) {
		if mkErr := os.MkdirAll(absPath, 0755); mkErr != nil {
			return "", fmt.Errorf("failed to create directory '%s': %w", absPath, mkErr)
		}
		return absPath, nil
	}
	if err != nil {
		return "", err
	}
	if !st.IsDir() {
		return "", fmt.Errorf("'%s' is not a directory", absPath)
	}
	return absPath, nil
}

// ResolvePath expands a leading "~" and returns a cleaned absolute path.
func ResolvePath(p string) (string, error) {
	p = strings.TrimSpace(p)
	if p == "~" || strings.HasPrefix(p, "~/") || strings.HasPrefix(p, `~\`) {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to resolve home directory: %w", err)
		}
		p = filepath.Join(home, p[1:])
	}

	absPath, err := filepath.Abs(p)
	if err != nil {
		return "", fmt.Errorf("failed to resolve absolute path: %w", err)
	}
	return absPath, nil
}

// IsWithinDir reports whether target lies inside base (or is base itself).
func IsWithinDir(base, target string) bool {
	rel, err := filepath.Rel(base, target)
	if err != nil {
		return false
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return false
	}
	return !filepath.IsAbs(rel)
}

// SplitURLs splits every chunk on line boundaries and drops blank entries.
// Bare "\r", form feeds and the Unicode line separators count as breaks too.
func SplitURLs(chunks ...string) []string {
	urls := make([]string, 0)
	for _, chunk := range chunks {
		for _, line := range strings.FieldsFunc(chunk, isLineBreak) {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			urls = append(urls, line)
		}
	}
	return urls
}

func isLineBreak(r rune) bool {
	switch r {
	case '\n', '\r', '\v', '\f', '\x1c', '\x1d', '\x1e', '\u0085', '\u2028', '\u2029':
		return true
	}
	return false
}

// GenerateRequestID creates an ID for progress subscriptions
func GenerateRequestID() string {
	return uuid.NewString()
}

func DeleteFilesOlderThan(dir string, olderThan time.Duration) error {
	files, err := os.ReadDir(dir)
	if err != nil {
		return err
	}

	now := time.Now()

	for _, file := range files {
		if file.IsDir() {
			continue
		}
		info, err := file.Info()
		if err != nil {
			continue
		}

		if now.Sub(info.ModTime()) > olderThan {
			path := filepath.Join(dir, file.Name())
			if err := os.Remove(path); err != nil {
				log.Printf("[CLEANUP] Failed to delete %s: %v", path, err)
			} else {
				log.Printf("[CLEANUP] Deleted old file: %s", path)
			}
		}
	}

	return nil
}
