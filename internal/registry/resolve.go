// Package registry resolves which model the worker pool should load: a
// local model directory when it exists, otherwise a remote model id.
package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ResolveModel returns the model reference to hand to the worker factory.
// When path (after ~ expansion) exists on disk its absolute form is
// returned with local=true; otherwise fallback, a remote model id, is used.
// An empty path skips the local lookup entirely.
func ResolveModel(path, fallback string) (ref string, local bool, err error) {
	if path == "" {
		return fallback, false, nil
	}
	expanded, err := expandHome(path)
	if err != nil {
		return "", false, err
	}
	abs, err := filepath.Abs(expanded)
	if err != nil {
		return "", false, fmt.Errorf("abs path: %w", err)
	}
	if _, err := os.Stat(abs); err != nil {
		if os.IsNotExist(err) {
			return fallback, false, nil
		}
		return "", false, fmt.Errorf("stat model path: %w", err)
	}
	return abs, true, nil
}

// expandHome expands a leading '~' to the user's home directory.
func expandHome(path string) (string, error) {
	if path == "" || path[0] != '~' {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home dir: %w", err)
	}
	if path == "~" {
		return home, nil
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~/")), nil
}
