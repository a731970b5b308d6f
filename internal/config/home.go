package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// GetHarnessHome returns the harness home directory, created if needed.
// Priority order:
//  1. ACTIONSCOPE_HOME environment variable
//  2. .actionscope under the project root (detected by a .actionscope-root
//     marker or a go.mod walking up from the working directory)
//  3. .actionscope under the current working directory
func GetHarnessHome() (string, error) {
	if home := os.Getenv("ACTIONSCOPE_HOME"); home != "" {
		if err := os.MkdirAll(home, 0755); err != nil {
			return "", fmt.Errorf("create harness home directory: %w", err)
		}
		return home, nil
	}

	root, err := findProjectRoot()
	if err == nil && root != "" {
		home := filepath.Join(root, ".actionscope")
		if err := os.MkdirAll(home, 0755); err != nil {
			return "", fmt.Errorf("create harness home directory: %w", err)
		}
		return home, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory: %w", err)
	}
	home := filepath.Join(cwd, ".actionscope")
	if err := os.MkdirAll(home, 0755); err != nil {
		return "", fmt.Errorf("create harness home directory: %w", err)
	}
	return home, nil
}

// findProjectRoot walks up from the working directory looking for a
// .actionscope-root marker or a go.mod file.
func findProjectRoot() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}

	current := cwd
	for {
		if _, err := os.Stat(filepath.Join(current, ".actionscope-root")); err == nil {
			return current, nil
		}
		if _, err := os.Stat(filepath.Join(current, "go.mod")); err == nil {
			return current, nil
		}

		parent := filepath.Dir(current)
		if parent == current || strings.TrimSpace(parent) == "" {
			return "", fmt.Errorf("project root not found above %s", cwd)
		}
		current = parent
	}
}
