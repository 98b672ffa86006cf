package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	homeDirName = ".envsummary"
	homeEnvVar  = "ENVSUMMARY_HOME"
)

// GetHome returns the envsummary home directory
// Priority order:
//  1. ENVSUMMARY_HOME environment variable (if set)
//  2. .envsummary in the current working directory
//
// The directory is created if it doesn't exist
func GetHome() (string, error) {
	home := os.Getenv(homeEnvVar)
	if home == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("get working directory: %w", err)
		}
		home = filepath.Join(cwd, homeDirName)
	}

	if err := os.MkdirAll(home, 0755); err != nil {
		return "", fmt.Errorf("create envsummary home directory: %w", err)
	}

	return home, nil
}

// GetHistoryDBPath returns the path to the default history database
// Always returns: $ENVSUMMARY_HOME/history.db
func GetHistoryDBPath() (string, error) {
	home, err := GetHome()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, "history.db"), nil
}
