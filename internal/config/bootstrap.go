package config

import (
	"errors"
	"os"
	"path/filepath"
)

const FileName = "config.yml"

func UserConfigPath(dataDir string) string {
	return filepath.Join(dataDir, FileName)
}

// EnsureUserConfig writes the default config into dataDir unless a config
// file already exists there. It returns the config path.
func EnsureUserConfig(dataDir string) (string, error) {
	userPath := UserConfigPath(dataDir)

	_, err := os.Stat(userPath)
	if err == nil {
		return userPath, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return "", err
	}

	cfg := Default()
	cfg.App.DataDir = dataDir
	if err := SaveAtomic(userPath, cfg); err != nil {
		return "", err
	}
	return userPath, nil
}
