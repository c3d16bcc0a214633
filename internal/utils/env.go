package utils

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/AlsoSylv/synth-launcher-sub000/internal/logger"
)

// LoadEnvironment loads LAUNCHER_* overrides from .env files.
// The working directory is tried first, then the directory holding the executable.
// Variables that are already set are never overwritten, so the first file wins.
func LoadEnvironment() []string {
	var loaded []string

	candidates := []string{".env"}
	if execPath, err := os.Executable(); err == nil {
		candidates = append(candidates, filepath.Join(filepath.Dir(execPath), ".env"))
	} else {
		logger.Debug("Could not determine executable path: %v", err)
	}

	for _, envPath := range candidates {
		if _, err := os.Stat(envPath); err != nil {
			continue
		}
		if err := godotenv.Load(envPath); err != nil {
			logger.Warn("Failed to load %s: %v", envPath, err)
			continue
		}
		loaded = append(loaded, envPath)
		logger.Debug("Loaded environment from %s", envPath)
	}

	return loaded
}
