package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
)

// ValidateAndResolveDirectory checks that dirPath exists and is a directory
// and returns its absolute form.
func ValidateAndResolveDirectory(dirPath string) (string, error) {
	info, err := os.Stat(dirPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("directory not found: %s", dirPath)
		}
		return "", fmt.Errorf("failed to access directory %s: %w", dirPath, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("not a directory: %s", dirPath)
	}

	absPath, err := filepath.Abs(dirPath)
	if err != nil {
		log.Debug().Err(err).Str("path", dirPath).Msg("Could not make path absolute")
		return dirPath, nil
	}
	return absPath, nil
}

// ResolveFiles makes every path absolute, keeping the input order.
func ResolveFiles(paths []string) []string {
	resolved := make([]string, 0, len(paths))
	for _, p := range paths {
		if abs, err := filepath.Abs(p); err == nil {
			p = abs
		}
		resolved = append(resolved, p)
	}
	return resolved
}
