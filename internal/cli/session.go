package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/fpang/media-picker/internal/store"
)

const currentSessionFile = "current"

// CurrentSession returns the session ID recorded in stateDir, starting and
// recording a new one when none exists or the recorded one is invalid.
func CurrentSession(stateDir string) (string, error) {
	path := filepath.Join(stateDir, currentSessionFile)
	data, err := os.ReadFile(path)
	if err == nil {
		id := strings.TrimSpace(string(data))
		if store.ValidateSessionID(id) == nil {
			return id, nil
		}
		log.Warn().Str("path", path).Msg("Ignoring invalid current session file")
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("failed to read current session: %w", err)
	}

	id := store.NewSessionID()
	if err := SetCurrentSession(stateDir, id); err != nil {
		return "", err
	}
	log.Debug().Str("sessionId", id).Msg("Started new session")
	return id, nil
}

// SetCurrentSession records id as the session later invocations continue.
func SetCurrentSession(stateDir, id string) error {
	if err := store.ValidateSessionID(id); err != nil {
		return err
	}
	if err := os.MkdirAll(stateDir, 0o755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}
	if err := os.WriteFile(filepath.Join(stateDir, currentSessionFile), []byte(id+"\n"), 0o644); err != nil {
		return fmt.Errorf("failed to record current session: %w", err)
	}
	return nil
}
