package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/rs/zerolog/log"

	"github.com/fpang/media-picker/internal/selection"
)

const snapshotExt = ".json.zst"

// FileStore implements SnapshotStore with one zstd-compressed JSON file per
// session under Dir.
type FileStore struct {
	Dir string
}

var _ SnapshotStore = FileStore{}

// NewFileStore returns a FileStore rooted at dir, creating it if needed.
func NewFileStore(dir string) (FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return FileStore{}, fmt.Errorf("create state directory: %w", err)
	}
	return FileStore{Dir: dir}, nil
}

func (s FileStore) path(sessionID string) string {
	return filepath.Join(s.Dir, sessionID+snapshotExt)
}

// PutSnapshot writes the snapshot to a temporary file and renames it into place.
func (s FileStore) PutSnapshot(ctx context.Context, sessionID string, snap selection.Snapshot) error {
	if err := ValidateSessionID(sessionID); err != nil {
		return err
	}
	rec := Record{SessionID: sessionID, Snapshot: snap, UpdatedAt: time.Now().Unix()}

	tmp, err := os.CreateTemp(s.Dir, sessionID+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	enc, err := zstd.NewWriter(tmp, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		tmp.Close()
		return fmt.Errorf("create zstd writer: %w", err)
	}
	if err := json.NewEncoder(enc).Encode(rec); err != nil {
		enc.Close()
		tmp.Close()
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := enc.Close(); err != nil {
		tmp.Close()
		return fmt.Errorf("flush zstd stream: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path(sessionID)); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}

	log.Debug().
		Str("sessionId", sessionID).
		Int("items", len(snap.Items)).
		Str("path", s.path(sessionID)).
		Msg("Selection snapshot saved")
	return nil
}

// GetSnapshot reads the session's snapshot. Returns nil, nil if not found.
func (s FileStore) GetSnapshot(ctx context.Context, sessionID string) (*selection.Snapshot, error) {
	if err := ValidateSessionID(sessionID); err != nil {
		return nil, err
	}
	f, err := os.Open(s.path(sessionID))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open snapshot: %w", err)
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("create zstd reader: %w", err)
	}
	defer dec.Close()

	var rec Record
	if err := json.NewDecoder(dec).Decode(&rec); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", sessionID, err)
	}
	return &rec.Snapshot, nil
}

// DeleteSnapshot removes the session's file. Deleting a missing session is not an error.
func (s FileStore) DeleteSnapshot(ctx context.Context, sessionID string) error {
	if err := ValidateSessionID(sessionID); err != nil {
		return err
	}
	if err := os.Remove(s.path(sessionID)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete snapshot: %w", err)
	}
	return nil
}
