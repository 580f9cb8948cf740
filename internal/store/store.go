// Package store persists selection snapshots between the calls of a picking
// session, so a CLI invocation or a Lambda container can pick up where the
// previous one stopped.
//
// Two backends are provided: DynamoStore keeps one record per session in a
// DynamoDB table (PK = SESSION#{sessionId}, SK = SELECTION) with a TTL, and
// FileStore keeps zstd-compressed JSON files in a local directory.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/fpang/media-picker/internal/selection"
)

// SessionTTL is how long an untouched session snapshot is kept.
const SessionTTL = 24 * time.Hour

// ErrInvalidSessionID is returned for session IDs that are not UUIDs.
var ErrInvalidSessionID = errors.New("invalid session id")

// SnapshotStore saves and loads selection snapshots by session ID.
//
// Get returns (nil, nil) when the session has no snapshot.
// Put performs full replacement.
type SnapshotStore interface {
	PutSnapshot(ctx context.Context, sessionID string, snap selection.Snapshot) error
	GetSnapshot(ctx context.Context, sessionID string) (*selection.Snapshot, error)
	DeleteSnapshot(ctx context.Context, sessionID string) error
}

// Record is the stored form of one session's selection.
type Record struct {
	SessionID string             `json:"sessionId" dynamodbav:"-"`
	Snapshot  selection.Snapshot `json:"snapshot" dynamodbav:"snapshot"`
	UpdatedAt int64              `json:"updatedAt" dynamodbav:"updatedAt"`
}

// NewSessionID returns a fresh random session ID.
func NewSessionID() string {
	return uuid.NewString()
}

// ValidateSessionID rejects IDs that are not canonical UUIDs, so they are safe
// to use as file names and key suffixes.
func ValidateSessionID(id string) error {
	u, err := uuid.Parse(id)
	if err != nil || u.String() != id {
		return fmt.Errorf("%w: %q", ErrInvalidSessionID, id)
	}
	return nil
}
