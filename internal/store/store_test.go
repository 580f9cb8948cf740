package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/fpang/media-picker/internal/media"
	"github.com/fpang/media-picker/internal/selection"
)

func sampleSnapshot() selection.Snapshot {
	return selection.Snapshot{
		Items: []selection.SnapshotItem{
			{ID: "/p/a.jpg", MimeType: string(media.JPEG), Size: 1024},
			{ID: "/p/b.mp4", MimeType: string(media.MP4), Size: 4096, DurationMs: 2500},
		},
		CollectionType: selection.CollectionMixed,
	}
}

func assertSnapshot(t *testing.T, got *selection.Snapshot, want selection.Snapshot) {
	t.Helper()
	if got == nil {
		t.Fatal("snapshot = nil, want stored snapshot")
	}
	if got.CollectionType != want.CollectionType {
		t.Errorf("CollectionType = %v, want %v", got.CollectionType, want.CollectionType)
	}
	if len(got.Items) != len(want.Items) {
		t.Fatalf("len(Items) = %d, want %d", len(got.Items), len(want.Items))
	}
	for i := range want.Items {
		if got.Items[i] != want.Items[i] {
			t.Errorf("Items[%d] = %+v, want %+v", i, got.Items[i], want.Items[i])
		}
	}
}

func TestValidateSessionID(t *testing.T) {
	tests := []struct {
		id      string
		wantErr bool
	}{
		{NewSessionID(), false},
		{"3f2c7a4e-8b1d-4c6a-9e2f-0a1b2c3d4e5f", false},
		{"3F2C7A4E-8B1D-4C6A-9E2F-0A1B2C3D4E5F", true},
		{"../../etc/passwd", true},
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateSessionID(tt.id)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateSessionID(%q) = %v, wantErr %v", tt.id, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, ErrInvalidSessionID) {
			t.Errorf("ValidateSessionID(%q) error does not wrap ErrInvalidSessionID", tt.id)
		}
	}
}

func TestFileStore(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "state")
	s, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	ctx := context.Background()
	id := NewSessionID()

	got, err := s.GetSnapshot(ctx, id)
	if err != nil || got != nil {
		t.Fatalf("GetSnapshot(new session) = %v, %v; want nil, nil", got, err)
	}

	want := sampleSnapshot()
	if err := s.PutSnapshot(ctx, id, want); err != nil {
		t.Fatalf("PutSnapshot() error = %v", err)
	}
	got, err = s.GetSnapshot(ctx, id)
	if err != nil {
		t.Fatalf("GetSnapshot() error = %v", err)
	}
	assertSnapshot(t, got, want)

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 || entries[0].Name() != id+snapshotExt {
		t.Errorf("state directory holds %v, want only the snapshot file", entries)
	}

	if err := s.DeleteSnapshot(ctx, id); err != nil {
		t.Fatalf("DeleteSnapshot() error = %v", err)
	}
	if err := s.DeleteSnapshot(ctx, id); err != nil {
		t.Errorf("DeleteSnapshot(twice) error = %v", err)
	}
	if got, _ := s.GetSnapshot(ctx, id); got != nil {
		t.Errorf("GetSnapshot(after delete) = %+v, want nil", got)
	}

	if err := s.PutSnapshot(ctx, "not-a-uuid", want); !errors.Is(err, ErrInvalidSessionID) {
		t.Errorf("PutSnapshot(bad id) error = %v, want ErrInvalidSessionID", err)
	}
}

func TestFileStoreCorruptSnapshot(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	id := NewSessionID()
	if err := os.WriteFile(s.path(id), []byte("plain text"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := s.GetSnapshot(context.Background(), id); err == nil {
		t.Error("GetSnapshot(corrupt) error = nil, want error")
	}
}

// fakeDynamo keeps items keyed by PK+SK.
type fakeDynamo struct {
	items map[string]map[string]types.AttributeValue
}

func itemKey(key map[string]types.AttributeValue) string {
	pk := key["PK"].(*types.AttributeValueMemberS).Value
	sk := key["SK"].(*types.AttributeValueMemberS).Value
	return pk + "|" + sk
}

func (f *fakeDynamo) GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	return &dynamodb.GetItemOutput{Item: f.items[itemKey(params.Key)]}, nil
}

func (f *fakeDynamo) PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.items[itemKey(params.Item)] = params.Item
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeDynamo) DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	delete(f.items, itemKey(params.Key))
	return &dynamodb.DeleteItemOutput{}, nil
}

func TestDynamoStore(t *testing.T) {
	client := &fakeDynamo{items: make(map[string]map[string]types.AttributeValue)}
	s := NewDynamoStore(client, "media-picker-sessions")
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }
	ctx := context.Background()

	if got, err := s.GetSnapshot(ctx, "s1"); got != nil || err != nil {
		t.Fatalf("GetSnapshot(missing) = %v, %v; want nil, nil", got, err)
	}

	want := sampleSnapshot()
	if err := s.PutSnapshot(ctx, "s1", want); err != nil {
		t.Fatalf("PutSnapshot() error = %v", err)
	}

	raw, ok := client.items["SESSION#s1|SELECTION"]
	if !ok {
		t.Fatalf("no item stored under SESSION#s1/SELECTION: %v", client.items)
	}
	ttl := raw["expiresAt"].(*types.AttributeValueMemberN).Value
	if ttl != strconv.FormatInt(fixed.Add(SessionTTL).Unix(), 10) {
		t.Errorf("expiresAt = %s, want now+%v", ttl, SessionTTL)
	}

	got, err := s.GetSnapshot(ctx, "s1")
	if err != nil {
		t.Fatalf("GetSnapshot() error = %v", err)
	}
	assertSnapshot(t, got, want)

	if err := s.DeleteSnapshot(ctx, "s1"); err != nil {
		t.Fatalf("DeleteSnapshot() error = %v", err)
	}
	if len(client.items) != 0 {
		t.Errorf("items after delete = %d, want 0", len(client.items))
	}
}
