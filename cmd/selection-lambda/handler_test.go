package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/fpang/media-picker/internal/config"
	"github.com/fpang/media-picker/internal/metrics"
	"github.com/fpang/media-picker/internal/selection"
)

type fakeObjects map[string]string // bucket/key -> content type

func (f fakeObjects) HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	ct, ok := f[*params.Bucket+"/"+*params.Key]
	if !ok {
		return nil, &types.NotFound{}
	}
	return &s3.HeadObjectOutput{ContentType: &ct}, nil
}

type memSessions map[string]selection.Snapshot

func (m memSessions) PutSnapshot(ctx context.Context, id string, snap selection.Snapshot) error {
	m[id] = snap
	return nil
}

func (m memSessions) GetSnapshot(ctx context.Context, id string) (*selection.Snapshot, error) {
	snap, ok := m[id]
	if !ok {
		return nil, nil
	}
	return &snap, nil
}

func (m memSessions) DeleteSnapshot(ctx context.Context, id string) error {
	delete(m, id)
	return nil
}

func newTestService(metricsOut *bytes.Buffer) (*service, memSessions) {
	cfg := config.Default()
	cfg.MaxSelectable = 2

	sessions := memSessions{}
	return &service{
		sessions: sessions,
		objects: fakeObjects{
			"media/u1/a.jpg":  "image/jpeg",
			"media/u1/d.jpg":  "image/jpeg",
			"media/u1/e.jpg":  "image/jpeg",
			"media/u1/b.mp4":  "video/mp4",
			"media/u1/x.webm": "video/webm",
		},
		bucket:      "media",
		cfg:         cfg,
		newRecorder: func() *metrics.Recorder { return metrics.NewWithWriter(metrics.Namespace, metricsOut) },
	}, sessions
}

func causeKind(r ItemResult) string {
	if r.Cause == nil {
		return ""
	}
	return r.Cause.Kind
}

func TestHandleSessionLifecycle(t *testing.T) {
	var emf bytes.Buffer
	svc, sessions := newTestService(&emf)
	ctx := context.Background()

	res, err := svc.handle(ctx, ActionEvent{
		Action: ActionAdd,
		Items: []EventItem{
			{Key: "u1/a.jpg", MimeType: "image/jpeg", Size: 1024},
			{Key: "u1/b.mp4", MimeType: "video/mp4"},
			{Key: "u1/missing.jpg"},
		},
	})
	if err != nil {
		t.Fatalf("add error = %v", err)
	}
	if res.SessionID == "" {
		t.Fatal("no session ID assigned")
	}

	wantKinds := []string{"", "type_conflict", "missing_file"}
	for i, r := range res.Results {
		if got := causeKind(r); got != wantKinds[i] {
			t.Errorf("Results[%d] (%s) cause = %q, want %q", i, r.Key, got, wantKinds[i])
		}
	}
	if !res.Results[0].Accepted || res.Results[0].Checked != 1 {
		t.Errorf("Results[0] = %+v, want accepted with checked 1", res.Results[0])
	}
	if res.CollectionType != "image" || res.MaxSelectable != 2 {
		t.Errorf("collectionType = %q, maxSelectable = %d", res.CollectionType, res.MaxSelectable)
	}
	if len(sessions[res.SessionID].Items) != 1 {
		t.Fatalf("stored items = %v, want 1", sessions[res.SessionID].Items)
	}

	id := res.SessionID
	res, err = svc.handle(ctx, ActionEvent{
		SessionID: id,
		Action:    ActionAdd,
		Items:     []EventItem{{Key: "u1/d.jpg"}, {Key: "u1/e.jpg"}},
	})
	if err != nil {
		t.Fatalf("second add error = %v", err)
	}
	if !res.Results[0].Accepted || res.Results[0].Checked != 2 {
		t.Errorf("d.jpg = %+v, want accepted with checked 2", res.Results[0])
	}
	if got := causeKind(res.Results[1]); got != "mixed_limit" {
		t.Errorf("e.jpg cause = %q, want mixed_limit", got)
	}

	res, err = svc.handle(ctx, ActionEvent{SessionID: id, Action: ActionRemove, Items: []EventItem{{Key: "u1/a.jpg"}}})
	if err != nil {
		t.Fatalf("remove error = %v", err)
	}
	if len(res.Selected) != 1 || res.Selected[0].Key != "u1/d.jpg" || res.Selected[0].Checked != 1 {
		t.Errorf("Selected after remove = %+v, want [u1/d.jpg #1]", res.Selected)
	}

	res, err = svc.handle(ctx, ActionEvent{SessionID: id, Action: ActionList})
	if err != nil || len(res.Selected) != 1 {
		t.Errorf("list = %+v, %v", res.Selected, err)
	}

	res, err = svc.handle(ctx, ActionEvent{SessionID: id, Action: ActionClear})
	if err != nil {
		t.Fatalf("clear error = %v", err)
	}
	if len(res.Selected) != 0 || res.CollectionType != "undefined" {
		t.Errorf("after clear: selected = %v, collectionType = %q", res.Selected, res.CollectionType)
	}
	if _, ok := sessions[id]; ok {
		t.Error("snapshot still stored after clear")
	}

	if !strings.Contains(emf.String(), metrics.SelectionRejected) || !strings.Contains(emf.String(), metrics.ActionLatency) {
		t.Errorf("expected verdict and latency metrics, got:\n%s", emf.String())
	}
}

func TestHandleNormalisesKeys(t *testing.T) {
	svc, sessions := newTestService(&bytes.Buffer{})
	ctx := context.Background()

	res, err := svc.handle(ctx, ActionEvent{
		Action: ActionAdd,
		Items:  []EventItem{{Key: "s3://media/u1/a.jpg"}, {Key: "u1/a.jpg"}},
	})
	if err != nil {
		t.Fatalf("add error = %v", err)
	}
	if !res.Results[0].Accepted {
		t.Errorf("first add = %+v, want accepted", res.Results[0])
	}
	if r := res.Results[1]; r.Accepted || r.Cause != nil || r.Checked != 1 {
		t.Errorf("second add = %+v, want a duplicate of #1", r)
	}
	if len(res.Selected) != 1 || res.Selected[0].Key != "u1/a.jpg" {
		t.Fatalf("Selected = %+v, want [u1/a.jpg]", res.Selected)
	}

	res, err = svc.handle(ctx, ActionEvent{
		SessionID: res.SessionID,
		Action:    ActionRemove,
		Items:     []EventItem{{Key: "s3://media/u1/a.jpg"}},
	})
	if err != nil {
		t.Fatalf("remove error = %v", err)
	}
	if !res.Results[0].Accepted || len(res.Selected) != 0 {
		t.Errorf("remove by URI = %+v, selected = %+v", res.Results[0], res.Selected)
	}
	if n := len(sessions[res.SessionID].Items); n != 0 {
		t.Errorf("stored items = %d, want 0", n)
	}
}

func TestHandleCheckDoesNotPersist(t *testing.T) {
	svc, sessions := newTestService(&bytes.Buffer{})

	res, err := svc.handle(context.Background(), ActionEvent{
		Action: ActionCheck,
		Items: []EventItem{
			{Key: "u1/a.jpg"},
			{Key: "u1/x.webm", MimeType: "video/webm"},
			{Key: "u1/notes.txt"},
		},
	})
	if err != nil {
		t.Fatalf("check error = %v", err)
	}

	wantKinds := []string{"", "unsupported_file", "unsupported_file"}
	for i, r := range res.Results {
		if got := causeKind(r); got != wantKinds[i] {
			t.Errorf("Results[%d] (%s) cause = %q, want %q", i, r.Key, got, wantKinds[i])
		}
	}
	if len(res.Selected) != 0 || len(sessions) != 0 {
		t.Errorf("check changed state: selected = %v, sessions = %v", res.Selected, sessions)
	}
}

func TestHandleErrors(t *testing.T) {
	svc, _ := newTestService(&bytes.Buffer{})

	tests := []struct {
		name  string
		event ActionEvent
	}{
		{"clear without session", ActionEvent{Action: ActionClear}},
		{"remove without session", ActionEvent{Action: ActionRemove}},
		{"invalid session", ActionEvent{SessionID: "../etc", Action: ActionList}},
		{"unknown action", ActionEvent{SessionID: "6f1c1a52-3a0e-4f43-9d57-1f6e0b2a9c11", Action: "shuffle"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := svc.handle(context.Background(), tt.event)
			if err == nil {
				t.Fatal("expected error")
			}
			if res.Error == "" {
				t.Error("result carries no error message")
			}
		})
	}
}

func TestSetupDeferredToMain(t *testing.T) {
	// The tests run without MEDIA_BUCKET_NAME or AWS credentials, so the
	// service must only be built when main runs.
	if svc != nil {
		t.Fatal("service built before main")
	}
}
