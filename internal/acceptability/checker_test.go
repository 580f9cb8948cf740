package acceptability

import (
	"context"
	"testing"

	"github.com/fpang/media-picker/internal/media"
	"github.com/fpang/media-picker/internal/selection"
)

type fakeResolver map[string]string

func (f fakeResolver) ResolvePath(ctx context.Context, id string) (string, bool) {
	p, ok := f[id]
	return p, ok
}

// fakeClassifier matches every id against the one type it was told about.
type fakeClassifier map[string]media.MimeType

func (f fakeClassifier) MatchesType(ctx context.Context, id string, mt media.MimeType) bool {
	return f[id] == mt
}

type recordingFilter struct {
	cause *selection.Cause
	calls int
}

func (f *recordingFilter) Filter(ctx context.Context, item media.Item) *selection.Cause {
	f.calls++
	return f.cause
}

func kindOf(c *selection.Cause) selection.CauseKind {
	if c == nil {
		return ""
	}
	return c.Kind
}

func TestIsAcceptable(t *testing.T) {
	resolver := fakeResolver{
		"a.jpg":      "/photos/a.jpg",
		"clip.mp4":   "/photos/clip.mp4",
		"clip.webm":  "/photos/clip.webm",
		"movie.mkv":  "/photos/movie.mkv",
		"upper.MKV":  "/photos/upper.MKV",
		"stream":     "/photos/stream.ts",
		"old.3gp":    "/photos/old.3gp",
		"note.txt":   "/photos/note.txt",
		"lying.webm": "/photos/lying.webm",
	}
	classifier := fakeClassifier{
		"a.jpg":      media.JPEG,
		"clip.mp4":   media.MP4,
		"clip.webm":  media.WEBM,
		"movie.mkv":  media.MKV,
		"upper.MKV":  media.MKV,
		"stream":     media.TS,
		"old.3gp":    media.ThreeGPP,
		"lying.webm": media.MP4,
	}

	tests := []struct {
		name     string
		item     media.Item
		expected selection.CauseKind
	}{
		{"accepted image", media.NewItem("a.jpg", media.JPEG, 0, 0), ""},
		{"accepted video", media.NewItem("clip.mp4", media.MP4, 0, 0), ""},
		{"missing", media.NewItem("gone.jpg", media.JPEG, 0, 0), selection.CauseMissingFile},
		{"webm denied", media.NewItem("clip.webm", media.WEBM, 0, 0), selection.CauseUnsupportedFile},
		{"webm declared mp4", media.NewItem("lying.webm", media.MP4, 0, 0), selection.CauseUnsupportedFile},
		{"mkv denied", media.NewItem("movie.mkv", media.MKV, 0, 0), selection.CauseUnsupportedFile},
		{"suffix match is case-sensitive", media.NewItem("upper.MKV", media.MKV, 0, 0), ""},
		{"ts denied", media.NewItem("stream", media.TS, 0, 0), selection.CauseUnsupportedFile},
		{"3gp denied", media.NewItem("old.3gp", media.ThreeGPP, 0, 0), selection.CauseUnsupportedFile},
		{"no type matches", media.NewItem("note.txt", media.JPEG, 0, 0), selection.CauseUnsupportedFile},
	}

	c := New(resolver, classifier, selection.Policy{MaxSelectable: 9})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.IsAcceptable(context.Background(), tt.item)
			if kindOf(got) != tt.expected {
				t.Errorf("IsAcceptable(%q) = %v, want kind %q", tt.item.ID, got, tt.expected)
			}
		})
	}
}

func TestIsAcceptableRestrictedMimeTypes(t *testing.T) {
	resolver := fakeResolver{"a.png": "/p/a.png", "b.jpg": "/p/b.jpg"}
	classifier := fakeClassifier{"a.png": media.PNG, "b.jpg": media.JPEG}
	c := New(resolver, classifier, selection.Policy{MaxSelectable: 9, MimeTypes: []media.MimeType{media.JPEG}})

	if got := c.IsAcceptable(context.Background(), media.NewItem("a.png", media.PNG, 0, 0)); kindOf(got) != selection.CauseUnsupportedFile {
		t.Errorf("png under jpeg-only policy = %v, want unsupported_file", got)
	}
	if got := c.IsAcceptable(context.Background(), media.NewItem("b.jpg", media.JPEG, 0, 0)); got != nil {
		t.Errorf("jpeg under jpeg-only policy = %v, want nil", got)
	}
}

func TestIsAcceptableFilterOrder(t *testing.T) {
	resolver := fakeResolver{"a.jpg": "/p/a.jpg"}
	classifier := fakeClassifier{"a.jpg": media.JPEG}

	pass := &recordingFilter{}
	first := &recordingFilter{cause: selection.FilterCause("too small")}
	second := &recordingFilter{cause: selection.FilterCause("too big")}
	policy := selection.Policy{
		MaxSelectable: 9,
		Filters:       []selection.Filter{pass, first, second},
	}
	c := New(resolver, classifier, policy)

	got := c.IsAcceptable(context.Background(), media.NewItem("a.jpg", media.JPEG, 0, 0))
	if got == nil || got.Message != "too small" {
		t.Fatalf("IsAcceptable() = %v, want first veto", got)
	}
	if pass.calls != 1 || first.calls != 1 || second.calls != 0 {
		t.Errorf("filter calls = %d/%d/%d, want 1/1/0", pass.calls, first.calls, second.calls)
	}

	// Filters never see items that fail the existence check.
	c.IsAcceptable(context.Background(), media.NewItem("gone.jpg", media.JPEG, 0, 0))
	if pass.calls != 1 {
		t.Errorf("filter ran for a missing item")
	}
}

func TestIsAcceptableLocalizedMessages(t *testing.T) {
	c := New(fakeResolver{}, fakeClassifier{}, selection.Policy{
		MaxSelectable: 1,
		Messages:      selection.MessagesFor("zh-CN"),
	})
	got := c.IsAcceptable(context.Background(), media.NewItem("x.jpg", media.JPEG, 0, 0))
	if got == nil || got.Message != "所选文件不存在" {
		t.Errorf("IsAcceptable() = %v, want localized missing-file cause", got)
	}
}

func TestStoreDelegatesToChecker(t *testing.T) {
	resolver := fakeResolver{"a.jpg": "/p/a.jpg", "b.webm": "/p/b.webm"}
	classifier := fakeClassifier{"a.jpg": media.JPEG, "b.webm": media.WEBM}
	policy := selection.Policy{MaxSelectable: 2}
	s := selection.NewStore(policy, New(resolver, classifier, policy))

	ctx := context.Background()
	a := media.NewItem("a.jpg", media.JPEG, 0, 0)
	if cause := s.IsAcceptable(ctx, a); cause != nil {
		t.Fatalf("IsAcceptable(a) = %v, want nil", cause)
	}
	s.MustAdd(a)

	if cause := s.IsAcceptable(ctx, media.NewItem("b.webm", media.WEBM, 0, 0)); kindOf(cause) != selection.CauseUnsupportedFile {
		t.Errorf("IsAcceptable(webm) = %v, want unsupported_file", cause)
	}
}
