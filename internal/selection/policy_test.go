package selection

import (
	"errors"
	"testing"

	"github.com/fpang/media-picker/internal/media"
)

func TestPolicyValidate(t *testing.T) {
	tests := []struct {
		name        string
		policy      Policy
		expectError bool
	}{
		{"default", DefaultPolicy(), false},
		{"per-type only", Policy{MaxImageSelectable: 3}, false},
		{"negative", Policy{MaxSelectable: -1, MaxImageSelectable: 2}, true},
		{"all zero", Policy{}, true},
		{"unknown mime", Policy{MaxSelectable: 1, MimeTypes: []media.MimeType{"text/plain"}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.policy.Validate()
			if tt.expectError && err == nil {
				t.Error("Validate() = nil, want error")
			}
			if !tt.expectError && err != nil {
				t.Errorf("Validate() = %v, want nil", err)
			}
		})
	}

	err := Policy{MaxSelectable: 1, MimeTypes: []media.MimeType{"text/plain"}}.Validate()
	if !errors.Is(err, media.ErrUnknownMimeType) {
		t.Errorf("Validate() error = %v, want ErrUnknownMimeType", err)
	}
}

func TestPolicyModes(t *testing.T) {
	if !DefaultPolicy().SingleSelectionMode() {
		t.Error("DefaultPolicy().SingleSelectionMode() = false, want true")
	}
	if !(Policy{MaxImageSelectable: 1, MaxVideoSelectable: 1}).SingleSelectionMode() {
		t.Error("one of each: SingleSelectionMode() = false, want true")
	}
	if (Policy{MaxSelectable: 9}).SingleSelectionMode() {
		t.Error("MaxSelectable 9: SingleSelectionMode() = true, want false")
	}
	if !(Policy{MaxImageSelectable: 2, MaxVideoSelectable: 1}).DualLimit() {
		t.Error("DualLimit() = false, want true")
	}

	images := Policy{MimeTypes: []media.MimeType{media.JPEG, media.PNG}}
	if !images.OnlyImages() || images.OnlyVideos() {
		t.Errorf("image-only policy: OnlyImages=%v OnlyVideos=%v", images.OnlyImages(), images.OnlyVideos())
	}
	if (Policy{}).OnlyImages() {
		t.Error("empty mime set means all types, OnlyImages() = true")
	}
	if len((Policy{}).AcceptedTypes()) != len(media.OfAll()) {
		t.Error("AcceptedTypes() on empty set should return every known type")
	}
}

func TestMessagesLocales(t *testing.T) {
	tests := []struct {
		locale   string
		expected string
	}{
		{"en-US", "You can only select up to 3 media files"},
		{"zh-CN", "您最多只能选择 3 个文件"},
		{"fr", "You can only select up to 3 media files"},
		{"not a locale!", "You can only select up to 3 media files"},
	}

	for _, tt := range tests {
		t.Run(tt.locale, func(t *testing.T) {
			if got := MessagesFor(tt.locale).OverCount(3); got != tt.expected {
				t.Errorf("MessagesFor(%q).OverCount(3) = %q, want %q", tt.locale, got, tt.expected)
			}
		})
	}

	en := DefaultMessages()
	if got := en.UnsupportedFile(); got != "Unsupported file type" {
		t.Errorf("UnsupportedFile() = %q", got)
	}
	if got := en.MissingFile(); got != "The selected file no longer exists" {
		t.Errorf("MissingFile() = %q", got)
	}
}

func TestCauseString(t *testing.T) {
	var accepted *Cause
	if accepted.String() != "<accepted>" {
		t.Errorf("nil Cause String() = %q", accepted.String())
	}
	c := FilterCause("too small").WithDialog("Size")
	if c.Form != FormDialog || c.String() != "filter: Size: too small" {
		t.Errorf("cause = %+v, String() = %q", c, c.String())
	}
	if c.Form.String() != "dialog" || NewCause(CauseMissingFile, "gone").Form.String() != "toast" {
		t.Errorf("Form strings = %q, %q", c.Form, NewCause(CauseMissingFile, "gone").Form)
	}
}
