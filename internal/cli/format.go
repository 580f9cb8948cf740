package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/fpang/media-picker/internal/filehandler"
	"github.com/fpang/media-picker/internal/media"
	"github.com/fpang/media-picker/internal/selection"
)

// FormatDurationShort formats a duration in a short format (M:SS or H:MM:SS).
func FormatDurationShort(d time.Duration) string {
	totalSeconds := int(d.Seconds())
	hours := totalSeconds / 3600
	minutes := (totalSeconds % 3600) / 60
	seconds := totalSeconds % 60

	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%d:%02d", minutes, seconds)
}

// FormatItem renders one line of a selection listing. checked is the item's
// 1-based position, or selection.Unchecked for items outside the selection.
func FormatItem(item media.Item, checked int) string {
	var b strings.Builder
	if checked == selection.Unchecked {
		b.WriteString("   ")
	} else {
		fmt.Fprintf(&b, "%2d.", checked)
	}
	fmt.Fprintf(&b, " %-5s %s", item.Kind(), item.Name())
	if item.Size > 0 {
		fmt.Fprintf(&b, " (%.1f MB)", filehandler.SizeInMB(item.Size))
	}
	if item.IsVideo() && item.Duration > 0 {
		fmt.Fprintf(&b, " [%s]", FormatDurationShort(item.Duration))
	}
	return b.String()
}

// FormatCause renders a rejection for the terminal. Dialog causes keep their
// title on its own line.
func FormatCause(item media.Item, cause *selection.Cause) string {
	if cause.Form == selection.FormDialog && cause.Title != "" {
		return fmt.Sprintf("✗ %s\n  %s: %s", item.Name(), cause.Title, cause.Message)
	}
	return fmt.Sprintf("✗ %s: %s", item.Name(), cause.Message)
}
