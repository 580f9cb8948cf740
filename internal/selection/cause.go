package selection

import "fmt"

// CauseKind classifies why an item cannot be selected.
type CauseKind string

const (
	CauseImageLimit      CauseKind = "image_limit"
	CauseVideoLimit      CauseKind = "video_limit"
	CauseMixedLimit      CauseKind = "mixed_limit"
	CauseTypeConflict    CauseKind = "type_conflict"
	CauseUnsupportedFile CauseKind = "unsupported_file"
	CauseMissingFile     CauseKind = "missing_file"
	CauseFilter          CauseKind = "filter"
)

// Form tells the UI how to present a cause.
type Form int

const (
	FormToast Form = iota
	FormDialog
)

func (f Form) String() string {
	if f == FormDialog {
		return "dialog"
	}
	return "toast"
}

// Cause is a soft rejection: the item may not be added, and Message says why.
type Cause struct {
	Kind    CauseKind
	Form    Form
	Title   string
	Message string
}

// NewCause returns a toast-style cause.
func NewCause(kind CauseKind, message string) *Cause {
	return &Cause{Kind: kind, Form: FormToast, Message: message}
}

// FilterCause is the helper filters use to veto an item.
func FilterCause(message string) *Cause {
	return NewCause(CauseFilter, message)
}

// WithDialog switches the cause to a titled dialog.
func (c *Cause) WithDialog(title string) *Cause {
	c.Form = FormDialog
	c.Title = title
	return c
}

func (c *Cause) String() string {
	if c == nil {
		return "<accepted>"
	}
	if c.Title != "" {
		return fmt.Sprintf("%s: %s: %s", c.Kind, c.Title, c.Message)
	}
	return fmt.Sprintf("%s: %s", c.Kind, c.Message)
}

// Reach names the limit, if any, that stops a candidate from being added.
type Reach int

const (
	NotReach Reach = iota
	ImageReach
	VideoReach
	MixReach
)

func (r Reach) String() string {
	switch r {
	case ImageReach:
		return "image_reach"
	case VideoReach:
		return "video_reach"
	case MixReach:
		return "mix_reach"
	default:
		return "not_reach"
	}
}

// causeKind maps a reached limit to its cause classification.
func (r Reach) causeKind() CauseKind {
	switch r {
	case ImageReach:
		return CauseImageLimit
	case VideoReach:
		return CauseVideoLimit
	default:
		return CauseMixedLimit
	}
}
