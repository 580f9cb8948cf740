package main

// Actions accepted in ActionEvent.Action.
const (
	ActionAdd    = "add"
	ActionRemove = "remove"
	ActionCheck  = "check"
	ActionList   = "list"
	ActionClear  = "clear"
)

// ActionEvent is the input payload: one action applied to a session.
type ActionEvent struct {
	SessionID string      `json:"sessionId,omitempty"`
	Action    string      `json:"action"`
	Items     []EventItem `json:"items,omitempty"`
	Bucket    string      `json:"bucket,omitempty"`
}

// EventItem identifies one media object. Key is a key in the media bucket
// or an s3:// URI. MimeType is derived from the key's extension when empty.
type EventItem struct {
	Key        string `json:"key"`
	MimeType   string `json:"mimeType,omitempty"`
	Size       int64  `json:"size,omitempty"`
	DurationMs int64  `json:"durationMs,omitempty"`
}

// ActionResult is returned to the caller after every action.
type ActionResult struct {
	SessionID      string         `json:"sessionId"`
	Results        []ItemResult   `json:"results,omitempty"`
	Selected       []SelectedItem `json:"selected"`
	CollectionType string         `json:"collectionType"`
	MaxSelectable  int            `json:"maxSelectable"`
	Error          string         `json:"error,omitempty"`
}

// ItemResult is the verdict for one requested item.
type ItemResult struct {
	Key      string     `json:"key"`
	Accepted bool       `json:"accepted"`
	Checked  int        `json:"checked,omitempty"`
	Cause    *CauseView `json:"cause,omitempty"`
}

// CauseView is a rejection ready for display.
type CauseView struct {
	Kind    string `json:"kind"`
	Form    string `json:"form"`
	Title   string `json:"title,omitempty"`
	Message string `json:"message"`
}

// SelectedItem is one entry of the selection, in selection order.
type SelectedItem struct {
	Key      string `json:"key"`
	MimeType string `json:"mimeType"`
	Checked  int    `json:"checked"`
}
