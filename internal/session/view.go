package session

import (
	"fmt"

	"famjam-cli/internal/model"
	"famjam-cli/internal/projection"
)

type State int

const (
	Idle State = iota
	Connecting
	Connected
	Failed
)

func (s State) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	case Failed:
		return "failed"
	default:
		return "idle"
	}
}

func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *State) UnmarshalText(b []byte) error {
	switch string(b) {
	case "connecting":
		*s = Connecting
	case "connected":
		*s = Connected
	case "failed":
		*s = Failed
	default:
		*s = Idle
	}
	return nil
}

// SessionState is the controller's view of its single subscription.
type SessionState struct {
	Board string
	State State
	SubID uint64 // 0 when no subscription is live
	Err   error  // set in Failed
}

// View is everything a renderer needs for one frame.
type View struct {
	Board       string            `json:"board"`
	State       State             `json:"state"`
	Filter      projection.Filter `json:"filter"`
	Sort        projection.Sort   `json:"sort"`
	Tasks       []model.Task      `json:"tasks"`
	Total       int               `json:"total"`
	Placeholder string            `json:"placeholder,omitempty"`
	Footer      string            `json:"footer"`
	Err         string            `json:"error,omitempty"`
}

type Renderer interface {
	Render(View)
}

// RendererFunc adapts a plain function to Renderer.
type RendererFunc func(View)

func (f RendererFunc) Render(v View) { f(v) }

const (
	placeholderIdle    = "Type a Board Code, then Join."
	placeholderLoading = "Connecting…"
	placeholderEmpty   = "No tasks yet. Add one above."
	placeholderFailed  = "Couldn't connect. Check store config."

	footerIdle   = "Not connected"
	footerFailed = "Connection error"
)

func connectedFooter(board string, shown, total int) string {
	if total == 0 {
		return fmt.Sprintf("Connected to %q • 0 tasks", board)
	}
	return fmt.Sprintf("Connected to %q • %d showing", board, shown)
}
