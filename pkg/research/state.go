package research

import (
	"github.com/mikeboe/research-assistant/pkg/grounding"
)

// Status is the phase of the single research operation.
type Status int

const (
	Idle Status = iota
	Loading
	Succeeded
	Failed
)

func (s Status) String() string {
	switch s {
	case Loading:
		return "loading"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return "idle"
	}
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// OperationState holds exactly one of the four phases. Result is set only
// when Succeeded and Message only when Failed.
type OperationState struct {
	Status  Status                  `json:"status"`
	Result  *grounding.SearchResult `json:"result"`
	Message string                  `json:"error,omitempty"`
}

// Snapshot is an immutable copy of the orchestrator state.
type Snapshot struct {
	Query       string         `json:"query"`
	State       OperationState `json:"state"`
	ConfigError bool           `json:"config_error"`
}

// Loading reports whether a search is in flight.
func (s Snapshot) Loading() bool {
	return s.State.Status == Loading
}

// CanSubmit reports whether a submit action would be accepted.
func (s Snapshot) CanSubmit() bool {
	return !s.Loading() && !isBlank(s.Query)
}

// ErrorMessage returns the failure message, or "" unless Failed.
func (s Snapshot) ErrorMessage() string {
	if s.State.Status != Failed {
		return ""
	}
	return s.State.Message
}
