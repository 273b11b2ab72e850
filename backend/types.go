// Package backend is a thin HTTP client for the research-execution service.
// It performs one round trip per operation, surfaces failures as typed
// values, and holds no state beyond its configured http.Client.
package backend

import (
	"encoding/json"
	"strings"
)

// Execution lifecycle statuses reported by the backend.
const (
	StatusPending   = "pending"
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Statuses returns the known execution statuses in lifecycle order.
func Statuses() []string {
	return []string{StatusPending, StatusRunning, StatusCompleted, StatusFailed}
}

// IsKnownStatus reports whether value is one of the backend lifecycle statuses.
func IsKnownStatus(value string) bool {
	switch value {
	case StatusPending, StatusRunning, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

// CreateExecutionInput is the body for spawning a research execution.
type CreateExecutionInput struct {
	Topic            string   `json:"topic"`
	Goals            []string `json:"goals"`
	InteractionLimit int      `json:"interaction_limit"`
	Strategy         string   `json:"mece_strategy"`
}

// ExecutionCreated is the backend acknowledgement of a spawned execution.
type ExecutionCreated struct {
	TeamID    string `json:"team_id"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
}

// ExecutionDetail is a snapshot of one execution. Sachstand is the raw result
// document; it is kept opaque here and interpreted by the normalizer.
type ExecutionDetail struct {
	Topic     string          `json:"topic"`
	Status    string          `json:"status"`
	CreatedAt string          `json:"created_at"`
	UpdatedAt string          `json:"updated_at,omitempty"`
	Sachstand json.RawMessage `json:"sachstand,omitempty"`
}

// ExecutionSummary is one element of a list response. The backend emits
// either team_id or id depending on the endpoint version.
type ExecutionSummary struct {
	TeamID    string          `json:"team_id,omitempty"`
	ID        string          `json:"id,omitempty"`
	Topic     string          `json:"topic,omitempty"`
	Status    string          `json:"status,omitempty"`
	CreatedAt string          `json:"created_at,omitempty"`
	UpdatedAt string          `json:"updated_at,omitempty"`
	Sachstand json.RawMessage `json:"sachstand,omitempty"`
}

// Identifier returns team_id, falling back to id.
func (s ExecutionSummary) Identifier() string {
	if strings.TrimSpace(s.TeamID) != "" {
		return s.TeamID
	}
	return s.ID
}

// ResultDocument is the stored output artifact of a completed execution.
// Content is passed through to callers without reshaping.
type ResultDocument struct {
	FilePath string          `json:"file_path,omitempty"`
	Content  json.RawMessage `json:"content,omitempty"`
}

// HasContent reports whether the document carries usable content. The backend
// can answer 200 with a null or absent content field while the file is still
// being written.
func (d ResultDocument) HasContent() bool {
	trimmed := strings.TrimSpace(string(d.Content))
	return trimmed != "" && trimmed != "null"
}

// EntityCount extracts the entity list length from a raw result document.
// The second return is false when the document is absent or carries no
// entity list at all; an empty list still counts as present.
func EntityCount(doc json.RawMessage) (int, bool) {
	trimmed := strings.TrimSpace(string(doc))
	if trimmed == "" || trimmed == "null" {
		return 0, false
	}
	var probe struct {
		Entities *[]json.RawMessage `json:"entities"`
	}
	if err := json.Unmarshal(doc, &probe); err != nil || probe.Entities == nil {
		return 0, false
	}
	return len(*probe.Entities), true
}

// ListOptions hold filter and pagination arguments for ListExecutions.
// Filtering and slicing are applied client-side regardless of backend
// support, so correctness never depends on the backend honoring them.
type ListOptions struct {
	TopicFilter  string
	StatusFilter string
	Limit        int
	Offset       int
}
