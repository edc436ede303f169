// Package model contains struct definitions shared across packages.
package model

import (
	"strings"
	"time"
)

// Status describes the server-side processing lifecycle of an uploaded
// material. Transitions move forward only; completed and failed are terminal.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Terminal reports whether the status can no longer change.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Known reports whether the status is one the server is expected to emit.
// Unknown values are displayed as-is but treated as non-terminal.
func (s Status) Known() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

// Subject is a taxonomy entry materials are filed under.
type Subject struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Grade is a school grade level (1-12).
type Grade struct {
	ID    string `json:"id"`
	Level int    `json:"level"`
}

// Material is one uploaded study document as known to the client. The ID is
// server-assigned and immutable; the local list is a cache of server state.
type Material struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Subject    Subject   `json:"subject"`
	Grade      Grade     `json:"grade"`
	FileName   string    `json:"file,omitempty"`
	Status     Status    `json:"processing_status"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// FileExt returns the lower-cased extension of the original file name,
// including the dot, or "" when there is none.
func (m *Material) FileExt() string {
	name := m.FileName
	if name == "" {
		name = m.Title
	}
	idx := strings.LastIndex(name, ".")
	if idx < 0 {
		return ""
	}
	return strings.ToLower(name[idx:])
}
