// Package state holds the client's in-memory view of the session: the
// materials cache, the chat transcript, and the UI mode flags. All mutation
// goes through methods here; nothing else keeps its own copy of this data.
package state

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/edurag/tutorcli/internal/model"
)

// App is the single application-state object. The server remains the source
// of truth for materials; this is a cache reconciled by the tracker.
type App struct {
	mu        sync.RWMutex
	materials []model.Material
	messages  []model.Message
	persona   string
	auditMode bool
	stats     model.SessionStats
}

// New constructs an App with the given starting persona.
func New(persona string) *App {
	if persona == "" {
		persona = "helpful_tutor"
	}
	return &App{persona: persona}
}

// ReplaceMaterials swaps in a freshly fetched materials list, preserving the
// terminal-status guarantee: a cached terminal status is never regressed by
// a stale non-terminal read.
func (a *App) ReplaceMaterials(materials []model.Material) {
	a.mu.Lock()
	defer a.mu.Unlock()
	terminal := make(map[string]model.Status, len(a.materials))
	for _, m := range a.materials {
		if m.Status.Terminal() {
			terminal[m.ID] = m.Status
		}
	}
	next := make([]model.Material, len(materials))
	copy(next, materials)
	for i := range next {
		if st, ok := terminal[next[i].ID]; ok && !next[i].Status.Terminal() {
			next[i].Status = st
		}
	}
	a.materials = next
}

// InsertMaterial places a newly uploaded record at the head of the list,
// mirroring the optimistic insert done right after a successful upload.
func (a *App) InsertMaterial(m model.Material) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for i := range a.materials {
		if a.materials[i].ID == m.ID {
			a.materials[i] = m
			return
		}
	}
	a.materials = append([]model.Material{m}, a.materials...)
}

// SetStatus updates one record's displayed status in place. Regressions out
// of a terminal state are refused; the update reports whether it applied.
func (a *App) SetStatus(id string, status model.Status) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	for i := range a.materials {
		if a.materials[i].ID != id {
			continue
		}
		if a.materials[i].Status.Terminal() && a.materials[i].Status != status {
			return false
		}
		a.materials[i].Status = status
		return true
	}
	return false
}

// RemoveMaterial deletes a record from the cache. Terminal from the
// client's perspective; there is no undo.
func (a *App) RemoveMaterial(id string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	for i := range a.materials {
		if a.materials[i].ID == id {
			a.materials = append(a.materials[:i], a.materials[i+1:]...)
			return true
		}
	}
	return false
}

// Materials returns a copy of the cached list.
func (a *App) Materials() []model.Material {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]model.Material, len(a.materials))
	copy(out, a.materials)
	return out
}

// Material looks up one cached record by id.
func (a *App) Material(id string) (model.Material, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	for _, m := range a.materials {
		if m.ID == id {
			return m, true
		}
	}
	return model.Material{}, false
}

// AppendMessage adds a transcript entry, preserving arrival order, and
// returns it with id and timestamp filled in.
func (a *App) AppendMessage(msg model.Message) model.Message {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.messages = append(a.messages, msg)
	return msg
}

// Transcript returns a copy of the chat transcript.
func (a *App) Transcript() []model.Message {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]model.Message, len(a.messages))
	copy(out, a.messages)
	return out
}

// ClearTranscript drops all chat messages.
func (a *App) ClearTranscript() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.messages = nil
}

// Persona returns the current response-style mode.
func (a *App) Persona() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.persona
}

// SetPersona switches the response-style mode.
func (a *App) SetPersona(p string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.persona = p
}

// AuditMode reports whether interactions are flagged for audit logging.
func (a *App) AuditMode() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.auditMode
}

// SetAuditMode toggles the audit flag.
func (a *App) SetAuditMode(on bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.auditMode = on
}

// SetStats stores the latest session metrics.
func (a *App) SetStats(s model.SessionStats) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.stats = s
}

// Stats returns the last fetched session metrics.
func (a *App) Stats() model.SessionStats {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.stats
}
