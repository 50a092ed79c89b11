package bulkedit

import (
	"sync"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/greenmandi/storefront/internal/catalog/store"
)

const defaultSessionTTL = 30 * time.Minute

type sessionEntry struct {
	expiresAt time.Time
	workflow  *Workflow
}

// SessionManager keeps one bulk-edit workflow per dashboard session.
// Sessions are dropped lazily once their TTL has elapsed; accessing a
// session refreshes it.
type SessionManager struct {
	store *store.Store
	log   *zap.Logger
	ttl   time.Duration

	mu       sync.Mutex
	sessions map[string]sessionEntry
}

type Params struct {
	fx.In

	Log   *zap.Logger
	Store *store.Store
}

func NewSessionManager(p Params) *SessionManager {
	return &SessionManager{
		store:    p.Store,
		log:      p.Log.Named("bulkedit.sessions"),
		ttl:      defaultSessionTTL,
		sessions: make(map[string]sessionEntry),
	}
}

// Session returns the workflow bound to the given session id, creating a
// fresh one when none exists or the previous one has expired.
func (m *SessionManager) Session(id string) *Workflow {
	now := time.Now().UTC()

	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.sessions[id]
	if ok && now.Before(entry.expiresAt) {
		entry.expiresAt = now.Add(m.ttl)
		m.sessions[id] = entry
		return entry.workflow
	}

	m.purgeLocked(now)

	wf := NewWorkflow(m.store)
	m.sessions[id] = sessionEntry{
		expiresAt: now.Add(m.ttl),
		workflow:  wf,
	}
	return wf
}

// Drop discards a session immediately.
func (m *SessionManager) Drop(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}

func (m *SessionManager) purgeLocked(now time.Time) {
	for id, entry := range m.sessions {
		if now.After(entry.expiresAt) {
			delete(m.sessions, id)
		}
	}
}

var Module = fx.Module("bulkedit",
	fx.Provide(NewSessionManager),
)
