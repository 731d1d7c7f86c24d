package keystroke

import (
	"sync"
	"time"
)

// Registry tracks one Recorder per client session. Entries expire after a
// TTL measured from last use, so abandoned sessions do not leak buffers.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*registryEntry
	ttl      time.Duration
	recorder RecorderOptions
}

type registryEntry struct {
	recorder  *Recorder
	expiresAt time.Time
}

// NewRegistry creates a registry whose sessions expire after ttl. Recorders
// are created lazily with opts on first use of a session ID.
func NewRegistry(ttl time.Duration, opts RecorderOptions) *Registry {
	reg := &Registry{
		sessions: make(map[string]*registryEntry),
		ttl:      ttl,
		recorder: opts,
	}

	go reg.cleanupLoop()

	return reg
}

// Get returns the recorder for the session, creating one if needed. Each
// access extends the session's TTL.
func (reg *Registry) Get(sessionID string) *Recorder {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	entry, exists := reg.sessions[sessionID]
	if !exists || time.Now().After(entry.expiresAt) {
		entry = &registryEntry{recorder: NewRecorder(reg.recorder)}
		reg.sessions[sessionID] = entry
	}
	entry.expiresAt = time.Now().Add(reg.ttl)
	return entry.recorder
}

// Delete removes a session from the registry.
func (reg *Registry) Delete(sessionID string) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	delete(reg.sessions, sessionID)
}

// Size returns the current number of live sessions.
func (reg *Registry) Size() int {
	reg.mu.RLock()
	defer reg.mu.RUnlock()

	return len(reg.sessions)
}

// cleanupLoop runs periodically to remove expired sessions
func (reg *Registry) cleanupLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		reg.cleanup()
	}
}

func (reg *Registry) cleanup() {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	now := time.Now()
	for id, entry := range reg.sessions {
		if now.After(entry.expiresAt) {
			delete(reg.sessions, id)
		}
	}
}
