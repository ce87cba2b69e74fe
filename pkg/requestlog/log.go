package requestlog

import (
	"sync"
	"time"

	"github.com/stubkit/stubd/internal/id"
	"github.com/stubkit/stubd/pkg/stub"
)

// Entry is one recorded request with its log identity.
type Entry struct {
	ID        string
	Timestamp time.Time
	Request   *stub.Request
}

// Log is a thread-safe, append-only request history.
type Log struct {
	mu      sync.RWMutex
	entries []*Entry
}

// NewLog creates an empty Log.
func NewLog() *Log {
	return &Log{}
}

// Append records a request. It never fails and records every request,
// including those no stub ends up matching.
func (l *Log) Append(req *stub.Request) *Entry {
	entry := &Entry{
		ID:        id.Request(),
		Timestamp: time.Now().UTC(),
		Request:   req,
	}

	l.mu.Lock()
	l.entries = append(l.entries, entry)
	l.mu.Unlock()

	return entry
}

// Snapshot returns the recorded requests oldest-first as a copied view:
// appends after the call are not observed through the returned slice.
func (l *Log) Snapshot() []*stub.Request {
	l.mu.RLock()
	defer l.mu.RUnlock()

	result := make([]*stub.Request, len(l.entries))
	for i, e := range l.entries {
		result[i] = e.Request
	}
	return result
}

// Entries returns the full entries oldest-first as a copied view.
func (l *Log) Entries() []*Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	result := make([]*Entry, len(l.entries))
	copy(result, l.entries)
	return result
}

// Count returns the number of recorded requests.
func (l *Log) Count() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// Clear removes all recorded requests. Exposed for the control API only;
// the live request flow never removes entries.
func (l *Log) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = nil
}
