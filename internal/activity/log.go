package activity

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Log keeps activities newest first. When a cap is set the oldest entries are
// evicted once the log grows past it; cap 0 keeps everything.
type Log struct {
	mu      sync.Mutex
	entries []Activity
	cap     int
	clock   func() time.Time
}

func NewLog(capacity int) *Log {
	if capacity < 0 {
		capacity = 0
	}
	return &Log{cap: capacity, clock: time.Now}
}

// Prepend inserts a at the head of the log, filling ID and Timestamp when empty,
// and returns the stored record.
func (l *Log) Prepend(a Activity) Activity {
	l.mu.Lock()
	defer l.mu.Unlock()

	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.Timestamp.IsZero() {
		a.Timestamp = l.clock().UTC()
	}

	l.entries = append(l.entries, Activity{})
	copy(l.entries[1:], l.entries)
	l.entries[0] = a

	if l.cap > 0 && len(l.entries) > l.cap {
		clear(l.entries[l.cap:])
		l.entries = l.entries[:l.cap]
	}
	return a.clone()
}

// Entries returns a copy of the log, newest first.
func (l *Log) Entries() []Activity {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Activity, len(l.entries))
	for i, a := range l.entries {
		out[i] = a.clone()
	}
	return out
}

func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Clear drops every entry. Only the UI "clear" action uses this; domain code
// never removes activities.
func (l *Log) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = nil
}
