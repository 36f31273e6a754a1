package archive

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pep299/newsletter-generator/internal/model"
)

// Archive keeps uploaded context documents for a bounded retention period
type Archive interface {
	Put(ctx context.Context, doc model.ContextDocument) (string, error)
	Get(ctx context.Context, id string) (*Entry, error)
	Delete(ctx context.Context, id string) error
	Prune(ctx context.Context, now time.Time) (int, error)
	GetStats(ctx context.Context) (*Stats, error)
	Close() error
}

// Entry represents an archived context document
type Entry struct {
	ID        string                `json:"id"`
	Document  model.ContextDocument `json:"document"`
	CreatedAt time.Time             `json:"created_at"`
	ExpiresAt time.Time             `json:"expires_at"`
}

// Stats represents archive statistics
type Stats struct {
	TotalEntries   int       `json:"total_entries"`
	TotalBytes     int64     `json:"total_bytes"`
	OldestEntry    time.Time `json:"oldest_entry,omitempty"`
	NewestEntry    time.Time `json:"newest_entry,omitempty"`
	ExpiredEntries int       `json:"expired_entries"`
	Backend        string    `json:"backend"`
}

// Common archive errors
var (
	ErrNotFound = errors.New("archive entry not found")
	ErrClosed   = errors.New("archive closed")
)

// newEntry stamps a document with an ID and its retention window
func newEntry(doc model.ContextDocument, now time.Time, retention time.Duration) *Entry {
	return &Entry{
		ID:        uuid.New().String(),
		Document:  doc,
		CreatedAt: now,
		ExpiresAt: now.Add(retention),
	}
}

// MemoryArchive implements an in-memory archive
type MemoryArchive struct {
	entries   map[string]*Entry
	mutex     sync.RWMutex
	retention time.Duration
	now       func() time.Time
	closed    bool
}

// NewMemoryArchive creates a new in-memory archive
func NewMemoryArchive(retention time.Duration) *MemoryArchive {
	return &MemoryArchive{
		entries:   make(map[string]*Entry),
		retention: retention,
		now:       time.Now,
	}
}

// Put stores a document and returns its archive ID
func (m *MemoryArchive) Put(ctx context.Context, doc model.ContextDocument) (string, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.closed {
		return "", ErrClosed
	}

	entry := newEntry(doc, m.now(), m.retention)
	m.entries[entry.ID] = entry
	return entry.ID, nil
}

// Get retrieves an unexpired entry
func (m *MemoryArchive) Get(ctx context.Context, id string) (*Entry, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	entry, ok := m.entries[id]
	if !ok || m.now().After(entry.ExpiresAt) {
		return nil, ErrNotFound
	}

	copied := *entry
	return &copied, nil
}

// Delete removes an entry
func (m *MemoryArchive) Delete(ctx context.Context, id string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	delete(m.entries, id)
	return nil
}

// Prune removes every entry expired at now
func (m *MemoryArchive) Prune(ctx context.Context, now time.Time) (int, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	removed := 0
	for id, entry := range m.entries {
		if now.After(entry.ExpiresAt) {
			delete(m.entries, id)
			removed++
		}
	}
	return removed, nil
}

// GetStats returns archive statistics
func (m *MemoryArchive) GetStats(ctx context.Context) (*Stats, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	entries := make([]*Entry, 0, len(m.entries))
	for _, entry := range m.entries {
		entries = append(entries, entry)
	}

	stats := buildStats(entries, m.now())
	stats.Backend = "memory"
	return stats, nil
}

// Close releases the archive
func (m *MemoryArchive) Close() error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.closed = true
	m.entries = make(map[string]*Entry)
	return nil
}

func buildStats(entries []*Entry, now time.Time) *Stats {
	stats := &Stats{TotalEntries: len(entries)}
	if len(entries) == 0 {
		return stats
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].CreatedAt.Before(entries[j].CreatedAt)
	})
	stats.OldestEntry = entries[0].CreatedAt
	stats.NewestEntry = entries[len(entries)-1].CreatedAt

	for _, entry := range entries {
		stats.TotalBytes += int64(len(entry.Document.Content))
		if now.After(entry.ExpiresAt) {
			stats.ExpiredEntries++
		}
	}
	return stats
}
