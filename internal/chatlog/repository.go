package chatlog

import (
	"context"
	"sync"
	"time"
)

// Repository defines the interface for chat log storage.
type Repository interface {
	SaveMessage(ctx context.Context, m *ChatMessage) error

	// RecentMessages returns up to limit turns for the session,
	// oldest first.
	RecentMessages(ctx context.Context, sessionID string, limit int) ([]ChatMessage, error)

	SaveRecommendation(ctx context.Context, rec *Recommendation) error

	// RecentRecommendations returns the latest snapshots, newest first.
	RecentRecommendations(ctx context.Context, limit int) ([]Recommendation, error)
}

// InMemoryRepository is a Repository backed by slices, used in tests
// and the seeded demo mode.
type InMemoryRepository struct {
	mu       sync.RWMutex
	nextID   int64
	messages []ChatMessage
	recs     []Recommendation
	nowFunc  func() time.Time
}

// NewInMemoryRepository creates an empty in-memory chat log.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{nextID: 1, nowFunc: time.Now}
}

// SaveMessage appends a turn.
func (r *InMemoryRepository) SaveMessage(ctx context.Context, m *ChatMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m.ID = r.nextID
	r.nextID++
	m.CreatedAt = r.nowFunc().UTC()
	r.messages = append(r.messages, *m)
	return nil
}

// RecentMessages returns the session's last turns, oldest first.
func (r *InMemoryRepository) RecentMessages(ctx context.Context, sessionID string, limit int) ([]ChatMessage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []ChatMessage
	for _, m := range r.messages {
		if m.SessionID == sessionID {
			out = append(out, m)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

// SaveRecommendation appends a snapshot.
func (r *InMemoryRepository) SaveRecommendation(ctx context.Context, rec *Recommendation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec.ID = r.nextID
	r.nextID++
	rec.CreatedAt = r.nowFunc().UTC()
	r.recs = append(r.recs, *rec)
	return nil
}

// RecentRecommendations returns the latest snapshots, newest first.
func (r *InMemoryRepository) RecentRecommendations(ctx context.Context, limit int) ([]Recommendation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Recommendation
	for i := len(r.recs) - 1; i >= 0; i-- {
		out = append(out, r.recs[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}
