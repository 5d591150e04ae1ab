package contact

import (
	"context"
	"sync"
	"time"
)

// Repository defines the interface for contact message storage.
type Repository interface {
	Create(ctx context.Context, m *Message) error

	// ListForLab returns a lab's messages, newest first.
	ListForLab(ctx context.Context, labID int64) ([]Message, error)

	// ListForAdmin returns messages addressed to the platform admins,
	// newest first.
	ListForAdmin(ctx context.Context) ([]Message, error)

	// DeleteForLab removes one of the lab's messages. Deleting a
	// message that belongs to another recipient is a not-found.
	DeleteForLab(ctx context.Context, id, labID int64) error
}

// InMemoryRepository is a Repository backed by a slice, used in tests
// and the seeded demo mode.
type InMemoryRepository struct {
	mu       sync.RWMutex
	nextID   int64
	messages []Message
	nowFunc  func() time.Time
}

// NewInMemoryRepository creates an empty in-memory message store.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{nextID: 1, nowFunc: time.Now}
}

// Create stores the message.
func (r *InMemoryRepository) Create(ctx context.Context, m *Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m.ID = r.nextID
	r.nextID++
	m.SentAt = r.nowFunc().UTC()
	r.messages = append(r.messages, *m)
	return nil
}

// ListForLab returns a lab's messages, newest first.
func (r *InMemoryRepository) ListForLab(ctx context.Context, labID int64) ([]Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Message
	for i := len(r.messages) - 1; i >= 0; i-- {
		m := r.messages[i]
		if m.LabID != nil && *m.LabID == labID {
			out = append(out, m)
		}
	}
	return out, nil
}

// ListForAdmin returns admin-addressed messages, newest first.
func (r *InMemoryRepository) ListForAdmin(ctx context.Context) ([]Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Message
	for i := len(r.messages) - 1; i >= 0; i-- {
		if r.messages[i].RecipientAdmin {
			out = append(out, r.messages[i])
		}
	}
	return out, nil
}

// DeleteForLab removes one of the lab's messages.
func (r *InMemoryRepository) DeleteForLab(ctx context.Context, id, labID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, m := range r.messages {
		if m.ID == id && m.LabID != nil && *m.LabID == labID {
			r.messages = append(r.messages[:i], r.messages[i+1:]...)
			return nil
		}
	}
	return ErrMessageNotFound
}
