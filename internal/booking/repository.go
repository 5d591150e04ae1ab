package booking

import (
	"context"
	"strings"
	"sync"
	"time"
)

// Repository defines the interface for booking storage.
type Repository interface {
	Create(ctx context.Context, b *Booking) error
	GetByCode(ctx context.Context, code string) (*Booking, error)
	ExistsCode(ctx context.Context, code string) (bool, error)

	// UpdateSchedule changes the appointment time and notes.
	UpdateSchedule(ctx context.Context, code string, at time.Time, notes string) error

	// SetStatus records a status change. Transition rules are enforced
	// by the service, not here.
	SetStatus(ctx context.Context, code string, status Status) error

	// ListByLab returns a lab's bookings, newest first.
	ListByLab(ctx context.Context, labID int64) ([]Booking, error)
}

// InMemoryRepository is a Repository backed by a map, used in tests
// and the seeded demo mode.
type InMemoryRepository struct {
	mu      sync.RWMutex
	nextID  int64
	byCode  map[string]*Booking
	ordered []string
	nowFunc func() time.Time
}

// NewInMemoryRepository creates an empty in-memory booking store.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		nextID:  1,
		byCode:  make(map[string]*Booking),
		nowFunc: time.Now,
	}
}

// Create stores the booking, rejecting duplicate codes.
func (r *InMemoryRepository) Create(ctx context.Context, b *Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := strings.ToUpper(b.Code)
	if _, exists := r.byCode[key]; exists {
		return ErrCodeExists
	}
	b.ID = r.nextID
	r.nextID++
	now := r.nowFunc().UTC()
	b.CreatedAt = now
	b.UpdatedAt = now
	copied := *b
	r.byCode[key] = &copied
	r.ordered = append(r.ordered, key)
	return nil
}

// GetByCode retrieves a booking by its code, case-insensitively.
func (r *InMemoryRepository) GetByCode(ctx context.Context, code string) (*Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.byCode[strings.ToUpper(code)]
	if !ok {
		return nil, ErrBookingNotFound
	}
	copied := *b
	return &copied, nil
}

// ExistsCode reports whether the code is taken.
func (r *InMemoryRepository) ExistsCode(ctx context.Context, code string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.byCode[strings.ToUpper(code)]
	return ok, nil
}

// UpdateSchedule changes the appointment time and notes.
func (r *InMemoryRepository) UpdateSchedule(ctx context.Context, code string, at time.Time, notes string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.byCode[strings.ToUpper(code)]
	if !ok {
		return ErrBookingNotFound
	}
	b.Appointment = at
	b.Notes = notes
	b.UpdatedAt = r.nowFunc().UTC()
	return nil
}

// SetStatus records a status change.
func (r *InMemoryRepository) SetStatus(ctx context.Context, code string, status Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.byCode[strings.ToUpper(code)]
	if !ok {
		return ErrBookingNotFound
	}
	b.Status = status
	b.UpdatedAt = r.nowFunc().UTC()
	return nil
}

// ListByLab returns a lab's bookings, newest first.
func (r *InMemoryRepository) ListByLab(ctx context.Context, labID int64) ([]Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Booking
	for i := len(r.ordered) - 1; i >= 0; i-- {
		b := r.byCode[r.ordered[i]]
		if b.LabID == labID {
			out = append(out, *b)
		}
	}
	return out, nil
}
