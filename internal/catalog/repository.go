package catalog

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// Repository defines the interface for catalog storage.
type Repository interface {
	CreateTest(ctx context.Context, t *Test) error
	CreateLab(ctx context.Context, l *Lab) error
	CreateOffering(ctx context.Context, o *Offering) error

	GetTest(ctx context.Context, id int64) (*Test, error)
	GetLab(ctx context.Context, id int64) (*Lab, error)
	GetOffering(ctx context.Context, labID, testID int64) (*Offering, error)

	// ListTests returns every test in insertion order.
	ListTests(ctx context.Context) ([]Test, error)

	// ListLabs returns every lab in insertion order.
	ListLabs(ctx context.Context) ([]Lab, error)

	// SearchTests returns tests whose name or description contains the
	// query, case-insensitively, up to limit results.
	SearchTests(ctx context.Context, query string, limit int) ([]Test, error)

	// SearchLabs matches labs by name, city, state or address,
	// case-insensitively.
	SearchLabs(ctx context.Context, query string, limit int) ([]Lab, error)

	// PricedTests returns tests that carry a price, cheapest first,
	// up to limit results.
	PricedTests(ctx context.Context, limit int) ([]Test, error)

	// LabsForTest returns the labs offering the given test.
	LabsForTest(ctx context.Context, testID int64) ([]Lab, error)
}

// InMemoryRepository is a Repository backed by in-process maps. It is
// used by the seeded demo mode and by tests.
type InMemoryRepository struct {
	mu        sync.RWMutex
	nextTest  int64
	nextLab   int64
	tests     []Test
	labs      []Lab
	offerings []Offering
}

// NewInMemoryRepository creates an empty in-memory catalog.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{nextTest: 1, nextLab: 1}
}

// CreateTest assigns an ID and stores the test.
func (r *InMemoryRepository) CreateTest(ctx context.Context, t *Test) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t.ID = r.nextTest
	r.nextTest++
	r.tests = append(r.tests, *t)
	return nil
}

// CreateLab assigns an ID and stores the lab.
func (r *InMemoryRepository) CreateLab(ctx context.Context, l *Lab) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	l.ID = r.nextLab
	r.nextLab++
	r.labs = append(r.labs, *l)
	return nil
}

// CreateOffering links a lab to a test.
func (r *InMemoryRepository) CreateOffering(ctx context.Context, o *Offering) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findLab(o.LabID) == nil {
		return ErrLabNotFound
	}
	if r.findTest(o.TestID) == nil {
		return ErrTestNotFound
	}
	for _, existing := range r.offerings {
		if existing.LabID == o.LabID && existing.TestID == o.TestID {
			return ErrDuplicateOffering
		}
	}
	r.offerings = append(r.offerings, *o)
	return nil
}

// GetTest retrieves a test by ID.
func (r *InMemoryRepository) GetTest(ctx context.Context, id int64) (*Test, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if t := r.findTest(id); t != nil {
		copied := *t
		return &copied, nil
	}
	return nil, ErrTestNotFound
}

// GetLab retrieves a lab by ID.
func (r *InMemoryRepository) GetLab(ctx context.Context, id int64) (*Lab, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if l := r.findLab(id); l != nil {
		copied := *l
		return &copied, nil
	}
	return nil, ErrLabNotFound
}

// GetOffering retrieves the lab/test link.
func (r *InMemoryRepository) GetOffering(ctx context.Context, labID, testID int64) (*Offering, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, o := range r.offerings {
		if o.LabID == labID && o.TestID == testID {
			copied := o
			return &copied, nil
		}
	}
	return nil, ErrTestNotFound
}

// ListTests returns every test in insertion order.
func (r *InMemoryRepository) ListTests(ctx context.Context) ([]Test, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Test, len(r.tests))
	copy(out, r.tests)
	return out, nil
}

// ListLabs returns every lab in insertion order.
func (r *InMemoryRepository) ListLabs(ctx context.Context) ([]Lab, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Lab, len(r.labs))
	copy(out, r.labs)
	return out, nil
}

// SearchTests matches tests by name or description substring.
func (r *InMemoryRepository) SearchTests(ctx context.Context, query string, limit int) ([]Test, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	q := strings.ToLower(strings.TrimSpace(query))
	var out []Test
	for _, t := range r.tests {
		if q == "" {
			break
		}
		if strings.Contains(strings.ToLower(t.Name), q) ||
			strings.Contains(strings.ToLower(t.Description), q) {
			out = append(out, t)
			if limit > 0 && len(out) >= limit {
				break
			}
		}
	}
	return out, nil
}

// SearchLabs matches labs by name, city, state or address substring.
func (r *InMemoryRepository) SearchLabs(ctx context.Context, query string, limit int) ([]Lab, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	q := strings.ToLower(strings.TrimSpace(query))
	var out []Lab
	for _, l := range r.labs {
		if q == "" {
			break
		}
		if strings.Contains(strings.ToLower(l.Name), q) ||
			strings.Contains(strings.ToLower(l.City), q) ||
			strings.Contains(strings.ToLower(l.State), q) ||
			strings.Contains(strings.ToLower(l.Address), q) {
			out = append(out, l)
			if limit > 0 && len(out) >= limit {
				break
			}
		}
	}
	return out, nil
}

// PricedTests returns priced tests, cheapest first.
func (r *InMemoryRepository) PricedTests(ctx context.Context, limit int) ([]Test, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Test
	for _, t := range r.tests {
		if t.HasPrice() {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Price.LessThan(*out[j].Price)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// LabsForTest returns labs offering the test, in insertion order.
func (r *InMemoryRepository) LabsForTest(ctx context.Context, testID int64) ([]Lab, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Lab
	for _, l := range r.labs {
		for _, o := range r.offerings {
			if o.LabID == l.ID && o.TestID == testID {
				out = append(out, l)
				break
			}
		}
	}
	return out, nil
}

func (r *InMemoryRepository) findTest(id int64) *Test {
	for i := range r.tests {
		if r.tests[i].ID == id {
			return &r.tests[i]
		}
	}
	return nil
}

func (r *InMemoryRepository) findLab(id int64) *Lab {
	for i := range r.labs {
		if r.labs[i].ID == id {
			return &r.labs[i]
		}
	}
	return nil
}
