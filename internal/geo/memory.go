package geo

import (
	"context"
	"fmt"
	"sync"
	"time"

	"courier-dispatch/internal/apperr"
	"courier-dispatch/internal/domain"
)

// MemoryIndex keeps availability records in process memory.
type MemoryIndex struct {
	mu       sync.RWMutex
	couriers map[int64]domain.Courier
	now      func() time.Time
}

// NewMemoryIndex returns an empty MemoryIndex.
func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{
		couriers: make(map[int64]domain.Courier),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Put inserts or replaces a courier record.
func (m *MemoryIndex) Put(c domain.Courier) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.couriers[c.ID] = c
}

// ApplyLocation moves a courier, creating an available record when unknown.
func (m *MemoryIndex) ApplyLocation(_ context.Context, u domain.LocationUpdate) (domain.Courier, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.couriers[u.CourierID]
	if !ok {
		c = domain.Courier{ID: u.CourierID, Rating: domain.DefaultRating, Available: true}
	}
	c.Location = u.Location
	if u.Available != nil {
		c.Available = *u.Available
	}
	c.UpdatedAt = m.now()
	m.couriers[c.ID] = c
	return c, nil
}

// Get returns a courier record. An unknown id wraps apperr.ErrNotFound.
func (m *MemoryIndex) Get(_ context.Context, id int64) (*domain.Courier, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.couriers[id]
	if !ok {
		return nil, fmt.Errorf("courier %d: %w", id, apperr.ErrNotFound)
	}
	return &c, nil
}

// SetAvailability flips the availability flag. It reports false for unknown couriers.
func (m *MemoryIndex) SetAvailability(_ context.Context, id int64, available bool) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.couriers[id]
	if !ok {
		return false, nil
	}
	c.Available = available
	c.UpdatedAt = m.now()
	m.couriers[id] = c
	return true, nil
}

// IncrementCompleted bumps the lifetime completed-delivery counter.
func (m *MemoryIndex) IncrementCompleted(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.couriers[id]; ok {
		c.CompletedDeliveries++
		m.couriers[id] = c
	}
	return nil
}

// ListAvailable returns a snapshot of available couriers.
func (m *MemoryIndex) ListAvailable(_ context.Context) ([]domain.Courier, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.Courier, 0, len(m.couriers))
	for _, c := range m.couriers {
		if c.Available {
			out = append(out, c)
		}
	}
	return out, nil
}

// FindNear implements Index.
func (m *MemoryIndex) FindNear(ctx context.Context, p domain.Point, radiusKm float64) ([]domain.Candidate, error) {
	couriers, err := m.ListAvailable(ctx)
	if err != nil {
		return nil, err
	}
	return Within(couriers, p, radiusKm), nil
}
