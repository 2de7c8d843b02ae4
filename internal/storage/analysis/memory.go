package analysis

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/newthinker/insight/internal/core"
)

// MemoryStore is an in-memory analysis store with a bounded history.
type MemoryStore struct {
	payloads []*core.AnalysisPayload
	byID     map[string]*core.AnalysisPayload
	maxSize  int
	mu       sync.RWMutex
}

// NewMemoryStore creates a new in-memory store with max capacity.
func NewMemoryStore(maxSize int) *MemoryStore {
	if maxSize <= 0 {
		maxSize = 1000
	}
	return &MemoryStore{
		payloads: make([]*core.AnalysisPayload, 0, maxSize),
		byID:     make(map[string]*core.AnalysisPayload, maxSize),
		maxSize:  maxSize,
	}
}

// Save adds a payload to the store, evicting the oldest entry when full.
func (m *MemoryStore) Save(ctx context.Context, payload *core.AnalysisPayload) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if payload.ID == "" {
		payload.ID = uuid.NewString()
	}

	m.payloads = append(m.payloads, payload)
	m.byID[payload.ID] = payload

	if len(m.payloads) > m.maxSize {
		evicted := m.payloads[0]
		m.payloads = m.payloads[1:]
		delete(m.byID, evicted.ID)
	}
	return nil
}

// GetByID retrieves a payload by ID.
func (m *MemoryStore) GetByID(ctx context.Context, id string) (*core.AnalysisPayload, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if p, ok := m.byID[id]; ok {
		return p, nil
	}
	return nil, core.ErrAnalysisNotFound
}

// Latest retrieves the most recent payload for a ticker.
func (m *MemoryStore) Latest(ctx context.Context, ticker string) (*core.AnalysisPayload, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for i := len(m.payloads) - 1; i >= 0; i-- {
		if strings.EqualFold(m.payloads[i].Ticker, ticker) {
			return m.payloads[i], nil
		}
	}
	return nil, core.ErrAnalysisNotFound
}

// List returns payloads matching the filter, newest first.
func (m *MemoryStore) List(ctx context.Context, filter ListFilter) ([]*core.AnalysisPayload, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []*core.AnalysisPayload
	for i := len(m.payloads) - 1; i >= 0; i-- {
		if matches(m.payloads[i], filter) {
			result = append(result, m.payloads[i])
		}
	}

	if filter.Offset >= len(result) {
		return []*core.AnalysisPayload{}, nil
	}
	if filter.Offset > 0 {
		result = result[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(result) {
		result = result[:filter.Limit]
	}
	return result, nil
}

// Count returns the count of matching payloads.
func (m *MemoryStore) Count(ctx context.Context, filter ListFilter) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, p := range m.payloads {
		if matches(p, filter) {
			count++
		}
	}
	return count, nil
}

func matches(p *core.AnalysisPayload, filter ListFilter) bool {
	if filter.Ticker != "" && !strings.EqualFold(p.Ticker, filter.Ticker) {
		return false
	}
	if filter.CompanyType != "" && p.CompanyType != filter.CompanyType {
		return false
	}
	if filter.Recommendation != "" {
		if p.Recommendation == nil || p.Recommendation.Recommendation != filter.Recommendation {
			return false
		}
	}
	if !filter.From.IsZero() && p.GeneratedAt.Before(filter.From) {
		return false
	}
	if !filter.To.IsZero() && p.GeneratedAt.After(filter.To) {
		return false
	}
	return true
}
