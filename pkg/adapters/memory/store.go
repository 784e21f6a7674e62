package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/simplebot/pkg/domain"
)

// Store implements ports.StateStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string][]byte
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string][]byte),
	}
}

// Save persists the bag in memory.
// Bags are kept serialized so that values read back have the same shape
// as with the durable stores (nested records become maps).
func (s *Store) Save(ctx context.Context, key string, bag domain.Bag) error {
	data, err := json.Marshal(bag)
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = data
	return nil
}

// Load retrieves the bag from memory.
func (s *Store) Load(ctx context.Context, key string) (domain.Bag, error) {
	s.mu.RLock()
	data, ok := s.data[key]
	s.mu.RUnlock()

	if !ok {
		return nil, domain.ErrStateNotFound
	}

	var bag domain.Bag
	if err := json.Unmarshal(data, &bag); err != nil {
		return nil, fmt.Errorf("failed to unmarshal state: %w", err)
	}
	if bag == nil {
		bag = domain.Bag{}
	}
	return bag, nil
}

// Delete removes the bag.
func (s *Store) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

// List returns stored keys in lexical order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}
