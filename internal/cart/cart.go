// Package cart implements the client-held shopping cart: a list of
// (productId, quantity) pairs accumulated locally with no server state.
// The cart is not authoritative; checkout reconciliation works from the
// snapshot captured by the payment processor, so a stale or lost cart
// only ever costs convenience, never correctness.
package cart

import (
	"encoding/json"
	"sync"

	"owzars-commerce/internal/domain"
)

// StorageKey is the key under which the cart snapshot is stored.
const StorageKey = "owzars-commerce/cart"

// Storage abstracts the client's local storage. Implementations are
// last-write-wins; concurrent writers may race, which is acceptable
// because the cart is not authoritative.
type Storage interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
	Delete(key string) error
}

// Store accumulates cart items on top of a Storage backend.
type Store struct {
	mu      sync.Mutex
	storage Storage
}

// New creates a cart store over the given storage backend.
func New(storage Storage) *Store {
	return &Store{storage: storage}
}

// Items returns the current cart snapshot. Corrupted or foreign stored
// data is treated as an empty cart rather than an error.
func (s *Store) Items() []domain.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read()
}

// Add merges quantity into the cart, summing with any existing entry for
// the same product. Non-positive quantities and empty ids are ignored.
func (s *Store) Add(productID string, quantity int) {
	if productID == "" || quantity <= 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.read()
	for i := range items {
		if items[i].ProductID == productID {
			items[i].Quantity += quantity
			s.write(items)
			return
		}
	}

	items = append(items, domain.CartItem{ProductID: productID, Quantity: quantity})
	s.write(items)
}

// Update sets a product's quantity exactly, removing the entry when the
// quantity drops to zero or below.
func (s *Store) Update(productID string, quantity int) {
	if productID == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if quantity <= 0 {
		s.write(remove(s.read(), productID))
		return
	}

	items := s.read()
	for i := range items {
		if items[i].ProductID == productID {
			items[i].Quantity = quantity
			s.write(items)
			return
		}
	}

	items = append(items, domain.CartItem{ProductID: productID, Quantity: quantity})
	s.write(items)
}

// Remove deletes a product from the cart.
func (s *Store) Remove(productID string) {
	if productID == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.write(remove(s.read(), productID))
}

// Clear empties the cart. Called after a successful checkout redirect.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.storage.Delete(StorageKey)
}

func (s *Store) read() []domain.CartItem {
	raw, err := s.storage.Get(StorageKey)
	if err != nil || len(raw) == 0 {
		return []domain.CartItem{}
	}

	var parsed []domain.CartItem
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return []domain.CartItem{}
	}

	items := make([]domain.CartItem, 0, len(parsed))
	for _, item := range parsed {
		if item.ProductID == "" || item.Quantity <= 0 {
			continue
		}
		items = append(items, item)
	}
	return items
}

func (s *Store) write(items []domain.CartItem) {
	raw, err := json.Marshal(items)
	if err != nil {
		return
	}
	s.storage.Set(StorageKey, raw)
}

func remove(items []domain.CartItem, productID string) []domain.CartItem {
	out := items[:0]
	for _, item := range items {
		if item.ProductID != productID {
			out = append(out, item)
		}
	}
	return out
}
