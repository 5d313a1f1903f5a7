package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sort"
	"strconv"
	"sync"

	"github.com/waveshop/shopclient/internal/domain"
	"github.com/waveshop/shopclient/internal/storage"
)

const envelopeVersion = 1

// envelope is the persisted shape of the cart. Version 1 wraps the lines
// map; carts written by the legacy client were a bare lines map and are
// still accepted on load.
type envelope struct {
	Version int                     `json:"version"`
	Lines   map[int]domain.CartLine `json:"lines"`
}

// Store owns the cart mapping. All mutation goes through its methods and
// every mutation writes through to the backing store before returning.
type Store struct {
	mu      sync.Mutex
	lines   map[int]domain.CartLine
	backend storage.Store
	key     string
}

func NewStore(backend storage.Store, key string) *Store {
	return &Store{
		lines:   make(map[int]domain.CartLine),
		backend: backend,
		key:     key,
	}
}

// Load restores the persisted cart. A missing key, malformed blob, unknown
// envelope version or invariant-violating line all yield an empty cart;
// corrupt storage must never take the client down. Only a backend failure
// is returned, and the cart is still usable (empty) afterwards.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lines = make(map[int]domain.CartLine)

	data, err := s.backend.Get(ctx, s.key)
	if errors.Is(err, storage.ErrKeyNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load cart: %w", err)
	}

	lines, ok := decodeLines(data)
	if !ok {
		log.Printf("Discarding unreadable persisted cart under %q", s.key)
		return nil
	}
	s.lines = lines
	return nil
}

func decodeLines(data []byte) (map[int]domain.CartLine, bool) {
	var env envelope
	if err := json.Unmarshal(data, &env); err == nil && env.Version == envelopeVersion && env.Lines != nil {
		if validLines(env.Lines) {
			return env.Lines, true
		}
		return nil, false
	}
	return decodeLegacyLines(data)
}

// legacyLine matches the blob the old browser client wrote: the id field
// came from a DOM attribute and is a string there, so it is decoded
// tolerantly and the map key is what identifies the line.
type legacyLine struct {
	ID       json.Number `json:"id"`
	Name     string      `json:"name"`
	Price    int         `json:"price"`
	Quantity int         `json:"quantity"`
}

func decodeLegacyLines(data []byte) (map[int]domain.CartLine, bool) {
	var legacy map[string]legacyLine
	if err := json.Unmarshal(data, &legacy); err != nil || legacy == nil {
		return nil, false
	}

	lines := make(map[int]domain.CartLine, len(legacy))
	for key, line := range legacy {
		id, err := strconv.Atoi(key)
		if err != nil || line.Quantity < 1 || line.Price < 0 {
			return nil, false
		}
		lines[id] = domain.CartLine{
			ProductID: id,
			Name:      line.Name,
			UnitPrice: line.Price,
			Quantity:  line.Quantity,
		}
	}
	return lines, true
}

func validLines(lines map[int]domain.CartLine) bool {
	for id, line := range lines {
		if line.Quantity < 1 || line.UnitPrice < 0 || line.ProductID != id {
			return false
		}
	}
	return true
}

// AddOrIncrement inserts a new line at quantity 1, or bumps the quantity
// of the existing line for the same product.
func (s *Store) AddOrIncrement(ctx context.Context, p domain.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	line, ok := s.lines[p.ID]
	if ok {
		line.Quantity++
	} else {
		line = domain.CartLine{
			ProductID: p.ID,
			Name:      p.Name,
			UnitPrice: p.UnitPrice,
			Quantity:  1,
		}
	}
	s.lines[p.ID] = line
	return s.persistLocked(ctx)
}

func (s *Store) Increment(ctx context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	line, ok := s.lines[id]
	if !ok {
		return domain.ErrLineNotFound
	}
	line.Quantity++
	s.lines[id] = line
	return s.persistLocked(ctx)
}

// Decrement reduces a line's quantity by one; at quantity 1 the line is
// removed entirely rather than kept at zero.
func (s *Store) Decrement(ctx context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	line, ok := s.lines[id]
	if !ok {
		return domain.ErrLineNotFound
	}
	if line.Quantity > 1 {
		line.Quantity--
		s.lines[id] = line
	} else {
		delete(s.lines, id)
	}
	return s.persistLocked(ctx)
}

// Remove deletes the line if present and is a no-op otherwise.
func (s *Store) Remove(ctx context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.lines[id]; !ok {
		return nil
	}
	delete(s.lines, id)
	return s.persistLocked(ctx)
}

// Clear empties the cart and removes the persisted blob.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lines = make(map[int]domain.CartLine)
	if err := s.backend.Delete(ctx, s.key); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

// Total recomputes the cart total on every call. Carts are small; paying
// O(n) here avoids drift between an incremental total and the lines.
func (s *Store) Total() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := 0
	for _, line := range s.lines {
		total += line.UnitPrice * line.Quantity
	}
	return total
}

func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, line := range s.lines {
		count += line.Quantity
	}
	return count
}

// Lines returns a copy of the cart lines ordered by product id, for
// rendering. Mutating the result does not touch the cart.
func (s *Store) Lines() []domain.CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()

	lines := make([]domain.CartLine, 0, len(s.lines))
	for _, line := range s.lines {
		lines = append(lines, line)
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].ProductID < lines[j].ProductID })
	return lines
}

// Snapshot captures the cart as an order-item sequence for checkout
// submission. The snapshot is detached: cart mutations after the snapshot
// cannot change an already-built request.
func (s *Store) Snapshot() []domain.OrderItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]domain.OrderItem, 0, len(s.lines))
	for id, line := range s.lines {
		items = append(items, domain.OrderItem{ProductID: id, Quantity: line.Quantity})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ProductID < items[j].ProductID })
	return items
}

func (s *Store) persistLocked(ctx context.Context) error {
	data, err := json.Marshal(envelope{Version: envelopeVersion, Lines: s.lines})
	if err != nil {
		return fmt.Errorf("marshal cart: %w", err)
	}
	if err := s.backend.Set(ctx, s.key, data); err != nil {
		return fmt.Errorf("persist cart: %w", err)
	}
	return nil
}
