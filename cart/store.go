package cart

import (
	"context"
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"github.com/Hasan-Al-Banna-Nahid/pi-commerce-sub000/models"
	"github.com/Hasan-Al-Banna-Nahid/pi-commerce-sub000/notify"
	"github.com/Hasan-Al-Banna-Nahid/pi-commerce-sub000/storage"
)

// Store owns the cart lines for the session. Every mutation writes the full
// line list back to durable storage; the item count is recomputed from the
// lines on each read.
type Store struct {
	mu       sync.Mutex
	lines    []models.CartLine
	storage  storage.Store
	notifier notify.Notifier
	logger   *zap.Logger
}

// NewStore loads any persisted cart. A corrupt payload is treated as an
// empty cart and the corrupt entry is purged rather than surfaced.
func NewStore(ctx context.Context, st storage.Store, notifier notify.Notifier, logger *zap.Logger) *Store {
	s := &Store{
		storage:  st,
		notifier: notifier,
		logger:   logger,
	}
	s.load(ctx)
	return s
}

func (s *Store) load(ctx context.Context) {
	data, err := s.storage.Get(ctx, storage.KeyCart)
	if err == storage.ErrNotFound {
		return
	}
	if err != nil {
		s.logger.Warn("cart load failed, starting empty", zap.Error(err))
		return
	}

	var lines []models.CartLine
	if err := json.Unmarshal(data, &lines); err != nil {
		s.logger.Warn("corrupt cart payload purged", zap.Error(err))
		if delErr := s.storage.Delete(ctx, storage.KeyCart); delErr != nil {
			s.logger.Warn("failed to purge corrupt cart", zap.Error(delErr))
		}
		return
	}

	// A persisted line must carry a positive quantity; drop anything else.
	for _, line := range lines {
		if line.Quantity > 0 {
			s.lines = append(s.lines, line)
		}
	}
}

// AddLine merges a product into the cart: an existing line's quantity is
// incremented, otherwise a new line is appended. Stock is validated
// server-side, so adding always succeeds.
func (s *Store) AddLine(ctx context.Context, productID, name string, unitPrice float64, quantity int, imageRef string) {
	if quantity < 1 {
		quantity = 1
	}

	s.mu.Lock()
	found := false
	for i := range s.lines {
		if s.lines[i].ProductID == productID {
			s.lines[i].Quantity += quantity
			found = true
			break
		}
	}
	if !found {
		s.lines = append(s.lines, models.CartLine{
			ProductID: productID,
			Name:      name,
			UnitPrice: unitPrice,
			Quantity:  quantity,
			ImageRef:  imageRef,
		})
	}
	s.persist(ctx)
	s.mu.Unlock()

	s.notifier.Success(name + " added to cart")
}

// RemoveLine deletes the line if present; absent ids are a silent no-op.
func (s *Store) RemoveLine(ctx context.Context, productID string) {
	s.mu.Lock()
	removed := false
	name := ""
	kept := s.lines[:0]
	for _, line := range s.lines {
		if line.ProductID == productID {
			removed = true
			name = line.Name
			continue
		}
		kept = append(kept, line)
	}
	s.lines = kept
	if removed {
		s.persist(ctx)
	}
	s.mu.Unlock()

	if removed {
		s.notifier.Info(name + " removed from cart")
	}
}

// SetQuantity overwrites a line's quantity; a quantity of zero or less
// removes the line.
func (s *Store) SetQuantity(ctx context.Context, productID string, quantity int) {
	if quantity <= 0 {
		s.RemoveLine(ctx, productID)
		return
	}

	s.mu.Lock()
	for i := range s.lines {
		if s.lines[i].ProductID == productID {
			s.lines[i].Quantity = quantity
			s.persist(ctx)
			break
		}
	}
	s.mu.Unlock()
}

// Clear empties the cart after order confirmation. Unlike RemoveLine it
// fires no notification.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	s.lines = nil
	s.persist(ctx)
	s.mu.Unlock()
}

// Count is the derived item count, recomputed on every read.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := 0
	for _, line := range s.lines {
		total += line.Quantity
	}
	return total
}

// Lines returns a snapshot copy of the cart lines.
func (s *Store) Lines() []models.CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.CartLine, len(s.lines))
	copy(out, s.lines)
	return out
}

// persist writes the full line list as a bare JSON array under the fixed
// cart key. Storage failures are logged, not surfaced: the in-memory cart
// stays usable either way. Caller holds s.mu.
func (s *Store) persist(ctx context.Context) {
	lines := s.lines
	if lines == nil {
		lines = []models.CartLine{}
	}
	data, err := json.Marshal(lines)
	if err != nil {
		s.logger.Error("cart marshal failed", zap.Error(err))
		return
	}
	if err := s.storage.Set(ctx, storage.KeyCart, data); err != nil {
		s.logger.Error("cart persist failed", zap.Error(err))
	}
}
