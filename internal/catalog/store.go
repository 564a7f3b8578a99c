// Package catalog owns the authoritative in-memory product collection and
// keeps it synchronized with the persisted catalog document.
package catalog

import (
	"bytes"
	"slices"
	"sync"

	"github.com/ecomm-labs/realtime-catalog/internal/broadcast"
	"github.com/ecomm-labs/realtime-catalog/internal/fstore"
	"github.com/ecomm-labs/realtime-catalog/internal/idgen"
	"github.com/ecomm-labs/realtime-catalog/internal/model"
	"github.com/ecomm-labs/realtime-catalog/internal/obs"
)

// The catalog document is persisted with two-space indentation; the cart
// document uses tabs. Both formats predate this service and must not change.
const indent = "  "

// Store is the single source of truth for products. Every mutating operation
// runs its reload-mutate-persist sequence under the write lock, so concurrent
// mutations cannot lose each other's writes; List runs under the read lock
// and returns a copy.
type Store struct {
	path string
	ids  *idgen.Allocator
	bus  *broadcast.Bus

	mu       sync.RWMutex
	products []model.Product
	lastRaw  []byte // document bytes last written or loaded, self-write provenance
}

// New returns a Store persisting to path. Every successful mutation publishes
// the new snapshot on bus.
func New(path string, ids *idgen.Allocator, bus *broadcast.Bus) *Store {
	return &Store{path: path, ids: ids, bus: bus}
}

// Load reads the persisted document. A missing document initializes an empty
// collection; a corrupt one returns *fstore.CorruptStateError and leaves the
// previous in-memory state in place.
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked()
}

func (s *Store) loadLocked() error {
	var products []model.Product
	raw, _, err := fstore.Read(s.path, &products)
	if err != nil {
		return err
	}
	s.products = products
	s.lastRaw = raw
	return nil
}

// List returns a copy of the current in-memory collection without touching
// storage.
func (s *Store) List() []model.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() []model.Product {
	out := make([]model.Product, len(s.products))
	for i, p := range s.products {
		out[i] = p
		out[i].Thumbnails = slices.Clone(p.Thumbnails)
	}
	return out
}

// GetByID reloads from storage, then searches the collection.
func (s *Store) GetByID(id int) (model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.loadLocked(); err != nil {
		return model.Product{}, err
	}
	for _, p := range s.products {
		if p.ID == id {
			p.Thumbnails = slices.Clone(p.Thumbnails)
			return p, nil
		}
	}
	return model.Product{}, ErrNotFound
}

// Add validates p, allocates an id and appends it to the collection. The id
// field of p is ignored. On a failed write the append is rolled back by
// reloading from disk.
func (s *Store) Add(p model.Product) (model.Product, error) {
	if err := validate(p); err != nil {
		return model.Product{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	taken := make(map[int]bool, len(s.products))
	for _, existing := range s.products {
		if existing.Code == p.Code {
			return model.Product{}, ErrDuplicateCode
		}
		taken[existing.ID] = true
	}
	id, err := s.ids.ProductID(taken)
	if err != nil {
		return model.Product{}, err
	}
	p.ID = id
	p.Thumbnails = slices.Clone(p.Thumbnails)
	s.products = append(s.products, p)
	if err := s.persistLocked(); err != nil {
		return model.Product{}, err
	}
	obs.Logger.Info("product_added", "id", p.ID, "code", p.Code)
	return p, nil
}

// Update reloads, then merges patch over the product with the given id and
// re-validates the result. Empty, zero and false patch fields leave the
// stored value unchanged; a present thumbnails array always replaces. Code
// uniqueness is re-checked only when the code actually changes.
func (s *Store) Update(id int, patch model.ProductPatch) (model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.loadLocked(); err != nil {
		return model.Product{}, err
	}
	idx := slices.IndexFunc(s.products, func(p model.Product) bool { return p.ID == id })
	if idx < 0 {
		return model.Product{}, ErrNotFound
	}
	merged := merge(s.products[idx], patch)
	if err := validate(merged); err != nil {
		return model.Product{}, err
	}
	if merged.Code != s.products[idx].Code {
		for _, existing := range s.products {
			if existing.Code == merged.Code {
				return model.Product{}, ErrDuplicateCode
			}
		}
	}
	s.products[idx] = merged
	if err := s.persistLocked(); err != nil {
		return model.Product{}, err
	}
	obs.Logger.Info("product_updated", "id", id)
	return merged, nil
}

// Remove reloads, then deletes the product with the given id.
func (s *Store) Remove(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.loadLocked(); err != nil {
		return err
	}
	idx := slices.IndexFunc(s.products, func(p model.Product) bool { return p.ID == id })
	if idx < 0 {
		return ErrNotFound
	}
	s.products = slices.Delete(s.products, idx, idx+1)
	if err := s.persistLocked(); err != nil {
		return err
	}
	obs.Logger.Info("product_removed", "id", id)
	return nil
}

// Resync re-reads the persisted document and swaps in its content when it
// differs from the bytes this store last wrote or loaded. The watcher uses
// the changed result to decide whether to publish: the store's own writes
// re-read as identical bytes and stay quiet.
func (s *Store) Resync() (changed bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var products []model.Product
	raw, _, err := fstore.Read(s.path, &products)
	if err != nil {
		return false, err
	}
	if bytes.Equal(raw, s.lastRaw) {
		return false, nil
	}
	s.products = products
	s.lastRaw = raw
	return true, nil
}

// persistLocked rewrites the full document and publishes the new snapshot.
// On a failed write the in-memory state is resynchronized from whatever
// actually made it to disk, so memory never runs ahead of storage.
func (s *Store) persistLocked() error {
	raw, err := fstore.Write(s.path, s.products, indent)
	if err != nil {
		if lerr := s.loadLocked(); lerr != nil {
			obs.Logger.Error("catalog_reload_after_failed_write", "error", lerr)
		}
		return err
	}
	s.lastRaw = raw
	s.bus.Publish(s.snapshotLocked())
	return nil
}

// merge applies the historical merge rule: a patch field only wins when it is
// present and truthy, except thumbnails where any present value wins.
func merge(p model.Product, patch model.ProductPatch) model.Product {
	if patch.Title != nil && *patch.Title != "" {
		p.Title = *patch.Title
	}
	if patch.Description != nil && *patch.Description != "" {
		p.Description = *patch.Description
	}
	if patch.Code != nil && *patch.Code != "" {
		p.Code = *patch.Code
	}
	if patch.Price != nil && *patch.Price != 0 {
		p.Price = *patch.Price
	}
	if patch.Status != nil && *patch.Status {
		p.Status = true
	}
	if patch.Stock != nil && *patch.Stock != 0 {
		p.Stock = *patch.Stock
	}
	if patch.Category != nil && *patch.Category != "" {
		p.Category = *patch.Category
	}
	if patch.Thumbnails != nil {
		p.Thumbnails = slices.Clone(*patch.Thumbnails)
	}
	return p
}

// validate enforces the rule that no required field may be empty or falsy:
// a false status and a zero stock are rejected along with empty strings.
// Thumbnails is the only optional field.
func validate(p model.Product) error {
	switch {
	case p.Title == "":
		return &ValidationError{Field: "title"}
	case p.Description == "":
		return &ValidationError{Field: "description"}
	case p.Code == "":
		return &ValidationError{Field: "code"}
	case p.Price <= 0:
		return &ValidationError{Field: "price"}
	case !p.Status:
		return &ValidationError{Field: "status"}
	case p.Stock <= 0:
		return &ValidationError{Field: "stock"}
	case p.Category == "":
		return &ValidationError{Field: "category"}
	}
	return nil
}
