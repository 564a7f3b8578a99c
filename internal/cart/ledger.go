// Package cart owns the in-memory cart collection and its persisted document,
// which is independent from the catalog document.
package cart

import (
	"slices"
	"sync"

	"github.com/ecomm-labs/realtime-catalog/internal/fstore"
	"github.com/ecomm-labs/realtime-catalog/internal/idgen"
	"github.com/ecomm-labs/realtime-catalog/internal/model"
	"github.com/ecomm-labs/realtime-catalog/internal/obs"
)

// The cart document has always been tab-indented, unlike the catalog.
const indent = "\t"

// ProductResolver looks up catalog entries referenced by line items. The
// catalog store implements it; this is the only dependency between the two
// stores.
type ProductResolver interface {
	GetByID(id int) (model.Product, error)
}

// Ledger is the single source of truth for carts. Mutations run under one
// lock end-to-end, reads return copies.
type Ledger struct {
	path     string
	ids      *idgen.Allocator
	products ProductResolver

	mu    sync.RWMutex
	carts []model.Cart
}

// New returns a Ledger persisting to path and resolving products through
// products.
func New(path string, ids *idgen.Allocator, products ProductResolver) *Ledger {
	return &Ledger{path: path, ids: ids, products: products}
}

// Load reads the persisted cart document. A missing document initializes an
// empty collection.
func (l *Ledger) Load() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loadLocked()
}

func (l *Ledger) loadLocked() error {
	var carts []model.Cart
	if _, _, err := fstore.Read(l.path, &carts); err != nil {
		return err
	}
	l.carts = carts
	return nil
}

// Create appends an empty cart with the next sequential id and persists the
// full collection.
func (l *Ledger) Create() (model.Cart, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	c := model.Cart{ID: l.ids.CartID(len(l.carts)), Products: []model.LineItem{}}
	l.carts = append(l.carts, c)
	if err := l.persistLocked(); err != nil {
		return model.Cart{}, err
	}
	obs.Logger.Info("cart_created", "id", c.ID)
	return c, nil
}

// ItemsByID returns the line items of a cart, not the cart itself.
func (l *Ledger) ItemsByID(cartID int) ([]model.LineItem, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, c := range l.carts {
		if c.ID == cartID {
			return slices.Clone(c.Products), nil
		}
	}
	return nil, ErrNotFound
}

// Count reports the number of carts.
func (l *Ledger) Count() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.carts)
}

// AddItem adds one unit of productID to cartID, incrementing the quantity of
// an existing line item instead of appending a duplicate. The product must
// exist in the catalog at insertion time; its stock is neither checked nor
// decremented here.
func (l *Ledger) AddItem(cartID, productID int) (model.Cart, error) {
	if cartID <= 0 {
		return model.Cart{}, &ValidationError{Field: "cart id"}
	}
	if productID <= 0 {
		return model.Cart{}, &ValidationError{Field: "product id"}
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	idx := slices.IndexFunc(l.carts, func(c model.Cart) bool { return c.ID == cartID })
	if idx < 0 {
		return model.Cart{}, ErrNotFound
	}
	if _, err := l.products.GetByID(productID); err != nil {
		return model.Cart{}, err
	}
	c := &l.carts[idx]
	i := slices.IndexFunc(c.Products, func(it model.LineItem) bool { return it.ProductID == productID })
	if i >= 0 {
		c.Products[i].Quantity++
	} else {
		c.Products = append(c.Products, model.LineItem{ProductID: productID, Quantity: 1})
	}
	if err := l.persistLocked(); err != nil {
		return model.Cart{}, err
	}
	obs.Logger.Info("cart_item_added", "cart_id", cartID, "product_id", productID)
	out := l.carts[idx]
	out.Products = slices.Clone(out.Products)
	return out, nil
}

// persistLocked rewrites the full cart document. On a failed write the
// in-memory state is resynchronized from disk so the failed mutation is not
// kept.
func (l *Ledger) persistLocked() error {
	if _, err := fstore.Write(l.path, l.carts, indent); err != nil {
		if lerr := l.loadLocked(); lerr != nil {
			obs.Logger.Error("carts_reload_after_failed_write", "error", lerr)
		}
		return err
	}
	return nil
}
