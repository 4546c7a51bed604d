package catalog

import (
	"sync"

	"export-catalog-service/internal/domain"
)

// Overlay is the administrative edit list layered over the immutable base
// catalog. Edits are copy-on-write: the base catalog is never touched, and
// nothing persists across restarts. The public product endpoints keep
// reading the base catalog; only the admin surface sees the overlay.
type Overlay struct {
	mu      sync.RWMutex
	base    *Catalog
	edits   map[int64]domain.Product
	added   []int64
	deleted map[int64]bool
}

// NewOverlay creates an empty overlay on top of base.
func NewOverlay(base *Catalog) *Overlay {
	return &Overlay{
		base:    base,
		edits:   make(map[int64]domain.Product),
		deleted: make(map[int64]bool),
	}
}

// Products returns the merged view: base products in catalog order with
// edits applied and deletions removed, then additions in insertion order.
func (o *Overlay) Products() []domain.Product {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.mergedLocked()
}

func (o *Overlay) mergedLocked() []domain.Product {
	base := o.base.Products()
	out := make([]domain.Product, 0, len(base)+len(o.added))
	for _, p := range base {
		if o.deleted[p.ID] {
			continue
		}
		if edited, ok := o.edits[p.ID]; ok {
			out = append(out, edited)
			continue
		}
		out = append(out, p)
	}
	for _, id := range o.added {
		if o.deleted[id] {
			continue
		}
		if p, ok := o.edits[id]; ok {
			out = append(out, p)
		}
	}
	return out
}

// ProductByID looks a product up in the merged view.
func (o *Overlay) ProductByID(id int64) (domain.Product, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if o.deleted[id] {
		return domain.Product{}, false
	}
	if p, ok := o.edits[id]; ok {
		return p, true
	}
	return o.base.ProductByID(id)
}

// Upsert records an edit. A zero id means "create": the product gets the
// current maximum id plus one, matching how the admin screen assigns ids.
// A non-zero id replaces the product with that id, resurrecting it if it
// had been deleted. The stored product is returned with its final id.
func (o *Overlay) Upsert(p domain.Product) domain.Product {
	o.mu.Lock()
	defer o.mu.Unlock()

	if p.ID == 0 {
		p.ID = o.maxIDLocked() + 1
	}
	if _, exists := o.lookupLocked(p.ID); !exists {
		o.added = append(o.added, p.ID)
	}
	delete(o.deleted, p.ID)
	o.edits[p.ID] = p
	return p
}

// Delete removes a product from the merged view. Deleting an id absent from
// the view returns ErrProductNotFound.
func (o *Overlay) Delete(id int64) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, ok := o.visibleLocked(id); !ok {
		return ErrProductNotFound
	}
	o.deleted[id] = true
	return nil
}

// Reset discards every edit, returning the view to the base catalog.
func (o *Overlay) Reset() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.edits = make(map[int64]domain.Product)
	o.added = nil
	o.deleted = make(map[int64]bool)
}

// Stats summarizes the merged view for the admin dashboard.
type Stats struct {
	TotalProducts    int `json:"total_products"`
	FeaturedProducts int `json:"featured_products"`
	PremiumProducts  int `json:"premium_products"`
	Categories       int `json:"categories"`
}

// Stats computes dashboard counters over the merged view.
func (o *Overlay) Stats() Stats {
	o.mu.RLock()
	defer o.mu.RUnlock()

	var s Stats
	cats := make(map[string]bool)
	for _, p := range o.mergedLocked() {
		s.TotalProducts++
		if p.Featured {
			s.FeaturedProducts++
		}
		if p.Premium {
			s.PremiumProducts++
		}
		cats[p.Category] = true
	}
	s.Categories = len(cats)
	return s
}

// lookupLocked reports whether id exists anywhere in base or edits,
// regardless of deletion state.
func (o *Overlay) lookupLocked(id int64) (domain.Product, bool) {
	if p, ok := o.edits[id]; ok {
		return p, true
	}
	return o.base.ProductByID(id)
}

// visibleLocked reports whether id is present in the merged view.
func (o *Overlay) visibleLocked(id int64) (domain.Product, bool) {
	if o.deleted[id] {
		return domain.Product{}, false
	}
	return o.lookupLocked(id)
}

func (o *Overlay) maxIDLocked() int64 {
	var max int64
	for _, p := range o.base.Products() {
		if p.ID > max {
			max = p.ID
		}
	}
	for id := range o.edits {
		if id > max {
			max = id
		}
	}
	return max
}
