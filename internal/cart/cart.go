package cart

import (
	"sync"

	"marche/internal/models"
)

// Item is a single cart line: a product snapshot taken at add time plus
// the desired quantity.
type Item struct {
	Product  models.Product `json:"product"`
	Quantity int            `json:"quantity"`
}

// Subtotal returns the line contribution using the effective unit price.
func (i Item) Subtotal() float64 {
	return i.Product.EffectivePrice() * float64(i.Quantity)
}

// Listener is notified synchronously after every cart mutation with a
// snapshot of the new contents, so UI-facing callers never observe a
// stale badge or total.
type Listener func(items []Item)

// Cart holds a shopper's in-progress selection. A product appears at
// most once: re-adding merges quantities. Insertion order is preserved.
//
// All methods are safe for concurrent use; read-modify-write sequences
// are serialized by the internal mutex so the quantity-merge invariant
// holds under concurrent handlers.
type Cart struct {
	mu        sync.RWMutex
	items     []Item
	listeners []Listener
}

// New creates an empty cart.
func New() *Cart {
	return &Cart{}
}

// Subscribe registers a listener invoked after each mutation. It returns
// an unsubscribe function.
func (c *Cart) Subscribe(l Listener) func() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.listeners = append(c.listeners, l)
	idx := len(c.listeners) - 1
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.listeners[idx] = nil
	}
}

// AddItem adds quantity units of product to the cart, merging with an
// existing line for the same product. Non-positive quantities are a
// no-op.
func (c *Cart) AddItem(product models.Product, quantity int) {
	if quantity < 1 {
		return
	}

	c.mu.Lock()
	for i := range c.items {
		if c.items[i].Product.ID == product.ID {
			c.items[i].Quantity += quantity
			c.notifyLocked()
			return
		}
	}
	c.items = append(c.items, Item{Product: product, Quantity: quantity})
	c.notifyLocked()
}

// RemoveItem removes the line for productID. Removing an absent product
// is a no-op.
func (c *Cart) RemoveItem(productID string) {
	c.mu.Lock()
	for i := range c.items {
		if c.items[i].Product.ID == productID {
			c.items = append(c.items[:i], c.items[i+1:]...)
			c.notifyLocked()
			return
		}
	}
	c.mu.Unlock()
}

// UpdateQuantity overwrites the quantity for productID. A quantity of
// zero or less removes the line.
func (c *Cart) UpdateQuantity(productID string, quantity int) {
	if quantity <= 0 {
		c.RemoveItem(productID)
		return
	}

	c.mu.Lock()
	for i := range c.items {
		if c.items[i].Product.ID == productID {
			c.items[i].Quantity = quantity
			c.notifyLocked()
			return
		}
	}
	c.mu.Unlock()
}

// Clear empties the cart. Used after a successful order placement.
func (c *Cart) Clear() {
	c.mu.Lock()
	if len(c.items) == 0 {
		c.mu.Unlock()
		return
	}
	c.items = nil
	c.notifyLocked()
}

// Items returns a copy of the current lines in insertion order.
func (c *Cart) Items() []Item {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshot()
}

// Total returns the sum of effective unit price times quantity over all
// lines. It is recomputed on every call, never cached.
func (c *Cart) Total() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var total float64
	for _, item := range c.items {
		total += item.Subtotal()
	}
	return total
}

// Count returns the sum of quantities across all lines (the badge
// number), which is distinct from the number of lines.
func (c *Cart) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var count int
	for _, item := range c.items {
		count += item.Quantity
	}
	return count
}

// Quantity returns the current quantity for productID, zero when the
// product is not in the cart.
func (c *Cart) Quantity(productID string) int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, item := range c.items {
		if item.Product.ID == productID {
			return item.Quantity
		}
	}
	return 0
}

// Len returns the number of distinct lines.
func (c *Cart) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return c.Len() == 0
}

func (c *Cart) snapshot() []Item {
	items := make([]Item, len(c.items))
	copy(items, c.items)
	return items
}

// notifyLocked snapshots state, releases the lock held by the caller and
// invokes listeners synchronously. Listeners must not assume the lock is
// held, so they are free to call back into the cart.
func (c *Cart) notifyLocked() {
	items := c.snapshot()
	listeners := make([]Listener, len(c.listeners))
	copy(listeners, c.listeners)
	c.mu.Unlock()

	for _, l := range listeners {
		if l != nil {
			l(items)
		}
	}
}
