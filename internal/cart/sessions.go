package cart

import "sync"

// Sessions maps session identifiers to their carts. Each shopper session
// owns exactly one cart for its lifetime; carts are created lazily on
// first access.
type Sessions struct {
	mu    sync.RWMutex
	carts map[string]*Cart
}

// NewSessions creates an empty session registry.
func NewSessions() *Sessions {
	return &Sessions{
		carts: make(map[string]*Cart),
	}
}

// Get returns the cart for sessionID, or nil if none exists.
func (s *Sessions) Get(sessionID string) *Cart {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.carts[sessionID]
}

// GetOrCreate returns the cart for sessionID, creating it if needed.
func (s *Sessions) GetOrCreate(sessionID string) *Cart {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.carts[sessionID]
	if !ok {
		c = New()
		s.carts[sessionID] = c
	}
	return c
}

// Remove drops the cart for sessionID, if any.
func (s *Sessions) Remove(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, sessionID)
}
