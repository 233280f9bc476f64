// Package pool models the fixed-size worker pools used by the shared-pool and
// isolated-pool demonstrations.
package pool

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

const (
	SharedCapacity   = 10
	IsolatedCapacity = 5

	// FastHold is how long a fast request occupies a slot.
	FastHold = 500 * time.Millisecond
	// RejectNotice is how long a rejection banner stays visible.
	RejectNotice = 2 * time.Second
)

// ErrExhausted is returned when every slot of a pool is taken.
var ErrExhausted = errors.New("pool exhausted")

// Kind distinguishes quick requests from ones stuck on a slow dependency.
type Kind string

const (
	KindFast Kind = "fast"
	KindSlow Kind = "slow"
)

// Request is one occupied slot.
type Request struct {
	ID   uint64
	Kind Kind
}

// Pool is a bounded set of slots. Slow requests never leave on their own.
type Pool struct {
	name     string
	capacity int

	mu       sync.Mutex
	active   []Request
	nextID   uint64
	rejected int
}

// New creates an empty pool. capacity < 1 is treated as 1.
func New(name string, capacity int) *Pool {
	if capacity < 1 {
		capacity = 1
	}
	return &Pool{name: name, capacity: capacity, nextID: 1}
}

// NewShared returns the single pool every dependency shares.
func NewShared() *Pool {
	return New("shared", SharedCapacity)
}

// Isolated is a pair of pools separated by a bulkhead.
type Isolated struct {
	A *Pool
	B *Pool
}

// NewIsolated returns two independent pools of IsolatedCapacity each.
func NewIsolated() *Isolated {
	return &Isolated{A: New("A", IsolatedCapacity), B: New("B", IsolatedCapacity)}
}

// Reset empties both pools.
func (i *Isolated) Reset() {
	i.A.Reset()
	i.B.Reset()
}

func (p *Pool) Name() string  { return p.name }
func (p *Pool) Capacity() int { return p.capacity }

// Acquire takes a slot for a request of the given kind.
func (p *Pool) Acquire(kind Kind) (Request, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.active) >= p.capacity {
		p.rejected++
		return Request{}, fmt.Errorf("%w: %s (%d/%d)", ErrExhausted, p.name, len(p.active), p.capacity)
	}
	req := Request{ID: p.nextID, Kind: kind}
	p.nextID++
	p.active = append(p.active, req)
	return req, nil
}

// Release frees the slot held by id and reports whether it was held.
func (p *Pool) Release(id uint64) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, r := range p.active {
		if r.ID == id {
			p.active = append(p.active[:i], p.active[i+1:]...)
			return true
		}
	}
	return false
}

// Flood replaces the pool contents with slow requests up to capacity.
func (p *Pool) Flood() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.active = p.active[:0]
	for len(p.active) < p.capacity {
		p.active = append(p.active, Request{ID: p.nextID, Kind: KindSlow})
		p.nextID++
	}
}

// Reset empties the pool and clears the rejection count.
func (p *Pool) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.active = nil
	p.rejected = 0
}

// InUse returns the number of occupied slots.
func (p *Pool) InUse() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.active)
}

// Full reports whether the next Acquire would be rejected.
func (p *Pool) Full() bool {
	return p.InUse() >= p.capacity
}

// Rejected returns how many Acquire calls failed since the last Reset.
func (p *Pool) Rejected() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rejected
}

// Requests returns a copy of the occupied slots in arrival order.
func (p *Pool) Requests() []Request {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Request(nil), p.active...)
}

// OccupancyRate returns the occupancy as a percentage (0-100).
func (p *Pool) OccupancyRate() float64 {
	return float64(p.InUse()) / float64(p.capacity) * 100
}
