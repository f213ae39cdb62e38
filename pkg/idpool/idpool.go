package idpool

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
)

// ErrExhausted is returned by Batch when the range cannot yield enough
// unmarked identifiers.
var ErrExhausted = errors.New("idpool: identifier space exhausted")

// maxDrawAttempts bounds rejection sampling per identifier. With the free
// count checked up front this only trips when the range is nearly
// saturated, where uniform draws keep colliding with marked values.
const maxDrawAttempts = 100_000

// Pool draws unique identifiers uniformly at random from [min, max].
// All methods are safe for concurrent use.
type Pool struct {
	min uint64
	max uint64

	mu     sync.Mutex
	rng    *rand.Rand
	bits   []uint64
	marked uint64
}

// Option configures a Pool.
type Option func(*Pool)

// WithSeed makes the pool's draw sequence deterministic. Intended for tests.
func WithSeed(seed uint64) Option {
	return func(p *Pool) {
		p.rng = rand.New(rand.NewPCG(seed, seed))
	}
}

// New creates a Pool over the closed range [min, max].
func New(min, max uint64, options ...Option) (*Pool, error) {
	if min > max {
		return nil, fmt.Errorf("idpool: invalid range [%d, %d]", min, max)
	}

	capacity := max - min + 1
	p := &Pool{
		min:  min,
		max:  max,
		bits: make([]uint64, (capacity+63)/64),
	}

	for _, opt := range options {
		opt(p)
	}
	if p.rng == nil {
		p.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	return p, nil
}

// Capacity returns the total number of identifiers in the range.
func (p *Pool) Capacity() uint64 {
	return p.max - p.min + 1
}

// MarkedCount returns the number of identifiers currently marked.
func (p *Pool) MarkedCount() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.marked
}

// Marked reports whether id is currently marked. Identifiers outside the
// range are never marked.
func (p *Pool) Marked(id uint64) bool {
	if id < p.min || id > p.max {
		return false
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.has(id - p.min)
}

// Batch draws n unique identifiers, each distinct from every identifier
// currently marked, and marks them before returning. Returns ErrExhausted
// if the range cannot supply n fresh values; in that case no identifiers
// remain marked from the failed call.
func (p *Pool) Batch(n int) ([]uint64, error) {
	if n <= 0 {
		return nil, nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.Capacity()-p.marked < uint64(n) {
		return nil, fmt.Errorf("%w: %d free of %d, need %d",
			ErrExhausted, p.Capacity()-p.marked, p.Capacity(), n)
	}

	ids := make([]uint64, 0, n)
	for len(ids) < n {
		idx, ok := p.draw()
		if !ok {
			// Roll back the partial batch so state stays consistent.
			for _, id := range ids {
				p.clear(id - p.min)
				p.marked--
			}
			return nil, fmt.Errorf("%w: no fresh identifier after %d draws",
				ErrExhausted, maxDrawAttempts)
		}
		p.set(idx)
		p.marked++
		ids = append(ids, p.min+idx)
	}

	return ids, nil
}

// Release unmarks id, making it eligible to be drawn again. Releasing an
// unmarked or out-of-range identifier is a no-op.
func (p *Pool) Release(id uint64) {
	if id < p.min || id > p.max {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	idx := id - p.min
	if p.has(idx) {
		p.clear(idx)
		p.marked--
	}
}

// draw rejection-samples an unmarked bit index. Caller holds p.mu.
func (p *Pool) draw() (uint64, bool) {
	for attempt := 0; attempt < maxDrawAttempts; attempt++ {
		idx := p.rng.Uint64N(p.Capacity())
		if !p.has(idx) {
			return idx, true
		}
	}
	return 0, false
}

func (p *Pool) has(idx uint64) bool {
	return p.bits[idx/64]&(1<<(idx%64)) != 0
}

func (p *Pool) set(idx uint64) {
	p.bits[idx/64] |= 1 << (idx % 64)
}

func (p *Pool) clear(idx uint64) {
	p.bits[idx/64] &^= 1 << (idx % 64)
}
