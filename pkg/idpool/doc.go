// Package idpool provides uniform random sampling without replacement
// over a closed integer range.
//
// A Pool tracks which identifiers have been handed out using a fixed-size
// bitset, so memory stays bounded by the range size rather than by the
// number of draws. Identifiers can be released back into the pool, making
// them eligible to be drawn again.
//
// # Usage
//
//	pool, err := idpool.New(1, 4_000_000)
//	ids, err := pool.Batch(10)
//	// ... attempt work per id ...
//	pool.Release(failedID) // failed attempts become eligible again
//
// Batch returns ErrExhausted once the range cannot yield enough unmarked
// identifiers, so callers get a defined termination path instead of an
// unbounded rejection-sampling loop.
package idpool
