package testutil

import (
	"fmt"
	"sync"
)

// SequenceGenerator hands out query ids "query-1", "query-2", ... so
// commands that open several contexts produce stable logs.
//
// Unlike engine.FixedGenerator it never runs out, and it can be reset for
// test reuse.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type SequenceGenerator struct {
	mu  sync.Mutex
	seq int64
}

// NewSequenceGenerator creates a generator starting at 0.
//
// The first call to Generate() returns "query-1".
func NewSequenceGenerator() *SequenceGenerator {
	return &SequenceGenerator{}
}

// Generate implements engine.IDGenerator.
func (g *SequenceGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq++
	return fmt.Sprintf("query-%d", g.seq)
}

// Count returns how many ids were handed out.
func (g *SequenceGenerator) Count() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.seq
}

// Reset restarts the sequence. After Reset(), Generate() returns "query-1".
func (g *SequenceGenerator) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq = 0
}
