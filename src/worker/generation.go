package worker

import (
	"fmt"
	"sync"
)

// Token tags one scheduled operation with the generation of its category at
// the time it was issued.
type Token struct {
	Category string
	Seq      uint64
}

func (t Token) String() string { return fmt.Sprintf("%s#%d", t.Category, t.Seq) }

// Generation holds one monotonically increasing counter per category. A token
// is current only while no newer token of its category has been issued.
type Generation struct {
	mu       sync.Mutex
	counters map[string]uint64
}

func NewGeneration() *Generation {
	return &Generation{counters: make(map[string]uint64)}
}

func (g *Generation) Next(category string) Token {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.counters[category]++
	return Token{Category: category, Seq: g.counters[category]}
}

func (g *Generation) Current(category string) Token {
	g.mu.Lock()
	defer g.mu.Unlock()
	return Token{Category: category, Seq: g.counters[category]}
}

func (g *Generation) IsCurrent(t Token) bool {
	return g.Current(t.Category) == t
}
