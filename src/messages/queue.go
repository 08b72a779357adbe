package messages

import (
	"log"
	"sync"
)

// DefaultQueueLimit caps the queue. Commands arrive at human key-press
// speed, so the cap is only reached when the event loop is wedged.
const DefaultQueueLimit = 64

// Queue is a thread-safe FIFO of Commands. Producers (the hotkey listener,
// loopback delegation) call Push from their own goroutines; the event loop is
// the single consumer and calls DrainAll once per tick.
type Queue struct {
	mu      sync.Mutex
	items   []Command
	limit   int
	dropped uint64
}

// NewQueue creates a queue holding at most limit pending commands.
// limit<=0 selects DefaultQueueLimit.
func NewQueue(limit int) *Queue {
	if limit <= 0 {
		limit = DefaultQueueLimit
	}
	return &Queue{limit: limit, items: make([]Command, 0, limit)}
}

// Push appends c without blocking. When the queue is full the oldest pending
// command is discarded to make room.
func (q *Queue) Push(c Command) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) >= q.limit {
		oldest := q.items[0]
		copy(q.items, q.items[1:])
		q.items = q.items[:len(q.items)-1]
		q.dropped++
		log.Printf("Queue: full (%d), dropped oldest command %s", q.limit, oldest)
	}
	q.items = append(q.items, c)
}

// DrainAll returns every command pushed since the previous drain, in push
// order, and empties the queue. It returns nil when nothing is pending.
func (q *Queue) DrainAll() []Command {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return nil
	}
	out := q.items
	q.items = make([]Command, 0, q.limit)
	return out
}

// Len returns the number of pending commands.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Dropped returns how many commands were discarded because the queue was full.
func (q *Queue) Dropped() uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.dropped
}
