package worker

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"screen-translate/src/logutil"
	"screen-translate/src/messages"
)

var (
	ErrTimeout = errors.New("worker: operation timed out")
	ErrStale   = errors.New("worker: stale result")
)

// Operation runs on a worker goroutine and may block. It should honor ctx
// where it can; the bridge stops waiting for it once ctx expires either way.
type Operation func(ctx context.Context) messages.Outcome

// Completion receives the outcome of a current operation. It only ever runs
// inside Drain, on the caller's control loop.
type Completion func(tok Token, out messages.Outcome)

type completed struct {
	tok  Token
	out  messages.Outcome
	done Completion
}

// Bridge lets a non-blocking control loop run operations on a Pool and apply
// their outcomes later from the same loop. Workers post tagged results into
// a mailbox; Drain hands the current ones to their completions and drops
// results whose token has been superseded.
type Bridge struct {
	pool    *Pool
	gen     *Generation
	timeout time.Duration

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	mailbox  []completed
	inFlight map[Token]struct{}
	closed   bool
	dropped  int
}

// NewBridge wraps pool. A zero timeout disables the per-operation deadline.
func NewBridge(pool *Pool, gen *Generation, timeout time.Duration) *Bridge {
	ctx, cancel := context.WithCancel(context.Background())
	return &Bridge{
		pool:     pool,
		gen:      gen,
		timeout:  timeout,
		ctx:      ctx,
		cancel:   cancel,
		inFlight: make(map[Token]struct{}),
	}
}

// Schedule issues a new token for category, which makes every earlier token
// of that category stale, and submits op. It never blocks. If the pool
// refuses the job a busy failure is posted right away so the completion
// still receives a terminal outcome.
func (b *Bridge) Schedule(category string, op Operation, done Completion) Token {
	tok := b.gen.Next(category)

	b.mu.Lock()
	closed := b.closed
	b.inFlight[tok] = struct{}{}
	b.mu.Unlock()

	if closed {
		b.post(completed{tok, messages.Failed(messages.ReasonBusy, ErrClosed.Error()), done})
		return tok
	}

	err := b.pool.Submit(func() {
		b.post(completed{tok, b.run(tok, op), done})
	})
	if err != nil {
		log.Printf("worker: cannot schedule %s: %v", tok, err)
		b.post(completed{tok, messages.Failed(messages.ReasonBusy, err.Error()), done})
	}
	return tok
}

// run executes op under the bridge deadline. When the deadline passes first
// the operation is left to finish in the background and its result discarded.
func (b *Bridge) run(tok Token, op Operation) messages.Outcome {
	ctx := b.ctx
	if b.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.timeout)
		defer cancel()
	}

	start := time.Now()
	resCh := make(chan messages.Outcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("PANIC in operation %s: %v", tok, r)
				resCh <- messages.Failed(messages.ReasonPanic, fmt.Sprint(r))
			}
		}()
		resCh <- op(ctx)
	}()

	select {
	case out := <-resCh:
		logutil.Debugf("worker: %s finished in %s", tok, time.Since(start))
		return out
	case <-ctx.Done():
		log.Printf("worker: %s abandoned after %s: %v", tok, time.Since(start), ctx.Err())
		return messages.Failed(messages.ReasonTimeout, ErrTimeout.Error())
	}
}

func (b *Bridge) post(c completed) {
	b.mu.Lock()
	b.mailbox = append(b.mailbox, c)
	b.mu.Unlock()
}

// Drain applies every result posted since the previous call, in the order the
// operations completed. It returns how many were applied and how many were
// dropped as stale. Must be called from the control loop only.
func (b *Bridge) Drain() (applied, dropped int) {
	b.mu.Lock()
	batch := b.mailbox
	b.mailbox = nil
	for _, c := range batch {
		delete(b.inFlight, c.tok)
	}
	b.mu.Unlock()

	for _, c := range batch {
		if !b.gen.IsCurrent(c.tok) {
			logutil.Debugf("worker: dropping %s (current %s): %v", c.tok, b.gen.Current(c.tok.Category), ErrStale)
			dropped++
			continue
		}
		if b.apply(c) {
			applied++
		}
	}

	if dropped > 0 {
		b.mu.Lock()
		b.dropped += dropped
		b.mu.Unlock()
	}
	return applied, dropped
}

func (b *Bridge) apply(c completed) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("PANIC applying %s: %v", c.tok, r)
			ok = false
		}
	}()
	c.done(c.tok, c.out)
	return true
}

// Invalidate makes every outstanding token of category stale without
// scheduling anything.
func (b *Bridge) Invalidate(category string) Token {
	return b.gen.Next(category)
}

// InFlight reports whether any operation of category has not been drained yet.
func (b *Bridge) InFlight(category string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for tok := range b.inFlight {
		if tok.Category == category {
			return true
		}
	}
	return false
}

// Pending reports whether the current operation of category has not been
// drained yet. Superseded operations that are still running do not count.
func (b *Bridge) Pending(category string) bool {
	cur := b.gen.Current(category)
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.inFlight[cur]
	return ok
}

// Dropped returns the total number of stale results discarded so far.
func (b *Bridge) Dropped() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dropped
}

// Close refuses new work, cancels running operations and waits up to timeout
// for the pool to drain.
func (b *Bridge) Close(timeout time.Duration) bool {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return true
	}
	b.closed = true
	b.mu.Unlock()

	b.cancel()
	return b.pool.Close(timeout)
}
